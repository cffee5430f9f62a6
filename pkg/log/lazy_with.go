// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap/zapcore"
)

// lazyCore 推迟 core.With(fields) 到第一次真正需要时执行。
// 每次编解码都会派生带 schema 字段的 Logger，多数从不输出，
// 提前编码字段没有意义。参见 https://github.com/uber-go/zap/issues/1426。
type lazyCore struct {
	once   sync.Once
	core   atomic.Pointer[zapcore.Core]
	fields []zapcore.Field
}

var _ zapcore.Core = (*lazyCore)(nil)

// NewLazyWith 返回在首次 Check/With/Sync 时才附加 fields 的 core。
func NewLazyWith(core zapcore.Core, fields []zapcore.Field) zapcore.Core {
	c := &lazyCore{fields: fields}
	c.core.Store(&core)
	return c
}

func (c *lazyCore) resolved() zapcore.Core {
	c.once.Do(func() {
		withFields := (*c.core.Load()).With(c.fields)
		c.core.Store(&withFields)
	})
	return *c.core.Load()
}

// Enabled 只看级别，不需要字段。
func (c *lazyCore) Enabled(level zapcore.Level) bool {
	return (*c.core.Load()).Enabled(level)
}

func (c *lazyCore) With(fields []zapcore.Field) zapcore.Core {
	return c.resolved().With(fields)
}

func (c *lazyCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return c.resolved().Check(e, ce)
}

// Write 只会在 Check 之后被调用，此时 core 已解析。
func (c *lazyCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	return (*c.core.Load()).Write(e, fields)
}

func (c *lazyCore) Sync() error {
	return c.resolved().Sync()
}
