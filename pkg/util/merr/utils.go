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

package merr

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Code 返回给定错误对应的错误码。
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	switch specificErr := cause.(type) {
	case briefError:
		return specificErr.code()

	default:
		if errors.Is(specificErr, context.Canceled) {
			return CanceledCode
		} else if errors.Is(specificErr, context.DeadlineExceeded) {
			return TimeoutCode
		} else {
			return errUnexpected.code()
		}
	}
}

// Kind 返回错误码对应的稳定名称，用于日志与监控标签。
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	switch Code(err) {
	case ErrUnsupportedType.errCode:
		return "unsupported_type"
	case ErrIntegerOverflow.errCode:
		return "integer_overflow"
	case ErrEncoding.errCode:
		return "encoding_error"
	case ErrTruncatedBuffer.errCode:
		return "truncated_buffer"
	case ErrInvalidUtf8.errCode:
		return "invalid_utf8"
	case ErrInvalidCount.errCode:
		return "invalid_count"
	case ErrTrailingBytes.errCode:
		return "trailing_bytes"
	case ErrDepthExceeded.errCode:
		return "depth_exceeded"
	case CanceledCode:
		return "canceled"
	case TimeoutCode:
		return "timeout"
	default:
		return "other"
	}
}

// IsBriefError 判断 err 的根因是否为本包定义的错误。
func IsBriefError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := errors.Cause(err).(briefError)
	return ok
}

func IsCanceledOrTimeout(err error) bool {
	return errors.IsAny(err, context.Canceled, context.DeadlineExceeded)
}

// Codec 相关错误封装。path 为出错字段的完整路径，例如 order.items[2].price。
func WrapErrUnsupportedType(path string, typ any, msg ...string) error {
	err := wrapFields(ErrUnsupportedType,
		value("path", path),
		value("type", typ),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrIntegerOverflow(path string, actual any) error {
	return wrapFields(ErrIntegerOverflow,
		value("path", path),
		bound("value", actual, int64(-1<<31), int64(1<<31-1)),
	)
}

func WrapErrEncoding(path string, msg ...string) error {
	err := wrapFields(ErrEncoding, value("path", path))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrTruncatedBuffer(path string, need, remaining int) error {
	return wrapFields(ErrTruncatedBuffer,
		value("path", path),
		value("need", need),
		value("remaining", remaining),
	)
}

func WrapErrInvalidUtf8(path string, length int) error {
	return wrapFields(ErrInvalidUtf8,
		value("path", path),
		value("length", length),
	)
}

func WrapErrInvalidCount(path string, count int64, msg ...string) error {
	err := wrapFields(ErrInvalidCount,
		value("path", path),
		value("count", count),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrTrailingBytes(schema string, remaining int) error {
	return wrapFields(ErrTrailingBytes,
		value("schema", schema),
		value("remaining", remaining),
	)
}

func WrapErrDepthExceeded(path string, limit int) error {
	return wrapFields(ErrDepthExceeded,
		value("path", path),
		value("limit", limit),
	)
}

// Schema 相关错误封装。
func WrapErrSchemaInvalid(schema string, msg ...string) error {
	err := wrapFields(ErrSchemaInvalid, value("schema", schema))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrSchemaNotFound(name string, msg ...string) error {
	err := wrapFields(ErrSchemaNotFound, value("schema", name))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrFieldNotFound[T any](field T, msg ...string) error {
	err := wrapFields(ErrFieldNotFound, value("field", field))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrConstructFailed(schema string, cause error) error {
	return wrapFieldsWithDesc(ErrConstructFailed, cause.Error(), value("schema", schema))
}

func WrapErrTypeExprMalformed(expr string, pos int, msg ...string) error {
	err := wrapFields(ErrTypeExprMalformed,
		value("expr", expr),
		value("pos", pos),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// 参数相关错误封装。
func WrapErrParameterInvalid[T any](expected, actual T, msg ...string) error {
	err := wrapFields(ErrParameterInvalid,
		value("expected", expected),
		value("actual", actual),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrParameterInvalidMsg(fmt string, args ...any) error {
	return errors.Wrapf(ErrParameterInvalid, fmt, args...)
}

func WrapErrParameterMissing[T any](param T, msg ...string) error {
	err := wrapFields(ErrParameterMissing,
		value("missing_param", param),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// IO 相关错误封装。
func WrapErrIoFailed(key string, err error) error {
	if err == nil {
		return nil
	}
	return wrapFieldsWithDesc(ErrIoFailed, err.Error(), value("key", key))
}

func wrapFields(err briefError, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.detail = err.msg
	return err
}

func wrapFieldsWithDesc(err briefError, desc string, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.msg += ": " + desc
	err.detail = err.msg
	return err
}

type errorField interface {
	String() string
}

type valueField struct {
	name  string
	value any
}

func value(name string, value any) valueField {
	return valueField{
		name,
		value,
	}
}

func (f valueField) String() string {
	return fmt.Sprintf("%s=%v", f.name, f.value)
}

type boundField struct {
	name  string
	value any
	lower any
	upper any
}

func bound(name string, value, lower, upper any) boundField {
	return boundField{
		name,
		value,
		lower,
		upper,
	}
}

func (f boundField) String() string {
	return fmt.Sprintf("%v out of range %v <= %s <= %v", f.value, f.lower, f.name, f.upper)
}
