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

package conc

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	pool := NewPool[int](0)
	defer pool.Release()
	assert.Equal(t, runtime.GOMAXPROCS(0), pool.Cap())

	futures := make([]*Future[int], 0, 10)
	for i := 0; i < 10; i++ {
		futures = append(futures, pool.Submit(func() (int, error) {
			return i, nil
		}))
	}
	require.NoError(t, AwaitAll(futures...))
	for i, future := range futures {
		res, err := future.Await()
		assert.NoError(t, err)
		assert.Equal(t, i, res)
	}
}

func TestPoolError(t *testing.T) {
	pool := NewPool[int](2)
	defer pool.Release()
	assert.Equal(t, 2, pool.Cap())

	boom := errors.New("boom")
	ok := pool.Submit(func() (int, error) { return 1, nil })
	bad := pool.Submit(func() (int, error) { return 0, boom })

	assert.ErrorIs(t, AwaitAll(ok, bad), boom)
	assert.ErrorIs(t, bad.Err(), boom)
	v, err := ok.Await()
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestPoolConcealPanic(t *testing.T) {
	pool := NewPool[int](1, WithConcealPanic(true), WithExpiryDuration(time.Minute))
	defer pool.Release()

	f := pool.Submit(func() (int, error) { panic("boom") })
	require.Error(t, f.Err())
	assert.Contains(t, f.Err().Error(), "boom")

	// panic 之后池仍可继续处理任务
	v, err := pool.Submit(func() (int, error) { return 7, nil }).Await()
	assert.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestPoolReleased(t *testing.T) {
	pool := NewPool[int](1)
	pool.Release()

	f := pool.Submit(func() (int, error) { return 1, nil })
	assert.Error(t, f.Err())
}
