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
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := WrapErrTruncatedBuffer("user.name", 10, 3)
	wrapped := errors.Wrap(err, "failed to decode user")
	s.ErrorIs(wrapped, ErrTruncatedBuffer)
	s.Equal(Code(ErrTruncatedBuffer), Code(err))
	s.Equal(Code(ErrTruncatedBuffer), Code(wrapped))
	s.Equal(TimeoutCode, Code(context.DeadlineExceeded))
	s.Equal(CanceledCode, Code(context.Canceled))
	s.Equal(errUnexpected.errCode, Code(errUnexpected))
	s.Equal(errUnexpected.errCode, Code(errors.New("plain")))
	s.Equal(int32(0), Code(nil))

	sameCodeErr := newBriefError("new error", ErrTruncatedBuffer.errCode)
	s.True(sameCodeErr.Is(ErrTruncatedBuffer))
	s.False(sameCodeErr.Is(ErrInvalidUtf8))
}

func (s *ErrSuite) TestKind() {
	s.Equal("ok", Kind(nil))
	s.Equal("unsupported_type", Kind(WrapErrUnsupportedType("a", "chan int")))
	s.Equal("integer_overflow", Kind(WrapErrIntegerOverflow("a", int64(1)<<40)))
	s.Equal("encoding_error", Kind(WrapErrEncoding("a")))
	s.Equal("truncated_buffer", Kind(WrapErrTruncatedBuffer("a", 4, 1)))
	s.Equal("invalid_utf8", Kind(WrapErrInvalidUtf8("a", 2)))
	s.Equal("invalid_count", Kind(WrapErrInvalidCount("a", -1)))
	s.Equal("trailing_bytes", Kind(WrapErrTrailingBytes("user", 2)))
	s.Equal("depth_exceeded", Kind(WrapErrDepthExceeded("a", 64)))
	s.Equal("canceled", Kind(context.Canceled))
	s.Equal("other", Kind(ErrSchemaInvalid))
}

func (s *ErrSuite) TestWrapCarriesPath() {
	err := WrapErrIntegerOverflow("order.items[2].qty", int64(1)<<33)
	s.Contains(err.Error(), "path=order.items[2].qty")
	s.Contains(err.Error(), "out of range")

	err = WrapErrInvalidCount("tags", -5, "negative prefix")
	s.Contains(err.Error(), "count=-5")
	s.Contains(err.Error(), "negative prefix")
}

func (s *ErrSuite) TestWrap() {
	s.ErrorIs(WrapErrUnsupportedType("a.b", "chan int", "no shape"), ErrUnsupportedType)
	s.ErrorIs(WrapErrIntegerOverflow("a", int64(1)<<40), ErrIntegerOverflow)
	s.ErrorIs(WrapErrEncoding("a", "surrogate"), ErrEncoding)
	s.ErrorIs(WrapErrTruncatedBuffer("a", 8, 2), ErrTruncatedBuffer)
	s.ErrorIs(WrapErrInvalidUtf8("a", 3), ErrInvalidUtf8)
	s.ErrorIs(WrapErrInvalidCount("a", -1), ErrInvalidCount)
	s.ErrorIs(WrapErrTrailingBytes("user", 1), ErrTrailingBytes)
	s.ErrorIs(WrapErrDepthExceeded("a", 3), ErrDepthExceeded)

	s.ErrorIs(WrapErrSchemaInvalid("user", "duplicate field"), ErrSchemaInvalid)
	s.ErrorIs(WrapErrSchemaNotFound("order"), ErrSchemaNotFound)
	s.ErrorIs(WrapErrFieldNotFound("name", "missing from record"), ErrFieldNotFound)
	s.ErrorIs(WrapErrConstructFailed("user", errors.New("bad")), ErrConstructFailed)
	s.ErrorIs(WrapErrTypeExprMalformed("seq<", 4, "unexpected end"), ErrTypeExprMalformed)

	s.ErrorIs(WrapErrParameterInvalid("struct", "int", "not a record"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterInvalidMsg("bad %s", "thing"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterMissing("schema"), ErrParameterMissing)

	s.ErrorIs(WrapErrIoFailed("out.bin", os.ErrClosed), ErrIoFailed)
	s.Nil(WrapErrIoFailed("out.bin", nil))
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  = errors.New("third")
	)

	err := Combine(errFirst, errSecond)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.False(errors.Is(err, errThird))

	s.Equal("first: second", err.Error())
}

func (s *ErrSuite) TestCombineWithNil() {
	err := errors.New("non-nil")

	err = Combine(nil, err)
	s.NotNil(err)
}

func (s *ErrSuite) TestCombineOnlyNil() {
	err := Combine(nil, nil)
	s.Nil(err)
}

func (s *ErrSuite) TestCombineCode() {
	err := Combine(WrapErrInvalidUtf8("a", 1), WrapErrTruncatedBuffer("b", 4, 0))
	s.Equal(Code(ErrTruncatedBuffer), Code(err))
}

func (s *ErrSuite) TestIsBriefError() {
	s.True(IsBriefError(WrapErrFieldNotFound("id")))
	s.True(IsBriefError(errors.Wrap(WrapErrDepthExceeded("a.b", 3), "batch item 1")))
	s.False(IsBriefError(errors.New("plain")))
	s.False(IsBriefError(nil))
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}
