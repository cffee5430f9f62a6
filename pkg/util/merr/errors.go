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
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

const (
	CanceledCode int32 = 10000
	TimeoutCode  int32 = 10001
)

// Define leaf errors here,
// WARN: take care to add new error,
// check whether you can use the errors below before adding a new one.
// Name: Err + related prefix + error name
var (
	// Codec related
	ErrUnsupportedType = newBriefError("unsupported type", 100)
	ErrIntegerOverflow = newBriefError("integer overflow", 101)
	ErrEncoding        = newBriefError("text encoding error", 102)
	ErrTruncatedBuffer = newBriefError("truncated buffer", 103)
	ErrInvalidUtf8     = newBriefError("invalid utf-8", 104)
	ErrInvalidCount    = newBriefError("invalid count", 105)
	ErrTrailingBytes   = newBriefError("trailing bytes after record", 106)
	ErrDepthExceeded   = newBriefError("nesting depth exceeded", 107)

	// Schema related
	ErrSchemaInvalid     = newBriefError("invalid schema", 200)
	ErrSchemaNotFound    = newBriefError("schema not found", 201)
	ErrFieldNotFound     = newBriefError("field not found", 202)
	ErrConstructFailed   = newBriefError("record construction failed", 203)
	ErrTypeExprMalformed = newBriefError("malformed type expression", 204)

	// Parameter related
	ErrParameterInvalid = newBriefError("invalid parameter", 1100)
	ErrParameterMissing = newBriefError("missing parameter", 1101)

	// IO related
	ErrIoFailed = newBriefError("IO failed", 1001)

	// Do NOT export this,
	// never allow programmer using this, keep only for converting unknown error to briefError
	errUnexpected = newBriefError("unexpected error", (1<<16)-1)
)

type briefError struct {
	msg     string
	detail  string
	errCode int32
}

func newBriefError(msg string, code int32) briefError {
	return briefError{
		msg:     msg,
		detail:  msg,
		errCode: code,
	}
}

func (e briefError) code() int32 {
	return e.errCode
}

func (e briefError) Error() string {
	return e.msg
}

func (e briefError) Detail() string {
	return e.detail
}

func (e briefError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(briefError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	// To make merr work for multi errors,
	// we need cause of multi errors, which defined as the last error
	if len(e.errs) == 2 {
		return e.errs[1]
	}

	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}

func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{
		errs,
	}
}
