// Copyright (c) 2020 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package errgroom

import (
	"context"

	"github.com/pborman/uuid"
)

type contextFieldKey string

const (
	requestUUIDKey = contextFieldKey("requestUUID")
)

// WithRequestUUID annotates ctx with the id sent in the X-Request-Uuid
// header of outbound requests made with it.
func WithRequestUUID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, requestUUIDKey, id)
}

// GetRequestUUIDFromCtx returns the RequestUUID, if it exists on context
func GetRequestUUIDFromCtx(ctx context.Context) uuid.UUID {
	if val := ctx.Value(requestUUIDKey); val != nil {
		id, _ := val.(uuid.UUID)
		return id
	}
	return nil
}

// requestUUID returns the id on ctx or a fresh one.
func requestUUID(ctx context.Context) uuid.UUID {
	if id := GetRequestUUIDFromCtx(ctx); id != nil {
		return id
	}
	return uuid.NewRandom()
}
