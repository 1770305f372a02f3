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

package groomer

import (
	"sort"

	"go.uber.org/zap/zapcore"
)

// MarshalLogObject implements zapcore.ObjectMarshaler. Only groomed errors
// should be logged this way: the fields are written as they are.
func (e *ClientError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("message", e.Message)
	if e.Code != "" {
		enc.AddString("code", e.Code)
		enc.AddInt("errno", e.Errno)
		enc.AddString("syscall", e.Syscall)
		enc.AddString("address", e.Address)
	}
	if e.Port != 0 {
		enc.AddInt("port", e.Port)
	}
	if e.Config != nil {
		if err := enc.AddObject("config", (*logConfig)(e.Config)); err != nil {
			return err
		}
	}
	if e.Request != nil {
		if err := enc.AddObject("request", (*logRequest)(e.Request)); err != nil {
			return err
		}
	}
	if e.Response != nil {
		if err := enc.AddObject("response", (*logResponse)(e.Response)); err != nil {
			return err
		}
	}
	if e.Cause != nil {
		enc.AddString("cause", e.Cause.Error())
	}
	return nil
}

type logConfig RequestConfig

func (c *logConfig) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("baseURL", c.BaseURL)
	enc.AddString("url", c.URL)
	enc.AddString("method", c.Method)
	if c.Timeout > 0 {
		enc.AddDuration("timeout", c.Timeout)
	}
	if c.Auth != nil {
		enc.AddString("auth", Redacted)
	}
	if err := addHeaders(enc, c.Headers); err != nil {
		return err
	}
	return addData(enc, c.Data)
}

type logRequest Request

func (r *logRequest) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if r.Method != "" {
		enc.AddString("method", r.Method)
	}
	if r.Path != "" {
		enc.AddString("path", r.Path)
	}
	if err := addHeaders(enc, r.Headers); err != nil {
		return err
	}
	return addData(enc, r.Data)
}

type logResponse Response

func (r *logResponse) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if r.Status != 0 {
		enc.AddInt("status", r.Status)
		enc.AddString("statusText", r.StatusText)
	}
	if err := addHeaders(enc, r.Headers); err != nil {
		return err
	}
	return addData(enc, r.Data)
}

type logHeaders Headers

func (h logHeaders) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		enc.AddString(name, h[name])
	}
	return nil
}

func addHeaders(enc zapcore.ObjectEncoder, headers Headers) error {
	if len(headers) == 0 {
		return nil
	}
	return enc.AddObject("headers", logHeaders(headers))
}

func addData(enc zapcore.ObjectEncoder, data interface{}) error {
	switch d := data.(type) {
	case nil:
		return nil
	case string:
		enc.AddString("data", d)
		return nil
	}
	return enc.AddReflected("data", deepCopy(data))
}
