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
	"encoding/json"
	"reflect"
	"sort"
	"time"

	"github.com/mailru/easyjson/jwriter"
)

// MarshalJSON implements json.Marshaler.
func (e *ClientError) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	e.MarshalEasyJSON(&w)
	return w.Buffer.BuildBytes(), w.Error
}

// MarshalEasyJSON implements easyjson.Marshaler.
func (e *ClientError) MarshalEasyJSON(out *jwriter.Writer) {
	encodeError(out, e, 0)
}

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	e.MarshalEasyJSON(&w)
	return w.Buffer.BuildBytes(), w.Error
}

// MarshalEasyJSON implements easyjson.Marshaler.
func (e *Error) MarshalEasyJSON(out *jwriter.Writer) {
	encodeError(out, e, 0)
}

type jsonObject struct {
	out   *jwriter.Writer
	first bool
}

func beginObject(out *jwriter.Writer) *jsonObject {
	out.RawByte('{')
	return &jsonObject{out: out, first: true}
}

func (o *jsonObject) key(name string) *jwriter.Writer {
	if o.first {
		o.first = false
	} else {
		o.out.RawByte(',')
	}
	o.out.String(name)
	o.out.RawByte(':')
	return o.out
}

func (o *jsonObject) stringField(name, value string) {
	if value != "" {
		o.key(name).String(value)
	}
}

func (o *jsonObject) intField(name string, value int64) {
	if value != 0 {
		o.key(name).Int64(value)
	}
}

func (o *jsonObject) end() {
	o.out.RawByte('}')
}

// encodeError writes err and its causes. Past maxDepth only messages are
// written, so ungroomed cyclic chains still terminate.
func encodeError(out *jwriter.Writer, err error, depth int) {
	if isNilError(err) {
		out.RawString("null")
		return
	}
	if depth > maxDepth {
		out.String(err.Error())
		return
	}

	switch e := err.(type) {
	case *ClientError:
		encodeClientError(out, e, depth)
	case *Error:
		obj := beginObject(out)
		obj.key("message").String(e.Message)
		if e.Cause != nil {
			encodeError(obj.key("cause"), e.Cause, depth+1)
		}
		if len(e.Errors) > 0 {
			w := obj.key("errors")
			w.RawByte('[')
			for i, joined := range e.Errors {
				if i > 0 {
					w.RawByte(',')
				}
				if joined == nil {
					w.RawString("null")
					continue
				}
				encodeError(w, joined, depth+1)
			}
			w.RawByte(']')
		}
		if len(e.Fields) > 0 {
			encodeFields(obj.key("fields"), e.Fields, depth)
		}
		obj.end()
	default:
		obj := beginObject(out)
		obj.key("message").String(err.Error())
		if u, ok := err.(interface{ Unwrap() error }); ok {
			if cause := u.Unwrap(); cause != nil {
				encodeError(obj.key("cause"), cause, depth+1)
			}
		}
		obj.end()
	}
}

func isNilError(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

func encodeClientError(out *jwriter.Writer, e *ClientError, depth int) {
	obj := beginObject(out)
	obj.key("message").String(e.Message)
	obj.intField("errno", int64(e.Errno))
	obj.stringField("code", e.Code)
	obj.stringField("syscall", e.Syscall)
	obj.stringField("address", e.Address)
	obj.intField("port", int64(e.Port))

	if c := e.Config; c != nil {
		cfg := beginObject(obj.key("config"))
		cfg.stringField("baseURL", c.BaseURL)
		cfg.stringField("url", c.URL)
		cfg.stringField("method", c.Method)
		if c.Headers != nil {
			encodeHeaders(cfg.key("headers"), c.Headers)
		}
		if c.Data != nil {
			cfg.key("data").Raw(json.Marshal(c.Data))
		}
		cfg.intField("timeout", int64(c.Timeout/time.Millisecond))
		cfg.stringField("xsrfCookieName", c.XSRFCookieName)
		cfg.stringField("xsrfHeaderName", c.XSRFHeaderName)
		cfg.intField("maxContentLength", c.MaxContentLength)
		if c.Auth != nil {
			auth := beginObject(cfg.key("auth"))
			auth.key("username").String(c.Auth.Username)
			auth.key("password").String(c.Auth.Password)
			auth.end()
		}
		cfg.end()
	}

	if r := e.Request; r != nil {
		req := beginObject(obj.key("request"))
		req.stringField("method", r.Method)
		req.stringField("path", r.Path)
		if r.Headers != nil {
			encodeHeaders(req.key("headers"), r.Headers)
		}
		if r.Data != nil {
			req.key("data").Raw(json.Marshal(r.Data))
		}
		req.end()
	}

	if r := e.Response; r != nil {
		res := beginObject(obj.key("response"))
		res.intField("status", int64(r.Status))
		res.stringField("statusText", r.StatusText)
		if r.Headers != nil {
			encodeHeaders(res.key("headers"), r.Headers)
		}
		if r.Data != nil {
			res.key("data").Raw(json.Marshal(r.Data))
		}
		res.end()
	}

	if e.Cause != nil {
		encodeError(obj.key("cause"), e.Cause, depth+1)
	}
	obj.end()
}

func encodeHeaders(out *jwriter.Writer, headers Headers) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	obj := beginObject(out)
	for _, name := range names {
		obj.key(name).String(headers[name])
	}
	obj.end()
}

func encodeFields(out *jwriter.Writer, fields map[string]interface{}, depth int) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	obj := beginObject(out)
	for _, name := range names {
		w := obj.key(name)
		switch v := fields[name].(type) {
		case nil:
			w.RawString("null")
		case error:
			encodeError(w, v, depth+1)
		default:
			w.Raw(json.Marshal(deepCopy(v)))
		}
	}
	obj.end()
}
