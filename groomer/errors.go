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
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
)

// Redacted is written in place of every value a groomed error withholds.
const Redacted = "[REDACTED]"

// Headers maps header names to values. Names keep the casing they were
// sent with, so "Authorization" and "authorization" are different keys.
type Headers map[string]string

// BasicAuth holds credentials configured on a request.
type BasicAuth struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RequestConfig is the effective configuration of an outgoing request.
type RequestConfig struct {
	BaseURL          string        `json:"baseURL,omitempty"`
	URL              string        `json:"url,omitempty"`
	Method           string        `json:"method,omitempty"`
	Headers          Headers       `json:"headers,omitempty"`
	Data             interface{}   `json:"data,omitempty"`
	Timeout          time.Duration `json:"timeout,omitempty"`
	XSRFCookieName   string        `json:"xsrfCookieName,omitempty"`
	XSRFHeaderName   string        `json:"xsrfHeaderName,omitempty"`
	MaxContentLength int64         `json:"maxContentLength,omitempty"`

	// Auth and Extra are never copied into a groomed error.
	Auth  *BasicAuth             `json:"auth,omitempty"`
	Extra map[string]interface{} `json:"-"`
}

// Request describes the request as it was transmitted.
type Request struct {
	Method  string                 `json:"method,omitempty"`
	Path    string                 `json:"path,omitempty"`
	Headers Headers                `json:"headers,omitempty"`
	Data    interface{}            `json:"data,omitempty"`
	Extra   map[string]interface{} `json:"-"`
}

// Response describes what the server answered.
type Response struct {
	Status     int                    `json:"status,omitempty"`
	StatusText string                 `json:"statusText,omitempty"`
	Headers    Headers                `json:"headers,omitempty"`
	Data       interface{}            `json:"data,omitempty"`
	Extra      map[string]interface{} `json:"-"`
}

// ClientError is the error an HTTP client returns for a failed request.
//
// Errno, Code, Syscall, Address and Port describe network failures where no
// response could be obtained; Response is nil in that case.
type ClientError struct {
	Message  string            `json:"message"`
	Stack    errors.StackTrace `json:"-"`
	Config   *RequestConfig    `json:"config,omitempty"`
	Request  *Request          `json:"request,omitempty"`
	Response *Response         `json:"response,omitempty"`
	Errno    int               `json:"errno,omitempty"`
	Code     string            `json:"code,omitempty"`
	Syscall  string            `json:"syscall,omitempty"`
	Address  string            `json:"address,omitempty"`
	Port     int               `json:"port,omitempty"`
	Cause    error             `json:"-"`

	Extra map[string]interface{} `json:"-"`

	groomed bool
}

// NewClientError returns a ClientError recording the caller's stack.
func NewClientError(message string) *ClientError {
	return &ClientError{
		Message: message,
		Stack:   callers(),
	}
}

func (e *ClientError) Error() string { return e.Message }

// Unwrap returns the cause, if any.
func (e *ClientError) Unwrap() error { return e.Cause }

// StackTrace returns the stack recorded when the error was created.
func (e *ClientError) StackTrace() errors.StackTrace { return e.Stack }

// Groomed reports whether e was produced by a Groomer.
func (e *ClientError) Groomed() bool { return e.groomed }

// Format prints the stack after the message with %+v.
func (e *ClientError) Format(s fmt.State, verb rune) {
	formatError(s, verb, e.Message, e.Stack)
}

// Error is a plain wrapping error. It is what GroomAll rebuilds opaque
// wrappers into, and what callers can use to attach fields to a failure.
type Error struct {
	Message string                 `json:"message"`
	Stack   errors.StackTrace      `json:"-"`
	Cause   error                  `json:"-"`
	Errors  []error                `json:"-"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Wrap returns an Error with the given message wrapping cause.
func Wrap(cause error, message string) *Error {
	return &Error{
		Message: message,
		Stack:   callers(),
		Cause:   cause,
	}
}

func (e *Error) Error() string { return e.Message }

// Unwrap returns the cause followed by the joined errors.
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	for _, err := range e.Errors {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// StackTrace returns the stack recorded when the error was created.
func (e *Error) StackTrace() errors.StackTrace { return e.Stack }

// Format prints the stack after the message with %+v.
func (e *Error) Format(s fmt.State, verb rune) {
	formatError(s, verb, e.Message, e.Stack)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// callers captures the stack of the caller's caller through pkg/errors.
func callers() errors.StackTrace {
	st := errors.New("").(stackTracer).StackTrace()
	if len(st) < 2 {
		return nil
	}
	return st[2:]
}

func formatError(s fmt.State, verb rune, msg string, st errors.StackTrace) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = io.WriteString(s, msg)
			st.Format(s, verb)
			return
		}
		fallthrough
	case 's':
		_, _ = io.WriteString(s, msg)
	case 'q':
		fmt.Fprintf(s, "%q", msg)
	}
}
