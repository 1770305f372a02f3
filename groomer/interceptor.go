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
	"go.uber.org/atomic"
)

// ErrorInterceptor runs on the error path of an HTTP client. It receives the
// failure of a request and returns the error the caller will see. It must
// return a non-nil error whenever it is given one.
type ErrorInterceptor func(err error) error

// InterceptorConfig holds the Groomer used by interceptors. The Groomer can
// be swapped at any time, for example between tests.
type InterceptorConfig struct {
	groomer atomic.Value
}

// SharedInterceptorConfig is the configuration consulted by interceptors
// built with NewErrorInterceptor.
var SharedInterceptorConfig = &InterceptorConfig{}

// SetGroomer installs g. A nil g turns grooming off: interceptors then pass
// errors through untouched.
func (c *InterceptorConfig) SetGroomer(g *Groomer) {
	c.groomer.Store(g)
}

// Groomer returns the installed Groomer, or nil.
func (c *InterceptorConfig) Groomer() *Groomer {
	g, _ := c.groomer.Load().(*Groomer)
	return g
}

// Intercept grooms err with the installed Groomer.
func (c *InterceptorConfig) Intercept(err error) error {
	if err == nil {
		return nil
	}
	g := c.Groomer()
	if g == nil {
		return err
	}
	return g.GroomAll(err)
}

// NewErrorInterceptor installs g, or a Groomer with DefaultPolicy when g is
// nil, in SharedInterceptorConfig and returns an interceptor reading it.
func NewErrorInterceptor(g *Groomer) ErrorInterceptor {
	if g == nil {
		g = New()
	}
	SharedInterceptorConfig.SetGroomer(g)
	return SharedInterceptorConfig.Intercept
}
