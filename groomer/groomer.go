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

import "reflect"

// Groomer finds ClientErrors in an error graph and replaces each of them with
// a sanitized copy. A Groomer is immutable and safe for concurrent use.
type Groomer struct {
	policy Policy
}

// New returns a Groomer using DefaultPolicy adjusted by opts.
func New(opts ...Option) *Groomer {
	g := &Groomer{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Policy returns the policy g applies.
func (g *Groomer) Policy() Policy {
	return g.policy
}

// IsHTTPClientError reports whether g would groom candidate.
func (g *Groomer) IsHTTPClientError(candidate interface{}) bool {
	return IsHTTPClientError(candidate)
}

// IsHTTPClientError reports whether candidate is a non-nil *ClientError
// carrying both a request configuration and a request. A response is not
// required: network failures never get one.
func IsHTTPClientError(candidate interface{}) bool {
	ce, ok := candidate.(*ClientError)
	return ok && ce != nil && ce.Config != nil && ce.Request != nil
}

// GroomAll returns err with every reachable ClientError, err included,
// replaced by its groomed copy. Wrappers between err and the ClientErrors
// are edited in place; cyclic links are cut. A nil err is returned as is.
//
// Wrappers that keep their links in unexported fields, such as those built
// by fmt.Errorf, errors.Join or pkg/errors, cannot be edited. When something
// beneath one is groomed it is replaced by an *Error with the same message
// and stack, so errors.As no longer finds the original wrapper type.
func (g *Groomer) GroomAll(err error) error {
	if err == nil {
		return nil
	}

	root := reflect.New(errorType).Elem()
	root.Set(reflect.ValueOf(g.groomRoot(err)))
	newWalker(g).walk(root, 0)

	groomed, _ := root.Interface().(error)
	return groomed
}

// GroomValue is GroomAll for roots that are not errors, such as a map of
// log fields that may hold ClientErrors.
func (g *Groomer) GroomValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	if err, ok := v.(error); ok {
		v = g.groomRoot(err)
	}

	root := reflect.New(anyType).Elem()
	root.Set(reflect.ValueOf(v))
	newWalker(g).walk(root, 0)
	return root.Interface()
}

func (g *Groomer) groomRoot(err error) error {
	if ce, ok := err.(*ClientError); ok && IsHTTPClientError(ce) && !ce.groomed {
		return g.groomOne(ce)
	}
	return err
}
