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

// Policy selects which optional parts of a ClientError survive grooming.
// Credentials are removed regardless of the policy.
type Policy struct {
	// IncludeRequestData keeps config.Data and request.Data.
	IncludeRequestData bool `json:"includeRequestData" yaml:"includeRequestData" mapstructure:"includeRequestData"`
	// IncludeResponseData keeps response.Data.
	IncludeResponseData bool `json:"includeResponseData" yaml:"includeResponseData" mapstructure:"includeResponseData"`
	// IncludeQueryData keeps the query string and fragment of config.URL.
	IncludeQueryData bool `json:"includeQueryData" yaml:"includeQueryData" mapstructure:"includeQueryData"`
}

// DefaultPolicy keeps everything except credentials.
func DefaultPolicy() Policy {
	return Policy{
		IncludeRequestData:  true,
		IncludeResponseData: true,
		IncludeQueryData:    true,
	}
}

// Option configures a Groomer.
type Option func(*Groomer)

// WithPolicy replaces the whole policy.
func WithPolicy(p Policy) Option {
	return func(g *Groomer) {
		g.policy = p
	}
}

// IncludeRequestData sets Policy.IncludeRequestData.
func IncludeRequestData(include bool) Option {
	return func(g *Groomer) {
		g.policy.IncludeRequestData = include
	}
}

// IncludeResponseData sets Policy.IncludeResponseData.
func IncludeResponseData(include bool) Option {
	return func(g *Groomer) {
		g.policy.IncludeResponseData = include
	}
}

// IncludeQueryData sets Policy.IncludeQueryData.
func IncludeQueryData(include bool) Option {
	return func(g *Groomer) {
		g.policy.IncludeQueryData = include
	}
}
