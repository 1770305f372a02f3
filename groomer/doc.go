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

/*
Package groomer scrubs HTTP client errors before they reach logs, traces or
error trackers.

A ClientError carries the request configuration, the request that was sent
and, when the server answered, the response. Those fields routinely hold
secrets: basic auth credentials inside URLs, Authorization headers, request
and response bodies, query strings. A Groomer rebuilds every ClientError it
finds in an error graph from a fixed allow-list of fields:

	g := groomer.New(groomer.IncludeRequestData(false))
	err = g.GroomAll(err)

GroomAll follows causes, joined errors, struct fields, maps and slices, so a
ClientError wrapped any number of times (or referenced from a cyclic cause
chain) is found and replaced in place. Cycles are cut while walking.

Credentials are always removed. Request bodies, response bodies and query
strings are removed only when the Policy says so; removed values are replaced
with the Redacted sentinel so readers can tell redaction happened.

NewErrorInterceptor adapts a Groomer to the error hook of an HTTP client.
*/
package groomer
