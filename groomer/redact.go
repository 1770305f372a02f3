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
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	// scheme-relative or absolute URL followed by a userinfo segment
	urlCredentials = regexp.MustCompile(`^((?:\w+:)?//)(?:[^@/]+@)`)
	urlQuery       = regexp.MustCompile(`(\?.*)|(#.*)`)

	redactedQuery = "?" + Redacted
)

// authorizationHeader is redacted under any casing.
const authorizationHeader = "Authorization"

// droppedResponseHeaders never make it into a groomed response.
var droppedResponseHeaders = []string{
	"Set-Cookie",
	"X-Newrelic-App-Data",
}

// groomOne builds the sanitized copy of ce. Anything that is not an HTTP
// client error is returned unchanged.
func (g *Groomer) groomOne(ce *ClientError) *ClientError {
	if !IsHTTPClientError(ce) {
		return ce
	}

	groomed := &ClientError{
		Message: ce.Message,
		Errno:   ce.Errno,
		Code:    ce.Code,
		Syscall: ce.Syscall,
		Address: ce.Address,
		Port:    ce.Port,
		groomed: true,
	}
	if len(ce.Stack) > 0 {
		groomed.Stack = append(errors.StackTrace(nil), ce.Stack...)
	}

	groomed.Config = g.groomConfig(ce.Config)
	groomed.Request = g.groomRequest(ce.Request)
	groomed.Response = g.groomResponse(ce.Response)

	return groomed
}

func (g *Groomer) groomConfig(config *RequestConfig) *RequestConfig {
	if config == nil {
		return nil
	}

	groomed := &RequestConfig{
		BaseURL:          stripURLCredentials(config.BaseURL),
		URL:              stripURLCredentials(config.URL),
		Method:           config.Method,
		Headers:          redactAuthorization(config.Headers),
		Timeout:          config.Timeout,
		XSRFCookieName:   config.XSRFCookieName,
		XSRFHeaderName:   config.XSRFHeaderName,
		MaxContentLength: config.MaxContentLength,
	}

	if config.Data != nil {
		if g.policy.IncludeRequestData {
			groomed.Data = deepCopy(config.Data)
		} else {
			groomed.Data = Redacted
		}
	}

	if !g.policy.IncludeQueryData && groomed.URL != "" {
		groomed.URL = urlQuery.ReplaceAllLiteralString(groomed.URL, redactedQuery)
	}

	return groomed
}

func (g *Groomer) groomRequest(req *Request) *Request {
	if req == nil {
		return nil
	}

	groomed := &Request{}
	if req.Data != nil {
		if g.policy.IncludeRequestData {
			groomed.Data = deepCopy(req.Data)
		} else {
			groomed.Data = Redacted
		}
	}
	return groomed
}

// groomResponse always returns a response, empty when the server never
// answered.
func (g *Groomer) groomResponse(res *Response) *Response {
	if res == nil {
		return &Response{}
	}

	groomed := &Response{
		Status:     res.Status,
		StatusText: res.StatusText,
		Headers:    dropHeaders(res.Headers, droppedResponseHeaders),
	}
	if res.Data != nil {
		if g.policy.IncludeResponseData {
			groomed.Data = deepCopy(res.Data)
		} else {
			groomed.Data = Redacted
		}
	}
	return groomed
}

// stripURLCredentials removes a user:pass@ segment, leaving the rest of the
// URL byte for byte.
func stripURLCredentials(rawURL string) string {
	if rawURL == "" {
		return rawURL
	}
	return urlCredentials.ReplaceAllString(rawURL, "${1}")
}

func redactAuthorization(headers Headers) Headers {
	if headers == nil {
		return nil
	}
	redacted := make(Headers, len(headers))
	for name, value := range headers {
		if strings.EqualFold(name, authorizationHeader) {
			value = Redacted
		}
		redacted[name] = value
	}
	return redacted
}

func dropHeaders(headers Headers, names []string) Headers {
	if headers == nil {
		return nil
	}
	kept := make(Headers, len(headers))
	for name, value := range headers {
		if !containsFold(names, name) {
			kept[name] = value
		}
	}
	return kept
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
