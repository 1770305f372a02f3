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
	jsonschema "github.com/mcuadros/go-jsonschema-generator"
)

// groomedDocument is the JSON shape of a groomed *ClientError.
type groomedDocument struct {
	Message  string            `json:"message"`
	Errno    int               `json:"errno,omitempty"`
	Code     string            `json:"code,omitempty"`
	Syscall  string            `json:"syscall,omitempty"`
	Address  string            `json:"address,omitempty"`
	Port     int               `json:"port,omitempty"`
	Config   *configDocument   `json:"config,omitempty"`
	Request  *requestDocument  `json:"request,omitempty"`
	Response *responseDocument `json:"response"`
}

type configDocument struct {
	BaseURL          string            `json:"baseURL,omitempty"`
	URL              string            `json:"url,omitempty"`
	Method           string            `json:"method,omitempty"`
	Headers          map[string]string `json:"headers,omitempty"`
	Data             interface{}       `json:"data,omitempty"`
	Timeout          int64             `json:"timeout,omitempty"`
	XSRFCookieName   string            `json:"xsrfCookieName,omitempty"`
	XSRFHeaderName   string            `json:"xsrfHeaderName,omitempty"`
	MaxContentLength int64             `json:"maxContentLength,omitempty"`
}

type requestDocument struct {
	Data interface{} `json:"data,omitempty"`
}

type responseDocument struct {
	Status     int               `json:"status,omitempty"`
	StatusText string            `json:"statusText,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
}

// JSONSchema returns the schema of a groomed client error document.
func JSONSchema() *jsonschema.Document {
	s := &jsonschema.Document{}
	s.Read(&groomedDocument{})
	return s
}
