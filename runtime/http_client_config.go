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
	"time"

	"github.com/pkg/errors"
	"github.com/uber-go/tally"
)

// NewHTTPClientFromConfig builds a client from the "client.*", "groomer.*"
// and "logger.*" keys of config. Keys present in config override the
// matching fields of opts. When opts carries no Logger one is built with
// NewLogger, and when it carries no Groomer the one described by
// "groomer.*" is used.
func NewHTTPClientFromConfig(
	config *StaticConfig,
	opts HTTPClientOptions,
) (*HTTPClient, error) {
	if config.ContainsKey("client.timeout") {
		opts.Timeout = time.Duration(config.MustGetInt("client.timeout")) * time.Millisecond
	}
	if config.ContainsKey("client.maxContentLength") {
		opts.MaxContentLength = config.MustGetInt("client.maxContentLength")
	}
	if config.ContainsKey("client.xsrfCookieName") {
		opts.XSRFCookieName = config.MustGetString("client.xsrfCookieName")
	}
	if config.ContainsKey("client.xsrfHeaderName") {
		opts.XSRFHeaderName = config.MustGetString("client.xsrfHeaderName")
	}
	if config.ContainsKey("client.followRedirect") {
		opts.FollowRedirect = config.MustGetBoolean("client.followRedirect")
	}

	if opts.Groomer == nil {
		g, err := NewGroomerFromConfig(config)
		if err != nil {
			return nil, err
		}
		opts.Groomer = g
	}

	if opts.Scope == nil {
		opts.Scope = tally.NoopScope
	}
	if opts.Logger == nil {
		logger, err := NewLogger(config, opts.Scope, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "could not build logger for client: %s", opts.ClientID)
		}
		opts.Logger = logger
	}

	return NewHTTPClient(opts), nil
}
