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
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally"
	"github.com/uber/errgroom/groomer"
	"github.com/uber/errgroom/runtime/jsonwrapper"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// HTTPClientOptions configure NewHTTPClient. Zero values fall back to
// no-op loggers, scopes and tracers.
type HTTPClientOptions struct {
	Logger      *zap.Logger
	Scope       tally.Scope
	Tracer      opentracing.Tracer
	JSONWrapper jsonwrapper.JSONWrapper

	ClientID       string
	BaseURL        string
	DefaultHeaders map[string]string
	Timeout        time.Duration
	// Auth sends basic auth credentials unless the URL carries its own.
	Auth *groomer.BasicAuth

	// XSRFCookieName and XSRFHeaderName copy the named cookie into the named
	// header. Both must be set.
	XSRFCookieName string
	XSRFHeaderName string
	// MaxContentLength caps response bodies; zero or less means no cap.
	MaxContentLength int64

	// Transport replaces the default transport, mostly for tests.
	Transport      http.RoundTripper
	FollowRedirect bool

	// Groomer, when set, grooms every failure of this client before any
	// interceptor added with AddErrorInterceptor runs.
	Groomer *groomer.Groomer
}

// HTTPClient makes JSON requests and returns a *groomer.ClientError for
// every failed one, after running it through the error interceptors.
type HTTPClient struct {
	Client         *http.Client
	BaseURL        string
	DefaultHeaders map[string]string
	JSONWrapper    jsonwrapper.JSONWrapper
	Logger         *zap.Logger
	Tracer         opentracing.Tracer

	ClientID         string
	Timeout          time.Duration
	Auth             *groomer.BasicAuth
	XSRFCookieName   string
	XSRFHeaderName   string
	MaxContentLength int64

	scope tally.Scope

	interceptorsMu sync.RWMutex
	interceptors   []groomer.ErrorInterceptor
}

// NewHTTPClient will allocate a http client.
func NewHTTPClient(opts HTTPClientOptions) *HTTPClient {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	scope := opts.Scope
	if scope == nil {
		scope = tally.NoopScope
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = opentracing.NoopTracer{}
	}
	jsonWrapper := opts.JSONWrapper
	if jsonWrapper == nil {
		jsonWrapper = jsonwrapper.NewDefaultJSONWrapper()
	}
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DisableKeepAlives:   false,
			MaxIdleConns:        500,
			MaxIdleConnsPerHost: 500,
		}
	}

	var checkRedirect func(req *http.Request, via []*http.Request) error
	if !opts.FollowRedirect {
		checkRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	// cookiejar.New only fails on a nil PublicSuffixList.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	client := &HTTPClient{
		Client: &http.Client{
			Transport:     transport,
			Timeout:       opts.Timeout,
			CheckRedirect: checkRedirect,
			Jar:           jar,
		},
		BaseURL:          opts.BaseURL,
		DefaultHeaders:   opts.DefaultHeaders,
		JSONWrapper:      jsonWrapper,
		Tracer:           tracer,
		ClientID:         opts.ClientID,
		Timeout:          opts.Timeout,
		Auth:             opts.Auth,
		XSRFCookieName:   opts.XSRFCookieName,
		XSRFHeaderName:   opts.XSRFHeaderName,
		MaxContentLength: opts.MaxContentLength,
		Logger:           logger.With(zap.String(logFieldClientID, opts.ClientID)),
		scope:            scope.Tagged(map[string]string{"client": opts.ClientID}),
	}

	// bound to this client only, SharedInterceptorConfig is left alone
	if opts.Groomer != nil {
		client.AddErrorInterceptor(opts.Groomer.GroomAll)
	}
	return client
}

// AddErrorInterceptor appends intercept to the interceptors every failure
// runs through, in the order they were added.
func (c *HTTPClient) AddErrorInterceptor(intercept groomer.ErrorInterceptor) {
	c.interceptorsMu.Lock()
	defer c.interceptorsMu.Unlock()
	c.interceptors = append(c.interceptors, intercept)
}

// intercept runs err through the interceptors. An interceptor returning nil
// leaves the previous error in place: failures are never swallowed.
func (c *HTTPClient) intercept(err error) error {
	c.interceptorsMu.RLock()
	interceptors := c.interceptors
	c.interceptorsMu.RUnlock()

	for _, intercept := range interceptors {
		if next := intercept(err); next != nil {
			err = next
		}
	}
	return err
}
