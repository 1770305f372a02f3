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
	"bytes"
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"github.com/uber/errgroom/groomer"
	"go.uber.org/zap"
)

// absoluteURL matches URLs that ignore the client's BaseURL.
var absoluteURL = regexp.MustCompile(`(?i)^([a-z][a-z\d+\-.]*:)?//`)

// ClientHTTPRequest is the struct for making client
// requests using an outbound http client.
type ClientHTTPRequest struct {
	started     bool
	startTime   time.Time
	client      *HTTPClient
	httpRequest *http.Request
	res         *ClientHTTPResponse

	// config and request describe the request for the ClientError built
	// when it fails.
	config  *groomer.RequestConfig
	request *groomer.Request

	ClientID   string
	MethodName string
	Logger     *zap.Logger
}

// NewClientHTTPRequest allocates a ClientHTTPRequest
func NewClientHTTPRequest(
	clientID string, methodName string,
	client *HTTPClient,
) *ClientHTTPRequest {
	req := &ClientHTTPRequest{
		Logger: client.Logger,
		client: client,
	}

	req.res = NewClientHTTPResponse(req)

	req.start(clientID, methodName)
	return req
}

// Start the request, do some metrics book keeping
func (req *ClientHTTPRequest) start(
	clientID string, methodName string,
) {
	if req.started {
		/* coverage ignore next line */
		req.Logger.Error(
			"Cannot start ClientHTTPRequest twice",
			zap.String("methodName", methodName),
			zap.String("clientID", clientID),
		)
		/* coverage ignore next line */
		return
	}

	req.ClientID = clientID
	req.MethodName = methodName
	req.Logger = req.Logger.With(zap.String(logFieldClientMethod, methodName))

	req.started = true
	req.startTime = time.Now()
}

// WriteJSON prepares a json http request. rawURL is resolved against the
// client's BaseURL unless it is absolute. A nil body sends no body.
func (req *ClientHTTPRequest) WriteJSON(
	method string, rawURL string, headers map[string]string, body interface{},
) error {
	var rawBody []byte
	if body != nil {
		var err error
		rawBody, err = req.client.JSONWrapper.Marshal(body)
		if err != nil {
			req.Logger.Error("Could not serialize client json request",
				zap.Error(err),
			)
			return errors.Wrapf(err,
				"Could not serialize json for client: %s", req.ClientID,
			)
		}
	}

	fullURL := combineURLs(req.client.BaseURL, rawURL)
	httpReq, err := http.NewRequest(method, fullURL, bytes.NewReader(rawBody))
	if err != nil {
		req.Logger.Error("Could not make outbound request",
			zap.Error(err),
		)
		return errors.Wrapf(err,
			"Could not make outbound request for client: %s",
			req.ClientID,
		)
	}

	configHeaders := groomer.Headers{acceptHeader: defaultAccept}
	for k, v := range req.client.DefaultHeaders {
		configHeaders[k] = v
	}
	for k, v := range headers {
		configHeaders[k] = v
	}
	if rawBody != nil {
		configHeaders[contentTypeHeader] = jsonContentType
	}

	// Credentials in the URL win over an explicit Authorization header.
	if user := httpReq.URL.User; user != nil {
		password, _ := user.Password()
		httpReq.URL.User = nil
		httpReq.SetBasicAuth(user.Username(), password)
		deleteFold(configHeaders, "Authorization")
	} else if auth := req.client.Auth; auth != nil {
		httpReq.SetBasicAuth(auth.Username, auth.Password)
		deleteFold(configHeaders, "Authorization")
	}
	for k, v := range configHeaders {
		if httpReq.Header.Get(k) == "" {
			httpReq.Header.Set(k, v)
		}
	}

	req.config = &groomer.RequestConfig{
		BaseURL:          req.client.BaseURL,
		URL:              rawURL,
		Method:           strings.ToLower(method),
		Headers:          configHeaders,
		Timeout:          req.client.Timeout,
		XSRFCookieName:   req.client.XSRFCookieName,
		XSRFHeaderName:   req.client.XSRFHeaderName,
		MaxContentLength: req.client.MaxContentLength,
		Auth:             req.client.Auth,
	}
	if rawBody != nil {
		req.config.Data = string(rawBody)
	}

	req.httpRequest = httpReq
	return nil
}

// Do will send the request out. A request that fails, at the transport or
// with a status outside 2xx, returns the error produced by the client's
// interceptors, by default a *groomer.ClientError.
func (req *ClientHTTPRequest) Do(
	ctx context.Context,
) (*ClientHTTPResponse, error) {
	if req.httpRequest == nil {
		return nil, errors.Errorf(
			"client(%s) request %s was not written", req.ClientID, req.MethodName,
		)
	}

	id := requestUUID(ctx)
	req.httpRequest.Header.Set(RequestUUIDHeader, id.String())
	req.setXSRFHeader()

	span := req.startSpan(ctx)
	defer span.Finish()

	req.request = &groomer.Request{
		Method:  req.httpRequest.Method,
		Path:    req.httpRequest.URL.RequestURI(),
		Headers: flattenHeaders(req.httpRequest.Header, false),
		Data:    req.config.Data,
	}

	req.client.scope.Counter(clientRequest).Inc(1)
	res, err := req.client.Client.Do(req.httpRequest.WithContext(ctx))
	req.client.scope.Timer(clientLatency).Record(time.Since(req.startTime))
	if err != nil {
		req.client.scope.Counter(clientNetworkErrors).Inc(1)
		ce := newNetworkError(err, req.httpRequest.URL, req.client.Timeout)
		return nil, req.fail(span, nil, ce)
	}

	req.res.setRawHTTPResponse(res)
	ext.HTTPStatusCode.Set(span, uint16(res.StatusCode))
	req.client.scope.Tagged(map[string]string{
		"status": statusTag(res.StatusCode),
	}).Counter(clientStatus).Inc(1)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, req.fail(span, res, req.res.statusError())
	}

	req.client.scope.Counter(clientSuccess).Inc(1)
	return req.res, nil
}

// fail completes ce with the request, runs it through the interceptors,
// then records the failure.
func (req *ClientHTTPRequest) fail(
	span opentracing.Span, res *http.Response, ce *groomer.ClientError,
) error {
	ce.Config = req.config
	ce.Request = req.request

	err := req.client.intercept(ce)

	req.client.scope.Counter(clientErrors).Inc(1)
	var logged *groomer.ClientError
	if errors.As(err, &logged) && logged.Groomed() {
		req.client.scope.Counter(clientGroomedErrors).Inc(1)
		req.Logger.Warn("Client request failed",
			zap.Object(logFieldClientError, logged),
			zap.String(logFieldRequestUUID, req.httpRequest.Header.Get(RequestUUIDHeader)),
		)
	} else {
		// ungroomed errors may carry credentials, only the message is logged
		req.Logger.Warn("Client request failed",
			zap.String("error", err.Error()),
			zap.String(logFieldRequestUUID, req.httpRequest.Header.Get(RequestUUIDHeader)),
		)
	}

	updateClientSpanWithError(span, res, err)
	return err
}

func (req *ClientHTTPRequest) startSpan(ctx context.Context) opentracing.Span {
	var parent opentracing.SpanContext
	if parentSpan := opentracing.SpanFromContext(ctx); parentSpan != nil {
		parent = parentSpan.Context()
	}

	u := *req.httpRequest.URL
	u.RawQuery = ""
	u.Fragment = ""

	span := req.client.Tracer.StartSpan(
		req.ClientID+"."+req.MethodName,
		opentracing.ChildOf(parent),
		ext.SpanKindRPCClient,
		tracingComponentTag,
	)
	ext.HTTPMethod.Set(span, req.httpRequest.Method)
	ext.HTTPUrl.Set(span, u.String())

	err := req.client.Tracer.Inject(
		span.Context(),
		opentracing.HTTPHeaders,
		opentracing.HTTPHeadersCarrier(req.httpRequest.Header),
	)
	if err != nil {
		req.Logger.Debug("Could not inject span context", zap.Error(err))
	}
	return span
}

// setXSRFHeader copies the XSRF cookie the jar holds for the request URL
// into the XSRF header.
func (req *ClientHTTPRequest) setXSRFHeader() {
	cookieName, headerName := req.client.XSRFCookieName, req.client.XSRFHeaderName
	if cookieName == "" || headerName == "" || req.client.Client.Jar == nil {
		return
	}
	for _, cookie := range req.client.Client.Jar.Cookies(req.httpRequest.URL) {
		if cookie.Name == cookieName {
			req.httpRequest.Header.Set(headerName, cookie.Value)
			req.config.Headers[headerName] = cookie.Value
			return
		}
	}
}

// combineURLs joins baseURL and rawURL with a single slash. Absolute
// rawURLs are returned as they are.
func combineURLs(baseURL, rawURL string) string {
	if baseURL == "" || absoluteURL.MatchString(rawURL) {
		return rawURL
	}
	if rawURL == "" {
		return baseURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(rawURL, "/")
}

func deleteFold(headers groomer.Headers, name string) {
	for k := range headers {
		if strings.EqualFold(k, name) {
			delete(headers, k)
		}
	}
}

// flattenHeaders joins repeated values with ", ". Names are lower-cased
// when lower is set.
func flattenHeaders(header http.Header, lower bool) groomer.Headers {
	flat := make(groomer.Headers, len(header))
	for name, values := range header {
		if lower {
			name = strings.ToLower(name)
		}
		flat[name] = strings.Join(values, ", ")
	}
	return flat
}

func hostOf(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Hostname()
}
