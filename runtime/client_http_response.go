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
	"io"
	"io/ioutil"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/uber/errgroom/groomer"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ClientHTTPResponse is the struct managing the client response
// when making outbound http calls.
type ClientHTTPResponse struct {
	req              *ClientHTTPRequest
	finishTime       time.Time
	finished         bool
	rawResponse      *http.Response
	rawResponseBytes []byte
	bodyRead         bool

	StatusCode int
	Header     http.Header
}

// NewClientHTTPResponse allocates a client http response object
// to track http response.
func NewClientHTTPResponse(
	req *ClientHTTPRequest,
) *ClientHTTPResponse {
	return &ClientHTTPResponse{
		req: req,
	}
}

func (res *ClientHTTPResponse) setRawHTTPResponse(httpRes *http.Response) {
	res.rawResponse = httpRes
	res.StatusCode = httpRes.StatusCode
	res.Header = httpRes.Header
}

// ReadAll reads the response body once and closes it. Bodies longer than
// the client's MaxContentLength are rejected.
func (res *ClientHTTPResponse) ReadAll() ([]byte, error) {
	if res.bodyRead {
		return res.rawResponseBytes, nil
	}
	res.bodyRead = true
	defer res.finish()

	body := io.Reader(res.rawResponse.Body)
	limit := res.req.client.MaxContentLength
	if limit > 0 {
		body = io.LimitReader(body, limit+1)
	}

	rawBody, err := ioutil.ReadAll(body)
	if err == nil && limit > 0 && int64(len(rawBody)) > limit {
		err = errors.Errorf("maxContentLength size of %d exceeded", limit)
	}
	err = multierr.Append(err, res.rawResponse.Body.Close())
	if err != nil {
		res.req.client.scope.Counter(clientReadBodyErrors).Inc(1)
		res.req.Logger.Warn("Could not read client response body",
			zap.Error(err),
		)
		return nil, errors.Wrapf(
			err,
			"Could not read client(%s) response body",
			res.req.ClientID,
		)
	}

	res.rawResponseBytes = rawBody
	return rawBody, nil
}

// GetRawBody returns the body as byte array if it has been read.
func (res *ClientHTTPResponse) GetRawBody() []byte {
	return res.rawResponseBytes
}

// ReadAndUnmarshalBody reads the body and unmarshals it into v.
func (res *ClientHTTPResponse) ReadAndUnmarshalBody(v interface{}) error {
	rawBody, err := res.ReadAll()
	if err != nil {
		return err
	}

	err = res.req.client.JSONWrapper.Unmarshal(rawBody, v)
	if err != nil {
		res.req.Logger.Warn("Could not parse client json",
			zap.Error(err),
		)
		return errors.Wrapf(
			err,
			"Could not parse client %q json",
			res.req.ClientID,
		)
	}

	return nil
}

// CheckOKResponse logs a warning when the status code is not one of
// okResponses.
func (res *ClientHTTPResponse) CheckOKResponse(okResponses []int) {
	for _, okResponse := range okResponses {
		if res.rawResponse.StatusCode == okResponse {
			return
		}
	}

	res.req.Logger.Warn("Unknown response status code",
		zap.Int("status code", res.rawResponse.StatusCode),
	)
}

// statusError builds the error for a response outside 2xx. The body is
// decoded when it is json and kept as text otherwise.
func (res *ClientHTTPResponse) statusError() *groomer.ClientError {
	ce := groomer.NewClientError(
		"Request failed with status code " + strconv.Itoa(res.StatusCode),
	)
	ce.Response = &groomer.Response{
		Status:     res.StatusCode,
		StatusText: statusText(res.rawResponse),
		Headers:    flattenHeaders(res.Header, true),
	}

	rawBody, err := res.ReadAll()
	if err != nil {
		ce.Cause = err
		return ce
	}
	ce.Response.Data = res.decodeData(rawBody)
	return ce
}

func (res *ClientHTTPResponse) decodeData(rawBody []byte) interface{} {
	if noContentStatusCodes[res.StatusCode] || len(rawBody) == 0 {
		return ""
	}
	mediaType, _, _ := mime.ParseMediaType(res.Header.Get(contentTypeHeader))
	if mediaType == jsonContentType || strings.HasSuffix(mediaType, "+json") {
		var data interface{}
		if err := res.req.client.JSONWrapper.Unmarshal(rawBody, &data); err == nil {
			return data
		}
	}
	return string(rawBody)
}

func (res *ClientHTTPResponse) finish() {
	if res.finished {
		/* coverage ignore next line */
		return
	}
	res.finished = true
	res.finishTime = time.Now()
}

// statusText is the reason phrase the server sent, or the standard one.
func statusText(res *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)))
	if text == "" {
		return http.StatusText(res.StatusCode)
	}
	return text
}

func statusTag(code int) string {
	return strconv.Itoa(code)
}
