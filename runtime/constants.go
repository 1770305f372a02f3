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
)

const (
	clientRequest        = "client.request"
	clientSuccess        = "client.success"
	clientStatus         = "client.status"
	clientErrors         = "client.errors"
	clientGroomedErrors  = "client.errors.groomed"
	clientNetworkErrors  = "client.network-errors"
	clientLatency        = "client.latency"
	clientReadBodyErrors = "client.read-body-errors"

	// RequestUUIDHeader carries the id of an outbound request.
	RequestUUIDHeader = "X-Request-Uuid"

	logFieldClientID     = "clientID"
	logFieldClientMethod = "clientMethod"
	logFieldClientError  = "clientError"
	logFieldRequestUUID  = "requestUUID"

	contentTypeHeader = "Content-Type"
	acceptHeader      = "Accept"
	jsonContentType   = "application/json"
	defaultAccept     = "application/json, text/plain, */*"
)

// Errno values reported for network failures, as the libuv names them.
const (
	errnoENOTFOUND    = -3008
	errnoECONNREFUSED = -111
	errnoECONNRESET   = -104
	errnoETIMEDOUT    = -110
)

var noContentStatusCodes = map[int]bool{
	http.StatusNoContent:   true, // 204
	http.StatusNotModified: true, // 304
}
