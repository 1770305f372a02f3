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
	"context"
	"net"
	"net/url"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/uber/errgroom/groomer"
)

// networkFailure names a transport failure the way node's net module does.
type networkFailure struct {
	code    string
	errno   int
	syscall string
	address string
	port    int
}

// newNetworkError builds the error for a request that got no response.
// The message reads like "getaddrinfo ENOTFOUND example.invalid" or
// "connect ECONNREFUSED 127.0.0.1:8080"; timeouts read
// "timeout of 1000ms exceeded".
func newNetworkError(err error, u *url.URL, timeout time.Duration) *groomer.ClientError {
	failure := classifyNetworkError(err, hostOf(u))

	var message string
	switch {
	case failure.code == "ECONNABORTED":
		message = "timeout of " + strconv.FormatInt(int64(timeout/time.Millisecond), 10) + "ms exceeded"
	case failure.syscall != "":
		message = failure.syscall + " " + failure.code + " " + failure.address
		if failure.port != 0 {
			message += ":" + strconv.Itoa(failure.port)
		}
	default:
		message = errors.Cause(unwrapURLError(err)).Error()
	}

	ce := groomer.NewClientError(message)
	ce.Code = failure.code
	ce.Errno = failure.errno
	ce.Syscall = failure.syscall
	ce.Address = failure.address
	ce.Port = failure.port
	ce.Cause = err
	return ce
}

func classifyNetworkError(err error, host string) networkFailure {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		address := dnsErr.Name
		if address == "" {
			address = host
		}
		return networkFailure{
			code:    "ENOTFOUND",
			errno:   errnoENOTFOUND,
			syscall: "getaddrinfo",
			address: address,
		}
	}

	address, port := host, 0
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Addr != nil {
		address, port = splitAddr(opErr.Addr.String())
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return networkFailure{
			code:    "ECONNREFUSED",
			errno:   errnoECONNREFUSED,
			syscall: "connect",
			address: address,
			port:    port,
		}
	case errors.Is(err, syscall.ECONNRESET):
		return networkFailure{
			code:    "ECONNRESET",
			errno:   errnoECONNRESET,
			syscall: "read",
			address: address,
			port:    port,
		}
	case errors.Is(err, syscall.ETIMEDOUT):
		return networkFailure{
			code:    "ETIMEDOUT",
			errno:   errnoETIMEDOUT,
			syscall: "connect",
			address: address,
			port:    port,
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return networkFailure{code: "ECONNABORTED"}
	}
	return networkFailure{}
}

func splitAddr(addr string) (string, int) {
	host, portString, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 0
	}
	port, _ := strconv.Atoi(portString)
	return host, port
}

// unwrapURLError drops the *url.Error layer, whose message repeats the URL.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
