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
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func opError(op, addr string, errno syscall.Errno) error {
	tcpAddr, _ := net.ResolveTCPAddr("tcp", addr)
	return &url.Error{
		Op:  "Get",
		URL: "http://" + addr,
		Err: &net.OpError{
			Op:   op,
			Net:  "tcp",
			Addr: tcpAddr,
			Err:  os.NewSyscallError(op, errno),
		},
	}
}

func TestNewNetworkError(t *testing.T) {
	u, _ := url.Parse("http://example.invalid:8080/x")

	tests := []struct {
		name    string
		err     error
		message string
		code    string
		errno   int
		syscall string
		address string
		port    int
	}{
		{
			name:    "dns",
			err:     &url.Error{Op: "Get", URL: u.String(), Err: &net.DNSError{Err: "no such host", Name: "example.invalid"}},
			message: "getaddrinfo ENOTFOUND example.invalid",
			code:    "ENOTFOUND",
			errno:   -3008,
			syscall: "getaddrinfo",
			address: "example.invalid",
		},
		{
			name:    "dns without name",
			err:     &net.DNSError{Err: "no such host"},
			message: "getaddrinfo ENOTFOUND example.invalid",
			code:    "ENOTFOUND",
			errno:   -3008,
			syscall: "getaddrinfo",
			address: "example.invalid",
		},
		{
			name:    "refused",
			err:     opError("dial", "127.0.0.1:9", syscall.ECONNREFUSED),
			message: "connect ECONNREFUSED 127.0.0.1:9",
			code:    "ECONNREFUSED",
			errno:   -111,
			syscall: "connect",
			address: "127.0.0.1",
			port:    9,
		},
		{
			name:    "reset",
			err:     opError("read", "127.0.0.1:80", syscall.ECONNRESET),
			message: "read ECONNRESET 127.0.0.1:80",
			code:    "ECONNRESET",
			errno:   -104,
			syscall: "read",
			address: "127.0.0.1",
			port:    80,
		},
		{
			name:    "connect timed out",
			err:     opError("dial", "10.0.0.1:443", syscall.ETIMEDOUT),
			message: "connect ETIMEDOUT 10.0.0.1:443",
			code:    "ETIMEDOUT",
			errno:   -110,
			syscall: "connect",
			address: "10.0.0.1",
			port:    443,
		},
		{
			name:    "deadline",
			err:     errors.Wrap(context.DeadlineExceeded, "waiting"),
			message: "timeout of 1500ms exceeded",
			code:    "ECONNABORTED",
		},
		{
			name:    "net timeout",
			err:     &url.Error{Op: "Get", URL: u.String(), Err: timeoutError{}},
			message: "timeout of 1500ms exceeded",
			code:    "ECONNABORTED",
		},
		{
			name:    "unknown",
			err:     &url.Error{Op: "Get", URL: u.String(), Err: errors.New("unsupported protocol scheme")},
			message: "unsupported protocol scheme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := newNetworkError(tt.err, u, 1500*time.Millisecond)
			assert.Equal(t, tt.message, ce.Message)
			assert.Equal(t, tt.code, ce.Code)
			assert.Equal(t, tt.errno, ce.Errno)
			assert.Equal(t, tt.syscall, ce.Syscall)
			assert.Equal(t, tt.address, ce.Address)
			assert.Equal(t, tt.port, ce.Port)
			assert.Equal(t, tt.err, ce.Cause)
			assert.Nil(t, ce.Response)
		})
	}
}

func TestCombineURLs(t *testing.T) {
	tests := []struct {
		base, raw, want string
	}{
		{"http://a.com", "/x", "http://a.com/x"},
		{"http://a.com/", "x", "http://a.com/x"},
		{"http://a.com//", "//b.com/y", "//b.com/y"},
		{"http://a.com", "https://b.com/y", "https://b.com/y"},
		{"http://a.com/api", "", "http://a.com/api"},
		{"", "/x", "/x"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, combineURLs(tt.base, tt.raw), "%q + %q", tt.base, tt.raw)
	}
}

func TestFlattenHeaders(t *testing.T) {
	header := map[string][]string{
		"Set-Cookie":   {"a=1", "b=2"},
		"Content-Type": {"application/json"},
	}

	assert.Equal(t, map[string]string{
		"set-cookie":   "a=1, b=2",
		"content-type": "application/json",
	}, map[string]string(flattenHeaders(header, true)))
	assert.Equal(t, "a=1, b=2", flattenHeaders(header, false)["Set-Cookie"])
}
