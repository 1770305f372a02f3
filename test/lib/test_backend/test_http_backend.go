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

package testbackend

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
)

// XSRFCookieName is the cookie /xsrf sets.
const XSRFCookieName = "XSRF-TOKEN"

// TestHTTPBackend will pretend to be a http backend
type TestHTTPBackend struct {
	Server    *http.Server
	IP        string
	RealPort  int32
	RealAddr  string
	WaitGroup *sync.WaitGroup
	router    *httprouter.Router
	listener  net.Listener
}

// CreateHTTPBackend creates a backend serving the default routes:
//
//	GET  /happyGet     200 {"foo":"Hello World!"}
//	POST /errorPost    500 json error body, with cookies
//	GET  /errorGet     500 text body
//	GET  /xsrf         200, sets the XSRF-TOKEN cookie
//	*    /echoHeaders  200, the request headers as json
//
// Everything else answers 404.
func CreateHTTPBackend() *TestHTTPBackend {
	backend := &TestHTTPBackend{
		IP:        "127.0.0.1",
		WaitGroup: &sync.WaitGroup{},
		router: &httprouter.Router{
			HandleMethodNotAllowed: true,
		},
	}
	backend.Server = &http.Server{Handler: backend.router}

	backend.router.GET("/happyGet", happyGet)
	backend.router.POST("/errorPost", errorPost)
	backend.router.GET("/errorGet", errorGet)
	backend.router.GET("/xsrf", xsrf)
	backend.router.GET("/echoHeaders", echoHeaders)
	backend.router.POST("/echoHeaders", echoHeaders)

	return backend
}

// Bootstrap listens on a free port and serves in the background.
func (backend *TestHTTPBackend) Bootstrap() error {
	listener, err := net.Listen("tcp", backend.IP+":0")
	if err != nil {
		return errors.Wrap(err, "could not listen")
	}
	backend.listener = listener
	backend.RealAddr = listener.Addr().String()
	backend.RealPort = int32(listener.Addr().(*net.TCPAddr).Port)

	backend.WaitGroup.Add(1)
	go func() {
		defer backend.WaitGroup.Done()
		_ = backend.Server.Serve(listener)
	}()
	return nil
}

// URL returns the base url of the backend.
func (backend *TestHTTPBackend) URL() string {
	return "http://" + backend.IP + ":" + strconv.Itoa(int(backend.RealPort))
}

// HandleFunc registers funcs
func (backend *TestHTTPBackend) HandleFunc(
	method string, path string, handler http.HandlerFunc,
) {
	backend.router.HandlerFunc(method, path, handler)
}

// Close stops serving and waits for the server to exit.
func (backend *TestHTTPBackend) Close() {
	_ = backend.Server.Close()
	backend.WaitGroup.Wait()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func happyGet(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"foo": "Hello World!"})
}

func errorPost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.SetCookie(w, &http.Cookie{Name: "sid", Value: "secret-session"})
	w.Header().Set("X-Newrelic-App-Data", "newrelic-secret")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "test"})
}

func errorGet(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Error(w, "Error: test", http.StatusInternalServerError)
}

func xsrf(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.SetCookie(w, &http.Cookie{Name: XSRFCookieName, Value: "xsrf-token-value", Path: "/"})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func echoHeaders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	headers := make(map[string]string, len(r.Header))
	for name := range r.Header {
		headers[name] = r.Header.Get(name)
	}
	writeJSON(w, http.StatusOK, headers)
}
