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
	"encoding/json"
	"strconv"
	"time"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
)

// DecodeError parses an error document in the shape MarshalJSON writes.
// Documents with a "config" or "request" member decode to *ClientError,
// other objects to *Error. Unknown members land in Extra or Fields.
func DecodeError(data []byte) (error, error) {
	return decodeError(data, 0)
}

func decodeError(data []byte, depth int) (error, error) {
	if depth > maxDepth {
		return nil, errors.Errorf("error document nested deeper than %d", maxDepth)
	}

	_, _, _, configErr := jsonparser.Get(data, "config")
	_, _, _, requestErr := jsonparser.Get(data, "request")
	if configErr == nil || requestErr == nil {
		return decodeClientError(data, depth)
	}
	return decodeWrapError(data, depth)
}

func decodeClientError(data []byte, depth int) (*ClientError, error) {
	ce := &ClientError{}
	err := jsonparser.ObjectEach(data, func(
		key []byte, value []byte, dataType jsonparser.ValueType, offset int,
	) error {
		var err error
		switch string(key) {
		case "message":
			ce.Message, err = parseString(value, dataType)
		case "config":
			ce.Config, err = decodeConfig(value, dataType)
		case "request":
			ce.Request, err = decodeRequest(value, dataType)
		case "response":
			ce.Response, err = decodeResponse(value, dataType)
		case "errno":
			ce.Errno, err = parseInt(value, dataType)
		case "code":
			ce.Code, err = parseString(value, dataType)
		case "syscall":
			ce.Syscall, err = parseString(value, dataType)
		case "address":
			ce.Address, err = parseString(value, dataType)
		case "port":
			ce.Port, err = parseInt(value, dataType)
		case "cause":
			ce.Cause, err = decodeCause(value, dataType, depth)
		default:
			if ce.Extra == nil {
				ce.Extra = map[string]interface{}{}
			}
			ce.Extra[string(key)], err = parseAny(value, dataType)
		}
		return errors.Wrapf(err, "could not decode %q", key)
	})
	if err != nil {
		return nil, err
	}
	return ce, nil
}

func decodeWrapError(data []byte, depth int) (*Error, error) {
	e := &Error{}
	err := jsonparser.ObjectEach(data, func(
		key []byte, value []byte, dataType jsonparser.ValueType, offset int,
	) error {
		var err error
		switch string(key) {
		case "message":
			e.Message, err = parseString(value, dataType)
		case "cause":
			e.Cause, err = decodeCause(value, dataType, depth)
		case "errors":
			e.Errors, err = decodeJoined(value, dataType, depth)
		case "fields":
			var fields interface{}
			fields, err = parseAny(value, dataType)
			if m, ok := fields.(map[string]interface{}); ok {
				e.Fields = m
			}
		default:
			if e.Fields == nil {
				e.Fields = map[string]interface{}{}
			}
			e.Fields[string(key)], err = parseAny(value, dataType)
		}
		return errors.Wrapf(err, "could not decode %q", key)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func decodeCause(value []byte, dataType jsonparser.ValueType, depth int) (error, error) {
	switch dataType {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.String:
		msg, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, err
		}
		return &Error{Message: msg}, nil
	case jsonparser.Object:
		return decodeError(value, depth+1)
	}
	return nil, errors.Errorf("cause must be an object or a string, got %s", dataType)
}

func decodeJoined(value []byte, dataType jsonparser.ValueType, depth int) ([]error, error) {
	if dataType == jsonparser.Null {
		return nil, nil
	}
	if dataType != jsonparser.Array {
		return nil, errors.Errorf("errors must be an array, got %s", dataType)
	}

	var joined []error
	var firstErr error
	_, err := jsonparser.ArrayEach(value, func(
		elem []byte, elemType jsonparser.ValueType, offset int, _ error,
	) {
		if firstErr != nil {
			return
		}
		cause, err := decodeCause(elem, elemType, depth)
		if err != nil {
			firstErr = err
			return
		}
		if cause != nil {
			joined = append(joined, cause)
		}
	})
	if err != nil {
		return nil, err
	}
	return joined, firstErr
}

func decodeConfig(value []byte, dataType jsonparser.ValueType) (*RequestConfig, error) {
	if dataType == jsonparser.Null {
		return nil, nil
	}

	c := &RequestConfig{}
	err := jsonparser.ObjectEach(value, func(
		key []byte, value []byte, dataType jsonparser.ValueType, offset int,
	) error {
		var err error
		switch string(key) {
		case "baseURL":
			c.BaseURL, err = parseString(value, dataType)
		case "url":
			c.URL, err = parseString(value, dataType)
		case "method":
			c.Method, err = parseString(value, dataType)
		case "headers":
			c.Headers, err = decodeHeaders(value, dataType)
		case "data":
			c.Data, err = parseAny(value, dataType)
		case "timeout":
			var ms int
			ms, err = parseInt(value, dataType)
			c.Timeout = time.Duration(ms) * time.Millisecond
		case "xsrfCookieName":
			c.XSRFCookieName, err = parseString(value, dataType)
		case "xsrfHeaderName":
			c.XSRFHeaderName, err = parseString(value, dataType)
		case "maxContentLength":
			var n int
			n, err = parseInt(value, dataType)
			c.MaxContentLength = int64(n)
		case "auth":
			if dataType == jsonparser.Object {
				c.Auth = &BasicAuth{}
				c.Auth.Username, _ = jsonparser.GetString(value, "username")
				c.Auth.Password, _ = jsonparser.GetString(value, "password")
			}
		default:
			if c.Extra == nil {
				c.Extra = map[string]interface{}{}
			}
			c.Extra[string(key)], err = parseAny(value, dataType)
		}
		return errors.Wrapf(err, "could not decode config %q", key)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func decodeRequest(value []byte, dataType jsonparser.ValueType) (*Request, error) {
	if dataType == jsonparser.Null {
		return nil, nil
	}

	r := &Request{}
	err := jsonparser.ObjectEach(value, func(
		key []byte, value []byte, dataType jsonparser.ValueType, offset int,
	) error {
		var err error
		switch string(key) {
		case "method":
			r.Method, err = parseString(value, dataType)
		case "path":
			r.Path, err = parseString(value, dataType)
		case "headers":
			r.Headers, err = decodeHeaders(value, dataType)
		case "data":
			r.Data, err = parseAny(value, dataType)
		default:
			if r.Extra == nil {
				r.Extra = map[string]interface{}{}
			}
			r.Extra[string(key)], err = parseAny(value, dataType)
		}
		return errors.Wrapf(err, "could not decode request %q", key)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func decodeResponse(value []byte, dataType jsonparser.ValueType) (*Response, error) {
	if dataType == jsonparser.Null {
		return nil, nil
	}

	r := &Response{}
	err := jsonparser.ObjectEach(value, func(
		key []byte, value []byte, dataType jsonparser.ValueType, offset int,
	) error {
		var err error
		switch string(key) {
		case "status":
			r.Status, err = parseInt(value, dataType)
		case "statusText":
			r.StatusText, err = parseString(value, dataType)
		case "headers":
			r.Headers, err = decodeHeaders(value, dataType)
		case "data":
			r.Data, err = parseAny(value, dataType)
		default:
			if r.Extra == nil {
				r.Extra = map[string]interface{}{}
			}
			r.Extra[string(key)], err = parseAny(value, dataType)
		}
		return errors.Wrapf(err, "could not decode response %q", key)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// decodeHeaders keeps header names as written. Non-string values keep
// their JSON text.
func decodeHeaders(value []byte, dataType jsonparser.ValueType) (Headers, error) {
	if dataType == jsonparser.Null {
		return nil, nil
	}

	headers := Headers{}
	err := jsonparser.ObjectEach(value, func(
		key []byte, value []byte, dataType jsonparser.ValueType, offset int,
	) error {
		switch dataType {
		case jsonparser.Null:
			return nil
		case jsonparser.String:
			s, err := jsonparser.ParseString(value)
			if err != nil {
				return err
			}
			headers[string(key)] = s
		default:
			headers[string(key)] = string(value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return headers, nil
}

func parseString(value []byte, dataType jsonparser.ValueType) (string, error) {
	switch dataType {
	case jsonparser.Null:
		return "", nil
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Number, jsonparser.Boolean:
		return string(value), nil
	}
	return "", errors.Errorf("expected a string, got %s", dataType)
}

func parseInt(value []byte, dataType jsonparser.ValueType) (int, error) {
	switch dataType {
	case jsonparser.Null:
		return 0, nil
	case jsonparser.Number:
		n, err := jsonparser.ParseInt(value)
		return int(n), err
	case jsonparser.String:
		return strconv.Atoi(string(value))
	}
	return 0, errors.Errorf("expected a number, got %s", dataType)
}

func parseAny(value []byte, dataType jsonparser.ValueType) (interface{}, error) {
	switch dataType {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.String:
		return jsonparser.ParseString(value)
	}
	var v interface{}
	if err := json.Unmarshal(value, &v); err != nil {
		return nil, err
	}
	return v, nil
}
