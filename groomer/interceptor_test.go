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

package groomer_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/errgroom/groomer"
)

func TestInterceptorConfig(t *testing.T) {
	cfg := &groomer.InterceptorConfig{}
	assert.Nil(t, cfg.Groomer())

	ce := newClientError()
	assert.Same(t, ce, cfg.Intercept(ce), "no groomer installed")
	assert.Nil(t, cfg.Intercept(nil))

	g := groomer.New(groomer.IncludeResponseData(false))
	cfg.SetGroomer(g)
	assert.Same(t, g, cfg.Groomer())

	groomed := groomedClientError(t, cfg.Intercept(ce))
	assert.Equal(t, groomer.Redacted, groomed.Response.Data)

	cfg.SetGroomer(nil)
	assert.Same(t, ce, cfg.Intercept(ce))
}

func TestNewErrorInterceptor(t *testing.T) {
	previous := groomer.SharedInterceptorConfig.Groomer()
	defer groomer.SharedInterceptorConfig.SetGroomer(previous)

	intercept := groomer.NewErrorInterceptor(nil)
	require.NotNil(t, groomer.SharedInterceptorConfig.Groomer())
	assert.Equal(t, groomer.DefaultPolicy(), groomer.SharedInterceptorConfig.Groomer().Policy())

	out := intercept(fmt.Errorf("calling backend: %w", newClientError()))
	groomed := groomedClientError(t, out)
	assert.Equal(t, "http://localhost:8080", groomed.Config.BaseURL)

	// a later reconfiguration is picked up by interceptors already built
	groomer.SharedInterceptorConfig.SetGroomer(groomer.New(groomer.IncludeQueryData(false)))
	groomed = groomedClientError(t, intercept(newClientError()))
	assert.Equal(t, "/errorPost?[REDACTED]", groomed.Config.URL)

	plain := errors.New("plain")
	assert.Same(t, plain, intercept(plain))
}

func TestInterceptConcurrently(t *testing.T) {
	cfg := &groomer.InterceptorConfig{}
	cfg.SetGroomer(groomer.New())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				cfg.SetGroomer(groomer.New(groomer.IncludeRequestData(false)))
			}
			out := cfg.Intercept(newClientError())
			var ce *groomer.ClientError
			if assert.True(t, errors.As(out, &ce)) {
				assert.True(t, ce.Groomed())
				assert.Equal(t, "http://localhost:8080", ce.Config.BaseURL)
			}
		}(i)
	}
	wg.Wait()
}
