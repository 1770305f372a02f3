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

package jsonwrapper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/errgroom/groomer"
	"github.com/uber/errgroom/runtime/jsonwrapper"
)

func TestDefaultJSONWrapper(t *testing.T) {
	w := jsonwrapper.NewDefaultJSONWrapper()

	raw, err := w.Marshal(map[string]bool{"some": true})
	require.NoError(t, err)
	assert.Equal(t, `{"some":true}`, string(raw))

	var out map[string]interface{}
	require.NoError(t, w.Unmarshal([]byte(`{"a":[1,"b"]}`), &out))
	assert.Equal(t, map[string]interface{}{"a": []interface{}{float64(1), "b"}}, out)

	assert.Error(t, w.Unmarshal([]byte(`{`), &out))
}

func TestDefaultJSONWrapperEasyJSON(t *testing.T) {
	w := jsonwrapper.NewDefaultJSONWrapper()

	raw, err := w.Marshal(&groomer.Error{Message: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"boom"}`, string(raw))
}
