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
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/uber/errgroom/groomer"
)

// groomerConfig mirrors the "groomer.*" config keys.
type groomerConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	groomer.Policy `mapstructure:",squash"`
}

// NewGroomerFromConfig builds the Groomer described by the "groomer.*" keys
// of config. Missing keys keep groomer.DefaultPolicy. It returns nil when
// "groomer.enabled" is false.
func NewGroomerFromConfig(config *StaticConfig) (*groomer.Groomer, error) {
	decoded := groomerConfig{
		Enabled: true,
		Policy:  groomer.DefaultPolicy(),
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &decoded,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		/* coverage ignore next line */
		return nil, errors.Wrap(err, "could not build groomer config decoder")
	}
	if err := decoder.Decode(config.GetPrefix("groomer")); err != nil {
		return nil, errors.Wrap(err, "invalid groomer config")
	}

	if !decoded.Enabled {
		return nil, nil
	}
	return groomer.New(groomer.WithPolicy(decoded.Policy)), nil
}
