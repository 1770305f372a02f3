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

package main

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	runtimeconfig "github.com/uber/errgroom/config"
	"github.com/uber/errgroom/groomer"
	"github.com/uber/errgroom/parallelize"
	errgroom "github.com/uber/errgroom/runtime"
	"go.uber.org/config"
	"go.uber.org/multierr"
	validator "gopkg.in/validator.v2"
)

// groomOptions is the yaml options file of the groom command.
type groomOptions struct {
	Groomer groomer.Policy `yaml:"groomer"`
	// Indent pretty prints documents when set.
	Indent string `yaml:"indent" validate:"regexp=^[ \t]*$"`
	// MaxInputBytes rejects larger documents; zero means no limit.
	MaxInputBytes int64 `yaml:"maxInputBytes" validate:"min=0"`
}

type groomCommand struct {
	RuntimeConfig  []string `long:"runtime-config" description:"runtime config file layered over the defaults" value-name:"FILE"`
	Config         string   `long:"config" short:"c" description:"yaml options file" value-name:"FILE"`
	NoRequestData  bool     `long:"no-request-data" description:"redact request bodies"`
	NoResponseData bool     `long:"no-response-data" description:"redact response bodies"`
	NoQueryData    bool     `long:"no-query-data" description:"redact url query strings"`

	Args struct {
		Files []string `positional-arg-name:"FILE"`
	} `positional-args:"yes"`

	stdin  io.Reader
	stdout io.Writer
}

// runtimeGroomer reads the "groomer.*" keys of the embedded defaults, files
// and ERRGROOM_* environment overrides. It returns nil when
// "groomer.enabled" is false.
func runtimeGroomer(files []string) (g *groomer.Groomer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("invalid runtime config: %v", r)
		}
	}()
	return errgroom.NewGroomerFromConfig(runtimeconfig.NewRuntimeConfigOrDie(files, nil))
}

func loadGroomOptions(path string, base groomer.Policy) (*groomOptions, error) {
	opts := &groomOptions{Groomer: base}
	if path == "" {
		return opts, nil
	}

	provider, err := config.NewYAML(config.File(path))
	if err != nil {
		return nil, errors.Wrapf(err, "can not read config %q", path)
	}
	if err := provider.Get(config.Root).Populate(opts); err != nil {
		return nil, errors.Wrapf(err, "can not parse config %q", path)
	}
	if err := validator.Validate(opts); err != nil {
		return nil, errors.Wrapf(err, "config %q validation failed", path)
	}
	return opts, nil
}

// Execute implements flags.Commander. The policy is layered: runtime config,
// then the options file, then flags. With grooming disabled in the runtime
// config documents are written back as they were decoded.
func (c *groomCommand) Execute(args []string) error {
	base, err := runtimeGroomer(c.RuntimeConfig)
	if err != nil {
		return err
	}
	basePolicy := groomer.DefaultPolicy()
	if base != nil {
		basePolicy = base.Policy()
	}

	opts, err := loadGroomOptions(c.Config, basePolicy)
	if err != nil {
		return err
	}

	policy := opts.Groomer
	if c.NoRequestData {
		policy.IncludeRequestData = false
	}
	if c.NoResponseData {
		policy.IncludeResponseData = false
	}
	if c.NoQueryData {
		policy.IncludeQueryData = false
	}
	var g *groomer.Groomer
	if base != nil {
		g = groomer.New(groomer.WithPolicy(policy))
	}

	files := c.Args.Files
	if len(files) == 0 {
		files = []string{"-"}
	}

	runner := parallelize.NewFixedBoundedRunner(len(files), true)
	for _, name := range files {
		runner.SubmitWork(&parallelize.SingleParamWork{
			Data: name,
			Func: func(data interface{}) (interface{}, error) {
				return c.groomFile(g, opts, data.(string))
			},
		})
	}

	// documents are written in argument order, failures are collected
	var errs error
	for i, res := range runner.GetResults() {
		if res.Err != nil {
			errs = multierr.Append(errs, errors.Wrapf(res.Err, "%s", files[i]))
			continue
		}
		if _, err := c.stdout.Write(res.Data.([]byte)); err != nil {
			return errors.Wrap(err, "could not write groomed document")
		}
	}
	return errs
}

func (c *groomCommand) groomFile(g *groomer.Groomer, opts *groomOptions, name string) ([]byte, error) {
	raw, err := c.read(name, opts.MaxInputBytes)
	if err != nil {
		return nil, err
	}

	decoded, err := groomer.DecodeError(raw)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode error document")
	}

	groomed := decoded
	if g != nil {
		groomed = g.GroomAll(decoded)
	}
	var out []byte
	if opts.Indent != "" {
		out, err = json.MarshalIndent(groomed, "", opts.Indent)
	} else {
		out, err = json.Marshal(groomed)
	}
	if err != nil {
		/* coverage ignore next line */
		return nil, errors.Wrap(err, "could not encode groomed document")
	}
	return append(out, '\n'), nil
}

func (c *groomCommand) read(name string, limit int64) ([]byte, error) {
	var r io.Reader = c.stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}

	raw, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(raw)) > limit {
		return nil, errors.Errorf("document larger than %d bytes", limit)
	}
	return raw, nil
}

type schemaCommand struct {
	stdout io.Writer
}

// Execute implements flags.Commander.
func (c *schemaCommand) Execute(args []string) error {
	raw, err := groomer.JSONSchema().Marshal()
	if err != nil {
		/* coverage ignore next line */
		return errors.Wrap(err, "could not encode schema")
	}
	_, err = c.stdout.Write(append(raw, '\n'))
	return err
}
