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

package config

import (
	// embeds production.yaml
	_ "embed"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	errgroom "github.com/uber/errgroom/runtime"
)

//go:embed production.yaml
var productionYAML []byte

// EnvConfig map from environment variable to config key and data type
type EnvConfig map[string]struct {
	Key      string `json:"key"`
	DataType string `json:"dataType"`
}

// NewRuntimeConfigOrDie returns a static config struct
// that is pre-set with the service configuration defaults
// and overridden by service.env.config
//
// files may be json or yaml; missing files are skipped.
func NewRuntimeConfigOrDie(
	files []string,
	seedConfig map[string]interface{},
) *errgroom.StaticConfig {
	defaultConfig, err := yamlConfig(productionYAML)
	if err != nil {
		panic(errors.Wrap(err, "error getting default config"))
	}

	serviceConfig := []*errgroom.ConfigOption{defaultConfig}
	for _, configFilePath := range files {
		option, err := fileConfig(configFilePath)
		if err != nil {
			panic(err)
		}
		if option != nil {
			serviceConfig = append(serviceConfig, option)
		}
	}

	staticConfig := errgroom.NewStaticConfigOrDie(serviceConfig, seedConfig)
	getEnvConfig(staticConfig)

	return staticConfig
}

func fileConfig(path string) (*errgroom.ConfigOption, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return errgroom.ConfigFilePath(path), nil
	}

	bytes, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read config file %s", path)
	}
	option, err := yamlConfig(bytes)
	return option, errors.Wrapf(err, "invalid config file %s", path)
}

func yamlConfig(bytes []byte) (*errgroom.ConfigOption, error) {
	jsonBytes, err := yaml.YAMLToJSON(bytes)
	if err != nil {
		return nil, err
	}
	return errgroom.ConfigFileContents(jsonBytes), nil
}

func getEnvConfig(cfg *errgroom.StaticConfig) {
	if !cfg.ContainsKey("service.env.config") {
		return
	}
	var envConfig EnvConfig
	cfg.MustGetStruct("service.env.config", &envConfig)
	for envVar, configKey := range envConfig {
		if value, ok := os.LookupEnv(envVar); ok {
			cfg.SetConfigValueOrDie(configKey.Key, []byte(value), configKey.DataType)
		}
	}
}
