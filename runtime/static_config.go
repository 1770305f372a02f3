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
	"encoding/json"
	"io/ioutil"
	"os"
	"reflect"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
)

type configType int

const (
	filePathConfigType     configType = 1
	fileContentsConfigType configType = 2
)

// StaticConfigValue is the raw json of one config key.
type StaticConfigValue struct {
	bytes    []byte
	dataType jsonparser.ValueType
}

// StaticConfig allows accessing values out of flat json config files
type StaticConfig struct {
	seedConfig    map[string]interface{}
	configOptions []*ConfigOption
	configValues  map[string]StaticConfigValue
	frozen        bool
	destroyed     bool
}

// ConfigOption is either the contents of a json config file or its path.
type ConfigOption struct {
	configType configType
	bytes      []byte
}

// ConfigFilePath creates a ConfigOption read from path. Missing files are
// skipped.
func ConfigFilePath(path string) *ConfigOption {
	return &ConfigOption{
		configType: filePathConfigType,
		bytes:      []byte(path),
	}
}

// ConfigFileContents creates a ConfigOption holding the file contents
func ConfigFileContents(fileBytes []byte) *ConfigOption {
	return &ConfigOption{
		configType: fileContentsConfigType,
		bytes:      fileBytes,
	}
}

// NewStaticConfigOrDie allocates a static config instance.
//
// Each option must hold a flat json object; keys of later options replace
// keys of earlier ones. Keys are namespaced with dots:
//
//	{
//	    "logger.level": "info",
//	    "groomer.includeQueryData": false,
//	    "client.timeout": 1000
//	}
//
// seedConfig values take precedence over every option.
func NewStaticConfigOrDie(
	configOptions []*ConfigOption,
	seedConfig map[string]interface{},
) *StaticConfig {
	config := &StaticConfig{
		configOptions: configOptions,
		seedConfig:    make(map[string]interface{}, len(seedConfig)),
		configValues:  map[string]StaticConfigValue{},
	}

	for key, value := range seedConfig {
		config.seedConfig[key] = value
	}

	for _, option := range configOptions {
		for key, value := range parseConfigOption(option) {
			config.configValues[key] = value
		}
	}

	return config
}

// lookup returns the seed value of key, or its raw json checked against
// want. It panics when the key is missing or has another json type.
func (conf *StaticConfig) lookup(
	key string, want jsonparser.ValueType,
) (seed interface{}, raw []byte, seeded bool) {
	if conf.destroyed {
		panic(errors.Errorf("Cannot get(%s) because destroyed", key))
	}

	if value, contains := conf.seedConfig[key]; contains {
		return value, nil, true
	}

	value, contains := conf.configValues[key]
	if !contains {
		panic(errors.Errorf("Key (%s) not available", key))
	}
	if want != jsonparser.Unknown && value.dataType != want {
		panic(errors.Errorf(
			"Key (%s) is not a %s: %s", key, want, string(value.bytes),
		))
	}
	return nil, value.bytes, false
}

// MustGetBoolean returns the value as a boolean or panics.
func (conf *StaticConfig) MustGetBoolean(key string) bool {
	seed, raw, seeded := conf.lookup(key, jsonparser.Boolean)
	if seeded {
		return seed.(bool)
	}
	v, err := jsonparser.ParseBoolean(raw)
	if err != nil {
		/* coverage ignore next line */
		panic(errors.Wrapf(err, "Key (%s) is wrong type: ", key))
	}
	return v
}

// MustGetFloat returns the value as a float or panics.
func (conf *StaticConfig) MustGetFloat(key string) float64 {
	seed, raw, seeded := conf.lookup(key, jsonparser.Number)
	if seeded {
		return seed.(float64)
	}
	v, err := jsonparser.ParseFloat(raw)
	if err != nil {
		/* coverage ignore next line */
		panic(errors.Wrapf(err, "Key (%s) is wrong type: ", key))
	}
	return v
}

// MustGetInt returns the value as a int or panics.
func (conf *StaticConfig) MustGetInt(key string) int64 {
	seed, raw, seeded := conf.lookup(key, jsonparser.Number)
	if seeded {
		return seed.(int64)
	}
	v, err := jsonparser.ParseInt(raw)
	if err != nil {
		panic(errors.Wrapf(err, "Key (%s) is wrong type: ", key))
	}
	return v
}

// MustGetString returns the value as a string or panics.
func (conf *StaticConfig) MustGetString(key string) string {
	seed, raw, seeded := conf.lookup(key, jsonparser.String)
	if seeded {
		return seed.(string)
	}
	v, err := jsonparser.ParseString(raw)
	if err != nil {
		/* coverage ignore next line */
		panic(errors.Wrapf(err, "Key (%s) is wrong type: ", key))
	}
	return v
}

// MustGetStruct reads the value into ptr with json.Unmarshal or panics.
// Seed values are assigned to the pointee as they are.
func (conf *StaticConfig) MustGetStruct(key string, ptr interface{}) {
	seed, raw, seeded := conf.lookup(key, jsonparser.Unknown)
	if seeded {
		rptr := reflect.ValueOf(ptr)
		if rptr.Kind() != reflect.Ptr || rptr.IsNil() {
			panic(errors.Errorf("Cannot GetStruct (%s) into nil ptr", key))
		}
		rptr.Elem().Set(reflect.ValueOf(seed))
		return
	}
	if err := json.Unmarshal(raw, ptr); err != nil {
		panic(errors.Wrapf(err, "Key (%s) is wrong type: ", key))
	}
}

// ContainsKey reports whether key has a value.
func (conf *StaticConfig) ContainsKey(key string) bool {
	if conf.destroyed {
		panic(errors.Errorf("Cannot ContainsKey(%s) because destroyed", key))
	}
	if _, contains := conf.seedConfig[key]; contains {
		return true
	}
	_, contains := conf.configValues[key]
	return contains
}

// GetPrefix returns the values of every key starting with prefix followed
// by a dot, keyed by the rest of the key. {"groomer.includeQueryData": false}
// is returned as {"includeQueryData": false} for the prefix "groomer".
func (conf *StaticConfig) GetPrefix(prefix string) map[string]interface{} {
	prefix += "."
	result := map[string]interface{}{}
	for key, value := range conf.InspectOrDie() {
		if strings.HasPrefix(key, prefix) {
			result[strings.TrimPrefix(key, prefix)] = value
		}
	}
	return result
}

// SetConfigValueOrDie sets the static config value.
// dataType can be a boolean, number or string.
// SetConfigValueOrDie will panic if the config is frozen.
func (conf *StaticConfig) SetConfigValueOrDie(key string, bytes []byte, dataType string) {
	if conf.frozen {
		panic(errors.Errorf("Cannot set(%s) because frozen", key))
	}

	var dt jsonparser.ValueType
	switch dataType {
	case "boolean":
		dt = jsonparser.Boolean
	case "number":
		dt = jsonparser.Number
	case "string":
		dt = jsonparser.String
	default:
		panic(errors.Errorf("unknown config data type %q", dataType))
	}

	conf.configValues[key] = StaticConfigValue{
		dataType: dt,
		bytes:    bytes,
	}
}

// SetSeedOrDie sets a value that is not in any config file, useful for
// tests. It panics if the key exists or the config is frozen.
func (conf *StaticConfig) SetSeedOrDie(key string, value interface{}) {
	if conf.frozen {
		panic(errors.Errorf("Cannot set(%s) because frozen", key))
	}
	if conf.ContainsKey(key) {
		panic(errors.Errorf("Key (%s) already exists", key))
	}
	conf.seedConfig[key] = value
}

// Freeze the configuration store. Any further set call panics.
func (conf *StaticConfig) Freeze() {
	conf.frozen = true
}

// Destroy will make Get() calls fail with a panic, marking the end of the
// configuration phase.
func (conf *StaticConfig) Destroy() {
	conf.destroyed = true
	conf.frozen = true
	conf.configValues = map[string]StaticConfigValue{}
	conf.seedConfig = map[string]interface{}{}
}

// InspectOrDie returns the entire config object.
// This should not be mutated and should only be used for inspection or debugging
func (conf *StaticConfig) InspectOrDie() map[string]interface{} {
	result := make(map[string]interface{}, len(conf.configValues)+len(conf.seedConfig))

	for k, v := range conf.configValues {
		var jsonValue interface{}
		var err error

		switch v.dataType {
		case jsonparser.Boolean:
			jsonValue, err = jsonparser.ParseBoolean(v.bytes)
		case jsonparser.String:
			jsonValue, err = jsonparser.ParseString(v.bytes)
		case jsonparser.Number:
			jsonValue, err = jsonparser.ParseFloat(v.bytes)
		default:
			err = json.Unmarshal(v.bytes, &jsonValue)
		}
		if err != nil {
			panic(errors.Wrapf(err, "Key (%s) is not json: ", k))
		}

		result[k] = jsonValue
	}

	for k, v := range conf.seedConfig {
		result[k] = v
	}

	return result
}

func parseConfigOption(option *ConfigOption) map[string]StaticConfigValue {
	var bytes []byte

	switch option.configType {
	case filePathConfigType:
		var err error
		bytes, err = ioutil.ReadFile(string(option.bytes))
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			panic(err)
		}
	case fileContentsConfigType:
		bytes = option.bytes
	default:
		panic(errors.Errorf(
			"Unknown config file type %d",
			option.configType,
		))
	}

	object := map[string]StaticConfigValue{}
	err := jsonparser.ObjectEach(bytes, func(
		key []byte,
		value []byte,
		dataType jsonparser.ValueType,
		offset int,
	) error {
		object[string(key)] = StaticConfigValue{
			bytes:    value,
			dataType: dataType,
		}
		return nil
	})
	if err != nil {
		panic(errors.Wrap(err, "config is not a json object"))
	}

	return object
}
