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

package errgroom_test

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	errgroom "github.com/uber/errgroom/runtime"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	config := errgroom.NewStaticConfigOrDie(nil, map[string]interface{}{
		"serviceName":   "errgroom",
		"env":           "test",
		"logger.level":  "warn",
		"logger.output": "stderr",
	})
	buf := &bytes.Buffer{}
	scope := tally.NewTestScope("", nil)

	logger, err := errgroom.NewLogger(config, scope, &errgroom.LoggerOptions{
		LogWriter: zapcore.AddSync(buf),
	})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	_ = logger.Sync()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "errgroom", entry["serviceName"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, float64(os.Getpid()), entry["pid"])

	counters := scope.Snapshot().Counters()
	assert.Equal(t, int64(1), counters["zap.logged.warn+"].Value())
}

func TestNewLoggerFileOutput(t *testing.T) {
	dir, err := ioutil.TempDir("", "errgroom-logs")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(dir) }()

	fileName := filepath.Join(dir, "nested", "errgroom.log")
	config := errgroom.NewStaticConfigOrDie(nil, map[string]interface{}{
		"logger.output":   "file",
		"logger.fileName": fileName,
	})

	logger, err := errgroom.NewLogger(config, tally.NoopScope, nil)
	require.NoError(t, err)
	logger.Info("to file")
	_ = logger.Sync()

	contents, err := ioutil.ReadFile(fileName)
	require.NoError(t, err)
	assert.Contains(t, string(contents), `"msg":"to file"`)
}

func TestNewLoggerErrors(t *testing.T) {
	badLevel := errgroom.NewStaticConfigOrDie(nil, map[string]interface{}{
		"logger.level": "loud",
	})
	_, err := errgroom.NewLogger(badLevel, tally.NoopScope, nil)
	assert.EqualError(t, err, "unknown log level for logger: loud")

	badOutput := errgroom.NewStaticConfigOrDie(nil, map[string]interface{}{
		"logger.output": "syslog",
	})
	_, err = errgroom.NewLogger(badOutput, tally.NoopScope, nil)
	assert.EqualError(t, err, "unknown logger output: syslog")
}
