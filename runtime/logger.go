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
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/uber-go/tally"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var levelMap = map[string]zapcore.Level{
	"debug":  zapcore.DebugLevel,
	"info":   zapcore.InfoLevel,
	"warn":   zapcore.WarnLevel,
	"error":  zapcore.ErrorLevel,
	"dpanic": zapcore.DPanicLevel,
	"panic":  zapcore.PanicLevel,
	"fatal":  zapcore.FatalLevel,
}

// LoggerOptions tweak the logger built by NewLogger.
type LoggerOptions struct {
	// LogWriter, when set, receives a copy of every entry.
	LogWriter zapcore.WriteSyncer
}

// NewLogger builds the JSON logger described by the "logger.*" keys of
// config. Every entry is counted on scope.
//
// "logger.output" is "stdout", "stderr" or "file"; with "file" entries are
// appended to "logger.fileName".
func NewLogger(
	config *StaticConfig,
	scope tally.Scope,
	opts *LoggerOptions,
) (*zap.Logger, error) {
	logLevel := zap.InfoLevel
	if config.ContainsKey("logger.level") {
		levelString := config.MustGetString("logger.level")
		var ok bool
		logLevel, ok = levelMap[levelString]
		if !ok {
			return nil, errors.Errorf("unknown log level for logger: %s", levelString)
		}
	}

	output, err := loggerOutput(config)
	if err != nil {
		return nil, err
	}
	if opts != nil && opts.LogWriter != nil {
		output = zap.CombineWriteSyncers(output, opts.LogWriter)
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		output,
		zap.NewAtomicLevelAt(logLevel),
	)
	logger := zap.New(NewInstrumentedZapCore(core, scope))

	var fields []zap.Field
	for _, key := range []string{"serviceName", "env"} {
		if config.ContainsKey(key) {
			fields = append(fields, zap.String(key, config.MustGetString(key)))
		}
	}
	fields = append(fields, zap.Int("pid", os.Getpid()))
	return logger.With(fields...), nil
}

func loggerOutput(config *StaticConfig) (zapcore.WriteSyncer, error) {
	output := "stdout"
	if config.ContainsKey("logger.output") {
		output = config.MustGetString("logger.output")
	}

	switch output {
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	case "file":
	default:
		return nil, errors.Errorf("unknown logger output: %s", output)
	}

	fileName := config.MustGetString("logger.fileName")
	if err := os.MkdirAll(filepath.Dir(fileName), 0777); err != nil {
		return nil, errors.Wrap(err, "Error creating log directory")
	}
	file, err := os.OpenFile(fileName, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "Error opening log file")
	}
	return zapcore.AddSync(file), nil
}
