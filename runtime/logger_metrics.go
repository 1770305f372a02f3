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
	"github.com/uber-go/tally"
	"go.uber.org/zap/zapcore"
)

var loggedLevels = []zapcore.Level{
	zapcore.DebugLevel,
	zapcore.InfoLevel,
	zapcore.WarnLevel,
	zapcore.ErrorLevel,
	zapcore.DPanicLevel,
	zapcore.PanicLevel,
	zapcore.FatalLevel,
}

// instrumentedZapCore counts every entry it writes, one counter per level.
type instrumentedZapCore struct {
	zapcore.Core

	counters map[zapcore.Level]tally.Counter
}

// NewInstrumentedZapCore will return a zapcore.Core that emits
// "zap.logged.<level>" metrics on scope.
func NewInstrumentedZapCore(core zapcore.Core, scope tally.Scope) zapcore.Core {
	counters := make(map[zapcore.Level]tally.Counter, len(loggedLevels))
	for _, level := range loggedLevels {
		counters[level] = scope.Counter("zap.logged." + level.String())
	}
	return &instrumentedZapCore{
		Core:     core,
		counters: counters,
	}
}

func (c *instrumentedZapCore) With(fields []zapcore.Field) zapcore.Core {
	return &instrumentedZapCore{
		Core:     c.Core.With(fields),
		counters: c.counters,
	}
}

func (c *instrumentedZapCore) Check(
	ent zapcore.Entry, ce *zapcore.CheckedEntry,
) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *instrumentedZapCore) Write(
	entry zapcore.Entry, fields []zapcore.Field,
) error {
	if counter, ok := c.counters[entry.Level]; ok {
		counter.Inc(1)
	}
	return c.Core.Write(entry, fields)
}
