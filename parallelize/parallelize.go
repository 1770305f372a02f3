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

// Package parallelize runs independent work items on a bounded pool of
// goroutines and hands the results back in submission order.
package parallelize

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Work is one unit of work.
type Work interface {
	Work() (interface{}, error)
}

// StatelessFunc adapts a closure to Work.
type StatelessFunc func() (interface{}, error)

// Work implements Work.
func (sf StatelessFunc) Work() (interface{}, error) {
	return sf()
}

// SingleParamWork calls Func with Data.
type SingleParamWork struct {
	Data interface{}
	Func func(data interface{}) (interface{}, error)
}

// Work implements Work.
func (spw *SingleParamWork) Work() (interface{}, error) {
	return spw.Func(spw.Data)
}

// Result is the outcome of one Work.
type Result struct {
	Data interface{}
	Err  error
}

type indexedWork struct {
	index int
	work  Work
}

// Runner runs at most workSize submitted Works.
type Runner struct {
	workQueue chan indexedWork
	results   []Result
	wg        sync.WaitGroup
	submitted int
}

// NewFixedBoundedRunner sizes the pool from the CPU count, four times
// larger for io bound work.
func NewFixedBoundedRunner(workSize int, ioBound bool) *Runner {
	parallelCount := runtime.NumCPU()
	// go routine busy doing io would be swapped out, hence 4x.
	if ioBound {
		parallelCount = parallelCount * 4
	}
	return NewBoundedRunner(workSize, parallelCount)
}

// NewBoundedRunner runs work on parallelCount goroutines.
func NewBoundedRunner(workSize, parallelCount int) *Runner {
	if parallelCount < 1 {
		parallelCount = 1
	}
	r := &Runner{
		workQueue: make(chan indexedWork, workSize),
		results:   make([]Result, workSize),
	}
	r.wg.Add(parallelCount)
	for i := 0; i < parallelCount; i++ {
		go r.consume()
	}
	return r
}

func (r *Runner) consume() {
	defer r.wg.Done()
	for wrk := range r.workQueue {
		data, err := wrk.work.Work()
		r.results[wrk.index] = Result{Data: data, Err: err}
	}
}

// SubmitWork queues wrk. It panics when more than workSize Works are
// submitted.
func (r *Runner) SubmitWork(wrk Work) {
	if r.submitted == len(r.results) {
		panic(errors.Errorf("parallelize: more than %d works submitted", len(r.results)))
	}
	r.workQueue <- indexedWork{index: r.submitted, work: wrk}
	r.submitted++
}

// GetResults waits for every submitted Work and returns the results in
// submission order. No Work may be submitted afterwards.
func (r *Runner) GetResults() []Result {
	close(r.workQueue)
	r.wg.Wait()
	return r.results[:r.submitted]
}

// GetResult returns the data of every Work, or all of their errors
// combined.
func (r *Runner) GetResult() ([]interface{}, error) {
	results := r.GetResults()
	data := make([]interface{}, len(results))
	var errs error
	for i, res := range results {
		data[i] = res.Data
		errs = multierr.Append(errs, res.Err)
	}
	if errs != nil {
		return nil, errs
	}
	return data, nil
}
