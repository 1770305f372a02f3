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
	"fmt"
	"io"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses args, executes the selected command and returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	parser := flags.NewNamedParser("errgroom", flags.HelpFlag|flags.PassDoubleDash)
	parser.ShortDescription = "groom http client errors"

	_, err := parser.AddCommand(
		"groom",
		"Groom error documents",
		"Reads json error documents from FILE arguments, or stdin for -, and "+
			"writes one groomed document per line.",
		&groomCommand{stdin: stdin, stdout: stdout},
	)
	if err == nil {
		_, err = parser.AddCommand(
			"schema",
			"Print the groomed document schema",
			"Prints the json schema of the documents groom writes.",
			&schemaCommand{stdout: stdout},
		)
	}
	if err != nil {
		/* coverage ignore next line */
		return checkError(stderr, err, "can not build command line parser")
	}

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, flagsErr.Message)
			return 0
		}
		return checkError(stderr, err, "errgroom failed")
	}
	return 0
}

func checkError(w io.Writer, err error, message string) int {
	fmt.Fprintf(w, "%s:\n%s\n", message, err)

	causeErr := errors.Cause(err)
	if causeErr, ok := causeErr.(stackTracer); ok {
		fmt.Fprintf(w, "%+v \n", causeErr.StackTrace())
	}
	return 1
}
