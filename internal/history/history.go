// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/kvcachego/internal/store"
)

// CountKey is the key holding the number of calls to the named operation.
func CountKey(name string) string { return name }

// InputsKey is the list of JSON encoded argument arrays, one per call.
func InputsKey(name string) string { return name + ":inputs" }

// OutputsKey is the list of results, one per successful call.
func OutputsKey(name string) string { return name + ":outputs" }

// Ref identifies an instrumented operation and the store its history lives
// in. A Ref with a nil Handle is valid and reports nothing.
type Ref struct {
	Name   string
	Handle store.Store
}

// Call is one recorded invocation.
type Call struct {
	Inputs string `json:"inputs" yaml:"inputs"`
	Output string `json:"output" yaml:"output"`
}

// Args renders the recorded JSON argument array as a comma separated list,
// falling back to the raw text when it is not an array.
func (c Call) Args() string {
	parsed := gjson.Parse(c.Inputs)
	if !parsed.IsArray() {
		return c.Inputs
	}
	parts := make([]string, 0, len(parsed.Array()))
	for _, a := range parsed.Array() {
		parts = append(parts, a.Raw)
	}
	return strings.Join(parts, ", ")
}

// Report is everything recorded for a single operation.
type Report struct {
	Name  string `json:"name" yaml:"name"`
	Count int64  `json:"count" yaml:"count"`
	Calls []Call `json:"calls" yaml:"calls"`
}

// Load reads the count and the call history for ref. It returns nil, nil
// when ref has no usable store handle.
func Load(ctx context.Context, ref Ref) (*Report, error) {
	if !store.Valid(ref.Handle) {
		return nil, nil
	}

	report := &Report{Name: ref.Name, Calls: []Call{}}

	ok, err := ref.Handle.Exists(ctx, CountKey(ref.Name))
	if err != nil {
		return nil, err
	}
	if ok {
		raw, err := ref.Handle.Get(ctx, CountKey(ref.Name))
		if err != nil {
			return nil, err
		}
		if report.Count, err = strconv.ParseInt(string(raw), 10, 64); err != nil {
			return nil, fmt.Errorf("counter %s is not an integer: %w", ref.Name, err)
		}
	}

	inputs, err := ref.Handle.LRange(ctx, InputsKey(ref.Name), 0, -1)
	if err != nil {
		return nil, err
	}
	outputs, err := ref.Handle.LRange(ctx, OutputsKey(ref.Name), 0, -1)
	if err != nil {
		return nil, err
	}

	n := min(len(inputs), len(outputs))
	for i := 0; i < n; i++ {
		report.Calls = append(report.Calls, Call{
			Inputs: string(inputs[i]),
			Output: string(outputs[i]),
		})
	}
	log.Debugf("history: %s count=%d inputs=%d outputs=%d", ref.Name, report.Count, len(inputs), len(outputs))

	return report, nil
}

// Replay writes the call history of ref to w:
//
//	Cache.store was called 2 times:
//	Cache.store("foo") -> 3b1f...
//	Cache.store(42) -> 9c0e...
//
// It is a silent no-op when ref has no store handle.
func Replay(ctx context.Context, w io.Writer, ref Ref) error {
	report, err := Load(ctx, ref)
	if err != nil || report == nil {
		return err
	}
	return Write(w, report)
}

// Write renders report in the Replay text format.
func Write(w io.Writer, report *Report) error {
	if _, err := fmt.Fprintf(w, "%s was called %d times:\n", report.Name, report.Count); err != nil {
		return err
	}
	for _, c := range report.Calls {
		if _, err := fmt.Fprintf(w, "%s(%s) -> %s\n", report.Name, c.Args(), c.Output); err != nil {
			return err
		}
	}
	return nil
}
