// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/staranto/kvcachego/internal/history"
	"github.com/staranto/kvcachego/internal/store"
)

// Operation is a store-backed call that can be wrapped by the
// instrumentation below.
type Operation func(ctx context.Context, args ...any) (string, error)

// CountCalls increments the counter for name on every call, before op runs.
// With a nil or otherwise invalid handle it returns op untouched.
func CountCalls(name string, handle store.Store, op Operation) Operation {
	if !store.Valid(handle) {
		return op
	}
	return func(ctx context.Context, args ...any) (string, error) {
		if _, err := handle.Incr(ctx, history.CountKey(name)); err != nil {
			return "", err
		}
		return op(ctx, args...)
	}
}

// CallHistory appends the JSON encoded arguments to name:inputs before op
// runs and its result to name:outputs when op succeeds. With a nil or
// otherwise invalid handle it returns op untouched.
func CallHistory(name string, handle store.Store, op Operation) Operation {
	if !store.Valid(handle) {
		return op
	}
	return func(ctx context.Context, args ...any) (string, error) {
		inputs, err := encodeArgs(args)
		if err != nil {
			return "", err
		}
		if err := handle.RPush(ctx, history.InputsKey(name), inputs); err != nil {
			return "", err
		}

		out, err := op(ctx, args...)
		if err != nil {
			return out, err
		}

		if err := handle.RPush(ctx, history.OutputsKey(name), out); err != nil {
			return "", err
		}
		return out, nil
	}
}

// encodeArgs renders args as a JSON array. []byte arguments are recorded as
// strings so the history stays readable. JSON has no Inf or NaN, so those
// are recorded as their strconv text.
func encodeArgs(args []any) (string, error) {
	vals := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case []byte:
			vals[i] = string(v)
		case float64:
			vals[i] = finiteOrText(v, 64)
		case float32:
			vals[i] = finiteOrText(float64(v), 32)
		default:
			vals[i] = a
		}
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return "", fmt.Errorf("failed to encode call arguments: %w", err)
	}
	return string(b), nil
}

func finiteOrText(f float64, bitSize int) any {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, bitSize)
	}
	if bitSize == 32 {
		return float32(f)
	}
	return f
}
