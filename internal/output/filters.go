// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"os"
	"regexp"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/kvcachego/internal/history"
)

// filterRegex is the pattern used to parse filter expressions into key, operator, and target components.
// It matches: key + operator + target, where operator can be negated with !
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter represents a single parsed --filter expression including the key,
// operand, optional negation and target value.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Invalid specs (unsupported operand or malformed expression) are skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	// Default delimiter is ",", allow an override.
	delim := ","
	if d, ok := os.LookupEnv("KVCACHE_FILTER_DELIM"); ok {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(filterSpec)

		if parts == nil {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		// parts[2] is the operand. It may have a leading negation.
		negate := strings.HasPrefix(parts[2], "!")
		if negate {
			parts[2] = strings.TrimPrefix(parts[2], "!")
		}

		filters = append(filters, Filter{
			Key:     parts[1],
			Negate:  negate,
			Operand: parts[2],
			Target:  parts[3],
		})
	}

	return filters
}

// FilterCalls returns the calls matching every filter in spec. Filter keys
// are "args" (rendered arguments), "inputs" (raw JSON) and "output".
func FilterCalls(calls []history.Call, spec string) []history.Call {
	filters := BuildFilters(spec)
	if len(filters) == 0 {
		return calls
	}

	result := []history.Call{}
	for _, c := range calls {
		if applyFilters(c, filters) {
			result = append(result, c)
		}
	}
	return result
}

// applyFilters returns true if the call matches all of the provided filters.
// Filters on unknown keys are reported and skipped.
func applyFilters(c history.Call, filters []Filter) bool {
	for _, filter := range filters {
		value, ok := callValue(c, filter.Key)
		if !ok {
			log.Warnf("filter key not found: %s", filter.Key)
			continue
		}
		if !checkStringOperand(value, filter) {
			return false
		}
	}
	return true
}

func callValue(c history.Call, key string) (string, bool) {
	switch key {
	case "args":
		return c.Args(), true
	case "inputs":
		return c.Inputs, true
	case "output":
		return c.Output, true
	}
	return "", false
}

// checkStringOperand evaluates a string comparison style filter against the
// provided value using the operand semantics.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return value == filter.Target == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Target) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Target) == !filter.Negate
	case ">":
		return value > filter.Target == !filter.Negate
	case "<":
		return value < filter.Target == !filter.Negate
	case "@":
		return strings.Contains(value, filter.Target) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Target, value)
		if err != nil {
			log.Error("invalid regex: " + filter.Target)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}
}
