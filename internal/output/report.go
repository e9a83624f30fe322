// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"gopkg.in/yaml.v2"

	"github.com/staranto/kvcachego/internal/config"
	"github.com/staranto/kvcachego/internal/history"
)

// Formats lists the values accepted by --output.
var Formats = []string{"text", "table", "json", "yaml"}

// Options controls how a report or document set is rendered.
type Options struct {
	Format string
	Filter string
	Titles bool
	Color  bool
}

// Render writes report to w in the requested format. The text format is the
// plain replay listing. Filters narrow the calls but never the call count.
func Render(w io.Writer, report *history.Report, opts Options) error {
	if report == nil {
		return nil
	}

	filtered := *report
	filtered.Calls = FilterCalls(report.Calls, opts.Filter)

	switch opts.Format {
	case "json":
		b, err := json.Marshal(filtered)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := yaml.Marshal(filtered)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = w.Write(b)
		return err
	case "table":
		rows := make([]map[string]interface{}, 0, len(filtered.Calls))
		for i, c := range filtered.Calls {
			rows = append(rows, map[string]interface{}{
				"#":      i + 1,
				"args":   c.Args(),
				"output": c.Output,
			})
		}
		TableWriter(w, rows, []string{"#", "args", "output"}, opts)
		return nil
	case "", "text":
		return history.Write(w, &filtered)
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}

// RenderDocuments writes arbitrary documents to w. Table columns are the
// union of the document keys, sorted, with _id first.
func RenderDocuments(w io.Writer, docs []map[string]interface{}, opts Options) error {
	switch opts.Format {
	case "json":
		b, err := json.Marshal(docs)
		if err != nil {
			return fmt.Errorf("failed to encode documents: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		plain := make([]map[string]string, 0, len(docs))
		for _, d := range docs {
			row := make(map[string]string, len(d))
			for k, v := range d {
				row[k] = InterfaceToString(v)
			}
			plain = append(plain, row)
		}
		b, err := yaml.Marshal(plain)
		if err != nil {
			return fmt.Errorf("failed to encode documents: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		TableWriter(w, docs, documentColumns(docs), opts)
		return nil
	}
}

func documentColumns(docs []map[string]interface{}) []string {
	seen := map[string]bool{}
	var cols []string
	for _, d := range docs {
		for k := range d {
			if !seen[k] && k != "_id" {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return append([]string{"_id"}, cols...)
}

// TableWriter renders the result set in a tabular form honoring color,
// titles and padding options.
func TableWriter(w io.Writer, resultSet []map[string]interface{}, columns []string, opts Options) {
	if len(resultSet) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	var rows [][]string
	for _, result := range resultSet {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			row = append(row, InterfaceToString(result[col], "-"))
		}
		rows = append(rows, row)
	}

	pad, _ := config.GetInt("padding", 2)
	log.Debugf("padding: %v", pad)

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(columns...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case interface{ Hex() string }:
		// Mongo object ids.
		return value.Hex()
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
