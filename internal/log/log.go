// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// KVCACHE_LOG env variable.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("KVCACHE_LOG"))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(&CustomHandler{})
	log.SetLevelFromString(level)
}

// CustomHandler formats log messages and writes to W, or stderr when W is
// nil. Stdout is left alone so command output can be piped.
type CustomHandler struct {
	W io.Writer
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	w := h.W
	if w == nil {
		w = os.Stderr
	}
	timestamp := e.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	level := strings.ToUpper(e.Level.String())
	fmt.Fprintf(w, "%s %.1s %s%s\n", timestamp.Format("2006-01-02 15:04:05"), level, e.Message, fields(e.Fields))
	return nil
}

// fields renders entry fields as sorted " k=v" pairs.
func fields(f log.Fields) string {
	if len(f) == 0 {
		return ""
	}
	names := f.Names()
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		fmt.Fprintf(&b, " %s=%v", n, f.Get(n))
	}
	return b.String()
}

// Leveled adapts apex/log to the leveled logger interface used by
// go-retryablehttp.
type Leveled struct{}

func (Leveled) Error(msg string, kv ...interface{}) { entry(kv).Error(msg) }
func (Leveled) Warn(msg string, kv ...interface{})  { entry(kv).Warn(msg) }
func (Leveled) Info(msg string, kv ...interface{})  { entry(kv).Info(msg) }
func (Leveled) Debug(msg string, kv ...interface{}) { entry(kv).Debug(msg) }

func entry(kv []interface{}) *log.Entry {
	f := log.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return log.WithFields(f)
}
