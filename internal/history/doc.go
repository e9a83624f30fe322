// Copyright © 2026 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package history reads the call counts and input/output logs recorded by
// the cache instrumentation and renders them as a replay report.
package history
