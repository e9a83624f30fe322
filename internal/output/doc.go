// Copyright © 2026 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output renders history reports as text, tables, JSON or YAML and
// applies --filter expressions to the replayed calls.
package output
