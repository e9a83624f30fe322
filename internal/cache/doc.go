// Copyright © 2026 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache stores values in a key-value store under random keys and
// records how often, and with what, Store was called. The recorded history is
// read back with the history package.
package cache
