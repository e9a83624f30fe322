// Copyright © 2026 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package store defines the key-value store the cache components talk to and
// provides its Redis implementation.
package store
