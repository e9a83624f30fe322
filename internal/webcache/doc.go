// Copyright © 2026 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package webcache caches fetched page bodies in the key-value store for a
// short, fixed time and counts how often each URL is requested.
package webcache
