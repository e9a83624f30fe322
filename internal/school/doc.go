// Copyright © 2026 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package school holds the MongoDB helpers: list every document in a
// collection and insert a school document built from key=value fields.
package school
