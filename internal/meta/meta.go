// Copyright © 2026 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/staranto/kvcachego/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	// Namespace is the subcommand name and the config namespace its flags
	// are resolved under.
	Namespace string
}

// Source is the config file flag values are read from. Empty when no config
// file was found.
func (m Meta) Source() string {
	return m.Config.Source
}
