// Copyright © 2026 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/kvcachego/internal/config"
	"github.com/staranto/kvcachego/internal/meta"
)

// rootValueFlags are the root flags that consume the following argument.
var rootValueFlags = map[string]bool{
	"--redis-addr":       true,
	"--redis-db":         true,
	"--redis-password":   true,
	"--mongo-uri":        true,
	"--mongo-db":         true,
	"--mongo-collection": true,
}

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	// The first non-flag arg is the subcommand and also the namespace key used
	// when retrieving config values.
	ns := Namespace(args)

	cfg, err := config.Load(ns)
	if err != nil {
		log.Debugf("no config: %v", err)
	}
	m := meta.Meta{
		Args:      args,
		Config:    cfg,
		Context:   ctx,
		Namespace: ns,
	}

	app := &cli.Command{
		Name:  "kvcache",
		Usage: "Redis backed key-value cache, call history and page cache",
		Metadata: map[string]any{
			"meta": m,
		},
		Flags: NewRootFlags(m),
	}

	app.Commands = append(app.Commands,
		StoreCommandBuilder(m),
		GetCommandBuilder(m),
		ReplayCommandBuilder(m),
		PageCommandBuilder(m),
		SchoolCommandBuilder(m),
		CompletionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sortFlags(cmd)
	}

	return app, nil
}

func sortFlags(cmd *cli.Command) {
	sort.Slice(cmd.Flags, func(i, j int) bool {
		return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
	})
	for _, sub := range cmd.Commands {
		sortFlags(sub)
	}
}

// Namespace returns the subcommand named in args, skipping root flags and
// their values. It is empty for bare flags such as --help.
func Namespace(args []string) string {
	for i := 1; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") {
			return a
		}
		if rootValueFlags[a] {
			i++
		}
	}
	return ""
}
