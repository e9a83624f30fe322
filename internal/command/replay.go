// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/kvcachego/internal/cache"
	"github.com/staranto/kvcachego/internal/history"
	"github.com/staranto/kvcachego/internal/meta"
	"github.com/staranto/kvcachego/internal/output"
)

// ReplayCommandAction prints the recorded history of an operation. It only
// reads, so no cache is constructed and nothing is flushed.
func ReplayCommandAction(ctx context.Context, cmd *cli.Command) error {
	r, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	report, err := history.Load(ctx, history.Ref{Name: cmd.String("op"), Handle: r})
	if err != nil {
		return err
	}
	log.Debugf("replay: %s has %d calls", report.Name, len(report.Calls))

	w := writer(cmd)
	return output.Render(w, report, output.Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Titles: cmd.Bool("titles"),
		Color:  useColor(cmd, w),
	})
}

// ReplayCommandBuilder constructs the cli.Command for "replay".
func ReplayCommandBuilder(m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "replay",
		Usage:     "replay the call history of an operation",
		UsageText: "kvcache replay [options]",
		Meta:      m,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "op",
				Usage: "operation whose history to replay",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("replay.op", altsrc.StringSourcer(m.Source())),
				),
				Value: cache.StoreOpName,
			},
		}, NewOutputFlags(m, "replay")...),
		Action: ReplayCommandAction,
	}).Build()
}
