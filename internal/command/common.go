// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/term"

	"github.com/staranto/kvcachego/internal/meta"
	"github.com/staranto/kvcachego/internal/school"
	"github.com/staranto/kvcachego/internal/store"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr kvcache <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "kvcache", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// CommandBuilder constructs a cli.Command for a kvcache subcommand using a
// consistent pattern. It wires metadata and the tldr flag, and handles --tldr
// before the action runs.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Commands  []*cli.Command
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	cmd := &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags:    append(cb.Flags, tldrFlag),
		Commands: cb.Commands,
	}

	if cb.Action != nil {
		name := cb.Name
		action := cb.Action
		cmd.Action = func(ctx context.Context, c *cli.Command) error {
			m := GetMeta(c)
			if len(m.Args) > 1 {
				log.Debugf("Executing action for %v", m.Args[1:])
			}
			if ShortCircuitTLDR(ctx, c, name) {
				return nil
			}
			return action(ctx, c)
		}
	}

	return cmd
}

// writer is where command output goes. Tests swap the root Writer.
func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// useColor honors --color only when w is a terminal.
func useColor(cmd *cli.Command, w io.Writer) bool {
	if !cmd.Bool("color") {
		return false
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		log.Debug("--color ignored, output is not a terminal")
		return false
	}
	return true
}

// openStore connects to redis using the root connection flags and pings it
// so an unreachable server fails before any work is done. The caller must
// Close the store.
func openStore(ctx context.Context, cmd *cli.Command) (*store.Redis, error) {
	r := store.NewRedis(
		store.WithAddr(cmd.String("redis-addr")),
		store.WithPassword(cmd.String("redis-password")),
		store.WithDB(int(cmd.Int("redis-db"))),
	)
	if err := r.Ping(ctx); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis %s unavailable: %w", cmd.String("redis-addr"), err)
	}
	return r, nil
}

// openCollection connects to mongo using the root connection flags. The
// returned func disconnects the client.
func openCollection(ctx context.Context, cmd *cli.Command) (*mongo.Collection, func(), error) {
	client, err := school.Connect(ctx, cmd.String("mongo-uri"))
	if err != nil {
		return nil, nil, err
	}
	coll := client.Database(cmd.String("mongo-db")).Collection(cmd.String("mongo-collection"))
	closer := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("mongo disconnect failed")
		}
	}
	return coll, closer, nil
}
