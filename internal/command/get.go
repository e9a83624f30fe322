// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/kvcachego/internal/cache"
	"github.com/staranto/kvcachego/internal/meta"
)

var getAsValues = []string{"raw", "string", "int"}

// GetCommandAction prints the value stored under KEY. A missing key prints
// nothing and is not an error.
func GetCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("get needs exactly one KEY argument")
	}
	key := cmd.Args().First()

	r, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	// Reading must not clear what it is about to read.
	c, err := cache.New(ctx, r, cache.WithFlush(false))
	if err != nil {
		return err
	}

	var (
		value any
		found bool
	)
	switch cmd.String("as") {
	case "int":
		value, found, err = c.GetInt(ctx, key)
	case "string":
		value, found, err = c.GetString(ctx, key)
	default:
		var raw []byte
		raw, err = c.Get(ctx, key)
		found = raw != nil
		value = raw
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	if !found {
		log.Warnf("key not found: %s", key)
		return nil
	}

	w := writer(cmd)
	if raw, ok := value.([]byte); ok {
		_, err = w.Write(append(raw, '\n'))
		return err
	}
	_, err = fmt.Fprintln(w, value)
	return err
}

// GetCommandBuilder constructs the cli.Command for "get".
func GetCommandBuilder(m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "get",
		Usage:     "print the value stored under a key",
		UsageText: "kvcache get [options] KEY",
		Meta:      m,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "as",
				Usage: "decode the value as raw, string or int",
				Value: "raw",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator, GetAsValidator)
				},
			},
		},
		Action: GetCommandAction,
	}).Build()
}
