// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/kvcachego/internal/cache"
	"github.com/staranto/kvcachego/internal/history"
	"github.com/staranto/kvcachego/internal/meta"
)

var storeAsValues = []string{"string", "int", "float", "bytes"}

// StoreCommandAction stores each DATA argument under a fresh key and prints
// the keys, one per line, in argument order.
func StoreCommandAction(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return errors.New("store needs at least one DATA argument")
	}

	values := make([]any, 0, len(args))
	for _, a := range args {
		v, err := convertStoreArg(a, cmd.String("as"))
		if err != nil {
			return err
		}
		values = append(values, v)
	}

	r, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	c, err := cache.New(ctx, r, cache.WithFlush(cmd.Bool("flush")))
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}

	w := writer(cmd)
	for _, v := range values {
		key, err := c.Store(ctx, v)
		if err != nil {
			return fmt.Errorf("failed to store %v: %w", v, err)
		}
		fmt.Fprintln(w, key)
	}

	if cmd.Bool("replay") {
		return history.Replay(ctx, w, c.StoreRef())
	}
	return nil
}

// convertStoreArg turns a command line argument into the value stored for
// the given --as type.
func convertStoreArg(arg string, as string) (any, error) {
	switch as {
	case "", "string":
		return arg, nil
	case "bytes":
		return []byte(arg), nil
	case "int":
		i, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer: %w", arg, err)
		}
		return i, nil
	case "float":
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a float: %w", arg, err)
		}
		return f, nil
	}
	log.Errorf("unsupported --as value: %s", as)
	return nil, fmt.Errorf("unsupported --as value: %s", as)
}

// StoreCommandBuilder constructs the cli.Command for "store".
func StoreCommandBuilder(m meta.Meta) *cli.Command {
	src := m.Source()

	return (&CommandBuilder{
		Name:      "store",
		Usage:     "store values under random keys",
		UsageText: "kvcache store [options] DATA...",
		Meta:      m,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "as",
				Usage: "type to store DATA as: string, int, float or bytes",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("store.as", altsrc.StringSourcer(src)),
				),
				Value: "string",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator, StoreAsValidator)
				},
			},
			&cli.BoolWithInverseFlag{
				Name:  "flush",
				Usage: "clear the redis database before storing",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("store.flush", altsrc.StringSourcer(src)),
				),
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "replay",
				Usage: "replay the store history afterwards",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("store.replay", altsrc.StringSourcer(src)),
				),
				Value: false,
			},
		},
		Action: StoreCommandAction,
	}).Build()
}
