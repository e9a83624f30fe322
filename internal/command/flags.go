// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/kvcachego/internal/meta"
	"github.com/staranto/kvcachego/internal/school"
	"github.com/staranto/kvcachego/internal/store"
)

var tldrFlag *cli.BoolFlag = &cli.BoolFlag{
	Name:        "tldr",
	Usage:       "show tldr page",
	Hidden:      !pathHas("tldr"),
	HideDefault: true,
}

// NewRootFlags returns the connection flags shared by every subcommand. Each
// resolves from the flag, then KVCACHE_* env, then the config file.
func NewRootFlags(m meta.Meta) []cli.Flag {
	src := m.Source()

	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "version",
			Aliases:     []string{"v"},
			Usage:       "kvcache version info",
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:  "redis-addr",
			Usage: "redis host:port",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("KVCACHE_REDIS_ADDR"),
				yaml.YAML(m.Namespace+".redis.addr", altsrc.StringSourcer(src)),
				yaml.YAML("redis.addr", altsrc.StringSourcer(src)),
			),
			Value: store.DefaultAddr,
		},
		&cli.IntFlag{
			Name:  "redis-db",
			Usage: "redis logical database. This is the namespace store flushes",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("KVCACHE_REDIS_DB"),
				yaml.YAML(m.Namespace+".redis.db", altsrc.StringSourcer(src)),
				yaml.YAML("redis.db", altsrc.StringSourcer(src)),
			),
			Value: 0,
		},
		&cli.StringFlag{
			Name:  "redis-password",
			Usage: "redis password",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("KVCACHE_REDIS_PASSWORD"),
				yaml.YAML("redis.password", altsrc.StringSourcer(src)),
			),
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:  "mongo-uri",
			Usage: "mongodb connection uri",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("KVCACHE_MONGO_URI"),
				yaml.YAML("mongo.uri", altsrc.StringSourcer(src)),
			),
			Value: school.DefaultURI,
		},
		&cli.StringFlag{
			Name:  "mongo-db",
			Usage: "mongodb database",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("KVCACHE_MONGO_DB"),
				yaml.YAML("mongo.db", altsrc.StringSourcer(src)),
			),
			Value: school.DefaultDatabase,
		},
		&cli.StringFlag{
			Name:  "mongo-collection",
			Usage: "mongodb collection",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("KVCACHE_MONGO_COLLECTION"),
				yaml.YAML("mongo.collection", altsrc.StringSourcer(src)),
			),
			Value: school.DefaultCollection,
		},
	}
}

// NewOutputFlags returns the rendering flags for commands that print
// reports or documents. params[0] is the config namespace.
func NewOutputFlags(m meta.Meta, params ...string) (flags []cli.Flag) {
	src := m.Source()

	flags = []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored table output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"color", altsrc.StringSourcer(src)),
				yaml.YAML("color", altsrc.StringSourcer(src)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"output", altsrc.StringSourcer(src)),
				yaml.YAML("output", altsrc.StringSourcer(src)),
			),
			Value: defaultOutput(params[0]),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, OutputValidator)
			},
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with table output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"titles", altsrc.StringSourcer(src)),
				yaml.YAML("titles", altsrc.StringSourcer(src)),
			),
			Value: false,
		},
	}

	return
}

// defaultOutput is text for replay and a table for document listings.
func defaultOutput(ns string) string {
	if ns == "school" {
		return "table"
	}
	return "text"
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas reports whether target is on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
