// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/kvcachego/internal/command"
	"github.com/staranto/kvcachego/internal/config"
	mylog "github.com/staranto/kvcachego/internal/log"
	"github.com/staranto/kvcachego/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain(os.Args, os.Stdout))
}

func realMain(args []string, stdout io.Writer) int {
	mylog.InitLogger()

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Fprintln(stdout, version.Version)
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	app.Writer = stdout

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments splices a default flag set from the config file in right
// after the subcommand. The set is <cmd>.defaults unless an @name argument
// right after the subcommand picks <cmd>.name. Explicit flags that follow
// still win.
func mangleArguments(args []string) []string {
	// Short-circuit for --help/-h.
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return args
		}
	}

	ns := command.Namespace(args)
	if ns == "" {
		return args
	}

	working := append([]string{}, args...)
	idx := len(working)
	for i, a := range working {
		if a == ns {
			idx = i + 1
			break
		}
	}

	// An @name right after the subcommand selects the set and is removed.
	set := "defaults"
	if idx < len(working) && strings.HasPrefix(working[idx], "@") && len(working[idx]) > 1 {
		set = working[idx][1:]
		working = append(working[:idx], working[idx+1:]...)
	}

	setArgs, err := config.GetStringSlice(ns + "." + set)
	if err != nil {
		if set != "defaults" {
			log.Warnf("no %s.%s set in config", ns, set)
		}
		return working
	}

	var parts []string
	for _, arg := range setArgs {
		parts = append(parts, strings.Fields(arg)...)
	}

	result := append([]string{}, working[:idx]...)
	result = append(result, parts...)
	result = append(result, working[idx:]...)

	log.Debugf("set=%s, args=%v", set, result)
	return result
}
