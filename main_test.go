// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/kvcachego/internal/config"
	"github.com/staranto/kvcachego/internal/version"
)

func withConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("APPDATA", dir)

	t.Setenv("KVCACHE_CFG", "")
	require.NoError(t, os.Unsetenv("KVCACHE_CFG"))
	if content != "" {
		path := filepath.Join(dir, config.FileName)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		t.Setenv("KVCACHE_CFG", path)
	}

	saved := config.Config
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = saved })
}

const setsConfig = `
store:
  defaults:
    - --as string
    - --replay
  ints:
    - --as int
`

func TestMangleArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults inserted after the subcommand",
			args: []string{"kvcache", "store", "foo"},
			want: []string{"kvcache", "store", "--as", "string", "--replay", "foo"},
		},
		{
			name: "root flags stay in front",
			args: []string{"kvcache", "--redis-addr", "h:1", "store", "foo"},
			want: []string{"kvcache", "--redis-addr", "h:1", "store", "--as", "string", "--replay", "foo"},
		},
		{
			name: "named set replaces defaults",
			args: []string{"kvcache", "store", "@ints", "42"},
			want: []string{"kvcache", "store", "--as", "int", "42"},
		},
		{
			name: "at sign later is data",
			args: []string{"kvcache", "store", "foo", "@ints"},
			want: []string{"kvcache", "store", "--as", "string", "--replay", "foo", "@ints"},
		},
		{
			name: "unknown set is dropped",
			args: []string{"kvcache", "store", "@nope", "x"},
			want: []string{"kvcache", "store", "x"},
		},
		{
			name: "no set for command",
			args: []string{"kvcache", "replay"},
			want: []string{"kvcache", "replay"},
		},
		{
			name: "help untouched",
			args: []string{"kvcache", "store", "--help"},
			want: []string{"kvcache", "store", "--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withConfig(t, setsConfig)
			assert.Equal(t, tt.want, mangleArguments(tt.args))
		})
	}
}

func TestMangleArguments_NoConfig(t *testing.T) {
	withConfig(t, "")
	args := []string{"kvcache", "store", "foo"}
	assert.Equal(t, args, mangleArguments(args))
}

func TestRealMain_Version(t *testing.T) {
	withConfig(t, "")

	var out bytes.Buffer
	assert.Equal(t, 0, realMain([]string{"kvcache", "--version"}, &out))
	assert.Equal(t, version.Version+"\n", out.String())
}

func TestRealMain_CommandFailure(t *testing.T) {
	withConfig(t, "")

	var out bytes.Buffer
	assert.Equal(t, 2, realMain([]string{"kvcache", "store"}, &out))
}
