// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/staranto/kvcachego/internal/cache"
	"github.com/staranto/kvcachego/internal/config"
	"github.com/staranto/kvcachego/internal/school"
	"github.com/staranto/kvcachego/internal/webcache"
)

// isolateConfig keeps any real kvcache.yaml out of the test.
func isolateConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("APPDATA", dir)
	t.Setenv("HOME", dir)

	// An empty env var still wins over the config file, so unset them.
	for _, key := range []string{
		"KVCACHE_CFG",
		"KVCACHE_REDIS_ADDR",
		"KVCACHE_REDIS_DB",
		"KVCACHE_REDIS_PASSWORD",
		"KVCACHE_MONGO_URI",
		"KVCACHE_PAGE_TTL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	saved := config.Config
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = saved })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	full := append([]string{"kvcache"}, args...)

	app, err := InitApp(context.Background(), full)
	require.NoError(t, err)

	var buf bytes.Buffer
	app.Writer = &buf
	app.ErrWriter = &buf
	err = app.Run(context.Background(), full)
	return buf.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestNamespace(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"kvcache"}, want: ""},
		{args: []string{"kvcache", "--help"}, want: ""},
		{args: []string{"kvcache", "store", "a"}, want: "store"},
		{args: []string{"kvcache", "--redis-addr", "h:1", "replay"}, want: "replay"},
		{args: []string{"kvcache", "--redis-addr=h:1", "page", "u"}, want: "page"},
		{args: []string{"kvcache", "-v"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			assert.Equal(t, tt.want, Namespace(tt.args))
		})
	}
}

func TestStoreGetReplay(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)

	out, err := run(t, "--redis-addr", mr.Addr(), "store", "foo", "bar")
	require.NoError(t, err)
	keys := lines(out)
	require.Len(t, keys, 2)
	for _, k := range keys {
		_, err := uuid.Parse(k)
		assert.NoError(t, err)
	}

	out, err = run(t, "--redis-addr", mr.Addr(), "get", keys[1])
	require.NoError(t, err)
	assert.Equal(t, "bar\n", out)

	out, err = run(t, "--redis-addr", mr.Addr(), "replay")
	require.NoError(t, err)
	want := fmt.Sprintf("Cache.store was called 2 times:\nCache.store(\"foo\") -> %s\nCache.store(\"bar\") -> %s\n", keys[0], keys[1])
	assert.Equal(t, want, out)
}

func TestStore_Flush(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)

	_, err := run(t, "--redis-addr", mr.Addr(), "store", "a")
	require.NoError(t, err)
	_, err = run(t, "--redis-addr", mr.Addr(), "store", "b")
	require.NoError(t, err)

	count, err := mr.Get(cache.StoreOpName)
	require.NoError(t, err)
	assert.Equal(t, "1", count, "a default store starts from an empty database")

	_, err = run(t, "--redis-addr", mr.Addr(), "store", "--no-flush", "c")
	require.NoError(t, err)
	count, err = mr.Get(cache.StoreOpName)
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}

func TestStore_AsInt(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)

	out, err := run(t, "--redis-addr", mr.Addr(), "store", "--as", "int", "42")
	require.NoError(t, err)
	key := strings.TrimSpace(out)

	out, err = run(t, "--redis-addr", mr.Addr(), "get", "--as", "int", key)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)

	out, err = run(t, "--redis-addr", mr.Addr(), "replay")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache.store(42) -> "+key)
}

func TestStore_Replay(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)

	out, err := run(t, "--redis-addr", mr.Addr(), "store", "--replay", "x")
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 3)
	assert.Equal(t, "Cache.store was called 1 times:", got[1])
	assert.Equal(t, "Cache.store(\"x\") -> "+got[0], got[2])
}

func TestStore_NonFiniteFloat(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)

	out, err := run(t, "--redis-addr", mr.Addr(), "store", "--as", "float", "--replay", "inf", "NaN")
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 5)
	assert.Equal(t, "Cache.store was called 2 times:", got[2])
	assert.Equal(t, "Cache.store(\"+Inf\") -> "+got[0], got[3])
	assert.Equal(t, "Cache.store(\"NaN\") -> "+got[1], got[4])
}

func TestStore_Errors(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no data", args: []string{"store"}},
		{name: "not an int", args: []string{"store", "--as", "int", "abc"}},
		{name: "not a float", args: []string{"store", "--as", "float", "x1"}},
		{name: "bad as", args: []string{"store", "--as", "json", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"--redis-addr", mr.Addr()}, tt.args...)...)
			assert.Error(t, err)
		})
	}
}

func TestConvertStoreArg(t *testing.T) {
	tests := []struct {
		arg  string
		as   string
		want any
	}{
		{arg: "x", as: "", want: "x"},
		{arg: "x", as: "string", want: "x"},
		{arg: "x", as: "bytes", want: []byte("x")},
		{arg: "-7", as: "int", want: int64(-7)},
		{arg: "2.5", as: "float", want: 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.as+"/"+tt.arg, func(t *testing.T) {
			got, err := convertStoreArg(tt.arg, tt.as)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGet_Missing(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)

	out, err := run(t, "--redis-addr", mr.Addr(), "get", "no-such-key")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGet_DoesNotFlush(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("k", "v"))

	_, err := run(t, "--redis-addr", mr.Addr(), "get", "k")
	require.NoError(t, err)
	assert.True(t, mr.Exists("k"))
}

func TestReplay_Formats(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)

	_, err := run(t, "--redis-addr", mr.Addr(), "store", "alpha", "beta")
	require.NoError(t, err)

	out, err := run(t, "--redis-addr", mr.Addr(), "replay", "--output", "json")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.Get(out, "count").Int())
	assert.Equal(t, `["beta"]`, gjson.Get(out, "calls.1.inputs").String())

	out, err = run(t, "--redis-addr", mr.Addr(), "replay", "--filter", "args@alp")
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 2)
	assert.Equal(t, "Cache.store was called 2 times:", got[0])
	assert.Contains(t, got[1], `"alpha"`)

	_, err = run(t, "--redis-addr", mr.Addr(), "replay", "--output", "xml")
	assert.Error(t, err)
}

func TestReplay_OtherOperation(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)

	out, err := run(t, "--redis-addr", mr.Addr(), "replay", "--op", "Cache.never")
	require.NoError(t, err)
	assert.Equal(t, "Cache.never was called 0 times:\n", out)
}

func TestRedisUnavailable(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := run(t, "--redis-addr", addr, "replay")
	assert.Error(t, err)
}

func TestRedisAddrFromConfigFile(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)

	path := filepath.Join(t.TempDir(), config.FileName)
	content := fmt.Sprintf("redis:\n  addr: %s\npage:\n  ttl: 30s\n", mr.Addr())
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("KVCACHE_CFG", path)

	_, err := run(t, "store", "from-config")
	require.NoError(t, err)
	assert.Equal(t, "1", must(mr.Get(cache.StoreOpName)))

	stubPageFetcher(t, "body")
	_, err = run(t, "page", "http://cfg.example")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL(webcache.ResultKey("http://cfg.example")))
}

func TestRedisAddrFromEnv(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)
	t.Setenv("KVCACHE_REDIS_ADDR", mr.Addr())

	_, err := run(t, "store", "from-env")
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.StoreOpName))
}

func must(s string, err error) string {
	if err != nil {
		return ""
	}
	return s
}

// stubPageFetcher replaces the network for the page command.
func stubPageFetcher(t *testing.T, body string) *int {
	t.Helper()
	calls := 0
	saved := pageFetcher
	pageFetcher = func(*cli.Command) webcache.Fetcher {
		return webcache.FetcherFunc(func(context.Context, string) (string, error) {
			calls++
			return body, nil
		})
	}
	t.Cleanup(func() { pageFetcher = saved })
	return &calls
}

func TestPage(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)
	calls := stubPageFetcher(t, "<html>hi</html>")

	out, err := run(t, "--redis-addr", mr.Addr(), "page", "http://a.example")
	require.NoError(t, err)
	assert.Equal(t, "<html>hi</html>\n", out)
	assert.Equal(t, webcache.DefaultTTL, mr.TTL(webcache.ResultKey("http://a.example")))

	out, err = run(t, "--redis-addr", mr.Addr(), "page", "--count", "http://a.example")
	require.NoError(t, err)
	assert.Equal(t, "http://a.example\t15 B\tcount=1\n", out)
	assert.Equal(t, 1, *calls)
}

func TestPage_TTL(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)
	calls := stubPageFetcher(t, "x")

	_, err := run(t, "--redis-addr", mr.Addr(), "page", "--ttl", "1m", "http://b.example")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(webcache.ResultKey("http://b.example")))

	mr.FastForward(2 * time.Minute)
	_, err = run(t, "--redis-addr", mr.Addr(), "page", "http://b.example")
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestPage_NoURL(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)

	_, err := run(t, "--redis-addr", mr.Addr(), "page")
	assert.Error(t, err)
}

func TestSchoolInsert_BadFieldFailsBeforeConnecting(t *testing.T) {
	isolateConfig(t)

	_, err := run(t, "--mongo-uri", "mongodb://127.0.0.1:1", "school", "insert", "name")
	assert.ErrorIs(t, err, school.ErrBadField)

	_, err = run(t, "school", "insert")
	assert.Error(t, err)
}

func TestCompletion(t *testing.T) {
	isolateConfig(t)

	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _kvcache kvcache")

	out, err = run(t, "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "#compdef kvcache")
}

func TestFlagsSorted(t *testing.T) {
	isolateConfig(t)

	app, err := InitApp(context.Background(), []string{"kvcache"})
	require.NoError(t, err)

	for _, cmd := range app.Commands {
		names := make([]string, 0, len(cmd.Flags))
		for _, f := range cmd.Flags {
			names = append(names, f.Names()[0])
		}
		assert.IsNonDecreasing(t, names, cmd.Name)
	}
}
