// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/kvcachego/internal/aws"
	"github.com/staranto/kvcachego/internal/meta"
	"github.com/staranto/kvcachego/internal/webcache"
)

const defaultFetchTimeout = 30 * time.Second

// newPageFetcher dispatches http(s) to the retrying client and s3 to an S3
// client that is only configured when first used.
func newPageFetcher(cmd *cli.Command) webcache.Fetcher {
	hf := webcache.NewHTTPFetcher(webcache.WithTimeout(cmd.Duration("timeout")))

	var awsOpts []aws.Option
	if p := cmd.String("aws-profile"); p != "" {
		awsOpts = append(awsOpts, aws.WithProfile(p))
	}
	if r := cmd.String("aws-region"); r != "" {
		awsOpts = append(awsOpts, aws.WithRegion(r))
	}
	s3 := aws.NewLazyS3(awsOpts, aws.WithS3Endpoint(cmd.String("s3-endpoint")))

	return webcache.SchemeFetcher{
		"http":  hf,
		"https": hf,
		"s3":    webcache.NewS3Fetcher(s3),
	}
}

// PageCommandAction fetches each URL through the page cache. It prints the
// body, or with --count a one line summary of size and access count.
func PageCommandAction(ctx context.Context, cmd *cli.Command) error {
	urls := cmd.Args().Slice()
	if len(urls) == 0 {
		return errors.New("page needs at least one URL argument")
	}

	r, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	pc := webcache.New(r, pageFetcher(cmd), webcache.WithTTL(cmd.Duration("ttl")))

	w := writer(cmd)
	for _, u := range urls {
		body, err := pc.GetPage(ctx, u)
		if err != nil {
			return fmt.Errorf("failed to get %s: %w", u, err)
		}

		if !cmd.Bool("count") {
			fmt.Fprintln(w, body)
			continue
		}

		n, err := pc.AccessCount(ctx, u)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\tcount=%d\n", u, humanize.Bytes(uint64(len(body))), n)
	}
	return nil
}

// pageFetcher lets tests replace the network.
var pageFetcher = newPageFetcher

// PageCommandBuilder constructs the cli.Command for "page".
func PageCommandBuilder(m meta.Meta) *cli.Command {
	src := m.Source()

	return (&CommandBuilder{
		Name:      "page",
		Usage:     "fetch pages through the expiring page cache",
		UsageText: "kvcache page [options] URL...",
		Meta:      m,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "how long a fetched page is served from redis",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("KVCACHE_PAGE_TTL"),
					yaml.YAML("page.ttl", altsrc.StringSourcer(src)),
				),
				Value: webcache.DefaultTTL,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "timeout for each fetch attempt",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("page.timeout", altsrc.StringSourcer(src)),
				),
				Value: defaultFetchTimeout,
			},
			&cli.BoolFlag{
				Name:  "count",
				Usage: "print size and access count instead of the body",
				Value: false,
			},
			NameSpacedValueChainFlagFromConfigFile("page", src, &cli.StringFlag{
				Name:    "aws-profile",
				Usage:   "aws profile for s3:// urls",
				Sources: cli.NewValueSourceChain(cli.EnvVar("KVCACHE_AWS_PROFILE")),
			}),
			NameSpacedValueChainFlagFromConfigFile("page", src, &cli.StringFlag{
				Name:    "aws-region",
				Usage:   "aws region for s3:// urls",
				Sources: cli.NewValueSourceChain(cli.EnvVar("KVCACHE_AWS_REGION")),
			}),
			NameSpacedValueChainFlagFromConfigFile("page", src, &cli.StringFlag{
				Name:    "s3-endpoint",
				Usage:   "s3 compatible endpoint, e.g. minio",
				Sources: cli.NewValueSourceChain(cli.EnvVar("KVCACHE_S3_ENDPOINT")),
			}),
		},
		Action: PageCommandAction,
	}).Build()
}
