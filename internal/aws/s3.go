// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"sync"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// options holds optional overrides for AWS config loading.
type options struct {
	profile     string
	region      string
	credentials awsv2.CredentialsProvider
}

// Option customizes how AWS config is loaded.
// Default behavior (no options) inherits the shell environment and shared
// config chain (AWS_PROFILE, ~/.aws/config, ~/.aws/credentials, IMDS, etc.).
type Option func(*options)

// WithProfile sets the shared config profile. Defaults to AWS_PROFILE/env chain.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion sets the region override. Defaults to env/profile/metadata chain.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithCredentials replaces the default credential chain, e.g. with
// aws.AnonymousCredentials{} for public buckets.
func WithCredentials(p awsv2.CredentialsProvider) Option {
	return func(o *options) { o.credentials = p }
}

// LoadAWSConfig loads AWS SDK v2 config.
func LoadAWSConfig(ctx context.Context, opts ...Option) (awsv2.Config, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	if o.credentials != nil {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(o.credentials))
	}

	return config.LoadDefaultConfig(ctx, loadOpts...)
}

// NewS3 constructs a v2 S3 client from the provided config. Additional service
// options can be supplied via optFns.
func NewS3(cfg awsv2.Config, optFns ...func(*s3v2.Options)) *s3v2.Client {
	return s3v2.NewFromConfig(cfg, optFns...)
}

// WithS3Endpoint points the client at an S3 compatible endpoint such as
// MinIO. Path style addressing is forced since those rarely serve virtual
// hosted buckets.
func WithS3Endpoint(endpoint string) func(*s3v2.Options) {
	return func(o *s3v2.Options) {
		if endpoint == "" {
			return
		}
		o.BaseEndpoint = awsv2.String(endpoint)
		o.UsePathStyle = true
	}
}

// LazyS3 defers loading AWS config until the first GetObject, so commands
// that never touch s3:// URLs never read AWS credentials.
type LazyS3 struct {
	once   sync.Once
	load   func(ctx context.Context) (awsv2.Config, error)
	s3Opts []func(*s3v2.Options)
	client *s3v2.Client
	err    error
}

// NewLazyS3 returns a LazyS3 that loads config with opts and builds the
// client with s3Opts.
func NewLazyS3(opts []Option, s3Opts ...func(*s3v2.Options)) *LazyS3 {
	return &LazyS3{
		load: func(ctx context.Context) (awsv2.Config, error) {
			return LoadAWSConfig(ctx, opts...)
		},
		s3Opts: s3Opts,
	}
}

func (l *LazyS3) GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error) {
	l.once.Do(func() {
		var cfg awsv2.Config
		cfg, l.err = l.load(ctx)
		if l.err != nil {
			return
		}
		log.Debugf("aws: s3 client for region %q", cfg.Region)
		l.client = NewS3(cfg, l.s3Opts...)
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.client.GetObject(ctx, in, optFns...)
}
