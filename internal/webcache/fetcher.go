// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package webcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/go-retryablehttp"

	mylog "github.com/staranto/kvcachego/internal/log"
)

// ErrUnsupportedScheme is returned by SchemeFetcher for URLs it has no
// fetcher for.
var ErrUnsupportedScheme = errors.New("unsupported url scheme")

// HTTPFetcher fetches pages with GET, retrying connection errors and 5xx
// responses. Other non-2xx bodies are returned as fetched.
type HTTPFetcher struct {
	client *retryablehttp.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPOption customizes the retrying client.
type HTTPOption func(*retryablehttp.Client)

// WithRetry sets the retry budget and the minimum and maximum wait between
// attempts.
func WithRetry(retries int, waitMin, waitMax time.Duration) HTTPOption {
	return func(c *retryablehttp.Client) {
		c.RetryMax = retries
		c.RetryWaitMin = waitMin
		c.RetryWaitMax = waitMax
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *retryablehttp.Client) {
		c.HTTPClient.Timeout = d
	}
}

func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	c := retryablehttp.NewClient()
	c.Logger = mylog.Leveled{}
	c.RetryMax = 2
	for _, o := range opts {
		o(c)
	}
	return &HTTPFetcher{client: c}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		log.Warnf("fetch %s: %s", rawURL, resp.Status)
	}

	return string(body), nil
}

// GetObjectAPI is the part of the S3 client S3Fetcher needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// S3Fetcher reads s3://bucket/key URLs as objects.
type S3Fetcher struct {
	client GetObjectAPI
}

var _ Fetcher = (*S3Fetcher)(nil)

func NewS3Fetcher(client GetObjectAPI) *S3Fetcher {
	return &S3Fetcher{client: client}
}

func (f *S3Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	bucket, key, err := ParseS3URL(rawURL)
	if err != nil {
		return "", err
	}

	out, err := f.client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}
	return string(body), nil
}

// ParseS3URL splits s3://bucket/path/to/key into bucket and key.
func ParseS3URL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: %q is not an s3 url", ErrUnsupportedScheme, rawURL)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url %q needs both a bucket and a key", rawURL)
	}
	return bucket, key, nil
}

// SchemeFetcher dispatches on the URL scheme.
type SchemeFetcher map[string]Fetcher

var _ Fetcher = SchemeFetcher(nil)

func (s SchemeFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	f, ok := s[strings.ToLower(u.Scheme)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	return f.Fetch(ctx, rawURL)
}
