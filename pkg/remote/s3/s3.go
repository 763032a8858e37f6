// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package s3 serves s3://bucket/key remote URIs from any S3 compatible store.
package s3

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
	"github.com/walteh/rewritesync/pkg/remote"
	"github.com/walteh/rewritesync/pkg/source"
	"gitlab.com/tozd/go/errors"
)

const Scheme = "s3"

func init() {
	remote.Register(Scheme, New)
}

// 🔌 ObjectOpener opens a single object for streaming
type ObjectOpener func(ctx context.Context, bucket, key string) (io.ReadCloser, error)

// 🎯 Fetcher streams objects out of a bucket
type Fetcher struct {
	open ObjectOpener
}

// 🏭 New creates an S3 fetcher backed by a minio client
func New(ctx context.Context, opts remote.Options) (source.Fetcher, error) {
	cfg := opts.S3
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, errors.New("s3 access key and secret key are required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, errors.Errorf("init s3 client: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("endpoint", endpoint).Str("region", region).Msg("created s3 client")

	return NewWithOpener(func(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
		obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return nil, err
		}
		// GetObject is lazy, Stat surfaces a missing key before anything is written
		if _, err := obj.Stat(); err != nil {
			obj.Close()
			return nil, err
		}
		return obj, nil
	}), nil
}

// 🏭 NewWithOpener creates a fetcher over a custom object opener
func NewWithOpener(open ObjectOpener) *Fetcher {
	return &Fetcher{open: open}
}

// ParseURI splits s3://bucket/key into its parts
func ParseURI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", errors.Errorf("parsing s3 uri %q: %w", uri, err)
	}
	if u.Scheme != Scheme {
		return "", "", errors.Errorf("not an s3 uri: %s", uri)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", errors.Errorf("invalid s3 uri %q: want s3://bucket/key", uri)
	}
	return bucket, key, nil
}

// Open streams the object named by uri
func (f *Fetcher) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Str("bucket", bucket).Str("key", key).Msg("opening s3 object")

	rc, err := f.open(ctx, bucket, key)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return nil, errors.Errorf("s3 object %s/%s does not exist: %w", bucket, key, err)
		}
		return nil, errors.Errorf("opening s3 object %s/%s: %w", bucket, key, err)
	}
	return rc, nil
}
