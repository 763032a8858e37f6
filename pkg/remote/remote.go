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

// Package remote resolves Remote snapshot URIs to streaming fetchers.
//
// Each URI scheme is served by a registered Factory. The http, https and file
// schemes are built in; github and s3 register themselves from their own
// packages when imported.
package remote

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/rewritesync/pkg/source"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options carries credentials and clients shared by all fetchers
type Options struct {
	HTTPClient  *http.Client
	GitHubToken string
	S3          S3Options
}

// 🔧 S3Options configures the s3 scheme
type S3Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// 🏭 Factory builds a fetcher for one scheme
type Factory func(ctx context.Context, opts Options) (source.Fetcher, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// 📝 Register makes a scheme available to every Resolver
func Register(scheme string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(scheme)] = factory
}

func lookup(scheme string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[strings.ToLower(scheme)]
	if !ok {
		options := make([]string, 0, len(registry))
		for k := range registry {
			options = append(options, k)
		}
		sort.Strings(options)
		return nil, errors.Errorf("scheme %q not supported, options: %s", scheme, strings.Join(options, ", "))
	}
	return factory, nil
}

// 🌐 Resolver is a source.Fetcher that dispatches on the URI scheme
type Resolver struct {
	opts     Options
	mu       sync.Mutex
	fetchers map[string]source.Fetcher
}

// 🏭 NewResolver creates a resolver with the given options
func NewResolver(opts Options) *Resolver {
	return &Resolver{
		opts:     opts,
		fetchers: make(map[string]source.Fetcher),
	}
}

// Open opens a read stream for uri
func (r *Resolver) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	f, err := r.ForURI(ctx, uri)
	if err != nil {
		return nil, err
	}
	return f.Open(ctx, uri)
}

// ForURI returns the fetcher for the scheme of uri, creating it on first use
func (r *Resolver) ForURI(ctx context.Context, uri string) (source.Fetcher, error) {
	scheme, err := Scheme(uri)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.fetchers[scheme]; ok {
		return f, nil
	}

	factory, err := lookup(scheme)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Str("scheme", scheme).Msg("creating remote fetcher")
	f, err := factory(ctx, r.opts)
	if err != nil {
		return nil, errors.Errorf("creating %s fetcher: %w", scheme, err)
	}
	r.fetchers[scheme] = f
	return f, nil
}

// Scheme extracts the lower-cased scheme of uri
func Scheme(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", errors.Errorf("parsing remote uri %q: %w", uri, err)
	}
	if u.Scheme == "" {
		return "", errors.Errorf("remote uri %q has no scheme", uri)
	}
	return strings.ToLower(u.Scheme), nil
}

func init() {
	Register("http", newHTTPFetcher)
	Register("https", newHTTPFetcher)
	Register("file", newFileFetcher)
}

// 🔍 httpFetcher downloads content with a plain GET
type httpFetcher struct {
	client *http.Client
}

func newHTTPFetcher(_ context.Context, opts Options) (source.Fetcher, error) {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &httpFetcher{client: client}, nil
}

func (f *httpFetcher) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Errorf("downloading %s: %w", uri, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("downloading %s: unexpected status code: %d", uri, resp.StatusCode)
	}

	return resp.Body, nil
}

// 📁 fileFetcher reads content from the local filesystem
type fileFetcher struct{}

func newFileFetcher(_ context.Context, _ Options) (source.Fetcher, error) {
	return fileFetcher{}, nil
}

func (fileFetcher) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Errorf("parsing file uri %q: %w", uri, err)
	}
	f, err := os.Open(u.Path)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", u.Path, err)
	}
	return f, nil
}
