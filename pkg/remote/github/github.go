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

// Package github serves github://owner/repo/path@ref remote URIs through the
// GitHub contents API.
package github

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"github.com/walteh/rewritesync/pkg/remote"
	"github.com/walteh/rewritesync/pkg/source"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/oauth2"
)

const Scheme = "github"

func init() {
	remote.Register(Scheme, New)
}

// 🔌 ContentsClient is the part of the GitHub API the fetcher needs
type ContentsClient interface {
	DownloadContents(ctx context.Context, owner, repo, filepath string, opts *github.RepositoryContentGetOptions) (io.ReadCloser, *github.Response, error)
}

// 🎯 Fetcher streams repository files from GitHub
type Fetcher struct {
	client ContentsClient
}

// 🏭 New creates a GitHub fetcher, authenticated when a token is configured
func New(ctx context.Context, opts remote.Options) (source.Fetcher, error) {
	logger := zerolog.Ctx(ctx)

	var client *github.Client
	if opts.GitHubToken == "" {
		logger.Debug().Msg("no github token configured, using unauthenticated client")
		client = github.NewClient(opts.HTTPClient)
	} else {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: opts.GitHubToken},
		)
		client = github.NewClient(oauth2.NewClient(ctx, ts))
	}

	return NewWithClient(client.Repositories), nil
}

// 🏭 NewWithClient creates a fetcher over an existing contents client
func NewWithClient(client ContentsClient) *Fetcher {
	return &Fetcher{client: client}
}

// 📍 Location is a parsed github:// URI
type Location struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// ParseURI parses github://owner/repo/path/to/file[@ref]
func ParseURI(uri string) (Location, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, errors.Errorf("parsing github uri %q: %w", uri, err)
	}
	if u.Scheme != Scheme {
		return Location{}, errors.Errorf("not a github uri: %s", uri)
	}

	rest := strings.TrimPrefix(u.Path, "/")
	var ref string
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		ref = rest[i+1:]
		rest = rest[:i]
	}

	repo, path, ok := strings.Cut(rest, "/")
	if u.Host == "" || repo == "" || !ok || path == "" {
		return Location{}, errors.Errorf("invalid github uri %q: want github://owner/repo/path[@ref]", uri)
	}

	return Location{Owner: u.Host, Repo: repo, Path: path, Ref: ref}, nil
}

// Open streams the file named by uri
func (f *Fetcher) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("owner", loc.Owner).
		Str("repo", loc.Repo).
		Str("path", loc.Path).
		Str("ref", loc.Ref).
		Msg("downloading github contents")

	var opts *github.RepositoryContentGetOptions
	if loc.Ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: loc.Ref}
	}

	rc, _, err := f.client.DownloadContents(ctx, loc.Owner, loc.Repo, loc.Path, opts)
	if err != nil {
		return nil, errors.Errorf("downloading %s/%s/%s: %w", loc.Owner, loc.Repo, loc.Path, err)
	}
	return rc, nil
}
