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

package remote_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rewritesync/pkg/remote"
	"github.com/walteh/rewritesync/pkg/source"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestResolverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "remote payload")
	}))
	defer srv.Close()

	ctx := testContext(t)
	r := remote.NewResolver(remote.Options{HTTPClient: srv.Client()})

	rc, err := r.Open(ctx, srv.URL+"/tool.jar")
	require.NoError(t, err)
	assert.Equal(t, "remote payload", readAll(t, rc))

	_, err = r.Open(ctx, srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 404")
}

func TestResolverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte("local payload"), 0o644))

	r := remote.NewResolver(remote.Options{})
	rc, err := r.Open(testContext(t), "file://"+filepath.ToSlash(path))
	require.NoError(t, err)
	assert.Equal(t, "local payload", readAll(t, rc))
}

func TestResolverUnknownScheme(t *testing.T) {
	r := remote.NewResolver(remote.Options{})

	_, err := r.Open(testContext(t), "gopher://example.com/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scheme "gopher" not supported`)

	_, err = r.Open(testContext(t), "no-scheme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no scheme")
}

type staticFetcher string

func (s staticFetcher) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(s))), nil
}

func TestResolverCachesFetchers(t *testing.T) {
	created := 0
	remote.Register("counted", func(_ context.Context, _ remote.Options) (source.Fetcher, error) {
		created++
		return staticFetcher("counted"), nil
	})

	ctx := testContext(t)
	r := remote.NewResolver(remote.Options{})
	for i := 0; i < 3; i++ {
		rc, err := r.Open(ctx, "counted://anything")
		require.NoError(t, err)
		assert.Equal(t, "counted", readAll(t, rc))
	}
	assert.Equal(t, 1, created)
}
