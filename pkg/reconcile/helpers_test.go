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

package reconcile_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rewritesync/pkg/source"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func text(path, content string) *source.Text {
	return &source.Text{SourcePath: path, Doc: source.PlainText(content)}
}

func writeFile(t *testing.T, root, path, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func readFile(t *testing.T, root, path string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	require.NoError(t, err)
	return string(b)
}

func exists(root, path string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(path)))
	return err == nil
}

// 🧪 chunkReader records the size of every read request
type chunkReader struct {
	r     io.Reader
	sizes []int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	c.sizes = append(c.sizes, len(p))
	return c.r.Read(p)
}

func (c *chunkReader) Close() error { return nil }

type readerFetcher struct {
	rc io.ReadCloser
}

func (f *readerFetcher) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	return f.rc, nil
}

// 🧪 countingFs counts calls that mutate the filesystem
type countingFs struct {
	afero.Fs
	mutations []string
}

func (c *countingFs) record(op, name string) { c.mutations = append(c.mutations, op+" "+name) }

func (c *countingFs) Create(name string) (afero.File, error) {
	c.record("create", name)
	return c.Fs.Create(name)
}

func (c *countingFs) Mkdir(name string, perm os.FileMode) error {
	c.record("mkdir", name)
	return c.Fs.Mkdir(name, perm)
}

func (c *countingFs) MkdirAll(path string, perm os.FileMode) error {
	c.record("mkdirall", path)
	return c.Fs.MkdirAll(path, perm)
}

func (c *countingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		c.record("write", name)
	}
	return c.Fs.OpenFile(name, flag, perm)
}

func (c *countingFs) Remove(name string) error {
	c.record("remove", name)
	return c.Fs.Remove(name)
}

func (c *countingFs) RemoveAll(path string) error {
	c.record("removeall", path)
	return c.Fs.RemoveAll(path)
}

func (c *countingFs) Rename(oldname, newname string) error {
	c.record("rename", oldname+" "+newname)
	return c.Fs.Rename(oldname, newname)
}

func (c *countingFs) Chmod(name string, mode os.FileMode) error {
	c.record("chmod", name)
	return c.Fs.Chmod(name, mode)
}

func (c *countingFs) Chtimes(name string, atime, mtime time.Time) error {
	c.record("chtimes", name)
	return c.Fs.Chtimes(name, atime, mtime)
}

// 🧪 caseFoldFs behaves like a case-insensitive filesystem that stores every
// name in lower case, and records renames and directory creation
type caseFoldFs struct {
	afero.Fs
	renames [][2]string
	mkdirs  []string
}

func newCaseFoldFs() *caseFoldFs {
	return &caseFoldFs{Fs: afero.NewMemMapFs()}
}

func fold(name string) string { return strings.ToLower(name) }

func (c *caseFoldFs) Create(name string) (afero.File, error) { return c.Fs.Create(fold(name)) }
func (c *caseFoldFs) Open(name string) (afero.File, error)   { return c.Fs.Open(fold(name)) }
func (c *caseFoldFs) Remove(name string) error               { return c.Fs.Remove(fold(name)) }
func (c *caseFoldFs) RemoveAll(path string) error            { return c.Fs.RemoveAll(fold(path)) }
func (c *caseFoldFs) Stat(name string) (os.FileInfo, error)  { return c.Fs.Stat(fold(name)) }

func (c *caseFoldFs) Chmod(name string, mode os.FileMode) error {
	return c.Fs.Chmod(fold(name), mode)
}

func (c *caseFoldFs) Mkdir(name string, perm os.FileMode) error {
	c.mkdirs = append(c.mkdirs, name)
	return c.Fs.Mkdir(fold(name), perm)
}

func (c *caseFoldFs) MkdirAll(path string, perm os.FileMode) error {
	c.mkdirs = append(c.mkdirs, path)
	return c.Fs.MkdirAll(fold(path), perm)
}

func (c *caseFoldFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return c.Fs.OpenFile(fold(name), flag, perm)
}

func (c *caseFoldFs) Rename(oldname, newname string) error {
	c.renames = append(c.renames, [2]string{oldname, newname})
	if fold(oldname) == fold(newname) {
		return nil
	}
	return c.Fs.Rename(fold(oldname), fold(newname))
}
