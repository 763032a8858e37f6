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

package changeset

import (
	"context"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/rewritesync/pkg/reconcile"
	"github.com/walteh/rewritesync/pkg/source"
	"github.com/walteh/rewritesync/pkg/text"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many working-tree files are read at once
const DefaultConcurrency = 8

// ⚙️ Options configures a Loader
type Options struct {
	// Root is the directory from_disk paths are read from
	Root string
	// Fetcher is attached to every remote snapshot
	Fetcher source.Fetcher
	// Concurrency bounds from_disk reads; zero means DefaultConcurrency
	Concurrency int
}

// 📥 Loader turns manifests into records
type Loader struct {
	fs   afero.Fs
	opts Options
}

// 🏭 NewLoader creates a loader reading through fs
func NewLoader(fs afero.Fs, opts Options) *Loader {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Loader{fs: fs, opts: opts}
}

// Load reads and decodes the manifest at path
func (l *Loader) Load(ctx context.Context, path string) ([]source.Record, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading changeset")

	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, errors.Errorf("reading changeset file: %w", err)
	}

	m, err := Parse(data, format)
	if err != nil {
		return nil, errors.Errorf("parsing changeset %s: %w", path, err)
	}

	return l.Records(ctx, m)
}

// Records builds the records of a decoded manifest, preserving their order.
// from_disk snapshots are read from the working tree concurrently.
func (l *Loader) Records(ctx context.Context, m *Manifest) ([]source.Record, error) {
	records := make([]source.Record, len(m.Records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Concurrency)

	for i, rs := range m.Records {
		sides := []struct {
			desc *SnapshotSpec
			dst  *source.Snapshot
		}{
			{rs.Before, &records[i].Before},
			{rs.After, &records[i].After},
		}
		for _, side := range sides {
			if side.desc == nil {
				continue
			}
			if !side.desc.FromDisk {
				snap, err := side.desc.build(l.opts.Fetcher)
				if err != nil {
					_ = g.Wait()
					return nil, errors.Errorf("record %d: %w", i, err)
				}
				*side.dst = snap
				continue
			}

			if side.desc.representations() > 1 {
				_ = g.Wait()
				return nil, errors.Errorf("record %d: snapshot %s: more than one content representation", i, side.desc.Path)
			}
			i, desc, dst := i, side.desc, side.dst
			g.Go(func() error {
				snap, err := l.fromDisk(gctx, desc)
				if err != nil {
					return errors.Errorf("record %d: %w", i, err)
				}
				*dst = snap
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Int("records", len(records)).Msg("loaded changeset")
	return records, nil
}

// fromDisk snapshots the current working-tree file: decodable text becomes
// Text, anything else Binary. Owner permission bits are recorded.
func (l *Loader) fromDisk(ctx context.Context, desc *SnapshotSpec) (source.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target, err := reconcile.Resolve(l.opts.Root, desc.Path)
	if err != nil {
		return nil, err
	}

	info, err := l.fs.Stat(target)
	if err != nil {
		return nil, errors.Errorf("reading %s from disk: %w", desc.Path, err)
	}
	if info.IsDir() {
		return nil, errors.Errorf("reading %s from disk: is a directory", desc.Path)
	}

	data, err := afero.ReadFile(l.fs, target)
	if err != nil {
		return nil, errors.Errorf("reading %s from disk: %w", desc.Path, err)
	}

	attrs := attributesOf(info.Mode())
	notes := desc.markers()

	if desc.Charset != "" && !strings.EqualFold(desc.Charset, text.DefaultCharset) {
		content, err := text.Decode(desc.Charset, data)
		if err != nil {
			return nil, errors.Errorf("decoding %s as %s: %w", desc.Path, desc.Charset, err)
		}
		return &source.Text{SourcePath: desc.Path, Charset: desc.Charset, Attrs: attrs, Doc: source.PlainText(content), Notes: notes}, nil
	}

	if utf8.Valid(data) {
		return &source.Text{SourcePath: desc.Path, Charset: desc.Charset, Attrs: attrs, Doc: source.PlainText(string(data)), Notes: notes}, nil
	}

	return &source.Binary{SourcePath: desc.Path, Attrs: attrs, Bytes: data, Notes: notes}, nil
}

func attributesOf(mode os.FileMode) *source.Attributes {
	perm := mode.Perm()
	return &source.Attributes{
		Readable:   perm&0o400 != 0,
		Writable:   perm&0o200 != 0,
		Executable: perm&0o100 != 0,
	}
}
