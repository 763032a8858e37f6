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

package reconcile

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/rewritesync/pkg/source"
	"github.com/walteh/rewritesync/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ChunkSize is the buffer used to stream remote content to disk
const ChunkSize = 4096

const (
	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644

	ownerRead  os.FileMode = 0o400
	ownerWrite os.FileMode = 0o200
	ownerExec  os.FileMode = 0o100
)

// ✍️ Writer writes a single after snapshot to disk
type Writer struct {
	fs afero.Fs
}

// 🏭 NewWriter creates a writer on the given filesystem
func NewWriter(fs afero.Fs) *Writer {
	return &Writer{fs: fs}
}

// Write replaces target with the content of after, creating parent
// directories as needed. Opaque snapshots are never written.
func (w *Writer) Write(ctx context.Context, target string, after source.Snapshot) error {
	logger := zerolog.Ctx(ctx)

	if after == nil {
		return errors.Errorf("writing %s: no content", target)
	}

	if after.Kind() == source.KindOpaque {
		logger.Debug().Str("path", target).Msg("opaque content left untouched")
		return nil
	}

	if err := w.fs.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return errors.Errorf("creating parent directories for %s: %w", target, err)
	}

	switch s := after.(type) {
	case *source.Binary:
		if err := w.writeBytes(target, s.Bytes); err != nil {
			return err
		}
	case *source.Remote:
		if err := w.writeRemote(ctx, target, s); err != nil {
			return err
		}
	case *source.Text:
		content, err := text.Encode(s.Charset, s.Print())
		if err != nil {
			return errors.Errorf("rendering %s: %w", target, err)
		}
		if err := w.writeBytes(target, content); err != nil {
			return err
		}
	default:
		return errors.Errorf("writing %s: unsupported snapshot %T", target, after)
	}

	logger.Debug().Str("path", target).Str("kind", after.Kind().String()).Msg("wrote file")

	return w.syncPermissions(target, after.Attributes())
}

func (w *Writer) writeBytes(target string, content []byte) error {
	f, err := w.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return errors.Errorf("opening %s: %w", target, err)
	}

	if _, err := f.Write(content); err != nil {
		f.Close()
		return errors.Errorf("writing %s: %w", target, err)
	}

	if err := f.Close(); err != nil {
		return errors.Errorf("closing %s: %w", target, err)
	}
	return nil
}

// writeRemote streams the remote payload in fixed size chunks
func (w *Writer) writeRemote(ctx context.Context, target string, s *source.Remote) error {
	rc, err := s.Open(ctx)
	if err != nil {
		return errors.Errorf("fetching %s for %s: %w", s.URI, target, err)
	}
	defer rc.Close()

	f, err := w.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return errors.Errorf("opening %s: %w", target, err)
	}

	buf := make([]byte, ChunkSize)
	for {
		n, rerr := rc.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				f.Close()
				return errors.Errorf("writing %s: %w", target, werr)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			f.Close()
			return errors.Errorf("reading %s: %w", s.URI, rerr)
		}
	}

	if err := f.Close(); err != nil {
		return errors.Errorf("closing %s: %w", target, err)
	}
	return nil
}

// syncPermissions sets owner read/write/execute bits when they differ from attrs
func (w *Writer) syncPermissions(target string, attrs *source.Attributes) error {
	if attrs == nil {
		return nil
	}

	info, err := w.fs.Stat(target)
	if err != nil {
		return errors.Errorf("reading permissions of %s: %w", target, err)
	}

	current := info.Mode().Perm()
	want := current
	want = setBit(want, ownerRead, attrs.Readable)
	want = setBit(want, ownerWrite, attrs.Writable)
	want = setBit(want, ownerExec, attrs.Executable)

	if want == current {
		return nil
	}

	if err := w.fs.Chmod(target, want); err != nil {
		return errors.Errorf("setting permissions of %s: %w", target, err)
	}
	return nil
}

func setBit(mode, bit os.FileMode, on bool) os.FileMode {
	if on {
		return mode | bit
	}
	return mode &^ bit
}
