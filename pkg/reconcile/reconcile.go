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
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/rewritesync/pkg/classify"
	"github.com/walteh/rewritesync/pkg/source"
	"github.com/walteh/rewritesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔄 Reconciler applies changesets below a root directory
type Reconciler struct {
	fs     afero.Fs
	root   string
	writer *Writer
}

// 🏭 New creates a reconciler for root on the given filesystem
func New(fs afero.Fs, root string) *Reconciler {
	return &Reconciler{
		fs:     fs,
		root:   filepath.Clean(root),
		writer: NewWriter(fs),
	}
}

// Root returns the directory changes are applied below
func (r *Reconciler) Root() string {
	return r.root
}

// Apply writes the changeset to disk. Every applied change is tracked on
// report when it is not nil. The first failure stops the run; changes
// applied before it stay on disk.
func (r *Reconciler) Apply(ctx context.Context, cs classify.Changeset, report *status.Report) error {
	if err := ctx.Err(); err != nil {
		return errors.Errorf("apply cancelled: %w", err)
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("root", r.root).Int("changes", cs.Len()).Msg("applying changeset")

	track := func(kind classify.Kind, rec source.Record) {
		if report != nil {
			report.Track(status.NewEntry(kind, rec))
		}
	}

	for _, rec := range cs.Generated {
		target, err := Resolve(r.root, rec.After.Path())
		if err != nil {
			return err
		}
		if err := r.writer.Write(ctx, target, rec.After); err != nil {
			return errors.Errorf("generating %s: %w", rec.After.Path(), err)
		}
		track(classify.Generated, rec)
	}

	// deletes run before moves and in-place writes so those cannot collide
	// with a file that only differs by case on case-insensitive filesystems
	for _, rec := range cs.Deleted {
		if err := r.delete(ctx, rec.Before.Path()); err != nil {
			return err
		}
		track(classify.Deleted, rec)
	}

	for _, rec := range cs.Moved {
		if err := r.move(ctx, rec); err != nil {
			return errors.Errorf("moving %s to %s: %w", rec.Before.Path(), rec.After.Path(), err)
		}
		track(classify.Moved, rec)
	}

	for _, rec := range cs.RefactoredInPlace {
		target, err := Resolve(r.root, rec.After.Path())
		if err != nil {
			return err
		}
		if err := r.writer.Write(ctx, target, rec.After); err != nil {
			return errors.Errorf("updating %s: %w", rec.After.Path(), err)
		}
		track(classify.RefactoredInPlace, rec)
	}

	return nil
}

// delete removes a file that no longer exists after the run.
//
// A file that is already gone counts as deleted. Any other failure is fatal,
// even though some case-insensitive filesystems are known to report a failed
// delete for a file that was in fact removed.
func (r *Reconciler) delete(ctx context.Context, path string) error {
	target, err := Resolve(r.root, path)
	if err != nil {
		return err
	}

	if err := r.fs.Remove(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			zerolog.Ctx(ctx).Debug().Str("path", target).Msg("file already deleted")
			return nil
		}
		return errors.Errorf("deleting %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", target).Msg("deleted file")
	return nil
}

func (r *Reconciler) move(ctx context.Context, rec source.Record) error {
	logger := zerolog.Ctx(ctx)

	from, err := Resolve(r.root, rec.Before.Path())
	if err != nil {
		return err
	}
	to, err := Resolve(r.root, rec.After.Path())
	if err != nil {
		return err
	}

	fromDir, toDir := filepath.Dir(from), filepath.Dir(to)

	_, statErr := r.fs.Stat(toDir)
	switch {
	case statErr == nil && fromDir != toDir && strings.EqualFold(fromDir, toDir):
		// the after directory only "exists" through case folding; give it the
		// requested case instead of writing into the old spelling
		if err := r.matchCase(ctx, toDir); err != nil {
			return err
		}
	case statErr == nil:
	case errors.Is(statErr, os.ErrNotExist):
		if err := r.fs.MkdirAll(toDir, dirMode); err != nil {
			return errors.Errorf("creating directory %s: %w", toDir, err)
		}
	default:
		return errors.Errorf("checking directory %s: %w", toDir, statErr)
	}

	if rec.After.Kind() == source.KindOpaque {
		// content is unknown, so the bytes on disk are the only copy
		if err := r.fs.Rename(from, to); err != nil {
			return errors.Errorf("renaming %s: %w", from, err)
		}
		logger.Debug().Str("from", from).Str("to", to).Msg("renamed file")
		return nil
	}

	if err := r.fs.Remove(from); err != nil {
		// some case-insensitive filesystems report a failure for a delete that
		// succeeded; the write below is what matters for this step
		logger.Warn().Err(err).Str("path", from).Msg("delete of moved file reported a failure")
	}

	return r.writer.Write(ctx, to, rec.After)
}

// matchCase renames every directory between root and dir whose listed
// spelling differs from dir only by case. Segments with no listed entry are
// left for MkdirAll.
func (r *Reconciler) matchCase(ctx context.Context, dir string) error {
	rel, err := filepath.Rel(r.root, dir)
	if err != nil {
		return errors.Errorf("relating %s to %s: %w", dir, r.root, err)
	}

	cur := r.root
	for _, seg := range strings.Split(rel, string(filepath.Separator)) {
		listed, err := r.listedAs(cur, seg)
		if err != nil {
			return err
		}
		next := filepath.Join(cur, seg)
		if listed != "" && listed != seg {
			old := filepath.Join(cur, listed)
			if err := r.fs.Rename(old, next); err != nil {
				return errors.Errorf("renaming directory %s to %s: %w", old, next, err)
			}
			zerolog.Ctx(ctx).Debug().Str("from", old).Str("to", next).Msg("renamed directory")
		}
		cur = next
	}
	return nil
}

// listedAs returns the entry of dir that matches name, preferring the exact
// spelling over a case-folded one, or "" when dir lists neither
func (r *Reconciler) listedAs(dir, name string) (string, error) {
	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return "", errors.Errorf("listing %s: %w", dir, err)
	}
	folded := ""
	for _, e := range entries {
		switch {
		case e.Name() == name:
			return name, nil
		case folded == "" && strings.EqualFold(e.Name(), name):
			folded = e.Name()
		}
	}
	return folded, nil
}

// Resolve joins a source path onto root, refusing paths that leave root
func Resolve(root, path string) (string, error) {
	if path == "" {
		return "", errors.New("empty source path")
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("source path %q is outside of %s", path, root)
	}
	return filepath.Join(root, clean), nil
}
