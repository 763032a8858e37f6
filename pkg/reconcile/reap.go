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

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/rewritesync/pkg/classify"
	"github.com/walteh/rewritesync/pkg/source"
	"gitlab.com/tozd/go/errors"
)

// 🧹 Reap removes the directories that deletes and moves left empty.
//
// Candidates are the parent directories of every deleted or moved before
// path, deduplicated in first-seen order. Only those directories are
// considered: a grandparent emptied by this pass is left in place. The
// returned paths are relative to root, slash separated.
func Reap(ctx context.Context, fs afero.Fs, root string, cs classify.Changeset) ([]string, error) {
	logger := zerolog.Ctx(ctx)
	root = filepath.Clean(root)

	seen := make(map[string]bool)
	var candidates []string
	for _, group := range [][]source.Record{cs.Deleted, cs.Moved} {
		for _, rec := range group {
			target, err := Resolve(root, rec.Before.Path())
			if err != nil {
				return nil, err
			}
			dir := filepath.Dir(target)
			if dir == root || seen[dir] {
				continue
			}
			seen[dir] = true
			candidates = append(candidates, dir)
		}
	}

	var removed []string
	for _, dir := range candidates {
		entries, err := afero.ReadDir(fs, dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return removed, errors.Errorf("listing %s: %w", dir, err)
		}
		if len(entries) > 0 {
			continue
		}

		if err := fs.Remove(dir); err != nil {
			return removed, errors.Errorf("removing empty directory %s: %w", dir, err)
		}

		rel, err := filepath.Rel(root, dir)
		if err != nil {
			rel = dir
		}
		logger.Debug().Str("path", dir).Msg("removed empty directory")
		removed = append(removed, filepath.ToSlash(rel))
	}

	return removed, nil
}
