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

// Package patch renders a changeset as one reviewable git-style patch.
package patch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/walteh/rewritesync/pkg/classify"
	"github.com/walteh/rewritesync/pkg/diff"
	"github.com/walteh/rewritesync/pkg/source"
	"gitlab.com/tozd/go/errors"
)

// FileName is the name of the patch written into the output directory
const FileName = "rewrite.patch"

// 📦 Serialize concatenates the diff block of every record in the order
// generated, deleted, moved, refactored in place. Each block ends with a
// newline. The result depends only on cs.
func Serialize(cs classify.Changeset) string {
	var sb strings.Builder
	_ = cs.Each(func(_ classify.Kind, rec source.Record) error {
		block := diff.Between(rec.Before, rec.After)
		if block == "" {
			return nil
		}
		sb.WriteString(block)
		if !strings.HasSuffix(block, "\n") {
			sb.WriteByte('\n')
		}
		return nil
	})
	return sb.String()
}

// 💾 WriteFile writes text as FileName into dir, creating dir when needed,
// and returns the path of the written file
func WriteFile(fs afero.Fs, dir, text string) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Errorf("creating output directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, FileName)
	if err := afero.WriteFile(fs, path, []byte(text), os.FileMode(0o644)); err != nil {
		return "", errors.Errorf("writing patch %s: %w", path, err)
	}
	return path, nil
}
