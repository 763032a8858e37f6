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

// Package diff renders the observable difference between two snapshots as a
// git-style unified diff block.
package diff

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/walteh/rewritesync/pkg/source"
)

const (
	devNull      = "/dev/null"
	contextLines = 3
	noNewline    = "\\ No newline at end of file\n"
)

// 🔍 Between returns the diff block for before→after.
//
// Either side may be nil. The result is empty when the pair carries no
// observable change: same path, same mode and same content. Content that
// cannot be printed (binary, remote, opaque) yields a one-line structural
// body instead of a textual one.
func Between(before, after source.Snapshot) string {
	if before == nil && after == nil {
		return ""
	}

	oldPath, newPath := paths(before, after)

	var header strings.Builder
	changed := false

	switch {
	case before == nil:
		fmt.Fprintf(&header, "new file mode %s\n", fileMode(after.Attributes()))
		changed = true
	case after == nil:
		fmt.Fprintf(&header, "deleted file mode %s\n", fileMode(before.Attributes()))
		changed = true
	default:
		if oldPath != newPath {
			fmt.Fprintf(&header, "rename from %s\nrename to %s\n", oldPath, newPath)
			changed = true
		}
		if modeChanged(before.Attributes(), after.Attributes()) {
			fmt.Fprintf(&header, "old mode %s\nnew mode %s\n", fileMode(before.Attributes()), fileMode(after.Attributes()))
			changed = true
		}
	}

	body := content(before, after, oldPath, newPath)
	if !changed && body == "" {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "diff --git a/%s b/%s\n", oldPath, newPath)
	sb.WriteString(header.String())
	sb.WriteString(body)
	return sb.String()
}

// IsEmpty reports whether before→after has no observable change
func IsEmpty(before, after source.Snapshot) bool {
	return Between(before, after) == ""
}

func paths(before, after source.Snapshot) (string, string) {
	var oldPath, newPath string
	if before != nil {
		oldPath = filepath.ToSlash(before.Path())
	}
	if after != nil {
		newPath = filepath.ToSlash(after.Path())
	}
	if oldPath == "" {
		oldPath = newPath
	}
	if newPath == "" {
		newPath = oldPath
	}
	return oldPath, newPath
}

func fileMode(attrs *source.Attributes) string {
	if attrs != nil && attrs.Executable {
		return "100755"
	}
	return "100644"
}

func modeChanged(before, after *source.Attributes) bool {
	if before == nil || after == nil {
		return false
	}
	return before.Executable != after.Executable
}

// content renders the body of the block, dispatching on the representations
func content(before, after source.Snapshot, oldPath, newPath string) string {
	fromFile, toFile := "a/"+oldPath, "b/"+newPath
	if before == nil {
		fromFile = devNull
	}
	if after == nil {
		toFile = devNull
	}

	if isKind(before, source.KindOpaque) || isKind(after, source.KindOpaque) {
		// opaque content is never read, only a path change can be shown
		return ""
	}

	if textOrAbsent(before) && textOrAbsent(after) {
		return unified(printed(before), printed(after), fromFile, toFile)
	}

	if r, ok := after.(*source.Remote); ok {
		if prev, ok := before.(*source.Remote); ok && prev.URI == r.URI {
			return ""
		}
		return fmt.Sprintf("Remote files %s and %s differ (fetched from %s)\n", fromFile, toFile, r.URI)
	}

	if b, ok := after.(*source.Binary); ok {
		if prev, ok := before.(*source.Binary); ok && string(prev.Bytes) == string(b.Bytes) {
			return ""
		}
	}

	return fmt.Sprintf("Binary files %s and %s differ\n", fromFile, toFile)
}

func isKind(s source.Snapshot, k source.Kind) bool {
	return s != nil && s.Kind() == k
}

func textOrAbsent(s source.Snapshot) bool {
	return s == nil || s.Kind() == source.KindText
}

func printed(s source.Snapshot) string {
	if t, ok := s.(*source.Text); ok {
		return t.Print()
	}
	return ""
}

func unified(a, b, fromFile, toFile string) string {
	if a == b {
		return ""
	}
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(a),
		B:        splitLines(b),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  contextLines,
	})
	if err != nil {
		// difflib only fails on writer errors, which a strings.Builder never returns
		return fmt.Sprintf("Files %s and %s differ\n", fromFile, toFile)
	}
	return out
}

// splitLines keeps line terminators and marks a missing final newline the way git does
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		return lines[:len(lines)-1]
	}
	lines[len(lines)-1] += "\n" + noNewline
	return lines
}
