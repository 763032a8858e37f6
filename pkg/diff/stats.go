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

package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/walteh/rewritesync/pkg/source"
)

// 📊 Stats counts added and removed lines between two snapshots
type Stats struct {
	Added   int
	Removed int
}

// IsZero reports whether no lines changed
func (s Stats) IsZero() bool {
	return s.Added == 0 && s.Removed == 0
}

// LineStats computes line statistics for text snapshots; other representations yield zero stats
func LineStats(before, after source.Snapshot) Stats {
	if !textOrAbsent(before) || !textOrAbsent(after) {
		return Stats{}
	}
	a, b := printed(before), printed(after)
	if a == b {
		return Stats{}
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var st Stats
	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			st.Added += n
		case diffmatchpatch.DiffDelete:
			st.Removed += n
		}
	}
	return st
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
