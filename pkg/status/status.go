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

package status

import (
	"github.com/walteh/rewritesync/pkg/classify"
	"github.com/walteh/rewritesync/pkg/diff"
	"github.com/walteh/rewritesync/pkg/source"
)

// 🎛️ Mode is how a run treats the working tree
type Mode int

const (
	ModeApply  Mode = iota // changes are written to the working tree
	ModeDryRun             // changes are rendered into a patch file
)

// String returns a string representation of Mode
func (m Mode) String() string {
	switch m {
	case ModeApply:
		return "apply"
	case ModeDryRun:
		return "dry-run"
	default:
		return "unknown"
	}
}

// 📄 Entry describes one classified change
type Entry struct {
	Kind           classify.Kind
	Path           string      // path after the change, or the deleted path
	From           string      // original path, set for moves only
	Representation source.Kind // representation of the after snapshot, or the before one for deletes
	Stats          diff.Stats  // line statistics for text changes
}

// NewEntry builds an entry from a classified record
func NewEntry(kind classify.Kind, r source.Record) Entry {
	e := Entry{
		Kind:  kind,
		Path:  r.Path(),
		Stats: diff.LineStats(r.Before, r.After),
	}
	switch {
	case r.After != nil:
		e.Representation = r.After.Kind()
	case r.Before != nil:
		e.Representation = r.Before.Kind()
	}
	if kind == classify.Moved && r.Before != nil {
		e.From = r.Before.Path()
	}
	return e
}

// 📊 Report is the outcome of a single run
type Report struct {
	Mode      Mode
	Root      string
	Entries   []Entry
	Reaped    []string // directories removed because they became empty
	PatchPath string   // set in dry-run mode when a patch was written
}

// 🏭 NewReport creates an empty report
func NewReport(mode Mode, root string) *Report {
	return &Report{
		Mode: mode,
		Root: root,
	}
}

// Track records a change
func (r *Report) Track(e Entry) {
	r.Entries = append(r.Entries, e)
}

// TrackChangeset records every change of a changeset in its fixed order
func (r *Report) TrackChangeset(cs classify.Changeset) {
	_ = cs.Each(func(k classify.Kind, rec source.Record) error {
		r.Track(NewEntry(k, rec))
		return nil
	})
}

// AddReaped records directories removed by the reaper
func (r *Report) AddReaped(dirs ...string) {
	r.Reaped = append(r.Reaped, dirs...)
}

// HasChanges reports whether any change was tracked
func (r *Report) HasChanges() bool {
	return len(r.Entries) > 0
}

// Count returns the number of entries of the given kind
func (r *Report) Count(kind classify.Kind) int {
	n := 0
	for _, e := range r.Entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Lines formats one line per entry
func (r *Report) Lines(f Formatter) []string {
	lines := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		lines = append(lines, f.FormatEntry(r.Mode, e))
	}
	return lines
}
