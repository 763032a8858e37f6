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
	"fmt"

	"github.com/pterm/pterm"
	"github.com/walteh/rewritesync/pkg/classify"
)

// Formatter defines how report entries are rendered
type Formatter interface {
	// FormatEntry formats one change line
	FormatEntry(mode Mode, e Entry) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFormatter renders plain, emoji-prefixed lines
type DefaultFormatter struct{}

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

// FormatEntry formats a change line, phrased by mode
func (f *DefaultFormatter) FormatEntry(mode Mode, e Entry) string {
	verb := verbs[e.Kind]
	if mode == ModeDryRun {
		verb = dryRunVerbs[e.Kind]
	}

	var line string
	switch e.Kind {
	case classify.Generated:
		line = fmt.Sprintf("✨ %s %s", verb, e.Path)
	case classify.Deleted:
		line = fmt.Sprintf("🗑️  %s %s", verb, e.Path)
	case classify.Moved:
		line = fmt.Sprintf("🚚 %s %s to %s", verb, e.From, e.Path)
	case classify.RefactoredInPlace:
		line = fmt.Sprintf("📝 %s %s", verb, e.Path)
	default:
		line = fmt.Sprintf("❓ %s", e.Path)
	}

	if !e.Stats.IsZero() {
		line += fmt.Sprintf(" (+%d -%d)", e.Stats.Added, e.Stats.Removed)
	}
	return line
}

// FormatError formats an error message with emoji
func (f *DefaultFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

var verbs = map[classify.Kind]string{
	classify.Generated:         "Generated new file",
	classify.Deleted:           "Deleted file",
	classify.Moved:             "Moved file",
	classify.RefactoredInPlace: "Changed file",
}

var dryRunVerbs = map[classify.Kind]string{
	classify.Generated:         "Would generate new file",
	classify.Deleted:           "Would delete file",
	classify.Moved:             "Would move file",
	classify.RefactoredInPlace: "Would change file",
}

// Summary renders a per-kind count table
func (r *Report) Summary() (string, error) {
	data := pterm.TableData{
		{"Change", "Files"},
		{"generated", fmt.Sprint(r.Count(classify.Generated))},
		{"deleted", fmt.Sprint(r.Count(classify.Deleted))},
		{"moved", fmt.Sprint(r.Count(classify.Moved))},
		{"changed", fmt.Sprint(r.Count(classify.RefactoredInPlace))},
	}
	if r.Mode == ModeApply {
		data = append(data, []string{"empty directories removed", fmt.Sprint(len(r.Reaped))})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}
