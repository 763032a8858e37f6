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

package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/rewritesync/pkg/diff"
	"github.com/walteh/rewritesync/pkg/source"
)

func text(path, content string) *source.Text {
	return &source.Text{SourcePath: path, Doc: source.PlainText(content)}
}

func TestBetween(t *testing.T) {
	tests := []struct {
		name   string
		before source.Snapshot
		after  source.Snapshot
		want   string
	}{
		{
			name:   "both_absent",
			before: nil,
			after:  nil,
			want:   "",
		},
		{
			name:   "text_changed_in_place",
			before: text("a/Foo.txt", "x\n"),
			after:  text("a/Foo.txt", "y\n"),
			want: "diff --git a/a/Foo.txt b/a/Foo.txt\n" +
				"--- a/a/Foo.txt\n" +
				"+++ b/a/Foo.txt\n" +
				"@@ -1 +1 @@\n" +
				"-x\n" +
				"+y\n",
		},
		{
			name:   "text_unchanged",
			before: text("a/Foo.txt", "same\n"),
			after:  text("a/Foo.txt", "same\n"),
			want:   "",
		},
		{
			name:   "generated_text",
			before: nil,
			after:  text("new.txt", "hello\n"),
			want: "diff --git a/new.txt b/new.txt\n" +
				"new file mode 100644\n" +
				"--- /dev/null\n" +
				"+++ b/new.txt\n" +
				"@@ -0,0 +1 @@\n" +
				"+hello\n",
		},
		{
			name:   "deleted_text",
			before: text("old.txt", "bye\n"),
			after:  nil,
			want: "diff --git a/old.txt b/old.txt\n" +
				"deleted file mode 100644\n" +
				"--- a/old.txt\n" +
				"+++ /dev/null\n" +
				"@@ -1 +0,0 @@\n" +
				"-bye\n",
		},
		{
			name:   "missing_trailing_newline",
			before: text("a.txt", "x"),
			after:  text("a.txt", "x\n"),
			want: "diff --git a/a.txt b/a.txt\n" +
				"--- a/a.txt\n" +
				"+++ b/a.txt\n" +
				"@@ -1 +1 @@\n" +
				"-x\n" +
				"\\ No newline at end of file\n" +
				"+x\n",
		},
		{
			name:   "opaque_in_place",
			before: &source.Opaque{SourcePath: "blob.dat"},
			after:  &source.Opaque{SourcePath: "blob.dat"},
			want:   "",
		},
		{
			name:   "opaque_moved",
			before: &source.Opaque{SourcePath: "a/blob.dat"},
			after:  &source.Opaque{SourcePath: "b/blob.dat"},
			want: "diff --git a/a/blob.dat b/b/blob.dat\n" +
				"rename from a/blob.dat\n" +
				"rename to b/blob.dat\n",
		},
		{
			name:   "binary_changed",
			before: &source.Binary{SourcePath: "img.png", Bytes: []byte{1, 2}},
			after:  &source.Binary{SourcePath: "img.png", Bytes: []byte{1, 3}},
			want: "diff --git a/img.png b/img.png\n" +
				"Binary files a/img.png and b/img.png differ\n",
		},
		{
			name:   "binary_unchanged",
			before: &source.Binary{SourcePath: "img.png", Bytes: []byte{1, 2}},
			after:  &source.Binary{SourcePath: "img.png", Bytes: []byte{1, 2}},
			want:   "",
		},
		{
			name:   "remote_generated",
			before: nil,
			after:  &source.Remote{SourcePath: "lib/tool.jar", URI: "https://example.com/tool.jar"},
			want: "diff --git a/lib/tool.jar b/lib/tool.jar\n" +
				"new file mode 100644\n" +
				"Remote files /dev/null and b/lib/tool.jar differ (fetched from https://example.com/tool.jar)\n",
		},
		{
			name:   "mode_only",
			before: &source.Text{SourcePath: "run.sh", Doc: source.PlainText("echo\n"), Attrs: &source.Attributes{Readable: true, Writable: true}},
			after:  &source.Text{SourcePath: "run.sh", Doc: source.PlainText("echo\n"), Attrs: &source.Attributes{Readable: true, Writable: true, Executable: true}},
			want: "diff --git a/run.sh b/run.sh\n" +
				"old mode 100644\n" +
				"new mode 100755\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diff.Between(tt.before, tt.after)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == "", diff.IsEmpty(tt.before, tt.after))
		})
	}
}

func TestLineStats(t *testing.T) {
	tests := []struct {
		name   string
		before source.Snapshot
		after  source.Snapshot
		want   diff.Stats
	}{
		{
			name:   "replace_and_add",
			before: text("a.txt", "a\nb\n"),
			after:  text("a.txt", "a\nc\nd\n"),
			want:   diff.Stats{Added: 2, Removed: 1},
		},
		{
			name:   "generated",
			before: nil,
			after:  text("a.txt", "one\ntwo\n"),
			want:   diff.Stats{Added: 2},
		},
		{
			name:   "binary_has_no_line_stats",
			before: &source.Binary{SourcePath: "a.bin", Bytes: []byte{1}},
			after:  &source.Binary{SourcePath: "a.bin", Bytes: []byte{2}},
			want:   diff.Stats{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, diff.LineStats(tt.before, tt.after))
		})
	}
}
