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

package operation_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rewritesync/pkg/changeset"
	"github.com/walteh/rewritesync/pkg/classify"
	"github.com/walteh/rewritesync/pkg/log"
	"github.com/walteh/rewritesync/pkg/operation"
	"github.com/walteh/rewritesync/pkg/patch"
	"github.com/walteh/rewritesync/pkg/scan"
	"github.com/walteh/rewritesync/pkg/source"
	"github.com/walteh/rewritesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

const root = "/work"

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func text(path, content string) *source.Text {
	return &source.Text{SourcePath: path, Doc: source.PlainText(content)}
}

func seed(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, root+"/"+path, []byte(content), 0o644))
	}
}

func read(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	b, err := afero.ReadFile(fs, root+"/"+path)
	require.NoError(t, err)
	return string(b)
}

func exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, root+"/"+path)
	require.NoError(t, err)
	return ok
}

func mixedRecords() operation.StaticRecords {
	return operation.StaticRecords{
		{After: text("gen/New.txt", "new\n")},
		{Before: text("a/gone.txt", "bye\n")},
		{Before: text("b/Moved.txt", "m\n"), After: text("c/Moved.txt", "m\n")},
		{Before: text("keep/Foo.txt", "x\n"), After: text("keep/Foo.txt", "y\n")},
		{Before: text("keep/Same.txt", "s\n"), After: text("keep/Same.txt", "s\n")},
	}
}

func seedMixed(t *testing.T, fs afero.Fs) {
	seed(t, fs, map[string]string{
		"a/gone.txt":    "bye\n",
		"b/Moved.txt":   "m\n",
		"keep/Foo.txt":  "x\n",
		"keep/Same.txt": "s\n",
	})
}

func TestNew(t *testing.T) {
	fs := afero.NewMemMapFs()
	tests := []struct {
		name        string
		opts        operation.Options
		errContains string
	}{
		{name: "missing_fs", opts: operation.Options{Root: root, Source: operation.StaticRecords{}}, errContains: "filesystem is required"},
		{name: "missing_root", opts: operation.Options{Fs: fs, Source: operation.StaticRecords{}}, errContains: "root is required"},
		{name: "missing_source", opts: operation.Options{Fs: fs, Root: root}, errContains: "record source is required"},
		{name: "bad_exclusion", opts: operation.Options{Fs: fs, Root: root, Source: operation.StaticRecords{}, Exclusions: []string{"[oops"}}, errContains: "not a valid glob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := operation.New(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestApply(t *testing.T) {
	ctx := testContext(t)
	fs := afero.NewMemMapFs()
	seedMixed(t, fs)

	op, err := operation.New(operation.Options{Fs: fs, Root: root, Source: mixedRecords()})
	require.NoError(t, err)

	report, err := op.Apply(ctx)
	require.NoError(t, err)

	assert.Equal(t, "new\n", read(t, fs, "gen/New.txt"))
	assert.False(t, exists(t, fs, "a/gone.txt"))
	assert.False(t, exists(t, fs, "b/Moved.txt"))
	assert.Equal(t, "m\n", read(t, fs, "c/Moved.txt"))
	assert.Equal(t, "y\n", read(t, fs, "keep/Foo.txt"))

	var kinds []classify.Kind
	for _, e := range report.Entries {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []classify.Kind{classify.Generated, classify.Deleted, classify.Moved, classify.RefactoredInPlace}, kinds)
	assert.Equal(t, []string{"a", "b"}, report.Reaped)
	assert.False(t, exists(t, fs, "a"))
	assert.False(t, exists(t, fs, "b"))
	assert.Empty(t, report.PatchPath)
}

func TestApplyStopsOnEngineError(t *testing.T) {
	ctx := testContext(t)
	fs := afero.NewMemMapFs()
	seedMixed(t, fs)

	records := append(mixedRecords(), source.Record{
		Before: text("keep/Bad.txt", "b\n"),
		After: &source.Text{SourcePath: "keep/Bad.txt", Doc: &source.Fragment{
			Text:  "b\n",
			Parts: []*source.Fragment{{Text: "broken\n", Notes: []source.Marker{source.ErrorMarker("visitor failed")}}},
		}},
	})

	op, err := operation.New(operation.Options{Fs: fs, Root: root, Source: records})
	require.NoError(t, err)

	report, err := op.Apply(ctx)
	require.Error(t, err)

	var engineErr *scan.EngineError
	require.True(t, errors.As(err, &engineErr))
	assert.Equal(t, "keep/Bad.txt", engineErr.Finding.Path)
	assert.Equal(t, "visitor failed", engineErr.Finding.Detail)

	assert.Empty(t, report.Entries)
	assert.False(t, exists(t, fs, "gen/New.txt"), "nothing is written after an engine error")
	assert.True(t, exists(t, fs, "a/gone.txt"))
	assert.Equal(t, "x\n", read(t, fs, "keep/Foo.txt"))
}

func TestApplyExclusions(t *testing.T) {
	ctx := testContext(t)
	fs := afero.NewMemMapFs()
	seedMixed(t, fs)

	op, err := operation.New(operation.Options{
		Fs:         fs,
		Root:       root,
		Source:     mixedRecords(),
		Exclusions: []string{"keep/**", "c/*.txt"},
	})
	require.NoError(t, err)

	report, err := op.Apply(ctx)
	require.NoError(t, err)

	assert.Equal(t, "x\n", read(t, fs, "keep/Foo.txt"), "excluded change is left alone")
	assert.True(t, exists(t, fs, "b/Moved.txt"), "a move whose after path is excluded is left alone")
	assert.Len(t, report.Entries, 2)
}

func TestApplyTwiceConverges(t *testing.T) {
	ctx := testContext(t)
	fs := afero.NewMemMapFs()
	seedMixed(t, fs)

	op, err := operation.New(operation.Options{Fs: fs, Root: root, Source: mixedRecords()})
	require.NoError(t, err)
	_, err = op.Apply(ctx)
	require.NoError(t, err)

	// a second run sees the converged tree on both sides
	converged := operation.StaticRecords{
		{Before: text("gen/New.txt", "new\n"), After: text("gen/New.txt", "new\n")},
		{Before: text("c/Moved.txt", "m\n"), After: text("c/Moved.txt", "m\n")},
		{Before: text("keep/Foo.txt", "y\n"), After: text("keep/Foo.txt", "y\n")},
	}
	op, err = operation.New(operation.Options{Fs: fs, Root: root, Source: converged})
	require.NoError(t, err)

	report, err := op.Apply(ctx)
	require.NoError(t, err)
	assert.False(t, report.HasChanges())
	assert.Empty(t, report.Reaped)
}

func TestDryRun(t *testing.T) {
	ctx := testContext(t)
	fs := afero.NewMemMapFs()
	seedMixed(t, fs)

	op, err := operation.New(operation.Options{Fs: fs, Root: root, Source: mixedRecords()})
	require.NoError(t, err)

	report, err := op.DryRun(ctx)
	require.NoError(t, err)

	assert.Equal(t, root+"/target/rewrite/"+patch.FileName, report.PatchPath)
	got, err := afero.ReadFile(fs, report.PatchPath)
	require.NoError(t, err)

	want := patch.Serialize(classify.Classify(mixedRecords()))
	assert.Equal(t, want, string(got))
	assert.Contains(t, string(got), "diff --git a/gen/New.txt b/gen/New.txt\n")

	assert.Len(t, report.Entries, 4)
	assert.Equal(t, status.ModeDryRun, report.Mode)

	assert.False(t, exists(t, fs, "gen/New.txt"), "dry run leaves the working tree alone")
	assert.True(t, exists(t, fs, "a/gone.txt"))
	assert.Equal(t, "x\n", read(t, fs, "keep/Foo.txt"))
}

func TestDryRunFailOnChanges(t *testing.T) {
	ctx := testContext(t)
	fs := afero.NewMemMapFs()
	seedMixed(t, fs)

	op, err := operation.New(operation.Options{Fs: fs, Root: root, OutputDir: "/out", Source: mixedRecords(), FailOnChanges: true})
	require.NoError(t, err)

	report, err := op.DryRun(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, operation.ErrChangesFound)
	assert.Equal(t, "/out/"+patch.FileName, report.PatchPath, "the patch is still written")
}

func TestDryRunWithoutChanges(t *testing.T) {
	ctx := testContext(t)
	fs := afero.NewMemMapFs()

	op, err := operation.New(operation.Options{
		Fs:            fs,
		Root:          root,
		Source:        operation.StaticRecords{{Before: text("a.txt", "same"), After: text("a.txt", "same")}},
		FailOnChanges: true,
	})
	require.NoError(t, err)

	report, err := op.DryRun(ctx)
	require.NoError(t, err, "a run without changes is not a failure")
	assert.False(t, report.HasChanges())
	assert.Empty(t, report.PatchPath)

	ok, err := afero.Exists(fs, root+"/target/rewrite/"+patch.FileName)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManifestSource(t *testing.T) {
	ctx := testContext(t)
	fs := afero.NewMemMapFs()
	seed(t, fs, map[string]string{"src/App.txt": "v1\n"})

	manifest := `
records:
  - before: {path: src/App.txt, from_disk: true}
    after: {path: src/App.txt, text: "v2\n"}
`
	require.NoError(t, afero.WriteFile(fs, "/changes.yaml", []byte(manifest), 0o644))

	loader := changeset.NewLoader(fs, changeset.Options{Root: root})
	op, err := operation.New(operation.Options{
		Fs:     fs,
		Root:   root,
		Source: operation.ManifestSource{Loader: loader, Path: "/changes.yaml"},
	})
	require.NoError(t, err)

	report, err := op.Apply(ctx)
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, "v2\n", read(t, fs, "src/App.txt"))
}

func TestPublish(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	ctx := testContext(t)

	t.Run("apply", func(t *testing.T) {
		buf := &bytes.Buffer{}
		report := status.NewReport(status.ModeApply, root)
		report.Track(status.Entry{Kind: classify.Generated, Path: "gen/New.txt", Representation: source.KindText})
		report.AddReaped("a")

		require.NoError(t, operation.Publish(ctx, log.New(buf, zerolog.Nop()), report))
		out := buf.String()
		assert.Contains(t, out, "gen/New.txt")
		assert.Contains(t, out, "a/")
		assert.Contains(t, out, operation.ReviewNotice)
		assert.NotContains(t, out, operation.ApplyHint)
	})

	t.Run("dry_run", func(t *testing.T) {
		buf := &bytes.Buffer{}
		report := status.NewReport(status.ModeDryRun, root)
		report.Track(status.Entry{Kind: classify.Deleted, Path: "a/gone.txt", Representation: source.KindText})
		report.PatchPath = "/work/target/rewrite/rewrite.patch"

		require.NoError(t, operation.Publish(ctx, log.New(buf, zerolog.Nop()), report))
		out := buf.String()
		assert.Contains(t, out, "a/gone.txt")
		assert.Contains(t, out, "/work/target/rewrite/rewrite.patch")
		assert.Contains(t, out, operation.ApplyHint)
		assert.NotContains(t, out, operation.ReviewNotice)
	})

	t.Run("no_changes", func(t *testing.T) {
		buf := &bytes.Buffer{}
		report := status.NewReport(status.ModeApply, root)

		require.NoError(t, operation.Publish(ctx, log.New(buf, zerolog.Nop()), report))
		assert.Contains(t, buf.String(), operation.NoChangesNotice)
	})
}
