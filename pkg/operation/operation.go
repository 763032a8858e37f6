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

package operation

import (
	"context"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/rewritesync/pkg/changeset"
	"github.com/walteh/rewritesync/pkg/classify"
	"github.com/walteh/rewritesync/pkg/scan"
	"github.com/walteh/rewritesync/pkg/source"
	"github.com/walteh/rewritesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ErrChangesFound is returned by a dry run that found changes while
// FailOnChanges is set
var ErrChangesFound = errors.Base("dry run found changes")

// 🎯 Operator runs a transformation result against a working tree
type Operator interface {
	// Apply writes the changes to the working tree and removes directories
	// they left empty
	Apply(ctx context.Context) (*status.Report, error)
	// DryRun renders the changes into a patch file instead
	DryRun(ctx context.Context) (*status.Report, error)
}

// 📥 RecordSource provides the records of one transformation run
type RecordSource interface {
	Records(ctx context.Context) ([]source.Record, error)
}

// StaticRecords is a RecordSource over records already in memory
type StaticRecords []source.Record

func (s StaticRecords) Records(_ context.Context) ([]source.Record, error) {
	return s, nil
}

// 📄 ManifestSource reads records from a changeset manifest
type ManifestSource struct {
	Loader *changeset.Loader
	Path   string
}

func (m ManifestSource) Records(ctx context.Context) ([]source.Record, error) {
	return m.Loader.Load(ctx, m.Path)
}

// 🔧 Options contains configuration for the operator
type Options struct {
	// Fs is the filesystem the working tree lives on
	Fs afero.Fs
	// Root is the working tree changes are applied below
	Root string
	// OutputDir receives the patch file in dry-run mode
	OutputDir string
	// Source provides the records
	Source RecordSource
	// Exclusions are doublestar globs; a record whose before or after path
	// matches one is ignored
	Exclusions []string
	// FailOnChanges makes a dry run that found changes return ErrChangesFound
	FailOnChanges bool
}

// 🏭 New creates a new operator with the given options
func New(opts Options) (Operator, error) {
	if opts.Fs == nil {
		return nil, errors.Errorf("filesystem is required")
	}
	if opts.Root == "" {
		return nil, errors.Errorf("root is required")
	}
	if opts.Source == nil {
		return nil, errors.Errorf("record source is required")
	}
	for _, pattern := range opts.Exclusions {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("exclusion %q is not a valid glob", pattern)
		}
	}
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Join(opts.Root, "target", "rewrite")
	}
	return &operator{
		fs:            opts.Fs,
		root:          filepath.Clean(opts.Root),
		outputDir:     filepath.Clean(opts.OutputDir),
		source:        opts.Source,
		exclusions:    opts.Exclusions,
		failOnChanges: opts.FailOnChanges,
	}, nil
}

// 🎮 operator implements the Operator interface
type operator struct {
	fs            afero.Fs
	root          string
	outputDir     string
	source        RecordSource
	exclusions    []string
	failOnChanges bool
}

// prepare loads, filters and classifies the records, and refuses to go on
// when the engine reported an error anywhere in them
func (o *operator) prepare(ctx context.Context) (classify.Changeset, error) {
	logger := zerolog.Ctx(ctx)

	records, err := o.source.Records(ctx)
	if err != nil {
		return classify.Changeset{}, errors.Errorf("loading records: %w", err)
	}

	kept := o.filter(ctx, records)
	cs := classify.Classify(kept)

	logger.Debug().
		Int("records", len(records)).
		Int("excluded", len(records)-len(kept)).
		Int("generated", len(cs.Generated)).
		Int("deleted", len(cs.Deleted)).
		Int("moved", len(cs.Moved)).
		Int("changed", len(cs.RefactoredInPlace)).
		Msg("classified records")

	if err := scan.Check(cs); err != nil {
		return classify.Changeset{}, err
	}
	return cs, nil
}

func (o *operator) filter(ctx context.Context, records []source.Record) []source.Record {
	if len(o.exclusions) == 0 {
		return records
	}
	kept := make([]source.Record, 0, len(records))
	for _, rec := range records {
		if o.excluded(rec.Before) || o.excluded(rec.After) {
			zerolog.Ctx(ctx).Debug().Str("path", rec.Path()).Msg("record excluded")
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

func (o *operator) excluded(s source.Snapshot) bool {
	if s == nil {
		return false
	}
	path := filepath.ToSlash(s.Path())
	for _, pattern := range o.exclusions {
		// patterns are validated in New
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
