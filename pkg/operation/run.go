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

	"github.com/rs/zerolog"
	"github.com/walteh/rewritesync/pkg/patch"
	"github.com/walteh/rewritesync/pkg/reconcile"
	"github.com/walteh/rewritesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔄 Apply implements Operator. The returned report holds every change that
// reached the disk, also when an error stopped the run part way.
func (o *operator) Apply(ctx context.Context) (*status.Report, error) {
	logger := zerolog.Ctx(ctx)
	report := status.NewReport(status.ModeApply, o.root)

	cs, err := o.prepare(ctx)
	if err != nil {
		return report, err
	}
	if cs.Empty() {
		logger.Debug().Msg("no changes to apply")
		return report, nil
	}

	if err := reconcile.New(o.fs, o.root).Apply(ctx, cs, report); err != nil {
		return report, errors.Errorf("applying changes: %w", err)
	}

	removed, err := reconcile.Reap(ctx, o.fs, o.root, cs)
	report.AddReaped(removed...)
	if err != nil {
		return report, errors.Errorf("removing empty directories: %w", err)
	}

	logger.Debug().Int("changes", len(report.Entries)).Int("reaped", len(removed)).Msg("apply complete")
	return report, nil
}

// 📦 DryRun implements Operator. Nothing below root is touched; the patch is
// written only when there is something to review.
func (o *operator) DryRun(ctx context.Context) (*status.Report, error) {
	logger := zerolog.Ctx(ctx)
	report := status.NewReport(status.ModeDryRun, o.root)

	cs, err := o.prepare(ctx)
	if err != nil {
		return report, err
	}
	report.TrackChangeset(cs)
	if cs.Empty() {
		logger.Debug().Msg("no changes to render")
		return report, nil
	}

	path, err := patch.WriteFile(o.fs, o.outputDir, patch.Serialize(cs))
	if err != nil {
		return report, err
	}
	report.PatchPath = path
	logger.Debug().Str("patch", path).Int("changes", cs.Len()).Msg("patch written")

	if o.failOnChanges {
		return report, errors.Errorf("%d changes pending: %w", cs.Len(), ErrChangesFound)
	}
	return report, nil
}
