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

	"github.com/walteh/rewritesync/pkg/log"
	"github.com/walteh/rewritesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

const (
	ReviewNotice    = "Please review and commit the results."
	ApplyHint       = "Run 'rewritesync apply' to apply the changes."
	NoChangesNotice = "No changes found."
)

// 📢 Publish prints a report: one line per change, a summary table and the
// closing notice for the report's mode
func Publish(ctx context.Context, l *log.Logger, r *status.Report) error {
	if !r.HasChanges() {
		l.Info(NoChangesNotice)
		return nil
	}

	l.LogReport(ctx, r)

	summary, err := r.Summary()
	if err != nil {
		return errors.Errorf("rendering summary: %w", err)
	}
	l.LogNewline()
	l.Raw(summary)
	l.LogNewline()

	switch r.Mode {
	case status.ModeApply:
		l.Success(ReviewNotice)
	case status.ModeDryRun:
		if r.PatchPath != "" {
			l.Infof("Patch file available: %s", r.PatchPath)
		}
		l.Info(ApplyHint)
	}
	return nil
}
