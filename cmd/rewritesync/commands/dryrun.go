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

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/rewritesync/cmd/rewritesync/opts"
	"github.com/walteh/rewritesync/pkg/log"
	"github.com/walteh/rewritesync/pkg/operation"
	"github.com/walteh/rewritesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewDryRunCmd creates the dry-run command
func NewDryRunCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dry-run",
		Short: "Render a changeset as a patch without touching the working tree",
		Long: `Dry-run writes every change of a transformation run into a single
patch file in the output directory for review. With --fail-on-changes the
command exits non-zero when the patch is not empty.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := opts.NewOperator(ctx)
			if err != nil {
				return err
			}

			opts.Logger.StartRunOperation(ctx, log.RunOperation{
				Mode:      status.ModeDryRun,
				Root:      opts.Config.Root,
				Changeset: opts.Config.Changeset,
			})
			defer opts.Logger.EndRunOperation(ctx)

			report, runErr := op.DryRun(ctx)
			if report != nil && (runErr == nil || errors.Is(runErr, operation.ErrChangesFound)) {
				if err := operation.Publish(ctx, opts.Logger, report); err != nil {
					return err
				}
			}
			if runErr != nil {
				return errors.Errorf("dry run: %w", runErr)
			}
			return nil
		},
	}

	return cmd
}
