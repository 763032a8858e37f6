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

// NewApplyCmd creates the apply command
func NewApplyCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a changeset to the working tree",
		Long: `Apply writes the changes of a transformation run to the working tree.
It will:
1. Load and classify the changeset
2. Stop before writing anything if the engine reported an error
3. Write generated files, delete, move, then update changed files
4. Remove directories the run left empty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := opts.NewOperator(ctx)
			if err != nil {
				return err
			}

			opts.Logger.StartRunOperation(ctx, log.RunOperation{
				Mode:      status.ModeApply,
				Root:      opts.Config.Root,
				Changeset: opts.Config.Changeset,
			})
			defer opts.Logger.EndRunOperation(ctx)

			report, runErr := op.Apply(ctx)
			if report != nil && (runErr == nil || report.HasChanges()) {
				if err := operation.Publish(ctx, opts.Logger, report); err != nil {
					return err
				}
			}
			if runErr != nil {
				return errors.Errorf("applying changes: %w", runErr)
			}
			return nil
		},
	}

	return cmd
}
