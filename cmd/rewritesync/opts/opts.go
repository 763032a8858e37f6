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

package opts

import (
	"context"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/walteh/rewritesync/pkg/changeset"
	"github.com/walteh/rewritesync/pkg/config"
	"github.com/walteh/rewritesync/pkg/log"
	"github.com/walteh/rewritesync/pkg/operation"
	"github.com/walteh/rewritesync/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// 🎯 RootOpts is shared by every command. It is filled once flags are parsed.
type RootOpts struct {
	Config *config.Config
	Logger *log.Logger
	Fs     afero.Fs

	// closers are released when the command finishes
	closers []io.Closer
}

// AddCloser registers a resource released by Close
func (o *RootOpts) AddCloser(c io.Closer) {
	o.closers = append(o.closers, c)
}

// Close releases every registered resource
func (o *RootOpts) Close() error {
	var errs []error
	for _, c := range o.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	o.closers = nil
	return errors.Join(errs...)
}

// 🏭 NewOperator builds the operator for the configured changeset
func (o *RootOpts) NewOperator(ctx context.Context) (operation.Operator, error) {
	if o.Config == nil {
		return nil, errors.Errorf("configuration not loaded")
	}
	cfg := o.Config
	if cfg.Changeset == "" {
		return nil, errors.Errorf("no changeset given: pass --changeset or set changeset in the config file")
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, errors.Errorf("resolving root %s: %w", cfg.Root, err)
	}
	outputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, errors.Errorf("resolving output directory %s: %w", cfg.OutputDir, err)
	}

	loader := changeset.NewLoader(o.Fs, changeset.Options{
		Root:    root,
		Fetcher: remote.NewResolver(cfg.RemoteOptions()),
	})

	return operation.New(operation.Options{
		Fs:            o.Fs,
		Root:          root,
		OutputDir:     outputDir,
		Source:        operation.ManifestSource{Loader: loader, Path: cfg.Changeset},
		Exclusions:    cfg.Exclusions,
		FailOnChanges: cfg.FailOnDryRunResults,
	})
}
