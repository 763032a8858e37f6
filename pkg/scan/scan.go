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

// Package scan looks for engine error markers embedded in transformed trees.
package scan

import (
	"fmt"

	"github.com/walteh/rewritesync/pkg/classify"
	"github.com/walteh/rewritesync/pkg/source"
	"gitlab.com/tozd/go/errors"
)

// errStop ends a Changeset walk once a finding is recorded
var errStop = errors.Base("stop")

// 🚨 Finding is an error marker together with the source it was found in
type Finding struct {
	Path   string
	Detail string
}

// 🚨 EngineError reports that the transformation engine failed on a source
type EngineError struct {
	Finding Finding
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("error during rewrite run in %s: %s", e.Finding.Path, e.Finding.Detail)
}

// FirstError returns the first error marker across the changeset.
//
// Groups are visited in the order generated, deleted, moved, refactored in
// place; records in input order; each after tree depth-first, pre-order.
func FirstError(cs classify.Changeset) (Finding, bool) {
	var found Finding
	var ok bool
	_ = cs.Each(func(_ classify.Kind, r source.Record) error {
		if r.After == nil {
			return nil
		}
		if m, hit := firstMarker(r.After); hit {
			found = Finding{Path: r.After.Path(), Detail: m.Detail}
			ok = true
			return errStop
		}
		return nil
	})
	return found, ok
}

// Check returns an *EngineError for the first marker found, or nil
func Check(cs classify.Changeset) error {
	if f, ok := FirstError(cs); ok {
		return &EngineError{Finding: f}
	}
	return nil
}

func firstMarker(n source.Node) (source.Marker, bool) {
	if n == nil {
		return source.Marker{}, false
	}
	for _, m := range n.Markers() {
		if m.IsError() {
			return m, true
		}
	}
	for _, c := range n.Children() {
		if m, ok := firstMarker(c); ok {
			return m, true
		}
	}
	return source.Marker{}, false
}
