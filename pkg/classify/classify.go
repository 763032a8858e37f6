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

// Package classify partitions transformation results into disjoint change kinds.
package classify

import (
	"github.com/walteh/rewritesync/pkg/diff"
	"github.com/walteh/rewritesync/pkg/source"
)

// 🗂️ Changeset groups records by change kind, preserving input order in each group
type Changeset struct {
	Generated         []source.Record
	Deleted           []source.Record
	Moved             []source.Record
	RefactoredInPlace []source.Record
}

// 🏷️ Kind is the change kind a record was classified as
type Kind int

const (
	Generated Kind = iota
	Deleted
	Moved
	RefactoredInPlace
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case Generated:
		return "generated"
	case Deleted:
		return "deleted"
	case Moved:
		return "moved"
	case RefactoredInPlace:
		return "changed"
	default:
		return "unknown"
	}
}

// Classify partitions records. Records with neither side and in-place records
// without an observable diff are dropped.
func Classify(records []source.Record) Changeset {
	var cs Changeset
	for _, r := range records {
		switch {
		case r.IsEmpty():
			continue
		case r.Before == nil:
			cs.Generated = append(cs.Generated, r)
		case r.After == nil:
			cs.Deleted = append(cs.Deleted, r)
		case r.Before.Path() != r.After.Path():
			cs.Moved = append(cs.Moved, r)
		case !diff.IsEmpty(r.Before, r.After):
			cs.RefactoredInPlace = append(cs.RefactoredInPlace, r)
		}
	}
	return cs
}

// Len returns the number of classified records across all groups
func (cs Changeset) Len() int {
	return len(cs.Generated) + len(cs.Deleted) + len(cs.Moved) + len(cs.RefactoredInPlace)
}

// Empty reports whether nothing was classified
func (cs Changeset) Empty() bool {
	return cs.Len() == 0
}

// Each visits every record in the fixed order generated, deleted, moved,
// refactored in place. Iteration stops at the first error, which is returned.
func (cs Changeset) Each(fn func(Kind, source.Record) error) error {
	groups := []struct {
		kind    Kind
		records []source.Record
	}{
		{Generated, cs.Generated},
		{Deleted, cs.Deleted},
		{Moved, cs.Moved},
		{RefactoredInPlace, cs.RefactoredInPlace},
	}
	for _, g := range groups {
		for _, r := range g.records {
			if err := fn(g.kind, r); err != nil {
				return err
			}
		}
	}
	return nil
}
