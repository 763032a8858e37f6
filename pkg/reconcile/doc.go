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

/*
Package reconcile applies a classified changeset to a working tree.

	+-------------+     +-------------+     +-------------+
	| Reconciler  | --> |   Writer    | --> |  afero.Fs   |
	| (ordering)  |     | (content)   |     | (disk)      |
	+------+------+     +-------------+     +-------------+
	       |
	+------+------+
	|    Reap     |
	| (empty dirs)|
	+-------------+

Apply runs generated writes, deletes, moves and in-place writes, in that
order, one operation at a time. It stops at the first failure and does not
roll back what was already applied. Two applies must never run against the
same root at the same time; nothing here locks the tree.

When a move's directory differs from the old one only by case and the
filesystem folds case, every directory segment listed with another spelling
is renamed to the requested one before the file is written.
*/
package reconcile
