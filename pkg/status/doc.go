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
Package status holds the report of a single rewrite run.

	+-------------+      +-------------+      +-------------+
	|  reconcile  | ---> |   Report    | <--- |    patch    |
	| (apply)     |      | (entries)   |      | (dry-run)   |
	+-------------+      +------+------+      +-------------+
	                            |
	                     +------+------+
	                     |  Formatter  |
	                     +-------------+

The report is an explicit value threaded through the pipeline and returned to
the caller, who decides how to emit it. Nothing in this package writes to the
console or to the filesystem.

🔍 Example:

	report := status.NewReport(status.ModeApply, root)
	report.Track(status.Entry{Kind: classify.Generated, Path: "a/Foo.txt"})
	for _, line := range report.Lines(status.NewDefaultFormatter()) {
		fmt.Println(line)
	}
*/
package status
