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
Package source defines the records exchanged with the transformation engine.

A Record pairs an optional before snapshot with an optional after snapshot.
Snapshots come in exactly four representations:

	+---------+------------------------------------------+
	| Text    | printable document + character encoding  |
	| Binary  | raw bytes                                |
	| Remote  | a URI plus a fetch capability            |
	| Opaque  | unknown content, only the path is usable |
	+---------+------------------------------------------+

Every snapshot is also a Node so that embedded engine markers can be found by
walking it without knowing anything about the concrete tree that produced it.
*/
package source
