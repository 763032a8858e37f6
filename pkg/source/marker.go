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

package source

import "gitlab.com/tozd/go/errors"

// ErrNoFetcher is returned when a Remote snapshot has no fetch capability
var ErrNoFetcher = errors.Base("remote snapshot has no fetcher")

// 🏷️ MarkerKind classifies an annotation attached to a node
type MarkerKind int

const (
	MarkerInfo MarkerKind = iota
	MarkerWarning
	MarkerError
)

// String returns a string representation of MarkerKind
func (k MarkerKind) String() string {
	switch k {
	case MarkerInfo:
		return "info"
	case MarkerWarning:
		return "warning"
	case MarkerError:
		return "error"
	default:
		return "unknown"
	}
}

// 🏷️ Marker is an annotation the engine attached to a node
type Marker struct {
	Kind   MarkerKind
	Detail string
}

// ErrorMarker builds an error annotation
func ErrorMarker(detail string) Marker {
	return Marker{Kind: MarkerError, Detail: detail}
}

// IsError reports whether the marker signals an engine failure
func (m Marker) IsError() bool {
	return m.Kind == MarkerError
}
