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

// Package changeset loads the before/after records a transformation run
// produced from a manifest file.
package changeset

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/walteh/rewritesync/pkg/source"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 📚 Manifest is the on-disk form of a transformation run result
type Manifest struct {
	Records []RecordSpec `json:"records" yaml:"records"`
}

// 🔄 RecordSpec is one before/after pair; a missing side is absent
type RecordSpec struct {
	Before *SnapshotSpec `json:"before,omitempty" yaml:"before,omitempty"`
	After  *SnapshotSpec `json:"after,omitempty" yaml:"after,omitempty"`
}

// 📄 SnapshotSpec describes one side of a record. At most one content field
// (text/fragments, binary, remote, opaque, from_disk) may be set; none means
// empty text.
type SnapshotSpec struct {
	Path       string             `json:"path" yaml:"path"`
	Text       *string            `json:"text,omitempty" yaml:"text,omitempty"`
	Charset    string             `json:"charset,omitempty" yaml:"charset,omitempty"`
	Attributes *source.Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Errors     []string           `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings   []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Fragments  []FragmentSpec     `json:"fragments,omitempty" yaml:"fragments,omitempty"`
	Binary     *string            `json:"binary,omitempty" yaml:"binary,omitempty"` // base64
	Remote     string             `json:"remote,omitempty" yaml:"remote,omitempty"`
	Opaque     bool               `json:"opaque,omitempty" yaml:"opaque,omitempty"`
	FromDisk   bool               `json:"from_disk,omitempty" yaml:"from_disk,omitempty"`
}

// 🧩 FragmentSpec is a piece of a text document with its own annotations
type FragmentSpec struct {
	Text      string         `json:"text" yaml:"text"`
	Errors    []string       `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings  []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Fragments []FragmentSpec `json:"fragments,omitempty" yaml:"fragments,omitempty"`
}

// Format is a manifest encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the manifest format from the file extension
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.Errorf("unsupported changeset extension %q", ext)
	}
}

// Parse decodes a manifest, rejecting unknown fields
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&m); err != nil {
			return nil, errors.Errorf("parsing JSON: %w", err)
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&m); err != nil {
			// an empty document is an empty changeset
			if errors.Is(err, io.EOF) {
				return &m, nil
			}
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
	default:
		return nil, errors.Errorf("unknown changeset format %q", format)
	}
	return &m, nil
}

func (s *SnapshotSpec) representations() int {
	n := 0
	if s.Text != nil || len(s.Fragments) > 0 {
		n++
	}
	for _, set := range []bool{s.Binary != nil, s.Remote != "", s.Opaque, s.FromDisk} {
		if set {
			n++
		}
	}
	return n
}

func (s *SnapshotSpec) markers() []source.Marker {
	return markers(s.Errors, s.Warnings)
}

// build turns everything but from_disk snapshots into source snapshots
func (s *SnapshotSpec) build(fetcher source.Fetcher) (source.Snapshot, error) {
	if s.Path == "" {
		return nil, errors.New("snapshot without a path")
	}
	if s.representations() > 1 {
		return nil, errors.Errorf("snapshot %s: more than one content representation", s.Path)
	}

	switch {
	case s.Opaque:
		return &source.Opaque{SourcePath: s.Path, Notes: s.markers()}, nil
	case s.Remote != "":
		return &source.Remote{SourcePath: s.Path, Attrs: s.Attributes, URI: s.Remote, Fetcher: fetcher, Notes: s.markers()}, nil
	case s.Binary != nil:
		raw, err := base64.StdEncoding.DecodeString(*s.Binary)
		if err != nil {
			return nil, errors.Errorf("snapshot %s: decoding binary content: %w", s.Path, err)
		}
		return &source.Binary{SourcePath: s.Path, Attrs: s.Attributes, Bytes: raw, Notes: s.markers()}, nil
	case s.FromDisk:
		return nil, errors.Errorf("snapshot %s: disk content is loaded separately", s.Path)
	}

	doc := &source.Fragment{Parts: fragments(s.Fragments)}
	if s.Text != nil {
		doc.Text = *s.Text
	}
	return &source.Text{
		SourcePath: s.Path,
		Charset:    s.Charset,
		Attrs:      s.Attributes,
		Doc:        doc,
		Notes:      s.markers(),
	}, nil
}

func fragments(specs []FragmentSpec) []*source.Fragment {
	if len(specs) == 0 {
		return nil
	}
	out := make([]*source.Fragment, 0, len(specs))
	for _, f := range specs {
		out = append(out, &source.Fragment{
			Text:  f.Text,
			Parts: fragments(f.Fragments),
			Notes: markers(f.Errors, f.Warnings),
		})
	}
	return out
}

func markers(errs, warnings []string) []source.Marker {
	var out []source.Marker
	for _, w := range warnings {
		out = append(out, source.Marker{Kind: source.MarkerWarning, Detail: w})
	}
	for _, e := range errs {
		out = append(out, source.ErrorMarker(e))
	}
	return out
}
