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

import (
	"context"
	"io"
	"strings"
)

// 📦 Kind identifies the content representation of a snapshot
type Kind int

const (
	KindText Kind = iota
	KindBinary
	KindRemote
	KindOpaque
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	case KindRemote:
		return "remote"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// 🔐 Attributes are the owner permission bits recorded on a snapshot
type Attributes struct {
	Readable   bool `json:"readable" yaml:"readable"`
	Writable   bool `json:"writable" yaml:"writable"`
	Executable bool `json:"executable" yaml:"executable"`
}

// 🌳 Node is anything that can carry markers and children
type Node interface {
	Markers() []Marker
	Children() []Node
}

// 📄 Snapshot is one side of a Record.
//
// The set of implementations is closed: *Text, *Binary, *Remote and *Opaque.
type Snapshot interface {
	Node
	// Path is the source path relative to the project root
	Path() string
	// Kind reports which of the four representations this is
	Kind() Kind
	// Attributes returns the recorded permission bits, or nil when unknown
	Attributes() *Attributes

	sealed()
}

// 🔄 Record is a single before/after pair produced by a transformation run
type Record struct {
	Before Snapshot
	After  Snapshot
}

// IsEmpty reports whether neither side is present
func (r Record) IsEmpty() bool {
	return r.Before == nil && r.After == nil
}

// Path returns the after path when present, otherwise the before path
func (r Record) Path() string {
	if r.After != nil {
		return r.After.Path()
	}
	if r.Before != nil {
		return r.Before.Path()
	}
	return ""
}

// 📝 Document is structured text content that can print itself
type Document interface {
	Node
	Print() string
}

// 🧩 Fragment is a simple Document: its own text followed by its parts, in order
type Fragment struct {
	Text  string
	Parts []*Fragment
	Notes []Marker
}

// Print renders the fragment and all of its parts
func (f *Fragment) Print() string {
	if f == nil {
		return ""
	}
	var sb strings.Builder
	f.print(&sb)
	return sb.String()
}

func (f *Fragment) print(sb *strings.Builder) {
	sb.WriteString(f.Text)
	for _, p := range f.Parts {
		if p != nil {
			p.print(sb)
		}
	}
}

func (f *Fragment) Markers() []Marker {
	if f == nil {
		return nil
	}
	return f.Notes
}

func (f *Fragment) Children() []Node {
	if f == nil {
		return nil
	}
	nodes := make([]Node, 0, len(f.Parts))
	for _, p := range f.Parts {
		if p != nil {
			nodes = append(nodes, p)
		}
	}
	return nodes
}

// PlainText wraps a string into a single Fragment document
func PlainText(s string) *Fragment {
	return &Fragment{Text: s}
}

// ✏️ Text is printable structured content plus a character encoding
type Text struct {
	SourcePath string
	Charset    string // empty means UTF-8
	Attrs      *Attributes
	Doc        Document
	Notes      []Marker
}

func (t *Text) Path() string            { return t.SourcePath }
func (t *Text) Kind() Kind              { return KindText }
func (t *Text) Attributes() *Attributes { return t.Attrs }
func (t *Text) Markers() []Marker       { return t.Notes }
func (t *Text) sealed()                 {}

// Children returns the document as the only child
func (t *Text) Children() []Node {
	if t.Doc == nil {
		return nil
	}
	return []Node{t.Doc}
}

// Print renders the document, or the empty string when there is none
func (t *Text) Print() string {
	if t.Doc == nil {
		return ""
	}
	return t.Doc.Print()
}

// 💾 Binary is a raw byte payload
type Binary struct {
	SourcePath string
	Attrs      *Attributes
	Bytes      []byte
	Notes      []Marker
}

func (b *Binary) Path() string            { return b.SourcePath }
func (b *Binary) Kind() Kind              { return KindBinary }
func (b *Binary) Attributes() *Attributes { return b.Attrs }
func (b *Binary) Markers() []Marker       { return b.Notes }
func (b *Binary) Children() []Node        { return nil }
func (b *Binary) sealed()                 {}

// 🌐 Fetcher streams remote content at write time
type Fetcher interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// 🌐 Remote is content that must be pulled from an external source when written
type Remote struct {
	SourcePath string
	Attrs      *Attributes
	URI        string
	Fetcher    Fetcher
	Notes      []Marker
}

func (r *Remote) Path() string            { return r.SourcePath }
func (r *Remote) Kind() Kind              { return KindRemote }
func (r *Remote) Attributes() *Attributes { return r.Attrs }
func (r *Remote) Markers() []Marker       { return r.Notes }
func (r *Remote) Children() []Node        { return nil }
func (r *Remote) sealed()                 {}

// Open opens a read stream for the remote content
func (r *Remote) Open(ctx context.Context) (io.ReadCloser, error) {
	if r.Fetcher == nil {
		return nil, ErrNoFetcher
	}
	return r.Fetcher.Open(ctx, r.URI)
}

// ❓ Opaque is content the engine did not parse; only the path can be trusted
type Opaque struct {
	SourcePath string
	Notes      []Marker
}

func (o *Opaque) Path() string            { return o.SourcePath }
func (o *Opaque) Kind() Kind              { return KindOpaque }
func (o *Opaque) Attributes() *Attributes { return nil }
func (o *Opaque) Markers() []Marker       { return o.Notes }
func (o *Opaque) Children() []Node        { return nil }
func (o *Opaque) sealed()                 {}
