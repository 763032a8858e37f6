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

// Package text encodes rendered documents into their declared character set.
package text

import (
	"strings"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultCharset is used when a snapshot does not declare one
const DefaultCharset = "UTF-8"

// 🔤 Encoding resolves a charset name to an encoding, falling back to UTF-8 when empty
func Encoding(charset string) (encoding.Encoding, error) {
	name := strings.TrimSpace(charset)
	if name == "" || strings.EqualFold(name, DefaultCharset) || strings.EqualFold(name, "utf8") {
		return unicode.UTF8, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, errors.Errorf("resolving charset %q: %w", charset, err)
	}
	if enc == nil {
		return nil, errors.Errorf("charset %q is not supported", charset)
	}
	return enc, nil
}

// 📝 Encode converts s to bytes in the given charset
func Encode(charset, s string) ([]byte, error) {
	enc, err := Encoding(charset)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return []byte(s), nil
	}

	out, err := enc.NewEncoder().String(s)
	if err != nil {
		return nil, errors.Errorf("encoding text as %s: %w", charset, err)
	}
	return []byte(out), nil
}

// 📖 Decode converts bytes in the given charset to a string
func Decode(charset string, b []byte) (string, error) {
	enc, err := Encoding(charset)
	if err != nil {
		return "", err
	}
	if enc == unicode.UTF8 {
		return string(b), nil
	}

	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Errorf("decoding text as %s: %w", charset, err)
	}
	return string(out), nil
}
