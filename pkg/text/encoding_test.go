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

package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		charset   string
		content   string
		want      []byte
		wantError string
	}{
		{
			name:    "empty_charset_is_utf8",
			charset: "",
			content: "héllo",
			want:    []byte("héllo"),
		},
		{
			name:    "explicit_utf8",
			charset: "utf-8",
			content: "héllo",
			want:    []byte("héllo"),
		},
		{
			name:    "latin1",
			charset: "ISO-8859-1",
			content: "héllo",
			want:    []byte{'h', 0xe9, 'l', 'l', 'o'},
		},
		{
			name:      "unknown_charset",
			charset:   "not-a-charset",
			content:   "x",
			wantError: "resolving charset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.charset, tt.content)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeLatin1(t *testing.T) {
	got, err := Decode("ISO-8859-1", []byte{'c', 'a', 'f', 0xe9})
	require.NoError(t, err)
	assert.Equal(t, "café", got)
}
