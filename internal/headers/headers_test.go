// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package headers_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/powtarget/internal/headers"
	"github.com/stretchr/testify/require"
)

const headerYaml = `
headers:
  - height: 0
    timestamp: 1231006505
    bits: "1d00ffff"
    hash: "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
  - height: 1
    timestamp: 1231469665
    bits: "0x1d00ffff"
`

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(headerYaml), 0o600))

	blocks, err := headers.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.Equal(t, int64(0), blocks[0].Height)
	require.Equal(t, int64(1231006505), blocks[0].Timestamp)
	require.Equal(t, uint32(0x1d00ffff), blocks[0].Bits)
	require.Equal(t, byte(0x19), blocks[0].Hash[5])
	require.Equal(t, uint32(0x1d00ffff), blocks[1].Bits)
	require.Equal(t, [32]byte{}, blocks[1].Hash)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]struct {
		content string
		errText string
	}{
		"bad bits": {
			content: "headers:\n  - height: 0\n    bits: zz\n",
			errText: "invalid bits",
		},
		"oversized bits": {
			content: "headers:\n  - height: 0\n    bits: 1d00ffff00\n",
			errText: "invalid bits",
		},
		"bad hash": {
			content: "headers:\n  - height: 0\n    bits: 1d00ffff\n    hash: xyz\n",
			errText: "invalid hash",
		},
		"short hash": {
			content: "headers:\n  - height: 0\n    bits: 1d00ffff\n    hash: abcd\n",
			errText: "invalid hash length 2",
		},
		"unknown field": {
			content: "headers:\n  - height: 0\n    nonce: 5\n",
			errText: "parse header file",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := headers.Parse([]byte(tt.content))
			require.ErrorContains(t, err, tt.errText)
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := headers.ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read header file")
}
