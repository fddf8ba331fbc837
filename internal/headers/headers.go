// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package headers reads lists of block headers from YAML files for
// import into the state store
package headers

import (
	"encoding/hex"
	"os"
	"strconv"
	"strings"

	"github.com/blinklabs-io/powtarget/chain"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type headerFile struct {
	Headers []headerEntry `yaml:"headers"`
}

type headerEntry struct {
	Height    int64  `yaml:"height"`
	Timestamp int64  `yaml:"timestamp"`
	Bits      string `yaml:"bits"`
	Hash      string `yaml:"hash"`
}

// ReadFile loads the headers listed in the YAML file at path
func ReadFile(path string) ([]chain.BlockMetadata, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read header file")
	}
	return Parse(buf)
}

// Parse decodes a YAML header list. Bits are hex strings with an optional
// 0x prefix and hashes are 64 hex characters.
func Parse(buf []byte) ([]chain.BlockMetadata, error) {
	var file headerFile
	if err := yaml.UnmarshalStrict(buf, &file); err != nil {
		return nil, errors.Wrap(err, "parse header file")
	}
	ret := make([]chain.BlockMetadata, 0, len(file.Headers))
	for i, entry := range file.Headers {
		block, err := entry.toBlock()
		if err != nil {
			return nil, errors.Wrapf(err, "header %d", i)
		}
		ret = append(ret, block)
	}
	return ret, nil
}

func (e headerEntry) toBlock() (chain.BlockMetadata, error) {
	bits, err := strconv.ParseUint(
		strings.TrimPrefix(strings.ToLower(e.Bits), "0x"),
		16,
		32,
	)
	if err != nil {
		return chain.BlockMetadata{}, errors.Wrapf(err, "invalid bits %q", e.Bits)
	}
	block := chain.BlockMetadata{
		Height: e.Height,
		Header: chain.Header{
			Timestamp: e.Timestamp,
			Bits:      uint32(bits),
		},
	}
	if e.Hash != "" {
		hash, err := hex.DecodeString(e.Hash)
		if err != nil {
			return chain.BlockMetadata{}, errors.Wrapf(err, "invalid hash %q", e.Hash)
		}
		if len(hash) != len(block.Hash) {
			return chain.BlockMetadata{}, errors.Errorf(
				"invalid hash length %d",
				len(hash),
			)
		}
		copy(block.Hash[:], hash)
	}
	return block, nil
}
