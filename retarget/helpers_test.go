// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package retarget_test

import (
	"testing"

	"github.com/blinklabs-io/powtarget/chain"
	"github.com/blinklabs-io/powtarget/consensus"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

const genesisTime = 1_600_000_000

// buildChain creates a chain of count blocks carrying bits, where block h
// is solvetime(h) seconds after block h-1
func buildChain(
	t *testing.T,
	count int64,
	bits uint32,
	solvetime func(height int64) int64,
) *chain.Snapshot {
	t.Helper()
	idx := chain.NewIndex()
	timestamp := int64(genesisTime)
	for h := range count {
		if h > 0 {
			timestamp += solvetime(h)
		}
		_, err := idx.Append(chain.BlockMetadata{
			Height: h,
			Header: chain.Header{
				Timestamp: timestamp,
				Bits:      bits,
				Hash:      [32]byte{byte(h), byte(h >> 8), byte(h >> 16)},
			},
		})
		require.NoError(t, err)
	}
	return idx.Snapshot()
}

func constantSolvetime(seconds int64) func(int64) int64 {
	return func(int64) int64 {
		return seconds
	}
}

// sparseView serves only the blocks it was given and records every
// height requested from it
type sparseView struct {
	blocks  map[int64]*chain.BlockMetadata
	lookups []int64
}

func newSparseView(blocks ...*chain.BlockMetadata) *sparseView {
	v := &sparseView{
		blocks: make(map[int64]*chain.BlockMetadata),
	}
	for _, b := range blocks {
		v.blocks[b.Height] = b
	}
	return v
}

func (v *sparseView) AncestorAtHeight(
	block *chain.BlockMetadata,
	height int64,
) *chain.BlockMetadata {
	v.lookups = append(v.lookups, height)
	if block == nil || height < 0 || height > block.Height {
		return nil
	}
	return v.blocks[height]
}

func (v *sparseView) Previous(block *chain.BlockMetadata) *chain.BlockMetadata {
	if block == nil {
		return nil
	}
	return v.AncestorAtHeight(block, block.Height-1)
}

// recordingView wraps another view and records requested heights
type recordingView struct {
	chain.View
	lookups []int64
}

func (v *recordingView) AncestorAtHeight(
	block *chain.BlockMetadata,
	height int64,
) *chain.BlockMetadata {
	v.lookups = append(v.lookups, height)
	return v.View.AncestorAtHeight(block, height)
}

func block(height int64, timestamp int64, bits uint32) *chain.BlockMetadata {
	return &chain.BlockMetadata{
		Height: height,
		Header: chain.Header{
			Timestamp: timestamp,
			Bits:      bits,
		},
	}
}

func network(t *testing.T, name string) *consensus.Params {
	t.Helper()
	params, err := consensus.SelectNetwork(name)
	require.NoError(t, err)
	return params
}

func mulDiv(target *uint256.Int, numerator int64, denominator int64) *uint256.Int {
	ret := new(uint256.Int).Mul(target, uint256.NewInt(uint64(numerator)))
	return ret.Div(ret, uint256.NewInt(uint64(denominator)))
}
