// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package chain

import (
	"errors"
	"fmt"
	"sync"
)

var ErrNonContiguousHeight = errors.New("block height does not extend the index")

// Index is an append-only chain of block metadata stored by height.
// It is safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	blocks []*BlockMetadata
}

func NewIndex() *Index {
	return &Index{}
}

// Append adds a block at the next height. The block is copied and must
// not be modified through the index afterwards.
func (i *Index) Append(block BlockMetadata) (*BlockMetadata, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if block.Height != int64(len(i.blocks)) {
		return nil, fmt.Errorf(
			"%w: got height %d, expected %d",
			ErrNonContiguousHeight,
			block.Height,
			len(i.blocks),
		)
	}
	stored := &block
	i.blocks = append(i.blocks, stored)
	return stored, nil
}

// Len returns the number of blocks in the index
func (i *Index) Len() int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return int64(len(i.blocks))
}

// Tip returns the highest block, or nil for an empty index
func (i *Index) Tip() *BlockMetadata {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if len(i.blocks) == 0 {
		return nil
	}
	return i.blocks[len(i.blocks)-1]
}

// ByHeight returns the block at height, or nil if there is none
func (i *Index) ByHeight(height int64) *BlockMetadata {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if height < 0 || height >= int64(len(i.blocks)) {
		return nil
	}
	return i.blocks[height]
}

// Snapshot returns a View of the blocks currently in the index. Blocks
// appended later are not visible through it.
func (i *Index) Snapshot() *Snapshot {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return &Snapshot{
		blocks: i.blocks[:len(i.blocks):len(i.blocks)],
	}
}

// Snapshot is an immutable view of an Index prefix
type Snapshot struct {
	blocks []*BlockMetadata
}

// Len returns the number of blocks visible through the snapshot
func (s *Snapshot) Len() int64 {
	return int64(len(s.blocks))
}

// Tip returns the highest block in the snapshot
func (s *Snapshot) Tip() *BlockMetadata {
	if len(s.blocks) == 0 {
		return nil
	}
	return s.blocks[len(s.blocks)-1]
}

func (s *Snapshot) ByHeight(height int64) *BlockMetadata {
	if height < 0 || height >= int64(len(s.blocks)) {
		return nil
	}
	return s.blocks[height]
}

func (s *Snapshot) AncestorAtHeight(
	block *BlockMetadata,
	height int64,
) *BlockMetadata {
	if !s.contains(block) || height < 0 || height > block.Height {
		return nil
	}
	return s.blocks[height]
}

func (s *Snapshot) Previous(block *BlockMetadata) *BlockMetadata {
	if block == nil {
		return nil
	}
	return s.AncestorAtHeight(block, block.Height-1)
}

// contains reports whether block sits on this chain. A copy of a stored
// block is accepted only while every field still matches, so callers
// never retarget from timestamps or bits the chain does not hold.
func (s *Snapshot) contains(block *BlockMetadata) bool {
	if block == nil || block.Height < 0 || block.Height >= int64(len(s.blocks)) {
		return false
	}
	stored := s.blocks[block.Height]
	return stored == block || *stored == *block
}
