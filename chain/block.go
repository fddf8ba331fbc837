// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package chain

import (
	"encoding/hex"
	"fmt"
)

// Header carries the fields of a block header that difficulty
// calculations depend on
type Header struct {
	Timestamp int64 // seconds since epoch
	Bits      uint32
	Hash      [32]byte
}

// BlockMetadata is a header placed at a height in the chain
type BlockMetadata struct {
	Header
	Height int64
}

func (b *BlockMetadata) String() string {
	return fmt.Sprintf(
		"height=%d time=%d bits=%08x hash=%s",
		b.Height,
		b.Timestamp,
		b.Bits,
		hex.EncodeToString(b.Hash[:]),
	)
}

// View provides ancestor lookups along a single chain. Implementations
// return nil when the requested block is not known.
type View interface {
	// AncestorAtHeight returns the ancestor of block at the given height,
	// or block itself when height equals its height
	AncestorAtHeight(block *BlockMetadata, height int64) *BlockMetadata
	// Previous returns the immediate ancestor of block
	Previous(block *BlockMetadata) *BlockMetadata
}
