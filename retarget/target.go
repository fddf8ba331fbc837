// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package retarget

import (
	"math"

	"github.com/blinklabs-io/powtarget/chain"
	"github.com/blinklabs-io/powtarget/pow"
	"github.com/holiman/uint256"
)

// scaleTarget returns the target encoded by bits multiplied by
// numerator/denominator, capped at powLimit. The product is formed
// before dividing so no precision is lost. A product that does not fit
// in 256 bits is necessarily above powLimit.
func scaleTarget(
	bits uint32,
	numerator int64,
	denominator int64,
	powLimit *uint256.Int,
) *uint256.Int {
	target := pow.CompactToTarget(bits)
	newTarget, overflow := new(uint256.Int).MulOverflow(
		target,
		uint256.NewInt(uint64(numerator)),
	)
	if overflow {
		return powLimit.Clone()
	}
	newTarget.Div(newTarget, uint256.NewInt(uint64(denominator)))
	if newTarget.Gt(powLimit) {
		return powLimit.Clone()
	}
	return newTarget
}

// clamp bounds value to [lower, upper]
func clamp(value, lower, upper int64) int64 {
	return min(max(value, lower), upper)
}

// saturatingSub returns a-b, pinned to the int64 range instead of
// wrapping. Timestamps are producer-supplied and may sit at either limit.
func saturatingSub(a, b int64) int64 {
	diff := a - b
	if b < 0 && diff < a {
		return math.MaxInt64
	}
	if b > 0 && diff > a {
		return math.MinInt64
	}
	return diff
}

func checkInputs(
	op string,
	view chain.View,
	last *chain.BlockMetadata,
	candidate *chain.Header,
) error {
	if view == nil {
		return newContractViolation(op, "nil chain view")
	}
	if last == nil {
		return newContractViolation(op, "nil last block")
	}
	if last.Height < 0 {
		return newContractViolation(op, "negative height %d", last.Height)
	}
	if candidate == nil {
		return newContractViolation(op, "nil candidate header")
	}
	return nil
}

func ancestor(
	op string,
	view chain.View,
	last *chain.BlockMetadata,
	height int64,
) (*chain.BlockMetadata, error) {
	if height < 0 {
		return nil, newContractViolation(
			op,
			"ancestor height %d below genesis",
			height,
		)
	}
	block := view.AncestorAtHeight(last, height)
	if block == nil {
		return nil, newContractViolation(
			op,
			"chain view has no ancestor at height %d for block at height %d",
			height,
			last.Height,
		)
	}
	return block, nil
}
