// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"github.com/holiman/uint256"
)

// CalcWork returns the expected number of hashes needed to find a hash
// at or below the target encoded by bits, 2^256 / (target+1). Invalid
// encodings carry no work.
func CalcWork(bits uint32) *uint256.Int {
	target, ok := TargetFromBits(bits, nil)
	if !ok {
		return new(uint256.Int)
	}
	// 2^256 does not fit, so compute (2^256 - target - 1) / (target + 1) + 1
	denominator, overflow := new(uint256.Int).AddOverflow(target, uint256.NewInt(1))
	if overflow {
		return uint256.NewInt(1)
	}
	work := new(uint256.Int).Not(target)
	work.Div(work, denominator)
	return work.AddUint64(work, 1)
}
