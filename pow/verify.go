// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"github.com/holiman/uint256"
)

// HashToTarget interprets a 32-byte block hash as a big-endian 256-bit
// integer so it can be compared against a target
func HashToTarget(hash [32]byte) *uint256.Int {
	return new(uint256.Int).SetBytes32(hash[:])
}

// TargetFromBits decodes a compact value and checks it is usable as a
// proof-of-work target: non-negative, non-zero, within 256 bits and not
// easier than powLimit. The second return value is false otherwise.
func TargetFromBits(bits uint32, powLimit *uint256.Int) (*uint256.Int, bool) {
	target, isNegative, isOverflow := DecodeCompact(bits)
	if isNegative || isOverflow || target.IsZero() {
		return nil, false
	}
	if powLimit != nil && target.Gt(powLimit) {
		return nil, false
	}
	return target, true
}

// CheckProofOfWork reports whether hash satisfies the target claimed by
// bits. Invalid encodings and targets above powLimit never satisfy.
func CheckProofOfWork(hash [32]byte, bits uint32, powLimit *uint256.Int) bool {
	target, ok := TargetFromBits(bits, powLimit)
	if !ok {
		return false
	}
	return !HashToTarget(hash).Gt(target)
}
