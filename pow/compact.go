// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"github.com/holiman/uint256"
)

const (
	compactSignBit      = 0x00800000
	compactMantissaMask = 0x007fffff
)

// DecodeCompact converts a compact (nBits) value to a 256-bit target.
// The first byte is the exponent, the low 23 bits are the mantissa and
// bit 23 is a sign flag. Target = mantissa * 256^(exponent-3).
//
// Decoding never fails. A set sign bit with a non-zero mantissa is
// reported through isNegative, and a value that does not fit in 256 bits
// is reported through isOverflow. The returned target holds whatever
// bits survive the shift in either case.
func DecodeCompact(
	compact uint32,
) (target *uint256.Int, isNegative bool, isOverflow bool) {
	exponent := uint(compact >> 24)
	mantissa := compact & compactMantissaMask
	target = new(uint256.Int)
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		target.SetUint64(uint64(mantissa))
	} else {
		target.SetUint64(uint64(mantissa))
		target.Lsh(target, 8*(exponent-3))
	}
	isNegative = mantissa != 0 && compact&compactSignBit != 0
	isOverflow = mantissa != 0 &&
		(exponent > 34 ||
			(mantissa > 0xff && exponent > 33) ||
			(mantissa > 0xffff && exponent > 32))
	return target, isNegative, isOverflow
}

// CompactToTarget converts a compact value to a target, ignoring the
// sign and overflow flags
func CompactToTarget(bits uint32) *uint256.Int {
	target, _, _ := DecodeCompact(bits)
	return target
}

// EncodeCompact converts a target to its compact representation. The
// exponent is the minimal byte length of the target and the mantissa
// holds its three most significant bytes. When the top mantissa bit
// would collide with the sign bit, the mantissa is shifted down one byte
// and the exponent incremented. The encoding is lossy: precision below
// the top three bytes is discarded.
func EncodeCompact(target *uint256.Int) uint32 {
	if target == nil || target.IsZero() {
		return 0
	}
	exponent := uint((target.BitLen() + 7) / 8)
	var mantissa uint32
	if exponent <= 3 {
		mantissa = uint32(target.Uint64()) << (8 * (3 - exponent))
	} else {
		tmp := new(uint256.Int).Rsh(target, 8*(exponent-3))
		mantissa = uint32(tmp.Uint64())
	}
	if mantissa&compactSignBit != 0 {
		mantissa >>= 8
		exponent++
	}
	return uint32(exponent<<24) | mantissa
}
