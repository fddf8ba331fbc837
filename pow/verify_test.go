// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow_test

import (
	"testing"

	"github.com/blinklabs-io/powtarget/pow"
	"github.com/holiman/uint256"
)

var mainPowLimit = uint256.MustFromHex(
	"0xffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
)

func hashFromInt(v *uint256.Int) [32]byte {
	return v.Bytes32()
}

func TestCheckProofOfWork(t *testing.T) {
	target := pow.CompactToTarget(0x1d00ffff)
	targetPlusOne := new(uint256.Int).AddUint64(target, 1)
	maxHash := new(uint256.Int).SetAllOne()
	testDefs := []struct {
		name     string
		hash     [32]byte
		bits     uint32
		expected bool
	}{
		{name: "zero hash", hash: [32]byte{}, bits: 0x1d00ffff, expected: true},
		{name: "hash equal to target", hash: hashFromInt(target), bits: 0x1d00ffff, expected: true},
		{name: "hash above target", hash: hashFromInt(targetPlusOne), bits: 0x1d00ffff, expected: false},
		{name: "max hash", hash: hashFromInt(maxHash), bits: 0x1d00ffff, expected: false},
		{name: "negative target", hash: [32]byte{}, bits: 0x1d80ffff, expected: false},
		{name: "zero target", hash: [32]byte{}, bits: 0x1d000000, expected: false},
		{name: "overflowing target", hash: [32]byte{}, bits: 0xff123456, expected: false},
		{name: "target above limit", hash: [32]byte{}, bits: 0x1e00ffff, expected: false},
		{name: "harder target", hash: [32]byte{}, bits: 0x1b0404cb, expected: true},
	}
	for _, testDef := range testDefs {
		got := pow.CheckProofOfWork(testDef.hash, testDef.bits, mainPowLimit)
		if got != testDef.expected {
			t.Fatalf(
				"%s: CheckProofOfWork(0x%08x): got %v, want %v",
				testDef.name,
				testDef.bits,
				got,
				testDef.expected,
			)
		}
	}
}

func TestHashToTargetIsBigEndian(t *testing.T) {
	var hash [32]byte
	hash[31] = 0x01
	if got := pow.HashToTarget(hash); !got.Eq(uint256.NewInt(1)) {
		t.Fatalf("got %s, want 0x1", got.Hex())
	}
	hash = [32]byte{}
	hash[0] = 0x80
	expected := new(uint256.Int).Lsh(uint256.NewInt(0x80), 248)
	if got := pow.HashToTarget(hash); !got.Eq(expected) {
		t.Fatalf("got %s, want %s", got.Hex(), expected.Hex())
	}
}

func TestCalcWork(t *testing.T) {
	testDefs := []struct {
		bits     uint32
		expected uint64
	}{
		// Work of the Bitcoin genesis block
		{bits: 0x1d00ffff, expected: 0x100010001},
		{bits: 0x207fffff, expected: 2},
		{bits: 0x00000000, expected: 0},
		{bits: 0x1d80ffff, expected: 0},
	}
	for _, testDef := range testDefs {
		got := pow.CalcWork(testDef.bits)
		if !got.Eq(uint256.NewInt(testDef.expected)) {
			t.Fatalf(
				"CalcWork(0x%08x): got %s, want %d",
				testDef.bits,
				got.Dec(),
				testDef.expected,
			)
		}
	}
}
