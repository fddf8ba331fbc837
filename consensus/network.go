// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package consensus

import (
	"fmt"
	"slices"
	"strings"

	"github.com/holiman/uint256"
)

type NetworkType string

const (
	Mainnet    NetworkType = "mainnet"
	Testnet    NetworkType = "testnet"
	Regtest    NetworkType = "regtest"
	Continuous NetworkType = "continuous"
)

const (
	bitcoinTargetTimespan = 14 * 24 * 60 * 60 // two weeks
	bitcoinTargetSpacing  = 10 * 60            // 10 minutes
)

var Networks = map[NetworkType]*Params{
	Mainnet:    mainNet(),
	Testnet:    testNet(),
	Regtest:    regTest(),
	Continuous: continuousNet(),
}

// SelectNetwork returns a copy of the named network's parameters
func SelectNetwork(name string) (*Params, error) {
	params, ok := Networks[NetworkType(strings.ToLower(name))]
	if !ok {
		return nil, fmt.Errorf(
			"unknown network: %s: available networks: %s",
			name,
			strings.Join(AvailableNetworks(), ","),
		)
	}
	return params.Clone(), nil
}

func AvailableNetworks() []string {
	ret := make([]string, 0, len(Networks))
	for k := range Networks {
		ret = append(ret, string(k))
	}
	slices.Sort(ret)
	return ret
}

func mainNet() *Params {
	return &Params{
		Name: string(Mainnet),
		PowLimit: uint256.MustFromHex(
			"0xffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		),
		TargetTimespan: bitcoinTargetTimespan,
		TargetSpacing:  bitcoinTargetSpacing,
		Algorithm:      AlgorithmPeriodic,
		MaxAdjustment:  DefaultMaxAdjustment,
		SolvetimeCap:   DefaultSolvetimeCap,
	}
}

func testNet() *Params {
	n := mainNet()
	n.Name = string(Testnet)
	n.AllowMinDifficultyBlocks = true
	return n
}

func regTest() *Params {
	return &Params{
		Name: string(Regtest),
		PowLimit: uint256.MustFromHex(
			"0x7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		),
		TargetTimespan:           bitcoinTargetTimespan,
		TargetSpacing:            bitcoinTargetSpacing,
		AllowMinDifficultyBlocks: true,
		NoRetargeting:            true,
		Algorithm:                AlgorithmPeriodic,
		MaxAdjustment:            DefaultMaxAdjustment,
		SolvetimeCap:             DefaultSolvetimeCap,
	}
}

func continuousNet() *Params {
	const targetSpacing = 150 // 2.5 minutes
	return &Params{
		Name: string(Continuous),
		PowLimit: uint256.MustFromHex(
			"0xfffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		),
		// One block per adjustment interval gives a 25..70 block window
		TargetTimespan: targetSpacing,
		TargetSpacing:  targetSpacing,
		Algorithm:      AlgorithmContinuous,
		MaxAdjustment:  DefaultMaxAdjustment,
		SolvetimeCap:   DefaultSolvetimeCap,
	}
}
