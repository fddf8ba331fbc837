// Copyright 2024 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"slices"

	"github.com/blinklabs-io/powtarget/consensus"
)

// Profile is a named set of overrides applied on top of the selected
// network's parameters. Nil fields leave the network value untouched.
type Profile struct {
	Algorithm                consensus.Algorithm // Retarget algorithm
	NoRetargeting            *bool               // Keep the previous target forever
	AllowMinDifficultyBlocks *bool               // Allow min-difficulty blocks after long gaps
	MaxAdjustment            int64               // Continuous ratio bound
}

func (p Profile) apply(params *consensus.Params) {
	if p.Algorithm != "" {
		params.Algorithm = p.Algorithm
	}
	if p.NoRetargeting != nil {
		params.NoRetargeting = *p.NoRetargeting
	}
	if p.AllowMinDifficultyBlocks != nil {
		params.AllowMinDifficultyBlocks = *p.AllowMinDifficultyBlocks
	}
	if p.MaxAdjustment > 0 {
		params.MaxAdjustment = p.MaxAdjustment
	}
}

func GetAvailableProfiles() []string {
	ret := make([]string, 0, len(Profiles))
	for k := range Profiles {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}

func boolPtr(v bool) *bool {
	return &v
}

var Profiles = map[string]Profile{
	"no-retarget": {
		NoRetargeting: boolPtr(true),
	},
	"min-difficulty": {
		AllowMinDifficultyBlocks: boolPtr(true),
	},
	"periodic": {
		Algorithm: consensus.AlgorithmPeriodic,
	},
	"continuous": {
		Algorithm: consensus.AlgorithmContinuous,
	},
	// Allows the continuous target to move by up to 8x per block
	"continuous-fast": {
		Algorithm:     consensus.AlgorithmContinuous,
		MaxAdjustment: 8,
	},
}
