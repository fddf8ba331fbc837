// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package consensus

import (
	"errors"
	"fmt"
	"math"

	"github.com/blinklabs-io/powtarget/pow"
	"github.com/holiman/uint256"
)

type Algorithm string

const (
	// AlgorithmPeriodic recomputes the target once per adjustment interval
	AlgorithmPeriodic Algorithm = "periodic"
	// AlgorithmContinuous recomputes the target every block from a
	// weighted window of recent solvetimes
	AlgorithmContinuous Algorithm = "continuous"
)

const (
	DefaultMaxAdjustment = 4
	DefaultSolvetimeCap  = 10

	minWindowFactor = 25
	maxWindowFactor = 70
)

var (
	ErrInvalidPowLimit = errors.New("powLimit must be non-zero")
	ErrInvalidSpacing  = errors.New(
		"target spacing must be positive and not exceed the target timespan",
	)
	ErrParamsOverflow = errors.New(
		"parameters overflow 64-bit retarget arithmetic",
	)
)

// Params holds the proof-of-work parameters of a network. A Params value
// must not be modified once it is in use by a retargeter.
type Params struct {
	Name                     string
	PowLimit                 *uint256.Int
	TargetTimespan           int64 // seconds
	TargetSpacing            int64 // seconds
	AllowMinDifficultyBlocks bool
	NoRetargeting            bool
	Algorithm                Algorithm
	// MaxAdjustment bounds the continuous retarget ratio to
	// [1/MaxAdjustment, MaxAdjustment]
	MaxAdjustment int64
	// SolvetimeCap bounds a single continuous solvetime, in spacings
	SolvetimeCap int64
}

// DifficultyAdjustmentInterval returns the number of blocks between
// periodic retargets
func (p *Params) DifficultyAdjustmentInterval() int64 {
	return p.TargetTimespan / p.TargetSpacing
}

// PowLimitBits returns the compact encoding of PowLimit
func (p *Params) PowLimitBits() uint32 {
	return pow.EncodeCompact(p.PowLimit)
}

// MinWindow returns the chain height below which the continuous
// retargeter keeps returning the proof-of-work limit
func (p *Params) MinWindow() int64 {
	return minWindowFactor * p.TargetTimespan / p.TargetSpacing
}

// MaxWindow returns the largest number of solvetimes the continuous
// retargeter averages over
func (p *Params) MaxWindow() int64 {
	return maxWindowFactor * p.TargetTimespan / p.TargetSpacing
}

// CheckProofOfWork reports whether hash satisfies bits under this
// network's proof-of-work limit
func (p *Params) CheckProofOfWork(hash [32]byte, bits uint32) bool {
	return pow.CheckProofOfWork(hash, bits, p.PowLimit)
}

// Validate checks the parameters for values that would make retargeting
// undefined
func (p *Params) Validate() error {
	if p.PowLimit == nil || p.PowLimit.IsZero() {
		return ErrInvalidPowLimit
	}
	if p.TargetSpacing <= 0 || p.TargetTimespan < p.TargetSpacing {
		return ErrInvalidSpacing
	}
	if p.TargetTimespan > math.MaxInt64/maxWindowFactor {
		return fmt.Errorf(
			"%w: target timespan %d",
			ErrParamsOverflow,
			p.TargetTimespan,
		)
	}
	switch p.Algorithm {
	case AlgorithmPeriodic, "":
	case AlgorithmContinuous:
		if p.MaxAdjustment < 1 {
			return fmt.Errorf(
				"invalid max adjustment %d: must be at least 1",
				p.MaxAdjustment,
			)
		}
		if p.SolvetimeCap < 1 {
			return fmt.Errorf(
				"invalid solvetime cap %d: must be at least 1",
				p.SolvetimeCap,
			)
		}
		if !p.continuousFits() {
			return fmt.Errorf(
				"%w: max adjustment %d, solvetime cap %d, window %d",
				ErrParamsOverflow,
				p.MaxAdjustment,
				p.SolvetimeCap,
				p.MaxWindow(),
			)
		}
	default:
		return fmt.Errorf("unknown retarget algorithm: %s", p.Algorithm)
	}
	return nil
}

// WeightedExpected returns the weighted solvetime sum a continuous window
// of the given size produces when every block arrives on schedule
func (p *Params) WeightedExpected(window int64) int64 {
	return p.TargetSpacing * (window * (window + 1) / 2)
}

// continuousFits reports whether the largest continuous window keeps the
// weighted sums and their adjustment bounds within int64
func (p *Params) continuousFits() bool {
	window := p.MaxWindow()
	weights, ok := mulNonNegative(window, window+1)
	if !ok {
		return false
	}
	expected, ok := mulNonNegative(p.TargetSpacing, weights/2)
	if !ok {
		return false
	}
	if _, ok := mulNonNegative(expected, p.MaxAdjustment); !ok {
		return false
	}
	_, ok = mulNonNegative(expected, p.SolvetimeCap)
	return ok
}

func mulNonNegative(a, b int64) (int64, bool) {
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}

// Clone returns a copy of the parameters that can be modified without
// affecting the original
func (p *Params) Clone() *Params {
	ret := *p
	if p.PowLimit != nil {
		ret.PowLimit = p.PowLimit.Clone()
	}
	return &ret
}
