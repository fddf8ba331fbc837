// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package retarget

import (
	"github.com/blinklabs-io/powtarget/chain"
	"github.com/blinklabs-io/powtarget/consensus"
	"github.com/blinklabs-io/powtarget/pow"
	"go.uber.org/zap"
)

const periodicOp = "periodic retarget"

// Periodic keeps the target fixed for an adjustment interval and then
// rescales it by the time the interval actually took
type Periodic struct {
	params *consensus.Params
	logger *zap.SugaredLogger
}

func NewPeriodic(params *consensus.Params, opts ...Option) (*Periodic, error) {
	if params == nil {
		return nil, newContractViolation(periodicOp, "nil params")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Periodic{
		params: params,
		logger: o.logger,
	}, nil
}

// NextTarget returns the compact target required for the block following
// last
func (p *Periodic) NextTarget(
	view chain.View,
	last *chain.BlockMetadata,
	candidate *chain.Header,
) (uint32, error) {
	if err := checkInputs(periodicOp, view, last, candidate); err != nil {
		return 0, err
	}
	if p.params.NoRetargeting {
		return last.Bits, nil
	}
	interval := p.params.DifficultyAdjustmentInterval()
	if (last.Height+1)%interval != 0 {
		if p.params.AllowMinDifficultyBlocks {
			return p.minDifficultyBits(view, last, candidate)
		}
		return last.Bits, nil
	}
	first, err := ancestor(periodicOp, view, last, last.Height-(interval-1))
	if err != nil {
		return 0, err
	}
	return p.CalculateNextTarget(last, first.Timestamp), nil
}

// minDifficultyBits applies the min-difficulty rules: a block arriving
// more than two spacings after its parent may use the limit, and other
// blocks inherit the last target that was not a min-difficulty one
func (p *Periodic) minDifficultyBits(
	view chain.View,
	last *chain.BlockMetadata,
	candidate *chain.Header,
) (uint32, error) {
	powLimitBits := p.params.PowLimitBits()
	gap := saturatingSub(candidate.Timestamp, last.Timestamp)
	if gap > 2*p.params.TargetSpacing {
		p.logger.Debugf(
			"min-difficulty block allowed after height %d: gap %ds",
			last.Height,
			gap,
		)
		return powLimitBits, nil
	}
	interval := p.params.DifficultyAdjustmentInterval()
	block := last
	for block.Height%interval != 0 && block.Bits == powLimitBits {
		prev := view.Previous(block)
		if prev == nil {
			return 0, newContractViolation(
				periodicOp,
				"chain view has no parent for block at height %d",
				block.Height,
			)
		}
		block = prev
	}
	return block.Bits, nil
}

// CalculateNextTarget rescales the target of last by the clamped time
// since firstBlockTime, the timestamp of the first block of the interval
func (p *Periodic) CalculateNextTarget(
	last *chain.BlockMetadata,
	firstBlockTime int64,
) uint32 {
	if p.params.NoRetargeting {
		return last.Bits
	}
	actualTimespan := ClampTimespan(
		saturatingSub(last.Timestamp, firstBlockTime),
		p.params.TargetTimespan,
	)
	newTarget := scaleTarget(
		last.Bits,
		actualTimespan,
		p.params.TargetTimespan,
		p.params.PowLimit,
	)
	newBits := pow.EncodeCompact(newTarget)
	p.logger.Debugf(
		"retarget after height %d: actual timespan %ds, target timespan %ds, old bits %08x, new bits %08x",
		last.Height,
		actualTimespan,
		p.params.TargetTimespan,
		last.Bits,
		newBits,
	)
	return newBits
}

// ClampTimespan limits an observed timespan to a factor of four either
// side of the target timespan
func ClampTimespan(actualTimespan int64, targetTimespan int64) int64 {
	return clamp(actualTimespan, targetTimespan/4, targetTimespan*4)
}
