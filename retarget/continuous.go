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

const continuousOp = "continuous retarget"

// Continuous recomputes the target on every block from a linearly
// weighted average of recent solvetimes, with the newest interval
// weighted most heavily
type Continuous struct {
	params *consensus.Params
	logger *zap.SugaredLogger
}

func NewContinuous(
	params *consensus.Params,
	opts ...Option,
) (*Continuous, error) {
	if params == nil {
		return nil, newContractViolation(continuousOp, "nil params")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Continuous{
		params: params,
		logger: o.logger,
	}, nil
}

// NextTarget returns the compact target required for the block following
// last. Until the chain is MinWindow blocks tall the limit is returned.
func (c *Continuous) NextTarget(
	view chain.View,
	last *chain.BlockMetadata,
	candidate *chain.Header,
) (uint32, error) {
	if err := checkInputs(continuousOp, view, last, candidate); err != nil {
		return 0, err
	}
	if c.params.NoRetargeting {
		return last.Bits, nil
	}
	if last.Height == 0 || last.Height < c.params.MinWindow() {
		return c.params.PowLimitBits(), nil
	}
	window := min(last.Height, c.params.MaxWindow())
	weightedActual, err := c.weightedSolvetime(view, last, window)
	if err != nil {
		return 0, err
	}
	weightedExpected := c.params.WeightedExpected(window)
	weightedActual = clamp(
		weightedActual,
		weightedExpected/c.params.MaxAdjustment,
		weightedExpected*c.params.MaxAdjustment,
	)
	newTarget := scaleTarget(
		last.Bits,
		weightedActual,
		weightedExpected,
		c.params.PowLimit,
	)
	if newTarget.IsZero() {
		newTarget.SetOne()
	}
	newBits := pow.EncodeCompact(newTarget)
	c.logger.Debugf(
		"retarget after height %d: window %d, weighted solvetime %d, expected %d, old bits %08x, new bits %08x",
		last.Height,
		window,
		weightedActual,
		weightedExpected,
		last.Bits,
		newBits,
	)
	return newBits, nil
}

// weightedSolvetime sums the solvetimes of the last window blocks, each
// multiplied by its position in the window (1 for the oldest). Timestamps
// are made monotonic by measuring from the latest timestamp seen so far,
// and every solvetime is kept within [1, SolvetimeCap spacings].
func (c *Continuous) weightedSolvetime(
	view chain.View,
	last *chain.BlockMetadata,
	window int64,
) (int64, error) {
	start, err := ancestor(continuousOp, view, last, last.Height-window)
	if err != nil {
		return 0, err
	}
	maxSolvetime := c.params.SolvetimeCap * c.params.TargetSpacing
	prevMax := start.Timestamp
	var weighted int64
	for i := int64(1); i <= window; i++ {
		block, err := ancestor(continuousOp, view, last, last.Height-window+i)
		if err != nil {
			return 0, err
		}
		maxTimestamp := max(block.Timestamp, prevMax)
		solvetime := clamp(
			saturatingSub(maxTimestamp, prevMax),
			1,
			maxSolvetime,
		)
		prevMax = maxTimestamp
		weighted += solvetime * i
	}
	return weighted, nil
}
