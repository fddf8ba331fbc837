// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package replay re-validates the difficulty of every block in a chain
// index in parallel
package replay

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/blinklabs-io/powtarget/chain"
	"github.com/blinklabs-io/powtarget/internal/metrics"
	"github.com/blinklabs-io/powtarget/pow"
	"github.com/blinklabs-io/powtarget/retarget"
	"github.com/holiman/uint256"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrMismatch is returned in fail-fast mode when a block fails validation
var ErrMismatch = errors.New("block failed difficulty validation")

// Chain is a chain view that can also be walked by height
type Chain interface {
	chain.View
	Tip() *chain.BlockMetadata
	ByHeight(height int64) *chain.BlockMetadata
}

// Mismatch describes a block that failed validation
type Mismatch struct {
	Height int64
	Err    error
}

func (m Mismatch) String() string {
	return fmt.Sprintf("height %d: %s", m.Height, m.Err)
}

type Result struct {
	Checked    int64
	Mismatches []Mismatch
	TotalWork  *uint256.Int
	Duration   time.Duration
}

type Replayer struct {
	engine   *retarget.Engine
	workers  int
	failFast bool
	logger   *zap.SugaredLogger
}

type Option func(*Replayer)

// WithWorkers sets the number of goroutines validating blocks
func WithWorkers(workers int) Option {
	return func(r *Replayer) {
		if workers > 0 {
			r.workers = workers
		}
	}
}

// WithFailFast stops the replay at the first invalid block
func WithFailFast(failFast bool) Option {
	return func(r *Replayer) {
		r.failFast = failFast
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(r *Replayer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(engine *retarget.Engine, opts ...Option) *Replayer {
	r := &Replayer{
		engine:  engine,
		workers: 1,
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates every block of c. Each block above genesis must carry
// the bits the engine requires given its parent, and every block's hash
// must satisfy its bits. Invalid blocks are collected in the result
// sorted by height. Missing chain data aborts the replay.
func (r *Replayer) Run(ctx context.Context, c Chain) (*Result, error) {
	start := time.Now()
	result := &Result{
		TotalWork: new(uint256.Int),
	}
	tip := c.Tip()
	if tip == nil {
		return result, nil
	}
	metrics.SetChainHeight(tip.Height)
	count := tip.Height + 1
	chunkSize := (count + int64(r.workers) - 1) / int64(r.workers)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for from := int64(0); from < count; from += chunkSize {
		to := min(from+chunkSize, count)
		g.Go(func() error {
			partial, err := r.replayRange(ctx, c, from, to)
			mu.Lock()
			defer mu.Unlock()
			result.Checked += partial.checked
			result.Mismatches = append(result.Mismatches, partial.mismatches...)
			result.TotalWork.Add(result.TotalWork, partial.work)
			return err
		})
	}
	err := g.Wait()
	slices.SortFunc(result.Mismatches, func(a, b Mismatch) int {
		return cmp.Compare(a.Height, b.Height)
	})
	result.Duration = time.Since(start)
	metrics.ObserveReplayDuration(result.Duration)
	if err != nil {
		return result, err
	}
	r.logger.Infof(
		"replayed %d blocks in %s: %d mismatches, chain work %s",
		result.Checked,
		result.Duration,
		len(result.Mismatches),
		result.TotalWork.Dec(),
	)
	return result, nil
}

type rangeResult struct {
	checked    int64
	mismatches []Mismatch
	work       *uint256.Int
}

// replayRange validates the blocks with heights in [from, to)
func (r *Replayer) replayRange(
	ctx context.Context,
	c Chain,
	from int64,
	to int64,
) (*rangeResult, error) {
	ret := &rangeResult{
		work: new(uint256.Int),
	}
	algorithm := string(r.engine.Algorithm())
	for height := from; height < to; height++ {
		if err := ctx.Err(); err != nil {
			return ret, err
		}
		block := c.ByHeight(height)
		if block == nil {
			metrics.ObserveContractViolation()
			return ret, &retarget.ContractViolationError{
				Op:     "replay",
				Reason: fmt.Sprintf("chain has no block at height %d", height),
			}
		}
		var err error
		if height == 0 {
			err = r.checkGenesis(block)
		} else {
			metrics.ObserveRetarget(algorithm)
			err = r.engine.CheckHeader(c, c.ByHeight(height-1), &block.Header)
		}
		switch {
		case err == nil:
			metrics.ObservePowCheck(true)
			ret.work.Add(ret.work, pow.CalcWork(block.Bits))
		case errors.Is(err, retarget.ErrContractViolation):
			metrics.ObserveContractViolation()
			return ret, pkgerrors.Wrapf(err, "replay height %d", height)
		default:
			metrics.ObservePowCheck(false)
			metrics.ObserveReplayMismatch()
			r.logger.Warnf("block at height %d failed validation: %s", height, err)
			ret.mismatches = append(ret.mismatches, Mismatch{Height: height, Err: err})
		}
		ret.checked++
		if err != nil && r.failFast {
			return ret, fmt.Errorf("%w: height %d: %w", ErrMismatch, height, err)
		}
	}
	return ret, nil
}

func (r *Replayer) checkGenesis(block *chain.BlockMetadata) error {
	if !r.engine.VerifyProofOfWork(block.Hash, block.Bits) {
		return fmt.Errorf(
			"%w: genesis hash %x, bits %08x",
			retarget.ErrHighHash,
			block.Hash,
			block.Bits,
		)
	}
	return nil
}
