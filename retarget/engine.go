// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package retarget

import (
	"fmt"

	"github.com/blinklabs-io/powtarget/chain"
	"github.com/blinklabs-io/powtarget/consensus"
	"go.uber.org/zap"
)

// Retargeter computes the compact target required for the block that
// follows last
type Retargeter interface {
	NextTarget(
		view chain.View,
		last *chain.BlockMetadata,
		candidate *chain.Header,
	) (uint32, error)
}

// Engine combines the retargeter selected by a network's parameters with
// proof-of-work verification. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	params     *consensus.Params
	retargeter Retargeter
	logger     *zap.SugaredLogger
}

func NewEngine(params *consensus.Params, opts ...Option) (*Engine, error) {
	if params == nil {
		return nil, newContractViolation("new engine", "nil params")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	e := &Engine{
		params: params,
		logger: o.logger,
	}
	var err error
	switch params.Algorithm {
	case consensus.AlgorithmContinuous:
		e.retargeter, err = NewContinuous(params, opts...)
	default:
		e.retargeter, err = NewPeriodic(params, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid params for network %s: %w", params.Name, err)
	}
	return e, nil
}

func (e *Engine) Params() *consensus.Params {
	return e.params
}

// Algorithm returns the name of the active retarget algorithm
func (e *Engine) Algorithm() consensus.Algorithm {
	if e.params.Algorithm == "" {
		return consensus.AlgorithmPeriodic
	}
	return e.params.Algorithm
}

// NextRequiredTarget returns the compact target the candidate header
// following last must carry
func (e *Engine) NextRequiredTarget(
	view chain.View,
	last *chain.BlockMetadata,
	candidate *chain.Header,
) (uint32, error) {
	return e.retargeter.NextTarget(view, last, candidate)
}

// VerifyProofOfWork reports whether hash satisfies bits
func (e *Engine) VerifyProofOfWork(hash [32]byte, bits uint32) bool {
	return e.params.CheckProofOfWork(hash, bits)
}

// CheckHeader validates the difficulty fields of candidate as the child
// of last: its bits must equal the required target and its hash must
// satisfy them
func (e *Engine) CheckHeader(
	view chain.View,
	last *chain.BlockMetadata,
	candidate *chain.Header,
) error {
	required, err := e.NextRequiredTarget(view, last, candidate)
	if err != nil {
		return err
	}
	if candidate.Bits != required {
		e.logger.Debugf(
			"header after height %d has bits %08x, required %08x",
			last.Height,
			candidate.Bits,
			required,
		)
		return fmt.Errorf(
			"%w: got %08x, expected %08x",
			ErrBadDifficultyBits,
			candidate.Bits,
			required,
		)
	}
	if !e.VerifyProofOfWork(candidate.Hash, candidate.Bits) {
		return fmt.Errorf(
			"%w: hash %x, bits %08x",
			ErrHighHash,
			candidate.Hash,
			candidate.Bits,
		)
	}
	return nil
}

// NextRequiredTarget computes the compact target for the block following
// last using the algorithm selected by params
func NextRequiredTarget(
	view chain.View,
	last *chain.BlockMetadata,
	candidate *chain.Header,
	params *consensus.Params,
) (uint32, error) {
	e, err := NewEngine(params)
	if err != nil {
		return 0, err
	}
	return e.NextRequiredTarget(view, last, candidate)
}

// VerifyProofOfWork reports whether hash satisfies bits under params
func VerifyProofOfWork(
	hash [32]byte,
	bits uint32,
	params *consensus.Params,
) bool {
	if params == nil {
		return false
	}
	return params.CheckProofOfWork(hash, bits)
}
