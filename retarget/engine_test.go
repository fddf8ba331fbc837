// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package retarget_test

import (
	"sync"
	"testing"

	"github.com/blinklabs-io/powtarget/chain"
	"github.com/blinklabs-io/powtarget/consensus"
	"github.com/blinklabs-io/powtarget/retarget"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewEngineSelectsAlgorithm(t *testing.T) {
	tests := map[string]consensus.Algorithm{
		"mainnet":    consensus.AlgorithmPeriodic,
		"testnet":    consensus.AlgorithmPeriodic,
		"regtest":    consensus.AlgorithmPeriodic,
		"continuous": consensus.AlgorithmContinuous,
	}
	for name, algorithm := range tests {
		t.Run(name, func(t *testing.T) {
			e, err := retarget.NewEngine(network(t, name))
			require.NoError(t, err)
			require.Equal(t, algorithm, e.Algorithm())
			require.Equal(t, name, e.Params().Name)
		})
	}
}

func TestNewEngineRejectsInvalidParams(t *testing.T) {
	_, err := retarget.NewEngine(nil)
	require.ErrorIs(t, err, retarget.ErrContractViolation)

	params := network(t, "mainnet")
	params.TargetSpacing = 0
	_, err = retarget.NewEngine(params)
	require.ErrorIs(t, err, consensus.ErrInvalidSpacing)
}

func TestEngineCheckHeader(t *testing.T) {
	e, err := retarget.NewEngine(network(t, "mainnet"))
	require.NoError(t, err)
	view := buildChain(t, 10, 0x1d00ffff, constantSolvetime(600))
	last := view.Tip()

	require.NoError(t, e.CheckHeader(view, last, &chain.Header{
		Timestamp: last.Timestamp + 600,
		Bits:      0x1d00ffff,
	}))

	err = e.CheckHeader(view, last, &chain.Header{
		Timestamp: last.Timestamp + 600,
		Bits:      0x1c00ffff,
	})
	require.ErrorIs(t, err, retarget.ErrBadDifficultyBits)

	var highHash [32]byte
	highHash[0] = 0x01
	err = e.CheckHeader(view, last, &chain.Header{
		Timestamp: last.Timestamp + 600,
		Bits:      0x1d00ffff,
		Hash:      highHash,
	})
	require.ErrorIs(t, err, retarget.ErrHighHash)

	err = e.CheckHeader(view, nil, &chain.Header{})
	require.ErrorIs(t, err, retarget.ErrContractViolation)
}

func TestPackageLevelFunctions(t *testing.T) {
	params := network(t, "mainnet")
	last := block(32255, 1262152739, 0x1d00ffff)
	view := newSparseView(block(30240, 1261130161, 0x1d00ffff), last)

	bits, err := retarget.NextRequiredTarget(view, last, &chain.Header{}, params)
	require.NoError(t, err)
	require.Equal(t, uint32(0x1d00d86a), bits)

	require.True(t, retarget.VerifyProofOfWork([32]byte{}, bits, params))
	require.False(t, retarget.VerifyProofOfWork([32]byte{}, bits, nil))
}

func TestEngineConcurrentUse(t *testing.T) {
	e, err := retarget.NewEngine(network(t, "continuous"))
	require.NoError(t, err)
	view := buildChain(t, 300, 0x1d00ffff, func(h int64) int64 {
		return 100 + h%100
	})
	expected, err := e.NextRequiredTarget(view, view.Tip(), &chain.Header{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]uint32, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bits, err := e.NextRequiredTarget(view, view.Tip(), &chain.Header{})
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = bits
		}()
	}
	wg.Wait()
	for _, bits := range results {
		require.Equal(t, expected, bits)
	}
}

func TestEngineLogsRetargets(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e, err := retarget.NewEngine(
		network(t, "mainnet"),
		retarget.WithLogger(zap.New(core).Sugar()),
	)
	require.NoError(t, err)
	last := block(2015, genesisTime+600_000, 0x1d00ffff)
	view := newSparseView(block(0, genesisTime, 0x1d00ffff), last)

	_, err = e.NextRequiredTarget(view, last, &chain.Header{})
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessageSnippet("retarget after height 2015").Len())
}
