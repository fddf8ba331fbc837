// Copyright 2024 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/blinklabs-io/powtarget/chain"
	"github.com/blinklabs-io/powtarget/internal/config"
	"github.com/blinklabs-io/powtarget/internal/headers"
	"github.com/blinklabs-io/powtarget/internal/logging"
	"github.com/blinklabs-io/powtarget/internal/metrics"
	"github.com/blinklabs-io/powtarget/internal/replay"
	"github.com/blinklabs-io/powtarget/internal/state"
	"github.com/blinklabs-io/powtarget/internal/version"
	"github.com/blinklabs-io/powtarget/retarget"
)

var cmdlineFlags struct {
	configFile string
	importFile string
}

func main() {
	flag.StringVar(
		&cmdlineFlags.configFile,
		"config",
		"",
		"path to config file to load",
	)
	flag.StringVar(
		&cmdlineFlags.importFile,
		"import",
		"",
		"path to YAML header file to import before replay",
	)
	flag.Parse()

	// Load config
	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}

	// Configure logging
	logging.Setup()
	logger := logging.GetLogger()
	// Sync logger on exit
	defer func() {
		if err := logger.Sync(); err != nil {
			// We don't actually care about the error here, but we have to do something
			// to appease the linter
			return
		}
	}()

	logger.Info(
		fmt.Sprintf("powd %s started", version.GetVersionString()),
	)

	params, err := cfg.ConsensusParams()
	if err != nil {
		logger.Fatalf("failed to load consensus params: %s", err)
	}
	engine, err := retarget.NewEngine(
		params,
		retarget.WithLogger(logging.GetComponentLogger("retarget")),
	)
	if err != nil {
		logger.Fatalf("failed to create difficulty engine: %s", err)
	}
	logger.Infof(
		"using network %s with %s retargeting",
		params.Name,
		engine.Algorithm(),
	)

	// Load state
	st := state.GetState()
	if err := st.Load(); err != nil {
		logger.Fatalf("failed to load state: %s", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Errorf("failed to close state: %s", err)
		}
	}()

	// Import headers
	importFile := cfg.Replay.ImportFile
	if cmdlineFlags.importFile != "" {
		importFile = cmdlineFlags.importFile
	}
	if importFile != "" {
		imported, err := importHeaders(st, importFile)
		if err != nil {
			logger.Fatalf("failed to import headers: %s", err)
		}
		logger.Infof("imported %d headers from %s", imported, importFile)
	}

	// Build chain index
	idx := chain.NewIndex()
	loaded, err := st.LoadIndex(idx)
	if err != nil {
		logger.Fatalf("failed to load chain index: %s", err)
	}
	logger.Infof("loaded %d blocks into chain index", loaded)

	// Start debug listener
	if cfg.Debug.ListenPort > 0 {
		logger.Infof(
			"starting debug listener on %s:%d",
			cfg.Debug.ListenAddress,
			cfg.Debug.ListenPort,
		)
		go func() {
			err := http.ListenAndServe(
				fmt.Sprintf(
					"%s:%d",
					cfg.Debug.ListenAddress,
					cfg.Debug.ListenPort,
				),
				nil,
			)
			if err != nil {
				logger.Fatalf("failed to start debug listener: %s", err)
			}
		}()
	}

	// Start metrics listener
	if cfg.Metrics.ListenPort > 0 {
		logger.Infof(
			"starting metrics listener on %s:%d",
			cfg.Metrics.ListenAddress,
			cfg.Metrics.ListenPort,
		)
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metrics.Handler())
		go func() {
			err := http.ListenAndServe(
				fmt.Sprintf(
					"%s:%d",
					cfg.Metrics.ListenAddress,
					cfg.Metrics.ListenPort,
				),
				metricsMux,
			)
			if err != nil {
				logger.Fatalf("failed to start metrics listener: %s", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	// Replay chain
	replayer := replay.New(
		engine,
		replay.WithWorkers(cfg.Replay.Workers),
		replay.WithFailFast(cfg.Replay.FailFast),
		replay.WithLogger(logging.GetComponentLogger("replay")),
	)
	result, err := replayer.Run(ctx, idx.Snapshot())
	if err != nil {
		logger.Errorf("replay failed: %s", err)
	}
	if result != nil {
		for _, mismatch := range result.Mismatches {
			logger.Warnf("invalid block: %s", mismatch)
		}
	}

	if cfg.Metrics.ListenPort > 0 && ctx.Err() == nil {
		// Keep serving metrics until interrupted
		<-ctx.Done()
	}
	if err != nil || (result != nil && len(result.Mismatches) > 0) {
		// Flush logs and close state before exiting
		_ = logger.Sync()
		_ = st.Close()
		os.Exit(1)
	}
}

// importHeaders stores the headers in path that extend the current tip
func importHeaders(st *state.State, path string) (int, error) {
	blocks, err := headers.ReadFile(path)
	if err != nil {
		return 0, err
	}
	tip, err := st.Tip()
	if err != nil {
		return 0, err
	}
	var imported int
	for i := range blocks {
		if blocks[i].Height <= tip {
			continue
		}
		if err := st.PutBlock(&blocks[i]); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
