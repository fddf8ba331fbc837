// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging_test

import (
	"testing"

	"github.com/blinklabs-io/powtarget/internal/config"
	"github.com/blinklabs-io/powtarget/internal/logging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetupUsesConfiguredLevel(t *testing.T) {
	cfg := config.GetConfig()
	orig := cfg.Logging.Level
	t.Cleanup(func() {
		cfg.Logging.Level = orig
	})
	cfg.Logging.Level = "warn"

	logging.Setup()
	logger := logging.GetDesugaredLogger()
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	require.NotNil(t, logging.GetComponentLogger("replay"))
}
