// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package retarget

import (
	"go.uber.org/zap"
)

type Option func(*options)

type options struct {
	logger *zap.SugaredLogger
}

func defaultOptions() options {
	return options{
		logger: zap.NewNop().Sugar(),
	}
}

// WithLogger sets the logger used for debug output about retarget
// decisions
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
