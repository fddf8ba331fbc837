// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package metrics holds the Prometheus collectors for difficulty
// validation
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "powtarget"

var (
	retargetTotal           *prometheus.CounterVec
	powChecksTotal          *prometheus.CounterVec
	replayMismatchesTotal   prometheus.Counter
	contractViolationsTotal prometheus.Counter
	chainHeight             prometheus.Gauge
	replayDuration          prometheus.Histogram
)

// initOnce guards registration, which panics on duplicates
var initOnce sync.Once

func Init() {
	initOnce.Do(initMetrics)
}

func initMetrics() {
	retargetTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retarget_total",
			Help:      "Number of required targets computed, by algorithm",
		},
		[]string{"algorithm"},
	)
	powChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pow_checks_total",
			Help:      "Number of proof-of-work checks, by result",
		},
		[]string{"result"},
	)
	replayMismatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replay_mismatches_total",
			Help:      "Number of blocks that failed difficulty validation during replay",
		},
	)
	contractViolationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contract_violations_total",
			Help:      "Number of retarget calls rejected for missing or invalid chain data",
		},
	)
	chainHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chain_height",
			Help:      "Height of the highest block in the chain index",
		},
	)
	replayDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "replay_duration_seconds",
			Help:      "Time taken to replay the chain index",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		},
	)
}

func ObserveRetarget(algorithm string) {
	Init()
	retargetTotal.WithLabelValues(algorithm).Inc()
}

func ObservePowCheck(ok bool) {
	Init()
	result := "valid"
	if !ok {
		result = "invalid"
	}
	powChecksTotal.WithLabelValues(result).Inc()
}

func ObserveReplayMismatch() {
	Init()
	replayMismatchesTotal.Inc()
}

func ObserveContractViolation() {
	Init()
	contractViolationsTotal.Inc()
}

func SetChainHeight(height int64) {
	Init()
	chainHeight.Set(float64(height))
}

func ObserveReplayDuration(d time.Duration) {
	Init()
	replayDuration.Observe(d.Seconds())
}

// Handler serves the default registry
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}
