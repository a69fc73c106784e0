/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resourcesConverged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labctl_resources_converged_total",
			Help: "Resources processed by the orchestration driver, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "labctl_run_duration_seconds",
			Help:    "Wall-clock duration of provisioning runs",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)
