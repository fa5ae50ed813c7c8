// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirseerhq/sirseer-board/internal/board"
)

// Metrics holds the board collectors.
type Metrics struct {
	registry      *prometheus.Registry
	runs          *prometheus.CounterVec
	batchFailures *prometheus.CounterVec
	pullRequests  *prometheus.GaugeVec
	apiCalls      *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
}

// NewMetrics registers the board collectors on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "board_runs_total",
			Help: "Aggregation runs by team and outcome.",
		}, []string{"team", "outcome"}),
		batchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "board_batch_failures_total",
			Help: "Failed batches by kind and error category.",
		}, []string{"kind", "category"}),
		pullRequests: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "board_pull_requests",
			Help: "Pull requests on the latest board of each team, by bucket.",
		}, []string{"team", "bucket"}),
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "board_api_calls_total",
			Help: "GitHub GraphQL requests issued by aggregation runs.",
		}, []string{"team"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "board_run_duration_seconds",
			Help:    "Wall time of aggregation runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"team"}),
	}
	registry.MustRegister(m.runs, m.batchFailures, m.pullRequests, m.apiCalls, m.runDuration)
	return m
}

// Observe records one finished run.
func (m *Metrics) Observe(team string, result *board.Result) {
	outcome := "complete"
	switch {
	case result.AllFailed():
		outcome = "failed"
	case result.Partial():
		outcome = "partial"
	}
	m.runs.WithLabelValues(team, outcome).Inc()

	for _, f := range result.Failures {
		m.batchFailures.WithLabelValues(string(f.Kind), string(f.Category)).Inc()
	}

	for _, label := range []string{board.LabelChangesRequested, board.LabelApproved, board.LabelReviewRequired} {
		m.pullRequests.WithLabelValues(team, label).Set(0)
	}
	for _, b := range result.Buckets {
		m.pullRequests.WithLabelValues(team, b.Label).Set(float64(len(b.Content)))
	}

	if md := result.Metadata; md != nil {
		m.apiCalls.WithLabelValues(team).Add(float64(md.Results.APICallCount))
		m.runDuration.WithLabelValues(team).Observe(md.Results.CompletedAt.Sub(md.Results.StartedAt).Seconds())
	}
}
