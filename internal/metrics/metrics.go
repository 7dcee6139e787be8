// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Evaluation Metrics
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ps_evaluations_total",
			Help: "Total number of (ranking set, cutoff) metric evaluations",
		},
		[]string{"metric", "status"}, // status: "success", "error"
	)

	EvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ps_evaluation_duration_seconds",
			Help:    "Duration of a single ranking set evaluation in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10), // 0.5ms .. ~131s
		},
		[]string{"metric"},
	)

	// Statistics Metrics
	StatisticsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ps_statistics_duration_seconds",
			Help:    "Duration of per-fold statistics derivation in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"derivation"}, // "popularity", "likers", "distance", "hits"
	)

	StatisticsCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ps_statistics_cache_total",
			Help: "Distance matrix snapshot lookups",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	// Oracle Metrics
	OracleGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ps_oracle_generation_duration_seconds",
			Help:    "Duration of oracle ranking generation for one fold in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"oracle"},
	)

	OracleCandidatePoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ps_oracle_candidate_pool_size",
			Help:    "Number of candidate items per user in oracle candidate pools",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 .. 512
		},
	)

	// I/O Metrics
	RankingSetsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ps_ranking_sets_loaded_total",
			Help: "Total number of ranking set files loaded",
		},
	)

	RecordsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ps_records_written_total",
			Help: "Total number of result records written per sink",
		},
		[]string{"sink"},
	)
)

// RecordEvaluation records one metric evaluation.
func RecordEvaluation(metric string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	EvaluationsTotal.WithLabelValues(metric, status).Inc()
	EvaluationDuration.WithLabelValues(metric).Observe(duration.Seconds())
}

// RecordStatistics records the time taken to derive one statistic for one fold.
func RecordStatistics(derivation string, duration time.Duration) {
	StatisticsDuration.WithLabelValues(derivation).Observe(duration.Seconds())
}

// RecordStatisticsCache records a snapshot lookup result: "hit", "miss" or "error".
func RecordStatisticsCache(result string) {
	StatisticsCacheTotal.WithLabelValues(result).Inc()
}

// RecordOracleGeneration records one oracle run over a fold and its pool sizes.
func RecordOracleGeneration(oracle string, duration time.Duration, poolSizes []int) {
	OracleGenerationDuration.WithLabelValues(oracle).Observe(duration.Seconds())
	for _, n := range poolSizes {
		OracleCandidatePoolSize.Observe(float64(n))
	}
}

// RecordRankingSetsLoaded adds n loaded ranking sets.
func RecordRankingSetsLoaded(n int) {
	RankingSetsLoaded.Add(float64(n))
}

// RecordRecordsWritten adds n records written to the named sink.
func RecordRecordsWritten(sink string, n int) {
	RecordsWritten.WithLabelValues(sink).Add(float64(n))
}

// WriteTextfile writes the default registry to path in the Prometheus text format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
