// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package evaluation

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/Hybbon/ps/internal/evaluation/oracle"
)

// Record is one metric value for one ranking set at one cutoff.
type Record struct {
	Metric string  `json:"metric"`
	Cutoff int     `json:"cutoff"`
	Fold   string  `json:"fold"`
	Source string  `json:"source"`
	Value  float64 `json:"value"`
}

func (r Record) key() recordKey {
	return recordKey{r.Metric, r.Cutoff, r.Fold, r.Source}
}

type recordKey struct {
	metric string
	cutoff int
	fold   string
	source string
}

func compareRecords(a, b Record) int {
	return cmp.Or(
		cmp.Compare(a.Metric, b.Metric),
		cmp.Compare(a.Cutoff, b.Cutoff),
		cmp.Compare(a.Fold, b.Fold),
		cmp.Compare(a.Source, b.Source),
	)
}

// Results is a batch of records.
type Results []Record

// Sort orders records by metric, cutoff, fold and source.
func (r Results) Sort() {
	slices.SortStableFunc(r, compareRecords)
}

// ErrDuplicateRecord is returned by Validate.
var ErrDuplicateRecord = errors.New("duplicate result record")

// Validate checks that no (metric, cutoff, fold, source) appears twice.
func (r Results) Validate() error {
	seen := make(map[recordKey]struct{}, len(r))
	for _, rec := range r {
		k := rec.key()
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: %s@%d u%s-%s", ErrDuplicateRecord, rec.Metric, rec.Cutoff, rec.Fold, rec.Source)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// Source categories.
const (
	CategoryOracle      = "oracle"
	CategoryRecommender = "recommender"
)

// SourceSummary is the mean of one source's values across folds.
type SourceSummary struct {
	Metric   string  `json:"metric"`
	Cutoff   int     `json:"cutoff"`
	Source   string  `json:"source"`
	Category string  `json:"category"`
	Mean     float64 `json:"mean"`
	Folds    int     `json:"folds"`
}

// Summarize averages records over folds per (metric, cutoff, source).
// The output is ordered by metric, cutoff and source.
func Summarize(results Results) []SourceSummary {
	type groupKey struct {
		metric string
		cutoff int
		source string
	}
	values := make(map[groupKey][]float64)
	var keys []groupKey
	for _, rec := range results {
		k := groupKey{rec.Metric, rec.Cutoff, rec.Source}
		if _, ok := values[k]; !ok {
			keys = append(keys, k)
		}
		values[k] = append(values[k], rec.Value)
	}

	slices.SortFunc(keys, func(a, b groupKey) int {
		return cmp.Or(
			cmp.Compare(a.metric, b.metric),
			cmp.Compare(a.cutoff, b.cutoff),
			cmp.Compare(a.source, b.source),
		)
	})

	summaries := make([]SourceSummary, 0, len(keys))
	for _, k := range keys {
		category := CategoryRecommender
		if oracle.IsOracleSource(k.source) {
			category = CategoryOracle
		}
		summaries = append(summaries, SourceSummary{
			Metric:   k.metric,
			Cutoff:   k.cutoff,
			Source:   k.source,
			Category: category,
			Mean:     stat.Mean(values[k], nil),
			Folds:    len(values[k]),
		})
	}
	return summaries
}
