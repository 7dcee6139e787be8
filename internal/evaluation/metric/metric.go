// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package metric

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Hybbon/ps/internal/dataset"
	"github.com/Hybbon/ps/internal/evaluation/statistics"
)

// Discount is the per-position rank discount factor.
const Discount = 0.85

// Metric scores one ranking set at one cutoff.
type Metric interface {
	Name() string
	Compute(ctx context.Context, rs *dataset.RankingSet, cutoff int) (float64, error)
}

// Kind selects a metric.
type Kind int

const (
	KindMAP Kind = iota
	KindEPC
	KindEILD
)

// Kinds lists every metric kind in reporting order.
var Kinds = []Kind{KindMAP, KindEPC, KindEILD}

func (k Kind) String() string {
	switch k {
	case KindMAP:
		return "MAP"
	case KindEPC:
		return "EPC"
	case KindEILD:
		return "EILD"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind resolves a metric name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(k.String(), name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", name)
}

// Requires returns the statistics the metric reads.
func (k Kind) Requires() []statistics.Kind {
	switch k {
	case KindMAP:
		return []statistics.Kind{statistics.KindHits}
	case KindEPC:
		return []statistics.Kind{statistics.KindPopularity}
	case KindEILD:
		return []statistics.Kind{statistics.KindDistance}
	default:
		return nil
	}
}

// New returns the metric of the given kind, reading statistics from cache.
func New(kind Kind, cache *statistics.Cache) (Metric, error) {
	if cache == nil {
		return nil, errors.New("metric: nil statistics cache")
	}
	switch kind {
	case KindMAP:
		return &MAP{cache: cache}, nil
	case KindEPC:
		return &EPC{cache: cache}, nil
	case KindEILD:
		return &EILD{cache: cache}, nil
	default:
		return nil, fmt.Errorf("unknown metric kind %d", int(kind))
	}
}

// Errors returned by metrics.
var (
	ErrInvalidCutoff = errors.New("cutoff must be at least 1")
	ErrEmptyRanking  = errors.New("empty ranking")
)

// EmptyRankingError reports a user with hits but no ranked items.
type EmptyRankingError struct {
	Fold   string
	Source string
	UserID int64
}

func (e *EmptyRankingError) Error() string {
	return fmt.Sprintf("empty ranking for user %d in u%s-%s", e.UserID, e.Fold, e.Source)
}

func (e *EmptyRankingError) Is(target error) bool {
	return target == ErrEmptyRanking
}

func checkCutoff(cutoff int) error {
	if cutoff < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCutoff, cutoff)
	}
	return nil
}

// effectiveCutoff is C = min(cutoff, width).
func effectiveCutoff(rs *dataset.RankingSet, cutoff int) int {
	return min(cutoff, rs.Width())
}

// discounts returns Discount^k for k in [0, n).
func discounts(n int) []float64 {
	table := make([]float64, n)
	d := 1.0
	for k := range table {
		table[k] = d
		d *= Discount
	}
	return table
}

// meanOverUsers applies score to every user of rs and averages the results.
// A set with no users scores 0.
func meanOverUsers(ctx context.Context, rs *dataset.RankingSet, score func(i int) (float64, error)) (float64, error) {
	if rs.Len() == 0 {
		return 0, nil
	}

	scores := make([]float64, rs.Len())
	for i := range scores {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		s, err := score(i)
		if err != nil {
			return 0, err
		}
		scores[i] = s
	}
	return stat.Mean(scores, nil), nil
}

// normalizer returns the discount sum over the first c positions.
func normalizer(table []float64, c int) float64 {
	return floats.Sum(table[:c])
}
