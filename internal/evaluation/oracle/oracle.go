// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Hybbon/ps/internal/dataset"
	"github.com/Hybbon/ps/internal/evaluation/statistics"
	"github.com/Hybbon/ps/internal/metrics"
)

// Oracle generates an oracle ranking set for one fold.
type Oracle interface {
	Name() string
	Generate(ctx context.Context, fold string, inputCutoff, outputCutoff int) (*dataset.RankingSet, error)
}

// Kind selects an oracle.
type Kind int

const (
	KindEPC Kind = iota
	KindEILD
	KindMAP
)

// Kinds lists every oracle kind.
var Kinds = []Kind{KindEPC, KindEILD, KindMAP}

// Source names of the generated ranking sets.
const (
	EPCOracleName  = "EPCOracle"
	EILDOracleName = "EILDOracle"
	MAPOracleName  = "MAPOracle"
)

func (k Kind) String() string {
	switch k {
	case KindEPC:
		return EPCOracleName
	case KindEILD:
		return EILDOracleName
	case KindMAP:
		return MAPOracleName
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Requires returns the statistics the oracle reads.
func (k Kind) Requires() []statistics.Kind {
	switch k {
	case KindEPC:
		return []statistics.Kind{statistics.KindPopularity}
	case KindEILD:
		return []statistics.Kind{statistics.KindDistance}
	case KindMAP:
		return []statistics.Kind{statistics.KindHits}
	default:
		return nil
	}
}

// ParseKind resolves an oracle by its source name or metric name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(k.String(), name) || strings.EqualFold(strings.TrimSuffix(k.String(), "Oracle"), name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown oracle %q", name)
}

// IsOracleSource reports whether a ranking set source was produced by an oracle.
func IsOracleSource(source string) bool {
	return source == EPCOracleName || source == EILDOracleName || source == MAPOracleName
}

// Errors returned by oracles.
var (
	ErrInvalidCutoff      = errors.New("oracle cutoffs must be at least 1")
	ErrEmptyCandidatePool = errors.New("empty candidate pool")
)

// EmptyCandidatePoolError reports a user, or with UserID -1 a whole fold,
// for which no real source ranked any item.
type EmptyCandidatePoolError struct {
	Fold   string
	UserID int64
}

func (e *EmptyCandidatePoolError) Error() string {
	if e.UserID < 0 {
		return fmt.Sprintf("fold %s has no ranking sets to build a candidate pool from", e.Fold)
	}
	return fmt.Sprintf("empty candidate pool for user %d in fold %s", e.UserID, e.Fold)
}

func (e *EmptyCandidatePoolError) Is(target error) bool {
	return target == ErrEmptyCandidatePool
}

func checkCutoffs(inputCutoff, outputCutoff int) error {
	if inputCutoff < 1 || outputCutoff < 1 {
		return fmt.Errorf("%w: input %d, output %d", ErrInvalidCutoff, inputCutoff, outputCutoff)
	}
	return nil
}

// New returns the oracle of the given kind over the real ranking sets.
func New(kind Kind, rankings dataset.RankingSets, cache *statistics.Cache) (Oracle, error) {
	if cache == nil {
		return nil, errors.New("oracle: nil statistics cache")
	}
	base := base{rankings: rankings, cache: cache}
	switch kind {
	case KindEPC:
		return &EPCOracle{base}, nil
	case KindEILD:
		return &EILDOracle{base}, nil
	case KindMAP:
		return &MAPOracle{base}, nil
	default:
		return nil, fmt.Errorf("unknown oracle kind %d", int(kind))
	}
}

// base holds what every oracle needs.
type base struct {
	rankings dataset.RankingSets
	cache    *statistics.Cache
}

// generate builds the candidate pool and lets pick choose each user's row.
func (b *base) generate(
	ctx context.Context,
	name, fold string,
	inputCutoff, outputCutoff int,
	pick func(userID int64, candidates []int64) []int64,
) (*dataset.RankingSet, error) {
	start := time.Now()

	pool, err := BuildCandidatePool(ctx, b.rankings, fold, inputCutoff)
	if err != nil {
		return nil, err
	}

	rows := make([][]int64, len(pool.UserIDs))
	for i, userID := range pool.UserIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := pick(userID, pool.Candidates[i])
		rows[i] = row[:min(len(row), outputCutoff)]
	}

	rs, err := dataset.NewRankingSet(dataset.RankingSetID{Fold: fold, Source: name}, pool.UserIDs, rows)
	if err != nil {
		return nil, err
	}
	metrics.RecordOracleGeneration(name, time.Since(start), pool.Sizes())
	return rs, nil
}

// GenerateAll runs every oracle on every fold with at most workers goroutines
// and returns the ranking sets keyed by (fold, oracle name). The first failure
// cancels the remaining work.
func GenerateAll(ctx context.Context, oracles []Oracle, folds []string, inputCutoff, outputCutoff, workers int) (dataset.RankingSets, error) {
	if err := checkCutoffs(inputCutoff, outputCutoff); err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		out = make(dataset.RankingSets, len(oracles)*len(folds))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for _, fold := range folds {
		for _, o := range oracles {
			g.Go(func() error {
				rs, err := o.Generate(gctx, fold, inputCutoff, outputCutoff)
				if err != nil {
					return fmt.Errorf("generate %s for fold %s: %w", o.Name(), fold, err)
				}
				mu.Lock()
				out[rs.ID] = rs
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
