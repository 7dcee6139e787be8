// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package statistics

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hybbon/ps/internal/dataset"
	"github.com/Hybbon/ps/internal/metrics"
)

// Kind names one derivation.
type Kind int

const (
	KindPopularity Kind = iota
	KindLikers
	KindDistance
	KindHits
)

// AllKinds lists every derivation.
var AllKinds = []Kind{KindPopularity, KindLikers, KindDistance, KindHits}

func (k Kind) String() string {
	switch k {
	case KindPopularity:
		return "popularity"
	case KindLikers:
		return "likers"
	case KindDistance:
		return "distance"
	case KindHits:
		return "hits"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrMissingStatistics is matched by MissingStatisticsError.
var ErrMissingStatistics = errors.New("no statistics for fold")

// ErrSnapshotNotFound is returned by a SnapshotStore when no snapshot matches.
var ErrSnapshotNotFound = errors.New("distance snapshot not found")

// MissingStatisticsError reports a fold that has no rating set.
type MissingStatisticsError struct {
	Fold string
	Kind Kind
}

func (e *MissingStatisticsError) Error() string {
	return fmt.Sprintf("no %s statistics for fold %s", e.Kind, e.Fold)
}

func (e *MissingStatisticsError) Is(target error) bool {
	return target == ErrMissingStatistics
}

// SnapshotStore persists distance matrices between runs.
type SnapshotStore interface {
	Load(ctx context.Context, fold, fingerprint string) (*DistanceMatrix, error)
	Save(ctx context.Context, fold, fingerprint string, m *DistanceMatrix) error
}

// CacheConfig configures a Cache.
type CacheConfig struct {
	// Workers bounds goroutines per distance matrix. Defaults to GOMAXPROCS.
	Workers int

	// Store, when set, is consulted before computing a distance matrix.
	Store SnapshotStore

	Logger zerolog.Logger
}

// Cache computes each derivation of each fold once and shares the result.
// It is safe for concurrent use.
type Cache struct {
	ratings dataset.RatingSets
	cfg     CacheConfig
	folds   map[string]*foldStats
}

type foldStats struct {
	popularity func() Popularity
	likers     func() Likers
	hits       func() Hits

	// Distance honours the caller's context, so a cancelled computation
	// is not memoized.
	distanceMu   sync.Mutex
	distanceDone bool
	distance     *DistanceMatrix
	distanceErr  error
}

// NewCache creates a cache over ratings. Nothing is computed until requested.
func NewCache(ratings dataset.RatingSets, cfg CacheConfig) *Cache {
	if cfg.Workers < 1 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	c := &Cache{
		ratings: ratings,
		cfg:     cfg,
		folds:   make(map[string]*foldStats, len(ratings)),
	}
	for fold, rs := range ratings {
		fs := &foldStats{}
		fs.likers = sync.OnceValue(func() Likers {
			return timed(KindLikers, func() Likers { return ComputeLikers(rs) })
		})
		fs.popularity = sync.OnceValue(func() Popularity {
			return timed(KindPopularity, func() Popularity { return ComputePopularity(rs) })
		})
		fs.hits = sync.OnceValue(func() Hits {
			return timed(KindHits, func() Hits { return ComputeHits(rs) })
		})
		c.folds[fold] = fs
	}
	return c
}

func timed[T any](kind Kind, compute func() T) T {
	start := time.Now()
	v := compute()
	metrics.RecordStatistics(kind.String(), time.Since(start))
	return v
}

// Ratings returns the rating sets the cache was built from.
func (c *Cache) Ratings() dataset.RatingSets {
	return c.ratings
}

// Folds returns the folds with rating sets, sorted.
func (c *Cache) Folds() []string {
	return c.ratings.Folds()
}

func (c *Cache) fold(fold string, kind Kind) (*foldStats, error) {
	fs, ok := c.folds[fold]
	if !ok {
		return nil, &MissingStatisticsError{Fold: fold, Kind: kind}
	}
	return fs, nil
}

// Popularity returns the popularity of fold.
func (c *Cache) Popularity(_ context.Context, fold string) (Popularity, error) {
	fs, err := c.fold(fold, KindPopularity)
	if err != nil {
		return nil, err
	}
	return fs.popularity(), nil
}

// Likers returns the likers of fold.
func (c *Cache) Likers(_ context.Context, fold string) (Likers, error) {
	fs, err := c.fold(fold, KindLikers)
	if err != nil {
		return nil, err
	}
	return fs.likers(), nil
}

// Hits returns the hit sets of fold.
func (c *Cache) Hits(_ context.Context, fold string) (Hits, error) {
	fs, err := c.fold(fold, KindHits)
	if err != nil {
		return nil, err
	}
	return fs.hits(), nil
}

// Distance returns the distance matrix of fold, loading it from the snapshot
// store when one matches the fold's base split.
func (c *Cache) Distance(ctx context.Context, fold string) (*DistanceMatrix, error) {
	fs, err := c.fold(fold, KindDistance)
	if err != nil {
		return nil, err
	}

	fs.distanceMu.Lock()
	defer fs.distanceMu.Unlock()

	if fs.distanceDone {
		return fs.distance, fs.distanceErr
	}

	m, err := c.loadOrComputeDistance(ctx, fold, fs)
	if err != nil && ctx.Err() != nil {
		return nil, err
	}
	fs.distance, fs.distanceErr, fs.distanceDone = m, err, true
	return m, err
}

func (c *Cache) loadOrComputeDistance(ctx context.Context, fold string, fs *foldStats) (*DistanceMatrix, error) {
	logger := c.cfg.Logger.With().Str("fold", fold).Logger()

	var fingerprint string
	if c.cfg.Store != nil {
		fingerprint = Fingerprint(c.ratings[fold].Base)
		m, err := c.cfg.Store.Load(ctx, fold, fingerprint)
		switch {
		case err == nil:
			metrics.RecordStatisticsCache("hit")
			logger.Debug().Str("fingerprint", fingerprint).Int("items", m.Len()).Msg("Loaded distance matrix snapshot")
			return m, nil
		case errors.Is(err, ErrSnapshotNotFound):
			metrics.RecordStatisticsCache("miss")
		default:
			metrics.RecordStatisticsCache("error")
			logger.Warn().Err(err).Msg("Failed to load distance matrix snapshot, recomputing")
		}
	}

	start := time.Now()
	m, err := distanceFromLikers(ctx, fs.likers(), c.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("compute distance matrix for fold %s: %w", fold, err)
	}
	elapsed := time.Since(start)
	metrics.RecordStatistics(KindDistance.String(), elapsed)
	logger.Debug().Int("items", m.Len()).Dur("duration", elapsed).Msg("Computed distance matrix")

	if c.cfg.Store != nil {
		if err := c.cfg.Store.Save(ctx, fold, fingerprint, m); err != nil {
			logger.Warn().Err(err).Msg("Failed to save distance matrix snapshot")
		}
	}
	return m, nil
}

// Warm computes the given derivations for every fold. With no kinds it warms all of them.
func (c *Cache) Warm(ctx context.Context, kinds ...Kind) error {
	return c.WarmFolds(ctx, c.Folds(), kinds...)
}

// WarmFolds computes the given derivations for the listed folds. An unknown
// fold fails with a MissingStatisticsError before anything is computed.
func (c *Cache) WarmFolds(ctx context.Context, folds []string, kinds ...Kind) error {
	if len(kinds) == 0 {
		kinds = AllKinds
	}
	for _, fold := range folds {
		for _, kind := range kinds {
			if _, err := c.fold(fold, kind); err != nil {
				return err
			}
		}
	}

	for _, fold := range folds {
		for _, kind := range kinds {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := c.warmOne(ctx, fold, kind); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Cache) warmOne(ctx context.Context, fold string, kind Kind) error {
	var err error
	switch kind {
	case KindPopularity:
		_, err = c.Popularity(ctx, fold)
	case KindLikers:
		_, err = c.Likers(ctx, fold)
	case KindDistance:
		_, err = c.Distance(ctx, fold)
	case KindHits:
		_, err = c.Hits(ctx, fold)
	default:
		err = fmt.Errorf("unknown statistics kind %s", kind)
	}
	return err
}

// Fingerprint identifies a base split by its distinct (user, item) pairs.
// Rating values and order do not affect it.
func Fingerprint(base []dataset.Rating) string {
	pairs := make([][2]int64, 0, len(base))
	for _, r := range base {
		pairs = append(pairs, [2]int64{r.UserID, r.ItemID})
	}
	slices.SortFunc(pairs, func(a, b [2]int64) int {
		if a[0] != b[0] {
			return cmp.Compare(a[0], b[0])
		}
		return cmp.Compare(a[1], b[1])
	})
	pairs = slices.Compact(pairs)

	h := sha256.New()
	var buf [16]byte
	for _, p := range pairs {
		binary.LittleEndian.PutUint64(buf[:8], uint64(p[0])) //nolint:gosec // bit pattern only
		binary.LittleEndian.PutUint64(buf[8:], uint64(p[1])) //nolint:gosec // bit pattern only
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
