// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package dataset

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Sentinel fills unused trailing cells of a ranking matrix. It is never a real item id.
const Sentinel int64 = -1

// RankingSetID identifies a ranking set.
type RankingSetID struct {
	Fold   string
	Source string
}

// String returns the flat-file stem, e.g. "u1-ItemKNN".
func (id RankingSetID) String() string {
	return fmt.Sprintf("u%s-%s", id.Fold, id.Source)
}

// Compare orders ids by fold, then source.
func (id RankingSetID) Compare(other RankingSetID) int {
	if c := cmp.Compare(id.Fold, other.Fold); c != 0 {
		return c
	}
	return cmp.Compare(id.Source, other.Source)
}

// RankingSet is one source's rankings for every user of one fold.
// Row i of Matrix belongs to UserIDs[i]; position 0 is the most preferred item.
// All rows share the same width and are padded with Sentinel.
type RankingSet struct {
	ID      RankingSetID
	Matrix  [][]int64
	UserIDs []int64
}

// Errors returned when building a RankingSet.
var (
	ErrRowCountMismatch = errors.New("ranking row count does not match user id count")
	ErrSentinelItem     = errors.New("ranking contains the sentinel item id")
)

// NewRankingSet builds a padded RankingSet from rows of varying length.
// The rows are copied.
func NewRankingSet(id RankingSetID, userIDs []int64, rows [][]int64) (*RankingSet, error) {
	if len(rows) != len(userIDs) {
		return nil, fmt.Errorf("%s: %w (%d rows, %d users)", id, ErrRowCountMismatch, len(rows), len(userIDs))
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	matrix := make([][]int64, len(rows))
	for i, row := range rows {
		if slices.Contains(row, Sentinel) {
			return nil, fmt.Errorf("%s: user %d: %w", id, userIDs[i], ErrSentinelItem)
		}
		padded := make([]int64, width)
		copy(padded, row)
		for j := len(row); j < width; j++ {
			padded[j] = Sentinel
		}
		matrix[i] = padded
	}

	return &RankingSet{
		ID:      id,
		Matrix:  matrix,
		UserIDs: slices.Clone(userIDs),
	}, nil
}

// Width returns the column count, i.e. the longest real ranking.
func (rs *RankingSet) Width() int {
	if len(rs.Matrix) == 0 {
		return 0
	}
	return len(rs.Matrix[0])
}

// Len returns the number of users.
func (rs *RankingSet) Len() int {
	return len(rs.UserIDs)
}

// Row returns the real prefix of row i, without sentinel padding.
// The returned slice aliases the matrix and must not be modified.
func (rs *RankingSet) Row(i int) []int64 {
	row := rs.Matrix[i]
	if n := slices.Index(row, Sentinel); n >= 0 {
		return row[:n]
	}
	return row
}

// Truncated returns the real prefix of row i cut to at most cutoff items.
func (rs *RankingSet) Truncated(i, cutoff int) []int64 {
	row := rs.Row(i)
	if cutoff < len(row) {
		return row[:cutoff]
	}
	return row
}

// RankingSets maps ranking set ids to ranking sets.
type RankingSets map[RankingSetID]*RankingSet

// IDs returns all ids sorted by (fold, source).
func (s RankingSets) IDs() []RankingSetID {
	ids := make([]RankingSetID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, RankingSetID.Compare)
	return ids
}

// Folds returns the distinct folds in sorted order.
func (s RankingSets) Folds() []string {
	seen := make(map[string]struct{})
	folds := make([]string, 0)
	for id := range s {
		if _, ok := seen[id.Fold]; !ok {
			seen[id.Fold] = struct{}{}
			folds = append(folds, id.Fold)
		}
	}
	slices.Sort(folds)
	return folds
}

// InFold returns the ranking sets of one fold ordered by source.
func (s RankingSets) InFold(fold string) []*RankingSet {
	var sets []*RankingSet
	for _, id := range s.IDs() {
		if id.Fold == fold {
			sets = append(sets, s[id])
		}
	}
	return sets
}

// Merge returns a new map holding the sets of s and other. Entries of other win.
func (s RankingSets) Merge(other RankingSets) RankingSets {
	merged := make(RankingSets, len(s)+len(other))
	for id, rs := range s {
		merged[id] = rs
	}
	for id, rs := range other {
		merged[id] = rs
	}
	return merged
}

// Rating is one (user, item, rating) triple.
type Rating struct {
	UserID int64
	ItemID int64
	Value  float64
}

// Split is an optional rating table. The zero value is an absent split.
type Split struct {
	Present bool
	Ratings []Rating
}

// SomeSplit returns a present split holding ratings.
func SomeSplit(ratings []Rating) Split {
	return Split{Present: true, Ratings: ratings}
}

// RatingSet holds the rating splits of one fold.
// Base is the training signal, Test the held-out signal, Validation is optional.
type RatingSet struct {
	Fold       string
	Base       []Rating
	Test       []Rating
	Validation Split
}

// HasValidation reports whether the validation split is present.
func (rs *RatingSet) HasValidation() bool {
	return rs.Validation.Present
}

// All returns the union of every present split: base, then test, then validation.
func (rs *RatingSet) All() []Rating {
	all := make([]Rating, 0, len(rs.Base)+len(rs.Test)+len(rs.Validation.Ratings))
	all = append(all, rs.Base...)
	all = append(all, rs.Test...)
	if rs.Validation.Present {
		all = append(all, rs.Validation.Ratings...)
	}
	return all
}

// RatingSets maps folds to rating sets.
type RatingSets map[string]*RatingSet

// Folds returns the folds in sorted order.
func (s RatingSets) Folds() []string {
	folds := make([]string, 0, len(s))
	for fold := range s {
		folds = append(folds, fold)
	}
	slices.Sort(folds)
	return folds
}
