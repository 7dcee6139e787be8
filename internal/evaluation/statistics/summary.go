// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package statistics

import (
	"github.com/rs/zerolog"

	"github.com/Hybbon/ps/internal/dataset"
)

// Summary describes the size of one fold.
type Summary struct {
	Fold              string
	Users             int
	Items             int
	BaseRatings       int
	TestRatings       int
	ValidationRatings int
	HasValidation     bool

	// Sparsity is 1 - ratings/(users*items) over all splits.
	Sparsity float64
}

// FoldSummary counts users, items and ratings of rs.
func FoldSummary(rs *dataset.RatingSet) Summary {
	s := Summary{
		Fold:              rs.Fold,
		BaseRatings:       len(rs.Base),
		TestRatings:       len(rs.Test),
		ValidationRatings: len(rs.Validation.Ratings),
		HasValidation:     rs.HasValidation(),
	}

	all := rs.All()
	users := make(Set)
	items := make(Set)
	for _, r := range all {
		users[r.UserID] = struct{}{}
		items[r.ItemID] = struct{}{}
	}
	s.Users = len(users)
	s.Items = len(items)

	if cells := float64(s.Users) * float64(s.Items); cells > 0 {
		s.Sparsity = 1 - float64(len(all))/cells
	}
	return s
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Str("fold", s.Fold).
		Int("users", s.Users).
		Int("items", s.Items).
		Int("base_ratings", s.BaseRatings).
		Int("test_ratings", s.TestRatings).
		Float64("sparsity", s.Sparsity)
	if s.HasValidation {
		e.Int("validation_ratings", s.ValidationRatings)
	}
}
