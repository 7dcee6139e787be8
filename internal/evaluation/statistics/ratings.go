// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package statistics

import (
	"slices"

	"github.com/Hybbon/ps/internal/dataset"
)

// Set is a set of user or item ids.
type Set map[int64]struct{}

// Contains reports whether id is in the set. A nil set contains nothing.
func (s Set) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Popularity maps item -> share of base users who rated it, in [0,1].
type Popularity map[int64]float64

// Of returns the popularity of item, 0 when unknown.
func (p Popularity) Of(item int64) float64 {
	return p[item]
}

// Likers maps item -> base users who rated it.
type Likers map[int64]Set

// Of returns the users who rated item, nil when unknown.
func (l Likers) Of(item int64) Set {
	return l[item]
}

// Hits maps user -> items they rated in the test split.
type Hits map[int64]Set

// Of returns the hit set of user. Absent users have an empty set.
func (h Hits) Of(user int64) Set {
	return h[user]
}

// ComputePopularity returns the popularity of every base item: distinct
// raters of the item divided by distinct base users, with the denominator
// floored at 1.
func ComputePopularity(rs *dataset.RatingSet) Popularity {
	likers := ComputeLikers(rs)

	users := make(Set)
	for _, r := range rs.Base {
		users[r.UserID] = struct{}{}
	}
	total := float64(max(1, len(users)))

	pop := make(Popularity, len(likers))
	for item, raters := range likers {
		pop[item] = float64(len(raters)) / total
	}
	return pop
}

// ComputeLikers groups base users by the items they rated.
func ComputeLikers(rs *dataset.RatingSet) Likers {
	likers := make(Likers)
	for _, r := range rs.Base {
		set, ok := likers[r.ItemID]
		if !ok {
			set = make(Set)
			likers[r.ItemID] = set
		}
		set[r.UserID] = struct{}{}
	}
	return likers
}

// ComputeHits groups test items by user.
func ComputeHits(rs *dataset.RatingSet) Hits {
	hits := make(Hits)
	for _, r := range rs.Test {
		set, ok := hits[r.UserID]
		if !ok {
			set = make(Set)
			hits[r.UserID] = set
		}
		set[r.ItemID] = struct{}{}
	}
	return hits
}
