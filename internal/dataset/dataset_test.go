// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package dataset

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNewRankingSet_Pads(t *testing.T) {
	t.Parallel()

	id := RankingSetID{Fold: "1", Source: "ItemKNN"}
	rs, err := NewRankingSet(id, []int64{7, 9}, [][]int64{{1, 2, 3}, {4}})
	if err != nil {
		t.Fatalf("NewRankingSet() error: %v", err)
	}

	want := [][]int64{{1, 2, 3}, {4, Sentinel, Sentinel}}
	if !reflect.DeepEqual(rs.Matrix, want) {
		t.Errorf("Matrix = %v, want %v", rs.Matrix, want)
	}
	if rs.Width() != 3 || rs.Len() != 2 {
		t.Errorf("Width/Len = %d/%d, want 3/2", rs.Width(), rs.Len())
	}
	if got := rs.Row(1); !reflect.DeepEqual(got, []int64{4}) {
		t.Errorf("Row(1) = %v, want [4]", got)
	}
	if got := rs.Truncated(0, 2); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Errorf("Truncated(0, 2) = %v, want [1 2]", got)
	}
	if got := rs.Truncated(1, 10); !reflect.DeepEqual(got, []int64{4}) {
		t.Errorf("Truncated(1, 10) = %v, want [4]", got)
	}
}

func TestNewRankingSet_Errors(t *testing.T) {
	t.Parallel()

	id := RankingSetID{Fold: "1", Source: "x"}
	if _, err := NewRankingSet(id, []int64{1}, nil); !errors.Is(err, ErrRowCountMismatch) {
		t.Errorf("expected ErrRowCountMismatch, got %v", err)
	}
	if _, err := NewRankingSet(id, []int64{1}, [][]int64{{3, Sentinel}}); !errors.Is(err, ErrSentinelItem) {
		t.Errorf("expected ErrSentinelItem, got %v", err)
	}
}

func TestRankingSets_Ordering(t *testing.T) {
	t.Parallel()

	sets := RankingSets{
		{Fold: "2", Source: "WRMF"}:    {ID: RankingSetID{Fold: "2", Source: "WRMF"}},
		{Fold: "1", Source: "WRMF"}:    {ID: RankingSetID{Fold: "1", Source: "WRMF"}},
		{Fold: "1", Source: "BPRSLIM"}: {ID: RankingSetID{Fold: "1", Source: "BPRSLIM"}},
	}

	wantIDs := []RankingSetID{{"1", "BPRSLIM"}, {"1", "WRMF"}, {"2", "WRMF"}}
	if got := sets.IDs(); !reflect.DeepEqual(got, wantIDs) {
		t.Errorf("IDs() = %v, want %v", got, wantIDs)
	}
	if got := sets.Folds(); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("Folds() = %v", got)
	}
	inFold := sets.InFold("1")
	if len(inFold) != 2 || inFold[0].ID.Source != "BPRSLIM" {
		t.Errorf("InFold(1) = %v", inFold)
	}

	merged := sets.Merge(RankingSets{{Fold: "3", Source: "MAPOracle"}: {}})
	if len(merged) != 4 || len(sets) != 3 {
		t.Errorf("Merge sizes = %d/%d, want 4/3", len(merged), len(sets))
	}
}

func TestRatingSet_All(t *testing.T) {
	t.Parallel()

	rs := &RatingSet{
		Fold: "1",
		Base: []Rating{{1, 2, 5}},
		Test: []Rating{{1, 3, 4}},
	}
	if rs.HasValidation() {
		t.Error("zero Split should be absent")
	}
	if got := len(rs.All()); got != 2 {
		t.Errorf("All() without validation = %d ratings, want 2", got)
	}

	rs.Validation = SomeSplit([]Rating{{2, 2, 1}})
	if !rs.HasValidation() {
		t.Error("expected validation present")
	}
	if got := len(rs.All()); got != 3 {
		t.Errorf("All() with validation = %d ratings, want 3", got)
	}
}

func TestReadRankings(t *testing.T) {
	t.Parallel()

	input := "196\t[242:5.0,302:4.0,377:3.0]\n\n186\t[]\r\n22\t[ 5 : 1.5 , 6 ]\n"
	users, rows, err := ReadRankings(strings.NewReader(input), "u1-x.out")
	if err != nil {
		t.Fatalf("ReadRankings() error: %v", err)
	}
	if !reflect.DeepEqual(users, []int64{196, 186, 22}) {
		t.Errorf("users = %v", users)
	}
	want := [][]int64{{242, 302, 377}, nil, {5, 6}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestReadRankings_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"no tab", "1 [2:1.0]\n"},
		{"bad user", "x\t[2:1.0]\n"},
		{"no brackets", "1\t2:1.0\n"},
		{"bad item", "1\t[a:1.0]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadRankings(strings.NewReader(tt.input), "f.out")
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if pe.Line != 1 || pe.File != "f.out" {
				t.Errorf("ParseError location = %s:%d", pe.File, pe.Line)
			}
		})
	}
}

func TestReadRatings(t *testing.T) {
	t.Parallel()

	input := "1\t2\t5\t881250949\n2\t3\t3.5\n"
	ratings, err := ReadRatings(strings.NewReader(input), "u1.base")
	if err != nil {
		t.Fatalf("ReadRatings() error: %v", err)
	}
	want := []Rating{{1, 2, 5}, {2, 3, 3.5}}
	if !reflect.DeepEqual(ratings, want) {
		t.Errorf("ratings = %v, want %v", ratings, want)
	}

	if _, err := ReadRatings(strings.NewReader("1\t2\n"), "u1.base"); err == nil {
		t.Error("expected error for short line")
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "u1.base", "1\t2\t5\n2\t2\t4\n")
	writeFile(t, dir, "u1.test", "1\t3\t5\n")
	writeFile(t, dir, "u1.validation", "2\t4\t1\n")
	writeFile(t, dir, "u2.base", "1\t2\t5\n")
	writeFile(t, dir, "u2.test", "2\t2\t5\n")
	writeFile(t, dir, "u1-ItemKNN.out", "1\t[3:2.0,4:1.0]\n2\t[5:1.0]\n")
	writeFile(t, dir, "u2-WRMF.out", "1\t[9:1.0]\n")
	writeFile(t, dir, "README.md", "not a dataset file")

	ratings, err := LoadRatingSets(dir)
	if err != nil {
		t.Fatalf("LoadRatingSets() error: %v", err)
	}
	if got := ratings.Folds(); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("folds = %v", got)
	}
	if !ratings["1"].HasValidation() || ratings["2"].HasValidation() {
		t.Error("validation presence mismatch")
	}

	rankings, err := LoadRankingSets(context.Background(), dir, 2)
	if err != nil {
		t.Fatalf("LoadRankingSets() error: %v", err)
	}
	knn := rankings[RankingSetID{Fold: "1", Source: "ItemKNN"}]
	if knn == nil {
		t.Fatalf("missing u1-ItemKNN, got %v", rankings.IDs())
	}
	if !reflect.DeepEqual(knn.Matrix, [][]int64{{3, 4}, {5, Sentinel}}) {
		t.Errorf("ItemKNN matrix = %v", knn.Matrix)
	}
}

func TestLoadRatingSets_MissingTest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "u1.base", "1\t2\t5\n")

	if _, err := LoadRatingSets(dir); !errors.Is(err, ErrMissingSplit) {
		t.Errorf("expected ErrMissingSplit, got %v", err)
	}
}

func TestLoadRankingSets_Empty(t *testing.T) {
	t.Parallel()

	if _, err := LoadRankingSets(context.Background(), t.TempDir(), 1); !errors.Is(err, ErrNoRankingSets) {
		t.Errorf("expected ErrNoRankingSets, got %v", err)
	}
}

func TestWriteRankingSet_RoundTrip(t *testing.T) {
	t.Parallel()

	id := RankingSetID{Fold: "1", Source: "MAPOracle"}
	rs, err := NewRankingSet(id, []int64{5, 6}, [][]int64{{10, 11, 12}, {13}})
	if err != nil {
		t.Fatalf("NewRankingSet() error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteRankingSet(&buf, rs); err != nil {
		t.Fatalf("WriteRankingSet() error: %v", err)
	}
	want := "5\t[10:3.0,11:2.0,12:1.0]\n6\t[13:1.0]\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}

	users, rows, err := ReadRankings(&buf, "u1-MAPOracle.out")
	if err != nil {
		t.Fatalf("ReadRankings() error: %v", err)
	}
	back, err := NewRankingSet(id, users, rows)
	if err != nil {
		t.Fatalf("NewRankingSet() error: %v", err)
	}
	if !reflect.DeepEqual(back, rs) {
		t.Errorf("round trip = %+v, want %+v", back, rs)
	}
}

func TestSaveRankingSets(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "oracles")
	id := RankingSetID{Fold: "3", Source: "EPCOracle"}
	rs, _ := NewRankingSet(id, []int64{1}, [][]int64{{2}})

	paths, err := SaveRankingSets(dir, RankingSets{id: rs})
	if err != nil {
		t.Fatalf("SaveRankingSets() error: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "u3-EPCOracle.out" {
		t.Errorf("paths = %v", paths)
	}

	loaded, err := LoadRankingSets(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("LoadRankingSets() error: %v", err)
	}
	if !reflect.DeepEqual(loaded[id], rs) {
		t.Errorf("loaded = %+v, want %+v", loaded[id], rs)
	}
}
