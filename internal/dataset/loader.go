// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	rankingFilePattern = regexp.MustCompile(`^u(\d+)-(\w+)\.out$`)
	ratingFilePattern  = regexp.MustCompile(`^u(\d+)\.(base|test|validation)$`)
)

// Loader errors.
var (
	ErrNoRankingSets = errors.New("no ranking set files found")
	ErrNoRatingSets  = errors.New("no rating files found")
	ErrMissingSplit  = errors.New("fold is missing a required split")
)

// maxLineBytes bounds one ranking line; long rankings with scores can exceed bufio's default.
const maxLineBytes = 64 << 20

// ParseError reports a malformed line in a dataset file.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadRankingSets reads every u<fold>-<source>.out file in dir.
// Files are parsed concurrently with at most workers goroutines.
func LoadRankingSets(ctx context.Context, dir string, workers int) (RankingSets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset directory: %w", err)
	}

	type job struct {
		path string
		id   RankingSetID
	}
	var jobs []job
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := rankingFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		jobs = append(jobs, job{
			path: filepath.Join(dir, entry.Name()),
			id:   RankingSetID{Fold: match[1], Source: match[2]},
		})
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoRankingSets)
	}

	var (
		mu   sync.Mutex
		sets = make(RankingSets, len(jobs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rs, err := loadRankingFile(j.path, j.id)
			if err != nil {
				return err
			}
			mu.Lock()
			sets[j.id] = rs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

func loadRankingFile(path string, id RankingSetID) (*RankingSet, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from a directory listing of the dataset dir
	if err != nil {
		return nil, fmt.Errorf("open ranking set %s: %w", id, err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	userIDs, rows, err := ReadRankings(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return NewRankingSet(id, userIDs, rows)
}

// ReadRankings parses lines of the form "user<TAB>[item:score,item:score,...]".
// Scores are ignored; ranking order is line order. name is used in errors.
func ReadRankings(r io.Reader, name string) (userIDs []int64, rows [][]int64, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		userID, items, err := parseRankingLine(line)
		if err != nil {
			return nil, nil, &ParseError{File: name, Line: lineNo, Err: err}
		}
		userIDs = append(userIDs, userID)
		rows = append(rows, items)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}
	return userIDs, rows, nil
}

func parseRankingLine(line string) (int64, []int64, error) {
	userField, rankingField, ok := strings.Cut(line, "\t")
	if !ok {
		return 0, nil, errors.New("expected user<TAB>[ranking]")
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(userField), 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("user id: %w", err)
	}

	rankingField = strings.TrimSpace(rankingField)
	if !strings.HasPrefix(rankingField, "[") || !strings.HasSuffix(rankingField, "]") {
		return 0, nil, errors.New("ranking must be enclosed in brackets")
	}
	inner := strings.TrimSpace(rankingField[1 : len(rankingField)-1])
	if inner == "" {
		return userID, nil, nil
	}

	positions := strings.Split(inner, ",")
	items := make([]int64, 0, len(positions))
	for _, pos := range positions {
		itemField, _, _ := strings.Cut(strings.TrimSpace(pos), ":")
		item, err := strconv.ParseInt(itemField, 10, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("item id %q: %w", itemField, err)
		}
		items = append(items, item)
	}
	return userID, items, nil
}

// LoadRatingSets reads every u<fold>.base, u<fold>.test and u<fold>.validation file in dir.
// Each fold must have base and test splits; validation is optional.
func LoadRatingSets(dir string) (RatingSets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset directory: %w", err)
	}

	sets := make(RatingSets)
	seen := make(map[string]map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := ratingFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		fold, split := match[1], match[2]

		ratings, err := loadRatingFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		rs, ok := sets[fold]
		if !ok {
			rs = &RatingSet{Fold: fold}
			sets[fold] = rs
			seen[fold] = make(map[string]bool, 3)
		}
		seen[fold][split] = true
		switch split {
		case "base":
			rs.Base = ratings
		case "test":
			rs.Test = ratings
		case "validation":
			rs.Validation = SomeSplit(ratings)
		}
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoRatingSets)
	}

	for _, fold := range sets.Folds() {
		for _, split := range []string{"base", "test"} {
			if !seen[fold][split] {
				return nil, fmt.Errorf("fold %s: %w: %s", fold, ErrMissingSplit, split)
			}
		}
	}
	return sets, nil
}

func loadRatingFile(path string) ([]Rating, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from a directory listing of the dataset dir
	if err != nil {
		return nil, fmt.Errorf("open ratings: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	return ReadRatings(f, filepath.Base(path))
}

// ReadRatings parses tab-separated "user item rating" lines. Extra columns
// (e.g. MovieLens timestamps) are ignored.
func ReadRatings(r io.Reader, name string) ([]Rating, error) {
	scanner := bufio.NewScanner(r)
	var ratings []Rating

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Split(strings.TrimRight(scanner.Text(), "\r"), "\t")
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if len(fields) < 3 {
			return nil, &ParseError{File: name, Line: lineNo, Err: fmt.Errorf("expected 3 tab-separated fields, got %d", len(fields))}
		}

		user, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return nil, &ParseError{File: name, Line: lineNo, Err: fmt.Errorf("user id: %w", err)}
		}
		item, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return nil, &ParseError{File: name, Line: lineNo, Err: fmt.Errorf("item id: %w", err)}
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, &ParseError{File: name, Line: lineNo, Err: fmt.Errorf("rating: %w", err)}
		}
		ratings = append(ratings, Rating{UserID: user, ItemID: item, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return ratings, nil
}
