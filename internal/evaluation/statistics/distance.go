// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package statistics

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"runtime"
	"slices"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/Hybbon/ps/internal/dataset"
)

// DistanceMatrix holds the co-liking distance between every pair of base items.
// Rows and columns follow Items(). The zero-item matrix has no backing storage.
type DistanceMatrix struct {
	items   []int64
	index   map[int64]int
	dense   *mat.SymDense
	colSums []float64
}

func newDistanceMatrix(items []int64, data []float64) *DistanceMatrix {
	m := &DistanceMatrix{
		items: items,
		index: make(map[int64]int, len(items)),
	}
	for i, item := range items {
		m.index[item] = i
	}

	n := len(items)
	if n == 0 {
		return m
	}
	m.dense = mat.NewSymDense(n, data)

	m.colSums = make([]float64, n)
	for i := range n {
		m.colSums[i] = floats.Sum(mat.Row(nil, i, m.dense))
	}
	return m
}

// Items returns the item ids in matrix order, ascending.
func (m *DistanceMatrix) Items() []int64 {
	return m.items
}

// Len returns the number of items.
func (m *DistanceMatrix) Len() int {
	return len(m.items)
}

// Index returns the row of item.
func (m *DistanceMatrix) Index(item int64) (int, bool) {
	i, ok := m.index[item]
	return i, ok
}

// Distance returns the distance between items a and b, 0 if either is unknown.
func (m *DistanceMatrix) Distance(a, b int64) float64 {
	i, ok := m.index[a]
	if !ok {
		return 0
	}
	j, ok := m.index[b]
	if !ok {
		return 0
	}
	return m.dense.At(i, j)
}

// ColumnSum returns the sum of item's column, 0 if the item is unknown.
func (m *DistanceMatrix) ColumnSum(item int64) float64 {
	i, ok := m.index[item]
	if !ok {
		return 0
	}
	return m.colSums[i]
}

// ComputeDistance builds the distance matrix over the sorted base items.
// Cell (i,j) is 1 - |A∩B| / (√|A|·√|B|) where A and B are the likers of items i and j.
// Rows are split into chunks computed by up to workers goroutines.
func ComputeDistance(ctx context.Context, rs *dataset.RatingSet, workers int) (*DistanceMatrix, error) {
	return distanceFromLikers(ctx, ComputeLikers(rs), workers)
}

func distanceFromLikers(ctx context.Context, likers Likers, workers int) (*DistanceMatrix, error) {
	items := make([]int64, 0, len(likers))
	for item := range likers {
		items = append(items, item)
	}
	slices.Sort(items)

	n := len(items)
	if n == 0 {
		return newDistanceMatrix(items, nil), nil
	}

	// Sorted liker slices make intersections a linear merge.
	users := make([][]int64, n)
	for i, item := range items {
		users[i] = likers[item].Sorted()
	}

	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, n)

	data := make([]float64, n*n)
	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					return
				}
				// Each goroutine owns the upper-triangle cells of its rows.
				for j := i + 1; j < n; j++ {
					data[i*n+j] = cosineDistance(users[i], users[j])
				}
			}
		}(start, end)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			data[j*n+i] = data[i*n+j]
		}
	}

	return newDistanceMatrix(items, data), nil
}

// cosineDistance returns 1 - cosine similarity of two sorted id sets, clamped to [0,1].
func cosineDistance(a, b []int64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 1
	}

	common := 0
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] == b[j]:
			common++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}

	sim := float64(common) / (math.Sqrt(float64(len(a))) * math.Sqrt(float64(len(b))))
	return math.Max(0, math.Min(1, 1-sim))
}

// distanceState is the gob wire form of a DistanceMatrix.
type distanceState struct {
	Items []int64
	Data  []float64
}

// GobEncode implements gob.GobEncoder.
func (m *DistanceMatrix) GobEncode() ([]byte, error) {
	state := distanceState{Items: m.items}
	if m.dense != nil {
		state.Data = m.dense.RawSymmetric().Data
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("encode distance matrix: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (m *DistanceMatrix) GobDecode(b []byte) error {
	var state distanceState
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&state); err != nil {
		return fmt.Errorf("decode distance matrix: %w", err)
	}

	n := len(state.Items)
	if len(state.Data) != n*n {
		return fmt.Errorf("decode distance matrix: %d cells for %d items", len(state.Data), n)
	}
	if n == 0 {
		state.Data = nil
	}

	*m = *newDistanceMatrix(state.Items, state.Data)
	return nil
}
