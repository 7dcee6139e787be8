// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// WriteRankingSet writes rs in the same line format ReadRankings parses.
// Scores count down from the row length to 1 so that consumers sorting by
// score recover the original order. Sentinel padding is not written.
func WriteRankingSet(w io.Writer, rs *RankingSet) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 256)

	for i, userID := range rs.UserIDs {
		row := rs.Row(i)

		buf = buf[:0]
		buf = strconv.AppendInt(buf, userID, 10)
		buf = append(buf, '\t', '[')
		for pos, item := range row {
			if pos > 0 {
				buf = append(buf, ',')
			}
			buf = strconv.AppendInt(buf, item, 10)
			buf = append(buf, ':')
			buf = strconv.AppendFloat(buf, float64(len(row)-pos), 'f', 1, 64)
		}
		buf = append(buf, ']', '\n')

		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write ranking set %s: %w", rs.ID, err)
		}
	}
	return bw.Flush()
}

// SaveRankingSets writes each set to dir/u<fold>-<source>.out, creating dir if needed.
// Returns the written paths in id order.
func SaveRankingSets(dir string, sets RankingSets) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create ranking directory: %w", err)
	}

	paths := make([]string, 0, len(sets))
	for _, id := range sets.IDs() {
		path := filepath.Join(dir, id.String()+".out")
		if err := saveRankingSet(path, sets[id]); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func saveRankingSet(path string, rs *RankingSet) (err error) {
	f, err := os.Create(path) //nolint:gosec // path is built from the output dir and ranking set id
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return WriteRankingSet(f, rs)
}
