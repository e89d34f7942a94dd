// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rain/snapshot.go
// Summary: Grid snapshots and the per-column lowest-changed-row cutoffs that
// bound where synthetic trail characters may appear.

package rain

import "github.com/framegrace/rainterm/term/parser"

// captureSnapshot copies the grid into a column-major baseline.
func captureSnapshot(grid [][]parser.Cell) [][]parser.Cell {
	cols, rows := gridSize(grid)
	snapshot := make([][]parser.Cell, cols)
	for col := 0; col < cols; col++ {
		column := make([]parser.Cell, rows)
		for row := 0; row < rows; row++ {
			column[row] = grid[row][col]
		}
		snapshot[col] = column
	}
	return snapshot
}

// lowestChanged compares the grid against the last snapshot and returns, per
// column, an exclusive upper bound on the rows eligible for synthetic
// generation: the index just below the lowest changed row. Scanning runs
// from the bottom up so rows that were already stable when the content
// settled are never re-animated. A column with no change, and every column
// on the first run (no snapshot yet), yields 0: nothing eligible.
func lowestChanged(grid [][]parser.Cell, snapshot [][]parser.Cell) []int {
	cols, rows := gridSize(grid)
	cutoffs := make([]int, cols)
	if len(snapshot) == 0 {
		return cutoffs
	}
	for col := 0; col < cols; col++ {
		if col >= len(snapshot) {
			// Wider than the baseline: treat the new columns as unchanged.
			continue
		}
		column := snapshot[col]
		limit := rows
		if len(column) < limit {
			limit = len(column)
		}
		for row := limit - 1; row >= 0; row-- {
			if grid[row][col].Rune != column[row].Rune {
				cutoffs[col] = row + 1
				break
			}
		}
	}
	return cutoffs
}
