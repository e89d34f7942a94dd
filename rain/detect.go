// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rain/detect.go
// Summary: Detects external writes and resizes while trails are in flight.

package rain

import "github.com/framegrace/rainterm/term/parser"

// resized reports whether the grid shape no longer matches the active
// trail set: a different column count, or a different count of real
// entries in a column (every trail carries exactly one real entry per row).
func resized(trails []Trail, cols, rows int) bool {
	if len(trails) != cols {
		return true
	}
	if len(trails) == 0 {
		return false
	}
	real := 0
	for _, e := range trails[0] {
		if e.Prov == Real {
			real++
		}
	}
	return real != rows
}

// changed reports whether any grid cell differs from what the overlay last
// mirrored there: the visible window (bottom rows entries) of each trail.
// The stepper keeps the grid equal to the window, so any divergence means
// the external writer touched the grid since the previous tick.
func changed(grid [][]parser.Cell, trails []Trail) bool {
	cols, rows := gridSize(grid)
	for col := 0; col < cols && col < len(trails); col++ {
		trail := trails[col]
		start := len(trail) - rows
		if start < 0 {
			start = 0
		}
		// A trail shorter than the grid occupies the bottom rows only.
		offset := rows - (len(trail) - start)
		for i := start; i < len(trail); i++ {
			row := offset + (i - start)
			if grid[row][col].Rune != trail[i].Cell.Rune {
				return true
			}
		}
	}
	return false
}
