// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rain/step.go
// Summary: Advances the animation one tick: drains one synthetic entry per
// column and mirrors the visible windows back into the grid.

package rain

import "github.com/framegrace/rainterm/term/parser"

// step removes at most one synthetic entry from each trail: scanning from
// the bottom, the first synthetic found is deleted, shifting everything
// above it one row down on the next mirror. Progress means an entry was
// actually removed somewhere; a trail whose only synthetic sits at index 0
// cannot shrink further (removing it would leave fewer entries than real
// rows) and no longer counts as progressing.
func step(trails []Trail) bool {
	progress := false
	for c := range trails {
		trail := trails[c]
		i := len(trail) - 1
		for i > 0 && trail[i].Prov == Real {
			i--
		}
		if i > 0 && trail[i].Prov == Synthetic {
			trails[c] = append(trail[:i], trail[i+1:]...)
			progress = true
		}
	}
	return progress
}

// mirror writes each trail's visible window (its last rows entries) into
// the grid. A trail shorter than the grid height fills the bottom rows only;
// the window arithmetic saturates rather than indexing out of range.
func mirror(grid [][]parser.Cell, trails []Trail) {
	cols, rows := gridSize(grid)
	for col := 0; col < cols && col < len(trails); col++ {
		trail := trails[col]
		start := len(trail) - rows
		if start < 0 {
			start = 0
		}
		offset := rows - (len(trail) - start)
		for i := start; i < len(trail); i++ {
			row := offset + (i - start)
			if grid[row][col].Rune != trail[i].Cell.Rune {
				grid[row][col] = trail[i].Cell
			}
		}
	}
}
