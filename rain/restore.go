// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rain/restore.go
// Summary: Undo engine: reverts overlay-authored cells to their snapshot
// values while preserving external writes verbatim.

package rain

import "github.com/framegrace/rainterm/term/parser"

// restore walks every cell covered by the active trails and reverts the
// overlay's synthetic contribution. A cell is reverted only when its current
// rune is exactly what the overlay last mirrored there AND that rune differs
// from the pre-overlay snapshot: the overlay, not the external writer, is
// responsible for it. Any cell the external writer changed fails the first
// test and is left untouched: the overlay must be transparent to real
// content.
func restore(grid [][]parser.Cell, snapshot [][]parser.Cell, trails []Trail) {
	if len(snapshot) == 0 {
		return
	}
	cols, rows := gridSize(grid)
	for col := 0; col < cols; col++ {
		if col >= len(trails) || col >= len(snapshot) {
			continue
		}
		trail := trails[col]
		start := len(trail) - rows
		if start < 0 {
			start = 0
		}
		offset := rows - (len(trail) - start)
		for i := start; i < len(trail); i++ {
			row := offset + (i - start)
			if row >= len(snapshot[col]) {
				continue
			}
			mirrored := trail[i].Cell.Rune
			current := grid[row][col].Rune
			original := snapshot[col][row]
			if current == mirrored && mirrored != original.Rune {
				grid[row][col] = original
			}
		}
	}
}
