// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rain/generate.go
// Summary: Builds the randomized per-column animation scripts.

package rain

import (
	"math/rand"

	"github.com/framegrace/rainterm/term/parser"
)

// Synthetic runes are drawn from '!'..'}' so every burst character is
// visibly non-blank.
const (
	synthRuneLo = 33
	synthRuneHi = 125
)

// generate builds one trail per column. Every grid cell contributes a Real
// entry, so the real content survives the whole animation. Non-blank cells
// above the column's cutoff additionally get a burst of random characters
// with a fading color ramp, followed by a blank gap; cells at or below the
// cutoff are presumed stable and stay Real-only.
func generate(grid [][]parser.Cell, cutoffs []int, rng *rand.Rand, cfg Config) []Trail {
	cols, rows := gridSize(grid)
	trails := make([]Trail, 0, cols)
	for col := 0; col < cols; col++ {
		trail := make(Trail, 0, rows)
		for row := 0; row < rows; row++ {
			cell := grid[row][col]
			trail = append(trail, Entry{Cell: cell, Prov: Real})

			if isBlank(cell.Rune) || col >= len(cutoffs) || row >= cutoffs[col] {
				continue
			}

			count := randBetween(rng, cfg.BurstMin, cfg.BurstMax)
			for i := 0; i < count; i++ {
				synth := parser.Cell{
					Rune: rune(synthRuneLo + rng.Intn(synthRuneHi-synthRuneLo+1)),
					FG:   rampColor(cfg.Color, count, i),
					BG:   cell.BG,
				}
				if rng.Float64() < cfg.BoldChance {
					synth.Attr |= parser.AttrBold
				}
				trail = append(trail, Entry{Cell: synth, Prov: Synthetic})
			}

			gap := randBetween(rng, cfg.GapMin, cfg.GapMax)
			for i := 0; i < gap; i++ {
				trail = append(trail, Entry{Cell: parser.Blank(cell.FG, cell.BG), Prov: Synthetic})
			}
		}
		trails = append(trails, trail)
	}
	return trails
}

// rampColor scales the base color so burst entries fade with distance from
// the real character: position 0 (right after it) is brightest.
func rampColor(base parser.Color, count, i int) parser.Color {
	brightness := 150 + (count-i)*10
	if brightness > 255 {
		brightness = 255
	}
	scale := func(ch uint8) uint8 {
		return uint8(int(ch) * brightness / 255)
	}
	if base.Mode != parser.ColorModeRGB {
		// Non-RGB bases cannot ramp; use them as-is.
		return base
	}
	return parser.Color{
		Mode: parser.ColorModeRGB,
		R:    scale(base.R),
		G:    scale(base.G),
		B:    scale(base.B),
	}
}

func randBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
