// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rain/state.go
// Summary: Overlay state: tick counters, change-detection snapshot and the
// per-column trails of tagged entries.

// Package rain implements the falling-trail overlay engine. A background
// animator periodically locks the shared terminal grid, detects changes made
// by the real content producer, reverts its own synthetic writes when they
// would shadow real output, and steps randomized per-column character trails
// downward. Everything the overlay writes is transient: the restore pass
// guarantees the grid converges back to externally produced content.
package rain

import (
	"time"

	"github.com/framegrace/rainterm/term/parser"
)

// Provenance tags a trail entry as genuine grid content or as a character
// the overlay invented.
type Provenance uint8

const (
	Real Provenance = iota
	Synthetic
)

// Entry is one element of a column trail.
type Entry struct {
	Cell parser.Cell
	Prov Provenance
}

// Trail is a column's animation script. It is consumed from within: the
// stepper removes synthetic entries one per tick, and the last rows(height)
// entries form the visible window mirrored into the grid.
type Trail []Entry

// State is the process-lifetime overlay state. It is owned exclusively by
// the animator goroutine and only ever touched under the grid lock.
type State struct {
	tick       uint64
	lastChange uint64

	// snapshot is the change-detection baseline, column-major
	// (snapshot[col][row]). Replaced wholesale, never patched.
	snapshot [][]parser.Cell

	// trails holds one entry per grid column, or is empty.
	trails []Trail

	// settled marks that the trails drained and a rest snapshot was taken.
	settled bool
}

// NewState returns an empty overlay state.
func NewState() *State {
	return &State{}
}

// Config holds the tunables of the rain effect.
type Config struct {
	// TickInterval is the animator period.
	TickInterval time.Duration
	// Cooldown is the number of ticks after a detected external change
	// before new trails may be generated.
	Cooldown uint64
	// BurstMin/BurstMax bound the synthetic character count appended after
	// each non-blank cell.
	BurstMin, BurstMax int
	// GapMin/GapMax bound the blank run separating bursts.
	GapMin, GapMax int
	// BoldChance is the per-character probability of the bold flag.
	BoldChance float64
	// Color is the base trail color; entries fade toward it by position.
	Color parser.Color
}

// DefaultConfig mirrors the classic look: 40ms ticks, green ramp.
func DefaultConfig() Config {
	return Config{
		TickInterval: 40 * time.Millisecond,
		Cooldown:     4,
		BurstMin:     2,
		BurstMax:     9,
		GapMin:       2,
		GapMax:       7,
		BoldChance:   0.2,
		Color:        parser.Color{Mode: parser.ColorModeRGB, G: 255},
	}
}

// gridSize returns (cols, rows) for a row-major grid.
func gridSize(grid [][]parser.Cell) (int, int) {
	rows := len(grid)
	if rows == 0 {
		return 0, 0
	}
	return len(grid[0]), rows
}

// isBlank reports whether a rune renders as empty space.
func isBlank(r rune) bool {
	return r == ' ' || r == 0
}
