// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package rain

import (
	"math/rand"
	"testing"

	"github.com/framegrace/rainterm/term/parser"
)

// testGrid builds a row-major grid from equal-length strings.
func testGrid(lines ...string) [][]parser.Cell {
	grid := make([][]parser.Cell, len(lines))
	for r, line := range lines {
		runes := []rune(line)
		row := make([]parser.Cell, len(runes))
		for c, ch := range runes {
			row[c] = parser.Cell{Rune: ch, FG: parser.DefaultFG, BG: parser.DefaultBG}
		}
		grid[r] = row
	}
	return grid
}

func gridLines(grid [][]parser.Cell) []string {
	lines := make([]string, len(grid))
	for r, row := range grid {
		runes := make([]rune, len(row))
		for c, cell := range row {
			runes[c] = cell.Rune
		}
		lines[r] = string(runes)
	}
	return lines
}

func requireLines(t *testing.T, grid [][]parser.Cell, want ...string) {
	t.Helper()
	got := gridLines(grid)
	if len(got) != len(want) {
		t.Fatalf("grid has %d rows, want %d", len(got), len(want))
	}
	for r := range want {
		if got[r] != want[r] {
			t.Fatalf("row %d: got %q, want %q", r, got[r], want[r])
		}
	}
}

func syntheticCount(trail Trail) int {
	n := 0
	for _, e := range trail {
		if e.Prov == Synthetic {
			n++
		}
	}
	return n
}

func TestCaptureSnapshotColumnMajor(t *testing.T) {
	grid := testGrid("ab", "cd", "ef")
	snap := captureSnapshot(grid)

	if len(snap) != 2 {
		t.Fatalf("snapshot has %d columns, want 2", len(snap))
	}
	if got := string([]rune{snap[0][0].Rune, snap[0][1].Rune, snap[0][2].Rune}); got != "ace" {
		t.Fatalf("column 0 = %q, want %q", got, "ace")
	}
	if got := string([]rune{snap[1][0].Rune, snap[1][1].Rune, snap[1][2].Rune}); got != "bdf" {
		t.Fatalf("column 1 = %q, want %q", got, "bdf")
	}
}

func TestLowestChangedWithoutBaseline(t *testing.T) {
	grid := testGrid("ab", "cd")
	cutoffs := lowestChanged(grid, nil)
	for col, c := range cutoffs {
		if c != 0 {
			t.Fatalf("column %d cutoff = %d without a baseline, want 0", col, c)
		}
	}
}

func TestLowestChangedPerColumn(t *testing.T) {
	grid := testGrid("ab", "cd", "ef", "gh")
	snap := captureSnapshot(grid)

	// Column 0: changes at rows 0 and 2; the bottom-up scan must stop at
	// row 2, yielding an exclusive bound of 3.
	grid[0][0].Rune = 'x'
	grid[2][0].Rune = 'y'

	cutoffs := lowestChanged(grid, snap)
	if cutoffs[0] != 3 {
		t.Fatalf("column 0 cutoff = %d, want 3", cutoffs[0])
	}
	if cutoffs[1] != 0 {
		t.Fatalf("column 1 cutoff = %d for an unchanged column, want 0", cutoffs[1])
	}
}

func TestGenerateRealOnlyBelowCutoff(t *testing.T) {
	grid := testGrid("ab", "cd")
	rng := rand.New(rand.NewSource(7))
	trails := generate(grid, []int{0, 0}, rng, DefaultConfig())

	if len(trails) != 2 {
		t.Fatalf("got %d trails, want 2", len(trails))
	}
	for col, trail := range trails {
		if len(trail) != 2 {
			t.Fatalf("column %d trail has %d entries, want 2", col, len(trail))
		}
		for row, e := range trail {
			if e.Prov != Real {
				t.Fatalf("column %d row %d tagged synthetic with cutoff 0", col, row)
			}
			if e.Cell.Rune != grid[row][col].Rune {
				t.Fatalf("column %d row %d carries %q, want %q", col, row, e.Cell.Rune, grid[row][col].Rune)
			}
		}
	}
}

func TestGenerateBurstAndGapBounds(t *testing.T) {
	grid := testGrid("a", " ", " ")
	cfg := DefaultConfig()
	cfg.BoldChance = 1.0
	rng := rand.New(rand.NewSource(42))

	trails := generate(grid, []int{3}, rng, cfg)
	trail := trails[0]

	if trail[0].Prov != Real || trail[0].Cell.Rune != 'a' {
		t.Fatalf("first entry = %+v, want real 'a'", trail[0])
	}

	synths := syntheticCount(trail)
	lo := cfg.BurstMin + cfg.GapMin
	hi := cfg.BurstMax + cfg.GapMax
	if synths < lo || synths > hi {
		t.Fatalf("synthetic count = %d, want within [%d, %d]", synths, lo, hi)
	}
	if len(trail) != 3+synths {
		t.Fatalf("trail length = %d, want %d real + %d synthetic", len(trail), 3, synths)
	}

	for i, e := range trail {
		if e.Prov != Synthetic {
			continue
		}
		if isBlank(e.Cell.Rune) {
			continue // gap filler
		}
		if e.Cell.Rune < synthRuneLo || e.Cell.Rune > synthRuneHi {
			t.Fatalf("entry %d rune %q outside printable burst range", i, e.Cell.Rune)
		}
		if e.Cell.Attr&parser.AttrBold == 0 {
			t.Fatalf("entry %d not bold with bold chance 1.0", i)
		}
	}
}

func TestGenerateSkipsBlankCells(t *testing.T) {
	grid := testGrid(" ", " ")
	rng := rand.New(rand.NewSource(1))
	trails := generate(grid, []int{2}, rng, DefaultConfig())

	if n := syntheticCount(trails[0]); n != 0 {
		t.Fatalf("blank column produced %d synthetic entries, want 0", n)
	}
}

func TestRampColorFades(t *testing.T) {
	base := parser.Color{Mode: parser.ColorModeRGB, G: 255}

	first := rampColor(base, 9, 0)
	last := rampColor(base, 9, 8)
	if first.G <= last.G {
		t.Fatalf("ramp does not fade: head G=%d, tail G=%d", first.G, last.G)
	}
	if last.G != 160 {
		t.Fatalf("tail G = %d, want 160", last.G)
	}

	clamped := rampColor(base, 12, 0)
	if clamped.G != 255 {
		t.Fatalf("clamped G = %d, want 255", clamped.G)
	}

	std := parser.Color{Mode: parser.ColorModeStandard, Value: 2}
	if got := rampColor(std, 5, 0); got != std {
		t.Fatalf("non-RGB base was altered: %+v", got)
	}
}

func TestStepRemovesBottomMostSynthetic(t *testing.T) {
	real := func(r rune) Entry { return Entry{Cell: parser.Cell{Rune: r}, Prov: Real} }
	synth := func(r rune) Entry { return Entry{Cell: parser.Cell{Rune: r}, Prov: Synthetic} }

	trails := []Trail{{real('a'), synth('X'), synth('Y'), real('b')}}

	if !step(trails) {
		t.Fatal("expected progress on first step")
	}
	if got := trails[0]; len(got) != 3 || got[1].Cell.Rune != 'X' || got[2].Cell.Rune != 'b' {
		t.Fatalf("after first step trail = %+v, want [a X b]", got)
	}
	if !step(trails) {
		t.Fatal("expected progress on second step")
	}
	if step(trails) {
		t.Fatal("all-real trail must not report progress")
	}
	if got := trails[0]; len(got) != 2 || got[0].Cell.Rune != 'a' || got[1].Cell.Rune != 'b' {
		t.Fatalf("drained trail = %+v, want [a b]", got)
	}
}

func TestStepStopsAtColumnTop(t *testing.T) {
	trails := []Trail{{
		{Cell: parser.Cell{Rune: '#'}, Prov: Synthetic},
		{Cell: parser.Cell{Rune: 'a'}, Prov: Real},
	}}
	if step(trails) {
		t.Fatal("a lone synthetic at the column top must not be removed")
	}
	if len(trails[0]) != 2 {
		t.Fatalf("trail shrank to %d entries", len(trails[0]))
	}
}

func TestMirrorBottomAligned(t *testing.T) {
	entry := func(r rune, p Provenance) Entry {
		return Entry{Cell: parser.Cell{Rune: r}, Prov: p}
	}

	grid := testGrid("...", "...", "...")
	// Column 0: longer than the grid; only the last 3 entries show.
	// Column 1: shorter; it fills the bottom rows only.
	trails := []Trail{
		{entry('1', Real), entry('2', Synthetic), entry('3', Real), entry('4', Synthetic), entry('5', Real)},
		{entry('x', Real), entry('y', Real)},
		{entry('p', Real), entry('q', Real), entry('r', Real)},
	}

	mirror(grid, trails)
	requireLines(t, grid,
		"3.p",
		"4xq",
		"5yr",
	)
}

func TestChangedComparesVisibleWindow(t *testing.T) {
	grid := testGrid("ab", "cd")
	trails := generate(grid, []int{0, 0}, rand.New(rand.NewSource(3)), DefaultConfig())

	if changed(grid, trails) {
		t.Fatal("grid equal to the mirrored window reported as changed")
	}
	grid[1][0].Rune = 'Z'
	if !changed(grid, trails) {
		t.Fatal("external write not detected")
	}
}

func TestResized(t *testing.T) {
	grid := testGrid("ab", "cd")
	trails := generate(grid, []int{0, 0}, rand.New(rand.NewSource(3)), DefaultConfig())

	if resized(trails, 2, 2) {
		t.Fatal("matching shape reported as resized")
	}
	if !resized(trails, 3, 2) {
		t.Fatal("column count mismatch not detected")
	}
	if !resized(trails, 2, 5) {
		t.Fatal("row count mismatch not detected")
	}
}

func TestRestoreRevertsOverlayWritesOnly(t *testing.T) {
	// Baseline content is a/b/c in one column. The trail window currently
	// mirrors b/%/c (the overlay displaced 'b' upward and invented '%').
	snapshot := [][]parser.Cell{{
		{Rune: 'a'}, {Rune: 'b'}, {Rune: 'c'},
	}}
	trails := []Trail{{
		{Cell: parser.Cell{Rune: 'a'}, Prov: Real},
		{Cell: parser.Cell{Rune: '#'}, Prov: Synthetic},
		{Cell: parser.Cell{Rune: 'b'}, Prov: Real},
		{Cell: parser.Cell{Rune: '%'}, Prov: Synthetic},
		{Cell: parser.Cell{Rune: 'c'}, Prov: Real},
	}}

	grid := testGrid("b", "%", "c")
	restore(grid, snapshot, trails)
	requireLines(t, grid, "a", "b", "c")

	// An external write lands where the overlay had mirrored '%': it must
	// survive the restore verbatim.
	grid = testGrid("b", "Z", "c")
	restore(grid, snapshot, trails)
	requireLines(t, grid, "a", "Z", "c")
}
