// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/rainterm/term/parser"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func lineText(cells []parser.Cell) string {
	var sb strings.Builder
	for _, c := range cells {
		sb.WriteRune(c.Rune)
	}
	return sb.String()
}

func TestColorizeSplitsLinesAndExpandsTabs(t *testing.T) {
	lines := colorize("a\tb\ncd", "", styles.Fallback)

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if got := lineText(lines[0]); got != "a        b" {
		t.Fatalf("line 0 = %q, want tab expanded to 8 blanks", got)
	}
	if got := lineText(lines[1]); got != "cd" {
		t.Fatalf("line 1 = %q, want %q", got, "cd")
	}
}

func TestColorizeWideRunesGetSpillCell(t *testing.T) {
	lines := colorize("世x", "", styles.Fallback)

	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if len(lines[0]) != 3 {
		t.Fatalf("got %d cells, want wide rune + spill + x", len(lines[0]))
	}
	if lines[0][1].Rune != ' ' {
		t.Fatalf("spill cell = %q, want blank", lines[0][1].Rune)
	}
}

func TestColorizeAppliesTokenColors(t *testing.T) {
	style := styles.Get("monokai")
	lines := colorize("package main\n", "Go", style)

	if len(lines) == 0 {
		t.Fatal("no lines produced")
	}
	// The "package" keyword must pick up a non-default foreground.
	cell := lines[0][0]
	if cell.FG.Mode != parser.ColorModeRGB {
		t.Fatalf("keyword FG = %+v, want an RGB color from the style", cell.FG)
	}
}

func TestEntryColorDefaultsWhenUnset(t *testing.T) {
	if got := entryColor(chroma.StyleEntry{}); got != parser.DefaultFG {
		t.Fatalf("unset entry mapped to %+v", got)
	}
	entry := chroma.StyleEntry{Colour: chroma.NewColour(10, 20, 30)}
	want := parser.Color{Mode: parser.ColorModeRGB, R: 10, G: 20, B: 30}
	if got := entryColor(entry); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestViewRunAndScroll(t *testing.T) {
	path := writeFile(t, "notes.txt", "alpha\nbeta\ngamma\ndelta\n")

	v := New(path, "")
	v.SetRefreshNotifier(make(chan bool, 4))
	if err := v.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	v.Resize(10, 2)

	grid, release := v.Acquire()
	first := lineText(grid[0])
	release()
	if !strings.HasPrefix(first, "alpha") {
		t.Fatalf("row 0 = %q, want it to start with alpha", first)
	}

	v.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	grid, release = v.Acquire()
	first = lineText(grid[0])
	release()
	if !strings.HasPrefix(first, "beta") {
		t.Fatalf("row 0 after scroll = %q, want it to start with beta", first)
	}

	v.HandleKey(tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone))
	grid, release = v.Acquire()
	first = lineText(grid[0])
	release()
	if !strings.HasPrefix(first, "alpha") {
		t.Fatalf("row 0 after home = %q, want it to start with alpha", first)
	}
}

func TestViewRunMissingFile(t *testing.T) {
	v := New(filepath.Join(t.TempDir(), "absent.txt"), "")
	if err := v.Run(); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestViewTitle(t *testing.T) {
	v := New("/some/dir/readme.md", "")
	if got := v.Title(); got != "readme.md" {
		t.Fatalf("title = %q, want readme.md", got)
	}
}
