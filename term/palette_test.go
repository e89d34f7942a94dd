// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package term

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/rainterm/term/parser"
)

func TestPaletteXterm256(t *testing.T) {
	p := NewDefaultPalette()

	cases := []struct {
		name  string
		color parser.Color
		want  tcell.Color
	}{
		{"ansi red", parser.Color{Mode: parser.ColorModeStandard, Value: 1}, tcell.NewRGBColor(128, 0, 0)},
		{"bright green", parser.Color{Mode: parser.ColorModeStandard, Value: 10}, tcell.NewRGBColor(0, 255, 0)},
		{"cube 196", parser.Color{Mode: parser.ColorMode256, Value: 196}, tcell.NewRGBColor(255, 0, 0)},
		{"cube 21", parser.Color{Mode: parser.ColorMode256, Value: 21}, tcell.NewRGBColor(0, 0, 255)},
		{"gray 232", parser.Color{Mode: parser.ColorMode256, Value: 232}, tcell.NewRGBColor(8, 8, 8)},
		{"gray 255", parser.Color{Mode: parser.ColorMode256, Value: 255}, tcell.NewRGBColor(238, 238, 238)},
		{"rgb", parser.Color{Mode: parser.ColorModeRGB, R: 1, G: 2, B: 3}, tcell.NewRGBColor(1, 2, 3)},
	}
	for _, tc := range cases {
		if got := p.color(tc.color); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPaletteStyleDefaults(t *testing.T) {
	p := NewDefaultPalette()

	cell := parser.Blank(parser.DefaultFG, parser.DefaultBG)
	cell.Attr = parser.AttrBold | parser.AttrReverse

	fg, bg, attrs := p.Style(cell).Decompose()
	if fg != tcell.NewRGBColor(229, 229, 229) {
		t.Fatalf("default fg = %v", fg)
	}
	if bg != tcell.NewRGBColor(0, 0, 0) {
		t.Fatalf("default bg = %v", bg)
	}
	if attrs&tcell.AttrBold == 0 || attrs&tcell.AttrReverse == 0 {
		t.Fatalf("attributes not mapped: %v", attrs)
	}
	if attrs&tcell.AttrUnderline != 0 {
		t.Fatalf("spurious underline: %v", attrs)
	}
}
