// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/palette.go
// Summary: xterm-256 palette and parser→tcell style mapping.

package term

import (
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/rainterm/term/parser"
)

// Palette maps parser colors to concrete RGB tcell colors. Indexes 0-255
// follow the standard xterm palette; 256 and 257 hold the default
// foreground and background.
type Palette [258]tcell.Color

const (
	paletteDefaultFG = 256
	paletteDefaultBG = 257
)

// NewDefaultPalette builds the standard xterm 256-color palette.
func NewDefaultPalette() Palette {
	var p Palette

	// The 16 basic ANSI colors.
	base := [16][3]int32{
		{0, 0, 0}, {128, 0, 0}, {0, 128, 0}, {128, 128, 0},
		{0, 0, 128}, {128, 0, 128}, {0, 128, 128}, {192, 192, 192},
		{128, 128, 128}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
		{0, 0, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
	}
	for i, c := range base {
		p[i] = tcell.NewRGBColor(c[0], c[1], c[2])
	}

	// 6x6x6 color cube (16-231).
	levels := [6]int32{0, 95, 135, 175, 215, 255}
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p[16+36*r+6*g+b] = tcell.NewRGBColor(levels[r], levels[g], levels[b])
			}
		}
	}

	// Grayscale ramp (232-255).
	for i := 0; i < 24; i++ {
		v := int32(8 + i*10)
		p[232+i] = tcell.NewRGBColor(v, v, v)
	}

	p[paletteDefaultFG] = tcell.NewRGBColor(229, 229, 229)
	p[paletteDefaultBG] = tcell.NewRGBColor(0, 0, 0)
	return p
}

// color resolves a parser color to a concrete tcell color.
func (p *Palette) color(c parser.Color) tcell.Color {
	switch c.Mode {
	case parser.ColorModeDefault:
		return p[paletteDefaultFG]
	case parser.ColorModeStandard, parser.ColorMode256:
		return p[c.Value]
	case parser.ColorModeRGB:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	default:
		return tcell.ColorDefault
	}
}

// Style converts a parser cell into a tcell style, resolving default
// background through the palette.
func (p *Palette) Style(cell parser.Cell) tcell.Style {
	fg := p.color(cell.FG)

	var bg tcell.Color
	if cell.BG.Mode == parser.ColorModeDefault {
		bg = p[paletteDefaultBG]
	} else {
		bg = p.color(cell.BG)
	}

	style := tcell.StyleDefault.Foreground(fg).Background(bg)
	style = style.Bold(cell.Attr&parser.AttrBold != 0)
	style = style.Underline(cell.Attr&parser.AttrUnderline != 0)
	style = style.Reverse(cell.Attr&parser.AttrReverse != 0)
	return style
}
