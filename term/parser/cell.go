// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/cell.go
// Summary: Cell, color and attribute types shared by the virtual terminal and the rain overlay.

package parser

// Attribute holds the style flags of a cell.
type Attribute uint16

const (
	AttrBold Attribute = 1 << iota
	AttrUnderline
	AttrReverse
)

// ColorMode defines how the Value/R/G/B fields of a Color are interpreted.
type ColorMode int

const (
	ColorModeDefault  ColorMode = iota // terminal default
	ColorModeStandard                  // the 16 basic ANSI colors
	ColorMode256                       // 256-color palette
	ColorModeRGB                       // 24-bit true color
)

// Color represents a terminal color in one of several modes.
type Color struct {
	Mode    ColorMode
	Value   uint8 // palette index for Standard and 256 modes
	R, G, B uint8 // components for RGB mode
}

// Cell is a single character cell of the grid. It is a plain value: the
// overlay engine copies cells wholesale and compares them by rune identity.
type Cell struct {
	Rune rune
	FG   Color
	BG   Color
	Attr Attribute
}

var (
	DefaultFG = Color{Mode: ColorModeDefault}
	DefaultBG = Color{Mode: ColorModeDefault}
)

// Blank returns an empty cell carrying the given colors.
func Blank(fg, bg Color) Cell {
	return Cell{Rune: ' ', FG: fg, BG: bg}
}
