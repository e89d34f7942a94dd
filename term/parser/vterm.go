// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/vterm.go
// Summary: Virtual terminal grid state: cursor, scroll region, SGR and CSI dispatch.
// Usage: Fed by Parser; the grid it owns is the surface the rain overlay animates over.

package parser

import (
	"fmt"
	"log"
)

// VTerm holds the state of a virtual terminal: a fixed-extent grid of
// cells plus cursor and attribute state.
type VTerm struct {
	width, height              int
	cursorX, cursorY           int
	savedCursorX, savedCursorY int
	grid                       [][]Cell
	currentFG, currentBG       Color
	currentAttr                Attribute
	tabStops                   map[int]bool
	cursorVisible              bool
	wrapNext                   bool
	autoWrap                   bool
	marginTop, marginBottom    int

	// TitleChanged is invoked on OSC 0/2 title updates.
	TitleChanged func(string)
	// WriteToPty sends report responses (e.g. cursor position) back to the shell.
	WriteToPty func([]byte)
	// LineScrolled is invoked with the content of each line that scrolls
	// off the top of the region; the history index hangs off this.
	LineScrolled func([]Cell)
}

// Option configures a VTerm at construction time.
type Option func(*VTerm)

func WithTitleHandler(fn func(string)) Option {
	return func(v *VTerm) { v.TitleChanged = fn }
}

func WithPtyWriter(fn func([]byte)) Option {
	return func(v *VTerm) { v.WriteToPty = fn }
}

func WithScrollHandler(fn func([]Cell)) Option {
	return func(v *VTerm) { v.LineScrolled = fn }
}

// NewVTerm creates a virtual terminal of the given extent.
func NewVTerm(width, height int, opts ...Option) *VTerm {
	v := &VTerm{
		width:         width,
		height:        height,
		grid:          make([][]Cell, height),
		currentFG:     DefaultFG,
		currentBG:     DefaultBG,
		tabStops:      make(map[int]bool),
		cursorVisible: true,
		autoWrap:      true,
		marginTop:     0,
		marginBottom:  height - 1,
	}
	for _, opt := range opts {
		opt(v)
	}
	for i := range v.grid {
		v.grid[i] = make([]Cell, width)
	}
	v.ClearScreen()
	for i := 0; i < width; i += 8 {
		v.tabStops[i] = true
	}
	return v
}

// Grid exposes the live cell grid. Callers that share the VTerm across
// goroutines must hold the owning lock while touching it.
func (v *VTerm) Grid() [][]Cell { return v.grid }

// Size returns the grid extent as (cols, rows).
func (v *VTerm) Size() (int, int) { return v.width, v.height }

func (v *VTerm) Cursor() (int, int)            { return v.cursorX, v.cursorY }
func (v *VTerm) CursorVisible() bool           { return v.cursorVisible }
func (v *VTerm) SetCursorVisible(visible bool) { v.cursorVisible = visible }

// Resize grows or shrinks the grid, preserving overlapping content.
func (v *VTerm) Resize(width, height int) {
	if width == v.width && height == v.height {
		return
	}
	newGrid := make([][]Cell, height)
	for y := range newGrid {
		newGrid[y] = make([]Cell, width)
		for x := range newGrid[y] {
			newGrid[y][x] = Blank(DefaultFG, DefaultBG)
		}
	}
	rows := min(v.height, height)
	cols := min(v.width, width)
	for y := 0; y < rows; y++ {
		copy(newGrid[y][:cols], v.grid[y][:cols])
	}
	v.grid = newGrid
	v.width = width
	v.height = height
	v.marginTop = 0
	v.marginBottom = height - 1
	v.SetCursorPos(v.cursorY, v.cursorX)
}

func (v *VTerm) placeChar(r rune) {
	if v.wrapNext {
		v.cursorX = 0
		v.LineFeed()
		v.wrapNext = false
	}
	if v.cursorY >= 0 && v.cursorY < v.height && v.cursorX >= 0 && v.cursorX < v.width {
		v.grid[v.cursorY][v.cursorX] = Cell{
			Rune: r,
			FG:   v.currentFG,
			BG:   v.currentBG,
			Attr: v.currentAttr,
		}
	}
	if v.autoWrap && v.cursorX == v.width-1 {
		v.wrapNext = true
	} else if v.cursorX < v.width-1 {
		v.cursorX++
	}
}

func (v *VTerm) scrollUp() {
	if v.LineScrolled != nil && v.marginTop == 0 {
		line := make([]Cell, v.width)
		copy(line, v.grid[0])
		v.LineScrolled(line)
	}
	copy(v.grid[v.marginTop:], v.grid[v.marginTop+1:v.marginBottom+1])
	fresh := make([]Cell, v.width)
	for i := range fresh {
		fresh[i] = Blank(v.currentFG, v.currentBG)
	}
	v.grid[v.marginBottom] = fresh
}

func (v *VTerm) scrollDown(n int) {
	for i := 0; i < n; i++ {
		copy(v.grid[v.marginTop+1:v.marginBottom+1], v.grid[v.marginTop:v.marginBottom])
		fresh := make([]Cell, v.width)
		for j := range fresh {
			fresh[j] = Blank(v.currentFG, v.currentBG)
		}
		v.grid[v.marginTop] = fresh
	}
}

func (v *VTerm) LineFeed() {
	if v.cursorY == v.marginBottom {
		v.scrollUp()
	} else if v.cursorY < v.height-1 {
		v.cursorY++
	}
}

func (v *VTerm) CarriageReturn() {
	v.wrapNext = false
	v.cursorX = 0
}

func (v *VTerm) Backspace() {
	v.wrapNext = false
	if v.cursorX > 0 {
		v.cursorX--
	}
}

func (v *VTerm) Tab() {
	v.wrapNext = false
	for x := v.cursorX + 1; x < v.width; x++ {
		if v.tabStops[x] {
			v.cursorX = x
			return
		}
	}
	v.cursorX = v.width - 1
}

// SetMargins defines the active scrolling region (1-based ANSI coordinates).
func (v *VTerm) SetMargins(top, bottom int) {
	if top == 0 {
		top = 1
	}
	if bottom == 0 || bottom > v.height {
		bottom = v.height
	}
	if top < 1 {
		top = 1
	}
	if top >= bottom {
		return
	}
	v.marginTop = top - 1
	v.marginBottom = bottom - 1
	v.SetCursorPos(0, 0)
}

func (v *VTerm) SetCursorPos(row, col int) {
	v.wrapNext = false
	v.cursorY = clamp(row, 0, v.height-1)
	v.cursorX = clamp(col, 0, v.width-1)
}

func (v *VTerm) SetCursorColumn(col int) { v.cursorX = clamp(col, 0, v.width-1) }
func (v *VTerm) SetCursorRow(row int)    { v.cursorY = clamp(row, 0, v.height-1) }

func (v *VTerm) MoveCursorUp(n int) {
	v.wrapNext = false
	v.cursorY -= n
	if v.cursorY < v.marginTop {
		v.cursorY = v.marginTop
	}
}

func (v *VTerm) MoveCursorDown(n int) {
	v.wrapNext = false
	v.cursorY += n
	if v.cursorY > v.marginBottom {
		v.cursorY = v.marginBottom
	}
}

func (v *VTerm) MoveCursorForward(n int)  { v.cursorX = clamp(v.cursorX+n, 0, v.width-1) }
func (v *VTerm) MoveCursorBackward(n int) { v.cursorX = clamp(v.cursorX-n, 0, v.width-1) }

func (v *VTerm) SaveCursor()    { v.savedCursorX, v.savedCursorY = v.cursorX, v.cursorY }
func (v *VTerm) RestoreCursor() { v.cursorX, v.cursorY = v.savedCursorX, v.savedCursorY }

// EraseCharacters overwrites n characters from the cursor with blanks.
func (v *VTerm) EraseCharacters(n int) {
	for i := 0; i < n && v.cursorX+i < v.width; i++ {
		v.grid[v.cursorY][v.cursorX+i] = Blank(v.currentFG, v.currentBG)
	}
}

// DeleteCharacters removes n characters at the cursor, shifting the line left.
func (v *VTerm) DeleteCharacters(n int) {
	if n > v.width-v.cursorX {
		n = v.width - v.cursorX
	}
	line := v.grid[v.cursorY]
	copy(line[v.cursorX:], line[v.cursorX+n:])
	for i := v.width - n; i < v.width; i++ {
		line[i] = Blank(v.currentFG, v.currentBG)
	}
}

func (v *VTerm) ClearScreen() {
	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			v.grid[y][x] = Blank(DefaultFG, DefaultBG)
		}
	}
}

func (v *VTerm) ClearLine(mode int) {
	start, end := 0, 0
	switch mode {
	case 0:
		start, end = v.cursorX, v.width-1
	case 1:
		start, end = 0, v.cursorX
	case 2:
		start, end = 0, v.width-1
	}
	for x := start; x <= end && x < v.width; x++ {
		v.grid[v.cursorY][x] = Blank(v.currentFG, v.currentBG)
	}
}

func (v *VTerm) ClearToEndOfScreen() {
	v.ClearLine(0)
	for y := v.cursorY + 1; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			v.grid[y][x] = Blank(v.currentFG, v.currentBG)
		}
	}
}

func (v *VTerm) ClearScreenMode(mode int) {
	switch mode {
	case 0:
		v.ClearToEndOfScreen()
	case 2, 3:
		v.ClearScreen()
		v.SetCursorPos(0, 0)
	}
}

func (v *VTerm) SetAttribute(a Attribute) { v.currentAttr |= a }

func (v *VTerm) ResetAttributes() {
	v.currentFG = DefaultFG
	v.currentBG = DefaultBG
	v.currentAttr = 0
}

func (v *VTerm) ClearAllTabStops() { v.tabStops = make(map[int]bool) }

func (v *VTerm) SetTitle(title string) {
	if v.TitleChanged != nil {
		v.TitleChanged(title)
	}
}

// ProcessCSI dispatches a complete CSI sequence.
func (v *VTerm) ProcessCSI(command byte, params []int, private bool) {
	if private {
		v.processPrivateCSI(command, params)
		return
	}

	param := func(i, def int) int {
		if i < len(params) && params[i] != 0 {
			return params[i]
		}
		return def
	}

	switch command {
	case 'A':
		v.MoveCursorUp(param(0, 1))
	case 'B':
		v.MoveCursorDown(param(0, 1))
	case 'C':
		v.MoveCursorForward(param(0, 1))
	case 'D':
		v.MoveCursorBackward(param(0, 1))
	case 'G':
		v.SetCursorColumn(param(0, 1) - 1)
	case 'H', 'f':
		v.SetCursorPos(param(0, 1)-1, param(1, 1)-1)
	case 'd':
		v.SetCursorRow(param(0, 1) - 1)
	case 'r':
		v.SetMargins(param(0, 1), param(1, v.height))
	case 'P':
		v.DeleteCharacters(param(0, 1))
	case 'T':
		v.scrollDown(param(0, 1))
	case 'X':
		v.EraseCharacters(param(0, 1))
	case 'J':
		v.ClearScreenMode(param(0, 0))
	case 'K':
		v.ClearLine(param(0, 0))
	case 's':
		v.SaveCursor()
	case 'u':
		v.RestoreCursor()
	case 'm':
		v.processSGR(params)
	case 'n':
		if param(0, 0) == 6 && v.WriteToPty != nil {
			v.WriteToPty([]byte(fmt.Sprintf("\x1b[%d;%dR", v.cursorY+1, v.cursorX+1)))
		}
	case 'g':
		if param(0, 0) == 3 {
			v.ClearAllTabStops()
		}
	case 'c':
		log.Println("Parser: Ignoring device attribute request (0c)")
	}
}

func (v *VTerm) processSGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			v.ResetAttributes()
		case p == 1:
			v.SetAttribute(AttrBold)
		case p == 4:
			v.SetAttribute(AttrUnderline)
		case p == 7:
			v.SetAttribute(AttrReverse)
		case p == 22:
			v.currentAttr &^= AttrBold
		case p == 24:
			v.currentAttr &^= AttrUnderline
		case p == 27:
			v.currentAttr &^= AttrReverse
		case p >= 30 && p <= 37:
			v.currentFG = Color{Mode: ColorModeStandard, Value: uint8(p - 30)}
		case p == 39:
			v.currentFG = DefaultFG
		case p >= 40 && p <= 47:
			v.currentBG = Color{Mode: ColorModeStandard, Value: uint8(p - 40)}
		case p == 49:
			v.currentBG = DefaultBG
		case p >= 90 && p <= 97:
			v.currentFG = Color{Mode: ColorModeStandard, Value: uint8(p - 90 + 8)}
		case p >= 100 && p <= 107:
			v.currentBG = Color{Mode: ColorModeStandard, Value: uint8(p - 100 + 8)}
		case p == 38:
			if c, skip, ok := extendedColor(params[i+1:]); ok {
				v.currentFG = c
				i += skip
			}
		case p == 48:
			if c, skip, ok := extendedColor(params[i+1:]); ok {
				v.currentBG = c
				i += skip
			}
		}
	}
}

// extendedColor decodes the tail of a 38/48 SGR sequence.
func extendedColor(rest []int) (Color, int, bool) {
	if len(rest) >= 2 && rest[0] == 5 {
		return Color{Mode: ColorMode256, Value: uint8(rest[1])}, 2, true
	}
	if len(rest) >= 4 && rest[0] == 2 {
		return Color{
			Mode: ColorModeRGB,
			R:    uint8(rest[1]),
			G:    uint8(rest[2]),
			B:    uint8(rest[3]),
		}, 4, true
	}
	return Color{}, 0, false
}

func (v *VTerm) processPrivateCSI(command byte, params []int) {
	if len(params) == 0 {
		return
	}
	set := command == 'h'
	switch params[0] {
	case 7:
		v.autoWrap = set
	case 25:
		v.SetCursorVisible(set)
	case 1049, 2004, 1:
		// Alt screen, bracketed paste and application cursor keys are not
		// supported by the single-buffer grid; harmless to ignore.
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
