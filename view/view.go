// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: view/view.go
// Summary: Static file viewer app: detects the file's language, colorizes it
// with chroma and lays the result into a cell grid the rain overlay can
// animate over.

package view

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
	"github.com/go-enry/go-enry/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/rainterm/screen"
	"github.com/framegrace/rainterm/term/parser"
)

const defaultStyleName = "catppuccin-mocha"

// View renders a syntax-highlighted file into a fixed grid.
type View struct {
	path      string
	styleName string

	mu          sync.Mutex
	lines       [][]parser.Cell // colorized logical lines
	grid        [][]parser.Cell // visible window, rebuilt on resize/scroll
	width       int
	height      int
	offset      int // first visible line
	refreshChan chan<- bool
}

// New creates a viewer for the given file.
func New(path, styleName string) *View {
	return &View{
		path:      path,
		styleName: styleName,
		width:     80,
		height:    24,
	}
}

func (v *View) SetRefreshNotifier(refresh chan<- bool) {
	v.refreshChan = refresh
}

func (v *View) notifyRefresh() {
	if v.refreshChan != nil {
		select {
		case v.refreshChan <- true:
		default:
		}
	}
}

// Acquire implements rain.Surface over the visible window.
func (v *View) Acquire() ([][]parser.Cell, func()) {
	v.mu.Lock()
	return v.grid, v.mu.Unlock
}

// Run loads and colorizes the file.
func (v *View) Run() error {
	data, err := os.ReadFile(v.path)
	if err != nil {
		return fmt.Errorf("load %s: %w", v.path, err)
	}

	lang := enry.GetLanguage(filepath.Base(v.path), data)
	styleName := v.styleName
	if styleName == "" {
		styleName = defaultStyleName
	}
	style := styles.Get(styleName)

	lines := colorize(string(data), lang, style)

	v.mu.Lock()
	v.lines = lines
	v.rebuildLocked()
	v.mu.Unlock()
	v.notifyRefresh()
	return nil
}

// colorize tokenizes text and converts it to colored cell lines.
func colorize(text, lang string, style *chroma.Style) [][]parser.Cell {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(text)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	tokens, err := chroma.Tokenise(lexer, nil, text)
	if err != nil {
		tokens = []chroma.Token{{Type: chroma.Text, Value: text}}
	}

	var lines [][]parser.Cell
	current := []parser.Cell{}
	for _, token := range tokens {
		entry := style.Get(token.Type)
		for _, r := range token.Value {
			if r == '\n' {
				lines = append(lines, current)
				current = []parser.Cell{}
				continue
			}
			if r == '\t' {
				for i := 0; i < 8; i++ {
					current = append(current, parser.Blank(parser.DefaultFG, parser.DefaultBG))
				}
				continue
			}
			cell := parser.Cell{Rune: r, FG: entryColor(entry), BG: parser.DefaultBG}
			if entry.Bold == chroma.Yes {
				cell.Attr |= parser.AttrBold
			}
			if entry.Underline == chroma.Yes {
				cell.Attr |= parser.AttrUnderline
			}
			current = append(current, cell)
			// Wide runes occupy a second, blank cell.
			if runewidth.RuneWidth(r) == 2 {
				current = append(current, parser.Blank(cell.FG, cell.BG))
			}
		}
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines
}

// entryColor maps a chroma style entry to a parser color. Tokens without an
// explicit color keep the terminal default.
func entryColor(entry chroma.StyleEntry) parser.Color {
	if !entry.Colour.IsSet() {
		return parser.DefaultFG
	}
	return parser.Color{
		Mode: parser.ColorModeRGB,
		R:    entry.Colour.Red(),
		G:    entry.Colour.Green(),
		B:    entry.Colour.Blue(),
	}
}

// rebuildLocked lays the visible slice of lines into the grid. Callers hold
// v.mu.
func (v *View) rebuildLocked() {
	if v.offset > len(v.lines)-1 {
		v.offset = max(0, len(v.lines)-1)
	}
	grid := make([][]parser.Cell, v.height)
	for y := 0; y < v.height; y++ {
		row := make([]parser.Cell, v.width)
		for x := range row {
			row[x] = parser.Blank(parser.DefaultFG, parser.DefaultBG)
		}
		idx := v.offset + y
		if idx < len(v.lines) {
			copy(row, v.lines[idx][:min(len(v.lines[idx]), v.width)])
		}
		grid[y] = row
	}
	v.grid = grid
}

// Render converts the visible grid to styled screen cells.
func (v *View) Render() [][]screen.Cell {
	v.mu.Lock()
	defer v.mu.Unlock()

	buf := make([][]screen.Cell, len(v.grid))
	for y, row := range v.grid {
		line := make([]screen.Cell, len(row))
		for x, cell := range row {
			line[x] = screen.Cell{Ch: cell.Rune, Style: cellStyle(cell)}
		}
		buf[y] = line
	}
	return buf
}

func cellStyle(cell parser.Cell) tcell.Style {
	style := tcell.StyleDefault
	if cell.FG.Mode == parser.ColorModeRGB {
		style = style.Foreground(tcell.NewRGBColor(int32(cell.FG.R), int32(cell.FG.G), int32(cell.FG.B)))
	}
	style = style.Bold(cell.Attr&parser.AttrBold != 0)
	style = style.Underline(cell.Attr&parser.AttrUnderline != 0)
	return style
}

// HandleKey scrolls the window. Scrolling rewrites the grid, which the rain
// overlay picks up as an external change and reconciles.
func (v *View) HandleKey(ev *tcell.EventKey) {
	v.mu.Lock()
	switch ev.Key() {
	case tcell.KeyUp:
		v.offset = max(0, v.offset-1)
	case tcell.KeyDown:
		v.offset++
	case tcell.KeyPgUp:
		v.offset = max(0, v.offset-v.height)
	case tcell.KeyPgDn:
		v.offset += v.height
	case tcell.KeyHome:
		v.offset = 0
	default:
		v.mu.Unlock()
		return
	}
	v.rebuildLocked()
	v.mu.Unlock()
	v.notifyRefresh()
}

func (v *View) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	v.mu.Lock()
	v.width, v.height = cols, rows
	v.rebuildLocked()
	v.mu.Unlock()
}

func (v *View) Stop() {}

func (v *View) Title() string {
	return strings.TrimSuffix(filepath.Base(v.path), "/")
}

func (v *View) CursorPos() (int, int, bool) { return 0, 0, false }
