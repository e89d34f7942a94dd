// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/term.go
// Summary: The PTY shell app: spawns a shell, feeds its output through the
// VT parser into the grid, and exposes the grid to the rain overlay.
// Notes: This app is the external content producer the overlay reconciles
// against; its PTY read loop and the animator contend for the same mutex.

package term

import (
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/rainterm/screen"
	"github.com/framegrace/rainterm/term/parser"
)

// Term hosts a shell on a PTY and renders its virtual terminal.
type Term struct {
	title   string
	command string
	width   int
	height  int

	cmd     *exec.Cmd
	pty     *os.File
	vterm   *parser.VTerm
	parser  *parser.Parser
	history *parser.History
	palette Palette

	mu          sync.Mutex
	stop        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	refreshChan chan<- bool
}

// New creates a shell app. historyPath may be empty to disable the
// scrollback index.
func New(title, command, historyPath string) *Term {
	t := &Term{
		title:   title,
		command: command,
		width:   80,
		height:  24,
		stop:    make(chan struct{}),
		palette: NewDefaultPalette(),
	}
	if historyPath != "" {
		h, err := parser.OpenHistory(historyPath)
		if err != nil {
			log.Printf("Term: history index disabled: %v", err)
		} else {
			t.history = h
		}
	}
	return t
}

// SetRefreshNotifier implements screen.App.
func (t *Term) SetRefreshNotifier(refresh chan<- bool) {
	t.refreshChan = refresh
}

func (t *Term) notifyRefresh() {
	if t.refreshChan != nil {
		select {
		case t.refreshChan <- true:
		default:
		}
	}
}

// Acquire implements rain.Surface: it takes the grid lock and hands out the
// live cells until release is called.
func (t *Term) Acquire() ([][]parser.Cell, func()) {
	t.mu.Lock()
	if t.vterm == nil {
		t.mu.Unlock()
		return nil, func() {}
	}
	return t.vterm.Grid(), t.mu.Unlock
}

// Run starts the shell and the PTY read loop, then returns.
func (t *Term) Run() error {
	t.mu.Lock()
	cols, rows := t.width, t.height
	t.mu.Unlock()

	cmd := exec.Command(t.command)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		log.Printf("Term: failed to start pty for %q: %v", t.command, err)
		return err
	}

	t.mu.Lock()
	t.cmd = cmd
	t.pty = ptmx
	t.vterm = parser.NewVTerm(cols, rows,
		parser.WithTitleHandler(func(title string) {
			t.title = title
			t.notifyRefresh()
		}),
		parser.WithPtyWriter(func(b []byte) {
			ptmx.Write(b)
		}),
		parser.WithScrollHandler(t.recordScrollback),
	)
	t.parser = parser.NewParser(t.vterm)
	t.mu.Unlock()

	t.wg.Add(1)
	go t.readLoop(ptmx)
	return nil
}

func (t *Term) readLoop(ptmx *os.File) {
	defer t.wg.Done()
	buf := make([]byte, 4096)
	for {
		select {
		case <-t.stop:
			return
		default:
		}
		n, err := ptmx.Read(buf)
		if n > 0 {
			t.mu.Lock()
			t.parser.Parse(buf[:n])
			t.mu.Unlock()
			t.notifyRefresh()
		}
		if err != nil {
			return
		}
	}
}

// recordScrollback is called by the vterm (under the grid lock) for each
// line scrolling off the top. The history queue never blocks.
func (t *Term) recordScrollback(cells []parser.Cell) {
	if t.history != nil {
		t.history.Record(cells)
	}
}

// History exposes the scrollback index, or nil when disabled.
func (t *Term) History() *parser.History {
	return t.history
}

// Render translates the virtual terminal state into styled screen cells.
func (t *Term) Render() [][]screen.Cell {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.vterm == nil {
		return nil
	}
	grid := t.vterm.Grid()
	buf := make([][]screen.Cell, len(grid))
	for y, row := range grid {
		line := make([]screen.Cell, len(row))
		for x := 0; x < len(row); x++ {
			cell := row[x]
			line[x] = screen.Cell{Ch: cell.Rune, Style: t.palette.Style(cell)}
			if runewidth.RuneWidth(cell.Rune) == 2 && x+1 < len(row) {
				// The spill cell of a wide rune renders empty with the
				// same style.
				line[x+1] = screen.Cell{Ch: ' ', Style: line[x].Style}
				x++
			}
		}
		buf[y] = line
	}
	return buf
}

// CursorPos implements screen.App.
func (t *Term) CursorPos() (int, int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.vterm == nil || !t.vterm.CursorVisible() {
		return 0, 0, false
	}
	x, y := t.vterm.Cursor()
	return x, y, true
}

// HandleKey translates a tcell key event into bytes for the shell.
func (t *Term) HandleKey(ev *tcell.EventKey) {
	t.mu.Lock()
	ptmx := t.pty
	t.mu.Unlock()
	if ptmx == nil {
		return
	}

	var keyBytes []byte
	switch ev.Key() {
	case tcell.KeyUp:
		keyBytes = []byte("\x1b[A")
	case tcell.KeyDown:
		keyBytes = []byte("\x1b[B")
	case tcell.KeyRight:
		keyBytes = []byte("\x1b[C")
	case tcell.KeyLeft:
		keyBytes = []byte("\x1b[D")
	case tcell.KeyHome:
		keyBytes = []byte("\x1b[H")
	case tcell.KeyEnd:
		keyBytes = []byte("\x1b[F")
	case tcell.KeyDelete:
		keyBytes = []byte("\x1b[3~")
	case tcell.KeyPgUp:
		keyBytes = []byte("\x1b[5~")
	case tcell.KeyPgDn:
		keyBytes = []byte("\x1b[6~")
	case tcell.KeyEnter:
		keyBytes = []byte("\r")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		keyBytes = []byte{0x7f}
	case tcell.KeyTab:
		keyBytes = []byte("\t")
	case tcell.KeyEsc:
		keyBytes = []byte("\x1b")
	case tcell.KeyCtrlC:
		keyBytes = []byte{0x03}
	case tcell.KeyCtrlD:
		keyBytes = []byte{0x04}
	case tcell.KeyCtrlZ:
		keyBytes = []byte{0x1a}
	case tcell.KeyCtrlL:
		keyBytes = []byte{0x0c}
	default:
		if ev.Rune() != 0 {
			keyBytes = []byte(string(ev.Rune()))
		}
	}

	if keyBytes != nil {
		ptmx.Write(keyBytes)
	}
}

// Resize propagates a new extent to the grid and the PTY.
func (t *Term) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.width, t.height = cols, rows
	if t.vterm != nil {
		t.vterm.Resize(cols, rows)
	}
	if t.pty != nil {
		pty.Setsize(t.pty, &pty.Winsize{
			Rows: uint16(rows),
			Cols: uint16(cols),
		})
	}
}

// Stop terminates the shell and flushes the history index.
func (t *Term) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
		t.mu.Lock()
		if t.pty != nil {
			t.pty.Close()
		}
		if t.cmd != nil && t.cmd.Process != nil {
			t.cmd.Process.Signal(syscall.SIGTERM)
		}
		t.mu.Unlock()
		t.wg.Wait()
		if t.history != nil {
			if err := t.history.Close(); err != nil {
				log.Printf("Term: closing history index: %v", err)
			}
		}
	})
}

// Title implements screen.App.
func (t *Term) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}
