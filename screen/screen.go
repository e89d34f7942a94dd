// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/screen.go
// Summary: tcell-backed display loop: hosts a single app, repaints on
// refresh notifications and forwards input and resize events.

package screen

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

const keyQuit = tcell.KeyCtrlQ

// Screen manages the terminal display using tcell as the backend.
type Screen struct {
	tcellScreen tcell.Screen
	app         App
	refreshChan chan bool
	quit        chan struct{}
	closeOnce   sync.Once
	prevBuf     [][]Cell
}

// NewScreen initializes tcell and prepares a screen hosting the given app.
func NewScreen(app App) (*Screen, error) {
	tcellScreen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return newScreen(tcellScreen, app)
}

// newScreen wires an already constructed backend. Tests pass a tcell
// simulation screen here.
func newScreen(tcellScreen tcell.Screen, app App) (*Screen, error) {
	if err := tcellScreen.Init(); err != nil {
		return nil, err
	}

	defStyle := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset)
	tcellScreen.SetStyle(defStyle)
	tcellScreen.HideCursor()

	s := &Screen{
		tcellScreen: tcellScreen,
		app:         app,
		refreshChan: make(chan bool, 1),
		quit:        make(chan struct{}),
	}
	app.SetRefreshNotifier(s.refreshChan)

	w, h := tcellScreen.Size()
	app.Resize(w, h)
	return s, nil
}

// Refresh signals the main loop to redraw. Non-blocking; a dropped signal
// only coalesces with a pending one.
func (s *Screen) Refresh() {
	select {
	case s.refreshChan <- true:
	default:
	}
}

// Run starts the app and enters the event/render loop. It returns when the
// user quits or the backend fails.
func (s *Screen) Run() error {
	if err := s.app.Run(); err != nil {
		return err
	}

	eventChan := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := s.tcellScreen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-s.quit:
				return
			}
		}
	}()

	// Repaints are coalesced: at most one draw per frame interval even
	// when refresh notifications arrive faster.
	frame := time.NewTicker(16 * time.Millisecond)
	defer frame.Stop()
	dirty := true

	for {
		select {
		case <-s.quit:
			return nil
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == keyQuit {
					s.Close()
					return nil
				}
				s.app.HandleKey(ev)
			case *tcell.EventResize:
				w, h := s.tcellScreen.Size()
				s.app.Resize(w, h)
				s.prevBuf = nil
				s.tcellScreen.Sync()
				dirty = true
			}
		case <-s.refreshChan:
			dirty = true
		case <-frame.C:
			if dirty {
				s.draw()
				dirty = false
			}
		}
	}
}

// draw blits the app buffer (diffed against the previous frame) and shows it.
func (s *Screen) draw() {
	buf := s.app.Render()
	s.blitDiff(buf)
	s.prevBuf = buf

	if x, y, ok := s.app.CursorPos(); ok {
		s.tcellScreen.ShowCursor(x, y)
	} else {
		s.tcellScreen.HideCursor()
	}
	s.tcellScreen.Show()
}

// blitDiff only redraws cells that changed since the previous frame.
func (s *Screen) blitDiff(buf [][]Cell) {
	for y, row := range buf {
		for x, cell := range row {
			if s.prevBuf == nil || y >= len(s.prevBuf) || x >= len(s.prevBuf[y]) || cell != s.prevBuf[y][x] {
				s.tcellScreen.SetContent(x, y, cell.Ch, nil, cell.Style)
			}
		}
	}
}

// Close shuts down tcell and stops the hosted app.
func (s *Screen) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		s.app.Stop()
		s.tcellScreen.Fini()
	})
}
