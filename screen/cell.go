// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/cell.go
// Summary: Render cell and the app contract the screen hosts.

package screen

import "github.com/gdamore/tcell/v2"

// Cell is a fully styled character ready for the tcell backend.
type Cell struct {
	Ch    rune
	Style tcell.Style
}

// App is a content producer hosted by the screen: the PTY shell or the
// static file viewer.
type App interface {
	// Run starts the app's own work (e.g. the PTY read loop) and returns
	// once it is launched.
	Run() error
	Stop()
	// Resize informs the app of its new extent in cells.
	Resize(cols, rows int)
	// Render returns the app's current buffer. It must be safe to call
	// concurrently with the app's own updates.
	Render() [][]Cell
	HandleKey(ev *tcell.EventKey)
	Title() string
	// SetRefreshNotifier hands the app the channel it pokes whenever its
	// content changed and a repaint is warranted.
	SetRefreshNotifier(refresh chan<- bool)
	// CursorPos returns the cursor cell, or ok=false to hide it.
	CursorPos() (x, y int, ok bool)
}
