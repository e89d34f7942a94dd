// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/parser.go
// Summary: Byte-stream VT100/ANSI parser feeding a VTerm.

package parser

import (
	"bytes"
	"unicode/utf8"
)

type state int

const (
	stateGround state = iota
	stateEscape
	stateCSI
	stateOSC
	stateCharset
)

// Parser is a VT100/ANSI stream parser. It is not safe for concurrent use;
// callers serialize Parse with the lock that guards the VTerm grid.
type Parser struct {
	state        state
	vterm        *VTerm
	params       []int
	currentParam int
	private      bool
	oscBuffer    []byte
	utf8Buffer   []byte
}

// NewParser creates a parser bound to a virtual terminal.
func NewParser(v *VTerm) *Parser {
	return &Parser{
		state:     stateGround,
		vterm:     v,
		params:    make([]int, 0, 16),
		oscBuffer: make([]byte, 0, 128),
	}
}

// Parse processes a chunk of bytes from the PTY.
func (p *Parser) Parse(data []byte) {
	for _, b := range data {
		switch p.state {
		case stateGround:
			p.parseGround(b)
		case stateEscape:
			p.parseEscape(b)
		case stateCSI:
			p.parseCSI(b)
		case stateOSC:
			if b == '\x07' {
				p.handleOSC()
				p.state = stateGround
			} else if b == '\x1b' {
				// ST is ESC \ ; treat the ESC as the terminator and let the
				// trailing backslash fall through ground state harmlessly.
				p.handleOSC()
				p.state = stateEscape
			} else {
				p.oscBuffer = append(p.oscBuffer, b)
			}
		case stateCharset:
			p.state = stateGround
		}
	}
}

func (p *Parser) parseGround(b byte) {
	switch b {
	case '\x1b':
		p.state = stateEscape
	case '\n':
		p.vterm.LineFeed()
	case '\r':
		p.vterm.CarriageReturn()
	case '\b':
		p.vterm.Backspace()
	case '\t':
		p.vterm.Tab()
	case '\x07':
		// BEL in ground state: no bell surface, drop it.
	default:
		if b < 0x20 {
			return
		}
		p.placeByte(b)
	}
}

// placeByte accumulates multi-byte UTF-8 sequences before placement.
func (p *Parser) placeByte(b byte) {
	if len(p.utf8Buffer) == 0 && b < utf8.RuneSelf {
		p.vterm.placeChar(rune(b))
		return
	}
	p.utf8Buffer = append(p.utf8Buffer, b)
	if !utf8.FullRune(p.utf8Buffer) {
		if len(p.utf8Buffer) >= utf8.UTFMax {
			p.utf8Buffer = p.utf8Buffer[:0]
		}
		return
	}
	r, _ := utf8.DecodeRune(p.utf8Buffer)
	p.utf8Buffer = p.utf8Buffer[:0]
	if r != utf8.RuneError {
		p.vterm.placeChar(r)
	}
}

func (p *Parser) parseEscape(b byte) {
	switch b {
	case '[':
		p.state = stateCSI
		p.params = p.params[:0]
		p.currentParam = 0
		p.private = false
	case ']':
		p.state = stateOSC
		p.oscBuffer = p.oscBuffer[:0]
	case '(', ')':
		p.state = stateCharset
	case 'D':
		p.vterm.LineFeed()
		p.state = stateGround
	case 'M':
		p.vterm.MoveCursorUp(1)
		p.state = stateGround
	case '7':
		p.vterm.SaveCursor()
		p.state = stateGround
	case '8':
		p.vterm.RestoreCursor()
		p.state = stateGround
	default:
		p.state = stateGround
	}
}

func (p *Parser) parseCSI(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.currentParam = p.currentParam*10 + int(b-'0')
	case b == ';':
		p.params = append(p.params, p.currentParam)
		p.currentParam = 0
	case b == '?':
		p.private = true
	case b >= '@' && b <= '~':
		p.params = append(p.params, p.currentParam)
		p.vterm.ProcessCSI(b, p.params, p.private)
		p.state = stateGround
	}
}

// handleOSC processes an Operating System Command (window title etc).
func (p *Parser) handleOSC() {
	parts := bytes.SplitN(p.oscBuffer, []byte{';'}, 2)
	if len(parts) != 2 {
		return
	}
	switch string(parts[0]) {
	case "0", "2":
		p.vterm.SetTitle(string(parts[1]))
	}
}
