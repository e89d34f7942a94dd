// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/rainterm/main.go
// Summary: rainterm entrypoint: wires the shell (or file viewer), the
// screen and the rain animator together.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	xterm "golang.org/x/term"

	"github.com/framegrace/rainterm/config"
	"github.com/framegrace/rainterm/rain"
	"github.com/framegrace/rainterm/screen"
	"github.com/framegrace/rainterm/term"
	"github.com/framegrace/rainterm/term/parser"
	"github.com/framegrace/rainterm/view"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is what rainterm hosts: a screen content producer that also exposes
// its grid to the rain overlay.
type app interface {
	screen.App
	rain.Surface
}

func run() error {
	fs := flag.NewFlagSet("rainterm", flag.ContinueOnError)
	viewPath := fs.String("view", "", "Render a syntax-highlighted file instead of a shell")
	shellCmd := fs.String("shell", "", "Shell command to run (default: $SHELL)")
	noRain := fs.Bool("no-rain", false, "Disable the rain overlay")
	configPath := fs.String("config", "", "Path to the config file")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if !xterm.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal")
	}

	if *configPath != "" {
		config.SetPath(*configPath)
	}
	cfg := config.Load()
	if err := config.Err(); err != nil {
		log.Printf("Main: continuing with defaults: %v", err)
	}

	// tcell owns the tty; keep log output off it.
	redirectLogs()

	var hosted app
	if *viewPath != "" {
		hosted = view.New(*viewPath, cfg.GetString("view", "highlight_style", ""))
	} else {
		shell := *shellCmd
		if shell == "" {
			shell = cfg.GetString("term", "shell", "/bin/sh")
		}
		historyPath := ""
		if cfg.GetBool("term", "history_enabled", true) {
			p, err := config.HistoryPath()
			if err != nil {
				log.Printf("Main: history index disabled: %v", err)
			} else {
				historyPath = p
			}
		}
		hosted = term.New("rainterm", shell, historyPath)
	}

	scr, err := screen.NewScreen(hosted)
	if err != nil {
		return fmt.Errorf("initialize screen: %w", err)
	}
	defer scr.Close()

	if cfg.GetBool("rain", "enabled", true) && !*noRain {
		animator := rain.New(hosted, refreshNotifier{scr}, rainConfig(cfg))
		animator.Start()
		defer animator.Stop()
	}

	return scr.Run()
}

// refreshNotifier adapts the screen's refresh channel to rain.Notifier.
type refreshNotifier struct {
	scr *screen.Screen
}

func (n refreshNotifier) Notify() { n.scr.Refresh() }

// rainConfig builds the overlay tunables from the config file.
func rainConfig(cfg config.Config) rain.Config {
	rc := rain.DefaultConfig()
	tickMS := cfg.GetInt("rain", "tick_ms", 40)
	if tickMS < 1 {
		tickMS = 1
	}
	rc.TickInterval = time.Duration(tickMS) * time.Millisecond
	rc.Cooldown = uint64(cfg.GetInt("rain", "cooldown_ticks", 4))
	rc.BurstMin = cfg.GetInt("rain", "burst_min", rc.BurstMin)
	rc.BurstMax = cfg.GetInt("rain", "burst_max", rc.BurstMax)
	rc.GapMin = cfg.GetInt("rain", "gap_min", rc.GapMin)
	rc.GapMax = cfg.GetInt("rain", "gap_max", rc.GapMax)
	rc.BoldChance = cfg.GetFloat("rain", "bold_chance", rc.BoldChance)

	if hex := cfg.GetString("rain", "color", ""); hex != "" {
		r, g, b, err := config.ParseHexColor(hex)
		if err != nil {
			log.Printf("Main: %v, keeping default rain color", err)
		} else {
			rc.Color = parser.Color{Mode: parser.ColorModeRGB, R: r, G: g, B: b}
		}
	}
	return rc
}

// redirectLogs sends the standard logger to a file next to the config.
func redirectLogs() {
	dir, err := os.UserConfigDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return
	}
	path := filepath.Join(dir, "rainterm", "rainterm.log")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	log.SetOutput(f)
}
