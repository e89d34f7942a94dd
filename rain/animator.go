// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rain/animator.go
// Summary: The background activity: a fixed-period loop that locks the
// shared grid, runs detect → restore → generate → step, and pokes the
// renderer.

package rain

import (
	"math/rand"
	"sync"
	"time"

	"github.com/framegrace/rainterm/term/parser"
)

// Surface is the overlay's handle on the externally owned grid. Acquire
// takes the exclusive lock guarding the grid and returns the live row-major
// cells plus a release function; the grid must not be touched after release.
// Both the external content producer and the overlay mutate the grid only
// under this lock.
type Surface interface {
	Acquire() (grid [][]parser.Cell, release func())
}

// Notifier requests a redraw from the external renderer. Delivery is
// best-effort; a missed notification only delays a repaint.
type Notifier interface {
	Notify()
}

// Animator owns the overlay state and the tick loop.
type Animator struct {
	surface  Surface
	notifier Notifier
	cfg      Config
	rng      *rand.Rand
	state    *State

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures an Animator at construction time.
type Option func(*Animator)

// WithRand injects the pseudo-random source. Tests pass a seeded generator
// to get deterministic trails.
func WithRand(rng *rand.Rand) Option {
	return func(a *Animator) { a.rng = rng }
}

// New creates an animator over the given surface.
func New(surface Surface, notifier Notifier, cfg Config, opts ...Option) *Animator {
	a := &Animator{
		surface:  surface,
		notifier: notifier,
		cfg:      cfg,
		state:    NewState(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return a
}

// Start launches the tick loop on its own goroutine.
func (a *Animator) Start() {
	go a.run()
}

// Stop terminates the loop. Safe to call more than once.
func (a *Animator) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
	<-a.done
}

func (a *Animator) run() {
	defer close(a.done)
	ticker := time.NewTicker(a.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			a.tick()
			a.notifier.Notify()
		}
	}
}

// tick runs one full detect/restore/generate/step cycle. The grid lock is
// held for the whole cycle: the diff-and-restore logic assumes no external
// write lands mid-sequence.
func (a *Animator) tick() {
	grid, release := a.surface.Acquire()
	defer release()

	st := a.state
	st.tick++

	cols, rows := gridSize(grid)
	if cols == 0 || rows == 0 {
		st.trails = nil
		st.snapshot = nil
		return
	}

	if len(st.trails) > 0 {
		if resized(st.trails, cols, rows) {
			// Nothing coherent to restore against a different-shaped
			// buffer: drop the trails and rebase on a fresh snapshot.
			st.trails = nil
			st.snapshot = captureSnapshot(grid)
			st.settled = false
		} else if changed(grid, st.trails) {
			restore(grid, st.snapshot, st.trails)
			// The snapshot deliberately stays at the last settled baseline:
			// the next cutoff pass must see the change that triggered this
			// restore as eligible for animation.
			st.trails = nil
			st.settled = false
			st.lastChange = st.tick
		}
	}

	if len(st.trails) == 0 && st.lastChange+a.cfg.Cooldown <= st.tick {
		cutoffs := lowestChanged(grid, st.snapshot)
		// The snapshot must be refreshed after the cutoff calculation and
		// before generation, so the trails capture the content the cutoffs
		// were computed for.
		st.snapshot = captureSnapshot(grid)
		st.trails = generate(grid, cutoffs, a.rng, a.cfg)
		st.settled = false
	}

	if len(st.trails) > 0 {
		if step(st.trails) {
			mirror(grid, st.trails)
		} else if !st.settled {
			// Fully drained: the grid is back to real content. Capture the
			// rest baseline so the next cutoff pass only admits rows that
			// change from here on.
			st.snapshot = captureSnapshot(grid)
			st.settled = true
		}
	}
}
