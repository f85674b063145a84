/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package watch re-checks the dependency descriptor during iterative
// builds and rebuilds the vendor bundle when it changes, without blocking
// unrelated rebuilds.
package watch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"bennypowers.dev/scorta/fs"
)

// Cycle is one iteration of the host's incremental build. Rebuild failures
// are reported through the cycle's error channel rather than crashing the
// watch process; the host surfaces them per cycle.
type Cycle struct {
	mu   sync.Mutex
	errs []error
}

// Fail records an error against this cycle.
func (c *Cycle) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

// Errors returns the errors recorded against this cycle.
func (c *Cycle) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.errs...)
}

// Handler receives watch cycles.
type Handler interface {
	OnWatchCycle(ctx context.Context, cycle *Cycle) error
}

// Rebuilder triggers a bundle check-and-rebuild. bundle.Session satisfies it.
type Rebuilder interface {
	Ensure(ctx context.Context) error
}

// State names the watcher's position in its two-state machine.
type State int32

const (
	// StateIdle means no rebuild is in flight.
	StateIdle State = iota
	// StateRebuilding means a descriptor change triggered a rebuild that
	// has not yet resolved.
	StateRebuilding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRebuilding:
		return "rebuilding"
	default:
		return "unknown"
	}
}

// Watcher compares the descriptor's modification time across watch cycles
// and rebuilds the vendor bundle when it drifts. The current cycle is held
// until the rebuild resolves, so the main build never references a bundle
// mid-rewrite; cycles that touch only application files proceed untouched.
type Watcher struct {
	mu         sync.Mutex
	state      atomic.Int32
	fs         fs.FileSystem
	rebuilder  Rebuilder
	descriptor string
	lastMod    time.Time
	log        zerolog.Logger
}

// New creates a watcher over the descriptor at the given path.
//
// The initial timestamp is unset: the very first cycle only records the
// current modification time, because the initial build already ran during
// configuration.
func New(fsys fs.FileSystem, rebuilder Rebuilder, descriptorPath string, log zerolog.Logger) *Watcher {
	return &Watcher{
		fs:         fsys,
		rebuilder:  rebuilder,
		descriptor: descriptorPath,
		log:        log,
	}
}

// Name identifies the hook in host build diagnostics.
func (w *Watcher) Name() string {
	return "scorta-watch"
}

// OnWatchCycle implements Handler. It blocks the cycle while a rebuild is
// in flight. On rebuild failure the recorded timestamp is left unchanged,
// so the next cycle retries automatically.
func (w *Watcher) OnWatchCycle(ctx context.Context, cycle *Cycle) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := w.fs.Stat(w.descriptor)
	if err != nil {
		// Descriptor temporarily unreadable (editor save in progress);
		// leave state alone and let the next cycle observe it.
		w.log.Debug().Err(err).Msg("descriptor stat failed, skipping cycle")
		return nil
	}

	mod := info.ModTime()

	if w.lastMod.IsZero() {
		w.lastMod = mod
		return nil
	}

	if mod.Equal(w.lastMod) {
		return nil
	}

	w.state.Store(int32(StateRebuilding))
	w.log.Info().Str("descriptor", w.descriptor).Msg("dependency descriptor changed")

	err = w.rebuilder.Ensure(ctx)
	w.state.Store(int32(StateIdle))

	if err != nil {
		cycle.Fail(err)
		return nil
	}

	w.lastMod = mod
	return nil
}

// State reports whether a rebuild is currently in flight. It is readable
// while OnWatchCycle holds the cycle, so callers can distinguish a blocked
// rebuild from an unrelated slow cycle.
func (w *Watcher) State() State {
	return State(w.state.Load())
}

// LastModified returns the recorded descriptor timestamp, zero before the
// first cycle.
func (w *Watcher) LastModified() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastMod
}
