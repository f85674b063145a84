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
package bundle

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"bennypowers.dev/scorta/fs"
	"bennypowers.dev/scorta/packagejson"
	"bennypowers.dev/scorta/snapshot"
)

// State names the session's position in the check/build lifecycle.
type State int32

const (
	// StateIdle means no check has run yet.
	StateIdle State = iota
	// StateChecking means the change detector is evaluating the descriptor.
	StateChecking
	// StateBuilding means a bundler invocation is in flight.
	StateBuilding
	// StateReady means a valid cached bundle exists.
	StateReady
	// StateFailed means the last check or build failed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChecking:
		return "checking"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Session coordinates checks and builds for one bundle directory. It holds
// the in-flight-build guard: at most one build runs at a time, and a caller
// arriving mid-build waits for the running build and then re-evaluates
// whether a further rebuild is still needed, instead of racing a second
// bundler invocation against the same output files.
type Session struct {
	mu      sync.Mutex
	state   atomic.Int32
	fs      fs.FileSystem
	store   *snapshot.Store
	builder *Builder
	base    string
	log     zerolog.Logger
}

// NewSession creates a session around a builder.
func NewSession(fsys fs.FileSystem, builder *Builder, store *snapshot.Store, base string, log zerolog.Logger) *Session {
	return &Session{
		fs:      fsys,
		store:   store,
		builder: builder,
		base:    base,
		log:     log,
	}
}

// Descriptor returns the bundle descriptor this session manages.
func (s *Session) Descriptor() Descriptor {
	return s.builder.Descriptor()
}

// State reports the session's current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
}

// Ensure makes a valid cached bundle exist, building one if the descriptor
// drifted from the snapshot. Concurrent calls serialize on the session; each
// waiter re-reads the descriptor after acquiring the guard, so a rebuild
// completed by the previous holder is observed as "no rebuild needed".
//
// A missing descriptor is fatal and is never retried here; bundler failures
// leave the snapshot untouched so the next call retries.
func (s *Session) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setState(StateChecking)

	current, err := packagejson.ReadManifest(s.fs, s.base)
	if err != nil {
		s.setState(StateFailed)
		return err
	}

	cached, ok := s.store.Load()
	if ok && !snapshot.NeedsRebuild(current, cached) {
		s.setState(StateReady)
		s.log.Debug().Msg("vendor bundle up to date")
		return nil
	}

	if !ok {
		s.log.Info().Msg("no cached vendor bundle, building")
	} else {
		s.log.Info().Msg("dependencies changed, rebuilding vendor bundle")
	}

	s.setState(StateBuilding)
	if err := s.builder.Build(ctx, current); err != nil {
		s.setState(StateFailed)
		return err
	}

	s.setState(StateReady)
	return nil
}
