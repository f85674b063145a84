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

// Package snapshot persists the dependency mapping behind the last
// successful vendor bundle build, and decides whether that bundle is
// still valid for the current descriptor.
package snapshot

import (
	"encoding/json"
	"fmt"

	"bennypowers.dev/scorta/fs"
	"bennypowers.dev/scorta/packagejson"
)

// Snapshot is the state persisted after a successful bundle build.
type Snapshot struct {
	// Dependencies is the name→range mapping the bundle was built from.
	Dependencies *packagejson.Manifest `json:"dependencies"`
	// ManifestPath is the export manifest produced by that build.
	ManifestPath string `json:"manifest"`
}

// Store reads and writes the snapshot file.
type Store struct {
	fs   fs.FileSystem
	path string
}

// NewStore creates a store backed by the given snapshot file path.
func NewStore(fsys fs.FileSystem, path string) *Store {
	return &Store{fs: fsys, path: path}
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the last persisted snapshot. A missing or unparsable file is
// not an error: first run and corrupt cache both report absent, which
// callers treat as "rebuild needed".
func (s *Store) Load() (*Snapshot, bool) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	if snap.Dependencies == nil {
		return nil, false
	}
	return &snap, true
}

// Save persists the snapshot, overwriting any previous one. The write is
// atomic: data goes to a temporary sibling first and is renamed into place,
// so a concurrent Load never observes a truncated document.
func (s *Store) Save(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := s.fs.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// NeedsRebuild reports whether the current dependency manifest invalidates
// the cached snapshot. Absent cache always rebuilds; otherwise the decision
// is deep, order-insensitive equality over the name→range pairs.
//
// This is the single gate in front of expensive bundler invocations; it is
// a pure function so it stays independently testable.
func NeedsRebuild(current *packagejson.Manifest, cached *Snapshot) bool {
	if cached == nil || cached.Dependencies == nil {
		return true
	}
	return !current.Equal(cached.Dependencies)
}
