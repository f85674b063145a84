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
package snapshot_test

import (
	"slices"
	"testing"

	"bennypowers.dev/scorta/internal/mapfs"
	"bennypowers.dev/scorta/packagejson"
	"bennypowers.dev/scorta/snapshot"
)

func manifest(pairs ...[2]string) *packagejson.Manifest {
	m := packagejson.NewManifest()
	for _, p := range pairs {
		m.Set(p[0], p[1])
	}
	return m
}

func TestLoadMissing(t *testing.T) {
	store := snapshot.NewStore(mapfs.New(), "/cache/snapshot.json")

	if snap, ok := store.Load(); ok || snap != nil {
		t.Errorf("Expected absent snapshot, got %+v (ok=%v)", snap, ok)
	}
}

func TestLoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"dependencies":{"a":`},
		{"not json", `not json at all`},
		{"wrong shape", `{"dependencies":["a","b"]}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mfs := mapfs.New()
			mfs.AddFile("/cache/snapshot.json", tt.content, 0644)
			store := snapshot.NewStore(mfs, "/cache/snapshot.json")

			if snap, ok := store.Load(); ok || snap != nil {
				t.Errorf("Expected corrupt snapshot to read as absent, got %+v (ok=%v)", snap, ok)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	mfs := mapfs.New()
	store := snapshot.NewStore(mfs, "/cache/snapshot.json")

	saved := &snapshot.Snapshot{
		Dependencies: manifest([2]string{"jquery", "^3.7.0"}, [2]string{"lodash", "~4.17.21"}),
		ManifestPath: "/cache/vendor-manifest.json",
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("Expected saved snapshot to load")
	}
	if !loaded.Dependencies.Equal(saved.Dependencies) {
		t.Errorf("Expected loaded dependencies to equal saved, got %v", loaded.Dependencies.Names())
	}
	if got := loaded.Dependencies.Names(); !slices.Equal(got, []string{"jquery", "lodash"}) {
		t.Errorf("Expected document order preserved, got %v", got)
	}
	if loaded.ManifestPath != saved.ManifestPath {
		t.Errorf("Expected manifest path %q, got %q", saved.ManifestPath, loaded.ManifestPath)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	mfs := mapfs.New()
	store := snapshot.NewStore(mfs, "/cache/snapshot.json")

	snap := &snapshot.Snapshot{Dependencies: manifest([2]string{"a", "^1"})}
	if err := store.Save(snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := mfs.ReadFile("/cache/snapshot.json.tmp"); err == nil {
		t.Error("Expected temp file to be renamed away")
	}
	if _, err := mfs.ReadFile("/cache/snapshot.json"); err != nil {
		t.Errorf("Expected snapshot file to exist: %v", err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	mfs := mapfs.New()
	store := snapshot.NewStore(mfs, "/cache/snapshot.json")

	if err := store.Save(&snapshot.Snapshot{Dependencies: manifest([2]string{"a", "^1"})}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(&snapshot.Snapshot{Dependencies: manifest([2]string{"b", "^2"})}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("Expected snapshot to load")
	}
	if got := loaded.Dependencies.Names(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Expected second save to win, got %v", got)
	}
}

func TestNeedsRebuild(t *testing.T) {
	tests := []struct {
		name    string
		current *packagejson.Manifest
		cached  *snapshot.Snapshot
		want    bool
	}{
		{
			"no cache",
			manifest([2]string{"a", "^1"}),
			nil,
			true,
		},
		{
			"cache without dependencies",
			manifest([2]string{"a", "^1"}),
			&snapshot.Snapshot{},
			true,
		},
		{
			"identical",
			manifest([2]string{"a", "^1"}, [2]string{"b", "^2"}),
			&snapshot.Snapshot{Dependencies: manifest([2]string{"a", "^1"}, [2]string{"b", "^2"})},
			false,
		},
		{
			"reordered",
			manifest([2]string{"a", "^1"}, [2]string{"b", "^2"}),
			&snapshot.Snapshot{Dependencies: manifest([2]string{"b", "^2"}, [2]string{"a", "^1"})},
			false,
		},
		{
			"range changed",
			manifest([2]string{"a", "^2"}),
			&snapshot.Snapshot{Dependencies: manifest([2]string{"a", "^1"})},
			true,
		},
		{
			"dependency added",
			manifest([2]string{"a", "^1"}, [2]string{"b", "^2"}),
			&snapshot.Snapshot{Dependencies: manifest([2]string{"a", "^1"})},
			true,
		},
		{
			"dependency removed",
			manifest([2]string{"a", "^1"}),
			&snapshot.Snapshot{Dependencies: manifest([2]string{"a", "^1"}, [2]string{"b", "^2"})},
			true,
		},
		{
			"both empty",
			manifest(),
			&snapshot.Snapshot{Dependencies: manifest()},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := snapshot.NeedsRebuild(tt.current, tt.cached); got != tt.want {
				t.Errorf("NeedsRebuild() = %v, want %v", got, tt.want)
			}
		})
	}
}
