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
package watch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"bennypowers.dev/scorta/internal/mapfs"
	"bennypowers.dev/scorta/watch"
)

type stubRebuilder struct {
	calls  int
	err    error
	during func()
}

func (s *stubRebuilder) Ensure(ctx context.Context) error {
	s.calls++
	if s.during != nil {
		s.during()
	}
	return s.err
}

const descriptorPath = "/project/package.json"

func newWatchFixture(t *testing.T) (*watch.Watcher, *stubRebuilder, *mapfs.MapFileSystem) {
	t.Helper()
	mfs := mapfs.New()
	mfs.AddFile(descriptorPath, `{"name":"app"}`, 0644)
	rebuilder := &stubRebuilder{}
	return watch.New(mfs, rebuilder, descriptorPath, zerolog.Nop()), rebuilder, mfs
}

func cycle(t *testing.T, w *watch.Watcher) *watch.Cycle {
	t.Helper()
	c := &watch.Cycle{}
	if err := w.OnWatchCycle(context.Background(), c); err != nil {
		t.Fatalf("OnWatchCycle failed: %v", err)
	}
	return c
}

func touch(mfs *mapfs.MapFileSystem, t time.Time) {
	mfs.SetModTime(t)
	mfs.AddFile(descriptorPath, `{"name":"app","dependencies":{"a":"^1"}}`, 0644)
}

func TestFirstCycleOnlyRecords(t *testing.T) {
	w, rebuilder, _ := newWatchFixture(t)

	if !w.LastModified().IsZero() {
		t.Error("Expected zero timestamp before first cycle")
	}

	cycle(t, w)

	if rebuilder.calls != 0 {
		t.Errorf("Expected no rebuild on first cycle, got %d", rebuilder.calls)
	}
	if w.LastModified().IsZero() {
		t.Error("Expected timestamp recorded after first cycle")
	}
}

func TestUnchangedDescriptorSkipsRebuild(t *testing.T) {
	w, rebuilder, _ := newWatchFixture(t)

	cycle(t, w)
	cycle(t, w)
	cycle(t, w)

	if rebuilder.calls != 0 {
		t.Errorf("Expected no rebuilds for unchanged descriptor, got %d", rebuilder.calls)
	}
}

func TestChangedDescriptorRebuilds(t *testing.T) {
	w, rebuilder, mfs := newWatchFixture(t)

	cycle(t, w)

	edit := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	touch(mfs, edit)

	c := cycle(t, w)

	if rebuilder.calls != 1 {
		t.Fatalf("Expected 1 rebuild, got %d", rebuilder.calls)
	}
	if len(c.Errors()) != 0 {
		t.Errorf("Expected no cycle errors, got %v", c.Errors())
	}
	if !w.LastModified().Equal(edit) {
		t.Errorf("Expected timestamp advanced to %v, got %v", edit, w.LastModified())
	}

	// Same timestamp again is a no-op.
	cycle(t, w)
	if rebuilder.calls != 1 {
		t.Errorf("Expected no further rebuilds, got %d", rebuilder.calls)
	}
}

func TestRebuildFailureKeepsTimestamp(t *testing.T) {
	w, rebuilder, mfs := newWatchFixture(t)

	cycle(t, w)
	recorded := w.LastModified()

	rebuildErr := errors.New("bundler failed")
	rebuilder.err = rebuildErr
	touch(mfs, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	c := cycle(t, w)

	errs := c.Errors()
	if len(errs) != 1 || !errors.Is(errs[0], rebuildErr) {
		t.Fatalf("Expected rebuild error recorded on cycle, got %v", errs)
	}
	if !w.LastModified().Equal(recorded) {
		t.Error("Expected timestamp unchanged after failed rebuild")
	}

	// Timestamp was not advanced, so the next cycle retries.
	rebuilder.err = nil
	c = cycle(t, w)
	if rebuilder.calls != 2 {
		t.Errorf("Expected retry on next cycle, got %d calls", rebuilder.calls)
	}
	if len(c.Errors()) != 0 {
		t.Errorf("Expected clean retry cycle, got %v", c.Errors())
	}
}

func TestMissingDescriptorSkipsCycle(t *testing.T) {
	mfs := mapfs.New()
	rebuilder := &stubRebuilder{}
	w := watch.New(mfs, rebuilder, descriptorPath, zerolog.Nop())

	c := cycle(t, w)

	if rebuilder.calls != 0 {
		t.Errorf("Expected no rebuild when descriptor is unreadable, got %d", rebuilder.calls)
	}
	if len(c.Errors()) != 0 {
		t.Errorf("Expected no cycle errors, got %v", c.Errors())
	}
	if !w.LastModified().IsZero() {
		t.Error("Expected timestamp to stay unset")
	}
}

func TestStateTracksRebuild(t *testing.T) {
	w, rebuilder, mfs := newWatchFixture(t)

	var during watch.State
	rebuilder.during = func() { during = w.State() }

	if w.State() != watch.StateIdle {
		t.Errorf("Expected idle before any cycle, got %v", w.State())
	}

	cycle(t, w)
	touch(mfs, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cycle(t, w)

	if during != watch.StateRebuilding {
		t.Errorf("Expected rebuilding state during rebuild, got %v", during)
	}
	if w.State() != watch.StateIdle {
		t.Errorf("Expected idle after rebuild, got %v", w.State())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state watch.State
		want  string
	}{
		{watch.StateIdle, "idle"},
		{watch.StateRebuilding, "rebuilding"},
		{watch.State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestWatcherName(t *testing.T) {
	w, _, _ := newWatchFixture(t)
	if w.Name() != "scorta-watch" {
		t.Errorf("Unexpected watcher name %q", w.Name())
	}
}

func TestCycleErrors(t *testing.T) {
	c := &watch.Cycle{}
	if len(c.Errors()) != 0 {
		t.Error("Expected no errors on fresh cycle")
	}

	first := errors.New("first")
	second := errors.New("second")
	c.Fail(first)
	c.Fail(second)

	errs := c.Errors()
	if len(errs) != 2 || !errors.Is(errs[0], first) || !errors.Is(errs[1], second) {
		t.Errorf("Expected both errors in order, got %v", errs)
	}
}
