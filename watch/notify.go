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
package watch

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Loop drives watch cycles from filesystem events when no host build is
// providing them. It watches the descriptor's directory (editors replace
// files by rename, which would drop a watch on the file itself) and runs
// one cycle per descriptor write.
type Loop struct {
	handler    Handler
	descriptor string
	log        zerolog.Logger
}

// NewLoop creates a standalone watch loop over the descriptor path.
func NewLoop(handler Handler, descriptorPath string, log zerolog.Logger) *Loop {
	return &Loop{
		handler:    handler,
		descriptor: descriptorPath,
		log:        log,
	}
}

// Run blocks, translating descriptor file events into watch cycles until
// the context is canceled. Cycle errors are logged, not returned: the loop
// outlives individual failed rebuilds.
func (l *Loop) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(filepath.Dir(l.descriptor)); err != nil {
		return err
	}

	// Prime the recorded timestamp so the first event-driven cycle
	// compares against the state at loop start.
	first := &Cycle{}
	if err := l.handler.OnWatchCycle(ctx, first); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(l.descriptor) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			cycle := &Cycle{}
			if err := l.handler.OnWatchCycle(ctx, cycle); err != nil {
				return err
			}
			for _, cycleErr := range cycle.Errors() {
				l.log.Error().Err(cycleErr).Msg("rebuild failed")
			}
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warn().Err(err).Msg("watch error")
		}
	}
}
