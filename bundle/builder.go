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
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"bennypowers.dev/scorta/bundler"
	"bennypowers.dev/scorta/fs"
	"bennypowers.dev/scorta/packagejson"
	"bennypowers.dev/scorta/snapshot"
)

// ManifestBackdate is subtracted from the export manifest's modification
// time after every successful build. The host build tool's file watcher
// compares manifest timestamps against its own start time; a manifest
// written during startup can race that comparison and trigger a spurious
// full rebuild. Back-dating the manifest defeats the race. This is a
// deliberate workaround, not incidental behavior.
const ManifestBackdate = 10 * time.Second

// Builder compiles the dependency set into a vendor bundle and records the
// result. It owns all writes to the bundle directory; every other component
// only reads from it.
type Builder struct {
	fs      fs.FileSystem
	bundler bundler.Bundler
	store   *snapshot.Store
	desc    Descriptor
	opts    Options
	exports ExportLister
	log     zerolog.Logger
}

// NewBuilder creates a bundle builder.
func NewBuilder(fsys fs.FileSystem, b bundler.Bundler, store *snapshot.Store, opts Options) *Builder {
	opts = opts.WithDefaults()
	return &Builder{
		fs:      fsys,
		bundler: b,
		store:   store,
		desc:    NewDescriptor(opts),
		opts:    opts,
		log:     zerolog.Nop(),
	}
}

// WithLogger returns a copy of the builder using the given logger.
func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	next := *b
	next.log = log
	return &next
}

// WithExportLister returns a copy of the builder that enriches the export
// manifest with per-module named exports.
func (b *Builder) WithExportLister(lister ExportLister) *Builder {
	next := *b
	next.exports = lister
	return &next
}

// Descriptor returns the bundle descriptor this builder writes.
func (b *Builder) Descriptor() Descriptor {
	return b.desc
}

// Build compiles the manifest's dependency set into the vendor bundle.
//
// On bundler failure the snapshot is left untouched so the next check
// retries. On success, back-dating the manifest timestamp and persisting
// the snapshot form one logical step: if either fails, the build is
// considered not-yet-cached and the next check rebuilds.
func (b *Builder) Build(ctx context.Context, manifest *packagejson.Manifest) error {
	entries := MergeEntries(manifest, b.opts.Include, b.opts.Exclude)
	if len(entries) == 0 {
		return fmt.Errorf("no dependencies to bundle")
	}

	if err := b.fs.MkdirAll(b.desc.Dir, 0755); err != nil {
		return fmt.Errorf("creating bundle directory: %w", err)
	}

	inv := bundler.Invocation{
		Name:         b.desc.Name,
		Deps:         entries,
		OutDir:       b.desc.Dir,
		AssetPath:    b.desc.AssetPath(),
		ManifestPath: b.desc.ManifestPath(),
		ResolveDir:   b.opts.Base,
		Exports:      b.listExports(entries),
	}

	b.log.Debug().Strs("entries", entries).Str("bundle", b.desc.Name).Msg("invoking bundler")

	result, err := b.bundler.Build(ctx, inv)
	if err != nil {
		b.log.Error().Msg(err.Error())
		return err
	}

	for _, warning := range result.Warnings {
		b.log.Warn().Msg(warning)
	}

	if err := b.backdateManifest(); err != nil {
		return err
	}

	if err := b.store.Save(&snapshot.Snapshot{
		Dependencies: manifest,
		ManifestPath: b.desc.ManifestPath(),
	}); err != nil {
		return fmt.Errorf("caching build result: %w", err)
	}

	b.log.Info().Str("bundle", b.desc.AssetFile()).Int("modules", len(entries)).Msg("vendor bundle built")
	return nil
}

// backdateManifest shifts the manifest mtime into the past. See ManifestBackdate.
func (b *Builder) backdateManifest() error {
	path := b.desc.ManifestPath()
	info, err := b.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("reading manifest timestamp: %w", err)
	}
	stamp := info.ModTime().Add(-ManifestBackdate)
	if err := b.fs.Chtimes(path, stamp, stamp); err != nil {
		return fmt.Errorf("back-dating manifest: %w", err)
	}
	return nil
}

// listExports gathers named exports per dependency, best effort. Failures
// fall back to the manifest's default export entry.
func (b *Builder) listExports(entries []string) map[string][]string {
	if b.exports == nil {
		return nil
	}
	out := make(map[string][]string, len(entries))
	for _, name := range entries {
		exports, err := b.exports.ListExports(name)
		if err != nil {
			b.log.Debug().Str("module", name).Err(err).Msg("export listing failed")
			continue
		}
		out[name] = exports
	}
	return out
}
