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
package hostcfg

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"bennypowers.dev/scorta/bundle"
	"bennypowers.dev/scorta/bundler"
	"bennypowers.dev/scorta/fs"
	"bennypowers.dev/scorta/inject"
	"bennypowers.dev/scorta/packagejson"
	"bennypowers.dev/scorta/snapshot"
	"bennypowers.dev/scorta/watch"
)

var (
	_ BeforeCompileHook = (*ExternalsHook)(nil)
	_ HTMLHook          = (*inject.Hook)(nil)
	_ WatchCycleHook    = (*watch.Watcher)(nil)
)

// Rewriter prepares host build configurations around the vendor bundle
// cache. One rewriter owns one bundle session; concurrent Prepare calls
// coalesce on it rather than racing bundler invocations.
type Rewriter struct {
	fs      fs.FileSystem
	session *bundle.Session
	desc    bundle.Descriptor
	opts    bundle.Options
	log     zerolog.Logger
}

// New creates a rewriter around the given external bundler.
func New(fsys fs.FileSystem, b bundler.Bundler, opts bundle.Options, log zerolog.Logger) *Rewriter {
	opts = opts.WithDefaults()
	desc := bundle.NewDescriptor(opts)
	store := snapshot.NewStore(fsys, desc.SnapshotPath())
	builder := bundle.NewBuilder(fsys, b, store, opts).
		WithLogger(log).
		WithExportLister(bundle.NewExportLister(fsys, opts.Base, nil))
	return &Rewriter{
		fs:      fsys,
		session: bundle.NewSession(fsys, builder, store, opts.Base, log),
		desc:    desc,
		opts:    opts,
		log:     log,
	}
}

// Session exposes the bundle session, for hosts that drive cycles directly.
func (r *Rewriter) Session() *bundle.Session {
	return r.session
}

// Descriptor returns the bundle descriptor this rewriter configures.
func (r *Rewriter) Descriptor() bundle.Descriptor {
	return r.desc
}

// Prepare returns a new host configuration wired to the vendor bundle.
//
// It first makes a valid cached bundle exist (building one if the
// dependency set changed), so registered hooks never observe a missing
// manifest. Any failure there aborts configuration entirely: a missing
// descriptor is fatal, and no partially-configured value is handed back.
//
// The returned config has the plugin's option keys stripped, the bundle
// directory merged into the static search path, the descriptor included
// among watched entry inputs, and the externals, HTML injection, and watch
// hooks registered.
func (r *Rewriter) Prepare(ctx context.Context, cfg Config) (Config, error) {
	if err := r.session.Ensure(ctx); err != nil {
		return Config{}, fmt.Errorf("preparing vendor bundle: %w", err)
	}

	descriptorPath := filepath.Join(r.opts.Base, packagejson.DescriptorName)

	next := cfg.Clone()
	next.Options = withoutOptionKeys(next.Options)
	next.Static = mergeStatic(cfg.Static, r.desc.Dir)
	next.Entry = ensureWatchedEntry(cfg.Entry, descriptorPath)
	next.Hooks = append(next.Hooks,
		NewExternalsHook(r.fs, r.desc),
		inject.NewHook(r.desc.AssetFile()),
		watch.New(r.fs, r.session, descriptorPath, r.log),
	)

	return next, nil
}

// ExternalsHook instructs the external bundler to treat the vendor
// bundle's exports as externally provided, resolving module names through
// the export manifest.
type ExternalsHook struct {
	fs   fs.FileSystem
	desc bundle.Descriptor
}

// NewExternalsHook creates the externals hook for a bundle descriptor.
func NewExternalsHook(fsys fs.FileSystem, desc bundle.Descriptor) *ExternalsHook {
	return &ExternalsHook{fs: fsys, desc: desc}
}

// Name identifies the hook in host build diagnostics.
func (h *ExternalsHook) Name() string {
	return "scorta-externals"
}

// BeforeCompile maps every module in the export manifest to a property
// access on the bundle's global, e.g. "lodash" → vendor["lodash"].
func (h *ExternalsHook) BeforeCompile(ctx context.Context, c *Compilation) error {
	manifest, err := bundler.ReadExportManifest(h.fs, h.desc.ManifestPath())
	if err != nil {
		return err
	}

	if c.Externals == nil {
		c.Externals = make(map[string]string, len(manifest.Content))
	}
	for name := range manifest.Content {
		c.Externals[name] = fmt.Sprintf("%s[%q]", manifest.Name, name)
	}
	return nil
}
