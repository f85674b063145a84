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

// Package bundler abstracts the external bundler that compiles the vendor
// dependency set into a standalone bundle plus an export manifest.
package bundler

import (
	"context"
	"encoding/json"
	"fmt"

	"bennypowers.dev/scorta/fs"
)

// Invocation describes one bundle compilation. It is constructed fresh per
// build attempt and discarded after use.
type Invocation struct {
	// Name is the bundle's global name, one bundle per invocation. The
	// output paths below belong to this bundle alone.
	Name string

	// Deps is the ordered list of dependency names to compile in.
	Deps []string

	// OutDir is the absolute output directory for bundle artifacts.
	OutDir string

	// AssetPath is where the compiled bundle is written.
	AssetPath string

	// ManifestPath is where the export manifest is written. Its naming
	// convention (<name>-manifest.json) is a contract with consumers of
	// the manifest and must be held stable.
	ManifestPath string

	// ResolveDir is the directory bare specifiers resolve from,
	// normally the project root containing node_modules.
	ResolveDir string

	// Exports optionally lists known named exports per dependency,
	// recorded in the manifest alongside the compiled bundle.
	Exports map[string][]string
}

// Result reports a successful compilation.
type Result struct {
	// Warnings holds formatted bundler warnings. They are surfaced to
	// the log but never fail a build.
	Warnings []string
}

// BuildError carries the external bundler's diagnostic text for a failed
// compilation.
type BuildError struct {
	Diagnostics []string
}

func (e *BuildError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "bundle compilation failed"
	}
	msg := "bundle compilation failed:"
	for _, d := range e.Diagnostics {
		msg += "\n" + d
	}
	return msg
}

// Bundler compiles a dependency set into a bundle and export manifest.
type Bundler interface {
	Build(ctx context.Context, inv Invocation) (*Result, error)
}

// ExportManifest describes the symbols a compiled bundle exports, keyed by
// the externally-addressable bundle name.
type ExportManifest struct {
	Name    string                   `json:"name"`
	Content map[string]ModuleExports `json:"content"`
}

// ModuleExports lists the named exports of one bundled module.
type ModuleExports struct {
	Exports []string `json:"exports,omitempty"`
}

// ReadExportManifest reads and parses an export manifest file.
func ReadExportManifest(fsys fs.FileSystem, path string) (*ExportManifest, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export manifest: %w", err)
	}
	var m ExportManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing export manifest %s: %w", path, err)
	}
	return &m, nil
}
