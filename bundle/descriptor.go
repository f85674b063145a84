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

// Package bundle implements the vendor dependency-bundle cache: it decides
// when the installed dependency set has drifted from the last prebuilt
// bundle, compiles a fresh bundle through the external bundler, and records
// the result so later builds can reuse it.
package bundle

import "path/filepath"

// Defaults for Options.
const (
	DefaultDirectoryName = ".scorta"
	DefaultName          = "vendor"
)

// Options configures the vendor bundle cache.
type Options struct {
	// Base is the absolute project root. Defaults to the process
	// working directory.
	Base string

	// DirectoryName is the output subdirectory under Base holding the
	// bundle, manifest, and snapshot.
	DirectoryName string

	// Name is the bundle identifier: the external global symbol and the
	// output file stem.
	Name string

	// Include lists dependency names force-added to the bundled set.
	Include []string

	// Exclude lists dependency names removed from the bundled set.
	Exclude []string

	// Log is the verbosity: "none", "info", or "verbose".
	Log string
}

// WithDefaults returns a copy of the options with empty fields defaulted.
func (o Options) WithDefaults() Options {
	if o.DirectoryName == "" {
		o.DirectoryName = DefaultDirectoryName
	}
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.Log == "" {
		o.Log = "info"
	}
	return o
}

// Descriptor identifies one vendor bundle's on-disk artifacts. It is
// constructed once at configuration time and is read-only afterwards.
type Descriptor struct {
	// Name is the bundle identifier, used as the external global symbol
	// and the output file stem.
	Name string

	// Dir is the absolute output directory.
	Dir string
}

// NewDescriptor derives the bundle descriptor from options.
func NewDescriptor(opts Options) Descriptor {
	opts = opts.WithDefaults()
	return Descriptor{
		Name: opts.Name,
		Dir:  filepath.Join(opts.Base, opts.DirectoryName),
	}
}

// AssetFile returns the bundle asset filename, <name>.js.
func (d Descriptor) AssetFile() string {
	return d.Name + ".js"
}

// AssetPath returns the absolute bundle asset path.
func (d Descriptor) AssetPath() string {
	return filepath.Join(d.Dir, d.AssetFile())
}

// ManifestFile returns the export manifest filename. The <name>-manifest.json
// convention is a contract with the external bundler; keep it stable.
func (d Descriptor) ManifestFile() string {
	return d.Name + "-manifest.json"
}

// ManifestPath returns the absolute export manifest path.
func (d Descriptor) ManifestPath() string {
	return filepath.Join(d.Dir, d.ManifestFile())
}

// SnapshotPath returns the absolute snapshot file path.
func (d Descriptor) SnapshotPath() string {
	return filepath.Join(d.Dir, "snapshot.json")
}
