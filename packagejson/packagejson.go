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
// Package packagejson provides parsing of project dependency descriptors.
package packagejson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	scortafs "bennypowers.dev/scorta/fs"
)

// DescriptorName is the conventional project descriptor filename.
const DescriptorName = "package.json"

// ErrNoDescriptor is returned when the project descriptor cannot be found.
var ErrNoDescriptor = errors.New("package.json not found")

// PackageJSON represents the subset of package.json relevant for vendor bundling.
type PackageJSON struct {
	Name            string    `json:"name"`
	Version         string    `json:"version"`
	Main            string    `json:"main,omitempty"`
	Module          string    `json:"module,omitempty"`
	Dependencies    *Manifest `json:"dependencies,omitempty"`
	DevDependencies *Manifest `json:"devDependencies,omitempty"`
}

// EntryFile returns the package's entry module path, preferring the ESM
// "module" field over "main", defaulting to index.js.
func (pkg *PackageJSON) EntryFile() string {
	switch {
	case pkg.Module != "":
		return strings.TrimPrefix(pkg.Module, "./")
	case pkg.Main != "":
		return strings.TrimPrefix(pkg.Main, "./")
	default:
		return "index.js"
	}
}

// Parse parses package.json data.
func Parse(data []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ParseFile parses a package.json file.
func ParseFile(fsys scortafs.FileSystem, path string) (*PackageJSON, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoDescriptor, path)
		}
		return nil, err
	}
	return Parse(data)
}

// ReadManifest reads the dependencies mapping from the descriptor in dir.
// The returned manifest is a fresh snapshot of the document; callers re-read
// on every check cycle rather than holding onto a stale copy.
func ReadManifest(fsys scortafs.FileSystem, dir string) (*Manifest, error) {
	pkg, err := ParseFile(fsys, filepath.Join(dir, DescriptorName))
	if err != nil {
		return nil, err
	}
	if pkg.Dependencies == nil {
		return NewManifest(), nil
	}
	return pkg.Dependencies, nil
}

// Manifest is an ordered mapping from dependency name to declared version
// range. Iteration order is the descriptor's document order; equality is
// order-insensitive over the name→range pairs.
type Manifest struct {
	names  []string
	ranges map[string]string
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{ranges: make(map[string]string)}
}

// Set records a name→range pair, preserving first-seen order.
func (m *Manifest) Set(name, verRange string) {
	if m.ranges == nil {
		m.ranges = make(map[string]string)
	}
	if _, seen := m.ranges[name]; !seen {
		m.names = append(m.names, name)
	}
	m.ranges[name] = verRange
}

// Names returns dependency names in document order.
func (m *Manifest) Names() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Range returns the declared version range for a dependency.
func (m *Manifest) Range(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	r, ok := m.ranges[name]
	return r, ok
}

// Len returns the number of dependencies in the manifest.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Equal reports whether two manifests contain the same name→range pairs.
// Document order is irrelevant: reordering dependencies in package.json
// must not invalidate the cached bundle.
func (m *Manifest) Equal(other *Manifest) bool {
	if m.Len() != other.Len() {
		return false
	}
	if m == nil || other == nil {
		return true
	}
	for name, r := range m.ranges {
		if or, ok := other.ranges[name]; !ok || or != r {
			return false
		}
	}
	return true
}

// MarshalJSON emits the mapping as a JSON object in document order.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.ranges[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object, preserving key order.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("dependencies: expected object, got %v", tok)
	}

	m.names = nil
	m.ranges = make(map[string]string)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("dependencies: expected string key, got %v", keyTok)
		}

		var val string
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("dependencies[%q]: %w", key, err)
		}

		m.Set(key, val)
	}

	// Consume closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}

	return nil
}
