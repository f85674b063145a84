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
	"path/filepath"

	"bennypowers.dev/scorta/fs"
	"bennypowers.dev/scorta/packagejson"
	"bennypowers.dev/scorta/trace"
)

// ExportLister enumerates the named exports of an installed dependency, to
// enrich the export manifest beyond the bundler's default entry.
type ExportLister interface {
	ListExports(name string) ([]string, error)
}

// entryExportLister reads a dependency's entry module from node_modules and
// extracts its export names syntactically.
type entryExportLister struct {
	fs    fs.FileSystem
	base  string
	cache packagejson.Cache
}

// NewExportLister creates an ExportLister rooted at the project base. The
// cache keeps repeated builds from re-parsing node_modules descriptors.
func NewExportLister(fsys fs.FileSystem, base string, cache packagejson.Cache) ExportLister {
	if cache == nil {
		cache = packagejson.NewMemoryCache()
	}
	return &entryExportLister{fs: fsys, base: base, cache: cache}
}

func (l *entryExportLister) ListExports(name string) ([]string, error) {
	pkgDir := filepath.Join(l.base, "node_modules", name)
	pkgPath := filepath.Join(pkgDir, packagejson.DescriptorName)

	pkg, err := l.cache.GetOrLoad(pkgPath, func() (*packagejson.PackageJSON, error) {
		return packagejson.ParseFile(l.fs, pkgPath)
	})
	if err != nil {
		return nil, err
	}

	src, err := l.fs.ReadFile(filepath.Join(pkgDir, pkg.EntryFile()))
	if err != nil {
		return nil, err
	}

	return trace.ExtractExports(src)
}
