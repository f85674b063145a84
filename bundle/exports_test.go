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
package bundle_test

import (
	"errors"
	"reflect"
	"testing"

	"bennypowers.dev/scorta/bundle"
	"bennypowers.dev/scorta/internal/mapfs"
	"bennypowers.dev/scorta/packagejson"
)

func TestExportListerReadsEntryModule(t *testing.T) {
	fs := mapfs.New()
	fs.AddFile("/project/node_modules/widget/package.json",
		`{"name":"widget","version":"1.0.0","module":"dist/index.js"}`, 0644)
	fs.AddFile("/project/node_modules/widget/dist/index.js",
		"export function render() {}\nexport const version = '1.0.0';\n", 0644)

	lister := bundle.NewExportLister(fs, "/project", nil)

	exports, err := lister.ListExports("widget")
	if err != nil {
		t.Fatalf("ListExports() error = %v", err)
	}
	want := []string{"render", "version"}
	if !reflect.DeepEqual(exports, want) {
		t.Errorf("ListExports() = %v, want %v", exports, want)
	}
}

func TestExportListerCachesDescriptor(t *testing.T) {
	fs := mapfs.New()
	fs.AddFile("/project/node_modules/widget/package.json",
		`{"name":"widget","version":"1.0.0","main":"index.js"}`, 0644)
	fs.AddFile("/project/node_modules/widget/index.js",
		"export default widget;\n", 0644)

	loads := 0
	cache := countingCache{Cache: packagejson.NewMemoryCache(), loads: &loads}
	lister := bundle.NewExportLister(fs, "/project", cache)

	for range 3 {
		if _, err := lister.ListExports("widget"); err != nil {
			t.Fatalf("ListExports() error = %v", err)
		}
	}
	if loads != 1 {
		t.Errorf("descriptor loaded %d times, want 1", loads)
	}
}

func TestExportListerMissingDependency(t *testing.T) {
	fs := mapfs.New()
	lister := bundle.NewExportLister(fs, "/project", nil)

	if _, err := lister.ListExports("ghost"); !errors.Is(err, packagejson.ErrNoDescriptor) {
		t.Errorf("ListExports() error = %v, want ErrNoDescriptor", err)
	}
}

// countingCache wraps a Cache and counts loader invocations.
type countingCache struct {
	packagejson.Cache
	loads *int
}

func (c countingCache) GetOrLoad(path string, loader func() (*packagejson.PackageJSON, error)) (*packagejson.PackageJSON, error) {
	return c.Cache.GetOrLoad(path, func() (*packagejson.PackageJSON, error) {
		*c.loads++
		return loader()
	})
}
