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
package packagejson_test

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"bennypowers.dev/scorta/internal/mapfs"
	"bennypowers.dev/scorta/packagejson"
)

func TestParse(t *testing.T) {
	data := `{
		"name": "app",
		"version": "1.0.0",
		"main": "./dist/main.js",
		"dependencies": {
			"jquery": "^3.7.0",
			"lodash": "~4.17.21"
		},
		"devDependencies": {
			"webpack": "^5.0.0"
		}
	}`

	pkg, err := packagejson.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if pkg.Name != "app" {
		t.Errorf("Expected name app, got %q", pkg.Name)
	}
	if got := pkg.Dependencies.Names(); !slices.Equal(got, []string{"jquery", "lodash"}) {
		t.Errorf("Expected dependencies in document order, got %v", got)
	}
	if r, ok := pkg.Dependencies.Range("jquery"); !ok || r != "^3.7.0" {
		t.Errorf("Expected jquery range ^3.7.0, got %q (%v)", r, ok)
	}
	if pkg.DevDependencies.Len() != 1 {
		t.Errorf("Expected 1 devDependency, got %d", pkg.DevDependencies.Len())
	}
}

func TestParseFileMissing(t *testing.T) {
	mfs := mapfs.New()

	_, err := packagejson.ParseFile(mfs, "/app/package.json")
	if !errors.Is(err, packagejson.ErrNoDescriptor) {
		t.Errorf("Expected ErrNoDescriptor, got %v", err)
	}
}

func TestEntryFile(t *testing.T) {
	tests := []struct {
		name string
		pkg  packagejson.PackageJSON
		want string
	}{
		{"module preferred", packagejson.PackageJSON{Module: "./esm/index.js", Main: "dist/cjs.js"}, "esm/index.js"},
		{"main fallback", packagejson.PackageJSON{Main: "./dist/cjs.js"}, "dist/cjs.js"},
		{"default", packagejson.PackageJSON{}, "index.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pkg.EntryFile(); got != tt.want {
				t.Errorf("EntryFile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadManifest(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/app/package.json", `{
		"name": "app",
		"dependencies": {"b": "^2.0.0", "a": "^1.0.0"}
	}`, 0644)

	manifest, err := packagejson.ReadManifest(mfs, "/app")
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}

	if got := manifest.Names(); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("Expected document order [b a], got %v", got)
	}
}

func TestReadManifestNoDependencies(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/app/package.json", `{"name": "app"}`, 0644)

	manifest, err := packagejson.ReadManifest(mfs, "/app")
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if manifest.Len() != 0 {
		t.Errorf("Expected empty manifest, got %v", manifest.Names())
	}
}

func TestManifestEqual(t *testing.T) {
	build := func(pairs ...[2]string) *packagejson.Manifest {
		m := packagejson.NewManifest()
		for _, p := range pairs {
			m.Set(p[0], p[1])
		}
		return m
	}

	tests := []struct {
		name string
		a, b *packagejson.Manifest
		want bool
	}{
		{
			"same pairs same order",
			build([2]string{"a", "^1"}, [2]string{"b", "^2"}),
			build([2]string{"a", "^1"}, [2]string{"b", "^2"}),
			true,
		},
		{
			"same pairs different order",
			build([2]string{"a", "^1"}, [2]string{"b", "^2"}),
			build([2]string{"b", "^2"}, [2]string{"a", "^1"}),
			true,
		},
		{
			"changed range",
			build([2]string{"a", "^1"}),
			build([2]string{"a", "^2"}),
			false,
		},
		{
			"added dependency",
			build([2]string{"a", "^1"}),
			build([2]string{"a", "^1"}, [2]string{"b", "^2"}),
			false,
		},
		{
			"removed dependency",
			build([2]string{"a", "^1"}, [2]string{"b", "^2"}),
			build([2]string{"a", "^1"}),
			false,
		},
		{
			"both empty",
			build(),
			build(),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("Equal() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestManifestJSONRoundTrip(t *testing.T) {
	in := `{"zebra":"^3.0.0","alpha":"^1.0.0","middle":"~2.1.0"}`

	var m packagejson.Manifest
	if err := json.Unmarshal([]byte(in), &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got := m.Names(); !slices.Equal(got, []string{"zebra", "alpha", "middle"}) {
		t.Errorf("Expected document order preserved, got %v", got)
	}

	out, err := json.Marshal(&m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != in {
		t.Errorf("Round trip changed document:\n in: %s\nout: %s", in, out)
	}
}

func TestManifestUnmarshalRejectsNonObject(t *testing.T) {
	var m packagejson.Manifest
	if err := json.Unmarshal([]byte(`["a"]`), &m); err == nil {
		t.Error("Expected error for non-object dependencies")
	}
}

func TestManifestSetOverwrite(t *testing.T) {
	m := packagejson.NewManifest()
	m.Set("a", "^1")
	m.Set("b", "^2")
	m.Set("a", "^3")

	if got := m.Names(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Expected first-seen order [a b], got %v", got)
	}
	if r, _ := m.Range("a"); r != "^3" {
		t.Errorf("Expected overwritten range ^3, got %q", r)
	}
}
