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
package bundler_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/scorta/fs"
)

func newOSFS(t *testing.T) fs.FileSystem {
	t.Helper()
	return fs.NewOSFileSystem()
}

// writeModule lays out a minimal installed package under dir/node_modules so
// esbuild can resolve its bare specifier.
func writeModule(t *testing.T, dir, name, source string) {
	t.Helper()

	pkgDir := filepath.Join(dir, "node_modules", name)
	if err := os.MkdirAll(pkgDir, 0755); err != nil {
		t.Fatalf("Failed to create module dir: %v", err)
	}

	pkgJSON := fmt.Sprintf(`{"name": %q, "version": "1.0.0", "main": "index.js"}`, name)
	if err := os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(pkgJSON), 0644); err != nil {
		t.Fatalf("Failed to write package.json: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, "index.js"), []byte(source), 0644); err != nil {
		t.Fatalf("Failed to write module source: %v", err)
	}
}
