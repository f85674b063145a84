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
package bundler

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"bennypowers.dev/scorta/fs"
)

// Esbuild implements Bundler using the esbuild Go API.
//
// Each bundle compiles to an IIFE whose global name is the bundle name, so
// application builds can reference bundled modules as properties of that
// global instead of re-bundling them.
type Esbuild struct {
	fs     fs.FileSystem
	minify bool
}

// NewEsbuild creates an esbuild-backed bundler writing through fsys.
func NewEsbuild(fsys fs.FileSystem) *Esbuild {
	return &Esbuild{fs: fsys}
}

// WithMinify enables whitespace and identifier minification.
func (e *Esbuild) WithMinify() *Esbuild {
	return &Esbuild{fs: e.fs, minify: true}
}

// Build compiles the invocation's dependency set. The bundle asset and the
// export manifest are written through the FileSystem so both artifacts land
// together; esbuild itself never touches the disk.
func (e *Esbuild) Build(ctx context.Context, inv Invocation) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	build := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   EntrySource(inv.Deps),
			ResolveDir: inv.ResolveDir,
			Sourcefile: inv.Name + "-entry.js",
			Loader:     api.LoaderJS,
		},
		Bundle:            true,
		Write:             false,
		Outfile:           inv.AssetPath,
		Format:            api.FormatIIFE,
		GlobalName:        inv.Name,
		Platform:          api.PlatformBrowser,
		LogLevel:          api.LogLevelSilent,
		MinifyWhitespace:  e.minify,
		MinifyIdentifiers: e.minify,
		MinifySyntax:      e.minify,
	})

	result := &Result{
		Warnings: api.FormatMessages(build.Warnings, api.FormatMessagesOptions{
			Kind: api.WarningMessage,
		}),
	}

	if len(build.Errors) > 0 {
		return nil, &BuildError{
			Diagnostics: api.FormatMessages(build.Errors, api.FormatMessagesOptions{
				Kind: api.ErrorMessage,
			}),
		}
	}

	if len(build.OutputFiles) == 0 {
		return nil, fmt.Errorf("bundler produced no output for %q", inv.Name)
	}

	if err := e.fs.WriteFile(inv.AssetPath, build.OutputFiles[0].Contents, 0644); err != nil {
		return nil, fmt.Errorf("writing bundle asset: %w", err)
	}

	manifest, err := encodeManifest(inv.Name, inv.Deps, inv.Exports)
	if err != nil {
		return nil, err
	}
	if err := e.fs.WriteFile(inv.ManifestPath, manifest, 0644); err != nil {
		return nil, fmt.Errorf("writing export manifest: %w", err)
	}

	return result, nil
}

// EntrySource generates the synthetic entry module for a dependency set.
// Each dependency becomes a property of the bundle's exports object keyed
// by its bare specifier, so consumers address it as <global>["<name>"].
func EntrySource(deps []string) string {
	var b strings.Builder
	b.WriteString("module.exports = {\n")
	for _, dep := range deps {
		fmt.Fprintf(&b, "  %q: require(%q),\n", dep, dep)
	}
	b.WriteString("};\n")
	return b.String()
}

// encodeManifest builds the export manifest document for one bundle.
func encodeManifest(name string, deps []string, exports map[string][]string) ([]byte, error) {
	m := ExportManifest{
		Name:    name,
		Content: make(map[string]ModuleExports, len(deps)),
	}
	for _, dep := range deps {
		exp := exports[dep]
		if len(exp) == 0 {
			exp = []string{"default"}
		} else {
			exp = append([]string(nil), exp...)
			sort.Strings(exp)
		}
		m.Content[dep] = ModuleExports{Exports: exp}
	}

	data, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export manifest: %w", err)
	}
	return append(data, '\n'), nil
}
