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

// Package resolve provides the resolve command for scorta.
package resolve

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/scorta/cdn"
	"bennypowers.dev/scorta/fs"
	"bennypowers.dev/scorta/internal/output"
	"bennypowers.dev/scorta/packagejson"
)

// Cmd is the resolve command: it maps package.json dependencies to
// CDN-hosted scripts, as an alternative to bundling them locally.
var Cmd = &cobra.Command{
	Use:   "resolve [package...]",
	Short: "Resolve dependencies to CDN script URLs",
	Long: `Resolve dependencies to CDN-hosted browser scripts.

With no arguments, resolves every package.json dependency. With arguments,
resolves only the named packages at the version ranges package.json pins,
or at latest for packages not listed there.`,
	Example: `  # Resolve all dependencies against jsDelivr
  scorta resolve

  # Resolve specific packages against unpkg
  scorta resolve jquery lodash --provider unpkg

  # Machine-readable output
  scorta resolve --format json`,
	RunE: run,
}

func init() {
	Cmd.Flags().String("provider", "", fmt.Sprintf("CDN provider (%s)", strings.Join(cdn.ProviderNames(), ", ")))
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
}

func run(cmd *cobra.Command, args []string) error {
	osfs := fs.NewOSFileSystem()

	absRoot, err := filepath.Abs(viper.GetString("package"))
	if err != nil {
		return fmt.Errorf("invalid package directory: %w", err)
	}

	providerName, _ := cmd.Flags().GetString("provider")
	format, _ := cmd.Flags().GetString("format")

	provider := &cdn.DefaultProvider
	if providerName != "" {
		provider = cdn.ProviderByName(providerName)
		if provider == nil {
			return fmt.Errorf("unknown CDN provider %q: must be one of %s",
				providerName, strings.Join(cdn.ProviderNames(), ", "))
		}
	}

	manifest, err := packagejson.ReadManifest(osfs, absRoot)
	if err != nil {
		return err
	}

	resolver := cdn.NewProviderResolver(provider, nil)
	ctx := cmd.Context()

	var refs []*cdn.ScriptRef
	if len(args) == 0 {
		refs, err = resolver.ResolveAll(ctx, manifest)
		if err != nil {
			return err
		}
	} else {
		for _, name := range args {
			rng, ok := manifest.Range(name)
			if !ok {
				rng = "latest"
			}
			ref, err := resolver.Resolve(ctx, name, rng)
			if err != nil {
				return err
			}
			refs = append(refs, ref)
		}
	}

	if format == "json" {
		return output.JSON(osfs, refs)
	}
	var b strings.Builder
	for i, ref := range refs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s@%s\t%s\t(window.%s)", ref.Package, ref.Version, ref.URL, ref.Global)
	}
	return output.Text(osfs, b.String())
}
