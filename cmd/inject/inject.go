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

// Package inject provides the inject command for scorta.
package inject

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/scorta/bundle"
	"bennypowers.dev/scorta/cdn"
	"bennypowers.dev/scorta/fs"
	"bennypowers.dev/scorta/inject"
	"bennypowers.dev/scorta/packagejson"
)

// Cmd is the inject command.
var Cmd = &cobra.Command{
	Use:   "inject",
	Short: "Add the vendor bundle script tag to HTML files in-place",
	Long: `Add a <script> tag referencing the vendor bundle to HTML files.

The tag is inserted into <head> before any existing script, so bundled
globals exist before application code runs. Files that already reference
the bundle are left untouched.`,
	Example: `  # Inject into all built HTML files
  scorta inject --glob "_site/**/*.html"

  # Custom script URL
  scorta inject --glob "_site/**/*.html" --src /assets/vendor.js

  # Parallel processing with custom worker count
  scorta inject --glob "_site/**/*.html" -j 8

  # Dry run to see what would change
  scorta inject --glob "_site/**/*.html" --dry-run

  # Reference dependencies from a CDN instead of the local bundle
  scorta inject --glob "_site/**/*.html" --cdn --provider unpkg`,
	RunE: run,
}

func init() {
	Cmd.Flags().String("glob", "", "Glob pattern to match HTML files (required)")
	Cmd.Flags().String("src", "", "Script URL to inject (default: /<dir>/<name>.js)")
	Cmd.Flags().String("dir", "", fmt.Sprintf("Output directory name (default: %s)", bundle.DefaultDirectoryName))
	Cmd.Flags().String("name", "", fmt.Sprintf("Bundle name (default: %s)", bundle.DefaultName))
	Cmd.Flags().IntP("jobs", "j", 0, "Number of parallel workers (default: number of CPUs)")
	Cmd.Flags().Bool("dry-run", false, "Show what would change without modifying files")
	Cmd.Flags().Bool("cdn", false, "Inject CDN script URLs for each dependency instead of the local bundle")
	Cmd.Flags().String("provider", "", fmt.Sprintf("CDN provider (%v)", cdn.ProviderNames()))
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
}

func run(cmd *cobra.Command, args []string) error {
	osfs := fs.NewOSFileSystem()

	globPattern, _ := cmd.Flags().GetString("glob")
	if globPattern == "" {
		return fmt.Errorf("--glob is required")
	}

	matches, err := doublestar.FilepathGlob(globPattern)
	if err != nil {
		return fmt.Errorf("invalid glob pattern: %w", err)
	}

	if len(matches) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no files matched the glob pattern")
		return nil
	}

	// Deduplicate by absolute path
	seen := make(map[string]struct{})
	var files []string
	for _, match := range matches {
		absPath, err := filepath.Abs(match)
		if err != nil {
			return fmt.Errorf("invalid file path %q: %w", match, err)
		}
		if _, exists := seen[absPath]; !exists {
			seen[absPath] = struct{}{}
			files = append(files, absPath)
		}
	}

	var srcs []string
	if useCDN, _ := cmd.Flags().GetBool("cdn"); useCDN {
		srcs, err = cdnScriptURLs(cmd, osfs)
		if err != nil {
			return err
		}
	} else {
		src, _ := cmd.Flags().GetString("src")
		if src == "" {
			dir, _ := cmd.Flags().GetString("dir")
			name, _ := cmd.Flags().GetString("name")
			opts := bundle.Options{DirectoryName: dir, Name: name}.WithDefaults()
			desc := bundle.NewDescriptor(opts)
			src = "/" + opts.DirectoryName + "/" + desc.AssetFile()
		}
		srcs = []string{src}
	}

	parallel, _ := cmd.Flags().GetInt("jobs")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	format, _ := cmd.Flags().GetString("format")

	opts := inject.Options{
		Parallel: parallel,
		DryRun:   dryRun,
	}

	results := inject.Files(osfs, files, srcs, opts)

	var stats inject.Stats
	stats.Total = len(files)

	encoder := json.NewEncoder(os.Stdout)
	for result := range results {
		if result.Error != "" {
			stats.Errors++
			if format == "json" {
				_ = encoder.Encode(result)
			} else {
				fmt.Fprintf(os.Stderr, "Error: %s: %s\n", result.File, result.Error)
			}
		} else if result.Modified {
			stats.Modified++
			if format == "json" {
				_ = encoder.Encode(result)
			} else if dryRun {
				fmt.Printf("would modify %s\n", result.File)
			}
		} else {
			stats.Skipped++
		}
	}

	// Output summary
	if format == "text" {
		if dryRun {
			fmt.Printf("\nDry run: %d files would be modified, %d unchanged, %d errors\n",
				stats.Modified, stats.Skipped, stats.Errors)
		} else {
			fmt.Printf("Injected: %d files modified, %d unchanged, %d errors\n",
				stats.Modified, stats.Skipped, stats.Errors)
		}
	} else {
		statsJSON, _ := json.Marshal(stats)
		fmt.Println(string(statsJSON))
	}

	if stats.Errors == stats.Total {
		return fmt.Errorf("all %d files failed", stats.Errors)
	}

	return nil
}

// cdnScriptURLs resolves the project's dependency manifest into provider
// script URLs, in manifest order.
func cdnScriptURLs(cmd *cobra.Command, osfs fs.FileSystem) ([]string, error) {
	base, err := filepath.Abs(viper.GetString("package"))
	if err != nil {
		return nil, err
	}

	manifest, err := packagejson.ReadManifest(osfs, base)
	if err != nil {
		return nil, err
	}

	var provider *cdn.Provider
	if name, _ := cmd.Flags().GetString("provider"); name != "" {
		provider = cdn.ProviderByName(name)
		if provider == nil {
			return nil, fmt.Errorf("unknown CDN provider %q (supported: %v)", name, cdn.ProviderNames())
		}
	}

	refs, err := cdn.NewProviderResolver(provider, nil).ResolveAll(cmd.Context(), manifest)
	if err != nil {
		return nil, err
	}

	srcs := make([]string, len(refs))
	for i, ref := range refs {
		srcs[i] = ref.URL
	}
	return srcs, nil
}
