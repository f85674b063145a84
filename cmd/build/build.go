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

// Package build provides the build command for scorta.
package build

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/scorta/bundle"
	"bennypowers.dev/scorta/bundler"
	"bennypowers.dev/scorta/fs"
	"bennypowers.dev/scorta/internal/logger"
	"bennypowers.dev/scorta/internal/output"
	"bennypowers.dev/scorta/packagejson"
	"bennypowers.dev/scorta/snapshot"
)

// Cmd is the build command: it compiles the vendor bundle when the installed
// dependency set drifted from the cached snapshot.
var Cmd = &cobra.Command{
	Use:   "build",
	Short: "Build the vendor bundle if dependencies changed",
	Long: `Build the vendor dependency bundle.

Reads package.json dependencies, compares them against the cached snapshot,
and recompiles the bundle only when they differ. Use --force to rebuild
unconditionally.`,
	Example: `  # Build if dependencies changed
  scorta build

  # Rebuild unconditionally
  scorta build --force

  # Bundle extra packages alongside dependencies
  scorta build --include fuse.js --exclude fsevents

  # Minified output under a custom directory
  scorta build --dir .vendor --minify`,
	RunE: run,
}

func init() {
	Cmd.Flags().String("dir", "", fmt.Sprintf("Output directory name (default: %s)", bundle.DefaultDirectoryName))
	Cmd.Flags().String("name", "", fmt.Sprintf("Bundle name (default: %s)", bundle.DefaultName))
	Cmd.Flags().StringSlice("include", nil, "Packages to bundle in addition to dependencies")
	Cmd.Flags().StringSlice("exclude", nil, "Packages to leave out of the bundle")
	Cmd.Flags().Bool("force", false, "Rebuild even if the snapshot is current")
	Cmd.Flags().Bool("minify", false, "Minify the bundle output")
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
}

// Report summarizes a build command run.
type Report struct {
	State string `json:"state"`
	Asset string `json:"asset"`
}

func (r Report) String() string {
	return fmt.Sprintf("%s: %s", r.State, r.Asset)
}

func run(cmd *cobra.Command, args []string) error {
	osfs := fs.NewOSFileSystem()

	absBase, err := filepath.Abs(viper.GetString("package"))
	if err != nil {
		return fmt.Errorf("invalid package directory: %w", err)
	}

	include, _ := cmd.Flags().GetStringSlice("include")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	dir, _ := cmd.Flags().GetString("dir")
	name, _ := cmd.Flags().GetString("name")
	force, _ := cmd.Flags().GetBool("force")
	minify, _ := cmd.Flags().GetBool("minify")
	format, _ := cmd.Flags().GetString("format")

	opts := bundle.Options{
		Base:          absBase,
		DirectoryName: dir,
		Name:          name,
		Include:       include,
		Exclude:       exclude,
		Log:           viper.GetString("log"),
	}.WithDefaults()

	log := logger.New(opts.Log)

	esb := bundler.NewEsbuild(osfs)
	if minify {
		esb = esb.WithMinify()
	}

	desc := bundle.NewDescriptor(opts)
	store := snapshot.NewStore(osfs, desc.SnapshotPath())
	builder := bundle.NewBuilder(osfs, esb, store, opts).
		WithLogger(log).
		WithExportLister(bundle.NewExportLister(osfs, absBase, nil))

	ctx := cmd.Context()
	if force {
		manifest, err := packagejson.ReadManifest(osfs, absBase)
		if err != nil {
			return err
		}
		if err := builder.Build(ctx, manifest); err != nil {
			return err
		}
		return output.Report(osfs, Report{State: "built", Asset: desc.AssetPath()}, format)
	}

	session := bundle.NewSession(osfs, builder, store, absBase, log)
	if err := session.Ensure(ctx); err != nil {
		return err
	}
	return output.Report(osfs, Report{State: session.State().String(), Asset: desc.AssetPath()}, format)
}
