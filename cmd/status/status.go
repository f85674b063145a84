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

// Package status provides the status command for scorta.
package status

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/scorta/bundle"
	"bennypowers.dev/scorta/fs"
	"bennypowers.dev/scorta/internal/output"
	"bennypowers.dev/scorta/packagejson"
	"bennypowers.dev/scorta/snapshot"
)

// Cmd is the status command: it reports whether the cached vendor bundle is
// current without building anything.
var Cmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the vendor bundle is up to date",
	Long: `Compare package.json dependencies against the cached snapshot and
report whether the next build would recompile the vendor bundle.`,
	Example: `  # Human-readable status
  scorta status

  # Machine-readable status
  scorta status --format json`,
	RunE: run,
}

func init() {
	Cmd.Flags().String("dir", "", fmt.Sprintf("Output directory name (default: %s)", bundle.DefaultDirectoryName))
	Cmd.Flags().String("name", "", fmt.Sprintf("Bundle name (default: %s)", bundle.DefaultName))
	Cmd.Flags().StringSlice("include", nil, "Packages bundled in addition to dependencies")
	Cmd.Flags().StringSlice("exclude", nil, "Packages left out of the bundle")
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
}

// Report summarizes the cache state for one bundle directory.
type Report struct {
	State        string   `json:"state"`
	Asset        string   `json:"asset"`
	Snapshot     string   `json:"snapshot"`
	Dependencies []string `json:"dependencies"`
}

func (r Report) String() string {
	return fmt.Sprintf("%s: %s (%d dependencies)", r.State, r.Asset, len(r.Dependencies))
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
	format, _ := cmd.Flags().GetString("format")

	opts := bundle.Options{
		Base:          absBase,
		DirectoryName: dir,
		Name:          name,
		Include:       include,
		Exclude:       exclude,
	}.WithDefaults()

	manifest, err := packagejson.ReadManifest(osfs, absBase)
	if err != nil {
		return err
	}

	desc := bundle.NewDescriptor(opts)
	store := snapshot.NewStore(osfs, desc.SnapshotPath())

	report := Report{
		Asset:        desc.AssetPath(),
		Snapshot:     desc.SnapshotPath(),
		Dependencies: bundle.MergeEntries(manifest, opts.Include, opts.Exclude),
	}

	cached, ok := store.Load()
	switch {
	case !ok:
		report.State = "missing"
	case snapshot.NeedsRebuild(manifest, cached):
		report.State = "stale"
	default:
		report.State = "current"
	}

	return output.Report(osfs, report, format)
}
