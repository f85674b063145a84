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

// Package watch provides the watch command for scorta.
package watch

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/scorta/bundle"
	"bennypowers.dev/scorta/bundler"
	"bennypowers.dev/scorta/fs"
	"bennypowers.dev/scorta/internal/logger"
	"bennypowers.dev/scorta/packagejson"
	"bennypowers.dev/scorta/snapshot"
	"bennypowers.dev/scorta/watch"
)

// Cmd is the watch command: it rebuilds the vendor bundle whenever
// package.json changes, until interrupted.
var Cmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the vendor bundle when package.json changes",
	Long: `Watch package.json and rebuild the vendor bundle when its
modification time changes. An initial check runs immediately. Stop with
Ctrl-C.`,
	Example: `  # Watch the current project
  scorta watch

  # Watch with verbose logging
  scorta watch --log verbose`,
	RunE: run,
}

func init() {
	Cmd.Flags().String("dir", "", fmt.Sprintf("Output directory name (default: %s)", bundle.DefaultDirectoryName))
	Cmd.Flags().String("name", "", fmt.Sprintf("Bundle name (default: %s)", bundle.DefaultName))
	Cmd.Flags().StringSlice("include", nil, "Packages to bundle in addition to dependencies")
	Cmd.Flags().StringSlice("exclude", nil, "Packages to leave out of the bundle")
	Cmd.Flags().Bool("minify", false, "Minify the bundle output")
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
	minify, _ := cmd.Flags().GetBool("minify")

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
	session := bundle.NewSession(osfs, builder, store, absBase, log)

	descriptorPath := filepath.Join(absBase, packagejson.DescriptorName)
	watcher := watch.New(osfs, session, descriptorPath, log)
	loop := watch.NewLoop(watcher, descriptorPath, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Build before watching, so a cold cache is served immediately and
	// the loop only has to react to subsequent descriptor changes.
	if err := session.Ensure(ctx); err != nil {
		return err
	}

	return loop.Run(ctx)
}
