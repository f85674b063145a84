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
package inject

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"bennypowers.dev/scorta/fs"
	"bennypowers.dev/scorta/trace"
)

// Options configures file-level injection.
type Options struct {
	// Parallel is the number of parallel workers for batch mode.
	Parallel int
	// DryRun prevents writing files when true.
	DryRun bool
}

// Result holds the result of injecting into a single file.
type Result struct {
	File     string `json:"file"`
	Modified bool   `json:"modified"`
	Error    string `json:"error,omitempty"`
}

// Stats holds aggregate statistics from an inject operation.
type Stats struct {
	Total    int `json:"total"`
	Modified int `json:"modified"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// Files injects the given script sources into multiple HTML files in
// parallel. Each source becomes a <script src> tag in <head>, before any
// existing script, skipped when already present.
func Files(osfs fs.FileSystem, files []string, srcs []string, opts Options) <-chan Result {
	results := make(chan Result, len(files))

	go func() {
		defer close(results)

		parallel := opts.Parallel
		if parallel <= 0 {
			parallel = runtime.NumCPU()
		}

		jobs := make(chan string, len(files))

		var wg sync.WaitGroup
		for range parallel {
			wg.Go(func() {
				for htmlFile := range jobs {
					results <- injectFile(osfs, htmlFile, srcs, opts.DryRun)
				}
			})
		}

		for _, file := range files {
			jobs <- file
		}
		close(jobs)

		wg.Wait()
	}()

	return results
}

// injectFile processes a single HTML file and injects missing script tags.
func injectFile(osfs fs.FileSystem, htmlFile string, srcs []string, dryRun bool) Result {
	result := Result{File: htmlFile}

	content, err := osfs.ReadFile(htmlFile)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	newContent, err := Content(content, srcs)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if string(newContent) == string(content) {
		return result // No changes needed
	}

	result.Modified = true

	if !dryRun {
		if err := osfs.WriteFile(htmlFile, newContent, 0644); err != nil {
			result.Error = err.Error()
			return result
		}
	}

	return result
}

// Content returns HTML content with a <script src> tag for each missing
// source. Already-referenced sources are left alone, so re-running over
// generated output is idempotent. Sources are inserted in order, each
// before any previously existing script.
func Content(content []byte, srcs []string) ([]byte, error) {
	scripts, err := trace.ExtractScripts(content)
	if err != nil {
		return nil, err
	}

	present := make(map[string]struct{}, len(scripts))
	for _, script := range scripts {
		present[script.Src] = struct{}{}
	}

	var missing []string
	for _, src := range srcs {
		if _, ok := present[src]; !ok {
			missing = append(missing, src)
		}
	}
	if len(missing) == 0 {
		return content, nil
	}

	point, err := trace.FindInsertPoint(content)
	if err != nil {
		return nil, err
	}
	if !point.Found {
		return nil, fmt.Errorf("could not find insertion point (no <head> tag)")
	}

	var tags strings.Builder
	for _, src := range missing {
		fmt.Fprintf(&tags, "<script src=%q></script>\n", src)
		tags.WriteString(point.Indent)
	}

	var newContent []byte
	newContent = append(newContent, content[:point.Offset]...)
	newContent = append(newContent, tags.String()...)
	newContent = append(newContent, content[point.Offset:]...)

	return newContent, nil
}
