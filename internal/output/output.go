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

// Package output provides shared output utilities for scorta CLI commands.
package output

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/viper"

	"bennypowers.dev/scorta/fs"
)

// Text writes a text report to stdout or, if viper's "output" flag is set,
// to that file.
func Text(osfs fs.FileSystem, report string) error {
	if outputPath := viper.GetString("output"); outputPath != "" {
		return osfs.WriteFile(outputPath, []byte(report+"\n"), 0644)
	}
	fmt.Println(report)
	return nil
}

// JSON marshals a report value and writes it to stdout or, if viper's
// "output" flag is set, to that file.
func JSON(osfs fs.FileSystem, report any) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return Text(osfs, string(data))
}

// Report writes a report in the requested format ("json" or "text"). The
// text form is produced by the value's String method via %v.
func Report(osfs fs.FileSystem, report any, format string) error {
	if format == "json" {
		return JSON(osfs, report)
	}
	return Text(osfs, fmt.Sprintf("%v", report))
}
