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
package bundle

import "bennypowers.dev/scorta/packagejson"

// MergeEntries computes the ordered dependency list for one bundle build:
// declared dependencies in descriptor order, then the include list, minus
// the exclude list, each name appearing once in first-seen order.
func MergeEntries(manifest *packagejson.Manifest, include, exclude []string) []string {
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
	}

	seen := make(map[string]struct{})
	var entries []string
	add := func(name string) {
		if _, skip := excluded[name]; skip {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		entries = append(entries, name)
	}

	for _, name := range manifest.Names() {
		add(name)
	}
	for _, name := range include {
		add(name)
	}

	return entries
}
