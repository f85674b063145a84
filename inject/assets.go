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

// Package inject places vendor bundle script references into HTML output:
// either into the host build's ordered script-reference list right before
// HTML generation, or directly into HTML files on disk.
package inject

import "slices"

// Scripts returns the reference list with asset at the front. The vendor
// bundle must load before application scripts that reference its globals.
// When the asset is already present the list is returned unchanged, so
// repeated generation passes within one process never duplicate the entry.
func Scripts(refs []string, asset string) []string {
	if slices.Contains(refs, asset) {
		return refs
	}
	out := make([]string, 0, len(refs)+1)
	out = append(out, asset)
	out = append(out, refs...)
	return out
}

// Hook prepends the bundle asset to the script-reference list before HTML
// generation. It satisfies the host configuration's HTML hook capability.
type Hook struct {
	asset string
}

// NewHook creates an HTML generation hook for the given asset filename.
func NewHook(asset string) *Hook {
	return &Hook{asset: asset}
}

// Name identifies the hook in host build diagnostics.
func (h *Hook) Name() string {
	return "scorta-inject"
}

// BeforeHTMLGeneration implements the HTML hook capability.
func (h *Hook) BeforeHTMLGeneration(assets []string) []string {
	return Scripts(assets, h.asset)
}
