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

// Package hostcfg rewires the host build configuration around a prebuilt
// vendor bundle: application compilation references the bundle's exports
// externally instead of re-bundling them, static serving can find the
// bundle directory, and hooks inject the bundle into HTML output and
// re-check the descriptor on watch cycles.
package hostcfg

import (
	"context"
	"maps"
	"slices"

	"bennypowers.dev/scorta/watch"
)

// Hook is a declared-capability registration in the host build lifecycle.
// Hosts inspect which capability interfaces a hook satisfies instead of
// duck-typing an apply method.
type Hook interface {
	Name() string
}

// BeforeCompileHook runs after all plugins are installed, before the main
// compilation starts.
type BeforeCompileHook interface {
	Hook
	BeforeCompile(ctx context.Context, c *Compilation) error
}

// HTMLHook runs before HTML generation and may reorder or extend the
// ordered script-reference list.
type HTMLHook interface {
	Hook
	BeforeHTMLGeneration(assets []string) []string
}

// WatchCycleHook runs once per incremental build cycle.
type WatchCycleHook interface {
	Hook
	OnWatchCycle(ctx context.Context, cycle *watch.Cycle) error
}

// Compilation is the per-compilation state hooks may contribute to.
type Compilation struct {
	// Externals maps module specifiers to runtime expressions the
	// bundler substitutes instead of compiling the module in.
	Externals map[string]string
}

// EntryFunc is a callable entry shape: the host invokes it lazily to
// compute entry inputs. Extra arguments are additional watched inputs.
type EntryFunc func(extra ...string) any

// Config is the host build configuration surface this plugin consumes and
// produces. Prepare never mutates its input; it returns a new value.
type Config struct {
	// Entry is the host's entry input declaration:
	// string, []string, map[string][]string, or EntryFunc.
	Entry any

	// Module holds transformation rules, forwarded unchanged.
	Module map[string]any

	// Output holds output settings, forwarded unchanged.
	Output map[string]any

	// Externals maps module specifiers to runtime global expressions.
	Externals map[string]string

	// Static is the static-file-serving search path: string, []string,
	// or nil.
	Static any

	// Hooks are the registered build lifecycle hooks.
	Hooks []Hook

	// Options carries raw plugin options; Prepare strips the keys this
	// plugin recognizes so they do not leak into the external bundler's
	// own option validation.
	Options map[string]any
}

// OptionKeys are the configuration keys this plugin recognizes and removes
// from the host options during Prepare.
var OptionKeys = []string{"base", "dllDirectoryName", "dllName", "include", "exclude", "log"}

// Clone returns a copy of the config with its maps and slices duplicated
// one level deep, so the caller's value stays untouched.
func (c Config) Clone() Config {
	next := c
	next.Module = maps.Clone(c.Module)
	next.Output = maps.Clone(c.Output)
	next.Externals = maps.Clone(c.Externals)
	next.Hooks = slices.Clone(c.Hooks)
	next.Options = maps.Clone(c.Options)
	if static, ok := c.Static.([]string); ok {
		next.Static = slices.Clone(static)
	}
	return next
}

// withoutOptionKeys returns options minus the plugin-specific keys.
func withoutOptionKeys(options map[string]any) map[string]any {
	if options == nil {
		return nil
	}
	next := maps.Clone(options)
	for _, key := range OptionKeys {
		delete(next, key)
	}
	return next
}

// mergeStatic merges the bundle directory into the static search path:
// a single string promotes to [existing, dir]; a list appends dir; absent
// becomes [dir]. No duplicate check is performed, matching the host's own
// append semantics; callers should not Prepare the same config twice.
func mergeStatic(static any, dir string) []string {
	switch v := static.(type) {
	case nil:
		return []string{dir}
	case string:
		return []string{v, dir}
	case []string:
		return append(slices.Clone(v), dir)
	case []any:
		out := make([]string, 0, len(v)+1)
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return append(out, dir)
	default:
		return []string{dir}
	}
}

// ensureWatchedEntry returns an entry declaration guaranteed to include the
// descriptor path among watched inputs, across all supported entry shapes.
// Callable entries are invoked with the descriptor path and their result is
// used directly.
func ensureWatchedEntry(entry any, descriptor string) any {
	switch v := entry.(type) {
	case nil:
		return []string{descriptor}
	case string:
		return []string{v, descriptor}
	case []string:
		if slices.Contains(v, descriptor) {
			return v
		}
		return append(slices.Clone(v), descriptor)
	case map[string][]string:
		next := make(map[string][]string, len(v))
		for name, inputs := range v {
			if slices.Contains(inputs, descriptor) {
				next[name] = inputs
				continue
			}
			next[name] = append(slices.Clone(inputs), descriptor)
		}
		return next
	case EntryFunc:
		return v(descriptor)
	default:
		return entry
	}
}
