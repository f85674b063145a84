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

package cdn

import (
	"context"
	"fmt"
	"strings"

	"bennypowers.dev/scorta/packagejson"
)

// ScriptRef is a resolved browser script for a package: the URL to load it
// from and the global variable name its UMD build attaches to window.
type ScriptRef struct {
	Package string `json:"package"`
	Version string `json:"version"`
	URL     string `json:"url"`
	Global  string `json:"global"`
}

// Resolver resolves a package name and version range to a CDN script.
type Resolver interface {
	Resolve(ctx context.Context, pkgName, version string) (*ScriptRef, error)
}

// globalOverrides maps well-known package names to the window globals their
// UMD builds export, where the name cannot be derived mechanically.
var globalOverrides = map[string]string{
	"jquery":     "jQuery",
	"lodash":     "_",
	"underscore": "_",
	"react":      "React",
	"react-dom":  "ReactDOM",
	"vue":        "Vue",
	"angular":    "angular",
	"backbone":   "Backbone",
	"moment":     "moment",
	"d3":         "d3",
	"three":      "THREE",
	"rxjs":       "rxjs",
	"axios":      "axios",
	"handlebars": "Handlebars",
	"immutable":  "Immutable",
}

// GlobalName returns the window global a package's UMD build is expected to
// attach. Known packages use an override table; otherwise the name is
// camel-cased from the package name (scope prefix stripped, separators
// capitalizing the following letter).
func GlobalName(pkgName string) string {
	if global, ok := globalOverrides[pkgName]; ok {
		return global
	}
	name := pkgName
	if strings.HasPrefix(name, "@") {
		if idx := strings.Index(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
	}
	var b strings.Builder
	upper := false
	for _, r := range name {
		switch r {
		case '-', '.', '_', '/':
			upper = true
		default:
			if upper {
				b.WriteString(strings.ToUpper(string(r)))
				upper = false
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// ProviderResolver resolves packages against a single CDN provider, fetching
// the remote package.json to discover the browser entry file.
type ProviderResolver struct {
	provider *Provider
	fetcher  Fetcher
	cache    *PackageCache
}

// NewProviderResolver creates a resolver for the given provider.
// A nil provider uses DefaultProvider; a nil fetcher uses HTTPFetcher.
func NewProviderResolver(provider *Provider, fetcher Fetcher) *ProviderResolver {
	if provider == nil {
		provider = &DefaultProvider
	}
	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}
	return &ProviderResolver{
		provider: provider,
		fetcher:  fetcher,
		cache:    NewPackageCache(0),
	}
}

// expandTemplate substitutes {package}, {version} and {path} in a provider
// URL template.
func expandTemplate(template, pkgName, version, path string) string {
	url := strings.ReplaceAll(template, "{package}", pkgName)
	url = strings.ReplaceAll(url, "{version}", version)
	url = strings.ReplaceAll(url, "{path}", path)
	return url
}

// normalizeVersion strips range operators from a semver range so it can be
// used in a CDN URL. CDNs resolve partial versions like "1" or "1.2"
// themselves.
func normalizeVersion(version string) string {
	v := strings.TrimSpace(version)
	v = strings.TrimPrefix(v, "^")
	v = strings.TrimPrefix(v, "~")
	v = strings.TrimPrefix(v, ">=")
	v = strings.TrimPrefix(v, "<=")
	v = strings.TrimPrefix(v, ">")
	v = strings.TrimPrefix(v, "<")
	v = strings.TrimPrefix(v, "=")
	if v == "" || v == "*" {
		return "latest"
	}
	return v
}

// Resolve fetches the package descriptor from the CDN and returns the script
// reference for its browser entry.
func (r *ProviderResolver) Resolve(ctx context.Context, pkgName, version string) (*ScriptRef, error) {
	v := normalizeVersion(version)

	pkg, err := r.cache.GetOrLoad(pkgName, v, func() (*packagejson.PackageJSON, error) {
		url := expandTemplate(r.provider.PackageJSONTemplate, pkgName, v, "")
		body, err := r.fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		return packagejson.Parse(body)
	})
	if err != nil {
		return nil, fmt.Errorf("resolve %s@%s on %s: %w", pkgName, v, r.provider.Name, err)
	}

	path := strings.TrimPrefix(pkg.EntryFile(), "./")
	resolved := v
	if pkg.Version != "" {
		resolved = pkg.Version
	}
	return &ScriptRef{
		Package: pkgName,
		Version: resolved,
		URL:     expandTemplate(r.provider.ScriptTemplate, pkgName, resolved, path),
		Global:  GlobalName(pkgName),
	}, nil
}

// ResolveAll resolves every entry of a dependency manifest in document order.
// Resolution stops at the first error.
func (r *ProviderResolver) ResolveAll(ctx context.Context, manifest *packagejson.Manifest) ([]*ScriptRef, error) {
	if manifest == nil {
		return nil, nil
	}
	refs := make([]*ScriptRef, 0, manifest.Len())
	for _, name := range manifest.Names() {
		rng, _ := manifest.Range(name)
		ref, err := r.Resolve(ctx, name, rng)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
