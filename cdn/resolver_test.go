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
package cdn_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"bennypowers.dev/scorta/cdn"
	"bennypowers.dev/scorta/packagejson"
)

// stubFetcher serves canned responses by URL and counts requests.
type stubFetcher struct {
	mu        sync.Mutex
	responses map[string]string
	requests  []string
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, url)
	if body, ok := s.responses[url]; ok {
		return []byte(body), nil
	}
	return nil, &cdn.FetchError{URL: url, StatusCode: 404, Message: "HTTP 404"}
}

func TestGlobalName(t *testing.T) {
	tests := []struct {
		pkg  string
		want string
	}{
		{"jquery", "jQuery"},
		{"lodash", "_"},
		{"react", "React"},
		{"react-dom", "ReactDOM"},
		{"vue", "Vue"},
		{"three", "THREE"},
		{"my-lib", "myLib"},
		{"some.thing", "someThing"},
		{"@scope/my-widget", "myWidget"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			if got := cdn.GlobalName(tt.pkg); got != tt.want {
				t.Errorf("GlobalName(%q) = %q, want %q", tt.pkg, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	fetcher := &stubFetcher{responses: map[string]string{
		"https://cdn.jsdelivr.net/npm/jquery@3.7.1/package.json": `{
			"name": "jquery",
			"version": "3.7.1",
			"main": "dist/jquery.js"
		}`,
	}}
	resolver := cdn.NewProviderResolver(&cdn.Jsdelivr, fetcher)

	ref, err := resolver.Resolve(context.Background(), "jquery", "^3.7.1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if ref.URL != "https://cdn.jsdelivr.net/npm/jquery@3.7.1/dist/jquery.js" {
		t.Errorf("Unexpected script URL %q", ref.URL)
	}
	if ref.Global != "jQuery" {
		t.Errorf("Expected global jQuery, got %q", ref.Global)
	}
	if ref.Version != "3.7.1" {
		t.Errorf("Expected resolved version 3.7.1, got %q", ref.Version)
	}
}

func TestResolveStripsRangeOperators(t *testing.T) {
	tests := []struct {
		rng  string
		want string
	}{
		{"^1.2.3", "1.2.3"},
		{"~1.2.3", "1.2.3"},
		{">=2.0.0", "2.0.0"},
		{"1.2.3", "1.2.3"},
		{"*", "latest"},
		{"", "latest"},
	}

	for _, tt := range tests {
		t.Run(tt.rng, func(t *testing.T) {
			url := fmt.Sprintf("https://unpkg.com/pkg@%s/package.json", tt.want)
			fetcher := &stubFetcher{responses: map[string]string{
				url: fmt.Sprintf(`{"name": "pkg", "version": %q}`, tt.want),
			}}
			resolver := cdn.NewProviderResolver(&cdn.Unpkg, fetcher)

			if _, err := resolver.Resolve(context.Background(), "pkg", tt.rng); err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.rng, err)
			}
			if len(fetcher.requests) != 1 || fetcher.requests[0] != url {
				t.Errorf("Expected request to %q, got %v", url, fetcher.requests)
			}
		})
	}
}

func TestResolveCachesDescriptor(t *testing.T) {
	fetcher := &stubFetcher{responses: map[string]string{
		"https://cdn.jsdelivr.net/npm/pkg@1.0.0/package.json": `{"name": "pkg", "version": "1.0.0"}`,
	}}
	resolver := cdn.NewProviderResolver(&cdn.Jsdelivr, fetcher)

	for range 3 {
		if _, err := resolver.Resolve(context.Background(), "pkg", "1.0.0"); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
	}

	if len(fetcher.requests) != 1 {
		t.Errorf("Expected 1 fetch across repeated resolves, got %d", len(fetcher.requests))
	}
}

func TestResolveNotFound(t *testing.T) {
	resolver := cdn.NewProviderResolver(&cdn.Jsdelivr, &stubFetcher{})

	_, err := resolver.Resolve(context.Background(), "nope", "1.0.0")
	if err == nil {
		t.Fatal("Expected error for unknown package")
	}
}

func TestResolveAll(t *testing.T) {
	fetcher := &stubFetcher{responses: map[string]string{
		"https://cdn.jsdelivr.net/npm/a@1.0.0/package.json": `{"name": "a", "version": "1.0.0"}`,
		"https://cdn.jsdelivr.net/npm/b@2.0.0/package.json": `{"name": "b", "version": "2.0.0", "module": "esm/index.js"}`,
	}}
	resolver := cdn.NewProviderResolver(&cdn.Jsdelivr, fetcher)

	manifest := packagejson.NewManifest()
	manifest.Set("a", "^1.0.0")
	manifest.Set("b", "~2.0.0")

	refs, err := resolver.ResolveAll(context.Background(), manifest)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}

	if len(refs) != 2 {
		t.Fatalf("Expected 2 refs, got %d", len(refs))
	}
	if refs[0].Package != "a" || refs[1].Package != "b" {
		t.Errorf("Expected manifest order preserved, got %v, %v", refs[0].Package, refs[1].Package)
	}
	if refs[1].URL != "https://cdn.jsdelivr.net/npm/b@2.0.0/esm/index.js" {
		t.Errorf("Expected module entry in URL, got %q", refs[1].URL)
	}
}

func TestResolveAllNilManifest(t *testing.T) {
	resolver := cdn.NewProviderResolver(nil, &stubFetcher{})

	refs, err := resolver.ResolveAll(context.Background(), nil)
	if err != nil || refs != nil {
		t.Errorf("Expected nil, nil for nil manifest, got %v, %v", refs, err)
	}
}

func TestProviderByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"jsdelivr", "jsdelivr"},
		{"unpkg", "unpkg"},
		{"esm.sh", "esm.sh"},
		{"esm", "esm.sh"},
		{"bogus", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := cdn.ProviderByName(tt.name)
			if tt.want == "" {
				if p != nil {
					t.Errorf("Expected nil provider, got %v", p.Name)
				}
				return
			}
			if p == nil || p.Name != tt.want {
				t.Errorf("ProviderByName(%q) = %v, want %q", tt.name, p, tt.want)
			}
		})
	}
}
