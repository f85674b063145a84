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
package trace_test

import (
	"strings"
	"testing"

	"bennypowers.dev/scorta/trace"
)

func TestExtractScripts(t *testing.T) {
	html := `<!DOCTYPE html>
<html>
  <head>
    <script src="/js/first.js"></script>
    <script type="module" src="/js/app.js"></script>
    <script>console.log("inline")</script>
  </head>
  <body></body>
</html>`

	scripts, err := trace.ExtractScripts([]byte(html))
	if err != nil {
		t.Fatalf("ExtractScripts failed: %v", err)
	}

	if len(scripts) != 3 {
		t.Fatalf("Expected 3 scripts, got %d", len(scripts))
	}

	if scripts[0].Src != "/js/first.js" {
		t.Errorf("Expected first script src /js/first.js, got %q", scripts[0].Src)
	}
	if scripts[1].Src != "/js/app.js" || scripts[1].Type != "module" {
		t.Errorf("Expected module script /js/app.js, got %+v", scripts[1])
	}
	if scripts[2].Src != "" {
		t.Errorf("Expected inline script without src, got %q", scripts[2].Src)
	}

	for i := 1; i < len(scripts); i++ {
		if scripts[i].Start <= scripts[i-1].Start {
			t.Error("Expected scripts in document order")
		}
	}
}

func TestExtractScriptsUnquotedAttributes(t *testing.T) {
	html := `<html><head><script src=/js/app.js></script></head></html>`

	scripts, err := trace.ExtractScripts([]byte(html))
	if err != nil {
		t.Fatalf("ExtractScripts failed: %v", err)
	}
	if len(scripts) != 1 {
		t.Fatalf("Expected 1 script, got %d", len(scripts))
	}
	if scripts[0].Src != "/js/app.js" {
		t.Errorf("Expected unquoted src to parse, got %q", scripts[0].Src)
	}
}

func TestExtractScriptsNone(t *testing.T) {
	html := `<html><head><title>Empty</title></head><body></body></html>`

	scripts, err := trace.ExtractScripts([]byte(html))
	if err != nil {
		t.Fatalf("ExtractScripts failed: %v", err)
	}
	if len(scripts) != 0 {
		t.Errorf("Expected no scripts, got %d", len(scripts))
	}
}

func TestFindInsertPointBeforeFirstScript(t *testing.T) {
	html := `<html>
  <head>
    <title>Page</title>
    <script src="/js/app.js"></script>
  </head>
</html>`

	point, err := trace.FindInsertPoint([]byte(html))
	if err != nil {
		t.Fatalf("FindInsertPoint failed: %v", err)
	}
	if !point.Found {
		t.Fatal("Expected insert point to be found")
	}

	if !strings.HasPrefix(html[point.Offset:], "<script") {
		t.Errorf("Expected offset at first script, got %q", html[point.Offset:point.Offset+20])
	}
	if point.Indent != "    " {
		t.Errorf("Expected four-space indent, got %q", point.Indent)
	}
}

func TestFindInsertPointAfterHeadStart(t *testing.T) {
	html := `<html>
  <head>
    <title>Page</title>
  </head>
</html>`

	point, err := trace.FindInsertPoint([]byte(html))
	if err != nil {
		t.Fatalf("FindInsertPoint failed: %v", err)
	}
	if !point.Found {
		t.Fatal("Expected insert point to be found")
	}

	if before := html[:point.Offset]; !strings.HasSuffix(before, "<head>") {
		t.Errorf("Expected offset just past <head>, prefix ends with %q", before[max(0, len(before)-10):])
	}
}

func TestFindInsertPointNoHead(t *testing.T) {
	html := `<div>fragment without a head</div>`

	point, err := trace.FindInsertPoint([]byte(html))
	if err != nil {
		t.Fatalf("FindInsertPoint failed: %v", err)
	}
	if point.Found {
		t.Error("Expected no insert point without <head>")
	}
}
