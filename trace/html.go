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
package trace

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// ScriptTag represents a <script> tag found in HTML.
type ScriptTag struct {
	Type  string // The type attribute (e.g., "module")
	Src   string // The src attribute (external script)
	Start int    // Byte offset of the script element
	End   int    // Byte offset past the script element
}

// ExtractScripts parses HTML content and extracts all script tags in
// document order.
func ExtractScripts(content []byte) ([]ScriptTag, error) {
	qm, err := GetQueryManager()
	if err != nil {
		return nil, err
	}

	parser := getHTMLParser()
	defer putHTMLParser(parser)

	tree := parser.Parse(content, nil)
	defer tree.Close()

	query, err := qm.Query("html", "scriptTags")
	if err != nil {
		return nil, err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	// A script element with several attributes produces several matches,
	// one per attribute pattern; aggregate them by element offset.
	byStart := make(map[int]*ScriptTag)
	var order []int

	matches := cursor.Matches(query, tree.RootNode(), content)
	captureNames := query.CaptureNames()

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		var tag *ScriptTag
		var currentAttrName string

		for _, capture := range match.Captures {
			name := captureNames[capture.Index]
			switch name {
			case "script":
				start := int(capture.Node.StartByte())
				if existing, ok := byStart[start]; ok {
					tag = existing
				} else {
					tag = &ScriptTag{
						Start: start,
						End:   int(capture.Node.EndByte()),
					}
					byStart[start] = tag
					order = append(order, start)
				}
			case "attr.name":
				currentAttrName = capture.Node.Utf8Text(content)
			case "attr.value":
				if tag == nil {
					continue
				}
				switch currentAttrName {
				case "type":
					tag.Type = capture.Node.Utf8Text(content)
				case "src":
					tag.Src = capture.Node.Utf8Text(content)
				}
			}
		}
	}

	scripts := make([]ScriptTag, 0, len(order))
	for _, start := range order {
		scripts = append(scripts, *byStart[start])
	}
	return scripts, nil
}

// InsertPoint locates where a script reference can be spliced into HTML.
type InsertPoint struct {
	Found  bool
	Offset int    // Byte offset to insert at
	Indent string // Leading whitespace of the following line
}

// FindInsertPoint returns the position for a new script tag: before the
// first existing script element when one exists, otherwise immediately
// after the <head> start tag. Not finding a <head> reports Found false.
func FindInsertPoint(content []byte) (InsertPoint, error) {
	scripts, err := ExtractScripts(content)
	if err != nil {
		return InsertPoint{}, err
	}
	if len(scripts) > 0 {
		offset := scripts[0].Start
		return InsertPoint{Found: true, Offset: offset, Indent: lineIndent(content, offset)}, nil
	}

	offset, found, err := findHeadContentStart(content)
	if err != nil || !found {
		return InsertPoint{}, err
	}
	return InsertPoint{Found: true, Offset: offset, Indent: lineIndent(content, offset)}, nil
}

// findHeadContentStart returns the byte offset just past the <head> start tag.
func findHeadContentStart(content []byte) (int, bool, error) {
	qm, err := GetQueryManager()
	if err != nil {
		return 0, false, err
	}

	parser := getHTMLParser()
	defer putHTMLParser(parser)

	tree := parser.Parse(content, nil)
	defer tree.Close()

	query, err := qm.Query("html", "headElement")
	if err != nil {
		return 0, false, err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, tree.RootNode(), content)
	captureNames := query.CaptureNames()

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		isHead := false
		startTagEnd := -1
		for _, capture := range match.Captures {
			switch captureNames[capture.Index] {
			case "tag.name":
				isHead = capture.Node.Utf8Text(content) == "head"
			case "tag.start":
				startTagEnd = int(capture.Node.EndByte())
			}
		}
		if isHead && startTagEnd >= 0 {
			return startTagEnd, true, nil
		}
	}

	return 0, false, nil
}

// lineIndent returns the leading whitespace of the line containing offset.
func lineIndent(content []byte, offset int) string {
	lineStart := offset
	for lineStart > 0 && content[lineStart-1] != '\n' {
		lineStart--
	}
	end := lineStart
	for end < len(content) && (content[end] == ' ' || content[end] == '\t') {
		end++
	}
	return string(content[lineStart:end])
}
