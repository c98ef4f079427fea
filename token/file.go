// Copyright 2026 The Plotnik Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package token

import "sort"

// File records the line-start offsets of a single source text so byte
// offsets can be rendered as 1-based line/column pairs for diagnostics.
type File struct {
	Name       string
	Src        []byte
	lineStarts []Pos
}

// NewFile scans src once, recording the offset of each line start.
func NewFile(name string, src []byte) *File {
	f := &File{Name: name, Src: src, lineStarts: []Pos{0}}
	for i, b := range src {
		if b == '\n' {
			f.lineStarts = append(f.lineStarts, Pos(i+1))
		}
	}
	return f
}

// Position is a human-facing 1-based line/column pair.
type Position struct {
	Line   int
	Column int
}

// Position converts a byte offset into a 1-based line/column pair.
func (f *File) Position(p Pos) Position {
	i := sort.Search(len(f.lineStarts), func(i int) bool { return f.lineStarts[i] > p }) - 1
	if i < 0 {
		i = 0
	}
	line := i + 1
	col := int(p-f.lineStarts[i]) + 1
	return Position{Line: line, Column: col}
}

// Line returns the raw bytes of the (1-based) line lineNo, without
// the trailing newline.
func (f *File) Line(lineNo int) []byte {
	if lineNo < 1 || lineNo > len(f.lineStarts) {
		return nil
	}
	start := f.lineStarts[lineNo-1]
	end := Pos(len(f.Src))
	if lineNo < len(f.lineStarts) {
		end = f.lineStarts[lineNo] - 1
	}
	if end < start {
		end = start
	}
	line := f.Src[start:end]
	for len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return line
}

// Text returns the source bytes covered by span.
func (f *File) Text(span Span) []byte {
	if int(span.Start) < 0 || int(span.End) > len(f.Src) || span.Start > span.End {
		return nil
	}
	return f.Src[span.Start:span.End]
}
