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

package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/kylelemons/godebug/diff"

	"plotnik.dev/plotnik/token"
)

// Render writes every diagnostic in bag to w as human-readable text: a
// source snippet with a caret under the primary span, related spans, a
// hint, and — for each fix — a unified textual diff of the proposed edit.
// This is the §4.D "Renderer".
func Render(w io.Writer, file *token.File, bag *Bag) {
	for i, d := range bag.All() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderOne(w, file, d)
	}
}

func renderOne(w io.Writer, file *token.File, d *Diagnostic) {
	sev := "error"
	if d.Severity() == Warning {
		sev = "warning"
	}
	pos := file.Position(d.Span.Start)
	fmt.Fprintf(w, "%s: %s\n", sev, d.Kind)
	if d.Message != "" {
		fmt.Fprintf(w, "  %s\n", d.Message)
	}
	fmt.Fprintf(w, "  --> %s:%d:%d\n", file.Name, pos.Line, pos.Column)
	writeSnippet(w, file, d.Span)

	for _, r := range d.Related {
		rp := file.Position(r.Span.Start)
		fmt.Fprintf(w, "  note: %s\n", r.Label)
		fmt.Fprintf(w, "    --> %s:%d:%d\n", file.Name, rp.Line, rp.Column)
		writeSnippet(w, file, r.Span)
	}

	if d.Hint != "" {
		fmt.Fprintf(w, "  hint: %s\n", d.Hint)
	}

	for _, f := range d.Fixes {
		fmt.Fprintf(w, "  fix: %s\n", f.Description)
		writeFixDiff(w, file, f)
	}
}

func writeSnippet(w io.Writer, file *token.File, span token.Span) {
	pos := file.Position(span.Start)
	line := file.Line(pos.Line)
	fmt.Fprintf(w, "    %d | %s\n", pos.Line, line)

	width := span.Len()
	if width <= 0 {
		width = 1
	}
	caret := strings.Repeat(" ", pos.Column-1) + strings.Repeat("^", width)
	pad := strings.Repeat(" ", len(fmt.Sprintf("%d", pos.Line)))
	fmt.Fprintf(w, "    %s | %s\n", pad, caret)
}

// writeFixDiff renders a unified line diff between the source line(s) before
// and after applying f, using the same line-diff engine
// (github.com/kylelemons/godebug/diff) the teacher uses for test fixtures.
func writeFixDiff(w io.Writer, file *token.File, f Fix) {
	before := string(file.Text(f.Span))
	after := f.Replacement
	d := diff.Diff(before, after)
	for _, line := range strings.Split(d, "\n") {
		if line == "" {
			continue
		}
		fmt.Fprintf(w, "    %s\n", line)
	}
}
