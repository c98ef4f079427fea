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

package debug

import (
	"fmt"
	"io"
	"strings"

	"plotnik.dev/plotnik/syntax"
)

// WriteCST prints n as an indented tree, one line per Node, with Leaf
// tokens (trivia included) rendered inline under their parent. Every token
// appears once, as a quoted Leaf text; a Leaf text longer than 40 bytes is
// cut to its first 40 bytes followed by "...".
func WriteCST(w io.Writer, n *syntax.Node) {
	writeNode(w, n, 0)
}

// CSTString is the string form of WriteCST.
func CSTString(n *syntax.Node) string {
	var b strings.Builder
	WriteCST(&b, n)
	return b.String()
}

func writeNode(w io.Writer, n *syntax.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s %s\n", indent, n.Kind, n.Span())
	for _, c := range n.Children {
		switch x := c.(type) {
		case syntax.Leaf:
			writeLeaf(w, x, depth+1)
		case *syntax.Node:
			writeNode(w, x, depth+1)
		}
	}
}

func writeLeaf(w io.Writer, l syntax.Leaf, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s %q\n", indent, l.Tok.Kind, leafText(l))
}

func leafText(l syntax.Leaf) string {
	const max = 40
	s := string(l.Text)
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
