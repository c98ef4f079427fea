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

package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertRoundTrip checks spec.md §8.1: concatenating every token's text
// (including trivia) reproduces the source byte for byte.
func assertRoundTrip(t *testing.T, src string, root *Node) {
	t.Helper()
	assert.Equal(t, src, string(root.Text()))
}

func TestParseSimpleCapture(t *testing.T) {
	src := "Test = (identifier) @id"
	root, bag := Parse([]byte(src))
	require.Empty(t, bag.All())
	assertRoundTrip(t, src, root)

	defs := Root{root}.Defs()
	require.Len(t, defs, 1)
	name, named := defs[0].Name()
	require.True(t, named)
	assert.Equal(t, "Test", src[name.Span.Start:name.Span.End])

	body := defs[0].Body()
	require.Equal(t, KCapturedExpr, body.Kind())
}

func TestParseAlternationUntagged(t *testing.T) {
	src := "Expression = [(identifier) @name (number) @value]"
	root, bag := Parse([]byte(src))
	require.Empty(t, bag.All())
	assertRoundTrip(t, src, root)

	body := Root{root}.Defs()[0].Body()
	require.Equal(t, KAltExpr, body.Kind())
	alt := body.AsAltExpr()
	assert.False(t, alt.IsTagged())
	assert.Len(t, alt.UntaggedAlternatives(), 2)
}

func TestParseTaggedAlternation(t *testing.T) {
	src := "Q = [A: (identifier) @a  B: (number) @b] @item"
	root, bag := Parse([]byte(src))
	require.Empty(t, bag.All())
	assertRoundTrip(t, src, root)

	body := Root{root}.Defs()[0].Body()
	require.Equal(t, KCapturedExpr, body.Kind())
	inner := body.AsCapturedExpr().Inner()
	require.Equal(t, KAltExpr, inner.Kind())
	assert.True(t, inner.AsAltExpr().IsTagged())
	assert.Len(t, inner.AsAltExpr().Branches(), 2)
}

func TestParseQuantifiedCapture(t *testing.T) {
	src := "Test = (function_declaration (decorator)* @decs)"
	root, bag := Parse([]byte(src))
	require.Empty(t, bag.All())
	assertRoundTrip(t, src, root)
}

func TestParseNestedCaptures(t *testing.T) {
	src := "Test = (a (b (c) @c) @b) @a"
	root, bag := Parse([]byte(src))
	require.Empty(t, bag.All())
	assertRoundTrip(t, src, root)
}

func TestParseFieldWithQuantifierBindsInner(t *testing.T) {
	// field: pat* parses as (field: pat)*, not field: (pat*).
	src := "(call args: (identifier)*)"
	root, bag := Parse([]byte(src))
	require.Empty(t, bag.All())
	assertRoundTrip(t, src, root)

	def := Root{root}.Defs()[0]
	nn := def.Body().AsNamedNode()
	children := nn.Children()
	require.Len(t, children, 1)
	assert.Equal(t, KQuantifiedExpr, children[0].Kind())
	assert.Equal(t, KFieldExpr, children[0].AsQuantifiedExpr().Inner().Kind())
}

func TestParseRefNoChildren(t *testing.T) {
	src := "Main = (Helper)"
	root, bag := Parse([]byte(src))
	require.Empty(t, bag.All())
	assertRoundTrip(t, src, root)

	body := Root{root}.Defs()[0].Body()
	assert.Equal(t, KRef, body.Kind())
}

func TestParseRefWithChildrenDiagnoses(t *testing.T) {
	src := "Main = (Helper (a))"
	root, bag := Parse([]byte(src))
	require.NotEmpty(t, bag.All())
	assertRoundTrip(t, src, root)
}

func TestParseUnclosedDelimiter(t *testing.T) {
	src := "Test = (identifier"
	root, bag := Parse([]byte(src))
	require.NotEmpty(t, bag.All())
	assertRoundTrip(t, src, root)
}

func TestParseUnnamedDefMustBeLast(t *testing.T) {
	src := "(a)\nB = (b)"
	_, bag := Parse([]byte(src))
	require.NotEmpty(t, bag.All())
}

func TestParseUnnamedLastDefAllowed(t *testing.T) {
	src := "B = (b)\n(a)"
	_, bag := Parse([]byte(src))
	for _, d := range bag.All() {
		assert.NotEqual(t, "unnamed-def-not-last", string(d.Kind))
	}
}

func TestParseAnchorInSequence(t *testing.T) {
	src := "Test = {. (a) (b)}"
	root, bag := Parse([]byte(src))
	require.Empty(t, bag.All())
	assertRoundTrip(t, src, root)
}

func TestParseSeparatorMisuse(t *testing.T) {
	src := "(a, b)"
	_, bag := Parse([]byte(src))
	require.NotEmpty(t, bag.All())
}

func TestParseStringLiteral(t *testing.T) {
	src := `Test = "foo"`
	root, bag := Parse([]byte(src))
	require.Empty(t, bag.All())
	assertRoundTrip(t, src, root)
}
