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

package analyze

import (
	"testing"

	"github.com/stretchr/testify/require"

	"plotnik.dev/plotnik/diag"
	"plotnik.dev/plotnik/syntax"
	"plotnik.dev/plotnik/types"
)

func analyzeSrc(t *testing.T, src string) *Result {
	t.Helper()
	root, bag := syntax.Parse([]byte(src))
	require.Empty(t, bag.All())
	res := Analyze(syntax.Root{N: root}, bag)
	require.False(t, bag.HasErrors(), "diagnostics: %v", bag.All())
	return res
}

func defInfo(t *testing.T, res *Result, name string) types.TermInfo {
	t.Helper()
	def, ok := res.Symbols.Lookup(name)
	require.True(t, ok, "no definition named %q", name)
	return res.DefInfo[def.ID]
}

func fieldNamed(t *testing.T, res *Result, structType types.TypeId, name string) types.Field {
	t.Helper()
	want := res.Interner.Intern(name)
	for _, f := range res.Types.Get(structType).Fields {
		if f.Name == want {
			return f
		}
	}
	t.Fatalf("struct %d has no field %q", structType, name)
	return types.Field{}
}

// Scenario 1 (spec.md §8): `Test = (identifier) @id` is a single scalar
// Node capture — the capture opens no scope of its own; the definition's
// flow bubbles a one-field struct with that field typed Node.
func TestInferScalarCapture(t *testing.T) {
	res := analyzeSrc(t, "Test = (identifier) @id")
	ti := defInfo(t, res, "Test")
	require.True(t, ti.Flow.IsBubble())
	f := fieldNamed(t, res, ti.Flow.Type, "id")
	require.Equal(t, types.NODE, f.Info.Type)
	require.False(t, f.Info.Optional)
}

// Scenario 2 (spec.md §8): an untagged alternation between two captures on
// different names merges into a struct where each field is optional, since
// only one branch's capture fires per match.
func TestInferUntaggedAlternationFieldsAreOptional(t *testing.T) {
	res := analyzeSrc(t, "Expression = [(identifier) @name (number) @value]")
	ti := defInfo(t, res, "Expression")
	require.True(t, ti.Flow.IsBubble())

	name := fieldNamed(t, res, ti.Flow.Type, "name")
	value := fieldNamed(t, res, ti.Flow.Type, "value")
	require.True(t, name.Info.Optional)
	require.True(t, value.Info.Optional)
	require.Equal(t, types.NODE, name.Info.Type)
	require.Equal(t, types.NODE, value.Info.Type)
}

// Scenario 3 (spec.md §8): a tagged alternation produces an Enum, and the
// outer capture over it binds a single scalar field of that Enum type —
// it does not flatten the branches' own fields into the outer struct.
func TestInferTaggedAlternationProducesEnumCapture(t *testing.T) {
	res := analyzeSrc(t, "Q = [A: (identifier) @a  B: (number) @b] @item")
	ti := defInfo(t, res, "Q")
	require.True(t, ti.Flow.IsBubble())

	item := fieldNamed(t, res, ti.Flow.Type, "item")
	shape := res.Types.Get(item.Info.Type)
	require.Equal(t, types.KEnum, shape.Kind)
	require.Len(t, shape.Variants, 2)

	aPayload := res.Types.Get(shape.Variants[0].Payload)
	require.Equal(t, types.KStruct, aPayload.Kind)
	fieldNamed(t, res, shape.Variants[0].Payload, "a")
	fieldNamed(t, res, shape.Variants[1].Payload, "b")
}

// Scenario 4 (spec.md §8): `@decs (decorator)*` captured over a bare
// repetition of an atom is an Array<Node> field, not a row capture (the
// repeated pattern itself produces no fields to box per iteration).
func TestInferRepeatedCaptureIsArray(t *testing.T) {
	res := analyzeSrc(t, "Test = (function_declaration (decorator)* @decs)")
	ti := defInfo(t, res, "Test")
	require.True(t, ti.Flow.IsBubble())

	decs := fieldNamed(t, res, ti.Flow.Type, "decs")
	shape := res.Types.Get(decs.Info.Type)
	require.Equal(t, types.KArray, shape.Kind)
	require.Equal(t, types.NODE, shape.Inner)
	require.False(t, shape.NonEmpty)
}

// Scenario 5 (spec.md §8): nested bubble captures `(a (b (c) @c) @b) @a`
// all resolve into one flat top-level struct with three Node fields.
func TestInferNestedBubbleCapturesFlattenToOneStruct(t *testing.T) {
	res := analyzeSrc(t, "Test = (a (b (c) @c) @b) @a")
	ti := defInfo(t, res, "Test")
	require.True(t, ti.Flow.IsBubble())

	shape := res.Types.Get(ti.Flow.Type)
	require.Len(t, shape.Fields, 3)
	for _, name := range []string{"a", "b", "c"} {
		f := fieldNamed(t, res, ti.Flow.Type, name)
		require.Equal(t, types.NODE, f.Info.Type)
	}
}

// Scenario 6 (spec.md §8): `@x` captured over an untagged alternation with
// no captures of its own inside it is a plain Node field — the alternation
// contributes no struct of its own to flatten.
func TestInferCaptureOverUncapturedAlternationIsScalar(t *testing.T) {
	res := analyzeSrc(t, "Q = (program [(identifier) (number)] @x)")
	ti := defInfo(t, res, "Q")
	require.True(t, ti.Flow.IsBubble())

	x := fieldNamed(t, res, ti.Flow.Type, "x")
	require.Equal(t, types.NODE, x.Info.Type)
}

func TestInferRecursiveRefProducesVoidAtSite(t *testing.T) {
	res := analyzeSrc(t, "Test = (a (Test)? @child)")
	ti := defInfo(t, res, "Test")
	require.True(t, ti.Flow.IsBubble())

	def, ok := res.Symbols.Lookup("Test")
	require.True(t, ok)
	require.True(t, res.Symbols.IsRecursive(def.ID))

	child := fieldNamed(t, res, ti.Flow.Type, "child")
	shape := res.Types.Get(child.Info.Type)
	require.Equal(t, types.KOptional, shape.Kind)
	require.Equal(t, types.KRef, res.Types.Get(shape.Inner).Kind)
}
