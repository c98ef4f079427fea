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

package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestReservedBuiltins(t *testing.T) {
	c := NewContext()
	assert.Equal(t, KVoid, c.Get(VOID).Kind)
	assert.Equal(t, KNode, c.Get(NODE).Kind)
	assert.Equal(t, KString, c.Get(STRING).Kind)
	assert.Equal(t, 3, c.Len())
}

func TestStructInterningIsStable(t *testing.T) {
	c := NewContext()
	in := NewInterner()
	a := in.Intern("a")
	b := in.Intern("b")

	t1 := c.Struct([]Field{{Name: b, Info: FieldInfo{Type: NODE}}, {Name: a, Info: FieldInfo{Type: NODE}}})
	t2 := c.Struct([]Field{{Name: a, Info: FieldInfo{Type: NODE}}, {Name: b, Info: FieldInfo{Type: NODE}}})
	assert.Equal(t, t1, t2, "same field set interns to the same TypeId regardless of insertion order")

	shape := c.Get(t1)
	assert.Equal(t, a, shape.Fields[0].Name, "fields iterate in Symbol (interning) order")
	assert.Equal(t, b, shape.Fields[1].Name)
}

// TestStructShapeIndependentOfBuilderOrder builds the same field set through
// two separately-constructed Contexts and diffs the resulting TypeShapes
// structurally, so a future field added to TypeShape that breaks the
// order-independence guarantee shows up as a named path in the diff rather
// than a bare "not equal".
func TestStructShapeIndependentOfBuilderOrder(t *testing.T) {
	in := NewInterner()
	a := in.Intern("a")
	b := in.Intern("b")

	c1 := NewContext()
	t1 := c1.Struct([]Field{{Name: a, Info: FieldInfo{Type: NODE}}, {Name: b, Info: FieldInfo{Type: STRING}}})

	c2 := NewContext()
	t2 := c2.Struct([]Field{{Name: b, Info: FieldInfo{Type: STRING}}, {Name: a, Info: FieldInfo{Type: NODE}}})

	if diff := cmp.Diff(c1.Get(t1), c2.Get(t2)); diff != "" {
		t.Errorf("struct shape depends on builder insertion order (-first +second):\n%s", diff)
	}
}

func TestOptionalIsIdempotent(t *testing.T) {
	c := NewContext()
	o1 := c.Optional(NODE)
	o2 := c.Optional(o1)
	assert.Equal(t, o1, o2)
}

func TestArrayMemoised(t *testing.T) {
	c := NewContext()
	a1 := c.Array(NODE, false)
	a2 := c.Array(NODE, false)
	a3 := c.Array(NODE, true)
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, a3)
}

func TestEnumPreservesDeclarationOrder(t *testing.T) {
	c := NewContext()
	in := NewInterner()
	bSym := in.Intern("B")
	aSym := in.Intern("A")
	e := c.Enum([]Variant{{Name: bSym, Payload: VOID}, {Name: aSym, Payload: NODE}})
	shape := c.Get(e)
	assert.Equal(t, bSym, shape.Variants[0].Name)
	assert.Equal(t, aSym, shape.Variants[1].Name)
}
