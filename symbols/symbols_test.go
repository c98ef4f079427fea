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

package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plotnik.dev/plotnik/diag"
	"plotnik.dev/plotnik/syntax"
)

func build(t *testing.T, src string) (*Table, *diag.Bag) {
	t.Helper()
	root, pbag := syntax.Parse([]byte(src))
	require.Empty(t, pbag.All())
	bag := &diag.Bag{}
	return Build(syntax.Root{N: root}, bag), bag
}

func TestNonRecursiveDefIsTransparent(t *testing.T) {
	table, bag := build(t, "Main = (Helper)\nHelper = (a)")
	assert.Empty(t, bag.All())
	main, ok := table.Lookup("Main")
	require.True(t, ok)
	assert.False(t, table.IsRecursive(main.ID))
}

func TestSelfRecursiveDef(t *testing.T) {
	table, bag := build(t, "List = (cons (a) (List))")
	assert.Empty(t, bag.All())
	d, ok := table.Lookup("List")
	require.True(t, ok)
	assert.True(t, table.IsRecursive(d.ID))
}

func TestMutualRecursion(t *testing.T) {
	table, bag := build(t, "A = (x (B))\nB = (y (A))")
	assert.Empty(t, bag.All())
	a, _ := table.Lookup("A")
	b, _ := table.Lookup("B")
	assert.True(t, table.IsRecursive(a.ID))
	assert.True(t, table.IsRecursive(b.ID))
}

func TestUndefinedRef(t *testing.T) {
	_, bag := build(t, "Main = (Ghost)")
	require.Len(t, bag.All(), 1)
	assert.Equal(t, diag.UndefinedRef, bag.All()[0].Kind)
}

func TestDuplicateDefName(t *testing.T) {
	_, bag := build(t, "A = (x)\nA = (y)")
	require.Len(t, bag.All(), 1)
	assert.Equal(t, diag.DuplicateDefName, bag.All()[0].Kind)
}
