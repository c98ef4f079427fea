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

package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"plotnik.dev/plotnik/analyze"
	"plotnik.dev/plotnik/diag"
	"plotnik.dev/plotnik/syntax"
)

func analyzeSrc(t *testing.T, src string) *analyze.Result {
	t.Helper()
	root, bag := syntax.Parse([]byte(src))
	require.Empty(t, bag.All())
	res := analyze.Analyze(syntax.Root{N: root}, bag)
	require.False(t, bag.HasErrors())
	return res
}

func TestEmitRejectsEmptyQuery(t *testing.T) {
	res := analyzeSrc(t, "")
	_, err := Emit(res, nil)
	require.Error(t, err)
	var ee *EmitError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, ErrInvalidQuery, ee.Kind)
}

func TestEmitUnlinkedRoundTrips(t *testing.T) {
	res := analyzeSrc(t, "Test = (identifier) @id")
	buf, err := Emit(res, nil)
	require.NoError(t, err)

	m, err := Open(buf)
	require.NoError(t, err)
	require.False(t, m.Linked())

	eps := m.Entrypoints()
	require.Equal(t, 1, eps.Len())

	strs := m.Strings()
	ep := eps.Get(0)
	require.Equal(t, "Test", strs.Get(StringId(ep.Name)))
}

func TestEmitLinkedSetsHeaderBit(t *testing.T) {
	res := analyzeSrc(t, "Test = (identifier) @id")
	link := &LinkTables{
		NodeTypeIds:  map[string]uint16{"identifier": 7},
		NodeFieldIds: map[string]uint16{},
	}
	buf, err := Emit(res, link)
	require.NoError(t, err)

	m, err := Open(buf)
	require.NoError(t, err)
	require.True(t, m.Linked())

	ids := m.NodeTypes()
	require.Len(t, ids, 1)
	require.Equal(t, uint16(7), ids[0].ID)
}

func TestOpenRejectsBadMagic(t *testing.T) {
	res := analyzeSrc(t, "Test = (identifier) @id")
	buf, err := Emit(res, nil)
	require.NoError(t, err)

	corrupt := append([]byte(nil), buf...)
	corrupt[0] ^= 0xff
	_, err = Open(corrupt)
	require.Error(t, err)
}

func TestOpenRejectsTruncatedBuffer(t *testing.T) {
	res := analyzeSrc(t, "Test = (identifier) @id")
	buf, err := Emit(res, nil)
	require.NoError(t, err)

	_, err = Open(buf[:len(buf)-64])
	require.Error(t, err)
}
