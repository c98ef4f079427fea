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
	"plotnik.dev/plotnik/types"
)

// stringTableBuilder accumulates user strings in first-seen order behind
// a reserved index 0 (spec.md §3 "[strings]", §5 "first-seen order").
type stringTableBuilder struct {
	bytes   []byte
	offsets []uint32 // len == count+1; trailing entry is blob length
}

const easterEgg = "she who types the pattern becomes the pattern"

func newStringTableBuilder() *stringTableBuilder {
	b := &stringTableBuilder{offsets: []uint32{0}}
	b.append(easterEgg)
	return b
}

func (b *stringTableBuilder) append(s string) uint32 {
	id := uint32(len(b.offsets) - 1)
	b.bytes = append(b.bytes, s...)
	b.offsets = append(b.offsets, uint32(len(b.bytes)))
	return id
}

// stringTableState maps a string to the StringId it was assigned; index 0
// is never returned by intern (it is the reserved easter egg).
type stringTableState struct {
	*stringTableBuilder
	seen map[string]uint32
}

func newStringTable() *stringTableState {
	return &stringTableState{stringTableBuilder: newStringTableBuilder(), seen: map[string]uint32{}}
}

// intern returns s's StringId, assigning a fresh one in first-seen order
// if s has not been interned yet (idempotent duplicate insertion, per
// spec.md §4.B step 1).
func (s *stringTableState) intern(str string) uint32 {
	if id, ok := s.seen[str]; ok {
		return id
	}
	id := s.append(str)
	s.seen[str] = id
	return id
}

// count returns the number of strings including the reserved slot 0.
func (s *stringTableState) count() int { return len(s.offsets) - 1 }

// typeTableBuilder performs the depth-first type collection of spec.md
// §4.B step 2: every TypeId reachable from a definition's result type is
// assigned a compact local id (builtins first, customs in collection
// order), and Struct/Enum members are appended to a flat members table
// immediately as each composite is materialised.
type typeTableBuilder struct {
	ctx    *types.Context
	interp *types.Interner

	localOf map[types.TypeId]uint32 // in-memory TypeId -> compact local id
	order   []types.TypeId          // local id -> in-memory TypeId, in emission order

	defs    []TypeDefRecord
	members []pairRecord
	names   []pairRecord

	strings     *stringTableState
	customNames map[types.TypeId]types.Symbol
}

func newTypeTableBuilder(ctx *types.Context, interp *types.Interner, strings *stringTableState, customNames map[types.TypeId]types.Symbol) *typeTableBuilder {
	b := &typeTableBuilder{
		ctx: ctx, interp: interp, strings: strings, customNames: customNames,
		localOf: map[types.TypeId]uint32{},
	}
	// Builtins always occupy local ids 0/1/2 regardless of whether a given
	// query happens to use all three (spec.md §4.B step 2 "emit used
	// builtins first"); this keeps member/alias cross-references simple
	// without needing a used/unused distinction that saves at most 8 bytes.
	b.localOf[types.VOID] = b.reserve(types.VOID)
	b.localOf[types.NODE] = b.reserve(types.NODE)
	b.localOf[types.STRING] = b.reserve(types.STRING)
	b.defs = append(b.defs, TypeDefRecord{Kind: TDVoid}, TypeDefRecord{Kind: TDNode}, TypeDefRecord{Kind: TDString})
	return b
}

func (b *typeTableBuilder) reserve(id types.TypeId) uint32 {
	local := uint32(len(b.order))
	b.order = append(b.order, id)
	return local
}

// collect walks id depth-first (children before self, per spec.md §5) and
// returns its local id, assigning one on first visit.
func (b *typeTableBuilder) collect(id types.TypeId) uint32 {
	if local, ok := b.localOf[id]; ok {
		return local
	}
	shape := b.ctx.Get(id)
	switch shape.Kind {
	case types.KVoid, types.KNode, types.KString:
		// unreachable: pre-seeded in newTypeTableBuilder
	case types.KCustom:
		b.collect(types.NODE)
	case types.KOptional, types.KArray:
		b.collect(shape.Inner)
	case types.KStruct:
		for _, f := range shape.Fields {
			t := f.Info.Type
			if f.Info.Optional {
				t = b.ctx.Optional(t)
			}
			b.collect(t)
		}
	case types.KEnum:
		for _, v := range shape.Variants {
			b.collect(v.Payload)
		}
	case types.KRef:
		// opaque boundary; nothing further to collect
	}
	local := b.reserve(id)
	b.localOf[id] = local
	b.materialize(local, id, shape)
	return local
}

// materialize appends the TypeDefRecord for local (and, for Struct/Enum,
// the member records immediately after, per spec.md §4.B step 2 "members
// are emitted in order immediately after the struct/enum is
// materialised").
func (b *typeTableBuilder) materialize(local uint32, id types.TypeId, shape types.TypeShape) {
	var rec TypeDefRecord
	switch shape.Kind {
	case types.KVoid:
		rec = TypeDefRecord{Kind: TDVoid}
	case types.KNode:
		rec = TypeDefRecord{Kind: TDNode}
	case types.KString:
		rec = TypeDefRecord{Kind: TDString}
	case types.KCustom:
		rec = TypeDefRecord{Kind: TDAlias, Data: uint16(b.localOf[types.NODE])}
		b.names = append(b.names, pairRecord{Name: b.strings.intern(b.interp.String(shape.CustomName)), Type: local})
	case types.KOptional:
		rec = TypeDefRecord{Kind: TDOptional, Data: uint16(b.localOf[shape.Inner])}
	case types.KArray:
		kind := TDArrayStar
		if shape.NonEmpty {
			kind = TDArrayPlus
		}
		rec = TypeDefRecord{Kind: kind, Data: uint16(b.localOf[shape.Inner])}
	case types.KStruct:
		start := len(b.members)
		for _, f := range shape.Fields {
			t := f.Info.Type
			if f.Info.Optional {
				t = b.ctx.Optional(t)
			}
			b.members = append(b.members, pairRecord{Name: b.strings.intern(b.interp.String(f.Name)), Type: b.localOf[t]})
		}
		rec = TypeDefRecord{Kind: TDStruct, Data: uint16(start), Count: uint8(len(shape.Fields))}
	case types.KEnum:
		start := len(b.members)
		for _, v := range shape.Variants {
			b.members = append(b.members, pairRecord{Name: b.strings.intern(b.interp.String(v.Name)), Type: b.localOf[v.Payload]})
		}
		rec = TypeDefRecord{Kind: TDEnum, Data: uint16(start), Count: uint8(len(shape.Variants))}
	case types.KRef:
		rec = TypeDefRecord{Kind: TDRef}
	}
	b.defs = append(b.defs, rec)

	if name, ok := namesLookup(b, id); ok {
		b.names = append(b.names, pairRecord{Name: b.strings.intern(b.interp.String(name)), Type: local})
	}
}

// namesLookup reports a struct/enum's `:: TypeName` rename, if the type
// inferencer recorded one for id (spec.md §4.T.1 "Custom type annotations"
// (a)/(b)).
func namesLookup(b *typeTableBuilder, id types.TypeId) (types.Symbol, bool) {
	name, ok := b.customNames[id]
	return name, ok
}
