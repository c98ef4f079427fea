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
	"fmt"
	"hash/crc32"
)

// StringId indexes the module's string table; index 0 is reserved and
// must never be referenced by an instruction (spec.md §4.M).
type StringId uint32

// ModuleTypeId indexes the module's (post-collection, compact) type
// table — distinct from the in-memory types.TypeId the compiler used,
// since only reachable types survive into the module (spec.md §4.B step
// 2).
type ModuleTypeId uint32

// Module is a validated, zero-copy view over an emitted byte buffer
// (spec.md §4.M). Every accessor reads directly out of the backing slice;
// Module never copies it and assumes it is immutable for its lifetime
// (spec.md §6 "External consumers").
type Module struct {
	buf    []byte
	header Header
}

// Open validates buf as a plotnik bytecode module and returns a Module
// view over it. buf is retained, not copied.
func Open(buf []byte) (*Module, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("bytecode: buffer shorter than header (%d bytes)", len(buf))
	}
	var h Header
	h.unmarshal(buf)

	if h.Magic != Magic {
		return nil, fmt.Errorf("bytecode: bad magic %#x", h.Magic)
	}
	if h.Version != FormatVersion {
		return nil, fmt.Errorf("bytecode: unsupported version %d", h.Version)
	}
	if int(h.TotalSize) != len(buf) {
		return nil, fmt.Errorf("bytecode: header total_size %d does not match buffer length %d", h.TotalSize, len(buf))
	}
	if h.TotalSize%sectionAlign != 0 {
		return nil, fmt.Errorf("bytecode: total size %d not 64-byte aligned", h.TotalSize)
	}
	if got := crc32.ChecksumIEEE(buf[headerSize:]); got != h.CRC32 {
		return nil, fmt.Errorf("bytecode: CRC-32 mismatch (got %#x, want %#x)", got, h.CRC32)
	}
	for i, off := range h.Offsets {
		if off%sectionAlign != 0 {
			return nil, fmt.Errorf("bytecode: section %d offset %d not 64-byte aligned", i, off)
		}
		if off > h.TotalSize || int(off) > len(buf) {
			return nil, fmt.Errorf("bytecode: section %d offset %d out of bounds", i, off)
		}
	}
	return &Module{buf: buf, header: h}, nil
}

// Linked reports whether the module was emitted with grammar-linking
// tables.
func (m *Module) Linked() bool { return m.header.Linked() }

func (m *Module) section(s section) []byte {
	off := m.header.Offsets[s]
	return m.buf[off : off+m.header.length(s)]
}

// Strings is the module's string table view.
func (m *Module) Strings() StringsView {
	sec := m.section(secStrings)
	count := int(order.Uint32(sec))
	blob := sec[4:]
	offTable := blob[len(blob)-4*(count+1):]
	return StringsView{blob: blob[:len(blob)-4*(count+1)], offsets: offTable}
}

// StringsView reads UTF-8 strings out of the `[strings]` section
// (spec.md §3, §4.M "StringsView::get"). Index 0 is the reserved easter
// egg; a well-formed module never references it from an instruction.
type StringsView struct {
	blob    []byte
	offsets []byte // (count+1) u32 entries
}

func (v StringsView) Len() int { return len(v.offsets)/4 - 1 }

func (v StringsView) Get(id StringId) string {
	start := order.Uint32(v.offsets[4*id:])
	end := order.Uint32(v.offsets[4*(id+1):])
	return string(v.blob[start:end])
}

// TypesView is the module's compact type table view, indexed by
// ModuleTypeId (the post-collection local ids the emitter assigned —
// spec.md §4.B step 2).
type TypesView struct{ sec []byte }

func (m *Module) Types() TypesView { return TypesView{sec: m.section(secTypeDefs)} }

func (v TypesView) Len() int { return len(v.sec) / 4 }

func (v TypesView) Get(id ModuleTypeId) TypeDefRecord {
	var r TypeDefRecord
	r.unmarshal(v.sec[4*id:])
	return r
}

// Members is the flat `[types.members]` table; a Struct/Enum TypeDef's
// Data/Count name a contiguous slice of it.
type MembersView struct{ sec []byte }

func (m *Module) Members() MembersView { return MembersView{sec: m.section(secTypeMembers)} }

func (v MembersView) Len() int { return len(v.sec) / 8 }

func (v MembersView) Get(i int) (name StringId, typ ModuleTypeId) {
	var p pairRecord
	p.unmarshal(v.sec[8*i:])
	return StringId(p.Name), ModuleTypeId(p.Type)
}

// Slice returns the [start, start+count) member records of a Struct/Enum
// TypeDef.
func (v MembersView) Slice(start int, count int) []pairRecord {
	out := make([]pairRecord, count)
	for i := range out {
		var p pairRecord
		p.unmarshal(v.sec[8*(start+i):])
		out[i] = p
	}
	return out
}

// Names is the `[types.names]` table: definitions and `:: TypeName`
// renames visible to consumers.
type NamesView struct{ sec []byte }

func (m *Module) Names() NamesView { return NamesView{sec: m.section(secTypeNames)} }

func (v NamesView) Len() int { return len(v.sec) / 8 }

func (v NamesView) Get(i int) (name StringId, typ ModuleTypeId) {
	var p pairRecord
	p.unmarshal(v.sec[8*i:])
	return StringId(p.Name), ModuleTypeId(p.Type)
}

// Entrypoints is the `[entrypoints]` table.
type EntrypointsView struct{ sec []byte }

func (m *Module) Entrypoints() EntrypointsView { return EntrypointsView{sec: m.section(secEntrypoints)} }

func (v EntrypointsView) Len() int { return len(v.sec) / 8 }

func (v EntrypointsView) Get(i int) EntrypointRecord {
	var r EntrypointRecord
	r.unmarshal(v.sec[8*i:])
	return r
}

// NodeTypes / NodeFields are the grammar id<->name tables, present only
// when Linked() is true.
func (m *Module) NodeTypes() []idPair  { return decodeIdPairs(m.section(secNodeTypes)) }
func (m *Module) NodeFields() []idPair { return decodeIdPairs(m.section(secNodeFields)) }

func decodeIdPairs(sec []byte) []idPair {
	out := make([]idPair, len(sec)/idPairSize)
	for i := range out {
		out[i].unmarshal(sec[idPairSize*i:])
	}
	return out
}

// Transitions is the raw linearised instruction buffer; package debug
// disassembles it for humans, and the (out-of-scope) runtime VM walks it
// directly by StepId.
func (m *Module) Transitions() []byte { return m.section(secTransitions) }
