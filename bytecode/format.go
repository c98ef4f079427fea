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

// Package bytecode implements the emitter and the zero-copy module reader
// of spec.md §4.B/§4.M/§6: a single 64-byte-aligned byte buffer containing
// the string table, the type table, the entrypoint table and the
// linearised instruction transitions produced by package ir.
package bytecode

import "encoding/binary"

// Magic identifies a plotnik bytecode module. FormatVersion 1 is the only
// format this package understands; a mismatch is a reader error, never a
// panic.
const (
	Magic         uint32 = 0x504c544b // "PLTK"
	FormatVersion uint32 = 1

	headerSize   = 64
	sectionAlign = 64
)

// linkedBit is the single header flag bit currently defined: set iff the
// module was emitted with grammar-linking tables (spec.md §6 "linked bit").
const linkedBit uint32 = 1 << 0

// order is the fixed little-endian byte order of every multi-byte field in
// the format (spec.md §6 "all multi-byte integers little-endian").
var order = binary.LittleEndian

// align64 rounds n up to the next multiple of sectionAlign.
func align64(n int) int {
	if r := n % sectionAlign; r != 0 {
		n += sectionAlign - r
	}
	return n
}

// section identifies one of the module's sections, in on-disk order. A
// section's byte length is never stored explicitly: it is the gap between
// its own offset and the next section's offset (or, for the last section,
// between its offset and TotalSize), since sections are always written
// contiguously (spec.md §4.B step 6 "emit, in order").
type section int

const (
	secStrings section = iota
	secNodeTypes
	secNodeFields
	secTrivia
	secTypeDefs
	secTypeMembers
	secTypeNames
	secEntrypoints
	secTransitions
	numSections
)

// Header is the first 64 bytes of a module: magic, version, flags, one
// offset per section, a total size, and a CRC-32 of everything after the
// header (spec.md §3 Header, §6).
type Header struct {
	Magic   uint32
	Version uint32
	Flags   uint32

	Offsets [numSections]uint32

	TotalSize uint32
	CRC32     uint32
}

func (h *Header) Linked() bool { return h.Flags&linkedBit != 0 }

// length returns the byte length of section s, derived from the gap to
// the next section's offset (or to TotalSize, for the last section).
func (h *Header) length(s section) uint32 {
	next := h.TotalSize
	if s+1 < numSections {
		next = h.Offsets[s+1]
	}
	return next - h.Offsets[s]
}

func (h *Header) marshal(buf []byte) {
	if len(buf) < headerSize {
		panic("bytecode: header buffer too small")
	}
	put := func(off int, v uint32) { order.PutUint32(buf[off:], v) }
	put(0, h.Magic)
	put(4, h.Version)
	put(8, h.Flags)
	base := 12
	for i, o := range h.Offsets {
		put(base+4*i, o)
	}
	tail := base + 4*numSections
	put(tail, h.TotalSize)
	put(tail+4, h.CRC32)
}

func (h *Header) unmarshal(buf []byte) {
	get := func(off int) uint32 { return order.Uint32(buf[off:]) }
	h.Magic = get(0)
	h.Version = get(4)
	h.Flags = get(8)
	base := 12
	for i := range h.Offsets {
		h.Offsets[i] = get(base + 4*i)
	}
	tail := base + 4*int(numSections)
	h.TotalSize = get(tail)
	h.CRC32 = get(tail + 4)
}

// TypeDefKind discriminates the 4-byte TypeDef on-disk record (spec.md §6
// TypeDef table).
type TypeDefKind uint8

const (
	TDVoid TypeDefKind = iota
	TDNode
	TDString
	TDOptional
	TDArrayStar // empty-allowed ("*")
	TDArrayPlus // non-empty ("+")
	TDAlias
	TDStruct
	TDEnum
	TDRef
)

// TypeDefRecord is the 4-byte on-disk encoding of one TypeShape
// (spec.md §6 TypeDef table): Data/Count are interpreted per Kind.
type TypeDefRecord struct {
	Data  uint16
	Count uint8
	Kind  TypeDefKind
}

func (r TypeDefRecord) marshal(buf []byte) {
	order.PutUint16(buf[0:], r.Data)
	buf[2] = r.Count
	buf[3] = byte(r.Kind)
}

func (r *TypeDefRecord) unmarshal(buf []byte) {
	r.Data = order.Uint16(buf[0:])
	r.Count = buf[2]
	r.Kind = TypeDefKind(buf[3])
}

// pairRecord is the shared 8-byte (StringId, TypeId) encoding of both
// TypeMember and TypeName: each id is written as a full u32.
type pairRecord struct {
	Name uint32 // StringId
	Type uint32 // TypeId
}

func (p pairRecord) marshal(buf []byte) {
	order.PutUint32(buf[0:], p.Name)
	order.PutUint32(buf[4:], p.Type)
}

func (p *pairRecord) unmarshal(buf []byte) {
	p.Name = order.Uint32(buf[0:])
	p.Type = order.Uint32(buf[4:])
}

// EntrypointRecord is the 8-byte on-disk record: a u32 name, a u16 target
// step and a u16 result type. It has no padding bytes.
type EntrypointRecord struct {
	Name       uint32 // StringId
	Target     uint16 // StepId
	ResultType uint16 // TypeId, truncated; validated at emit time
}

func (e EntrypointRecord) marshal(buf []byte) {
	order.PutUint32(buf[0:], e.Name)
	order.PutUint16(buf[4:], e.Target)
	order.PutUint16(buf[6:], e.ResultType)
}

func (e *EntrypointRecord) unmarshal(buf []byte) {
	e.Name = order.Uint32(buf[0:])
	e.Target = order.Uint16(buf[4:])
	e.ResultType = order.Uint16(buf[6:])
}

// idPair is a (id: u16, name: StringId) record used for node_types and
// node_fields, padded to 8 bytes.
type idPair struct {
	ID   uint16
	Name uint32
}

func (p idPair) marshal(buf []byte) {
	order.PutUint16(buf[0:], p.ID)
	order.PutUint32(buf[4:], p.Name)
}

func (p *idPair) unmarshal(buf []byte) {
	p.ID = order.Uint16(buf[0:])
	p.Name = order.Uint32(buf[4:])
}

const idPairSize = 8
