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
	"hash/crc32"
	"sort"

	"plotnik.dev/plotnik/analyze"
	"plotnik.dev/plotnik/ir"
	"plotnik.dev/plotnik/types"
)

const maxU16 = 1<<16 - 1

// Emit runs the full compile pipeline (NFA compile, epsilon elimination,
// layout) over an analysed query and serializes the result into a single
// byte buffer (spec.md §4.B). link is optional; when nil, every node/field
// constraint in the module drops to "no constraint" and the linked header
// bit is unset.
func Emit(res *analyze.Result, link *LinkTables) ([]byte, error) {
	if len(res.Symbols.Defs()) == 0 {
		return nil, errf(ErrInvalidQuery, "no definitions")
	}

	strings := newStringTable()
	typeTable := newTypeTableBuilder(res.Types, res.Interner, strings, res.CustomNames)
	for _, d := range res.Symbols.Defs() {
		local := typeTable.collect(resultTypeOf(res.DefInfo[d.ID]))
		typeTable.names = append(typeTable.names, pairRecord{
			Name: strings.intern(d.Name),
			Type: local,
		})
	}

	compiled := ir.Compile(res)
	ir.Eliminate(compiled)
	layout := ir.Layout(compiled)

	if strings.count() > maxU16 {
		return nil, errf(ErrTooManyStrings, "%d strings", strings.count())
	}
	if len(typeTable.order) > maxU16 {
		return nil, errf(ErrTooManyTypes, "%d types", len(typeTable.order))
	}
	if len(typeTable.members) > maxU16 {
		return nil, errf(ErrTooManyMembers, "%d members", len(typeTable.members))
	}
	if len(compiled.DefEntries) > maxU16 {
		return nil, errf(ErrTooManyEntrypoints, "%d entrypoints", len(compiled.DefEntries))
	}
	if layout.TotalSteps > maxU16 {
		return nil, errf(ErrTooManyTransitions, "%d steps", layout.TotalSteps)
	}

	var nodeTypes, nodeFields, trivia []byte
	if link != nil {
		nodeTypes = encodeIdPairs(link.NodeTypeIds, strings)
		nodeFields = encodeIdPairs(link.NodeFieldIds, strings)
		for _, name := range link.Trivia {
			var buf [4]byte
			order.PutUint32(buf[:], strings.intern(name))
			trivia = append(trivia, buf[:]...)
		}
	}

	typeDefs := encodeTypeDefs(typeTable.defs)
	typeMembers := encodePairs(typeTable.members)
	typeNames := encodePairs(dedupeNames(typeTable.names))

	entrypoints := encodeEntrypoints(compiled.DefEntries, layout, strings, typeTable)

	transitions, err := encodeTransitions(compiled.Graph, layout, link)
	if err != nil {
		return nil, err
	}

	sections := [numSections][]byte{
		secStrings:     encodeStrings(strings.stringTableBuilder),
		secNodeTypes:   nodeTypes,
		secNodeFields:  nodeFields,
		secTrivia:      trivia,
		secTypeDefs:    typeDefs,
		secTypeMembers: typeMembers,
		secTypeNames:   typeNames,
		secEntrypoints: entrypoints,
		secTransitions: transitions,
	}

	body := make([]byte, 0, 4096)
	var offsets [numSections]uint32
	for i, sec := range sections {
		for len(body)%sectionAlign != 0 {
			body = append(body, 0)
		}
		offsets[i] = uint32(len(body))
		body = append(body, sec...)
	}
	for len(body)%sectionAlign != 0 {
		body = append(body, 0)
	}

	buf := make([]byte, headerSize+len(body))
	copy(buf[headerSize:], body)

	h := &Header{
		Magic:   Magic,
		Version: FormatVersion,
	}
	if link != nil {
		h.Flags |= linkedBit
	}
	for i := range offsets {
		h.Offsets[i] = headerSize + offsets[i]
	}
	h.TotalSize = uint32(len(buf))
	h.CRC32 = crc32.ChecksumIEEE(buf[headerSize:])
	h.marshal(buf)

	return buf, nil
}

func resultTypeOf(ti types.TermInfo) types.TypeId {
	switch ti.Flow.Kind {
	case types.FlowScalar, types.FlowBubble:
		return ti.Flow.Type
	default:
		return types.VOID
	}
}

// dedupeNames keeps the first TypeNames entry per (Name, Type) pair: a
// definition whose result type was also given a `:: TypeName` rename would
// otherwise be named twice.
func dedupeNames(in []pairRecord) []pairRecord {
	seen := map[pairRecord]bool{}
	out := make([]pairRecord, 0, len(in))
	for _, p := range in {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// encodeStrings lays out the `[strings]` section as a 4-byte string count
// (so the reader can locate the offsets array without a second pass),
// followed by the packed UTF-8 blob, followed by the (count+1) array of
// u32 offsets (spec.md §3, §6).
func encodeStrings(b *stringTableBuilder) []byte {
	count := len(b.offsets) - 1
	out := make([]byte, 0, 4+len(b.bytes)+4*len(b.offsets))
	var countBuf [4]byte
	order.PutUint32(countBuf[:], uint32(count))
	out = append(out, countBuf[:]...)
	out = append(out, b.bytes...)
	for _, off := range b.offsets {
		var buf [4]byte
		order.PutUint32(buf[:], off)
		out = append(out, buf[:]...)
	}
	return out
}

func encodeIdPairs(m map[string]uint16, strings *stringTableState) []byte {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]byte, 0, idPairSize*len(names))
	for _, name := range names {
		p := idPair{ID: m[name], Name: strings.intern(name)}
		var buf [idPairSize]byte
		p.marshal(buf[:])
		out = append(out, buf[:]...)
	}
	return out
}

func encodeTypeDefs(defs []TypeDefRecord) []byte {
	out := make([]byte, 4*len(defs))
	for i, d := range defs {
		d.marshal(out[4*i:])
	}
	return out
}

func encodePairs(pairs []pairRecord) []byte {
	out := make([]byte, 8*len(pairs))
	for i, p := range pairs {
		p.marshal(out[8*i:])
	}
	return out
}

func encodeEntrypoints(entries []ir.DefEntry, layout *ir.LayoutResult, strings *stringTableState, tt *typeTableBuilder) []byte {
	out := make([]byte, 8*len(entries))
	for i, e := range entries {
		local, ok := tt.localOf[types.TypeId(e.ResultType)]
		if !ok {
			local = tt.collect(types.TypeId(e.ResultType))
		}
		rec := EntrypointRecord{
			Name:       strings.intern(e.Name),
			Target:     uint16(layout.StepOf[e.Entry]),
			ResultType: uint16(local),
		}
		rec.marshal(out[8*i:])
	}
	return out
}

// encodeTransitions linearises every live instruction into the fixed-size
// step encoding StepsFor's sizing matches (spec.md §4.O, §4.B step 6):
// Match is [header][type/field][negFields...][preEffects...][postEffects...][successors...];
// Call is [header+target/next][refID]; Return and Trampoline are one step
// each. All successor/target references are resolved against
// layout.StepOf so the buffer never carries a dangling symbolic Label.
func encodeTransitions(g *ir.Graph, layout *ir.LayoutResult, link *LinkTables) ([]byte, error) {
	buf := make([]byte, 8*layout.TotalSteps)
	step := func(s ir.StepId) []byte { return buf[8*int(s):] }

	resolve := func(l ir.Label) (ir.StepId, error) {
		s, ok := layout.StepOf[l]
		if !ok {
			return 0, internalf("label %d has no assigned step", l)
		}
		return s, nil
	}

	for _, l := range g.Labels() {
		s, err := resolve(l)
		if err != nil {
			return nil, err
		}
		switch instr := g.Get(l).(type) {
		case *ir.Match:
			encodeMatch(step(s), instr, layout, link)
		case *ir.Call:
			target, err := resolve(instr.Target)
			if err != nil {
				return nil, err
			}
			next, err := resolve(instr.Next)
			if err != nil {
				return nil, err
			}
			b := step(s)
			b[0] = 1 // tag Call
			order.PutUint16(b[4:], uint16(target))
			order.PutUint16(b[6:], uint16(next))
			order.PutUint32(step(s+1), uint32(instr.RefID))
		case *ir.Return:
			b := step(s)
			b[0] = 2 // tag Return
			order.PutUint32(b[4:], uint32(instr.RefID))
		case *ir.Trampoline:
			next, err := resolve(instr.Next)
			if err != nil {
				return nil, err
			}
			b := step(s)
			b[0] = 3 // tag Trampoline
			order.PutUint16(b[4:], uint16(next))
		}
	}
	return buf, nil
}

func encodeMatch(b []byte, m *ir.Match, layout *ir.LayoutResult, link *LinkTables) {
	var flags byte
	var typeID, fieldID uint16
	if id, ok := link.lookupNodeType(m.NodeType); m.HasNodeType && ok {
		flags |= 1 << 0
		typeID = id
	}
	if id, ok := link.lookupNodeField(m.NodeField); m.HasNodeField && ok {
		flags |= 1 << 1
		fieldID = id
	}

	b[0] = 0 // tag Match
	b[1] = byte(m.Nav.Mode)
	b[2] = flags
	b[3] = byte(len(m.NegFields))
	b[4] = byte(len(m.PreEffects))
	b[5] = byte(len(m.PostEffects))
	b[6] = byte(len(m.Successors))
	b[7] = byte(m.Nav.Levels)

	order.PutUint16(b[8:], typeID)
	order.PutUint16(b[10:], fieldID)

	off := 16
	off = packU16s(b, off, negFieldIds(m.NegFields, link))
	for _, eff := range m.PreEffects {
		encodeEffect(b[off:off+8], eff)
		off += 8
	}
	for _, eff := range m.PostEffects {
		encodeEffect(b[off:off+8], eff)
		off += 8
	}
	succ := make([]uint16, len(m.Successors))
	for i, s := range m.Successors {
		succ[i] = uint16(layout.StepOf[s])
	}
	packU16s(b, off, succ)
}

func negFieldIds(fields []string, link *LinkTables) []uint16 {
	out := make([]uint16, len(fields))
	for i, f := range fields {
		if id, ok := link.lookupNodeField(f); ok {
			out[i] = id
		}
	}
	return out
}

// packU16s writes vs, four per 8-byte step, starting at byte offset off
// within b, and returns the offset immediately past the last full step
// used (matching ir.StepsFor's ceil(len/4) sizing).
func packU16s(b []byte, off int, vs []uint16) int {
	for i, v := range vs {
		order.PutUint16(b[off+2*(i%4):], v)
		if i%4 == 3 {
			off += 8
		}
	}
	if len(vs)%4 != 0 {
		off += 8
	}
	return off
}

func encodeEffect(b []byte, eff ir.EffectOp) {
	b[0] = byte(eff.Op)
	order.PutUint32(b[4:], uint32(int32(eff.Payload)))
}
