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

// Package debug prints the compiler's internal structures — the
// instruction graph and the emitted bytecode module — in a human-readable
// form meant for diffing and troubleshooting, not for consumption by any
// other package. Modeled on the teacher's own
// cuelang.org/go/internal/core/debug, which does the same for its ADT.
package debug

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"plotnik.dev/plotnik/ir"
)

// WriteGraph prints every live instruction of res.Graph, one per line,
// labeled with its DefEntries name where one starts there.
func WriteGraph(w io.Writer, res *ir.CompileResult) {
	entryName := map[ir.Label]string{}
	for _, e := range res.DefEntries {
		entryName[e.Entry] = e.Name
	}

	labels := res.Graph.Labels()
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	for _, l := range labels {
		if name, ok := entryName[l]; ok {
			fmt.Fprintf(w, "-- %s --\n", name)
		}
		fmt.Fprintf(w, "L%d: %s\n", l, instrString(res.Graph.Get(l)))
	}
}

// GraphString is the string form of WriteGraph, for use in test diffs.
func GraphString(res *ir.CompileResult) string {
	var b strings.Builder
	WriteGraph(&b, res)
	return b.String()
}

func instrString(instr ir.Instruction) string {
	switch m := instr.(type) {
	case *ir.Match:
		return matchString(m)
	case *ir.Call:
		return fmt.Sprintf("call target=L%d next=L%d ref=%d", m.Target, m.Next, m.RefID)
	case *ir.Return:
		return fmt.Sprintf("return ref=%d", m.RefID)
	case *ir.Trampoline:
		return fmt.Sprintf("trampoline next=L%d", m.Next)
	default:
		return "?"
	}
}

func matchString(m *ir.Match) string {
	var b strings.Builder
	if m.IsEpsilon() {
		b.WriteString("eps")
	} else {
		b.WriteString("match")
	}
	fmt.Fprintf(&b, " nav=%s", m.Nav.Mode)
	if m.Nav.Mode.IsUp() {
		fmt.Fprintf(&b, "(%d)", m.Nav.Levels)
	}
	if m.HasNodeType {
		fmt.Fprintf(&b, " type=%q", m.NodeType)
	}
	if m.HasNodeField {
		fmt.Fprintf(&b, " field=%q", m.NodeField)
	}
	for _, f := range m.NegFields {
		fmt.Fprintf(&b, " !%s", f)
	}
	for _, e := range m.PreEffects {
		fmt.Fprintf(&b, " pre:%s", effectString(e))
	}
	for _, e := range m.PostEffects {
		fmt.Fprintf(&b, " post:%s", effectString(e))
	}
	b.WriteString(" ->")
	for _, s := range m.Successors {
		fmt.Fprintf(&b, " L%d", s)
	}
	return b.String()
}

func effectString(e ir.EffectOp) string {
	switch e.Op {
	case ir.OpE, ir.OpSet:
		return fmt.Sprintf("%s(%d)", e.Op, e.Payload)
	default:
		return e.Op.String()
	}
}
