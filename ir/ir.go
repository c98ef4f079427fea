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

// Package ir implements the instruction graph of spec.md §3, the Thompson-
// style NFA compiler of §4.C, the epsilon-elimination fixed point of §4.E,
// and the cache-line-aware layout pass of §4.O. Modeled on the teacher's own
// IR (cuelang.org/go/internal/core/adt): a small closed set of concrete
// instruction types satisfying one interface, built bottom-up by a
// compiler that threads a shared context through a typed-AST visitor.
package ir

import "fmt"

// Label identifies one Instruction symbolically; it is resolved to a
// concrete StepId only by the layout pass (spec.md §3 "Instruction graph").
type Label int

// Nav is the movement the matcher performs before a Match instruction
// inspects (or ignores) a tree position (spec.md §3 Nav).
type Nav uint8

const (
	Stay Nav = iota
	Down
	DownSkip
	DownExact
	Next
	NextSkip
	NextExact
	Up
	UpSkipTrivia
	UpExact
)

func (n Nav) String() string {
	switch n {
	case Stay:
		return "Stay"
	case Down:
		return "Down"
	case DownSkip:
		return "DownSkip"
	case DownExact:
		return "DownExact"
	case Next:
		return "Next"
	case NextSkip:
		return "NextSkip"
	case NextExact:
		return "NextExact"
	case Up:
		return "Up"
	case UpSkipTrivia:
		return "UpSkipTrivia"
	case UpExact:
		return "UpExact"
	default:
		return fmt.Sprintf("Nav(%d)", n)
	}
}

// IsUp reports whether n is one of the three Up variants, which carry a
// Levels count.
func (n Nav) IsUp() bool { return n == Up || n == UpSkipTrivia || n == UpExact }

// NavOp pairs a Nav mode with its Levels operand (meaningful for the Up
// variants only; spec.md §3 Nav).
type NavOp struct {
	Mode   Nav
	Levels int
}

// EffectOpcode enumerates the "effect stream" opcodes of spec.md §3
// EffectOp.
type EffectOpcode uint8

const (
	OpS EffectOpcode = iota
	OpEndS
	OpA
	OpEndA
	OpPush
	OpE
	OpEndE
	OpNode
	OpText
	OpSet
	OpNull
)

func (op EffectOpcode) String() string {
	switch op {
	case OpS:
		return "S"
	case OpEndS:
		return "EndS"
	case OpA:
		return "A"
	case OpEndA:
		return "EndA"
	case OpPush:
		return "Push"
	case OpE:
		return "E"
	case OpEndE:
		return "EndE"
	case OpNode:
		return "Node"
	case OpText:
		return "Text"
	case OpSet:
		return "Set"
	case OpNull:
		return "Null"
	default:
		return fmt.Sprintf("Op(%d)", op)
	}
}

// EffectOp is one opcode plus its payload: the enum variant index for OpE,
// or the absolute struct/enum member index for OpSet. Other opcodes ignore
// Payload (spec.md §3 EffectOp).
type EffectOp struct {
	Op      EffectOpcode
	Payload int
}

// Instruction is the common interface of every IR node. Label identifies it
// symbolically so the compiler can emit forward references before a
// successor instruction exists (spec.md §3).
type Instruction interface {
	Lbl() Label
	instrMarker()
}

// Match is the only instruction that may consume a tree position: it moves
// per Nav, optionally constrains the node type and/or field, optionally
// requires a set of fields to be absent, and fires effects before and/or
// after the match (spec.md §3 Match). A Match with Stay nav and no
// NodeType/NodeField/NegFields is an epsilon: it participates in graph
// shape but consumes nothing.
type Match struct {
	Label Label
	Nav   NavOp

	NodeType    string // node type name; "" = no constraint
	HasNodeType bool
	NodeField   string // field name the preceding Nav must have crossed; "" = none
	HasNodeField bool
	NegFields   []string // fields required absent (`!field`)

	PreEffects  []EffectOp
	PostEffects []EffectOp

	Successors []Label
}

func (m *Match) Lbl() Label   { return m.Label }
func (*Match) instrMarker()   {}

// IsEpsilon reports whether m consumes no tree position: Stay nav, no node
// or field constraint (spec.md GLOSSARY "Epsilon").
func (m *Match) IsEpsilon() bool {
	return m.Nav.Mode == Stay && !m.HasNodeType && !m.HasNodeField && len(m.NegFields) == 0
}

// Call enters a recursive definition; the matcher resumes at Next after
// Target returns, and must observe the same RefID on the paired Return
// (spec.md §3 Call).
type Call struct {
	Label  Label
	Target Label
	Next   Label
	RefID  int
}

func (c *Call) Lbl() Label { return c.Label }
func (*Call) instrMarker() {}

// Return pairs with the Call bearing the same RefID (spec.md §3 Return).
type Return struct {
	Label Label
	RefID int
}

func (r *Return) Lbl() Label { return r.Label }
func (*Return) instrMarker() {}

// Trampoline is a layout hook with no runtime effect of its own beyond
// forwarding to Next (spec.md §3 Trampoline); the layout pass gives it one
// step, like any other single-step instruction.
type Trampoline struct {
	Label Label
	Next  Label
}

func (t *Trampoline) Lbl() Label { return t.Label }
func (*Trampoline) instrMarker() {}

// Graph is a mutable instruction graph keyed by Label. Instructions are
// pointer types so later passes (epsilon elimination, layout) can rewrite
// successors in place (spec.md §3 "Instruction graph").
type Graph struct {
	instrs map[Label]Instruction
	order  []Label // creation order; Labels filters out anything since removed
	next   Label
}

// NewGraph creates an empty instruction graph.
func NewGraph() *Graph {
	return &Graph{instrs: map[Label]Instruction{}}
}

// NewLabel reserves a fresh, as-yet-unassigned Label.
func (g *Graph) NewLabel() Label {
	l := g.next
	g.next++
	return l
}

// Add registers instr under its own Label, which must already have been
// reserved via NewLabel.
func (g *Graph) Add(instr Instruction) {
	g.instrs[instr.Lbl()] = instr
	g.order = append(g.order, instr.Lbl())
}

// Get returns the instruction at l, or nil if l has been removed or was
// never assigned.
func (g *Graph) Get(l Label) Instruction { return g.instrs[l] }

// Remove deletes the instruction at l.
func (g *Graph) Remove(l Label) { delete(g.instrs, l) }

// Labels returns every live label in creation order.
func (g *Graph) Labels() []Label {
	out := make([]Label, 0, len(g.order))
	for _, l := range g.order {
		if _, ok := g.instrs[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Len returns the number of live instructions.
func (g *Graph) Len() int { return len(g.instrs) }

// DefEntry names one definition's compiled entrypoint (spec.md §3
// "LayoutResult ... ordered list of (Label, StepId) for entrypoints", the
// pre-layout half of that pairing).
type DefEntry struct {
	DefID      int
	Name       string
	Entry      Label
	ResultType int // types.TypeId, stored as int
}

// CompileResult is the NFA compiler's output: the instruction graph plus
// one entrypoint per definition, in source order (spec.md §5 "Definition
// entrypoints appear in source order").
type CompileResult struct {
	Graph      *Graph
	DefEntries []DefEntry
}
