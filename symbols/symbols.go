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

// Package symbols implements the symbol/definition analyser of spec.md
// §4.S: one pass over Root.Defs() collecting named patterns, followed by
// Tarjan SCC over the reference graph to classify definitions as
// recursive or not.
package symbols

import (
	"fmt"

	"plotnik.dev/plotnik/diag"
	"plotnik.dev/plotnik/syntax"
	"plotnik.dev/plotnik/token"
)

// DefId identifies one definition by its position in source order.
type DefId int

// Def records one `Name = expr` definition (or the single anonymous
// trailing one).
type Def struct {
	ID        DefId
	Name      string
	Anonymous bool
	Span      token.Span
	Body      syntax.Expr
}

// Table maps definition names to their bodies and exposes the recursion
// predicate computed by Tarjan SCC over the Ref graph.
type Table struct {
	defs      []*Def
	byName    map[string]DefId
	recursive map[DefId]bool
}

// Build collects every definition in root and classifies recursion.
// Duplicate names and dangling Refs are reported into bag but do not stop
// analysis (spec.md §7 propagation policy).
func Build(root syntax.Root, bag *diag.Bag) *Table {
	t := &Table{byName: map[string]DefId{}}

	for i, d := range root.Defs() {
		id := DefId(i)
		name, named := d.Name()
		def := &Def{ID: id, Span: d.N.Span(), Body: d.Body()}
		if named {
			def.Name = string(sourceOf(d.N, name))
		} else {
			def.Anonymous = true
			def.Name = fmt.Sprintf("$anon%d", i)
		}
		if prev, ok := t.byName[def.Name]; ok && !def.Anonymous {
			bag.New(diag.DuplicateDefName, def.Span).
				Message("%q is already defined", def.Name).
				RelatedTo("first defined here", t.defs[prev].Span).
				Emit()
		} else {
			t.byName[def.Name] = id
		}
		t.defs = append(t.defs, def)
	}

	t.recursive = computeRecursive(t, bag)
	return t
}

// sourceOf recovers the bytes a token within n's subtree spans, by reading
// straight from n's own Text(): every Leaf stores its own source slice, so
// we can find the one at tok's span without needing the original buffer.
func sourceOf(n *syntax.Node, tok token.Token) []byte {
	var out []byte
	var walk func(syntax.Element)
	walk = func(e syntax.Element) {
		if out != nil {
			return
		}
		switch x := e.(type) {
		case syntax.Leaf:
			if x.Tok.Span == tok.Span {
				out = x.Text
			}
		case *syntax.Node:
			for _, c := range x.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// Defs returns every definition in source order.
func (t *Table) Defs() []*Def { return t.defs }

// Lookup resolves a reference name to its Def, if defined.
func (t *Table) Lookup(name string) (*Def, bool) {
	id, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.defs[id], true
}

// IsRecursive reports whether id participates in recursion: it is in a
// non-trivial SCC, or it is a singleton SCC with a self-loop (spec.md
// §4.S).
func (t *Table) IsRecursive(id DefId) bool { return t.recursive[id] }

// ---- reference graph + Tarjan SCC -----------------------------------------

func computeRecursive(t *Table, bag *diag.Bag) map[DefId]bool {
	adj := make([][]DefId, len(t.defs))
	for i, d := range t.defs {
		adj[i] = collectRefs(t, d.Body, bag)
	}

	sc := &sccState{
		adj:     adj,
		index:   make([]int, len(t.defs)),
		low:     make([]int, len(t.defs)),
		onStack: make([]bool, len(t.defs)),
	}
	for i := range sc.index {
		sc.index[i] = -1
	}
	for i := range t.defs {
		if sc.index[i] == -1 {
			sc.strongconnect(DefId(i))
		}
	}

	recursive := map[DefId]bool{}
	for _, comp := range sc.components {
		if len(comp) > 1 {
			for _, id := range comp {
				recursive[id] = true
			}
			continue
		}
		id := comp[0]
		for _, nbr := range adj[id] {
			if nbr == id {
				recursive[id] = true
			}
		}
	}
	return recursive
}

// collectRefs walks e looking for Ref expressions and resolves them
// against t, reporting an UndefinedRef diagnostic once per reference to an
// unknown name.
func collectRefs(t *Table, e syntax.Expr, bag *diag.Bag) []DefId {
	var out []DefId
	var walk func(syntax.Expr)
	walk = func(e syntax.Expr) {
		if !e.Valid() {
			return
		}
		switch e.Kind() {
		case syntax.KRef:
			name := nodeText(e.N)
			if def, ok := t.Lookup(name); ok {
				out = append(out, def.ID)
			} else {
				bag.New(diag.UndefinedRef, e.Span()).
					Message("reference to undefined pattern %q", name).
					Emit()
			}
		case syntax.KNamedNode:
			for _, c := range e.AsNamedNode().Children() {
				walk(c)
			}
		case syntax.KSeqExpr:
			for _, it := range e.AsSeqExpr().Items() {
				if !it.Anchor {
					walk(it.Expr)
				}
			}
		case syntax.KAltExpr:
			alt := e.AsAltExpr()
			for _, b := range alt.Branches() {
				walk(b.Body())
			}
			for _, a := range alt.UntaggedAlternatives() {
				walk(a)
			}
		case syntax.KCapturedExpr:
			if inner := e.AsCapturedExpr().Inner(); inner.Valid() {
				walk(inner)
			}
		case syntax.KQuantifiedExpr:
			walk(e.AsQuantifiedExpr().Inner())
		case syntax.KFieldExpr:
			walk(e.AsFieldExpr().Value())
		}
	}
	walk(e)
	return out
}

func nodeText(n *syntax.Node) string {
	var tok token.Token
	var ok bool
	tok, ok = n.FirstToken(token.UPPER_IDENT)
	if !ok {
		return ""
	}
	for _, c := range n.Children {
		if l, lok := c.(syntax.Leaf); lok && l.Tok.Span == tok.Span {
			return string(l.Text)
		}
	}
	return ""
}

type sccState struct {
	adj        [][]DefId
	index      []int
	low        []int
	onStack    []bool
	stack      []DefId
	counter    int
	components [][]DefId
}

func (s *sccState) strongconnect(v DefId) {
	s.index[v] = s.counter
	s.low[v] = s.counter
	s.counter++
	s.stack = append(s.stack, v)
	s.onStack[v] = true

	for _, w := range s.adj[v] {
		if s.index[w] == -1 {
			s.strongconnect(w)
			if s.low[w] < s.low[v] {
				s.low[v] = s.low[w]
			}
		} else if s.onStack[w] {
			if s.index[w] < s.low[v] {
				s.low[v] = s.index[w]
			}
		}
	}

	if s.low[v] == s.index[v] {
		var comp []DefId
		for {
			n := len(s.stack) - 1
			w := s.stack[n]
			s.stack = s.stack[:n]
			s.onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		s.components = append(s.components, comp)
	}
}
