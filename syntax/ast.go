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

package syntax

import "plotnik.dev/plotnik/token"

// The AST view is a thin typed façade over the CST (spec.md §4.A): it never
// allocates a parallel tree, it just interprets *Node in context. Root,
// Def, and the Expr family below are value types wrapping a *Node.

// Root is the AST view of a KRoot node.
type Root struct{ N *Node }

// Defs returns every Def child in source order.
func (r Root) Defs() []Def {
	var out []Def
	for _, c := range r.N.ChildNodes() {
		if c.Kind == KDef {
			out = append(out, Def{N: c})
		}
	}
	return out
}

// Def is the AST view of a KDef node.
type Def struct{ N *Node }

// Name returns the definition's name and whether it is named at all. The
// last definition in a Root may be unnamed.
func (d Def) Name() (token.Token, bool) {
	return d.N.FirstToken(token.UPPER_IDENT)
}

// Body returns the definition's expression (its only non-name child node).
func (d Def) Body() Expr {
	for _, c := range d.N.ChildNodes() {
		return wrapExpr(c)
	}
	return Expr{}
}

// Expr is a typed view over any expression node. Kind mirrors the CST
// SyntaxKind; callers switch on it to recover the concrete shape via the
// As* accessors.
type Expr struct{ N *Node }

func wrapExpr(n *Node) Expr { return Expr{N: n} }

func (e Expr) Kind() SyntaxKind { return e.N.Kind }
func (e Expr) Span() token.Span { return e.N.Span() }
func (e Expr) Valid() bool      { return e.N != nil }

// NamedNode view -------------------------------------------------------------

type NamedNode struct{ N *Node }

func (e Expr) AsNamedNode() NamedNode { return NamedNode{e.N} }

// TypeToken returns the node-type token: UPPER_IDENT, LOWER_IDENT, WILDCARD,
// ERROR, or MISSING.
func (n NamedNode) TypeToken() (token.Token, bool) {
	for _, c := range n.N.NonTrivia() {
		if l, ok := c.(Leaf); ok {
			switch l.Tok.Kind {
			case token.UPPER_IDENT, token.LOWER_IDENT, token.WILDCARD, token.ERROR, token.MISSING:
				return l.Tok, true
			}
		}
	}
	return token.Token{}, false
}

// Supertype returns the subtype name after '/' in `type/subtype`, if any.
func (n NamedNode) Supertype() (token.Token, bool) {
	seenSlash := false
	for _, c := range n.N.NonTrivia() {
		if l, ok := c.(Leaf); ok {
			if l.Tok.Kind == token.SLASH {
				seenSlash = true
				continue
			}
			if seenSlash && l.Tok.Kind == token.LOWER_IDENT {
				return l.Tok, true
			}
		}
	}
	return token.Token{}, false
}

// Children returns the named node's child expressions, in order, excluding
// the leading type token.
func (n NamedNode) Children() []Expr {
	var out []Expr
	typeSeen := false
	for _, c := range n.N.NonTrivia() {
		switch x := c.(type) {
		case Leaf:
			if !typeSeen {
				switch x.Tok.Kind {
				case token.UPPER_IDENT, token.LOWER_IDENT, token.WILDCARD, token.ERROR, token.MISSING:
					typeSeen = true
				}
			}
		case *Node:
			out = append(out, wrapExpr(x))
		}
	}
	return out
}

// AnonymousNode view ----------------------------------------------------------

type AnonymousNode struct{ N *Node }

func (e Expr) AsAnonymousNode() AnonymousNode { return AnonymousNode{e.N} }

// StringLit, if the anonymous node is a quoted literal rather than a
// wildcard, returns the literal's raw body text (unescaped is the lexer's
// concern's caller's job downstream; here it is the raw source bytes).
func (a AnonymousNode) StringLit() ([]byte, bool) {
	if a.N.Kind != KStringLit {
		return nil, false
	}
	for _, c := range a.N.Children {
		if l, ok := c.(Leaf); ok && l.Tok.Kind == token.STRING_BODY {
			return l.Text, true
		}
	}
	return []byte{}, true
}

func (a AnonymousNode) IsWildcard() bool {
	_, ok := a.N.FirstToken(token.WILDCARD)
	return ok
}

// Ref view ---------------------------------------------------------------

type Ref struct{ N *Node }

func (e Expr) AsRef() Ref { return Ref{e.N} }

func (r Ref) Name() token.Token {
	t, _ := r.N.FirstToken(token.UPPER_IDENT)
	return t
}

// SeqExpr view -------------------------------------------------------------

type SeqExpr struct{ N *Node }

func (e Expr) AsSeqExpr() SeqExpr { return SeqExpr{e.N} }

// Item is either an expression or an anchor ('.') inside a sequence.
type Item struct {
	Expr   Expr
	Anchor bool
	Span   token.Span
}

func (s SeqExpr) Items() []Item {
	var out []Item
	for _, c := range s.N.ChildNodes() {
		if c.Kind == KAnchor {
			out = append(out, Item{Anchor: true, Span: c.Span()})
			continue
		}
		out = append(out, Item{Expr: wrapExpr(c), Span: c.Span()})
	}
	return out
}

// AltExpr view -------------------------------------------------------------

type AltExpr struct{ N *Node }

func (e Expr) AsAltExpr() AltExpr { return AltExpr{e.N} }

// Branch is a tagged alternative `Name: expr`.
type Branch struct{ N *Node }

func (b Branch) Name() token.Token {
	t, _ := b.N.FirstToken(token.UPPER_IDENT)
	return t
}

func (b Branch) Body() Expr {
	for _, c := range b.N.ChildNodes() {
		return wrapExpr(c)
	}
	return Expr{}
}

// Branches returns the tagged branches, if the alternation is fully tagged.
func (a AltExpr) Branches() []Branch {
	var out []Branch
	for _, c := range a.N.ChildNodes() {
		if c.Kind == KBranch {
			out = append(out, Branch{c})
		}
	}
	return out
}

// UntaggedAlternatives returns the plain expression alternatives (the
// AltExpr contains no KBranch children).
func (a AltExpr) UntaggedAlternatives() []Expr {
	var out []Expr
	for _, c := range a.N.ChildNodes() {
		if c.Kind != KBranch {
			out = append(out, wrapExpr(c))
		}
	}
	return out
}

// Alternatives returns, in source order, the body expression of every
// alternative: a Branch's Body() for tagged branches, the expression
// itself otherwise. Used by the type inferencer to unify a mixed or fully
// untagged alternation (spec.md §4.T.3).
func (a AltExpr) Alternatives() []Expr {
	var out []Expr
	for _, c := range a.N.ChildNodes() {
		if c.Kind == KBranch {
			out = append(out, Branch{c}.Body())
			continue
		}
		out = append(out, wrapExpr(c))
	}
	return out
}

// IsTagged reports whether every alternative is a Branch.
func (a AltExpr) IsTagged() bool {
	children := a.N.ChildNodes()
	if len(children) == 0 {
		return false
	}
	for _, c := range children {
		if c.Kind != KBranch {
			return false
		}
	}
	return true
}

// CapturedExpr view ----------------------------------------------------------

type CapturedExpr struct{ N *Node }

func (e Expr) AsCapturedExpr() CapturedExpr { return CapturedExpr{e.N} }

// Inner returns the captured expression, or the zero Expr if this is a bare
// capture with no inner pattern (spec.md §4.T.1 CapturedExpr "with no
// inner").
func (c CapturedExpr) Inner() Expr {
	children := c.N.ChildNodes()
	if len(children) == 0 {
		return Expr{}
	}
	return wrapExpr(children[0])
}

func (c CapturedExpr) Name() token.Token {
	t, _ := c.N.FirstToken(token.LOWER_IDENT)
	return t
}

// TypeAnnotation returns the `:: T` type name token, if present, and
// whether T was written in upper case (a user type name) vs lower case
// (only "string" is meaningful, per spec.md §4.T.1).
func (c CapturedExpr) TypeAnnotation() (token.Token, bool) {
	seenColonColon := false
	for _, el := range c.N.NonTrivia() {
		l, ok := el.(Leaf)
		if !ok {
			continue
		}
		if l.Tok.Kind == token.COLONCOLON {
			seenColonColon = true
			continue
		}
		if seenColonColon && (l.Tok.Kind == token.LOWER_IDENT || l.Tok.Kind == token.UPPER_IDENT) {
			return l.Tok, true
		}
	}
	return token.Token{}, false
}

// QuantifiedExpr view --------------------------------------------------------

type QuantifiedExpr struct{ N *Node }

func (e Expr) AsQuantifiedExpr() QuantifiedExpr { return QuantifiedExpr{e.N} }

func (q QuantifiedExpr) Inner() Expr {
	children := q.N.ChildNodes()
	return wrapExpr(children[0])
}

// Operator returns the quantifier token: QUESTION, STAR, or PLUS.
func (q QuantifiedExpr) Operator() token.Kind {
	for _, c := range q.N.NonTrivia() {
		if l, ok := c.(Leaf); ok && isQuantifier(l.Tok.Kind) {
			return l.Tok.Kind
		}
	}
	return token.ILLEGAL
}

// IsLazy reports whether the quantifier carries a trailing '?' lazy marker
// (`??`, `*?`, `+?`): a second quantifier-shaped token after the first.
// Typing is identical to the greedy form (spec.md §4.T.1); only the NFA
// compiler's successor order differs (spec.md §4.C.1).
func (q QuantifiedExpr) IsLazy() bool {
	seenFirst := false
	for _, c := range q.N.NonTrivia() {
		l, ok := c.(Leaf)
		if !ok || !isQuantifier(l.Tok.Kind) {
			continue
		}
		if !seenFirst {
			seenFirst = true
			continue
		}
		return true
	}
	return false
}

// FieldExpr view -----------------------------------------------------------

type FieldExpr struct{ N *Node }

func (e Expr) AsFieldExpr() FieldExpr { return FieldExpr{e.N} }

func (f FieldExpr) Name() token.Token {
	t, _ := f.N.FirstToken(token.LOWER_IDENT)
	return t
}

func (f FieldExpr) Value() Expr {
	children := f.N.ChildNodes()
	return wrapExpr(children[0])
}

// NegatedField view ----------------------------------------------------------

type NegatedField struct{ N *Node }

func (e Expr) AsNegatedField() NegatedField { return NegatedField{e.N} }

func (n NegatedField) Name() token.Token {
	t, _ := n.N.FirstToken(token.LOWER_IDENT)
	return t
}
