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

// Package syntax implements the lossless concrete syntax tree (CST), the
// recursive-descent parser with error recovery, and the typed AST view over
// the CST (spec.md §3, §4.P, §4.A).
package syntax

import (
	"plotnik.dev/plotnik/token"
)

// SyntaxKind labels a CST node. It is deliberately richer than the AST's
// Expr variants: it also carries grammar-only wrapper kinds (Branch,
// Anchor, NegatedField) and an Error recovery kind.
type SyntaxKind uint8

const (
	KRoot SyntaxKind = iota
	KDef
	KNamedNode
	KAnonymousNode
	KRef
	KSeqExpr
	KAltExpr
	KBranch
	KCapturedExpr
	KQuantifiedExpr
	KFieldExpr
	KNegatedField
	KAnchor
	KStringLit
	KError // a span of tokens the parser could not make sense of
)

var kindNames = [...]string{
	KRoot: "Root", KDef: "Def", KNamedNode: "NamedNode",
	KAnonymousNode: "AnonymousNode", KRef: "Ref", KSeqExpr: "SeqExpr",
	KAltExpr: "AltExpr", KBranch: "Branch", KCapturedExpr: "CapturedExpr",
	KQuantifiedExpr: "QuantifiedExpr", KFieldExpr: "FieldExpr",
	KNegatedField: "NegatedField", KAnchor: "Anchor", KStringLit: "StringLit",
	KError: "Error",
}

func (k SyntaxKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// Element is either a *Node or a Leaf; it is the unit of a Node's Children.
// Every byte of source text is accounted for by exactly one Leaf across the
// whole tree (spec.md §8.1), including trivia.
type Element interface {
	Span() token.Span
	elementMarker()
}

// Leaf wraps a single token (including trivia) as a CST element.
type Leaf struct {
	Tok  token.Token
	Text []byte // the source bytes the token covers
}

func (l Leaf) Span() token.Span { return l.Tok.Span }
func (Leaf) elementMarker()     {}

// Node is an interior CST node: a SyntaxKind label over a sequence of
// Elements (child Nodes and Leaves, trivia included).
type Node struct {
	Kind     SyntaxKind
	Children []Element
	span     token.Span
}

func (n *Node) Span() token.Span { return n.span }
func (*Node) elementMarker()     {}

// Tokens returns every Leaf directly or transitively under n, in order.
func (n *Node) Tokens() []token.Token {
	var out []token.Token
	var walk func(Element)
	walk = func(e Element) {
		switch x := e.(type) {
		case Leaf:
			out = append(out, x.Tok)
		case *Node:
			for _, c := range x.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// NonTrivia returns n's direct children that are not trivia leaves, in
// order. The AST view builds on this to skip whitespace/comments.
func (n *Node) NonTrivia() []Element {
	var out []Element
	for _, c := range n.Children {
		if l, ok := c.(Leaf); ok && l.Tok.Kind.IsTrivia() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ChildNodes returns n's direct Node children (skipping Leaves), in order.
func (n *Node) ChildNodes() []*Node {
	var out []*Node
	for _, c := range n.NonTrivia() {
		if cn, ok := c.(*Node); ok {
			out = append(out, cn)
		}
	}
	return out
}

// FirstToken returns the first non-trivia leaf token of the given kind
// among n's direct children, if any.
func (n *Node) FirstToken(k token.Kind) (token.Token, bool) {
	for _, c := range n.NonTrivia() {
		if l, ok := c.(Leaf); ok && l.Tok.Kind == k {
			return l.Tok, true
		}
	}
	return token.Token{}, false
}

// Text returns the concatenation of every leaf's text under n, which by
// construction equals the exact source slice n spans.
func (n *Node) Text() []byte {
	var out []byte
	var walk func(Element)
	walk = func(e Element) {
		switch x := e.(type) {
		case Leaf:
			out = append(out, x.Text...)
		case *Node:
			for _, c := range x.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// TokenText returns the source bytes of tok, found among n's transitive
// leaves by matching spans. Used by the analyser and NFA compiler to
// recover identifier/literal text from a token handed back by one of the
// AST view's accessors.
func TokenText(n *Node, tok token.Token) []byte {
	var out []byte
	var walk func(Element)
	walk = func(e Element) {
		if out != nil {
			return
		}
		switch x := e.(type) {
		case Leaf:
			if x.Tok.Span == tok.Span {
				out = x.Text
			}
		case *Node:
			for _, c := range x.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}
