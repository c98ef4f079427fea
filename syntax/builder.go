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

import (
	"plotnik.dev/plotnik/lexer"
	"plotnik.dev/plotnik/token"
)

// builder assembles the CST bottom-up. It keeps a flat "pending" stack of
// Elements produced so far at the current nesting level; Mark/Wrap lets the
// parser retroactively re-parent a run of pending elements under a new
// Node — e.g. "wrap what I just parsed under a Quantifier node" — without
// ever mutating an already-wrapped Node (spec.md §3 CST).
type builder struct {
	lex     *lexer.Lexer
	pending []Element

	// lookahead buffer, filled lazily; index 0 is the next unconsumed
	// non-trivia token along with any trivia immediately preceding it.
	buf []bufTok
}

type bufTok struct {
	trivia []token.Token
	tok    token.Token
}

func newBuilder(src []byte) *builder {
	return &builder{lex: lexer.New(src)}
}

// mark is an opaque checkpoint into the pending stack.
type mark int

// Mark returns a checkpoint at the current top of the pending stack.
func (b *builder) Mark() mark { return mark(len(b.pending)) }

// Wrap collects every element pushed since m and wraps them into a new Node
// of the given kind, replacing them in-place on the pending stack.
func (b *builder) Wrap(m mark, kind SyntaxKind) *Node {
	children := append([]Element(nil), b.pending[m:]...)
	b.pending = b.pending[:m]
	n := &Node{Kind: kind, Children: children}
	if len(children) > 0 {
		sp := children[0].Span()
		for _, c := range children[1:] {
			sp = sp.Cover(c.Span())
		}
		n.span = sp
	}
	b.pending = append(b.pending, n)
	return n
}

// Discard drops every element pushed since m without wrapping it (used when
// a speculative parse fails and its trivia/tokens must still be accounted
// for by whatever recovery wraps them next — callers re-Mark immediately).
func (b *builder) Discard(m mark) []Element {
	dropped := append([]Element(nil), b.pending[m:]...)
	b.pending = b.pending[:m]
	return dropped
}

// fill ensures buf has at least n+1 entries.
func (b *builder) fill(n int) {
	for len(b.buf) <= n {
		var trivia []token.Token
		for {
			t := b.lex.Next()
			if t.Kind.IsTrivia() {
				trivia = append(trivia, t)
				continue
			}
			b.buf = append(b.buf, bufTok{trivia: trivia, tok: t})
			break
		}
	}
}

// Peek returns the kind of the n'th upcoming non-trivia token (0 = next).
func (b *builder) Peek(n int) token.Kind {
	b.fill(n)
	return b.buf[n].tok.Kind
}

// PeekTok returns the n'th upcoming non-trivia token itself.
func (b *builder) PeekTok(n int) token.Token {
	b.fill(n)
	return b.buf[n].tok
}

// textOf returns the source bytes a token spans. It re-derives them from the
// lexer's source buffer via the span, which is always valid because spans
// are never mutated after creation.
func (b *builder) textOf(sp token.Span, src []byte) []byte {
	return src[sp.Start:sp.End]
}

// Bump consumes the next non-trivia token (plus any trivia immediately
// preceding it) and pushes them onto pending as Leaves, in source order.
func (b *builder) Bump(src []byte) token.Token {
	b.fill(0)
	bt := b.buf[0]
	b.buf = b.buf[1:]
	for _, tr := range bt.trivia {
		b.pending = append(b.pending, Leaf{Tok: tr, Text: b.textOf(tr.Span, src)})
	}
	b.pending = append(b.pending, Leaf{Tok: bt.tok, Text: b.textOf(bt.tok.Span, src)})
	return bt.tok
}

// AtEOF reports whether the next non-trivia token is EOF.
func (b *builder) AtEOF() bool { return b.Peek(0) == token.EOF }
