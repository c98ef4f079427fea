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
	"unicode"
	"unicode/utf8"

	"plotnik.dev/plotnik/diag"
	"plotnik.dev/plotnik/token"
)

// maxRecursionDepth bounds recursive-descent nesting so malformed,
// deeply-nested input trips a diagnostic instead of overflowing the Go
// stack (spec.md §4.P).
const maxRecursionDepth = 512

// Parse parses source into a lossless CST plus accumulated diagnostics.
// Parsing never fails outright: aggressive recovery means a best-effort
// tree is always returned (spec.md §4.P, §7).
func Parse(src []byte) (*Node, *diag.Bag) {
	p := &parser{
		b:   newBuilder(src),
		src: src,
		bag: &diag.Bag{},
	}
	root := p.parseRoot()
	return root, p.bag
}

type openDelim struct {
	kind token.Kind
	span token.Span
}

type parser struct {
	b     *builder
	src   []byte
	bag   *diag.Bag
	depth int

	delims []openDelim
}

func (p *parser) errf(kind diag.Kind, span token.Span) *diag.Builder {
	return p.bag.New(kind, span)
}

func (p *parser) peek() token.Kind       { return p.b.Peek(0) }
func (p *parser) peekAt(n int) token.Kind { return p.b.Peek(n) }
func (p *parser) peekTok() token.Token   { return p.b.PeekTok(0) }
func (p *parser) bump() token.Token      { return p.b.Bump(p.src) }

func (p *parser) enter() bool {
	p.depth++
	if p.depth > maxRecursionDepth {
		p.errf(diag.RecursionLimit, p.peekTok().Span).
			Message("pattern nesting exceeds %d levels", maxRecursionDepth).
			Emit()
		return false
	}
	return true
}

func (p *parser) leave() { p.depth-- }

func (p *parser) pushDelim(k token.Kind, span token.Span) { p.delims = append(p.delims, openDelim{k, span}) }
func (p *parser) popDelim()                               { p.delims = p.delims[:len(p.delims)-1] }

// expect consumes the next token if it matches k; otherwise emits an
// UnexpectedToken diagnostic and leaves the stream positioned where it was,
// so callers can attempt recovery.
func (p *parser) expect(k token.Kind, what string) (token.Token, bool) {
	if p.peek() == k {
		return p.bump(), true
	}
	p.errf(diag.UnexpectedToken, p.peekTok().Span).
		Message("expected %s, found %s", what, p.peek()).
		Emit()
	return token.Token{}, false
}

// recoverTo bumps tokens (wrapping them into an Error node) until the next
// token's kind is in stop, or EOF/a closing delimiter matching an
// enclosing open is reached.
func (p *parser) recoverTo(stop map[token.Kind]bool) {
	m := p.b.Mark()
	n := 0
	for {
		k := p.peek()
		if k == token.EOF || stop[k] {
			break
		}
		p.bump()
		n++
		if n > 10000 { // pathological input guard
			break
		}
	}
	if n > 0 {
		p.b.Wrap(m, KError)
	}
}

var seqRecovery = map[token.Kind]bool{token.RBRACE: true}
var altRecovery = map[token.Kind]bool{token.RBRACKET: true}
var treeRecovery = map[token.Kind]bool{token.RPAREN: true}
var topRecovery = map[token.Kind]bool{} // synchronise on Id Equals, handled specially

// ---- root / def ----------------------------------------------------------

func (p *parser) parseRoot() *Node {
	m := p.b.Mark()
	var lastWasUnnamed bool
	var unnamedStart token.Span
	for !p.b.AtEOF() {
		if lastWasUnnamed {
			// Another definition follows the previous unnamed one, so that
			// one was not the final definition.
			p.errf(diag.UnnamedDefNotLast, unnamedStart).
				Message("only the final definition may be unnamed").
				Emit()
		}
		defStart := p.peekTok().Span
		lastWasUnnamed = !p.parseDef()
		unnamedStart = defStart
	}
	// Trivia after the last definition is buffered ahead of the EOF token;
	// keep it in the tree so the CST still covers every source byte.
	eof := &p.b.buf[0]
	for _, tr := range eof.trivia {
		p.b.pending = append(p.b.pending, Leaf{Tok: tr, Text: p.src[tr.Span.Start:tr.Span.End]})
	}
	eof.trivia = nil
	p.checkUnclosedDelims()
	return p.b.Wrap(m, KRoot)
}

func (p *parser) checkUnclosedDelims() {
	for _, d := range p.delims {
		p.errf(diag.UnclosedDelimiter, p.peekTok().Span).
			Message("unclosed %s", delimName(d.kind)).
			RelatedTo("started here", d.span).
			Emit()
	}
}

func delimName(k token.Kind) string {
	switch k {
	case token.LPAREN:
		return "("
	case token.LBRACKET:
		return "["
	case token.LBRACE:
		return "{"
	default:
		return k.String()
	}
}

// parseDef parses one `Id Equals expr` or anonymous `expr` definition.
// It returns true iff the definition was named.
func (p *parser) parseDef() bool {
	m := p.b.Mark()
	named := p.peek() == token.UPPER_IDENT && p.peekAt(1) == token.EQUALS
	if named {
		idTok := p.bump()
		p.checkCase(idTok, true, diag.BadDefCase)
		p.bump() // '='
	}
	p.parseExpr()
	p.b.Wrap(m, KDef)
	return named
}

// ---- expr -----------------------------------------------------------------

// parseExpr parses `atom (quantifier)? (capture)?`.
func (p *parser) parseExpr() { p.parseExprSuffix(true) }

// parseExprNoSuffix parses a bare atom without quantifier/capture
// application; used for field values, where `field: pat*` must bind as
// `(field: pat)*` rather than `field: (pat*)` (spec.md §4.P).
func (p *parser) parseExprNoSuffix() { p.parseExprSuffix(false) }

func (p *parser) parseExprSuffix(allowSuffix bool) {
	if !p.enter() {
		p.leave()
		return
	}
	defer p.leave()

	m := p.b.Mark()
	p.parseAtom()

	if allowSuffix {
		if isQuantifier(p.peek()) {
			p.bump()
			if p.peek() == token.QUESTION {
				p.bump() // lazy marker: '??', '*?', '+?' type identically to their greedy form
			}
			p.b.Wrap(m, KQuantifiedExpr)
		}
		if p.peek() == token.AT {
			p.parseCaptureSuffix(m)
		}
	}
}

func isQuantifier(k token.Kind) bool {
	return k == token.QUESTION || k == token.STAR || k == token.PLUS
}

// parseCaptureSuffix consumes `@ name ('::' type)?` and wraps everything
// pushed since m (the inner expression plus the capture tokens) into a
// CapturedExpr node.
func (p *parser) parseCaptureSuffix(m mark) {
	p.bump() // '@'
	if p.peek() == token.LOWER_IDENT {
		nameTok := p.bump()
		p.checkCase(nameTok, false, diag.BadCaptureCase)
	} else {
		p.errf(diag.UnexpectedToken, p.peekTok().Span).
			Message("expected capture name after '@'").
			Emit()
	}
	if p.peek() == token.COLONCOLON {
		p.bump()
		if p.peek() == token.LOWER_IDENT || p.peek() == token.UPPER_IDENT {
			p.bump()
		} else {
			p.errf(diag.MissingTypeName, p.peekTok().Span).
				Message("expected a type name after '::'").
				Emit()
		}
	} else if p.peek() == token.COLON {
		p.errf(diag.ColonVsColonColon, p.peekTok().Span).
			Message("type annotations use '::', not ':'").
			Fix("::", "change ':' to '::'").
			Emit()
		p.bump()
		if p.peek() == token.LOWER_IDENT || p.peek() == token.UPPER_IDENT {
			p.bump()
		}
	}
	p.b.Wrap(m, KCapturedExpr)
}

// ---- atom -------------------------------------------------------------

func (p *parser) parseAtom() {
	switch p.peek() {
	case token.LPAREN:
		p.parseTree()
	case token.LBRACKET:
		p.parseAlt()
	case token.LBRACE:
		p.parseSeq()
	case token.WILDCARD:
		m := p.b.Mark()
		p.bump()
		p.b.Wrap(m, KAnonymousNode)
	case token.QUOTE, token.DQUOTE:
		p.parseStringAtom()
	case token.DOT:
		m := p.b.Mark()
		p.bump()
		p.b.Wrap(m, KAnchor)
	case token.BANG:
		p.parseNegatedField()
	case token.LOWER_IDENT:
		p.parseFieldOrBareIdent()
	case token.ERROR, token.MISSING:
		m := p.b.Mark()
		kw := p.bump()
		p.errf(diag.ErrorMissingMisuse, kw.Span).
			Message("%s is only valid as a tree node, e.g. (%s)", kw.Kind, kw.Kind).
			Emit()
		p.b.Wrap(m, KAnonymousNode)
	case token.PREDICATE:
		m := p.b.Mark()
		tok := p.bump()
		p.errf(diag.PredicateUnsupported, tok.Span).
			Message("predicates are not supported in pattern definitions").
			Emit()
		p.b.Wrap(m, KError)
	default:
		m := p.b.Mark()
		tok := p.peekTok()
		p.errf(diag.MissingExpr, tok.Span).
			Message("expected a pattern, found %s", p.peek()).
			Emit()
		if p.peek() != token.EOF {
			p.bump()
		}
		p.b.Wrap(m, KError)
	}
}

func (p *parser) parseStringAtom() {
	m := p.b.Mark()
	quote := p.bump()
	var closeKind token.Kind = token.QUOTE
	var rawQuote byte = '\''
	if quote.Kind == token.DQUOTE {
		closeKind = token.DQUOTE
		rawQuote = '"'
	}
	body := p.b.lex.NextStringBody(rawQuote)
	if body.Span.Len() > 0 {
		p.b.pending = append(p.b.pending, Leaf{Tok: body, Text: p.src[body.Span.Start:body.Span.End]})
		// keep the lookahead buffer in sync: the manual lex above bypassed it.
		p.b.buf = nil
	}
	p.expect(closeKind, "closing quote")
	p.b.Wrap(m, KStringLit)
}

func (p *parser) parseNegatedField() {
	m := p.b.Mark()
	p.bump() // '!'
	if p.peek() == token.LOWER_IDENT {
		nameTok := p.bump()
		p.checkCase(nameTok, false, diag.BadFieldCase)
	} else {
		p.errf(diag.MissingFieldName, p.peekTok().Span).
			Message("expected a field name after '!'").
			Emit()
	}
	p.b.Wrap(m, KNegatedField)
}

// parseFieldOrBareIdent handles `name : expr_no_suffix` (a field) or a bare
// lower-case identifier used as a node-type atom inside a `tree`.
func (p *parser) parseFieldOrBareIdent() {
	if p.peekAt(1) == token.COLON {
		m := p.b.Mark()
		nameTok := p.bump()
		p.checkCase(nameTok, false, diag.BadFieldCase)
		p.bump() // ':'
		p.parseExprNoSuffix()
		p.b.Wrap(m, KFieldExpr)
		return
	}
	if p.peekAt(1) == token.EQUALS {
		p.errf(diag.FieldEqualsVsColon, p.peekTok().Span).
			Message("fields use ':' to separate name and pattern, not '='").
			Emit()
	}
	m := p.b.Mark()
	tok := p.bump()
	p.errf(diag.BareIdentifier, tok.Span).
		Message("bare identifier %q is not a pattern; did you mean a tree (%s ...) or a field %s: pat?", string(p.src[tok.Span.Start:tok.Span.End]), string(p.src[tok.Span.Start:tok.Span.End]), string(p.src[tok.Span.Start:tok.Span.End])).
		Emit()
	p.b.Wrap(m, KError)
}

// ---- tree / alt / seq ------------------------------------------------------

func (p *parser) parseTree() {
	m := p.b.Mark()
	open := p.bump() // '('
	p.pushDelim(token.LPAREN, open.Span)
	defer p.popDelim()

	switch p.peek() {
	case token.UPPER_IDENT:
		// `(Name)` with no children is a Ref; `(Name child...)` is a Tree
		// with a diagnostic (spec.md §4.P grammar for `tree`).
		idTok := p.bump()
		if p.peek() == token.RPAREN {
			p.bump()
			p.b.Wrap(m, KRef)
			return
		}
		p.errf(diag.RefWithChildren, idTok.Span).
			Message("%s looks like a reference but has children; references take no children", refName(p.src, idTok)).
			Emit()
		p.parseTreeChildren()
		p.closeTree(m)
		return
	case token.LOWER_IDENT, token.WILDCARD, token.ERROR, token.MISSING:
		p.bump()
		if p.peek() == token.SLASH {
			p.bump()
			if p.peek() == token.LOWER_IDENT {
				p.bump()
			} else {
				p.errf(diag.InvalidSupertype, p.peekTok().Span).
					Message("expected a subtype name after '/'").
					Emit()
			}
		}
	case token.RPAREN:
		p.errf(diag.EmptyTree, open.Span).
			Message("tree node must name a node type, e.g. (identifier)").
			Emit()
		p.bump()
		p.b.Wrap(m, KNamedNode)
		return
	default:
		p.errf(diag.UnexpectedToken, p.peekTok().Span).
			Message("expected a node type, found %s", p.peek()).
			Emit()
	}

	p.parseTreeChildren()
	p.closeTree(m)
}

func refName(src []byte, t token.Token) string {
	return string(src[t.Span.Start:t.Span.End])
}

func (p *parser) parseTreeChildren() {
	for {
		k := p.peek()
		if k == token.RPAREN || k == token.EOF {
			return
		}
		if k == token.COMMA || k == token.PIPE {
			p.errf(diag.SeparatorMisuse, p.peekTok().Span).
				Message("children are separated by whitespace, not %s", p.describeSep(k)).
				Emit()
			p.bump()
			continue
		}
		before := p.b.Mark()
		p.parseExpr()
		if p.b.Mark() == before {
			// Safety net: parseExpr must always make progress.
			p.recoverTo(treeRecovery)
			return
		}
	}
}

func (p *parser) closeTree(m mark) {
	if _, ok := p.expect(token.RPAREN, "')'"); !ok {
		p.recoverTo(treeRecovery)
		if p.peek() == token.RPAREN {
			p.bump()
		}
	}
	p.b.Wrap(m, KNamedNode)
}

func (p *parser) describeSep(k token.Kind) string {
	if k == token.COMMA {
		return "','"
	}
	return "'|'"
}

func (p *parser) parseAlt() {
	m := p.b.Mark()
	open := p.bump() // '['
	p.pushDelim(token.LBRACKET, open.Span)
	defer p.popDelim()

	for {
		k := p.peek()
		if k == token.RBRACKET || k == token.EOF {
			break
		}
		if k == token.COMMA || k == token.PIPE {
			p.errf(diag.SeparatorMisuse, p.peekTok().Span).
				Message("alternatives are separated by whitespace, not %s", p.describeSep(k)).
				Emit()
			p.bump()
			continue
		}
		before := p.b.Mark()
		if k == token.UPPER_IDENT && p.peekAt(1) == token.COLON {
			p.parseBranch()
		} else {
			p.parseExpr()
		}
		if p.b.Mark() == before {
			p.recoverTo(altRecovery)
			break
		}
	}
	if _, ok := p.expect(token.RBRACKET, "']'"); !ok {
		p.recoverTo(altRecovery)
		if p.peek() == token.RBRACKET {
			p.bump()
		}
	}
	p.b.Wrap(m, KAltExpr)
}

func (p *parser) parseBranch() {
	m := p.b.Mark()
	labelTok := p.bump() // UpperId
	p.checkCase(labelTok, true, diag.BadBranchCase)
	p.bump() // ':'
	p.parseExpr()
	p.b.Wrap(m, KBranch)
}

func (p *parser) parseSeq() {
	m := p.b.Mark()
	open := p.bump() // '{'
	p.pushDelim(token.LBRACE, open.Span)
	defer p.popDelim()

	for {
		k := p.peek()
		if k == token.RBRACE || k == token.EOF {
			break
		}
		if k == token.COMMA || k == token.PIPE {
			p.errf(diag.SeparatorMisuse, p.peekTok().Span).
				Message("sequence items are separated by whitespace, not %s", p.describeSep(k)).
				Emit()
			p.bump()
			continue
		}
		before := p.b.Mark()
		if k == token.DOT {
			m2 := p.b.Mark()
			p.bump()
			p.b.Wrap(m2, KAnchor)
		} else {
			p.parseExpr()
		}
		if p.b.Mark() == before {
			p.recoverTo(seqRecovery)
			break
		}
	}
	if _, ok := p.expect(token.RBRACE, "'}'"); !ok {
		p.recoverTo(seqRecovery)
		if p.peek() == token.RBRACE {
			p.bump()
		}
	}
	p.b.Wrap(m, KSeqExpr)
}

// ---- naming conventions -----------------------------------------------------

// checkCase enforces PascalCase (wantUpper) or snake_case naming for the
// identifier tok, per spec.md §4.P's casing rules for defs/branches/types
// vs captures/fields.
func (p *parser) checkCase(tok token.Token, wantUpper bool, kind diag.Kind) {
	name := string(p.src[tok.Span.Start:tok.Span.End])
	if name == "" {
		return
	}
	r, _ := utf8.DecodeRuneInString(name)
	if wantUpper {
		if !unicode.IsUpper(r) {
			p.errf(kind, tok.Span).Message("%q should be PascalCase", name).Emit()
		}
		return
	}
	if unicode.IsUpper(r) {
		p.errf(kind, tok.Span).Message("%q should be snake_case", name).Emit()
		return
	}
	for _, c := range name {
		if unicode.IsUpper(c) {
			p.errf(kind, tok.Span).Message("%q should be snake_case", name).Emit()
			return
		}
	}
}
