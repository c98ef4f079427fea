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

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plotnik.dev/plotnik/token"
)

func allTokens(src string) []token.Token {
	l := New([]byte(src))
	var out []token.Token
	for {
		t := l.Next()
		out = append(out, t)
		if t.Kind == token.EOF {
			return out
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestLexBasicTree(t *testing.T) {
	toks := allTokens("(identifier) @id")
	assert.Equal(t, []token.Kind{
		token.LPAREN, token.LOWER_IDENT, token.RPAREN,
		token.WHITESPACE, token.AT, token.LOWER_IDENT, token.EOF,
	}, kinds(toks))
}

func TestLexDefinition(t *testing.T) {
	toks := allTokens("Test = (a)")
	assert.Equal(t, []token.Kind{
		token.UPPER_IDENT, token.WHITESPACE, token.EQUALS, token.WHITESPACE,
		token.LPAREN, token.LOWER_IDENT, token.RPAREN, token.EOF,
	}, kinds(toks))
}

func TestLexWildcardVsIdent(t *testing.T) {
	toks := allTokens("_ _foo")
	assert.Equal(t, []token.Kind{token.WILDCARD, token.WHITESPACE, token.LOWER_IDENT, token.EOF}, kinds(toks))
}

func TestLexQuantifiers(t *testing.T) {
	toks := allTokens("a? b* c+")
	assert.Equal(t, token.QUESTION, toks[1].Kind)
	assert.Equal(t, token.STAR, toks[4].Kind)
	assert.Equal(t, token.PLUS, toks[7].Kind)
}

func TestLexColonColon(t *testing.T) {
	toks := allTokens("@x::string")
	assert.Equal(t, []token.Kind{token.AT, token.LOWER_IDENT, token.COLONCOLON, token.LOWER_IDENT, token.EOF}, kinds(toks))
}

func TestLexPredicateToken(t *testing.T) {
	toks := allTokens("#eq?")
	assert.Equal(t, []token.Kind{token.PREDICATE, token.EOF}, kinds(toks))
}

func TestLexAnchorAndSlash(t *testing.T) {
	toks := allTokens(". (a/b)")
	assert.Equal(t, token.DOT, toks[0].Kind)
	assert.Contains(t, kinds(toks), token.SLASH)
}

func TestLexComment(t *testing.T) {
	toks := allTokens("a // trailing comment\nb")
	var sawComment bool
	for _, k := range kinds(toks) {
		if k == token.COMMENT {
			sawComment = true
		}
	}
	assert.True(t, sawComment)
}

// TestLexRoundTrip exercises the token-concatenation invariant (spec.md §8.1)
// at the lexer level: every byte of source is covered by exactly one token.
func TestLexRoundTrip(t *testing.T) {
	src := "Test = (identifier) @id\n[A: (a) B: (b)]* @x"
	toks := allTokens(src)
	var out []byte
	for _, tk := range toks {
		if tk.Kind == token.EOF {
			continue
		}
		out = append(out, src[tk.Span.Start:tk.Span.End]...)
	}
	assert.Equal(t, src, string(out))
}
