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

package types

// Arity is whether an expression matches a single sibling (One) or a
// sibling sequence of length != 1 (Many).
type Arity uint8

const (
	One Arity = iota
	Many
)

// Join combines the arities of two alternation branches: if either side is
// Many, the whole alternation can produce a Many-shaped match.
func (a Arity) Join(b Arity) Arity {
	if a == Many || b == Many {
		return Many
	}
	return One
}

// FlowKind discriminates the TypeFlow variants.
type FlowKind uint8

const (
	FlowVoid FlowKind = iota
	FlowScalar
	FlowBubble
)

// TypeFlow is what an expression's match contributes to its enclosing
// scope: nothing (Void), a complete typed value (Scalar), or a set of
// fields to merge into the enclosing struct scope (Bubble), whose Type is
// always a KStruct TypeId (spec.md §3 TermInfo).
type TypeFlow struct {
	Kind FlowKind
	Type TypeId // meaningful for FlowScalar and FlowBubble
}

func Void() TypeFlow                  { return TypeFlow{Kind: FlowVoid} }
func Scalar(t TypeId) TypeFlow        { return TypeFlow{Kind: FlowScalar, Type: t} }
func Bubble(structID TypeId) TypeFlow { return TypeFlow{Kind: FlowBubble, Type: structID} }

func (f TypeFlow) IsVoid() bool   { return f.Kind == FlowVoid }
func (f TypeFlow) IsScalar() bool { return f.Kind == FlowScalar }
func (f TypeFlow) IsBubble() bool { return f.Kind == FlowBubble }

// TermInfo is the (Arity, TypeFlow) pair the type inferencer assigns to
// every expression (spec.md §3).
type TermInfo struct {
	Arity Arity
	Flow  TypeFlow
}
