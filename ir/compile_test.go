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

package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"plotnik.dev/plotnik/analyze"
	"plotnik.dev/plotnik/syntax"
	"plotnik.dev/plotnik/types"
)

func compileSrc(t *testing.T, src string) (*analyze.Result, *CompileResult) {
	t.Helper()
	root, bag := syntax.Parse([]byte(src))
	require.Empty(t, bag.All())
	res := analyze.Analyze(syntax.Root{N: root}, bag)
	require.False(t, bag.HasErrors(), "diagnostics: %v", bag.All())

	old := VerifyFingerprint
	VerifyFingerprint = true
	defer func() { VerifyFingerprint = old }()

	cres := Compile(res)
	Eliminate(cres)
	return res, cres
}

func entryNamed(t *testing.T, cres *CompileResult, name string) DefEntry {
	t.Helper()
	for _, e := range cres.DefEntries {
		if e.Name == name {
			return e
		}
	}
	t.Fatalf("no entrypoint named %q", name)
	return DefEntry{}
}

// nonEpsilonMatches returns every live, non-epsilon Match in g, in label
// order (deterministic for assertions).
func nonEpsilonMatches(g *Graph) []*Match {
	var out []*Match
	for _, l := range g.Labels() {
		if m, ok := g.Get(l).(*Match); ok && !m.IsEpsilon() {
			out = append(out, m)
		}
	}
	return out
}

func matchWithType(t *testing.T, g *Graph, nodeType string) *Match {
	t.Helper()
	var found []*Match
	for _, m := range nonEpsilonMatches(g) {
		if m.HasNodeType && m.NodeType == nodeType {
			found = append(found, m)
		}
	}
	require.Len(t, found, 1, "expected exactly one Match(%s)", nodeType)
	return found[0]
}

func memberIndex(t *testing.T, res *analyze.Result, structType types.TypeId, name string) int {
	t.Helper()
	want := res.Interner.Intern(name)
	for i, f := range res.Types.Get(structType).Fields {
		if f.Name == want {
			return i
		}
	}
	t.Fatalf("struct %d has no field %q", structType, name)
	return -1
}

func effectOps(effs []EffectOp) []EffectOpcode {
	out := make([]EffectOpcode, len(effs))
	for i, e := range effs {
		out[i] = e.Op
	}
	return out
}

// Scenario 1 (spec.md §8): `Test = (identifier) @id` compiles to an entry
// epsilon, a single consuming Match(identifier), and a terminal accept —
// with the capture's Node+Set effects (and the definition's own EndS)
// folded onto that one Match by Eliminate.
func TestCompileScalarCaptureThreeTransitions(t *testing.T) {
	res, cres := compileSrc(t, "Test = (identifier) @id")
	entry := entryNamed(t, cres, "Test")
	require.NotEqual(t, types.VOID, types.TypeId(entry.ResultType))

	require.Len(t, cres.Graph.Labels(), 3, "entry epsilon + one consuming Match + terminal accept")

	m := matchWithType(t, cres.Graph, "identifier")
	require.Equal(t, Down, m.Nav.Mode)

	idIdx := memberIndex(t, res, types.TypeId(entry.ResultType), "id")
	require.Equal(t,
		[]EffectOp{{Op: OpNode}, {Op: OpSet, Payload: idIdx}, {Op: OpEndS}},
		m.PostEffects)
}

// Scenario 2 (spec.md §8): an untagged alternation writes the captured
// field on its own branch and an explicit Null for the branch not taken,
// so the result struct is always fully populated.
func TestCompileUntaggedAlternationNullsMissingBranch(t *testing.T) {
	res, cres := compileSrc(t, "Expression = [(identifier) @name (number) @value]")
	entry := entryNamed(t, cres, "Expression")
	nameIdx := memberIndex(t, res, types.TypeId(entry.ResultType), "name")
	valueIdx := memberIndex(t, res, types.TypeId(entry.ResultType), "value")

	idMatch := matchWithType(t, cres.Graph, "identifier")
	require.Contains(t, idMatch.PostEffects, EffectOp{Op: OpSet, Payload: nameIdx})
	require.Contains(t, idMatch.PostEffects, EffectOp{Op: OpNull})
	require.Contains(t, idMatch.PostEffects, EffectOp{Op: OpSet, Payload: valueIdx})

	numMatch := matchWithType(t, cres.Graph, "number")
	require.Contains(t, numMatch.PostEffects, EffectOp{Op: OpSet, Payload: valueIdx})
	require.Contains(t, numMatch.PostEffects, EffectOp{Op: OpNull})
	require.Contains(t, numMatch.PostEffects, EffectOp{Op: OpSet, Payload: nameIdx})
}

// Scenario 3 (spec.md §8): a tagged alternation's outer capture Sets right
// after the EndE step of each branch — never interleaved with, or ahead
// of, the branch body's own Node+Set.
func TestCompileTaggedAlternationSetsOnEndE(t *testing.T) {
	res, cres := compileSrc(t, "Q = [A: (identifier) @a  B: (number) @b] @item")
	entry := entryNamed(t, cres, "Q")
	itemType := types.TypeId(entry.ResultType)
	itemIdx := memberIndex(t, res, itemType, "item")

	enumType := res.Types.Get(itemType).Fields[itemIdx].Info.Type
	variants := res.Types.Get(enumType).Variants
	aPayload, bPayload := variants[0].Payload, variants[1].Payload
	aIdx := memberIndex(t, res, aPayload, "a")
	bIdx := memberIndex(t, res, bPayload, "b")

	checkBranch := func(m *Match, ownIdx int) {
		ops := effectOps(m.PostEffects)
		nodeAt := indexOf(ops, OpNode)
		endEAt := indexOf(ops, OpEndE)
		require.GreaterOrEqual(t, nodeAt, 0)
		require.GreaterOrEqual(t, endEAt, 0)
		require.Equal(t, OpSet, ops[nodeAt+1], "the branch's own capture Sets right after its Node")
		require.Equal(t, ownIdx, m.PostEffects[nodeAt+1].Payload)
		require.Less(t, nodeAt, endEAt, "the branch body's Node step precedes EndE")
		require.Less(t, endEAt+1, len(ops), "EndE is followed by the outer capture's Set")
		require.Equal(t, OpSet, ops[endEAt+1])
		require.Equal(t, itemIdx, m.PostEffects[endEAt+1].Payload, "the outer capture's Set comes right after EndE")
	}

	checkBranch(matchWithType(t, cres.Graph, "identifier"), aIdx)
	checkBranch(matchWithType(t, cres.Graph, "number"), bIdx)
}

func indexOf(ops []EffectOpcode, op EffectOpcode) int {
	for i, o := range ops {
		if o == op {
			return i
		}
	}
	return -1
}

// Scenario 4 (spec.md §8): a bare `*` repetition of an atom navigates Down
// into its first iteration and Next for every subsequent one.
func TestCompileRepeatedCaptureNavModes(t *testing.T) {
	_, cres := compileSrc(t, "Test = (function_declaration (decorator)* @decs)")

	var navs []Nav
	for _, m := range nonEpsilonMatches(cres.Graph) {
		if m.HasNodeType && m.NodeType == "decorator" {
			navs = append(navs, m.Nav.Mode)
		}
	}
	require.NotEmpty(t, navs)
	require.Contains(t, navs, Down, "the first iteration navigates Down into the parent")
	require.Contains(t, navs, Next, "subsequent iterations navigate Next across siblings")
}

// Scenario 5 (spec.md §8): three nested bubble captures all reference the
// same top-level struct's member base, not any intermediate scope.
func TestCompileNestedCapturesShareTopLevelMemberBase(t *testing.T) {
	res, cres := compileSrc(t, "Test = (a (b (c) @c) @b) @a")
	entry := entryNamed(t, cres, "Test")
	top := types.TypeId(entry.ResultType)

	aIdx := memberIndex(t, res, top, "a")
	bIdx := memberIndex(t, res, top, "b")
	cIdx := memberIndex(t, res, top, "c")

	aMatch := matchWithType(t, cres.Graph, "a")
	bMatch := matchWithType(t, cres.Graph, "b")
	cMatch := matchWithType(t, cres.Graph, "c")

	require.Contains(t, aMatch.PostEffects, EffectOp{Op: OpSet, Payload: aIdx})
	require.Contains(t, bMatch.PostEffects, EffectOp{Op: OpSet, Payload: bIdx})
	require.Contains(t, cMatch.PostEffects, EffectOp{Op: OpSet, Payload: cIdx})
}

// Scenario 6 (spec.md §8): a capture over an alternation with no captures
// of its own inside it still emits Node before its Set — never a bare Set.
func TestCompileCaptureOverUncapturedAlternationEmitsNode(t *testing.T) {
	res, cres := compileSrc(t, "Q = (program [(identifier) (number)] @x)")
	entry := entryNamed(t, cres, "Q")
	xIdx := memberIndex(t, res, types.TypeId(entry.ResultType), "x")

	for _, m := range []*Match{matchWithType(t, cres.Graph, "identifier"), matchWithType(t, cres.Graph, "number")} {
		ops := effectOps(m.PostEffects)
		setPos := -1
		for i, op := range ops {
			if op == OpSet && m.PostEffects[i].Payload == xIdx {
				setPos = i
			}
		}
		require.GreaterOrEqual(t, setPos, 1, "Set(x) is preceded by at least one other effect")
		require.Equal(t, OpNode, ops[setPos-1], "Node fires immediately before Set, never alone")
	}
}
