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
	"fmt"
	"sort"
)

// VerifyFingerprint gates the debug-only before/after Fingerprint check in
// Eliminate (spec.md §4.E "Debug invariant ... mismatch is a bug and
// panics. Production builds skip verification", §7 "Internal errors panic
// in debug and are treated as data corruption in release"). Tests that
// exercise Eliminate's correctness set this; callers building a release
// binary leave it false so elimination pays no verification cost.
var VerifyFingerprint = false

// Eliminate implements spec.md §4.E's fixed point over the compiled graph:
// references to non-protected epsilon Matches (Stay nav, no
// type/field/negfield constraint) are rewritten to skip them, migrating
// their effects onto whichever Match led to them. Two shapes are absorbed:
//
//   - a single-successor epsilon is folded into a predecessor, its effects
//     appended to that predecessor's PostEffects. An epsilon with effects
//     is folded only into a predecessor that has no other successor, since
//     PostEffects fire on every outgoing edge. Several predecessors may
//     each absorb the same epsilon: each is rewritten independently and
//     the epsilon's effects are replayed into every one of them;
//   - a branching (multi-successor), effect-free epsilon has its
//     successor list spliced directly into whichever predecessor pointed
//     at it, widening that predecessor's own fan-out.
//
// Entrypoints and recursive-Call targets are protected: later passes
// (layout) must still be able to name them, and a Call's Return is looked
// up by RefID rather than by label, so its target cannot be folded away.
func Eliminate(res *CompileResult) {
	var before []string
	if VerifyFingerprint {
		before = Fingerprint(res.Graph, res.DefEntries)
	}

	protected := map[Label]bool{}
	for _, e := range res.DefEntries {
		protected[e.Entry] = true
	}
	for _, l := range res.Graph.Labels() {
		if call, ok := res.Graph.Get(l).(*Call); ok {
			protected[call.Target] = true
		}
	}

	g := res.Graph
	for iter := 0; iter < 100000; iter++ {
		changed := false
		for _, l := range g.Labels() {
			switch instr := g.Get(l).(type) {
			case *Match:
				if rewriteSuccessors(g, &instr.Successors, &instr.PostEffects, protected) {
					changed = true
				}
			case *Call:
				if rewriteSingle(g, &instr.Next, protected) {
					changed = true
				}
			case *Trampoline:
				if rewriteSingle(g, &instr.Next, protected) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	pruneUnreachable(g, protected)

	if VerifyFingerprint {
		after := Fingerprint(res.Graph, res.DefEntries)
		if !equalTraces(before, after) {
			panic(fmt.Sprintf("ir: epsilon elimination changed the visible trace set\nbefore:\n%s\nafter:\n%s",
				joinTraces(before), joinTraces(after)))
		}
	}
}

func equalTraces(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func joinTraces(t []string) string {
	out := ""
	for _, s := range t {
		out += "  " + s + "\n"
	}
	return out
}

// epsilonEffects returns target's own effect sequence in execution order:
// whatever fired before it reached this (now epsilon) step, then whatever
// it itself would have fired afterward.
func epsilonEffects(target *Match) []EffectOp {
	if len(target.PreEffects) == 0 && len(target.PostEffects) == 0 {
		return nil
	}
	out := make([]EffectOp, 0, len(target.PreEffects)+len(target.PostEffects))
	out = append(out, target.PreEffects...)
	out = append(out, target.PostEffects...)
	return out
}

// rewriteSuccessors rewrites succs in place, absorbing any non-protected
// epsilon it points at. effectsSink receives migrated effects (a Match's
// own PostEffects); it is always non-nil here since only *Match carries a
// Successors slice.
func rewriteSuccessors(g *Graph, succs *[]Label, effectsSink *[]EffectOp, protected map[Label]bool) bool {
	changed := false
	out := make([]Label, 0, len(*succs))
	for _, s := range *succs {
		target, ok := g.Get(s).(*Match)
		if !ok || protected[s] || !target.IsEpsilon() {
			out = append(out, s)
			continue
		}

		switch {
		case len(target.Successors) == 1:
			eff := epsilonEffects(target)
			if len(eff) > 0 && len(*succs) > 1 {
				// PostEffects fire on every outgoing edge, so the target's
				// effects cannot move onto a Match with other successors.
				out = append(out, s)
				continue
			}
			*effectsSink = append(*effectsSink, eff...)
			out = append(out, target.Successors[0])
			changed = true

		case len(target.Successors) > 1 && len(target.PreEffects) == 0 && len(target.PostEffects) == 0:
			out = append(out, target.Successors...)
			changed = true

		default: // 0-successor terminal, or a branching epsilon with effects: leave it addressable
			out = append(out, s)
		}
	}
	*succs = out
	return changed
}

// rewriteSingle absorbs a single-successor, non-protected epsilon target
// of ref (a Call.Next or Trampoline.Next, neither of which can carry
// migrated effects, so only an effect-free epsilon or one whose effects
// can be dropped — never true per IsEpsilon — qualifies; in practice this
// only ever fires for effect-free epsilons).
func rewriteSingle(g *Graph, ref *Label, protected map[Label]bool) bool {
	target, ok := g.Get(*ref).(*Match)
	if !ok || protected[*ref] || !target.IsEpsilon() || len(target.Successors) != 1 {
		return false
	}
	if len(epsilonEffects(target)) > 0 {
		return false
	}
	*ref = target.Successors[0]
	return true
}

// pruneUnreachable removes every instruction no longer referenced by a
// protected entrypoint, a Call/Trampoline target, or another live Match's
// Successors.
func pruneUnreachable(g *Graph, protected map[Label]bool) {
	referenced := map[Label]bool{}
	for l := range protected {
		referenced[l] = true
	}
	for _, l := range g.Labels() {
		switch instr := g.Get(l).(type) {
		case *Match:
			for _, s := range instr.Successors {
				referenced[s] = true
			}
		case *Call:
			referenced[instr.Target] = true
			referenced[instr.Next] = true
		case *Trampoline:
			referenced[instr.Next] = true
		}
	}
	for _, l := range g.Labels() {
		if !referenced[l] {
			g.Remove(l)
		}
	}
}

// Fingerprint renders, for each entrypoint in entries, the set of visible
// (Match, effect-sequence) traces reachable from it (spec.md §4.E "Debug
// invariant: a 'fingerprint' walk of each entrypoint's reachable subgraph
// must yield the same visible (effect+match) trace set", §8 property 6).
// A trace names one consuming step (a non-epsilon Match, or a Call)
// together with the effects that fire on the way to it and the
// closure-reduced description of where it leads next. Epsilon Matches are
// never traces themselves — they contribute only the effects they migrate
// onto whichever consuming step they lead to — so the same graph fingerprints
// identically whether or not Eliminate has collapsed its epsilons yet. The
// result is sorted for deterministic comparison; it is not a full semantic
// equivalence check (that would mean running the automaton, out of this
// package's scope), but it is the closure-based invariant spec.md names.
func Fingerprint(g *Graph, entries []DefEntry) []string {
	var out []string
	for _, e := range entries {
		seen := map[Label]bool{}
		var walk func(Label)
		walk = func(l Label) {
			if seen[l] {
				return
			}
			seen[l] = true

			switch instr := g.Get(l).(type) {
			case *Match:
				if instr.IsEpsilon() {
					for _, s := range instr.Successors {
						walk(s)
					}
					return
				}
				out = append(out, fmt.Sprintf("%s: %s -> [%s]",
					e.Name, matchSig(instr), joinSigs(closureSigPrefixed(g, instr.Successors, instr.PostEffects))))
				for _, s := range instr.Successors {
					walk(s)
				}
			case *Call:
				out = append(out, fmt.Sprintf("%s: call ref=%d -> [%s]",
					e.Name, instr.RefID, joinSigs(closureSig(g, []Label{instr.Next}))))
				walk(instr.Target)
				walk(instr.Next)
			case *Trampoline:
				walk(instr.Next)
			}
		}
		walk(e.Entry)
	}
	sort.Strings(out)
	return out
}

// closureSig computes the epsilon-closed landing signature of every label
// in labels: the set of (accumulated effects, landed step) descriptions
// reached by following effect-free graph shape through epsilon Matches.
// Labels of intervening epsilons never appear in the result, which is what
// makes a trace comparable before and after Eliminate has removed them.
func closureSig(g *Graph, labels []Label) []string {
	return closureSigPrefixed(g, labels, nil)
}

// closureSigPrefixed is closureSig with a starting set of effects already
// fired — used to fold a consuming Match's own (unstable) PostEffects into
// the description of what it leads to, rather than into its own signature.
func closureSigPrefixed(g *Graph, labels []Label, prefix []EffectOp) []string {
	var out []string
	for _, l := range labels {
		out = append(out, closureOne(g, l, prefix, map[Label]bool{})...)
	}
	sort.Strings(out)
	return out
}

func closureOne(g *Graph, l Label, prefix []EffectOp, visiting map[Label]bool) []string {
	if visiting[l] {
		return []string{"<cycle>"}
	}
	visiting[l] = true
	defer delete(visiting, l)

	switch instr := g.Get(l).(type) {
	case *Match:
		if !instr.IsEpsilon() {
			return []string{fmt.Sprintf("%s|%s", effectsSig(prefix), matchSig(instr))}
		}
		next := append(append([]EffectOp{}, prefix...), epsilonEffects(instr)...)
		if len(instr.Successors) == 0 {
			return []string{fmt.Sprintf("%s|terminal", effectsSig(next))}
		}
		var out []string
		for _, s := range instr.Successors {
			out = append(out, closureOne(g, s, next, visiting)...)
		}
		return out
	case *Call:
		return []string{fmt.Sprintf("%s|call ref=%d", effectsSig(prefix), instr.RefID)}
	case *Return:
		return []string{fmt.Sprintf("%s|return ref=%d", effectsSig(prefix), instr.RefID)}
	case *Trampoline:
		return closureOne(g, instr.Next, prefix, visiting)
	default:
		return []string{fmt.Sprintf("%s|gone", effectsSig(prefix))}
	}
}

// matchSig names a Match's own stable identity: the consume step Eliminate
// can never change. PostEffects is deliberately excluded — it is the one
// field rewriteSuccessors/rewriteSingle mutate in place as epsilon
// successors get absorbed, so it is not comparable before and after
// Eliminate on its own. Fingerprint instead folds a Match's current
// PostEffects into the closure walk over its Successors, where it belongs
// with the other effects migrating toward the next consuming step.
func matchSig(m *Match) string {
	return fmt.Sprintf("match nav=%s(%d) type=%v/%q field=%v/%q neg=%v pre=%s",
		m.Nav.Mode, m.Nav.Levels, m.HasNodeType, m.NodeType, m.HasNodeField, m.NodeField,
		m.NegFields, effectsSig(m.PreEffects))
}

func effectsSig(effs []EffectOp) string {
	out := ""
	for _, e := range effs {
		out += fmt.Sprintf("%s(%d),", e.Op, e.Payload)
	}
	return out
}

func joinSigs(sigs []string) string {
	out := ""
	for i, s := range sigs {
		if i > 0 {
			out += "; "
		}
		out += s
	}
	return out
}
