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

// StepId indexes a single 8-byte step in the emitted bytecode (spec.md §3
// "Layout", §6). StepId 0 is reserved: it is never assigned to a live
// instruction, so a zero-initialized table slot reads as "unreachable"
// rather than aliasing a real step (spec.md §4.O "reserved accept step").
type StepId uint16

const stepBytes = 8
const cacheLineBytes = 64
const cacheLineSteps = cacheLineBytes / stepBytes // 8

// EntrypointStep names one definition's final, laid-out entry.
type EntrypointStep struct {
	DefID      int
	Name       string
	Step       StepId
	ResultType int
}

// LayoutResult is the NFA compiler's final output after layout (spec.md §3
// "LayoutResult"): every live instruction's StepId plus the entrypoint
// table, ready for the bytecode emitter to serialize.
type LayoutResult struct {
	StepOf      map[Label]StepId
	Entrypoints []EntrypointStep
	TotalSteps  int
}

// Layout assigns StepIds to every live instruction in res.Graph (spec.md
// §4.O). Entrypoints and any label with more than one predecessor (a join
// the matcher reaches by more than one path, so its own position must sit
// at a cache-line-aligned offset for the runtime's branch table) each
// start a fresh 64-byte cache line; everything else packs densely in
// reachability order behind them.
func Layout(res *CompileResult) *LayoutResult {
	g := res.Graph
	labels := g.Labels()

	indeg := indegree(g, labels)
	alignSet := map[Label]bool{}
	for _, e := range res.DefEntries {
		alignSet[e.Entry] = true
	}
	for _, l := range labels {
		if indeg[l] > 1 {
			alignSet[l] = true
		}
	}

	order := orderLabels(res, labels)

	stepOf := make(map[Label]StepId, len(order))
	next := StepId(1) // 0 reserved
	for _, l := range order {
		if alignSet[l] && int(next)%cacheLineSteps != 0 {
			next = StepId((int(next)/cacheLineSteps + 1) * cacheLineSteps)
		}
		stepOf[l] = next
		next += StepId(StepsFor(g.Get(l)))
	}

	entries := make([]EntrypointStep, 0, len(res.DefEntries))
	for _, e := range res.DefEntries {
		entries = append(entries, EntrypointStep{
			DefID: e.DefID, Name: e.Name,
			Step: stepOf[e.Entry], ResultType: e.ResultType,
		})
	}

	return &LayoutResult{StepOf: stepOf, Entrypoints: entries, TotalSteps: int(next)}
}

// stepsPerOperand is how many (negated field | successor) operands of a
// Match are packed into one 8-byte step when the bytecode emitter lays
// them out as a flat array of u16 ids (spec.md §4.O "integer number of
// 8-byte steps").
const stepsPerOperand = 4

// StepsFor returns how many 8-byte steps instr occupies (spec.md §4.O):
// a Match is 1 header step, 1 node-type/node-field step, one step per
// pre/post effect (each effect carries a payload too wide to share a
// step with others), and one packed step per 4 negated fields or
// successors; Call is 2 fixed steps (header + RefID), Return and
// Trampoline are each 1.
func StepsFor(instr Instruction) int {
	switch m := instr.(type) {
	case *Match:
		n := 2 // header + node-type/node-field operands
		n += ceilDiv(len(m.NegFields), stepsPerOperand)
		n += len(m.PreEffects)
		n += len(m.PostEffects)
		n += ceilDiv(len(m.Successors), stepsPerOperand)
		return n
	case *Call:
		return 2
	case *Return:
		return 1
	case *Trampoline:
		return 1
	default:
		return 1
	}
}

func ceilDiv(n, d int) int {
	if n == 0 {
		return 0
	}
	return (n + d - 1) / d
}

func indegree(g *Graph, labels []Label) map[Label]int {
	deg := make(map[Label]int, len(labels))
	for _, l := range labels {
		switch instr := g.Get(l).(type) {
		case *Match:
			for _, s := range instr.Successors {
				deg[s]++
			}
		case *Call:
			deg[instr.Target]++
			deg[instr.Next]++
		case *Trampoline:
			deg[instr.Next]++
		}
	}
	return deg
}

// orderLabels visits every entrypoint's reachable instructions depth-first
// in successor order, then appends anything left over (there should be
// nothing, post-pruning) so layout order tracks the matcher's own likely
// traversal order as closely as a static pass can.
func orderLabels(res *CompileResult, labels []Label) []Label {
	g := res.Graph
	visited := make(map[Label]bool, len(labels))
	order := make([]Label, 0, len(labels))

	var visit func(Label)
	visit = func(l Label) {
		if visited[l] {
			return
		}
		if g.Get(l) == nil {
			return
		}
		visited[l] = true
		order = append(order, l)
		switch instr := g.Get(l).(type) {
		case *Match:
			for _, s := range instr.Successors {
				visit(s)
			}
		case *Call:
			visit(instr.Target)
			visit(instr.Next)
		case *Trampoline:
			visit(instr.Next)
		}
	}

	for _, e := range res.DefEntries {
		visit(e.Entry)
	}
	for _, l := range labels {
		visit(l)
	}
	return order
}
