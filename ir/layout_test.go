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

	"github.com/stretchr/testify/assert"
)

func TestStepsForMatch(t *testing.T) {
	assert.Equal(t, 2, StepsFor(&Match{}), "a bare Match is header + type/field, no operands")

	m := &Match{
		NegFields:   []string{"a", "b", "c", "d", "e"},
		PreEffects:  []EffectOp{{Op: OpS}},
		PostEffects: []EffectOp{{Op: OpEndS}, {Op: OpSet, Payload: 3}},
		Successors:  []Label{1, 2, 3},
	}
	// 2 header + ceil(5/4)=2 negfields + 1 pre + 2 post + ceil(3/4)=1 successors
	assert.Equal(t, 2+2+1+2+1, StepsFor(m))
}

func TestStepsForOtherKinds(t *testing.T) {
	assert.Equal(t, 2, StepsFor(&Call{}))
	assert.Equal(t, 1, StepsFor(&Return{}))
	assert.Equal(t, 1, StepsFor(&Trampoline{}))
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, 0, ceilDiv(0, 4))
	assert.Equal(t, 1, ceilDiv(1, 4))
	assert.Equal(t, 1, ceilDiv(4, 4))
	assert.Equal(t, 2, ceilDiv(5, 4))
}

// linearChain builds Entry -> Match(Down) -> Match(Down) -> Return, to exercise
// Layout's step reservation and cache-line alignment independent of the
// compiler.
func linearChain(t *testing.T) (*CompileResult, Label, Label, Label) {
	t.Helper()
	g := NewGraph()
	l1 := g.NewLabel()
	l2 := g.NewLabel()
	l3 := g.NewLabel()

	g.Add(&Match{Label: l1, Nav: NavOp{Mode: Down}, Successors: []Label{l2}})
	g.Add(&Match{Label: l2, Nav: NavOp{Mode: Down}, Successors: []Label{l3}})
	g.Add(&Return{Label: l3, RefID: 0})

	res := &CompileResult{
		Graph:      g,
		DefEntries: []DefEntry{{DefID: 0, Name: "root", Entry: l1, ResultType: 1}},
	}
	return res, l1, l2, l3
}

func TestLayoutReservesStepZero(t *testing.T) {
	res, l1, _, _ := linearChain(t)
	layout := Layout(res)
	assert.NotEqual(t, StepId(0), layout.StepOf[l1], "step 0 is reserved")
}

func TestLayoutAlignsEntrypoints(t *testing.T) {
	res, l1, _, _ := linearChain(t)
	layout := Layout(res)
	assert.Equal(t, 0, int(layout.StepOf[l1])%cacheLineSteps, "a DefEntry.Entry label is always cache-line aligned")
	assert.Len(t, layout.Entrypoints, 1)
	assert.Equal(t, "root", layout.Entrypoints[0].Name)
	assert.Equal(t, layout.StepOf[l1], layout.Entrypoints[0].Step)
}

func TestLayoutTotalStepsCoversEveryInstruction(t *testing.T) {
	res, l1, l2, l3 := linearChain(t)
	layout := Layout(res)

	last := layout.StepOf[l3] + StepId(StepsFor(res.Graph.Get(l3)))
	assert.LessOrEqual(t, int(last), layout.TotalSteps)
	assert.Less(t, layout.StepOf[l1], layout.StepOf[l2])
	assert.Less(t, layout.StepOf[l2], layout.StepOf[l3])
}
