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

package bytecode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"plotnik.dev/plotnik/ir"
)

// TestEncodeTransitionsReportsMissingStep exercises encodeTransitions'
// ErrInternal path directly: a graph label with no entry in
// layout.StepOf is a compiler bug (Layout should have assigned every live
// label a step), never a symptom of user input, so it must come back as
// an *EmitError{Kind: ErrInternal} wrapping errInternal rather than a
// panic or a silently wrong buffer.
func TestEncodeTransitionsReportsMissingStep(t *testing.T) {
	g := ir.NewGraph()
	l := g.NewLabel()
	g.Add(&ir.Match{Label: l, Nav: ir.NavOp{Mode: ir.Stay}})

	layout := &ir.LayoutResult{StepOf: map[ir.Label]ir.StepId{}, TotalSteps: 1}

	_, err := encodeTransitions(g, layout, nil)
	require.Error(t, err)

	var ee *EmitError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, ErrInternal, ee.Kind)
	require.True(t, errors.Is(err, errInternal))
}
