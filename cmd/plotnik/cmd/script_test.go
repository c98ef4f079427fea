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

package cmd

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain lets testscript re-exec this test binary as the "plotnik"
// command (github.com/rogpeppe/go-internal/testscript's RunMain pattern),
// so script fixtures drive the real CLI without a separate build step —
// mirrors cuelang.org/go's cmd/cue/cmd/script_test.go.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"plotnik": Main,
	}))
}

// TestScript runs every testdata/script/*.txt txtar fixture as a small
// shell transcript against the plotnik CLI (spec.md §1 "CLI/test harness
// plumbing" is out of scope as a collaborator, but the harness exercising
// it end-to-end is this package's own ambient test tooling).
func TestScript(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
