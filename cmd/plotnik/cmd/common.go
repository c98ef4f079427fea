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
	"io"
	"os"

	"plotnik.dev/plotnik/diag"
	"plotnik.dev/plotnik/token"
)

// exitOnErr writes err to cmd's error stream and, when fatal, marks the
// command as having failed so Run reports a non-zero exit.
func exitOnErr(c *Command, err error, fatal bool) {
	if err == nil {
		return
	}
	io.WriteString(c.Stderr(), err.Error()+"\n")
	if fatal {
		c.hasErr = true
	}
}

// readSource reads the query source from args[0], or from stdin when no
// path is given or the path is "-".
func readSource(args []string) (name string, src []byte, err error) {
	if len(args) == 0 || args[0] == "-" {
		src, err = io.ReadAll(os.Stdin)
		return "<stdin>", src, err
	}
	src, err = os.ReadFile(args[0])
	return args[0], src, err
}

// renderDiagnostics prints bag's contents to c's error stream and marks the
// command as failed when any diagnostic is error severity.
func renderDiagnostics(c *Command, file *token.File, bag *diag.Bag) {
	if bag.Len() == 0 {
		return
	}
	diag.Render(c.Command.OutOrStderr(), file, bag)
	if bag.HasErrors() {
		c.hasErr = true
	}
}
