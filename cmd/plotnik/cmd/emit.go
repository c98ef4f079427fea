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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"plotnik.dev/plotnik/bytecode"
	linkpkg "plotnik.dev/plotnik/link"
)

func newEmitCmd(c *Command) *cobra.Command {
	var out string
	var grammar string

	cmd := &cobra.Command{
		Use:   "emit [file]",
		Short: "compile a query to a bytecode module",
		Long: `emit runs the full pipeline — parse, analyse, NFA-compile, eliminate
epsilons, lay out steps, and serialize — producing a single bytecode module
(spec.md §4.B). Analysis errors abort before compiling; emit never writes a
partial module. Pass --grammar with a known language name (see
'plotnik emit --help' for the compiled-in set) to additionally resolve
node/field names against that grammar (spec.md §6 "Linker inputs");
without it the module still compiles, with every name constraint dropped
to "no constraint" at match time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: mkRunE(c, func(c *Command, args []string) error { return runEmit(c, args, out, grammar) }),
	}

	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path for the module (\"-\" for stdout)")
	cmd.Flags().StringVar(&grammar, "grammar", "", fmt.Sprintf("language to link node/field names against (one of: %s)", strings.Join(grammarNames(), ", ")))
	return cmd
}

func runEmit(c *Command, args []string, out, grammar string) error {
	_, file, res, bag, err := analyzeArgs(args)
	if err != nil {
		exitOnErr(c, err, true)
		return nil
	}
	renderDiagnostics(c, file, bag)
	if bag.HasErrors() {
		exitOnErr(c, fmt.Errorf("%s: analysis failed, refusing to emit", file.Name), true)
		return nil
	}

	var link *bytecode.LinkTables
	if grammar != "" {
		lang, ok := grammarByName(grammar)
		if !ok {
			exitOnErr(c, fmt.Errorf("unknown grammar %q (known: %s)", grammar, strings.Join(grammarNames(), ", ")), true)
			return nil
		}
		link = linkpkg.Build(lang)
	}

	buf, err := bytecode.Emit(res, link)
	if err != nil {
		exitOnErr(c, err, true)
		return nil
	}

	if out == "-" {
		_, err = c.OutOrStdout().Write(buf)
	} else {
		err = os.WriteFile(out, buf, 0o644)
	}
	exitOnErr(c, err, true)
	return nil
}
