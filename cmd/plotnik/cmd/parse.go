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
	"github.com/spf13/cobra"

	"plotnik.dev/plotnik/debug"
	"plotnik.dev/plotnik/syntax"
	"plotnik.dev/plotnik/token"
)

func newParseCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "parse a query and print its concrete syntax tree",
		Long: `parse reads a query (from a file, or stdin when no file or "-" is
given), runs the lexer and recovering parser, and prints the resulting CST.
Parsing never fails outright; recovered errors are printed as diagnostics
alongside the tree.`,
		Args: cobra.MaximumNArgs(1),
		RunE: mkRunE(c, runParse),
	}
	return cmd
}

func runParse(c *Command, args []string) error {
	name, src, err := readSource(args)
	if err != nil {
		exitOnErr(c, err, true)
		return nil
	}

	root, bag := syntax.Parse(src)
	debug.WriteCST(c.OutOrStdout(), root)

	file := token.NewFile(name, src)
	renderDiagnostics(c, file, bag)
	return nil
}
