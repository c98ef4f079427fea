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

	"github.com/spf13/cobra"

	"plotnik.dev/plotnik/bytecode"
	"plotnik.dev/plotnik/debug"
)

func newDumpCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <module>",
		Short: "disassemble an emitted bytecode module",
		Long: `dump opens a module file produced by 'plotnik emit' and prints a
summary line with its string, type, and entrypoint counts, followed by its
type, names, and entrypoint tables in human-readable form (spec.md §C.2's
disassembler). The transitions section is not decoded. It is meant for
diffing and troubleshooting, not for consumption by the matcher.`,
		Args: cobra.ExactArgs(1),
		RunE: mkRunE(c, runDump),
	}
	return cmd
}

func runDump(c *Command, args []string) error {
	buf, err := os.ReadFile(args[0])
	if err != nil {
		exitOnErr(c, err, true)
		return nil
	}

	m, err := bytecode.Open(buf)
	if err != nil {
		exitOnErr(c, err, true)
		return nil
	}

	debug.DumpModule(c.OutOrStdout(), m)
	return nil
}
