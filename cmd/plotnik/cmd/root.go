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

// Package cmd implements the plotnik command-line tool: a thin driver over
// the parse/analyze/emit pipeline, modeled on cuelang.org/go's cmd/cue/cmd
// (Command wrapper, mkRunE adapter, one cobra.Command constructor per verb).
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type runFunction func(c *Command, args []string) error

func mkRunE(c *Command, f runFunction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c.Command = cmd
		return f(c, args)
	}
}

// Command wraps a cobra.Command the way cue/cmd does, tracking whether an
// error has already been written to stderr so Run can report a non-zero
// exit without double-printing.
type Command struct {
	*cobra.Command
	root   *cobra.Command
	hasErr bool
}

type errWriter Command

func (w *errWriter) Write(b []byte) (int, error) {
	c := (*Command)(w)
	c.hasErr = true
	return c.Command.OutOrStderr().Write(b)
}

// Stderr returns the writer every subcommand must use for error output.
func (c *Command) Stderr() io.Writer { return (*errWriter)(c) }

func newRootCmd() *Command {
	root := &cobra.Command{
		Use:   "plotnik",
		Short: "plotnik compiles tree pattern queries to bytecode.",
		Long: `plotnik parses, analyses, and compiles tree pattern queries — a
tree-sitter-like pattern language over syntax trees — into a compact
bytecode module consumed by a separate tree-walking matcher.

Run 'plotnik parse', 'plotnik check', 'plotnik emit', or 'plotnik dump'
for the pipeline's individual stages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c := &Command{Command: root, root: root}

	subCommands := []*cobra.Command{
		newParseCmd(c),
		newCheckCmd(c),
		newEmitCmd(c),
		newDumpCmd(c),
	}
	for _, sub := range subCommands {
		root.AddCommand(sub)
	}

	return c
}

// New builds the root command with args attached, ready for Run.
func New(args []string) *Command {
	c := newRootCmd()
	c.root.SetArgs(args)
	return c
}

// Run executes the command tree and reports whether any error was printed.
func (c *Command) Run() error {
	if err := c.root.Execute(); err != nil {
		fmt.Fprintln(c.Stderr(), err)
		return err
	}
	if c.hasErr {
		return errPrinted
	}
	return nil
}

var errPrinted = fmt.Errorf("terminating because of errors")

// Main runs the plotnik tool and returns the process exit code.
func Main() int {
	c := New(os.Args[1:])
	if err := c.Run(); err != nil {
		return 1
	}
	return 0
}
