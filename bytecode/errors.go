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
	"fmt"

	"golang.org/x/xerrors"
)

// EmitErrorKind enumerates the typed errors Emit can return (spec.md §7
// "Resource errors short-circuit emit"; "Internal errors ... treated as
// data corruption").
type EmitErrorKind string

const (
	ErrInvalidQuery       EmitErrorKind = "invalid-query"
	ErrTooManyStrings     EmitErrorKind = "too-many-strings"
	ErrTooManyTypes       EmitErrorKind = "too-many-types"
	ErrTooManyMembers     EmitErrorKind = "too-many-members"
	ErrTooManyEntrypoints EmitErrorKind = "too-many-entrypoints"
	ErrTooManyTransitions EmitErrorKind = "too-many-transitions"
	ErrStringNotFound     EmitErrorKind = "string-not-found"
	ErrInternal           EmitErrorKind = "internal"
)

// errInternal is the sentinel encodeTransitions wraps with xerrors.Errorf
// when layout.StepOf is missing a label the graph still references — a
// compiler bug (a dangling successor Eliminate should have pruned), never
// a consequence of user input, so callers can recognize it with
// errors.Is/xerrors.Is regardless of the %w formatting layer above it.
var errInternal = xerrors.New("bytecode: internal consistency error")

// EmitError is returned by Emit for both resource-exhaustion errors (the
// query legitimately overflowed a u16-bounded table) and internal
// consistency errors (an intern/emit mismatch, which spec.md §7 treats as
// a bug rather than user-facing input).
type EmitError struct {
	Kind EmitErrorKind
	Note string
	err  error
}

func (e *EmitError) Error() string {
	if e.Note != "" {
		return fmt.Sprintf("emit: %s: %s", e.Kind, e.Note)
	}
	return fmt.Sprintf("emit: %s", e.Kind)
}

// Unwrap exposes the wrapped sentinel (errInternal for ErrInternal) so
// callers can use errors.Is/xerrors.Is without matching on Kind/Note text.
func (e *EmitError) Unwrap() error { return e.err }

func errf(kind EmitErrorKind, format string, args ...interface{}) *EmitError {
	return &EmitError{Kind: kind, Note: fmt.Sprintf(format, args...)}
}

// internalf builds an ErrInternal EmitError wrapping errInternal via
// xerrors, the way the teacher wraps internal bugs distinctly from
// resource-limit errors (spec.md §7).
func internalf(format string, args ...interface{}) *EmitError {
	return &EmitError{Kind: ErrInternal, Note: xerrors.Errorf(format+": %w", append(args, errInternal)...).Error(), err: errInternal}
}
