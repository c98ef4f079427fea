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

// Package diag implements the structured diagnostics of spec.md §3/§4.D/§7:
// errors and warnings with related spans and suggested fixes, accumulated
// in encounter order across the whole pipeline. Modeled on
// cuelang.org/go/cue/errors, whose Error/List shape this package mirrors.
package diag

import (
	"fmt"

	"plotnik.dev/plotnik/token"
)

// Kind enumerates every diagnostic the pipeline can emit (spec.md §7).
type Kind string

const (
	// Syntactic
	UnexpectedToken       Kind = "unexpected-token"
	UnclosedDelimiter     Kind = "unclosed-delimiter"
	MissingExpr           Kind = "missing-expr"
	MissingFieldName      Kind = "missing-field-name"
	MissingTypeName       Kind = "missing-type-name"
	MissingSubtype        Kind = "missing-subtype"
	PredicateUnsupported  Kind = "predicate-unsupported"
	BareIdentifier        Kind = "bare-identifier"
	ErrorMissingMisuse    Kind = "error-missing-misuse"
	EmptyTree             Kind = "empty-tree"
	RefWithChildren       Kind = "ref-with-children"
	InvalidSupertype      Kind = "invalid-supertype"
	SeparatorMisuse       Kind = "separator-misuse"
	ColonVsColonColon     Kind = "colon-vs-coloncolon"
	FieldEqualsVsColon    Kind = "field-equals-vs-colon"
	BadCaptureCase        Kind = "bad-capture-case"
	BadFieldCase          Kind = "bad-field-case"
	BadDefCase            Kind = "bad-def-case"
	BadTypeCase           Kind = "bad-type-case"
	BadBranchCase         Kind = "bad-branch-case"
	DottedName            Kind = "dotted-name"
	UnnamedDefNotLast     Kind = "unnamed-def-not-last"
	DuplicateDefName      Kind = "duplicate-def-name"
	UndefinedRef          Kind = "undefined-ref"
	RecursionLimit        Kind = "recursion-limit"

	// Static
	DuplicateCaptureInScope  Kind = "duplicate-capture-in-scope"
	StrictDimensionality     Kind = "strict-dimensionality"
	FieldHoldsMany           Kind = "field-holds-many"
	AmbiguousUncaptured      Kind = "ambiguous-uncaptured-outputs"
	UncapturedOutput         Kind = "uncaptured-output-with-captures"
	ScalarInUntagged         Kind = "scalar-in-untagged"
	IncompatibleCaptureTypes Kind = "incompatible-capture-types"
	IncompatibleStructShapes Kind = "incompatible-struct-shapes"
	IncompatibleArrayElement Kind = "incompatible-array-elements"
	IncompatibleTagged       Kind = "incompatible-tagged-alternations"

	// Resource
	TooManyStrings     Kind = "too-many-strings"
	TooManyTypes       Kind = "too-many-types"
	TooManyMembers     Kind = "too-many-members"
	TooManyEntrypoints Kind = "too-many-entrypoints"
	TooManyTransitions Kind = "too-many-transitions"
)

// Severity distinguishes hard errors (which block emit, spec.md §7) from
// warnings.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (k Kind) severity() Severity {
	switch k {
	case DottedName:
		return Warning
	default:
		return Error
	}
}

// Related attaches a secondary span to a diagnostic, e.g. "started here".
type Related struct {
	Span  token.Span
	Label string
}

// Fix is a suggested source edit: replace Span with Replacement.
type Fix struct {
	Span        token.Span
	Replacement string
	Description string
}

// Diagnostic is one structured finding.
type Diagnostic struct {
	Kind    Kind
	Span    token.Span
	Message string
	Related []Related
	Fixes   []Fix
	Hint    string
}

func (d *Diagnostic) Severity() Severity { return d.Kind.severity() }

func (d *Diagnostic) Error() string {
	if d.Message != "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return string(d.Kind)
}

// Builder assembles a Diagnostic with a chainable API before handing it to
// a Bag via Emit.
type Builder struct {
	bag *Bag
	d   Diagnostic
}

func (b *Builder) Message(format string, args ...interface{}) *Builder {
	b.d.Message = fmt.Sprintf(format, args...)
	return b
}

func (b *Builder) Hint(format string, args ...interface{}) *Builder {
	b.d.Hint = fmt.Sprintf(format, args...)
	return b
}

func (b *Builder) RelatedTo(label string, span token.Span) *Builder {
	b.d.Related = append(b.d.Related, Related{Span: span, Label: label})
	return b
}

func (b *Builder) Fix(replacement, description string) *Builder {
	b.d.Fixes = append(b.d.Fixes, Fix{Span: b.d.Span, Replacement: replacement, Description: description})
	return b
}

// FixAt suggests replacing a span other than the diagnostic's primary span.
func (b *Builder) FixAt(span token.Span, replacement, description string) *Builder {
	b.d.Fixes = append(b.d.Fixes, Fix{Span: span, Replacement: replacement, Description: description})
	return b
}

// Emit appends the built diagnostic to the originating Bag and returns it.
func (b *Builder) Emit() *Diagnostic {
	d := b.d
	b.bag.diags = append(b.bag.diags, &d)
	return &d
}

// Bag accumulates diagnostics in encounter order (spec.md §5).
type Bag struct {
	diags []*Diagnostic
}

// New starts building a diagnostic of the given kind at span.
func (bag *Bag) New(kind Kind, span token.Span) *Builder {
	return &Builder{bag: bag, d: Diagnostic{Kind: kind, Span: span}}
}

// All returns every diagnostic emitted so far, in encounter order.
func (bag *Bag) All() []*Diagnostic { return bag.diags }

// HasErrors reports whether any accumulated diagnostic is error severity.
// The plotnik emit command refuses to call bytecode.Emit when this is true
// (spec.md §7); bytecode.Emit itself does not consult the Bag.
func (bag *Bag) HasErrors() bool {
	for _, d := range bag.diags {
		if d.Severity() == Error {
			return true
		}
	}
	return false
}

// Len returns the number of accumulated diagnostics.
func (bag *Bag) Len() int { return len(bag.diags) }
