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

// Package types implements the type system that flows through the
// compiler: the string Interner, the per-query TypeContext of TypeId /
// TypeShape, and TermInfo (spec.md §3).
package types

// Symbol is an opaque handle for an interned string. Symbol(0) is never
// issued by Interner.Intern; it is reserved so a zero-value Symbol can mean
// "no symbol" in call sites that need that.
type Symbol uint32

// Interner maps byte strings to Symbols and back. It is built once per
// compilation and referenced by every later stage (spec.md §3 Interner);
// unlike a process-wide singleton, each plotnik.Compile call gets its own
// so output is reproducible independent of prior compilations in the same
// process.
type Interner struct {
	byString map[string]Symbol
	byID     []string // byID[0] is unused; real symbols start at 1
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{byString: map[string]Symbol{}, byID: []string{""}}
}

// Intern returns the Symbol for s, assigning a fresh one in first-seen
// order if s has not been seen before.
func (in *Interner) Intern(s string) Symbol {
	if sym, ok := in.byString[s]; ok {
		return sym
	}
	sym := Symbol(len(in.byID))
	in.byID = append(in.byID, s)
	in.byString[s] = sym
	return sym
}

// Lookup returns the Symbol for s without creating one, and whether s has
// been interned.
func (in *Interner) Lookup(s string) (Symbol, bool) {
	sym, ok := in.byString[s]
	return sym, ok
}

// String resolves sym back to its borrowed string. Panics on an unknown
// Symbol: that can only mean a Symbol leaked from a different Interner.
func (in *Interner) String(sym Symbol) string {
	return in.byID[sym]
}

// Len returns the number of distinct strings interned (excluding the
// reserved zero slot).
func (in *Interner) Len() int { return len(in.byID) - 1 }
