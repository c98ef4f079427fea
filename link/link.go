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

// Package link builds the grammar-linking table a bytecode module needs
// to resolve node/field name constraints to a concrete grammar's ids
// (spec.md §6 "Linker inputs"), by walking a live tree-sitter Language.
package link

import (
	sitter "github.com/smacker/go-tree-sitter"

	"plotnik.dev/plotnik/bytecode"
)

// Build walks lang's symbol and field tables and returns the
// bytecode.LinkTables an Emit call needs to produce a "linked" module.
// Anonymous symbols (string-literal node types, e.g. a punctuation token)
// are included alongside named ones: AnonymousNode patterns match against
// them the same way NamedNode patterns match named symbols. Auxiliary
// symbols (grammar-internal, never produced in a real tree) are left out of
// NodeTypeIds and listed in Trivia instead.
func Build(lang *sitter.Language) *bytecode.LinkTables {
	nodeTypes := map[string]uint16{}
	var trivia []string

	count := lang.SymbolCount()
	for i := 0; i < count; i++ {
		sym := sitter.Symbol(i)
		name := lang.SymbolName(sym)
		if name == "" {
			continue
		}
		switch lang.SymbolType(sym) {
		case sitter.SymbolTypeRegular, sitter.SymbolTypeAnonymous:
			nodeTypes[name] = uint16(i)
		case sitter.SymbolTypeAuxiliary:
			// grammar-internal production, never a real tree node; also
			// treated as the closest equivalent to "trivia" this API
			// exposes, since the matcher should never need to skip past
			// something it will never see.
			trivia = append(trivia, name)
		}
	}

	nodeFields := map[string]uint16{}
	fieldCount := lang.FieldCount()
	for i := 1; i <= fieldCount; i++ {
		if name := lang.FieldName(i); name != "" {
			nodeFields[name] = uint16(i)
		}
	}

	return &bytecode.LinkTables{
		NodeTypeIds:  nodeTypes,
		NodeFieldIds: nodeFields,
		Trivia:       trivia,
	}
}
