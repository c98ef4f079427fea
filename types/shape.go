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

package types

import (
	"fmt"
	"sort"
)

// TypeId indexes into a TypeContext. The three reserved ids are always
// present at construction (spec.md §3).
type TypeId int

const (
	VOID   TypeId = 0
	NODE   TypeId = 1
	STRING TypeId = 2
)

// Kind discriminates the TypeShape variants.
type Kind uint8

const (
	KVoid Kind = iota
	KNode
	KString
	KCustom
	KOptional
	KArray
	KStruct
	KEnum
	KRef
)

// FieldInfo is one struct member: its type and whether it may be absent.
type FieldInfo struct {
	Type     TypeId
	Optional bool
}

// Field is a named struct member, in the struct's canonical field order.
type Field struct {
	Name Symbol
	Info FieldInfo
}

// Variant is a named enum payload, in declaration (branch) order: variant
// index is this slice position, and VOID payload denotes a unit variant.
type Variant struct {
	Name    Symbol
	Payload TypeId
}

// TypeShape is the tagged union of every type a pattern expression can
// produce (spec.md §3 TypeShape).
type TypeShape struct {
	Kind Kind

	// KCustom
	CustomName Symbol

	// KOptional, KArray (Element)
	Inner    TypeId
	NonEmpty bool // KArray only

	// KStruct
	Fields []Field // canonical order: sorted by Symbol

	// KEnum
	Variants []Variant // declaration order

	// KRef
	Def int // symbols.DefId, stored as int
}

func structShape(fields []Field) TypeShape {
	sorted := append([]Field(nil), fields...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return TypeShape{Kind: KStruct, Fields: sorted}
}

func enumShape(variants []Variant) TypeShape {
	return TypeShape{Kind: KEnum, Variants: append([]Variant(nil), variants...)}
}

// key renders a canonical, collision-free string for structural interning:
// the same shape (by Symbol identity and nested TypeIds) always produces
// the same key, so Context.intern can detect and reuse duplicates.
func (s TypeShape) key() string {
	switch s.Kind {
	case KVoid:
		return "V"
	case KNode:
		return "N"
	case KString:
		return "S"
	case KCustom:
		return fmt.Sprintf("C%d", s.CustomName)
	case KOptional:
		return fmt.Sprintf("O%d", s.Inner)
	case KArray:
		ne := 0
		if s.NonEmpty {
			ne = 1
		}
		return fmt.Sprintf("A%d.%d", s.Inner, ne)
	case KStruct:
		k := "T"
		for _, f := range s.Fields {
			opt := 0
			if f.Info.Optional {
				opt = 1
			}
			k += fmt.Sprintf("|%d:%d:%d", f.Name, f.Info.Type, opt)
		}
		return k
	case KEnum:
		k := "E"
		for _, v := range s.Variants {
			k += fmt.Sprintf("|%d:%d", v.Name, v.Payload)
		}
		return k
	case KRef:
		return fmt.Sprintf("R%d", s.Def)
	default:
		return "?"
	}
}
