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

package debug

import (
	"fmt"
	"io"
	"strings"

	"plotnik.dev/plotnik/bytecode"
)

// DumpModule renders m as human-readable text: a summary line (linked flag
// and the string, type and entrypoint counts), the type table, the names
// table, and the entrypoint table. The strings themselves are printed only
// where a name or entrypoint refers to them, and the transitions section is
// not decoded. This recovers, in
// spirit, the original implementation's bytecode disassembler — here
// reading straight off the zero-copy views rather than off any
// intermediate representation.
func DumpModule(w io.Writer, m *bytecode.Module) {
	strs := m.Strings()
	fmt.Fprintf(w, "module: linked=%v strings=%d types=%d entrypoints=%d\n",
		m.Linked(), strs.Len(), m.Types().Len(), m.Entrypoints().Len())

	fmt.Fprintln(w, "\n[types]")
	types := m.Types()
	members := m.Members()
	for i := 0; i < types.Len(); i++ {
		rec := types.Get(bytecode.ModuleTypeId(i))
		fmt.Fprintf(w, "  %4d: %s\n", i, typeDefString(rec, members))
	}

	fmt.Fprintln(w, "\n[names]")
	names := m.Names()
	for i := 0; i < names.Len(); i++ {
		name, typ := names.Get(i)
		fmt.Fprintf(w, "  %s -> type %d\n", strs.Get(name), typ)
	}

	fmt.Fprintln(w, "\n[entrypoints]")
	eps := m.Entrypoints()
	for i := 0; i < eps.Len(); i++ {
		e := eps.Get(i)
		fmt.Fprintf(w, "  %s: step=%d result_type=%d\n", strs.Get(bytecode.StringId(e.Name)), e.Target, e.ResultType)
	}
}

// ModuleString is the string form of DumpModule.
func ModuleString(m *bytecode.Module) string {
	var b strings.Builder
	DumpModule(&b, m)
	return b.String()
}

func typeDefString(rec bytecode.TypeDefRecord, members bytecode.MembersView) string {
	switch rec.Kind {
	case bytecode.TDVoid:
		return "void"
	case bytecode.TDNode:
		return "node"
	case bytecode.TDString:
		return "string"
	case bytecode.TDOptional:
		return fmt.Sprintf("optional<%d>", rec.Data)
	case bytecode.TDArrayStar:
		return fmt.Sprintf("array<%d>*", rec.Data)
	case bytecode.TDArrayPlus:
		return fmt.Sprintf("array<%d>+", rec.Data)
	case bytecode.TDAlias:
		return fmt.Sprintf("alias<%d>", rec.Data)
	case bytecode.TDStruct:
		return fmt.Sprintf("struct{%s}", memberList(rec, members))
	case bytecode.TDEnum:
		return fmt.Sprintf("enum{%s}", memberList(rec, members))
	case bytecode.TDRef:
		return "ref"
	default:
		return "?"
	}
}

func memberList(rec bytecode.TypeDefRecord, members bytecode.MembersView) string {
	var parts []string
	for i := 0; i < int(rec.Count); i++ {
		_, typ := members.Get(int(rec.Data) + i)
		parts = append(parts, fmt.Sprintf("%d", typ))
	}
	return strings.Join(parts, ", ")
}
