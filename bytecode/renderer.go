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

// TypeRenderer is the module's external emitter interface (spec.md §1
// "downstream type emitters", §6 "External emitter interface: Contract for
// downstream type renderers reading the module", §4.O "External renderers
// are polymorphic only over the module reading surface"). A downstream
// consumer renders a module's result types into another surface language
// (e.g. TypeScript, a schema IDL) by walking TypesView/MembersView/NamesView
// and the string table a Module exposes, entirely through the read-only
// views above — never by touching Graph, Instruction, or any in-memory
// compiler type, which do not survive past Emit.
//
// Implementing a renderer is out of scope for this repo (spec.md §1); the
// interface exists so the module reading surface has a named, stable
// contract a downstream renderer can target without depending on anything
// beyond Module's public views.
//
// A renderer walks m.Types() in order, dispatching each TypeDefRecord to
// RenderStruct or RenderEnum by its Kind, resolving member/variant names
// and types itself via m.Members()/m.Names()/m.Strings(), then calls
// Finish once every reachable type has been rendered.
type TypeRenderer interface {
	// RenderStruct emits the downstream representation of one struct type,
	// given its module-local id and the record describing where its
	// members live in m.Members().
	RenderStruct(m *Module, id ModuleTypeId, def TypeDefRecord) error

	// RenderEnum emits the downstream representation of one enum type and
	// its tagged variants, resolved against m.Members() the same way.
	RenderEnum(m *Module, id ModuleTypeId, def TypeDefRecord) error

	// Finish flushes any buffered output once every reachable type in the
	// module's TypesView has been rendered.
	Finish() error
}
