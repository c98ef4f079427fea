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

// Context is a per-query registry of TypeShapes, indexed by TypeId. The
// three builtins are pre-registered so VOID/NODE/STRING are always valid
// ids (spec.md §3).
type Context struct {
	shapes []TypeShape
	byKey  map[string]TypeId
}

// NewContext creates a Context with the three reserved builtins installed.
func NewContext() *Context {
	c := &Context{byKey: map[string]TypeId{}}
	c.shapes = append(c.shapes, TypeShape{Kind: KVoid})
	c.shapes = append(c.shapes, TypeShape{Kind: KNode})
	c.shapes = append(c.shapes, TypeShape{Kind: KString})
	c.byKey[c.shapes[VOID].key()] = VOID
	c.byKey[c.shapes[NODE].key()] = NODE
	c.byKey[c.shapes[STRING].key()] = STRING
	return c
}

// Get returns the shape registered for id.
func (c *Context) Get(id TypeId) TypeShape { return c.shapes[id] }

// Len returns the number of registered types, including the 3 builtins.
func (c *Context) Len() int { return len(c.shapes) }

// intern registers shape if it is not already present (by structural key)
// and returns its TypeId either way.
func (c *Context) intern(shape TypeShape) TypeId {
	k := shape.key()
	if id, ok := c.byKey[k]; ok {
		return id
	}
	id := TypeId(len(c.shapes))
	c.shapes = append(c.shapes, shape)
	c.byKey[k] = id
	return id
}

// Custom aliases NODE under a user-chosen name (from `:: TypeName`).
func (c *Context) Custom(name Symbol) TypeId {
	return c.intern(TypeShape{Kind: KCustom, CustomName: name})
}

// Optional wraps inner, memoised per base type.
func (c *Context) Optional(inner TypeId) TypeId {
	if c.Get(inner).Kind == KOptional {
		return inner
	}
	return c.intern(TypeShape{Kind: KOptional, Inner: inner})
}

// Array wraps element with the given non-emptiness.
func (c *Context) Array(element TypeId, nonEmpty bool) TypeId {
	return c.intern(TypeShape{Kind: KArray, Inner: element, NonEmpty: nonEmpty})
}

// Struct interns a struct type from an unordered field list; membership is
// stable and the same field set always interns to the same TypeId
// (spec.md §3 invariants).
func (c *Context) Struct(fields []Field) TypeId {
	return c.intern(structShape(fields))
}

// Enum interns a tagged-union type from an ordered variant list.
func (c *Context) Enum(variants []Variant) TypeId {
	return c.intern(enumShape(variants))
}

// Ref represents the opaque boundary across a recursive definition
// reference (spec.md §3 Ref(DefId), §4.T Ref "Recursive").
func (c *Context) Ref(defID int) TypeId {
	return c.intern(TypeShape{Kind: KRef, Def: defID})
}

// WithOptionalFields returns a new field list equal to fields but with
// every entry marked optional — used when wrapping a Bubble in `?`
// (spec.md §4.T.1 QuantifiedExpr).
func WithOptionalFields(fields []Field) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		f.Info.Optional = true
		out[i] = f
	}
	return out
}
