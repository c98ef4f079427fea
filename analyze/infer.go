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

// Package analyze implements the bottom-up type inferencer of spec.md
// §4.T, wiring syntax (the AST view), symbols (definitions + recursion)
// and types (TypeId/TermInfo) together. Modeled on the teacher's own
// compile stage (cuelang.org/go/internal/core/compile), which likewise
// walks a typed AST bottom-up accumulating into a shared context.
package analyze

import (
	"plotnik.dev/plotnik/diag"
	"plotnik.dev/plotnik/symbols"
	"plotnik.dev/plotnik/syntax"
	"plotnik.dev/plotnik/token"
	"plotnik.dev/plotnik/types"
)

// Result is the full output of analysis: the shared Interner and type
// Context used by every later stage, the symbol table, and a TermInfo for
// every expression plus every definition.
type Result struct {
	Interner *types.Interner
	Types    *types.Context
	Symbols  *symbols.Table
	Root     syntax.Root

	Info    map[*syntax.Node]types.TermInfo
	DefInfo []types.TermInfo // indexed by symbols.DefId

	// CustomNames records the `:: TypeName` renames applied to a Bubble
	// struct or an Enum (spec.md §4.T.1 "Custom type annotations" (a)/(b)):
	// the TypeId's shape is unchanged, but the emitter (bytecode package)
	// must additionally expose this name in the module's `[types.names]`
	// section.
	CustomNames map[types.TypeId]types.Symbol
}

// Analyze runs the symbol analysis and type inferencer over root,
// accumulating diagnostics into bag. It never fails outright (spec.md §7):
// inference substitutes Void on error and keeps going.
func Analyze(root syntax.Root, bag *diag.Bag) *Result {
	symtab := symbols.Build(root, bag)

	r := &Result{
		Interner: types.NewInterner(),
		Types:    types.NewContext(),
		Symbols:  symtab,
		Root:     root,
		Info:        map[*syntax.Node]types.TermInfo{},
		DefInfo:     make([]types.TermInfo, len(symtab.Defs())),
		CustomNames: map[types.TypeId]types.Symbol{},
	}

	inf := &inferencer{r: r, bag: bag, inProgress: make([]bool, len(symtab.Defs()))}
	for _, d := range symtab.Defs() {
		r.DefInfo[d.ID] = inf.inferDef(d.ID)
	}
	return r
}

type inferencer struct {
	r          *Result
	bag        *diag.Bag
	inProgress []bool
}

func (inf *inferencer) inferDef(id symbols.DefId) types.TermInfo {
	if inf.inProgress[id] {
		// Defensive cycle breaker (spec.md §4.T intro): Tarjan SCC should
		// already have classified this definition as recursive, so this
		// path is only reached if that classification is somehow wrong.
		return types.TermInfo{Arity: types.One, Flow: types.Void()}
	}
	inf.inProgress[id] = true
	defer func() { inf.inProgress[id] = false }()

	def := inf.r.Symbols.Defs()[id]
	return inf.infer(def.Body)
}

// infer computes and memoizes the TermInfo of e.
func (inf *inferencer) infer(e syntax.Expr) types.TermInfo {
	if !e.Valid() {
		return types.TermInfo{Arity: types.One, Flow: types.Void()}
	}
	if ti, ok := inf.r.Info[e.N]; ok {
		return ti
	}
	ti := inf.inferUncached(e)
	inf.r.Info[e.N] = ti
	return ti
}

func (inf *inferencer) inferUncached(e syntax.Expr) types.TermInfo {
	switch e.Kind() {
	case syntax.KAnonymousNode:
		return types.TermInfo{Arity: types.One, Flow: types.Void()}
	case syntax.KNamedNode:
		return inf.inferNamedNode(e.AsNamedNode())
	case syntax.KSeqExpr:
		return inf.inferSeq(e.AsSeqExpr())
	case syntax.KAltExpr:
		return inf.inferAlt(e.AsAltExpr())
	case syntax.KQuantifiedExpr:
		return inf.inferQuantified(e.AsQuantifiedExpr())
	case syntax.KFieldExpr:
		return inf.inferField(e.AsFieldExpr())
	case syntax.KRef:
		return inf.inferRef(e.AsRef())
	case syntax.KCapturedExpr:
		return inf.inferCaptured(e.AsCapturedExpr())
	case syntax.KNegatedField, syntax.KAnchor, syntax.KError:
		return types.TermInfo{Arity: types.One, Flow: types.Void()}
	default:
		return types.TermInfo{Arity: types.One, Flow: types.Void()}
	}
}

func (inf *inferencer) ctx() *types.Context  { return inf.r.Types }
func (inf *inferencer) sym(s string) types.Symbol { return inf.r.Interner.Intern(s) }

// ---- merge (spec.md §4.T.2) -------------------------------------------

// isOutputProducing reports whether ti's scalar contribution is
// structurally meaningful: any Struct/Enum/Ref, or arrays/optionals
// thereof whose elements are themselves meaningful. A bare Array<Node> (or
// plain Node/String/Void) is not.
func (inf *inferencer) isOutputProducing(t types.TypeId) bool {
	shape := inf.ctx().Get(t)
	switch shape.Kind {
	case types.KStruct, types.KEnum, types.KRef:
		return true
	case types.KOptional, types.KArray:
		return inf.isOutputProducing(shape.Inner)
	default:
		return false
	}
}

// mergeChildren implements the NamedNode/SeqExpr merge table of §4.T.2.
func (inf *inferencer) mergeChildren(children []syntax.Expr, onIncompatible func()) types.TypeFlow {
	var bubbleFields []types.Field
	seen := map[types.Symbol]bool{}
	var outputs []types.TypeId
	var outputSpans []token.Span

	for _, c := range children {
		ti := inf.infer(c)
		switch ti.Flow.Kind {
		case types.FlowBubble:
			shape := inf.ctx().Get(ti.Flow.Type)
			for _, f := range shape.Fields {
				if seen[f.Name] {
					inf.bag.New(diag.DuplicateCaptureInScope, c.Span()).
						Message("capture %q is already bound in this scope", inf.r.Interner.String(f.Name)).
						Emit()
					continue
				}
				seen[f.Name] = true
				bubbleFields = append(bubbleFields, f)
			}
		case types.FlowScalar:
			if inf.isOutputProducing(ti.Flow.Type) {
				outputs = append(outputs, ti.Flow.Type)
				outputSpans = append(outputSpans, c.Span())
			}
		}
	}

	switch {
	case len(bubbleFields) == 0 && len(outputs) == 0:
		return types.Void()
	case len(bubbleFields) == 0 && len(outputs) == 1:
		return types.Scalar(outputs[0])
	case len(bubbleFields) == 0:
		if onIncompatible != nil {
			onIncompatible()
		}
		for _, sp := range outputSpans {
			inf.bag.New(diag.AmbiguousUncaptured, sp).
				Message("multiple uncaptured outputs in the same scope").
				Emit()
		}
		return types.Void()
	default:
		if len(outputs) > 0 {
			for _, sp := range outputSpans {
				inf.bag.New(diag.UncapturedOutput, sp).
					Message("this output must be captured; it is alongside other captures in the same scope").
					Emit()
			}
		}
		return types.Bubble(inf.ctx().Struct(bubbleFields))
	}
}

func (inf *inferencer) inferNamedNode(n syntax.NamedNode) types.TermInfo {
	return types.TermInfo{Arity: types.One, Flow: inf.mergeChildren(n.Children(), nil)}
}

func (inf *inferencer) inferSeq(s syntax.SeqExpr) types.TermInfo {
	items := s.Items()
	var exprs []syntax.Expr
	for _, it := range items {
		if !it.Anchor {
			exprs = append(exprs, it.Expr)
		}
	}
	arity := types.One
	if len(exprs) > 1 {
		arity = types.Many
	} else if len(exprs) == 1 {
		arity = inf.infer(exprs[0]).Arity
	}
	return types.TermInfo{Arity: arity, Flow: inf.mergeChildren(exprs, nil)}
}

func (inf *inferencer) inferField(f syntax.FieldExpr) types.TermInfo {
	value := inf.infer(f.Value())
	if value.Arity == types.Many {
		inf.bag.New(diag.FieldHoldsMany, f.N.Span()).
			Message("field %q holds a sequence of siblings, but a field always matches one", nodeFieldName(inf, f)).
			Emit()
	}
	return types.TermInfo{Arity: types.One, Flow: value.Flow}
}

func nodeFieldName(inf *inferencer, f syntax.FieldExpr) string {
	tok := f.Name()
	return string(sourceText(f.N, tok))
}

func sourceText(n *syntax.Node, tok token.Token) []byte {
	var out []byte
	var walk func(syntax.Element)
	walk = func(e syntax.Element) {
		if out != nil {
			return
		}
		switch x := e.(type) {
		case syntax.Leaf:
			if x.Tok.Span == tok.Span {
				out = x.Text
			}
		case *syntax.Node:
			for _, c := range x.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

func (inf *inferencer) inferRef(r syntax.Ref) types.TermInfo {
	name := string(sourceText(r.N, r.Name()))
	def, ok := inf.r.Symbols.Lookup(name)
	if !ok {
		// already diagnosed by symbols.Build
		return types.TermInfo{Arity: types.One, Flow: types.Void()}
	}
	if inf.r.Symbols.IsRecursive(def.ID) {
		return types.TermInfo{Arity: types.One, Flow: types.Void()}
	}
	return inf.inferDef(def.ID)
}

// ---- alternation (spec.md §4.T.1 AltExpr, §4.T.3 unify_flows) ------------

func (inf *inferencer) inferAlt(a syntax.AltExpr) types.TermInfo {
	if a.IsTagged() {
		return inf.inferTaggedAlt(a)
	}

	var flows []types.TypeFlow
	arity := types.One
	for _, alt := range a.Alternatives() {
		ti := inf.infer(alt)
		flows = append(flows, ti.Flow)
		arity = arity.Join(ti.Arity)
	}
	flow, ok := inf.unifyFlows(flows, a.N.Span())
	if !ok {
		flow = types.Void()
	}
	return types.TermInfo{Arity: arity, Flow: flow}
}

func (inf *inferencer) inferTaggedAlt(a syntax.AltExpr) types.TermInfo {
	branches := a.Branches()
	variants := make([]types.Variant, 0, len(branches))
	seen := map[types.Symbol]bool{}
	arity := types.One
	for _, b := range branches {
		bti := inf.infer(b.Body())
		arity = arity.Join(bti.Arity)
		vname := inf.sym(string(sourceText(b.N, b.Name())))
		if seen[vname] {
			inf.bag.New(diag.IncompatibleTagged, b.N.Span()).
				Message("branch label %q is used more than once in this alternation", inf.r.Interner.String(vname)).
				Emit()
			continue
		}
		seen[vname] = true
		variants = append(variants, types.Variant{Name: vname, Payload: inf.flowToPayload(bti.Flow)})
	}
	return types.TermInfo{Arity: arity, Flow: types.Scalar(inf.ctx().Enum(variants))}
}

// flowToPayload converts a branch's TypeFlow into the TypeId stored as its
// enum variant's payload: VOID denotes a unit variant (spec.md §3 Variant).
func (inf *inferencer) flowToPayload(flow types.TypeFlow) types.TypeId {
	switch flow.Kind {
	case types.FlowScalar, types.FlowBubble:
		return flow.Type
	default:
		return types.VOID
	}
}

// unifyFlows attempts to produce a single flow representing every branch of
// an untagged or mixed alternation (spec.md §4.T.3).
func (inf *inferencer) unifyFlows(flows []types.TypeFlow, span token.Span) (types.TypeFlow, bool) {
	if len(flows) == 0 {
		return types.Void(), true
	}

	allVoid := true
	for _, f := range flows {
		if !f.IsVoid() {
			allVoid = false
			break
		}
	}
	if allVoid {
		return types.Void(), true
	}

	allScalar := true
	for _, f := range flows {
		if !f.IsScalar() {
			allScalar = false
			break
		}
	}
	if allScalar {
		t := flows[0].Type
		for _, f := range flows[1:] {
			if f.Type != t {
				inf.bag.New(diag.ScalarInUntagged, span).
					Message("branches of this alternation produce different scalar types; tag the branches to make this an enum").
					Emit()
				return types.Void(), false
			}
		}
		return types.Scalar(t), true
	}

	allBubble := true
	for _, f := range flows {
		if !f.IsBubble() {
			allBubble = false
			break
		}
	}
	if !allBubble {
		inf.bag.New(diag.ScalarInUntagged, span).
			Message("branches of this alternation produce incompatible kinds of value").
			Emit()
		return types.Void(), false
	}

	return inf.unifyBubbles(flows, span)
}

// unifyBubbles merges the struct types of every Bubble branch key by key: a
// field present in all branches keeps its (unified) type, one present only
// in some branches becomes optional (spec.md §4.T.3).
func (inf *inferencer) unifyBubbles(flows []types.TypeFlow, span token.Span) (types.TypeFlow, bool) {
	type acc struct {
		info  types.FieldInfo
		count int
	}
	order := []types.Symbol{}
	merged := map[types.Symbol]*acc{}
	ok := true

	for _, f := range flows {
		shape := inf.ctx().Get(f.Type)
		for _, field := range shape.Fields {
			a, seen := merged[field.Name]
			if !seen {
				a = &acc{info: field.Info}
				merged[field.Name] = a
				order = append(order, field.Name)
			} else {
				unified, uok := inf.unifyFieldType(a.info.Type, field.Info.Type, span)
				if !uok {
					ok = false
				} else {
					a.info.Type = unified
					a.info.Optional = a.info.Optional || field.Info.Optional
				}
			}
			a.count++
		}
	}
	if !ok {
		return types.Void(), false
	}

	fields := make([]types.Field, 0, len(order))
	for _, name := range order {
		a := merged[name]
		if a.count < len(flows) {
			a.info.Optional = true
		}
		fields = append(fields, types.Field{Name: name, Info: a.info})
	}
	return types.Bubble(inf.ctx().Struct(fields)), true
}

// unifyFieldType reconciles the same capture's type across two branches:
// identical types unify trivially; struct shapes must match exactly; array
// elements unify recursively with non-emptiness joined to the weaker side
// (spec.md §4.T.3).
func (inf *inferencer) unifyFieldType(a, b types.TypeId, span token.Span) (types.TypeId, bool) {
	if a == b {
		return a, true
	}
	sa, sb := inf.ctx().Get(a), inf.ctx().Get(b)
	if sa.Kind == types.KStruct && sb.Kind == types.KStruct {
		inf.bag.New(diag.IncompatibleStructShapes, span).
			Message("the same capture has differently shaped struct types across branches").
			Emit()
		return 0, false
	}
	if sa.Kind == types.KArray && sb.Kind == types.KArray {
		elem, eok := inf.unifyFieldType(sa.Inner, sb.Inner, span)
		if !eok {
			inf.bag.New(diag.IncompatibleArrayElement, span).
				Message("the same capture has incompatible array element types across branches").
				Emit()
			return 0, false
		}
		return inf.ctx().Array(elem, sa.NonEmpty && sb.NonEmpty), true
	}
	inf.bag.New(diag.IncompatibleCaptureTypes, span).
		Message("the same capture has incompatible types across branches").
		Emit()
	return 0, false
}

// ---- quantifiers (spec.md §4.T.1 QuantifiedExpr) -------------------------

func (inf *inferencer) inferQuantified(q syntax.QuantifiedExpr) types.TermInfo {
	return inf.inferQuantifiedCore(q, false)
}

// inferQuantifiedCore computes a quantifier's TermInfo. rowCapture, set only
// by inferCaptured's row-capture fast path, suppresses the strict
// dimensionality diagnostic that a bare (uncaptured, or non-*/+ captured)
// Bubble-producing repetition would otherwise trigger (spec.md §4.T.1, the
// "row capture" paragraph).
func (inf *inferencer) inferQuantifiedCore(q syntax.QuantifiedExpr, rowCapture bool) types.TermInfo {
	inner := q.Inner()
	ti := inf.infer(inner)

	switch q.Operator() {
	case token.QUESTION:
		flow := inf.optionalFlow(ti.Flow)
		if flow.IsVoid() {
			// A Void inner (e.g. a childless named node) still produces an
			// observable presence/absence; default it to Optional<Node> so
			// a capture wrapping the `?` has something concrete to bind
			// (symmetric with the */+ branch's Void -> Array<Node> default
			// below).
			elem := types.NODE
			if inner.Kind() == syntax.KRef {
				if def, ok := inf.refDef(inner.AsRef()); ok && inf.r.Symbols.IsRecursive(def.ID) {
					elem = inf.ctx().Ref(int(def.ID))
				}
			}
			flow = types.Scalar(inf.ctx().Optional(elem))
		}
		return types.TermInfo{Arity: ti.Arity, Flow: flow}

	case token.STAR, token.PLUS:
		nonEmpty := q.Operator() == token.PLUS
		if ti.Flow.IsBubble() {
			if !rowCapture {
				inf.bag.New(diag.StrictDimensionality, q.N.Span()).
					Message("a repeated pattern with captures must itself be captured as a row").
					Emit()
				return types.TermInfo{Arity: ti.Arity, Flow: types.Void()}
			}
			return types.TermInfo{Arity: ti.Arity, Flow: types.Scalar(inf.ctx().Array(ti.Flow.Type, nonEmpty))}
		}

		elem := types.NODE
		switch ti.Flow.Kind {
		case types.FlowScalar:
			elem = ti.Flow.Type
		case types.FlowVoid:
			if inner.Kind() == syntax.KRef {
				if def, ok := inf.refDef(inner.AsRef()); ok && inf.r.Symbols.IsRecursive(def.ID) {
					elem = inf.ctx().Ref(int(def.ID))
				}
			}
		}
		return types.TermInfo{Arity: ti.Arity, Flow: types.Scalar(inf.ctx().Array(elem, nonEmpty))}

	default:
		return ti
	}
}

// optionalFlow applies `?` to a flow: a scalar is wrapped in Optional, a
// bubble has every field marked optional, Void is unaffected (spec.md
// §4.T.1).
func (inf *inferencer) optionalFlow(f types.TypeFlow) types.TypeFlow {
	switch f.Kind {
	case types.FlowScalar:
		return types.Scalar(inf.ctx().Optional(f.Type))
	case types.FlowBubble:
		shape := inf.ctx().Get(f.Type)
		return types.Bubble(inf.ctx().Struct(types.WithOptionalFields(shape.Fields)))
	default:
		return f
	}
}

func (inf *inferencer) refDef(r syntax.Ref) (*symbols.Def, bool) {
	name := string(sourceText(r.N, r.Name()))
	return inf.r.Symbols.Lookup(name)
}

// ---- captures (spec.md §4.T.1 CapturedExpr) ------------------------------

func (inf *inferencer) captureName(c syntax.CapturedExpr) types.Symbol {
	return inf.sym(string(sourceText(c.N, c.Name())))
}

// captureScalarField wraps a single field (name: convertedType) as a Bubble
// struct of one member — the common shape for a bare capture, a
// scope-creating capture, and a row capture.
func (inf *inferencer) captureScalarField(c syntax.CapturedExpr, name types.Symbol, flow types.TypeFlow, arity types.Arity) types.TermInfo {
	t := inf.convertFlowToType(flow, c)
	return types.TermInfo{Arity: arity, Flow: types.Bubble(inf.ctx().Struct([]types.Field{{Name: name, Info: types.FieldInfo{Type: t}}}))}
}

// convertFlowToType applies the capture's optional `:: T` annotation to
// flow's type, per the selection-by-inner-shape rule of spec.md §4.T.1
// "Custom type annotations":
//   - `:: string` always produces String (rewriting an array's element).
//   - `:: TypeName` over a Bubble struct or an enum Scalar renames that
//     type in place (recorded in Result.CustomNames); over anything else
//     it creates a Custom(name) alias to Node.
//   - no annotation: flow's type unchanged (Node for a Void/unset flow).
func (inf *inferencer) convertFlowToType(flow types.TypeFlow, c syntax.CapturedExpr) types.TypeId {
	base := types.NODE
	switch flow.Kind {
	case types.FlowScalar, types.FlowBubble:
		base = flow.Type
	}

	tok, ok := c.TypeAnnotation()
	if !ok {
		return base
	}
	text := string(sourceText(c.N, tok))

	if tok.Kind == token.LOWER_IDENT { // only "string" is meaningful
		if shape := inf.ctx().Get(base); shape.Kind == types.KArray {
			return inf.ctx().Array(types.STRING, shape.NonEmpty)
		}
		return types.STRING
	}

	name := inf.sym(text)
	shape := inf.ctx().Get(base)
	switch shape.Kind {
	case types.KStruct, types.KEnum:
		inf.r.CustomNames[base] = name
		return base
	default:
		return inf.ctx().Custom(name)
	}
}

// tryRowCapture handles `@name (pat)*` / `@name (pat)+` where pat itself
// produces a Bubble: the capture binds a single Array<struct> field instead
// of flattening, and bypasses the strict-dimensionality diagnostic that a
// bare or non-*/+-captured repeated Bubble would trigger (spec.md §4.T.1
// "row capture").
func (inf *inferencer) tryRowCapture(c syntax.CapturedExpr, name types.Symbol, inner syntax.Expr) (types.TermInfo, bool) {
	if inner.Kind() != syntax.KQuantifiedExpr {
		return types.TermInfo{}, false
	}
	q := inner.AsQuantifiedExpr()
	op := q.Operator()
	if op != token.STAR && op != token.PLUS {
		return types.TermInfo{}, false
	}
	qi := q.Inner()
	qiTI := inf.infer(qi)
	if !qiTI.Flow.IsBubble() {
		return types.TermInfo{}, false
	}
	arr := inf.ctx().Array(qiTI.Flow.Type, op == token.PLUS)
	return inf.captureScalarField(c, name, types.Scalar(arr), qiTI.Arity), true
}

func (inf *inferencer) inferCaptured(c syntax.CapturedExpr) types.TermInfo {
	name := inf.captureName(c)
	inner := c.Inner()

	if !inner.Valid() {
		return inf.captureScalarField(c, name, types.Scalar(types.NODE), types.One)
	}

	if ti, handled := inf.tryRowCapture(c, name, inner); handled {
		return ti
	}

	innerTI := inf.infer(inner)

	// A Bubble produced by a construct that does not itself create a scope
	// (a named node's own children, or a bare repetition thereof) flattens
	// straight through: this capture contributes one more Node field
	// alongside the bubbled ones, rather than boxing them (spec.md §4.T.1
	// "Otherwise" branch). Anything else — Void, a plain Scalar (including
	// Array<Node> from an uncaptured-repetition-of-atoms, or an enum from a
	// tagged alternation), or a Bubble from a scope-creating construct
	// (Seq/Alt/Ref) — binds as a single field of the (possibly converted)
	// inner type, defaulting a Void inner to Node.
	if innerTI.Flow.IsBubble() && !IsScopeCreating(inner) {
		fields := append([]types.Field{}, inf.ctx().Get(innerTI.Flow.Type).Fields...)
		for _, f := range fields {
			if f.Name == name {
				inf.bag.New(diag.DuplicateCaptureInScope, c.N.Span()).
					Message("capture %q is already bound by a nested capture", inf.r.Interner.String(name)).
					Emit()
			}
		}
		ownType := inf.convertFlowToType(types.Scalar(types.NODE), c)
		fields = append(fields, types.Field{Name: name, Info: types.FieldInfo{Type: ownType}})
		return types.TermInfo{Arity: innerTI.Arity, Flow: types.Bubble(inf.ctx().Struct(fields))}
	}

	flow := innerTI.Flow
	if inner.Kind() == syntax.KRef {
		if def, ok := inf.refDef(inner.AsRef()); ok && inf.r.Symbols.IsRecursive(def.ID) {
			flow = types.Scalar(inf.ctx().Ref(int(def.ID)))
		}
	}
	return inf.captureScalarField(c, name, flow, innerTI.Arity)
}

// IsScopeCreating reports whether e is one of the constructs that, when
// wrapped by a capture whose own flow merges into a parent, causes the
// capture to bind a single boxed field rather than flattening its bubbled
// fields into the parent scope (spec.md §4.T.1, §4.C.1). Exported for the
// NFA compiler (ir package), which needs the same classification to decide
// whether a capture opens a new struct scope.
func IsScopeCreating(e syntax.Expr) bool {
	switch e.Kind() {
	case syntax.KSeqExpr, syntax.KAltExpr, syntax.KRef:
		return true
	case syntax.KQuantifiedExpr:
		return IsScopeCreating(e.AsQuantifiedExpr().Inner())
	default:
		return false
	}
}
