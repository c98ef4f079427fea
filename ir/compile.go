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

package ir

import (
	"plotnik.dev/plotnik/analyze"
	"plotnik.dev/plotnik/symbols"
	"plotnik.dev/plotnik/syntax"
	"plotnik.dev/plotnik/token"
	"plotnik.dev/plotnik/types"
)

// Compile lowers an analysed query into an instruction graph, one
// entrypoint per definition in source order (spec.md §4.C).
//
// Scope-opening decision (a resolution of an ambiguity left open by
// spec.md §4.C.1, recorded in DESIGN.md): rather than opening a nested
// struct scope (S/EndS) at every CapturedExpr whose *captured expression*
// happens to have a Bubble flow, this compiler opens a struct scope only at
// a "scope root" — the definition itself (when its own result is a
// Bubble), a capture over a scope-creating construct (Seq/Alt/Ref) whose
// own flow is a Bubble being boxed into a single field, a tagged-alternation
// branch whose body is a Bubble, or one iteration of a row capture. A capture that
// merely flattens (the §4.T.1 "Otherwise" branch: named nodes, bare refs)
// contributes its own Node/Text + Set effects directly into the nearest
// enclosing scope root's member table, exactly as spec.md §8 scenario 5
// describes ("reference the top-level struct's member base, not any
// intermediate scope").
func Compile(res *analyze.Result) *CompileResult {
	c := &compiler{res: res, g: NewGraph()}

	defs := res.Symbols.Defs()
	c.defEntryLabel = make([]Label, len(defs))
	for i := range defs {
		c.defEntryLabel[i] = c.g.NewLabel()
	}
	c.refID = make([]int, len(defs))
	counter := 0
	for _, d := range defs {
		if res.Symbols.IsRecursive(d.ID) {
			counter++
			c.refID[d.ID] = counter
		}
	}

	entries := make([]DefEntry, len(defs))
	for _, d := range defs {
		entries[d.ID] = c.compileDef(d.ID, res.DefInfo[d.ID])
	}
	return &CompileResult{Graph: c.g, DefEntries: entries}
}

type compiler struct {
	res           *analyze.Result
	g             *Graph
	defEntryLabel []Label
	refID         []int
}

// scopeCtx names the struct currently being populated by Set effects; it
// is threaded through compilation so a flattening capture's member index
// can be resolved against the right member table (spec.md §4.C.1).
type scopeCtx struct {
	structType types.TypeId
	valid      bool
}

const noNav Nav = 255 // sentinel: "no nav computed for this slot", spec.md §4.C.2 step 3 "None"

// ---- per-definition wrapping ----------------------------------------------

func (c *compiler) compileDef(id symbols.DefId, info types.TermInfo) DefEntry {
	d := c.res.Symbols.Defs()[id]
	entryLabel := c.defEntryLabel[id]

	terminal := c.g.NewLabel()
	if c.res.Symbols.IsRecursive(id) {
		c.g.Add(&Return{Label: terminal, RefID: c.refID[id]})
	} else {
		c.g.Add(&Match{Label: terminal, Nav: NavOp{Mode: Stay}})
	}

	scope := &scopeCtx{}
	exit := terminal
	if info.Flow.IsBubble() {
		scope.structType = info.Flow.Type
		scope.valid = true
		end := c.g.NewLabel()
		c.g.Add(&Match{Label: end, Nav: NavOp{Mode: Stay}, PreEffects: []EffectOp{{Op: OpEndS}}, Successors: []Label{terminal}})
		exit = end
	}

	bodyEntry := c.compileExprWithNav(d.Body, scope, exit, nil)

	if info.Flow.IsBubble() {
		c.g.Add(&Match{Label: entryLabel, Nav: NavOp{Mode: Stay}, PostEffects: []EffectOp{{Op: OpS}}, Successors: []Label{bodyEntry}})
	} else {
		c.g.Add(&Match{Label: entryLabel, Nav: NavOp{Mode: Stay}, Successors: []Label{bodyEntry}})
	}

	resultType := types.VOID
	switch info.Flow.Kind {
	case types.FlowScalar, types.FlowBubble:
		resultType = info.Flow.Type
	}
	return DefEntry{DefID: int(id), Name: d.Name, Entry: entryLabel, ResultType: int(resultType)}
}

// ---- dispatch --------------------------------------------------------------

func (c *compiler) compileExpr(e syntax.Expr, scope *scopeCtx, exit Label) Label {
	return c.compileExprWithNav(e, scope, exit, nil)
}

func (c *compiler) compileExprWithNav(e syntax.Expr, scope *scopeCtx, exit Label, override *NavOp) Label {
	if !e.Valid() {
		return exit
	}
	switch e.Kind() {
	case syntax.KNamedNode:
		return c.compileNamedNode(e.AsNamedNode(), scope, exit, override)
	case syntax.KAnonymousNode:
		return c.compileAnonymousNode(e.AsAnonymousNode(), exit, override)
	case syntax.KSeqExpr:
		return c.compileChildren(fromItems(e.AsSeqExpr().Items()), scope, exit, false)
	case syntax.KAltExpr:
		return c.compileAlt(e.AsAltExpr(), scope, exit, override)
	case syntax.KQuantifiedExpr:
		return c.compileQuantified(e.AsQuantifiedExpr(), scope, exit, override)
	case syntax.KFieldExpr:
		return c.compileField(e.AsFieldExpr(), scope, exit, override)
	case syntax.KRef:
		return c.compileRef(e.AsRef(), scope, exit, override)
	case syntax.KCapturedExpr:
		return c.compileCaptured(e.AsCapturedExpr(), scope, exit, override)
	default: // KAnchor, KNegatedField, KError: no instructions of their own
		return exit
	}
}

// ---- sequences / children (spec.md §4.C.1 SeqExpr, §4.C.2) ---------------

type seqItem struct {
	Expr   syntax.Expr
	Anchor bool
}

func fromExprs(exprs []syntax.Expr) []seqItem {
	out := make([]seqItem, len(exprs))
	for i, e := range exprs {
		out[i] = seqItem{Expr: e, Anchor: e.Kind() == syntax.KAnchor}
	}
	return out
}

func fromItems(items []syntax.Item) []seqItem {
	out := make([]seqItem, len(items))
	for i, it := range items {
		out[i] = seqItem{Expr: it.Expr, Anchor: it.Anchor}
	}
	return out
}

// isAnonymous reports whether e is (or, through captures/quantifiers,
// wraps) an AnonymousNode — used by compute_nav_modes to decide Exact vs
// Skip strictness across an anchor (spec.md §4.C.2).
func isAnonymous(e syntax.Expr) bool {
	switch e.Kind() {
	case syntax.KAnonymousNode:
		return true
	case syntax.KCapturedExpr:
		inner := e.AsCapturedExpr().Inner()
		return inner.Valid() && isAnonymous(inner)
	case syntax.KQuantifiedExpr:
		return isAnonymous(e.AsQuantifiedExpr().Inner())
	default:
		return false
	}
}

// computeNavModes implements spec.md §4.C.2: per-item Nav derivation for a
// sequence of children (a SeqExpr's items, or a NamedNode's children).
func computeNavModes(items []seqItem, insideNode bool) []NavOp {
	out := make([]NavOp, len(items))
	afterAnchor := false
	prevAnonymous := false
	seenFirst := false

	for i, it := range items {
		if it.Anchor {
			afterAnchor = true
			continue
		}
		curAnon := isAnonymous(it.Expr)
		exact := prevAnonymous || curAnon

		var nav Nav
		switch {
		case afterAnchor && !seenFirst:
			if exact {
				nav = DownExact
			} else {
				nav = DownSkip
			}
		case afterAnchor:
			if exact {
				nav = NextExact
			} else {
				nav = NextSkip
			}
		case !seenFirst && insideNode:
			nav = Down
		case !seenFirst:
			nav = noNav
		default:
			nav = Next
		}

		out[i] = NavOp{Mode: nav}
		afterAnchor = false
		prevAnonymous = curAnon
		seenFirst = true
	}
	return out
}

// hasTrailingAnchor reports whether items end with an anchor, recursing
// through a single-child wrapping sequence (spec.md §4.C.1 "Trailing
// anchors are detected recursively through single-child sequences").
func hasTrailingAnchor(items []seqItem) bool {
	if len(items) == 0 {
		return false
	}
	last := items[len(items)-1]
	if last.Anchor {
		return true
	}
	if len(items) == 1 && last.Expr.Kind() == syntax.KSeqExpr {
		return hasTrailingAnchor(fromItems(last.Expr.AsSeqExpr().Items()))
	}
	return false
}

// compileChildren folds a child/item list right-to-left, as spec.md
// §4.C.1 directs for both SeqExpr and a NamedNode's own children.
func (c *compiler) compileChildren(items []seqItem, scope *scopeCtx, exit Label, insideNode bool) Label {
	navs := computeNavModes(items, insideNode)
	next := exit
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Anchor {
			continue
		}
		var override *NavOp
		if navs[i].Mode != noNav {
			nav := navs[i]
			override = &nav
		}
		next = c.compileExprWithNav(items[i].Expr, scope, next, override)
	}
	return next
}

// ---- NamedNode / AnonymousNode (spec.md §4.C.1) --------------------------

func (c *compiler) compileNamedNode(n syntax.NamedNode, scope *scopeCtx, exit Label, override *NavOp) Label {
	raw := n.Children()
	var negFields []string
	var kept []syntax.Expr
	for _, ch := range raw {
		if ch.Kind() == syntax.KNegatedField {
			negFields = append(negFields, string(syntax.TokenText(ch.N, ch.AsNegatedField().Name())))
			continue
		}
		kept = append(kept, ch)
	}
	items := fromExprs(kept)

	chainExit := exit
	if len(realCount(items)) > 0 {
		upNav := Up
		if hasTrailingAnchor(items) {
			upNav = UpExact
		}
		upLabel := c.g.NewLabel()
		c.g.Add(&Match{Label: upLabel, Nav: NavOp{Mode: upNav, Levels: 1}, Successors: []Label{exit}})
		chainExit = c.compileChildren(items, scope, upLabel, true)
	}

	nav := Down
	navOp := NavOp{Mode: nav}
	if override != nil {
		navOp = *override
	}

	typeName := ""
	hasType := false
	if tok, ok := n.TypeToken(); ok && tok.Kind != token.WILDCARD {
		typeName = string(syntax.TokenText(n.N, tok))
		if sub, ok := n.Supertype(); ok {
			typeName = typeName + "/" + string(syntax.TokenText(n.N, sub))
		}
		hasType = true
	}

	label := c.g.NewLabel()
	c.g.Add(&Match{
		Label: label, Nav: navOp,
		NodeType: typeName, HasNodeType: hasType,
		NegFields:  negFields,
		Successors: []Label{chainExit},
	})
	return label
}

func realCount(items []seqItem) []seqItem {
	var out []seqItem
	for _, it := range items {
		if !it.Anchor {
			out = append(out, it)
		}
	}
	return out
}

func (c *compiler) compileAnonymousNode(a syntax.AnonymousNode, exit Label, override *NavOp) Label {
	nav := NavOp{Mode: Next}
	if override != nil {
		nav = *override
	}
	nodeType := ""
	hasType := false
	if lit, ok := a.StringLit(); ok {
		nodeType = string(lit)
		hasType = true
	}
	label := c.g.NewLabel()
	c.g.Add(&Match{Label: label, Nav: nav, NodeType: nodeType, HasNodeType: hasType, Successors: []Label{exit}})
	return label
}

// ---- alternation (spec.md §4.C.1 AltExpr, §8 scenarios 2/3/6) ------------

func (c *compiler) compileAlt(a syntax.AltExpr, scope *scopeCtx, exit Label, override *NavOp) Label {
	entry := c.g.NewLabel()

	if a.IsTagged() {
		var succs []Label
		for i, b := range a.Branches() {
			succs = append(succs, c.compileEnumBranch(i, b, scope, exit, override))
		}
		c.g.Add(&Match{Label: entry, Nav: NavOp{Mode: Stay}, Successors: succs})
		return entry
	}

	altInfo := c.termInfo(syntax.Expr{N: a.N})
	var allFields []types.Field
	if altInfo.Flow.IsBubble() {
		allFields = c.res.Types.Get(altInfo.Flow.Type).Fields
	}

	var succs []Label
	for _, alt := range a.Alternatives() {
		branchExit := exit
		if allFields != nil {
			altTI := c.termInfo(alt)
			present := map[types.Symbol]bool{}
			if altTI.Flow.IsBubble() {
				for _, f := range c.res.Types.Get(altTI.Flow.Type).Fields {
					present[f.Name] = true
				}
			}
			// Missing fields get an explicit Null so every branch of an
			// untagged alternation leaves the struct fully populated
			// (spec.md §8 scenario 2).
			for _, f := range allFields {
				if present[f.Name] {
					continue
				}
				nullLabel := c.g.NewLabel()
				c.g.Add(&Match{
					Label: nullLabel, Nav: NavOp{Mode: Stay},
					PreEffects: []EffectOp{{Op: OpNull}, {Op: OpSet, Payload: c.memberIndex(scope, f.Name)}},
					Successors: []Label{branchExit},
				})
				branchExit = nullLabel
			}
		}
		succs = append(succs, c.compileExprWithNav(alt, scope, branchExit, override))
	}
	c.g.Add(&Match{Label: entry, Nav: NavOp{Mode: Stay}, Successors: succs})
	return entry
}

// compileEnumBranch compiles one tagged-alternation branch (spec.md §8
// scenario 3): E opens the variant, EndE closes it. When the branch body
// itself bubbles fields (e.g. a capture inside the branch), those fields
// belong to the variant's own payload struct, not whatever scope enclosed
// the alternation, so the branch gets its own S/EndS boxing the body —
// the outer capture's Set always lands after EndE, never inside it.
func (c *compiler) compileEnumBranch(idx int, b syntax.Branch, scope *scopeCtx, exit Label, override *NavOp) Label {
	end := c.g.NewLabel()
	c.g.Add(&Match{Label: end, Nav: NavOp{Mode: Stay}, PreEffects: []EffectOp{{Op: OpEndE}}, Successors: []Label{exit}})

	bodyInfo := c.termInfo(b.Body())
	branchScope := scope
	branchExit := end
	if bodyInfo.Flow.IsBubble() {
		scopeExit := c.g.NewLabel()
		c.g.Add(&Match{Label: scopeExit, Nav: NavOp{Mode: Stay}, PreEffects: []EffectOp{{Op: OpEndS}}, Successors: []Label{end}})
		branchScope = &scopeCtx{structType: bodyInfo.Flow.Type, valid: true}
		branchExit = scopeExit
	}

	bodyEntry := c.compileExprWithNav(b.Body(), branchScope, branchExit, override)
	if bodyInfo.Flow.IsBubble() {
		open := c.g.NewLabel()
		c.g.Add(&Match{Label: open, Nav: NavOp{Mode: Stay}, PostEffects: []EffectOp{{Op: OpS}}, Successors: []Label{bodyEntry}})
		bodyEntry = open
	}

	start := c.g.NewLabel()
	c.g.Add(&Match{Label: start, Nav: NavOp{Mode: Stay}, PostEffects: []EffectOp{{Op: OpE, Payload: idx}}, Successors: []Label{bodyEntry}})
	return start
}

// ---- quantifiers (spec.md §4.C.1 QuantifiedExpr) -------------------------

func (c *compiler) compileQuantified(q syntax.QuantifiedExpr, scope *scopeCtx, exit Label, override *NavOp) Label {
	inner := q.Inner()
	lazy := q.IsLazy()
	switch q.Operator() {
	case token.QUESTION:
		return c.compileOptionalLoop(inner, scope, exit, override, lazy)
	case token.STAR:
		return c.compileRepeatLoop(inner, scope, exit, override, lazy, false, nil)
	case token.PLUS:
		return c.compileRepeatLoop(inner, scope, exit, override, lazy, true, nil)
	default:
		return c.compileExprWithNav(inner, scope, exit, override)
	}
}

func (c *compiler) compileOptionalLoop(inner syntax.Expr, scope *scopeCtx, exit Label, override *NavOp, lazy bool) Label {
	bodyEntry := c.compileExprWithNav(inner, scope, exit, override)
	entry := c.g.NewLabel()
	succs := []Label{bodyEntry, exit}
	if lazy {
		succs = []Label{exit, bodyEntry}
	}
	c.g.Add(&Match{Label: entry, Nav: NavOp{Mode: Stay}, Successors: succs})
	return entry
}

// compileRepeatLoop builds the Thompson loop shared by `*`/`+`, in either
// its plain form (no push effects: the repetition is uncaptured, so nothing
// accumulates the iteration's value) or, through compileRepeatLoopPush with
// a non-nil push, its array-scope form (each iteration Pushes into the
// enclosing A scope). In either form, if rowScope
// is non-nil, each iteration additionally opens its own struct scope
// first — the "row capture" of spec.md §4.T.1/§4.C.1).
func (c *compiler) compileRepeatLoop(inner syntax.Expr, scope *scopeCtx, exit Label, override *NavOp, lazy, plus bool, rowScope *scopeCtx) Label {
	return c.compileRepeatLoopPush(inner, scope, exit, override, lazy, plus, nil, rowScope)
}

func (c *compiler) compileRepeatLoopPush(inner syntax.Expr, scope *scopeCtx, exit Label, override *NavOp, lazy, plus bool, push []EffectOp, rowScope *scopeCtx) Label {
	repeatBranch := c.g.NewLabel()

	iterExit := c.g.NewLabel()
	c.g.Add(&Match{Label: iterExit, Nav: NavOp{Mode: Stay}, PreEffects: push, Successors: []Label{repeatBranch}})

	compileIter := func(nav *NavOp) Label {
		if rowScope != nil {
			structExit := c.g.NewLabel()
			c.g.Add(&Match{Label: structExit, Nav: NavOp{Mode: Stay}, PreEffects: []EffectOp{{Op: OpEndS}}, Successors: []Label{iterExit}})
			bodyEntry := c.compileExprWithNav(inner, rowScope, structExit, nav)
			open := c.g.NewLabel()
			c.g.Add(&Match{Label: open, Nav: NavOp{Mode: Stay}, PostEffects: []EffectOp{{Op: OpS}}, Successors: []Label{bodyEntry}})
			return open
		}
		return c.compileExprWithNav(inner, scope, iterExit, nav)
	}

	next := NavOp{Mode: Next}
	repeatEntry := compileIter(&next)
	repeatSuccs := []Label{repeatEntry, exit}
	if lazy {
		repeatSuccs = []Label{exit, repeatEntry}
	}
	c.g.Add(&Match{Label: repeatBranch, Nav: NavOp{Mode: Stay}, Successors: repeatSuccs})

	if plus {
		return compileIter(override)
	}

	firstEntry := compileIter(override)
	firstSuccs := []Label{firstEntry, exit}
	if lazy {
		firstSuccs = []Label{exit, firstEntry}
	}
	first := c.g.NewLabel()
	c.g.Add(&Match{Label: first, Nav: NavOp{Mode: Stay}, Successors: firstSuccs})
	return first
}

// ---- fields (spec.md §4.C.1 FieldExpr) -----------------------------------

func (c *compiler) compileField(f syntax.FieldExpr, scope *scopeCtx, exit Label, override *NavOp) Label {
	name := string(syntax.TokenText(f.N, f.Name()))
	valueEntry := c.compileExprWithNav(f.Value(), scope, exit, override)
	check := c.g.NewLabel()
	c.g.Add(&Match{Label: check, Nav: NavOp{Mode: Stay}, NodeField: name, HasNodeField: true, Successors: []Label{valueEntry}})
	return check
}

// ---- references (spec.md §4.C.1 Ref) -------------------------------------

func (c *compiler) lookupDef(r syntax.Ref) (*symbols.Def, bool) {
	name := string(syntax.TokenText(r.N, r.Name()))
	return c.res.Symbols.Lookup(name)
}

func (c *compiler) compileRef(r syntax.Ref, scope *scopeCtx, exit Label, override *NavOp) Label {
	def, ok := c.lookupDef(r)
	if !ok {
		return exit // undefined reference, already diagnosed by symbols.Build
	}
	if c.res.Symbols.IsRecursive(def.ID) {
		call := c.g.NewLabel()
		c.g.Add(&Call{Label: call, Target: c.defEntryLabel[def.ID], Next: exit, RefID: c.refID[def.ID]})
		return call
	}
	// Non-recursive refs are transparent (spec.md §4.T.1): inline the
	// referenced body fresh, in the caller's own scope, rather than
	// reusing the definition's own compiled entry (which targets that
	// definition's own exit, not this call site's).
	return c.compileExprWithNav(def.Body, scope, exit, override)
}

// ---- captures (spec.md §4.C.1 CapturedExpr, §8 scenarios 1/3/4/5/6) -----

func (c *compiler) symbolName(ce syntax.CapturedExpr) types.Symbol {
	return c.res.Interner.Intern(string(syntax.TokenText(ce.N, ce.Name())))
}

func (c *compiler) termInfo(e syntax.Expr) types.TermInfo {
	if ti, ok := c.res.Info[e.N]; ok {
		return ti
	}
	return types.TermInfo{Arity: types.One, Flow: types.Void()}
}

func (c *compiler) memberIndex(scope *scopeCtx, name types.Symbol) int {
	if scope == nil || !scope.valid {
		return 0
	}
	for i, f := range c.res.Types.Get(scope.structType).Fields {
		if f.Name == name {
			return i
		}
	}
	return 0
}

// valueEffect picks Node vs. Text for a capture's own value, per its `::
// string` annotation (spec.md §4.T.1 "Custom type annotations").
func (c *compiler) valueEffect(ce syntax.CapturedExpr) EffectOp {
	if tok, ok := ce.TypeAnnotation(); ok && tok.Kind == token.LOWER_IDENT {
		return EffectOp{Op: OpText}
	}
	return EffectOp{Op: OpNode}
}

// producesOwnValue reports whether e's own compiled effects already leave
// a usable value in place (EndE for a tagged alternation, Return for a
// recursive reference) so a wrapping capture must not also emit Node/Text
// (spec.md §8 scenario 3: "never on the branch body's Node step").
func (c *compiler) producesOwnValue(e syntax.Expr) bool {
	switch e.Kind() {
	case syntax.KAltExpr:
		return e.AsAltExpr().IsTagged()
	case syntax.KRef:
		if def, ok := c.lookupDef(e.AsRef()); ok {
			return c.res.Symbols.IsRecursive(def.ID)
		}
	}
	return false
}

func (c *compiler) compileCaptured(ce syntax.CapturedExpr, scope *scopeCtx, exit Label, override *NavOp) Label {
	name := c.symbolName(ce)
	inner := ce.Inner()
	member := c.memberIndex(scope, name)

	if !inner.Valid() {
		label := c.g.NewLabel()
		c.g.Add(&Match{Label: label, Nav: NavOp{Mode: Stay}, PreEffects: []EffectOp{c.valueEffect(ce), {Op: OpSet, Payload: member}}, Successors: []Label{exit}})
		return label
	}

	if inner.Kind() == syntax.KQuantifiedExpr {
		q := inner.AsQuantifiedExpr()
		switch q.Operator() {
		case token.STAR, token.PLUS:
			return c.compileArrayCapture(q, scope, exit, override, member)
		case token.QUESTION:
			return c.compileOptionalCapture(q, ce, scope, exit, override, member)
		}
	}

	innerInfo := c.termInfo(inner)

	if innerInfo.Flow.IsBubble() && !analyze.IsScopeCreating(inner) {
		// Flatten: the matched value is Node/Text alongside inner's
		// already-bubbled fields, all landing in the same enclosing scope.
		scopeExit := c.g.NewLabel()
		c.g.Add(&Match{Label: scopeExit, Nav: NavOp{Mode: Stay}, PreEffects: []EffectOp{c.valueEffect(ce), {Op: OpSet, Payload: member}}, Successors: []Label{exit}})
		return c.compileExprWithNav(inner, scope, scopeExit, override)
	}

	if innerInfo.Flow.IsBubble() {
		// Scope-creating (Seq/Alt/Ref) Bubble: box it as a nested struct.
		scopeExit := c.g.NewLabel()
		c.g.Add(&Match{Label: scopeExit, Nav: NavOp{Mode: Stay}, PreEffects: []EffectOp{{Op: OpEndS}, {Op: OpSet, Payload: member}}, Successors: []Label{exit}})
		child := &scopeCtx{structType: innerInfo.Flow.Type, valid: true}
		bodyEntry := c.compileExprWithNav(inner, child, scopeExit, override)
		open := c.g.NewLabel()
		c.g.Add(&Match{Label: open, Nav: NavOp{Mode: Stay}, PostEffects: []EffectOp{{Op: OpS}}, Successors: []Label{bodyEntry}})
		return open
	}

	// Scalar: Void/Node/String/Custom/Optional/Array/Enum/Ref.
	var pre []EffectOp
	if !c.producesOwnValue(inner) {
		pre = append(pre, c.valueEffect(ce))
	}
	pre = append(pre, EffectOp{Op: OpSet, Payload: member})
	scopeExit := c.g.NewLabel()
	c.g.Add(&Match{Label: scopeExit, Nav: NavOp{Mode: Stay}, PreEffects: pre, Successors: []Label{exit}})
	return c.compileExprWithNav(inner, scope, scopeExit, override)
}

// compileArrayCapture handles `@name pat*` / `@name pat+` (spec.md §4.C.1
// "array scope"): wraps the repetition in A/EndA, Pushing each iteration's
// value. If pat itself bubbles fields (row capture, spec.md §4.T.1), each
// iteration additionally opens and closes its own struct scope before the
// Push.
func (c *compiler) compileArrayCapture(q syntax.QuantifiedExpr, scope *scopeCtx, exit Label, override *NavOp, member int) Label {
	qi := q.Inner()
	qiInfo := c.termInfo(qi)
	nonEmpty := q.Operator() == token.PLUS

	scopeExit := c.g.NewLabel()
	c.g.Add(&Match{Label: scopeExit, Nav: NavOp{Mode: Stay}, PreEffects: []EffectOp{{Op: OpEndA}, {Op: OpSet, Payload: member}}, Successors: []Label{exit}})

	var rowScope *scopeCtx
	if qiInfo.Flow.IsBubble() {
		rowScope = &scopeCtx{structType: qiInfo.Flow.Type, valid: true}
	}
	bodyEntry := c.compileRepeatLoopPush(qi, scope, scopeExit, override, q.IsLazy(), nonEmpty, []EffectOp{{Op: OpPush}}, rowScope)

	open := c.g.NewLabel()
	c.g.Add(&Match{Label: open, Nav: NavOp{Mode: Stay}, PostEffects: []EffectOp{{Op: OpA}}, Successors: []Label{bodyEntry}})
	return open
}

// compileOptionalCapture handles `@name pat?` for a scalar pat: on the
// matched path the value is Set; on the skipped path the field is
// explicitly Null'd so the result struct always carries the key (spec.md
// §3 EffectOp "Null").
func (c *compiler) compileOptionalCapture(q syntax.QuantifiedExpr, ce syntax.CapturedExpr, scope *scopeCtx, exit Label, override *NavOp, member int) Label {
	qi := q.Inner()

	matchedExit := c.g.NewLabel()
	var pre []EffectOp
	if !c.producesOwnValue(qi) {
		pre = append(pre, c.valueEffect(ce))
	}
	pre = append(pre, EffectOp{Op: OpSet, Payload: member})
	c.g.Add(&Match{Label: matchedExit, Nav: NavOp{Mode: Stay}, PreEffects: pre, Successors: []Label{exit}})

	skipExit := c.g.NewLabel()
	c.g.Add(&Match{Label: skipExit, Nav: NavOp{Mode: Stay}, PreEffects: []EffectOp{{Op: OpNull}, {Op: OpSet, Payload: member}}, Successors: []Label{exit}})

	bodyEntry := c.compileExprWithNav(qi, scope, matchedExit, override)
	entry := c.g.NewLabel()
	succs := []Label{bodyEntry, skipExit}
	if q.IsLazy() {
		succs = []Label{skipExit, bodyEntry}
	}
	c.g.Add(&Match{Label: entry, Nav: NavOp{Mode: Stay}, Successors: succs})
	return entry
}
