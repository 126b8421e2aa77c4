package arc

import (
	"fmt"
	"slices"
	"strings"

	"sigil/internal/diag"
	"sigil/internal/source"
	"sigil/internal/types"
)

// TypeRef is one edge in the type-reference graph: a declared type
// reaching another declared type through a field.
type TypeRef struct {
	// Field is the path within the owning declaration: "next" for a
	// struct field, "Cons.tail" for an enum variant field, "pair.0"
	// for a tuple element, "payload.ok" for a Result slot, "alias"
	// for an alias target.
	Field  string
	Target source.StringID
	// Direct is false when the target is reached only through a list,
	// map, set, or Option. Those are the sanctioned cycle breakers;
	// non-direct edges never form a rejected cycle.
	Direct bool
	Span   source.Span
}

// CycleKind tags a CycleResult.
type CycleKind uint8

const (
	CycleNone CycleKind = iota
	CycleDirect
	CycleIndirect
)

// CycleResult is the per-type verdict of the cycle detector. Computed
// once per module at declaration-checking time and never re-derived.
type CycleResult struct {
	Kind CycleKind
	Type source.StringID
	// FieldPath names the offending fields: the single self-referencing
	// field for a direct cycle, or one field per edge walked along an
	// indirect ring.
	FieldPath []string
	// Types lists the members of an indirect cycle in discovery order,
	// rotated so the queried type comes first.
	Types []source.StringID
}

// IsCyclic reports whether the type participates in any rejected cycle.
func (r CycleResult) IsCyclic() bool {
	return r.Kind != CycleNone
}

// Describe renders the verdict for diagnostics.
func (r CycleResult) Describe(names *source.Interner) string {
	switch r.Kind {
	case CycleDirect:
		return fmt.Sprintf("type %s directly references itself through field %s",
			displayName(names, r.Type), strings.Join(r.FieldPath, ", "))
	case CycleIndirect:
		parts := make([]string, 0, len(r.Types)+1)
		for _, t := range r.Types {
			parts = append(parts, displayName(names, t))
		}
		if len(r.Types) > 0 {
			parts = append(parts, displayName(names, r.Types[0]))
		}
		return "cyclic type reference: " + strings.Join(parts, " -> ")
	default:
		return "acyclic"
	}
}

func displayName(names *source.Interner, id source.StringID) string {
	if names != nil {
		if s, ok := names.Lookup(id); ok {
			return s
		}
	}
	return fmt.Sprintf("#%d", id)
}

// TypeGraph is the reference graph over a module's declared types.
// Nodes are dense integer indices over the declaration tables; edges
// come from field types per the extraction rules on TypeRef. The graph
// is built once per module and immutable afterwards; strongly connected
// components are computed eagerly so Check is a lookup.
type TypeGraph struct {
	pool  *types.Interner
	names *source.Interner

	nodes []graphNode
	index map[source.StringID]int
	// walk guards the structural descent in extract; container types
	// cannot legitimately contain themselves, but a corrupted pool can.
	walk map[types.TypeID]struct{}

	adj   [][]int // direct edges only
	sccs  [][]int // each component in discovery order
	sccOf []int
}

type graphNode struct {
	name source.StringID
	decl types.TypeID
	refs []TypeRef
}

// NewTypeGraph builds the reference graph for every declared type in
// the pool and runs the component analysis.
func NewTypeGraph(pool *types.Interner, names *source.Interner) *TypeGraph {
	g := &TypeGraph{
		pool:  pool,
		names: names,
		index: make(map[source.StringID]int),
	}
	for _, name := range pool.DeclNames() {
		id, ok := pool.Decl(name)
		if !ok {
			continue
		}
		g.index[name] = len(g.nodes)
		g.nodes = append(g.nodes, graphNode{name: name, decl: id})
	}
	for i := range g.nodes {
		g.nodes[i].refs = g.collectRefs(g.nodes[i].decl)
	}
	g.computeSCCs()
	return g
}

// Len returns the number of declared types in the graph.
func (g *TypeGraph) Len() int {
	return len(g.nodes)
}

// Refs returns the outgoing references of a declared type.
func (g *TypeGraph) Refs(name source.StringID) []TypeRef {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.nodes[i].refs
}

// Check returns the cycle verdict for one declared type. A direct
// self-reference wins over component membership; a component of size
// one without a self-loop is acyclic.
func (g *TypeGraph) Check(name source.StringID) CycleResult {
	i, ok := g.index[name]
	if !ok {
		return CycleResult{Kind: CycleNone, Type: name}
	}
	for _, ref := range g.nodes[i].refs {
		if ref.Direct && ref.Target == name {
			return CycleResult{
				Kind:      CycleDirect,
				Type:      name,
				FieldPath: []string{ref.Field},
			}
		}
	}
	scc := g.sccs[g.sccOf[i]]
	if len(scc) < 2 {
		return CycleResult{Kind: CycleNone, Type: name}
	}

	at := slices.Index(scc, i)
	members := make([]int, 0, len(scc))
	members = append(members, scc[at:]...)
	members = append(members, scc[:at]...)

	res := CycleResult{Kind: CycleIndirect, Type: name}
	for k, m := range members {
		res.Types = append(res.Types, g.nodes[m].name)
		next := g.nodes[members[(k+1)%len(members)]].name
		if ref, ok := g.edgeBetween(m, next); ok {
			res.FieldPath = append(res.FieldPath, ref.Field)
		}
	}
	return res
}

// CheckAll checks every declared type, reports each cyclic one once
// through rep, and returns the cyclic verdicts in declaration-table
// order. A module with any cyclic type must not proceed to ARC
// lowering.
func (g *TypeGraph) CheckAll(rep diag.Reporter) []CycleResult {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	var cyclic []CycleResult
	for i := range g.nodes {
		res := g.Check(g.nodes[i].name)
		if !res.IsCyclic() {
			continue
		}
		cyclic = append(cyclic, res)
		g.report(rep, i, res)
	}
	return cyclic
}

func (g *TypeGraph) report(rep diag.Reporter, node int, res CycleResult) {
	primary := g.declSpan(node)
	var notes []diag.Note
	switch res.Kind {
	case CycleDirect:
		if ref, ok := g.edgeBetween(node, res.Type); ok {
			notes = append(notes, diag.Note{
				Span: ref.Span,
				Msg:  fmt.Sprintf("field %s stores %s without indirection", ref.Field, displayName(g.names, res.Type)),
			})
		}
		rep.Report(diag.ArcDirectCycle, diag.SevError, primary, res.Describe(g.names), notes)
	case CycleIndirect:
		for k, from := range res.Types {
			to := res.Types[(k+1)%len(res.Types)]
			if ref, ok := g.edgeBetween(g.index[from], to); ok {
				notes = append(notes, diag.Note{
					Span: ref.Span,
					Msg:  fmt.Sprintf("%s.%s references %s", displayName(g.names, from), ref.Field, displayName(g.names, to)),
				})
			}
		}
		rep.Report(diag.ArcIndirectCycle, diag.SevError, primary, res.Describe(g.names), notes)
	}
}

func (g *TypeGraph) declSpan(node int) source.Span {
	decl := g.nodes[node].decl
	switch g.pool.Kind(decl) {
	case types.KindStruct:
		if info, ok := g.pool.StructInfo(decl); ok {
			return info.Decl
		}
	case types.KindEnum:
		if info, ok := g.pool.EnumInfo(decl); ok {
			return info.Decl
		}
	case types.KindAlias:
		if info, ok := g.pool.AliasInfo(decl); ok {
			return info.Decl
		}
	}
	return source.Span{}
}

// edgeBetween returns the first direct edge from a node to the named
// target. Dense components may lack an edge between some consecutive
// members; callers skip those.
func (g *TypeGraph) edgeBetween(from int, target source.StringID) (TypeRef, bool) {
	for _, ref := range g.nodes[from].refs {
		if ref.Direct && ref.Target == target {
			return ref, true
		}
	}
	return TypeRef{}, false
}

// Reference extraction

func (g *TypeGraph) collectRefs(decl types.TypeID) []TypeRef {
	var refs []TypeRef
	switch g.pool.Kind(decl) {
	case types.KindStruct:
		for _, f := range g.pool.StructFields(decl) {
			g.extract(displayName(g.names, f.Name), f.Span, f.Type, &refs)
		}
	case types.KindEnum:
		info, ok := g.pool.EnumInfo(decl)
		if !ok {
			break
		}
		for _, v := range info.Variants {
			for _, f := range v.Fields {
				path := displayName(g.names, v.Name) + "." + displayName(g.names, f.Name)
				g.extract(path, f.Span, f.Type, &refs)
			}
		}
	case types.KindAlias:
		info, ok := g.pool.AliasInfo(decl)
		if !ok {
			break
		}
		g.extract("alias", info.Decl, info.Target, &refs)
	}

	// Edges to undeclared names have no node to land on.
	kept := refs[:0]
	for _, ref := range refs {
		if _, ok := g.index[ref.Target]; ok {
			kept = append(kept, ref)
		}
	}
	return kept
}

// extract walks one field type and appends the references it reaches.
// Directness survives value containers (tuple, Result) and is demoted
// behind heap containers and Option.
func (g *TypeGraph) extract(path string, sp source.Span, ty types.TypeID, refs *[]TypeRef) {
	t, ok := g.pool.Lookup(ty)
	if !ok {
		return
	}
	if _, cycling := g.walk[ty]; cycling {
		return
	}
	if g.walk == nil {
		g.walk = make(map[types.TypeID]struct{}, 8)
	}
	g.walk[ty] = struct{}{}
	defer delete(g.walk, ty)

	switch t.Kind {
	case types.KindNamed:
		g.addRef(refs, path, sp, source.StringID(t.Payload))

	case types.KindStruct, types.KindEnum, types.KindAlias:
		if name := g.pool.NameOf(ty); name != source.NoStringID {
			g.addRef(refs, path, sp, name)
		}

	case types.KindOption, types.KindList, types.KindSet:
		start := len(*refs)
		g.extract(path, sp, t.Elem, refs)
		demote(*refs, start)

	case types.KindMap:
		start := len(*refs)
		g.extract(path, sp, t.Aux, refs)
		g.extract(path, sp, t.Elem, refs)
		demote(*refs, start)

	case types.KindTuple:
		for i, elem := range g.pool.TupleElems(ty) {
			g.extract(fmt.Sprintf("%s.%d", path, i), sp, elem, refs)
		}

	case types.KindResult:
		g.extract(path+".ok", sp, t.Elem, refs)
		g.extract(path+".err", sp, t.Aux, refs)
	}
	// Scalars, str, fn, range, channel, and type variables reference
	// no declared type.
}

func (g *TypeGraph) addRef(refs *[]TypeRef, path string, sp source.Span, target source.StringID) {
	*refs = append(*refs, TypeRef{Field: path, Target: target, Direct: true, Span: sp})
}

func demote(refs []TypeRef, start int) {
	for i := start; i < len(refs); i++ {
		refs[i].Direct = false
	}
}

// Tarjan over the direct-edge graph. Iterative with an explicit frame
// stack; deep single-chain declaration graphs must not grow the
// goroutine stack.

type tarjanFrame struct {
	node int
	edge int
}

func (g *TypeGraph) computeSCCs() {
	n := len(g.nodes)
	g.adj = make([][]int, n)
	for i := range g.nodes {
		for _, ref := range g.nodes[i].refs {
			if !ref.Direct {
				continue
			}
			g.adj[i] = append(g.adj[i], g.index[ref.Target])
		}
	}

	const unvisited = -1
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}
	g.sccOf = make([]int, n)

	var (
		counter int
		stack   []int
		frames  []tarjanFrame
	)
	for root := range n {
		if index[root] != unvisited {
			continue
		}
		frames = append(frames[:0], tarjanFrame{node: root})
		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			v := f.node
			if f.edge == 0 {
				index[v] = counter
				lowlink[v] = counter
				counter++
				stack = append(stack, v)
				onStack[v] = true
			}
			descended := false
			for f.edge < len(g.adj[v]) {
				w := g.adj[v][f.edge]
				f.edge++
				if index[w] == unvisited {
					frames = append(frames, tarjanFrame{node: w})
					descended = true
					break
				}
				if onStack[w] {
					lowlink[v] = min(lowlink[v], index[w])
				}
			}
			if descended {
				continue
			}
			if lowlink[v] == index[v] {
				var scc []int
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					scc = append(scc, w)
					if w == v {
						break
					}
				}
				slices.Reverse(scc) // discovery order
				for _, m := range scc {
					g.sccOf[m] = len(g.sccs)
				}
				g.sccs = append(g.sccs, scc)
			}
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := frames[len(frames)-1].node
				lowlink[parent] = min(lowlink[parent], lowlink[v])
			}
		}
	}
}
