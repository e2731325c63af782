package pattern

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/implica/implica/internal/ctxt"
	"github.com/implica/implica/internal/gid"
	"github.com/implica/implica/internal/graphstore"
	"github.com/implica/implica/internal/schema"
	"github.com/implica/implica/internal/typ"
)

// parallelThreshold is the candidate-set size above which node
// candidates are evaluated concurrently rather than in the calling
// goroutine. Below it the errgroup/goroutine overhead is not worth
// paying.
const parallelThreshold = 32

// MatchPath enumerates every way p can be matched against g, starting
// from the bindings already present in base (e.g. carried over from a
// prior relation row). Each returned context is an independent clone
// of base extended with the path's variables; base itself is never
// mutated.
func MatchPath(g *graphstore.Graph, p PathPattern, base *ctxt.Context) []*ctxt.Context {
	return matchFrom(g, p, 0, base)
}

// matchFrom matches Nodes[i:], Edges[i:] given that Nodes[i] still
// needs to be matched and everything before it is already bound in
// ctx (the caller has already matched and bound Nodes[0:i],
// Edges[0:i]).
func matchFrom(g *graphstore.Graph, p PathPattern, i int, ctx *ctxt.Context) []*ctxt.Context {
	candidates := nodeCandidates(g, p.Nodes[i], ctx)

	results := make([]*ctxt.Context, 0)
	var mu sync.Mutex

	collect := func(nodeCtx *ctxt.Context, uid gid.NodeUID) {
		ok := bindNode(p.Nodes[i], uid, g, nodeCtx)
		if !ok {
			return
		}
		if i == len(p.Nodes)-1 {
			mu.Lock()
			results = append(results, nodeCtx)
			mu.Unlock()
			return
		}
		sub := matchEdgeAndContinue(g, p, i, uid, nodeCtx)
		mu.Lock()
		results = append(results, sub...)
		mu.Unlock()
	}

	if len(candidates) > parallelThreshold {
		var eg errgroup.Group
		for _, uid := range candidates {
			uid := uid
			eg.Go(func() error {
				collect(ctx.Clone(), uid)
				return nil
			})
		}
		_ = eg.Wait()
	} else {
		for _, uid := range candidates {
			collect(ctx.Clone(), uid)
		}
	}
	return results
}

// bindNode re-fetches the node for uid and tests/binds it against np,
// reporting success.
func bindNode(np NodePattern, uid gid.NodeUID, g *graphstore.Graph, ctx *ctxt.Context) bool {
	n, ok := g.GetNode(uid)
	if !ok {
		return false
	}
	return MatchNode(np, n, ctx)
}

// matchEdgeAndContinue matches Edges[i] and Nodes[i+1], given
// Nodes[i] is already bound to leftUID in ctx.
func matchEdgeAndContinue(g *graphstore.Graph, p PathPattern, i int, leftUID gid.NodeUID, ctx *ctxt.Context) []*ctxt.Context {
	ep := p.Edges[i]

	var incident []*graphstore.Edge
	if ep.Dir == Forward {
		incident = g.OutEdges(leftUID)
	} else {
		incident = g.InEdges(leftUID)
	}

	results := make([]*ctxt.Context, 0)
	for _, e := range incident {
		rightUID := e.End()
		if ep.Dir == Backward {
			rightUID = e.Start()
		}

		edgeCtx := ctx.Clone()
		if !MatchEdge(ep, e, leftUID, rightUID, edgeCtx) {
			continue
		}
		results = append(results, matchFrom(g, p, i+1, edgeCtx)...)
	}
	return results
}

// nodeCandidates returns the set of node UIDs worth attempting for
// np given ctx's existing bindings: if np.Var is already bound to a
// node, that's the only candidate; otherwise an exact type schema
// drives the nodesByTypeUID index, falling back to a full scan.
func nodeCandidates(g *graphstore.Graph, np NodePattern, ctx *ctxt.Context) []gid.NodeUID {
	if np.Var != nil {
		if b, ok := ctx.Get(*np.Var); ok && b.IsNode() {
			return []gid.NodeUID{b.NodeRef}
		}
	}

	if exact, ok := exactType(np.Type); ok {
		nodes := g.NodesByTypeUID(typ.UID(exact))
		uids := make([]gid.NodeUID, len(nodes))
		for i, n := range nodes {
			uids[i] = n.UID()
		}
		return uids
	}

	all := g.AllNodes()
	uids := make([]gid.NodeUID, len(all))
	for i, n := range all {
		uids[i] = n.UID()
	}
	return uids
}

func exactType(s schema.TypeSchema) (typ.Type, bool) {
	if s == nil {
		return nil, false
	}
	exact, ok := s.(schema.TsExact)
	if !ok {
		return nil, false
	}
	return exact.Type, true
}
