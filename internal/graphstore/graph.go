// Package graphstore is the concurrent, content-addressed node/edge
// store: the in-memory heart of the graph. Structural mutation
// (add/remove) is guarded by the graph's own lock so existence checks
// and inserts are a single atomic critical section (no
// check-then-insert race). Property mutation on an already-present
// element only needs that element's own lock, not the graph lock.
package graphstore

import (
	"sort"
	"sync"

	"github.com/implica/implica/internal/gid"
	"github.com/implica/implica/internal/typ"
)

// Graph is the concurrent indexed node/edge store described in
// spec §4.6.
type Graph struct {
	mu sync.RWMutex

	nodes map[gid.NodeUID]*Node
	edges map[gid.EdgeUID]*Edge

	nodesByTypeUID map[string]map[gid.NodeUID]struct{}
	edgesByTypeUID map[string]map[gid.EdgeUID]struct{}

	outEdges map[gid.NodeUID]map[gid.NodeUID]gid.EdgeUID
	inEdges  map[gid.NodeUID]map[gid.NodeUID]gid.EdgeUID
}

// New returns an empty graph store.
func New() *Graph {
	return &Graph{
		nodes:          make(map[gid.NodeUID]*Node),
		edges:          make(map[gid.EdgeUID]*Edge),
		nodesByTypeUID: make(map[string]map[gid.NodeUID]struct{}),
		edgesByTypeUID: make(map[string]map[gid.EdgeUID]struct{}),
		outEdges:       make(map[gid.NodeUID]map[gid.NodeUID]gid.EdgeUID),
		inEdges:        make(map[gid.NodeUID]map[gid.NodeUID]gid.EdgeUID),
	}
}

// AddNode inserts n, returning its UID. Idempotent by UID: adding a
// structurally equal node is a no-op that returns the existing UID
// without overwriting its properties — callers wanting merge
// semantics use SetNodeProperties.
func (g *Graph) AddNode(n *Node) gid.NodeUID {
	uid := n.UID()

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[uid]; exists {
		return uid
	}

	g.nodes[uid] = n
	g.indexNodeLocked(uid, n)
	if _, ok := g.outEdges[uid]; !ok {
		g.outEdges[uid] = make(map[gid.NodeUID]gid.EdgeUID)
	}
	if _, ok := g.inEdges[uid]; !ok {
		g.inEdges[uid] = make(map[gid.NodeUID]gid.EdgeUID)
	}
	return uid
}

func (g *Graph) indexNodeLocked(uid gid.NodeUID, n *Node) {
	tu := typ.UID(n.Type())
	if g.nodesByTypeUID[tu] == nil {
		g.nodesByTypeUID[tu] = make(map[gid.NodeUID]struct{})
	}
	g.nodesByTypeUID[tu][uid] = struct{}{}
}

// AddEdge inserts an edge between start and end. Fails EndpointMissing
// if either endpoint is absent, EdgeAlreadyExists if the ordered pair
// already has an edge, and TypeMismatch if the edge's Arrow arms do
// not strictly equal the endpoints' declared types.
func (g *Graph) AddEdge(e *Edge) (gid.EdgeUID, error) {
	start, end := e.Start(), e.End()

	g.mu.Lock()
	defer g.mu.Unlock()

	startNode, ok := g.nodes[start]
	if !ok {
		return "", ErrEndpointMissing(string(start))
	}
	endNode, ok := g.nodes[end]
	if !ok {
		return "", ErrEndpointMissing(string(end))
	}

	if existing, ok := g.outEdges[start][end]; ok {
		_ = existing
		return "", ErrEdgeAlreadyExists(string(start), string(end))
	}

	arrow, _ := typ.IsArrow(e.Type())
	if !typ.Equal(arrow.Left, startNode.Type()) {
		return "", errTypeMismatch("edge's left type arm does not match the start node's type")
	}
	if !typ.Equal(arrow.Right, endNode.Type()) {
		return "", errTypeMismatch("edge's right type arm does not match the end node's type")
	}

	uid := e.UID()
	g.edges[uid] = e
	g.outEdges[start][end] = uid
	g.inEdges[end][start] = uid

	tu := typ.UID(e.Type())
	if g.edgesByTypeUID[tu] == nil {
		g.edgesByTypeUID[tu] = make(map[gid.EdgeUID]struct{})
	}
	g.edgesByTypeUID[tu][uid] = struct{}{}

	return uid, nil
}

// RemoveNode deletes the node and every edge incident to it (cascade),
// along with all index entries for both.
func (g *Graph) RemoveNode(uid gid.NodeUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[uid]
	if !ok {
		return ErrElementNotFound("node", string(uid))
	}

	for end, edgeUID := range g.outEdges[uid] {
		g.removeEdgeLocked(edgeUID)
		delete(g.inEdges[end], uid)
	}
	for start, edgeUID := range g.inEdges[uid] {
		g.removeEdgeLocked(edgeUID)
		delete(g.outEdges[start], uid)
	}
	delete(g.outEdges, uid)
	delete(g.inEdges, uid)

	tu := typ.UID(n.Type())
	delete(g.nodesByTypeUID[tu], uid)
	delete(g.nodes, uid)
	return nil
}

// RemoveEdge deletes the edge and its two index memberships.
func (g *Graph) RemoveEdge(uid gid.EdgeUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.edges[uid]
	if !ok {
		return ErrElementNotFound("edge", string(uid))
	}
	delete(g.outEdges[e.Start()], e.End())
	delete(g.inEdges[e.End()], e.Start())
	g.removeEdgeLocked(uid)
	return nil
}

// removeEdgeLocked removes edge uid from the primary map and its type
// index. Caller must hold g.mu and handle adjacency maps separately.
func (g *Graph) removeEdgeLocked(uid gid.EdgeUID) {
	e, ok := g.edges[uid]
	if !ok {
		return
	}
	tu := typ.UID(e.Type())
	delete(g.edgesByTypeUID[tu], uid)
	delete(g.edges, uid)
}

// GetNode looks up a node by UID.
func (g *Graph) GetNode(uid gid.NodeUID) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[uid]
	return n, ok
}

// GetEdge looks up an edge by UID.
func (g *Graph) GetEdge(uid gid.EdgeUID) (*Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[uid]
	return e, ok
}

// GetEdgeBetween looks up the (at most one) edge for an ordered
// endpoint pair.
func (g *Graph) GetEdgeBetween(start, end gid.NodeUID) (*Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	uid, ok := g.outEdges[start][end]
	if !ok {
		return nil, false
	}
	return g.edges[uid], true
}

// SetNodeProperties mutates a node's property map in place.
func (g *Graph) SetNodeProperties(uid gid.NodeUID, props PropMap, overwrite bool) error {
	n, ok := g.GetNode(uid)
	if !ok {
		return ErrElementNotFound("node", string(uid))
	}
	n.SetProperties(props, overwrite)
	return nil
}

// SetEdgeProperties mutates an edge's property map in place.
func (g *Graph) SetEdgeProperties(uid gid.EdgeUID, props PropMap, overwrite bool) error {
	e, ok := g.GetEdge(uid)
	if !ok {
		return ErrElementNotFound("edge", string(uid))
	}
	e.SetProperties(props, overwrite)
	return nil
}

// snapshotNodeUIDs and snapshotEdgeUIDs give scans a UID set fixed at
// scan start, per spec's "snapshot-consistent with respect to the set
// of UIDs at scan start" — properties read through the returned
// elements still reflect the latest committed state.
func (g *Graph) snapshotNodeUIDs() []gid.NodeUID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	uids := make([]gid.NodeUID, 0, len(g.nodes))
	for uid := range g.nodes {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	return uids
}

func (g *Graph) snapshotEdgeUIDs() []gid.EdgeUID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	uids := make([]gid.EdgeUID, 0, len(g.edges))
	for uid := range g.edges {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	return uids
}

// AllNodes returns every currently-stored node (snapshot of UIDs,
// live elements).
func (g *Graph) AllNodes() []*Node {
	uids := g.snapshotNodeUIDs()
	out := make([]*Node, 0, len(uids))
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, uid := range uids {
		if n, ok := g.nodes[uid]; ok {
			out = append(out, n)
		}
	}
	return out
}

// AllEdges returns every currently-stored edge.
func (g *Graph) AllEdges() []*Edge {
	uids := g.snapshotEdgeUIDs()
	out := make([]*Edge, 0, len(uids))
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, uid := range uids {
		if e, ok := g.edges[uid]; ok {
			out = append(out, e)
		}
	}
	return out
}

// NodesByTypeUID returns the nodes whose type has the given UID,
// using the secondary index — the executor's fast path for an exact
// type constraint.
func (g *Graph) NodesByTypeUID(typeUID string) []*Node {
	g.mu.RLock()
	uids := g.nodesByTypeUID[typeUID]
	out := make([]*Node, 0, len(uids))
	for uid := range uids {
		out = append(out, g.nodes[uid])
	}
	g.mu.RUnlock()
	return out
}

// EdgesByTypeUID returns the edges whose type has the given UID.
func (g *Graph) EdgesByTypeUID(typeUID string) []*Edge {
	g.mu.RLock()
	uids := g.edgesByTypeUID[typeUID]
	out := make([]*Edge, 0, len(uids))
	for uid := range uids {
		out = append(out, g.edges[uid])
	}
	g.mu.RUnlock()
	return out
}

// OutEdges returns the edges outgoing from uid.
func (g *Graph) OutEdges(uid gid.NodeUID) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	neighbors := g.outEdges[uid]
	out := make([]*Edge, 0, len(neighbors))
	for _, edgeUID := range neighbors {
		out = append(out, g.edges[edgeUID])
	}
	return out
}

// InEdges returns the edges incoming to uid.
func (g *Graph) InEdges(uid gid.NodeUID) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	neighbors := g.inEdges[uid]
	out := make([]*Edge, 0, len(neighbors))
	for _, edgeUID := range neighbors {
		out = append(out, g.edges[edgeUID])
	}
	return out
}

// ContainsNode reports whether uid names a stored node.
func (g *Graph) ContainsNode(uid gid.NodeUID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[uid]
	return ok
}

// NodeCount and EdgeCount report the store's current size.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Clone returns an independent deep copy of the graph: every node and
// edge is cloned (fresh UID cache, deep-copied properties), and no
// locks are shared with the original.
func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	clone := New()
	for uid, n := range g.nodes {
		cn := n.Clone()
		clone.nodes[uid] = cn
		clone.indexNodeLocked(uid, cn)
		clone.outEdges[uid] = make(map[gid.NodeUID]gid.EdgeUID)
		clone.inEdges[uid] = make(map[gid.NodeUID]gid.EdgeUID)
	}
	for uid, e := range g.edges {
		ce := e.Clone()
		clone.edges[uid] = ce
		clone.outEdges[e.Start()][e.End()] = uid
		clone.inEdges[e.End()][e.Start()] = uid
		tu := typ.UID(ce.Type())
		if clone.edgesByTypeUID[tu] == nil {
			clone.edgesByTypeUID[tu] = make(map[gid.EdgeUID]struct{})
		}
		clone.edgesByTypeUID[tu][uid] = struct{}{}
	}
	return clone
}
