package graphstore

import (
	"sync"

	"github.com/implica/implica/internal/gid"
	"github.com/implica/implica/internal/term"
	"github.com/implica/implica/internal/typ"
)

// Edge is a directed graph edge: an Arrow type, a required term of
// that type, and endpoint node UIDs. Its identity is the ordered pair
// of endpoint UIDs, since the store allows at most one edge per
// ordered pair.
type Edge struct {
	typ        typ.Type // always an Arrow
	trm        term.Term
	start, end gid.NodeUID
	uid        uidCache
	propM      sync.RWMutex
	props      PropMap
}

// NewEdge constructs an edge, validating that t is an Arrow and that
// the term's type matches it. Endpoint-type conformance (strict
// equality against the arrow's arms) is checked by the store at
// AddEdge time, since it needs the endpoints' actual types.
func NewEdge(et typ.Type, t term.Term, start, end gid.NodeUID, props PropMap) (*Edge, error) {
	if _, ok := typ.IsArrow(et); !ok {
		return nil, errTypeMismatch("edge type must be an Arrow")
	}
	if !typ.Equal(et, t.Type()) {
		return nil, errTypeMismatch("edge term's type does not match the edge's declared type")
	}
	return &Edge{typ: et, trm: t, start: start, end: end, props: CloneProps(props)}, nil
}

func (e *Edge) Type() typ.Type      { return e.typ }
func (e *Edge) Term() term.Term     { return e.trm }
func (e *Edge) Start() gid.NodeUID  { return e.start }
func (e *Edge) End() gid.NodeUID    { return e.end }

// UID returns the edge's content-addressed identity, computing and
// caching it on first use: the pair of endpoint UIDs.
func (e *Edge) UID() gid.EdgeUID {
	return gid.EdgeUID(e.uid.get(func() string {
		return hashPair("E", string(e.start), string(e.end))
	}))
}

func (e *Edge) Properties() PropMap {
	e.propM.RLock()
	defer e.propM.RUnlock()
	return CloneProps(e.props)
}

func (e *Edge) SetProperties(props PropMap, overwrite bool) {
	e.propM.Lock()
	defer e.propM.Unlock()
	if overwrite {
		e.props = CloneProps(props)
		return
	}
	e.props = MergeProps(e.props, CloneProps(props))
}

// Clone returns an independent edge with a fresh UID cache and a
// deep-copied property map.
func (e *Edge) Clone() *Edge {
	return &Edge{typ: e.typ, trm: e.trm, start: e.start, end: e.end, props: e.Properties()}
}
