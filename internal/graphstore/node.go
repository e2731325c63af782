package graphstore

import (
	"sync"

	"github.com/implica/implica/internal/gid"
	"github.com/implica/implica/internal/term"
	"github.com/implica/implica/internal/typ"
)

// uidCache lazily computes and memoizes a content-addressed UID behind
// its own lock, independent of the property-map lock. It is never
// shared across a Clone — each cloned element gets a fresh, empty one.
type uidCache struct {
	mu       sync.Mutex
	value    string
	computed bool
}

func (c *uidCache) get(compute func() string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.computed {
		c.value = compute()
		c.computed = true
	}
	return c.value
}

// Node is a graph vertex: a type, an optional term of that type, and a
// property map. Its UID is content-addressed from (type, term).
type Node struct {
	typ   typ.Type
	trm   term.Term // nil when absent
	uid   uidCache
	propM sync.RWMutex
	props PropMap
}

// NewNode constructs a node. If t is non-nil, the well-typedness
// invariant type(term) == type must already hold — callers typically
// go through the pattern/query layer, which enforces this when
// elaborating CREATE patterns.
func NewNode(nt typ.Type, t term.Term, props PropMap) (*Node, error) {
	if t != nil && !typ.Equal(nt, t.Type()) {
		return nil, errTypeMismatch("node term's type does not match the node's declared type")
	}
	return &Node{typ: nt, trm: t, props: CloneProps(props)}, nil
}

// Type returns the node's type.
func (n *Node) Type() typ.Type { return n.typ }

// Term returns the node's term and whether one is present.
func (n *Node) Term() (term.Term, bool) { return n.trm, n.trm != nil }

// UID returns the node's content-addressed identity, computing and
// caching it on first use.
func (n *Node) UID() gid.NodeUID {
	return gid.NodeUID(n.uid.get(func() string {
		termUID := ""
		if n.trm != nil {
			termUID = term.UID(n.trm)
		}
		return hashPair("N", typ.UID(n.typ), termUID)
	}))
}

// Properties returns a deep copy of the node's current property map.
func (n *Node) Properties() PropMap {
	n.propM.RLock()
	defer n.propM.RUnlock()
	return CloneProps(n.props)
}

// SetProperties replaces (overwrite=true) or merges (overwrite=false)
// the node's property map.
func (n *Node) SetProperties(props PropMap, overwrite bool) {
	n.propM.Lock()
	defer n.propM.Unlock()
	if overwrite {
		n.props = CloneProps(props)
		return
	}
	n.props = MergeProps(n.props, CloneProps(props))
}

// Clone returns an independent node: a fresh UID cache and a
// deep-copied property map, sharing no locks with the original.
func (n *Node) Clone() *Node {
	return &Node{typ: n.typ, trm: n.trm, props: n.Properties()}
}

// EqualStructure reports whether two nodes have the same type and
// term (the equivalence spec §8 Invariant 1 ties to UID equality).
func EqualStructure(a, b *Node) bool {
	if !typ.Equal(a.typ, b.typ) {
		return false
	}
	at, aok := a.Term()
	bt, bok := b.Term()
	if aok != bok {
		return false
	}
	if !aok {
		return true
	}
	return term.Equal(at, bt)
}
