package svdag

import (
	"cmp"

	"github.com/sparsevoxel/svdag/internal/octant"
)

// Node is one octant cell of the octree, at whatever level it lives in.
// It is a fixed-size, comparable record: two Nodes with identical field
// values are the same Node as far as Go's == is concerned, which is
// exactly the structural equality the DAG compressor dedups on.
//
// ChildLevels is always level+1 in this implementation, but the encoder
// honors whatever value it finds in each slot, so a builder that someday
// merges children from non-adjacent levels needs no encoder change.
type Node struct {
	ChildMask     uint8
	Children      [8]int32
	ChildLevels   [8]int16
	MirrorX       uint8 // SDAG only: bit c set => traverse child c with X inverted
	MirrorY       uint8
	MirrorZ       uint8
	InvariantMask uint8 // SDAG only: bit 0=X,1=Y,2=Z self-mirror-symmetry
}

// EmptyNode is the canonical zero-value node: no children, no mirrors.
var EmptyNode = Node{Children: [8]int32{NullNode, NullNode, NullNode, NullNode, NullNode, NullNode, NullNode, NullNode}}

// NewNode returns an empty node with every child slot set to NullNode.
func NewNode() Node {
	return EmptyNode
}

// HasChildren reports whether the node has at least one non-empty child.
func (n Node) HasChildren() bool { return n.ChildMask != 0 }

// NumChildren returns the popcount of ChildMask, 0..8.
func (n Node) NumChildren() int { return octant.Count(n.ChildMask) }

// ExistsChild reports whether octant c is marked present in the mask.
func (n Node) ExistsChild(c uint8) bool { return n.ChildMask&(1<<c) != 0 }

// ExistsChildPointer reports whether octant c actually carries a non-null
// child index. In a node that satisfies the childMask/pointer invariant
// (true after cleanEmptyNodes) this always agrees with ExistsChild.
func (n Node) ExistsChildPointer(c uint8) bool { return n.Children[c] != NullNode }

// SetChildBit marks octant c present.
func (n *Node) SetChildBit(c uint8) { n.ChildMask |= 1 << c }

// UnsetChildBit marks octant c absent and clears its pointer and mirror
// flags, restoring the childMask/pointer invariant for that slot.
func (n *Node) UnsetChildBit(c uint8) {
	n.ChildMask &^= 1 << c
	n.Children[c] = NullNode
	n.ChildLevels[c] = 0
	n.MirrorX &^= 1 << c
	n.MirrorY &^= 1 << c
	n.MirrorZ &^= 1 << c
}

// Mirror returns the node obtained by reflecting n about the axes whose
// flag is true. Child-mask bits, child pointers, per-child levels and
// per-child mirror flags are permuted by the induced octant permutation;
// invariant bits are preserved.
//
// Mirror is an involution: n.Mirror(mx,my,mz).Mirror(mx,my,mz) == n.
func (n Node) Mirror(mx, my, mz bool) Node {
	xor := octant.XorMask(mx, my, mz)
	if xor == 0 {
		return n
	}

	out := Node{
		ChildMask:     octant.PermuteMask(n.ChildMask, xor),
		InvariantMask: n.InvariantMask,
	}

	for p := range uint8(8) {
		c := p ^ xor
		out.Children[p] = n.Children[c]
		out.ChildLevels[p] = n.ChildLevels[c]
		if n.MirrorX&(1<<c) != 0 {
			out.MirrorX |= 1 << p
		}
		if n.MirrorY&(1<<c) != 0 {
			out.MirrorY |= 1 << p
		}
		if n.MirrorZ&(1<<c) != 0 {
			out.MirrorZ |= 1 << p
		}
	}

	// unoccupied slots carry NullNode, matching EmptyNode's convention,
	// so two nodes differing only in the stale pointer of an absent
	// octant still compare equal.
	for p := range uint8(8) {
		if out.ChildMask&(1<<p) == 0 {
			out.Children[p] = NullNode
			out.ChildLevels[p] = 0
		}
	}

	return out
}

// mirrorVariants enumerates the 8 mirror combinations in a fixed probe
// order: identity, X, Y, Z, XY, XZ, YZ, XYZ.
var mirrorVariants = [8][3]bool{
	{false, false, false},
	{true, false, false},
	{false, true, false},
	{false, false, true},
	{true, true, false},
	{true, false, true},
	{false, true, true},
	{true, true, true},
}

// compareNodes gives the total order canonicalization picks the minimum
// under: compare ChildMask, then compare the Children tuple
// lexicographically.
func compareNodes(a, b Node) int {
	if c := cmp.Compare(a.ChildMask, b.ChildMask); c != 0 {
		return c
	}
	for i := range 8 {
		if c := cmp.Compare(a.Children[i], b.Children[i]); c != 0 {
			return c
		}
	}
	return 0
}

// GetCanonical returns, among the 8 mirror variants of n, the one that
// is minimal under compareNodes, along with the three axis flags whose
// Mirror composition reproduces n from that minimal form.
//
// Because Mirror is an involution and the three axis reflections
// commute, the flags that produced the canonical form from n are the
// same flags that reproduce n from the canonical form.
func (n Node) GetCanonical() (canon Node, mx, my, mz bool) {
	canon = n
	for _, v := range mirrorVariants[1:] {
		cand := n.Mirror(v[0], v[1], v[2])
		if compareNodes(cand, canon) < 0 {
			canon = cand
			mx, my, mz = v[0], v[1], v[2]
		}
	}
	return canon, mx, my, mz
}

// dagKey is the structural-equality key the DAGCompressor dedups
// non-leaf nodes on: childMask plus the child pointer tuple.
type dagKey struct {
	mask     uint8
	children [8]int32
}

func (n Node) dagKey() dagKey { return dagKey{n.ChildMask, n.Children} }

// leafKey is the structural-equality key for the leaf level, where
// equality is over childMask alone: leaves carry no pointers of their
// own, just the occupancy bitmask of their 8 sub-voxels.
type leafKey struct {
	mask uint8
}

func (n Node) leafKey() leafKey { return leafKey{n.ChildMask} }

// sdagKey is the structural-equality key the canonical SDAG strategy
// dedups on: the canonical form's childMask, children and per-child
// mirror flags.
type sdagKey struct {
	mask     uint8
	children [8]int32
	mx, my, mz uint8
}

func (n Node) sdagKey() sdagKey {
	return sdagKey{n.ChildMask, n.Children, n.MirrorX, n.MirrorY, n.MirrorZ}
}
