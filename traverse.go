package svdag

import (
	"github.com/sparsevoxel/svdag/internal/geom"
	"github.com/sparsevoxel/svdag/internal/octant"
)

// EncodedTraverser answers point-location queries directly against an
// Encoded word stream, without ever materializing Node values.
type EncodedTraverser struct {
	e Encoded
}

// NewEncodedTraverser wraps e for querying.
func NewEncodedTraverser(e Encoded) *EncodedTraverser {
	return &EncodedTraverser{e: e}
}

// travNode is a decoded view of one word-stream node: its word offset,
// its childMask, and (if mirrored) its three per-child mirror masks.
type travNode struct {
	ptr       uint32
	childMask uint8
	mirrorX   uint8
	mirrorY   uint8
	mirrorZ   uint8
}

func (tr *EncodedTraverser) nodeAt(ptr uint32) travNode {
	word := tr.e.D[ptr]
	n := travNode{ptr: ptr, childMask: uint8(word)}
	if tr.e.Mirrored {
		n.mirrorX = uint8(word >> 8)
		n.mirrorY = uint8(word >> 16)
		n.mirrorZ = uint8(word >> 24)
	}
	return n
}

// getRootTravNode returns the root node (always word 0).
func (tr *EncodedTraverser) getRootTravNode() travNode {
	return tr.nodeAt(0)
}

// hasChild reports whether n has a child (or, at the leaf level, a set
// sub-voxel) in octant c.
func (n travNode) hasChild(c uint8) bool {
	return n.childMask&(1<<c) != 0
}

// getChild returns the word offset of n's child at octant c, using the
// popcount-ranked inline layout: the pointer for octant c sits at
// position popcount(childMask >> c) - 1 among n's child words, counting
// from n.ptr+1.
func (tr *EncodedTraverser) getChild(n travNode, c uint8) uint32 {
	offset := octant.RankDescending(n.childMask, c) - 1
	return tr.e.D[n.ptr+1+uint32(offset)]
}

// Traverse descends from the root toward p, applying the accumulated
// mirror transform at every SDAG-mirrored edge, and returns the deepest
// level reached: 0 if the root itself has no child in p's direction, up
// to e.Levels if descent reaches an occupied sub-voxel at the leaf
// level. It returns OutOfBounds for p outside RootBBox.
func (tr *EncodedTraverser) Traverse(p geom.Vec3) int {
	if !tr.e.RootBBox.Contains(p) {
		return OutOfBounds
	}

	var mx, my, mz bool
	center := tr.e.RootBBox.Center()
	half := tr.e.RootBBox.HalfSide()
	n := tr.getRootTravNode()

	depth := 0
	L := int(tr.e.Levels)
	for level := 0; level < L; level++ {
		c := geom.Octant(center, p)
		eff := c ^ octant.XorMask(mx, my, mz)

		if !n.hasChild(eff) {
			return depth
		}

		half /= 2
		center = geom.ChildBox(center, half, c).Center()
		depth++

		if level == L-1 {
			return depth
		}

		childPtr := tr.getChild(n, eff)

		if tr.e.Mirrored {
			if n.mirrorX&(1<<eff) != 0 {
				mx = !mx
			}
			if n.mirrorY&(1<<eff) != 0 {
				my = !my
			}
			if n.mirrorZ&(1<<eff) != 0 {
				mz = !mz
			}
		}

		n = tr.nodeAt(childPtr)
	}

	return depth
}
