package svdag

import (
	"time"

	"github.com/sparsevoxel/svdag/internal/geom"
	"github.com/sparsevoxel/svdag/internal/octant"
)

// VoxelizeOptions configures a single build call.
type VoxelizeOptions struct {
	// TrackMaterials, when true, records the material id stamped into
	// each leaf cell by FromTriangles. Off by default so the common path
	// compresses without an extra side table to keep in sync.
	TrackMaterials bool

	// PointBatchSize, used only by FromPoints, is retained purely as a
	// documented knob: PointStream.Next is already pull-based, so no
	// batching is required internally, but a caller wiring a streaming
	// reader may want a hint for its own buffering.
	PointBatchSize int
}

// Voxelizer builds a level-structured SVO by recursive subdivision
// against either triangle-soup or point-cloud geometry. Both entry
// points share cleanEmptyNodes and the same child-box math;
// they differ only in the element/box intersection predicate.
type Voxelizer struct {
	Levels   int      // total levels, L; leaf level is Levels-1
	RootBBox geom.BBox
}

// NewVoxelizer returns a Voxelizer spanning levels [0, levels) over bbox,
// which must be a cube (RootBBox.HalfSide() applies uniformly to X/Y/Z).
func NewVoxelizer(levels int, bbox geom.BBox) *Voxelizer {
	return &Voxelizer{Levels: levels, RootBBox: bbox}
}

// halfSideAt returns the half-side length of a cell at level l.
func (vx *Voxelizer) halfSideAt(l int) float64 {
	h := vx.RootBBox.HalfSide()
	for range l {
		h /= 2
	}
	return h
}

// FromTriangles voxelizes scene's triangle soup. For each triangle, it
// walks the octree from the root, descending into every child octant
// whose box conservatively intersects the triangle (TriBoxTest), creating
// shared child nodes lazily. At the leaf level the per-triangle
// intersection test is applied once more, directly against the leaf
// cell's 8 sub-voxels, stamping the leaf's ChildMask as a sub-voxel
// occupancy mask.
//
// Voxelization itself never fails; a scene with TriangleCount()==0, or
// whose triangles all fail every intersection test, yields a root with
// ChildMask==0.
func (vx *Voxelizer) FromTriangles(scene geom.Scene, opts VoxelizeOptions) (*LevelStructure, BuildStats, map[int32]uint32) {
	start := time.Now()

	ls := &LevelStructure{Levels: make([][]Node, vx.Levels)}
	ls.Levels[0] = []Node{NewNode()}
	for l := 1; l < vx.Levels; l++ {
		ls.Levels[l] = nil
	}

	var leafMaterials map[int32]uint32
	if opts.TrackMaterials {
		leafMaterials = make(map[int32]uint32)
	}

	n := scene.TriangleCount()
	for i := range n {
		t, ok := scene.Triangle(i)
		if !ok {
			continue // a missing triangle is skipped silently
		}
		mat := scene.TriangleMaterial(i)
		vx.insertTriangle(ls, t, mat, leafMaterials)
	}

	ls.cleanEmptyNodes()

	stats := vx.buildStats(ls)
	stats.BuildSVOTime = time.Since(start)
	return ls, stats, leafMaterials
}

// insertTriangle recurses from the root down to the leaf level for a
// single triangle, descending octant 7..0 at every inner level.
func (vx *Voxelizer) insertTriangle(ls *LevelStructure, t geom.Triangle, mat uint32, leafMaterials map[int32]uint32) {
	vx.insertTriangleAt(ls, 0, 0, vx.RootBBox.Center(), t, mat, leafMaterials)
}

func (vx *Voxelizer) insertTriangleAt(ls *LevelStructure, level int, nodeIdx int32, center geom.Vec3, t geom.Triangle, mat uint32, leafMaterials map[int32]uint32) {
	childHalf := vx.halfSideAt(level + 1)
	leafLevel := level+1 == vx.Levels-1

	octant.AllDescending(func(c uint8) {
		box := geom.ChildBox(center, childHalf, c)
		if !geom.TriBoxTest(box.Center(), childHalf, t) {
			return
		}

		childIdx, _ := vx.getOrCreateChild(ls, level, nodeIdx, c)

		if leafLevel {
			vx.stampLeafOccupancy(ls, childIdx, box.Center(), childHalf, t, mat, leafMaterials)
			return
		}

		vx.insertTriangleAt(ls, level+1, childIdx, box.Center(), t, mat, leafMaterials)
	})
}

// stampLeafOccupancy tests t against the 8 sub-voxels of a leaf cell and
// sets the corresponding bits of the leaf node's ChildMask; no pointers
// are ever created at the leaf level, since a leaf's children are
// sub-voxels rather than further nodes.
func (vx *Voxelizer) stampLeafOccupancy(ls *LevelStructure, leafIdx int32, center geom.Vec3, half float64, t geom.Triangle, mat uint32, leafMaterials map[int32]uint32) {
	leaf := &ls.Levels[vx.Levels-1][leafIdx]
	subHalf := half / 2

	octant.AllDescending(func(c uint8) {
		box := geom.ChildBox(center, subHalf, c)
		if !geom.TriBoxTest(box.Center(), subHalf, t) {
			return
		}
		wasSet := leaf.ExistsChild(c)
		leaf.SetChildBit(c)
		if leafMaterials != nil && !wasSet {
			leafMaterials[leafIdx] = mat
		}
	})
}

// getOrCreateChild returns the level+1 index of the child of
// ls.Levels[level][nodeIdx] at octant c, allocating and linking a new
// empty node if this is the first time that octant has been touched.
func (vx *Voxelizer) getOrCreateChild(ls *LevelStructure, level int, nodeIdx int32, c uint8) (childIdx int32, created bool) {
	node := &ls.Levels[level][nodeIdx]
	if node.ExistsChild(c) {
		return node.Children[c], false
	}

	childIdx = int32(len(ls.Levels[level+1]))
	ls.Levels[level+1] = append(ls.Levels[level+1], NewNode())

	node.SetChildBit(c)
	node.Children[c] = childIdx
	node.ChildLevels[c] = int16(level + 1)

	return childIdx, true
}

// FromPoints voxelizes a point cloud: each point falls into exactly one
// child octant at every level (a half-open box test), down to a single
// sub-voxel bit at the leaf level.
func (vx *Voxelizer) FromPoints(ps geom.PointStream, opts VoxelizeOptions) (*LevelStructure, BuildStats) {
	start := time.Now()

	ls := &LevelStructure{Levels: make([][]Node, vx.Levels)}
	ls.Levels[0] = []Node{NewNode()}

	for {
		p, ok := ps.Next()
		if !ok {
			break
		}
		if !vx.RootBBox.Contains(p) {
			continue
		}
		vx.insertPointAt(ls, 0, 0, vx.RootBBox.Center(), p)
	}

	ls.cleanEmptyNodes()

	stats := vx.buildStats(ls)
	stats.BuildSVOTime = time.Since(start)
	return ls, stats
}

func (vx *Voxelizer) insertPointAt(ls *LevelStructure, level int, nodeIdx int32, center geom.Vec3, p geom.Vec3) {
	childHalf := vx.halfSideAt(level + 1)
	c := geom.Octant(center, p)
	box := geom.ChildBox(center, childHalf, c)

	if level+1 == vx.Levels-1 {
		childIdx, _ := vx.getOrCreateChild(ls, level, nodeIdx, c)
		leaf := &ls.Levels[vx.Levels-1][childIdx]
		subC := geom.Octant(box.Center(), p)
		leaf.SetChildBit(subC)
		return
	}

	childIdx, _ := vx.getOrCreateChild(ls, level, nodeIdx, c)
	vx.insertPointAt(ls, level+1, childIdx, box.Center(), p)
}

// buildStats assembles a BuildStats snapshot from a freshly built
// LevelStructure; NVoxels sums the popcount of every leaf's ChildMask.
func (vx *Voxelizer) buildStats(ls *LevelStructure) BuildStats {
	var s BuildStats
	for l, lvl := range ls.Levels {
		s.NNodesSVO += int64(len(lvl))
		s.MemFootprint += int64(len(lvl)) * int64(nodeSize)
		if l == len(ls.Levels)-1 {
			s.NNodesLastLevSVO = int64(len(lvl))
			for _, n := range lvl {
				s.NVoxels += int64(n.NumChildren())
			}
		}
	}
	return s
}

// nodeSize approximates sizeof(Node) for MemFootprint accounting: 8
// int32 children, 8 int16 child levels, and the childMask/mirror bytes.
const nodeSize = 8*4 + 8*2 + 4
