// Copyright notice: see DESIGN.md for why this module carries no
// per-file copyright header.

// Package svdag constructs, compresses, and queries voxelized geometry
// stored as a Sparse Voxel Directed Acyclic Graph (SVDAG) and its
// symmetry-aware variant (SSVDAG).
//
// The pipeline is: a [Voxelizer] builds a level-structured sparse voxel
// octree (SVO) from triangle soup or a point cloud; a [DAGCompressor]
// merges bit-identical subtrees bottom-up into a DAG; an optional
// [SDAGCompressor] extends that merge modulo the seven non-identity axis
// mirrors; an [Encoder] packs the result into a single flat 32-bit word
// stream that an [EncodedTraverser] can query without ever reconstructing
// the level-structured form, and a [Serializer] persists that stream
// bit-exactly.
//
// Scene loading, triangle rasterization primitives beyond the
// conservative box test, renderer integration, and CLI front-ends are
// treated as external collaborators (see the geom package) and are not
// part of this package.
package svdag

import "errors"

// NullNode is the sentinel child index meaning "no child in this octant".
// It never aliases a valid level-local index.
const NullNode int32 = -1

// Sentinel errors for this package's failure modes. Each is meant to be
// matched with errors.Is at call sites, and each is wrapped with a
// contextual message via fmt.Errorf("...: %w", ...) rather than returned
// bare.
var (
	// ErrLoadFailure is returned by the Serializer when the underlying
	// stream cannot be read or written, or when it ends before the
	// header or the number of words the header declares has been read.
	ErrLoadFailure = errors.New("svdag: load failure")

	// ErrWrongStateTransform is returned by Encoder.Encode when mirrored
	// output is requested for a LevelStructure that has not been SDAG
	// compressed. DAGCompressor.ToDAG and SDAGCompressor.ToSDAG do not
	// check the state of their input and never return it.
	ErrWrongStateTransform = errors.New("svdag: wrong state transform")

	// ErrCorruptEncoding is returned by optional integrity validation
	// (see Serializer.CheckIntegrity) when a child pointer or header
	// field is out of range. It is never returned by the hot traversal
	// path, which trusts its input by design.
	ErrCorruptEncoding = errors.New("svdag: corrupt encoding")
)

// OutOfBounds is the depth value returned by a traverse when the query
// point falls outside the scene bounding box.
const OutOfBounds = -1
