// Package geom provides the minimal 3D primitives the voxelizer needs:
// vectors, axis-aligned boxes, and the Scene/PointStream/TriBoxTest
// collaborators the core treats as external inputs.
package geom

import "math"

// Vec3 is a point or direction in R3.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v*s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// BBox is an axis-aligned bounding box, [Min, Max).
type BBox struct {
	Min, Max Vec3
}

// Center returns the box midpoint.
func (b BBox) Center() Vec3 {
	return Vec3{
		(b.Min.X + b.Max.X) / 2,
		(b.Min.Y + b.Max.Y) / 2,
		(b.Min.Z + b.Max.Z) / 2,
	}
}

// HalfSide returns half the box's side length, assuming a cube.
func (b BBox) HalfSide() float64 {
	return (b.Max.X - b.Min.X) / 2
}

// Contains reports whether p lies within the half-open box [Min, Max).
func (b BBox) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X < b.Max.X &&
		p.Y >= b.Min.Y && p.Y < b.Max.Y &&
		p.Z >= b.Min.Z && p.Z < b.Max.Z
}

// Union returns the smallest box containing b and p.
func (b BBox) Union(p Vec3) BBox {
	return BBox{
		Min: Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)},
		Max: Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)},
	}
}

// ChildBox returns the axis-aligned box of octant c (PXPYPZ=7..NXNYNZ=0)
// within parent, whose center is `center` and whose children have
// half-side `childHalf`.
func ChildBox(center Vec3, childHalf float64, c uint8) BBox {
	sx, sy, sz := -1.0, -1.0, -1.0
	if c&4 != 0 {
		sx = 1
	}
	if c&2 != 0 {
		sy = 1
	}
	if c&1 != 0 {
		sz = 1
	}

	cc := Vec3{
		center.X + sx*childHalf,
		center.Y + sy*childHalf,
		center.Z + sz*childHalf,
	}

	half := Vec3{childHalf, childHalf, childHalf}
	return BBox{Min: cc.Sub(half), Max: cc.Add(half)}
}

// Octant returns the child index (PXPYPZ=7 .. NXNYNZ=0) of p relative to
// center, using the half-open convention p > center for the positive side.
func Octant(center, p Vec3) uint8 {
	var c uint8
	if p.X > center.X {
		c |= 4
	}
	if p.Y > center.Y {
		c |= 2
	}
	if p.Z > center.Z {
		c |= 1
	}
	return c
}
