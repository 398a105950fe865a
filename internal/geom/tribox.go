package geom

import "math"

// TriBoxTest is a conservative triangle/box intersection test, using the
// separating-axis theorem over the box face normals, the triangle normal,
// and the nine cross products of box edges with triangle edges (the
// standard Akenine-Möller triangle/box overlap test). It never reports a
// false negative; it may conservatively report an overlap for triangles
// that only graze a box corner.
func TriBoxTest(center Vec3, halfSide float64, t Triangle) bool {
	// translate triangle so the box is centered at the origin
	v0 := t.A.Sub(center)
	v1 := t.B.Sub(center)
	v2 := t.C.Sub(center)

	h := Vec3{halfSide, halfSide, halfSide}

	e0 := v1.Sub(v0)
	e1 := v2.Sub(v1)
	e2 := v0.Sub(v2)

	// 9 axis tests: cross(edge, box-axis) for each of the 3 edges and 3 axes
	axes := [3]Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	edges := [3]Vec3{e0, e1, e2}
	verts := [3]Vec3{v0, v1, v2}

	for _, e := range edges {
		for _, a := range axes {
			axis := cross(a, e)
			if axis == (Vec3{}) {
				continue
			}
			if !overlapsOnAxis(axis, verts, h) {
				return false
			}
		}
	}

	// test the box's own 3 face normals: AABB test on the triangle's bbox
	min := Vec3{
		math.Min(v0.X, math.Min(v1.X, v2.X)),
		math.Min(v0.Y, math.Min(v1.Y, v2.Y)),
		math.Min(v0.Z, math.Min(v1.Z, v2.Z)),
	}
	max := Vec3{
		math.Max(v0.X, math.Max(v1.X, v2.X)),
		math.Max(v0.Y, math.Max(v1.Y, v2.Y)),
		math.Max(v0.Z, math.Max(v1.Z, v2.Z)),
	}
	if min.X > h.X || max.X < -h.X || min.Y > h.Y || max.Y < -h.Y || min.Z > h.Z || max.Z < -h.Z {
		return false
	}

	// test the triangle's own plane against the box
	normal := cross(e0, e1)
	if !planeOverlapsBox(normal, v0, h) {
		return false
	}

	return true
}

func cross(a, b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func dot(a, b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// overlapsOnAxis projects the three triangle vertices and the box's
// half-extent onto axis and checks for a separating gap.
func overlapsOnAxis(axis Vec3, verts [3]Vec3, h Vec3) bool {
	p0 := dot(axis, verts[0])
	p1 := dot(axis, verts[1])
	p2 := dot(axis, verts[2])

	minP, maxP := p0, p0
	if p1 < minP {
		minP = p1
	}
	if p1 > maxP {
		maxP = p1
	}
	if p2 < minP {
		minP = p2
	}
	if p2 > maxP {
		maxP = p2
	}

	rad := h.X*math.Abs(axis.X) + h.Y*math.Abs(axis.Y) + h.Z*math.Abs(axis.Z)
	return minP <= rad && maxP >= -rad
}

func planeOverlapsBox(normal, point Vec3, h Vec3) bool {
	var vmin, vmax Vec3
	comp := func(nc, hc float64) (mn, mx float64) {
		if nc > 0 {
			return -hc, hc
		}
		return hc, -hc
	}
	vmin.X, vmax.X = comp(normal.X, h.X)
	vmin.Y, vmax.Y = comp(normal.Y, h.Y)
	vmin.Z, vmax.Z = comp(normal.Z, h.Z)

	d := dot(normal, point)
	if dot(normal, vmin)+(-d) > 0 {
		return false
	}
	if dot(normal, vmax)+(-d) >= 0 {
		return true
	}
	return false
}
