package geom

import "testing"

func TestOctantAndChildBoxRoundTrip(t *testing.T) {
	center := Vec3{0, 0, 0}
	half := 1.0

	for c := uint8(0); c < 8; c++ {
		box := ChildBox(center, half/2, c)
		got := Octant(center, box.Center())
		if got != c {
			t.Errorf("octant %d: ChildBox center resolves back to octant %d", c, got)
		}
	}
}

func TestBBoxContainsHalfOpen(t *testing.T) {
	b := BBox{Min: Vec3{-1, -1, -1}, Max: Vec3{1, 1, 1}}
	if !b.Contains(Vec3{0, 0, 0}) {
		t.Error("origin should be contained")
	}
	if !b.Contains(Vec3{-1, -1, -1}) {
		t.Error("Min corner should be contained (half-open)")
	}
	if b.Contains(Vec3{1, 0, 0}) {
		t.Error("Max.X should not be contained (half-open)")
	}
}

func TestBBoxUnion(t *testing.T) {
	b := BBox{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}
	u := b.Union(Vec3{-1, 2, 0.5})
	want := BBox{Min: Vec3{-1, 0, 0}, Max: Vec3{1, 2, 1}}
	if u != want {
		t.Errorf("Union = %+v, want %+v", u, want)
	}
}

func TestTriBoxTestAxisAlignedTriangle(t *testing.T) {
	tri := Triangle{
		A: Vec3{-0.1, -0.1, 0},
		B: Vec3{0.1, -0.1, 0},
		C: Vec3{0, 0.1, 0},
	}

	if !TriBoxTest(Vec3{0, 0, 0}, 0.5, tri) {
		t.Error("triangle at origin should intersect a box centered on it")
	}
	if TriBoxTest(Vec3{10, 10, 10}, 0.5, tri) {
		t.Error("triangle far from the box should not intersect")
	}
}

func TestTriBoxTestDegenerateTriangle(t *testing.T) {
	// A zero-area triangle (a point) should still behave sanely: it
	// intersects a box that contains it and no other.
	tri := Triangle{A: Vec3{0, 0, 0}, B: Vec3{0, 0, 0}, C: Vec3{0, 0, 0}}
	if !TriBoxTest(Vec3{0, 0, 0}, 0.5, tri) {
		t.Error("degenerate triangle at the box center should intersect")
	}
	if TriBoxTest(Vec3{5, 5, 5}, 0.5, tri) {
		t.Error("degenerate triangle far away should not intersect")
	}
}

func TestBoundsOfPoints(t *testing.T) {
	ps := &SlicePointStream{Points: []Vec3{{1, 2, 3}, {-1, 0, 5}, {2, -2, -2}}}
	b, ok := BoundsOfPoints(ps)
	if !ok {
		t.Fatal("expected ok=true for non-empty stream")
	}
	want := BBox{Min: Vec3{-1, -2, -2}, Max: Vec3{2, 2, 5}}
	if b != want {
		t.Errorf("BoundsOfPoints = %+v, want %+v", b, want)
	}

	if _, ok := BoundsOfPoints(&SlicePointStream{}); ok {
		t.Error("expected ok=false for empty stream")
	}
}

func TestBoundsOfScene(t *testing.T) {
	s := &SliceScene{
		Triangles: []Triangle{
			{A: Vec3{0, 0, 0}, B: Vec3{1, 0, 0}, C: Vec3{0, 1, 0}},
			{A: Vec3{-1, -1, -1}, B: Vec3{0, 0, 0}, C: Vec3{2, 2, 2}},
		},
	}
	b, ok := BoundsOf(s)
	if !ok {
		t.Fatal("expected ok=true")
	}
	want := BBox{Min: Vec3{-1, -1, -1}, Max: Vec3{2, 2, 2}}
	if b != want {
		t.Errorf("BoundsOf = %+v, want %+v", b, want)
	}
}
