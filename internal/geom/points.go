package geom

// PointStream is a lazy sequence of 3D points read from a geometry file.
// Reading the actual file formats is out of the core's scope; this
// interface is the external collaborator the voxelizer consumes.
type PointStream interface {
	// Next returns the next point, or ok=false once the stream is
	// exhausted.
	Next() (p Vec3, ok bool)
}

// SlicePointStream is a concrete PointStream backed by an in-memory
// slice, used by tests and by callers who have already loaded their
// points by some other means.
type SlicePointStream struct {
	Points []Vec3
	pos    int
}

// Next implements PointStream.
func (s *SlicePointStream) Next() (Vec3, bool) {
	if s.pos >= len(s.Points) {
		return Vec3{}, false
	}
	p := s.Points[s.pos]
	s.pos++
	return p, true
}

// BoundsOfPoints returns the union bounding box of every point yielded
// by reading ps to exhaustion, or ok=false if it yielded nothing. It
// consumes the stream.
func BoundsOfPoints(ps PointStream) (b BBox, ok bool) {
	for {
		p, present := ps.Next()
		if !present {
			break
		}
		if !ok {
			b = BBox{Min: p, Max: p}
			ok = true
		}
		b = b.Union(p)
	}
	return b, ok
}
