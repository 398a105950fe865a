package svdag

import "testing"

func sampleNode() Node {
	n := NewNode()
	n.SetChildBit(7)
	n.Children[7] = 3
	n.SetChildBit(2)
	n.Children[2] = 9
	return n
}

func TestMirrorIsInvolution(t *testing.T) {
	n := sampleNode()
	for _, v := range mirrorVariants {
		m := n.Mirror(v[0], v[1], v[2])
		back := m.Mirror(v[0], v[1], v[2])
		if back != n {
			t.Errorf("Mirror(%v) is not an involution: got %+v, want %+v", v, back, n)
		}
	}
}

func TestMirrorIdentityIsNoop(t *testing.T) {
	n := sampleNode()
	if got := n.Mirror(false, false, false); got != n {
		t.Errorf("identity Mirror changed the node: got %+v, want %+v", got, n)
	}
}

func TestMirrorPreservesChildCount(t *testing.T) {
	n := sampleNode()
	for _, v := range mirrorVariants {
		m := n.Mirror(v[0], v[1], v[2])
		if m.NumChildren() != n.NumChildren() {
			t.Errorf("Mirror(%v) changed NumChildren: %d vs %d", v, m.NumChildren(), n.NumChildren())
		}
	}
}

func TestGetCanonicalReconstructsOriginal(t *testing.T) {
	n := sampleNode()
	canon, mx, my, mz := n.GetCanonical()
	if got := canon.Mirror(mx, my, mz); got != n {
		t.Errorf("canonical form does not reconstruct original: got %+v, want %+v", got, n)
	}
}

func TestGetCanonicalIsMinimalAmongVariants(t *testing.T) {
	n := sampleNode()
	canon, _, _, _ := n.GetCanonical()
	for _, v := range mirrorVariants {
		cand := n.Mirror(v[0], v[1], v[2])
		if compareNodes(canon, cand) > 0 {
			t.Errorf("canonical form %+v is not minimal: %+v sorts earlier", canon, cand)
		}
	}
}

func TestEmptyNodeChildMaskPointerAgreement(t *testing.T) {
	n := NewNode()
	for c := uint8(0); c < 8; c++ {
		if n.ExistsChild(c) {
			t.Errorf("fresh node should have no children set, octant %d", c)
		}
		if n.ExistsChildPointer(c) {
			t.Errorf("fresh node should have NullNode pointers, octant %d", c)
		}
	}
}

func TestUnsetChildBitRestoresInvariant(t *testing.T) {
	n := sampleNode()
	n.MirrorX = 1 << 7
	n.UnsetChildBit(7)
	if n.ExistsChild(7) || n.ExistsChildPointer(7) {
		t.Error("UnsetChildBit should clear both mask bit and pointer")
	}
	if n.MirrorX&(1<<7) != 0 {
		t.Error("UnsetChildBit should clear the mirror flag for that slot")
	}
}

func TestDagKeyIgnoresMirrorFields(t *testing.T) {
	a := sampleNode()
	b := a
	b.MirrorX = 0xFF
	b.InvariantMask = 7
	if a.dagKey() != b.dagKey() {
		t.Error("dagKey should be insensitive to mirror/invariant fields")
	}
}
