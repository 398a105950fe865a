package svdag

// Strategy selects how the SDAGCompressor looks for a mirror-equal
// duplicate of a candidate node.
type Strategy int

const (
	// StrategyEightLookup probes the unique set with the node and each
	// of its seven non-identity mirror variants, in the fixed order
	// X, Y, Z, XY, XZ, YZ, XYZ.
	StrategyEightLookup Strategy = iota
	// StrategyCanonical computes the single lexicographically-minimal
	// mirror variant and probes the unique set once.
	StrategyCanonical
)

// Invariance bit layout within Node.InvariantMask: bit a is set iff the
// node equals its own mirror about axis a.
const (
	invariantX = 1 << 0
	invariantY = 1 << 1
	invariantZ = 1 << 2
)

// SDAGCompressor extends DAGCompressor's bottom-up dedup to treat a node
// as a duplicate of another if they are equal under any of the 8 mirror
// reflections.
type SDAGCompressor struct {
	Strategy Strategy
}

// sdagCorrespondence is what a parent edge rewrite needs: the
// deduplicated target index plus the three mirror flags to OR into the
// parent's per-child mirror mask.
type sdagCorrespondence struct {
	idx        int32
	mx, my, mz bool
}

// ToSDAG compresses ls in place, level by level from the deepest level
// upward, marks ls.Mirrored, and returns per-level statistics. ls must
// already be a DAG (or at least free of per-level duplicates); running
// SDAG compression on raw, un-deduped SVO levels works but wastes the
// plain-duplicate merges SDAG would otherwise have found for free.
func (c SDAGCompressor) ToSDAG(ls *LevelStructure) DedupStats {
	L := len(ls.Levels)
	stats := DedupStats{
		BeforePerLevel: make([]int, L),
		AfterPerLevel:  make([]int, L),
	}
	for l := range ls.Levels {
		stats.BeforePerLevel[l] = len(ls.Levels[l])
	}

	for lvl := L - 1; lvl >= 1; lvl-- {
		isLeaf := lvl == L-1
		corr := c.dedupLevelSDAG(ls, lvl, isLeaf)
		remapParentSDAG(ls.Levels[lvl-1], corr)
	}

	ls.Mirrored = true

	for l := range ls.Levels {
		stats.AfterPerLevel[l] = len(ls.Levels[l])
	}
	return stats
}

// structEqualShape compares two nodes' shape only (childMask, and for
// inner levels the child pointer tuple), ignoring per-child mirror
// flags: those flags describe how a parent should traverse into the
// node, not the node's own identity, so they play no part in deciding
// whether a node is self-symmetric.
func structEqualShape(a, b Node, isLeaf bool) bool {
	if isLeaf {
		return a.leafKey() == b.leafKey()
	}
	return a.dagKey() == b.dagKey()
}

// computeInvariantMask sets bit a of the result iff n equals its own
// mirror about axis a.
func computeInvariantMask(n Node, isLeaf bool) uint8 {
	var mask uint8
	if structEqualShape(n, n.Mirror(true, false, false), isLeaf) {
		mask |= invariantX
	}
	if structEqualShape(n, n.Mirror(false, true, false), isLeaf) {
		mask |= invariantY
	}
	if structEqualShape(n, n.Mirror(false, false, true), isLeaf) {
		mask |= invariantZ
	}
	return mask
}

// invertInvs clears any per-child mirror bit of n that points at a
// child whose corresponding invariance bit is already set, preventing
// the same symmetry from being counted twice: a self-symmetric child
// makes the mirrored and unmirrored edges to it equivalent, so
// canonicalization must settle on a single representative.
func invertInvs(n Node, deeper []Node) Node {
	for p := range uint8(8) {
		if n.ChildMask&(1<<p) == 0 {
			continue
		}
		child := deeper[n.Children[p]]
		if child.InvariantMask&invariantX != 0 {
			n.MirrorX &^= 1 << p
		}
		if child.InvariantMask&invariantY != 0 {
			n.MirrorY &^= 1 << p
		}
		if child.InvariantMask&invariantZ != 0 {
			n.MirrorZ &^= 1 << p
		}
	}
	return n
}

// dedupLevelSDAG replaces ls.Levels[lvl] with its mirror-deduplicated
// unique nodes and returns, for every original index, where it landed
// and under which mirror.
func (c SDAGCompressor) dedupLevelSDAG(ls *LevelStructure, lvl int, isLeaf bool) []sdagCorrespondence {
	old := ls.Levels[lvl]
	corr := make([]sdagCorrespondence, len(old))
	unique := make([]Node, 0, len(old))
	seen := make(map[sdagKey]int32, len(old))

	var deeper []Node
	if !isLeaf {
		deeper = ls.Levels[lvl+1]
	}

	for i, n := range old {
		if n.ChildMask == 0 {
			corr[i] = sdagCorrespondence{idx: NullNode}
			continue
		}

		n.InvariantMask = computeInvariantMask(n, isLeaf)

		switch c.Strategy {
		case StrategyCanonical:
			canon, mx, my, mz := n.GetCanonical()
			if !isLeaf {
				canon = invertInvs(canon, deeper)
			}
			key := canon.sdagKey()
			idx, ok := seen[key]
			if !ok {
				idx = int32(len(unique))
				unique = append(unique, canon)
				seen[key] = idx
			}
			corr[i] = sdagCorrespondence{idx, mx, my, mz}

		default: // StrategyEightLookup
			found := false
			for _, v := range mirrorVariants {
				cand := n.Mirror(v[0], v[1], v[2])
				if !isLeaf {
					cand = invertInvs(cand, deeper)
				}
				if idx, ok := seen[cand.sdagKey()]; ok {
					corr[i] = sdagCorrespondence{idx, v[0], v[1], v[2]}
					found = true
					break
				}
			}
			if !found {
				n0 := n
				if !isLeaf {
					n0 = invertInvs(n0, deeper)
				}
				idx := int32(len(unique))
				unique = append(unique, n0)
				seen[n0.sdagKey()] = idx
				corr[i] = sdagCorrespondence{idx, false, false, false}
			}
		}
	}

	ls.Levels[lvl] = unique
	return corr
}

// remapParentSDAG rewrites every child pointer of parent to its
// deduplicated target and ORs the recorded mirror flags into the
// parent's per-child mirror masks.
func remapParentSDAG(parent []Node, corr []sdagCorrespondence) {
	for i := range parent {
		n := &parent[i]
		for c := range uint8(8) {
			if !n.ExistsChildPointer(c) {
				continue
			}
			e := corr[n.Children[c]]
			n.Children[c] = e.idx
			if e.mx {
				n.MirrorX |= 1 << c
			}
			if e.my {
				n.MirrorY |= 1 << c
			}
			if e.mz {
				n.MirrorZ |= 1 << c
			}
		}
	}
}
