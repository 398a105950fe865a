package svdag

// DAGCompressor merges bit-identical subtrees of a LevelStructure
// bottom-up into a Directed Acyclic Graph.
type DAGCompressor struct{}

// ToDAG compresses ls in place, level by level from the deepest level
// upward, and returns per-level before/after statistics. It is
// idempotent: running it twice on an already-compressed structure leaves
// it unchanged (every level already has no duplicates, so step 1 of the
// algorithm just finds the identity correspondence).
func (DAGCompressor) ToDAG(ls *LevelStructure) DedupStats {
	L := len(ls.Levels)
	stats := DedupStats{
		BeforePerLevel: make([]int, L),
		AfterPerLevel:  make([]int, L),
	}
	for l := range ls.Levels {
		stats.BeforePerLevel[l] = len(ls.Levels[l])
	}

	for lvl := L - 1; lvl >= 1; lvl-- {
		correspondences := dedupLevel(ls, lvl)
		remapParent(ls.Levels[lvl-1], correspondences)
	}

	for l := range ls.Levels {
		stats.AfterPerLevel[l] = len(ls.Levels[l])
	}
	return stats
}

// dedupLevel replaces ls.Levels[lvl] with its unique nodes in first-seen
// order and returns, for every original index, the new index of its
// unique representative. Nodes with an empty ChildMask are skipped
// entirely: cleanEmptyNodes has already made them unreachable, so they
// retain no correspondence.
func dedupLevel(ls *LevelStructure, lvl int) []int32 {
	old := ls.Levels[lvl]
	isLeaf := lvl == len(ls.Levels)-1

	correspondences := make([]int32, len(old))
	unique := make([]Node, 0, len(old))

	if isLeaf {
		seen := make(map[leafKey]int32, len(old))
		for i, n := range old {
			if n.ChildMask == 0 {
				correspondences[i] = NullNode
				continue
			}
			k := n.leafKey()
			idx, ok := seen[k]
			if !ok {
				idx = int32(len(unique))
				unique = append(unique, n)
				seen[k] = idx
			}
			correspondences[i] = idx
		}
	} else {
		seen := make(map[dagKey]int32, len(old))
		for i, n := range old {
			if n.ChildMask == 0 {
				correspondences[i] = NullNode
				continue
			}
			k := n.dagKey()
			idx, ok := seen[k]
			if !ok {
				idx = int32(len(unique))
				unique = append(unique, n)
				seen[k] = idx
			}
			correspondences[i] = idx
		}
	}

	ls.Levels[lvl] = unique
	return correspondences
}

// remapParent rewrites every child pointer in a level to the new index
// of its (now deduplicated) target.
func remapParent(parent []Node, correspondences []int32) {
	for i := range parent {
		n := &parent[i]
		for c := range uint8(8) {
			if n.ExistsChildPointer(c) {
				n.Children[c] = correspondences[n.Children[c]]
			}
		}
	}
}
