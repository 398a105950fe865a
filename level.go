package svdag

// LevelStructure is an ordered list of per-level node arrays. Levels[0]
// holds exactly one root; every child index at level l refers into
// Levels[l+1]. Edges are strictly top-down and acyclic.
type LevelStructure struct {
	Levels [][]Node

	// Mirrored records whether this structure's Node.MirrorX/Y/Z and
	// InvariantMask fields are meaningful (set after SDAG compression).
	Mirrored bool
}

// NumLevels returns the number of levels.
func (ls *LevelStructure) NumLevels() int { return len(ls.Levels) }

// NNodes returns the total logical node count, the sum of every level's
// size.
func (ls *LevelStructure) NNodes() int {
	n := 0
	for _, lvl := range ls.Levels {
		n += len(lvl)
	}
	return n
}

// Root returns the single level-0 root node.
func (ls *LevelStructure) Root() Node {
	return ls.Levels[0][0]
}

// cleanEmptyNodes sweeps from the deepest level upward, clearing any
// parent's child bit and pointer that refers to a node with an empty
// ChildMask at the level below. One upward sweep suffices because
// emptiness can only ever propagate strictly upward.
func (ls *LevelStructure) cleanEmptyNodes() {
	for lvl := len(ls.Levels) - 1; lvl >= 1; lvl-- {
		empty := make(map[int32]bool)
		for i, n := range ls.Levels[lvl] {
			if n.ChildMask == 0 {
				empty[int32(i)] = true
			}
		}
		if len(empty) == 0 {
			continue
		}

		parent := ls.Levels[lvl-1]
		for i := range parent {
			n := &parent[i]
			for c := range uint8(8) {
				if n.ExistsChild(c) && empty[n.Children[c]] {
					n.UnsetChildBit(c)
				}
			}
		}
	}
}
