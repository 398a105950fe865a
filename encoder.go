package svdag

import (
	"fmt"

	"github.com/sparsevoxel/svdag/internal/geom"
)

// EncodeOptions configures a single Encode call.
type EncodeOptions struct {
	// Mirrored packs each inner node's SDAG mirror masks into the upper
	// 24 bits of its word (8 bits childMask + 8 MirrorX + 8 MirrorY +
	// 8 MirrorZ == 32 bits exactly). Requires ls.Mirrored.
	Mirrored bool
}

// Encoded is the flat 32-bit word stream produced by Encoder.Encode,
// plus the header fields needed to interpret it.
type Encoded struct {
	D            []uint32
	FirstLeafPtr uint32
	NNodes       uint32
	Levels       uint32
	Mirrored     bool
	RootBBox     geom.BBox
	RootSide     float32
}

// Encoder packs a level-structured DAG (or SDAG) into a single
// contiguous 32-bit word stream with inline child pointers.
type Encoder struct{}

// Encode computes truePtrs in a first pass, then emits D in a second
// pass: the first pass assigns every node its final word offset before
// any pointer can be written, since a parent's pointer words may need
// the offset of a child that hasn't been visited yet.
func (Encoder) Encode(ls *LevelStructure, rootBBox geom.BBox, opts EncodeOptions) (Encoded, error) {
	if opts.Mirrored && !ls.Mirrored {
		return Encoded{}, fmt.Errorf("encode: mirrored output requested on a non-SDAG structure: %w", ErrWrongStateTransform)
	}

	L := len(ls.Levels)
	truePtrs := make([][]uint32, L)

	var counter uint32
	var firstLeafPtr uint32
	var nNodes uint32

	for l, lvl := range ls.Levels {
		isLeaf := l == L-1
		truePtrs[l] = make([]uint32, len(lvl))
		if l == L-1 {
			firstLeafPtr = counter
		}
		for i, n := range lvl {
			truePtrs[l][i] = counter
			nNodes++
			if isLeaf {
				counter++
			} else {
				counter += uint32(1 + n.NumChildren())
			}
		}
	}
	wordCount := counter

	D := make([]uint32, wordCount)
	var wp uint32
	for l, lvl := range ls.Levels {
		isLeaf := l == L-1
		for _, n := range lvl {
			word := uint32(n.ChildMask)
			if opts.Mirrored {
				word |= uint32(n.MirrorX) << 8
				word |= uint32(n.MirrorY) << 16
				word |= uint32(n.MirrorZ) << 24
			}
			D[wp] = word
			wp++

			if isLeaf {
				continue
			}

			for c := int8(7); c >= 0; c-- {
				cc := uint8(c)
				if !n.ExistsChild(cc) {
					continue
				}
				childLevel := int(n.ChildLevels[cc])
				childIdx := n.Children[cc]
				D[wp] = truePtrs[childLevel][childIdx]
				wp++
			}
		}
	}

	return Encoded{
		D:            D,
		FirstLeafPtr: firstLeafPtr,
		NNodes:       nNodes,
		Levels:       uint32(L),
		Mirrored:     opts.Mirrored,
		RootBBox:     rootBBox,
		RootSide:     float32(rootBBox.HalfSide() * 2),
	}, nil
}
