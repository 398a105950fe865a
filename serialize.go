package svdag

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/sparsevoxel/svdag/internal/geom"
	"github.com/sparsevoxel/svdag/internal/octant"
)

// Serializer persists an Encoded word stream bit-exactly, little-endian
// by default regardless of host architecture.
type Serializer struct {
	// LegacyHostNative, when true, reads and writes the header and D
	// array in the host's native byte order instead of little-endian.
	// It exists purely for bit-exact compatibility with artifacts
	// produced before little-endian was made canonical; big-endian
	// hosts asking for the canonical (non-legacy) format are otherwise
	// fully portable.
	LegacyHostNative bool
}

func (s Serializer) order() binary.ByteOrder {
	if s.LegacyHostNative {
		return binary.NativeEndian
	}
	return binary.LittleEndian
}

// Save writes e to w: sceneBBox.min/max (24B) | rootSide f32 | levels u32 |
// nNodes u32 | firstLeafPtr u32 | wordCount u32 | D[0..wordCount) u32.
func (s Serializer) Save(w io.Writer, e Encoded) error {
	order := s.order()

	header := make([]byte, 24+4+4+4+4+4)
	putVec3(header[0:12], e.RootBBox.Min, order)
	putVec3(header[12:24], e.RootBBox.Max, order)
	order.PutUint32(header[24:28], math.Float32bits(e.RootSide))
	order.PutUint32(header[28:32], e.Levels)
	order.PutUint32(header[32:36], e.NNodes)
	order.PutUint32(header[36:40], e.FirstLeafPtr)
	order.PutUint32(header[40:44], uint32(len(e.D)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("svdag: writing header: %w", ErrLoadFailure)
	}

	body := make([]byte, 4*len(e.D))
	for i, word := range e.D {
		order.PutUint32(body[4*i:4*i+4], word)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("svdag: writing word stream: %w", ErrLoadFailure)
	}

	return nil
}

// Load reads an Encoded previously written by Save. mirrored must be
// supplied by the caller: the on-disk format carries no flag
// distinguishing a mirrored word layout from an unmirrored one, since
// that choice is encoded entirely in how each word's upper bits are
// interpreted, not in any separate header bit.
func (s Serializer) Load(r io.Reader, mirrored bool) (Encoded, error) {
	order := s.order()

	header := make([]byte, 24+4+4+4+4+4)
	if _, err := io.ReadFull(r, header); err != nil {
		return Encoded{}, fmt.Errorf("svdag: reading header: %w", ErrLoadFailure)
	}

	var e Encoded
	e.RootBBox.Min = getVec3(header[0:12], order)
	e.RootBBox.Max = getVec3(header[12:24], order)
	e.RootSide = math.Float32frombits(order.Uint32(header[24:28]))
	e.Levels = order.Uint32(header[28:32])
	e.NNodes = order.Uint32(header[32:36])
	e.FirstLeafPtr = order.Uint32(header[36:40])
	wordCount := order.Uint32(header[40:44])
	e.Mirrored = mirrored

	body := make([]byte, 4*int(wordCount))
	if _, err := io.ReadFull(r, body); err != nil {
		return Encoded{}, fmt.Errorf("svdag: reading word stream (want %d words): %w", wordCount, ErrLoadFailure)
	}

	e.D = make([]uint32, wordCount)
	for i := range e.D {
		e.D[i] = order.Uint32(body[4*i : 4*i+4])
	}

	return e, nil
}

// CheckIntegrity validates that every child pointer in e.D falls within
// range and that firstLeafPtr/wordCount are mutually consistent. It is
// never run on the hot traversal path: callers opt in after a Load from
// an untrusted source.
func (s Serializer) CheckIntegrity(e Encoded) error {
	n := uint32(len(e.D))
	if e.FirstLeafPtr > n {
		return fmt.Errorf("svdag: firstLeafPtr %d exceeds word count %d: %w", e.FirstLeafPtr, n, ErrCorruptEncoding)
	}

	var ptr uint32
	for ptr < e.FirstLeafPtr {
		mask := uint8(e.D[ptr])
		want := 1 + uint32(octant.Count(mask))
		if ptr+want > n {
			return fmt.Errorf("svdag: inner node at word %d overruns stream: %w", ptr, ErrCorruptEncoding)
		}
		for i := uint32(1); i < want; i++ {
			child := e.D[ptr+i]
			if child >= n {
				return fmt.Errorf("svdag: child pointer %d at word %d out of range: %w", child, ptr+i, ErrCorruptEncoding)
			}
		}
		ptr += want
	}
	if ptr != e.FirstLeafPtr {
		return fmt.Errorf("svdag: inner region does not end exactly at firstLeafPtr: %w", ErrCorruptEncoding)
	}

	return nil
}

func putVec3(b []byte, v geom.Vec3, order binary.ByteOrder) {
	order.PutUint32(b[0:4], math.Float32bits(float32(v.X)))
	order.PutUint32(b[4:8], math.Float32bits(float32(v.Y)))
	order.PutUint32(b[8:12], math.Float32bits(float32(v.Z)))
}

func getVec3(b []byte, order binary.ByteOrder) geom.Vec3 {
	return geom.Vec3{
		X: float64(math.Float32frombits(order.Uint32(b[0:4]))),
		Y: float64(math.Float32frombits(order.Uint32(b[4:8]))),
		Z: float64(math.Float32frombits(order.Uint32(b[8:12]))),
	}
}
