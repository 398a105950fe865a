package svdag

import (
	"bytes"
	"errors"
	"testing"
)

func sampleEncoded() Encoded {
	return Encoded{
		D:            []uint32{0b0000_0011, 3, 4, 0b1111_0000, 0b0000_1111},
		FirstLeafPtr: 3,
		NNodes:       3,
		Levels:       2,
		Mirrored:     false,
		RootBBox:     unitBBox(),
		RootSide:     2,
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	for _, legacy := range []bool{false, true} {
		want := sampleEncoded()
		ser := Serializer{LegacyHostNative: legacy}

		var buf bytes.Buffer
		if err := ser.Save(&buf, want); err != nil {
			t.Fatalf("legacy=%v: Save failed: %v", legacy, err)
		}

		got, err := ser.Load(&buf, want.Mirrored)
		if err != nil {
			t.Fatalf("legacy=%v: Load failed: %v", legacy, err)
		}

		if got.Levels != want.Levels || got.NNodes != want.NNodes || got.FirstLeafPtr != want.FirstLeafPtr {
			t.Errorf("legacy=%v: header mismatch: got %+v, want %+v", legacy, got, want)
		}
		if got.RootSide != want.RootSide {
			t.Errorf("legacy=%v: RootSide = %v, want %v", legacy, got.RootSide, want.RootSide)
		}
		if got.RootBBox != want.RootBBox {
			t.Errorf("legacy=%v: RootBBox = %+v, want %+v", legacy, got.RootBBox, want.RootBBox)
		}
		if len(got.D) != len(want.D) {
			t.Fatalf("legacy=%v: len(D) = %d, want %d", legacy, len(got.D), len(want.D))
		}
		for i := range want.D {
			if got.D[i] != want.D[i] {
				t.Errorf("legacy=%v: D[%d] = %d, want %d", legacy, i, got.D[i], want.D[i])
			}
		}
	}
}

func TestSerializeLoadCarriesMirroredFlag(t *testing.T) {
	want := sampleEncoded()
	var buf bytes.Buffer
	if err := (Serializer{}).Save(&buf, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := (Serializer{}).Load(&buf, true)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !got.Mirrored {
		t.Error("Load should set Mirrored from the caller-supplied flag")
	}
}

func TestCheckIntegrityAcceptsWellFormedStream(t *testing.T) {
	e := sampleEncoded()
	if err := (Serializer{}).CheckIntegrity(e); err != nil {
		t.Errorf("CheckIntegrity rejected a well-formed stream: %v", err)
	}
}

func TestCheckIntegrityCatchesOutOfRangePointer(t *testing.T) {
	e := sampleEncoded()
	e.D[1] = 99 // child pointer far beyond len(D)

	err := (Serializer{}).CheckIntegrity(e)
	if err == nil {
		t.Fatal("expected an error for an out-of-range child pointer")
	}
	if !errors.Is(err, ErrCorruptEncoding) {
		t.Errorf("error = %v, want wrapping ErrCorruptEncoding", err)
	}
}

func TestCheckIntegrityCatchesMisalignedFirstLeafPtr(t *testing.T) {
	e := sampleEncoded()
	e.FirstLeafPtr = 2 // doesn't land on an inner-node boundary

	err := (Serializer{}).CheckIntegrity(e)
	if !errors.Is(err, ErrCorruptEncoding) {
		t.Errorf("error = %v, want wrapping ErrCorruptEncoding", err)
	}
}

func TestCheckIntegrityCatchesFirstLeafPtrOverrun(t *testing.T) {
	e := sampleEncoded()
	e.FirstLeafPtr = uint32(len(e.D)) + 1

	err := (Serializer{}).CheckIntegrity(e)
	if !errors.Is(err, ErrCorruptEncoding) {
		t.Errorf("error = %v, want wrapping ErrCorruptEncoding", err)
	}
}
