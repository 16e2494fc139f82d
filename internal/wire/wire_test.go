package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func mustDecodeValue(t *testing.T, b []byte) []byte {
	t.Helper()
	p, err := DecodeValue(b)
	if err != nil {
		t.Fatalf("DecodeValue error: %v", err)
	}
	return p
}

func TestValueRTEmptyAndNonEmpty(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("hello"),
		{0, 1, 2, 3, 4},
		[]byte("null"),
	}
	for _, payload := range cases {
		enc := EncodeValue(payload)
		p := mustDecodeValue(t, enc)
		if !bytes.Equal(p, payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, payload)
		}
	}
}

func TestValueRejectsTrailingBytes(t *testing.T) {
	enc := EncodeValue([]byte("x"))
	enc = append(enc, 0xDE, 0xAD)
	if _, err := DecodeValue(enc); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on trailing bytes, got %v", err)
	}
}

func TestValueCorruptHeadersAndLengths(t *testing.T) {
	good := EncodeValue([]byte("abc"))

	t.Run("short", func(t *testing.T) {
		if _, err := DecodeValue(good[:5]); err == nil {
			t.Fatalf("expected error for short frame")
		}
	})

	t.Run("bad_magic", func(t *testing.T) {
		b := append([]byte(nil), good...)
		b[0] = 'X'
		if _, err := DecodeValue(b); err == nil {
			t.Fatalf("expected error for bad magic")
		}
	})

	t.Run("bad_version", func(t *testing.T) {
		b := append([]byte(nil), good...)
		b[4] = 99
		if _, err := DecodeValue(b); err == nil {
			t.Fatalf("expected error for bad version")
		}
	})

	t.Run("bad_kind", func(t *testing.T) {
		b := append([]byte(nil), good...)
		b[5] = 2
		if _, err := DecodeValue(b); err == nil {
			t.Fatalf("expected error for bad kind")
		}
	})

	t.Run("length_overflow", func(t *testing.T) {
		b := append([]byte(nil), good...)
		binary.BigEndian.PutUint32(b[6:10], ^uint32(0))
		if _, err := DecodeValue(b); err == nil {
			t.Fatalf("expected error for oversized vlen")
		}
	})

	t.Run("truncated_payload", func(t *testing.T) {
		if _, err := DecodeValue(good[:len(good)-1]); err == nil {
			t.Fatalf("expected error for truncated payload")
		}
	})

	t.Run("plain_text", func(t *testing.T) {
		if _, err := DecodeValue([]byte("not-wire-format")); err == nil {
			t.Fatalf("expected error for foreign bytes")
		}
	})
}
