package binary

import (
	"testing"

	"github.com/wippyai/ion-engine/errors"
)

func TestCursorReadUint(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint64
	}{
		{"zero", []byte{0x00}, 0},
		{"one byte max", []byte{0x7F}, 127},
		{"two bytes", []byte{0x80, 0x01}, 128},
		{"multi byte", []byte{0xE5, 0x8E, 0x26}, 624485},
		{"max uint64", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}, ^uint64(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cursor{buf: tt.in}
			got, err := c.readUint()
			if err != nil {
				t.Fatalf("readUint: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
			if c.remaining() != 0 {
				t.Errorf("cursor left %d bytes unread", c.remaining())
			}
		})
	}
}

func TestCursorReadInt(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want int64
	}{
		{"zero", []byte{0x00}, 0},
		{"positive small", []byte{0x3F}, 63},
		{"positive boundary", []byte{0xC0, 0x00}, 64},
		{"negative one", []byte{0x7F}, -1},
		{"negative boundary", []byte{0x40}, -64},
		{"positive multi", []byte{0xAC, 0x02}, 300},
		{"negative multi", []byte{0xD4, 0x7D}, -300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cursor{buf: tt.in}
			got, err := c.readInt()
			if err != nil {
				t.Fatalf("readInt: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCursorLEBOverflow(t *testing.T) {
	in := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	c := cursor{buf: in}
	if _, err := c.readUint(); !errors.IsKind(err, errors.KindOverflow) {
		t.Fatalf("readUint: got %v, want overflow error", err)
	}
	c = cursor{buf: in}
	if _, err := c.readInt(); !errors.IsKind(err, errors.KindOverflow) {
		t.Fatalf("readInt: got %v, want overflow error", err)
	}
}

func TestCursorLEBTruncated(t *testing.T) {
	c := cursor{buf: []byte{0x80}}
	if _, err := c.readUint(); !errors.IsIncomplete(err) {
		t.Fatalf("got %v, want incomplete", err)
	}
}

func TestCursorReadLenBounds(t *testing.T) {
	// Length claims 10 bytes but only 2 follow.
	c := cursor{buf: []byte{0x0A, 0x61, 0x62}}
	if _, err := c.readLen(); !errors.IsIncomplete(err) {
		t.Fatalf("got %v, want incomplete", err)
	}
}

func TestCursorReadTextRejectsBadUTF8(t *testing.T) {
	c := cursor{buf: []byte{0x02, 0xFF, 0xFE}}
	if _, err := c.readText(); !errors.IsKind(err, errors.KindInvalidUTF8) {
		t.Fatalf("got %v, want invalid-utf8 error", err)
	}
}

func TestCursorSubIsIndependent(t *testing.T) {
	c := cursor{buf: []byte{0x01, 0x02, 0x03, 0x04}}
	sub, err := c.sub(2)
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	if c.pos != 2 {
		t.Fatalf("parent pos: got %d, want 2", c.pos)
	}
	b, err := sub.readByte()
	if err != nil || b != 0x01 {
		t.Fatalf("sub read: got %#x err=%v", b, err)
	}
	if sub.remaining() != 1 {
		t.Fatalf("sub remaining: got %d, want 1", sub.remaining())
	}
}
