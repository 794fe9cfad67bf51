package websocket

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecodeFrameHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		desc string
		h    frameHeader
	}{
		{"short unmasked", frameHeader{fin: true, opcode: OpcodeText, payloadLength: 5}},
		{"short masked", frameHeader{fin: true, opcode: OpcodeBinary, masked: true, payloadLength: 5, maskingKey: [4]byte{1, 2, 3, 4}}},
		{"extended 16-bit", frameHeader{fin: true, opcode: OpcodeBinary, payloadLength: 300}},
		{"extended 64-bit", frameHeader{fin: false, opcode: OpcodeContinuation, payloadLength: 1 << 20}},
	}
	for _, tc := range tests {
		buf := make([]byte, 14)
		n := encodeFrameHeader(tc.h, buf)

		isServer := tc.h.masked
		got, consumed, err := decodeFrameHeader(buf[:n], isServer)
		if err != nil {
			t.Fatalf("%s: decodeFrameHeader(); unexpected error: %v", tc.desc, err)
		}
		if consumed != n {
			t.Errorf("%s: consumed = %d, want %d", tc.desc, consumed, n)
		}
		if diff := cmp.Diff(tc.h, got, cmp.AllowUnexported(frameHeader{})); diff != "" {
			t.Errorf("%s: round-trip mismatch (-want +got):\n%s", tc.desc, diff)
		}
	}
}

func TestDecodeFrameHeaderRejectsReservedBits(t *testing.T) {
	buf := []byte{0x70, 0x00}
	if _, _, err := decodeFrameHeader(buf, true); err == nil {
		t.Fatal("decodeFrameHeader() with reserved bits set; want error, got nil")
	}
}

func TestDecodeFrameHeaderRejectsUnknownOpcode(t *testing.T) {
	buf := []byte{0x8f, 0x00}
	if _, _, err := decodeFrameHeader(buf, true); err == nil {
		t.Fatal("decodeFrameHeader() with unknown opcode; want error, got nil")
	}
}

func TestDecodeFrameHeaderRejectsWrongMaskDirection(t *testing.T) {
	// A server decoding an unmasked frame is a protocol violation.
	if _, _, err := decodeFrameHeader([]byte{0x81, 0x00}, true); err == nil {
		t.Fatal("decodeFrameHeader(isServer=true) on unmasked frame; want error, got nil")
	}
	// A client decoding a masked frame is a protocol violation.
	if _, _, err := decodeFrameHeader([]byte{0x81, 0x80, 0, 0, 0, 0}, false); err == nil {
		t.Fatal("decodeFrameHeader(isServer=false) on masked frame; want error, got nil")
	}
}

func TestDecodeFrameHeaderRejectsOversizedControlFrame(t *testing.T) {
	buf := []byte{0x89, 126, 0, 200} // PING, 200-byte payload via extended length
	if _, _, err := decodeFrameHeader(buf, false); err == nil {
		t.Fatal("decodeFrameHeader() with oversized control frame; want error, got nil")
	}
}

func TestDecodeFrameHeaderRejectsFragmentedControlFrame(t *testing.T) {
	buf := []byte{0x09, 0x00} // PING, FIN=0
	if _, _, err := decodeFrameHeader(buf, false); err == nil {
		t.Fatal("decodeFrameHeader() with fragmented control frame; want error, got nil")
	}
}

func TestDecodeFrameHeaderNeedsMoreData(t *testing.T) {
	h, n, err := decodeFrameHeader([]byte{0x81}, true)
	if err != nil {
		t.Fatalf("decodeFrameHeader() with a single byte; unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("decodeFrameHeader() with insufficient data = %+v, %d, want n=0", h, n)
	}
}

func TestApplyMaskRoundTrip(t *testing.T) {
	key := [4]byte{0x11, 0x22, 0x33, 0x44}
	data := []byte("hello, websocket")
	original := append([]byte{}, data...)

	applyMask(data, key, 0)
	if cmp.Equal(data, original) {
		t.Fatal("applyMask() left data unchanged")
	}
	applyMask(data, key, 0)
	if diff := cmp.Diff(original, data); diff != "" {
		t.Errorf("applyMask() twice did not recover the original (-want +got):\n%s", diff)
	}
}
