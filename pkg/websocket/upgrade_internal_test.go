package websocket

import "testing"

// TestAcceptKeyKnownVector checks acceptKey against the worked example from
// RFC 6455 §1.3.
func TestAcceptKeyKnownVector(t *testing.T) {
	const key = "dGhlIHNhbXBsZSBub25jZQ=="
	const want = "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got := acceptKey(key); got != want {
		t.Errorf("acceptKey(%q) = %q, want %q", key, got, want)
	}
}
