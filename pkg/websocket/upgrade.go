package websocket

import (
	"context"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"io"
	"strconv"
	"strings"

	"github.com/Garcia6l20/g6-web/pkg/httpwire"
)

// websocketGUID is the fixed GUID RFC 6455 §1.3 concatenates with the
// client's key to derive Sec-WebSocket-Accept.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

const defaultVersion = 13

// generateKey returns a randomly selected 16-byte value, Base64-encoded,
// for use as Sec-WebSocket-Key (RFC 6455 §4.1).
func generateKey() (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// acceptKey derives Sec-WebSocket-Accept from a client key (RFC 6455
// §4.2.2): the Base64-encoded SHA-1 hash of the key concatenated with the
// fixed GUID.
func acceptKey(key string) string {
	h := sha1.New()
	h.Write([]byte(key))
	h.Write([]byte(websocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func headerContainsToken(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}

// UpgradeClient performs the client side of the HTTP→WebSocket handshake
// on an already-connected HTTP session (spec §4.7, RFC 6455 §4.1): it
// sends the GET upgrade request, validates the 101 response, and returns
// an established WebSocket Session bound to the same transport.
func UpgradeClient(ctx context.Context, session *httpwire.Session, path string, extra *httpwire.Headers) (*Session, error) {
	key, err := generateKey()
	if err != nil {
		return nil, err
	}

	headers := httpwire.NewHeaders()
	if extra != nil {
		extra.Each(headers.Add)
	}
	headers.Set("Connection", "Upgrade")
	headers.Set("Upgrade", "websocket")
	headers.Set("Sec-WebSocket-Key", key)
	headers.Set("Sec-WebSocket-Version", strconv.Itoa(defaultVersion))

	resp, err := session.SendRequest(ctx, httpwire.MethodGet, path, headers, nil)
	if err != nil {
		return nil, err
	}
	if _, err := resp.RecvInto(ctx); err != nil {
		return nil, err
	}
	if resp.Status() != 101 {
		return nil, &httpwire.BadRequestError{Reason: "expected status 101, got " + strconv.Itoa(resp.Status())}
	}

	upgrade, _ := resp.Headers().Get("Upgrade")
	if !strings.EqualFold(upgrade, "websocket") {
		return nil, &httpwire.BadRequestError{Reason: "unexpected Upgrade header " + strconv.Quote(upgrade)}
	}
	connection, _ := resp.Headers().Get("Connection")
	if !headerContainsToken(connection, "Upgrade") {
		return nil, &httpwire.BadRequestError{Reason: "unexpected Connection header " + strconv.Quote(connection)}
	}
	accept, ok := resp.Headers().Get("Sec-WebSocket-Accept")
	want := acceptKey(key)
	if !ok || accept != want {
		return nil, &httpwire.BadRequestError{Reason: "unexpected Sec-WebSocket-Accept header " + strconv.Quote(accept)}
	}

	return NewSession(session.Transport(), RoleClient), nil
}

// UpgradeServer performs the server side of the HTTP→WebSocket handshake
// (spec §4.7): it receives the next request on session, validates it as a
// conforming upgrade request, replies 101, and returns an established
// WebSocket Session. On validation failure it replies 400 and returns the
// validation error; the caller should close the connection afterward.
func UpgradeServer(ctx context.Context, session *httpwire.Session) (*Session, error) {
	req, err := session.Recv(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := req.RecvInto(ctx); err != nil {
		return nil, err
	}

	if err := validateUpgradeRequest(req); err != nil {
		session.Send(ctx, 400, httpwire.NewHeaders(), nil)
		return nil, err
	}

	key, _ := req.Headers().Get("Sec-WebSocket-Key")
	headers := httpwire.NewHeaders()
	headers.Set("Upgrade", "websocket")
	headers.Set("Connection", "Upgrade")
	headers.Set("Sec-WebSocket-Accept", acceptKey(key))
	if err := session.Send(ctx, 101, headers, nil); err != nil {
		return nil, err
	}
	return NewSession(session.Transport(), RoleServer), nil
}

func validateUpgradeRequest(req *httpwire.Request) error {
	if req.Method() != httpwire.MethodGet {
		return &httpwire.BadRequestError{Reason: "upgrade request must use GET"}
	}
	connection, _ := req.Headers().Get("Connection")
	if !headerContainsToken(connection, "Upgrade") {
		return &httpwire.BadRequestError{Reason: "missing or invalid Connection header"}
	}
	upgrade, _ := req.Headers().Get("Upgrade")
	if !strings.EqualFold(upgrade, "websocket") {
		return &httpwire.BadRequestError{Reason: "missing or invalid Upgrade header"}
	}
	key, ok := req.Headers().Get("Sec-WebSocket-Key")
	if !ok || key == "" {
		return &httpwire.BadRequestError{Reason: "missing Sec-WebSocket-Key header"}
	}
	return nil
}
