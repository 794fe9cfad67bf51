package websocket

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/Garcia6l20/g6-web/pkg/transport"
)

// Role distinguishes which side of a WebSocket connection a Session plays;
// the masking rule differs by role (RFC 6455 §5.1, spec §4.6): a client
// MUST mask every frame it sends, a server MUST NOT.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

const sessionRecvChunk = 4096

// Session is a live, established WebSocket connection (post-handshake),
// in either role (spec §4.5-§4.8). It owns its transport exclusively.
type Session struct {
	t    transport.Transport
	role Role

	readBuf []byte

	closeSent     bool
	closeReceived bool
	status        StatusCode
}

// NewSession wraps an upgraded transport as a WebSocket session.
func NewSession(t transport.Transport, role Role) *Session {
	return &Session{t: t, role: role, status: StatusUndefined}
}

// Status returns the session's close status: StatusUndefined until a
// CLOSE frame has been sent or received, the close status code
// afterward, or StatusAbnormalClosure if the transport dropped without a
// close handshake (spec §4.8).
func (s *Session) Status() StatusCode { return s.status }

func (s *Session) isServer() bool { return s.role == RoleServer }

// recvExact returns exactly n bytes, buffering any surplus already read
// from the transport between calls (spec §4.5: frames may arrive split
// across arbitrarily many transport reads).
func (s *Session) recvExact(ctx context.Context, n int) ([]byte, error) {
	for len(s.readBuf) < n {
		tmp := make([]byte, sessionRecvChunk)
		got, err := s.t.Recv(ctx, tmp)
		if err != nil {
			return nil, err
		}
		if got == 0 {
			return nil, &transportClosedError{}
		}
		s.readBuf = append(s.readBuf, tmp[:got]...)
	}
	out := s.readBuf[:n]
	s.readBuf = s.readBuf[n:]
	return out, nil
}

type transportClosedError struct{}

func (e *transportClosedError) Error() string { return "websocket: transport closed mid-frame" }

// recvHeaderPrefix reads the fixed 2-byte header prefix that starts every
// frame. A 0-byte transport read at this exact point (no bytes of a new
// frame pending) is a clean peer EOF rather than a truncated frame, so it
// is reported via eof rather than an error (spec §4.5 "Header receive":
// "if 0 bytes returned, synthesize a CLOSE header with empty payload").
func (s *Session) recvHeaderPrefix(ctx context.Context) (prefix []byte, eof bool, err error) {
	for len(s.readBuf) < 2 {
		tmp := make([]byte, sessionRecvChunk)
		got, err := s.t.Recv(ctx, tmp)
		if err != nil {
			return nil, false, err
		}
		if got == 0 {
			if len(s.readBuf) == 0 {
				return nil, true, nil
			}
			return nil, false, &transportClosedError{}
		}
		s.readBuf = append(s.readBuf, tmp[:got]...)
	}
	out := s.readBuf[:2]
	s.readBuf = s.readBuf[2:]
	return out, false, nil
}

// recvFrame reads and fully decodes one frame, unmasking its payload when
// masked (spec §4.5, §4.6). A clean peer EOF before any header bytes
// arrive is reported as a synthetic, FIN=1 CLOSE frame with an empty
// payload, so it flows through the same handleClose path as a real close
// frame (spec §4.5, §4.8).
func (s *Session) recvFrame(ctx context.Context) (frameHeader, []byte, error) {
	prefix, eof, err := s.recvHeaderPrefix(ctx)
	if err != nil {
		return frameHeader{}, nil, err
	}
	if eof {
		return frameHeader{fin: true, opcode: OpcodeClose}, nil, nil
	}
	total := headerSizeFromFirstTwo(prefix[1])
	rest, err := s.recvExact(ctx, total-2)
	if err != nil {
		return frameHeader{}, nil, err
	}
	headerBytes := append(append([]byte{}, prefix...), rest...)
	h, consumed, err := decodeFrameHeader(headerBytes, s.isServer())
	if err != nil {
		return frameHeader{}, nil, err
	}
	if consumed != total {
		return frameHeader{}, nil, &ProtocolError{Reason: "inconsistent frame header length"}
	}
	payload, err := s.recvExact(ctx, int(h.payloadLength))
	if err != nil {
		return frameHeader{}, nil, err
	}
	if h.masked {
		applyMask(payload, h.maskingKey, 0)
	}
	return h, payload, nil
}

func headerSizeFromFirstTwo(b1 byte) int {
	lengthField := b1 & 0x7f
	n := 2
	switch {
	case lengthField <= 125:
	case lengthField == 126:
		n += 2
	default:
		n += 8
	}
	if b1&0x80 != 0 {
		n += 4
	}
	return n
}

// maskChunkSize bounds the scratch buffer sendFrame masks a payload through
// (spec §4.6, §9): masking streams the payload in chunks of at most this
// many bytes rather than ever holding a masked copy of the whole payload.
const maskChunkSize = 128

// sendFrame encodes and writes one frame, masking the payload when this
// session is the client (RFC 6455 §5.1). The header is sent as its own
// write; a masked payload is then streamed through a bounded scratch
// buffer so a large frame costs O(1) extra memory, not O(payload).
func (s *Session) sendFrame(ctx context.Context, fin bool, opcode Opcode, payload []byte) error {
	h := frameHeader{
		fin:           fin,
		opcode:        opcode,
		masked:        s.role == RoleClient,
		payloadLength: uint64(len(payload)),
	}
	if h.masked {
		if _, err := io.ReadFull(rand.Reader, h.maskingKey[:]); err != nil {
			return err
		}
	}
	headerBuf := make([]byte, 14)
	n := encodeFrameHeader(h, headerBuf)
	if err := s.sendAll(ctx, headerBuf[:n]); err != nil {
		return err
	}
	if !h.masked {
		return s.sendAll(ctx, payload)
	}

	var scratch [maskChunkSize]byte
	for off := 0; off < len(payload); off += maskChunkSize {
		end := off + maskChunkSize
		if end > len(payload) {
			end = len(payload)
		}
		chunk := scratch[:end-off]
		copy(chunk, payload[off:end])
		applyMask(chunk, h.maskingKey, off)
		if err := s.sendAll(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) sendAll(ctx context.Context, buf []byte) error {
	for len(buf) > 0 {
		n, err := s.t.Send(ctx, buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return &transportClosedError{}
		}
		buf = buf[n:]
	}
	return nil
}

// SendText sends a complete, unfragmented text message.
func (s *Session) SendText(ctx context.Context, data []byte) error {
	return s.sendFrame(ctx, true, OpcodeText, data)
}

// SendBinary sends a complete, unfragmented binary message.
func (s *Session) SendBinary(ctx context.Context, data []byte) error {
	return s.sendFrame(ctx, true, OpcodeBinary, data)
}

// SendPing sends a ping control frame with the given application data
// (at most 125 bytes).
func (s *Session) SendPing(ctx context.Context, payload []byte) error {
	if len(payload) > maxControlPayload {
		return &ProtocolError{Reason: "ping payload exceeds 125 bytes"}
	}
	return s.sendFrame(ctx, true, OpcodePing, payload)
}

func (s *Session) sendPong(ctx context.Context, payload []byte) error {
	return s.sendFrame(ctx, true, OpcodePong, payload)
}

// Sender streams a single logical message as a sequence of frames (spec
// §4.6 "send job"): the first frame carries the real opcode, subsequent
// frames are continuations, and Close marks the final one with FIN=1.
// Close is idempotent, mirroring httpwire.ChunkedStream.
type Sender struct {
	session *Session
	opcode  Opcode
	started bool
	closed  bool
}

// NewSender begins a fragmented message of the given type (OpcodeText or
// OpcodeBinary; control frames cannot be fragmented per RFC 6455 §5.5).
func (s *Session) NewSender(opcode Opcode) *Sender {
	return &Sender{session: s, opcode: opcode}
}

// Send writes one fragment. It is not the final fragment until Close is
// called.
func (sn *Sender) Send(ctx context.Context, chunk []byte) error {
	if sn.closed {
		return nil
	}
	opcode := sn.opcode
	if sn.started {
		opcode = OpcodeContinuation
	}
	sn.started = true
	return sn.session.sendFrame(ctx, false, opcode, chunk)
}

// Close sends the final fragment (possibly empty) with FIN=1. A second
// call is a no-op.
func (sn *Sender) Close(ctx context.Context) error {
	if sn.closed {
		return nil
	}
	sn.closed = true
	opcode := sn.opcode
	if sn.started {
		opcode = OpcodeContinuation
	}
	return sn.session.sendFrame(ctx, true, opcode, nil)
}

// CloseError reports that the peer closed the WebSocket connection; it is
// returned from Recv once a CLOSE frame has been processed (spec §4.8).
type CloseError struct {
	Status StatusCode
	Reason string
}

func (e *CloseError) Error() string { return "websocket: connection closed: " + e.Reason }

// Recv returns the next complete data message (text or binary), handling
// fragmentation reassembly and control frames transparently: PING is
// auto-replied with PONG, PONG is drained silently, and CLOSE mirrors the
// close frame back (unless one was already sent) and returns a
// *CloseError (spec §4.7, §4.8, RFC 6455 §5.5).
func (s *Session) Recv(ctx context.Context) (Opcode, []byte, error) {
	var msg []byte
	var msgOpcode Opcode
	fragmenting := false
	for {
		h, payload, err := s.recvFrame(ctx)
		if err != nil {
			s.status = StatusAbnormalClosure
			return 0, nil, err
		}
		switch h.opcode {
		case OpcodePing:
			if err := s.sendPong(ctx, payload); err != nil {
				return 0, nil, err
			}
			continue
		case OpcodePong:
			continue
		case OpcodeClose:
			return 0, nil, s.handleClose(ctx, payload)
		case OpcodeContinuation:
			if !fragmenting {
				return 0, nil, &ProtocolError{Reason: "continuation frame without a preceding fragment"}
			}
			msg = append(msg, payload...)
		default:
			if fragmenting {
				return 0, nil, &ProtocolError{Reason: "new message started before previous fragment finished"}
			}
			msgOpcode = h.opcode
			msg = append(msg, payload...)
			fragmenting = !h.fin
		}
		if h.fin {
			return msgOpcode, msg, nil
		}
	}
}

// handleClose implements the close handshake: decode the peer's status
// (spec §4.8, RFC 6455 §7.4), mirror a CLOSE frame back exactly once, and
// record the final status.
func (s *Session) handleClose(ctx context.Context, payload []byte) error {
	status := StatusAbnormalClosure
	reason := ""
	if len(payload) >= 2 {
		status = StatusCode(binary.BigEndian.Uint16(payload[0:2]))
		reason = string(payload[2:])
	} else if len(payload) == 1 {
		return &ProtocolError{Reason: "close frame has a 1-byte payload"}
	}
	s.closeReceived = true
	s.status = status
	if !s.closeSent {
		s.Close(ctx, status, reason)
	}
	return &CloseError{Status: status, Reason: reason}
}

// Close sends a CLOSE frame with the given status and reason. It is
// idempotent: a second call is a no-op (spec §4.8). The caller is
// responsible for closing the underlying transport afterward.
func (s *Session) Close(ctx context.Context, status StatusCode, reason string) error {
	if s.closeSent {
		return nil
	}
	s.closeSent = true
	if s.status == StatusUndefined {
		s.status = status
	}
	payload := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(payload[0:2], uint16(status))
	copy(payload[2:], reason)
	return s.sendFrame(ctx, true, OpcodeClose, payload)
}
