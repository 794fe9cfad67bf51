// Package httpwire implements the HTTP/1.1 parsing, composition, session,
// and routing layers of the protocol engine (spec §4.1-§4.4, §4.9).
package httpwire

import (
	"context"

	"github.com/Garcia6l20/g6-web/pkg/transport"
)

// Session pairs an incremental parser and message builder over one
// transport (spec §4.3, §4.4). A Session exclusively owns its transport;
// it is not safe for concurrent use by more than one in-flight
// request/response at a time (spec §5).
type Session struct {
	t transport.Transport

	// readBuf holds bytes already read from the transport but not yet
	// consumed by the active parser.
	readBuf []byte
}

// NewSession wraps t as an HTTP session usable in either the server or
// client role; the role is determined by which methods are called.
func NewSession(t transport.Transport) *Session {
	return &Session{t: t}
}

// Transport returns the underlying transport.
func (s *Session) Transport() transport.Transport { return s.t }

const recvChunkSize = 4096

// sendAll writes buf to the transport as a single logical send operation,
// looping until every byte is written or an error occurs.
func (s *Session) sendAll(ctx context.Context, buf []byte) error {
	for len(buf) > 0 {
		n, err := s.t.Send(ctx, buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return &ConnectionResetError{Direction: "send"}
		}
		buf = buf[n:]
	}
	return nil
}

// fillOnce performs a single transport read and feeds whatever arrives to
// the parser, appending any recognized body bytes to pendingBody.
func (s *Session) fillOnce(ctx context.Context, p *Parser, pendingBody *[]byte) error {
	if len(s.readBuf) == 0 {
		tmp := make([]byte, recvChunkSize)
		n, err := s.t.Recv(ctx, tmp)
		if err != nil {
			return err
		}
		if n == 0 {
			return &ConnectionResetError{Direction: "recv"}
		}
		s.readBuf = tmp[:n]
	}
	data := s.readBuf
	s.readBuf = nil
	_, err := p.Feed(data, func(b []byte) {
		*pendingBody = append(*pendingBody, b...)
	})
	return err
}

// fillUntilHeaders reads and feeds the parser until headers (and any body
// bytes arriving in the same reads) are fully parsed, or the message
// completes outright when it has no body.
func (s *Session) fillUntilHeaders(ctx context.Context, p *Parser, pendingBody *[]byte) error {
	for !p.Done() && p.state <= stateHeader {
		if err := s.fillOnce(ctx, p, pendingBody); err != nil {
			return err
		}
	}
	return nil
}

// Message is the common surface of a received Request or Response: headers
// parsed synchronously, body consumed asynchronously (spec §4.3, §4.4).
type Message struct {
	session     *Session
	parser      *Parser
	pendingBody []byte
	bodyOffset  int
}

// Preamble returns the parsed preamble (method/path or status/reason).
func (m *Message) Preamble() Preamble { return m.parser.Preamble() }

// Headers returns the parsed header map.
func (m *Message) Headers() *Headers { return m.parser.Headers() }

// RecvBody pulls more body bytes into buf, returning the number copied and
// whether the body is now fully consumed. It drains any already-parsed
// body fragments before asking the transport for more (spec §4.3: "recv_body
// consumes parser callback output until either the destination buffer
// fills or the parser reports done").
func (m *Message) RecvBody(ctx context.Context, buf []byte) (int, bool, error) {
	for m.bodyOffset >= len(m.pendingBody) && !m.parser.Done() {
		m.pendingBody = m.pendingBody[:0]
		m.bodyOffset = 0
		if err := m.session.fillOnce(ctx, m.parser, &m.pendingBody); err != nil {
			return 0, false, err
		}
		if len(m.pendingBody) == 0 && m.parser.Done() {
			break
		}
	}
	n := copy(buf, m.pendingBody[m.bodyOffset:])
	m.bodyOffset += n
	done := m.bodyOffset >= len(m.pendingBody) && m.parser.Done()
	return n, done, nil
}

// RecvInto drains the full body into a single byte slice (spec §4.3:
// "a generic recv_into(collector) sink drains the full body into a
// string/vector").
func (m *Message) RecvInto(ctx context.Context) ([]byte, error) {
	var out []byte
	buf := make([]byte, recvChunkSize)
	for {
		n, done, err := m.RecvBody(ctx, buf)
		if err != nil {
			return out, err
		}
		out = append(out, buf[:n]...)
		if done {
			return out, nil
		}
	}
}

// Request is a received HTTP request (server role).
type Request struct{ Message }

// Response is a received HTTP response (client role).
type Response struct{ Message }

// Status returns the response status code.
func (r *Response) Status() int { return r.parser.Preamble().Status }

// Method returns the request method.
func (r *Request) Method() Method { return r.parser.Preamble().Method }

// Path returns the request path.
func (r *Request) Path() string { return r.parser.Preamble().Path }

// Recv reads and parses the next request's preamble and headers (server
// role). The body is left for RecvBody/RecvInto (spec §4.3).
func (s *Session) Recv(ctx context.Context) (*Request, error) {
	p := NewParser(true)
	var pending []byte
	if err := s.fillUntilHeaders(ctx, p, &pending); err != nil {
		return nil, err
	}
	return &Request{Message{session: s, parser: p, pendingBody: pending}}, nil
}

// Send composes and sends a fixed-length response: header block then body
// bytes, as a single logical operation (spec §4.3).
func (s *Session) Send(ctx context.Context, status int, headers *Headers, body []byte) error {
	buf := BuildResponseHeader(status, headers, body)
	buf = append(buf, body...)
	return s.sendAll(ctx, buf)
}

// SendChunked sends the response header with Transfer-Encoding: chunked
// and returns a ChunkedStream for subsequent chunk sends (spec §4.3).
func (s *Session) SendChunked(ctx context.Context, status int, headers *Headers) (*ChunkedStream, error) {
	buf := BuildChunkedResponseHeader(status, headers)
	if err := s.sendAll(ctx, buf); err != nil {
		return nil, err
	}
	return &ChunkedStream{session: s}, nil
}

// SendRequest composes and sends a fixed-length request, then blocks until
// the response preamble and headers are parsed (client role, spec §4.4).
func (s *Session) SendRequest(ctx context.Context, method Method, path string, headers *Headers, body []byte) (*Response, error) {
	buf := BuildRequestHeader(method, path, headers, body)
	buf = append(buf, body...)
	if err := s.sendAll(ctx, buf); err != nil {
		return nil, err
	}
	return s.recvResponse(ctx)
}

// SendRequestChunked composes and sends a chunked-body request header and
// returns a ChunkedStream for the request body; call Response after
// Close() to read the server's reply (client role).
func (s *Session) SendRequestChunked(ctx context.Context, method Method, path string, headers *Headers) (*ChunkedStream, error) {
	buf := BuildChunkedRequestHeader(method, path, headers)
	if err := s.sendAll(ctx, buf); err != nil {
		return nil, err
	}
	return &ChunkedStream{session: s}, nil
}

func (s *Session) recvResponse(ctx context.Context) (*Response, error) {
	p := NewParser(false)
	var pending []byte
	if err := s.fillUntilHeaders(ctx, p, &pending); err != nil {
		return nil, err
	}
	return &Response{Message{session: s, parser: p, pendingBody: pending}}, nil
}

// Response reads the server's reply after a chunked request body has been
// fully sent (Close()'d).
func (c *ChunkedStream) Response(ctx context.Context) (*Response, error) {
	return c.session.recvResponse(ctx)
}

// ChunkedStream streams a Transfer-Encoding: chunked body (spec §4.2,
// §4.3). Close is idempotent and MUST be called before the stream is
// discarded.
type ChunkedStream struct {
	session *Session
	closed  bool
}

// Send writes one chunk of the body.
func (c *ChunkedStream) Send(ctx context.Context, chunk []byte) error {
	if c.closed {
		return nil
	}
	return c.session.sendAll(ctx, EncodeChunk(chunk))
}

// Close writes the terminating "0\r\n\r\n" chunk. A second call is a
// no-op (spec §4.2).
func (c *ChunkedStream) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.session.sendAll(ctx, EncodeFinalChunk())
}
