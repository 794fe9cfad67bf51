package httpwire

import (
	"strconv"
	"strings"
)

type parserState int

const (
	statePreamble parserState = iota
	stateHeader
	stateBody
	stateDone
)

type bodyMode int

const (
	bodyNone bodyMode = iota
	bodyContentLength
	bodyChunked
)

type chunkPhase int

const (
	chunkPhaseSize chunkPhase = iota
	chunkPhaseData
	chunkPhaseDataCRLF
	chunkPhaseTrailerCRLF
)

// Parser is an incremental HTTP/1.1 message parser (spec §4.1). Feed may be
// called with any prefix of a single message's bytes, including
// single-byte slices and calls that split a CRLF across the boundary; state
// accumulates across calls. A Parser parses exactly one logical message
// (request or response, fixed at construction) and must be Reset before
// parsing another.
type Parser struct {
	isRequest bool

	state parserState
	line  []byte
	sawCR bool

	// Tolerant leading-CRLF skip (RFC 2616 §4.1) happens at most once, at
	// the very start of the preamble.
	skippedLeadingBlank bool

	preamble Preamble
	headers  *Headers

	mode      bodyMode
	remaining uint64

	phase chunkPhase
}

// NewParser constructs a fresh request or response parser.
func NewParser(isRequest bool) *Parser {
	p := &Parser{isRequest: isRequest, headers: NewHeaders()}
	return p
}

// Reset returns the parser to its initial state so it can parse another
// message on the same connection.
func (p *Parser) Reset() {
	*p = Parser{isRequest: p.isRequest, headers: NewHeaders()}
}

// Done reports whether the message has been fully parsed.
func (p *Parser) Done() bool { return p.state == stateDone }

// Preamble returns the parsed preamble. Valid once past the preamble
// state (Headers/Done reachable implies this is populated).
func (p *Parser) Preamble() Preamble { return p.preamble }

// Headers returns the accumulated header map. Valid once headers have
// started being parsed.
func (p *Parser) Headers() *Headers { return p.headers }

// Feed delivers the next prefix of the message's bytes. Completed body
// fragments are delivered via onBody as soon as they are recognized; the
// parser never buffers the body itself. Feed returns true exactly when the
// message is complete. Calling Feed after Done() is a no-op returning true.
func (p *Parser) Feed(data []byte, onBody func([]byte)) (bool, error) {
	if p.state == stateDone {
		return true, nil
	}
	i := 0
	n := len(data)
	for i < n && p.state != stateDone {
		switch p.state {
		case statePreamble, stateHeader:
			line, complete, err := p.readLine(data, &i)
			if err != nil {
				return false, err
			}
			if !complete {
				continue
			}
			if p.state == statePreamble {
				if len(line) == 0 && !p.skippedLeadingBlank {
					// RFC 2616 §4.1 tolerance: a single leading blank
					// line before the preamble is ignored.
					p.skippedLeadingBlank = true
					continue
				}
				if err := p.parsePreambleLine(string(line)); err != nil {
					return false, err
				}
				p.state = stateHeader
			} else {
				if err := p.handleHeaderLine(string(line)); err != nil {
					return false, err
				}
			}
		case stateBody:
			if err := p.consumeBody(data, &i, onBody); err != nil {
				return false, err
			}
		}
	}
	return p.state == stateDone, nil
}

// readLine accumulates bytes into the scratch line buffer until a CRLF is
// found, tolerating the terminator split across arbitrarily many Feed
// calls. A lone '\n' without a preceding '\r' is a ParseError (Open
// Question (a): LF-only endings are rejected), as is a lone '\r' not
// followed by '\n'.
func (p *Parser) readLine(data []byte, i *int) ([]byte, bool, error) {
	for *i < len(data) {
		b := data[*i]
		*i++
		if p.sawCR {
			p.sawCR = false
			if b == '\n' {
				line := p.line
				p.line = nil
				return line, true, nil
			}
			return nil, false, &ParseError{Reason: "bare CR not followed by LF"}
		}
		if b == '\r' {
			p.sawCR = true
			continue
		}
		if b == '\n' {
			return nil, false, &ParseError{Reason: "bare LF not preceded by CR"}
		}
		p.line = append(p.line, b)
	}
	return nil, false, nil
}

func (p *Parser) parsePreambleLine(line string) error {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return &ParseError{Reason: "malformed preamble line " + strconv.Quote(line)}
	}
	if p.isRequest {
		m, err := ParseMethod(parts[0])
		if err != nil {
			return err
		}
		p.preamble.Direction = DirectionRequest
		p.preamble.Method = m
		p.preamble.Path = parts[1]
		p.preamble.ProtocolVersion = parts[2]
	} else {
		code, err := ParseStatus(parts[1])
		if err != nil {
			return err
		}
		p.preamble.Direction = DirectionResponse
		p.preamble.ProtocolVersion = parts[0]
		p.preamble.Status = code
		p.preamble.Reason = parts[2]
	}
	return nil
}

func (p *Parser) handleHeaderLine(line string) error {
	if line == "" {
		return p.finishHeaders()
	}
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return &ParseError{Reason: "malformed header line " + strconv.Quote(line)}
	}
	field := line[:colon]
	value := strings.TrimSpace(line[colon+1:])
	p.headers.Add(field, value)

	switch strings.ToLower(field) {
	case "content-length":
		length, err := strconv.ParseUint(value, 10, 63)
		if err != nil {
			return &ParseError{Reason: "invalid Content-Length " + strconv.Quote(value)}
		}
		p.mode = bodyContentLength
		p.remaining = length
	case "transfer-encoding":
		if strings.EqualFold(strings.TrimSpace(value), "chunked") {
			p.mode = bodyChunked
		}
	}
	return nil
}

func (p *Parser) finishHeaders() error {
	switch p.mode {
	case bodyContentLength:
		p.state = stateBody
		if p.remaining == 0 {
			p.state = stateDone
		}
	case bodyChunked:
		p.state = stateBody
		p.phase = chunkPhaseSize
	default:
		p.state = stateDone
	}
	return nil
}

func (p *Parser) consumeBody(data []byte, i *int, onBody func([]byte)) error {
	switch p.mode {
	case bodyContentLength:
		return p.consumeContentLengthBody(data, i, onBody)
	case bodyChunked:
		return p.consumeChunkedBody(data, i, onBody)
	}
	p.state = stateDone
	return nil
}

func (p *Parser) consumeContentLengthBody(data []byte, i *int, onBody func([]byte)) error {
	available := uint64(len(data) - *i)
	take := p.remaining
	if take > available {
		take = available
	}
	if take > 0 {
		onBody(data[*i : uint64(*i)+take])
		*i += int(take)
		p.remaining -= take
	}
	if p.remaining == 0 {
		p.state = stateDone
	}
	return nil
}

func (p *Parser) consumeChunkedBody(data []byte, i *int, onBody func([]byte)) error {
	for *i < len(data) && p.state != stateDone {
		switch p.phase {
		case chunkPhaseSize:
			line, complete, err := p.readLine(data, i)
			if err != nil {
				return err
			}
			if !complete {
				return nil
			}
			sizeToken := string(line)
			if semi := strings.IndexByte(sizeToken, ';'); semi >= 0 {
				sizeToken = sizeToken[:semi]
			}
			size, err := strconv.ParseUint(strings.TrimSpace(sizeToken), 16, 63)
			if err != nil {
				return &ParseError{Reason: "invalid chunk size " + strconv.Quote(sizeToken)}
			}
			if size == 0 {
				p.phase = chunkPhaseTrailerCRLF
			} else {
				p.remaining = size
				p.phase = chunkPhaseData
			}
		case chunkPhaseData:
			available := uint64(len(data) - *i)
			take := p.remaining
			if take > available {
				take = available
			}
			if take > 0 {
				onBody(data[*i : uint64(*i)+take])
				*i += int(take)
				p.remaining -= take
			}
			if p.remaining == 0 {
				p.phase = chunkPhaseDataCRLF
			} else {
				return nil
			}
		case chunkPhaseDataCRLF:
			line, complete, err := p.readLine(data, i)
			if err != nil {
				return err
			}
			if !complete {
				return nil
			}
			if len(line) != 0 {
				return &ParseError{Reason: "malformed chunk terminator"}
			}
			p.phase = chunkPhaseSize
		case chunkPhaseTrailerCRLF:
			line, complete, err := p.readLine(data, i)
			if err != nil {
				return err
			}
			if !complete {
				return nil
			}
			if len(line) != 0 {
				// Trailer headers are not supported; treat as a
				// malformed terminator rather than silently dropping
				// them, so callers are not surprised by missing trailers.
				return &ParseError{Reason: "chunked trailers are not supported"}
			}
			p.state = stateDone
		}
	}
	return nil
}
