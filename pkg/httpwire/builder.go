package httpwire

import (
	"strconv"
	"strings"
)

// userAgent identifies this engine on outgoing requests (spec §4.2).
const userAgent = "g6-web/1.0"

const protocolVersion = "HTTP/1.1"

// BuildRequestHeader composes the request line and header block (spec
// §4.2). If no Content-Length header was already set, Content-Length is
// inserted with len(body), which is 0 for a nil body. Returns the header
// bytes; body bytes (if
// any) are the caller's responsibility to send immediately afterward as
// part of the same logical send operation.
func BuildRequestHeader(method Method, path string, headers *Headers, body []byte) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, method.String()...)
	buf = append(buf, ' ')
	buf = append(buf, path...)
	buf = append(buf, ' ')
	buf = append(buf, protocolVersion...)
	buf = append(buf, "\r\n"...)
	buf = append(buf, "User-Agent: "...)
	buf = append(buf, userAgent...)
	buf = append(buf, "\r\n"...)
	buf = appendHeadersAndLength(buf, headers, body, false)
	return buf
}

// BuildResponseHeader composes the status line and header block (spec
// §4.2).
func BuildResponseHeader(status int, headers *Headers, body []byte) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, protocolVersion...)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(status), 10)
	buf = append(buf, ' ')
	buf = append(buf, StatusPhrase(status)...)
	buf = append(buf, "\r\n"...)
	buf = append(buf, "User-Agent: "...)
	buf = append(buf, userAgent...)
	buf = append(buf, "\r\n"...)
	buf = appendHeadersAndLength(buf, headers, body, false)
	return buf
}

// BuildChunkedRequestHeader / BuildChunkedResponseHeader compose a preamble
// for a streamed, Transfer-Encoding: chunked body (spec §4.2): Content-
// Length is elided and Transfer-Encoding: chunked is inserted.

// BuildChunkedRequestHeader composes a chunked-body request preamble.
func BuildChunkedRequestHeader(method Method, path string, headers *Headers) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, method.String()...)
	buf = append(buf, ' ')
	buf = append(buf, path...)
	buf = append(buf, ' ')
	buf = append(buf, protocolVersion...)
	buf = append(buf, "\r\n"...)
	buf = append(buf, "User-Agent: "...)
	buf = append(buf, userAgent...)
	buf = append(buf, "\r\n"...)
	buf = appendHeadersAndLength(buf, headers, nil, true)
	return buf
}

// BuildChunkedResponseHeader composes a chunked-body response preamble.
func BuildChunkedResponseHeader(status int, headers *Headers) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, protocolVersion...)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(status), 10)
	buf = append(buf, ' ')
	buf = append(buf, StatusPhrase(status)...)
	buf = append(buf, "\r\n"...)
	buf = append(buf, "User-Agent: "...)
	buf = append(buf, userAgent...)
	buf = append(buf, "\r\n"...)
	buf = appendHeadersAndLength(buf, headers, nil, true)
	return buf
}

func appendHeadersAndLength(buf []byte, headers *Headers, body []byte, chunked bool) []byte {
	hasContentLength := false
	if headers != nil {
		headers.Each(func(field, value string) {
			buf = append(buf, field...)
			buf = append(buf, ": "...)
			buf = append(buf, value...)
			buf = append(buf, "\r\n"...)
			if strings.EqualFold(field, "content-length") {
				hasContentLength = true
			}
		})
	}
	if chunked {
		buf = append(buf, "Transfer-Encoding: chunked\r\n"...)
	} else if !hasContentLength {
		buf = append(buf, "Content-Length: "...)
		buf = strconv.AppendInt(buf, int64(len(body)), 10)
		buf = append(buf, "\r\n"...)
	}
	buf = append(buf, "\r\n"...)
	return buf
}

// EncodeChunk frames one Transfer-Encoding: chunked data chunk as
// "<hex-len> CRLF <bytes> CRLF" (spec §4.2). An empty chunk encodes as
// "0\r\n\r\n", the same bytes as EncodeFinalChunk, and so ends the body.
func EncodeChunk(data []byte) []byte {
	sizeLine := strconv.FormatInt(int64(len(data)), 16)
	buf := make([]byte, 0, len(sizeLine)+len(data)+4)
	buf = append(buf, sizeLine...)
	buf = append(buf, "\r\n"...)
	buf = append(buf, data...)
	buf = append(buf, "\r\n"...)
	return buf
}

// EncodeFinalChunk frames the "0 CRLF CRLF" terminator that closes a
// chunked body (spec §4.2).
func EncodeFinalChunk() []byte {
	return []byte("0\r\n\r\n")
}
