package httpwire_test

import (
	"strings"
	"testing"

	"github.com/Garcia6l20/g6-web/pkg/httpwire"
)

func TestBuildRequestHeaderSetsContentLength(t *testing.T) {
	headers := httpwire.NewHeaders()
	headers.Set("Host", "example.com")
	buf := httpwire.BuildRequestHeader(httpwire.MethodPost, "/items", headers, []byte("abc"))
	s := string(buf)

	if !strings.HasPrefix(s, "POST /items HTTP/1.1\r\n") {
		t.Errorf("request line = %q, want prefix %q", s, "POST /items HTTP/1.1\r\n")
	}
	if !strings.Contains(s, "Content-Length: 3\r\n") {
		t.Errorf("buf = %q, want it to contain Content-Length: 3", s)
	}
	if !strings.HasSuffix(s, "\r\n\r\n") {
		t.Errorf("buf = %q, want it to end with a blank line", s)
	}
}

func TestBuildRequestHeaderHonorsExplicitContentLength(t *testing.T) {
	headers := httpwire.NewHeaders()
	headers.Set("Content-Length", "999")
	buf := httpwire.BuildRequestHeader(httpwire.MethodPost, "/items", headers, []byte("abc"))
	s := string(buf)

	if strings.Count(s, "Content-Length") != 1 {
		t.Errorf("buf = %q, want exactly one Content-Length header", s)
	}
	if !strings.Contains(s, "Content-Length: 999") {
		t.Errorf("buf = %q, want the explicit Content-Length to be preserved", s)
	}
}

func TestBuildChunkedResponseHeaderOmitsContentLength(t *testing.T) {
	buf := httpwire.BuildChunkedResponseHeader(200, httpwire.NewHeaders())
	s := string(buf)

	if strings.Contains(s, "Content-Length") {
		t.Errorf("buf = %q, want no Content-Length for a chunked response", s)
	}
	if !strings.Contains(s, "Transfer-Encoding: chunked\r\n") {
		t.Errorf("buf = %q, want Transfer-Encoding: chunked", s)
	}
	if !strings.HasPrefix(s, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("status line = %q, want prefix %q", s, "HTTP/1.1 200 OK\r\n")
	}
}

func TestEncodeChunkAndFinalChunk(t *testing.T) {
	if got, want := string(httpwire.EncodeChunk([]byte("abc"))), "3\r\nabc\r\n"; got != want {
		t.Errorf("EncodeChunk(\"abc\") = %q, want %q", got, want)
	}
	if got, want := string(httpwire.EncodeFinalChunk()), "0\r\n\r\n"; got != want {
		t.Errorf("EncodeFinalChunk() = %q, want %q", got, want)
	}
}

// TestBuildThenParseRoundTrip checks that a built request header, fed
// back through the parser, recovers the original method/path/headers.
func TestBuildThenParseRoundTrip(t *testing.T) {
	headers := httpwire.NewHeaders()
	headers.Add("Host", "example.com")
	headers.Add("X-Trace", "42")
	buf := httpwire.BuildRequestHeader(httpwire.MethodPut, "/widgets/7", headers, []byte("payload"))
	buf = append(buf, "payload"...)

	var body []byte
	p := httpwire.NewParser(true)
	done, err := p.Feed(buf, func(b []byte) { body = append(body, b...) })
	if err != nil {
		t.Fatalf("Feed(); unexpected error: %v", err)
	}
	if !done {
		t.Fatal("Feed(); want done=true")
	}
	if p.Preamble().Method != httpwire.MethodPut || p.Preamble().Path != "/widgets/7" {
		t.Errorf("Preamble() = %+v, want PUT /widgets/7", p.Preamble())
	}
	if host, _ := p.Headers().Get("Host"); host != "example.com" {
		t.Errorf("Headers().Get(\"Host\") = %q, want %q", host, "example.com")
	}
	if string(body) != "payload" {
		t.Errorf("body = %q, want %q", body, "payload")
	}
}
