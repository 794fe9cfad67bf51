package httpwire_test

import (
	"context"
	"net"
	"testing"

	"github.com/Garcia6l20/g6-web/pkg/httpwire"
	"github.com/Garcia6l20/g6-web/pkg/transport"
)

func TestSessionFixedLengthRoundTrip(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	server := httpwire.NewSession(transport.NewConn(serverConn))
	client := httpwire.NewSession(transport.NewConn(clientConn))

	ctx := context.Background()
	done := make(chan struct{})

	go func() {
		defer close(done)
		req, err := server.Recv(ctx)
		if err != nil {
			t.Errorf("server.Recv(); unexpected error: %v", err)
			return
		}
		if req.Method() != httpwire.MethodPost || req.Path() != "/echo" {
			t.Errorf("request = %v %v, want POST /echo", req.Method(), req.Path())
		}
		body, err := req.RecvInto(ctx)
		if err != nil {
			t.Errorf("req.RecvInto(); unexpected error: %v", err)
			return
		}
		headers := httpwire.NewHeaders()
		if err := server.Send(ctx, 200, headers, body); err != nil {
			t.Errorf("server.Send(); unexpected error: %v", err)
		}
	}()

	headers := httpwire.NewHeaders()
	headers.Set("Host", "example.com")
	resp, err := client.SendRequest(ctx, httpwire.MethodPost, "/echo", headers, []byte("ping"))
	if err != nil {
		t.Fatalf("client.SendRequest(); unexpected error: %v", err)
	}
	if resp.Status() != 200 {
		t.Errorf("resp.Status() = %d, want 200", resp.Status())
	}
	body, err := resp.RecvInto(ctx)
	if err != nil {
		t.Fatalf("resp.RecvInto(); unexpected error: %v", err)
	}
	if string(body) != "ping" {
		t.Errorf("body = %q, want %q", body, "ping")
	}
	<-done
}

func TestSessionChunkedRoundTrip(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	server := httpwire.NewSession(transport.NewConn(serverConn))
	client := httpwire.NewSession(transport.NewConn(clientConn))

	ctx := context.Background()
	done := make(chan struct{})

	go func() {
		defer close(done)
		req, err := server.Recv(ctx)
		if err != nil {
			t.Errorf("server.Recv(); unexpected error: %v", err)
			return
		}
		body, err := req.RecvInto(ctx)
		if err != nil {
			t.Errorf("req.RecvInto(); unexpected error: %v", err)
			return
		}
		if string(body) != "Wikipedia" {
			t.Errorf("body = %q, want %q", body, "Wikipedia")
		}
		stream, err := server.SendChunked(ctx, 200, httpwire.NewHeaders())
		if err != nil {
			t.Errorf("server.SendChunked(); unexpected error: %v", err)
			return
		}
		stream.Send(ctx, []byte("chunk-a"))
		stream.Send(ctx, []byte("chunk-b"))
		stream.Close(ctx)
		stream.Close(ctx) // idempotent
	}()

	stream, err := client.SendRequestChunked(ctx, httpwire.MethodPost, "/upload", httpwire.NewHeaders())
	if err != nil {
		t.Fatalf("client.SendRequestChunked(); unexpected error: %v", err)
	}
	stream.Send(ctx, []byte("Wiki"))
	stream.Send(ctx, []byte("pedia"))
	stream.Close(ctx)

	resp, err := stream.Response(ctx)
	if err != nil {
		t.Fatalf("stream.Response(); unexpected error: %v", err)
	}
	body, err := resp.RecvInto(ctx)
	if err != nil {
		t.Fatalf("resp.RecvInto(); unexpected error: %v", err)
	}
	if string(body) != "chunk-achunk-b" {
		t.Errorf("body = %q, want %q", body, "chunk-achunk-b")
	}
	<-done
}
