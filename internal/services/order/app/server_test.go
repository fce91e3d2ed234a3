package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewServerRequiresAddress(t *testing.T) {
	if _, err := NewServer(Config{}); err == nil {
		t.Fatal("expected missing address error")
	}
}

func TestNewServerAppliesDefaultTimeouts(t *testing.T) {
	server, err := NewServer(Config{HTTPAddr: ":0"})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if server.shutdownTimeout <= 0 {
		t.Fatalf("shutdown timeout = %v, want positive default", server.shutdownTimeout)
	}
	if server.httpServer.ReadHeaderTimeout <= 0 {
		t.Fatalf("read header timeout = %v, want positive default", server.httpServer.ReadHeaderTimeout)
	}
}

func TestListenAndServeStopsOnContextCancel(t *testing.T) {
	server, err := NewServer(Config{HTTPAddr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.ListenAndServe(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("listen and serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after context cancel")
	}
}

func TestWSEndpointRejectsNonGet(t *testing.T) {
	srv := httptest.NewServer(NewHandler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/ws", "application/json", nil)
	if err != nil {
		t.Fatalf("post /ws: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}
