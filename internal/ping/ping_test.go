package ping

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/miekg/dns"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		expected string
	}{
		{"bare domain", "google.com", "https://google.com"},
		{"bare ip", "1.1.1.1", "https://1.1.1.1"},
		{"http url", "http://example.com/path", "http://example.com/path"},
		{"https url", "https://example.com", "https://example.com"},
		{"domain with path", "example.com/health", "https://example.com/health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeURL(tt.address); got != tt.expected {
				t.Errorf("normalizeURL(%q) = %q, want %q", tt.address, got, tt.expected)
			}
		})
	}
}

func TestWithDefaultPort(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		expected string
	}{
		{"bare host", "example.com", "example.com:443"},
		{"host with port", "example.com:8443", "example.com:8443"},
		{"url", "https://example.com/path", "example.com:443"},
		{"url with port", "http://example.com:8080/x", "example.com:8080"},
		{"ipv4", "1.1.1.1", "1.1.1.1:443"},
		{"ipv6", "::1", "[::1]:443"},
		{"bracketed ipv6", "[::1]", "[::1]:443"},
		{"path without scheme", "example.com/health", "example.com:443"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withDefaultPort(hostOf(tt.address), "443"); got != tt.expected {
				t.Errorf("withDefaultPort(hostOf(%q)) = %q, want %q", tt.address, got, tt.expected)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", context.DeadlineExceeded, ErrTimeout},
		{"wrapped deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ErrTimeout},
		{"refused", errors.New("connection refused"), ErrNetwork},
		{"canceled", context.Canceled, ErrNetwork},
		{"already classified", fmt.Errorf("%w: x", ErrTimeout), ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want wrapping %v", tt.err, got, tt.want)
			}
			if !errors.Is(got, tt.err) && !errors.Is(tt.err, tt.want) {
				t.Errorf("classify(%v) lost the original error", tt.err)
			}
		})
	}

	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}

func TestHTTPProberAnyResponseIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cache-Control") != "no-cache" {
			t.Errorf("expected no-cache request header")
		}
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d, err := NewHTTPProber().Probe(context.Background(), srv.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("expected success for 500 response, got %v", err)
	}
	if d <= 0 {
		t.Errorf("expected positive duration, got %v", d)
	}
}

func TestHTTPProberTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTPProber().Probe(context.Background(), srv.URL, 50*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestHTTPProberNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPProber().Probe(context.Background(), url, time.Second)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestTCPProber(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	addr := ln.Addr().String()

	if _, err := NewTCPProber("").Probe(context.Background(), addr, time.Second); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}

	ln.Close()
	if _, err := NewTCPProber("").Probe(context.Background(), addr, time.Second); !errors.Is(err, ErrNetwork) && !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected probe error after close, got %v", err)
	}
}

func TestDNSProber(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}

	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			m := new(dns.Msg)
			m.SetRcode(r, dns.RcodeNameError)
			_ = w.WriteMsg(m)
		}),
	}
	go func() { _ = srv.ActivateAndServe() }()
	defer srv.Shutdown()
	<-started

	if _, err := NewDNSProber("probe.test").Probe(context.Background(), pc.LocalAddr().String(), time.Second); err != nil {
		t.Fatalf("expected NXDOMAIN reply to count as success, got %v", err)
	}
}

func TestNewUnknownMode(t *testing.T) {
	if _, err := New(Config{Mode: "carrier-pigeon"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	p, err := New(Config{})
	if err != nil {
		t.Fatalf("default mode: %v", err)
	}
	if _, ok := p.(*HTTPProber); !ok {
		t.Errorf("default mode should be http, got %T", p)
	}
}
