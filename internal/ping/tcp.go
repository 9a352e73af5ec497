package ping

import (
	"context"
	"net"
	"time"
)

const defaultTCPPort = "443"

// TCPProber times a TCP connect to the target
type TCPProber struct {
	port   string
	dialer net.Dialer
}

// NewTCPProber creates a prober connecting to port when the address has none
func NewTCPProber(port string) *TCPProber {
	if port == "" {
		port = defaultTCPPort
	}
	return &TCPProber{port: port}
}

// Probe opens and immediately closes one connection
func (p *TCPProber) Probe(ctx context.Context, address string, timeout time.Duration) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	conn, err := p.dialer.DialContext(ctx, "tcp", withDefaultPort(hostOf(address), p.port))
	elapsed := time.Since(start)
	if err != nil {
		return elapsed, classify(err)
	}
	_ = conn.Close()

	return elapsed, nil
}
