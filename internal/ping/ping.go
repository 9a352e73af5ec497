package ping

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"latencyrank/internal/models"
)

// Probe modes
const (
	ModeHTTP = "http"
	ModeTCP  = "tcp"
	ModeICMP = "icmp"
	ModeDNS  = "dns"
)

// Config selects and tunes the probe transport
type Config struct {
	Mode     string
	TCPPort  string
	DNSQuery string
}

// New creates the prober for the configured mode. Probers holding sockets
// implement io.Closer.
func New(cfg Config) (models.Prober, error) {
	switch strings.ToLower(cfg.Mode) {
	case "", ModeHTTP:
		return NewHTTPProber(), nil
	case ModeTCP:
		return NewTCPProber(cfg.TCPPort), nil
	case ModeICMP:
		return NewICMPProber()
	case ModeDNS:
		return NewDNSProber(cfg.DNSQuery), nil
	default:
		return nil, fmt.Errorf("unknown probe mode %q", cfg.Mode)
	}
}

// normalizeURL ensures the address carries a scheme, defaulting to https
func normalizeURL(address string) string {
	if strings.HasPrefix(address, "http://") || strings.HasPrefix(address, "https://") {
		return address
	}
	return "https://" + address
}

// hostOf extracts host[:port] from a bare address or a URL
func hostOf(address string) string {
	if strings.Contains(address, "://") {
		if u, err := url.Parse(address); err == nil && u.Host != "" {
			return u.Host
		}
	}
	if i := strings.IndexAny(address, "/?#"); i >= 0 {
		address = address[:i]
	}
	return address
}

// withDefaultPort appends port unless the host already has one
func withDefaultPort(host, port string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	return net.JoinHostPort(host, port)
}

// hostname strips any port from host
func hostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}
