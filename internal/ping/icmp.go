package ping

import (
	"context"
	"fmt"
	"net"
	"time"

	goping "github.com/digineo/go-ping"
)

// ICMPProber sends ICMP echo requests through one shared raw-socket pinger
type ICMPProber struct {
	pinger   *goping.Pinger
	resolver *net.Resolver
}

// NewICMPProber opens raw sockets on the address families the host supports.
// This needs root or CAP_NET_RAW.
func NewICMPProber() (*ICMPProber, error) {
	var bind4, bind6 string
	if ln, err := net.Listen("tcp4", "127.0.0.1:0"); err == nil {
		ln.Close()
		bind4 = "0.0.0.0"
	}
	if ln, err := net.Listen("tcp6", "[::1]:0"); err == nil {
		ln.Close()
		bind6 = "::"
	}

	pinger, err := goping.New(bind4, bind6)
	if err != nil {
		return nil, fmt.Errorf("cannot open icmp sockets: %w", err)
	}

	return &ICMPProber{pinger: pinger, resolver: net.DefaultResolver}, nil
}

// Probe resolves the target and sends one echo request
func (p *ICMPProber) Probe(ctx context.Context, address string, timeout time.Duration) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	addrs, err := p.resolver.LookupIPAddr(ctx, hostname(hostOf(address)))
	if err != nil {
		return time.Since(start), classify(err)
	}
	if len(addrs) == 0 {
		return time.Since(start), fmt.Errorf("%w: no address for %s", ErrNetwork, address)
	}

	rtt, err := p.pinger.PingContext(ctx, &addrs[0])
	if err != nil {
		return time.Since(start), classify(err)
	}
	return rtt, nil
}

// Close releases the raw sockets
func (p *ICMPProber) Close() error {
	p.pinger.Close()
	return nil
}
