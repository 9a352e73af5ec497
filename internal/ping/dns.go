package ping

import (
	"context"
	"time"

	"github.com/miekg/dns"
)

const defaultDNSQuery = "example.com"

// DNSProber treats the target as a resolver and times one A query against it.
// Any reply, including NXDOMAIN, is a completed round trip.
type DNSProber struct {
	client *dns.Client
	query  string
}

// NewDNSProber creates a prober asking for query
func NewDNSProber(query string) *DNSProber {
	if query == "" {
		query = defaultDNSQuery
	}
	return &DNSProber{client: &dns.Client{}, query: query}
}

// Probe sends one query to the resolver at address
func (p *DNSProber) Probe(ctx context.Context, address string, timeout time.Duration) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(p.query), dns.TypeA)

	start := time.Now()
	_, _, err := p.client.ExchangeContext(ctx, msg, withDefaultPort(hostOf(address), "53"))
	elapsed := time.Since(start)
	if err != nil {
		return elapsed, classify(err)
	}
	return elapsed, nil
}
