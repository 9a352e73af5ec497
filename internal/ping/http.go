package ping

import (
	"context"
	"net/http"
	"time"
)

// HTTPProber times a GET request until response headers arrive. Any response
// counts as a round trip, whatever its status.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates a prober that opens a fresh connection per probe
func NewHTTPProber() *HTTPProber {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableKeepAlives = true

	return &HTTPProber{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Probe performs one timed request against address
func (p *HTTPProber) Probe(ctx context.Context, address string, timeout time.Duration) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, normalizeURL(address), nil)
	if err != nil {
		return 0, classify(err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return time.Since(start), classify(err)
	}
	elapsed := time.Since(start)
	resp.Body.Close()

	return elapsed, nil
}
