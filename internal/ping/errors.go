package ping

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTimeout means the probe exceeded its deadline
	ErrTimeout = errors.New("probe timeout")
	// ErrNetwork means a connection, DNS or other transport failure
	ErrNetwork = errors.New("probe network error")
)

// classify wraps a transport error into the probe error taxonomy while
// keeping the original chain available to errors.Is.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
