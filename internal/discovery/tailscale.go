package discovery

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"tailscale.com/client/tailscale"
)

// DeviceLister lists the devices of a tailnet
type DeviceLister interface {
	Devices(ctx context.Context, fields *tailscale.DeviceFieldsOpts) ([]*tailscale.Device, error)
}

// TailnetTargets returns the hostnames of all devices in a tailnet
func TailnetTargets(ctx context.Context, tailnet, apiKey string) ([]string, error) {
	if tailnet == "" {
		return nil, errors.New("tailnet name is empty")
	}
	if apiKey == "" {
		return nil, errors.New("tailscale API key is empty (set TS_API_KEY)")
	}

	tailscale.I_Acknowledge_This_API_Is_Unstable = true
	client := tailscale.NewClient(tailnet, tailscale.APIKey(apiKey))

	return Hostnames(ctx, client)
}

// Hostnames collects device hostnames in API order, skipping unnamed devices
func Hostnames(ctx context.Context, lister DeviceLister) ([]string, error) {
	devices, err := lister.Devices(ctx, tailscale.DeviceAllFields)
	if err != nil {
		return nil, fmt.Errorf("could not list tailnet devices: %w", err)
	}

	targets := make([]string, 0, len(devices))
	for _, dev := range devices {
		if dev == nil || dev.Hostname == "" {
			continue
		}
		targets = append(targets, dev.Hostname)
	}

	log.Infof("Discovered %d tailnet targets", len(targets))
	return targets, nil
}
