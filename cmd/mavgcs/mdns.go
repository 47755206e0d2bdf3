package main

import (
	"context"
	"fmt"
	"time"

	"github.com/grandcat/zeroconf"
)

// mdnsServiceType is the service type a vehicle-side bridge would
// advertise. This side browses instead of announcing: mavgcs is the client
// connecting to a vehicle, not the thing other clients find.
const mdnsServiceType = "_mavlink._tcp"

// discoverVehicle browses for a single advertised vehicle and returns the
// host:port of the first instance to resolve before timeout expires.
func discoverVehicle(ctx context.Context, timeout time.Duration) (string, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("mdns resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry, 4)
	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := resolver.Browse(browseCtx, mdnsServiceType, "local.", entries); err != nil {
		return "", fmt.Errorf("mdns browse: %w", err)
	}

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return "", fmt.Errorf("mdns browse: no vehicle advertised on %s within %s", mdnsServiceType, timeout)
			}
			if entry == nil || len(entry.AddrIPv4) == 0 {
				continue
			}
			return fmt.Sprintf("%s:%d", entry.AddrIPv4[0], entry.Port), nil
		case <-browseCtx.Done():
			return "", fmt.Errorf("mdns browse: %w", browseCtx.Err())
		}
	}
}
