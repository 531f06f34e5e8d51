// Package network provides sources of cumulative network byte counters.
package network

import (
	"context"

	"github.com/danpilch/netspeed/pkg/sample"
)

// Source reads the host's cumulative bytes sent and received, summed over all interfaces.
type Source interface {
	// Name returns the source name used on the command line (e.g., "psutil").
	Name() string

	// Read returns the current counters.
	Read(ctx context.Context) (sample.Counters, error)
}
