package network

import (
	"context"
	"fmt"

	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/danpilch/netspeed/pkg/sample"
)

// Psutil reads counters through gopsutil. It works on every platform gopsutil supports.
type Psutil struct {
	ioCounters func(ctx context.Context, pernic bool) ([]psnet.IOCountersStat, error)
}

// NewPsutil creates a gopsutil backed source.
func NewPsutil() *Psutil {
	return &Psutil{ioCounters: psnet.IOCountersWithContext}
}

// Name returns the source name.
func (p *Psutil) Name() string {
	return "psutil"
}

// Read returns the aggregate counters of all interfaces.
func (p *Psutil) Read(ctx context.Context) (sample.Counters, error) {
	stats, err := p.ioCounters(ctx, false)
	if err != nil {
		return sample.Counters{}, fmt.Errorf("reading net io counters: %w", err)
	}
	if len(stats) == 0 {
		return sample.Counters{}, fmt.Errorf("reading net io counters: no interfaces reported")
	}

	// Without pernic gopsutil returns a single "all" entry
	return sample.Counters{
		BytesSent: stats[0].BytesSent,
		BytesRecv: stats[0].BytesRecv,
	}, nil
}
