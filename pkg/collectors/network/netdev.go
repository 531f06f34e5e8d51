package network

import (
	"context"
	"fmt"

	"github.com/prometheus/procfs"

	"github.com/danpilch/netspeed/pkg/sample"
)

// DefaultProcMount is the usual procfs mount point.
const DefaultProcMount = procfs.DefaultMountPoint

// NetDev reads counters from <mount>/net/dev. Linux only.
type NetDev struct {
	mount string
}

// NewNetDev creates a /proc/net/dev source rooted at mount, or /proc if empty.
func NewNetDev(mount string) *NetDev {
	if mount == "" {
		mount = DefaultProcMount
	}
	return &NetDev{mount: mount}
}

// Name returns the source name.
func (n *NetDev) Name() string {
	return "netdev"
}

// Read sums the byte counters of every interface, loopback included.
func (n *NetDev) Read(ctx context.Context) (sample.Counters, error) {
	if err := ctx.Err(); err != nil {
		return sample.Counters{}, err
	}

	fs, err := procfs.NewFS(n.mount)
	if err != nil {
		return sample.Counters{}, fmt.Errorf("opening procfs at %s: %w", n.mount, err)
	}
	dev, err := fs.NetDev()
	if err != nil {
		return sample.Counters{}, fmt.Errorf("reading %s/net/dev: %w", n.mount, err)
	}

	total := dev.Total()
	return sample.Counters{
		BytesSent: total.TxBytes,
		BytesRecv: total.RxBytes,
	}, nil
}
