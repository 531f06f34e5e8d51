package hostid

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

const (
	bootIDPath      = "/proc/sys/kernel/random/boot_id"
	hostnamePath    = "/proc/sys/kernel/hostname"
	etcHostnamePath = "/etc/hostname"
)

// Kernel resolves the identity from kernel interfaces directly, for hosts
// without systemd.
type Kernel struct {
	fs       afero.Fs
	nodename func() (string, error)
}

// NewKernel returns a kernel provider reading from fs, or the OS filesystem if nil.
func NewKernel(fs afero.Fs) *Kernel {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Kernel{fs: fs, nodename: uname}
}

// Identity reads the boot id and hostnames.
func (k *Kernel) Identity(ctx context.Context) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	bootID, err := k.readTrimmed(bootIDPath)
	if err != nil {
		return Identity{}, err
	}
	if bootID == "" {
		return Identity{}, fmt.Errorf("%w: empty %s", ErrUnparsable, bootIDPath)
	}
	// hostnamectl prints the boot id without dashes
	id := Identity{BootID: strings.ReplaceAll(bootID, "-", "")}

	id.TransientHostname, _ = k.readTrimmed(hostnamePath)

	id.StaticHostname, _ = k.readTrimmed(etcHostnamePath)
	if id.StaticHostname == "" {
		name, err := k.nodename()
		if err != nil {
			return Identity{}, fmt.Errorf("reading nodename: %w", err)
		}
		id.StaticHostname = name
	}
	if id.StaticHostname == "" {
		return Identity{}, fmt.Errorf("%w: no static hostname", ErrUnparsable)
	}

	// hostnamectl omits the transient hostname when it matches the static one
	if id.TransientHostname == id.StaticHostname {
		id.TransientHostname = ""
	}
	return id, nil
}

func (k *Kernel) readTrimmed(path string) (string, error) {
	data, err := afero.ReadFile(k.fs, path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
