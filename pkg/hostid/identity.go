// Package hostid resolves the identity of the local machine used to tag samples.
package hostid

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnparsable is returned when identity output cannot be interpreted.
	ErrUnparsable = errors.New("unparsable host identity")
	// ErrUnsupported is returned by providers that do not work on this platform.
	ErrUnsupported = errors.New("host identity provider not supported on this platform")
)

// Identity describes the current boot session and hostnames of a machine.
type Identity struct {
	BootID            string
	StaticHostname    string
	TransientHostname string
}

// Hostname returns the transient hostname, or the static hostname if there is none.
func (i Identity) Hostname() string {
	if i.TransientHostname != "" {
		return i.TransientHostname
	}
	return i.StaticHostname
}

// MachineID returns the default machine identifier "{boot_id}-{hostname}".
func (i Identity) MachineID() string {
	return fmt.Sprintf("%s-%s", i.BootID, i.Hostname())
}

// Provider resolves the local machine identity.
type Provider interface {
	Identity(ctx context.Context) (Identity, error)
}

// Providers maps provider names to constructors.
var Providers = map[string]func() Provider{
	"hostnamectl": func() Provider { return NewHostnamectl("") },
	"kernel":      func() Provider { return NewKernel(nil) },
}

// ProviderNames returns the registered provider names, sorted.
func ProviderNames() []string {
	names := make([]string, 0, len(Providers))
	for name := range Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a new provider by name.
func Lookup(name string) (Provider, error) {
	ctor, ok := Providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown identity provider %q: must be one of %s",
			name, strings.Join(ProviderNames(), ", "))
	}
	return ctor(), nil
}
