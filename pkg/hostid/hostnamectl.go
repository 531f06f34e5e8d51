package hostid

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultHostnamectlPath is where systemd installs hostnamectl.
const DefaultHostnamectlPath = "/usr/bin/hostnamectl"

const (
	keyBootID            = "Boot ID"
	keyStaticHostname    = "Static hostname"
	keyTransientHostname = "Transient hostname"
)

// Hostnamectl resolves the identity by running hostnamectl.
type Hostnamectl struct {
	Path string
}

// NewHostnamectl returns a provider running the binary at path, or the default path if empty.
func NewHostnamectl(path string) *Hostnamectl {
	if path == "" {
		path = DefaultHostnamectlPath
	}
	return &Hostnamectl{Path: path}
}

// Identity runs hostnamectl and parses its output.
func (h *Hostnamectl) Identity(ctx context.Context) (Identity, error) {
	out, err := exec.CommandContext(ctx, h.Path).Output()
	if err != nil {
		return Identity{}, fmt.Errorf("running %s: %w", h.Path, err)
	}
	return ParseHostnamectl(out)
}

// ParseHostnamectl parses the "key: value" lines printed by hostnamectl.
func ParseHostnamectl(out []byte) (Identity, error) {
	fields, err := parseKeyValues(out)
	if err != nil {
		return Identity{}, err
	}

	id := Identity{
		BootID:            fields[keyBootID],
		StaticHostname:    fields[keyStaticHostname],
		TransientHostname: fields[keyTransientHostname],
	}
	if id.BootID == "" {
		return Identity{}, fmt.Errorf("%w: missing %q", ErrUnparsable, keyBootID)
	}
	if id.StaticHostname == "" {
		return Identity{}, fmt.Errorf("%w: missing %q", ErrUnparsable, keyStaticHostname)
	}
	return id, nil
}

func parseKeyValues(out []byte) (map[string]string, error) {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Values may contain colons (timestamps, MAC addresses)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: line %d has no key: %q", ErrUnparsable, lineNum, line)
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return fields, scanner.Err()
}
