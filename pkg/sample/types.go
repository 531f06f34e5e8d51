// Package sample provides the types and arithmetic for network throughput samples.
package sample

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidUnit is returned when a display unit is not one of K, M, G or T.
	ErrInvalidUnit = errors.New("invalid unit")
	// ErrInvalidMachineType is returned when a role label is not recognized.
	ErrInvalidMachineType = errors.New("invalid machine type")
)

// Unit is the display unit a byte rate is scaled to.
type Unit string

const (
	Kibibyte Unit = "K"
	Mebibyte Unit = "M"
	Gibibyte Unit = "G"
	Tebibyte Unit = "T"
)

// DefaultUnit is used when no unit is configured.
const DefaultUnit = Mebibyte

var divisors = map[Unit]float64{
	Kibibyte: 1 << 10,
	Mebibyte: 1 << 20,
	Gibibyte: 1 << 30,
	Tebibyte: 1 << 40,
}

// Units returns the accepted unit names in ascending order.
func Units() []string {
	return []string{string(Kibibyte), string(Mebibyte), string(Gibibyte), string(Tebibyte)}
}

// ParseUnit validates a unit name.
func ParseUnit(s string) (Unit, error) {
	u := Unit(s)
	if _, ok := divisors[u]; !ok {
		return "", fmt.Errorf("%w %q: must be one of %s", ErrInvalidUnit, s, strings.Join(Units(), ", "))
	}
	return u, nil
}

// Divisor returns the number of bytes in one unit.
func (u Unit) Divisor() float64 {
	return divisors[u]
}

// MachineType labels the role of the sampled host.
type MachineType string

const (
	Client   MachineType = "client"
	Stratum0 MachineType = "stratum0"
	Stratum1 MachineType = "stratum1"
)

// DefaultMachineType is used when no role is configured.
const DefaultMachineType = Client

// MachineTypes returns the accepted role labels.
func MachineTypes() []string {
	return []string{string(Client), string(Stratum0), string(Stratum1)}
}

// ParseMachineType validates a role label.
func ParseMachineType(s string) (MachineType, error) {
	switch t := MachineType(s); t {
	case Client, Stratum0, Stratum1:
		return t, nil
	}
	return "", fmt.Errorf("%w %q: must be one of %s", ErrInvalidMachineType, s, strings.Join(MachineTypes(), ", "))
}

// Counters holds cumulative byte counters summed over all interfaces.
type Counters struct {
	BytesSent uint64
	BytesRecv uint64
}
