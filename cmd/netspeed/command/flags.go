package command

import (
	"github.com/spf13/pflag"

	"github.com/danpilch/netspeed/pkg/sample"
)

// unitValue lets pflag reject unknown units while parsing.
type unitValue struct{ u *sample.Unit }

var _ pflag.Value = unitValue{}

func (v unitValue) String() string {
	if v.u == nil {
		return ""
	}
	return string(*v.u)
}

func (v unitValue) Set(s string) error {
	u, err := sample.ParseUnit(s)
	if err != nil {
		return err
	}
	*v.u = u
	return nil
}

func (v unitValue) Type() string { return "unit" }

type machineTypeValue struct{ t *sample.MachineType }

var _ pflag.Value = machineTypeValue{}

func (v machineTypeValue) String() string {
	if v.t == nil {
		return ""
	}
	return string(*v.t)
}

func (v machineTypeValue) Set(s string) error {
	t, err := sample.ParseMachineType(s)
	if err != nil {
		return err
	}
	*v.t = t
	return nil
}

func (v machineTypeValue) Type() string { return "type" }
