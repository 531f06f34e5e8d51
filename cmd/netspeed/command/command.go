// Package command implements the netspeed command line.
package command

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/danpilch/netspeed/pkg/collectors"
	"github.com/danpilch/netspeed/pkg/collectors/network"
	"github.com/danpilch/netspeed/pkg/debug"
	"github.com/danpilch/netspeed/pkg/hostid"
	"github.com/danpilch/netspeed/pkg/output"
	"github.com/danpilch/netspeed/pkg/sample"
	"github.com/danpilch/netspeed/pkg/sampler"
)

const long = `netspeed enters an infinite loop and prints comma separated values:

    unix_timestamp,bytes_sent,bytes_received,unique_id_per_machine,machine_type

It measures the network speed of all interfaces by calculating the delta of the
total received/sent byte counters. The machine type labels the role of the host
so that stratum servers and clients can be told apart after aggregation.`

// environment holds what the command needs from the outside world.
type environment struct {
	fs       afero.Fs
	clock    clock.Clock
	sources  func(procMount string) *collectors.Registry
	identity func(name, hostnamectlPath string) (hostid.Provider, error)
}

func defaultEnvironment() *environment {
	return &environment{
		fs:       afero.NewOsFs(),
		clock:    clock.New(),
		sources:  collectors.Default,
		identity: identityProvider,
	}
}

func identityProvider(name, hostnamectlPath string) (hostid.Provider, error) {
	if name == "hostnamectl" {
		return hostid.NewHostnamectl(hostnamectlPath), nil
	}
	return hostid.Lookup(name)
}

type options struct {
	outputFile  string
	interval    int
	unit        sample.Unit
	id          string
	machineType sample.MachineType
	count       int

	source          string
	procMount       string
	identity        string
	hostnamectlPath string

	summary   bool
	logLevel  string
	pprofAddr string
}

// NewCommand returns the netspeed root command.
func NewCommand() *cobra.Command {
	return newCommand(defaultEnvironment())
}

func newCommand(env *environment) *cobra.Command {
	def := sampler.DefaultConfig()
	opts := &options{unit: def.Unit, machineType: def.MachineType}
	var cfg sampler.Config

	cmd := &cobra.Command{
		Use:          "netspeed",
		Short:        "Sample network throughput as CSV",
		Long:         long,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = opts.config()
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, env, opts, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.outputFile, "output_file", "o", output.Stdout, "File to save results to (csv), - for stdout")
	flags.IntVarP(&opts.interval, "interval", "i", def.Interval, "Interval between measurements in seconds (>=1); rates are divided by it")
	flags.VarP(unitValue{&opts.unit}, "unit", "u", fmt.Sprintf("Unit for measurements rounded to two decimal places (%s)", strings.Join(sample.Units(), ", ")))
	flags.StringVar(&opts.id, "id", "", "Unique identifier for this machine (default {boot_id}-{hostname}, transient hostname with static hostname as fallback)")
	flags.VarP(machineTypeValue{&opts.machineType}, "type", "t", fmt.Sprintf("The type of this machine (%s)", strings.Join(sample.MachineTypes(), ", ")))
	flags.IntVarP(&opts.count, "count", "n", 0, "Stop after this many rows, 0 runs until interrupted")

	flags.StringVar(&opts.source, "source", "psutil", "Counter source (psutil, netdev)")
	flags.StringVar(&opts.procMount, "procfs", network.DefaultProcMount, "procfs mount point used by the netdev source")
	flags.StringVar(&opts.identity, "identity", "hostnamectl", fmt.Sprintf("How the default id is resolved (%s)", strings.Join(hostid.ProviderNames(), ", ")))
	flags.StringVar(&opts.hostnamectlPath, "hostnamectl", hostid.DefaultHostnamectlPath, "Path to hostnamectl")

	flags.BoolVar(&opts.summary, "summary", false, "Print a throughput summary to stderr on exit")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.pprofAddr, "pprof-addr", "", "Serve pprof on this address")

	cmd.AddCommand(newBenchCommand(env))

	return cmd
}

// config collects the flags that do not need the outside world.
func (o *options) config() sampler.Config {
	return sampler.Config{
		Interval:    o.interval,
		Unit:        o.unit,
		MachineID:   o.id,
		MachineType: o.machineType,
		Count:       o.count,
	}
}

func newLogger(w io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger, nil
}

func run(cmd *cobra.Command, env *environment, opts *options, cfg sampler.Config) error {
	ctx := cmd.Context()

	logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel)
	if err != nil {
		return err
	}

	// An explicit --id, even an empty one, skips identity resolution.
	if !cmd.Flags().Changed("id") {
		provider, err := env.identity(opts.identity, opts.hostnamectlPath)
		if err != nil {
			return err
		}
		id, err := provider.Identity(ctx)
		if err != nil {
			return fmt.Errorf("resolving machine id: %w", err)
		}
		cfg.MachineID = id.MachineID()
		logger.WithFields(logrus.Fields{
			"boot_id":  id.BootID,
			"hostname": id.Hostname(),
		}).Debug("Resolved host identity")
	}

	source, err := env.sources(opts.procMount).Lookup(opts.source)
	if err != nil {
		return err
	}
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		source = debug.NewTimedSource(source, logger)
	}

	out, err := output.Open(env.fs, opts.outputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	samplerOpts := []sampler.Option{
		sampler.WithClock(env.clock),
		sampler.WithLogger(logger),
	}
	var summary *output.Summary
	if opts.summary {
		summary = output.NewSummary(cfg.Unit, cfg.Interval)
		samplerOpts = append(samplerOpts, sampler.OnSample(summary.Observe))
	}

	s, err := sampler.New(cfg, source, output.NewCSVWriter(out), samplerOpts...)
	if err != nil {
		return err
	}

	if opts.pprofAddr != "" {
		pprofCtx, stopPprof := context.WithCancel(ctx)
		defer stopPprof()
		if _, err := debug.StartPprofServer(pprofCtx, opts.pprofAddr, logger); err != nil {
			return err
		}
	}

	logger.WithFields(logrus.Fields{
		"id":     cfg.MachineID,
		"type":   cfg.MachineType,
		"output": opts.outputFile,
	}).Info("Starting netspeed")

	err = s.Run(ctx)
	if summary != nil {
		summary.Render(cmd.ErrOrStderr())
	}
	return err
}
