// Package sampler runs the sample-delta-emit loop over a network counter source.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/netspeed/pkg/collectors/network"
	"github.com/danpilch/netspeed/pkg/sample"
)

// ErrInvalidInterval is returned when the interval is below one second or
// too long to express as a time.Duration.
var ErrInvalidInterval = errors.New("interval out of range")

// MaxInterval is the longest interval, in seconds, that fits in a time.Duration.
const MaxInterval = math.MaxInt64 / int64(time.Second)

// Config holds the resolved sampling settings.
type Config struct {
	Interval    int
	Unit        sample.Unit
	MachineID   string
	MachineType sample.MachineType
	// Count stops the loop after that many data rows. Zero runs until canceled.
	Count int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Interval:    1,
		Unit:        sample.DefaultUnit,
		MachineType: sample.DefaultMachineType,
	}
}

// Validate checks the config is usable.
func (c Config) Validate() error {
	if c.Interval < 1 || int64(c.Interval) > MaxInterval {
		return fmt.Errorf("%w: must be between 1 and %d seconds, got %d", ErrInvalidInterval, MaxInterval, c.Interval)
	}
	if _, err := sample.ParseUnit(string(c.Unit)); err != nil {
		return err
	}
	if _, err := sample.ParseMachineType(string(c.MachineType)); err != nil {
		return err
	}
	if c.Count < 0 {
		return fmt.Errorf("count must not be negative, got %d", c.Count)
	}
	return nil
}

// Sink receives the header once and then every sample.
type Sink interface {
	WriteHeader() error
	Write(s sample.Sample) error
}

// Sampler periodically reads counters and emits throughput samples.
type Sampler struct {
	cfg       Config
	source    network.Source
	sink      Sink
	clock     clock.Clock
	logger    *logrus.Logger
	observers []func(sample.Sample)
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithClock sets the clock driving the interval. Defaults to the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *Sampler) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Sampler) { s.logger = l }
}

// OnSample registers fn to be called after each sample is written.
func OnSample(fn func(sample.Sample)) Option {
	return func(s *Sampler) { s.observers = append(s.observers, fn) }
}

// New creates a sampler. The config is validated.
func New(cfg Config, source network.Source, sink Sink, opts ...Option) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Sampler{
		cfg:    cfg,
		source: source,
		sink:   sink,
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logrus.New()
		s.logger.SetLevel(logrus.WarnLevel)
	}
	return s, nil
}

// Run primes the previous counters and writes the header, then emits one
// sample per interval until ctx is canceled or Count rows are written.
// Cancellation is a clean stop and returns nil.
func (s *Sampler) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.Interval) * time.Second
	log := s.logger.WithFields(logrus.Fields{
		"source":   s.source.Name(),
		"interval": interval,
		"unit":     s.cfg.Unit,
	})

	ticker := s.clock.Ticker(interval)
	defer ticker.Stop()

	prev, err := s.source.Read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("priming counters: %w", err)
	}
	if err := s.sink.WriteHeader(); err != nil {
		return err
	}
	log.Info("Sampling started")

	for rows := 0; s.cfg.Count == 0 || rows < s.cfg.Count; rows++ {
		var now time.Time
		select {
		case <-ctx.Done():
			log.WithField("rows", rows).Info("Sampling stopped")
			return nil
		case now = <-ticker.C:
		}

		cur, err := s.source.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading counters: %w", err)
		}

		smp := sample.New(now, prev, cur, s.cfg.Unit, s.cfg.Interval,
			s.cfg.MachineID, s.cfg.MachineType)
		if cur.BytesSent < prev.BytesSent || cur.BytesRecv < prev.BytesRecv {
			log.WithFields(logrus.Fields{
				"sent": smp.Sent,
				"recv": smp.Recv,
			}).Warn("Counters went backwards, interface was probably reset")
		}
		if err := s.sink.Write(smp); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"sent": smp.Sent,
			"recv": smp.Recv,
		}).Debug("Sample written")

		for _, fn := range s.observers {
			fn(smp)
		}
		prev = cur
	}

	log.WithField("rows", s.cfg.Count).Info("Sample count reached")
	return nil
}
