package debug

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/netspeed/pkg/collectors/network"
	"github.com/danpilch/netspeed/pkg/sample"
)

// TimedSource wraps a network.Source and logs how long each read takes.
type TimedSource struct {
	inner  network.Source
	clock  clock.Clock
	logger *logrus.Logger

	// Last is the duration of the most recent read.
	Last time.Duration
}

// NewTimedSource wraps a source with timing instrumentation.
func NewTimedSource(s network.Source, logger *logrus.Logger) *TimedSource {
	return &TimedSource{
		inner:  s,
		clock:  clock.New(),
		logger: logger,
	}
}

// Name returns the wrapped source's name.
func (t *TimedSource) Name() string {
	return t.inner.Name()
}

// Read runs the wrapped source and records its duration.
func (t *TimedSource) Read(ctx context.Context) (sample.Counters, error) {
	start := t.clock.Now()
	c, err := t.inner.Read(ctx)
	t.Last = t.clock.Since(start)

	entry := t.logger.WithFields(logrus.Fields{
		"source":   t.inner.Name(),
		"duration": t.Last,
	})
	if err != nil {
		entry.WithError(err).Debug("Counter read failed")
	} else {
		entry.WithFields(logrus.Fields{
			"bytes_sent": c.BytesSent,
			"bytes_recv": c.BytesRecv,
		}).Debug("Counters read")
	}
	return c, err
}
