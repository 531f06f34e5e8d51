package command

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/netspeed/pkg/collectors"
	"github.com/danpilch/netspeed/pkg/hostid"
	"github.com/danpilch/netspeed/pkg/sample"
	"github.com/danpilch/netspeed/pkg/sampler"
)

type sequenceSource struct {
	mu       sync.Mutex
	readings []sample.Counters
	n        int
}

func (s *sequenceSource) Name() string { return "fake" }

func (s *sequenceSource) Read(context.Context) (sample.Counters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.n >= len(s.readings) {
		return sample.Counters{}, errors.New("no more readings")
	}
	c := s.readings[s.n]
	s.n++
	return c, nil
}

type staticIdentity struct {
	id  hostid.Identity
	err error
}

func (s staticIdentity) Identity(context.Context) (hostid.Identity, error) {
	return s.id, s.err
}

type harness struct {
	env       *environment
	source    *sequenceSource
	identity  staticIdentity
	stdout    bytes.Buffer
	stderr    bytes.Buffer
	providers []string
}

func newHarness(readings ...sample.Counters) *harness {
	h := &harness{
		source: &sequenceSource{readings: readings},
		identity: staticIdentity{id: hostid.Identity{
			BootID:            "8a1f",
			StaticHostname:    "node7",
			TransientHostname: "node7-eu",
		}},
	}
	h.env = &environment{
		fs:    afero.NewMemMapFs(),
		clock: clock.NewMock(),
		sources: func(string) *collectors.Registry {
			r := collectors.NewRegistry()
			r.Register(h.source)
			return r
		},
		identity: func(name, _ string) (hostid.Provider, error) {
			h.providers = append(h.providers, name)
			return h.identity, nil
		},
	}
	return h
}

// execute runs the command while a goroutine keeps advancing the mock clock.
func (h *harness) execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newCommand(h.env)
	cmd.SetArgs(args)
	cmd.SetOut(&h.stdout)
	cmd.SetErr(&h.stderr)

	done := make(chan struct{})
	defer close(done)
	mock := h.env.clock.(*clock.Mock)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				mock.Add(time.Second)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return cmd.ExecuteContext(ctx)
}

func (h *harness) readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(h.env.fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestEndToEnd(t *testing.T) {
	h := newHarness(
		sample.Counters{BytesSent: 1000, BytesRecv: 500},
		sample.Counters{BytesSent: 3048, BytesRecv: 2548},
	)

	err := h.execute(t, "--interval", "2", "--unit", "K", "--id", "test-host",
		"--type", "stratum1", "--count", "1", "-o", "/out.csv", "--source", "fake")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(h.readFile(t, "/out.csv")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Time,Bytes Sent,Bytes Received,ID,Type", lines[0])

	fields := strings.Split(lines[1], ",")
	require.Len(t, fields, 5)
	assert.Regexp(t, `^\d+$`, fields[0])
	assert.Equal(t, []string{"1.0", "1.0", "test-host", "stratum1"}, fields[1:])
	assert.Empty(t, h.providers, "identity is not resolved when --id is set")
}

func TestDefaultIdentity(t *testing.T) {
	h := newHarness(sample.Counters{}, sample.Counters{BytesSent: 1 << 20})

	err := h.execute(t, "-n", "1", "-o", "/out.csv", "--source", "fake", "--identity", "kernel")
	require.NoError(t, err)

	assert.Equal(t, []string{"kernel"}, h.providers)
	assert.Contains(t, h.readFile(t, "/out.csv"), ",1.0,0.0,8a1f-node7-eu,client\n")
}

func TestEmptyIDIsKept(t *testing.T) {
	h := newHarness(sample.Counters{}, sample.Counters{BytesSent: 1 << 20})

	err := h.execute(t, "--id", "", "-n", "1", "-o", "/out.csv", "--source", "fake")
	require.NoError(t, err)

	assert.Empty(t, h.providers, "an explicit empty id is not replaced")
	assert.Contains(t, h.readFile(t, "/out.csv"), ",1.0,0.0,,client\n")
}

func TestPprofAddr(t *testing.T) {
	h := newHarness(sample.Counters{}, sample.Counters{BytesSent: 1 << 20})

	err := h.execute(t, "--pprof-addr", "127.0.0.1:0", "--id", "x", "-n", "1", "-o", "/out.csv", "--source", "fake")
	require.NoError(t, err)

	h = newHarness(sample.Counters{})
	err = h.execute(t, "--pprof-addr", "256.0.0.1:bad", "--id", "x", "-o", "/out.csv", "--source", "fake")
	assert.ErrorContains(t, err, "pprof listen")
}

func TestIdentityFailureIsFatal(t *testing.T) {
	h := newHarness(sample.Counters{})
	h.identity.err = errors.New("hostnamectl: not found")

	err := h.execute(t, "-o", "/out.csv", "--source", "fake")
	assert.ErrorContains(t, err, "resolving machine id")

	exists, _ := afero.Exists(h.env.fs, "/out.csv")
	assert.False(t, exists, "no output before identity is known")
}

func TestInvalidFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     error
		contains string
	}{
		{"unit", []string{"--unit", "P"}, nil, `invalid unit "P"`},
		{"type", []string{"--type", "server"}, nil, `invalid machine type "server"`},
		{"interval", []string{"--interval", "0"}, sampler.ErrInvalidInterval, ""},
		{"interval too long", []string{"--interval", "10000000000"}, nil, ""},
		{"non-integer interval", []string{"--interval", "1.5"}, nil, ""},
		{"source", []string{"--source", "snmp", "--id", "x"}, nil, ""},
		{"log level", []string{"--log-level", "loud", "--id", "x"}, nil, ""},
		{"extra argument", []string{"eth0"}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(sample.Counters{})
			err := h.execute(t, tt.args...)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			if tt.contains != "" {
				assert.ErrorContains(t, err, tt.contains)
			}
			assert.Empty(t, h.providers)
		})
	}
}

func TestUnwritableOutput(t *testing.T) {
	h := newHarness(sample.Counters{})
	h.env.fs = afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := h.execute(t, "-o", "/out.csv", "--id", "x", "--source", "fake")
	assert.ErrorContains(t, err, "cannot open output file")
}

func TestSummary(t *testing.T) {
	h := newHarness(
		sample.Counters{},
		sample.Counters{BytesSent: 1 << 20, BytesRecv: 2 << 20},
		sample.Counters{BytesSent: 3 << 20, BytesRecv: 2 << 20},
	)

	err := h.execute(t, "-n", "2", "-o", "/out.csv", "--id", "x", "--source", "fake", "--summary")
	require.NoError(t, err)

	assert.Contains(t, h.stderr.String(), "Network Throughput Summary")
	assert.Contains(t, h.stderr.String(), "2 samples")
}

func TestCanceledRunExitsCleanly(t *testing.T) {
	h := newHarness(sample.Counters{}, sample.Counters{})
	cmd := newCommand(h.env)
	cmd.SetArgs([]string{"-o", "/out.csv", "--id", "x", "--source", "fake"})
	cmd.SetErr(&h.stderr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, cmd.ExecuteContext(ctx))
}

func TestDebugLogging(t *testing.T) {
	h := newHarness(sample.Counters{}, sample.Counters{})

	err := h.execute(t, "-n", "1", "-o", "/out.csv", "--id", "x", "--source", "fake", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, h.stderr.String(), "Counters read")
	assert.Contains(t, h.stderr.String(), "Sample written")
}

func TestBench(t *testing.T) {
	h := newHarness(make([]sample.Counters, 10)...)

	err := h.execute(t, "bench", "--iterations", "5", "--warmup", "1")
	require.NoError(t, err)
	assert.Contains(t, h.stdout.String(), "Counter Source Benchmark")
	assert.Contains(t, h.stdout.String(), "fake")
}
