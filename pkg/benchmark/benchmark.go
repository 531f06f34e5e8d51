// Package benchmark measures the read latency of counter sources.
package benchmark

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/danpilch/netspeed/pkg/collectors/network"
)

// Options configures a benchmark run.
type Options struct {
	Iterations int
	Warmup     int
	Clock      clock.Clock
}

// DefaultOptions returns sensible benchmark defaults.
func DefaultOptions() Options {
	return Options{
		Iterations: 20,
		Warmup:     3,
		Clock:      clock.New(),
	}
}

// Result holds benchmark results for a single source.
type Result struct {
	Source    string
	Latencies []time.Duration
	P50       time.Duration
	P95       time.Duration
	P99       time.Duration
	Errors    int
}

// Overhead holds the allocations made while benchmarking.
type Overhead struct {
	AllocBytes uint64
	AllocCount uint64
	GCPauses   uint32
}

var (
	bmTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	bmHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	bmDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	bmBold   = lipgloss.NewStyle().Bold(true)
)

// Run reads each source opts.Iterations times after opts.Warmup discarded reads.
func Run(ctx context.Context, sources []network.Source, opts Options) ([]Result, error) {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be at least 1, got %d", opts.Iterations)
	}

	results := make([]Result, 0, len(sources))
	for _, src := range sources {
		for i := 0; i < opts.Warmup; i++ {
			src.Read(ctx)
		}

		res := Result{
			Source:    src.Name(),
			Latencies: make([]time.Duration, opts.Iterations),
		}
		for i := 0; i < opts.Iterations; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			start := opts.Clock.Now()
			if _, err := src.Read(ctx); err != nil {
				res.Errors++
			}
			res.Latencies[i] = opts.Clock.Since(start)
		}

		slices.Sort(res.Latencies)
		res.P50 = percentile(res.Latencies, 0.50)
		res.P95 = percentile(res.Latencies, 0.95)
		res.P99 = percentile(res.Latencies, 0.99)
		results = append(results, res)
	}

	return results, nil
}

// MeasureOverhead returns the process's cumulative allocation counters.
func MeasureOverhead() Overhead {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return Overhead{
		AllocBytes: m.TotalAlloc,
		AllocCount: m.Mallocs,
		GCPauses:   m.NumGC,
	}
}

// RenderResults outputs styled benchmark results.
func RenderResults(w io.Writer, results []Result, overhead Overhead) {
	fmt.Fprintln(w, bmTitle.Render("Counter Source Benchmark"))
	fmt.Fprintln(w, bmDim.Render(strings.Repeat("═", 70)))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s %s %s %s\n",
		bmHeader.Render("SOURCE             "),
		bmHeader.Render("P50        "),
		bmHeader.Render("P95        "),
		bmHeader.Render("P99        "),
		bmHeader.Render("ERRORS"))
	fmt.Fprintln(w, "  "+bmDim.Render(strings.Repeat("─", 70)))

	for _, r := range results {
		fmt.Fprintf(w, "  %-20s %-12v %-12v %-12v %d\n",
			r.Source, r.P50, r.P95, r.P99, r.Errors)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bmTitle.Render("Tool Overhead"))
	fmt.Fprintln(w, bmDim.Render(strings.Repeat("─", 40)))
	fmt.Fprintf(w, "  Memory allocated: %s\n", bmBold.Render(humanize.IBytes(overhead.AllocBytes)))
	fmt.Fprintf(w, "  Allocations:      %s\n", bmBold.Render(humanize.Comma(int64(overhead.AllocCount))))
	fmt.Fprintf(w, "  GC pauses:        %s\n", bmBold.Render(fmt.Sprintf("%d", overhead.GCPauses)))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	return sorted[max(0, min(idx, len(sorted)-1))]
}
