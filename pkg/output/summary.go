package output

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/danpilch/netspeed/pkg/sample"
)

var (
	summaryTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	summaryHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	summaryCell   = lipgloss.NewStyle().Padding(0, 1)
	summaryDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type rateStats struct {
	min, max, sum float64
}

func (r *rateStats) add(v float64, first bool) {
	if first || v < r.min {
		r.min = v
	}
	if first || v > r.max {
		r.max = v
	}
	r.sum += v
}

// Summary accumulates statistics over a sampling session.
type Summary struct {
	unit     sample.Unit
	interval int

	rows        int
	first, last time.Time
	sent, recv  rateStats

	sentTrend, recvTrend *trend
}

// NewSummary creates a summary for samples taken with the given unit and interval.
func NewSummary(unit sample.Unit, interval int) *Summary {
	return &Summary{
		unit:     unit,
		interval: interval,

		sentTrend: newTrend(40),
		recvTrend: newTrend(40),
	}
}

// Observe records a sample.
func (s *Summary) Observe(smp sample.Sample) {
	first := s.rows == 0
	if first {
		s.first = smp.Time
	}
	s.last = smp.Time
	s.rows++
	s.sent.add(smp.Sent, first)
	s.recv.add(smp.Recv, first)
	s.sentTrend.record(smp.Sent)
	s.recvTrend.record(smp.Recv)
}

// Rows returns the number of samples observed.
func (s *Summary) Rows() int {
	return s.rows
}

// Average returns the mean sent and received rates.
func (s *Summary) Average() (sent, recv float64) {
	if s.rows == 0 {
		return 0, 0
	}
	n := float64(s.rows)
	return s.sent.sum / n, s.recv.sum / n
}

// Transferred estimates the bytes moved in each direction from the emitted rates.
func (s *Summary) Transferred() (sent, recv uint64) {
	return s.bytes(s.sent.sum), s.bytes(s.recv.sum)
}

func (s *Summary) bytes(rateSum float64) uint64 {
	b := rateSum * s.unit.Divisor() * float64(s.interval)
	if b <= 0 {
		return 0
	}
	return uint64(math.Round(b))
}

// Render writes a styled table of the session.
func (s *Summary) Render(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, summaryTitle.Render("Network Throughput Summary"))
	fmt.Fprintln(w, summaryDim.Render(strings.Repeat("═", 60)))

	if s.rows == 0 {
		fmt.Fprintln(w, summaryDim.Render("No samples recorded."))
		return
	}

	span := s.last.Sub(s.first) + time.Duration(s.interval)*time.Second
	fmt.Fprintf(w, "%d samples over %s (%siB/s)\n", s.rows, span, s.unit)
	fmt.Fprintln(w)

	avgSent, avgRecv := s.Average()
	totSent, totRecv := s.Transferred()
	rows := [][]string{
		s.row("Sent", s.sent, avgSent, totSent, s.sentTrend.String()),
		s.row("Received", s.recv, avgRecv, totRecv, s.recvTrend.String()),
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return summaryHeader
			}
			return summaryCell
		}).
		Headers("DIRECTION", "MIN", "AVG", "MAX", "TOTAL", "TREND").
		Rows(rows...)

	fmt.Fprintln(w, t)
}

func (s *Summary) row(name string, st rateStats, avg float64, total uint64, trend string) []string {
	return []string{
		name,
		sample.FormatRate(st.min),
		sample.FormatRate(math.Round(avg*100) / 100),
		sample.FormatRate(st.max),
		humanize.IBytes(total),
		trend,
	}
}
