package sample

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Header is the CSV header row.
var Header = []string{"Time", "Bytes Sent", "Bytes Received", "ID", "Type"}

// Sample is a single throughput measurement ready to be emitted.
type Sample struct {
	Time        time.Time
	Sent        float64
	Recv        float64
	MachineID   string
	MachineType MachineType
}

// Rate converts the difference between two cumulative counter readings into
// units per second, rounded to two decimal places.
//
// The difference is taken on the integers so large counters stay exact.
// Counter resets are not detected; a reset produces a negative rate.
func Rate(prev, cur uint64, unit Unit, interval int) float64 {
	if interval < 1 {
		interval = 1
	}
	delta := float64(int64(cur - prev))
	return round2(delta / unit.Divisor() / float64(interval))
}

// New computes a Sample from two consecutive counter readings.
func New(at time.Time, prev, cur Counters, unit Unit, interval int, id string, typ MachineType) Sample {
	return Sample{
		Time:        at,
		Sent:        Rate(prev.BytesSent, cur.BytesSent, unit, interval),
		Recv:        Rate(prev.BytesRecv, cur.BytesRecv, unit, interval),
		MachineID:   id,
		MachineType: typ,
	}
}

// Record returns the CSV fields for the sample in header order.
func (s Sample) Record() []string {
	return []string{
		strconv.FormatInt(s.Time.Round(time.Second).Unix(), 10),
		FormatRate(s.Sent),
		FormatRate(s.Recv),
		s.MachineID,
		string(s.MachineType),
	}
}

// FormatRate renders a rate with the fewest digits needed, keeping at least
// one fractional digit so that whole numbers read as "1.0".
func FormatRate(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
