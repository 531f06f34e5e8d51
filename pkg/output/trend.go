package output

import "strings"

// sparkline block characters from lowest to highest
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// trend keeps the most recent values of one rate for sparkline rendering.
type trend struct {
	values []float64
	window int
}

func newTrend(window int) *trend {
	if window < 1 {
		window = 20
	}
	return &trend{window: window}
}

func (t *trend) record(v float64) {
	t.values = append(t.values, v)
	if len(t.values) > t.window {
		t.values = t.values[len(t.values)-t.window:]
	}
}

// String renders the window scaled between its own min and max.
func (t *trend) String() string {
	if len(t.values) == 0 {
		return ""
	}

	lo, hi := t.values[0], t.values[0]
	for _, v := range t.values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var b strings.Builder
	rng := hi - lo
	top := len(sparkBlocks) - 1
	for _, v := range t.values {
		idx := 0
		if rng > 0 {
			idx = int((v - lo) / rng * float64(top))
		}
		b.WriteRune(sparkBlocks[max(0, min(idx, top))])
	}
	return b.String()
}
