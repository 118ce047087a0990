// Package motion turns a stream of raw accelerometer samples into
// discrete shake pulses: samples are low-pass filtered, high-magnitude
// readings are counted over a sliding time window, and a pulse fires
// when the count crosses a threshold, subject to a debounce.
package motion

import "math"

// Sample is one raw accelerometer reading. Axes the device did not
// report arrive as 0.
type Sample struct {
	X           float64
	Y           float64
	Z           float64
	TimestampMs int64
}

// Pulse signals that enough high-magnitude motion was observed in the
// recent window.
type Pulse struct {
	TimestampMs int64
	Magnitude   float64
}

// Config tunes the detector. Start from DefaultConfig and override;
// the zero value is a degenerate detector that pulses on everything.
type Config struct {
	// LowPassFactor weights the previous smoothed value; higher means
	// more smoothing and slower response. Must stay in [0, 1).
	LowPassFactor float64
	// MagnitudeThreshold is the minimum smoothed planar magnitude for a
	// sample to count toward the shake window.
	MagnitudeThreshold float64
	// CountThreshold is how many qualifying samples within WindowMs
	// trigger a pulse.
	CountThreshold int
	// WindowMs bounds the age of counted samples.
	WindowMs int64
	// DebounceMs is the minimum gap between two emitted pulses.
	DebounceMs int64
}

const (
	DefaultLowPassFactor      = 0.8
	DefaultMagnitudeThreshold = 7
	DefaultCountThreshold     = 7
	DefaultWindowMs           = 1000
	DefaultDebounceMs         = 3000
)

func DefaultConfig() Config {
	return Config{
		LowPassFactor:      DefaultLowPassFactor,
		MagnitudeThreshold: DefaultMagnitudeThreshold,
		CountThreshold:     DefaultCountThreshold,
		WindowMs:           DefaultWindowMs,
		DebounceMs:         DefaultDebounceMs,
	}
}

type event struct {
	timestampMs int64
	x, y        float64
}

// Detector owns the smoothing state, the windowed history of
// high-magnitude events, and the debounce stamp. Not safe for
// concurrent use; a session feeds it from a single goroutine.
type Detector struct {
	cfg Config

	smoothedX float64
	smoothedY float64

	history     []event
	lastPulseMs int64
	pulsed      bool
}

func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Ingest folds one sample into the filter and reports whether it
// completed a shake. Samples below the magnitude threshold still update
// the smoothing state but never enter the window. Once the window holds
// CountThreshold events the history is cleared outright, whether or not
// the debounce lets a pulse out, so the same burst cannot re-trigger.
func (d *Detector) Ingest(s Sample) (Pulse, bool) {
	a := d.cfg.LowPassFactor
	d.smoothedX = s.X*(1-a) + d.smoothedX*a
	d.smoothedY = s.Y*(1-a) + d.smoothedY*a

	d.pruneOlderThan(s.TimestampMs - d.cfg.WindowMs)

	// z is deliberately left out: we only care about lateral shakes.
	mag := math.Hypot(d.smoothedX, d.smoothedY)
	if mag < d.cfg.MagnitudeThreshold {
		return Pulse{}, false
	}

	d.history = append(d.history, event{timestampMs: s.TimestampMs, x: d.smoothedX, y: d.smoothedY})
	if len(d.history) < d.cfg.CountThreshold {
		return Pulse{}, false
	}
	d.history = d.history[:0]

	if d.pulsed && s.TimestampMs-d.lastPulseMs <= d.cfg.DebounceMs {
		return Pulse{}, false
	}
	d.pulsed = true
	d.lastPulseMs = s.TimestampMs
	return Pulse{TimestampMs: s.TimestampMs, Magnitude: mag}, true
}

// Reset drops the windowed history and the debounce stamp. The smoothed
// vector tracks the physical sensor, not the game, so it survives.
func (d *Detector) Reset() {
	d.history = d.history[:0]
	d.lastPulseMs = 0
	d.pulsed = false
}

// Pending returns how many qualifying samples are currently in the
// window. Pruning happens on ingest, so this is a snapshot, not a
// recomputation.
func (d *Detector) Pending() int {
	return len(d.history)
}

func (d *Detector) pruneOlderThan(cutoffMs int64) {
	keep := 0
	for keep < len(d.history) && d.history[keep].timestampMs < cutoffMs {
		keep++
	}
	if keep > 0 {
		d.history = append(d.history[:0], d.history[keep:]...)
	}
}
