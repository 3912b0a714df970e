package pipeline

import "time"

// Params are the frame scheduling settings of the Manager
type Params struct {
	// MinInterval is the least time between the start of two processed
	// frames, zero processes every frame that finds the pipeline idle
	MinInterval time.Duration
	// TrackingAdvisoryFrames is how many frames must pass after a tracking
	// advisory before another can be spoken
	TrackingAdvisoryFrames int
	// MetricsWindow is the number of frames FPS and latency are averaged
	// over
	MetricsWindow int
}

// DefaultParams returns the settings used on device
func DefaultParams() Params {
	return Params{
		MinInterval:            300 * time.Millisecond,
		TrackingAdvisoryFrames: 100,
		MetricsWindow:          30,
	}
}
