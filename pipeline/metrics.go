package pipeline

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/bmharper/ringbuffer"
	"gonum.org/v1/gonum/stat"
)

// frameTiming is when a frame started processing and how long it took
type frameTiming struct {
	start   time.Time
	latency time.Duration
}

// Metrics keeps rolling frame rate and latency figures over the last
// processed frames
type Metrics struct {
	mu     sync.Mutex
	window int
	frames ringbuffer.RingP[frameTiming]
	total  int64
}

// NewMetrics returns Metrics over a window of the last window frames
func NewMetrics(window int) *Metrics {

	if window < 2 {
		window = 2
	}

	// the ring holds one item less than its size, which must be a power of 2
	return &Metrics{
		window: window,
		frames: ringbuffer.NewRingP[frameTiming](nextPowerOf2(window + 1)),
	}
}

func nextPowerOf2(n int) int {
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}

// recent returns the number of frames in the window and the ring index of
// the oldest of them
func (m *Metrics) recent() (n, first int) {
	n = m.frames.Len()
	if n > m.window {
		return m.window, n - m.window
	}
	return n, 0
}

// Record adds a processed frame
func (m *Metrics) Record(start time.Time, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.frames.Add(frameTiming{start: start, latency: latency})
	m.total++
}

// FPS returns the rate frames were processed at across the window, zero
// until two frames have been seen
func (m *Metrics) FPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, first := m.recent()

	if n < 2 {
		return 0
	}

	span := m.frames.Peek(first + n - 1).start.Sub(m.frames.Peek(first).start)

	if span <= 0 {
		return 0
	}

	return float64(n-1) / span.Seconds()
}

// Latency returns the mean end to end latency across the window
func (m *Metrics) Latency() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, first := m.recent()

	if n == 0 {
		return 0
	}

	ms := make([]float64, n)

	for i := 0; i < n; i++ {
		ms[i] = float64(m.frames.Peek(first+i).latency) / float64(time.Millisecond)
	}

	return time.Duration(stat.Mean(ms, nil) * float64(time.Millisecond))
}

// Frames returns the number of frames processed since creation
func (m *Metrics) Frames() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.total
}

// String formats the metrics for drawing on screen
func (m *Metrics) String() string {
	return fmt.Sprintf("FPS: %.1f\nLatency: %dms", m.FPS(), m.Latency().Milliseconds())
}
