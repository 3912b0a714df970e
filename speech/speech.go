package speech

import (
	"fmt"
	"io"
	"sync"
)

// Priority orders spoken messages.  A message may only interrupt speech of a
// strictly lower priority.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityHigh:
		return "HIGH"
	case PriorityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Status is the outcome of offering a message to a Sink
type Status int

const (
	StatusSuccess Status = iota
	// StatusRejected means something of equal or higher priority is being
	// spoken
	StatusRejected
	// StatusNotReady means the engine has not finished initialising
	StatusNotReady
	// StatusFailed means the engine refused the message
	StatusFailed
	// StatusTooLong means the text exceeds the engine input limit
	StatusTooLong
	// StatusEmpty means there was no text to speak
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRejected:
		return "rejected, lower priority"
	case StatusNotReady:
		return "not ready"
	case StatusFailed:
		return "speak failed"
	case StatusTooLong:
		return "text too long"
	case StatusEmpty:
		return "text empty"
	default:
		return "unknown"
	}
}

// Sink accepts alert text for speaking
type Sink interface {
	Speak(text string, p Priority) Status
}

// Engine is the platform text to speech engine
type Engine interface {
	// Ready reports whether the engine has initialised
	Ready() bool
	// Speaking reports whether the engine is currently speaking
	Speaking() bool
	// Speak flushes anything being spoken and starts speaking text
	Speak(text string) error
	// Stop silences the engine
	Stop()
	// MaxInputLength is the longest text the engine accepts
	MaxInputLength() int
}

// WriterEngine is an Engine that writes each message as a line of text,
// used where no speech synthesiser is available
type WriterEngine struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterEngine returns a WriterEngine writing to w
func NewWriterEngine(w io.Writer) *WriterEngine {
	return &WriterEngine{w: w}
}

func (e *WriterEngine) Ready() bool { return true }

func (e *WriterEngine) Speaking() bool { return false }

func (e *WriterEngine) Speak(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := fmt.Fprintf(e.w, "SAY: %s\n", text)
	return err
}

func (e *WriterEngine) Stop() {}

func (e *WriterEngine) MaxInputLength() int { return 4000 }
