package speech

import (
	"sync"

	"github.com/cyclopcam/logs"
)

// Message is a piece of text and the priority it was spoken at
type Message struct {
	Text     string
	Priority Priority
}

// Arbiter is a Sink that decides whether a new message may interrupt what
// the Engine is currently saying, and remembers the last message spoken so it
// can be repeated on request
type Arbiter struct {
	engine Engine
	log    logs.Log

	mu   sync.Mutex
	last Message
}

// NewArbiter returns an Arbiter in front of engine
func NewArbiter(engine Engine, log logs.Log) *Arbiter {
	return &Arbiter{
		engine: engine,
		log:    log,
		last:   Message{Priority: PriorityLow},
	}
}

// Speak offers text at priority p.  While the engine is speaking only a
// strictly higher priority than the message in progress interrupts it.
func (a *Arbiter) Speak(text string, p Priority) Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.speak(Message{Text: text, Priority: p})
}

// speak must be called with the lock held
func (a *Arbiter) speak(msg Message) Status {

	if msg.Text == "" {
		return StatusEmpty
	}

	if len(msg.Text) > a.engine.MaxInputLength() {
		return StatusTooLong
	}

	if !a.engine.Ready() {
		return StatusNotReady
	}

	if a.engine.Speaking() {
		if msg.Priority <= a.last.Priority {
			a.log.Debugf("Message priority %s is not higher than current %s, ignoring",
				msg.Priority, a.last.Priority)
			return StatusRejected
		}

		a.log.Debugf("Message priority %s is higher than current %s, interrupting",
			msg.Priority, a.last.Priority)
	}

	a.last = msg

	if err := a.engine.Speak(msg.Text); err != nil {
		a.log.Warnf("Speech engine failed: %v", err)
		return StatusFailed
	}

	return StatusSuccess
}

// RepeatLast speaks the last message again at its original priority
func (a *Arbiter) RepeatLast() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.speak(a.last)
}

// Stop silences the engine and forgets the last message so that the next
// message of any priority is spoken
func (a *Arbiter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.engine.Stop()
	a.last = Message{Priority: PriorityLow}
}

// Last returns the last message spoken
func (a *Arbiter) Last() Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.last
}
