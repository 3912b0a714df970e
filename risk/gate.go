package risk

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Gate rate limits spoken alerts by severity tier.  CRITICAL and HIGH alerts
// need the short cooldown to have passed since the last alert, MEDIUM alerts
// the long one, LOW and SAFE never fire.  A single timestamp is shared by
// every object so a different critical object does not get its own budget.
type Gate struct {
	clock    clock.Clock
	short    time.Duration
	long     time.Duration
	mu       sync.Mutex
	last     time.Time
	hasFired bool
}

// NewGate returns a Gate using the given clock and cooldowns
func NewGate(clk clock.Clock, short, long time.Duration) *Gate {

	if clk == nil {
		clk = clock.New()
	}

	return &Gate{
		clock: clk,
		short: short,
		long:  long,
	}
}

// Allow reports whether an alert of the given level may fire now.  A
// permitted alert restarts the cooldown.
func (g *Gate) Allow(level Level) bool {

	var cooldown time.Duration

	switch level {
	case LevelCritical, LevelHigh:
		cooldown = g.short
	case LevelMedium:
		cooldown = g.long
	default:
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()

	if g.hasFired && now.Sub(g.last) < cooldown {
		return false
	}

	g.last = now
	g.hasFired = true

	return true
}

// Reset forgets the last alert so the next one fires immediately
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.last = time.Time{}
	g.hasFired = false
}

// LastAlert returns when the last alert fired and false if none has since
// construction or the last Reset
func (g *Gate) LastAlert() (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.last, g.hasFired
}
