package risk

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/chewxy/math32"
	"github.com/cyclopcam/logs"
	"github.com/pathfinder-nav/go-pathfinder/distance"
)

// score weights
const (
	distanceWeight   = 5.0
	positionWeight   = 3.0
	priorityWeight   = 2.0
	confidenceWeight = 1.0
	// distanceOffset keeps the distance term finite at zero metres
	distanceOffset = 0.1
)

// Assessment is the outcome of analysing one frame
type Assessment struct {
	// Critical is the most dangerous object, nil when there is none
	Critical *distance.Sample
	// Level is the risk level of the critical object or wall
	Level Level
	// Message is the alert text
	Message string
	// Direction is where the critical object is
	Direction Direction
	// ShouldAlert is set when the alert passed the cooldown gate and should
	// be spoken
	ShouldAlert bool
	// Wall is set for a wall warning
	Wall bool
	// Distance is the distance to the critical object or wall
	Distance distance.Distance
}

// FullMessage returns the alert text prefixed with what the danger is and
// how far away
func (a Assessment) FullMessage() string {

	m, ok := a.Distance.Value()

	switch {
	case a.Critical != nil && ok:
		return fmt.Sprintf("%s at %.1f meters. %s", a.Critical.Detection.ClassName, m, a.Message)
	case a.Wall && ok:
		return fmt.Sprintf("Wall at %.1f meters. %s", m, a.Message)
	default:
		return "Path clear. Proceed."
	}
}

func (a Assessment) String() string {
	return fmt.Sprintf("Assessment[level=%s, alert=%t, message=%s]", a.Level, a.ShouldAlert, a.Message)
}

// Analyzer picks the single most dangerous object in each frame and decides
// whether it is worth an alert
type Analyzer struct {
	// Params are the thresholds and weights in use
	Params Params
	gate   *Gate
	log    logs.Log
}

// NewAnalyzer returns an Analyzer whose cooldown gate runs on clk
func NewAnalyzer(p Params, clk clock.Clock, log logs.Log) *Analyzer {
	return &Analyzer{
		Params: p,
		gate:   NewGate(clk, p.AlertCooldown, p.NarrationCooldown),
		log:    log,
	}
}

// ResetCooldown lets the next alert fire regardless of when the last one did
func (a *Analyzer) ResetCooldown() {
	a.gate.Reset()
}

// Gate returns the cooldown gate alerts are passed through
func (a *Analyzer) Gate() *Gate {
	return a.gate
}

// Analyze converts the frame's samples into exactly one Assessment.  Only
// samples with a valid distance within Params.NearDistance are considered.
// With none of those a wall closer than Params.WallDistance gives a wall
// warning, otherwise the frame is SAFE.
func (a *Analyzer) Analyze(samples []distance.Sample, wall distance.Distance) Assessment {

	near := distance.Near(samples, a.Params.NearDistance)

	a.log.Debugf("Analysing %d objects, %d near", len(samples), len(near))

	if len(near) == 0 {
		if m, ok := wall.Value(); ok && m < a.Params.WallDistance {
			return a.wallWarning(wall)
		}

		return Assessment{
			Level:     LevelSafe,
			Message:   message(LevelSafe, DirectionCenter),
			Direction: DirectionCenter,
			Distance:  distance.NoResult,
		}
	}

	best := 0
	bestScore := a.score(near[0])

	for i := 1; i < len(near); i++ {
		// strictly greater so the first seen wins a tie
		if s := a.score(near[i]); s > bestScore {
			best = i
			bestScore = s
		}
	}

	critical := near[best]
	m, _ := critical.Distance.Value()
	level := a.Params.Level(m)
	dir := DirectionOf(critical.Detection.Box.CX)

	a.log.Debugf("Most critical object %s at %.2fm, score %.2f, level %s",
		critical.Detection.ClassName, m, bestScore, level)

	return Assessment{
		Critical:    &critical,
		Level:       level,
		Message:     message(level, dir),
		Direction:   dir,
		ShouldAlert: a.allow(level),
		Distance:    critical.Distance,
	}
}

// score rates how dangerous a sample is from its distance, how close it is
// to the center of view, its class and the detection confidence
func (a *Analyzer) score(s distance.Sample) float32 {

	m, _ := s.Distance.Value()

	return distanceWeight*(1/(m+distanceOffset)) +
		positionWeight*positionScore(s.Detection.Box.CX, s.Detection.Box.CY) +
		priorityWeight*a.Params.classPriority(s.Detection.ClassName) +
		confidenceWeight*s.Detection.Confidence
}

// positionScore is 1 at the center of the screen falling to 0 at the edges,
// using the distance from center normalised by half the screen on each axis
func positionScore(cx, cy float32) float32 {
	dx := (cx - 0.5) / 0.5
	dy := (cy - 0.5) / 0.5

	return math32.Max(0, 1-math32.Hypot(dx, dy))
}

// wallWarning builds the assessment for a wall with no object in front of it
func (a *Analyzer) wallWarning(wall distance.Distance) Assessment {

	m, _ := wall.Value()
	level := LevelHigh

	if m < a.Params.CriticalDistance {
		level = LevelCritical
	}

	a.log.Debugf("Wall detected at %.2fm", m)

	return Assessment{
		Level:       level,
		Message:     wallMessage(level),
		Direction:   DirectionCenter,
		ShouldAlert: a.allow(level),
		Wall:        true,
		Distance:    wall,
	}
}

// allow passes the level through the cooldown gate
func (a *Analyzer) allow(level Level) bool {

	if a.gate.Allow(level) {
		return true
	}

	if level >= LevelMedium {
		a.log.Debugf("%s alert suppressed, cooldown active", level)
	}

	return false
}
