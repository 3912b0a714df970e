package risk

import "time"

// Params defines the thresholds and weights used when assessing risk
type Params struct {
	// CriticalDistance, HighDistance, MediumDistance and LowDistance are the
	// upper bounds in metres, exclusive, of each risk level.  Anything at
	// LowDistance or beyond is SAFE.
	CriticalDistance float32
	HighDistance     float32
	MediumDistance   float32
	LowDistance      float32
	// NearDistance is the maximum distance in metres, inclusive, for an
	// object to be considered at all
	NearDistance float32
	// WallDistance is the distance in metres below which a wall is warned
	// about when no object is near
	WallDistance float32
	// AlertCooldown is the minimum time between CRITICAL or HIGH alerts
	AlertCooldown time.Duration
	// NarrationCooldown is the minimum time since the last alert before a
	// MEDIUM alert is spoken
	NarrationCooldown time.Duration
	// ClassPriorities weights object classes by how dangerous they are
	ClassPriorities map[string]float32
	// DefaultPriority is used for classes missing from ClassPriorities
	DefaultPriority float32
}

// DefaultParams returns the Params used for pedestrian navigation:
// - Levels: CRITICAL < 0.5m, HIGH < 1m, MEDIUM < 2m, LOW < 3m
// - Near objects: up to 3m
// - Wall warning: below 0.5m
// - Cooldowns: 2s for CRITICAL and HIGH, 5s for MEDIUM
func DefaultParams() Params {
	return Params{
		CriticalDistance:  0.5,
		HighDistance:      1.0,
		MediumDistance:    2.0,
		LowDistance:       3.0,
		NearDistance:      3.0,
		WallDistance:      0.5,
		AlertCooldown:     2 * time.Second,
		NarrationCooldown: 5 * time.Second,
		ClassPriorities:   DefaultClassPriorities(),
		DefaultPriority:   1.0,
	}
}

// DefaultClassPriorities returns the class weights for COCO labels.  People
// and vehicles weigh the most, fixed street furniture sits around one and
// small objects below it.
func DefaultClassPriorities() map[string]float32 {
	return map[string]float32{
		"person":     2.0,
		"car":        1.8,
		"bus":        1.8,
		"truck":      1.8,
		"bicycle":    1.7,
		"motorcycle": 1.7,

		"fire hydrant":  1.3,
		"chair":         1.2,
		"bench":         1.2,
		"potted plant":  1.1,
		"traffic light": 1.0,
		"stop sign":     1.0,

		"backpack": 0.9,
		"bottle":   0.8,
		"cup":      0.7,
	}
}

// Level maps a distance in metres to a risk level
func (p Params) Level(meters float32) Level {
	switch {
	case meters < p.CriticalDistance:
		return LevelCritical
	case meters < p.HighDistance:
		return LevelHigh
	case meters < p.MediumDistance:
		return LevelMedium
	case meters < p.LowDistance:
		return LevelLow
	default:
		return LevelSafe
	}
}

// classPriority returns the weight of the named class
func (p Params) classPriority(className string) float32 {
	if w, ok := p.ClassPriorities[className]; ok {
		return w
	}
	return p.DefaultPriority
}
