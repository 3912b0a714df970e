package risk

// Level is the severity of the most dangerous object in a frame, ordered
// from SAFE to CRITICAL
type Level int

const (
	LevelSafe Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

// String returns a readable representation of the Level
func (l Level) String() string {
	switch l {
	case LevelSafe:
		return "SAFE"
	case LevelLow:
		return "LOW"
	case LevelMedium:
		return "MEDIUM"
	case LevelHigh:
		return "HIGH"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Description returns a short human readable description of the Level
func (l Level) Description() string {
	switch l {
	case LevelSafe:
		return "Safe"
	case LevelLow:
		return "Low risk"
	case LevelMedium:
		return "Medium risk"
	case LevelHigh:
		return "High risk"
	case LevelCritical:
		return "Critical risk"
	default:
		return "Unknown"
	}
}

// Direction is where an object sits horizontally relative to the user
type Direction int

const (
	DirectionCenter Direction = iota
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "center"
	}
}

// DirectionOf maps a normalised horizontal center position to a Direction
// by thirds of the screen
func DirectionOf(cx float32) Direction {
	switch {
	case cx < 1.0/3.0:
		return DirectionLeft
	case cx > 2.0/3.0:
		return DirectionRight
	default:
		return DirectionCenter
	}
}

// message returns the alert text for an object at the given level and
// direction
func message(level Level, dir Direction) string {
	switch level {
	case LevelCritical:
		return "Stop! Obstacle very close"

	case LevelHigh:
		if dir == DirectionCenter {
			return "Caution! Obstacle ahead"
		}
		return "Caution! Obstacle on the " + dir.String()

	case LevelMedium:
		if dir != DirectionCenter {
			return "Attention on the " + dir.String()
		}
		return "Continue carefully"

	case LevelLow:
		return "Proceed with attention"

	default:
		return "Proceed"
	}
}

// wallMessage returns the alert text for a nearby wall
func wallMessage(level Level) string {
	if level == LevelCritical {
		return "Stop! Wall ahead"
	}
	return "Attention, wall nearby"
}
