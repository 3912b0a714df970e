// Package distance joins detections with depth measurements from the spatial
// sensing collaborator.
package distance

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Distance is a depth measurement in metres that may be absent.  An absent
// measurement means the sensor had nothing to report, which is different to
// an object that was measured far away.
type Distance struct {
	meters float32
	valid  bool
}

// NoResult is the absent Distance
var NoResult = Distance{}

// Meters returns a valid Distance.  Negative, NaN or infinite values are
// not measurements and give NoResult.
func Meters(m float32) Distance {
	if math32.IsNaN(m) || math32.IsInf(m, 0) || m < 0 {
		return NoResult
	}
	return Distance{meters: m, valid: true}
}

// Value returns the metres and whether the measurement is present
func (d Distance) Value() (float32, bool) {
	return d.meters, d.valid
}

// Valid reports whether the measurement is present
func (d Distance) Valid() bool {
	return d.valid
}

// Within reports whether the measurement is present and no more than max
// metres away
func (d Distance) Within(max float32) bool {
	return d.valid && d.meters <= max
}

func (d Distance) String() string {
	if !d.valid {
		return "no result"
	}
	return fmt.Sprintf("%.2fm", d.meters)
}
