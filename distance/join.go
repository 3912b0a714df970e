package distance

import (
	"github.com/pathfinder-nav/go-pathfinder/postprocess/result"
)

// Sample pairs a detection with the distance measured at its center for
// one frame
type Sample struct {
	Detection result.Detection
	Distance  Distance
	// Mask is the segment mask of the detection, nil for detection only
	// models
	Mask *result.ObjectMask
}

// Join queries the sensor at the center of every detection and returns one
// Sample per detection in the same order.  Detections without a distance are
// kept so they can still be rendered.  masks may be nil, otherwise masks are
// matched to detections by ID.
func Join(dets []result.Detection, masks []result.ObjectMask, sensor Sensor,
	screen Screen) []Sample {

	byID := make(map[int64]int, len(masks))

	for i, m := range masks {
		byID[m.DetectionID] = i
	}

	samples := make([]Sample, 0, len(dets))

	for _, det := range dets {

		s := Sample{
			Detection: det,
			Distance:  NoResult,
		}

		if sensor != nil {
			s.Distance = sensor.DistanceAt(screen.Center(det.Box))
		}

		if i, ok := byID[det.ID]; ok {
			s.Mask = &masks[i]
		}

		samples = append(samples, s)
	}

	return samples
}

// Near returns the samples with a valid distance of at most maxMeters
func Near(samples []Sample, maxMeters float32) []Sample {

	near := make([]Sample, 0, len(samples))

	for _, s := range samples {
		if s.Distance.Within(maxMeters) {
			near = append(near, s)
		}
	}

	return near
}
