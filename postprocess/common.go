package postprocess

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/pathfinder-nav/go-pathfinder/postprocess/result"
)

// sortByConfidence sorts the detections in place by descending confidence.
// Detections with equal confidence keep their original order.
func sortByConfidence(dets []result.Detection) {
	sort.SliceStable(dets, func(i, j int) bool {
		return dets[i].Confidence > dets[j].Confidence
	})
}

// NMS implements a greedy Non-Maximum Suppression (NMS) algorithm.  The
// highest confidence detection remaining is kept and every other candidate
// overlapping it with an IoU of iouThreshold or more is dropped.  Unless
// classAware is set, suppression ignores the predicted class so a box can
// remove an overlapping box of another class.
//
// The input slice is not modified.
func NMS(dets []result.Detection, iouThreshold float32,
	classAware bool) []result.Detection {

	if len(dets) == 0 {
		return nil
	}

	sorted := make([]result.Detection, len(dets))
	copy(sorted, dets)
	sortByConfidence(sorted)

	keep := make([]result.Detection, 0, len(sorted))
	used := make([]bool, len(sorted))

	for i := range sorted {
		if used[i] {
			continue
		}

		keep = append(keep, sorted[i])

		for j := i + 1; j < len(sorted); j++ {
			if used[j] {
				continue
			}

			if classAware && sorted[i].ClassID != sorted[j].ClassID {
				continue
			}

			if result.IoU(sorted[i].Box, sorted[j].Box) >= iouThreshold {
				used[j] = true
			}
		}
	}

	return keep
}

// sigmoid is the logistic function
func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// isFinite32 checks if a float32 is finite (not NaN or Inf)
func isFinite32(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
