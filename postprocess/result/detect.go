package result

import (
	"image"

	"github.com/chewxy/math32"
)

// DetectionResult is implemented by the results of each post processor
type DetectionResult interface {
	GetDetectResults() []Detection
}

// Box is an axis aligned bounding box normalised to [0,1] relative to the
// model input frame.  The center form is stored, corners are derived from it
// so the two can never disagree.
type Box struct {
	CX float32
	CY float32
	W  float32
	H  float32
}

// BoxFromCorners returns the Box spanning the given corners
func BoxFromCorners(x1, y1, x2, y2 float32) Box {
	return Box{
		CX: (x1 + x2) / 2,
		CY: (y1 + y2) / 2,
		W:  x2 - x1,
		H:  y2 - y1,
	}
}

// X1 is the left edge
func (b Box) X1() float32 { return b.CX - b.W/2 }

// Y1 is the top edge
func (b Box) Y1() float32 { return b.CY - b.H/2 }

// X2 is the right edge
func (b Box) X2() float32 { return b.CX + b.W/2 }

// Y2 is the bottom edge
func (b Box) Y2() float32 { return b.CY + b.H/2 }

// Area returns the box area, zero for degenerate boxes
func (b Box) Area() float32 {
	if b.W <= 0 || b.H <= 0 {
		return 0
	}
	return b.W * b.H
}

// InUnit reports whether all four corners lie inside [0,1]
func (b Box) InUnit() bool {
	return b.X1() >= 0 && b.Y1() >= 0 && b.X2() <= 1 && b.Y2() <= 1 &&
		b.X1() <= b.X2() && b.Y1() <= b.Y2()
}

// Rect projects the box into pixel space of the given dimensions
func (b Box) Rect(width, height int) image.Rectangle {
	w := float32(width)
	h := float32(height)

	return image.Rect(
		int(math32.Round(b.X1()*w)),
		int(math32.Round(b.Y1()*h)),
		int(math32.Round(b.X2()*w)),
		int(math32.Round(b.Y2()*h)),
	)
}

// Detection defines the attributes of a single object detected.  A Detection
// is created once during decoding and is not modified afterwards.
type Detection struct {
	// ID is a unique ID assigned to the detection result
	ID int64
	// Box is the normalised bounding box of the object location
	Box Box
	// Confidence is the score of the winning class
	Confidence float32
	// ClassID is the line number in the labels file the Model was trained on
	// defining the Class of the detected object
	ClassID int
	// ClassName is the label resolved from ClassID
	ClassName string
	// MaskCoeffs are the per detection mask coefficients, only set for
	// segmentation models
	MaskCoeffs []float32
}

// IoU returns the Intersection over Union of two boxes using their corner
// form.  A zero union gives zero.
func IoU(a, b Box) float32 {

	iw := math32.Min(a.X2(), b.X2()) - math32.Max(a.X1(), b.X1())
	ih := math32.Min(a.Y2(), b.Y2()) - math32.Max(a.Y1(), b.Y1())

	if iw <= 0 || ih <= 0 {
		return 0
	}

	inter := iw * ih
	union := a.Area() + b.Area() - inter

	if union <= 0 {
		return 0
	}

	iou := inter / union

	// rounding can push a self comparison a hair over one
	if iou > 1 {
		return 1
	}

	return iou
}
