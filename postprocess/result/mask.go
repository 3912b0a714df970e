package result

import "image"

// ObjectMask is the binary segment mask of one detection mapped into the
// original image.  Mask has the same bounds as Rect, object pixels are 255
// and background pixels are 0.
type ObjectMask struct {
	// DetectionID is the ID of the Detection the mask belongs to
	DetectionID int64
	// Rect is the detection box in original image pixels
	Rect image.Rectangle
	// Mask holds the pixels inside Rect
	Mask *image.Gray
}

// Contains reports whether the image pixel (x,y) belongs to the object
func (m ObjectMask) Contains(x, y int) bool {
	if m.Mask == nil || !image.Pt(x, y).In(m.Rect) {
		return false
	}
	return m.Mask.GrayAt(x, y).Y != 0
}

// Area returns the number of object pixels
func (m ObjectMask) Area() int {
	if m.Mask == nil {
		return 0
	}

	n := 0

	for _, v := range m.Mask.Pix {
		if v != 0 {
			n++
		}
	}

	return n
}
