package preprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation selects the resampling kernel used when scaling masks
type Interpolation int

const (
	InterpolationNearest  Interpolation = 0
	InterpolationBilinear Interpolation = 1
)

// String returns a readable representation of the Interpolation
func (i Interpolation) String() string {
	switch i {
	case InterpolationNearest:
		return "nearest"
	case InterpolationBilinear:
		return "bilinear"
	default:
		return "unknown"
	}
}

func (i Interpolation) interpolator() draw.Interpolator {
	if i == InterpolationBilinear {
		return draw.BiLinear
	}
	return draw.NearestNeighbor
}

// ResizeGray scales a single channel image to width x height.  Binary masks
// stay binary: after bilinear filtering pixels are thresholded at half
// intensity.
func ResizeGray(src *image.Gray, width, height int, interp Interpolation) *image.Gray {

	dst := image.NewGray(image.Rect(0, 0, width, height))

	if width <= 0 || height <= 0 || src.Bounds().Empty() {
		return dst
	}

	interp.interpolator().Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	if interp == InterpolationBilinear {
		for i, v := range dst.Pix {
			if v >= 128 {
				dst.Pix[i] = 255
			} else {
				dst.Pix[i] = 0
			}
		}
	}

	return dst
}

// CropGray returns a copy of the rect region of src, with the result bounds
// starting at the origin.  Parts of rect outside src are left as background.
func CropGray(src *image.Gray, rect image.Rectangle) *image.Gray {

	dst := image.NewGray(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)

	return dst
}
