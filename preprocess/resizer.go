package preprocess

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/pathfinder-nav/go-pathfinder/postprocess/result"
	"golang.org/x/image/draw"
)

// Resizer defines the struct used for handling image resizing between the
// camera frame and the model input tensor.  The frame is stretched to the
// input dimensions without letterbox padding so a box normalised to the
// model input is also normalised to the source frame.
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// scaleX and scaleY are source pixels per model input pixel
	scaleX float32
	scaleY float32
	// interp is the scaler used when resizing frames
	interp draw.Interpolator
}

// NewResizer returns a resizer used for scaling an image to the needed
// dimensions for input tensor size
func NewResizer(srcWidth, srcHeight, destWidth, destHeight int) *Resizer {
	r := &Resizer{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
		interp:     draw.ApproxBiLinear,
	}

	// precalculate scaling factors
	r.preCalc()

	return r
}

// preCalc the scaling factors for source and destination
func (r *Resizer) preCalc() {

	if r.destWidth > 0 {
		r.scaleX = float32(r.srcWidth) / float32(r.destWidth)
	}

	if r.destHeight > 0 {
		r.scaleY = float32(r.srcHeight) / float32(r.destHeight)
	}
}

// Resize stretches the source frame to the model input dimensions
func (r *Resizer) Resize(src image.Image) *image.RGBA {

	dst := image.NewRGBA(image.Rect(0, 0, r.destWidth, r.destHeight))
	r.interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return dst
}

// ScaleX returns the horizontal factor mapping model input pixels to
// source image pixels
func (r *Resizer) ScaleX() float32 {
	return r.scaleX
}

// ScaleY returns the vertical factor mapping model input pixels to source
// image pixels
func (r *Resizer) ScaleY() float32 {
	return r.scaleY
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}

// DestWidth returns the width of the model input
func (r *Resizer) DestWidth() int {
	return r.destWidth
}

// DestHeight returns the height of the model input
func (r *Resizer) DestHeight() int {
	return r.destHeight
}

// InputRect returns the normalised box in model input pixels
func (r *Resizer) InputRect(b result.Box) (x1, y1, x2, y2 float32) {

	w := float32(r.destWidth)
	h := float32(r.destHeight)

	return b.X1() * w, b.Y1() * h, b.X2() * w, b.Y2() * h
}

// SourceRect maps a box given in model input pixels to a rectangle in
// source image pixels using the resizer scale factors
func (r *Resizer) SourceRect(x1, y1, x2, y2 float32) image.Rectangle {
	return image.Rect(
		int(math32.Round(x1*r.scaleX)),
		int(math32.Round(y1*r.scaleY)),
		int(math32.Round(x2*r.scaleX)),
		int(math32.Round(y2*r.scaleY)),
	).Intersect(image.Rect(0, 0, r.srcWidth, r.srcHeight))
}
