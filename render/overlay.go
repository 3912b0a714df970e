package render

import (
	"image"
	"strings"
	"sync"

	"github.com/pathfinder-nav/go-pathfinder/distance"
	"gocv.io/x/gocv"
)

// Overlay holds the samples of the latest processed frame and draws them over
// camera images.  Frames are processed and drawn on different goroutines so
// all access is locked.
type Overlay struct {
	// Font used for box labels and metrics
	Font Font
	// LineThickness of the bounding boxes
	LineThickness int
	// MaskAlpha is the transparency of segment masks
	MaskAlpha float32

	mu          sync.Mutex
	samples     []distance.Sample
	metrics     string
	showMetrics bool
}

// NewOverlay returns an Overlay with default drawing settings
func NewOverlay() *Overlay {
	return &Overlay{
		Font:          DefaultFont(),
		LineThickness: 2,
		MaskAlpha:     0.5,
	}
}

// Render replaces the samples shown.  Passing nil clears the overlay.
func (o *Overlay) Render(samples []distance.Sample) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if samples == nil {
		o.samples = nil
		return
	}

	o.samples = make([]distance.Sample, len(samples))
	copy(o.samples, samples)
}

// Samples returns a copy of the samples currently shown
func (o *Overlay) Samples() []distance.Sample {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.samples == nil {
		return nil
	}

	samples := make([]distance.Sample, len(o.samples))
	copy(samples, o.samples)

	return samples
}

// SetMetrics sets the text drawn in the top left corner when metrics are
// shown, lines are separated by newlines
func (o *Overlay) SetMetrics(text string) {
	o.mu.Lock()
	o.metrics = text
	o.mu.Unlock()
}

// ShowMetrics turns drawing of the metrics text on or off
func (o *Overlay) ShowMetrics(show bool) {
	o.mu.Lock()
	o.showMetrics = show
	o.mu.Unlock()
}

// Draw renders masks, boxes and metrics onto img
func (o *Overlay) Draw(img *gocv.Mat) error {

	o.mu.Lock()
	samples := o.samples
	metrics := o.metrics
	show := o.showMetrics
	o.mu.Unlock()

	if err := ObjectMasks(img, samples, o.MaskAlpha); err != nil {
		return err
	}

	DistanceBoxes(img, samples, o.Font, o.LineThickness)

	if show && metrics != "" {
		o.drawMetrics(img, metrics)
	}

	return nil
}

func (o *Overlay) drawMetrics(img *gocv.Mat, metrics string) {

	f := o.Font
	y := 0

	for _, line := range strings.Split(metrics, "\n") {
		textSize := gocv.GetTextSize(line, f.Face, f.Scale, f.Thickness)
		y += textSize.Y + f.TopPad + f.BottomPad

		gocv.Rectangle(img, image.Rect(0, y-textSize.Y-f.TopPad-f.BottomPad,
			textSize.X+f.LeftPad+f.RightPad, y), White, -1)

		gocv.PutTextWithParams(img, line, image.Pt(f.LeftPad, y-f.BottomPad),
			f.Face, f.Scale, f.Color, f.Thickness, f.LineType, false)
	}
}
