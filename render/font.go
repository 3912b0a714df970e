package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	// Alignment of the text label to the bounding box
	Alignment Alignment
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     Black,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 6,
		Alignment: Left,
	}
}

// boxLabel defines where a label should be rendered on the image
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// placeLabel positions a label of textSize above box according to the font
// alignment
func (f Font) placeLabel(box image.Rectangle, textSize image.Point,
	lineThickness int) (rect image.Rectangle, textPos image.Point) {

	var centerX int

	switch f.Alignment {
	case Center:
		centerX = (box.Min.X + box.Max.X) / 2

	case Right:
		centerX = box.Max.X - (textSize.X / 2) - f.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = box.Min.X + (textSize.X / 2) + f.LeftPad - (lineThickness / 2)
	}

	top := box.Min.Y

	// keep labels of boxes touching the top edge on screen
	if top-textSize.Y-f.TopPad-f.BottomPad < 0 {
		top = textSize.Y + f.TopPad + f.BottomPad
	}

	textPos = image.Pt(centerX-textSize.X/2, top-f.BottomPad)

	rect = image.Rect(centerX-textSize.X/2-f.LeftPad,
		top-textSize.Y-f.TopPad-f.BottomPad,
		centerX+textSize.X/2+f.RightPad, top)

	return rect, textPos
}

// drawLabels draws the labels on top of everything else already rendered
func drawLabels(img *gocv.Mat, labels []boxLabel, font Font) {
	for _, l := range labels {
		// draw box text gets written on
		gocv.Rectangle(img, l.rect, l.clr, -1)

		gocv.PutTextWithParams(img, l.text, l.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
