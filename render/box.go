package render

import (
	"fmt"

	"github.com/pathfinder-nav/go-pathfinder/distance"
	"gocv.io/x/gocv"
)

// DistanceBoxes renders the bounding box of every sample labelled with its
// class and distance, colored by how close the object is
func DistanceBoxes(img *gocv.Mat, samples []distance.Sample, font Font,
	lineThickness int) {

	width := img.Cols()
	height := img.Rows()

	// keep a record of all box labels for later rendering
	labels := make([]boxLabel, 0, len(samples))

	for _, s := range samples {

		useClr := distanceColor(s.Distance)

		rect := s.Detection.Box.Rect(width, height)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		text := sampleLabel(s)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		bRect, textPos := font.placeLabel(rect, textSize, lineThickness)

		labels = append(labels, boxLabel{
			rect:    bRect,
			clr:     useClr,
			text:    text,
			textPos: textPos,
		})
	}

	// draw all labels last so they are the top most layer and don't get
	// overlapped by neighbouring boxes
	drawLabels(img, labels, font)
}

// sampleLabel is the text shown above a box
func sampleLabel(s distance.Sample) string {
	if m, ok := s.Distance.Value(); ok {
		return fmt.Sprintf("%s %.1fm", s.Detection.ClassName, m)
	}
	return fmt.Sprintf("%s ?", s.Detection.ClassName)
}
