package render

import (
	"fmt"
	"image/color"

	"github.com/pathfinder-nav/go-pathfinder/distance"
	"github.com/pathfinder-nav/go-pathfinder/postprocess/result"
	"gocv.io/x/gocv"
)

// ObjectMasks renders the segment mask of every sample that has one as a
// transparent overlay in the color of its class
func ObjectMasks(img *gocv.Mat, samples []distance.Sample, alpha float32) error {

	width := img.Cols()
	height := img.Rows()

	if !hasMask(samples) {
		return nil
	}

	if img.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("mask overlay needs a BGR image, got %v", img.Type())
	}

	// it is too slow to manipulate pixel by pixel using GoCV due to slowness
	// over CGO.  So we copy the bytes from the source image and manipulate
	// the bytes directly before copying back to a Mat
	imgData := img.ToBytes()

	for _, s := range samples {
		if s.Mask != nil {
			blendMask(imgData, width, height, s.Mask, maskColor(s.Detection), alpha)
		}
	}

	// copy back to the original mat
	tmpImg, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, imgData)

	if err != nil {
		return fmt.Errorf("error creating overlay Mat: %w", err)
	}

	defer tmpImg.Close()
	tmpImg.CopyTo(img)

	return nil
}

func hasMask(samples []distance.Sample) bool {
	for _, s := range samples {
		if s.Mask != nil {
			return true
		}
	}
	return false
}

// blendMask alpha blends clr into the BGR pixels of imgData covered by the
// object mask.  Mask pixels outside the image are ignored.
func blendMask(imgData []byte, width, height int, m *result.ObjectMask,
	clr color.RGBA, alpha float32) {

	if m.Mask == nil {
		return
	}

	rect := m.Rect.Intersect(m.Mask.Rect)

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		if y < 0 || y >= height {
			continue
		}

		for x := rect.Min.X; x < rect.Max.X; x++ {
			if x < 0 || x >= width {
				continue
			}

			if m.Mask.Pix[m.Mask.PixOffset(x, y)] == 0 {
				continue
			}

			// calculate position in the byte slice
			pixelPos := y*width*3 + x*3

			b, g, r := imgData[pixelPos+0], imgData[pixelPos+1], imgData[pixelPos+2]

			imgData[pixelPos+0] = uint8(float32(b)*(1-alpha) + float32(clr.B)*alpha)
			imgData[pixelPos+1] = uint8(float32(g)*(1-alpha) + float32(clr.G)*alpha)
			imgData[pixelPos+2] = uint8(float32(r)*(1-alpha) + float32(clr.R)*alpha)
		}
	}
}
