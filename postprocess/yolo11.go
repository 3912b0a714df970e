package postprocess

import (
	"fmt"

	"github.com/pathfinder-nav/go-pathfinder"
	"github.com/pathfinder-nav/go-pathfinder/postprocess/result"
)

// YOLO11 defines the struct for YOLO11 model inference post processing
type YOLO11 struct {
	// Params are the Model configuration parameters
	Params YOLO11Params
	// labels are the class names the Model was trained with
	labels []string
	// nextID is a counter that increments and provides the next number
	// for each detection result ID
	idGen *result.IDGenerator
}

// YOLO11Params defines the struct containing the YOLO11 parameters to use
// for post processing operations
type YOLO11Params struct {
	// BoxThreshold is the minimum probability score required for a bounding box
	// region to be considered for processing.  The winning class score must
	// be strictly greater than this value.
	BoxThreshold float32
	// NMSThreshold is the Non-Maximum Suppression threshold used for defining
	// the maximum allowed Intersection Over Union (IoU) between two
	// bounding boxes for both to be kept
	NMSThreshold float32
	// ClassAwareNMS limits suppression to boxes of the same class.  When
	// false a box suppresses any overlapping box regardless of class.
	ClassAwareNMS bool
	// PixelBoxes is set when the box rows are in model input pixels rather
	// than normalised to [0,1]
	PixelBoxes bool
	// InputWidth is the Model input tensor width
	InputWidth int
	// InputHeight is the Model input tensor height
	InputHeight int
}

// YOLO11COCOParams returns an instance of YOLO11Params configured with
// default values for a Model trained on the COCO dataset featuring:
// - Box Threshold: 0.3
// - NMS Threshold: 0.4
// - Cross class NMS
// - Input: 640x640 with normalised boxes
func YOLO11COCOParams() YOLO11Params {
	return YOLO11Params{
		BoxThreshold:  0.3,
		NMSThreshold:  0.4,
		ClassAwareNMS: false,
		PixelBoxes:    false,
		InputWidth:    640,
		InputHeight:   640,
	}
}

// NewYOLO11 returns an instance of the YOLO11 post processor for a Model
// trained with the given class labels
func NewYOLO11(p YOLO11Params, labels []string) *YOLO11 {
	return &YOLO11{
		Params: p,
		labels: labels,
		idGen:  result.NewIDGenerator(),
	}
}

// YOLO11Result defines a struct used for object detection results
type YOLO11Result struct {
	DetectResults []result.Detection
}

// GetDetectResults returns the object detection results containing bounding
// boxes
func (r YOLO11Result) GetDetectResults() []result.Detection {
	return r.DetectResults
}

// DetectObjects takes the Model outputs and runs the decode and NMS process
// then returns the results.  A malformed output tensor rejects the whole
// frame and no detections are returned.
func (y *YOLO11) DetectObjects(outputs *pathfinder.Outputs) (result.DetectionResult, error) {

	if outputs == nil || len(outputs.Output) < 1 {
		return YOLO11Result{}, fmt.Errorf("%w: no output tensors", pathfinder.ErrMalformedTensor)
	}

	layout := Layout{
		PixelBoxes:  y.Params.PixelBoxes,
		InputWidth:  y.Params.InputWidth,
		InputHeight: y.Params.InputHeight,
	}

	dets, err := decode(outputs.Output[0], layout, y.labels,
		y.Params.BoxThreshold, y.idGen.GetNext)

	if err != nil {
		return YOLO11Result{}, err
	}

	return YOLO11Result{
		DetectResults: NMS(dets, y.Params.NMSThreshold, y.Params.ClassAwareNMS),
	}, nil
}

// Layout describes how candidate rows are arranged in a YOLO11 output
// tensor of shape [detectionSize, numCandidates]
type Layout struct {
	// MaskCoeffs is the number of mask coefficient rows following the class
	// score rows, zero for detection only models
	MaskCoeffs int
	// PixelBoxes is set when box rows are in model input pixels
	PixelBoxes bool
	// InputWidth and InputHeight are used to normalise pixel boxes
	InputWidth  int
	InputHeight int
}

// Decode converts a channel major YOLO11 output tensor into detections.
// Row r of candidate i is stored at BufFloat[r*numCandidates+i], rows 0-3
// hold cx, cy, w, h followed by one score row per label and, for
// segmentation models, the mask coefficient rows.
//
// A candidate is kept when its best class score is strictly greater than
// threshold and its box lies wholly inside the frame.  Ties between class
// scores go to the lowest class index.  Detection IDs are numbered from one
// in candidate order.
func Decode(out pathfinder.Output, layout Layout, labels []string,
	threshold float32) ([]result.Detection, error) {

	var n int64

	return decode(out, layout, labels, threshold, func() int64 {
		n++
		return n
	})
}

// decode implements Decode with a caller supplied ID source
func decode(out pathfinder.Output, layout Layout, labels []string,
	threshold float32, nextID func() int64) ([]result.Detection, error) {

	rows, numCandidates, err := out.Matrix()

	if err != nil {
		return nil, err
	}

	numClasses := len(labels)

	if numClasses == 0 {
		return nil, fmt.Errorf("%w: empty label table", pathfinder.ErrMalformedTensor)
	}

	if layout.MaskCoeffs < 0 {
		return nil, fmt.Errorf("%w: negative mask coefficient count", pathfinder.ErrMalformedTensor)
	}

	numMaskCoeffs := rows - 4 - numClasses

	if numMaskCoeffs != layout.MaskCoeffs {
		return nil, fmt.Errorf("%w: detection size %d does not fit 4 box rows, %d classes and %d mask coefficients",
			pathfinder.ErrMalformedTensor, rows, numClasses, layout.MaskCoeffs)
	}

	if layout.PixelBoxes && (layout.InputWidth <= 0 || layout.InputHeight <= 0) {
		return nil, fmt.Errorf("pixel boxes need the model input size, got %dx%d",
			layout.InputWidth, layout.InputHeight)
	}

	data := out.BufFloat
	at := func(row, i int) float32 {
		return data[row*numCandidates+i]
	}

	dets := make([]result.Detection, 0)

	for i := 0; i < numCandidates; i++ {

		maxScore := at(4, i)
		maxClassID := 0

		for c := 1; c < numClasses; c++ {
			score := at(4+c, i)

			// strictly greater so the first class wins a tie
			if score > maxScore {
				maxScore = score
				maxClassID = c
			}
		}

		if !(maxScore > threshold) {
			continue
		}

		box := result.Box{
			CX: at(0, i),
			CY: at(1, i),
			W:  at(2, i),
			H:  at(3, i),
		}

		if layout.PixelBoxes {
			iw := float32(layout.InputWidth)
			ih := float32(layout.InputHeight)
			box = result.Box{CX: box.CX / iw, CY: box.CY / ih, W: box.W / iw, H: box.H / ih}
		}

		if !isFinite32(box.CX) || !isFinite32(box.CY) ||
			!isFinite32(box.W) || !isFinite32(box.H) {
			continue
		}

		// boxes partially off frame are dropped rather than clamped
		if !box.InUnit() {
			continue
		}

		var coeffs []float32

		if numMaskCoeffs > 0 {
			coeffs = make([]float32, numMaskCoeffs)

			for k := 0; k < numMaskCoeffs; k++ {
				coeffs[k] = at(4+numClasses+k, i)
			}
		}

		dets = append(dets, result.Detection{
			ID:         nextID(),
			Box:        box,
			Confidence: maxScore,
			ClassID:    maxClassID,
			ClassName:  labels[maxClassID],
			MaskCoeffs: coeffs,
		})
	}

	return dets, nil
}
