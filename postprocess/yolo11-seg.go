package postprocess

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/pathfinder-nav/go-pathfinder"
	"github.com/pathfinder-nav/go-pathfinder/postprocess/result"
	"github.com/pathfinder-nav/go-pathfinder/preprocess"
)

const (
	// buffers
	bufProtoMask = "protoMask"
)

// YOLO11Seg defines the struct for YOLO11Seg model inference post processing
type YOLO11Seg struct {
	// Params are the Model configuration parameters
	Params YOLO11SegParams
	// labels are the class names the Model was trained with
	labels []string
	// nextID is a counter that increments and provides the next number
	// for each detection result ID
	idGen *result.IDGenerator
	// protoSize is the Prototype tensor size of the Segment Mask
	protoSize int
	// buffer pools to stop allocation contention
	bufPool *bufferPool
}

// YOLO11SegParams defines the struct containing the YOLO11Seg parameters to use
// for post processing operations
type YOLO11SegParams struct {
	// BoxThreshold is the minimum probability score required for a bounding box
	// region to be considered for processing
	BoxThreshold float32
	// NMSThreshold is the Non-Maximum Suppression threshold used for defining
	// the maximum allowed Intersection Over Union (IoU) between two
	// bounding boxes for both to be kept
	NMSThreshold float32
	// ClassAwareNMS limits suppression to boxes of the same class
	ClassAwareNMS bool
	// PixelBoxes is set when the box rows are in model input pixels
	PixelBoxes bool
	// InputWidth is the Model input tensor width
	InputWidth int
	// InputHeight is the Model input tensor height
	InputHeight int
	// PrototypeChannel is the Prototype tensor defined in the Model used
	// for generating the Segment Mask.  This is the number of channels
	// generated and the number of mask coefficients per detection
	PrototypeChannel int
	// PrototypeHeight is the spatial resolution height of the Prototype
	// tensor
	PrototypeHeight int
	// PrototypeWidth is the spatial resolution width of the Prototype
	// tensor
	PrototypeWidth int
	// MaskResample is the interpolation used when scaling masks up to the
	// model input and original image
	MaskResample preprocess.Interpolation
	// MaxObjectNumber is the maximum number of objects a mask buffer is
	// preallocated for
	MaxObjectNumber int
}

// YOLO11SegCOCOParams returns an instance of YOLO11SegParams configured with
// default values for a Model trained on the COCO dataset featuring:
// - Box Threshold: 0.3
// - NMS Threshold: 0.5
// - Input: 640x640
// - PrototypeChannel: 32
// - PrototypeHeight: 160
// - PrototypeWidth: 160
// - Nearest neighbour mask resampling
func YOLO11SegCOCOParams() YOLO11SegParams {
	return YOLO11SegParams{
		BoxThreshold:     0.3,
		NMSThreshold:     0.5,
		InputWidth:       640,
		InputHeight:      640,
		PrototypeChannel: 32,
		PrototypeHeight:  160,
		PrototypeWidth:   160,
		MaskResample:     preprocess.InterpolationNearest,
		MaxObjectNumber:  64,
	}
}

// NewYOLO11Seg returns an instance of the YOLO11Seg post processor
func NewYOLO11Seg(p YOLO11SegParams, labels []string) *YOLO11Seg {
	y := &YOLO11Seg{
		Params:    p,
		labels:    labels,
		idGen:     result.NewIDGenerator(),
		protoSize: p.PrototypeChannel * p.PrototypeHeight * p.PrototypeWidth,
		bufPool:   NewBufferPool(),
	}

	// Create only fails on a name already registered with another size and
	// the pool is new
	_ = y.bufPool.Create(bufProtoMask,
		p.MaxObjectNumber*p.PrototypeHeight*p.PrototypeWidth)

	return y
}

// YOLO11SegResult defines a struct used for object detection results
type YOLO11SegResult struct {
	DetectResults []result.Detection
	SegmentData   SegmentData
}

// SegmentData holds the prototype tensor shared by all detections of a frame
type SegmentData struct {
	// proto is the flattened [channel, height, width] prototype tensor
	proto []float32
}

// SegMask holds the detections that survived mask reconstruction and the
// mask of each, index aligned
type SegMask struct {
	Detections []result.Detection
	Masks      []result.ObjectMask
}

// GetDetectResults returns the object detection results containing bounding
// boxes
func (r YOLO11SegResult) GetDetectResults() []result.Detection {
	return r.DetectResults
}

func (r YOLO11SegResult) GetSegmentData() SegmentData {
	return r.SegmentData
}

// DetectObjects takes the Model outputs, the detection tensor followed by
// the prototype tensor, and runs the decode and NMS process then returns the
// results
func (y *YOLO11Seg) DetectObjects(outputs *pathfinder.Outputs) (result.DetectionResult, error) {

	if outputs == nil || len(outputs.Output) < 2 {
		return YOLO11SegResult{}, fmt.Errorf("%w: segmentation needs detection and prototype tensors",
			pathfinder.ErrMalformedTensor)
	}

	channels, height, width, err := outputs.Output[1].Volume()

	if err != nil {
		return YOLO11SegResult{}, fmt.Errorf("prototype tensor: %w", err)
	}

	if channels != y.Params.PrototypeChannel || height != y.Params.PrototypeHeight ||
		width != y.Params.PrototypeWidth {
		return YOLO11SegResult{}, fmt.Errorf("%w: prototype tensor is %dx%dx%d, expected %dx%dx%d",
			pathfinder.ErrMalformedTensor, channels, height, width,
			y.Params.PrototypeChannel, y.Params.PrototypeHeight, y.Params.PrototypeWidth)
	}

	layout := Layout{
		MaskCoeffs:  y.Params.PrototypeChannel,
		PixelBoxes:  y.Params.PixelBoxes,
		InputWidth:  y.Params.InputWidth,
		InputHeight: y.Params.InputHeight,
	}

	dets, err := decode(outputs.Output[0], layout, y.labels,
		y.Params.BoxThreshold, y.idGen.GetNext)

	if err != nil {
		return YOLO11SegResult{}, err
	}

	return YOLO11SegResult{
		DetectResults: NMS(dets, y.Params.NMSThreshold, y.Params.ClassAwareNMS),
		SegmentData: SegmentData{
			proto: outputs.Output[1].BufFloat,
		},
	}, nil
}

// SegmentMask reconstructs the segment mask of each detection and maps it
// into the original image.  Detections whose box collapses to zero width or
// height in the original image are left out of the result entirely.
func (y *YOLO11Seg) SegmentMask(detectObjs result.DetectionResult,
	resizer *preprocess.Resizer) SegMask {

	segRes, ok := detectObjs.(YOLO11SegResult)

	if !ok || len(segRes.DetectResults) == 0 {
		return SegMask{}
	}

	dets := segRes.DetectResults
	boxesNum := len(dets)
	protoH := y.Params.PrototypeHeight
	protoW := y.Params.PrototypeWidth
	planeSize := protoH * protoW

	coeffs := make([][]float32, boxesNum)

	for i, d := range dets {
		if len(d.MaskCoeffs) == y.Params.PrototypeChannel {
			coeffs[i] = d.MaskCoeffs
		} else {
			coeffs[i] = make([]float32, y.Params.PrototypeChannel)
		}
	}

	// compute the binary masks at prototype resolution through Matmul
	matmulOut := y.bufPool.Get(bufProtoMask, boxesNum*planeSize)
	defer y.bufPool.Put(bufProtoMask, matmulOut)

	matmulMask(coeffs, segRes.SegmentData.proto, y.Params.PrototypeChannel,
		protoH, protoW, matmulOut)

	modelW := resizer.DestWidth()
	modelH := resizer.DestHeight()
	modelRect := image.Rect(0, 0, modelW, modelH)

	out := SegMask{
		Detections: make([]result.Detection, 0, boxesNum),
		Masks:      make([]result.ObjectMask, 0, boxesNum),
	}

	for b, det := range dets {

		if len(det.MaskCoeffs) != y.Params.PrototypeChannel {
			continue
		}

		// box in model input pixels, then in original image pixels
		x1, y1, x2, y2 := resizer.InputRect(det.Box)
		finalRect := resizer.SourceRect(x1, y1, x2, y2)

		if finalRect.Dx() <= 0 || finalRect.Dy() <= 0 {
			continue
		}

		cropRect := image.Rect(
			int(math32.Floor(x1)), int(math32.Floor(y1)),
			int(math32.Ceil(x2)), int(math32.Ceil(y2)),
		).Intersect(modelRect)

		if cropRect.Empty() {
			continue
		}

		protoMask := &image.Gray{
			Pix:    matmulOut[b*planeSize : (b+1)*planeSize],
			Stride: protoW,
			Rect:   image.Rect(0, 0, protoW, protoH),
		}

		// resize that one box's mask to the full model dims so the crop
		// lines up with the box
		fullMask := preprocess.ResizeGray(protoMask, modelW, modelH, y.Params.MaskResample)
		crop := preprocess.CropGray(fullMask, cropRect)
		mapped := preprocess.ResizeGray(crop, finalRect.Dx(), finalRect.Dy(), y.Params.MaskResample)

		// place the mask at the box position in the original image
		mapped.Rect = finalRect

		out.Detections = append(out.Detections, det)
		out.Masks = append(out.Masks, result.ObjectMask{
			DetectionID: det.ID,
			Rect:        finalRect,
			Mask:        mapped,
		})
	}

	return out
}
