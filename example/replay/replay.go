package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	pathfinder "github.com/pathfinder-nav/go-pathfinder"
	"github.com/pathfinder-nav/go-pathfinder/distance"
	"github.com/pathfinder-nav/go-pathfinder/pipeline"
	"github.com/pathfinder-nav/go-pathfinder/postprocess"
	"github.com/pathfinder-nav/go-pathfinder/preprocess"
	"github.com/pathfinder-nav/go-pathfinder/render"
	"github.com/pathfinder-nav/go-pathfinder/risk"
	"github.com/pathfinder-nav/go-pathfinder/speech"
	"gocv.io/x/gocv"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	logger, err := logs.NewLog()
	check(err)

	parser := argparse.NewParser("replay", "Run a recorded YOLO11 output tensor through the obstacle alert pipeline")
	detFile := parser.String("d", "detect", &argparse.Options{Help: "Raw dump of the detection output tensor", Required: true})
	detDims := parser.String("", "dims", &argparse.Options{Help: "Shape of the detection tensor", Default: "1,84,8400"})
	protoFile := parser.String("s", "proto", &argparse.Options{Help: "Raw dump of the segment prototype tensor, enables masks", Default: ""})
	protoDims := parser.String("", "pdims", &argparse.Options{Help: "Shape of the prototype tensor", Default: "1,32,160,160"})
	dtype := parser.String("t", "type", &argparse.Options{Help: "Element type of the dumps [fp32|fp16]", Default: "fp32"})
	labelFile := parser.String("l", "labels", &argparse.Options{Help: "Text file containing model labels", Required: true})
	imgFile := parser.String("i", "image", &argparse.Options{Help: "Camera image the tensors were produced from", Required: true})
	saveFile := parser.String("o", "output", &argparse.Options{Help: "The output JPG file with the overlay drawn", Default: "replay-out.jpg"})
	inputSize := parser.Int("", "size", &argparse.Options{Help: "Model input width and height", Default: 640})
	objDist := parser.Float("", "distance", &argparse.Options{Help: "Distance in metres reported for every object, negative for none", Default: -1.0})
	wallDist := parser.Float("", "wall", &argparse.Options{Help: "Distance in metres to the nearest wall, negative for none", Default: -1.0})
	depthFile := parser.String("", "depth", &argparse.Options{Help: "16 bit PNG depth map in millimetres, replaces --distance", Default: ""})
	showMetrics := parser.Flag("", "metrics", &argparse.Options{Help: "Draw FPS and latency on the output", Default: false})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	fail := func(format string, a ...interface{}) {
		logger.Errorf(format, a...)
		logger.Close()
		os.Exit(1)
	}

	tensorType, err := parseTensorType(*dtype)

	if err != nil {
		fail("%v", err)
	}

	labels, err := pathfinder.LoadLabels(*labelFile)

	if err != nil {
		fail("Error loading model labels: %v", err)
	}

	img := gocv.IMRead(*imgFile, gocv.IMReadColor)

	if img.Empty() {
		fail("Error reading image from: %v", *imgFile)
	}

	defer img.Close()

	resizer := preprocess.NewResizer(img.Cols(), img.Rows(), *inputSize, *inputSize)

	outputs := &pathfinder.Outputs{}
	detector, err := loadTensors(outputs, labels, *inputSize, tensorType,
		*detFile, *detDims, *protoFile, *protoDims)

	if err != nil {
		fail("Error loading tensors: %v", err)
	}

	screen := distance.Screen{Width: img.Cols(), Height: img.Rows()}
	sensor, err := newSensor(*depthFile, screen, *objDist, *wallDist)

	if err != nil {
		fail("Error loading depth map: %v", err)
	}

	overlay := render.NewOverlay()
	overlay.ShowMetrics(*showMetrics)

	mgr, err := pipeline.NewManager(pipeline.Config{
		Params:   pipeline.DefaultParams(),
		Detector: detector,
		Resizer:  resizer,
		Sensor:   sensor,
		Screen:   screen,
		Analyzer: risk.NewAnalyzer(risk.DefaultParams(), nil, logger),
		Speech:   speech.NewArbiter(speech.NewWriterEngine(os.Stdout), logger),
		Render:   overlay,
		Log:      logger,
	})

	if err != nil {
		fail("Error creating pipeline: %v", err)
	}

	assessment, err := mgr.HandleFrame(outputs)

	if err != nil {
		fail("Error processing frame: %v", err)
	}

	// output detections to stdout
	for _, s := range overlay.Samples() {
		r := s.Detection.Box.Rect(img.Cols(), img.Rows())
		fmt.Printf("%s @ (%d %d %d %d) %f, %v\n", s.Detection.ClassName,
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, s.Detection.Confidence, s.Distance)
	}

	fmt.Println(assessment.FullMessage())

	overlay.SetMetrics(mgr.Metrics().String())

	if err := overlay.Draw(&img); err != nil {
		fail("Error drawing overlay: %v", err)
	}

	if !gocv.IMWrite(*saveFile, img) {
		fail("Error writing %v", *saveFile)
	}

	logger.Infof("Saved overlay to %v", *saveFile)
	logger.Close()
}

// loadTensors reads the dumps into outputs and returns the matching
// detector
func loadTensors(outputs *pathfinder.Outputs, labels []string, size int,
	typ pathfinder.TensorType, detFile, detDims, protoFile,
	protoDims string) (pipeline.Detector, error) {

	dims, err := parseDims(detDims)

	if err != nil {
		return nil, err
	}

	det, err := pathfinder.LoadOutput(detFile, dims, typ)

	if err != nil {
		return nil, err
	}

	outputs.Output = append(outputs.Output, det)

	if protoFile == "" {
		p := postprocess.YOLO11COCOParams()
		p.InputWidth = size
		p.InputHeight = size

		return postprocess.NewYOLO11(p, labels), nil
	}

	pdims, err := parseDims(protoDims)

	if err != nil {
		return nil, err
	}

	proto, err := pathfinder.LoadOutput(protoFile, pdims, typ)

	if err != nil {
		return nil, err
	}

	outputs.Output = append(outputs.Output, proto)

	c, h, w, err := proto.Volume()

	if err != nil {
		return nil, err
	}

	p := postprocess.YOLO11SegCOCOParams()
	p.InputWidth = size
	p.InputHeight = size
	p.PrototypeChannel = c
	p.PrototypeHeight = h
	p.PrototypeWidth = w

	return postprocess.NewYOLO11Seg(p, labels), nil
}

// newSensor returns a depth map sensor when a depth file is given, otherwise
// a sensor reporting fixed distances
func newSensor(depthFile string, screen distance.Screen, objDist,
	wallDist float64) (distance.Sensor, error) {

	wall := meters(wallDist)

	if depthFile == "" {
		return &distance.Fixed{Object: meters(objDist), Wall: wall}, nil
	}

	f, err := os.Open(depthFile)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	img, err := png.Decode(f)

	if err != nil {
		return nil, err
	}

	depth, ok := img.(*image.Gray16)

	if !ok {
		return nil, fmt.Errorf("depth map %v is not 16 bit greyscale", depthFile)
	}

	return &distance.DepthMap{Depth: depth, Screen: screen, Wall: wall}, nil
}

func meters(m float64) distance.Distance {
	if m < 0 {
		return distance.NoResult
	}
	return distance.Meters(float32(m))
}

// parseDims parses a comma separated tensor shape such as 1,84,8400
func parseDims(s string) ([]int, error) {

	parts := strings.Split(s, ",")
	dims := make([]int, len(parts))

	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))

		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid tensor shape %q", s)
		}

		dims[i] = v
	}

	return dims, nil
}

func parseTensorType(s string) (pathfinder.TensorType, error) {
	switch strings.ToLower(s) {
	case "fp32":
		return pathfinder.TensorFloat32, nil
	case "fp16":
		return pathfinder.TensorFloat16, nil
	default:
		return 0, fmt.Errorf("unknown tensor type %q", s)
	}
}
