package distance

import (
	"image"

	"github.com/pathfinder-nav/go-pathfinder/postprocess/result"
)

// Point is a position on the screen the sensor is queried in, in pixels
type Point struct {
	X float32
	Y float32
}

// Screen is the pixel size of the view the spatial sensor works in
type Screen struct {
	Width  int
	Height int
}

// Center maps the center of a normalised box onto the screen
func (s Screen) Center(b result.Box) Point {
	return Point{
		X: b.CX * float32(s.Width),
		Y: b.CY * float32(s.Height),
	}
}

// Sensor is the spatial sensing collaborator.  Both queries are stateless
// per call and return NoResult when nothing could be measured.
type Sensor interface {
	// DistanceAt returns the distance to the surface seen at the screen point
	DistanceAt(p Point) Distance
	// DistanceToNearestWall returns the distance to the closest tracked
	// vertical plane
	DistanceToNearestWall() Distance
}

// TrackingFailure is the reason the spatial sensor lost tracking
type TrackingFailure int

const (
	TrackingOK TrackingFailure = iota
	TrackingBadState
	TrackingInsufficientLight
	TrackingExcessiveMotion
	TrackingInsufficientFeatures
	TrackingCameraUnavailable
)

func (f TrackingFailure) String() string {
	switch f {
	case TrackingOK:
		return "ok"
	case TrackingBadState:
		return "bad state"
	case TrackingInsufficientLight:
		return "insufficient light"
	case TrackingExcessiveMotion:
		return "excessive motion"
	case TrackingInsufficientFeatures:
		return "insufficient features"
	case TrackingCameraUnavailable:
		return "camera unavailable"
	default:
		return "unknown"
	}
}

// TrackingReporter is implemented by sensors that can say why they are not
// tracking
type TrackingReporter interface {
	TrackingFailure() TrackingFailure
}

// Fixed is a Sensor that reports the same distances for every query
type Fixed struct {
	Object Distance
	Wall   Distance
}

func (f Fixed) DistanceAt(Point) Distance {
	return f.Object
}

func (f Fixed) DistanceToNearestWall() Distance {
	return f.Wall
}

// DepthMap is a Sensor backed by a 16 bit depth image in millimetres, as
// written by most depth cameras.  Zero pixels have no depth.  The depth
// image may have a different resolution to the screen.
type DepthMap struct {
	// Depth is the depth image
	Depth *image.Gray16
	// Screen is the view DistanceAt points are given in
	Screen Screen
	// Wall is reported by DistanceToNearestWall
	Wall Distance
}

func (d *DepthMap) DistanceAt(p Point) Distance {

	if d.Depth == nil || d.Screen.Width <= 0 || d.Screen.Height <= 0 {
		return NoResult
	}

	b := d.Depth.Bounds()
	x := b.Min.X + int(p.X*float32(b.Dx())/float32(d.Screen.Width))
	y := b.Min.Y + int(p.Y*float32(b.Dy())/float32(d.Screen.Height))

	if !image.Pt(x, y).In(b) {
		return NoResult
	}

	mm := d.Depth.Gray16At(x, y).Y

	if mm == 0 {
		return NoResult
	}

	return Meters(float32(mm) / 1000)
}

func (d *DepthMap) DistanceToNearestWall() Distance {
	return d.Wall
}
