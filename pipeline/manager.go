package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/cyclopcam/logs"
	pathfinder "github.com/pathfinder-nav/go-pathfinder"
	"github.com/pathfinder-nav/go-pathfinder/distance"
	"github.com/pathfinder-nav/go-pathfinder/postprocess"
	"github.com/pathfinder-nav/go-pathfinder/postprocess/result"
	"github.com/pathfinder-nav/go-pathfinder/preprocess"
	"github.com/pathfinder-nav/go-pathfinder/risk"
	"github.com/pathfinder-nav/go-pathfinder/speech"
	"go.uber.org/atomic"
)

// RenderSink receives the samples of every processed frame for display.
// Render(nil) clears the display.
type RenderSink interface {
	Render(samples []distance.Sample)
}

// Detector turns model outputs into detections
type Detector interface {
	DetectObjects(outputs *pathfinder.Outputs) (result.DetectionResult, error)
}

// Segmenter is a Detector that can also reconstruct segment masks
type Segmenter interface {
	Detector
	SegmentMask(detectObjs result.DetectionResult, resizer *preprocess.Resizer) postprocess.SegMask
}

// repeater is implemented by speech sinks able to repeat their last message
type repeater interface {
	RepeatLast() speech.Status
}

// stopper is implemented by speech sinks that can be silenced
type stopper interface {
	Stop()
}

// Config holds the collaborators of a Manager.  Sensor, Speech and Render
// are optional.
type Config struct {
	Params   Params
	Detector Detector
	// Resizer maps model input coordinates to the camera image, needed for
	// segment masks
	Resizer  *preprocess.Resizer
	Sensor   distance.Sensor
	Screen   distance.Screen
	Analyzer *risk.Analyzer
	Speech   speech.Sink
	Render   RenderSink
	Clock    clock.Clock
	Log      logs.Log
}

// Manager runs each admitted frame through detection, masks, distance,
// rendering, risk analysis and alerting
type Manager struct {
	cfg     Config
	clock   clock.Clock
	log     logs.Log
	sched   *Scheduler
	metrics *Metrics

	processing *atomic.Bool
	alerts     *atomic.Bool
	// advisoryCooldown counts down the frames until another tracking
	// advisory may be spoken
	advisoryCooldown *atomic.Int64

	mu   sync.Mutex
	last risk.Assessment
}

// NewManager returns a Manager with processing and alerts switched on
func NewManager(cfg Config) (*Manager, error) {

	if cfg.Detector == nil {
		return nil, errors.New("manager needs a detector")
	}

	if cfg.Analyzer == nil {
		return nil, errors.New("manager needs a risk analyzer")
	}

	if _, ok := cfg.Detector.(Segmenter); ok && cfg.Resizer == nil {
		return nil, errors.New("segmentation needs a resizer")
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	if cfg.Log == nil {
		return nil, errors.New("manager needs a log")
	}

	return &Manager{
		cfg:              cfg,
		clock:            cfg.Clock,
		log:              cfg.Log,
		sched:            NewScheduler(cfg.Clock, cfg.Params.MinInterval),
		metrics:          NewMetrics(cfg.Params.MetricsWindow),
		processing:       atomic.NewBool(true),
		alerts:           atomic.NewBool(true),
		advisoryCooldown: atomic.NewInt64(0),
	}, nil
}

// HandleFrame processes the model outputs of one camera frame.  Frames that
// arrive while processing is off, the pipeline is busy or within the
// minimum interval are dropped with ErrStopped, ErrBusy or ErrThrottled.
func (m *Manager) HandleFrame(outputs *pathfinder.Outputs) (risk.Assessment, error) {

	if !m.processing.Load() {
		return risk.Assessment{}, ErrStopped
	}

	var assessment risk.Assessment

	err := m.sched.TryRun(func() error {
		var err error
		assessment, err = m.process(outputs)
		return err
	})

	if err != nil {
		return risk.Assessment{}, err
	}

	return assessment, nil
}

// process runs the frame through every stage
func (m *Manager) process(outputs *pathfinder.Outputs) (risk.Assessment, error) {

	start := m.clock.Now()
	defer m.tickAdvisory()

	detectObjs, err := m.cfg.Detector.DetectObjects(outputs)

	if err != nil {
		return risk.Assessment{}, fmt.Errorf("error decoding frame: %w", err)
	}

	dets := detectObjs.GetDetectResults()

	var masks []result.ObjectMask

	// detections whose box collapses in the camera image are dropped along
	// with their mask
	if seg, ok := m.cfg.Detector.(Segmenter); ok {
		segMask := seg.SegmentMask(detectObjs, m.cfg.Resizer)
		dets = segMask.Detections
		masks = segMask.Masks
	}

	m.checkTracking()

	samples := distance.Join(dets, masks, m.cfg.Sensor, m.cfg.Screen)

	// the overlay shows every object, not only the near ones
	if m.cfg.Render != nil && m.processing.Load() {
		m.cfg.Render.Render(samples)
	}

	wall := distance.NoResult

	if m.cfg.Sensor != nil {
		wall = m.cfg.Sensor.DistanceToNearestWall()
	}

	assessment := m.cfg.Analyzer.Analyze(samples, wall)
	m.log.Debugf("%v", assessment)

	if assessment.ShouldAlert {
		m.log.Infof("ALERT: %s", assessment.FullMessage())

		if m.alerts.Load() {
			m.speak(assessment.Message, PriorityForLevel(assessment.Level))
		}
	}

	m.mu.Lock()
	m.last = assessment
	m.mu.Unlock()

	latency := m.clock.Since(start)
	m.metrics.Record(start, latency)
	m.log.Debugf("Frame processed in %v", latency)

	return assessment, nil
}

// speak hands text to the speech sink, rejections are logged and never
// retried
func (m *Manager) speak(text string, p speech.Priority) {

	if m.cfg.Speech == nil {
		return
	}

	switch status := m.cfg.Speech.Speak(text, p); status {
	case speech.StatusSuccess:
	case speech.StatusRejected, speech.StatusNotReady:
		m.log.Debugf("Speech %q not spoken: %v", text, status)
	default:
		m.log.Warnf("Speech %q failed: %v", text, status)
	}
}

// checkTracking speaks an advisory when the sensor reports it cannot track,
// at most once per TrackingAdvisoryFrames frames
func (m *Manager) checkTracking() {

	reporter, ok := m.cfg.Sensor.(distance.TrackingReporter)

	if !ok {
		return
	}

	failure := reporter.TrackingFailure()

	if failure == distance.TrackingOK {
		return
	}

	m.log.Warnf("Sensor not tracking: %v", failure)

	if m.advisoryCooldown.Load() > 0 {
		return
	}

	if text := trackingAdvisory(failure); text != "" && m.alerts.Load() {
		m.speak(text, speech.PriorityMedium)
	}

	m.advisoryCooldown.Store(int64(m.cfg.Params.TrackingAdvisoryFrames))
}

// tickAdvisory counts one processed frame off the advisory cooldown
func (m *Manager) tickAdvisory() {
	if m.advisoryCooldown.Load() > 0 {
		m.advisoryCooldown.Dec()
	}
}

// SetProcessing switches frame processing on or off.  Switching off clears
// the render sink.
func (m *Manager) SetProcessing(on bool) {

	m.processing.Store(on)
	m.log.Infof("Processing %s", onOff(on))

	if !on && m.cfg.Render != nil {
		m.cfg.Render.Render(nil)
	}
}

// Processing reports whether frames are being processed
func (m *Manager) Processing() bool {
	return m.processing.Load()
}

// SetAlerts switches spoken alerts on or off.  Switching off silences the
// speech sink, switching on resets the alert cooldown so the next alert is
// spoken at once.
func (m *Manager) SetAlerts(on bool) {

	m.alerts.Store(on)
	m.log.Infof("Alerts %s", onOff(on))

	if on {
		m.cfg.Analyzer.ResetCooldown()
		return
	}

	if s, ok := m.cfg.Speech.(stopper); ok {
		s.Stop()
	}
}

// Alerts reports whether spoken alerts are on
func (m *Manager) Alerts() bool {
	return m.alerts.Load()
}

// RepeatLastAlert speaks the last alert again.  It does nothing while
// alerts are off or the speech sink cannot repeat.
func (m *Manager) RepeatLastAlert() speech.Status {

	if !m.alerts.Load() {
		return speech.StatusRejected
	}

	r, ok := m.cfg.Speech.(repeater)

	if !ok {
		return speech.StatusNotReady
	}

	return r.RepeatLast()
}

// LastAssessment returns the assessment of the last processed frame
func (m *Manager) LastAssessment() risk.Assessment {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.last
}

// Metrics returns the frame rate and latency figures
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// PriorityForLevel maps a risk level to the priority it is spoken at
func PriorityForLevel(level risk.Level) speech.Priority {
	switch level {
	case risk.LevelCritical:
		return speech.PriorityCritical
	case risk.LevelHigh:
		return speech.PriorityHigh
	case risk.LevelMedium:
		return speech.PriorityMedium
	default:
		return speech.PriorityLow
	}
}

// trackingAdvisory is the text spoken for a tracking failure, empty for
// failures the user can do nothing about
func trackingAdvisory(f distance.TrackingFailure) string {
	switch f {
	case distance.TrackingInsufficientFeatures:
		return "Unable to map this area"
	case distance.TrackingExcessiveMotion:
		return "Excessive motion. Please move the phone more slowly"
	case distance.TrackingInsufficientLight:
		return "Insufficient light. Please turn on the phone light"
	default:
		return ""
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
