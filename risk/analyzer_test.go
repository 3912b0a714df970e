package risk

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cyclopcam/logs"
	"github.com/pathfinder-nav/go-pathfinder/distance"
	"github.com/pathfinder-nav/go-pathfinder/postprocess/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample returns a sample for a small box centred at (cx,cy)
func sample(id int64, className string, cx, cy, conf float32, d distance.Distance) distance.Sample {
	return distance.Sample{
		Detection: result.Detection{
			ID:         id,
			Box:        result.Box{CX: cx, CY: cy, W: 0.1, H: 0.1},
			Confidence: conf,
			ClassName:  className,
		},
		Distance: d,
	}
}

func newTestAnalyzer(t *testing.T) (*Analyzer, *clock.Mock) {
	clk := clock.NewMock()
	return NewAnalyzer(DefaultParams(), clk, logs.NewTestingLog(t)), clk
}

func TestLevelThresholds(t *testing.T) {

	p := DefaultParams()

	tests := []struct {
		meters float32
		want   Level
	}{
		{0, LevelCritical},
		{0.49, LevelCritical},
		{0.5, LevelHigh},
		{0.99, LevelHigh},
		{1.0, LevelMedium},
		{1.99, LevelMedium},
		{2.0, LevelLow},
		{2.99, LevelLow},
		{3.0, LevelSafe},
		{10, LevelSafe},
	}

	for _, tc := range tests {
		if got := p.Level(tc.meters); got != tc.want {
			t.Errorf("distance %.2f: expected %s, got %s", tc.meters, tc.want, got)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {

	p := DefaultParams()
	prev := p.Level(5)

	// walking towards an object never lowers the level
	for m := float32(5); m >= 0; m -= 0.01 {
		level := p.Level(m)
		require.GreaterOrEqual(t, level, prev, "distance %.2f", m)
		prev = level
	}
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, DirectionLeft, DirectionOf(0.1))
	assert.Equal(t, DirectionCenter, DirectionOf(0.34))
	assert.Equal(t, DirectionCenter, DirectionOf(0.5))
	assert.Equal(t, DirectionCenter, DirectionOf(0.66))
	assert.Equal(t, DirectionRight, DirectionOf(0.9))
}

func TestMessages(t *testing.T) {

	tests := []struct {
		level Level
		dir   Direction
		want  string
	}{
		{LevelCritical, DirectionLeft, "Stop! Obstacle very close"},
		{LevelCritical, DirectionCenter, "Stop! Obstacle very close"},
		{LevelHigh, DirectionCenter, "Caution! Obstacle ahead"},
		{LevelHigh, DirectionRight, "Caution! Obstacle on the right"},
		{LevelMedium, DirectionLeft, "Attention on the left"},
		{LevelMedium, DirectionCenter, "Continue carefully"},
		{LevelLow, DirectionRight, "Proceed with attention"},
		{LevelSafe, DirectionCenter, "Proceed"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, message(tc.level, tc.dir), "%s %s", tc.level, tc.dir)
	}
}

func TestGateCooldown(t *testing.T) {

	clk := clock.NewMock()
	gate := NewGate(clk, 2*time.Second, 5*time.Second)

	// two critical alerts 500ms apart, then after the full cooldown
	assert.True(t, gate.Allow(LevelCritical))
	clk.Add(500 * time.Millisecond)
	assert.False(t, gate.Allow(LevelCritical))
	clk.Add(1500 * time.Millisecond)
	assert.True(t, gate.Allow(LevelCritical))

	// medium needs the longer cooldown since the last alert of any level
	clk.Add(2 * time.Second)
	assert.False(t, gate.Allow(LevelMedium))
	clk.Add(3 * time.Second)
	assert.True(t, gate.Allow(LevelMedium))

	// high shares the short cooldown with critical
	clk.Add(time.Second)
	assert.False(t, gate.Allow(LevelHigh))
	clk.Add(time.Second)
	assert.True(t, gate.Allow(LevelHigh))

	// low and safe never fire and do not touch the timestamp
	clk.Add(time.Hour)
	last, _ := gate.LastAlert()
	assert.False(t, gate.Allow(LevelLow))
	assert.False(t, gate.Allow(LevelSafe))
	after, _ := gate.LastAlert()
	assert.Equal(t, last, after)

	// reset lets the next alert through at once
	assert.True(t, gate.Allow(LevelCritical))
	assert.False(t, gate.Allow(LevelCritical))
	gate.Reset()
	_, fired := gate.LastAlert()
	assert.False(t, fired)
	assert.True(t, gate.Allow(LevelCritical))
}

func TestAnalyzeEmptyFrame(t *testing.T) {

	a, _ := newTestAnalyzer(t)

	res := a.Analyze(nil, distance.NoResult)

	assert.Equal(t, LevelSafe, res.Level)
	assert.Nil(t, res.Critical)
	assert.False(t, res.ShouldAlert)
	assert.False(t, res.Wall)
	assert.Equal(t, "Proceed", res.Message)
	assert.Equal(t, "Path clear. Proceed.", res.FullMessage())
}

func TestAnalyzeSingleNearObject(t *testing.T) {

	a, _ := newTestAnalyzer(t)

	res := a.Analyze([]distance.Sample{
		sample(1, "person", 0.5, 0.5, 0.9, distance.Meters(0.4)),
	}, distance.NoResult)

	require.NotNil(t, res.Critical)
	assert.Equal(t, int64(1), res.Critical.Detection.ID)
	assert.Equal(t, LevelCritical, res.Level)
	assert.Equal(t, DirectionCenter, res.Direction)
	assert.Equal(t, "Stop! Obstacle very close", res.Message)
	assert.True(t, res.ShouldAlert)
	assert.Equal(t, "person at 0.4 meters. Stop! Obstacle very close", res.FullMessage())
}

func TestAnalyzeWallOnly(t *testing.T) {

	a, _ := newTestAnalyzer(t)

	res := a.Analyze(nil, distance.Meters(0.3))

	assert.True(t, res.Wall)
	assert.Nil(t, res.Critical)
	assert.Equal(t, LevelCritical, res.Level)
	assert.Equal(t, DirectionCenter, res.Direction)
	assert.Equal(t, "Stop! Wall ahead", res.Message)
	assert.True(t, res.ShouldAlert)
	assert.Equal(t, "Wall at 0.3 meters. Stop! Wall ahead", res.FullMessage())

	// walls further away than the critical threshold are not warned about
	res = a.Analyze(nil, distance.Meters(0.7))
	assert.False(t, res.Wall)
	assert.Equal(t, LevelSafe, res.Level)
}

func TestAnalyzeWallTouching(t *testing.T) {

	a, _ := newTestAnalyzer(t)

	// zero is a measurement, an unmeasured wall is NoResult
	res := a.Analyze(nil, distance.Meters(0))

	assert.True(t, res.Wall)
	assert.Equal(t, LevelCritical, res.Level)
	assert.True(t, res.ShouldAlert)
	assert.Equal(t, "Stop! Wall ahead", res.Message)
}

func TestAnalyzeWallHighLevel(t *testing.T) {

	p := DefaultParams()
	p.WallDistance = 1.0
	a := NewAnalyzer(p, clock.NewMock(), logs.NewTestingLog(t))

	res := a.Analyze(nil, distance.Meters(0.7))

	assert.True(t, res.Wall)
	assert.Equal(t, LevelHigh, res.Level)
	assert.Equal(t, "Attention, wall nearby", res.Message)
}

func TestAnalyzeNearObjectBeatsWall(t *testing.T) {

	a, _ := newTestAnalyzer(t)

	res := a.Analyze([]distance.Sample{
		sample(1, "chair", 0.9, 0.5, 0.5, distance.Meters(2.5)),
	}, distance.Meters(0.2))

	assert.False(t, res.Wall)
	assert.Equal(t, LevelLow, res.Level)
	assert.Equal(t, DirectionRight, res.Direction)
	assert.False(t, res.ShouldAlert)
}

func TestAnalyzeIgnoresFarAndUnmeasured(t *testing.T) {

	a, _ := newTestAnalyzer(t)

	res := a.Analyze([]distance.Sample{
		sample(1, "person", 0.5, 0.5, 0.9, distance.NoResult),
		sample(2, "car", 0.5, 0.5, 0.9, distance.Meters(3.5)),
	}, distance.NoResult)

	assert.Nil(t, res.Critical)
	assert.Equal(t, LevelSafe, res.Level)
	assert.False(t, res.ShouldAlert)
}

func TestAnalyzeSelection(t *testing.T) {

	a, _ := newTestAnalyzer(t)

	// the closer object wins over a person further away
	res := a.Analyze([]distance.Sample{
		sample(1, "person", 0.5, 0.5, 0.9, distance.Meters(2.5)),
		sample(2, "cup", 0.2, 0.5, 0.4, distance.Meters(0.6)),
	}, distance.NoResult)

	require.NotNil(t, res.Critical)
	assert.Equal(t, int64(2), res.Critical.Detection.ID)
	assert.Equal(t, LevelHigh, res.Level)
	assert.Equal(t, DirectionLeft, res.Direction)
	assert.Equal(t, "Caution! Obstacle on the left", res.Message)

	// at equal distance and position the class priority decides
	res = a.Analyze([]distance.Sample{
		sample(3, "bottle", 0.5, 0.5, 0.9, distance.Meters(1.5)),
		sample(4, "person", 0.5, 0.5, 0.9, distance.Meters(1.5)),
	}, distance.NoResult)
	assert.Equal(t, int64(4), res.Critical.Detection.ID)

	// identical scores keep the first seen
	res = a.Analyze([]distance.Sample{
		sample(5, "chair", 0.5, 0.5, 0.9, distance.Meters(1.5)),
		sample(6, "chair", 0.5, 0.5, 0.9, distance.Meters(1.5)),
	}, distance.NoResult)
	assert.Equal(t, int64(5), res.Critical.Detection.ID)
}

func TestScore(t *testing.T) {

	a, _ := newTestAnalyzer(t)

	// 5/(0.4+0.1) + 3*1 + 2*2 + 0.9
	s := a.score(sample(1, "person", 0.5, 0.5, 0.9, distance.Meters(0.4)))
	assert.InDelta(t, 17.9, s, 1e-4)

	// unknown class weighs 1, a corner position scores 0
	s = a.score(sample(2, "giraffe", 0, 0, 0.5, distance.Meters(0.9)))
	assert.InDelta(t, 5.0/1.0+0+2*1+0.5, s, 1e-4)

	assert.InDelta(t, 1, positionScore(0.5, 0.5), 1e-6)
	assert.InDelta(t, 0, positionScore(1, 0.5), 1e-6)
	assert.InDelta(t, 0.5, positionScore(0.75, 0.5), 1e-6)
}

func TestAnalyzeCooldownAcrossFrames(t *testing.T) {

	a, clk := newTestAnalyzer(t)

	frame := []distance.Sample{sample(1, "person", 0.5, 0.5, 0.9, distance.Meters(0.4))}
	other := []distance.Sample{sample(2, "car", 0.3, 0.5, 0.9, distance.Meters(0.3))}

	assert.True(t, a.Analyze(frame, distance.NoResult).ShouldAlert)

	clk.Add(500 * time.Millisecond)
	res := a.Analyze(other, distance.NoResult)

	// a different object shares the cooldown but is still reported
	assert.False(t, res.ShouldAlert)
	assert.Equal(t, LevelCritical, res.Level)
	assert.Equal(t, "Stop! Obstacle very close", res.Message)

	clk.Add(2 * time.Second)
	assert.True(t, a.Analyze(frame, distance.NoResult).ShouldAlert)

	// an operator reset skips the remaining cooldown
	a.ResetCooldown()
	assert.True(t, a.Analyze(frame, distance.NoResult).ShouldAlert)
}

func TestLevelStrings(t *testing.T) {
	assert.Equal(t, "CRITICAL", LevelCritical.String())
	assert.Equal(t, "Medium risk", LevelMedium.Description())
	assert.Equal(t, "UNKNOWN", Level(42).String())
	assert.Equal(t, "right", DirectionRight.String())
}
