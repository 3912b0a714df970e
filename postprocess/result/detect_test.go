package result

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxCorners(t *testing.T) {

	b := BoxFromCorners(0.1, 0.2, 0.5, 0.8)

	assert.InDelta(t, 0.3, b.CX, 1e-6)
	assert.InDelta(t, 0.5, b.CY, 1e-6)
	assert.InDelta(t, 0.1, b.X1(), 1e-6)
	assert.InDelta(t, 0.8, b.Y2(), 1e-6)
	assert.True(t, b.InUnit())

	assert.Equal(t, image.Rect(64, 128, 320, 512), b.Rect(640, 640))

	assert.False(t, Box{CX: 0.05, CY: 0.5, W: 0.2, H: 0.2}.InUnit())
}

func TestIoUSymmetryAndBounds(t *testing.T) {

	rng := rand.New(rand.NewSource(7))

	randomBox := func() Box {
		return Box{
			CX: rng.Float32(),
			CY: rng.Float32(),
			W:  rng.Float32() * 0.5,
			H:  rng.Float32() * 0.5,
		}
	}

	for i := 0; i < 1000; i++ {
		a := randomBox()
		b := randomBox()

		ab := IoU(a, b)
		ba := IoU(b, a)

		if ab != ba {
			t.Fatalf("IoU not symmetric for %+v %+v: %f != %f", a, b, ab, ba)
		}

		if ab < 0 || ab > 1 {
			t.Fatalf("IoU out of bounds for %+v %+v: %f", a, b, ab)
		}

		if a.Area() > 1e-4 {
			assert.InDelta(t, 1.0, IoU(a, a), 1e-4)
		}
	}
}

func TestIoUKnownValues(t *testing.T) {

	tests := []struct {
		name string
		a, b Box
		want float32
	}{
		{"disjoint", BoxFromCorners(0, 0, 0.1, 0.1), BoxFromCorners(0.5, 0.5, 0.6, 0.6), 0},
		{"touching", BoxFromCorners(0, 0, 0.5, 0.5), BoxFromCorners(0.5, 0, 1, 0.5), 0},
		{"half overlap", BoxFromCorners(0, 0, 0.4, 0.2), BoxFromCorners(0.2, 0, 0.6, 0.2), 1.0 / 3.0},
		{"zero area", Box{CX: 0.5, CY: 0.5}, Box{CX: 0.5, CY: 0.5}, 0},
	}

	for _, tc := range tests {
		assert.InDelta(t, tc.want, IoU(tc.a, tc.b), 1e-5, tc.name)
	}
}

func TestObjectMask(t *testing.T) {

	rect := image.Rect(10, 10, 14, 12)
	m := ObjectMask{Rect: rect, Mask: image.NewGray(rect)}
	m.Mask.Pix[0] = 255
	m.Mask.Pix[5] = 255

	assert.Equal(t, 2, m.Area())
	assert.True(t, m.Contains(10, 10))
	assert.False(t, m.Contains(11, 10))
	assert.False(t, m.Contains(0, 0))
}

func TestIDGenerator(t *testing.T) {

	gen := NewIDGenerator()

	assert.Equal(t, int64(1), gen.GetNext())
	assert.Equal(t, int64(2), gen.GetNext())

	// generators count independently
	assert.Equal(t, int64(1), NewIDGenerator().GetNext())
	assert.Equal(t, int64(3), gen.GetNext())
}
