package pathfinder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestOutputShape(t *testing.T) {

	tests := []struct {
		name    string
		dims    []int
		bufLen  int
		rows    int
		cols    int
		wantErr bool
	}{
		{"plain matrix", []int{84, 10}, 840, 84, 10, false},
		{"batch dimension", []int{1, 84, 10}, 840, 84, 10, false},
		{"short buffer", []int{84, 10}, 839, 0, 0, true},
		{"zero dimension", []int{84, 0}, 0, 0, 0, true},
		{"too many dimensions", []int{2, 84, 10}, 1680, 0, 0, true},
	}

	for _, tc := range tests {
		o := Output{Dims: tc.dims, BufFloat: make([]float32, tc.bufLen)}
		rows, cols, err := o.Matrix()

		if tc.wantErr {
			if !errors.Is(err, ErrMalformedTensor) {
				t.Errorf("%s: expected ErrMalformedTensor, got %v", tc.name, err)
			}
			continue
		}

		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
			continue
		}

		if rows != tc.rows || cols != tc.cols {
			t.Errorf("%s: expected %dx%d, got %dx%d", tc.name, tc.rows, tc.cols, rows, cols)
		}
	}
}

func TestOutputVolume(t *testing.T) {

	o, err := NewOutput([]int{1, 32, 4, 5}, make([]float32, 32*4*5))
	require.NoError(t, err)

	c, h, w, err := o.Volume()
	require.NoError(t, err)
	assert.Equal(t, []int{32, 4, 5}, []int{c, h, w})
}

func TestFloat16Conversion(t *testing.T) {

	vals := []float32{0, 0.5, -2, 0.3}
	raw := make([]uint16, len(vals))

	for i, v := range vals {
		raw[i] = float16.Fromfloat32(v).Bits()
	}

	o, err := NewOutputFromFloat16([]int{2, 2}, raw)
	require.NoError(t, err)

	for i, v := range vals {
		assert.InDelta(t, v, o.BufFloat[i], 1e-3)
	}
}

func TestReadOutput(t *testing.T) {

	vals := []float32{1, 2, 3, 4, 5, 6}

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, vals))

	o, err := ReadOutput(&buf, []int{2, 3}, TensorFloat32)
	require.NoError(t, err)
	assert.Equal(t, vals, o.BufFloat)

	// truncated dump
	buf.Reset()
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, vals[:5]))

	_, err = ReadOutput(&buf, []int{2, 3}, TensorFloat32)
	assert.Error(t, err)
}

func TestLoadLabels(t *testing.T) {

	file := filepath.Join(t.TempDir(), "coco.txt")
	require.NoError(t, os.WriteFile(file, []byte("person\n bicycle \ncar\n\n"), 0o644))

	labels, err := LoadLabels(file)
	require.NoError(t, err)
	assert.Equal(t, []string{"person", "bicycle", "car"}, labels)

	_, err = LoadLabels(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
