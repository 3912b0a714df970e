package pathfinder

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// TensorType is the element encoding of a raw tensor dump
type TensorType int

const (
	TensorFloat32 TensorType = iota
	TensorFloat16
)

// String returns a readable representation of the TensorType
func (t TensorType) String() string {
	switch t {
	case TensorFloat32:
		return "FP32"
	case TensorFloat16:
		return "FP16"
	default:
		return "UNKNOWN"
	}
}

// LoadOutput reads a raw little endian tensor dump, as written by most
// inference runtimes when saving output buffers to disk, and returns it as
// an Output with the given dimensions
func LoadOutput(file string, dims []int, typ TensorType) (Output, error) {

	f, err := os.Open(file)

	if err != nil {
		return Output{}, fmt.Errorf("error opening tensor file: %w", err)
	}

	defer f.Close()

	return ReadOutput(f, dims, typ)
}

// ReadOutput reads a raw little endian tensor of the given dimensions and
// element type from r
func ReadOutput(r io.Reader, dims []int, typ TensorType) (Output, error) {

	if len(dims) == 0 {
		return Output{}, fmt.Errorf("%w: no dimensions", ErrMalformedTensor)
	}

	for i, d := range dims {
		if d <= 0 {
			return Output{}, fmt.Errorf("%w: dimension %d has size %d", ErrMalformedTensor, i, d)
		}
	}

	n := Output{Dims: dims}.NumElems()

	switch typ {
	case TensorFloat32:
		raw := make([]uint32, n)

		if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
			return Output{}, fmt.Errorf("error reading %s tensor: %w", typ, err)
		}

		buf := make([]float32, n)

		for i, v := range raw {
			buf[i] = math.Float32frombits(v)
		}

		return NewOutput(dims, buf)

	case TensorFloat16:
		raw := make([]uint16, n)

		if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
			return Output{}, fmt.Errorf("error reading %s tensor: %w", typ, err)
		}

		return NewOutputFromFloat16(dims, raw)
	}

	return Output{}, fmt.Errorf("unsupported tensor type %d", typ)
}
