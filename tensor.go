package pathfinder

import (
	"errors"
	"fmt"
)

// ErrMalformedTensor is returned when a tensor's shape does not match its
// buffer or the layout the consumer expects.  A frame carrying a malformed
// tensor is rejected as a whole.
var ErrMalformedTensor = errors.New("malformed tensor")

// Output is a single model output tensor converted to float32
type Output struct {
	// Dims are the tensor dimensions, outermost first
	Dims []int
	// BufFloat is the flat tensor data in row major order of Dims
	BufFloat []float32
}

// Outputs holds all output tensors produced by one inference run.  For
// detection models there is a single output, segmentation models have the
// prototype mask tensor as a second output.
type Outputs struct {
	Output []Output
}

// NewOutput returns an Output after checking that the buffer length matches
// the product of the dimensions
func NewOutput(dims []int, buf []float32) (Output, error) {

	o := Output{
		Dims:     append([]int(nil), dims...),
		BufFloat: buf,
	}

	if err := o.Validate(); err != nil {
		return Output{}, err
	}

	return o, nil
}

// NumElems returns the number of elements described by the dimensions
func (o Output) NumElems() int {

	if len(o.Dims) == 0 {
		return 0
	}

	n := 1

	for _, d := range o.Dims {
		n *= d
	}

	return n
}

// Validate checks that every dimension is positive and the buffer holds
// exactly the number of elements the dimensions describe
func (o Output) Validate() error {

	if len(o.Dims) == 0 {
		return fmt.Errorf("%w: no dimensions", ErrMalformedTensor)
	}

	for i, d := range o.Dims {
		if d <= 0 {
			return fmt.Errorf("%w: dimension %d has size %d", ErrMalformedTensor, i, d)
		}
	}

	if n := o.NumElems(); n != len(o.BufFloat) {
		return fmt.Errorf("%w: dims %v need %d elements, buffer has %d",
			ErrMalformedTensor, o.Dims, n, len(o.BufFloat))
	}

	return nil
}

// squeeze returns the dimensions with leading batch dimensions of size 1
// removed, stopping once want dimensions remain
func (o Output) squeeze(want int) []int {

	dims := o.Dims

	for len(dims) > want && dims[0] == 1 {
		dims = dims[1:]
	}

	return dims
}

// Matrix interprets the tensor as a two dimensional [rows, cols] table,
// ignoring leading batch dimensions of size 1
func (o Output) Matrix() (rows, cols int, err error) {

	if err := o.Validate(); err != nil {
		return 0, 0, err
	}

	dims := o.squeeze(2)

	if len(dims) != 2 {
		return 0, 0, fmt.Errorf("%w: expected 2 dimensions, got %v",
			ErrMalformedTensor, o.Dims)
	}

	return dims[0], dims[1], nil
}

// Volume interprets the tensor as a three dimensional [channels, height,
// width] block, ignoring leading batch dimensions of size 1
func (o Output) Volume() (channels, height, width int, err error) {

	if err := o.Validate(); err != nil {
		return 0, 0, 0, err
	}

	dims := o.squeeze(3)

	if len(dims) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: expected 3 dimensions, got %v",
			ErrMalformedTensor, o.Dims)
	}

	return dims[0], dims[1], dims[2], nil
}
