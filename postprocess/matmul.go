package postprocess

import (
	"gonum.org/v1/gonum/mat"
)

// matmulMask multiplies the mask coefficients of each detection, a boxesNum
// x protoChannel matrix, with the prototype tensor flattened to protoChannel
// x (protoHeight*protoWidth).  Each resulting logit is passed through the
// sigmoid and pixels with a probability above 0.5 are marked as object in
// C, one protoHeight*protoWidth plane per detection.
func matmulMask(coeffs [][]float32, proto []float32, protoChannel,
	protoHeight, protoWidth int, C []uint8) {

	boxesNum := len(coeffs)
	colsB := protoHeight * protoWidth

	if boxesNum == 0 || colsB == 0 {
		return
	}

	a := make([]float64, boxesNum*protoChannel)

	for i, row := range coeffs {
		for k := 0; k < protoChannel; k++ {
			a[i*protoChannel+k] = float64(row[k])
		}
	}

	b := make([]float64, protoChannel*colsB)

	for i, v := range proto[:protoChannel*colsB] {
		b[i] = float64(v)
	}

	A := mat.NewDense(boxesNum, protoChannel, a)
	B := mat.NewDense(protoChannel, colsB, b)

	var out mat.Dense
	out.Mul(A, B)

	for i := 0; i < boxesNum; i++ {
		row := out.RawRowView(i)
		base := i * colsB

		for j, logit := range row {
			if sigmoid(float32(logit)) > 0.5 {
				C[base+j] = 255 // object
			}

			// else leave zero, which is the background
		}
	}
}
