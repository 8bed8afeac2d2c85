package reference

import (
	"github.com/chewxy/math32"

	"github.com/denseforge/denseforge/kernel"
)

// ReLU writes max(0, in[i]) into out.
func ReLU(out, in []float32) kernel.Status {
	if len(out) != len(in) {
		return kernel.InvalidShape
	}
	for i, v := range in {
		if v < 0 {
			v = 0
		}
		out[i] = v
	}
	return kernel.Success
}

// Exp writes e^(in[i]) into out, using math32 so the reference kernel never
// round-trips float32 data through float64.
func Exp(out, in []float32) kernel.Status {
	if len(out) != len(in) {
		return kernel.InvalidShape
	}
	for i, v := range in {
		out[i] = math32.Exp(v)
	}
	return kernel.Success
}

// Sqrt writes √in[i] into out.
func Sqrt(out, in []float32) kernel.Status {
	if len(out) != len(in) {
		return kernel.InvalidShape
	}
	for i, v := range in {
		out[i] = math32.Sqrt(v)
	}
	return kernel.Success
}

// Log writes ln(in[i]) into out.
func Log(out, in []float32) kernel.Status {
	if len(out) != len(in) {
		return kernel.InvalidShape
	}
	for i, v := range in {
		out[i] = math32.Log(v)
	}
	return kernel.Success
}
