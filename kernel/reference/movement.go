package reference

import "github.com/denseforge/denseforge/kernel"

// These kernels operate on raw bytes parameterized by elemSize, since
// Transpose/Reshape/Concat/Slice are pure data movement and, per §3, are
// permitted for any DType — not only F32.

func strides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}
	return s
}

func elements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Reshape copies in to out unchanged — row-major contiguous data is
// reinterpreted, never moved, when the element count matches.
func Reshape(out, in []byte) kernel.Status {
	if len(out) != len(in) {
		return kernel.InvalidShape
	}
	copy(out, in)
	return kernel.Success
}

// Transpose permutes inShape's dimensions by perm, copying elemSize-byte
// elements from in (row-major, inShape) into out (row-major, the permuted
// shape).
func Transpose(out, in []byte, inShape, perm []int, elemSize int) kernel.Status {
	rank := len(inShape)
	if len(perm) != rank {
		return kernel.InvalidShape
	}
	outShape := make([]int, rank)
	for i, p := range perm {
		if p < 0 || p >= rank {
			return kernel.InvalidShape
		}
		outShape[i] = inShape[p]
	}
	n := elements(inShape)
	if len(in) != n*elemSize || len(out) != n*elemSize {
		return kernel.InvalidShape
	}

	inStrides := strides(inShape)
	outIdx := make([]int, rank)
	for linear := range n {
		rem := linear
		for i := rank - 1; i >= 0; i-- {
			if outShape[i] == 0 {
				outIdx[i] = 0
				continue
			}
			outIdx[i] = rem % outShape[i]
			rem /= outShape[i]
		}
		inOffset := 0
		for i, p := range perm {
			inOffset += outIdx[i] * inStrides[p]
		}
		copy(out[linear*elemSize:(linear+1)*elemSize], in[inOffset*elemSize:(inOffset+1)*elemSize])
	}
	return kernel.Success
}

// Concat joins ins (each row-major, agreeing on every dimension but axis)
// into out along axis.
func Concat(out []byte, ins [][]byte, shapes [][]int, axis, elemSize int) kernel.Status {
	if len(ins) != len(shapes) || len(ins) == 0 {
		return kernel.InvalidShape
	}
	rank := len(shapes[0])
	outer := 1
	for i := 0; i < axis; i++ {
		outer *= shapes[0][i]
	}
	innerAfter := 1
	for i := axis + 1; i < rank; i++ {
		innerAfter *= shapes[0][i]
	}

	totalAxis := 0
	for _, s := range shapes {
		totalAxis += s[axis]
	}
	outRowBytes := totalAxis * innerAfter * elemSize
	if len(out) != outer*outRowBytes {
		return kernel.InvalidShape
	}

	for o := range outer {
		destOff := o * outRowBytes
		for idx, in := range ins {
			axisLen := shapes[idx][axis]
			chunk := axisLen * innerAfter * elemSize
			srcOff := o * chunk
			if srcOff+chunk > len(in) {
				return kernel.InvalidShape
			}
			copy(out[destOff:destOff+chunk], in[srcOff:srcOff+chunk])
			destOff += chunk
		}
	}
	return kernel.Success
}

// Slice extracts the half-open range [start, end) of in along axis. start
// and end must already be resolved (non-negative, within [0, dim]) by the
// IR's shape inference — this kernel does no wraparound of its own.
func Slice(out, in []byte, inShape []int, axis, start, end, elemSize int) kernel.Status {
	rank := len(inShape)
	if axis < 0 || axis >= rank || start < 0 || end > inShape[axis] || start > end {
		return kernel.InvalidShape
	}
	outer := 1
	for i := 0; i < axis; i++ {
		outer *= inShape[i]
	}
	innerAfter := 1
	for i := axis + 1; i < rank; i++ {
		innerAfter *= inShape[i]
	}
	axisLen := inShape[axis]
	sliceLen := end - start

	inRowBytes := axisLen * innerAfter * elemSize
	outRowBytes := sliceLen * innerAfter * elemSize
	chunkBytes := innerAfter * elemSize

	if len(in) != outer*inRowBytes || len(out) != outer*outRowBytes {
		return kernel.InvalidShape
	}

	for o := range outer {
		srcOff := o*inRowBytes + start*chunkBytes
		destOff := o * outRowBytes
		copy(out[destOff:destOff+outRowBytes], in[srcOff:srcOff+outRowBytes])
	}
	return kernel.Success
}
