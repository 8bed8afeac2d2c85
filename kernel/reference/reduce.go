package reference

import "github.com/denseforge/denseforge/kernel"

// ReduceSum treats in as [outer, inner] and writes the last-axis sum into
// out, shaped [outer].
func ReduceSum(out, in []float32, outer, inner int) kernel.Status {
	if len(in) != outer*inner || len(out) != outer {
		return kernel.InvalidShape
	}
	for i := range outer {
		var sum float32
		for _, v := range in[i*inner : (i+1)*inner] {
			sum += v
		}
		out[i] = sum
	}
	return kernel.Success
}

// ReduceMax treats in as [outer, inner] and writes the last-axis maximum
// into out, shaped [outer].
func ReduceMax(out, in []float32, outer, inner int) kernel.Status {
	if len(in) != outer*inner || len(out) != outer || inner == 0 {
		return kernel.InvalidShape
	}
	for i := range outer {
		row := in[i*inner : (i+1)*inner]
		m := row[0]
		for _, v := range row[1:] {
			if v > m {
				m = v
			}
		}
		out[i] = m
	}
	return kernel.Success
}
