package graph

import "fmt"

// inferShape computes an Op's output shape from its resolved input shapes,
// per §4.2. It also resolves Slice's negative bounds into the Params stored
// on the node (so Params is always the concrete, non-negative [axis, start,
// end] by the time the engine dispatches it).
func inferShape(kind OpType, inputShapes []Shape, params []int) (Shape, []int, error) {
	switch kind {
	case Add, Sub, Mul, Div:
		if len(inputShapes) != 2 {
			return nil, nil, fmt.Errorf("%s: expected 2 inputs, got %d", kind, len(inputShapes))
		}
		return inputShapes[0].Clone(), params, nil

	case MatMul:
		if len(inputShapes) != 2 {
			return nil, nil, fmt.Errorf("MatMul: expected 2 inputs, got %d", len(inputShapes))
		}
		a, b := inputShapes[0], inputShapes[1]
		if a.Rank() != 2 || b.Rank() != 2 {
			return nil, nil, fmt.Errorf("MatMul: inputs must be rank-2, got %s and %s", a, b)
		}
		if a[1] != b[0] {
			return nil, nil, fmt.Errorf("MatMul: inner dimensions must match, got %s and %s", a, b)
		}
		return Shape{a[0], b[1]}, params, nil

	case BiasAdd:
		if len(inputShapes) != 2 {
			return nil, nil, fmt.Errorf("BiasAdd: expected 2 inputs, got %d", len(inputShapes))
		}
		x, bias := inputShapes[0], inputShapes[1]
		if x.Rank() != 2 {
			return nil, nil, fmt.Errorf("BiasAdd: input must be rank-2, got %s", x)
		}
		ok := (bias.Rank() == 1 && bias[0] == x[1]) || (bias.Rank() == 2 && bias[0] == 1 && bias[1] == x[1])
		if !ok {
			return nil, nil, fmt.Errorf("BiasAdd: bias %s incompatible with input %s", bias, x)
		}
		return x.Clone(), params, nil

	case ReLU, Exp, Sqrt, Log:
		if len(inputShapes) != 1 {
			return nil, nil, fmt.Errorf("%s: expected 1 input, got %d", kind, len(inputShapes))
		}
		return inputShapes[0].Clone(), params, nil

	case ReduceSum, ReduceMax:
		if len(inputShapes) != 1 {
			return nil, nil, fmt.Errorf("%s: expected 1 input, got %d", kind, len(inputShapes))
		}
		in := inputShapes[0]
		if in.Rank() == 0 {
			return nil, nil, fmt.Errorf("%s: cannot reduce a scalar", kind)
		}
		if in.Rank() == 1 {
			return Shape{}, params, nil
		}
		return Shape(in[:len(in)-1]).Clone(), params, nil

	case Transpose:
		if len(inputShapes) != 1 {
			return nil, nil, fmt.Errorf("Transpose: expected 1 input, got %d", len(inputShapes))
		}
		in := inputShapes[0]
		if len(params) != in.Rank() {
			return nil, nil, fmt.Errorf("Transpose: perm length %d does not match rank %d", len(params), in.Rank())
		}
		seen := make([]bool, in.Rank())
		out := make(Shape, in.Rank())
		for i, p := range params {
			if p < 0 || p >= in.Rank() || seen[p] {
				return nil, nil, fmt.Errorf("Transpose: perm %v is not a permutation of 0..%d", params, in.Rank()-1)
			}
			seen[p] = true
			out[i] = in[p]
		}
		return out, params, nil

	case Reshape:
		if len(inputShapes) != 1 {
			return nil, nil, fmt.Errorf("Reshape: expected 1 input, got %d", len(inputShapes))
		}
		in := inputShapes[0]
		out := Shape(params)
		if out.Elements() != in.Elements() {
			return nil, nil, fmt.Errorf("Reshape: element count %d does not match input %d", out.Elements(), in.Elements())
		}
		return out.Clone(), params, nil

	case Concat:
		if len(inputShapes) < 2 {
			return nil, nil, fmt.Errorf("Concat: expected at least 2 inputs, got %d", len(inputShapes))
		}
		if len(params) != 1 {
			return nil, nil, fmt.Errorf("Concat: expected params=[axis], got %v", params)
		}
		axis := params[0]
		first := inputShapes[0]
		if axis < 0 || axis >= first.Rank() {
			return nil, nil, fmt.Errorf("Concat: axis %d out of range for rank %d", axis, first.Rank())
		}
		out := first.Clone()
		sum := first[axis]
		for _, s := range inputShapes[1:] {
			if s.Rank() != first.Rank() {
				return nil, nil, fmt.Errorf("Concat: rank mismatch %s vs %s", s, first)
			}
			for d := range s {
				if d == axis {
					continue
				}
				if s[d] != first[d] {
					return nil, nil, fmt.Errorf("Concat: non-concat dimension %d mismatch %s vs %s", d, s, first)
				}
			}
			sum += s[axis]
		}
		out[axis] = sum
		return out, params, nil

	case Slice:
		if len(inputShapes) != 1 {
			return nil, nil, fmt.Errorf("Slice: expected 1 input, got %d", len(inputShapes))
		}
		if len(params) != 3 {
			return nil, nil, fmt.Errorf("Slice: expected params=[axis,start,end], got %v", params)
		}
		in := inputShapes[0]
		axis, start, end := params[0], params[1], params[2]
		if axis < 0 || axis >= in.Rank() {
			return nil, nil, fmt.Errorf("Slice: axis %d out of range for rank %d", axis, in.Rank())
		}
		dim := in[axis]
		if start < 0 {
			start += dim
		}
		if end < 0 {
			end += dim
		}
		if start < 0 || end > dim || start > end {
			return nil, nil, fmt.Errorf("Slice: resolved bounds [%d,%d) out of range for dimension %d", start, end, dim)
		}
		out := in.Clone()
		out[axis] = end - start
		return out, []int{axis, start, end}, nil

	default:
		return nil, nil, fmt.Errorf("unknown op kind %d", int(kind))
	}
}
