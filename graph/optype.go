package graph

// OpType is the closed set of primitive operation kinds. Higher-level
// primitives (Softmax, LayerNorm, Attention, ...) are never OpTypes — they
// exist only as composer-built subgraphs of these.
type OpType int

const (
	Add OpType = iota
	Sub
	Mul
	Div
	MatMul
	BiasAdd
	ReLU
	ReduceSum
	ReduceMax
	Exp
	Sqrt
	Log
	Transpose
	Reshape
	Concat
	Slice
)

var opNames = [...]string{
	Add:       "Add",
	Sub:       "Sub",
	Mul:       "Mul",
	Div:       "Div",
	MatMul:    "MatMul",
	BiasAdd:   "BiasAdd",
	ReLU:      "ReLU",
	ReduceSum: "ReduceSum",
	ReduceMax: "ReduceMax",
	Exp:       "Exp",
	Sqrt:      "Sqrt",
	Log:       "Log",
	Transpose: "Transpose",
	Reshape:   "Reshape",
	Concat:    "Concat",
	Slice:     "Slice",
}

func (o OpType) String() string {
	if int(o) < 0 || int(o) >= len(opNames) {
		return "OpType(?)"
	}
	return opNames[o]
}

// IsElementwiseBinary reports whether o is one of the four broadcast-eligible
// binary arithmetic ops.
func (o OpType) IsElementwiseBinary() bool {
	switch o {
	case Add, Sub, Mul, Div:
		return true
	default:
		return false
	}
}

// IsUnaryArithmetic reports whether o preserves its input's shape and dtype
// and requires an F32 input (ReLU, Exp, Sqrt, Log).
func (o OpType) IsUnaryArithmetic() bool {
	switch o {
	case ReLU, Exp, Sqrt, Log:
		return true
	default:
		return false
	}
}

// IsDataMovement reports whether o only rearranges bytes and therefore may
// operate on any DType (Transpose, Reshape, Concat, Slice).
func (o OpType) IsDataMovement() bool {
	switch o {
	case Transpose, Reshape, Concat, Slice:
		return true
	default:
		return false
	}
}

// LoweredWhitelist is the set of op kinds permitted under strict deployment
// mode. It is, deliberately, every OpType: the restriction deployment mode
// enforces is on lowered *forms*, and in this version every primitive op has
// exactly one lowered form, so the whitelist is the full closed set.
var LoweredWhitelist = map[OpType]bool{
	Add: true, Sub: true, Mul: true, Div: true,
	MatMul: true, BiasAdd: true, ReLU: true,
	ReduceSum: true, ReduceMax: true,
	Exp: true, Sqrt: true, Log: true,
	Transpose: true, Reshape: true, Concat: true, Slice: true,
}
