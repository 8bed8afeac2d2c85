package graph

// Payload is the tagged-union content of a Node. Exactly one of
// *Input, *Parameter, *Constant, *Op implements it.
type Payload interface {
	// shape and dtype are common to every variant; kept unexported so that
	// callers go through Node.OutputShape/Node.OutputDType rather than the variant.
	shape() Shape
	dtype() DType
	payloadKind() string
}

// Input is data the caller writes between compile and execute.
type Input struct {
	Name  string
	Shape Shape
	DType DType
}

func (p *Input) shape() Shape        { return p.Shape }
func (p *Input) dtype() DType        { return p.DType }
func (p *Input) payloadKind() string { return "Input" }

// Parameter is data the caller writes, semantically constant across
// executions (weights, biases).
type Parameter struct {
	Name  string
	Shape Shape
	DType DType
}

func (p *Parameter) shape() Shape        { return p.Shape }
func (p *Parameter) dtype() DType        { return p.DType }
func (p *Parameter) payloadKind() string { return "Parameter" }

// Constant is an embedded literal payload written at compile time. Data is
// the row-major byte encoding of Shape/DType.
type Constant struct {
	Shape Shape
	DType DType
	Data  []byte
}

func (p *Constant) shape() Shape        { return p.Shape }
func (p *Constant) dtype() DType        { return p.DType }
func (p *Constant) payloadKind() string { return "Constant" }

// Op is a primitive operation over earlier nodes. Params carries op-specific
// integer arguments: perm for Transpose, [axis] for Concat, [axis,start,end]
// for Slice, the target dims for Reshape. Reductions need no Params — they
// always reduce the last axis in this version.
type Op struct {
	Kind   OpType
	Inputs []int
	Shape  Shape
	DType  DType
	Params []int
}

func (p *Op) shape() Shape        { return p.Shape }
func (p *Op) dtype() DType        { return p.DType }
func (p *Op) payloadKind() string { return "Op" }

// Node is a (index, payload) pair. Index is both the node's position in the
// graph's node sequence and its identity.
type Node struct {
	Index   int
	Payload Payload
}

// OutputShape returns the node's output shape, regardless of variant.
func (n Node) OutputShape() Shape { return n.Payload.shape() }

// OutputDType returns the node's output element type, regardless of variant.
func (n Node) OutputDType() DType { return n.Payload.dtype() }

// Kind returns a short tag naming which variant n.Payload is.
func (n Node) Kind() string { return n.Payload.payloadKind() }

// AsOp returns (op, true) if n is an Op node.
func (n Node) AsOp() (*Op, bool) {
	op, ok := n.Payload.(*Op)
	return op, ok
}

// AsConstant returns (constant, true) if n is a Constant node.
func (n Node) AsConstant() (*Constant, bool) {
	c, ok := n.Payload.(*Constant)
	return c, ok
}

// AsInput returns (input, true) if n is an Input node.
func (n Node) AsInput() (*Input, bool) {
	i, ok := n.Payload.(*Input)
	return i, ok
}

// AsParameter returns (parameter, true) if n is a Parameter node.
func (n Node) AsParameter() (*Parameter, bool) {
	p, ok := n.Payload.(*Parameter)
	return p, ok
}

// IsWritable reports whether a node's buffer is caller-mutable between
// executions (Input, Parameter), as opposed to compile-time fixed (Constant)
// or recomputed every execute() (Op).
func (n Node) IsWritable() bool {
	switch n.Payload.(type) {
	case *Input, *Parameter:
		return true
	default:
		return false
	}
}
