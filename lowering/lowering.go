// Package lowering implements the secondary exit path (§4.5, §6): it walks
// a frozen graph.Graph in node order and serializes it to the textual
// intermediate-model format a CoreML-MIL-like foreign runtime expects, one
// file at "<path>/Data/com.apple.CoreML/model.mil". It follows the
// teacher's gguf writer idiom (fs/ggml/gguf_write.go): create the parent
// directory tree, write through a single buffered writer, wrap every I/O
// failure with fmt.Errorf("%w").
package lowering

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/denseforge/denseforge/graph"
)

// UnsupportedOpError reports that graph g contains an op kind with no
// lowered form. In this version every primitive op has exactly one lowered
// form (graph.LoweredWhitelist is the full set), so this only triggers if a
// future op kind is added to the IR without a matching case here.
type UnsupportedOpError struct {
	Node int
	Kind graph.OpType
}

func (e *UnsupportedOpError) Error() string {
	return fmt.Sprintf("lowering: node %d has unsupported op kind %s", e.Node, e.Kind)
}

func milType(dt graph.DType) string {
	switch dt {
	case graph.F32:
		return "fp32"
	case graph.F16:
		return "fp16"
	case graph.I32:
		return "int32"
	case graph.I8:
		return "int8"
	default:
		return "fp32"
	}
}

func milShape(s graph.Shape) string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func nodeRef(n graph.Node) string {
	if in, ok := n.AsInput(); ok && in.Name != "" {
		return in.Name
	}
	if p, ok := n.AsParameter(); ok && p.Name != "" {
		return p.Name
	}
	return "n" + strconv.Itoa(n.Index)
}

func intList(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// opStatement renders one op node's statement body, not including its
// "nK = " prefix, per the op-name mapping table (§6).
func opStatement(g *graph.Graph, n graph.Node, op *graph.Op) (string, error) {
	args := make([]string, len(op.Inputs))
	for i, in := range op.Inputs {
		args[i] = nodeRef(g.Node(in))
	}

	switch op.Kind {
	case graph.Add, graph.BiasAdd:
		return fmt.Sprintf("add(x=%s, y=%s)", args[0], args[1]), nil
	case graph.Sub:
		return fmt.Sprintf("sub(x=%s, y=%s)", args[0], args[1]), nil
	case graph.Mul:
		return fmt.Sprintf("mul(x=%s, y=%s)", args[0], args[1]), nil
	case graph.Div:
		return fmt.Sprintf("real_div(x=%s, y=%s)", args[0], args[1]), nil
	case graph.ReLU:
		return fmt.Sprintf("relu(x=%s)", args[0]), nil
	case graph.MatMul:
		return fmt.Sprintf("matmul(x=%s, y=%s)", args[0], args[1]), nil
	case graph.ReduceSum:
		return fmt.Sprintf("reduce_sum(x=%s, axes=[-1], keep_dims=false)", args[0]), nil
	case graph.ReduceMax:
		return fmt.Sprintf("reduce_max(x=%s, axes=[-1], keep_dims=false)", args[0]), nil
	case graph.Exp:
		return fmt.Sprintf("exp(x=%s)", args[0]), nil
	case graph.Sqrt:
		return fmt.Sprintf("sqrt(x=%s)", args[0]), nil
	case graph.Log:
		return fmt.Sprintf("log(x=%s)", args[0]), nil
	case graph.Transpose:
		return fmt.Sprintf("transpose(x=%s, perm=%s)", args[0], intList(op.Params)), nil
	case graph.Reshape:
		return fmt.Sprintf("reshape(x=%s, shape=%s)", args[0], milShape(op.Shape)), nil
	case graph.Concat:
		return fmt.Sprintf("concat(values=(%s), axis=%d)", strings.Join(args, ", "), op.Params[0]), nil
	case graph.Slice:
		return fmt.Sprintf("slice_by_index(x=%s, begin=%s, end=%s)",
			args[0], intList([]int{op.Params[1]}), intList([]int{op.Params[2]})), nil
	default:
		return "", &UnsupportedOpError{Node: n.Index, Kind: op.Kind}
	}
}

// ToForeignPackage lowers g into "<path>/Data/com.apple.CoreML/model.mil".
// g must already be frozen and pass Validate; ToForeignPackage does not
// re-run structural validation. Every op kind in g must be in
// graph.LoweredWhitelist or ToForeignPackage returns an UnsupportedOpError
// before writing anything.
func ToForeignPackage(g *graph.Graph, path string) error {
	nodes := g.Nodes()
	for _, n := range nodes {
		op, ok := n.AsOp()
		if !ok {
			continue
		}
		if !graph.LoweredWhitelist[op.Kind] {
			return &UnsupportedOpError{Node: n.Index, Kind: op.Kind}
		}
	}

	dir := filepath.Join(path, "Data", "com.apple.CoreML")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("lowering: creating package directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "model.mil"))
	if err != nil {
		return fmt.Errorf("lowering: creating model.mil: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	params := make([]string, 0)
	for _, n := range nodes {
		if in, ok := n.AsInput(); ok {
			params = append(params, fmt.Sprintf("%s: tensor<%s, %s>", nodeRef(n), milType(in.DType), milShape(in.Shape)))
		}
	}
	fmt.Fprintf(w, "graph main(%s) {\n", strings.Join(params, ", "))

	for _, n := range nodes {
		op, ok := n.AsOp()
		if !ok {
			continue
		}
		stmt, err := opStatement(g, n, op)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\t%s = %s;\n", nodeRef(n), stmt)
	}

	outRefs := make([]string, len(g.Outputs()))
	for i, o := range g.Outputs() {
		outRefs[i] = nodeRef(g.Node(o))
	}
	fmt.Fprintf(w, "\treturn(%s);\n}\n", strings.Join(outRefs, ", "))

	if err := w.Flush(); err != nil {
		return fmt.Errorf("lowering: writing model.mil: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("lowering: closing model.mil: %w", err)
	}
	return nil
}
