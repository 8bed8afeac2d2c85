package lowering

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/denseforge/denseforge/graph"
)

func TestToForeignPackageWritesExpectedStructureAndStatements(t *testing.T) {
	b := graph.NewBuilder()
	x, _ := b.Input("x", graph.F32, 2, 2)
	w, _ := b.Parameter("w", graph.F32, 2, 2)
	mm, err := b.MatMul(x, w)
	if err != nil {
		t.Fatalf("MatMul: %v", err)
	}
	out, err := b.ReLU(mm)
	if err != nil {
		t.Fatalf("ReLU: %v", err)
	}
	g := b.Finish(out)

	dir := t.TempDir()
	if err := ToForeignPackage(g, dir); err != nil {
		t.Fatalf("ToForeignPackage: %v", err)
	}

	milPath := filepath.Join(dir, "Data", "com.apple.CoreML", "model.mil")
	data, err := os.ReadFile(milPath)
	if err != nil {
		t.Fatalf("reading %s: %v", milPath, err)
	}
	text := string(data)

	if !strings.Contains(text, "graph main(") {
		t.Fatalf("missing graph header, got:\n%s", text)
	}
	if !strings.Contains(text, "x: tensor<fp32, [2,2]>") {
		t.Fatalf("missing typed input declaration for x, got:\n%s", text)
	}
	if !strings.Contains(text, "matmul(x=x, y=w)") {
		t.Fatalf("missing matmul statement, got:\n%s", text)
	}
	if !strings.Contains(text, "relu(x=") {
		t.Fatalf("missing relu statement, got:\n%s", text)
	}
	if !strings.Contains(text, "return(") {
		t.Fatalf("missing return statement, got:\n%s", text)
	}
}

func TestToForeignPackageOpNameMapping(t *testing.T) {
	b := graph.NewBuilder()
	x, _ := b.Input("x", graph.F32, 2, 3)
	reduced, err := b.ReduceSum(x)
	if err != nil {
		t.Fatalf("ReduceSum: %v", err)
	}
	g := b.Finish(reduced)

	dir := t.TempDir()
	if err := ToForeignPackage(g, dir); err != nil {
		t.Fatalf("ToForeignPackage: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "Data", "com.apple.CoreML", "model.mil"))
	if err != nil {
		t.Fatalf("reading model.mil: %v", err)
	}
	if !strings.Contains(string(data), "reduce_sum(x=x, axes=[-1], keep_dims=false)") {
		t.Fatalf("missing reduce_sum statement, got:\n%s", data)
	}
}

func TestToForeignPackageCreatesNestedDirectories(t *testing.T) {
	b := graph.NewBuilder()
	x, _ := b.Input("x", graph.F32, 2)
	g := b.Finish(x)

	dir := filepath.Join(t.TempDir(), "nested", "model.mlpackage")
	if err := ToForeignPackage(g, dir); err != nil {
		t.Fatalf("ToForeignPackage: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Data", "com.apple.CoreML", "model.mil")); err != nil {
		t.Fatalf("expected model.mil to exist: %v", err)
	}
}
