package compose

import "github.com/denseforge/denseforge/graph"

// Softmax lowers to: max ← ReduceMax(x); s ← Sub(x, max); e ← Exp(s);
// sum ← ReduceSum(e); y ← Div(e, sum). Sub and Div use the column-vector
// broadcast rule (§4.4): max and sum both have one fewer rank than x.
func Softmax(b *graph.Builder, x int) (int, error) {
	max, err := b.ReduceMax(x)
	if err != nil {
		return -1, err
	}
	s, err := b.Sub(x, max)
	if err != nil {
		return -1, err
	}
	e, err := b.Exp(s)
	if err != nil {
		return -1, err
	}
	sum, err := b.ReduceSum(e)
	if err != nil {
		return -1, err
	}
	return b.Div(e, sum)
}

// LogSoftmax lowers to: max ← ReduceMax(x); s ← Sub(x, max); e ← Exp(s);
// sum ← ReduceSum(e); lg ← Log(sum); y ← Sub(s, lg).
func LogSoftmax(b *graph.Builder, x int) (int, error) {
	max, err := b.ReduceMax(x)
	if err != nil {
		return -1, err
	}
	s, err := b.Sub(x, max)
	if err != nil {
		return -1, err
	}
	e, err := b.Exp(s)
	if err != nil {
		return -1, err
	}
	sum, err := b.ReduceSum(e)
	if err != nil {
		return -1, err
	}
	lg, err := b.Log(sum)
	if err != nil {
		return -1, err
	}
	return b.Sub(s, lg)
}

// StableSoftmax is Exp(LogSoftmax(x)) — numerically equivalent to Softmax
// but derived from the same LogSumExp subtraction used for cross-entropy.
func StableSoftmax(b *graph.Builder, x int) (int, error) {
	lg, err := LogSoftmax(b, x)
	if err != nil {
		return -1, err
	}
	return b.Exp(lg)
}

// CrossEntropy lowers to −ReduceSum(target ⊙ LogSoftmax(logits)), negated
// via a scalar-broadcast Mul by the constant −1 (there is no primitive
// Neg op).
func CrossEntropy(b *graph.Builder, logits, target int) (int, error) {
	lg, err := LogSoftmax(b, logits)
	if err != nil {
		return -1, err
	}
	weighted, err := b.Mul(target, lg)
	if err != nil {
		return -1, err
	}
	summed, err := b.ReduceSum(weighted)
	if err != nil {
		return -1, err
	}
	negOne, err := scalar(b, -1)
	if err != nil {
		return -1, err
	}
	return b.Mul(summed, negOne)
}
