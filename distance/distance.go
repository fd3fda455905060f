package distance

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ErrLengthMismatch is returned when two vectors of different lengths are
// compared.
var ErrLengthMismatch = errors.New("distance: vector lengths differ")

// LengthError reports the lengths of two vectors that cannot be compared.
type LengthError struct {
	A, B int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("distance: vector lengths differ: %d vs %d", e.A, e.B)
}

func (e *LengthError) Is(target error) bool { return target == ErrLengthMismatch }

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// L2 is the Euclidean distance, the square root of SquaredL2.
func L2(a, b []float32) float32 {
	return float32(math.Sqrt(float64(SquaredL2(a, b))))
}

// Cosine is the cosine similarity of a and b. It is 0 if either vector has
// zero norm.
func Cosine(a, b []float32) float32 {
	na := Dot(a, a)
	nb := Dot(b, b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / float32(math.Sqrt(float64(na))*math.Sqrt(float64(nb)))
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	norm2 := Dot(v, v)
	if norm2 == 0 {
		return false
	}
	inv := float32(1 / math.Sqrt(float64(norm2)))
	for i := range v {
		v[i] *= inv
	}
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricCosine Metric = iota
	MetricEuclidean
	MetricDot
)

func (m Metric) String() string {
	switch m {
	case MetricCosine:
		return "Cosine"
	case MetricEuclidean:
		return "Euclidean"
	case MetricDot:
		return "Dot"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMetric parses a metric name, ignoring case. "l2" is accepted for
// Euclidean.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cosine":
		return MetricCosine, nil
	case "euclidean", "l2":
		return MetricEuclidean, nil
	case "dot":
		return MetricDot, nil
	default:
		return 0, fmt.Errorf("distance: unknown metric %q", s)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricCosine:
		return Cosine, nil
	case MetricEuclidean:
		return L2, nil
	case MetricDot:
		return Dot, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// Calculate compares a and b under m. Vectors of different lengths fail
// with *LengthError.
func (m Metric) Calculate(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, &LengthError{A: len(a), B: len(b)}
	}
	fn, err := Provider(m)
	if err != nil {
		return 0, err
	}
	return fn(a, b), nil
}

// HigherIsCloser reports whether larger scores mean more similar vectors.
func (m Metric) HigherIsCloser() bool {
	return m != MetricEuclidean
}

// Closer reports whether score x ranks before score y under m.
func (m Metric) Closer(x, y float32) bool {
	if m.HigherIsCloser() {
		return x > y
	}
	return x < y
}
