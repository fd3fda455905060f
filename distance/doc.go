// Package distance provides vector distance calculations.
//
// # Supported Metrics
//
//   - MetricCosine: Cosine similarity (default); 0 for zero vectors
//   - MetricEuclidean: Euclidean (L2) distance
//   - MetricDot: Dot product (inner product)
//
// # Usage
//
//	score, err := distance.MetricCosine.Calculate(a, b)
//	dist := distance.SquaredL2(a, b)
//	normalized, ok := distance.NormalizeL2Copy(vec)
package distance
