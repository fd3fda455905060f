package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseIndex parses a vector ordinal.
func parseIndex(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: %w", s, err)
	}
	return uint32(v), nil
}

func parseIndices(args []string) ([]uint32, error) {
	out := make([]uint32, len(args))
	for i, s := range args {
		v, err := parseIndex(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseVector parses comma separated floats.
func parseVector(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	out := make([]float32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid component %q: %w", p, err)
		}
		out = append(out, float32(f))
	}
	return out, nil
}

// formatVector prints v in shortest round-trip form. NaN and infinities are
// printed as NaN, +Inf and -Inf.
func formatVector(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func printVectors(w io.Writer, start uint32, vectors [][]float32) {
	for i, v := range vectors {
		fmt.Fprintf(w, "%d\t%s\n", uint64(start)+uint64(i), formatVector(v))
	}
}
