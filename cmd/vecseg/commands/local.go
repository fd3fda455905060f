package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hupe1980/vecseg"
	"github.com/hupe1980/vecseg/distance"
	"github.com/spf13/cobra"
)

func (a *app) writeCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "write <out>",
		Short: "Write a segment from JSON lines",
		Long: `Write a segment from JSON lines.

Each non-empty line is either a bare array of numbers or an object with a
"vector" array and an optional "metadata" map of strings. If any line carries
metadata, a sidecar is written next to the segment.

Examples:
  vecseg write vectors.vec -i vectors.jsonl
  echo '[1,2,3]' | vecseg write vectors.vec`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			records, withMeta, err := readRecords(in)
			if err != nil {
				return err
			}
			if withMeta {
				err = a.store.WriteRecords(args[0], records)
			} else {
				vectors := make([][]float32, len(records))
				for i, r := range records {
					vectors[i] = r.Vector
				}
				err = a.store.Write(args[0], vectors)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d vectors to %s\n", len(records), args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input JSON lines file (default stdin)")
	return cmd
}

// readRecords parses JSON lines. withMeta reports whether any line carried
// metadata.
func readRecords(r io.Reader) (records []vecseg.Record, withMeta bool, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec vecseg.Record
		if strings.HasPrefix(text, "[") {
			err = json.Unmarshal([]byte(text), &rec.Vector)
		} else {
			err = json.Unmarshal([]byte(text), &rec)
		}
		if err != nil {
			return nil, false, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.Vector == nil {
			rec.Vector = []float32{}
		}
		withMeta = withMeta || len(rec.Metadata) > 0
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, false, err
	}
	return records, withMeta, nil
}

func (a *app) infoCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info <path>",
		Short: "Show header and geometry of a segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.store.Verify(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(map[string]any{
					"path":        args[0],
					"version":     r.Header.Version,
					"count":       r.Header.Count,
					"dimension":   r.Header.Dimension,
					"vector_size": r.Header.VectorByteSize(),
					"expected":    r.Expected,
					"size":        r.Size,
					"trailing":    r.Trailing,
				})
			}
			fmt.Fprintf(out, "Path:        %s\n", args[0])
			fmt.Fprintf(out, "Version:     %d\n", r.Header.Version)
			fmt.Fprintf(out, "Count:       %d\n", r.Header.Count)
			fmt.Fprintf(out, "Dimension:   %d\n", r.Header.Dimension)
			fmt.Fprintf(out, "Vector size: %d bytes\n", r.Header.VectorByteSize())
			fmt.Fprintf(out, "File size:   %d bytes (expected %d)\n", r.Size, r.Expected)
			if r.Trailing > 0 {
				fmt.Fprintf(out, "Trailing:    %d bytes\n", r.Trailing)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path> <index>",
		Short: "Print the vector at an index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			v, err := a.store.ReadAt(args[0], index)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatVector(v))
			return nil
		},
	}
}

func (a *app) rangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "range <path> <start> <n>",
		Short: "Print n contiguous vectors starting at start",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			n, err := parseIndex(args[2])
			if err != nil {
				return err
			}
			vectors, err := a.store.ReadRange(args[0], start, n)
			if err != nil {
				return err
			}
			printVectors(cmd.OutOrStdout(), start, vectors)
			return nil
		},
	}
}

func (a *app) manyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "many <path> <index>...",
		Short: "Print the vectors at the given indices",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := parseIndices(args[1:])
			if err != nil {
				return err
			}
			vectors, err := a.store.ReadMany(args[0], indices)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for k, v := range vectors {
				fmt.Fprintf(out, "%d\t%s\n", indices[k], formatVector(v))
			}
			return nil
		},
	}
}

func (a *app) catCmd() *cobra.Command {
	var withMeta bool
	cmd := &cobra.Command{
		Use:   "cat <path>",
		Short: "Print every vector of a segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !withMeta {
				vectors, err := a.store.ReadAll(args[0])
				if err != nil {
					return err
				}
				printVectors(out, 0, vectors)
				return nil
			}
			records, err := a.store.ReadRecords(args[0])
			if err != nil {
				return err
			}
			for i, r := range records {
				meta, err := json.Marshal(r.Metadata)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d\t%s\t%s\n", i, formatVector(r.Vector), meta)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&withMeta, "metadata", "m", false, "Include metadata from the sidecar")
	return cmd
}

func (a *app) dumpCmd() *cobra.Command {
	var maxBytes int
	cmd := &cobra.Command{
		Use:   "dump <path>",
		Short: "Hex dump the start of a segment file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.Dump(cmd.OutOrStdout(), args[0], maxBytes)
		},
	}
	cmd.Flags().IntVar(&maxBytes, "max-bytes", 128, "Number of bytes to dump")
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "verify <path>...",
		Short: "Check segment files against their headers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.store.VerifyAll(cmd.Context(), args, concurrency)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(out, "FAIL\t%s\t%v\n", r.Path, r.Err)
					continue
				}
				fmt.Fprintf(out, "OK\t%s\t%s\n", r.Path, r.Report)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d segments failed verification", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Files verified in parallel")
	return cmd
}

func (a *app) nearestCmd() *cobra.Command {
	var (
		query  string
		metric string
		k      int
	)
	cmd := &cobra.Command{
		Use:   "nearest <path>",
		Short: "Exact nearest-neighbour scan over a segment",
		Long: `Score every vector of a segment against a query and print the k best.

Examples:
  vecseg nearest vectors.vec --query 0.1,0.2,0.3 --metric cosine -k 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := distance.ParseMetric(metric)
			if err != nil {
				return err
			}
			q, err := parseVector(query)
			if err != nil {
				return err
			}
			vectors, err := a.store.ReadAll(args[0])
			if err != nil {
				return err
			}
			results, err := distance.TopK(m, vectors, q, k)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for rank, r := range results {
				fmt.Fprintf(out, "%d\t%d\t%g\n", rank+1, r.Index, r.Score)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Query vector as comma separated floats")
	cmd.Flags().StringVar(&metric, "metric", "cosine", "Metric (cosine, euclidean, dot)")
	cmd.Flags().IntVarP(&k, "top-k", "k", 5, "Number of results")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func withContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
