package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/vecseg"
	"github.com/hupe1980/vecseg/blobstore"
	minioblob "github.com/hupe1980/vecseg/blobstore/minio"
	s3blob "github.com/hupe1980/vecseg/blobstore/s3"
	"github.com/hupe1980/vecseg/internal/config"
	"github.com/spf13/cobra"
)

// openBackend builds the configured blob store, wrapped with throttling and
// a block cache when enabled.
func openBackend(ctx context.Context, cfg config.BackendConfig) (blobstore.BlobStore, error) {
	var bs blobstore.BlobStore
	switch cfg.Kind {
	case "", "local":
		bs = blobstore.NewLocalStore(cfg.Local.Root)
	case "s3":
		opts := []func(*s3blob.Options){
			s3blob.WithPrefix(cfg.S3.Prefix),
			s3blob.WithRegion(cfg.S3.Region),
		}
		if cfg.S3.Endpoint != "" {
			opts = append(opts, s3blob.WithEndpoint(cfg.S3.Endpoint))
		}
		if cfg.S3.UsePathStyle {
			opts = append(opts, func(o *s3blob.Options) { o.UsePathStyle = true })
		}
		store, err := s3blob.New(ctx, cfg.S3.Bucket, opts...)
		if err != nil {
			return nil, err
		}
		bs = store
	case "minio":
		store, err := minioblob.New(ctx, minioblob.Config{
			Endpoint:     cfg.MinIO.Endpoint,
			AccessKey:    cfg.MinIO.AccessKey,
			SecretKey:    cfg.MinIO.SecretKey,
			Secure:       cfg.MinIO.Secure,
			Region:       cfg.MinIO.Region,
			Bucket:       cfg.MinIO.Bucket,
			Prefix:       cfg.MinIO.Prefix,
			CreateBucket: cfg.MinIO.CreateBucket,
		})
		if err != nil {
			return nil, err
		}
		bs = store
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Kind)
	}

	if cfg.Limit.BytesPerSec > 0 || cfg.Limit.MaxConcurrentReads > 0 {
		bs = blobstore.NewThrottledStore(bs, blobstore.ThrottleConfig{
			BytesPerSec:        cfg.Limit.BytesPerSec,
			MaxConcurrentReads: cfg.Limit.MaxConcurrentReads,
		})
	}
	if cfg.Cache.Capacity > 0 {
		bs = blobstore.NewCachingStore(bs, cfg.Cache.Capacity, cfg.Cache.BlockSize)
	}
	return bs, nil
}

func (a *app) pushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <path> <name>",
		Short: "Upload a local segment to the blob backend",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withContext(cmd)
			vectors, err := a.store.ReadAll(args[0])
			if err != nil {
				return err
			}
			bs, err := openBackend(ctx, a.cfg.Backend)
			if err != nil {
				return err
			}
			if err := a.store.PutSegment(ctx, bs, args[1], vectors); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %d vectors to %s\n", len(vectors), args[1])
			return nil
		},
	}
}

func (a *app) pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <name> <path>",
		Short: "Download a segment from the blob backend",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withContext(cmd)
			bs, err := openBackend(ctx, a.cfg.Backend)
			if err != nil {
				return err
			}
			if d, ok := bs.(downloader); ok {
				report, err := downloadSegment(ctx, a.store, d, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pulled %d vectors to %s\n", report.Header.Count, args[1])
				return nil
			}

			r, err := a.store.OpenSegment(ctx, bs, args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			vectors, err := r.All(ctx)
			if err != nil {
				return err
			}
			if err := a.store.Write(args[1], vectors); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pulled %d vectors to %s\n", len(vectors), args[1])
			return nil
		},
	}
}

// downloader is implemented by backends that fetch a whole object with
// parallel ranged requests (s3.Store).
type downloader interface {
	Download(ctx context.Context, name string, w io.WriterAt) (int64, error)
}

var _ downloader = (*s3blob.Store)(nil)

// downloadSegment fetches name into a temporary file next to path, checks
// its header against its size and renames it onto path.
func downloadSegment(ctx context.Context, store *vecseg.Store, d downloader, name, path string) (vecseg.Report, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".download-*")
	if err != nil {
		return vecseg.Report{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := d.Download(ctx, name, tmp); err != nil {
		_ = tmp.Close()
		return vecseg.Report{}, fmt.Errorf("download %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return vecseg.Report{}, err
	}
	report, err := store.Verify(tmp.Name())
	if err != nil {
		return report, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return report, err
	}
	committed = true
	return report, nil
}

func (a *app) remoteGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remote-get <name> <index>...",
		Short: "Print vectors of a remote segment without downloading it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withContext(cmd)
			indices, err := parseIndices(args[1:])
			if err != nil {
				return err
			}
			bs, err := openBackend(ctx, a.cfg.Backend)
			if err != nil {
				return err
			}
			r, err := a.store.OpenSegment(ctx, bs, args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			if len(indices) == 1 {
				v, err := r.At(ctx, indices[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formatVector(v))
				return nil
			}
			vectors, err := r.Many(ctx, indices)
			if err != nil {
				return err
			}
			for k, v := range vectors {
				fmt.Fprintf(out, "%d\t%s\n", indices[k], formatVector(v))
			}
			return nil
		},
	}
}

func (a *app) remoteLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remote-ls [prefix]",
		Short: "List blobs in the backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withContext(cmd)
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			bs, err := openBackend(ctx, a.cfg.Backend)
			if err != nil {
				return err
			}
			names, err := bs.List(ctx, prefix)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
