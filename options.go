package vecseg

import (
	"log/slog"
	"os"

	"github.com/hupe1980/vecseg/internal/fs"
)

const defaultBufferSize = 64 * 1024

type options struct {
	fs               fs.FileSystem
	logger           *Logger
	metricsCollector MetricsCollector
	atomicWrite      bool
	sync             bool
	bufferSize       int
	perm             os.FileMode
}

// Option configures a Store.
type Option func(*options)

// WithFileSystem sets the file system used for every open, rename and remove.
//
// If nil is passed, the local file system is used.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fs = fsys
	}
}

// WithAtomicWrite controls whether writes go through a temporary file that
// is renamed onto the destination only after a complete write.
//
// Enabled by default. When disabled, the destination is truncated and
// written in place; a failed write then leaves a file that readers reject
// or that disagrees with its header.
func WithAtomicWrite(enabled bool) Option {
	return func(o *options) {
		o.atomicWrite = enabled
	}
}

// WithSync makes writes fsync the file (and, for atomic writes, its
// directory) before returning.
func WithSync(enabled bool) Option {
	return func(o *options) {
		o.sync = enabled
	}
}

// WithBufferSize sets the size of the buffered reader and writer used for
// sequential I/O. Values <= 0 select the default of 64 KiB.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = defaultBufferSize
		}
		o.bufferSize = n
	}
}

// WithFileMode sets the permission bits of newly created segment files.
func WithFileMode(perm os.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

// WithMetricsCollector sets a metrics collector for observability.
//
// If nil is passed, metrics collection is disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger sets a structured logger.
//
// If nil is passed, logging is disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel is a convenience option that installs a text logger at level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		fs:               fs.Default,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		atomicWrite:      true,
		bufferSize:       defaultBufferSize,
		perm:             0o644,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}
