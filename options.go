package deform

import "log/slog"

// JobOption configures a JobGroup during BeginJobs.
// Use functional options to customize scheduling.
//
// Example:
//
//	// Default: jobs run on the shared pool
//	g := deform.BeginJobs(len(meshes))
//
//	// Run every job on the calling goroutine
//	g := deform.BeginJobs(len(meshes), deform.WithInline())
type JobOption func(*jobOptions)

// jobOptions holds optional configuration for a JobGroup.
type jobOptions struct {
	pool       *Pool
	ownPool    bool
	ownWorkers int
	inline     bool
	logger     *slog.Logger
}

// defaultJobOptions returns the default job options.
func defaultJobOptions() jobOptions {
	return jobOptions{
		pool:   nil, // shared pool, created on first use
		logger: nil, // package logger
	}
}

// WithPool runs the group's jobs on p. The pool outlives the group and is
// not closed by End.
func WithPool(p *Pool) JobOption {
	return func(o *jobOptions) {
		o.pool = p
	}
}

// WithWorkers gives the group its own pool of n workers, closed by End.
// n <= 0 means GOMAXPROCS.
func WithWorkers(n int) JobOption {
	return func(o *jobOptions) {
		o.ownPool = true
		o.ownWorkers = n
	}
}

// WithInline runs every job synchronously inside Submit.
func WithInline() JobOption {
	return func(o *jobOptions) {
		o.inline = true
	}
}

// WithLogger overrides the package logger for the group's diagnostics.
func WithLogger(l *slog.Logger) JobOption {
	return func(o *jobOptions) {
		o.logger = l
	}
}
