package shell

import "github.com/dbmesh/msql/logging"

// Option tweaks shell parameters.
type Option func(*options)

// WithLogFunc sets a custom logging callback for the shell's underlying
// pool. The default discards every message.
func WithLogFunc(log logging.Func) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithFormat sets the result-printing format: "tabular" (default) or
// "json".
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithMaxConns sets the pool's connection ceiling. The default is 4.
func WithMaxConns(n int) Option {
	return func(o *options) {
		o.maxConns = n
	}
}

type options struct {
	log      logging.Func
	format   string
	maxConns int
}

func defaultOptions() *options {
	return &options{
		log:      logging.Discard,
		format:   formatTabular,
		maxConns: 4,
	}
}

const (
	formatTabular = "tabular"
	formatJSON    = "json"
)
