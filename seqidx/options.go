package seqidx

import (
	"github.com/datatrails/go-datatrails-common/logger"
)

// BuilderOptions carries the configuration a Builder accepts.
type BuilderOptions struct {
	Log      logger.Logger
	Validate bool
}

// LoadOptions carries the configuration Load accepts.
type LoadOptions struct {
	Log logger.Logger
}

// Option is a generic option type. Implementations type assert to their
// options target record and if that fails the expectation is they ignore the
// option.
type Option func(any)

// WithLogger attaches a logger to the builder or to a loaded index. Without
// one, construction phases and loop diagnostics are silent.
func WithLogger(log logger.Logger) Option {
	return func(opts any) {
		switch o := opts.(type) {
		case *BuilderOptions:
			o.Log = log
		case *LoadOptions:
			o.Log = log
		}
	}
}

// WithValidation makes Build replay the source records against the finished
// structures before returning: sequences are reconstructed and compared,
// every edge is walked through both adjacency tables, and every path step is
// round-tripped through the positional structures.
func WithValidation() Option {
	return func(opts any) {
		if o, ok := opts.(*BuilderOptions); ok {
			o.Validate = true
		}
	}
}
