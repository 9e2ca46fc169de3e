// Package format renders keystroke script results.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/keycalc/script"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(r *script.Result) error
}

type options struct {
	steps bool
}

type Option func(*options)

// WithSteps includes the frame after every key, not only the final one.
func WithSteps() Option {
	return func(o *options) {
		o.steps = true
	}
}

// New returns the encoder registered under name ("text" or "json").
func New(name string, w io.Writer, opts ...Option) (Encoder, error) {
	switch name {
	case "text":
		return NewTextEncoder(w, opts...), nil
	case "json":
		return NewJSONEncoder(w, opts...), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", name)
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
