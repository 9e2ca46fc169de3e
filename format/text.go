package format

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dhamidi/keycalc/script"
)

// TextEncoder writes the echoed expression and the display line, preceded
// by one line per key when steps are enabled.
type TextEncoder struct {
	w      io.Writer
	opts   options
	result *script.Result
}

func NewTextEncoder(w io.Writer, opts ...Option) *TextEncoder {
	return &TextEncoder{w: w, opts: buildOptions(opts)}
}

func (e *TextEncoder) Encode(r *script.Result) error {
	e.result = r
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

// MarshalText renders the last encoded result, or nothing before Encode.
func (e *TextEncoder) MarshalText() ([]byte, error) {
	r := e.result
	if r == nil {
		return nil, nil
	}
	var buf bytes.Buffer

	for _, k := range r.Rejected {
		fmt.Fprintf(&buf, "%s: rejected key %q\n", k.Pos, k.Text)
	}

	if e.opts.steps {
		tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
		for _, st := range r.Steps {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", st.Key.Pos, st.Key.Text, st.Frame.Expression, st.Frame.Result())
		}
		if err := tw.Flush(); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
	}

	if r.Final.Expression != "" {
		fmt.Fprintln(&buf, r.Final.Expression)
	}
	fmt.Fprintln(&buf, r.Final.Result())
	return buf.Bytes(), nil
}
