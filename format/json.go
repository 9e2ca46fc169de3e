package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/keycalc/script"
)

type JSONEncoder struct {
	w      io.Writer
	opts   options
	result *script.Result
}

func NewJSONEncoder(w io.Writer, opts ...Option) *JSONEncoder {
	return &JSONEncoder{w: w, opts: buildOptions(opts)}
}

func (e *JSONEncoder) Encode(r *script.Result) error {
	e.result = r
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

// MarshalText renders the last encoded result, or nothing before Encode.
func (e *JSONEncoder) MarshalText() ([]byte, error) {
	if e.result == nil {
		return nil, nil
	}
	return json.MarshalIndent(e.buildResultData(), "", "  ")
}

type jsonResult struct {
	Name       string     `json:"name,omitempty"`
	Result     string     `json:"result"`
	Display    string     `json:"display"`
	Expression string     `json:"expression"`
	Operand    string     `json:"operand"`
	Settled    bool       `json:"settled"`
	Steps      []jsonStep `json:"steps,omitempty"`
	Rejected   []jsonKey  `json:"rejected,omitempty"`
}

type jsonKey struct {
	Key    string `json:"key"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type jsonStep struct {
	jsonKey
	Display    string `json:"display"`
	Expression string `json:"expression"`
	Operand    string `json:"operand,omitempty"`
}

func (e *JSONEncoder) buildResultData() jsonResult {
	r := e.result
	data := jsonResult{
		Name:       r.Name,
		Result:     r.Final.Result(),
		Display:    r.Final.Display,
		Expression: r.Final.Expression,
		Operand:    r.Final.Operand,
		Settled:    r.Final.Settled,
	}
	if e.opts.steps {
		data.Steps = make([]jsonStep, len(r.Steps))
		for i, st := range r.Steps {
			data.Steps[i] = jsonStep{
				jsonKey:    keyData(st.Key),
				Display:    st.Frame.Result(),
				Expression: st.Frame.Expression,
				Operand:    st.Frame.Operand,
			}
		}
	}
	for _, k := range r.Rejected {
		data.Rejected = append(data.Rejected, keyData(k))
	}
	return data
}

func keyData(k script.Key) jsonKey {
	return jsonKey{Key: k.Text, Line: k.Pos.Line, Column: k.Pos.Column}
}
