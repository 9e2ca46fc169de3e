// Package script reads keystroke scripts: plain text files listing the keys
// pressed on a calculator, one session per file.
//
//	# 15% off
//	200 - 15 %  =
//	+/- Enter
//
// Fields are separated by white space and '#' starts a comment. A field that
// names a key ("Enter", "+/-", "Backspace") is one key press; any other field
// is split into one key per character, so "12+3=" is five key presses.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/keycalc/calc"
	"github.com/dhamidi/keycalc/keypad"
)

var ErrEmpty = errors.New("script has no keys")

// Position is a 1-based line and byte column.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

type Key struct {
	Text string
	Pos  Position
}

// End is the position just past the key.
func (k Key) End() Position {
	return Position{Line: k.Pos.Line, Column: k.Pos.Column + len(k.Text)}
}

func (k Key) Contains(p Position) bool {
	return !p.Before(k.Pos) && p.Before(k.End())
}

type Script struct {
	Name string
	Keys []Key
}

// Parse splits src into keys. It never fails; unknown keys are reported
// by Run.
func Parse(src []byte) *Script {
	s := &Script{}
	for i, raw := range bytes.Split(src, []byte("\n")) {
		text := strings.TrimSuffix(string(raw), "\r")
		if j := strings.IndexByte(text, '#'); j >= 0 {
			text = text[:j]
		}
		s.Keys = append(s.Keys, splitLine(text, i+1)...)
	}
	return s
}

func splitLine(text string, line int) []Key {
	var keys []Key
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		start := i
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		keys = append(keys, splitField(text[start:i], Position{Line: line, Column: start + 1})...)
	}
	return keys
}

func splitField(field string, pos Position) []Key {
	if keypad.IsNamed(field) {
		return []Key{{Text: field, Pos: pos}}
	}
	keys := make([]Key, 0, len(field))
	for i, r := range field {
		keys = append(keys, Key{
			Text: string(r),
			Pos:  Position{Line: pos.Line, Column: pos.Column + i},
		})
	}
	return keys
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s := Parse(data)
	s.Name = path
	if len(s.Keys) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return s, nil
}

// FromArgs builds a script from command line arguments, one field each.
func FromArgs(args []string) *Script {
	s := &Script{Name: "args"}
	col := 1
	for _, arg := range args {
		s.Keys = append(s.Keys, splitField(arg, Position{Line: 1, Column: col})...)
		col += len(arg) + 1
	}
	return s
}

type Step struct {
	Key   Key
	Frame calc.Frame
}

type Result struct {
	Name     string
	Steps    []Step
	Rejected []Key
	Final    calc.Frame
}

// Run presses every key on a fresh calculator.
func (s *Script) Run() *Result {
	return s.RunOn(calc.New())
}

// RunOn presses every key on c, continuing its current state.
func (s *Script) RunOn(c *calc.Calculator) *Result {
	r := &Result{Name: s.Name}
	for _, k := range s.Keys {
		tok, ok := keypad.Lookup(k.Text)
		if !ok {
			r.Rejected = append(r.Rejected, k)
			continue
		}
		r.Steps = append(r.Steps, Step{Key: k, Frame: c.Process(tok)})
	}
	r.Final = c.Frame()
	return r
}

// At returns the last step whose key starts at or before p.
func (r *Result) At(p Position) (Step, bool) {
	var found Step
	ok := false
	for _, st := range r.Steps {
		if p.Before(st.Key.Pos) {
			break
		}
		found, ok = st, true
	}
	return found, ok
}
