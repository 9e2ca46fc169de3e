// Package keypad maps key names from keyboards, buttons and scripts to
// calculator tokens, and describes the on-screen keypad.
package keypad

import (
	"sort"

	"github.com/dhamidi/keycalc/calc"
)

// Named keys. Single characters (digits, '.', operators) are their own name.
const (
	KeyEnter      = "Enter"
	KeyEquals     = "="
	KeyBackspace  = "Backspace"
	KeyBack       = "<"
	KeyClear      = "C"
	KeyEscape     = "Escape"
	KeyDelete     = "Delete"
	KeyToggleSign = "+/-"
	KeyPageDown   = "PageDown"
)

var named = map[string]calc.Token{
	KeyEnter:      calc.EqualsToken,
	KeyEquals:     calc.EqualsToken,
	KeyBackspace:  calc.BackspaceToken,
	KeyBack:       calc.BackspaceToken,
	KeyClear:      calc.ClearToken,
	KeyEscape:     calc.ClearToken,
	KeyDelete:     calc.ClearToken,
	KeyToggleSign: calc.ToggleSignToken,
	KeyPageDown:   calc.ToggleSignToken,
}

// Lookup validates a key and returns its token. Only exact key names are
// accepted.
func Lookup(key string) (calc.Token, bool) {
	if tok, ok := named[key]; ok {
		return tok, true
	}
	if len(key) != 1 {
		return calc.Token{}, false
	}
	tok, err := calc.ParseToken(key)
	if err != nil {
		return calc.Token{}, false
	}
	return tok, true
}

// IsNamed reports whether key is a multi-character key name such as
// "Enter" or "+/-".
func IsNamed(key string) bool {
	_, ok := named[key]
	return ok && len(key) > 1
}

// Names returns every accepted key name, sorted.
func Names() []string {
	names := make([]string, 0, len(named)+15)
	for name := range named {
		names = append(names, name)
	}
	for _, r := range "0123456789./*-+%" {
		names = append(names, string(r))
	}
	sort.Strings(names)
	return names
}

// Key is one keypad button.
type Key struct {
	Label     string
	Highlight bool
}

// Layout is the on-screen keypad: operators on the right, digits and
// commands on the left, three buttons per row.
type Layout struct {
	Left  []Key
	Right []Key
}

var (
	leftLabels  = []string{KeyClear, KeyBack, KeyToggleSign, "7", "8", "9", "4", "5", "6", "3", "2", "1", "%", "0", "."}
	rightLabels = []string{"/", "*", "-", "+", KeyEquals}
)

func DefaultLayout() Layout {
	return Layout{
		Left:  keys(leftLabels),
		Right: keys(rightLabels),
	}
}

func keys(labels []string) []Key {
	out := make([]Key, len(labels))
	for i, label := range labels {
		out[i] = Key{
			Label:     label,
			Highlight: label == KeyEquals || label == KeyClear,
		}
	}
	return out
}

// Rows splits the left column into rows of n buttons.
func (l Layout) Rows(n int) [][]Key {
	if n <= 0 {
		return nil
	}
	var rows [][]Key
	for i := 0; i < len(l.Left); i += n {
		end := min(i+n, len(l.Left))
		rows = append(rows, l.Left[i:end])
	}
	return rows
}
