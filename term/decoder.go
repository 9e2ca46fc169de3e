// Package term decodes raw terminal input into calculator key names.
package term

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"

	xterm "golang.org/x/term"
)

// KeyQuit is reported for ^C, ^D and q. It is not a calculator key.
const KeyQuit = "Quit"

var escBindings = map[string]string{
	"\x1b[3~": "Delete",
	"\x1b[6~": "PageDown",
	"\x1b[5~": "PageUp",
	"\x1b[A":  "Up",
	"\x1b[B":  "Down",
	"\x1b[C":  "Right",
	"\x1b[D":  "Left",
	"\x1b[H":  "Home",
	"\x1b[F":  "End",
	"\x1bOM":  "Enter", // keypad Enter in application mode
}

var controlKeys = map[byte]string{
	3:   KeyQuit, // ^C
	4:   KeyQuit, // ^D
	8:   "Backspace",
	10:  "Enter",
	13:  "Enter",
	127: "Backspace",
}

var letterKeys = map[byte]string{
	'c': "C",
	'q': KeyQuit,
	'Q': KeyQuit,
	'n': "+/-",
}

// Decoder splits a raw byte stream into key names.
type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next key name. Unknown escape sequences are returned
// verbatim so callers can reject them.
func (d *Decoder) Next() (string, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return "", err
	}

	if b == 0x1b {
		return d.escape()
	}
	if name, ok := controlKeys[b]; ok {
		return name, nil
	}
	if name, ok := letterKeys[b]; ok {
		return name, nil
	}
	if b < utf8.RuneSelf {
		return string(b), nil
	}

	if err := d.r.UnreadByte(); err != nil {
		return "", err
	}
	r, _, err := d.r.ReadRune()
	if err != nil {
		return "", err
	}
	return string(r), nil
}

// escape reads the rest of an escape sequence. A lone ESC, with nothing
// else already buffered, is the Escape key.
func (d *Decoder) escape() (string, error) {
	if d.r.Buffered() == 0 {
		return "Escape", nil
	}
	next, err := d.r.Peek(1)
	if err != nil || (next[0] != '[' && next[0] != 'O') {
		return "Escape", nil
	}

	seq := []byte{0x1b}
	intro, _ := d.r.ReadByte()
	seq = append(seq, intro)
	for d.r.Buffered() > 0 {
		c, err := d.r.ReadByte()
		if err != nil {
			break
		}
		seq = append(seq, c)
		// final byte of a CSI or SS3 sequence
		if c >= 0x40 && c <= 0x7e {
			break
		}
	}

	if name, ok := escBindings[string(seq)]; ok {
		return name, nil
	}
	return string(seq), nil
}

// Raw puts the terminal on fd into raw mode and returns a function that
// restores it.
func Raw(fd int) (func() error, error) {
	state, err := xterm.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enable raw mode: %w", err)
	}
	return func() error {
		if err := xterm.Restore(fd, state); err != nil {
			return fmt.Errorf("failed to restore terminal: %w", err)
		}
		return nil
	}, nil
}
