package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/keycalc/calc"
	"github.com/dhamidi/keycalc/keypad"
	"github.com/dhamidi/keycalc/script"
	"github.com/dhamidi/keycalc/term"
	"github.com/gosuri/uilive"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Use the terminal as a calculator keypad",
		Long: `Reads keys from the terminal and updates the screen after every key.

Digits, . + - * / and % are typed as is. Enter or = evaluates, Backspace
deletes, Escape, Delete or c clears and PageDown or n toggles the sign.
Press q or Ctrl-C to quit.

When stdin is not a terminal every input line is read as keystroke script
fields and the result is printed after each line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f, ok := cmd.InOrStdin().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
				return runRawKeys(cmd, f)
			}
			return runLineKeys(cmd, cmd.InOrStdin())
		},
	}
}

func runRawKeys(cmd *cobra.Command, f *os.File) error {
	restore, err := term.Raw(int(f.Fd()))
	if err != nil {
		return err
	}
	defer restore()

	c := calc.New()
	live := uilive.New()
	live.Out = cmd.OutOrStdout()
	out := termenv.NewOutput(cmd.OutOrStdout())

	// raw mode disables output post-processing, so lines end in \r\n
	draw := func(frame calc.Frame, msg string) {
		fmt.Fprintf(live, "%s\r\n%s\r\n", frame.Expression, out.String(frame.Result()).Bold())
		if msg != "" {
			fmt.Fprintf(live, "%s\r\n", out.String(msg).Faint())
		}
		live.Flush()
	}
	draw(c.Frame(), "")

	dec := term.NewDecoder(f)
	for {
		key, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		if key == term.KeyQuit {
			return nil
		}

		tok, ok := keypad.Lookup(key)
		if !ok {
			draw(c.Frame(), fmt.Sprintf("rejected key %q", key))
			continue
		}
		draw(c.Process(tok), "")
	}
}

func runLineKeys(cmd *cobra.Command, in io.Reader) error {
	c := calc.New()
	w := cmd.OutOrStdout()
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		r := script.Parse(sc.Bytes()).RunOn(c)
		for _, k := range r.Rejected {
			fmt.Fprintf(cmd.ErrOrStderr(), "rejected key %q\n", k.Text)
		}
		fmt.Fprintln(w, r.Final.Result())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
