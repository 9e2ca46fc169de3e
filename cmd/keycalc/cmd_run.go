package main

import (
	"fmt"
	"io"

	"github.com/dhamidi/keycalc/script"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var outputFormat string
	var steps bool

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run a keystroke script (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScript(cmd, args[0])
			if err != nil {
				return err
			}
			return encodeResult(cmd, s.Run(), outputFormat, steps)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json)")
	cmd.Flags().BoolVar(&steps, "steps", false, "print the screen after every key")

	return cmd
}

func loadScript(cmd *cobra.Command, path string) (*script.Script, error) {
	if path != "-" {
		return script.Load(path)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	s := script.Parse(data)
	s.Name = "stdin"
	if len(s.Keys) == 0 {
		return nil, fmt.Errorf("stdin: %w", script.ErrEmpty)
	}
	return s, nil
}
