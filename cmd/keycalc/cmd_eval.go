package main

import (
	"fmt"

	"github.com/dhamidi/keycalc/format"
	"github.com/dhamidi/keycalc/script"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	var outputFormat string
	var steps bool

	cmd := &cobra.Command{
		Use:   "eval <keys>...",
		Short: "Press the given keys and print the result",
		Example: `  keycalc eval 5 + 3 + 2 =
  keycalc eval 200-10%
  keycalc eval -- 5 +/- Enter`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return encodeResult(cmd, script.FromArgs(args).Run(), outputFormat, steps)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json)")
	cmd.Flags().BoolVar(&steps, "steps", false, "print the screen after every key")

	return cmd
}

func encodeResult(cmd *cobra.Command, r *script.Result, outputFormat string, steps bool) error {
	var opts []format.Option
	if steps {
		opts = append(opts, format.WithSteps())
	}
	enc, err := format.New(outputFormat, cmd.OutOrStdout(), opts...)
	if err != nil {
		return err
	}
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
