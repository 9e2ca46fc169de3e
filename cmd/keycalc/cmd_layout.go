package main

import (
	"fmt"
	"strings"

	"github.com/dhamidi/keycalc/keypad"
	"github.com/spf13/cobra"
)

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print the keypad layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), renderLayout(keypad.DefaultLayout()))
			return nil
		},
	}
}

func renderLayout(l keypad.Layout) string {
	var b strings.Builder
	rows := l.Rows(3)
	for i, row := range rows {
		for _, k := range row {
			b.WriteString(button(k))
		}
		if i < len(l.Right) {
			b.WriteString("  ")
			b.WriteString(button(l.Right[i]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func button(k keypad.Key) string {
	if k.Highlight {
		return fmt.Sprintf("(%3s)", k.Label)
	}
	return fmt.Sprintf("[%3s]", k.Label)
}
