package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhamidi/keycalc/script"
	"github.com/dhamidi/keycalc/watch"
	"github.com/gosuri/uilive"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var poll bool
	var interval time.Duration
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-run a keystroke script whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("watch: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			live := uilive.New()
			live.Out = cmd.OutOrStdout()
			out := termenv.NewOutput(cmd.OutOrStdout())

			render := func(p string) {
				data, err := os.ReadFile(p)
				if err != nil {
					fmt.Fprintf(live, "%s: %v\n", p, err)
				} else {
					s := script.Parse(data)
					s.Name = p
					writeResult(live, out, s.Run())
				}
				live.Flush()
			}
			render(path)

			opts := []watch.Option{
				watch.WithDebounce(debounce),
				watch.WithPollInterval(interval),
			}
			if poll {
				opts = append(opts, watch.WithPolling())
			}
			return watch.New(path, render, opts...).Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&poll, "poll", false, "poll for changes instead of using file system events")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "poll interval")
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "wait this long for changes to settle")

	return cmd
}

func writeResult(w *uilive.Writer, out *termenv.Output, r *script.Result) {
	fmt.Fprintln(w, out.String(r.Name).Faint())
	for _, k := range r.Rejected {
		fmt.Fprintln(w, out.String(fmt.Sprintf("%s: rejected key %q", k.Pos, k.Text)).Foreground(out.Color("1")))
	}
	fmt.Fprintln(w, r.Final.Expression)
	fmt.Fprintln(w, out.String(r.Final.Result()).Bold())
}
