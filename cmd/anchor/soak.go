package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/anchor/internal/errors"
	"github.com/vango-dev/anchor/pkg/anchor"
)

func soakCmd() *cobra.Command {
	var (
		writes  int
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "soak",
		Short: "Check that nested subscriptions stay bounded",
		Long: `Write to a container repeatedly while its handler registers one
nested subscription per invocation, and check that the nested
subscription count never grows.

Exits with A301 if nested subscriptions accumulate.

Examples:
  anchor soak
  anchor soak --writes=100000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSoak(cmd.OutOrStdout(), writes, cliLogger(verbose))
		},
	}

	cmd.Flags().IntVarP(&writes, "writes", "n", 1000, "Number of writes")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity")

	return cmd
}

func runSoak(w io.Writer, writes int, logger *slog.Logger) error {
	if writes < 1 {
		return errors.New("A302").
			WithSubject("--writes=%d", writes).
			WithSuggestion("Use a positive number of writes")
	}

	e := anchor.NewEngine(anchor.WithLogger(logger))
	src := anchor.NewContainer(e, 0)
	nested := anchor.NewContainer(e, 0)
	root := anchor.NewContext()

	src.OnChange(func(_ []any, ctx *anchor.Context, _, _ int) {
		nested.OnChange(func([]any, *anchor.Context, int, int) {}, nil, ctx)
	}, nil, root)

	step := writes / 10
	if step == 0 {
		step = 1
	}

	peak := 0
	for i := 1; i <= writes; i++ {
		src.Set(i)
		n := nested.Len()
		peak = max(peak, n)
		if i%step == 0 || i == writes {
			info(w, "write %-8d nested subscriptions: %d", i, n)
		}
	}

	st := e.Stats()
	info(w, "registered %d, released by context %d", st.Registered, st.Removed[anchor.RemovedContext])

	if peak > 1 {
		return errors.New("A301").
			WithSubject("%d nested subscriptions after %d writes", peak, writes)
	}

	root.Dispose()
	if n := nested.Len(); n != 0 {
		return fmt.Errorf("soak: %d nested subscriptions survived disposal", n)
	}

	success(w, "Nested subscriptions stayed at %d across %d writes", peak, writes)
	return nil
}
