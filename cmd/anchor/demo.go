package main

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/vango-dev/anchor/internal/demo"
	"github.com/vango-dev/anchor/pkg/anchor"
	"github.com/vango-dev/anchor/pkg/observe"
)

func demoCmd() *cobra.Command {
	var (
		colors  []string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the nested subscription walkthrough",
		Long: `Run a scripted session against a small node tree.

A div follows the color container. Every color handler invocation
subscribes to the background synchronously and again from a deferred
continuation. The walkthrough prints the node and the number of
background subscriptions after each write, then resumes the deferred
continuations to show that superseded ones are refused.

Examples:
  anchor demo
  anchor demo --colors=blue,green -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout(), colors, cliLogger(verbose))
		},
	}

	cmd.Flags().StringSliceVar(&colors, "colors", []string{"blue", "green", "yellow", "red"}, "Colors to write in order")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity")

	return cmd
}

func runDemo(w io.Writer, colors []string, logger *slog.Logger) error {
	e := anchor.NewEngine(
		anchor.WithLogger(logger),
		anchor.WithObserver(observe.Logger(logger)),
	)
	app := demo.NewApp(e, "red", "white")
	root := anchor.NewContext()

	div := app.Example(root)

	fmt.Fprintln(w)
	info(w, "%-8s %-28s %s", "WRITE", "NODE", "BACKGROUND SUBSCRIPTIONS")
	info(w, "%-8s %-28s %d", "(start)", div, app.Background.Len())
	for _, color := range colors {
		app.Color.Set(color)
		info(w, "%-8s %-28s %d", color, div, app.Background.Len())
	}
	fmt.Fprintln(w)

	pending := app.Pending()
	res := app.Resume()
	info(w, "Resumed %d continuations: %d accepted, %d refused", pending, res.Accepted, res.Rejected)

	app.Background.Set("navy")
	info(w, "Background label: %s", app.Label())

	root.Clear()
	info(w, "After clearing the root: %d color, %d background subscriptions",
		app.Color.Len(), app.Background.Len())
	fmt.Fprintln(w)

	runtime.KeepAlive(div)

	if app.Color.Len() != 0 || app.Background.Len() != 0 {
		warn(w, "subscriptions survived the root context")
		return fmt.Errorf("demo: %d subscriptions left", app.Color.Len()+app.Background.Len())
	}
	success(w, "All subscriptions released")
	return nil
}
