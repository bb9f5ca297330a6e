package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/anchor/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┌┐┌┌─┐┬ ┬┌─┐┬─┐
  ╠═╣││││  ├─┤│ │├┬┘
  ╩ ╩┘└┘└─┘┴ ┴└─┘┴└─
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "anchor",
		Short: "Reactive containers whose handlers live as long as their captures",
		Long: `Anchor is a reactive value container for Go.

Handlers registered on a container are anchored by the objects they
capture and by the scope that registered them:

  • Handlers stop when a capture is garbage collected
  • Nested registrations are released before every re-invocation
  • Late registrations into finished scopes are refused
  • Derived containers follow their source until dropped`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		demoCmd(),
		soakCmd(),
		serveCmd(),
		codesCmd(),
		versionCmd(),
	)

	return rootCmd
}

// printBanner prints the Anchor ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// cliLogger returns the logger for commands that run an engine in process.
func cliLogger(verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
