package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/anchor/internal/errors"
)

func codesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes [code]",
		Short: "List error codes or explain one",
		Long: `List every error code logged by the engine and reported by the CLI,
or print the full explanation of one code.

Examples:
  anchor codes
  anchor codes A003`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			if len(args) == 1 {
				tmpl, ok := errors.GetTemplate(args[0])
				if !ok {
					return errors.New("A302").
						WithSubject("code %q", args[0]).
						WithSuggestion("Run 'anchor codes' to list known codes")
				}
				fmt.Fprintf(w, "%s  %s (%s)\n\n", args[0], tmpl.Message, tmpl.Category)
				fmt.Fprintln(w, tmpl.Detail)
				return nil
			}

			for _, code := range errors.GetAllCodes() {
				tmpl, _ := errors.GetTemplate(code)
				fmt.Fprintf(w, "  %s  %-8s %s\n", code, tmpl.Category, tmpl.Message)
			}
			return nil
		},
	}

	return cmd
}
