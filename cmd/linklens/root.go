package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linklens.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linklens",
		Short: "Annotate and check the links of a web page",
		Long: `linklens classifies every link of a web page as a same-page anchor,
an internal link or an external link, checks whether the target is reachable,
and marks each link with colours and a tooltip. It can also show a preview
of the link target while the pointer rests on a link.

Highlighting and previews are two persisted settings, both off by default.
Use "linklens settings" to change them.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewPreviewCmd())
	cmd.AddCommand(NewSettingsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
