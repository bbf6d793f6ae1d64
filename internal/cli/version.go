package cli

import (
	"fmt"

	"github.com/aryankumar/fanout/pkg/version"
	"github.com/spf13/cobra"
)

// newVersionCmd creates the version command
func newVersionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display detailed version information for the Fanout CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd, a)
		},
	}

	return cmd
}

func runVersion(cmd *cobra.Command, a *app) error {
	info := version.Get()
	w := cmd.OutOrStdout()

	// Without an explicit -o the human-readable block is printed
	if !cmd.Flags().Changed("output") {
		_, err := fmt.Fprintln(w, info.String())
		return err
	}

	f, err := a.formatter(false)
	if err != nil {
		return err
	}
	return f.Format(w, info)
}
