package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand assembles the ztracectl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ztracectl",
		Short: "Exercise the ztrace client library from the command line",
	}
	root.AddCommand(newDemoCommand())
	root.AddCommand(newDecodeCommand())
	return root
}
