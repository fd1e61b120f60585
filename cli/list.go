package cli

import "github.com/spf13/cobra"

func (a *App) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List report templates and attribute values from config",
		Args:  cobra.NoArgs,
		RunE:  a.wrap(a.runList),
	}
}
