package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/ralt/coprctl/internal/models"
	"github.com/ralt/coprctl/internal/scanner"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd(opts *globalOptions, sc scanner.Scanner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List COPR repository files and their state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.reconciler(models.Settings{}).Settings().ReposDir

			repos, err := sc.Scan(cmd.Context(), dir)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "REPOSITORY\tSTATE\tNAMING\tFILE")
			for _, repo := range repos {
				id := repo.ID
				if id == "" {
					id = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, repo.State, repo.Naming, repo.Path)
			}
			return w.Flush()
		},
	}
}
