package cli

import (
	"fmt"

	"github.com/ralt/coprctl/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var ensureVerbs = map[models.State]string{
	models.StateEnabled:  "enable",
	models.StateDisabled: "disable",
	models.StateRemoved:  "remove",
}

// NewEnsureCmd creates the enable, disable or remove command
func NewEnsureCmd(opts *globalOptions, state models.State) *cobra.Command {
	verb := ensureVerbs[state]
	var failOnChange bool

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <owner/project>...", verb),
		Short: fmt.Sprintf("Ensure COPR repositories are %s", state),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.platform()
			if err != nil {
				return err
			}

			entries := make([]resource, 0, len(args))
			for _, id := range args {
				entries = append(entries, resource{ID: id, Ensure: state})
			}

			logrus.Debugf("Target platform: %s", p)
			return runApply(cmd.Context(), opts.reconciler(models.Settings{}), p, entries, failOnChange)
		},
	}

	cmd.Flags().BoolVar(&failOnChange, "fail-on-change", false, "Exit with status 2 if any repository had to be changed")

	return cmd
}
