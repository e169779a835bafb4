package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ralt/coprctl/internal/copr"
	"github.com/ralt/coprctl/internal/manifest"
	"github.com/ralt/coprctl/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type resource = manifest.Entry

// NewApplyCmd creates the apply command
func NewApplyCmd(opts *globalOptions) *cobra.Command {
	var (
		manifestPath string
		failOnChange bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Converge every COPR repository declared in a manifest",
		Long: `Reads a TOML manifest of copr resources and reconciles each of them
in declaration order. Failed resources do not stop the run; their errors
are reported together at the end.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if manifestPath == "" {
				return &models.CoprError{
					Type: models.ErrInvalidConfig,
					Err:  fmt.Errorf("--file is required"),
				}
			}

			logrus.Infof("Loading manifest: %s", manifestPath)
			m, entries, err := manifest.LoadFile(manifestPath)
			if err != nil {
				return err
			}
			logrus.Debugf("Manifest settings: %+v", m.Settings)

			p, err := opts.platform()
			if err != nil {
				return err
			}

			return runApply(cmd.Context(), opts.reconciler(m.Settings), p, entries, failOnChange)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "file", "f", "", "Manifest file")
	cmd.Flags().BoolVar(&failOnChange, "fail-on-change", false, "Exit with status 2 if any repository had to be changed")

	return cmd
}

// runApply reconciles entries in order and summarizes the result
func runApply(ctx context.Context, r *copr.Reconciler, p models.Platform, entries []resource, failOnChange bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		errs    []error
		changed int
	)

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		c, err := r.Reconcile(e.ID, e.Ensure, p)
		if err != nil {
			logrus.WithField("repo", e.ID).Errorf("Failed to ensure %s: %v", e.Ensure, err)
			errs = append(errs, err)
			continue
		}

		if c {
			changed++
		} else {
			logrus.WithField("repo", e.ID).Infof("Already %s", copr.Effective(e.Ensure, p))
		}
	}

	logrus.Infof("Applied %d repositories on %s: %d changed, %d failed", len(entries), p, changed, len(errs))

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if failOnChange && changed > 0 {
		return &models.CoprError{
			Type: models.ErrChangesPending,
			Err:  fmt.Errorf("%d repositories changed", changed),
		}
	}

	return nil
}
