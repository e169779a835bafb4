package cli

import (
	"github.com/ralt/coprctl/internal/copr"
	"github.com/ralt/coprctl/internal/models"
	"github.com/ralt/coprctl/internal/platform"
	"github.com/ralt/coprctl/internal/scanner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	settings  models.Settings
	osRelease string
	osFamily  string
	osMajor   int
}

// platform returns the target platform from the override flags or os-release
func (o *globalOptions) platform() (models.Platform, error) {
	return platform.Resolve(o.osFamily, o.osMajor, o.osRelease)
}

// reconciler builds a reconciler from the flags, with fallback for unset fields
func (o *globalOptions) reconciler(fallback models.Settings) *copr.Reconciler {
	s := o.settings
	if s.ReposDir == "" {
		s.ReposDir = fallback.ReposDir
	}
	if s.Hub == "" {
		s.Hub = fallback.Hub
	}
	if s.DownloadURL == "" {
		s.DownloadURL = fallback.DownloadURL
	}
	return copr.NewReconciler(s)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "coprctl",
		Short: "Converge COPR repository definitions on RPM-based hosts",
		Long: `Coprctl manages COPR repository files in yum.repos.d. Each repository
is driven to one of three states and only touched when it differs:

  - enabled   repository file present with enabled=1
  - disabled  repository file present with enabled=0 (removed on EL6/EL7)
  - removed   repository file absent`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&opts.settings.ReposDir, "repos-dir", "", "Repository definition directory (default "+models.DefaultReposDir+")")
	flags.StringVar(&opts.settings.Hub, "hub", "", "COPR hub hostname (default "+models.DefaultHub+")")
	flags.StringVar(&opts.settings.DownloadURL, "download-url", "", "COPR download base URL (default https://download.<hub>)")
	flags.StringVar(&opts.osRelease, "os-release", platform.DefaultOSReleasePath, "os-release file used for platform detection")
	flags.StringVar(&opts.osFamily, "os-family", "", "Override detected OS family (fedora, rhel)")
	flags.IntVar(&opts.osMajor, "os-major", 0, "Override detected OS major version (with --os-family)")

	// Add subcommands
	rootCmd.AddCommand(NewEnsureCmd(opts, models.StateEnabled))
	rootCmd.AddCommand(NewEnsureCmd(opts, models.StateDisabled))
	rootCmd.AddCommand(NewEnsureCmd(opts, models.StateRemoved))
	rootCmd.AddCommand(NewApplyCmd(opts))
	rootCmd.AddCommand(NewListCmd(opts, scanner.NewFileSystemScanner()))

	return rootCmd
}
