package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scaffold-labs/scaffold/internal/branding"
	"github.com/scaffold-labs/scaffold/internal/config"
	"github.com/scaffold-labs/scaffold/internal/home"
	"github.com/scaffold-labs/scaffold/internal/logging"
	"github.com/scaffold-labs/scaffold/internal/runtime"
	"github.com/scaffold-labs/scaffold/internal/updater"
)

const devVersion = "dev"

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	targetPath string
	logger     = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` resolves, caches and runs the helper package behind each command.
Packages are fetched from the npm registry into ~/` + branding.HomeDir() + `/dependencies, or used in
place when --target-path points at a local checkout.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		userHome, err := home.UserHome()
		if err != nil {
			return err
		}
		if err := config.LoadDotenv(filepath.Join(userHome, ".env")); err != nil {
			return err
		}
		config.Load()

		l, err := logging.FromCommand(cmd, os.Stderr)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)

		if targetPath != "" {
			if err := os.Setenv(branding.EnvVar("TARGET_PATH"), targetPath); err != nil {
				return err
			}
			logger.Debug("using local target path", "path", targetPath)
		}

		// Skip banners for commands that report versions themselves.
		if cmd.Name() == "version" || buildVersion == devVersion {
			return nil
		}
		u := updater.New(buildVersion, branding.PackageName(), newRegistryClient(), updater.WithLogger(logger))
		u.CheckAndPrintBanner(os.Stderr, config.Dir())
		return nil
	},
}

func init() {
	logging.RegisterFlags(rootCmd)
	rootCmd.PersistentFlags().StringVarP(&targetPath, "target-path", "t", "", "run the command package from this local directory instead of the registry")
}

// Execute runs the root command with build info injected via ldflags and
// returns the process exit code. A failing helper package's exit code is
// passed through unchanged.
func Execute(version, commit, date string) int {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var cpe *runtime.ChildProcessError
	if errors.As(err, &cpe) && cpe.Err == nil {
		// The package reported its own failure.
		logger.Debug("command package failed", "exit_code", cpe.Code)
	} else {
		PrintError(os.Stderr, err)
	}
	return runtime.ExitCode(err)
}
