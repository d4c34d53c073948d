package cli

import (
	"github.com/spf13/cobra"

	"github.com/scaffold-labs/scaffold/internal/dispatch"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite a non-empty target directory")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [projectName]",
	Short: "Create a new project from a template",
	Long: `Create a new project from a template.

The work is done by the init command package, which is installed from the
registry on first use and updated to its latest release on later runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: dispatchCommand(dispatch.CommandInit),
}
