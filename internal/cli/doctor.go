package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scaffold-labs/scaffold/internal/config"
	"github.com/scaffold-labs/scaffold/internal/doctor"
	"github.com/scaffold-labs/scaffold/internal/home"
)

var doctorFix bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt to repair problems")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the package store and Node.js toolchain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := home.ResolveLayout()
		if err != nil {
			return err
		}
		rep := doctor.Run(cmd.Context(), cmd.OutOrStdout(), layout, doctor.Options{
			Fix:     doctorFix,
			SkipNpm: !config.InstallDeps(),
		})
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d ok, %d problem(s), %d fixed\n", rep.OK, rep.Problems, rep.Fixed)
		if !rep.Healthy() {
			return errors.New("doctor found problems")
		}
		return nil
	},
}
