package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/datashift/internal/config"
	"github.com/idelchi/datashift/internal/logic"
)

// preRun returns a PreRunE handler that merges flags and environment into cfg,
// records the mode and positional files, and validates the result.
func preRun(v *viper.Viper, cfg *config.Config, mode string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}

		if err := v.Unmarshal(cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}

		cfg.Mode = mode
		cfg.Files = args

		return cfg.Validate()
	}
}

// run executes the configured operation with the command's context and output streams.
func run(cfg *config.Config) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return logic.Run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
}

// NewShiftCommand creates a new cobra command for the shift subcommand.
func NewShiftCommand(v *viper.Viper, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shift [flags] files...",
		Aliases: []string{"sh"},
		Short:   "Obfuscate files into <name>.shift",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: preRun(v, cfg, "shift"),
		RunE:    run(cfg),
	}

	cmd.Flags().Uint64("seed", 0, "Seed for reproducible shift values (0 draws from crypto/rand)")

	return cmd
}

// NewRestoreCommand creates a new cobra command for the restore subcommand.
func NewRestoreCommand(v *viper.Viper, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "restore [flags] files...",
		Aliases: []string{"rs"},
		Short:   "Recover original files from .shift files",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: preRun(v, cfg, "restore"),
		RunE:    run(cfg),
	}
}
