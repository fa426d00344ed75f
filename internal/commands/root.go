package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/datashift/internal/config"
	"github.com/idelchi/datashift/internal/logic"
)

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("DATASHIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "datashift [flags] command [flags]",
		Short: "Reversible file obfuscation utility",
		Long: `Shifts every byte of a file by a random per-file value and stores the original
name and shift value in a small header, so the file can be restored later.

This is obfuscation, not encryption.

The original verb form is also accepted:

` + legacyUsage,
		Version:      version,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
	}

	root.CompletionOptions.DisableDefaultCmd = true

	// The legacy verbs look like flags, so both entry points parse their own arguments.
	root.DisableFlagParsing = true
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runLegacy(cmd, cfg, version, args)
	}

	legacy := &cobra.Command{
		Use:                legacyCommand,
		Hidden:             true,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE:               root.RunE,
	}

	flags := root.PersistentFlags()
	flags.StringP("dir", "C", ".", "Destination directory, created if missing")
	flags.BoolP("force", "f", false, "Overwrite existing destination files")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")
	flags.Bool("stats", false, "Print a summary after processing")
	flags.Bool("delete", false, "Delete the input file after it was processed successfully")
	flags.Bool("preserve-timestamps", false, "Copy the input modification time to the output")
	flags.Bool("fail-fast", false, "Stop at the first file that fails mid-stream")

	root.AddCommand(NewShiftCommand(v, cfg), NewRestoreCommand(v, cfg), legacy)

	return root
}

// Execute runs root with args, sending the legacy verb form straight to the
// legacy handler so a destination directory named like a subcommand is not
// mistaken for one.
func Execute(ctx context.Context, root *cobra.Command, args []string) error {
	if IsLegacy(args) {
		args = append([]string{legacyCommand}, args...)
	}

	// cobra falls back to os.Args for a nil slice.
	root.SetArgs(append([]string{}, args...))

	return root.ExecuteContext(ctx)
}

// runLegacy handles "datashift [dir] --verb file...". Usage problems print the
// usage text and succeed, and skipped inputs do not affect the exit status.
func runLegacy(cmd *cobra.Command, cfg *config.Config, version string, args []string) error {
	switch {
	case slices.Equal(args, []string{"--help"}), slices.Equal(args, []string{"-h"}):
		return cmd.Help()
	case slices.Equal(args, []string{"--version"}):
		fmt.Fprintln(cmd.OutOrStdout(), version)

		return nil
	}

	inv, ok := ParseLegacy(args)
	if !ok {
		fmt.Fprint(cmd.OutOrStdout(), legacyUsage)

		return nil
	}

	cfg.Dir = inv.Dir
	cfg.Mode = inv.Mode
	cfg.Force = inv.Force
	cfg.Files = inv.Files
	cfg.IgnoreSkipped = true
	cfg.Quiet = true

	if err := cfg.Validate(); err != nil {
		return err
	}

	return logic.Run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
}
