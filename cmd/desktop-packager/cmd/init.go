package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/desktop-packager/internal/config"
)

var (
	// overwrite allows init to replace an existing settings file.
	overwrite bool

	// initCmd writes a settings file holding the defaults.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the default values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeDefaultSettings(cmd, settingsPath, overwrite)
		},
	}
)

// writeDefaultSettings saves config.Default() into path.
func writeDefaultSettings(cmd *cobra.Command, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return config.Invalidf("'%s' already exists, use --force to overwrite it", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := config.Save(path, config.Default()); err != nil {
		return err
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), "Created", path)

	return err
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initCmd.Flags().BoolVar(&overwrite, "force", false, "overwrite an existing settings file")
}
