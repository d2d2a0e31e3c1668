package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/desktop-packager/internal/config"
	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/logger"
	"github.com/oshokin/desktop-packager/internal/platform"
	"github.com/oshokin/desktop-packager/internal/service/pipeline"
	"github.com/oshokin/desktop-packager/internal/version"
)

var (
	// settingsPath is the path to the settings YAML file.
	settingsPath string
	// flags holds the packaging flags.
	flags = &packageFlags{}
	// params are the validated inputs, filled in by PreRunE.
	params *build.Parameters
	// target is the platform detected by PreRunE.
	target build.Platform

	// rootCmd packages a wheel into a native installer.
	rootCmd = &cobra.Command{
		Use:   "desktop-packager [flags] <wheel>",
		Short: "Package a Python wheel as a standalone desktop installer.",
		Long: `Freeze a Python wheel into a standalone application with PyInstaller and
wrap it into a native installer with CPack.

On Windows an MSI is built with the WIX generator, on macOS a DMG with the
DragNDrop generator. The wheel and its requirements are installed into a
package environment inside the build path, which is reused by later runs
unless --force-rebuild is given. The installer is copied into the dist
folder next to a YAML manifest holding its SHA-512 checksum.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadOptional(settingsPath)
			if err != nil {
				return err
			}

			flags.applySettings(cmd.Flags(), settings)

			if err = configureLogging(flags.logLevel); err != nil {
				return err
			}

			target, err = platform.Detect(runtime.GOOS)
			if err != nil {
				return err
			}

			params, err = flags.parameters(args[0], target)

			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			result, err := pipeline.Run(ctx, &pipeline.Options{
				Params:   params,
				Platform: target,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Created", result.Published)

			return err
		},
	}
)

// Execute runs the desktop-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error(context.Background(), err)
		os.Exit(1)
	}
}

// configureLogging applies the requested log level.
func configureLogging(level string) error {
	parsed, ok := logger.ParseLogLevel(level)
	if !ok {
		return config.Invalidf("unknown log level %q", level)
	}

	logger.SetLevel(parsed)

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "settings", "c", config.DefaultConfigFilename, "path to settings file")

	flags.register(rootCmd.Flags())

	rootCmd.AddCommand(initCmd)
}
