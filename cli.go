package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type runOptions struct {
	port  int
	debug bool
}

// newRootCmd builds the command tree. The root command tolerates the
// extension origin and the --parent-window flag browsers pass to
// native-messaging hosts.
func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:                "filepath-bookmark",
		Short:              "File path bookmarks with a browser file-dialog companion",
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args)
		},
	}
	cmd.PersistentFlags().IntVar(&opts.port, "port", 0, "Loopback port shared by all instances (default from settings)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Debug logging")

	cmd.AddCommand(newNotifyCmd(opts), newManifestCmd(), newVersionCmd())
	return cmd
}

func newNotifyCmd(opts *runOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Ask the running instance to show its window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, settings, cleanup := loadRunSettings(opts)
			defer cleanup()
			return NewHandoffClient(settings.Endpoint()).NotifyPrimary(cmd.Context())
		},
	}
}

func newManifestCmd() *cobra.Command {
	var origins []string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Print the native-messaging host manifest for this binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}
			if resolved, err := filepath.EvalSymlinks(exe); err == nil {
				exe = resolved
			}

			manifest, err := buildNativeManifest(exe, origins)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(manifest)
		},
	}
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "Allowed extension origin or ID (repeatable)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

// applyFlags returns settings with command-line overrides applied.
func (o *runOptions) applyFlags(settings Settings) Settings {
	if o.port > 0 && o.port <= 65535 {
		settings.Port = o.port
	}
	if o.debug {
		settings.LogLevel = "debug"
	}
	return settings
}

// loadRunSettings reads settings, applies flag overrides and sets up logging.
func loadRunSettings(opts *runOptions) (*SettingsService, Settings, func()) {
	service := NewSettingsService()
	settings := opts.applyFlags(service.GetSettings())
	return service, settings, setupLogging(settings.Level(), logDirectory())
}

func run(ctx context.Context, opts *runOptions, args []string) error {
	settingsService, settings, cleanup := loadRunSettings(opts)
	defer cleanup()

	instanceID := uuid.NewString()
	slog.Info("starting", "version", Version, "instance", instanceID, "args", args)

	guard := NewSingletonGuard(settings.Endpoint())
	role, err := guard.Acquire()
	if err != nil {
		return fmt.Errorf("acquire instance endpoint: %w", err)
	}

	if role == RoleSecondary {
		if err := NewHandoffClient(settings.Endpoint()).NotifyPrimary(ctx); err != nil {
			slog.Warn("failed to notify primary instance", "error", err)
		} else {
			slog.Info("handed off to primary instance")
		}
		return nil
	}
	defer guard.Close()

	return runPrimary(guard, settingsService, settings, instanceID)
}
