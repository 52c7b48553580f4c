package main

import (
	"context"
	"fmt"

	"ideaboard/infrastructure/config"
	"ideaboard/infrastructure/di"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// quietLevel is used by one-shot commands unless --log-level is given
const quietLevel = "warn"

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "ideaboard",
		Short:         "A canvas of ideas you can expand",
		Long:          `ideaboard keeps a workspace of short idea nodes on a 2D canvas, saves it after every change and can ask an assistant service to expand an idea into a related one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("backend", "", "storage backend: memory, file, redis, sqlite, dynamodb")
	flags.String("data-dir", "", "directory for the file backend")
	flags.String("expansion-url", "", "base URL of the expansion service")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(
		newServeCmd(v),
		newAddCmd(v),
		newListCmd(v),
		newRemoveCmd(v),
		newMoveCmd(v),
		newEditCmd(v),
		newExpandCmd(v),
		newExportCmd(v),
		newImportCmd(v),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig reads the environment and config file, then applies any flags
// the user set explicitly.
func loadConfig(v *viper.Viper, oneShot bool) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	backend, dataDir := v.GetString("backend"), v.GetString("data-dir")
	expansionURL, logLevel := v.GetString("expansion-url"), v.GetString("log-level")
	setBackend, setDataDir := v.IsSet("backend"), v.IsSet("data-dir")
	setExpansionURL, setLogLevel := v.IsSet("expansion-url"), v.IsSet("log-level")

	// Flags are registered as overrides so a config file reload keeps them
	cfg.Override(func(c *config.Config) {
		if setBackend {
			c.StorageBackend = backend
		}
		if setDataDir {
			c.DataDir = dataDir
		}
		if setExpansionURL {
			c.ExpansionURL = expansionURL
		}
		switch {
		case setLogLevel:
			c.LogLevel = logLevel
		case oneShot:
			c.LogLevel = quietLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withContainer wires the application for a one-shot command and releases
// it afterwards.
func withContainer(ctx context.Context, v *viper.Viper, fn func(*di.Container) error) error {
	cfg, err := loadConfig(v, true)
	if err != nil {
		return err
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cleanup()
	defer func() { _ = container.Logger.Sync() }()

	return fn(container)
}
