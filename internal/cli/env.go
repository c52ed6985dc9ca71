package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/datastore/internal/config"
	"github.com/roach88/datastore/internal/service"
	"github.com/roach88/datastore/internal/session"
	"github.com/roach88/datastore/internal/store"
)

// resolveConfig loads the config file, if any, and applies flag overrides.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if opts.Driver != "" {
		cfg.Database.Driver = opts.Driver
	}
	if opts.Database != "" {
		cfg.Database.DSN = opts.Database
	}
	if opts.Role != "" {
		cfg.Database.Role = opts.Role
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// openService opens the configured store and wraps it in an EventService.
// The caller closes the returned store.
func openService(ctx context.Context, opts *RootOptions, cmd *cobra.Command, f *OutputFormatter) (*service.EventService, *store.Store, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, nil, fail(f, ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	logger, err := cfg.Logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, fail(f, ExitCommandError, ErrCodeConfig, "failed to configure logging", err)
	}

	f.VerboseLog("Opening %s database %s", cfg.Database.Driver, cfg.Database.DSN)
	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, session.WithLogger(logger))
	if err != nil {
		return nil, nil, fail(f, ExitCommandError, ErrCodeOpenFailed, "failed to open database", err)
	}

	svc := service.NewEventService(
		st.Sessions(),
		st.Events(store.WithEventsLogger(logger)),
		service.WithRole(cfg.Database.Role),
		service.WithLogger(logger),
	)
	return svc, st, nil
}
