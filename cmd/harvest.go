package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bkassahun/course-harvester/internal/adapter"
	"github.com/bkassahun/course-harvester/internal/config"
	"github.com/bkassahun/course-harvester/internal/fetch"
	"github.com/bkassahun/course-harvester/internal/logging"
	"github.com/bkassahun/course-harvester/internal/render"
	"github.com/bkassahun/course-harvester/internal/runner"
	"github.com/bkassahun/course-harvester/internal/sink"
)

// runHarvest executes the selected run shape: listing, single-source, or
// all-sources.
func runHarvest(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.Load(flags.cfgFile)
	if err != nil {
		return err
	}
	if flags.outPath != "" {
		cfg.Scraper.OutputPath = flags.outPath
	}

	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Listing needs no fetch client and performs no network activity.
	if flags.listSites {
		registry, err := buildRegistry(cfg, adapter.Deps{Logger: logger})
		if err != nil {
			return err
		}
		printSites(cmd, registry)
		return nil
	}

	client := fetch.NewClient(fetch.Options{
		Timeout:           cfg.HTTP.Timeout(),
		MaxAttempts:       cfg.HTTP.MaxAttempts,
		BackoffMultiplier: secondsDuration(cfg.HTTP.BackoffMultiplier),
		BackoffMin:        secondsDuration(cfg.HTTP.BackoffMinSec),
		BackoffMax:        secondsDuration(cfg.HTTP.BackoffMaxSec),
		UserAgent:         cfg.HTTP.UserAgent,
		RotateUserAgent:   cfg.HTTP.RotateUserAgent,
		PerHostRPS:        cfg.HTTP.PerHostRPS,
		PerHostBurst:      cfg.HTTP.PerHostBurst,
	}, logger)

	renderer, cleanup, err := buildRenderer(cfg, client.UserAgent(), logger)
	if err != nil {
		return err
	}
	defer cleanup()

	registry, err := buildRegistry(cfg, adapter.Deps{
		Fetcher:         client,
		Renderer:        renderer,
		Logger:          logger,
		MaxLinksPerPage: cfg.Scraper.MaxLinksPerPage,
		DetailPageFetch: cfg.Scraper.DetailPageFetch,
	})
	if err != nil {
		return err
	}

	out, err := sink.NewCSVSink(cfg.Scraper.OutputPath, cfg.Scraper.RejectInvalidRow, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	controller := runner.New(registry, runner.Options{
		Concurrency: cfg.Scraper.Concurrency,
		GracePeriod: cfg.Scraper.GracePeriod(),
	}, logger)

	var result runner.Result
	if flags.siteKey != "" {
		result, err = controller.RunOne(ctx, flags.siteKey)
	} else {
		result, err = controller.RunAll(ctx)
	}
	if err != nil {
		return err
	}

	if err := out.Write(ctx, result.Records); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows -> %s\n", len(result.Records), cfg.Scraper.OutputPath)
	return nil
}

func buildRegistry(cfg config.Config, deps adapter.Deps) (*adapter.Registry, error) {
	overrides := make(map[string]adapter.Override, len(cfg.Sites))
	for key, site := range cfg.Sites {
		overrides[key] = adapter.Override{
			BaseURL: site.BaseURL,
			Enabled: site.Enabled,
		}
	}
	adapters, err := adapter.Defaults(deps, cfg.Headless.Settle(), overrides)
	if err != nil {
		return nil, fmt.Errorf("build adapters: %w", err)
	}
	registry, err := adapter.NewRegistry(adapters...)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	return registry, nil
}

// buildRenderer returns the configured rendering collaborator, or the
// disabled placeholder that fails JS-dependent adapters cleanly.
func buildRenderer(cfg config.Config, userAgent string, logger *zap.Logger) (render.Renderer, func(), error) {
	if !cfg.Headless.Enabled {
		return render.Disabled{}, func() {}, nil
	}
	renderer, err := render.NewChromedp(render.Config{
		MaxParallel: cfg.Headless.MaxParallel,
		UserAgent:   userAgent,
		NavTimeout:  cfg.Headless.NavTimeout(),
		NoSandbox:   cfg.Headless.ChromeNoSandbox,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init renderer: %w", err)
	}
	return renderer, renderer.Close, nil
}

func secondsDuration(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func printSites(cmd *cobra.Command, registry *adapter.Registry) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Available site keys:")
	for _, entry := range registry.List() {
		fmt.Fprintf(w, "  %-20s -> %s\n", entry.Key, entry.DisplayName)
	}
}
