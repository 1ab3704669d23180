// Package main is the entrypoint for the awqat daemon CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yanosDev/awqat/internal/alarm"
	"github.com/yanosDev/awqat/internal/api"
	"github.com/yanosDev/awqat/internal/awqat"
	"github.com/yanosDev/awqat/internal/bootstrap"
	"github.com/yanosDev/awqat/internal/config"
	"github.com/yanosDev/awqat/internal/daily"
	"github.com/yanosDev/awqat/internal/db"
	"github.com/yanosDev/awqat/internal/jobs"
	"github.com/yanosDev/awqat/internal/location"
	"github.com/yanosDev/awqat/internal/metrics"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "awqatd",
		Short: "Awqat daemon - prayer time scheduling and sync",
		Long: `Awqatd keeps a local cache of daily prayer times for your city and
arms exact alarms for the enabled prayer events.

Run 'awqatd setup' to point it at a provider.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSetupCmd(),
		newConfigCmd(),
		newStatusCmd(),
		newSchedulesCmd(),
		newSyncCmd(),
		newStartCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Awqat Daemon %s\n", Version)
			fmt.Printf("  Commit:     %s\n", Commit)
			fmt.Printf("  Built:      %s\n", BuildDate)
			fmt.Printf("  Go version: %s\n", runtime.Version())
			fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newSetupCmd() *cobra.Command {
	var providerURL string
	var email string
	var password string
	var geocoderURL string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure the provider this daemon syncs from",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := url.Parse(providerURL)
			if err != nil {
				return fmt.Errorf("invalid provider URL: %w", err)
			}
			if parsed.Scheme != "http" && parsed.Scheme != "https" {
				return fmt.Errorf("provider URL must use http or https scheme")
			}

			cfg, err := config.LoadDefault()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			cfg.ProviderURL = strings.TrimSuffix(providerURL, "/")
			cfg.ProviderEmail = email
			cfg.ProviderPassword = password
			if geocoderURL != "" {
				cfg.GeocoderURL = strings.TrimSuffix(geocoderURL, "/")
			}

			if err := cfg.SaveDefault(); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			configPath, _ := config.DefaultConfigPath()
			fmt.Printf("Configuration saved to %s\n", configPath)
			fmt.Printf("Provider: %s\n", cfg.ProviderURL)
			fmt.Println("Setup complete. Run 'awqatd start' to launch the daemon.")
			return nil
		},
	}

	cmd.Flags().StringVar(&providerURL, "provider", "", "Provider base URL (required)")
	cmd.Flags().StringVar(&email, "email", "", "Provider account email")
	cmd.Flags().StringVar(&password, "password", "", "Provider account password")
	cmd.Flags().StringVar(&geocoderURL, "geocoder", "", "Reverse geocoder base URL")
	_ = cmd.MarkFlagRequired("provider")

	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage daemon configuration",
	}

	cmd.AddCommand(newConfigShowCmd(), newConfigSetCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefault()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			dataDir, _ := cfg.ResolveDataDir()
			fmt.Printf("Provider:         %s\n", valueOrUnset(cfg.ProviderURL))
			fmt.Printf("Provider email:   %s\n", valueOrUnset(cfg.ProviderEmail))
			fmt.Printf("Geocoder:         %s\n", valueOrUnset(cfg.GeocoderURL))
			fmt.Printf("Data directory:   %s\n", dataDir)
			fmt.Printf("Listen address:   %s\n", cfg.Listen())
			fmt.Printf("Notify webhook:   %s\n", valueOrUnset(cfg.NotifyWebhookURL))
			fmt.Printf("Location poll:    %s\n", cfg.PollInterval())
			return nil
		},
	}
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value. Supported keys:
  provider, email, password, geocoder, data-dir, listen, webhook, poll-interval`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefault()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			key, value := args[0], args[1]
			switch key {
			case "provider":
				cfg.ProviderURL = strings.TrimSuffix(value, "/")
			case "email":
				cfg.ProviderEmail = value
			case "password":
				cfg.ProviderPassword = value
			case "geocoder":
				cfg.GeocoderURL = strings.TrimSuffix(value, "/")
			case "data-dir":
				cfg.DataDir = value
			case "listen":
				cfg.ListenAddr = value
			case "webhook":
				cfg.NotifyWebhookURL = value
			case "poll-interval":
				d, err := time.ParseDuration(value)
				if err != nil {
					return fmt.Errorf("invalid duration %q: %w", value, err)
				}
				cfg.LocationPollInterval = d
			default:
				return fmt.Errorf("unknown config key %q", key)
			}

			if err := cfg.SaveDefault(); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Printf("Set %s\n", key)
			return nil
		},
	}
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the cached state of the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefault()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			lastLocation, err := store.LastLocation(ctx)
			if err != nil {
				return err
			}
			locations, err := store.CountLocations(ctx)
			if err != nil {
				return err
			}
			initialized, err := store.IsInitialized(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Configured:       %v\n", cfg.IsConfigured())
			fmt.Printf("Initialized:      %v\n", initialized)
			fmt.Printf("Known locations:  %d\n", locations)
			fmt.Printf("Last location:    %s\n", valueOrUnset(lastLocation))

			if lastLocation != "" {
				cityID, err := store.ResolveCityID(ctx, lastLocation)
				if err == nil {
					if row, err := store.LoadTodayRow(ctx, cityID); err == nil {
						fmt.Printf("Today (%s):\n", row.DateShort)
						fmt.Printf("  fajr %s  sunrise %s  dhuhr %s  asr %s  maghrib %s  isha %s\n",
							row.Fajr, row.Sunrise, row.Dhuhr, row.Asr, row.Maghrib, row.Isha)
					} else {
						fmt.Println("No prayer times cached for today.")
					}
				}
			}
			return nil
		},
	}
}

func newSchedulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "Inspect and edit the alarm schedules",
	}
	cmd.AddCommand(newSchedulesListCmd(), newSchedulesSetCmd())
	return cmd
}

func newSchedulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the six alarm schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefault()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			schedules, err := store.Schedules(cmd.Context())
			if err != nil {
				return err
			}
			if len(schedules) == 0 {
				fmt.Println("No schedules seeded yet. Start the daemon once.")
				return nil
			}

			fmt.Printf("%-10s %-8s %s\n", "EVENT", "ENABLED", "OFFSET")
			for _, s := range schedules {
				fmt.Printf("%-10s %-8v %+d min\n", s.ID, s.Enabled, s.RelativeMinutes)
			}
			return nil
		},
	}
}

func newSchedulesSetCmd() *cobra.Command {
	var enabled bool
	var disabled bool
	var offset int

	cmd := &cobra.Command{
		Use:   "set <event>",
		Short: "Edit one alarm schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if enabled && disabled {
				return errors.New("--enable and --disable are mutually exclusive")
			}

			cfg, err := config.LoadDefault()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			current, err := store.GetSchedule(ctx, args[0])
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("unknown event %q", args[0])
			}
			if err != nil {
				return err
			}

			state := current.Enabled
			if enabled {
				state = true
			}
			if disabled {
				state = false
			}
			minutes := current.RelativeMinutes
			if cmd.Flags().Changed("offset") {
				minutes = offset
			}

			if err := store.UpdateSchedule(ctx, args[0], state, minutes); err != nil {
				return err
			}
			fmt.Printf("%s: enabled=%v offset=%+d min\n", args[0], state, minutes)
			fmt.Println("The change takes effect on the next scheduling pass.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&enabled, "enable", false, "Enable the alarm")
	cmd.Flags().BoolVar(&disabled, "disable", false, "Disable the alarm")
	cmd.Flags().IntVar(&offset, "offset", 0, "Fire offset in minutes relative to the event")

	return cmd
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Ask a running daemon to run a scheduling pass now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefault()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost,
				fmt.Sprintf("http://%s/api/v1/sync", cfg.Listen()), nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("daemon not reachable at %s: %w", cfg.Listen(), err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusAccepted {
				return fmt.Errorf("sync request failed: %s", resp.Status)
			}
			fmt.Println("Scheduling pass complete.")
			return nil
		},
	}
}

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the awqat daemon",
		Long: `Start awqatd as a long-running daemon process.

The daemon will:
  - Watch the configured coordinate source for city changes
  - Keep the local prayer-time cache in sync with the provider
  - Arm exact alarms for the enabled prayer events every day`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefault()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("daemon not configured: %w", err)
			}
			return runDaemon(cfg)
		},
	}
	return cmd
}

func openStore(cfg *config.Config) (*db.Store, error) {
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	return db.New(dataDir, zerolog.New(os.Stderr).With().Timestamp().Logger())
}

func runDaemon(cfg *config.Config) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	m := metrics.New()
	client := awqat.NewClient(cfg.ProviderURL, cfg.ProviderEmail, cfg.ProviderPassword)
	repo := awqat.NewRepository(client, store, m, logger)

	var sink alarm.Sink = alarm.LogSink{Logger: logger}
	if cfg.NotifyWebhookURL != "" {
		sink = alarm.NewWebhookSink(cfg.NotifyWebhookURL, logger)
	}
	registrar := alarm.NewTimerRegistrar(sink, m, logger)
	defer registrar.Close()
	scheduler := alarm.NewScheduler(registrar, logger)

	job := daily.NewJob(store, repo, scheduler, m, logger)

	runner := jobs.NewRunner(logger)
	runner.Start()
	defer runner.Stop()

	seeder := bootstrap.NewSeeder(store, logger)
	orchestrator := bootstrap.NewOrchestrator(seeder, repo, runner, job.Run, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := location.NewWatcher(location.WatcherOptions{
		Provider: coordinateProvider(cfg),
		Geocoder: location.NewHTTPGeocoder(cfg.GeocoderURL),
		Store:    store,
		Metrics:  m,
		Logger:   logger,
		Interval: cfg.PollInterval(),
		OnCityChange: func(ctx context.Context, name string) {
			if err := orchestrator.Run(ctx); err != nil {
				logger.Warn().Err(err).Msg("initialization incomplete")
			}
			if err := job.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("scheduling pass after city change failed")
			}
		},
		OnPermissionDenied: func(ctx context.Context) {
			if err := orchestrator.Run(ctx); err != nil {
				logger.Warn().Err(err).Msg("initialization incomplete")
			}
		},
	})
	startBackground(ctx, orchestrator, watcher, logger)
	defer watcher.Stop()

	router := api.NewRouter(api.Config{Version: Version, Commit: Commit}, store, registrar, job.Run, m, logger)
	server := &http.Server{Addr: cfg.Listen(), Handler: router.Engine}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Listen()).Msg("admin api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	fmt.Printf("Awqat Daemon %s starting...\n", Version)
	fmt.Printf("Provider: %s\n", cfg.ProviderURL)
	fmt.Printf("Admin API: http://%s\n", cfg.Listen())
	fmt.Println("Daemon running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		fmt.Printf("\nReceived %s, shutting down...\n", sig)
	case err := <-errCh:
		logger.Error().Err(err).Msg("admin api failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("admin api shutdown")
	}
	return nil
}

// startBackground runs one initialization pass and then begins watching for
// city changes. The pass cannot wait for a location event: after a restart
// the stored city is usually unchanged and the watcher reports nothing, yet
// seed state, the daily job entry and armed alarms all need rebuilding.
func startBackground(ctx context.Context, orchestrator *bootstrap.Orchestrator, watcher *location.Watcher, logger zerolog.Logger) {
	if err := orchestrator.Run(ctx); err != nil {
		logger.Warn().Err(err).Msg("initialization incomplete, retried on location events")
	}
	watcher.Start(ctx)
}

// coordinateProvider picks the position source. A fixed position can be set
// through AWQAT_LAT/AWQAT_LON for hosts without a live source; without one
// the daemon runs on the location-independent path.
func coordinateProvider(cfg *config.Config) location.Provider {
	latRaw, lonRaw := os.Getenv("AWQAT_LAT"), os.Getenv("AWQAT_LON")
	if latRaw == "" || lonRaw == "" {
		return location.DeniedProvider{}
	}

	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lon, lonErr := strconv.ParseFloat(lonRaw, 64)
	if latErr != nil || lonErr != nil {
		return location.DeniedProvider{}
	}
	return location.StaticProvider{Position: location.Coordinates{Lat: lat, Lon: lon}}
}
