/*
main.go - Application entry point

PURPOSE:
  Command-line entry for the club-activity stipend service. Starts the HTTP
  server, prices single entries offline and imports the amount master.

COMMANDS:
  serve                 Run the HTTP API (default settings from config)
  calc                  Price one entry in memory, no database needed
  master import <file>  Load a YAML/JSON master file into the database
  master defaults       Print the built-in master as YAML

STARTUP SEQUENCE (serve):
  1. Load configuration (defaults, config file, .env, STIPEND_* env)
  2. Initialize SQLite store
  3. Seed the amount master (defaults, or master.file if configured)
  4. Create API handler and deadline monitor
  5. Configure HTTP router
  6. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the deadline monitor
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server serve --config=./stipend.yaml

  # Run with in-memory database
  STIPEND_DB_PATH=":memory:" ./server serve

  # Price a designated match with driving out of the prefecture
  ./server calc --activity=C --driving --destination=outside

SEE ALSO:
  - config/config.go: Configuration keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/stipend-engine/allowance"
	"github.com/warp/stipend-engine/api"
	"github.com/warp/stipend-engine/calendar"
	"github.com/warp/stipend-engine/config"
	"github.com/warp/stipend-engine/factory"
	"github.com/warp/stipend-engine/generic"
	"github.com/warp/stipend-engine/stipend"
	"github.com/warp/stipend-engine/store/memory"
	"github.com/warp/stipend-engine/store/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "stipend",
		Short:         "Club activity stipend service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, toml or json)")

	root.AddCommand(newServeCmd(&configFile))
	root.AddCommand(newCalcCmd())
	root.AddCommand(newMasterCmd(&configFile))
	return root
}

func loadConfig(configFile string) (*config.Config, error) {
	return config.Load(config.New(), configFile)
}

// =============================================================================
// SERVE
// =============================================================================

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	loc, err := cfg.Calendar.Location()
	if err != nil {
		return err
	}

	// Initialize store
	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	if err := seedMaster(context.Background(), store, cfg.Master.File); err != nil {
		return err
	}

	// Initialize handler
	handler := api.NewHandler(store, stipend.LockPolicy{
		DeadlineDay: cfg.Workflow.DeadlineDay,
		Location:    loc,
	})

	deadlines := api.NewDeadlineScheduler(handler)
	deadlines.Start()
	defer deadlines.Stop()

	// Create router
	router := api.NewRouter(handler, cfg.CORS.AllowedOrigins)

	// Create server
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.HTTP.Port)
		log.Printf("API available at http://localhost:%d/api", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// seedMaster fills missing master rows from file, or from the built-in
// amounts when no file is configured. Existing rows are never overwritten.
func seedMaster(ctx context.Context, store *sqlite.Store, file string) error {
	defs := factory.DefaultDefinitions()
	if file != "" {
		var err error
		if defs, err = readMasterFile(file); err != nil {
			return err
		}
	}
	n, err := store.SeedMaster(ctx, api.MasterRecords(defs))
	if err != nil {
		return fmt.Errorf("seed amount master: %w", err)
	}
	if n > 0 {
		log.Printf("Seeded %d amount master rows", n)
	}
	return nil
}

func readMasterFile(path string) ([]factory.MasterDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read master file: %w", err)
	}
	defs, err := factory.NewMasterFactory().ParseMaster(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// =============================================================================
// CALC
// =============================================================================

func newCalcCmd() *cobra.Command {
	var (
		activity, destination, masterFile, date string
		driving, workDay                        bool
		accommodation, halfDay                  bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Price one entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := allowance.Input{
				Activity:      allowance.ParseActivity(activity),
				Driving:       driving,
				Destination:   allowance.ParseDestination(destination),
				WorkDay:       workDay,
				Accommodation: accommodation,
				HalfDay:       halfDay,
			}

			store := memory.New()
			if masterFile != "" {
				defs, err := readMasterFile(masterFile)
				if err != nil {
					return err
				}
				store.SetMaster(factory.Table(defs))
			}

			var on *generic.TimePoint
			if date != "" {
				d, err := generic.ParseDate(date)
				if err != nil {
					return err
				}
				on = &d
			}

			svc := stipend.NewService(store, calendar.NewClassifier(store, store))
			q, err := svc.Quote(cmd.Context(), on, in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if q.Day != nil {
				_, _ = fmt.Fprintf(out, "%s: %s\n", q.Day.Date, q.Day.Label)
			}
			if !q.Eligibility.Allowed {
				_, _ = fmt.Fprintln(out, q.Eligibility.Message)
				return nil
			}
			_, _ = fmt.Fprintf(out, "%s (%s)\n", generic.Yen(q.Amount).Format(), q.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&activity, "activity", "", "activity code: A-G, DISASTER, OTHER")
	cmd.Flags().StringVar(&destination, "destination", "", "destination: school|inside_short|inside_long|outside")
	cmd.Flags().StringVar(&date, "date", "", "classify this day (YYYY-MM-DD) instead of using --work-day")
	cmd.Flags().BoolVar(&driving, "driving", false, "drove a private car")
	cmd.Flags().BoolVar(&workDay, "work-day", false, "the day is a work day")
	cmd.Flags().BoolVar(&accommodation, "accommodation", false, "overnight stay")
	cmd.Flags().BoolVar(&halfDay, "half-day", false, "half-day attendance")
	cmd.Flags().StringVar(&masterFile, "master", "", "price with this master file instead of the fixed amounts")
	_ = cmd.MarkFlagRequired("activity")
	return cmd
}

// =============================================================================
// MASTER
// =============================================================================

func newMasterCmd(configFile *string) *cobra.Command {
	master := &cobra.Command{Use: "master", Short: "Amount master commands"}

	master.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Create or overwrite master rows from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			defs, err := readMasterFile(args[0])
			if err != nil {
				return err
			}

			store, err := sqlite.New(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := context.Background()
			for _, rec := range api.MasterRecords(defs) {
				if err := store.SaveMasterRecord(ctx, rec); err != nil {
					return fmt.Errorf("save %s: %w", rec.Code, err)
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows into %s\n", len(defs), cfg.DB.Path)
			return nil
		},
	})

	master.AddCommand(&cobra.Command{
		Use:   "defaults",
		Short: "Print the built-in master as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := factory.DefaultMasterYAML()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	})
	return master
}
