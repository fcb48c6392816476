// Package main provides the power rankings command line and scheduler service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/power-rankings/internal/config"
	"github.com/yourusername/power-rankings/internal/database"
	"github.com/yourusername/power-rankings/internal/datasource"
	"github.com/yourusername/power-rankings/internal/health"
	"github.com/yourusername/power-rankings/internal/logger"
	"github.com/yourusername/power-rankings/internal/metrics"
	"github.com/yourusername/power-rankings/internal/report"
	"github.com/yourusername/power-rankings/internal/repository"
	"github.com/yourusername/power-rankings/internal/scheduler"
	"github.com/yourusername/power-rankings/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLogger  *logrus.Logger
	cfg        *config.Config

	asOfFlag     string
	dryRun       bool
	printTable   bool
	divisionFlag string
	ingestFile   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	runCmd.Flags().StringVar(&asOfFlag, "as-of", "", "Ranking date (YYYY-MM-DD), defaults to today in UTC")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute without publishing to the database")
	runCmd.Flags().BoolVar(&printTable, "print", true, "Print each table to stdout")

	showCmd.Flags().StringVar(&divisionFlag, "division", "", "Division to show (empty for the combined table)")

	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "CSV file of matches to load")
	_ = ingestCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(runCmd, scheduleCmd, showCmd, ingestCmd, validateCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "rankings",
	Short: "Youth team power rankings",
	Long:  `Computes recency-weighted, schedule-adjusted power rankings from match results and publishes them per division.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return loadConfig(cmd.Context())
	},
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recompute rankings once",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf := time.Now().UTC()
		if asOfFlag != "" {
			parsed, err := time.Parse("2006-01-02", asOfFlag)
			if err != nil {
				return fmt.Errorf("invalid --as-of: %w", err)
			}
			asOf = parsed
		}

		ctx := cmd.Context()
		deps, err := setupDependencies(ctx, !dryRun || cfg.Source.Type == string(datasource.PostgresSourceType))
		if err != nil {
			return err
		}
		defer deps.Close()

		var store repository.RankingRepository
		if !dryRun {
			store = deps.repos.Ranking
		}
		svc, err := deps.rankingService(store)
		if err != nil {
			return err
		}

		result, err := svc.Recompute(ctx, asOf)
		if err != nil {
			return err
		}

		if printTable {
			for _, res := range result.Results {
				fmt.Println(report.GenerateConsoleReport(res.Run, res.Teams))
			}
		}
		for _, path := range result.Exported {
			appLogger.WithField("path", path).Info("Ranking table exported")
		}
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the recompute scheduler with health and metrics endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Schedule.Enabled {
			return fmt.Errorf("schedule.enabled is false")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		deps, err := setupDependencies(ctx, true)
		if err != nil {
			return err
		}
		defer deps.Close()

		svc, err := deps.rankingService(deps.repos.Ranking)
		if err != nil {
			return err
		}

		healthCfg := health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Port:        cfg.Health.Port,
			Logger:      appLogger,
			DB:          deps.db,
		}
		if cfg.Metrics.Enabled {
			healthCfg.MetricsHandler = metrics.Handler()
			healthCfg.MetricsPath = cfg.Metrics.Path
		}
		healthServer := health.NewServer(healthCfg)
		if err := healthServer.Start(ctx); err != nil {
			return err
		}

		sched := scheduler.NewScheduler(recomputeRecorder{svc: svc, health: healthServer}, appLogger)
		if err := sched.ScheduleRecompute(cfg.Schedule.Cron); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		healthServer.SetReady(true)

		appLogger.WithFields(logrus.Fields{
			"cron":     cfg.Schedule.Cron,
			"next_run": sched.GetNextRun().Format(time.RFC3339),
		}).Info("Rankings scheduler running")

		<-ctx.Done()
		healthServer.SetReady(false)
		appLogger.Info("Shutdown signal received")
		return sched.Stop()
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the published table of a division",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		deps, err := setupDependencies(ctx, true)
		if err != nil {
			return err
		}
		defer deps.Close()

		svc, err := deps.rankingService(deps.repos.Ranking)
		if err != nil {
			return err
		}

		run, teams, err := svc.Published(ctx, divisionFlag)
		if err != nil {
			return err
		}
		fmt.Println(report.GenerateConsoleReport(*run, teams))
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load matches from a CSV file into the matches table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		deps, err := setupDependencies(ctx, true)
		if err != nil {
			return err
		}
		defer deps.Close()

		f, err := os.Open(ingestFile)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", ingestFile, err)
		}
		defer f.Close()

		records, err := datasource.ReadMatchesCSV(ctx, f, time.Time{}, time.Now().UTC().AddDate(1, 0, 0))
		if err != nil {
			return err
		}

		valid, validation := service.NewRecordValidator(appLogger).Filter("csv_ingest", records)
		if err := deps.repos.Match.InsertBatch(ctx, valid); err != nil {
			return err
		}

		appLogger.WithFields(logrus.Fields{
			"file":     ingestFile,
			"inserted": len(valid),
			"rejected": validation.Rejected,
		}).Info("Matches ingested")
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Load and validate the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Configuration OK (%s, source=%s, per_division=%t)\n",
			cfg.App.Environment, cfg.Source.Type, cfg.Rankings.PerDivision)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rankings %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLogger = logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()
	return nil
}

// dependencies holds the connections shared by a command
type dependencies struct {
	db    *database.DB
	repos *repository.Repositories
}

func setupDependencies(ctx context.Context, needDatabase bool) (*dependencies, error) {
	deps := &dependencies{repos: &repository.Repositories{}}
	if !needDatabase {
		return deps, nil
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	deps.db = db
	deps.repos = repos
	return deps, nil
}

func (d *dependencies) rankingService(store repository.RankingRepository) (*service.RankingService, error) {
	source, err := datasource.NewFactory(cfg.Source, appLogger).NewMatchSource(d.repos.Match)
	if err != nil {
		return nil, err
	}
	directory := service.NewTeamDirectory(d.repos.Team, service.DefaultDirectoryTTL, appLogger)
	return service.NewRankingService(cfg, source, store, directory, appLogger)
}

func (d *dependencies) Close() {
	if d.db != nil {
		d.db.Close()
	}
}

// recomputeRecorder reports each scheduled recompute to the health server
type recomputeRecorder struct {
	svc    *service.RankingService
	health *health.Server
}

func (r recomputeRecorder) Recompute(ctx context.Context, asOf time.Time) (*service.RecomputeResult, error) {
	result, err := r.svc.Recompute(ctx, asOf)
	r.health.RecordRecompute(time.Now(), err)
	return result, err
}
