// Package service wires match sources, the ranking engine and the ranking
// store into the recompute workflow.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/power-rankings/internal/config"
	"github.com/yourusername/power-rankings/internal/datasource"
	"github.com/yourusername/power-rankings/internal/logger"
	"github.com/yourusername/power-rankings/internal/metrics"
	"github.com/yourusername/power-rankings/internal/models"
	"github.com/yourusername/power-rankings/internal/rankings"
	"github.com/yourusername/power-rankings/internal/report"
	"github.com/yourusername/power-rankings/internal/repository"
)

// RankingService recomputes and publishes ranking tables
type RankingService struct {
	source      datasource.MatchSource
	store       repository.RankingRepository
	directory   *TeamDirectory
	validator   *RecordValidator
	engine      *rankings.Engine
	perDivision bool
	export      config.ExportConfig
	logger      *logrus.Logger
	audit       *logger.AuditLogger
}

// RecomputeResult is the outcome of one recompute across all divisions
type RecomputeResult struct {
	AsOf        time.Time
	RecordsRead int
	Validation  ValidationReport
	Results     []*rankings.Result
	Exported    []string
	Published   bool
}

// NewRankingService creates a new ranking service. A nil store turns
// Recompute into a dry run that computes without publishing.
func NewRankingService(
	cfg *config.Config,
	source datasource.MatchSource,
	store repository.RankingRepository,
	directory *TeamDirectory,
	log *logrus.Logger,
) (*RankingService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if source == nil {
		return nil, fmt.Errorf("match source is required")
	}
	if log == nil {
		log = logger.NewDiscardLogger()
	}

	engineCfg, err := rankings.FromConfig(&cfg.Rankings)
	if err != nil {
		return nil, err
	}
	engine, err := rankings.NewEngine(engineCfg, log)
	if err != nil {
		return nil, err
	}
	if directory == nil {
		directory = NewTeamDirectory(nil, 0, log)
	}

	svc := &RankingService{
		source:      source,
		store:       store,
		directory:   directory,
		validator:   NewRecordValidator(log),
		engine:      engine,
		perDivision: cfg.Rankings.PerDivision,
		export:      cfg.Export,
		logger:      log,
		audit:       logger.NewAuditLogger(log),
	}

	svc.audit.LogConfigurationLoaded(cfg.App.Environment, map[string]interface{}{
		"window_days":      engineCfg.WindowDays,
		"max_games":        engineCfg.MaxGames,
		"goal_diff_cap":    engineCfg.GoalDiffCap,
		"normalizer":       string(engineCfg.Normalizer.Mode),
		"defense_policy":   string(engineCfg.DefensePolicy),
		"weights":          fmt.Sprintf("%.2f/%.2f/%.2f", engineCfg.Weights.Offense, engineCfg.Weights.Defense, engineCfg.Weights.SOS),
		"active_threshold": engineCfg.ActiveThreshold,
		"per_division":     cfg.Rankings.PerDivision,
		"source":           source.Name(),
	})

	return svc, nil
}

// Recompute loads match history up to asOf, ranks every division and
// publishes each table by full replacement. History is read from the start
// so GamesTotal counts every game; the engine applies the window itself.
func (s *RankingService) Recompute(ctx context.Context, asOf time.Time) (*RecomputeResult, error) {
	asOf = asOf.UTC().Truncate(24 * time.Hour)
	var start time.Time

	s.logger.WithFields(logrus.Fields{
		"source":      s.source.Name(),
		"window_days": s.engine.Config().WindowDays,
		"as_of":       asOf.Format("2006-01-02"),
	}).Info("Starting ranking recompute")

	if !s.source.IsEnabled() {
		return nil, fmt.Errorf("%s: %w", s.source.Name(), models.ErrSourceDisabled)
	}

	fetchStarted := time.Now()
	records, err := s.source.FetchMatches(ctx, start, asOf)
	metrics.RecordSourceFetch(s.source.Name(), time.Since(fetchStarted).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches: %w", err)
	}

	valid, validation := s.validator.Filter(s.source.Name(), records)
	result := &RecomputeResult{
		AsOf:        asOf,
		RecordsRead: len(records),
		Validation:  validation,
	}

	results, err := s.rank(ctx, valid, asOf)
	if err != nil {
		return nil, err
	}

	if err := s.directory.Preload(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to preload team directory, resolving names individually")
	}

	for _, res := range results {
		s.directory.Attach(ctx, res.Teams)
		s.recordMetrics(res)

		if err := s.publish(ctx, res); err != nil {
			metrics.RecordRunFailure(res.Run.Division)
			return nil, err
		}

		if path, err := s.exportTable(res); err != nil {
			s.logger.WithError(err).WithField("division", res.Run.Division).Error("Failed to export ranking table")
		} else if path != "" {
			result.Exported = append(result.Exported, path)
		}
	}

	result.Results = results
	result.Published = s.store != nil
	metrics.MarkRecomputeSucceeded()

	s.logger.WithFields(logrus.Fields{
		"divisions":        len(results),
		"records_read":     result.RecordsRead,
		"records_rejected": validation.Rejected,
		"published":        result.Published,
	}).Info("Ranking recompute completed")

	return result, nil
}

// Published returns the stored table and latest run of a division
func (s *RankingService) Published(ctx context.Context, division string) (*models.RankingRun, []models.RankedTeam, error) {
	if s.store == nil {
		return nil, nil, fmt.Errorf("no ranking store configured")
	}
	teams, err := s.store.GetByDivision(ctx, division)
	if err != nil {
		return nil, nil, err
	}
	run, err := s.store.GetLatestRun(ctx, division)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, nil, err
	}
	if run == nil {
		run = &models.RankingRun{Division: division}
	}
	return run, teams, nil
}

// rank runs the engine once over the whole league. In per-division mode the
// engine solves strengths across divisions and ranks each one separately.
func (s *RankingService) rank(ctx context.Context, records []models.MatchRecord, asOf time.Time) ([]*rankings.Result, error) {
	if !s.perDivision {
		res, err := s.engine.RunDivision(ctx, "", records, asOf)
		if err != nil {
			metrics.RecordRunFailure("")
			return nil, err
		}
		return []*rankings.Result{res}, nil
	}

	results, err := s.engine.RunDivisions(ctx, records, asOf)
	if err != nil {
		metrics.RecordRunFailure("all")
		return nil, err
	}
	return results, nil
}

func (s *RankingService) recordMetrics(res *rankings.Result) {
	run := res.Run
	metrics.RecordRun(
		run.Division,
		float64(run.DurationMillis)/1000,
		run.Iterations,
		run.Converged,
		run.TeamsRanked,
		len(run.ExcludedTeams),
	)
	for _, metric := range run.FlatMetrics {
		metrics.RecordDegenerateMetric(metric)
	}
	for _, w := range res.Diagnostics.Warnings() {
		s.logger.WithField("division", run.Division).Debug(w.Error())
	}
}

func (s *RankingService) publish(ctx context.Context, res *rankings.Result) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.ReplaceDivision(ctx, res.Run, res.Teams); err != nil {
		return fmt.Errorf("failed to publish division %q: %w", res.Run.Division, err)
	}
	s.audit.LogTablePublished(res.Run.RunID.String(), res.Run.Division, len(res.Teams), res.Run.AsOf)
	return nil
}

func (s *RankingService) exportTable(res *rankings.Result) (string, error) {
	if s.export.Format == "" {
		return "", nil
	}
	return report.Export(s.export.Format, s.export.OutputDir, res.Run, res.Teams)
}
