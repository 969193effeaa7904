package dashboard

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/feelsunbreeze/spps_tui/internal/logging"
	"github.com/feelsunbreeze/spps_tui/internal/models"
)

type Backend interface {
	Dashboard(ctx context.Context) (models.DashboardStats, error)
	PredictionStatistics(ctx context.Context) (models.PredictionStatistics, error)
}

// Summary is everything the dashboard screen renders.
type Summary struct {
	Stats        models.DashboardStats
	Distribution models.PredictionStatistics
}

// Card is one headline number.
type Card struct {
	Label string
	Value int
}

func (s Summary) Cards() []Card {
	return []Card{
		{"Total Students", s.Stats.TotalStudents},
		{"Predictions Generated", s.Stats.TotalPredictions},
		{"At-Risk Students", s.Stats.AtRiskStudents},
		{"High Achievers", s.Stats.HighAchievers},
	}
}

// Share is one slice of the risk distribution, in percent.
type Share struct {
	Level   models.RiskLevel
	Label   string
	Percent float64
}

func (s Summary) Shares() []Share {
	return []Share{
		{models.RiskHighAchiever, "High Achievers", s.Distribution.Percentage(models.RiskHighAchiever)},
		{models.RiskAverage, "Average Performance", s.Distribution.Percentage(models.RiskAverage)},
		{models.RiskAtRisk, "At Risk", s.Distribution.Percentage(models.RiskAtRisk)},
	}
}

type Aggregator struct {
	backend Backend
	logger  *zap.Logger
}

func NewAggregator(backend Backend, logger *zap.Logger) *Aggregator {
	return &Aggregator{backend: backend, logger: logging.OrNop(logger).Named("dashboard")}
}

// Load fetches the summary counts and the risk distribution concurrently
// and returns once both have settled.
func (a *Aggregator) Load(ctx context.Context) (Summary, error) {
	var sum Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := a.backend.Dashboard(gctx)
		if err != nil {
			return fmt.Errorf("failed to load dashboard: %w", err)
		}
		sum.Stats = stats
		return nil
	})
	g.Go(func() error {
		dist, err := a.backend.PredictionStatistics(gctx)
		if err != nil {
			return fmt.Errorf("failed to load prediction statistics: %w", err)
		}
		sum.Distribution = dist
		return nil
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("Failed to load dashboard", zap.Error(err))
		return Summary{}, err
	}
	return sum, nil
}
