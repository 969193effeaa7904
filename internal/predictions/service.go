package predictions

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/feelsunbreeze/spps_tui/internal/logging"
	"github.com/feelsunbreeze/spps_tui/internal/models"
	"github.com/feelsunbreeze/spps_tui/internal/students"
)

type Backend interface {
	ListPredictions(ctx context.Context, level models.RiskLevel) ([]models.Prediction, error)
	GeneratePrediction(ctx context.Context, studentCode, semester string) error
	AtRiskPredictions(ctx context.Context) ([]models.Prediction, error)
	PredictionReport(ctx context.Context, id int64) (models.PredictionReport, error)
}

type StudentLister interface {
	List(ctx context.Context) (students.Index, error)
}

// ListQuery selects which predictions a list load fetches. An empty Risk
// means all levels. AtRiskOnly uses the dedicated at-risk endpoint.
type ListQuery struct {
	Risk       models.RiskLevel
	AtRiskOnly bool
}

// ListResult is one settled load: predictions and the student directory
// they are joined against, always from the same round.
type ListResult struct {
	Predictions []models.Prediction
	Students    students.Index
}

type GenerateRequest struct {
	StudentCode string
	Semester    string
}

type Service struct {
	backend  Backend
	students StudentLister
	logger   *zap.Logger
}

func NewService(backend Backend, students StudentLister, logger *zap.Logger) *Service {
	return &Service{backend: backend, students: students, logger: logging.OrNop(logger).Named("predictions")}
}

// List fetches predictions and students concurrently and returns only once
// both have settled. Either failure fails the whole load.
func (s *Service) List(ctx context.Context, q ListQuery) (ListResult, error) {
	var res ListResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if q.AtRiskOnly {
			res.Predictions, err = s.backend.AtRiskPredictions(gctx)
		} else {
			res.Predictions, err = s.backend.ListPredictions(gctx, q.Risk)
		}
		if err != nil {
			return fmt.Errorf("failed to load predictions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		res.Students, err = s.students.List(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to load prediction list", zap.String("risk_level", string(q.Risk)), zap.Error(err))
		return ListResult{}, err
	}

	s.logger.Debug("Loaded predictions",
		zap.String("risk_level", string(q.Risk)),
		zap.Bool("at_risk_only", q.AtRiskOnly),
		zap.Int("predictions", len(res.Predictions)),
		zap.Int("students", res.Students.Len()),
	)
	return res, nil
}

// Generate asks the backend to compute a prediction. Nothing is returned:
// the new record is read back with List.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) error {
	if err := s.backend.GeneratePrediction(ctx, req.StudentCode, req.Semester); err != nil {
		s.logger.Error("Failed to generate prediction",
			zap.String("student_id", req.StudentCode),
			zap.String("semester", req.Semester),
			zap.Error(err),
		)
		return fmt.Errorf("failed to generate prediction: %w", err)
	}
	s.logger.Info("Generated prediction", zap.String("student_id", req.StudentCode), zap.String("semester", req.Semester))
	return nil
}

func (s *Service) AtRisk(ctx context.Context) ([]models.Prediction, error) {
	predictions, err := s.backend.AtRiskPredictions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load at-risk predictions: %w", err)
	}
	return predictions, nil
}

func (s *Service) Report(ctx context.Context, id int64) (models.PredictionReport, error) {
	report, err := s.backend.PredictionReport(ctx, id)
	if err != nil {
		s.logger.Error("Failed to build prediction report", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to build report: %w", err)
	}
	return report, nil
}
