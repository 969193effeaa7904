package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/feelsunbreeze/spps_tui/internal/models"
)

// ListPredictions fetches predictions, filtered by risk level. An empty
// level omits the risk_level parameter entirely.
func (c *Client) ListPredictions(ctx context.Context, level models.RiskLevel) ([]models.Prediction, error) {
	var query url.Values
	if level != "" {
		query = url.Values{"risk_level": {string(level)}}
	}

	var predictions listOf[models.Prediction]
	if err := c.get(ctx, "/predictions/predictions/", query, &predictions); err != nil {
		return nil, err
	}
	return predictions, nil
}

// GeneratePrediction asks the backend to compute a prediction for the
// student with the given external code. The created record is not returned:
// callers read it back through ListPredictions.
func (c *Client) GeneratePrediction(ctx context.Context, studentCode, semester string) error {
	payload := map[string]string{"student_id": studentCode, "semester": semester}
	return c.send(ctx, http.MethodPost, "/predictions/predictions/generate/", payload, nil)
}

func (c *Client) PredictionStatistics(ctx context.Context) (models.PredictionStatistics, error) {
	var stats models.PredictionStatistics
	err := c.get(ctx, "/predictions/predictions/statistics/", nil, &stats)
	return stats, err
}

func (c *Client) AtRiskPredictions(ctx context.Context) ([]models.Prediction, error) {
	var predictions listOf[models.Prediction]
	if err := c.get(ctx, "/predictions/predictions/at_risk/", nil, &predictions); err != nil {
		return nil, err
	}
	return predictions, nil
}

func (c *Client) PredictionReport(ctx context.Context, id int64) (models.PredictionReport, error) {
	report := models.PredictionReport{}
	err := c.send(ctx, http.MethodPost, fmt.Sprintf("/predictions/predictions/%d/report/", id), nil, &report)
	return report, err
}
