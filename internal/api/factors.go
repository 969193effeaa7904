package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/feelsunbreeze/spps_tui/internal/models"
)

func (c *Client) ListFactors(ctx context.Context) ([]models.Factor, error) {
	var factors listOf[models.Factor]
	if err := c.get(ctx, "/students/factors/", nil, &factors); err != nil {
		return nil, err
	}
	return factors, nil
}

func (c *Client) CreateFactor(ctx context.Context, in models.FactorInput) (models.Factor, error) {
	var factor models.Factor
	err := c.send(ctx, http.MethodPost, "/students/factors/", in, &factor)
	return factor, err
}

// UpdateFactor is keyed by the factor's own id, not the student's.
func (c *Client) UpdateFactor(ctx context.Context, factorID int64, in models.FactorInput) (models.Factor, error) {
	var factor models.Factor
	err := c.send(ctx, http.MethodPut, fmt.Sprintf("/students/factors/%d/", factorID), in, &factor)
	return factor, err
}
