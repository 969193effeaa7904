package api

import (
	"context"

	"github.com/feelsunbreeze/spps_tui/internal/models"
)

func (c *Client) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	err := c.get(ctx, "/dashboard/", nil, &stats)
	return stats, err
}
