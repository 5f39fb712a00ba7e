package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/models"
)

// AnalyticsSummary returns aggregate counters for a date range
func (c *Client) AnalyticsSummary(ctx context.Context, r DateRange) (models.AnalyticsSummary, error) {
	var summary models.AnalyticsSummary
	err := c.do(ctx, http.MethodGet, constants.AnalyticsSummaryPath, r, nil, &summary)
	return summary, err
}

// Heatmap returns per-habit, per-date statuses for a date range
func (c *Client) Heatmap(ctx context.Context, r DateRange) (models.HeatmapPayload, error) {
	var payload models.HeatmapPayload
	err := c.do(ctx, http.MethodGet, constants.AnalyticsHeatmapPath, r, nil, &payload)
	return payload, err
}

// DailyQuote returns the motivational quote of the day
func (c *Client) DailyQuote(ctx context.Context) (models.Quote, error) {
	var quote models.Quote
	err := c.do(ctx, http.MethodGet, constants.DailyQuotePath, nil, nil, &quote)
	return quote, err
}
