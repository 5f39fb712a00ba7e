package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/models"
)

// DateRange is the query of range-scoped endpoints
type DateRange struct {
	StartDate string `url:"start_date,omitempty"`
	EndDate   string `url:"end_date,omitempty"`
	Period    string `url:"period,omitempty"`
}

// ListCheckins returns a habit's check-ins between start and end inclusive
func (c *Client) ListCheckins(ctx context.Context, habitID int, start, end string) ([]models.Checkin, error) {
	var checkins []models.Checkin
	params := DateRange{StartDate: start, EndDate: end}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf(constants.CheckinsEndpoint, habitID), params, nil, &checkins); err != nil {
		return nil, err
	}
	return checkins, nil
}

// UpsertCheckin creates the check-in for (habitID, date) or updates it in
// place, and returns the habit's authoritative streaks.
func (c *Client) UpsertCheckin(ctx context.Context, habitID int, date string, status models.Status) (models.StreakUpdate, error) {
	var update models.StreakUpdate
	body := models.CheckinInput{Date: date, Status: status}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf(constants.CheckinsEndpoint, habitID), nil, body, &update)
	return update, err
}

// BatchUpdateCheckins upserts several check-ins in one request and returns
// the streaks of every habit touched.
func (c *Client) BatchUpdateCheckins(ctx context.Context, items []models.BatchCheckin) (map[int]models.StreakUpdate, error) {
	var resp struct {
		Streaks map[int]models.StreakUpdate `json:"streaks"`
	}
	body := struct {
		Checkins []models.BatchCheckin `json:"checkins"`
	}{Checkins: items}
	if err := c.do(ctx, http.MethodPost, constants.CheckinsBatchUpdate, nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.Streaks, nil
}
