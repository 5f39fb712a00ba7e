package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/models"
)

// ListHabits returns every habit of the signed-in user
func (c *Client) ListHabits(ctx context.Context) ([]models.Habit, error) {
	var habits []models.Habit
	if err := c.do(ctx, http.MethodGet, constants.HabitsEndpoint, nil, nil, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// GetHabit returns a single habit
func (c *Client) GetHabit(ctx context.Context, id int) (models.Habit, error) {
	var habit models.Habit
	err := c.do(ctx, http.MethodGet, fmt.Sprintf(constants.HabitEndpoint, id), nil, nil, &habit)
	return habit, err
}

// CreateHabit creates a habit and returns it with its server-assigned id
func (c *Client) CreateHabit(ctx context.Context, in models.HabitInput) (models.Habit, error) {
	var habit models.Habit
	err := c.do(ctx, http.MethodPost, constants.HabitsEndpoint, nil, in, &habit)
	return habit, err
}

// UpdateHabit replaces a habit's editable fields
func (c *Client) UpdateHabit(ctx context.Context, id int, in models.HabitInput) (models.Habit, error) {
	var habit models.Habit
	err := c.do(ctx, http.MethodPut, fmt.Sprintf(constants.HabitEndpoint, id), nil, in, &habit)
	return habit, err
}

// DeleteHabit permanently deletes a habit and its check-ins
func (c *Client) DeleteHabit(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf(constants.HabitEndpoint, id), nil, nil, nil)
}
