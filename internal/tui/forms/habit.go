// Package forms holds the huh forms shared by the CLI and the TUI.
package forms

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/schedule"
	"github.com/julianstephens/habitvault/internal/utils"
)

type HabitFormModel struct {
	Name        string
	Description string
	TargetType  models.TargetType
	TargetDays  string // comma-separated weekdays
	StartDate   string
}

// NewHabitFormModel returns an empty daily habit starting on today
func NewHabitFormModel(today string) *HabitFormModel {
	return &HabitFormModel{TargetType: models.TargetDaily, StartDate: today}
}

// HabitFormFrom prefills the form with an existing habit
func HabitFormFrom(h models.Habit) *HabitFormModel {
	start := h.StartDate
	if d, err := utils.NormalizeDate(start); err == nil {
		start = d
	}
	return &HabitFormModel{
		Name:        h.Name,
		Description: h.Description,
		TargetType:  h.TargetType,
		TargetDays:  strings.Join(h.TargetDays, ","),
		StartDate:   start,
	}
}

// Input validates the form and converts it into a request body
func (f *HabitFormModel) Input() (models.HabitInput, error) {
	in := models.HabitInput{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		TargetType:  f.TargetType,
		StartDate:   strings.TrimSpace(f.StartDate),
	}
	if err := validateName(in.Name); err != nil {
		return models.HabitInput{}, err
	}
	if !in.TargetType.Valid() {
		return models.HabitInput{}, fmt.Errorf("invalid schedule %q", in.TargetType)
	}
	if in.TargetType == models.TargetCustom {
		days, err := parseDays(f.TargetDays)
		if err != nil {
			return models.HabitInput{}, err
		}
		in.TargetDays = days
	}
	if err := validateDate(in.StartDate); err != nil {
		return models.HabitInput{}, err
	}
	return in, nil
}

func validateName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("habit name cannot be empty")
	}
	if len([]rune(s)) > constants.MaxHabitNameLen {
		return fmt.Errorf("habit name must be at most %d characters", constants.MaxHabitNameLen)
	}
	return nil
}

func parseDays(s string) ([]string, error) {
	days, err := schedule.ParseWeekdayTokens(s)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, errors.New("custom schedules need at least one day")
	}
	return days, nil
}

func validateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(constants.DateFormat, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return nil
}

// NewHabitForm creates the add/edit habit form
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				CharLimit(constants.MaxHabitNameLen).
				Value(&fm.Name).
				Validate(validateName),
			huh.NewInput().
				Title("Description").
				Value(&fm.Description),
			huh.NewSelect[models.TargetType]().
				Title("Schedule").
				Options(
					huh.NewOption("Every day", models.TargetDaily),
					huh.NewOption("Weekdays", models.TargetWeekdays),
					huh.NewOption("Custom days", models.TargetCustom),
				).
				Value(&fm.TargetType),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Days").
				Description("Comma-separated, e.g. mon,wed,fri").
				Value(&fm.TargetDays).
				Validate(func(s string) error {
					_, err := parseDays(s)
					return err
				}),
		).WithHideFunc(func() bool { return fm.TargetType != models.TargetCustom }),
		huh.NewGroup(
			huh.NewInput().
				Title("Start date (YYYY-MM-DD)").
				Value(&fm.StartDate).
				Validate(validateDate),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewConfirmForm asks a yes/no question
func NewConfirmForm(title string, value *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(value),
		),
	).WithTheme(huh.ThemeDracula())
}
