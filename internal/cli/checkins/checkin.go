package checkins

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/habitvault/internal/checkin"
	"github.com/julianstephens/habitvault/internal/cli"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/toggle"
	"github.com/julianstephens/habitvault/internal/utils"
)

type CheckinCmd struct {
	Toggle CheckinToggleCmd `cmd:"" help:"Flip a habit between completed and missed for a day."`
	Mark   CheckinMarkCmd   `cmd:"" help:"Set the status of one or more habits for a day."`
	List   CheckinListCmd   `cmd:"" help:"List a habit's check-ins."`
}

type CheckinToggleCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *CheckinToggleCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	date := utils.FormatDate(day)

	h, err := ctx.FindHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	ctrl, err := ctx.Controller(bg)
	if err != nil {
		return err
	}
	if err := ctrl.Refresh(bg, date); err != nil {
		return err
	}

	if err := ctrl.Toggle(bg, h.ID, date); err != nil {
		if errors.Is(err, toggle.ErrUnknownHabit) {
			return fmt.Errorf("habit %q not found", c.Habit)
		}
		return err
	}

	status, err := ctrl.Status(h.ID, date)
	if err != nil {
		return err
	}
	updated, _ := ctrl.Habit(h.ID)
	ctx.Printf("%s %s on %s: %s\n", StatusIcon(status), updated.Name, date, status)
	ctx.Printf("Current streak: %d (best %d)\n", updated.CurrentStreak, updated.LongestStreak)
	return nil
}

type CheckinMarkCmd struct {
	Status models.Status `arg:"" help:"completed or missed." enum:"completed,missed"`
	Habits []string      `arg:"" help:"Habit ids or names."`
	Date   string        `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *CheckinMarkCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	date := utils.FormatDate(day)

	habits := make([]models.Habit, 0, len(c.Habits))
	for _, ref := range c.Habits {
		h, err := ctx.FindHabit(bg, ref)
		if err != nil {
			return err
		}
		habits = append(habits, h)
	}

	client, err := ctx.API()
	if err != nil {
		return err
	}

	if len(habits) == 1 {
		h := habits[0]
		update, err := client.UpsertCheckin(bg, h.ID, date, c.Status)
		if err != nil {
			return err
		}
		ctx.Printf("Marked %s %s on %s (streak %d, best %d)\n", h.Name, c.Status, date, update.CurrentStreak, update.LongestStreak)
		return nil
	}

	items := make([]models.BatchCheckin, 0, len(habits))
	for _, h := range habits {
		items = append(items, models.BatchCheckin{HabitID: h.ID, Date: date, Status: c.Status})
	}
	streaks, err := client.BatchUpdateCheckins(bg, items)
	if err != nil {
		return err
	}
	for _, h := range habits {
		s := streaks[h.ID]
		ctx.Printf("Marked %s %s on %s (streak %d, best %d)\n", h.Name, c.Status, date, s.CurrentStreak, s.LongestStreak)
	}
	return nil
}

type CheckinListCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	From  string `help:"First day (YYYY-MM-DD), default 30 days ago."`
	To    string `help:"Last day (YYYY-MM-DD), default today."`
}

func (c *CheckinListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	end, err := ctx.ResolveDate(c.To)
	if err != nil {
		return err
	}
	start := end.AddDate(0, 0, -29)
	if c.From != "" {
		if start, err = ctx.ResolveDate(c.From); err != nil {
			return err
		}
	}
	if end.Before(start) {
		return fmt.Errorf("--from %s is after --to %s", utils.FormatDate(start), utils.FormatDate(end))
	}

	h, err := ctx.FindHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	client, err := ctx.API()
	if err != nil {
		return err
	}
	today, err := ctx.Today()
	if err != nil {
		return err
	}

	lookup := &checkin.Lookup{Source: client}
	idx, err := lookup.ForHabitRange(bg, h.ID, utils.FormatDate(start), utils.FormatDate(end))
	if err != nil {
		return err
	}

	ctx.Printf("%s (%s to %s):\n\n", h.Name, utils.FormatDate(start), utils.FormatDate(end))
	for _, d := range utils.DaysBetween(start, end) {
		status := checkin.Resolve(h, d, today, idx)
		if status == models.DayNotScheduled {
			continue
		}
		ctx.Printf("%s %s %s\n", utils.FormatDate(d), StatusIcon(status), status)
	}
	return nil
}

// StatusIcon is the checkbox marker of a day state
func StatusIcon(s models.DayState) string {
	switch s {
	case models.DayCompleted:
		return "[x]"
	case models.DayMissed:
		return "[-]"
	case models.DaySkipped:
		return "[~]"
	case models.DayNotScheduled:
		return "[.]"
	default:
		return "[ ]"
	}
}
