package checkins

import (
	"context"
	"strings"

	"github.com/julianstephens/habitvault/internal/cli"
	"github.com/julianstephens/habitvault/internal/logger"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/toggle"
	"github.com/julianstephens/habitvault/internal/utils"
)

type TodayCmd struct {
	Date string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	date := utils.FormatDate(day)

	ctrl, err := ctx.Controller(bg)
	if err != nil {
		return err
	}
	if err := ctrl.Refresh(bg, date); err != nil {
		return err
	}
	snap, err := ctrl.Snapshot(date)
	if err != nil {
		return err
	}

	ctx.Printf("Habits for %s:\n\n", date)
	if len(snap.Completed)+len(snap.Incomplete) == 0 {
		ctx.Println("Nothing scheduled.")
	}
	printBucket(ctx, snap, snap.Incomplete)
	printBucket(ctx, snap, snap.Completed)

	t := snap.Tally
	ctx.Printf("\nCompleted: %d/%d", t.Completed, t.Scheduled)
	if t.Missed > 0 {
		ctx.Printf("  Missed: %d", t.Missed)
	}
	if t.Skipped > 0 {
		ctx.Printf("  Skipped: %d", t.Skipped)
	}
	ctx.Println()

	if len(snap.Unavailable) > 0 {
		names := make([]string, 0, len(snap.Unavailable))
		for _, id := range snap.Unavailable {
			if h, ok := ctrl.Habit(id); ok {
				names = append(names, h.Name)
			}
		}
		ctx.Printf("⚠ Check-ins unavailable for: %s\n", strings.Join(names, ", "))
	}

	today, err := ctx.Today()
	if err != nil {
		return err
	}
	if ctx.Session.Settings().ShowMotivationalQuote && utils.SameDay(day, today) {
		printQuote(ctx, bg)
	}
	return nil
}

func printBucket(ctx *cli.Context, snap toggle.Snapshot, habits []models.Habit) {
	status := make(map[int]models.DayState, len(snap.Days))
	for _, d := range snap.Days {
		status[d.Habit.ID] = d.Status
	}
	for _, h := range habits {
		s := status[h.ID]
		ctx.Printf("%s %s (streak %d)\n", StatusIcon(s), h.Name, h.CurrentStreak)
	}
}

func printQuote(ctx *cli.Context, bg context.Context) {
	client, err := ctx.API()
	if err != nil {
		return
	}
	q, err := client.DailyQuote(bg)
	if err != nil {
		logger.Debug("daily quote unavailable", "error", err)
		return
	}
	ctx.Println()
	ctx.Printf("%q\n", q.Text)
	if q.Author != "" {
		ctx.Printf("  - %s\n", q.Author)
	}
}
