package checkins

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitvault/internal/checkin"
	"github.com/julianstephens/habitvault/internal/cli"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/utils"
)

type CalendarCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Month string `help:"Month in YYYY-MM format (default: current month)."`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	year, month, err := ctx.ResolveMonth(c.Month)
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	today, err := ctx.Today()
	if err != nil {
		return err
	}

	h, err := ctx.FindHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	client, err := ctx.API()
	if err != nil {
		return err
	}

	first, last := utils.MonthBounds(year, month, loc)
	lookup := &checkin.Lookup{Source: client}
	idx, err := lookup.ForHabitRange(bg, h.ID, utils.FormatDate(first), utils.FormatDate(last))
	if err != nil {
		return err
	}

	ctx.Printf("%s, %s %d\n\n", h.Name, month, year)
	for _, line := range MonthGrid(h, first, today, idx) {
		ctx.Println(line)
	}
	ctx.Println()
	ctx.Println("x completed  - missed  ~ skipped  . not scheduled")

	var tally checkin.Tally
	for _, d := range utils.DaysBetween(first, last) {
		t := checkin.Counts([]models.Habit{h}, d, today, idx)
		tally.Scheduled += t.Scheduled
		tally.Completed += t.Completed
		tally.Missed += t.Missed
	}
	ctx.Printf("Completed %d of %d scheduled days, %d missed\n", tally.Completed, tally.Scheduled, tally.Missed)
	return nil
}

// MonthGrid lays out the month containing first as Monday-first week rows
func MonthGrid(h models.Habit, first, today time.Time, idx checkin.Getter) []string {
	lines := []string{" Mo  Tu  We  Th  Fr  Sa  Su"}
	offset := (int(first.Weekday()) + 6) % 7
	row := ""
	for i := 0; i < offset; i++ {
		row += "    "
	}

	_, last := utils.MonthBounds(first.Year(), first.Month(), first.Location())
	for _, d := range utils.DaysBetween(first, last) {
		row += cell(d.Day(), checkin.Resolve(h, d, today, idx))
		if d.Weekday() == time.Sunday {
			lines = append(lines, row)
			row = ""
		}
	}
	if row != "" {
		lines = append(lines, row)
	}
	return lines
}

func cell(day int, s models.DayState) string {
	mark := " "
	switch s {
	case models.DayCompleted:
		mark = "x"
	case models.DayMissed:
		mark = "-"
	case models.DaySkipped:
		mark = "~"
	case models.DayNotScheduled:
		mark = "."
	}
	return fmt.Sprintf("%2d%s ", day, mark)
}
