package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitvault/internal/api"
	"github.com/julianstephens/habitvault/internal/cli"
	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/heatmap"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/utils"
)

type AnalyticsCmd struct {
	From   string `help:"First day (YYYY-MM-DD)."`
	To     string `help:"Last day (YYYY-MM-DD)."`
	Period string `help:"week, month or year."`
}

func (c *AnalyticsCmd) Run(ctx *cli.Context) error {
	today, err := ctx.Today()
	if err != nil {
		return err
	}
	r, err := c.dateRange(ctx.Session.Settings(), today)
	if err != nil {
		return err
	}

	// The last used range is remembered for the next run
	if err := ctx.Session.Update(func(s *models.Settings) {
		s.AnalyticsStartDate = r.StartDate
		s.AnalyticsEndDate = r.EndDate
		s.AnalyticsPeriod = r.Period
	}); err != nil {
		return err
	}

	client, err := ctx.API()
	if err != nil {
		return err
	}
	sum, err := client.AnalyticsSummary(context.Background(), r)
	if err != nil {
		return err
	}

	ctx.Printf("Analytics %s to %s (%s)\n\n", sum.StartDate, sum.EndDate, r.Period)
	ctx.Printf("  Habits:           %d (%d active)\n", sum.TotalHabits, sum.ActiveHabits)
	ctx.Printf("  Completed today:  %d\n", sum.CompletedToday)
	ctx.Printf("  Check-ins:        %d (%d completed)\n", sum.TotalCheckins, sum.CompletedCheckins)
	ctx.Printf("  Completion rate:  %.1f%%\n", sum.CompletionRate)
	ctx.Printf("  Best streak:      %d\n", sum.BestStreak)
	return nil
}

// dateRange picks flags first, then the saved range, then the period ending today
func (c *AnalyticsCmd) dateRange(saved models.Settings, today time.Time) (api.DateRange, error) {
	period := c.Period
	if period == "" {
		period = saved.AnalyticsPeriod
	}
	if period == "" {
		period = constants.DefaultAnalyticsPeriod
	}
	switch period {
	case constants.PeriodWeek, constants.PeriodMonth, constants.PeriodYear:
	default:
		return api.DateRange{}, fmt.Errorf("invalid period %q (expected week, month or year)", period)
	}

	r := api.DateRange{StartDate: c.From, EndDate: c.To, Period: period}
	if c.From == "" && c.To == "" && c.Period == "" {
		r.StartDate, r.EndDate = saved.AnalyticsStartDate, saved.AnalyticsEndDate
	}
	if r.EndDate == "" {
		r.EndDate = utils.FormatDate(today)
	}
	end, err := utils.ParseDate(r.EndDate, today.Location())
	if err != nil {
		return api.DateRange{}, err
	}
	if r.StartDate == "" {
		r.StartDate = utils.FormatDate(utils.PeriodStart(period, end))
	}
	start, err := utils.ParseDate(r.StartDate, today.Location())
	if err != nil {
		return api.DateRange{}, err
	}
	if end.Before(start) {
		return api.DateRange{}, fmt.Errorf("start date %s is after end date %s", r.StartDate, r.EndDate)
	}
	return r, nil
}

type HeatmapCmd struct {
	Month string `help:"Month in YYYY-MM format (default: current month)."`
}

func (c *HeatmapCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	year, month, err := ctx.ResolveMonth(c.Month)
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	client, err := ctx.API()
	if err != nil {
		return err
	}
	habits, err := client.ListHabits(bg)
	if err != nil {
		return err
	}

	nav := heatmap.NewNavigator(heatmap.NewCache(client, loc), year, month)
	if err := nav.Load(bg); err != nil {
		return err
	}
	payload, _ := nav.Payload()

	ctx.Printf("%s %d\n\n", month, year)
	for _, line := range Render(payload, habits, year, month, loc) {
		ctx.Println(line)
	}
	return nil
}

// Render draws one row per habit and one column per day of the month
func Render(payload models.HeatmapPayload, habits []models.Habit, year int, month time.Month, loc *time.Location) []string {
	first, last := utils.MonthBounds(year, month, loc)
	days := utils.DaysBetween(first, last)

	width := 0
	for _, h := range habits {
		width = max(width, len([]rune(h.Name)))
	}

	var header strings.Builder
	header.WriteString(strings.Repeat(" ", width+1))
	for _, d := range days {
		if d.Day()%5 == 1 {
			header.WriteString(fmt.Sprintf("%-5d", d.Day()))
		}
	}
	lines := []string{strings.TrimRight(header.String(), " ")}

	for _, h := range habits {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%-*s ", width, h.Name))
		statuses := payload.Habits[h.ID]
		for _, d := range days {
			row.WriteString(heatCell(statuses[utils.FormatDate(d)]))
		}
		lines = append(lines, row.String())
	}
	return lines
}

func heatCell(s models.Status) string {
	switch s {
	case models.StatusCompleted:
		return "■"
	case models.StatusMissed:
		return "x"
	case models.StatusSkipped:
		return "~"
	default:
		return "·"
	}
}

type QuoteCmd struct{}

func (c *QuoteCmd) Run(ctx *cli.Context) error {
	client, err := ctx.API()
	if err != nil {
		return err
	}
	q, err := client.DailyQuote(context.Background())
	if err != nil {
		return err
	}
	ctx.Printf("%q\n", q.Text)
	if q.Author != "" {
		ctx.Printf("  - %s\n", q.Author)
	}
	return nil
}
