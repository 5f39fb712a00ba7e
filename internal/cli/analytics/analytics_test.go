package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitvault/internal/api"
	"github.com/julianstephens/habitvault/internal/cli/clitest"
	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/utils"
)

const today = "2025-05-14"

func TestAnalyticsCmd_DateRange(t *testing.T) {
	now, _ := utils.ParseDate(today, time.UTC)
	saved := models.Settings{AnalyticsStartDate: "2025-01-01", AnalyticsEndDate: "2025-01-31", AnalyticsPeriod: constants.PeriodMonth}

	tests := []struct {
		name    string
		cmd     AnalyticsCmd
		saved   models.Settings
		want    api.DateRange
		wantErr bool
	}{
		{
			name: "defaults to the last week",
			want: api.DateRange{StartDate: "2025-05-08", EndDate: today, Period: constants.PeriodWeek},
		},
		{
			name:  "reuses the saved range",
			saved: saved,
			want:  api.DateRange{StartDate: "2025-01-01", EndDate: "2025-01-31", Period: constants.PeriodMonth},
		},
		{
			name:  "period flag ignores the saved dates",
			cmd:   AnalyticsCmd{Period: constants.PeriodYear},
			saved: saved,
			want:  api.DateRange{StartDate: "2024-05-15", EndDate: today, Period: constants.PeriodYear},
		},
		{
			name: "explicit range",
			cmd:  AnalyticsCmd{From: "2025-04-01", To: "2025-04-30"},
			want: api.DateRange{StartDate: "2025-04-01", EndDate: "2025-04-30", Period: constants.PeriodWeek},
		},
		{
			name:    "start after end",
			cmd:     AnalyticsCmd{From: "2025-05-20", To: "2025-05-01"},
			wantErr: true,
		},
		{
			name:    "unknown period",
			cmd:     AnalyticsCmd{Period: "decade"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.dateRange(tt.saved, now)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("dateRange failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("range mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnalyticsCmd_Run(t *testing.T) {
	env := clitest.New(t, today)
	env.API.AddHabit(models.Habit{Name: "Read", TargetType: models.TargetDaily})
	env.API.SetCheckin(1, today, models.StatusCompleted)
	env.API.SetCheckin(1, "2025-05-13", models.StatusMissed)

	if err := (&AnalyticsCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("analytics failed: %v", err)
	}
	out := env.Out.String()
	for _, want := range []string{"Analytics 2025-05-08 to 2025-05-14 (week)", "Completed today:  1", "Completion rate:  50.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	s := env.Ctx.Session.Settings()
	if s.AnalyticsStartDate != "2025-05-08" || s.AnalyticsEndDate != today || s.AnalyticsPeriod != constants.PeriodWeek {
		t.Errorf("range not remembered: %+v", s)
	}
}

func TestRender(t *testing.T) {
	habits := []models.Habit{{ID: 1, Name: "Read"}, {ID: 2, Name: "Walk"}}
	payload := models.HeatmapPayload{Habits: map[int]map[string]models.Status{
		1: {"2025-02-01": models.StatusCompleted, "2025-02-03": models.StatusMissed},
		2: {"2025-02-02": models.StatusSkipped},
	}}

	lines := Render(payload, habits, 2025, time.February, time.UTC)
	want := []string{
		"     1    6    11   16   21   26",
		"Read ■·x" + strings.Repeat("·", 25),
		"Walk ·~" + strings.Repeat("·", 26),
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestHeatmapCmd(t *testing.T) {
	env := clitest.New(t, today)
	env.API.AddHabit(models.Habit{Name: "Read", TargetType: models.TargetDaily})
	env.API.SetCheckin(1, "2025-05-01", models.StatusCompleted)

	if err := (&HeatmapCmd{Month: "2025-05"}).Run(env.Ctx); err != nil {
		t.Fatalf("heatmap failed: %v", err)
	}
	out := env.Out.String()
	if !strings.Contains(out, "May 2025") || !strings.Contains(out, "Read ■") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestQuoteCmd(t *testing.T) {
	env := clitest.New(t, today)

	if err := (&QuoteCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if !strings.Contains(env.Out.String(), "  - Will Durant") {
		t.Errorf("unexpected output: %q", env.Out.String())
	}
}
