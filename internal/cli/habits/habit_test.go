package habits

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitvault/internal/cli/clitest"
	"github.com/julianstephens/habitvault/internal/models"
)

const today = "2025-05-14"

func TestHabitListCmd(t *testing.T) {
	env := clitest.New(t, today)

	if err := (&HabitListCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(env.Out.String(), "No habits found.") {
		t.Errorf("unexpected output: %q", env.Out.String())
	}

	env.API.AddHabit(models.Habit{Name: "Read", TargetType: models.TargetDaily, CurrentStreak: 3, LongestStreak: 5})
	env.API.AddHabit(models.Habit{Name: "Run", TargetType: models.TargetCustom, TargetDays: []string{"mon", "thu"}})
	env.Out.Reset()

	if err := (&HabitListCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	out := env.Out.String()
	for _, want := range []string{"Read", "streak 3 (best 5)", "Run", "on mon,thu"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHabitShowCmd_ByName(t *testing.T) {
	env := clitest.New(t, today)
	env.API.AddHabit(models.Habit{Name: "Read", Description: "20 pages", TargetType: models.TargetWeekdays})

	if err := (&HabitShowCmd{Habit: "Read"}).Run(env.Ctx); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	out := env.Out.String()
	if !strings.Contains(out, "Habit:          Read (#1)") || !strings.Contains(out, "Schedule:       weekdays") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if err := (&HabitShowCmd{Habit: "Missing"}).Run(env.Ctx); err == nil {
		t.Error("expected error for unknown habit name")
	}
}

func TestHabitAddCmd(t *testing.T) {
	env := clitest.New(t, today)

	cmd := &HabitAddCmd{Name: "Stretch", Schedule: models.TargetCustom, Days: "wed,mon"}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	h, ok := env.API.Habit(1)
	if !ok {
		t.Fatal("habit not created on the server")
	}
	if diff := cmp.Diff([]string{"mon", "wed"}, h.TargetDays); diff != "" {
		t.Errorf("TargetDays mismatch (-want +got):\n%s", diff)
	}
	if h.StartDate != today {
		t.Errorf("StartDate = %q, want %q", h.StartDate, today)
	}
	if !strings.Contains(env.Out.String(), "Added habit: Stretch (#1, on mon,wed)") {
		t.Errorf("unexpected output: %q", env.Out.String())
	}
}

func TestHabitAddCmd_Invalid(t *testing.T) {
	env := clitest.New(t, today)

	tests := []struct {
		name string
		cmd  HabitAddCmd
		want string
	}{
		{"custom without days", HabitAddCmd{Name: "Gym", Schedule: models.TargetCustom}, "at least one day"},
		{"long name", HabitAddCmd{Name: strings.Repeat("x", 51), Schedule: models.TargetDaily}, "50"},
		{"bad start", HabitAddCmd{Name: "Gym", Schedule: models.TargetDaily, Start: "tomorrow"}, "invalid date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(env.Ctx)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
	if env.API.TotalCalls("POST /habits") != 0 {
		t.Error("invalid habits should not reach the server")
	}
}

func TestHabitEditCmd(t *testing.T) {
	env := clitest.New(t, today)
	env.API.AddHabit(models.Habit{Name: "Read", TargetType: models.TargetDaily, StartDate: "2025-01-01"})

	name := "Read more"
	weekdays := models.TargetWeekdays
	cmd := &HabitEditCmd{Habit: "1", Name: &name, Schedule: &weekdays}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	h, _ := env.API.Habit(1)
	if h.Name != "Read more" || h.TargetType != models.TargetWeekdays {
		t.Errorf("habit not updated: %+v", h)
	}
	if h.StartDate != "2025-01-01" {
		t.Errorf("StartDate changed to %q", h.StartDate)
	}
}

func TestHabitDeleteCmd(t *testing.T) {
	env := clitest.New(t, today)
	env.API.AddHabit(models.Habit{Name: "Read", TargetType: models.TargetDaily})
	env.API.SetCheckin(1, today, models.StatusCompleted)

	if err := (&HabitDeleteCmd{Habit: "Read", Yes: true}).Run(env.Ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := env.API.Habit(1); ok {
		t.Error("habit still exists")
	}
	if len(env.API.Checkins(1)) != 0 {
		t.Error("check-ins were not removed")
	}
	if !strings.Contains(env.Out.String(), "Deleted habit: Read") {
		t.Errorf("unexpected output: %q", env.Out.String())
	}
}
