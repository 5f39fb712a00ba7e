package forms

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitvault/internal/models"
)

func TestHabitFormInput(t *testing.T) {
	tests := []struct {
		name    string
		form    HabitFormModel
		want    models.HabitInput
		wantErr string
	}{
		{
			name: "daily",
			form: HabitFormModel{Name: "  Read ", TargetType: models.TargetDaily, TargetDays: "mon", StartDate: "2025-05-01"},
			want: models.HabitInput{Name: "Read", TargetType: models.TargetDaily, StartDate: "2025-05-01"},
		},
		{
			name: "custom days normalized",
			form: HabitFormModel{Name: "Gym", TargetType: models.TargetCustom, TargetDays: "fri, Monday,wed"},
			want: models.HabitInput{Name: "Gym", TargetType: models.TargetCustom, TargetDays: []string{"mon", "wed", "fri"}},
		},
		{
			name:    "empty name",
			form:    HabitFormModel{Name: " ", TargetType: models.TargetDaily},
			wantErr: "empty",
		},
		{
			name:    "name too long",
			form:    HabitFormModel{Name: strings.Repeat("x", 51), TargetType: models.TargetDaily},
			wantErr: "at most 50",
		},
		{
			name:    "custom without days",
			form:    HabitFormModel{Name: "Gym", TargetType: models.TargetCustom},
			wantErr: "at least one day",
		},
		{
			name:    "bad start date",
			form:    HabitFormModel{Name: "Gym", TargetType: models.TargetDaily, StartDate: "05/01/2025"},
			wantErr: "invalid date",
		},
		{
			name:    "unknown schedule",
			form:    HabitFormModel{Name: "Gym", TargetType: "monthly"},
			wantErr: "invalid schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.form.Input()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Input() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Input() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Input() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHabitFormFrom(t *testing.T) {
	h := models.Habit{Name: "Gym", TargetType: models.TargetCustom, TargetDays: []string{"mon", "fri"}, StartDate: "2025-01-01"}
	fm := HabitFormFrom(h)
	if fm.TargetDays != "mon,fri" || fm.Name != "Gym" || fm.StartDate != "2025-01-01" {
		t.Errorf("HabitFormFrom() = %+v", fm)
	}
	in, err := fm.Input()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(h.TargetDays, in.TargetDays); diff != "" {
		t.Errorf("days mismatch (-want +got):\n%s", diff)
	}
}

func TestHabitFormFrom_TimestampStartDate(t *testing.T) {
	fm := HabitFormFrom(models.Habit{Name: "Read", TargetType: models.TargetDaily, StartDate: "2025-05-10T00:00:00.000Z"})
	if fm.StartDate != "2025-05-10" {
		t.Fatalf("StartDate = %q, want 2025-05-10", fm.StartDate)
	}
	if _, err := fm.Input(); err != nil {
		t.Errorf("Input() error = %v", err)
	}
}
