package habits

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/habitvault/internal/api"
	"github.com/julianstephens/habitvault/internal/cli"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/schedule"
	"github.com/julianstephens/habitvault/internal/tui/forms"
	"github.com/julianstephens/habitvault/internal/utils"
)

type HabitCmd struct {
	List   HabitListCmd   `cmd:"" help:"List habits." default:"1"`
	Show   HabitShowCmd   `cmd:"" help:"Show one habit."`
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit a habit."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its check-ins."`
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	client, err := ctx.API()
	if err != nil {
		return err
	}
	habits, err := client.ListHabits(context.Background())
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	for _, h := range habits {
		ctx.Printf("%4d  %-24s %-18s streak %d (best %d)\n",
			h.ID, h.Name, schedule.Describe(h.TargetType, h.TargetDays), h.CurrentStreak, h.LongestStreak)
	}
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(context.Background(), c.Habit)
	if err != nil {
		return err
	}

	ctx.Printf("Habit:          %s (#%d)\n", h.Name, h.ID)
	if h.Description != "" {
		ctx.Printf("Description:    %s\n", h.Description)
	}
	ctx.Printf("Schedule:       %s\n", schedule.Describe(h.TargetType, h.TargetDays))
	if h.StartDate != "" {
		ctx.Printf("Start date:     %s\n", h.StartDate)
	}
	ctx.Printf("Current streak: %d\n", h.CurrentStreak)
	ctx.Printf("Longest streak: %d\n", h.LongestStreak)
	return nil
}

type HabitAddCmd struct {
	Name        string            `arg:"" optional:"" help:"Habit name (opens a form when omitted)."`
	Description string            `help:"Habit description."`
	Schedule    models.TargetType `help:"daily, weekdays or custom." default:"daily" enum:"daily,weekdays,custom"`
	Days        string            `help:"Days for a custom schedule, e.g. mon,wed,fri."`
	Start       string            `help:"Start date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	today, err := ctx.Today()
	if err != nil {
		return err
	}

	fm := forms.NewHabitFormModel(utils.FormatDate(today))
	if c.Name == "" {
		if err := forms.NewHabitForm(fm).Run(); err != nil {
			return err
		}
	} else {
		fm.Name = c.Name
		fm.Description = c.Description
		fm.TargetType = c.Schedule
		fm.TargetDays = c.Days
		if c.Start != "" {
			fm.StartDate = c.Start
		}
	}

	in, err := fm.Input()
	if err != nil {
		return err
	}
	client, err := ctx.API()
	if err != nil {
		return err
	}
	h, err := client.CreateHabit(context.Background(), in)
	if err != nil {
		return describeValidation(err)
	}

	ctx.Printf("Added habit: %s (#%d, %s)\n", h.Name, h.ID, schedule.Describe(h.TargetType, h.TargetDays))
	return nil
}

type HabitEditCmd struct {
	Habit       string             `arg:"" help:"Habit id or name."`
	Name        *string            `help:"New name."`
	Description *string            `help:"New description."`
	Schedule    *models.TargetType `help:"daily, weekdays or custom."`
	Days        *string            `help:"Days for a custom schedule."`
	Start       *string            `help:"New start date (YYYY-MM-DD)."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	h, err := ctx.FindHabit(bg, c.Habit)
	if err != nil {
		return err
	}

	fm := forms.HabitFormFrom(h)
	updated := false
	if c.Name != nil {
		fm.Name = *c.Name
		updated = true
	}
	if c.Description != nil {
		fm.Description = *c.Description
		updated = true
	}
	if c.Schedule != nil {
		fm.TargetType = *c.Schedule
		updated = true
	}
	if c.Days != nil {
		fm.TargetDays = *c.Days
		updated = true
	}
	if c.Start != nil {
		fm.StartDate = *c.Start
		updated = true
	}
	if !updated {
		if err := forms.NewHabitForm(fm).Run(); err != nil {
			return err
		}
	}

	in, err := fm.Input()
	if err != nil {
		return err
	}
	client, err := ctx.API()
	if err != nil {
		return err
	}
	saved, err := client.UpdateHabit(bg, h.ID, in)
	if err != nil {
		return describeValidation(err)
	}

	ctx.Printf("Updated habit: %s (#%d)\n", saved.Name, saved.ID)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	h, err := ctx.FindHabit(bg, c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirm := false
		if err := forms.NewConfirmForm(fmt.Sprintf("Delete %q and all its check-ins?", h.Name), &confirm).Run(); err != nil {
			return err
		}
		if !confirm {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	client, err := ctx.API()
	if err != nil {
		return err
	}
	if err := client.DeleteHabit(bg, h.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", h.Name)
	return nil
}

// describeValidation marks server-side field errors as a rejected habit
func describeValidation(err error) error {
	var ve *api.ValidationError
	if errors.As(err, &ve) {
		return fmt.Errorf("habit rejected by server: %w", err)
	}
	return err
}
