package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/models"
)

// unchanged marks a bulk-edit field the user left alone.
const unchanged = "\x00unchanged"

// ViewFormModel backs the save and rename view forms.
type ViewFormModel struct {
	Name string
}

// DeleteFormModel backs the delete confirmation.
type DeleteFormModel struct {
	ViewID  string
	Confirm bool
}

// BulkFormModel backs the bulk metadata editor.
type BulkFormModel struct {
	Priority   string
	Energy     string
	GTD        string
	Project    string
	WaitingFor string
}

func newBulkFormModel() *BulkFormModel {
	return &BulkFormModel{
		Priority:   unchanged,
		Energy:     unchanged,
		GTD:        unchanged,
		Project:    unchanged,
		WaitingFor: unchanged,
	}
}

// Patch converts the form into a metadata patch.
func (f *BulkFormModel) Patch() models.MetadataPatch {
	pick := func(v string) *string {
		if v == unchanged {
			return nil
		}
		out := v
		return &out
	}
	return models.MetadataPatch{
		Priority:   pick(f.Priority),
		Energy:     pick(f.Energy),
		GTD:        pick(f.GTD),
		Project:    pick(f.Project),
		WaitingFor: pick(f.WaitingFor),
	}
}

func nameValidator(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("view name cannot be empty")
	}
	return nil
}

// NewViewForm creates the form used to name or rename a view
func NewViewForm(title string, fm *ViewFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&fm.Name).
				Validate(nameValidator),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewDeleteForm creates the delete confirmation for a view
func NewDeleteForm(name string, fm *DeleteFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete view %q?", name)).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&fm.Confirm),
		),
	).WithTheme(huh.ThemeDracula())
}

func levelOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("(unchanged)", unchanged),
		huh.NewOption("(clear)", ""),
		huh.NewOption("Low", constants.LevelLow),
		huh.NewOption("Medium", constants.LevelMedium),
		huh.NewOption("High", constants.LevelHigh),
	}
}

func pickOptions(values []string) []huh.Option[string] {
	opts := []huh.Option[string]{
		huh.NewOption("(unchanged)", unchanged),
		huh.NewOption("(clear)", ""),
	}
	for _, v := range values {
		opts = append(opts, huh.NewOption(v, v))
	}
	return opts
}

// NewBulkForm creates the bulk metadata editor. Project and waiting-for
// choices come from the picklist option services.
func NewBulkForm(count int, projects, waiting []string, fm *BulkFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Priority (%d tasks)", count)).
				Options(levelOptions()...).
				Value(&fm.Priority),
			huh.NewSelect[string]().
				Title("Energy").
				Options(levelOptions()...).
				Value(&fm.Energy),
			huh.NewSelect[string]().
				Title("GTD").
				Options(
					huh.NewOption("(unchanged)", unchanged),
					huh.NewOption("(clear)", ""),
					huh.NewOption("Next action", constants.GTDNextAction),
					huh.NewOption("Delegated", constants.GTDDelegated),
					huh.NewOption("Deferred", constants.GTDDeferred),
					huh.NewOption("Someday", constants.GTDSomeday),
				).
				Value(&fm.GTD),
			huh.NewSelect[string]().
				Title("Project").
				Options(pickOptions(projects)...).
				Value(&fm.Project),
			huh.NewSelect[string]().
				Title("Waiting for").
				Options(pickOptions(waiting)...).
				Value(&fm.WaitingFor),
		),
	).WithTheme(huh.ThemeDracula())
}
