package system

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/taskdash/internal/cli"
	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/storage"
	"github.com/julianstephens/taskdash/internal/validation"
	"github.com/julianstephens/taskdash/internal/views"
)

type ValidateCmd struct {
	Fix   bool `help:"Rewrite the saved views document in normalized form."`
	Tasks bool `help:"Also check task records in the notes graph." default:"true" negatable:""`
}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	validator := validation.New()
	var result validation.ValidationResult

	raw, err := ctx.Store.GetSetting(constants.SettingViewsStore)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to read saved views: %w", err)
	}
	result.Merge(validator.ValidateViewsDocument(raw))

	if c.Tasks {
		if err := ctx.LoadGraph(); err != nil {
			return err
		}
		list, err := ctx.Graph.FetchTasks(context.Background())
		if err != nil {
			return fmt.Errorf("failed to read tasks: %w", err)
		}
		result.Merge(validator.ValidateTasks(list))
	}

	ctx.Println(strings.TrimSuffix(result.FormatReport(), "\n"))

	if c.Fix && raw != "" {
		fixed, actions := validator.FixViewsDocument(raw)
		if len(actions) == 0 {
			ctx.Println("Nothing to fix.")
			return nil
		}
		data, err := views.Marshal(fixed)
		if err != nil {
			return fmt.Errorf("failed to encode saved views: %w", err)
		}
		if err := ctx.Store.SetSetting(constants.SettingViewsStore, string(data)); err != nil {
			return fmt.Errorf("failed to save saved views: %w", err)
		}
		ctx.Println("Applied fixes:")
		for _, a := range actions {
			ctx.Printf("  - %s\n", a.Action)
		}
		return nil
	}

	if result.HasConflicts() {
		return fmt.Errorf("validation found %d conflicts", len(result.Conflicts))
	}
	return nil
}
