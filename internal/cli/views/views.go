package views

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/julianstephens/taskdash/internal/cli"
	"github.com/julianstephens/taskdash/internal/models"
	"github.com/julianstephens/taskdash/internal/tui/prompt"
	viewstore "github.com/julianstephens/taskdash/internal/views"
)

type ViewListCmd struct{}

func (c *ViewListCmd) Run(ctx *cli.Context) error {
	d := ctx.OpenDashboard(cli.DashboardOptions{Ephemeral: true})
	defer d.Close()

	list := d.Views()
	if len(list) == 0 {
		ctx.Println("No saved views.")
		return nil
	}

	active, hasActive := d.ActiveView()
	ctx.Printf("  %-28s %-30s %-10s %-8s\n", "ID", "Name", "Grouping", "Preset")
	ctx.Println(strings.Repeat("-", 80))
	for _, v := range list {
		marker := " "
		if hasActive && v.ID == active.ID {
			marker = "*"
		}
		preset := "No"
		if viewstore.IsPreset(v.ID) {
			preset = "Yes"
		}
		ctx.Printf("%s %-28s %-30s %-10s %-8s\n", marker, v.ID, truncate(v.Name, 30), v.State.Grouping, preset)
	}
	if d.IsDirty() {
		ctx.Printf("\nActive view %q has unsaved changes.\n", active.Name)
	}
	return nil
}

type ViewSaveCmd struct {
	Name string `arg:"" optional:"" help:"Name of the new view. Prompts when omitted."`
}

func (c *ViewSaveCmd) Run(ctx *cli.Context) error {
	d := ctx.OpenDashboard(cli.DashboardOptions{})
	defer d.Close()

	var id string
	if c.Name == "" {
		id = d.SaveViewAs()
	} else {
		id = d.CreateView(c.Name)
	}
	if id == "" {
		if c.Name == "" {
			ctx.Println("Save cancelled.")
			return nil
		}
		return fmt.Errorf("view name cannot be empty")
	}
	v, _ := d.ActiveView()
	ctx.Printf("✓ Saved view %q (%s)\n", v.Name, v.ID)
	return nil
}

type ViewUpdateCmd struct{}

func (c *ViewUpdateCmd) Run(ctx *cli.Context) error {
	d := ctx.OpenDashboard(cli.DashboardOptions{})
	defer d.Close()

	v, ok := d.ActiveView()
	if !ok {
		return fmt.Errorf("no view is active")
	}
	if !d.IsDirty() {
		ctx.Printf("View %q is already up to date.\n", v.Name)
		return nil
	}
	if !d.UpdateActiveView() {
		return fmt.Errorf("failed to update view %q", v.Name)
	}
	ctx.Printf("✓ Updated view %q\n", v.Name)
	return nil
}

type ViewRenameCmd struct {
	View string `arg:"" help:"ID or name of the view."`
	Name string `arg:"" optional:"" help:"New name. Prompts when omitted."`
}

func (c *ViewRenameCmd) Run(ctx *cli.Context) error {
	d := ctx.OpenDashboard(cli.DashboardOptions{})
	defer d.Close()

	v, err := Resolve(d.Views(), c.View)
	if err != nil {
		return err
	}
	if c.Name == "" {
		if !d.RenameViewPrompt(v.ID) {
			ctx.Println("Rename cancelled.")
		}
	} else if !d.RenameView(v.ID, c.Name) {
		return fmt.Errorf("view name cannot be empty")
	}
	renamed, _ := viewstore.Find(d.Store(), v.ID)
	if renamed.Name != v.Name {
		ctx.Printf("✓ Renamed %q to %q\n", v.Name, renamed.Name)
	}
	return nil
}

type ViewDeleteCmd struct {
	View string `arg:"" help:"ID or name of the view."`
	Yes  bool   `short:"y" help:"Delete without asking."`
}

func (c *ViewDeleteCmd) Run(ctx *cli.Context) error {
	if c.Yes {
		ctx.Prompter = prompt.Static{Yes: true}
	}
	d := ctx.OpenDashboard(cli.DashboardOptions{})
	defer d.Close()

	v, err := Resolve(d.Views(), c.View)
	if err != nil {
		return err
	}
	if !d.DeleteViewPrompt(v.ID) {
		ctx.Println("Delete cancelled.")
		return nil
	}
	ctx.Printf("✓ Deleted view %q\n", v.Name)
	if viewstore.IsPreset(v.ID) {
		ctx.Println("Run 'taskdash presets install --force' to bring it back.")
	}
	return nil
}

type ViewUseCmd struct {
	View string `arg:"" optional:"" help:"ID or name of the view, matched fuzzily. Prompts when omitted."`
}

func (c *ViewUseCmd) Run(ctx *cli.Context) error {
	d := ctx.OpenDashboard(cli.DashboardOptions{})
	defer d.Close()

	if c.View == "" {
		if !d.SelectViewPrompt() {
			ctx.Println("No view selected.")
		}
	} else {
		v, err := Resolve(d.Views(), c.View)
		if err != nil {
			return err
		}
		d.SelectView(v.ID)
	}
	if v, ok := d.ActiveView(); ok {
		ctx.Printf("✓ Using view %q\n", v.Name)
	} else {
		ctx.Println("No view active.")
	}
	return nil
}

type ViewClearCmd struct{}

func (c *ViewClearCmd) Run(ctx *cli.Context) error {
	d := ctx.OpenDashboard(cli.DashboardOptions{})
	defer d.Close()

	v, ok := d.ActiveView()
	if !ok {
		ctx.Println("No view active.")
		return nil
	}
	d.ClearView()
	ctx.Printf("✓ Cleared view %q\n", v.Name)
	return nil
}

type PresetsInstallCmd struct {
	Force bool `help:"Reinstall missing presets even after the first run."`
}

func (c *PresetsInstallCmd) Run(ctx *cli.Context) error {
	d := ctx.OpenDashboard(cli.DashboardOptions{Ephemeral: true})
	defer d.Close()

	res := d.Seeding
	if len(res.InstalledIDs) == 0 {
		res = d.InstallPresets(c.Force)
	}
	switch {
	case len(res.InstalledIDs) > 0:
		ctx.Printf("✓ Installed %d preset views: %s\n", len(res.InstalledIDs), strings.Join(res.InstalledIDs, ", "))
	case !c.Force:
		ctx.Println("Presets were already installed. Use --force to restore deleted ones.")
	default:
		ctx.Println("All preset views are present.")
	}
	if len(res.SkippedNameCollisions) > 0 {
		ctx.Printf("Skipped presets whose names are taken: %s\n", strings.Join(res.SkippedNameCollisions, ", "))
	}
	return nil
}

// Resolve finds a view by exact id, then by case-insensitive name, then by
// the best fuzzy match on names.
func Resolve(list []models.View, query string) (models.View, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.View{}, fmt.Errorf("no view given")
	}
	for _, v := range list {
		if v.ID == query {
			return v, nil
		}
	}
	for _, v := range list {
		if strings.EqualFold(v.Name, query) {
			return v, nil
		}
	}

	names := make([]string, len(list))
	for i, v := range list {
		names[i] = v.Name
	}
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return models.View{}, fmt.Errorf("no view matches %q", query)
	}
	return list[matches[0].Index], nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
