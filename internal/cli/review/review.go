package review

import (
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/taskdash/internal/cli"
	"github.com/julianstephens/taskdash/internal/cli/views"
	"github.com/julianstephens/taskdash/internal/models"
	viewstore "github.com/julianstephens/taskdash/internal/views"
)

type ReviewListCmd struct{}

func (c *ReviewListCmd) Run(ctx *cli.Context) error {
	d := ctx.OpenDashboard(cli.DashboardOptions{Ephemeral: true})
	defer d.Close()

	enabled := d.ReviewEnabled()
	effective := d.ReviewViews()

	ctx.Printf("%-4s %-24s %-20s %-8s %-8s\n", "Step", "ID", "Name", "Enabled", "Present")
	ctx.Println(strings.Repeat("-", 70))
	step := 0
	for _, id := range d.ReviewCandidates() {
		v, present := viewstore.Find(d.Store(), id)
		on := !explicitlyOff(enabled, id)
		pos := "-"
		if slices.ContainsFunc(effective, func(e models.View) bool { return e.ID == id }) {
			step++
			pos = fmt.Sprintf("%d", step)
		}
		name := v.Name
		if !present {
			name = "(deleted)"
		}
		ctx.Printf("%-4s %-24s %-20s %-8s %-8s\n", pos, id, name, yesNo(on), yesNo(present))
	}
	ctx.Printf("\n%d of %d review views active.\n", len(effective), len(d.ReviewCandidates()))
	return nil
}

type ReviewEnableCmd struct {
	View string `arg:"" help:"ID or name of the review view."`
}

func (c *ReviewEnableCmd) Run(ctx *cli.Context) error {
	return setEnabled(ctx, c.View, true)
}

type ReviewDisableCmd struct {
	View string `arg:"" help:"ID or name of the review view."`
}

func (c *ReviewDisableCmd) Run(ctx *cli.Context) error {
	return setEnabled(ctx, c.View, false)
}

func setEnabled(ctx *cli.Context, query string, enabled bool) error {
	d := ctx.OpenDashboard(cli.DashboardOptions{Ephemeral: true})
	defer d.Close()

	candidates := make([]models.View, 0, len(d.ReviewCandidates()))
	for _, id := range d.ReviewCandidates() {
		v, ok := viewstore.Find(d.Store(), id)
		if !ok {
			v = models.View{ID: id, Name: id}
		}
		candidates = append(candidates, v)
	}
	v, err := views.Resolve(candidates, query)
	if err != nil {
		return fmt.Errorf("%w (review views: %s)", err, strings.Join(d.ReviewCandidates(), ", "))
	}

	d.SetReviewEnabled(v.ID, enabled)
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	ctx.Printf("✓ Review %s for %q\n", state, v.Name)
	return nil
}

// explicitlyOff treats views missing from the map as enabled.
func explicitlyOff(enabled map[string]bool, id string) bool {
	on, set := enabled[id]
	return set && !on
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
