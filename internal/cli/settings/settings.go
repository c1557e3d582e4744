package settings

import (
	"slices"
	"strings"

	"github.com/julianstephens/taskdash/internal/cli"
)

type ExclusionsCmd struct {
	Enable *bool    `help:"Enable or disable excluding pages from picklists." negatable:""`
	Add    []string `help:"Page titles to exclude from picklists."`
	Remove []string `help:"Page titles to stop excluding."`
	Clear  bool     `help:"Remove every excluded page."`
}

func (c *ExclusionsCmd) Run(ctx *cli.Context) error {
	d := ctx.OpenDashboard(cli.DashboardOptions{Ephemeral: true})
	defer d.Close()

	policy := d.Exclusions()
	updated := false

	if c.Enable != nil && *c.Enable != policy.Enabled {
		policy.Enabled = *c.Enable
		updated = true
	}
	if c.Clear && len(policy.Pages) > 0 {
		policy.Pages = nil
		updated = true
	}
	for _, page := range c.Add {
		page = strings.TrimSpace(page)
		if page == "" || containsFold(policy.Pages, page) {
			continue
		}
		policy.Pages = append(policy.Pages, page)
		updated = true
	}
	for _, page := range c.Remove {
		before := len(policy.Pages)
		policy.Pages = slices.DeleteFunc(policy.Pages, func(p string) bool {
			return strings.EqualFold(p, strings.TrimSpace(page))
		})
		updated = updated || len(policy.Pages) != before
	}

	if updated {
		d.SetExclusions(policy)
		ctx.Println("Exclusions updated.")
	}

	ctx.Println("Picklist exclusions:")
	ctx.Printf("  Enabled: %v\n", policy.Enabled)
	if len(policy.Pages) == 0 {
		ctx.Println("  Pages:   (none)")
	} else {
		ctx.Printf("  Pages:   %s\n", strings.Join(policy.Pages, ", "))
	}
	return nil
}

func containsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(v string) bool { return strings.EqualFold(v, s) })
}
