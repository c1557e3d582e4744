package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/taskdash/internal/cli"
	"github.com/julianstephens/taskdash/internal/models"
)

type TaskEditCmd struct {
	UIDs     []string `arg:"" name:"uid" help:"Block uids of the tasks to edit."`
	Priority *string  `help:"Set the priority."`
	Energy   *string  `help:"Set the energy level."`
	GTD      *string  `name:"gtd" help:"Set the GTD state."`
	Project  *string  `help:"Set the project page."`
	Waiting  *string  `help:"Set who the tasks are waiting for."`
	Context  []string `help:"Replace the contexts."`
	Clear    []string `help:"Fields to clear: priority, energy, gtd, project, waiting, context."`
}

func (c *TaskEditCmd) patch() (models.MetadataPatch, error) {
	p := models.MetadataPatch{
		Priority:   c.Priority,
		Energy:     c.Energy,
		GTD:        c.GTD,
		Project:    c.Project,
		WaitingFor: c.Waiting,
	}
	if len(c.Context) > 0 {
		ctxs := append([]string(nil), c.Context...)
		p.Context = &ctxs
	}

	empty := ""
	for _, field := range c.Clear {
		switch strings.ToLower(strings.TrimSpace(field)) {
		case "priority":
			p.Priority = &empty
		case "energy":
			p.Energy = &empty
		case "gtd":
			p.GTD = &empty
		case "project":
			p.Project = &empty
		case "waiting":
			p.WaitingFor = &empty
		case "context":
			none := []string{}
			p.Context = &none
		default:
			return models.MetadataPatch{}, fmt.Errorf("unknown field %q", field)
		}
	}
	return p, nil
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	p, err := c.patch()
	if err != nil {
		return err
	}
	if p.IsEmpty() {
		return fmt.Errorf("nothing to change; pass at least one field flag or --clear")
	}

	d, err := load(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	n, err := d.BulkUpdate(context.Background(), c.UIDs, p)
	if err != nil {
		return err
	}
	if n < len(c.UIDs) {
		ctx.Printf("✓ Updated %d of %d tasks (the rest were not found)\n", n, len(c.UIDs))
		return nil
	}
	ctx.Printf("✓ Updated %d tasks\n", n)
	return nil
}
