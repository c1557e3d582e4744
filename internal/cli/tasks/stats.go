package tasks

import (
	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/taskdash/internal/cli"
)

var barColors = []lipgloss.Color{"205", "214", "39", "78", "141", "240"}

type TaskStatsCmd struct {
	Selection `embed:""`
	Width     int  `default:"60" help:"Chart width in columns."`
	Height    int  `default:"12" help:"Chart height in rows."`
	Plain     bool `help:"Print counts only, without the chart."`
}

func (c *TaskStatsCmd) Run(ctx *cli.Context) error {
	d, err := load(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	state, err := c.state(d)
	if err != nil {
		return err
	}
	groups := group(ctx, d, state, timeNow())
	if len(groups) == 0 {
		ctx.Println("No tasks match.")
		return nil
	}

	total := 0
	bars := make([]barchart.BarData, 0, len(groups))
	for i, g := range groups {
		total += len(g.Items)
		bars = append(bars, barchart.BarData{
			Label: g.Title,
			Values: []barchart.BarValue{{
				Name:  g.Title,
				Value: float64(len(g.Items)),
				Style: lipgloss.NewStyle().Foreground(barColors[i%len(barColors)]),
			}},
		})
	}

	if !c.Plain {
		chart := barchart.New(max(c.Width, 20), max(c.Height, 4))
		chart.PushAll(bars)
		chart.Draw()
		ctx.Println(chart.View())
		ctx.Println()
	}
	for _, g := range groups {
		ctx.Printf("%-16s %d\n", g.Title, len(g.Items))
	}
	ctx.Printf("%-16s %d\n", "Total", total)
	return nil
}
