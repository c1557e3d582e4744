package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit        key.Binding
	Help        key.Binding
	Query       key.Binding
	Grouping    key.Binding
	Completion  key.Binding
	Reset       key.Binding
	SaveView    key.Binding
	UpdateView  key.Binding
	RenameView  key.Binding
	DeleteView  key.Binding
	NextView    key.Binding
	ClearView   key.Binding
	Review      key.Binding
	ReviewNext  key.Binding
	ReviewBack  key.Binding
	ReviewExit  key.Binding
	BulkEdit    key.Binding
	Refresh     key.Binding
	ToggleGroup key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Query, k.Grouping, k.SaveView, k.NextView, k.Review, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Query, k.Grouping, k.Completion, k.Reset, k.ToggleGroup, k.BulkEdit, k.Refresh},
		{k.SaveView, k.UpdateView, k.RenameView, k.DeleteView, k.NextView, k.ClearView},
		{k.Review, k.ReviewNext, k.ReviewBack, k.ReviewExit, k.Quit, k.Help},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Query: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Grouping: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "cycle grouping"),
		),
		Completion: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "open/completed/all"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset filters"),
		),
		SaveView: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save view"),
		),
		UpdateView: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "update view"),
		),
		RenameView: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename view"),
		),
		DeleteView: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete view"),
		),
		NextView: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "next view"),
		),
		ClearView: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear view"),
		),
		Review: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "start review"),
		),
		ReviewNext: key.NewBinding(
			key.WithKeys("n", "right", "l"),
			key.WithHelp("n", "next review view"),
		),
		ReviewBack: key.NewBinding(
			key.WithKeys("p", "left", "h"),
			key.WithHelp("p", "previous review view"),
		),
		ReviewExit: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "exit review"),
		),
		BulkEdit: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "edit selected"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		ToggleGroup: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "expand/collapse"),
		),
	}
}
