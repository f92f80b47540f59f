package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Select   key.Binding
	Mark     key.Binding
	Drag     key.Binding
	Cancel   key.Binding

	MoveUp   key.Binding
	MoveDown key.Binding
	Add      key.Binding
	AddBook  key.Binding
	Insert   key.Binding
	Rename   key.Binding
	Delete   key.Binding
	Include  key.Binding
	Status   key.Binding

	Detail key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Expand:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "expand")),
		Collapse: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "collapse")),
		Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select/drop")),
		Mark:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark")),
		Drag:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "drag")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		MoveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add child")),
		AddBook:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new book")),
		Insert:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insert before")),
		Rename:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Delete:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Include:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cycle include")),
		Status:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next status")),

		Detail: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "detail")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Drag, k.Add, k.Delete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Expand, k.Collapse, k.Select, k.Mark},
		{k.Drag, k.Cancel, k.MoveUp, k.MoveDown},
		{k.Add, k.AddBook, k.Insert, k.Rename, k.Delete},
		{k.Include, k.Status, k.Detail, k.Help, k.Quit},
	}
}
