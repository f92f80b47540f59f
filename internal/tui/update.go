package tui

import (
	"errors"
	"fmt"
	"strings"

	"storyline-cli/internal/dragdrop"
	"storyline-cli/internal/hierarchy"
	"storyline-cli/internal/model"
	"storyline-cli/internal/mutate"
	"storyline-cli/internal/store"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modePrompt:
			return m.updatePrompt(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modeDrag:
			return m.updateDrag(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m appModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, k.Detail):
		m.showDetail = !m.showDetail
	case key.Matches(msg, k.Cancel):
		m.marked.Clear()
		m.setStatus("")
	case key.Matches(msg, k.Down):
		m.cursor = clamp(m.cursor+1, 0, len(m.rows)-1)
	case key.Matches(msg, k.Up):
		m.cursor = clamp(m.cursor-1, 0, len(m.rows)-1)
	case key.Matches(msg, k.AddBook):
		return m.startPrompt(prompt{kind: promptAdd, nodeType: model.NodeBook}, "")
	}

	n, ok := m.current()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, k.Select):
		if m.db.SelectNode(n.ID) {
			m.setStatus("selected " + n.Title)
		}
		m.save()
		m.refreshRows(n.ID)
	case key.Matches(msg, k.Expand):
		m.db.SetExpanded(n.ID, true)
		m.save()
		m.refreshRows(n.ID)
	case key.Matches(msg, k.Collapse):
		if m.db.IsExpanded(n.ID) && len(m.db.ChildrenOf(n.ID)) > 0 {
			m.db.SetExpanded(n.ID, false)
			m.save()
			m.refreshRows(n.ID)
		} else if !n.IsRoot() {
			m.refreshRows(n.Parent())
		}
	case key.Matches(msg, k.Mark):
		m.marked.Toggle(n.ID)
	case key.Matches(msg, k.Drag):
		if err := m.drag.Start(m.db, n.ID, m.marked.IDs()); err != nil {
			m.setError(err)
			return m, nil
		}
		m.mode = modeDrag
		m.ptr = pointer{row: m.cursor, zone: 1}
		m.hover()
	case key.Matches(msg, k.MoveUp), key.Matches(msg, k.MoveDown):
		var err error
		if key.Matches(msg, k.MoveUp) {
			_, err = m.db.MoveUp(n.ID)
		} else {
			_, err = m.db.MoveDown(n.ID)
		}
		m.afterMutation(n.ID, err)
	case key.Matches(msg, k.Add):
		child, ok := hierarchy.ChildType(n.Type)
		if !ok {
			m.setError(fmt.Errorf("%ss cannot have children", n.Type))
			return m, nil
		}
		pid := n.ID
		return m.startPrompt(prompt{kind: promptAdd, nodeType: child, parentID: &pid}, "")
	case key.Matches(msg, k.Insert):
		return m.startPrompt(prompt{kind: promptInsert, nodeType: n.Type, refID: n.ID}, "")
	case key.Matches(msg, k.Rename):
		return m.startPrompt(prompt{kind: promptRename, refID: n.ID}, n.Title)
	case key.Matches(msg, k.Delete):
		m.mode = modeConfirmDelete
		m.deleteID = n.ID
		m.setStatus(fmt.Sprintf("delete %s %q and everything under it? (y/n)", n.Type, n.Title))
	case key.Matches(msg, k.Include):
		res, err := mutate.CycleIncludeInFull(m.db, n.ID)
		if err == nil && res.Changed {
			m.setStatus(fmt.Sprintf("include: %s -> %s", res.EventPayload["from"], res.EventPayload["to"]))
		}
		m.afterMutation(n.ID, err)
	case key.Matches(msg, k.Status):
		res, err := mutate.SetChapterStatus(m.db, n.ID, mutate.NextStatus(n.Status))
		if err == nil {
			m.setStatus("status: " + statusLabel(res.Node.Status))
		}
		m.afterMutation(n.ID, err)
	}
	return m, nil
}

// afterMutation saves on success, reports err otherwise, and refreshes the rows.
func (m *appModel) afterMutation(focusID string, err error) {
	if err != nil {
		m.setError(err)
	} else {
		m.save()
	}
	m.marked.Prune(func(id string) bool {
		_, ok := m.db.Node(id)
		return ok
	})
	m.refreshRows(focusID)
}

func (m appModel) updateDrag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.drag.End()
		return m, tea.Quit
	case key.Matches(msg, k.Cancel):
		m.drag.End()
		m.mode = modeNormal
		m.setStatus("drag cancelled")
	case key.Matches(msg, k.Down):
		m.stepPointer(1)
		m.hover()
	case key.Matches(msg, k.Up):
		m.stepPointer(-1)
		m.hover()
	case key.Matches(msg, k.Select):
		label := m.drag.Label(m.db)
		res, err := m.drag.Drop(m.db)
		m.mode = modeNormal
		if err != nil {
			if errors.Is(err, dragdrop.ErrNoDropTarget) {
				m.setStatus("nothing to drop on here")
				return m, nil
			}
			m.afterMutation(m.currentID(), err)
			return m, nil
		}
		m.marked.Clear()
		m.afterMutation(res.Moved[0], nil)
		m.setStatus(fmt.Sprintf("moved %s %s %s", label, res.Target.Position, m.titleOf(res.Target.NodeID)))
	}
	return m, nil
}

func (m *appModel) stepPointer(delta int) {
	pos := m.ptr.row*len(zoneOffsets) + m.ptr.zone + delta
	pos = clamp(pos, 0, len(m.rows)*len(zoneOffsets)-1)
	m.ptr = pointer{row: pos / len(zoneOffsets), zone: pos % len(zoneOffsets)}
}

// hover reports the pointer position to the drag session.
func (m *appModel) hover() {
	if m.ptr.row < 0 || m.ptr.row >= len(m.rows) {
		return
	}
	m.cursor = m.ptr.row
	id := m.rows[m.ptr.row].ID
	if t, ok := m.drag.Over(m.db, id, zoneOffsets[m.ptr.zone], 1); ok {
		m.setStatus(fmt.Sprintf("drop %s %s %s", m.drag.Label(m.db), t.Position, m.titleOf(t.NodeID)))
	} else {
		m.setStatus(fmt.Sprintf("%s cannot go here", m.drag.Label(m.db)))
	}
}

func (m appModel) startPrompt(p prompt, value string) (tea.Model, tea.Cmd) {
	m.mode = modePrompt
	m.prompt = p
	m.input.Placeholder = ""
	if p.kind != promptRename {
		m.input.Placeholder = "New " + string(p.nodeType)
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m appModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.mode = modeNormal
		m.input.Blur()
		title := strings.TrimSpace(m.input.Value())
		p := m.prompt
		switch p.kind {
		case promptAdd:
			n, err := m.db.AddNode(p.parentID, p.nodeType, title)
			m.afterMutation(n.ID, err)
		case promptInsert:
			n, err := m.db.InsertNodeBefore(p.refID, p.nodeType, title)
			m.afterMutation(n.ID, err)
		case promptRename:
			if title == "" {
				m.setError(errors.New("title cannot be empty"))
				return m, nil
			}
			_, err := m.db.UpdateNode(p.refID, store.NodePatch{Title: &title})
			m.afterMutation(p.refID, err)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.deleteID
	m.mode = modeNormal
	m.deleteID = ""
	if strings.ToLower(msg.String()) != "y" {
		m.setStatus("")
		return m, nil
	}
	removed, err := m.db.DeleteNode(id)
	if err == nil {
		m.setStatus(fmt.Sprintf("deleted %d node(s)", len(removed)))
	}
	m.afterMutation("", err)
	return m, nil
}

func (m appModel) titleOf(id string) string {
	n, ok := m.db.Node(id)
	if !ok {
		return id
	}
	return fmt.Sprintf("%q", n.Title)
}
