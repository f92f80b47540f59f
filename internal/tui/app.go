package tui

import (
	"context"
	"fmt"

	"storyline-cli/internal/dragdrop"
	"storyline-cli/internal/model"
	"storyline-cli/internal/store"
	"storyline-cli/internal/treeorder"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
)

type Options struct {
	// MarkdownStyle is auto, dark or light.
	MarkdownStyle string
}

type mode int

const (
	modeNormal mode = iota
	modeDrag
	modePrompt
	modeConfirmDelete
)

type promptKind int

const (
	promptAdd promptKind = iota
	promptInsert
	promptRename
)

type prompt struct {
	kind     promptKind
	nodeType model.NodeType
	parentID *string
	refID    string
}

// Keyboard drags step a virtual pointer through three zones of each row: the top quarter,
// the middle and the bottom quarter of a unit-height row.
var zoneOffsets = [3]float64{0.1, 0.5, 0.9}

type pointer struct {
	row  int
	zone int
}

type appModel struct {
	ctx  context.Context
	st   store.Store
	db   *store.DB
	rec  *store.Recorder
	opts Options

	keys  keyMap
	help  help.Model
	input textinput.Model

	rows   []treeorder.Row
	cursor int
	marked dragdrop.Selection
	drag   dragdrop.Session
	ptr    pointer

	mode     mode
	prompt   prompt
	deleteID string

	showDetail bool
	width      int
	height     int
	status     string
	statusErr  bool

	unsubscribe func()
}

func newAppModel(ctx context.Context, st store.Store, db *store.DB, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	in := textinput.New()
	in.Prompt = "title: "
	in.CharLimit = 200

	rec := &store.Recorder{}
	m := appModel{
		ctx:         ctx,
		st:          st,
		db:          db,
		rec:         rec,
		opts:        opts,
		keys:        defaultKeyMap(),
		help:        help.New(),
		input:       in,
		width:       80,
		height:      24,
		unsubscribe: db.Subscribe(rec.Observe),
	}
	m.refreshRows("")
	return m
}

// restore applies saved view details. Unknown ids are ignored.
func (m *appModel) restore(ui *store.TUIState) {
	if ui == nil {
		return
	}
	m.showDetail = ui.ShowDetail
	if ui.CursorID != "" {
		m.refreshRows(ui.CursorID)
	}
}

func (m appModel) tuiState() *store.TUIState {
	return &store.TUIState{Version: 1, CursorID: m.currentID(), ShowDetail: m.showDetail}
}

func (m *appModel) close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// refreshRows rebuilds the visible rows and keeps the cursor on keepID when it is visible,
// otherwise on the same index.
func (m *appModel) refreshRows(keepID string) {
	if keepID == "" {
		keepID = m.currentID()
	}
	m.rows = treeorder.Flatten(m.db.Tree(), true)
	for i, r := range m.rows {
		if r.ID == keepID {
			m.cursor = i
			return
		}
	}
	m.cursor = clamp(m.cursor, 0, len(m.rows)-1)
}

func (m appModel) currentID() string {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return ""
	}
	return m.rows[m.cursor].ID
}

func (m appModel) current() (model.Node, bool) {
	return m.db.Node(m.currentID())
}

// save persists the collection, the view state and pending commits. Failures are reported
// in the status line; the in-memory state stays authoritative.
func (m *appModel) save() {
	if err := m.st.Persist(m.ctx, m.db, m.rec.Drain()); err != nil {
		m.setError(fmt.Errorf("save failed: %w", err))
	}
}

func (m *appModel) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *appModel) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
