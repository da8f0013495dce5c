package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/jsondiagram/pkg/diagram"
	"github.com/matzehuels/jsondiagram/pkg/document"
	"github.com/matzehuels/jsondiagram/pkg/graph"
	"github.com/matzehuels/jsondiagram/pkg/search"
	"github.com/matzehuels/jsondiagram/pkg/visibility"
)

// Tree styles
var (
	treeCursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	treeNormalStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	treeDimStyle       = lipgloss.NewStyle().Foreground(colorDim)
	treeMatchStyle     = lipgloss.NewStyle().Foreground(colorYellow)
	treeLinkedStyle    = lipgloss.NewStyle().Foreground(colorBlue)
	treeFocusStyle     = lipgloss.NewStyle().Foreground(colorYellow).Bold(true).Underline(true)
	treeStatusErrStyle = lipgloss.NewStyle().Foreground(colorRed)
)

const explorerHelp = "↑/↓ move  ⏎ toggle  s select  / search  n/N next/prev  c/e collapse/expand all  " +
	"1-9 level  0 all  d density  r direction  L lock  x export  q quit"

// =============================================================================
// Messages
// =============================================================================

// searchTickMsg fires when the debounce delay of a search ticket elapsed.
type searchTickMsg struct{ ticket search.Ticket }

// documentMsg carries a re-imported document from the file watcher.
type documentMsg struct{ update document.Update }

type watcherClosedMsg struct{}

// =============================================================================
// ExplorerModel - Interactive diagram explorer
// =============================================================================

// ExplorerModel is the bubbletea model of the explore command. It renders
// the visible nodes of a diagram as an indented tree and maps keys onto
// diagram operations.
type ExplorerModel struct {
	ctx     context.Context
	view    *diagram.View
	source  string
	updates <-chan document.Update // nil without --watch

	Cursor int
	Offset int
	Height int

	searching bool
	query     string
	status    string
	statusErr bool
}

// NewExplorerModel creates an explorer over a loaded view. updates may be nil.
func NewExplorerModel(ctx context.Context, view *diagram.View, source string, updates <-chan document.Update) ExplorerModel {
	return ExplorerModel{
		ctx:     ctx,
		view:    view,
		source:  source,
		updates: updates,
		Height:  15,
	}
}

func (m ExplorerModel) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func waitForUpdate(ch <-chan document.Update) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return watcherClosedMsg{}
		}
		return documentMsg{update: u}
	}
}

func (m ExplorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.searching {
			m, cmd = m.updateSearch(msg)
		} else {
			m, cmd = m.updateKey(msg)
			if cmd != nil {
				return m, cmd
			}
		}

	case searchTickMsg:
		if results, ok := m.view.FireSearch(m.ctx, msg.ticket); ok {
			m.setStatus(fmt.Sprintf("%d matches", len(results)), false)
		}

	case documentMsg:
		if msg.update.Err != nil {
			m.setStatus("reload failed: "+msg.update.Err.Error(), true)
		} else {
			res := m.view.Load(m.ctx, msg.update.Value)
			m.Cursor, m.Offset = 0, 0
			if res.Err != nil {
				m.setStatus("reloaded, layout failed: "+res.Err.Error(), true)
			} else {
				m.setStatus("reloaded "+filepath.Base(m.source), false)
			}
		}
		cmd = waitForUpdate(m.updates)

	case watcherClosedMsg:
		m.updates = nil

	case tea.WindowSizeMsg:
		m.Height = msg.Height - 14
		if m.Height < 5 {
			m.Height = 5
		}
	}

	m.followViewport()
	m.clamp()
	return m, cmd
}

// updateKey handles keys outside search input. A non-nil command ends the
// update immediately.
func (m ExplorerModel) updateKey(msg tea.KeyMsg) (ExplorerModel, tea.Cmd) {
	rows := visibleIDs(m.view.Graph())
	current := ""
	if m.Cursor < len(rows) {
		current = rows[m.Cursor]
	}

	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.Cursor--
	case "down", "j":
		m.Cursor++
	case "pgup":
		m.Cursor -= m.Height
	case "pgdown":
		m.Cursor += m.Height
	case "home", "g":
		m.Cursor = 0
	case "end", "G":
		m.Cursor = len(rows) - 1
	case "enter", " ":
		m.view.Toggle(current)
	case "s":
		m.view.ClickNode(current)
	case "f":
		m.view.Focus(current)
	case "esc":
		m.view.ClickPane()
		m.view.ClearSearch()
		m.status = ""
	case "/":
		m.searching = true
		m.query = ""
	case "n":
		m.view.NextResult()
	case "N":
		m.view.PrevResult()
	case "c":
		m.view.CollapseAll()
	case "e":
		m.view.ExpandAll()
	case "0":
		m.view.SetLevelThreshold(visibility.NoLevelLimit)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.view.SetLevelThreshold(int(key[0] - '0'))
	case "d":
		m.relayout(m.view.SetDensity(m.ctx, m.view.Density().Next()).Err)
	case "r":
		m.relayout(m.view.SetDirection(m.ctx, m.view.Direction().Toggle()).Err)
	case "L":
		if m.view.ToggleLock() {
			m.setStatus("nodes locked", false)
		} else {
			m.setStatus("nodes unlocked", false)
		}
	case "x":
		m.export()
	}

	// Keep the cursor on the same node when rows above it appear or vanish.
	if current != "" && m.isStructural(msg.String()) {
		m.moveTo(current)
	}
	return m, nil
}

func (m ExplorerModel) isStructural(key string) bool {
	switch key {
	case "enter", " ", "c", "e", "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return true
	}
	return false
}

// updateSearch handles keys while the search prompt is open. Every edit
// schedules a debounced search.
func (m ExplorerModel) updateSearch(msg tea.KeyMsg) (ExplorerModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		if m.query != "" {
			results := m.view.SearchNow(m.ctx, m.query)
			m.setStatus(fmt.Sprintf("%d matches", len(results)), false)
		}
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.query = ""
		m.view.ClearSearch()
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.query += string(msg.Runes)
	default:
		return m, nil
	}

	t := m.view.Search(m.ctx, m.query)
	return m, tea.Tick(t.Delay, func(time.Time) tea.Msg { return searchTickMsg{ticket: t} })
}

func (m *ExplorerModel) relayout(err error) {
	if err != nil {
		m.setStatus("layout failed: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("%s · %s", m.view.Direction(), m.view.Density()), false)
}

func (m *ExplorerModel) export() {
	doc := m.view.Document()
	if doc == nil {
		m.setStatus("nothing to export", true)
		return
	}
	path, err := document.ExportFile(".", doc)
	if err != nil {
		m.setStatus("export failed: "+err.Error(), true)
		return
	}
	m.setStatus("exported "+path, false)
}

func (m *ExplorerModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// followViewport moves the cursor to the node of the latest single-node
// viewport request (focus from search navigation).
func (m *ExplorerModel) followViewport() {
	for _, req := range m.view.TakeViewportRequests() {
		if len(req.NodeIDs) == 1 {
			m.moveTo(req.NodeIDs[0])
		}
	}
}

func (m *ExplorerModel) moveTo(id string) {
	for i, row := range visibleIDs(m.view.Graph()) {
		if row == id {
			m.Cursor = i
			return
		}
	}
}

func (m *ExplorerModel) clamp() {
	n := len(visibleIDs(m.view.Graph()))
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	if m.Offset < 0 {
		m.Offset = 0
	}
}

// visibleIDs lists the ids of non-hidden nodes in document order.
func visibleIDs(g *graph.Graph) []string {
	var ids []string
	for _, n := range g.Nodes() {
		if !n.Hidden {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// =============================================================================
// Rendering
// =============================================================================

func (m ExplorerModel) View() string {
	s := m.view.Scene()
	rows := s.VisibleNodes()
	var b strings.Builder

	b.WriteString(StyleTitle.Render(appName) + " " + StyleValue.Render(filepath.Base(m.source)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(headerLine(s, len(rows))))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(rows))
	for i := m.Offset; i < end; i++ {
		b.WriteString(renderRow(rows[i], i == m.Cursor))
		b.WriteString("\n")
	}
	if len(rows) == 0 {
		b.WriteString(treeDimStyle.Render("  (empty diagram)"))
		b.WriteString("\n")
	}

	if m.Cursor < len(rows) {
		b.WriteString("\n")
		b.WriteString(renderDetails(rows[m.Cursor]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footer(s))
	return b.String()
}

func headerLine(s diagram.Scene, visible int) string {
	level := "all levels"
	if s.Level < visibility.NoLevelLimit {
		level = fmt.Sprintf("level %d/%d", s.Level, s.MaxDepth)
	}
	parts := []string{
		string(s.Direction),
		string(s.Density),
		level,
		fmt.Sprintf("%d/%d nodes", visible, len(s.Nodes)),
	}
	if s.Locked {
		parts = append(parts, "locked")
	}
	if s.Selected != "" {
		parts = append(parts, "selected "+s.Selected)
	}
	return strings.Join(parts, " · ")
}

func renderRow(n graph.Node, isCursor bool) string {
	cursor := "  "
	if isCursor {
		cursor = "❯ "
	}
	marker := "  "
	if n.ChildrenCount > 0 {
		marker = "▾ "
		if n.Collapsed {
			marker = "▸ "
		}
	}

	label := n.Label
	switch {
	case n.IsArray():
		label += fmt.Sprintf(" [%d]", n.Length)
	case len(n.Properties) > 0:
		label += fmt.Sprintf(" {%d}", len(n.Properties))
	}

	style := treeNormalStyle
	switch {
	case n.Focused:
		style = treeFocusStyle
	case n.Highlighted:
		style = treeMatchStyle
	case n.Linked:
		style = treeLinkedStyle
	case n.Dimmed:
		style = treeDimStyle
	}
	if isCursor && !n.Focused && !n.Highlighted {
		style = treeCursorStyle
	}

	line := cursor + strings.Repeat("  ", n.Depth-1) + marker + style.Render(label)
	if n.Collapsed && n.ChildrenCount > 0 {
		line += treeDimStyle.Render(fmt.Sprintf("  +%d", n.ChildrenCount))
	}
	return line
}

// renderDetails shows the properties and geometry of the node under the cursor.
func renderDetails(n graph.Node) string {
	geometry := StyleDim.Render(fmt.Sprintf("%s  %s at (%.0f, %.0f)  %.0f×%.0f",
		n.ID, n.Kind, n.Position.X, n.Position.Y, n.Size.Width, n.Size.Height))
	if len(n.Properties) == 0 {
		return geometry
	}

	rows := make([][]string, len(n.Properties))
	for i, p := range n.Properties {
		rows[i] = []string{p.Key, p.Value}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Key", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return geometry + "\n" + t.Render()
}

func (m ExplorerModel) footer(s diagram.Scene) string {
	var b strings.Builder
	switch {
	case m.searching:
		b.WriteString(StyleHighlight.Render("/") + m.query + StyleDim.Render("█"))
		if s.Search.Pending {
			b.WriteString(StyleDim.Render("  …"))
		}
		b.WriteString("\n")
	case s.Search.Term != "":
		pos := 0
		if len(s.Search.Results) > 0 {
			pos = s.Search.Cursor + 1
		}
		b.WriteString(StyleDim.Render(fmt.Sprintf("search %q  [%d/%d]", s.Search.Term, pos, len(s.Search.Results))))
		b.WriteString("\n")
	}
	if s.Problem != nil {
		b.WriteString(treeStatusErrStyle.Render(s.Problem.Message))
		b.WriteString("\n")
	}
	if m.status != "" {
		if m.statusErr {
			b.WriteString(treeStatusErrStyle.Render(m.status))
		} else {
			b.WriteString(StyleDim.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render(explorerHelp))
	return b.String()
}
