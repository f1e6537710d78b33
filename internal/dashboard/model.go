package dashboard

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fprochazka/hydraping/internal/timeline"
	"github.com/fprochazka/hydraping/pkg/endpoint"
)

// RefreshMsg asks the model to rebuild its Frame from the store's current
// contents. Sent on a ticker by the runtime at min(4Hz, 1/interval), per
// spec.md §4.6.
type RefreshMsg struct{}

// ICMPNoticeMsg surfaces the one-time "ICMP disabled" notice spec.md §4.2
// requires render exactly once, not per-endpoint.
type ICMPNoticeMsg struct {
	Reason string
}

// Model is the Bubbletea model driving the live dashboard, grounded on the
// teacher's MTRModel/TUIModel (sync.RWMutex-guarded state, spinner,
// WindowSizeMsg-driven width tracking).
type Model struct {
	mu            sync.RWMutex
	store         *timeline.Store
	endpoints     []endpoint.Endpoint
	theme         Theme
	thresholds    Thresholds
	refreshEvery  time.Duration
	width         int
	height        int
	spinner       spinner.Model
	icmpNotice    string
	quitRequested bool
}

// NewModel builds a dashboard Model. theme controls color (pass PlainTheme
// for --no-color).
func NewModel(store *timeline.Store, endpoints []endpoint.Endpoint, theme Theme, thresholds Thresholds, refreshEvery time.Duration) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &Model{
		store:        store,
		endpoints:    endpoints,
		theme:        theme,
		thresholds:   thresholds,
		refreshEvery: refreshEvery,
		spinner:      s,
	}
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshEvery, func(time.Time) tea.Msg { return RefreshMsg{} })
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tickCmd())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.mu.Lock()
			m.quitRequested = true
			m.mu.Unlock()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.mu.Lock()
		m.width, m.height = msg.Width, msg.Height
		m.mu.Unlock()

	case RefreshMsg:
		return m, m.tickCmd()

	case ICMPNoticeMsg:
		m.mu.Lock()
		m.icmpNotice = fmt.Sprintf("ICMP disabled: %s", msg.Reason)
		m.mu.Unlock()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	m.mu.RLock()
	width := m.width
	notice := m.icmpNotice
	quitting := m.quitRequested
	m.mu.RUnlock()
	if width <= 0 {
		width = 80
	}

	snapshots := make([]timeline.Snapshot, 0, len(m.endpoints))
	for _, ep := range m.endpoints {
		snapshots = append(snapshots, m.store.Snapshot(ep))
	}
	frame := BuildFrame(snapshots, width)

	var b strings.Builder
	if notice != "" {
		b.WriteString(m.theme.Problem.Render(notice))
		b.WriteString("\n\n")
	}

	for _, row := range frame.Rows {
		b.WriteString(m.theme.Label.Render(row.Label))
		b.WriteString(" ")
		for _, cell := range row.Cells {
			b.WriteString(m.theme.RenderCell(cell, m.thresholds))
		}
		b.WriteString(" ")
		b.WriteString(row.LatencyText)
		b.WriteString("\n")
	}

	if len(frame.ProblemLines) > 0 {
		b.WriteString("\n")
		for _, line := range frame.ProblemLines {
			b.WriteString(m.theme.Problem.Render(line))
			b.WriteString("\n")
		}
	}

	if quitting {
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(m.spinner.View())
	b.WriteString(" Press 'q' to quit")
	return b.String()
}
