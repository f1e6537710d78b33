package dashboard

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fprochazka/hydraping/internal/timeline"
	"github.com/fprochazka/hydraping/pkg/endpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_ViewRendersLabelAndQuitsOnQ(t *testing.T) {
	ep := endpoint.Endpoint{ID: "ep1", Label: "example.com", ApplicableChecks: []endpoint.CheckKind{endpoint.CheckIcmp}}
	store := timeline.NewStore([]endpoint.Endpoint{ep}, 10)
	m := NewModel(store, []endpoint.Endpoint{ep}, PlainTheme, DefaultThresholds, 250*time.Millisecond)

	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	view := model.(*Model).View()
	assert.Contains(t, view, "example.com")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "example.com")
}

func TestModel_ICMPNoticeRendersOnce(t *testing.T) {
	store := timeline.NewStore(nil, 10)
	m := NewModel(store, nil, PlainTheme, DefaultThresholds, time.Second)

	m.Update(ICMPNoticeMsg{Reason: "missing CAP_NET_RAW"})
	assert.Contains(t, m.View(), "ICMP disabled: missing CAP_NET_RAW")
	assert.Equal(t, 1, strings.Count(m.View(), "ICMP disabled"))
}
