package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	_, ok := Parse("   ")
	assert.False(t, ok)

	c, ok := Parse(" SYNC ")
	require.True(t, ok)
	assert.Equal(t, CommandMsg{Name: CmdSync}, c)

	c, ok = Parse("search  weekly plan ")
	require.True(t, ok)
	assert.Equal(t, CommandMsg{Name: CmdSearch, Arg: "weekly plan"}, c)
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	m.Focus()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("export")})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Name: CmdExport}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestEscCancels(t *testing.T) {
	m := New(80, 24)
	m.Focus()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CancelMsg{}, cmd())
}

func TestNewCommandParses(t *testing.T) {
	m := New(80, 24)
	m.Focus()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(CmdNew)})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Name: CmdNew}, cmd())
}
