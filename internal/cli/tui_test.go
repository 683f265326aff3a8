package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kottinov/website-builder/pkg/document"
)

func summary(id, kind string, order int, parent string) document.Summary {
	s := document.Summary{ID: id, Kind: kind, OrderIndex: order}
	if parent != "" {
		s.ParentID = &parent
	}
	return s
}

func TestBuildTree(t *testing.T) {
	rows := []document.Summary{
		summary("T2", "TEXT", 1, "S1"),
		summary("S2", "SECTION", 1, ""),
		summary("T1", "TEXT", 0, "S1"),
		summary("S1", "SECTION", 0, ""),
		summary("B1", "BUTTON", 0, "T1"),
		summary("ORPHAN", "IMAGE", 0, "GONE"),
		summary("X", "TEXT", 0, "Y"),
		summary("Y", "TEXT", 0, "X"),
	}

	var got []string
	var depths []int
	for _, r := range buildTree(rows) {
		got = append(got, r.ID)
		depths = append(depths, r.Depth)
	}
	assert.Equal(t, []string{"S1", "T1", "B1", "T2", "ORPHAN", "S2", "X", "Y"}, got)
	assert.Equal(t, []int{0, 1, 2, 1, 0, 0, 0, 1}, depths)
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowseModelNavigation(t *testing.T) {
	rows := []document.Summary{
		summary("S1", "SECTION", 0, ""),
		summary("T1", "TEXT", 0, "S1"),
		summary("S2", "SECTION", 1, ""),
	}
	var m tea.Model = newBrowseModel("site/home.json", rows, map[string]string{"T1": `{"id": "T1"}`})

	m, _ = m.Update(keyPress("up"))
	assert.Equal(t, 0, m.(BrowseModel).Cursor)

	m, _ = m.Update(keyPress("down"))
	m, _ = m.Update(keyPress("j"))
	m, _ = m.Update(keyPress("down"))
	assert.Equal(t, 2, m.(BrowseModel).Cursor, "cursor stops at the last row")
	assert.Contains(t, m.View(), "site/home.json")
	assert.Contains(t, m.View(), "[3/3]")

	m, _ = m.Update(keyPress("k"))
	m, _ = m.Update(keyPress("enter"))
	require.Equal(t, "T1", m.(BrowseModel).Open)
	assert.Contains(t, m.View(), `{"id": "T1"}`)

	m, cmd := m.Update(keyPress("esc"))
	assert.Empty(t, m.(BrowseModel).Open)
	assert.Nil(t, cmd, "esc closes the detail view without quitting")

	_, cmd = m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestBrowseModelScrolls(t *testing.T) {
	var rows []document.Summary
	for i := range 10 {
		rows = append(rows, summary(string(rune('A'+i)), "SECTION", i, ""))
	}
	var m tea.Model = newBrowseModel("p.json", rows, nil)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 8})
	require.Equal(t, 5, m.(BrowseModel).Height)

	for range 7 {
		m, _ = m.Update(keyPress("down"))
	}
	assert.Equal(t, 7, m.(BrowseModel).Cursor)
	assert.Equal(t, 3, m.(BrowseModel).Offset)
}
