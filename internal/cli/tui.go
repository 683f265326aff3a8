package cli

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/kottinov/website-builder/pkg/document"
	"github.com/kottinov/website-builder/pkg/engine"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand opens an interactive tree of the page's components.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the component tree interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				rows    []document.Summary
				details = make(map[string]string)
			)
			err := c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				return eng.View(cmd.Context(), c.pageKey(), func(d *document.Document) error {
					rows = d.List()
					for _, comp := range d.All() {
						var buf bytes.Buffer
						if err := writeJSON(&buf, comp); err != nil {
							return err
						}
						details[comp.ID] = buf.String()
					}
					return nil
				})
			})
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				printInfo(c.Out, "%s has no components", c.pageKey())
				printNextStep(c.Out, "Add a section", `wsb create --json '{"kind": "SECTION", ...}'`)
				return nil
			}

			p := tea.NewProgram(newBrowseModel(c.pageKey(), rows, details),
				tea.WithContext(cmd.Context()),
				tea.WithInput(c.In),
				tea.WithOutput(c.Out),
			)
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// Tree
// =============================================================================

// treeRow is one component placed at its depth in the relIn hierarchy.
type treeRow struct {
	document.Summary
	Depth int
}

// buildTree orders summaries depth-first by relIn parent and orderIndex.
// Components whose parent is not on the page are shown at the top level so
// nothing is hidden.
func buildTree(rows []document.Summary) []treeRow {
	known := make(map[string]bool, len(rows))
	for _, r := range rows {
		known[r.ID] = true
	}
	children := make(map[string][]document.Summary)
	var roots []document.Summary
	for _, r := range rows {
		if r.ParentID == nil || !known[*r.ParentID] || *r.ParentID == r.ID {
			roots = append(roots, r)
			continue
		}
		children[*r.ParentID] = append(children[*r.ParentID], r)
	}
	byOrder := func(a, b document.Summary) int { return cmp.Compare(a.OrderIndex, b.OrderIndex) }
	slices.SortStableFunc(roots, byOrder)
	for _, kids := range children {
		slices.SortStableFunc(kids, byOrder)
	}

	out := make([]treeRow, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	var visit func(s document.Summary, depth int)
	visit = func(s document.Summary, depth int) {
		if seen[s.ID] {
			return
		}
		seen[s.ID] = true
		out = append(out, treeRow{Summary: s, Depth: depth})
		for _, child := range children[s.ID] {
			visit(child, depth+1)
		}
	}
	for _, r := range roots {
		visit(r, 0)
	}
	// Parent cycles never reach a root; list them flat at the end.
	for _, r := range rows {
		if !seen[r.ID] {
			visit(r, 0)
		}
	}
	return out
}

// =============================================================================
// BrowseModel - Interactive component tree
// =============================================================================

type browseKeyMap struct {
	Up, Down, Open, Back, Quit key.Binding
}

var browseKeys = browseKeyMap{
	Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open: key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "details")),
	Back: key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// BrowseModel is the bubbletea model for the component browser.
type BrowseModel struct {
	Page    string
	Rows    []treeRow
	Details map[string]string
	Cursor  int
	Height  int
	Offset  int
	// Open is the id whose full record is shown, or "".
	Open   string
	Detail viewport.Model
}

func newBrowseModel(pageKey string, rows []document.Summary, details map[string]string) BrowseModel {
	return BrowseModel{
		Page:    pageKey,
		Rows:    buildTree(rows),
		Details: details,
		Height:  15,
		Detail:  viewport.New(100, 20),
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Open != "" {
			return m.updateDetail(msg)
		}
		switch {
		case key.Matches(msg, browseKeys.Quit, browseKeys.Back):
			return m, tea.Quit
		case key.Matches(msg, browseKeys.Up):
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case key.Matches(msg, browseKeys.Down):
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case key.Matches(msg, browseKeys.Open):
			if len(m.Rows) > 0 {
				m.Open = m.Rows[m.Cursor].ID
				m.Detail.SetContent(m.Details[m.Open])
				m.Detail.GotoTop()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
		m.Detail.Width = msg.Width
		m.Detail.Height = max(msg.Height-4, 5)
	}
	return m, nil
}

// updateDetail handles keys while a component's record is shown; other keys
// scroll the record.
func (m BrowseModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, browseKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, browseKeys.Back, browseKeys.Open):
		m.Open = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.Detail, cmd = m.Detail.Update(msg)
	return m, cmd
}

func (m BrowseModel) View() string {
	var b strings.Builder

	if m.Open != "" {
		b.WriteString(StyleTitle.Render(m.Open))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("↑/↓ scroll  esc back  q quit"))
		b.WriteString("\n\n")
		b.WriteString(m.Detail.View())
		return b.String()
	}

	b.WriteString(StyleTitle.Render(m.Page))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(helpLine(browseKeys.Up, browseKeys.Down, browseKeys.Open, browseKeys.Quit)))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		kind := strings.Repeat("  ", r.Depth) + r.Kind
		rows = append(rows, []string{cursor, kind, r.ID, fmt.Sprint(r.OrderIndex), truncate(deref(r.Title, "-"), 40)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Kind", "ID", "Order", "Title").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx == m.Cursor {
				return listSelectedStyle
			}
			if idx < len(m.Rows) && m.Rows[idx].Depth == 0 && col == 1 {
				return styleSection
			}
			if col == 2 || col == 3 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, len(bindings))
	for i, kb := range bindings {
		h := kb.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return strings.Join(parts, "  ")
}
