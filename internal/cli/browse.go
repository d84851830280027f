package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtree/pkg/outline"
)

const barWidth = 20

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "browse <file.org>",
		Short: "Explore an outline tree interactively",
		Long: `Explore an outline tree in the terminal.

Every header is listed with its level and weight. Collapse and expand
subtrees to see where the text of a document is concentrated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(&flags)
			if err := opts.ValidateForParse(); err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			res, err := c.loadOutline(cmd.Context(), runner, args[0], opts)
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewOutlineModel(res, documentName(args[0])), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	flags.addParseFlags(cmd)
	return cmd
}

// =============================================================================
// OutlineModel - Interactive tree browser
// =============================================================================

// outlineRow is one node of the flattened tree.
type outlineRow struct {
	id       string
	label    string
	level    int
	weight   int
	children int
}

// OutlineModel is the bubbletea model for browsing an outline tree.
type OutlineModel struct {
	Title     string
	Cursor    int
	Offset    int
	Height    int
	Collapsed map[string]bool

	res       *outline.Result
	maxWeight int
}

// NewOutlineModel creates a browser over res with every node expanded.
func NewOutlineModel(res *outline.Result, title string) OutlineModel {
	m := OutlineModel{
		Title:     title,
		Height:    15,
		Collapsed: map[string]bool{},
		res:       res,
	}
	for _, n := range res.Tree.Nodes() {
		if n.ID != res.Root {
			m.maxWeight = max(m.maxWeight, n.Weight)
		}
	}
	return m
}

// visible flattens the tree in pre-order, skipping collapsed subtrees.
func (m OutlineModel) visible() []outlineRow {
	var rows []outlineRow
	var visit func(id string)
	visit = func(id string) {
		n, ok := m.res.Tree.Node(id)
		if !ok {
			return
		}
		children := m.res.Tree.Children(id)
		label := n.Label
		if label == "" {
			label = n.ID
		}
		rows = append(rows, outlineRow{
			id:       id,
			label:    label,
			level:    n.Level,
			weight:   n.Weight,
			children: len(children),
		})
		if m.Collapsed[id] {
			return
		}
		for _, child := range children {
			visit(child)
		}
	}
	visit(m.res.Root)
	return rows
}

func (m OutlineModel) Init() tea.Cmd {
	return nil
}

func (m OutlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	rows := m.visible()
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(rows)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = len(rows) - 1
		case "enter", " ":
			m = m.toggle(rows[m.Cursor].id)
		case "left", "h":
			m = m.collapse(rows[m.Cursor].id, true)
		case "right", "l":
			m = m.collapse(rows[m.Cursor].id, false)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-7, 5)
	}
	return m.scroll(), nil
}

func (m OutlineModel) toggle(id string) OutlineModel {
	return m.collapse(id, !m.Collapsed[id])
}

func (m OutlineModel) collapse(id string, collapsed bool) OutlineModel {
	if len(m.res.Tree.Children(id)) == 0 {
		return m
	}
	next := make(map[string]bool, len(m.Collapsed)+1)
	for k, v := range m.Collapsed {
		next[k] = v
	}
	if collapsed {
		next[id] = true
	} else {
		delete(next, id)
	}
	m.Collapsed = next
	return m
}

// scroll keeps the cursor inside the visible window.
func (m OutlineModel) scroll() OutlineModel {
	if n := len(m.visible()); m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m OutlineModel) View() string {
	var b strings.Builder
	rows := m.visible()

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ fold  ←/→ collapse/expand  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(rows))
	cells := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		fold := " "
		if r.children > 0 {
			fold = "▾"
			if m.Collapsed[r.id] {
				fold = "▸"
			}
		}
		label := strings.Repeat("  ", r.level) + fold + " " + r.label
		cells = append(cells, []string{
			cursor,
			label,
			fmt.Sprint(r.level),
			fmt.Sprint(r.weight),
			styleBar.Render(weightBar(r.weight, m.maxWeight, barWidth)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Header", "Level", "Weight", "").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col == 2 || col == 3 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]  %d headers  %d lines",
		m.Cursor+1, len(rows), m.res.Headers, m.res.Lines)))

	return b.String()
}
