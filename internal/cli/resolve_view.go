package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/dutyroster/internal/cli/formatter"
	"github.com/alexanderramin/dutyroster/internal/resolver"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

// autoFillDoneMsg carries the report of an auto-fill run started with "a".
type autoFillDoneMsg struct {
	report resolver.FillReport
}

// resolveModel lets an operator step through open slots and close them one
// at a time. All schedule changes go through the resolver, so every step
// keeps the hard constraints and can be undone.
type resolveModel struct {
	ctx   context.Context
	res   *resolver.Resolver
	depth int

	gaps    []resolver.Gap
	cursor  int
	status  string
	failed  bool
	busy    bool
	actions int

	quitting bool
}

func newResolveModel(ctx context.Context, res *resolver.Resolver, depth int) *resolveModel {
	m := &resolveModel{ctx: ctx, res: res, depth: depth}
	m.refresh()
	return m
}

func (m *resolveModel) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "direct fill")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "swap chain")),
		key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto-fill")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "done")),
	}
}

func (m *resolveModel) Init() tea.Cmd { return nil }

func (m *resolveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case autoFillDoneMsg:
		m.busy = false
		m.refresh()
		r := msg.report
		m.report(nil, "Auto-fill: %d direct, %d swap chain(s), %d backtrack(s), stopped by %s",
			r.DirectFills, r.SwapChainsApplied, r.Backtracks, r.StoppedBy)
		m.actions += r.DirectFills + r.SwapChainsApplied
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}

		switch msg.String() {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.gaps)-1 {
				m.cursor++
			}
		case "enter":
			m.directFill()
		case "s":
			m.applySwap()
		case "u":
			if err := m.res.Undo(); err != nil {
				m.report(err, "")
			} else {
				m.refresh()
				m.report(nil, "Undid last change")
			}
		case "a":
			if len(m.gaps) == 0 {
				return m, nil
			}
			m.busy = true
			m.status = "Auto-filling..."
			m.failed = false
			return m, m.autoFill()
		}
	}
	return m, nil
}

func (m *resolveModel) selected() (resolver.Gap, bool) {
	if m.cursor < 0 || m.cursor >= len(m.gaps) {
		return resolver.Gap{}, false
	}
	return m.gaps[m.cursor], true
}

func (m *resolveModel) directFill() {
	g, ok := m.selected()
	if !ok {
		return
	}
	name, err := m.res.TryDirectFill(g.Ref())
	if err != nil {
		m.report(err, "")
		return
	}
	m.actions++
	m.refresh()
	m.report(nil, "Filled %s with %s", g.Ref(), name)
}

func (m *resolveModel) applySwap() {
	g, ok := m.selected()
	if !ok {
		return
	}
	chains := m.res.FindSwapChains(m.ctx, g.Ref(), m.depth)
	if len(chains) == 0 {
		m.report(errors.New("no swap chain found for "+g.Ref().String()), "")
		return
	}
	best := chains[0]
	if err := m.res.ApplyChain(best); err != nil {
		m.report(err, "")
		return
	}
	m.actions++
	m.refresh()
	m.report(nil, "Filled %s with %d move(s), disruption %.0f", g.Ref(), best.Depth(), best.TotalScore)
}

func (m *resolveModel) autoFill() tea.Cmd {
	ctx, res := m.ctx, m.res
	return func() tea.Msg {
		return autoFillDoneMsg{report: res.RunAutoFillWithBacktracking(ctx)}
	}
}

func (m *resolveModel) refresh() {
	m.gaps = m.res.AnalyzeGaps()
	if m.cursor >= len(m.gaps) {
		m.cursor = max(len(m.gaps)-1, 0)
	}
}

func (m *resolveModel) report(err error, format string, args ...any) {
	if err != nil {
		m.status = err.Error()
		m.failed = true
		return
	}
	m.status = fmt.Sprintf(format, args...)
	m.failed = false
}

func (m *resolveModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	s := m.res.Schedule()

	b.WriteString(formatter.Header("Resolve gaps") + "\n")
	b.WriteString(fmt.Sprintf("  %s  %d open\n\n", formatter.RenderProgress(scheduler.FillRate(s), 20), len(m.gaps)))

	if len(m.gaps) == 0 {
		b.WriteString(formatter.StyleGreen.Render("  Every slot is filled.") + "\n")
	}
	for i, g := range m.gaps {
		cursor := "  "
		ref := g.Ref().String()
		if i == m.cursor {
			cursor = formatter.StylePurple.Render("▸ ")
			ref = formatter.Bold(ref)
		}
		b.WriteString(fmt.Sprintf("%s%s  %s  %s\n", cursor, ref,
			formatter.PriorityStyle(g.Priority).Render(fmt.Sprintf("%5.1f", g.Priority)),
			formatter.Dim(string(g.Reason()))))
	}

	if g, ok := m.selected(); ok {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  with quota: %s\n", formatter.NameList(g.WithQuota)))
		b.WriteString(fmt.Sprintf("  over quota: %s\n", formatter.NameList(g.OverQuota)))
	}

	if m.status != "" {
		style := formatter.StyleGreen
		if m.failed {
			style = formatter.StyleRed
		}
		b.WriteString("\n  " + style.Render(m.status) + "\n")
	}

	hints := make([]string, 0, len(m.ShortHelp()))
	for _, k := range m.ShortHelp() {
		hints = append(hints, formatter.Dim(k.Help().Key+": "+k.Help().Desc))
	}
	b.WriteString("\n  " + strings.Join(hints, "  ") + "\n")
	return b.String()
}
