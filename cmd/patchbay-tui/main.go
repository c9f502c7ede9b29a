package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-patchbay/pkg/config"
	"github.com/dd0wney/cluso-patchbay/pkg/console"
	"github.com/dd0wney/cluso-patchbay/pkg/events"
	"github.com/dd0wney/cluso-patchbay/pkg/logging"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	outputBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	consoleView view = iota
	nodesView
	edgesView
	eventsView
	viewCount
)

var viewNames = []string{"Console", "Nodes", "Edges", "Events"}

const maxEvents = 200

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run command"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Tab, k.ShiftTab, k.Enter, k.Quit}}
}

type model struct {
	app         *console.App
	sub         *events.Subscription
	output      *bytes.Buffer
	currentView view
	input       textinput.Model
	nodeTable   table.Model
	edgeTable   table.Model
	events      []events.Event
	help        help.Model
	keys        keyMap
	width       int
	message     string
	messageErr  bool
}

// eventMsg carries one diagnostic from the bus into the update loop.
type eventMsg events.Event

// waitForEvent blocks on the subscription; it is re-issued after every event.
func waitForEvent(sub *events.Subscription) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub.Channel()
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func initialModel(app *console.App, sub *events.Subscription, output *bytes.Buffer) model {
	ti := textinput.New()
	ti.Placeholder = "create Oscillator osc frequency=220"
	ti.CharLimit = 200
	ti.Width = 60
	ti.Focus()

	return model{
		app:    app,
		sub:    sub,
		output: output,
		input:  ti,
		nodeTable: newTable([]table.Column{
			{Title: "ID", Width: 20},
			{Title: "Type", Width: 18},
			{Title: "Category", Width: 12},
			{Title: "In", Width: 4},
			{Title: "Out", Width: 4},
		}),
		edgeTable: newTable([]table.Column{
			{Title: "Source", Width: 24},
			{Title: "Target", Width: 24},
			{Title: "Edge ID", Width: 36},
		}),
		help: help.New(),
		keys: keys,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvent(m.sub))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case eventMsg:
		m.events = append(m.events, events.Event(msg))
		if len(m.events) > maxEvents {
			m.events = m.events[len(m.events)-maxEvents:]
		}
		m.refreshTables()
		return m, waitForEvent(m.sub)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.setView((m.currentView + 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.setView((m.currentView + viewCount - 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.Enter):
			if m.currentView == consoleView {
				if quit := m.execute(); quit {
					return m, tea.Quit
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.currentView {
	case consoleView:
		m.input, cmd = m.input.Update(msg)
	case nodesView:
		m.nodeTable, cmd = m.nodeTable.Update(msg)
	case edgesView:
		m.edgeTable, cmd = m.edgeTable.Update(msg)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) setView(v view) {
	m.currentView = v
	if v == consoleView {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// execute runs the input line through the console and reports whether the
// user asked to quit.
func (m *model) execute() bool {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return false
	}
	m.input.SetValue("")
	m.output.Reset()

	err := m.app.Execute(line)
	switch {
	case errors.Is(err, console.ErrQuit):
		return true
	case err != nil:
		m.message = err.Error()
		m.messageErr = true
	default:
		m.message = line
		m.messageErr = false
	}
	m.refreshTables()
	return false
}

func (m *model) refreshTables() {
	m.app.Locked(m.fillTables)
}

func (m *model) fillTables() {
	eng := m.app.Engine

	nodeRows := make([]table.Row, 0, eng.NodeCount())
	for _, id := range eng.NodeIDs() {
		n, _ := eng.Node(id)
		s := m.app.Schemas.SchemaFor(n.Type)
		nodeRows = append(nodeRows, table.Row{
			id,
			string(n.Type),
			n.Type.Category().String(),
			fmt.Sprint(len(s.Inputs)),
			fmt.Sprint(len(s.Outputs)),
		})
	}
	m.nodeTable.SetRows(nodeRows)

	edges := eng.Edges()
	edgeRows := make([]table.Row, 0, len(edges))
	for _, e := range edges {
		edgeRows = append(edgeRows, table.Row{
			e.SourceNode + "." + e.SourcePort,
			e.TargetNode + "." + e.TargetPort,
			e.ID,
		})
	}
	m.edgeTable.SetRows(edgeRows)
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Patchbay - audio graph engine"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case consoleView:
		s.WriteString(m.renderConsole())
	case nodesView:
		s.WriteString(m.renderTable("Nodes", m.nodeTable))
	case edgesView:
		s.WriteString(m.renderTable("Edges", m.edgeTable))
	case eventsView:
		s.WriteString(m.renderEvents())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	var rendered []string
	for i, name := range viewNames {
		if view(i) == m.currentView {
			rendered = append(rendered, activeTabStyle.Render(name))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m model) renderConsole() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Command"))
	s.WriteString("\n\n")
	s.WriteString(m.input.View())
	s.WriteString("\n\n")

	out := strings.TrimRight(m.output.String(), "\n")
	if out == "" {
		out = "Type 'help' for commands or 'demo' for a sample patch."
	}
	s.WriteString(outputBoxStyle.Render(out))
	return contentStyle.Render(s.String())
}

func (m model) renderTable(title string, t table.Model) string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(title))
	s.WriteString("\n\n")
	s.WriteString(t.View())
	return contentStyle.Render(s.String())
}

func (m model) renderEvents() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("Events (%d dropped)", m.app.Events.Dropped())))
	s.WriteString("\n\n")

	if len(m.events) == 0 {
		s.WriteString(helpStyle.Render("No events yet"))
		return contentStyle.Render(s.String())
	}

	start := 0
	if len(m.events) > 15 {
		start = len(m.events) - 15
	}
	for _, ev := range m.events[start:] {
		line := fmt.Sprintf("%s  %-20s %s", ev.Time.Format(time.TimeOnly), ev.Topic, describe(ev))
		switch ev.Topic {
		case events.SchemaFallback, events.ConnectionFallback:
			line = warnStyle.Render(line)
		case events.ConnectionRejected:
			line = errorStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}
	return contentStyle.Render(s.String())
}

func describe(ev events.Event) string {
	var parts []string
	for _, p := range []struct{ k, v string }{
		{"node", ev.NodeID},
		{"type", ev.UnitType},
		{"edge", ev.EdgeID},
		{"reason", ev.Reason},
	} {
		if p.v != "" {
			parts = append(parts, p.k+"="+p.v)
		}
	}
	return strings.Join(parts, " ")
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	envFile := flag.String("env", ".env", "dotenv file with PATCHBAY_* overrides")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The terminal belongs to the UI; keep log records in memory.
	logger := logging.NewRecorder()
	logger.SetLevel(cfg.Level())

	var output bytes.Buffer
	app, err := console.NewApp(cfg, logger, &output)
	if err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}
	defer app.Close()

	sub, err := app.Events.Subscribe(context.Background())
	if err != nil {
		log.Fatalf("Failed to subscribe to events: %v", err)
	}

	p := tea.NewProgram(initialModel(app, sub, &output), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
