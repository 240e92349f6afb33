package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docvec/internal/config"
	"docvec/internal/evaluation"
)

// ExperimentPort is the TUI-facing subset of the experiment service.
type ExperimentPort interface {
	Experiments() []config.ExperimentConfig
	RunExperiment(i int) (evaluation.Record, error)
	Export() (string, error)
	Summary() evaluation.Summary
}

type experimentDoneMsg struct {
	index  int
	record evaluation.Record
	err    error
}

type exportedMsg struct {
	path string
	err  error
}

// Model is the Bubble Tea model that runs experiments one after another and
// then shows the comparison table.
type Model struct {
	service  ExperimentPort
	spinner  spinner.Model
	progress progress.Model
	table    table.Model
	finished []string
	current  int
	status   string
	done     bool
	err      error
}

// New creates a new TUI model instance.
func New(service ExperimentPort) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle))
	return Model{
		service:  service,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		status:   "Starting...",
	}
}

// Err returns the failure that stopped the run, if any.
func (m Model) Err() error { return m.err }

// Init starts the spinner and the first experiment.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runCmd(0))
}

func (m Model) runCmd(i int) tea.Cmd {
	if i >= len(m.service.Experiments()) {
		return m.exportCmd()
	}
	return func() tea.Msg {
		rec, err := m.service.RunExperiment(i)
		return experimentDoneMsg{index: i, record: rec, err: err}
	}
}

func (m Model) exportCmd() tea.Cmd {
	return func() tea.Msg {
		path, err := m.service.Export()
		return exportedMsg{path: path, err: err}
	}
}

// Update handles key, progress and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = max(20, min(80, msg.Width-4))
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if m.done && (msg.String() == "q" || msg.String() == "esc") {
			return m, tea.Quit
		}
		if m.done && m.err == nil {
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
	case experimentDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.done = true
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.finished = append(m.finished, finishedLine(msg.record))
		m.current = msg.index + 1
		return m, m.runCmd(m.current)
	case exportedMsg:
		m.done = true
		if msg.err != nil {
			m.err = msg.err
			m.status = "Export failed: " + msg.err.Error()
			return m, nil
		}
		m.table = SummaryTable(m.service.Summary(), true)
		m.status = fmt.Sprintf("Summary written to %s", msg.path)
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders progress while running and the summary table once done.
func (m Model) View() string {
	header := headerStyle.Render("DocVec Model Evaluation")
	total := len(m.service.Experiments())
	var b strings.Builder
	b.WriteString(header + "\n\n")
	if !m.done {
		if m.current < total {
			name := m.service.Experiments()[m.current].Name
			b.WriteString(fmt.Sprintf("%s Training %s (%d/%d)\n", m.spinner.View(), name, m.current+1, total))
		} else {
			b.WriteString(fmt.Sprintf("%s Exporting summary of %d models...\n", m.spinner.View(), total))
		}
		b.WriteString(m.progress.ViewAs(float64(min(m.current, total))/float64(max(1, total))) + "\n\n")
	}
	for _, line := range m.finished {
		if !m.done || m.err != nil {
			b.WriteString(line + "\n")
		}
	}
	if m.done && m.err == nil {
		b.WriteString(tableBoxStyle.Render(m.table.View()) + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.status) + "\n")
	} else {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	if m.done {
		b.WriteString(helpStyle.Render("q: quit  ↑/↓: scroll"))
	}
	return b.String()
}

func finishedLine(r evaluation.Record) string {
	mark := checkStyle.Render("✓")
	return fmt.Sprintf("%s %-16s self-recognition %.3f  cs test p=%.3g", mark, r.Name, r.SelfRecognitionRate, r.CosineTest.PValue)
}

// SummaryTable renders the key columns of the summary as a table.
func SummaryTable(s evaluation.Summary, focused bool) table.Model {
	cols := []table.Column{
		{Title: "Model", Width: 14},
		{Title: "Corpus", Width: 13},
		{Title: "Dim", Width: 4},
		{Title: "SelfRec", Width: 7},
		{Title: "CS tr p", Width: 9},
		{Title: "CS ts p", Width: 9},
		{Title: "ED tr p", Width: 9},
		{Title: "ED ts p", Width: 9},
		{Title: "CS ts T/F mean", Width: 15},
	}
	width := 0
	for _, c := range cols {
		width += c.Width + 2
	}
	rows := make([]table.Row, 0, s.Len())
	for _, r := range s.Records {
		rows = append(rows, table.Row{
			r.Name,
			r.CorpusLabel,
			strconv.Itoa(r.VectorSize),
			fmt.Sprintf("%.3f", r.SelfRecognitionRate),
			pValue(r.CosineTrain),
			pValue(r.CosineTest),
			pValue(r.EuclideanTrain),
			pValue(r.EuclideanTest),
			fmt.Sprintf("%.3f/%.3f", r.CosineTest.True.Mean, r.CosineTest.False.Mean),
		})
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(focused),
		table.WithWidth(width),
		table.WithHeight(max(1, min(len(rows), 15))),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	st.Selected = st.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(st)
	return t
}

// RenderSummary returns the summary table as plain text for non-interactive output.
func RenderSummary(s evaluation.Summary) string {
	return tableBoxStyle.Render(SummaryTable(s, false).View())
}

// pValue marks significant results with an asterisk.
func pValue(ms evaluation.MetricStats) string {
	v := fmt.Sprintf("%.2e", ms.PValue)
	if ms.Significant {
		v += "*"
	}
	return v
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	checkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tableBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
