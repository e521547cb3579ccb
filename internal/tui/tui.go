package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// how often the dashboard refreshes its view of the quota
const pollInterval = 5 * time.Second

func NewApp() *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	columns := []table.Column{
		{Title: "Metric", Width: 28},
		{Title: "Value", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(8),
	)

	return &Model{
		table:   t,
		spinner: s,
		client:  NewQuotaClient(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.client.FetchCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "r":
			m.fetching = true
			return m, m.client.FetchCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case StatsMsg:
		m.stats = msg.stats
		m.available = &msg.available
		m.err = nil
		m.fetching = false
		m.lastFetch = time.Now()
		m.table.SetRows(statsRows(msg.stats))

		return m, tea.Tick(pollInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case StatsErrorMsg:
		m.err = msg.err
		m.fetching = false

		return m, tea.Tick(pollInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tickMsg:
		m.fetching = true
		return m, m.client.FetchCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *Model) View() string {
	view := titleStyle.Render(logo)
	view += subtitleStyle.Render("  generation quota dashboard") + "\n"

	if m.stats == nil && m.err == nil {
		return view + "\n  " + m.spinner.View() + " loading quota...\n"
	}

	if m.err != nil {
		view += errorStyle.Render(fmt.Sprintf("  error: %v", m.err)) + "\n"
	}

	if m.stats != nil {
		view += borderStyle.Render(m.table.View()) + "\n"

		if m.available != nil {
			if *m.available {
				view += availableStyle.Render("  ● ready to generate") + "\n"
			} else {
				view += exhaustedStyle.Render("  ● quota exhausted") + "\n"
			}
		}
	}

	if !m.lastFetch.IsZero() {
		status := fmt.Sprintf("  updated %s", m.lastFetch.Format("15:04:05"))
		if m.fetching {
			status += "  " + m.spinner.View()
		}
		view += infoStyle.Render(status) + "\n"
	}

	view += helpStyle.Render("  r: refresh • q: quit")

	return view
}

func statsRows(stats *StatsResponse) []table.Row {
	tier := "free"
	if stats.IsPaidUser {
		tier = "paid"
	}

	rows := []table.Row{
		{"Tier", tier},
		{"Generations used", strconv.Itoa(stats.Count)},
		{"Remaining today", strconv.Itoa(stats.RemainingToday)},
	}

	if stats.MonthlyLimit != nil {
		rows = append(rows, table.Row{"Monthly limit", strconv.Itoa(*stats.MonthlyLimit)})
	}

	if stats.RemainingMonthly != nil {
		rows = append(rows, table.Row{"Remaining this month", strconv.Itoa(*stats.RemainingMonthly)})
	}

	last := "never"
	if stats.LastGeneratedAt != nil {
		last = stats.LastGeneratedAt.Local().Format("2006-01-02 15:04")
	}

	rows = append(rows, table.Row{"Last generation", last})

	return rows
}
