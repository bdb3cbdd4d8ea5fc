package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const barWidth = 40

type TickMsg time.Time

// ProgressMsg carries the cumulative number of finished shuffles.
type ProgressMsg struct {
	Done, Total int
}

// DoneMsg ends the progress view. Err is shown if not nil.
type DoneMsg struct {
	Err error
}

// ProgressModel shows shuffle progress of a running permutation test.
type ProgressModel struct {
	title     string
	done      int
	total     int
	start     time.Time
	now       time.Time
	frame     int
	finished  bool
	cancelled bool
	err       error
}

func NewProgressModel(title string, total int) ProgressModel {
	now := time.Now()
	return ProgressModel{title: title, total: total, start: now, now: now}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/15, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m ProgressModel) Init() tea.Cmd {
	return tick()
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		}
	case ProgressMsg:
		m.done = msg.Done
		if msg.Total > 0 {
			m.total = msg.Total
		}
	case DoneMsg:
		m.finished = true
		m.err = msg.Err
		if msg.Err == nil {
			m.done = m.total
		}
		return m, tea.Quit
	case TickMsg:
		m.now = time.Time(msg)
		m.frame++
		if !m.finished {
			return m, tick()
		}
	}
	return m, nil
}

func (m ProgressModel) View() string {
	var s strings.Builder

	status := Spinner(m.frame)
	switch {
	case m.err != nil:
		status = ErrorStyle.Render("✗")
	case m.finished:
		status = Significant.Render("✓")
	case m.cancelled:
		status = NotSignificant.Render("■")
	}
	s.WriteString(status + " " + TitleStyle.Render(m.title) + "\n\n")

	s.WriteString(ProgressBar(m.Fraction(), barWidth))
	s.WriteString(fmt.Sprintf(" %d/%d\n", m.done, m.total))

	elapsed := m.now.Sub(m.start)
	s.WriteString(row("elapsed", elapsed.Truncate(time.Millisecond*100).String()) + "\n")
	if rate := m.Rate(); rate > 0 {
		s.WriteString(row("rate", fmt.Sprintf("%.0f/s", rate)) + "\n")
		if !m.finished {
			eta := time.Duration(float64(m.total-m.done) / rate * float64(time.Second))
			s.WriteString(row("eta", eta.Truncate(time.Second).String()) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString(ErrorStyle.Render(m.err.Error()) + "\n")
	}
	if !m.finished && !m.cancelled {
		s.WriteString("\n" + KeyHint.Render("q: cancel") + "\n")
	}
	return s.String()
}

// Fraction returns the completed share in [0, 1].
func (m ProgressModel) Fraction() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

// Rate returns shuffles per second so far.
func (m ProgressModel) Rate() float64 {
	elapsed := m.now.Sub(m.start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(m.done) / elapsed
}

func (m ProgressModel) Cancelled() bool { return m.cancelled }
