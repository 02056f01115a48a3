package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nvandessel/nback/internal/constants"
	"github.com/nvandessel/nback/internal/history"
	"github.com/nvandessel/nback/internal/scoring"
	"github.com/nvandessel/nback/internal/session"
	"github.com/nvandessel/nback/internal/stimulus"
)

const helpText = "a: position match  l: sound match  s: start/stop  q: quit"

// View renders the header, the grid, feedback and the daily goal.
func (m Model) View() string {
	sections := []string{m.header(), ""}

	switch m.state {
	case stateFinished:
		sections = append(sections, m.resultView())
	default:
		sections = append(sections, m.grid(), m.soundLine(), m.feedbackLine())
	}

	if m.err != nil {
		sections = append(sections, "", m.styles.Error.Render(m.err.Error()))
	}
	sections = append(sections, "", m.goal(), "", m.styles.Help.Render(helpText))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) header() string {
	title := m.styles.Title.Render(fmt.Sprintf("Dual %d-Back", m.settings.Level))
	var status string
	switch m.state {
	case statePlaying:
		if m.hasView {
			status = fmt.Sprintf("remaining: %d", m.view.Remaining)
		} else {
			status = "get ready"
		}
	case stateFinished:
		status = "block finished"
		if m.quitting {
			status = "saving..."
		}
	default:
		status = "press s to start"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "   ", m.styles.Muted.Render(status))
}

// grid draws the 3x3 board with the current tile lit.
func (m Model) grid() string {
	lit := stimulus.Unset
	if m.hasView && m.lit {
		lit = m.view.Pair.Position()
	}
	rows := make([]string, 0, constants.GridSize)
	for r := 0; r < constants.GridSize; r++ {
		cells := make([]string, 0, constants.GridSize)
		for c := 0; c < constants.GridSize; c++ {
			sym := stimulus.SymbolForTile(r*constants.GridSize + c)
			switch {
			case sym == stimulus.Unset:
				cells = append(cells, m.styles.Center.Render("+"))
			case sym == lit:
				cells = append(cells, m.styles.LitTile.Render(litMark))
			default:
				cells = append(cells, m.styles.Tile.Render(""))
			}
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) soundLine() string {
	if !m.hasView {
		return m.styles.Sound.Render(" ")
	}
	return m.styles.Sound.Render("♪ " + m.view.SoundName)
}

func (m Model) feedbackLine() string {
	if m.pulse == nil {
		return " "
	}
	return m.styles.feedback(*m.pulse)
}

func (s Styles) feedback(fb scoring.Feedback) string {
	label := "Position"
	if fb.Modality == stimulus.Sound {
		label = "Sound"
	}
	if fb.Outcome == scoring.Correct {
		return s.Correct.Render(label + " ✓")
	}
	return s.Incorrect.Render(label + " ✗")
}

func (m Model) resultView() string {
	if m.result == nil {
		return ""
	}
	return m.styles.Result.Render(FormatResult(*m.result))
}

// FormatResult renders a finished block's tallies and verdict message.
func FormatResult(r session.Result) string {
	v := r.Verdict
	c := v.Counters
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-10s %5s %7s %7s\n", "", "hits", "misses", "errors")
	fmt.Fprintf(&sb, "%-10s %5d %7d %7d\n", "Position", c.PosHits, c.PosMisses, c.PosErrors)
	fmt.Fprintf(&sb, "%-10s %5d %7d %7d\n", "Sound", c.SoundHits, c.SoundMisses, c.SoundErrors)
	fmt.Fprintf(&sb, "\n%s", v.Message)
	return sb.String()
}

func (m Model) goal() string {
	pct := history.Progress(m.runsToday)
	label := m.styles.Muted.Render(fmt.Sprintf("today %d/%d", m.runsToday, constants.DailyGoal))
	return lipgloss.JoinHorizontal(lipgloss.Center, m.progress.ViewAs(pct/100), "  ", label)
}
