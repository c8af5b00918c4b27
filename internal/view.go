package internal

import (
	"fmt"
	"math"
	"strings"
	"time"

	"countdown_tui/internal/timelog"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	projectItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	projectItemSelectedStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("170")).
					Background(lipgloss.Color("235")).
					Padding(0, 1)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 0)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	inputInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	logHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	logTagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	logTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func (m *Model) emptyStateView() string {
	return lipgloss.Place(
		80, 24,
		lipgloss.Center, lipgloss.Center,
		titleStyle.Render("Countdown TUI")+"\n\n"+
			inactiveStyle.Render("No countdowns yet. Press 'n' to add one."),
	)
}

func (m *Model) mainView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(80).Render("Countdown TUI"))
	sb.WriteString("\n\n")

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.projectListView(),
		"  ",
		m.projectDetailView(),
	)
	sb.WriteString(boxes)
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Navigate: Up/Down | Start/Pause: Enter | +/-: 1m | New: n | Edit: e | Delete: d | Reset: r | Logs: l | Quit: q"))
	if m.Err != nil {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.Err.Error()))
	}

	return sb.String()
}

func (m *Model) projectListView() string {
	var sb strings.Builder

	sb.WriteString("Countdowns\n\n")

	for i, p := range m.Projects {
		marker := ""
		switch {
		case p.Running:
			marker = " ●"
		case m.Timers[p.ID].Finished():
			marker = " ✓"
		}
		line := fmt.Sprintf("%s %s%s", p.Name, formatDuration(p.Remaining), marker)

		if i == m.SelectedIndex {
			sb.WriteString(projectItemSelectedStyle.Render(line))
		} else {
			sb.WriteString(projectItemStyle.Render(inactiveStyle.Render(line)))
		}
		sb.WriteString("\n")
	}

	return boxStyle.Width(25).Height(15).Render(sb.String())
}

func (m *Model) projectDetailView() string {
	p := m.SelectedProject()
	if p == nil {
		return boxStyle.Width(45).Height(15).Render("Select a countdown")
	}

	t := m.SelectedTimer()

	var timerStr string
	switch {
	case t.Finished():
		timerStr = timerFinishedStyle.Render(formatDuration(t.Remaining()))
	case p.Running:
		timerStr = timerRunningStyle.Render(formatDuration(t.Remaining()))
	default:
		timerStr = timerDisplayStyle.Render(formatDuration(t.Remaining()))
	}

	status := "Paused"
	statusStyle := inactiveStyle
	switch {
	case t.Finished():
		status = "Finished"
		statusStyle = finishedStyle
	case p.Running:
		status = "Running"
		statusStyle = runningStyle
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Countdown: %s\n\n", p.Name))
	sb.WriteString(timerStr)
	sb.WriteString("\n")
	sb.WriteString(progressBar(t.PercentLeft(), 30))
	sb.WriteString(fmt.Sprintf("\n\n%s\n", statusStyle.Render(status)))
	sb.WriteString(fmt.Sprintf("Duration: %s  Elapsed: %s\n", formatDuration(t.Duration()), formatDuration(t.Elapsed())))

	// Show recent time logs
	logs := m.TimeLogs[p.ID]
	if len(logs) > 0 {
		sb.WriteString("\n")
		sb.WriteString(logHeaderStyle.Render("Recent Logs"))
		sb.WriteString("\n")
		displayCount := min(len(logs), 5)
		for _, l := range logs[:displayCount] {
			sb.WriteString(m.formatLogEntry(l))
			sb.WriteString("\n")
		}
	}

	return boxStyle.Width(45).Height(15).Render(sb.String())
}

// progressBar draws the remaining fraction as a bar of the given width.
func progressBar(fraction float64, width int) string {
	filled := int(math.Round(fraction * float64(width)))
	filled = min(max(filled, 0), width)
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %3.0f%%", fraction*100)
}

func (m *Model) addFormView() string {
	return m.formView("New Countdown")
}

func (m *Model) editFormView() string {
	return m.formView("Edit Countdown")
}

func (m *Model) formView(title string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(80).Render(title))
	sb.WriteString("\n\n")

	nameLabel := focusLabel("Name: ", m.InputFocus == 0)
	timeLabel := focusLabel("Duration (min or 1h30m): ", m.InputFocus == 1)

	nameValue := m.NewProjectName
	if m.InputFocus == 0 {
		nameValue = inputStyle.Render(nameValue + "\u2588")
	}

	timeValue := m.NewProjectTime
	if m.InputFocus == 1 {
		timeValue = inputStyle.Render(timeValue + "\u2588")
	}

	focusName := "Name"
	if m.InputFocus == 1 {
		focusName = "Duration"
	}
	helpText := fmt.Sprintf("Tab: Switch (Focused: %s) | Enter: Save | Esc: Cancel", focusName)

	form := fmt.Sprintf("%s%s\n\n%s%s\n\n%s",
		nameLabel, nameValue,
		timeLabel, timeValue,
		helpStyle.Render(helpText),
	)

	return sb.String() + lipgloss.Place(
		80, 20,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(50).Render(form),
	)
}

// focusLabel marks the active field with an arrow.
func focusLabel(label string, focused bool) string {
	if focused {
		return inputStyle.Render("→ " + label)
	}
	return inputInactiveStyle.Render("  " + label)
}

func (m *Model) tagInputView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(80).Render("Log Time Session"))
	sb.WriteString("\n\n")

	durationStr := ""
	heading := "Session paused"
	if m.PendingLog != nil {
		durationStr = formatDuration(m.PendingLog.Duration)
		if m.PendingLog.Finished {
			heading = finishedStyle.Render("Countdown finished!")
		}
	}

	label := inputStyle.Render("→ Tag: ")
	value := inputStyle.Render(m.TagInput + "\u2588")

	form := fmt.Sprintf(
		"%s\n\n%s\n\n%s%s\n\n%s",
		heading,
		fmt.Sprintf("Session duration: %s", timerDisplayStyle.Render(durationStr)),
		label, value,
		helpStyle.Render("Enter: Save | Esc: Skip (no tag)"),
	)

	return lipgloss.Place(
		80, 24,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(50).Render(form),
	)
}

func (m *Model) formatLogEntry(l timelog.TimeLog) string {
	timeStr := logTimeStyle.Render(l.StoppedAt.Format("Jan 02 15:04"))
	dur := formatDuration(l.Duration)
	done := ""
	if l.Finished {
		done = " " + finishedStyle.Render("✓")
	}
	tag := ""
	if l.Tag != "" {
		tag = " " + logTagStyle.Render("["+l.Tag+"]")
	}
	return fmt.Sprintf("  %s  %s%s%s", timeStr, dur, done, tag)
}

// logViewRows is how many entries the all-logs view shows at once.
const logViewRows = 15

func (m *Model) allLogsView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(80).Render("All Sessions"))
	sb.WriteString("\n\n")

	if len(m.AllLogs) == 0 {
		sb.WriteString(inactiveStyle.Render("No sessions logged yet."))
	}

	start := min(m.LogViewScroll, max(len(m.AllLogs)-1, 0))
	end := min(start+logViewRows, len(m.AllLogs))
	for _, lp := range m.AllLogs[start:end] {
		sb.WriteString(fmt.Sprintf("%-18s", lp.ProjectName))
		sb.WriteString(m.formatLogEntry(lp.Log))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(fmt.Sprintf("Scroll: Up/Down (%d/%d) | Back: Esc/l", min(start+1, len(m.AllLogs)), len(m.AllLogs))))
	return boxStyle.Width(80).Render(sb.String())
}

var (
	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)
	finishedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
	timerFinishedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214")).
				Bold(true).
				Blink(true)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
	barFullStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("69"))
	barEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)
