package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/routinely/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.state == stateConfirmSkip {
		return docStyle.Render(m.form.View())
	}

	header := titleStyle.Render(fmt.Sprintf("%s — %s", m.user.Name, utils.DateLocal(time.Now())))
	progress := progressStyle.Render(fmt.Sprintf("%d/%d done (%.0f%%)",
		m.daily.Completed, m.daily.Total, m.daily.CompletionPercent))

	statusLine := ""
	if m.statusLine != "" {
		statusLine = statusStyle.Render(m.statusLine)
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		progress,
		m.dayList.View(),
		statusLine,
		m.help.View(m),
	))
}
