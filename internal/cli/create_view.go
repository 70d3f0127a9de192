package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"matchctl/internal/matchform"
	"matchctl/internal/model"
)

func (m createModel) View() string {
	if m.width <= 0 {
		m.width = 100
	}
	if m.height <= 0 {
		m.height = 30
	}
	if m.screen == createScreenForm && m.form != nil {
		return m.viewForm()
	}
	return m.viewHome()
}

func (m createModel) viewHome() string {
	header := createTitleStyle.Render(m.homeTitle()) + "\n" +
		createMutedStyle.Render("Home") + "\n" +
		createMutedStyle.Render("up/down: move | enter: open | n: new match | q: quit")

	if m.width < 90 {
		body := lipgloss.JoinVertical(lipgloss.Left, m.renderMatchList(m.width), m.renderMatchDetails(m.width))
		return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderStatusLine(m.width))
	}
	leftW := clampInt(m.width/2, 34, 56)
	rightW := m.width - leftW - 1
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderMatchList(leftW), m.renderMatchDetails(rightW))
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderStatusLine(m.width))
}

func (m createModel) renderMatchList(width int) string {
	matches := m.snapshot.Matches
	total := len(matches) + 1
	maxRows := clampInt(m.height-12, 4, 18)
	start, end := listWindow(total, m.cursor, maxRows)

	lines := make([]string, 0, maxRows+3)
	if len(matches) == 0 {
		lines = append(lines, createMutedStyle.Render("No matches yet."))
	}
	if start > 0 {
		lines = append(lines, createMutedStyle.Render("..."))
	}
	for i := start; i < end; i++ {
		line := "[+] Create new match"
		if i < len(matches) {
			mt := matches[i]
			line = fmt.Sprintf("%s  %s vs %s", shortID(mt.ID), mt.Team1.Name, mt.Team2.Name)
		}
		line = truncateRunes(line, maxInt(width-6, 10))
		if i == m.cursor {
			line = createSelStyle.Width(maxInt(width-4, 6)).Render(line)
		}
		lines = append(lines, line)
	}
	if end < total {
		lines = append(lines, createMutedStyle.Render("..."))
	}
	return createPanelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m createModel) renderMatchDetails(width int) string {
	var lines []string
	if m.cursor < len(m.snapshot.Matches) {
		mt := m.snapshot.Matches[m.cursor]
		lines = []string{
			"Match Details",
			"",
			kv("id", mt.ID),
			kv("team 1", teamLabel(mt.Team1)),
			kv("team 2", teamLabel(mt.Team2)),
			kv("group", defaultIfEmpty(mt.MatchGroup, "-")),
			kv("server", defaultIfEmpty(mt.Server, "-")),
			kv("map", defaultIfEmpty(mt.Map, "-")),
			kv("knife config", defaultIfEmpty(mt.KnifeConfig, "-")),
			kv("main config", defaultIfEmpty(mt.MatchConfig, "-")),
			kv("status", model.StatusLabel(mt.Status)),
		}
	} else {
		lines = []string{
			"Create Match",
			"",
			"Press Enter or n to open the form.",
			fmt.Sprintf("%d server(s), %d group(s) on the feed.", len(m.snapshot.Servers), len(m.snapshot.Groups)),
		}
	}
	for i := range lines {
		lines[i] = wrapOrTrim(lines[i], maxInt(width-6, 12))
	}
	return createPanelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func teamLabel(t model.Team) string {
	if t.Country == "" {
		return defaultIfEmpty(t.Name, "-")
	}
	return fmt.Sprintf("%s (%s)", defaultIfEmpty(t.Name, "-"), t.Country)
}

func (m createModel) renderStatusLine(width int) string {
	msg := strings.TrimSpace(m.statusMessage)
	if msg == "" {
		if m.feedDown {
			msg = "feed disconnected"
		} else {
			msg = "Connected to " + m.cfg.FeedURL
		}
	}
	style := statusStyle(m.statusColor)
	if strings.HasPrefix(strings.ToLower(msg), "error:") {
		style = createErrorStyle
	}
	return style.Width(width).Render(truncateRunes(msg, maxInt(width-2, 10)))
}

func (m createModel) viewForm() string {
	f := m.form
	header := createTitleStyle.Render(m.bridge.Title()) + "\n" +
		createMutedStyle.Render(renderBreadcrumbs(m.bridge.Breadcrumbs()))
	hints := createMutedStyle.Render("tab/shift+tab or up/down: move | left/right/space: choose | enter: next/create | ctrl+s: create | esc: cancel")

	fields := f.ctrl.Fields()
	lines := make([]string, 0, len(matchform.FieldOrder)+6)
	for i, key := range matchform.FieldOrder {
		prefix := "  "
		if i == f.index {
			prefix = "> "
		}
		value := fields.Value(key)
		display := displayValue(key, value)
		if display == "" {
			display = createMutedStyle.Render("(empty)")
		}
		if fields.Kind(key) == matchform.FieldSelect {
			display = "[" + display + "]"
		}
		line := wrapOrTrim(fmt.Sprintf("%s%s: %s", prefix, labelFor(key), display), maxInt(m.width-6, 20))
		if fields.Invalid(key) {
			line = createErrorStyle.Render(line)
		}
		lines = append(lines, line)
	}

	key := f.currentKey()
	body := strings.Join(lines, "\n") + fmt.Sprintf("\n\n%s\n", labelFor(key))
	if help := fieldLabels[key].Help; help != "" {
		body += createMutedStyle.Render(help) + "\n"
	}
	if f.currentKind() == matchform.FieldText {
		body += f.input.View()
	} else {
		body += m.renderOptionHint(key)
	}
	if strings.TrimSpace(f.err) != "" {
		body += "\n" + createErrorStyle.Render(f.err)
	}

	panel := createPanelStyle.Width(maxInt(m.width, 40)).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, hints, panel, m.renderStatusLine(m.width))
}

func (m createModel) renderOptionHint(key matchform.FieldKey) string {
	options := selectOptions(key, m.form.ctrl.Snapshot())
	if len(options) <= 1 {
		return createWarnStyle.Render("no options on the feed yet")
	}
	return createMutedStyle.Render(fmt.Sprintf("%d option(s)", len(options)-1))
}
