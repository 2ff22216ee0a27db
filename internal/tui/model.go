// Package tui renders the board in a terminal. Each list is drawn from the
// same tasklist models the web board uses; actions run as tea.Cmds so the
// UI keeps responding while requests are pending.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/s1natex/taskboard/internal/board"
	"github.com/s1natex/taskboard/internal/tasklist"
	"github.com/s1natex/taskboard/internal/tasks"
)

const requestTimeout = 10 * time.Second

type refreshedMsg struct{ err error }

type actionDoneMsg struct {
	category tasks.Category
	action   string
	err      error
}

type Model struct {
	board  *board.Board
	keys   KeyMap
	focus  int
	cursor []int
	// pending counts actions whose tea.Cmd has not reported back.
	pending int
	status  string
	width   int
}

func New(b *board.Board) Model {
	return Model{
		board:  b,
		keys:   DefaultKeyMap,
		cursor: make([]int, len(tasks.Categories)),
	}
}

func (model Model) Init() tea.Cmd {
	return model.refreshCmd()
}

func (model Model) focused() tasks.Category {
	return tasks.Categories[model.focus]
}

func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		return model, nil

	case refreshedMsg:
		if message.err != nil {
			model.status = "refresh failed: " + message.err.Error()
		} else {
			model.status = ""
		}
		model.clampCursors()
		return model, nil

	case actionDoneMsg:
		if model.pending > 0 {
			model.pending--
		}
		if message.err != nil {
			model.status = fmt.Sprintf("%s failed: %v", message.action, message.err)
		}
		model.clampCursors()
		return model, nil
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Switch):
		model.focus = (model.focus + 1) % len(tasks.Categories)

	case key.Matches(message, model.keys.Up):
		if model.cursor[model.focus] > 0 {
			model.cursor = model.moveCursor(-1)
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor[model.focus] < len(model.board.Tasks(model.focused()))-1 {
			model.cursor = model.moveCursor(1)
		}

	case key.Matches(message, model.keys.Delete):
		return model.runAction("delete", (*tasklist.View).Delete)

	case key.Matches(message, model.keys.Move):
		return model.runAction("move", (*tasklist.View).Move)

	case key.Matches(message, model.keys.Dismiss):
		view := model.board.View(model.focused())
		view.DismissAlert()
		view.DismissError()
		model.status = ""

	case key.Matches(message, model.keys.Refresh):
		return model, model.refreshCmd()
	}
	return model, nil
}

// moveCursor returns a copy so earlier Model values keep their cursor.
func (model Model) moveCursor(delta int) []int {
	next := append([]int(nil), model.cursor...)
	next[model.focus] += delta
	return next
}

func (model *Model) clampCursors() {
	next := append([]int(nil), model.cursor...)
	for i, c := range tasks.Categories {
		n := len(model.board.Tasks(c))
		if next[i] >= n {
			next[i] = n - 1
		}
		if next[i] < 0 {
			next[i] = 0
		}
	}
	model.cursor = next
}

func (model Model) selected() (string, bool) {
	list := model.board.Tasks(model.focused())
	i := model.cursor[model.focus]
	if i < 0 || i >= len(list) {
		return "", false
	}
	return list[i].ID, true
}

func (model Model) runAction(name string, act func(*tasklist.View, context.Context, string) error) (tea.Model, tea.Cmd) {
	id, ok := model.selected()
	if !ok {
		return model, nil
	}
	category := model.focused()
	view := model.board.View(category)
	model.pending++
	return model, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return actionDoneMsg{category: category, action: name, err: act(view, ctx, id)}
	}
}

func (model Model) refreshCmd() tea.Cmd {
	b := model.board
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return refreshedMsg{err: b.Refresh(ctx)}
	}
}

func (model Model) View() string {
	models := model.board.Models()
	paneWidth := 0
	if model.width > 0 {
		paneWidth = model.width/len(models) - 4
	}

	panes := make([]string, 0, len(models))
	for i, m := range models {
		panes = append(panes, model.renderPane(i, m, paneWidth))
	}

	var out strings.Builder
	out.WriteString(titleStyle.Render("Not To Do List"))
	out.WriteString("\n")
	out.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panes...))
	out.WriteString("\n")
	if model.pending > 0 {
		out.WriteString(mutedStyle.Render(fmt.Sprintf("%d request(s) pending", model.pending)))
		out.WriteString("\n")
	}
	if model.status != "" {
		out.WriteString(errorStyle.Render(model.status))
		out.WriteString("\n")
	}
	out.WriteString(mutedStyle.Render(helpLine(model.keys)))
	return out.String()
}

func (model Model) renderPane(index int, m tasklist.Model, width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.Title))
	b.WriteString("\n")

	if m.ShowAlert {
		b.WriteString(successStyle.Render(m.AlertText + "  [x]"))
		b.WriteString("\n")
	}
	if m.Error != "" {
		b.WriteString(errorStyle.Render(m.Error + "  [x]"))
		b.WriteString("\n")
	}

	if m.Empty {
		b.WriteString(mutedStyle.Render("No tasks here yet."))
		b.WriteString("\n")
	}
	for i, row := range m.Rows {
		prefix := "  "
		label := row.Label
		if index == model.focus && i == model.cursor[index] {
			prefix = cursorStyle.Render("> ")
			label = cursorStyle.Render(label)
		}
		arrow := "→"
		if row.Direction == tasklist.DirectionLeft {
			arrow = "←"
		}
		b.WriteString(prefix + label + "\n")
		b.WriteString("    " + priorityBadge.Render(row.Priority) + " " + difficultyBadge.Render(row.Difficulty) + " " + arrow + "\n")
	}

	b.WriteString("\n" + m.Footer)

	style := paneStyle
	if index == model.focus {
		style = focusedPaneStyle
	}
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(b.String())
}

func helpLine(k KeyMap) string {
	parts := make([]string, 0, len(k.ShortHelp()))
	for _, b := range k.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
