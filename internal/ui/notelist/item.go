package notelist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/theme"
)

// maxTags is the number of tag chips shown before eliding the rest.
const maxTags = 3

// NoteItem wraps a model.Note so it can be used in a bubbles/list.
type NoteItem struct {
	Note model.Note
}

// FilterValue returns the string used for fuzzy filtering.
func (i NoteItem) FilterValue() string { return i.Note.Title }

// Title returns the note title for the list.
func (i NoteItem) Title() string { return i.Note.Title }

// Description returns a short summary line for the list.
func (i NoteItem) Description() string {
	parts := []string{string(i.Note.Type), relativeTime(i.Note.UpdatedAt, time.Now())}
	if len(i.Note.Tags) > 0 {
		parts = append(parts, strings.Join(i.Note.Tags, ","))
	}
	return strings.Join(parts, " | ")
}

// NoteDelegate renders one note per line.
type NoteDelegate struct{}

// Height returns the number of lines each item takes.
func (d NoteDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d NoteDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d NoteDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d NoteDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(NoteItem)
	if !ok {
		return
	}
	fmt.Fprint(w, renderLine(ni.Note, index == m.Index(), time.Now()))
}

// renderLine builds the list line for n.
func renderLine(n model.Note, selected bool, now time.Time) string {
	pin := " "
	if n.IsPinned {
		pin = theme.PinnedStyle.Render("*")
	}

	typeBadge := theme.NoteTypeStyle(n.Type).Render(strings.ToUpper(string(n.Type)))

	title := n.Title
	if n.IsArchived {
		title = theme.DimmedStyle.Render(title)
	}

	tagStr := ""
	if len(n.Tags) > 0 {
		display := n.Tags
		if len(display) > maxTags {
			display = append(append([]string{}, display[:maxTags]...), "…")
		}
		tagStr = theme.TagStyle.Render(" #" + strings.Join(display, " #"))
	}

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(n.UpdatedAt, now))

	line := fmt.Sprintf("%s %s %s%s  %s", pin, typeBadge, title, tagStr, timeStr)

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
