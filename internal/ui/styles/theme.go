// Package styles renders command output in the color theme chosen in settings.
package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tasknest/internal/models"
)

// Palette represents a color scheme for terminal output
type Palette struct {
	Name string

	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary lipgloss.Color
	Accent  lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border lipgloss.Color
}

// TokyoNight is used for the dark theme
var TokyoNight = Palette{
	Name: "Tokyo Night",

	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary: lipgloss.Color("#7aa2f7"),
	Accent:  lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),

	Border: lipgloss.Color("#3b4261"),
}

// TokyoNightDay is used for the light theme
var TokyoNightDay = Palette{
	Name: "Tokyo Night Day",

	Foreground:    lipgloss.Color("#3760bf"),
	ForegroundDim: lipgloss.Color("#848cb5"),

	Primary: lipgloss.Color("#2e7de9"),
	Accent:  lipgloss.Color("#007197"),

	Success: lipgloss.Color("#587539"),
	Warning: lipgloss.Color("#8c6c3e"),
	Error:   lipgloss.Color("#f52a65"),

	Border: lipgloss.Color("#a8aecb"),
}

// PaletteFor maps a settings theme to a palette. ThemeSystem follows the
// terminal background.
func PaletteFor(theme models.Theme) Palette {
	switch theme {
	case models.ThemeLight:
		return TokyoNightDay
	case models.ThemeDark:
		return TokyoNight
	}
	if lipgloss.HasDarkBackground() {
		return TokyoNight
	}
	return TokyoNightDay
}

// Styles holds the pre-computed styles for command output
type Styles struct {
	Box      lipgloss.Style
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Priority map[models.Priority]lipgloss.Style
}

// New creates styles based on a palette
func New(p Palette) *Styles {
	return &Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(p.ForegroundDim).
			Width(12),

		Value: lipgloss.NewStyle().
			Foreground(p.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(p.ForegroundDim),

		Success: lipgloss.NewStyle().
			Foreground(p.Success).
			Bold(true),

		Priority: map[models.Priority]lipgloss.Style{
			models.PriorityHigh:   lipgloss.NewStyle().Foreground(p.Error).Bold(true).Width(12),
			models.PriorityMedium: lipgloss.NewStyle().Foreground(p.Warning).Width(12),
			models.PriorityLow:    lipgloss.NewStyle().Foreground(p.Accent).Width(12),
		},
	}
}

func (s *Styles) row(label, value string) string {
	return s.Label.Render(label) + s.Value.Render(value)
}

// Stats renders task counts as a bordered panel
func (s *Styles) Stats(stats models.TaskStats) string {
	lines := []string{
		s.Title.Render("Tasks"),
		s.row("total", fmt.Sprint(stats.Total)),
		s.Label.Render("completed") + s.Success.Render(fmt.Sprint(stats.Completed)),
		s.row("pending", fmt.Sprint(stats.Pending)),
		"",
		s.Title.Render("By priority"),
	}
	for _, p := range []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		lines = append(lines, s.Priority[p].Render(string(p))+s.Value.Render(fmt.Sprint(stats.ByPriority[p])))
	}
	return s.Box.Render(strings.Join(lines, "\n"))
}

// Settings renders the settings row
func (s *Styles) Settings(settings models.Settings) string {
	notifications := "off"
	if settings.NotificationsEnabled {
		notifications = "on"
	}
	return s.Box.Render(strings.Join([]string{
		s.Title.Render("Settings"),
		s.row("theme", string(settings.Theme)),
		s.row("notify", notifications),
		s.row("language", string(settings.Language)),
		s.Label.Render("updated") + s.Muted.Render(settings.LastUpdated),
	}, "\n"))
}
