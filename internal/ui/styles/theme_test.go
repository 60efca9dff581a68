package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/tgienger/tasknest/internal/models"
)

func TestPaletteFor(t *testing.T) {
	assert.Equal(t, TokyoNight.Name, PaletteFor(models.ThemeDark).Name)
	assert.Equal(t, TokyoNightDay.Name, PaletteFor(models.ThemeLight).Name)
	assert.Contains(t, []string{TokyoNight.Name, TokyoNightDay.Name}, PaletteFor(models.ThemeSystem).Name)
}

func TestStats(t *testing.T) {
	out := New(TokyoNight).Stats(models.TaskStats{
		Total:     5,
		Completed: 2,
		Pending:   3,
		ByPriority: map[models.Priority]int{
			models.PriorityHigh: 4,
			models.PriorityLow:  1,
		},
	})

	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "4")
	// border, title and three status rows, blank line, title, three priorities, border
	assert.Equal(t, 11, lipgloss.Height(out))
}

func TestSettings(t *testing.T) {
	out := New(TokyoNightDay).Settings(models.Settings{
		Theme:                models.ThemeLight,
		NotificationsEnabled: false,
		Language:             models.LanguageVi,
		LastUpdated:          "2026-03-01T09:00:00.000Z",
	})

	assert.Contains(t, out, "light")
	assert.Contains(t, out, "off")
	assert.Contains(t, out, "vi")
	assert.Contains(t, out, "2026-03-01T09:00:00.000Z")
}
