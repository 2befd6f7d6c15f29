package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// RoleBadge renders a role in its column color.
func RoleBadge(role domain.Role) string {
	if role == domain.RoleAttending {
		return StyleBlue.Render("attending")
	}
	return StylePurple.Render("resident")
}

// KindBadge marks holidays; weekdays stay dim.
func KindBadge(kind domain.DayKind) string {
	if kind == domain.KindHoliday {
		return StyleYellow.Render("holiday")
	}
	return StyleDim.Render("weekday")
}

// PriorityStyle colors a 0-100 gap priority.
func PriorityStyle(p float64) lipgloss.Style {
	switch {
	case p >= 70:
		return StyleRed
	case p >= 45:
		return StyleYellow
	default:
		return StyleGreen
	}
}

// RateStyle colors a 0-1 fill rate.
func RateStyle(rate float64) lipgloss.Style {
	switch {
	case rate >= 1:
		return StyleGreen
	case rate >= 0.9:
		return StyleYellow
	default:
		return StyleRed
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
