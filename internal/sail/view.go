package sail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kilupskalvis/vimlantis/internal/explorer"
	"github.com/kilupskalvis/vimlantis/internal/nav"
)

const (
	minMapWidth     = 20
	maxMapWidth     = 60
	defaultMapWidth = 40
)

var (
	crumbStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4db8e8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
)

const helpLine = "w/a/s/d sail  space open  esc back  r root  1-9 breadcrumb  ctrl+r reload  q quit"

func (m *Model) View() string {
	s := m.session
	settings := s.Settings()

	var sb strings.Builder
	if settings.ShowBreadcrumbs {
		sb.WriteString(crumbStyle.Render(Breadcrumbs(s.Breadcrumbs())))
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  depth %d", s.Depth())))
		sb.WriteByte('\n')
	}
	if settings.ShowCompass {
		b := s.Boat()
		sb.WriteString(fmt.Sprintf("heading %4.0f  x %7.1f  z %7.1f\n", b.Heading(), b.X, b.Z))
	}
	if settings.ShowMinimap {
		sb.WriteByte('\n')
		sb.WriteString(RenderMinimap(s, m.mapWidth()))
	}
	sb.WriteByte('\n')

	sb.WriteString(dimStyle.Render(fmt.Sprintf("%d markers", len(s.Markers()))))
	if h := s.Hovered(); h != nil {
		sb.WriteString(dimStyle.Render("  pointing at " + h.Label.Text))
	}
	sb.WriteByte('\n')

	if a := s.Affordance(); a != "" {
		sb.WriteString(promptStyle.Render("[space] " + a))
		if p := s.Proximity(); p != nil && p.Node.IsDir() {
			sb.WriteString(dimStyle.Render(" (sail in)"))
		}
		sb.WriteByte('\n')
	}
	if n := s.Notification(); n != nil {
		sb.WriteString(notificationLine(n))
		sb.WriteByte('\n')
	}
	if m.status != "" {
		sb.WriteString(dimStyle.Render(m.status))
		sb.WriteByte('\n')
	}
	sb.WriteString(dimStyle.Render(helpLine))
	return sb.String()
}

func (m *Model) mapWidth() int {
	if m.width <= 0 {
		return defaultMapWidth
	}
	return max(minMapWidth, min(maxMapWidth, m.width-2))
}

func notificationLine(n *explorer.Notification) string {
	if n.Err != nil {
		return errStyle.Render(fmt.Sprintf("%s (%v)", n.Message, n.Err))
	}
	line := okStyle.Render(n.Message)
	if n.Editor != "" {
		line += dimStyle.Render(" in " + n.Editor)
	}
	return line
}

// Breadcrumbs joins the path bar labels.
func Breadcrumbs(crumbs []nav.Breadcrumb) string {
	labels := make([]string, len(crumbs))
	for i, c := range crumbs {
		labels[i] = c.Label
	}
	return strings.Join(labels, " / ")
}

// RenderMinimap draws the session minimap as text, one cell per blip,
// with the boat in the middle. Lighthouses are L, buoys o. It returns ""
// when the session hides its minimap.
func RenderMinimap(s *explorer.Session, width int) string {
	height := width / 2
	if height < 1 {
		height = 1
	}

	// Cells are twice as tall as they are wide.
	px, py := float32(width)*4, float32(height)*8
	blips := s.Minimap(px, py)
	if blips == nil && !s.Settings().ShowMinimap {
		return ""
	}

	type cell struct {
		mark  rune
		color uint32
	}
	grid := make([][]cell, height)
	for y := range grid {
		grid[y] = make([]cell, width)
	}
	for _, b := range blips {
		x, y := int(b.X/4), int(b.Y/8)
		if x < 0 || x >= width || y < 0 || y >= height {
			continue
		}
		mark := 'o'
		if b.Node.IsDir() {
			mark = 'L'
		}
		grid[y][x] = cell{mark: mark, color: b.Color}
	}

	water := lipgloss.NewStyle().Foreground(hexColor(s.Settings().OceanTheme.Color()))
	boat := lipgloss.NewStyle().Bold(true)

	var sb strings.Builder
	for y, row := range grid {
		for x, c := range row {
			switch {
			case y == height/2 && x == width/2:
				sb.WriteString(boat.Render("^"))
			case c.mark != 0:
				sb.WriteString(lipgloss.NewStyle().Foreground(hexColor(c.color)).Render(string(c.mark)))
			default:
				sb.WriteString(water.Render("."))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func hexColor(c uint32) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%06x", c))
}
