package viz

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/xpbd"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateSim
)

// menu picks a preset and then hands the screen to a live Model.
type menu struct {
	state   int
	cursor  int
	presets []string
	theme   string
	logger  *slog.Logger
	err     error
	size    *tea.WindowSizeMsg
	live    Model
}

func newMenu(theme string, logger *slog.Logger) menu {
	return menu{presets: config.ListPresets(), theme: theme, logger: logger}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.size = &size
	}
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m.start()
	}
	return m, nil
}

func (m menu) start() (tea.Model, tea.Cmd) {
	name := m.presets[m.cursor]
	cfg := config.GetPreset(name)
	body, err := cfg.Body(m.logger)
	if err != nil {
		m.err = err
		return m, nil
	}

	m.live = NewModel(body, Settings{
		Name:     name,
		Dt:       cfg.Dt,
		Substeps: cfg.Substeps,
		Gravity:  mgl64.Vec3(cfg.Gravity),
		Theme:    m.theme,
	})
	if m.size != nil {
		next, _ := m.live.Update(*m.size)
		m.live = next.(Model)
	}
	m.state = stateSim
	return m, m.live.Init()
}

func (m menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("SOFTSIM") + "\n    " + subtleStyle.Render("xpbd soft body presets") + "\n    " + subtleStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := describe(config.Presets[name])
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-10s", name)), infoStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", dimStyle.Render(fmt.Sprintf("%-10s", name)), dimStyle.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + infoStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyStyle.Render("j/k") + dimStyle.Render(" navigate  ") + keyStyle.Render("enter") + dimStyle.Render(" start  ") + keyStyle.Render("q") + dimStyle.Render(" quit") + "\n")
	return b.String()
}

func describe(cfg *config.Config) string {
	shape := cfg.Mesh.Generator
	if shape == "box" {
		shape = fmt.Sprintf("box %d³", cfg.Mesh.Resolution)
	}
	return fmt.Sprintf("%s, edge %.2g, volume %.2g", shape, cfg.EdgeCompliance, cfg.VolumeCompliance)
}

// RunMenu opens the preset picker.
func RunMenu(theme string, logger *slog.Logger) error {
	_, err := tea.NewProgram(newMenu(theme, logger), tea.WithAltScreen()).Run()
	return err
}

// RunLive opens the live view on an existing body.
func RunLive(body *xpbd.SoftBody, s Settings) error {
	_, err := tea.NewProgram(NewModel(body, s), tea.WithAltScreen()).Run()
	return err
}
