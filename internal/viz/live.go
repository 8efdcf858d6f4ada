package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/xpbd"
)

const (
	canvasWidth     = 60
	canvasHeight    = 24
	statsWidth      = 50
	historyCapacity = 600
	targetStep      = 0.1
	complianceFloor = 1e-6
)

// Settings are the stepping parameters of a live session.
type Settings struct {
	Name     string
	Dt       float64
	Substeps int
	Gravity  mgl64.Vec3
	Theme    string
}

type TickMsg time.Time

// Model drives a soft body from the bubbletea event loop. All body calls
// happen inside Update, which bubbletea never runs concurrently.
type Model struct {
	body     *xpbd.SoftBody
	settings Settings

	t        float64
	running  bool
	diverged bool
	showHelp bool
	err      error

	canvas    *Canvas
	camera    *Camera
	wire      *Wireframe
	vmap      xpbd.VertexMap
	display   []mgl64.Vec3
	positions []mgl64.Vec3
	heights   []float64

	target     mgl64.Vec3
	compliance [2]float64
	initial    [2]float64
	selected   int

	theme int
	style styles
}

// NewModel binds the boundary surface of body to a wireframe and prepares
// the view. Binding uses the rest pose, so a deformed body maps the same way
// as a fresh one.
func NewModel(body *xpbd.SoftBody, s Settings) Model {
	tets := body.Tetrahedra()
	elements := make([]mesh.Element, len(tets))
	for i, t := range tets {
		elements[i] = mesh.Element(t.Ids)
	}
	surface := mesh.Surface(elements)

	rest := body.RestPositions()
	display := make([]mgl64.Vec3, 0, len(surface)*3)
	for _, tri := range surface {
		for _, id := range tri {
			display = append(display, rest[id])
		}
	}

	theme := 0
	for i, t := range Themes {
		if t.Name == s.Theme {
			theme = i
		}
	}

	p := body.Params()
	return Model{
		body:       body,
		settings:   s,
		running:    true,
		canvas:     NewCanvas(canvasWidth, canvasHeight),
		camera:     NewCamera(body.Centroid()),
		wire:       TriangleWireframe(len(surface)),
		vmap:       xpbd.BindVertices(rest, display, xpbd.DefaultWeldTolerance),
		display:    display,
		positions:  body.Positions(),
		heights:    make([]float64, 0, historyCapacity),
		compliance: [2]float64{p.EdgeCompliance, p.VolumeCompliance},
		initial:    [2]float64{p.EdgeCompliance, p.VolumeCompliance},
		theme:      theme,
		style:      newStyles(Themes[theme]),
	}
}

// Snapshot draws body as it currently stands on a fresh w x h canvas.
func Snapshot(body *xpbd.SoftBody, w, h int) *Canvas {
	m := NewModel(body, Settings{})
	m.canvas = NewCanvas(w, h)
	m.draw()
	return m.canvas
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "g":
			m.toggleGrab()
		case "h":
			m.moveTarget(mgl64.Vec3{-targetStep, 0, 0})
		case "l":
			m.moveTarget(mgl64.Vec3{targetStep, 0, 0})
		case "j":
			m.moveTarget(mgl64.Vec3{0, -targetStep, 0})
		case "k":
			m.moveTarget(mgl64.Vec3{0, targetStep, 0})
		case "u":
			m.moveTarget(mgl64.Vec3{0, 0, -targetStep})
		case "n":
			m.moveTarget(mgl64.Vec3{0, 0, targetStep})
		case "tab":
			m.selected = (m.selected + 1) % len(m.compliance)
		case "up":
			m.scaleCompliance(2)
		case "down":
			m.scaleCompliance(0.5)
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "t":
			m.theme = nextTheme(m.theme)
			m.style = newStyles(Themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w := max(20, msg.Width-statsWidth-6)
		h := max(8, msg.Height-4)
		m.canvas = NewCanvas(w, h)
	case TickMsg:
		if m.running && !m.diverged {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.body.Step(m.settings.Dt, m.settings.Substeps, m.settings.Gravity)
	m.t += m.settings.Dt

	if !m.body.Valid() {
		m.diverged = true
		m.running = false
		return
	}

	m.heights = append(m.heights, m.body.Centroid().Y())
	if len(m.heights) > historyCapacity {
		m.heights = m.heights[1:]
	}
}

// reset restores the rest pose and the starting compliances.
func (m *Model) reset() {
	m.body.Reset()
	m.compliance = m.initial
	m.body.SetCompliance(m.initial[0], m.initial[1])
	m.t = 0
	m.diverged = false
	m.err = nil
	m.heights = m.heights[:0]
}

// toggleGrab pins the highest particle where it stands, or releases it.
func (m *Model) toggleGrab() {
	if _, _, ok := m.body.Grabbed(); ok {
		m.body.Unpin()
		return
	}
	top, best := -1, math.Inf(-1)
	for i := 0; i < m.body.NumParticles(); i++ {
		if y := m.body.Particle(i).Position.Y(); y > best {
			top, best = i, y
		}
	}
	if top < 0 {
		return
	}
	m.grab(top, m.body.Particle(top).Position)
}

func (m *Model) moveTarget(d mgl64.Vec3) {
	p, _, ok := m.body.Grabbed()
	if !ok {
		return
	}
	m.grab(p, m.target.Add(d))
}

// grab pins particle p at target. A failed pin leaves the previous target
// in place and is shown in the status line.
func (m *Model) grab(p int, target mgl64.Vec3) {
	if err := m.body.Pin(p, target); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.target = target
}

func (m *Model) scaleCompliance(factor float64) {
	c := m.compliance[m.selected] * factor
	if c < complianceFloor {
		if factor > 1 {
			c = complianceFloor
		} else {
			c = 0
		}
	}
	m.compliance[m.selected] = c
	m.body.SetCompliance(m.compliance[0], m.compliance[1])
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.positions = m.body.PositionsInto(m.positions)
	m.vmap.Apply(m.positions, m.display)

	ground := m.body.Params().GroundHeight
	RenderGround(m.canvas, m.camera, m.camera.Target, ground, 2, 9)
	m.wire.Render(m.canvas, m.camera, m.display)

	if _, target, ok := m.body.Grabbed(); ok {
		sw, sh := m.canvas.Dots()
		if x, y, vis := m.camera.Project(target, sw, sh); vis {
			m.canvas.DrawDot(x, y, 1)
		}
	}
}

func (m Model) status() string {
	switch {
	case m.diverged:
		return m.style.err.Render("DIVERGED")
	case m.err != nil:
		return m.style.err.Render(m.err.Error())
	case !m.running:
		return m.style.warn.Render("PAUSED")
	default:
		return m.style.active.Render("RUNNING")
	}
}

func (m Model) View() string {
	m.draw()
	st := m.style
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.settings.Name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.heights) > 1 {
		chart := asciigraph.Plot(m.heights, asciigraph.Height(5), asciigraph.Width(32), asciigraph.Caption("centroid height"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	c := m.body.Centroid()
	row("Time", fmt.Sprintf("%.2fs", m.t))
	row("Particles", fmt.Sprintf("%d", m.body.NumParticles()))
	row("Centroid", fmt.Sprintf("%.3f %.3f %.3f", c.X(), c.Y(), c.Z()))
	row("Edge err", fmt.Sprintf("%.4f", m.body.EdgeError()))
	row("Volume err", fmt.Sprintf("%.4f", m.body.VolumeError()))
	if p, target, ok := m.body.Grabbed(); ok {
		row("Grab", fmt.Sprintf("#%d -> %.1f %.1f %.1f", p, target.X(), target.Y(), target.Z()))
	} else {
		row("Grab", "none")
	}

	s.WriteString("\nCOMPLIANCE\n")
	for i, name := range []string{"edge", "volume"} {
		line := fmt.Sprintf("%-7s %s %.2g", name, ComplianceBar(m.compliance[i], 12), m.compliance[i])
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.value.Render(line) + "\n")
		}
	}

	s.WriteString(st.help.Render("SP:Pause R:Reset G:Grab Q:Quit\nHJKLUN:Move grab TAB/↑↓:Tune\nXYZ:Rotate +/-:Zoom T:Theme ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))

	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
  space     pause or resume
  r         reset to the rest pose
  g         grab the top particle, again to release
  h l       move the grab target along x
  j k       move the grab target along y
  u n       move the grab target along z
  tab       select edge or volume compliance
  up down   double or halve the selected compliance
  x y z     rotate the camera (shift reverses)
  + -       zoom
  t         cycle themes
  q         quit`
