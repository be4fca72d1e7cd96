package viz

import (
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
	"github.com/EnderRifter/StarSim-sub000/internal/octree"
	"github.com/EnderRifter/StarSim-sub000/internal/physics"
	"github.com/EnderRifter/StarSim-sub000/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	maxPerFrame     = 256
	// Energy is a direct pairwise sum; skip it for large sets.
	energyBodyLimit = 4000
	gifPath         = "starsim.gif"
	treeDepth       = 3
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model steps an updater and draws the bodies it moves.
type Model struct {
	title    string
	updater  sim.Updater
	gravity  *physics.Gravity
	initial  []*physics.Body
	bodies   []*physics.Body
	t, dt    float64
	steps    int
	perFrame int
	halfSide float64
	heavy    float64
	fps      int

	width, height int
	canvas        *Canvas
	camera        *Camera

	running    bool
	showBounds bool
	showTree   bool
	showHelp   bool
	recording  bool
	frames     []*image.Paletted
	lastErr    error
	trees      *octree.Pool

	energy0       float64
	energyHistory []float64
}

// NewModel prepares a live view. bodies are cloned; the caller's slice is
// never advanced.
func NewModel(title string, updater sim.Updater, bodies []*physics.Body, dt, halfSide float64) Model {
	m := Model{
		title:         title,
		updater:       updater,
		initial:       physics.CloneAll(bodies),
		bodies:        physics.CloneAll(bodies),
		dt:            dt,
		perFrame:      1,
		halfSide:      halfSide,
		heavy:         heavyThreshold(bodies),
		fps:           30,
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		camera:        NewCamera(halfSide),
		running:       true,
		showBounds:    true,
		energyHistory: make([]float64, 0, historyCapacity),
		trees:         octree.NewPool(),
	}
	if gs, ok := updater.(sim.GravitySource); ok && len(bodies) <= energyBodyLimit {
		g := gs.Gravity()
		m.gravity = &g
		m.energy0 = physics.Energy(g, m.bodies)
	}
	m.fit()
	return m
}

// WithFPS sets the tick rate.
func (m Model) WithFPS(fps int) Model {
	if fps > 0 {
		m.fps = fps
	}
	return m
}

// Time is the simulated time so far.
func (m Model) Time() float64 { return m.t }

// Steps is the number of ticks advanced since the last reset.
func (m Model) Steps() int { return m.steps }

func (m Model) Running() bool { return m.running }

func (m Model) Bodies() []*physics.Body { return m.bodies }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
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
		case "left", "h":
			m.camera.Orbit(-0.1, 0)
		case "right", "l":
			m.camera.Orbit(0.1, 0)
		case "up", "k":
			m.camera.Orbit(0, 0.1)
		case "down", "j":
			m.camera.Orbit(0, -0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "[":
			m.perFrame = max(1, m.perFrame/2)
		case "]":
			m.perFrame = min(maxPerFrame, m.perFrame*2)
		case "b":
			m.showBounds = !m.showBounds
		case "t":
			m.showTree = !m.showTree
		case "f":
			m.fit()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			for i := 0; i < m.perFrame; i++ {
				m.step()
			}
			m.sampleEnergy()
		}
		if m.recording {
			m.draw()
			m.frames = append(m.frames, Rasterize(m.canvas))
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.updater.Advance(m.bodies, m.dt)
	m.t += m.dt
	m.steps++
}

func (m *Model) sampleEnergy() {
	if m.gravity == nil {
		return
	}
	m.energyHistory = append(m.energyHistory, physics.Energy(*m.gravity, m.bodies))
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

func (m *Model) reset() {
	m.bodies = physics.CloneAll(m.initial)
	m.t = 0
	m.steps = 0
	m.energyHistory = m.energyHistory[:0]
}

func (m *Model) resize(w, h int) {
	cw := max(20, w-lipgloss.Width(statsStyle.Render(""))-6)
	ch := max(8, h-4)
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
}

// fit points the camera at the centre of mass and frames every in-bounds
// body.
func (m *Model) fit() {
	com, _ := physics.CenterOfMass(m.bodies)
	radius := 0.0
	for _, b := range m.bodies {
		if !m.inBounds(b.Position) {
			continue
		}
		radius = math.Max(radius, b.Position.Dist3(com))
	}
	if radius == 0 {
		radius = m.halfSide
	}
	m.camera.Target = com
	m.camera.Fit(radius)
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = m.frames[:0]
		return
	}
	m.recording = false
	m.lastErr = WriteGIF(gifPath, m.frames)
	m.frames = nil
}

func (m *Model) inBounds(p geom.Vector) bool {
	return p.InCube(geom.Point(0, 0, 0), m.halfSide)
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.showBounds {
		DrawSegments(m.canvas, m.camera, CubeWireframe(geom.Point(0, 0, 0), m.halfSide))
	}
	if m.showTree {
		m.drawTree()
	}
	RenderBodies(m.canvas, m.camera, m.bodies, m.heavy)
}

// drawTree outlines the top levels of an octree built over the current
// in-bounds bodies.
func (m *Model) drawTree() {
	tree := m.trees.Get(geom.Point(0, 0, 0), 2*m.halfSide, physics.Gravity{}, 0)
	defer m.trees.Put(tree)
	for _, b := range m.bodies {
		if tree.Contains(b.Position) {
			tree.Insert(b)
		}
	}
	DrawSegments(m.canvas, m.camera, TreeWireframe(tree, treeDepth))
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	switch {
	case m.recording:
		s.WriteString(StatusRecording.Render("● REC") + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	inside := 0
	for _, b := range m.bodies {
		if m.inBounds(b.Position) {
			inside++
		}
	}
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Updater", m.updater.Name())
	row("Time", fmt.Sprintf("%.3f", m.t))
	row("Steps", fmt.Sprintf("%d (x%d/frame)", m.steps, m.perFrame))
	row("Bodies", fmt.Sprintf("%d/%d in bounds", inside, len(m.bodies)))
	if n := len(m.energyHistory); n > 0 {
		e := m.energyHistory[n-1]
		row("Energy", fmt.Sprintf("%.6g", e))
		if m.energy0 != 0 {
			row("Drift", fmt.Sprintf("%.3e", math.Abs((e-m.energy0)/m.energy0)))
		}
	}
	if ts, ok := m.updater.(interface{ LastStats() octree.Stats }); ok {
		st := ts.LastStats()
		row("Nodes", fmt.Sprintf("%d (depth %d)", st.Nodes, st.MaxDepth))
	}
	if tq, ok := m.updater.(interface{ LastQuery() octree.Query }); ok {
		q := tq.LastQuery()
		if total := q.Exact + q.Approximated; total > 0 {
			row("Approx", fmt.Sprintf("%.1f%% of pairs", 100*float64(q.Approximated)/float64(total)))
		}
	}
	if m.lastErr != nil {
		row("Error", m.lastErr.Error())
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nHJKL:Orbit +/-:Zoom ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset bodies             ║
║  Q        - Quit                     ║
║  H/L      - Orbit left/right         ║
║  J/K      - Orbit down/up            ║
║  +/-      - Zoom in/out              ║
║  [ ]      - Halve/double speed       ║
║  B        - Toggle root bounds       ║
║  T        - Toggle octree overlay    ║
║  F        - Refit camera             ║
║  G        - Toggle GIF recording     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// heavyThreshold is ten times the lightest mass, or zero when the masses are
// all within that factor.
func heavyThreshold(bodies []*physics.Body) float64 {
	if len(bodies) < 2 {
		return 0
	}
	lo, hi := bodies[0].Mass, bodies[0].Mass
	for _, b := range bodies {
		lo = math.Min(lo, b.Mass)
		hi = math.Max(hi, b.Mass)
	}
	if hi <= 10*lo {
		return 0
	}
	return 10 * lo
}
