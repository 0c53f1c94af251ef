package viz

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/nihilo/internal/control"
	"github.com/san-kum/nihilo/internal/sim"
)

const (
	nearPlane  = 0.1
	farPlane   = 1e5
	panelWidth = 30
	maxRadius  = 48
	historyLen = 120
)

// Projection is the perspective transform for a vertical field of view in
// degrees and a pixel aspect ratio.
func Projection(fov float64, width, height int) mgl64.Mat4 {
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	return mgl64.Perspective(mgl64.DegToRad(fov), aspect, nearPlane, farPlane)
}

// Project maps a world position to pixel coordinates of a width x height
// surface. depth is the distance along the view axis; ok is false for
// points behind the camera.
func Project(viewProj mgl64.Mat4, p mgl64.Vec3, width, height int) (x, y int, depth float64, ok bool) {
	clip := viewProj.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= nearPlane {
		return 0, 0, 0, false
	}
	nx, ny := clip.X()/w, clip.Y()/w
	x = int(math.Floor((nx + 1) * 0.5 * float64(width)))
	y = int(math.Floor((1 - ny) * 0.5 * float64(height)))
	return x, y, w, true
}

type RendererOption func(*Renderer)

func WithTheme(t Theme) RendererOption {
	return func(r *Renderer) { r.theme = t }
}

// WithRadiusScale multiplies particle radii so bodies stay visible at the
// terminal's resolution.
func WithRadiusScale(s float64) RendererOption {
	return func(r *Renderer) { r.radiusScale = s }
}

// WithFadeDistance sets the depth at which particles reach the background
// color.
func WithFadeDistance(d float64) RendererOption {
	return func(r *Renderer) { r.fade = d }
}

func WithRendererLogger(l *log.Logger) RendererOption {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// Renderer draws simulation snapshots as braille frames and hands each frame
// to a sink. It is used from the render loop only.
type Renderer struct {
	sink        func(frame string)
	theme       Theme
	styles      styles
	radiusScale float64
	fade        float64
	logger      *log.Logger

	canvas      *Canvas
	lastControl *control.ControlSnapshot
	frames      uint64
	history     []float64
}

func NewRenderer(sink func(frame string), opts ...RendererOption) *Renderer {
	r := &Renderer{
		sink:        sink,
		theme:       ThemeSpace,
		radiusScale: 40,
		fade:        1500,
		logger:      log.New(io.Discard),
		canvas:      NewCanvas(1, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.styles = newStyles(r.theme)
	return r
}

// Frames returns the number of frames handed to the sink.
func (r *Renderer) Frames() uint64 { return r.frames }

// Render draws a frame when either the simulation or the control snapshot
// changed since the previous call.
func (r *Renderer) Render(ctrl *control.ControlSnapshot, snap *sim.SimulationSnapshot, changed bool) error {
	if ctrl == nil || snap == nil {
		return nil
	}
	if !changed && ctrl == r.lastControl {
		return nil
	}
	r.lastControl = ctrl

	if ctrl.Debug {
		r.history = append(r.history, ctrl.Timing.Simulation.Frequency())
		if len(r.history) > historyLen {
			r.history = r.history[len(r.history)-historyLen:]
		}
	}

	frame := r.Draw(ctrl, snap)
	r.frames++
	if r.sink != nil {
		r.sink(frame)
	}
	return nil
}

// Draw renders one frame to a string.
func (r *Renderer) Draw(ctrl *control.ControlSnapshot, snap *sim.SimulationSnapshot) string {
	width, height := max(ctrl.Width, 1), max(ctrl.Height-1, 1)
	if ctrl.Debug && width > panelWidth+10 {
		width -= panelWidth
	}

	r.canvas.Resize(width, height)
	pw, ph := r.canvas.PixelSize()
	proj := Projection(ctrl.FOV, pw, ph)
	viewProj := proj.Mul4(ctrl.View)
	bg := r.theme.Fade()

	if ctrl.Debug {
		r.drawAxes(viewProj, pw, ph)
	}

	visible := 0
	for _, p := range snap.Particles {
		x, y, depth, ok := Project(viewProj, p.Position, pw, ph)
		if !ok {
			continue
		}
		// pixels per world unit at this depth
		scale := proj.At(1, 1) / depth * float64(ph) * 0.5
		radius := int(math.Min(p.Radius*r.radiusScale*scale, maxRadius))
		if x+radius < 0 || y+radius < 0 || x-radius >= pw || y-radius >= ph {
			continue
		}
		t := mgl64.Clamp(depth/r.fade, 0, 0.85)
		r.canvas.FillCircle(x, y, radius, p.Color.BlendLab(bg, t), depth)
		visible++
	}

	view := r.canvas.Render(r.theme.Muted)
	if ctrl.Debug && ctrl.Width > panelWidth+10 {
		view = lipgloss.JoinHorizontal(lipgloss.Top, view, r.panel(ctrl, snap, visible))
	}
	return view + "\n" + r.statusLine(ctrl, snap)
}

func (r *Renderer) drawAxes(viewProj mgl64.Mat4, pw, ph int) {
	const length = 50
	ox, oy, _, ok := Project(viewProj, mgl64.Vec3{}, pw, ph)
	if !ok {
		return
	}
	limit := 4 * max(pw, ph)
	for _, axis := range []mgl64.Vec3{{length, 0, 0}, {0, length, 0}, {0, 0, length}} {
		x, y, _, ok := Project(viewProj, axis, pw, ph)
		if !ok || absInt(x) > limit || absInt(y) > limit || absInt(ox) > limit || absInt(oy) > limit {
			continue
		}
		r.canvas.DrawLine(ox, oy, x, y)
	}
}

func (r *Renderer) panel(ctrl *control.ControlSnapshot, snap *sim.SimulationSnapshot, visible int) string {
	s := r.styles
	row := func(label, value string) string {
		return s.label.Render(label) + s.value.Render(value) + "\n"
	}
	hz := func(t interface{ Frequency() float64 }) string {
		return fmt.Sprintf("%.1f Hz", t.Frequency())
	}

	var b strings.Builder
	b.WriteString(GradientText("diagnostics", r.theme.Primary, r.theme.Accent) + "\n\n")
	b.WriteString(row("control", hz(ctrl.Timing.Control)))
	b.WriteString(row("sim", hz(ctrl.Timing.Simulation)))
	b.WriteString(row("render", hz(ctrl.Timing.Render)))
	b.WriteString(row("age", fmt.Sprintf("%d", snap.Age)))
	b.WriteString(row("snapshot", fmt.Sprintf("#%d", snap.Sequence)))
	b.WriteString(row("bodies", fmt.Sprintf("%d/%d", visible, len(snap.Particles))))
	b.WriteString(row("fov", fmt.Sprintf("%.0f°", ctrl.FOV)))
	b.WriteString(row("speed", fmt.Sprintf("%.1fx", ctrl.Speed)))
	pos := ctrl.Position
	b.WriteString(row("camera", fmt.Sprintf("%.0f %.0f %.0f", pos[0], pos[1], pos[2])))

	if st := ctrl.Timing.Simulation; st.Current > st.Target+st.Target/10 {
		b.WriteString("\n" + s.warn.Render("simulation behind target") + "\n")
	}
	b.WriteString("\n" + s.muted.Render(SparklineChart(r.history, panelWidth-4)))

	return s.panel.Width(panelWidth - 2).Render(b.String())
}

func (r *Renderer) statusLine(ctrl *control.ControlSnapshot, snap *sim.SimulationSnapshot) string {
	s := r.styles
	left := s.status.Render(fmt.Sprintf(" nihilo  step %d  %.0f°", snap.Age, ctrl.FOV))
	right := s.hint.Render("wasd move  ijkl look  ↑↓ zoom  tab debug  r reset  q quit ")
	gap := ctrl.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}
