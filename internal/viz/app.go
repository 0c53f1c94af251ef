package viz

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/nihilo/internal/control"
)

// FrameMsg carries a rendered frame into the bubbletea program.
type FrameMsg string

// DefaultKeyMap binds terminal keys to controller actions.
var DefaultKeyMap = map[string]control.Action{
	"up":     control.ActionZoomIn,
	"down":   control.ActionZoomOut,
	"right":  control.ActionSpeedUp,
	"left":   control.ActionSlowDown,
	"w":      control.ActionForward,
	"s":      control.ActionBackward,
	"a":      control.ActionLeft,
	"d":      control.ActionRight,
	" ":      control.ActionUp,
	"space":  control.ActionUp,
	"c":      control.ActionDown,
	"i":      control.ActionPitchUp,
	"k":      control.ActionPitchDown,
	"j":      control.ActionYawLeft,
	"l":      control.ActionYawRight,
	"u":      control.ActionRollLeft,
	"o":      control.ActionRollRight,
	"1":      control.ActionResetFOV,
	"2":      control.ActionResetPosition,
	"3":      control.ActionResetOrientation,
	"4":      control.ActionResetSpeed,
	"r":      control.ActionResetSimulation,
	"tab":    control.ActionToggleDebug,
	"q":      control.ActionQuit,
	"esc":    control.ActionQuit,
	"ctrl+c": control.ActionQuit,
}

// App is the bubbletea model of the interactive view. It forwards input to
// the controller and displays the latest frame; it never draws by itself.
type App struct {
	ctrl  *control.Controller
	keys  map[string]control.Action
	frame string
}

func NewApp(ctrl *control.Controller) *App {
	return &App{ctrl: ctrl, keys: DefaultKeyMap}
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if action, ok := a.keys[key]; ok {
			a.ctrl.Press(action)
		}
		if key == "ctrl+c" {
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.ctrl.Resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		a.mouse(msg)
	case FrameMsg:
		a.frame = string(msg)
	}
	return a, nil
}

func (a *App) mouse(msg tea.MouseMsg) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		a.ctrl.Scroll(true)
	case msg.Button == tea.MouseButtonWheelDown:
		a.ctrl.Scroll(false)
	case msg.Action == tea.MouseActionRelease:
		a.ctrl.Release()
	case msg.Action == tea.MouseActionMotion && msg.Button == tea.MouseButtonLeft,
		msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		a.ctrl.Drag(msg.X, msg.Y)
	}
}

func (a *App) View() string {
	if a.frame == "" {
		return "starting simulation..."
	}
	return a.frame
}

// NewProgram wraps app in a full screen program with mouse tracking.
func NewProgram(app *App, opts ...tea.ProgramOption) *tea.Program {
	base := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	return tea.NewProgram(app, append(base, opts...)...)
}

// ProgramSink returns a frame sink that delivers frames to p.
func ProgramSink(p *tea.Program) func(string) {
	return func(frame string) {
		p.Send(FrameMsg(frame))
	}
}
