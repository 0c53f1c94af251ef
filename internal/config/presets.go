package config

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/nihilo/internal/dynamo"
	"github.com/san-kum/nihilo/internal/physics"
)

// Body is one particle of a preset in SI units.
type Body struct {
	Name     string     `yaml:"name"`
	Mass     float64    `yaml:"mass"`
	Radius   float64    `yaml:"radius"`
	Color    string     `yaml:"color"`
	Position [3]float64 `yaml:"position,flow"`
	Velocity [3]float64 `yaml:"velocity,flow"`
}

// Preset is an initial configuration. TimeStep and Scale are suggestions
// used when the configuration leaves them unset.
type Preset struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	TimeStep    float64 `yaml:"time_step,omitempty"`
	Scale       float64 `yaml:"scale,omitempty"`
	Bodies      []Body  `yaml:"bodies"`
}

// DisplayRadius compresses a physical radius in meters to display units so
// stars and planets stay comparable on screen.
func DisplayRadius(meters float64) float64 {
	if meters <= 0 {
		return 0.01
	}
	return math.Max((math.Log10(meters)-6.2)*0.1, 0.01)
}

// Particles converts the preset into simulator inputs.
func (p *Preset) Particles() ([]dynamo.ParticleInfo, []dynamo.ParticleState, error) {
	if len(p.Bodies) == 0 {
		return nil, nil, fmt.Errorf("%w: preset %q has no bodies", dynamo.ErrParameterBounds, p.Name)
	}

	infos := make([]dynamo.ParticleInfo, len(p.Bodies))
	states := make([]dynamo.ParticleState, len(p.Bodies))
	for i, b := range p.Bodies {
		color := colorful.Color{R: 1, G: 1, B: 1}
		if b.Color != "" {
			c, err := colorful.Hex(b.Color)
			if err != nil {
				return nil, nil, fmt.Errorf("body %q: %w", b.Name, err)
			}
			color = c
		}
		infos[i] = dynamo.ParticleInfo{
			Name:   b.Name,
			Mass:   b.Mass,
			Radius: DisplayRadius(b.Radius),
			Color:  color,
		}
		states[i] = dynamo.ParticleState{
			Position: dynamo.Vec3(b.Position),
			Velocity: dynamo.Vec3(b.Velocity),
		}
	}
	return infos, states, nil
}

func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := &Preset{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = path
	}
	return p, nil
}

func SavePreset(path string, p *Preset) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

var Presets = map[string]*Preset{
	"solar_system": solarSystem(),
	"earth_moon":   earthMoon(),
	"binary":       binaryStar(),
	"figure_eight": figureEight(),
}

func GetPreset(name string) *Preset {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// solarSystem is the Sun and the eight planets with heliocentric ephemeris
// positions and velocities.
func solarSystem() *Preset {
	return &Preset{
		Name:        "solar_system",
		Description: "Sun and the eight planets",
		TimeStep:    86400,
		Scale:       1e10,
		Bodies: []Body{
			{"Sun", 1.9884e30, 696340e3, "#ffffff",
				[3]float64{0, 0, 0},
				[3]float64{0, 0, 0}},
			{"Mercury", 0.330103e24, 2439.4e3, "#969696",
				[3]float64{-45585815911.46662, -49752893385.17383, 116574086.04887502},
				[3]float64{26020.021411254795, -30671.045397682545, -4893.291849179082}},
			{"Venus", 4.86731e24, 6051.8e3, "#e8d4a1",
				[3]float64{50242260908.78682, -96551015762.81287, -4223727867.731408},
				[3]float64{30829.262040791113, 16046.504594131315, -1558.9329126101604}},
			{"Earth", 5.97217e24, 6371.0084e3, "#3d78de",
				[3]float64{-60700986715.16837, 134051133812.47296, -5721899.591960014},
				[3]float64{-27632.31803322083, -12399.072879769918, 1.3917506576399674}},
			{"Mars", 0.641691e24, 3389.5e3, "#c76333",
				[3]float64{-227385061339.1068, -83412492600.96217, 3832540161.7231045},
				[3]float64{9249.88926289367, -20677.381021143472, -660.2948393711313}},
			{"Jupiter", 1898.125e24, 69911e3, "#dbb58c",
				[3]float64{-627861285502.643, -515183551270.1503, 16188537956.805893},
				[3]float64{8137.805973281887, -9494.052776514323, -142.67931320428008}},
			{"Saturn", 568.317e24, 58232e3, "#e8d4ab",
				[3]float64{17820152385.465843, -1505376005753.9375, 25455934435.90474},
				[3]float64{9137.992038459157, 77.46618911487329, -365.52893444699316}},
			{"Uranus", 86.8099e24, 25362e3, "#a1c7de",
				[3]float64{2647332604737.6045, 1361741895770.39, -29221419325.70809},
				[3]float64{-3156.074334667391, 5729.151246953862, 62.4008341366924}},
			{"Neptune", 102.4092e24, 24622e3, "#4f78c7",
				[3]float64{4292269953779.307, -1279957446129.29, -72568953377.18726},
				[3]float64{1525.496768751638, 5232.244900811973, -142.97590953353745}},
		},
	}
}

// circularPair places two bodies on circular orbits around their common
// center of mass in the XY plane.
func circularPair(a, b Body, separation float64) []Body {
	total := a.Mass + b.Mass
	v := physics.CircularSpeed(physics.G*total, separation)

	a.Position = [3]float64{-separation * b.Mass / total, 0, 0}
	a.Velocity = [3]float64{0, -v * b.Mass / total, 0}
	b.Position = [3]float64{separation * a.Mass / total, 0, 0}
	b.Velocity = [3]float64{0, v * a.Mass / total, 0}
	return []Body{a, b}
}

func earthMoon() *Preset {
	return &Preset{
		Name:        "earth_moon",
		Description: "Earth and Moon on a circular orbit",
		TimeStep:    3600,
		Scale:       1e7,
		Bodies: circularPair(
			Body{Name: "Earth", Mass: 5.97217e24, Radius: 6371.0084e3, Color: "#3d78de"},
			Body{Name: "Moon", Mass: 7.342e22, Radius: 1737.4e3, Color: "#bbbbbb"},
			384400e3,
		),
	}
}

func binaryStar() *Preset {
	return &Preset{
		Name:        "binary",
		Description: "two solar mass stars one astronomical unit apart",
		TimeStep:    43200,
		Scale:       1e9,
		Bodies: circularPair(
			Body{Name: "A", Mass: 1.9884e30, Radius: 696340e3, Color: "#ffd27f"},
			Body{Name: "B", Mass: 1.9884e30, Radius: 696340e3, Color: "#9bb0ff"},
			1.495978707e11,
		),
	}
}

// figureEight is the periodic three body choreography of Chenciner and
// Montgomery, scaled from G = m = 1 units.
func figureEight() *Preset {
	const (
		mass   = 1e30
		length = 1e11
	)
	speed := math.Sqrt(physics.G * mass / length)

	x, y := 0.97000436, -0.24308753
	vx, vy := -0.93240737, -0.86473146

	body := func(name, color string, px, py, ux, uy float64) Body {
		return Body{
			Name: name, Mass: mass, Radius: 696340e3, Color: color,
			Position: [3]float64{px * length, py * length, 0},
			Velocity: [3]float64{ux * speed, uy * speed, 0},
		}
	}
	return &Preset{
		Name:        "figure_eight",
		Description: "three equal masses chasing each other on a figure eight",
		TimeStep:    43200,
		Scale:       1e9,
		Bodies: []Body{
			body("A", "#ff6b6b", x, y, -vx/2, -vy/2),
			body("B", "#feca57", -x, -y, -vx/2, -vy/2),
			body("C", "#48dbfb", 0, 0, vx, vy),
		},
	}
}
