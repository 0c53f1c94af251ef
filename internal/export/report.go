package export

import (
	"encoding/json"
	"io"
	"time"
)

type BodyReport struct {
	Name       string  `json:"name"`
	Around     string  `json:"around,omitempty"`
	PeriodDays float64 `json:"period_days,omitempty"`
	KeplerDays float64 `json:"kepler_days,omitempty"`
	FinalX     float64 `json:"final_x"`
	FinalY     float64 `json:"final_y"`
	FinalZ     float64 `json:"final_z"`
}

// Report summarizes one headless run.
type Report struct {
	Preset     string             `json:"preset"`
	Integrator string             `json:"integrator"`
	Motion     string             `json:"motion"`
	TimeStep   float64            `json:"time_step"`
	Steps      int                `json:"steps"`
	Elapsed    time.Duration      `json:"elapsed_ns"`
	Metrics    map[string]float64 `json:"metrics"`
	Bodies     []BodyReport       `json:"bodies"`
}

func WriteJSON(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}
