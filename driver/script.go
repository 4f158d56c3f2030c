package driver

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ScriptStep is one action in an input script.
//
// Actions: "click" at (X, Y); "drag" from (FromX, FromY) to (ToX, ToY) over
// Frames frames; "wait" for Frames frames; "log" writes Label to the logger.
type ScriptStep struct {
	Action string  `yaml:"action"`
	Label  string  `yaml:"label,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	FromX  float64 `yaml:"fromX,omitempty"`
	FromY  float64 `yaml:"fromY,omitempty"`
	ToX    float64 `yaml:"toX,omitempty"`
	ToY    float64 `yaml:"toY,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
}

type scriptFile struct {
	Steps []ScriptStep `yaml:"steps"`
}

// ScriptRunner sequences injected input across frames for automated runs.
// Attach it with Game.SetScript.
type ScriptRunner struct {
	steps     []ScriptStep
	cursor    int
	waitCount int
	done      bool
}

// ParseScript parses a YAML (or JSON) input script.
func ParseScript(data []byte) (*ScriptRunner, error) {
	var f scriptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "click", "drag", "wait", "log":
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: f.Steps}, nil
}

// LoadScript reads and parses the script at path.
func LoadScript(path string) (*ScriptRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// Done reports whether every step has run and its input has drained.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// SetScript attaches r to the game. The runner advances once per Update,
// before input is processed.
func (g *Game) SetScript(r *ScriptRunner) {
	g.script = r
}

// step advances the runner by one frame.
func (r *ScriptRunner) step(g *Game) {
	if r.done || len(g.inject) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "click":
		g.InjectClick(st.X, st.Y)
	case "drag":
		g.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	case "log":
		g.log.Info("script", zap.String("label", st.Label), zap.Uint64("frame", g.eng.Frame()))
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(g.inject) == 0 {
		r.done = true
	}
}
