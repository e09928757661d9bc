package trellis

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Dir    string  `json:"dir,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected pointer events and navigation commands
// across ticks for automated interaction testing. Attach to a Stage via
// SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a Stage via SetTestRunner.
//
// Supported actions: "click", "press", "move", "release", "drag",
// "navigate" (with "dir": up/down/left/right), "confirm" (alias
// "select"), "back", "wait".
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, step := range script.Steps {
		if step.Action == "navigate" {
			if _, err := parseDirection(step.Dir); err != nil {
				return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
			}
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the stage. The runner's step method
// is called from Stage.Update before processInput each tick.
func (st *Stage) SetTestRunner(runner *TestRunner) {
	st.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

func parseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// step advances the test runner by one tick. Called from Stage.Update.
func (r *TestRunner) step(st *Stage) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(st.injectQueue) > 0 {
		return
	}
	// Count down wait ticks.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	step := r.steps[r.cursor]
	r.cursor++

	switch step.Action {
	case "click":
		st.InjectClick(step.X, step.Y)
	case "press":
		st.InjectPress(step.X, step.Y)
	case "move":
		st.InjectMove(step.X, step.Y)
	case "release":
		st.InjectRelease(step.X, step.Y)
	case "drag":
		frames := step.Frames
		if frames < 2 {
			frames = 2
		}
		st.InjectDrag(step.FromX, step.FromY, step.ToX, step.ToY, frames)
	case "navigate":
		dir, _ := parseDirection(step.Dir)
		st.InjectCommand(commandForDirection(dir))
	case "confirm", "select":
		st.InjectCommand(CmdConfirm)
	case "back":
		st.InjectCommand(CmdBack)
	case "wait":
		if step.Frames > 0 {
			r.waitCount = step.Frames - 1 // this tick counts as one
		}
	}

	// Check if we've reached the end after executing.
	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(st.injectQueue) == 0 {
		r.done = true
	}
}

func commandForDirection(dir Direction) Command {
	switch dir {
	case DirUp:
		return CmdUp
	case DirDown:
		return CmdDown
	case DirLeft:
		return CmdLeft
	default:
		return CmdRight
	}
}
