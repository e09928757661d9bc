package trellis

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func playNode(t *testing.T) *Node {
	t.Helper()
	st := NewStage(800, 600)
	n := New(Settings{W: Float(200), H: Float(100)})
	st.Root().AddChild(n)
	resolveTree(st.Root(), 800, 600)
	return n
}

// --- Configuration errors ---

func TestPlayZeroFramesErrors(t *testing.T) {
	n := playNode(t)
	err := n.Play(AnimationSpec{Frames: 0, Mark: Float(MarkOpening)})
	if err == nil {
		t.Fatal("expected error for zero frames")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Errorf("error type %T, want *ConfigError", err)
	}
	if n.Animating() {
		t.Error("no state mutation on a configuration error")
	}
}

func TestPlayMissingMarkErrors(t *testing.T) {
	n := playNode(t)
	err := n.Play(AnimationSpec{Frames: 10})
	if err == nil {
		t.Fatal("expected error for missing mark")
	}
	if n.Animating() {
		t.Error("no state mutation on a configuration error")
	}
}

func TestPlayWithMarkOverride(t *testing.T) {
	n := playNode(t)
	err := n.PlayWith(AnimationSpec{Frames: 10}, PlayOptions{Mark: Float(MarkOpening)})
	if err != nil {
		t.Fatalf("override should satisfy the mark requirement: %v", err)
	}
	if !n.Animating() {
		t.Error("animation should be in flight")
	}
}

func TestPlayWithFromSpecSentinelKeepsSpecMark(t *testing.T) {
	n := playNode(t)
	err := n.PlayWith(
		AnimationSpec{Frames: 10, Mark: Float(4)},
		PlayOptions{Mark: Float(MarkFromSpec)},
	)
	if err != nil {
		t.Fatal(err)
	}
	if n.anim.mark != 4 {
		t.Errorf("mark = %v, want 4 (spec's own)", n.anim.mark)
	}
}

// --- Mark normalization ---

func TestMarkFractionScalesByFrames(t *testing.T) {
	n := playNode(t)
	if err := n.Play(AnimationSpec{Frames: 10, Mark: Float(0.3)}); err != nil {
		t.Fatal(err)
	}
	if n.anim.mark != 3 {
		t.Errorf("mark = %v, want 3", n.anim.mark)
	}
	if n.anim.frames != 10 {
		t.Errorf("frames = %d, want 10", n.anim.frames)
	}
}

func TestMarkGreaterThanFramesSwaps(t *testing.T) {
	n := playNode(t)
	if err := n.Play(AnimationSpec{Frames: 10, Mark: Float(15)}); err != nil {
		t.Fatal(err)
	}
	if n.anim.frames != 15 || n.anim.mark != 10 {
		t.Errorf("frames/mark = %d/%v, want 15/10", n.anim.frames, n.anim.mark)
	}
}

func TestMarkGreaterThanFramesSwapRounds(t *testing.T) {
	n := playNode(t)
	if err := n.Play(AnimationSpec{Frames: 10, Mark: Float(10.5)}); err != nil {
		t.Fatal(err)
	}
	if n.anim.frames != 11 || n.anim.mark != 10 {
		t.Errorf("frames/mark = %d/%v, want 11/10 (fractional mark rounds, not truncates)",
			n.anim.frames, n.anim.mark)
	}
}

// --- Interpolation parameter ---

func TestOpeningStartsPerturbed(t *testing.T) {
	n := playNode(t)
	if err := n.Play(AnimationSpec{
		Frames: 10,
		Mark:   Float(MarkOpening),
		Deltas: map[Prop]Delta{PropAlpha: {Value: -0.5}},
	}); err != nil {
		t.Fatal(err)
	}
	// Frame 0 applies immediately: t=1, alpha = 1 + 1*(-0.5).
	if n.Alpha != 0.5 {
		t.Errorf("Alpha = %v, want 0.5 at frame 0", n.Alpha)
	}
	// Halfway: t = 1 - 5/10 = 0.5, alpha = 1 - 0.25.
	for i := 0; i < 5; i++ {
		n.tickAnim()
	}
	if math.Abs(n.Alpha-0.75) > 1e-9 {
		t.Errorf("Alpha = %v, want 0.75 at frame 5", n.Alpha)
	}
}

func TestClosingStartsAtRest(t *testing.T) {
	n := playNode(t)
	if err := n.Play(AnimationSpec{
		Frames: 10,
		Mark:   Float(MarkClosing),
		Deltas: map[Prop]Delta{PropAlpha: {Value: -0.5}},
	}); err != nil {
		t.Fatal(err)
	}
	if n.Alpha != 1 {
		t.Errorf("Alpha = %v, want 1 at frame 0", n.Alpha)
	}
	for i := 0; i < 5; i++ {
		n.tickAnim()
	}
	// t = 5/10 = 0.5 midway through a closing run.
	if math.Abs(n.Alpha-0.75) > 1e-9 {
		t.Errorf("Alpha = %v, want 0.75 at frame 5", n.Alpha)
	}
}

func TestRoundTripPeaksAtMark(t *testing.T) {
	n := playNode(t)
	if err := n.Play(AnimationSpec{
		Frames: 10,
		Mark:   Float(5),
		Deltas: map[Prop]Delta{PropAlpha: {Value: -0.6}},
	}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		n.tickAnim()
	}
	// At the turnaround t = 1: fully perturbed.
	if math.Abs(n.Alpha-0.4) > 1e-9 {
		t.Errorf("Alpha = %v, want 0.4 at the mark", n.Alpha)
	}
	for i := 0; i < 5; i++ {
		n.tickAnim()
	}
	if n.Animating() {
		t.Error("round trip should be finished")
	}
	if n.Alpha != 1 {
		t.Errorf("Alpha = %v, want 1 after completion", n.Alpha)
	}
}

// --- Delta scaling ---

func TestPositionDeltasAreOwnSizeFractions(t *testing.T) {
	n := playNode(t) // 200x100
	if err := n.Play(AnimationSpec{
		Frames: 10,
		Mark:   Float(MarkOpening),
		Deltas: map[Prop]Delta{
			PropX: {Value: 0.5},
			PropY: {Value: 0.5},
		},
	}); err != nil {
		t.Fatal(err)
	}
	// Frame 0, t=1: x moved by 0.5*W, y by 0.5*H.
	if n.X != 100 {
		t.Errorf("X = %v, want 100 (+0.5 of width)", n.X)
	}
	if n.Y != 50 {
		t.Errorf("Y = %v, want 50 (+0.5 of height)", n.Y)
	}
}

func TestRotationDeltasAreTurns(t *testing.T) {
	n := playNode(t)
	if err := n.Play(AnimationSpec{
		Frames: 10,
		Mark:   Float(MarkOpening),
		Deltas: map[Prop]Delta{PropRotation: {Value: 0.25}},
	}); err != nil {
		t.Fatal(err)
	}
	if n.Rotation != 90 {
		t.Errorf("Rotation = %v, want 90 (quarter turn)", n.Rotation)
	}
}

func TestStrengthMultipliesDeltas(t *testing.T) {
	n := playNode(t)
	if err := n.Play(AnimationSpec{
		Frames:   10,
		Mark:     Float(MarkOpening),
		Strength: 0.5,
		Deltas:   map[Prop]Delta{PropAlpha: {Value: -1}},
	}); err != nil {
		t.Fatal(err)
	}
	if n.Alpha != 0.5 {
		t.Errorf("Alpha = %v, want 0.5 (half-strength)", n.Alpha)
	}
}

func TestFuncDeltaReceivesT(t *testing.T) {
	n := playNode(t)
	var seen []float64
	if err := n.Play(AnimationSpec{
		Frames: 4,
		Mark:   Float(MarkOpening),
		Deltas: map[Prop]Delta{PropAlpha: {Func: func(t float64) float64 {
			seen = append(seen, t)
			return -0.5 // constant excursion; the t factor still applies
		}}},
	}); err != nil {
		t.Fatal(err)
	}
	n.tickAnim()
	if len(seen) < 2 || seen[0] != 1 || seen[1] != 0.75 {
		t.Errorf("t sequence = %v, want [1 0.75 ...]", seen)
	}
}

func TestEasedDelta(t *testing.T) {
	d := Eased(ease.Linear, 2)
	if got := d.Func(0.5); math.Abs(got-1) > 1e-6 {
		t.Errorf("Eased(Linear, 2)(0.5) = %v, want 1", got)
	}
}

// --- Completion and restoration ---

func TestCompletionRestoresBackup(t *testing.T) {
	n := playNode(t)
	n.Alpha = 0.8
	if err := n.Play(AnimationSpec{
		Frames: 3,
		Mark:   Float(MarkOpening),
		Deltas: map[Prop]Delta{PropAlpha: {Value: -0.5}},
	}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		n.tickAnim()
	}
	if n.Animating() {
		t.Error("animation should have finished")
	}
	if n.Alpha != 0.8 {
		t.Errorf("Alpha = %v, want 0.8 (exact restore)", n.Alpha)
	}
}

func TestCompletionCallbacksFire(t *testing.T) {
	n := playNode(t)
	var specDone, optDone bool
	err := n.PlayWith(AnimationSpec{
		Frames:    2,
		Mark:      Float(MarkOpening),
		Deltas:    map[Prop]Delta{PropAlpha: {Value: -1}},
		Completed: func(*Node) { specDone = true },
	}, PlayOptions{OnComplete: func(*Node) { optDone = true }})
	if err != nil {
		t.Fatal(err)
	}
	n.tickAnim()
	n.tickAnim()
	if !specDone || !optDone {
		t.Errorf("callbacks fired: spec=%v opts=%v, want both", specDone, optDone)
	}
}

func TestPlayStateRoundTrip(t *testing.T) {
	n := playNode(t)
	_ = n.Play(AnimationSpec{
		Frames: 2,
		Mark:   Float(MarkOpening),
		Deltas: map[Prop]Delta{PropAlpha: {Value: -1}},
	})
	if n.State != StatePlay {
		t.Errorf("State = %d, want StatePlay during the run", n.State)
	}
	n.tickAnim()
	n.tickAnim()
	if n.State != StateIdle {
		t.Errorf("State = %d, want StateIdle after completion", n.State)
	}
}

// --- Interruption ---

func TestInterruptionRestoresBeforeResnapshot(t *testing.T) {
	n := playNode(t)
	spec := AnimationSpec{
		Frames: 10,
		Mark:   Float(MarkOpening),
		Deltas: map[Prop]Delta{PropAlpha: {Value: -0.5}},
	}
	_ = n.Play(spec)
	n.tickAnim()
	n.tickAnim()

	// Redirect mid-run: the backup must round-trip, not compound.
	_ = n.Play(spec)
	if n.anim.backup[PropAlpha] != 1 {
		t.Errorf("backup = %v, want 1 (original value)", n.anim.backup[PropAlpha])
	}
	for i := 0; i < 10; i++ {
		n.tickAnim()
	}
	if n.Alpha != 1 {
		t.Errorf("Alpha = %v, want 1 after repeated play and completion", n.Alpha)
	}
}

func TestInterruptionSkipsCompletionCallback(t *testing.T) {
	n := playNode(t)
	var done bool
	_ = n.Play(AnimationSpec{
		Frames:    10,
		Mark:      Float(MarkOpening),
		Deltas:    map[Prop]Delta{PropAlpha: {Value: -1}},
		Completed: func(*Node) { done = true },
	})
	n.tickAnim()
	_ = n.Play(AnimationSpec{
		Frames: 2,
		Mark:   Float(MarkOpening),
		Deltas: map[Prop]Delta{PropAlpha: {Value: -1}},
	})
	if done {
		t.Error("interrupted run must not fire its completion callback")
	}
}

// --- Pulse continuation ---

func TestContinueAnimRemapsFrame(t *testing.T) {
	n := playNode(t)
	spec := AnimationSpec{
		Frames: 10,
		Mark:   Float(5),
		Deltas: map[Prop]Delta{PropAlpha: {Value: -0.5}},
	}
	_ = n.playEvent(spec, StatePressHold, nil)
	n.tickAnim()
	n.tickAnim() // frame 2, before the turnaround

	_ = n.playEvent(spec, StatePressHold, nil)
	// frame = 5 + floor((1 - 2/5) * (10-5)) = 8
	if n.anim.frame != 8 {
		t.Errorf("frame = %d, want 8 after continuation", n.anim.frame)
	}
}

func TestContinueAnimPastMarkRestarts(t *testing.T) {
	n := playNode(t)
	spec := AnimationSpec{
		Frames: 10,
		Mark:   Float(5),
		Deltas: map[Prop]Delta{PropAlpha: {Value: -0.5}},
	}
	_ = n.playEvent(spec, StatePressHold, nil)
	for i := 0; i < 7; i++ {
		n.tickAnim()
	}
	_ = n.playEvent(spec, StatePressHold, nil)
	if n.anim.frame != 0 {
		t.Errorf("frame = %d, want 0 (restarted past the turnaround)", n.anim.frame)
	}
}

// --- Target-state interpolation ---

func TestNewStateLandsOnTarget(t *testing.T) {
	n := playNode(t) // 200x100
	err := n.PlayWith(AnimationSpec{
		Frames: 4,
		Mark:   Float(MarkOpening),
		Deltas: map[Prop]Delta{PropAlpha: {Value: -0.2}},
	}, PlayOptions{NewState: &Settings{W: Float(400)}})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		n.tickAnim()
	}
	s := n.Settings()
	if s.W == nil || *s.W != 400 {
		t.Errorf("W setting = %v, want 400 (target merged at completion)", s.W)
	}
}
