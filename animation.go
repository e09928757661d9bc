package trellis

import (
	"math"

	"github.com/tanema/gween/ease"
)

// Mark values with declared meaning. A positive mark is the frame index of the
// turnaround between the outbound and return phases of a round-trip; a
// fractional mark in (0, 1) is scaled by the frame count at Play time.
const (
	MarkOpening  = 0.0  // play from a perturbed start toward identity
	MarkClosing  = -1.0 // play from identity toward the perturbed state
	MarkFromSpec = -2.0 // override sentinel: reuse the spec's declared mark
)

// Delta declares how one property departs from its saved value. When Func is
// set it is invoked with the interpolation parameter t and wins over Value.
// The applied value is always saved + strength*t*delta.
type Delta struct {
	Value float64
	Func  func(t float64) float64
}

// Eased returns a Delta shaped by a gween easing curve scaled by amplitude.
// Any of the ease package's curves can drive a property this way.
func Eased(fn ease.TweenFunc, amplitude float64) Delta {
	return Delta{Func: func(t float64) float64 {
		return amplitude * float64(fn(float32(t), 0, 1, 1))
	}}
}

// AnimationSpec declares a parametric time-based animation over a property
// set. Immutable once handed to the interpreter: Play copies it into the
// node's live animation record.
type AnimationSpec struct {
	// Frames is the duration in ticks. Must be positive.
	Frames int
	// Mark encodes the animation shape (MarkOpening, MarkClosing, or a
	// turnaround frame index). Nil is a configuration error unless the Play
	// call overrides it.
	Mark *float64
	// Strength multiplies every delta. Zero means 1.
	Strength float64
	// Deltas maps each animated property to its excursion.
	Deltas map[Prop]Delta
	// Completed fires when a run of this spec finishes (not when interrupted).
	Completed func(*Node)
}

// validate checks the statically checkable fields. Mark presence is checked at
// Play time because an override may supply it.
func (s *AnimationSpec) validate() error {
	if s.Frames <= 0 {
		return configErrorf("animation frames must be positive, got %d", s.Frames)
	}
	return nil
}

// PlayOptions carries the optional arguments of PlayWith.
type PlayOptions struct {
	// NewState is a target-state interpolation riding alongside the property
	// animation. Declared fields are interpolated from their current values to
	// the target through the full geometry-update path.
	NewState *Settings
	// Mark overrides the spec's mark. Nil or MarkFromSpec keeps the spec's.
	Mark *float64
	// Event tags the run; zero means StatePlay.
	Event EventState
	// OnComplete fires after restoration when the run finishes.
	OnComplete func(*Node)
}

// animState is a node's in-flight animation record.
type animState struct {
	frame    int
	frames   int
	mark     float64
	strength float64
	deltas   map[Prop]Delta
	// backup holds the pre-animation value of every animated property.
	backup       map[Prop]float64
	newstate     *Settings
	newstateFrom Settings
	event        EventState
	specDone     func(*Node)
	onComplete   func(*Node)
}

// t returns the instantaneous interpolation parameter for the current frame.
// t measures distance from identity: 0 is the resting state, 1 the fully
// perturbed state.
func (a *animState) t() float64 {
	f := float64(a.frame)
	fr := float64(a.frames)
	switch {
	case a.mark == MarkOpening:
		return 1 - f/fr
	case a.mark == MarkClosing:
		return f / fr
	case f < a.mark:
		return f / a.mark
	default:
		if fr == a.mark {
			return 1
		}
		return 1 - (f-a.mark)/(fr-a.mark)
	}
}

// Play begins or redirects an animation run using the spec's own mark.
func (n *Node) Play(spec AnimationSpec) error {
	return n.PlayWith(spec, PlayOptions{})
}

// PlayWith begins or redirects an animation run. Configuration errors
// (non-positive frames, missing mark) are returned before any state mutation.
// If an animation is already in flight, its backup is restored first and a new
// backup is snapshotted from the current (partially-applied) state, so
// animations compose from wherever they were interrupted.
func (n *Node) PlayWith(spec AnimationSpec, opts PlayOptions) error {
	if err := spec.validate(); err != nil {
		return err
	}
	mark := spec.Mark
	if opts.Mark != nil && *opts.Mark != MarkFromSpec {
		mark = opts.Mark
	}
	if mark == nil {
		return configErrorf("animation mark missing and no override given")
	}

	// Defensive normalization.
	frames := spec.Frames
	m := *mark
	if m > 0 && m < 1 {
		m = math.Round(m * float64(frames))
	}
	if m > float64(frames) {
		// A fractional mark above the frame count rounds rather than
		// truncates, so the swapped duration keeps the full excursion.
		frames, m = int(math.Round(m)), float64(frames)
	}
	strength := spec.Strength
	if strength == 0 {
		strength = 1
	}
	event := opts.Event
	if event == 0 {
		event = StatePlay
	}

	// Interruption: put the node back to its pre-animation state before
	// snapshotting, so repeated Play calls round-trip the backup exactly.
	if n.anim != nil {
		n.restoreBackup()
	}

	a := &animState{
		frames:     frames,
		mark:       m,
		strength:   strength,
		deltas:     spec.Deltas,
		backup:     make(map[Prop]float64, len(spec.Deltas)),
		newstate:   opts.NewState,
		event:      event,
		specDone:   spec.Completed,
		onComplete: opts.OnComplete,
	}
	for p := range spec.Deltas {
		a.backup[p] = n.GetProp(p)
	}
	if opts.NewState != nil {
		a.newstateFrom = n.settings
	}
	n.anim = a

	switch event {
	case StateAdd, StateRemove, StatePlay:
		n.State = event
	}

	// Apply frame 0 immediately so opening shapes start perturbed without a
	// one-tick flash of the resting state.
	n.applyAnim()
	return nil
}

// playEvent runs one of the settings-declared pulse specs. A press or hover
// pulse that is still before its turnaround is continued (direction reversed
// without a visual pop) instead of restarted.
func (n *Node) playEvent(spec AnimationSpec, event EventState, onComplete func(*Node)) error {
	if (event == StatePressHold || event == StateHover) &&
		n.anim != nil && n.anim.event == event && n.continueAnim() {
		return nil
	}
	return n.PlayWith(spec, PlayOptions{Event: event, OnComplete: onComplete})
}

// continueAnim remaps the remaining progress of a round-trip animation that
// has not yet reached its turnaround:
//
//	frame = mark + floor((1 - frame/mark) * (frames - mark))
//
// Reports whether a remap happened.
func (n *Node) continueAnim() bool {
	a := n.anim
	if a == nil || a.mark <= 0 {
		return false
	}
	f := float64(a.frame)
	if f >= a.mark {
		return false
	}
	a.frame = int(a.mark + math.Floor((1-f/a.mark)*(float64(a.frames)-a.mark)))
	return true
}

// Animating reports whether an animation run is in flight.
func (n *Node) Animating() bool {
	return n.anim != nil
}

// tickAnim advances the animation by one frame and applies it. Completion
// restores the backed-up properties and fires the completion callbacks.
// Backup restoration is atomic within the tick.
func (n *Node) tickAnim() {
	a := n.anim
	if a == nil {
		return
	}
	if a.frame < a.frames {
		a.frame++
	}
	n.applyAnim()
	if a.frame >= a.frames {
		n.finishAnim()
	}
}

// applyAnim writes every animated property for the current t. Position and
// anchor deltas are fractions of the node's own size; rotation deltas are
// turns.
func (n *Node) applyAnim() {
	a := n.anim
	if a == nil {
		return
	}
	t := a.t()
	for p, d := range a.deltas {
		delta := d.Value
		if d.Func != nil {
			delta = d.Func(t)
		}
		switch p {
		case PropX, PropAnchorX:
			delta *= n.W
		case PropY, PropAnchorY:
			delta *= n.H
		case PropRotation:
			delta *= 360
		}
		n.SetProp(p, a.backup[p]+a.strength*t*delta)
	}
	if a.newstate != nil {
		patch := lerpToward(a.newstateFrom, *a.newstate, t)
		n.applySettings(patch)
		n.layoutDirty = true
		n.transformDirty = true
	}
}

// finishAnim snaps the run to its end state: backed-up properties are restored
// (manual mutations to other properties during the run are untouched), the
// target state — if any — lands exactly, and completion callbacks fire.
// Also called by the grid manager before reassigning a mid-animation cell.
func (n *Node) finishAnim() {
	a := n.anim
	if a == nil {
		return
	}
	n.anim = nil
	n.restoreBackupOf(a)
	if a.newstate != nil {
		if a.mark == MarkClosing {
			// A closing run ends at its origin, not the target.
			n.applySettings(lerpToward(a.newstateFrom, *a.newstate, 1))
		} else {
			n.applySettings(*a.newstate)
		}
		n.layoutDirty = true
		n.transformDirty = true
	}
	switch a.event {
	case StateAdd, StateRemove, StatePlay:
		if n.State == a.event {
			n.State = StateIdle
		}
	}
	if a.specDone != nil {
		a.specDone(n)
	}
	if a.onComplete != nil {
		a.onComplete(n)
	}
}

// restoreBackup restores the current run's backed-up property values.
func (n *Node) restoreBackup() {
	n.restoreBackupOf(n.anim)
}

func (n *Node) restoreBackupOf(a *animState) {
	if a == nil {
		return
	}
	for p, v := range a.backup {
		n.SetProp(p, v)
	}
}
