package trellis

// syntheticPointerEvent represents a single injected pointer event in screen
// coordinates. The stage is an overlay whose world space equals screen space,
// so injected events feed processPointer unconverted, identical to real mouse
// input.
type syntheticPointerEvent struct {
	screenX, screenY float64
	pressed          bool
	button           MouseButton
}

// InjectPress queues a pointer press event at the given screen coordinates
// (left button). The event is consumed on the next tick's processInput call.
func (st *Stage) InjectPress(x, y float64) {
	st.injectQueue = append(st.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectMove queues a pointer move event at the given screen coordinates
// with the button held down. Use this between InjectPress and InjectRelease
// to simulate a drag.
func (st *Stage) InjectMove(x, y float64) {
	st.injectQueue = append(st.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectRelease queues a pointer release event at the given screen
// coordinates.
func (st *Stage) InjectRelease(x, y float64) {
	st.injectQueue = append(st.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: false,
		button:  MouseButtonLeft,
	})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same screen coordinates. Consumes two ticks.
func (st *Stage) InjectClick(x, y float64) {
	st.InjectPress(x, y)
	st.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate ticks, and
// release at (toX, toY). The total sequence consumes `frames` ticks.
// Minimum frames is 2 (press + release).
func (st *Stage) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	st.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		st.InjectMove(x, y)
	}
	st.InjectRelease(toX, toY)
}

// processInjectedInput pops one event from the inject queue and feeds it
// through processPointer as pointer 0. Returns true if an event was consumed
// (real mouse input should be skipped).
func (st *Stage) processInjectedInput(mods KeyModifiers) bool {
	if len(st.injectQueue) == 0 {
		return false
	}
	evt := st.injectQueue[0]
	copy(st.injectQueue, st.injectQueue[1:])
	st.injectQueue = st.injectQueue[:len(st.injectQueue)-1]

	st.processPointer(0, evt.screenX, evt.screenY, evt.pressed, evt.button, mods)
	return true
}
