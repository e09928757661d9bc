package trellis

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels

	// Inertial scroll tuning.
	scrollFriction = 0.85 // per-tick decay applied while integrating drag deltas
	scrollDamping  = 0.92 // per-tick decay of the accumulator after release
	accumDeadZone  = 0.05 // accumulator magnitude below which the flick stops

	// Gesture response coefficients, independent per device class.
	mouseScaleRate = 0.10 // scale change per wheel notch
	mouseTiltRate  = 6.0  // degrees per wheel notch with Shift held
	touchScaleRate = 1.0  // scale change per unit pinch-distance ratio delta
	touchTiltRate  = 1.0  // rotation response to pinch-angle delta

	defaultScaleMin = 0.5
	defaultScaleMax = 2.0
)

// pointerState tracks one pointer slot across ticks.
type pointerState struct {
	down      bool
	startX    float64
	startY    float64
	lastX     float64
	lastY     float64
	hitNode   *Node
	hoverNode *Node // last node the pointer hovered (for enter/leave)
	dragging  bool
	button    MouseButton // button captured at press time
}

// pinchState tracks an in-progress two-pointer gesture.
type pinchState struct {
	active       bool
	pointer0     int
	pointer1     int
	initialDist  float64
	initialAngle float64
	prevDist     float64
	prevAngle    float64
}

// Listen registers a stage-level listener for all interaction and focus
// events. Returns a remove function.
func (st *Stage) Listen(fn func(InteractionEvent)) func() {
	st.nextListener++
	id := st.nextListener
	st.listeners = append(st.listeners, stageListener{id: id, fn: fn})
	return func() {
		for i := range st.listeners {
			if st.listeners[i].id == id {
				copy(st.listeners[i:], st.listeners[i+1:])
				st.listeners[len(st.listeners)-1] = stageListener{}
				st.listeners = st.listeners[:len(st.listeners)-1]
				return
			}
		}
	}
}

type stageListener struct {
	id uint32
	fn func(InteractionEvent)
}

// CapturePointer routes all events for pointerID to the given node.
func (st *Stage) CapturePointer(pointerID int, node *Node) {
	if pointerID >= 0 && pointerID < maxPointers {
		st.captured[pointerID] = node
	}
}

// ReleasePointer stops routing events for pointerID to a captured node.
func (st *Stage) ReleasePointer(pointerID int) {
	if pointerID >= 0 && pointerID < maxPointers {
		st.captured[pointerID] = nil
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (st *Stage) SetDragDeadZone(pixels float64) {
	st.dragDeadZone = pixels
}

// --- Hit testing ---

// hitTest finds the topmost event-enabled node at (wx, wy), honoring the
// occlusion rule: a node with an animation in progress, and the globally
// selected node, intercept the point before their descendants are tested.
func (st *Stage) hitTest(wx, wy float64) *Node {
	return st.hitNode(st.root, wx, wy)
}

func (st *Stage) hitNode(n *Node, wx, wy float64) *Node {
	if n.disposed || n.isOverlay {
		return nil
	}
	events := n.settings.behavior().Events
	if events && (n.anim != nil || n == st.selected) {
		lx, ly := n.WorldToLocal(wx, wy)
		if n.containsLocal(lx, ly) {
			return n
		}
	}
	// Later children draw on top; test them first.
	for i := len(n.children) - 1; i >= 0; i-- {
		if hit := st.hitNode(n.children[i], wx, wy); hit != nil {
			return hit
		}
	}
	if events {
		lx, ly := n.WorldToLocal(wx, wy)
		if n.containsLocal(lx, ly) {
			return n
		}
	}
	return nil
}

// --- Input processing ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// processInput is called from Stage.Update to handle pointer, touch, wheel,
// key and gamepad input. World transforms are refreshed beforehand.
func (st *Stage) processInput() {
	mods := readModifiers()
	if st.testRunner != nil {
		st.testRunner.step(st)
	}
	if st.processInjectedInput(mods) {
		st.detectPinch(mods)
		st.processCommands(mods)
		return
	}
	st.processMousePointer(mods)
	st.processWheel(mods)
	st.processTouchPointers(mods)
	st.detectPinch(mods)
	st.processCommands(mods)
}

// processMousePointer handles mouse input (pointer 0).
func (st *Stage) processMousePointer(mods KeyModifiers) {
	mx, my := ebiten.CursorPosition()
	wx, wy := float64(mx), float64(my)

	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		if left {
			button = MouseButtonLeft
		} else if right {
			button = MouseButtonRight
		} else {
			button = MouseButtonMiddle
		}
	}

	st.processPointer(0, wx, wy, pressed, button, mods)
}

// processWheel applies the mouse wheel to the hovered scale/tilt node. The
// wheel is the pointer-device path into ScaleTilt; pinch is the touch path.
func (st *Stage) processWheel(mods KeyModifiers) {
	_, wheelY := ebiten.Wheel()
	if wheelY == 0 {
		return
	}
	node := st.pointers[0].hoverNode
	if node == nil {
		return
	}
	b := node.settings.behavior()
	if mods&ModShift != 0 && b.Tilt {
		node.Rotation += wheelY * mouseTiltRate
		node.transformDirty = true
		st.enterScaleTilt(node)
	} else if b.Scale {
		st.applyScale(node, node.ScaleX+wheelY*mouseScaleRate)
		st.enterScaleTilt(node)
	}
}

// enterScaleTilt moves a node into the ScaleTilt state for this gesture.
func (st *Stage) enterScaleTilt(node *Node) {
	if node.State == StateIdle || node.State == StateHover || node.State == StatePressHold {
		node.State = StateScaleTilt
	}
}

// applyScale sets both scale axes, clamped to the node's declared range.
func (st *Stage) applyScale(node *Node, scale float64) {
	lo := floatOr(node.settings.ScaleMin, defaultScaleMin)
	hi := floatOr(node.settings.ScaleMax, defaultScaleMax)
	if scale < lo {
		scale = lo
	} else if scale > hi {
		scale = hi
	}
	node.ScaleX = scale
	node.ScaleY = scale
	node.transformDirty = true
}

// processTouchPointers handles touch input (pointers 1-9).
func (st *Stage) processTouchPointers(mods KeyModifiers) {
	touchIDs := ebiten.AppendTouchIDs(st.prevTouchIDs[:0])
	st.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := st.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		st.processPointer(slot, float64(tx), float64(ty), true, MouseButtonLeft, mods)
	}

	// Release any touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if st.touchUsed[i] && !activeSlots[i] {
			ps := &st.pointers[i]
			if ps.down {
				st.processPointer(i, ps.lastX, ps.lastY, false, MouseButtonLeft, mods)
			}
			st.touchUsed[i] = false
			st.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (st *Stage) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if st.touchUsed[i] && st.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !st.touchUsed[i] {
			st.touchUsed[i] = true
			st.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer runs the pointer state machine for a single pointer.
func (st *Stage) processPointer(pointerID int, wx, wy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &st.pointers[pointerID]

	var target *Node
	if st.captured[pointerID] != nil {
		target = st.captured[pointerID]
	} else {
		target = st.hitTest(wx, wy)
	}

	// Hover enter/leave when the hovered node changes.
	if target != ps.hoverNode {
		if old := ps.hoverNode; old != nil && !old.disposed {
			if old.State == StateHover {
				old.State = StateIdle
			}
			st.emit(EventPointerLeave, old, wx, wy, button, mods)
		}
		if target != nil {
			if target.State == StateIdle {
				target.State = StateHover
				if spec := target.settings.OnHover; spec != nil {
					_ = target.playEvent(*spec, StateHover, nil)
				}
			}
			st.emit(EventPointerEnter, target, wx, wy, button, mods)
		}
		ps.hoverNode = target
	}

	switch {
	case pressed && !ps.down:
		// Just pressed — capture the button for this interaction.
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = wx, wy
		ps.lastX, ps.lastY = wx, wy
		ps.hitNode = target
		ps.dragging = false

		if target != nil {
			target.State = StatePressHold
			if spec := target.settings.OnPress; spec != nil {
				// Restartable press pulse: a pulse still before its turnaround
				// is continued rather than restarted.
				_ = target.playEvent(*spec, StatePressHold, nil)
			}
		}
		st.emit(EventPointerDown, target, wx, wy, ps.button, mods)

	case !pressed && ps.down:
		// Just released.
		if ps.dragging {
			st.emitDrag(EventDragEnd, ps.hitNode, wx, wy, ps, mods)
		} else if ps.hitNode != nil && ps.hitNode == target {
			if fn := target.settings.Pressed; fn != nil {
				fn(target)
			}
			st.emit(EventClick, target, wx, wy, ps.button, mods)
		}
		st.releaseNode(ps.hitNode, target)
		st.emit(EventPointerUp, target, wx, wy, ps.button, mods)

		st.captured[pointerID] = nil
		ps.down = false
		ps.hitNode = nil
		ps.dragging = false

	case pressed && ps.down:
		// Held, possibly moved.
		dx := wx - ps.lastX
		dy := wy - ps.lastY
		node := ps.hitNode
		if dx != 0 || dy != 0 {
			if !ps.dragging && node != nil {
				b := node.settings.behavior()
				tdx := wx - ps.startX
				tdy := wy - ps.startY
				if (b.Scroll || b.Move) && math.Sqrt(tdx*tdx+tdy*tdy) > st.dragDeadZone {
					ps.dragging = true
					node.State = StateMoveScroll
					st.emitDrag(EventDragStart, node, wx, wy, ps, mods)
				}
			}
			if ps.dragging && node != nil {
				st.dragNode(node, dx, dy)
				st.emitDrag(EventDrag, node, wx, wy, ps, mods)
			}
		}
		ps.lastX, ps.lastY = wx, wy

	default:
		// Hover move.
		if wx != ps.lastX || wy != ps.lastY {
			st.emit(EventPointerMove, target, wx, wy, button, mods)
			ps.lastX, ps.lastY = wx, wy
		}
	}
}

// dragNode applies one tick of drag movement: scrolling accumulates into the
// inertial accumulator, moving shifts the node itself.
func (st *Stage) dragNode(node *Node, dx, dy float64) {
	b := node.settings.behavior()
	if b.Scroll {
		// Content follows the finger; the offset moves against the drag.
		node.accumX = scrollFriction * (node.accumX - dx)
		node.accumY = scrollFriction * (node.accumY - dy)
		node.setScrollX(node.OffX + node.accumX)
		node.setScrollY(node.OffY + node.accumY)
		if fn := node.settings.Scrolled; fn != nil {
			fn(node)
		}
	} else if b.Move {
		// Moving writes through to the settings so the next resolution pass
		// keeps the node where it was dropped.
		node.X += dx
		node.Y += dy
		node.settings.X = Float(node.X)
		node.settings.Y = Float(node.Y)
		node.transformDirty = true
	}
}

// releaseNode returns the pressed node to Hover/Idle and propagates the state
// reset to event-enabled ancestors.
func (st *Stage) releaseNode(node, target *Node) {
	if node == nil || node.disposed {
		return
	}
	switch node.State {
	case StatePressHold, StateMoveScroll, StateScaleTilt:
		if node == target {
			node.State = StateHover
		} else {
			node.State = StateIdle
		}
	}
	for p := node.Parent; p != nil; p = p.Parent {
		if !p.settings.behavior().Events {
			continue
		}
		switch p.State {
		case StatePressHold, StateMoveScroll, StateScaleTilt:
			p.State = StateIdle
		}
	}
}

// integrateInertia advances flick decay for every node with a live
// accumulator that is no longer being dragged, and decays per-axis
// accumulators down to zero below the dead zone.
func (st *Stage) integrateInertia(n *Node) {
	if n.State != StateMoveScroll && (n.accumX != 0 || n.accumY != 0) {
		n.setScrollX(n.OffX + n.accumX)
		n.setScrollY(n.OffY + n.accumY)
		n.accumX *= scrollDamping
		n.accumY *= scrollDamping
		if math.Abs(n.accumX) < accumDeadZone {
			n.accumX = 0
		}
		if math.Abs(n.accumY) < accumDeadZone {
			n.accumY = 0
		}
		if fn := n.settings.Scrolled; fn != nil && (n.accumX != 0 || n.accumY != 0) {
			fn(n)
		}
	}
	for _, child := range n.children {
		st.integrateInertia(child)
	}
}

// --- Pinch detection ---

func (st *Stage) detectPinch(mods KeyModifiers) {
	var active [maxPointers]bool
	var count int
	for i := 1; i < maxPointers; i++ {
		if st.pointers[i].down {
			active[i] = true
			count++
		}
	}

	if count == 2 {
		var p0, p1 int
		found := 0
		for i := 1; i < maxPointers; i++ {
			if active[i] {
				if found == 0 {
					p0 = i
				} else {
					p1 = i
				}
				found++
				if found == 2 {
					break
				}
			}
		}

		ps0 := &st.pointers[p0]
		ps1 := &st.pointers[p1]

		cx := (ps0.lastX + ps1.lastX) / 2
		cy := (ps0.lastY + ps1.lastY) / 2
		dx := ps1.lastX - ps0.lastX
		dy := ps1.lastY - ps0.lastY
		dist := math.Sqrt(dx*dx + dy*dy)
		angle := math.Atan2(dy, dx)

		if !st.pinch.active {
			st.pinch.active = true
			st.pinch.pointer0 = p0
			st.pinch.pointer1 = p1
			st.pinch.initialDist = dist
			st.pinch.initialAngle = angle
			st.pinch.prevDist = dist
			st.pinch.prevAngle = angle
		} else {
			scale := 1.0
			if st.pinch.initialDist > 0 {
				scale = dist / st.pinch.initialDist
			}
			scaleDelta := 0.0
			if st.pinch.prevDist > 0 {
				scaleDelta = dist/st.pinch.prevDist - 1.0
			}
			rotation := angle - st.pinch.initialAngle
			rotDelta := angle - st.pinch.prevAngle

			st.applyPinch(cx, cy, scale, scaleDelta, rotation, rotDelta, mods)

			st.pinch.prevDist = dist
			st.pinch.prevAngle = angle
		}

		// Suppress drag for the two pinch pointers.
		ps0.dragging = false
		ps1.dragging = false
	} else if st.pinch.active {
		st.pinch.active = false
		node := st.pointers[st.pinch.pointer0].hitNode
		if node != nil && !node.disposed && node.State == StateScaleTilt {
			node.State = StateIdle
		}
	}
}

// applyPinch routes a pinch tick to the hit node of the gesture's first
// pointer, applying the touch-device response coefficients.
func (st *Stage) applyPinch(cx, cy, scale, scaleDelta, rotation, rotDelta float64, mods KeyModifiers) {
	node := st.pointers[st.pinch.pointer0].hitNode
	if node != nil && !node.disposed {
		b := node.settings.behavior()
		if b.Scale && scaleDelta != 0 {
			st.applyScale(node, node.ScaleX*(1+scaleDelta*touchScaleRate))
			st.enterScaleTilt(node)
		}
		if b.Tilt && rotDelta != 0 {
			node.Rotation += rotDelta * (180 / math.Pi) * touchTiltRate
			node.transformDirty = true
			st.enterScaleTilt(node)
		}
	}

	ev := InteractionEvent{
		Type:       EventPinch,
		GlobalX:    cx,
		GlobalY:    cy,
		Scale:      scale,
		ScaleDelta: scaleDelta,
		Rotation:   rotation,
		RotDelta:   rotDelta,
		Modifiers:  mods,
	}
	if node != nil {
		ev.NodeID = node.ID
	}
	st.publish(ev)
}

// --- Event dispatch ---

// emit publishes a pointer-class event to stage listeners and the ECS bridge.
func (st *Stage) emit(t EventType, node *Node, wx, wy float64, button MouseButton, mods KeyModifiers) {
	ev := InteractionEvent{
		Type:      t,
		GlobalX:   wx,
		GlobalY:   wy,
		Button:    button,
		Modifiers: mods,
	}
	if node != nil && !node.disposed {
		ev.NodeID = node.ID
		ev.LocalX, ev.LocalY = node.WorldToLocal(wx, wy)
	}
	st.publish(ev)
}

// emitDrag publishes a drag-class event with start/delta fields.
func (st *Stage) emitDrag(t EventType, node *Node, wx, wy float64, ps *pointerState, mods KeyModifiers) {
	ev := InteractionEvent{
		Type:      t,
		GlobalX:   wx,
		GlobalY:   wy,
		StartX:    ps.startX,
		StartY:    ps.startY,
		DeltaX:    wx - ps.lastX,
		DeltaY:    wy - ps.lastY,
		Button:    ps.button,
		Modifiers: mods,
	}
	if node != nil && !node.disposed {
		ev.NodeID = node.ID
		ev.LocalX, ev.LocalY = node.WorldToLocal(wx, wy)
	}
	st.publish(ev)
}

// publish fans an event out to listeners and the optional event store.
func (st *Stage) publish(ev InteractionEvent) {
	for _, l := range st.listeners {
		l.fn(ev)
	}
	if st.store != nil {
		st.store.EmitEvent(ev)
	}
}
