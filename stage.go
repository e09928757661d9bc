package trellis

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
)

// EventStore is the interface for optional ECS integration. When set on a
// Stage, interaction and focus events are forwarded to it.
type EventStore interface {
	EmitEvent(event InteractionEvent)
}

// Stage is the top-level object that owns the layout tree, the pointer and
// focus state, and the per-tick pipeline. All node mutation happens
// synchronously inside Update and Draw on one goroutine; no locking.
type Stage struct {
	root  *Node
	store EventStore
	debug bool

	// Viewport (root) size in pixels; set via Resize or the first Draw.
	viewW, viewH float64

	// Focus state. selected is a non-owning reference; overlay is the single
	// selector instance reused across nodes, never destroyed.
	selected    *Node
	overlay     *Node
	pending     pendingSelection
	focusNode   *Node
	focusTweenX *gween.Tween
	focusTweenY *gween.Tween

	// Pointer state
	captured     [maxPointers]*Node
	pointers     [maxPointers]pointerState
	dragDeadZone float64
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
	pinch        pinchState

	// Key/gamepad state
	keyHeld     map[ebiten.Key]bool
	padHeld     map[padButton]bool
	padDeadZone map[ebiten.GamepadID]float64
	padIDs      []ebiten.GamepadID

	// Listeners
	listeners    []stageListener
	nextListener uint32

	// Testing
	injectQueue []syntheticPointerEvent
	cmdQueue    []Command
	testRunner  *TestRunner
}

// NewStage creates a stage with a pre-created root container and the shared
// selector overlay. The root fills the viewport and accepts events.
func NewStage(viewW, viewH float64) *Stage {
	root := New(Settings{
		ID:       "root",
		Behavior: &Behavior{Events: true},
	})
	overlay := New(Settings{
		ID:    "selector",
		RelW:  Float(1),
		RelH:  Float(1),
		Color: &Color{R: 1, G: 1, B: 1, A: 1},
		Alpha: Float(0.25),
	})
	overlay.isOverlay = true
	st := &Stage{
		root:         root,
		overlay:      overlay,
		viewW:        viewW,
		viewH:        viewH,
		dragDeadZone: defaultDragDeadZone,
		keyHeld:      make(map[ebiten.Key]bool),
		padHeld:      make(map[padButton]bool),
		padDeadZone:  make(map[ebiten.GamepadID]float64),
	}
	return st
}

// Root returns the stage's root container node.
func (st *Stage) Root() *Node {
	return st.root
}

// Resize sets the viewport size the root resolves against.
func (st *Stage) Resize(w, h float64) {
	st.viewW = w
	st.viewH = h
	st.root.layoutDirty = true
}

// SetEventStore sets the optional ECS bridge.
func (st *Stage) SetEventStore(store EventStore) {
	st.store = store
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics and tree shape warnings are printed to stderr.
func (st *Stage) SetDebugMode(enabled bool) {
	st.debug = enabled
	globalDebug = enabled
}

// Update runs one tick: geometry resolution (top-down, parents before
// children), world transforms, input processing, inertial integration, the
// focus scroll tween, animation advancement, and lifecycle hooks. One Update
// per rendered frame.
func (st *Stage) Update() {
	dt := float32(1.0 / float64(ebiten.TPS()))
	var stats tickStats
	var mark time.Time
	if st.debug {
		mark = time.Now()
	}

	// Resolve geometry first so hit testing sees current bounds.
	resolveTree(st.root, st.viewW, st.viewH)
	updateWorldTransform(st.root, identityTransform, 1.0, 0, 0, false)
	if st.debug {
		stats.resolveTime = time.Since(mark)
		mark = time.Now()
	}

	st.processInput()

	st.integrateInertia(st.root)
	st.advanceFocusTween(dt)
	if st.debug {
		stats.inputTime = time.Since(mark)
		mark = time.Now()
	}

	// Scroll changes may have shifted virtualization windows; re-resolve so
	// animations and selection operate on current geometry.
	resolveTree(st.root, st.viewW, st.viewH)

	st.advanceAnimations(st.root)
	st.runTickHooks(st.root)
	st.resolvePendingSelection()
	st.updateOverlay()

	updateWorldTransform(st.root, identityTransform, 1.0, 0, 0, false)
	if st.debug {
		stats.animTime = time.Since(mark)
		stats.animatingNode = countAnimating(st.root)
		stats.liveCells = countLiveCells(st.root)
		st.debugLog(stats)
	}
}

// advanceAnimations steps every in-flight animation by one frame, top-down.
// Restoration on completion is atomic within this tick.
func (st *Stage) advanceAnimations(n *Node) {
	n.tickAnim()
	// Children may be detached by completion callbacks; iterate a snapshot
	// index-safe from the end.
	for i := len(n.children) - 1; i >= 0; i-- {
		if i < len(n.children) {
			st.advanceAnimations(n.children[i])
		}
	}
}

// runTickHooks invokes the per-node Tick hooks in tree order.
func (st *Stage) runTickHooks(n *Node) {
	for _, hook := range n.settings.Tick {
		hook(n)
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if i < len(n.children) {
			st.runTickHooks(n.children[i])
		}
	}
}

// Draw paints the layout tree onto screen. The stage adopts the screen size
// as its viewport when it differs.
func (st *Stage) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	if w, h := float64(b.Dx()), float64(b.Dy()); w != st.viewW || h != st.viewH {
		st.Resize(w, h)
	}
	st.paintNode(screen, st.root)
}

// RunConfig configures the Run convenience loop.
type RunConfig struct {
	Title  string
	Width  int
	Height int
}

type stageGame struct {
	stage *Stage
}

func (g *stageGame) Update() error {
	g.stage.Update()
	return nil
}

func (g *stageGame) Draw(screen *ebiten.Image) {
	g.stage.Draw(screen)
}

func (g *stageGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Run opens a window and drives the stage's Update/Draw until the window
// closes. For full control implement ebiten.Game yourself and call
// Stage.Update and Stage.Draw directly.
func Run(stage *Stage, cfg RunConfig) error {
	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
		stage.Resize(float64(cfg.Width), float64(cfg.Height))
	}
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	return ebiten.RunGame(&stageGame{stage: stage})
}

// globalDebug mirrors the most recently set Stage debug flag so node
// operations (which lack a Stage pointer) can check it cheaply. Only valid
// with a single Stage; multiple Stages with differing debug modes reflect
// whichever called SetDebugMode last.
var globalDebug bool
