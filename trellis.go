package trellis

import "github.com/hajimehoshi/ebiten/v2"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at paint submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default fill tint.
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for positions, offsets, and sizes throughout the API.
type Vec2 struct {
	X, Y float64
}

// WhitePixel is a 1x1 white image used for solid color fills.
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite.toRGBA())
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// EventState is the per-node interaction state. Idle through ScaleTilt are
// pointer-driven; Add, Remove and Play are animation-driven transient states
// that return to Idle when the animation completes.
type EventState uint8

const (
	StateIdle       EventState = iota // no interaction
	StateHover                        // pointer over the node, no button
	StatePressHold                    // pointer pressed inside the node
	StateMoveScroll                   // movement past the dead zone while pressed
	StateScaleTilt                    // two-pointer pinch / wheel gesture
	StateAdd                          // entry animation in flight
	StateRemove                       // exit animation in flight
	StatePlay                         // caller-triggered animation in flight
)

// FitMode controls how a texture is mapped onto a node's rectangle.
type FitMode uint8

const (
	FitAll     FitMode = iota // scale uniformly so the whole texture fits (letterbox)
	FitStretch                // scale each axis independently to fill exactly
	FitWidth                  // scale uniformly to match the node's width
	FitHeight                 // scale uniformly to match the node's height
	FitCrop                   // scale uniformly to cover, cropping the overflow
)

// fitModeValid reports whether m is one of the declared fit modes.
func fitModeValid(m FitMode) bool {
	return m <= FitCrop
}

// Direction is a focus-navigation direction.
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// EventType identifies a kind of interaction or focus event.
type EventType uint8

const (
	EventPointerDown  EventType = iota // fires when a pointer button is pressed
	EventPointerUp                     // fires when a pointer button is released
	EventPointerMove                   // fires when the pointer moves (hover, no button)
	EventClick                         // fires on press then release over the same node
	EventDragStart                     // fires when movement exceeds the drag dead zone
	EventDrag                          // fires each frame while dragging
	EventDragEnd                       // fires when the pointer is released after dragging
	EventPinch                         // fires during a two-finger pinch/rotate gesture
	EventPointerEnter                  // fires when the pointer enters a node's bounds
	EventPointerLeave                  // fires when the pointer leaves a node's bounds
	EventFocusChange                   // fires when the selected node changes
	EventNavigate                      // fires when a directional navigation resolves
)

// Prop identifies an animatable numeric property on a Node. The animation
// interpreter drives properties exclusively through this closed set; every
// value maps to a typed accessor pair in propAccessors.
type Prop uint8

const (
	PropX        Prop = iota // local X; animation deltas are fractions of the node's width
	PropY                    // local Y; deltas are fractions of the node's height
	PropAnchorX              // anchor pixel offset X; deltas are fractions of width
	PropAnchorY              // anchor pixel offset Y; deltas are fractions of height
	PropRotation             // rotation in degrees; deltas are turns (multiplied by 360)
	PropScaleX               // horizontal scale factor
	PropScaleY               // vertical scale factor
	PropAlpha                // opacity in [0, 1]
	PropRed                  // fill color red component
	PropGreen                // fill color green component
	PropBlue                 // fill color blue component
	PropOffX                 // horizontal scroll offset
	PropOffY                 // vertical scroll offset
	propCount
)

// propAccessor is a typed get/set pair for one animatable property.
type propAccessor struct {
	get func(*Node) float64
	set func(*Node, float64)
}

// propAccessors is the dispatch table built once at package init. It replaces
// string-keyed dynamic property access with direct field accessors.
var propAccessors = [propCount]propAccessor{
	PropX:        {func(n *Node) float64 { return n.X }, func(n *Node, v float64) { n.X = v; n.transformDirty = true }},
	PropY:        {func(n *Node) float64 { return n.Y }, func(n *Node, v float64) { n.Y = v; n.transformDirty = true }},
	PropAnchorX:  {func(n *Node) float64 { return n.AnchorPxX }, func(n *Node, v float64) { n.AnchorPxX = v; n.transformDirty = true }},
	PropAnchorY:  {func(n *Node) float64 { return n.AnchorPxY }, func(n *Node, v float64) { n.AnchorPxY = v; n.transformDirty = true }},
	PropRotation: {func(n *Node) float64 { return n.Rotation }, func(n *Node, v float64) { n.Rotation = v; n.transformDirty = true }},
	PropScaleX:   {func(n *Node) float64 { return n.ScaleX }, func(n *Node, v float64) { n.ScaleX = v; n.transformDirty = true }},
	PropScaleY:   {func(n *Node) float64 { return n.ScaleY }, func(n *Node, v float64) { n.ScaleY = v; n.transformDirty = true }},
	PropAlpha:    {func(n *Node) float64 { return n.Alpha }, func(n *Node, v float64) { n.Alpha = v }},
	PropRed:      {func(n *Node) float64 { return n.Color.R }, func(n *Node, v float64) { n.Color.R = v }},
	PropGreen:    {func(n *Node) float64 { return n.Color.G }, func(n *Node, v float64) { n.Color.G = v }},
	PropBlue:     {func(n *Node) float64 { return n.Color.B }, func(n *Node, v float64) { n.Color.B = v }},
	PropOffX:     {func(n *Node) float64 { return n.OffX }, func(n *Node, v float64) { n.setScrollX(v) }},
	PropOffY:     {func(n *Node) float64 { return n.OffY }, func(n *Node, v float64) { n.setScrollY(v) }},
}

// GetProp returns the current value of an animatable property.
// Panics on an out-of-range Prop.
func (n *Node) GetProp(p Prop) float64 {
	if p >= propCount {
		panic("trellis: unknown property")
	}
	return propAccessors[p].get(n)
}

// SetProp sets an animatable property directly, bypassing animation state.
func (n *Node) SetProp(p Prop, v float64) {
	if p >= propCount {
		panic("trellis: unknown property")
	}
	propAccessors[p].set(n, v)
}

// InteractionEvent carries interaction and focus data for the ECS bridge and
// scene-level listeners.
type InteractionEvent struct {
	Type      EventType
	NodeID    uint32
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
	// Drag fields (valid for EventDragStart, EventDrag, EventDragEnd)
	StartX float64
	StartY float64
	DeltaX float64
	DeltaY float64
	// Pinch fields (valid for EventPinch)
	Scale      float64
	ScaleDelta float64
	Rotation   float64
	RotDelta   float64
	// Focus fields (valid for EventFocusChange, EventNavigate)
	Direction Direction
}

// Float returns a pointer to v. Used to set optional Settings and
// AnimationSpec fields in literals.
func Float(v float64) *float64 {
	return &v
}
