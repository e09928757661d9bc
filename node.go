package trellis

// nodeIDCounter is a plain counter (no atomic — trellis is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is a rectangle in the layout tree. A single flat struct is used for
// every node to avoid interface dispatch on the per-tick resolution path.
// Geometry fields (X, Y, W, H, AnchorPxX/Y, ConW/ConH) are written by the
// resolver each tick the node is dirty; callers configure nodes through
// Settings, not by assigning these fields.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	Parent   *Node
	children []*Node

	// Configuration (merged across Update calls)
	settings Settings

	// Resolved geometry, local to the parent
	X, Y float64
	W, H float64
	// Anchor pixel offset within the node's own bounds (CenterX*W, CenterY*H),
	// also the rotation/scale origin.
	AnchorPxX, AnchorPxY float64

	// Visual state (animatable)
	ScaleX, ScaleY float64
	Rotation       float64 // degrees
	Alpha          float64
	Color          Color

	// Scroll state. OffX/OffY are clamped to [0, scrollRange].
	OffX, OffY float64
	ConW, ConH float64 // content size (scrollable extents)

	// Inertial accumulators for flick scrolling.
	accumX, accumY float64

	// Grid role. Col and Row are -1 unless this node is a live cell of a
	// parent grid; a parked pool node also has Col == Row == -1.
	Col, Row int
	grid     *gridState // non-nil when this node is a grid container

	// Interaction
	State EventState

	// In-flight animation, nil when idle.
	anim *animState

	// Computed world transform (updated during the per-tick pass)
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// layoutDirty forces re-resolution of this node's geometry next tick.
	// The resolver also re-resolves when the parent's size changed.
	layoutDirty bool
	// resolved is false until the node has been measured against a parent
	// with valid geometry (deferred-retry state, not an error).
	resolved bool

	// Internal
	disposed bool
	// isCell marks nodes sized and positioned by a parent grid.
	isCell bool
	// isOverlay marks the shared selector overlay so hit testing skips it.
	isOverlay bool
}

// New creates a node from the given settings. The settings are validated
// (animation specs, fit mode) and Init hooks run immediately in base-to-derived
// order. The node has no geometry until it is added to a staged tree and a
// tick resolves it.
func New(settings Settings) *Node {
	if err := settings.validate(); err != nil {
		panic("trellis: " + err.Error())
	}
	n := &Node{
		ID:     nextNodeID(),
		Name:   settings.ID,
		ScaleX: 1,
		ScaleY: 1,
		Alpha:  1,
		Color:  ColorWhite,
		Col:    -1,
		Row:    -1,
	}
	n.transformDirty = true
	n.layoutDirty = true
	n.applySettings(settings)
	for _, hook := range n.settings.Init {
		hook(n)
	}
	return n
}

// Settings returns a copy of the node's current merged settings.
func (n *Node) Settings() Settings {
	return n.settings
}

// Update merges new settings over the node's current settings and marks the
// node for re-resolution next tick. Optional fields left nil in s keep their
// current values; hook slices append.
func (n *Node) Update(s Settings) {
	if err := s.validate(); err != nil {
		panic("trellis: " + err.Error())
	}
	n.applySettings(s)
	// Structural grid changes force a full window reassignment next tick.
	if n.grid != nil && (s.Database != nil || s.CellTemplate != nil || s.Cols != 0 || s.Rows != 0) {
		n.grid.initialized = false
	}
	n.layoutDirty = true
	n.transformDirty = true
}

// resetSettings discards the node's merged settings and rebuilds them from
// base. The grid manager uses this on recycled pool cells so a cell shows
// only its current record, not leftovers from records it displayed before.
func (n *Node) resetSettings(base Settings) {
	n.settings = Settings{}
	n.Name = ""
	n.Alpha = 1
	n.Color = ColorWhite
	n.applySettings(base)
}

// applySettings merges without validation. Used by Update and by the grid
// manager when pushing database records into recycled pool nodes.
func (n *Node) applySettings(s Settings) {
	n.settings.merge(s)
	if s.ID != "" {
		n.Name = s.ID
	}
	if s.Alpha != nil {
		n.Alpha = *s.Alpha
	}
	if s.Color != nil {
		n.Color = *s.Color
	}
}

// --- Tree manipulation ---

// AddChild appends child to this node's children. If child already has a
// parent, it is removed from that parent first. Panics if child is nil or
// child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	n.AddChildAt(child, len(n.children))
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("trellis: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChildAt (parent)")
		debugCheckDisposed(child, "AddChildAt (child)")
	}
	if isAncestor(child, n) {
		panic("trellis: adding child would create a cycle")
	}
	if index < 0 || index > len(n.children) {
		panic("trellis: child index out of range")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	markSubtreeDirty(child)
	n.layoutDirty = true
	for _, hook := range n.settings.Extend {
		hook(n, child)
	}
	if child.settings.OnAdd != nil {
		// Entry animation; the spec was validated when the settings were applied.
		_ = child.playEvent(*child.settings.OnAdd, StateAdd, nil)
	}
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node. If the child declares an OnRemove
// animation, detachment is deferred until the exit animation completes.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChild (parent)")
		debugCheckDisposed(child, "RemoveChild (child)")
	}
	if child.Parent != n {
		panic("trellis: child's parent is not this node")
	}
	if child.settings.OnRemove != nil && child.State != StateRemove {
		_ = child.playEvent(*child.settings.OnRemove, StateRemove, func(c *Node) {
			if c.Parent == n {
				n.detachChild(c)
			}
		})
		return
	}
	n.detachChild(child)
}

// detachChild unlinks child immediately, canceling any in-flight animation so
// the removed node stops receiving tick callbacks.
func (n *Node) detachChild(child *Node) {
	n.removeChildByPtr(child)
	child.Parent = nil
	child.anim = nil
	child.State = StateIdle
	markSubtreeDirty(child)
	n.layoutDirty = true
}

// RemoveChildAt removes and returns the child at the given index, skipping any
// exit animation.
func (n *Node) RemoveChildAt(index int) *Node {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChildAt")
	}
	if index < 0 || index >= len(n.children) {
		panic("trellis: child index out of range")
	}
	child := n.children[index]
	n.detachChild(child)
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children immediately. Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for _, child := range n.children {
		child.Parent = nil
		child.anim = nil
		child.State = StateIdle
		markSubtreeDirty(child)
	}
	n.children = n.children[:0]
	n.layoutDirty = true
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// ChildByID returns the direct child whose settings ID matches.
// Panics if no child matches; enumerate via Children to pre-check.
func (n *Node) ChildByID(id string) *Node {
	for _, child := range n.children {
		if child.Name == id {
			return child
		}
	}
	panic(lookupErrorf("trellis: no child with id %q", id))
}

// Cell returns the live node assigned to grid cell (col, row).
// Panics if this node is not a grid or the cell has no live node; use
// CellExists to pre-check.
func (n *Node) Cell(col, row int) *Node {
	if c, ok := n.cellLookup(col, row); ok {
		return c
	}
	panic(lookupErrorf("trellis: no live cell at (%d, %d)", col, row))
}

// CellExists reports whether a live node is currently assigned to (col, row).
func (n *Node) CellExists(col, row int) bool {
	_, ok := n.cellLookup(col, row)
	return ok
}

func (n *Node) cellLookup(col, row int) (*Node, bool) {
	if col < 0 || row < 0 {
		return nil, false
	}
	if n.grid != nil {
		for _, c := range n.grid.pool {
			if c.Col == col && c.Row == row {
				return c, true
			}
		}
		return nil, false
	}
	for _, c := range n.children {
		if c.Col == col && c.Row == row {
			return c, true
		}
	}
	return nil, false
}

// --- Scroll ---

// scrollRange returns the maximum scroll offsets max(0, content - own size).
func (n *Node) scrollRange() (scrW, scrH float64) {
	scrW = n.ConW - n.W
	if scrW < 0 {
		scrW = 0
	}
	scrH = n.ConH - n.H
	if scrH < 0 {
		scrH = 0
	}
	return scrW, scrH
}

// setScrollX sets OffX clamped to [0, scrW]. Clamping zeroes the inertial
// accumulator on this axis (hard stop, no bounce).
func (n *Node) setScrollX(v float64) {
	scrW, _ := n.scrollRange()
	if v < 0 {
		v = 0
		n.accumX = 0
	} else if v > scrW {
		v = scrW
		n.accumX = 0
	}
	if v != n.OffX {
		n.OffX = v
		n.layoutDirty = true
		n.transformDirty = true
	}
}

// setScrollY is the vertical counterpart of setScrollX.
func (n *Node) setScrollY(v float64) {
	_, scrH := n.scrollRange()
	if v < 0 {
		v = 0
		n.accumY = 0
	} else if v > scrH {
		v = scrH
		n.accumY = 0
	}
	if v != n.OffY {
		n.OffY = v
		n.layoutDirty = true
		n.transformDirty = true
	}
}

// SetScroll sets both scroll offsets, clamped.
func (n *Node) SetScroll(x, y float64) {
	n.setScrollX(x)
	n.setScrollY(y)
}

// Bounds returns the node's resolved rectangle in parent space,
// before the parent's scroll offset is applied.
func (n *Node) Bounds() Rect {
	return Rect{X: n.X, Y: n.Y, Width: n.W, Height: n.H}
}

// --- Disposal ---

// Dispose removes this node from its parent immediately (no exit animation),
// marks it as disposed, and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	if n.Parent != nil {
		n.Parent.detachChild(n)
	}
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		if child.isOverlay {
			// The selector overlay is shared stage state; release it
			// instead of disposing it with the subtree.
			continue
		}
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.anim = nil
	n.grid = nil
	n.settings = Settings{}
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty flags node and all descendants for transform recomputation
// and geometry re-resolution.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	node.layoutDirty = true
	node.resolved = false
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
