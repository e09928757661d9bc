package trellis

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// focusScrollDuration is the scroll-into-view animation length in seconds.
const focusScrollDuration = 0.25

// pendingSelection is a deferred grid-cell selection: navigation into a cell
// that is still outside the virtualization window selects it as soon as the
// animated scroll brings a live node to that (col, row).
type pendingSelection struct {
	grid *Node
	col  int
	row  int
}

// Selected returns the currently selected node, or nil.
func (st *Stage) Selected() *Node {
	if st.selected != nil && st.selected.disposed {
		st.selected = nil
	}
	return st.selected
}

// Select makes node the globally selected node (nil clears the selection) and
// moves the shared selector overlay over it, above the node's other children.
// This is the single entry point mutating selection state.
func (st *Stage) Select(node *Node) {
	if node != nil && node.disposed {
		return
	}
	st.pending = pendingSelection{}
	st.selected = node

	if st.overlay.Parent != nil {
		st.overlay.Parent.detachChild(st.overlay)
	}
	if node != nil {
		node.AddChild(st.overlay)
		st.overlay.layoutDirty = true
		// Remember the cell for Confirm's descend-into-previous behavior.
		if node.isCell && node.Parent != nil && node.Parent.grid != nil {
			node.Parent.grid.lastCol = node.Col
			node.Parent.grid.lastRow = node.Row
		}
	}

	ev := InteractionEvent{Type: EventFocusChange}
	if node != nil {
		ev.NodeID = node.ID
	}
	st.publish(ev)
}

// Navigate moves the selection one step in the given direction. Inside a grid
// the step is column/row arithmetic with animated scroll-into-view; among
// plain siblings it is a nearest-neighbor search on the direction's axis.
// Out-of-range steps are no-ops.
func (st *Stage) Navigate(dir Direction) {
	cur := st.Selected()
	if cur == nil || cur.Parent == nil {
		return
	}
	parent := cur.Parent
	if parent.settings.isGrid() && cur.Col >= 0 {
		st.navigateGrid(parent, cur, dir)
	} else {
		st.navigateSiblings(parent, cur, dir)
	}
}

// Back re-selects the current node's parent, or clears the selection at the
// root.
func (st *Stage) Back() {
	cur := st.Selected()
	if cur == nil {
		return
	}
	if cur.Parent == nil || cur.Parent == st.root {
		st.Select(nil)
		return
	}
	st.Select(cur.Parent)
}

// Confirm invokes the selected node's press behavior, or descends the
// selection into a grid/container: the previously selected cell when one is
// remembered, otherwise the first relevant child.
func (st *Stage) Confirm() {
	cur := st.Selected()
	if cur == nil {
		st.selectFirstChild(st.root)
		return
	}
	if cur.settings.isGrid() {
		g := cur.grid
		if g == nil {
			return
		}
		if c, ok := cur.cellLookup(g.lastCol, g.lastRow); ok {
			st.Select(c)
			return
		}
		if c, ok := cur.cellLookup(g.col0, g.row0); ok {
			st.Select(c)
		}
		return
	}
	if cur.settings.OnPress != nil || cur.settings.Pressed != nil {
		if spec := cur.settings.OnPress; spec != nil {
			_ = cur.playEvent(*spec, StatePressHold, nil)
		}
		if fn := cur.settings.Pressed; fn != nil {
			fn(cur)
		}
		return
	}
	st.selectFirstChild(cur)
}

func (st *Stage) selectFirstChild(n *Node) {
	for _, child := range n.children {
		if !child.isOverlay {
			st.Select(child)
			return
		}
	}
}

// navigateGrid steps the selection by one cell. A step out of the logical
// grid, or into a cell with no backing database record, is a no-op.
func (st *Stage) navigateGrid(parent, cur *Node, dir Direction) {
	g := parent.grid
	if g == nil {
		return
	}
	c, r := cur.Col, cur.Row
	switch dir {
	case DirLeft:
		c--
	case DirRight:
		c++
	case DirUp:
		r--
	case DirDown:
		r++
	}
	if c < 0 || r < 0 || c >= g.cols || r >= g.rows {
		return
	}
	if db := parent.settings.Database; db != nil {
		var idx int
		if parent.settings.FillColumns {
			idx = c*g.rows + r
		} else {
			idx = r*g.cols + c
		}
		if idx >= len(db) {
			return
		}
	}

	st.scrollCellIntoView(parent, c, r)
	if node, ok := parent.cellLookup(c, r); ok {
		st.Select(node)
	} else {
		// The cell is outside the live window; the selection lands when the
		// scroll brings it in.
		st.pending = pendingSelection{grid: parent, col: c, row: r}
	}
	st.publish(InteractionEvent{Type: EventNavigate, NodeID: parent.ID, Direction: dir})
}

// scrollCellIntoView computes the scroll delta exactly large enough to bring
// the cell's bounds inside the grid's viewport and animates toward it.
func (st *Stage) scrollCellIntoView(grid *Node, col, row int) {
	s := &grid.settings
	strideW := *s.CellW + floatOr(s.Border, 0)
	strideH := *s.CellH + floatOr(s.Border, 0)

	targetX := scrollTarget(grid.OffX, float64(col)*strideW, *s.CellW, grid.W)
	targetY := scrollTarget(grid.OffY, float64(row)*strideH, *s.CellH, grid.H)

	if targetX == grid.OffX && targetY == grid.OffY {
		return
	}
	st.focusNode = grid
	st.focusTweenX = gween.New(float32(grid.OffX), float32(targetX), focusScrollDuration, ease.OutQuad)
	st.focusTweenY = gween.New(float32(grid.OffY), float32(targetY), focusScrollDuration, ease.OutQuad)
}

// scrollTarget returns the offset that places [lo, lo+size] inside the
// viewport [off, off+view], moving as little as possible.
func scrollTarget(off, lo, size, view float64) float64 {
	if lo < off {
		return lo
	}
	if lo+size > off+view {
		return lo + size - view
	}
	return off
}

// advanceFocusTween steps the scroll-into-view animation one tick.
func (st *Stage) advanceFocusTween(dt float32) {
	if st.focusNode == nil {
		return
	}
	if st.focusNode.disposed {
		st.focusNode = nil
		st.focusTweenX = nil
		st.focusTweenY = nil
		return
	}
	doneX, doneY := true, true
	if st.focusTweenX != nil {
		v, done := st.focusTweenX.Update(dt)
		st.focusNode.setScrollX(float64(v))
		doneX = done
	}
	if st.focusTweenY != nil {
		v, done := st.focusTweenY.Update(dt)
		st.focusNode.setScrollY(float64(v))
		doneY = done
	}
	if doneX && doneY {
		st.focusNode = nil
		st.focusTweenX = nil
		st.focusTweenY = nil
	}
}

// navigateSiblings picks the nearest sibling in the direction's half-plane:
// for Right, the sibling with the smallest x strictly greater than the
// current node's x, ties broken by the smallest cross-axis distance.
func (st *Stage) navigateSiblings(parent, cur *Node, dir Direction) {
	var best *Node
	var bestMain, bestCross float64
	for _, sib := range parent.children {
		if sib == cur || sib.isOverlay || sib.disposed {
			continue
		}
		var main, cross float64
		switch dir {
		case DirRight:
			main, cross = sib.X-cur.X, math.Abs(sib.Y-cur.Y)
		case DirLeft:
			main, cross = cur.X-sib.X, math.Abs(sib.Y-cur.Y)
		case DirDown:
			main, cross = sib.Y-cur.Y, math.Abs(sib.X-cur.X)
		case DirUp:
			main, cross = cur.Y-sib.Y, math.Abs(sib.X-cur.X)
		}
		if main <= 0 {
			continue
		}
		if best == nil || main < bestMain || (main == bestMain && cross < bestCross) {
			best, bestMain, bestCross = sib, main, cross
		}
	}
	if best == nil {
		return
	}
	st.Select(best)
	st.publish(InteractionEvent{Type: EventNavigate, NodeID: best.ID, Direction: dir})
}

// resolvePendingSelection lands a deferred grid-cell selection once the
// virtualization window contains the target cell.
func (st *Stage) resolvePendingSelection() {
	p := st.pending
	if p.grid == nil {
		return
	}
	if p.grid.disposed {
		st.pending = pendingSelection{}
		return
	}
	if node, ok := p.grid.cellLookup(p.col, p.row); ok {
		st.Select(node)
	}
}

// updateOverlay keeps the shared selector overlay above its siblings.
func (st *Stage) updateOverlay() {
	ov := st.overlay
	p := ov.Parent
	if p == nil {
		return
	}
	if last := p.children[len(p.children)-1]; last != ov {
		p.removeChildByPtr(ov)
		p.children = append(p.children, ov)
	}
}
