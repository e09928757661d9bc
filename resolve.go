package trellis

// resolveTree runs the top-down geometry pass. A parent's geometry is always
// resolved before its children's within the same tick. viewW/viewH are the
// root's pixel dimensions.
func resolveTree(root *Node, viewW, viewH float64) {
	rootResized := viewW != root.W || viewH != root.H
	if rootResized {
		root.W = viewW
		root.H = viewH
		root.transformDirty = true
	}
	root.resolved = true
	if root.settings.isGrid() {
		reconcileGrid(root)
	}
	for _, child := range root.children {
		resolveNode(child, rootResized || root.layoutDirty)
	}
	root.layoutDirty = false
	computeContentSize(root)
}

// resolveNode computes a node's (w, h, x, y) and anchor offset from its
// sizing rules and its parent's already-resolved geometry, then recurses.
// Dirty propagation is shallow: a size change here forces re-resolution of
// direct children only, recursively, not a global relayout. Reports whether
// the node's resolved geometry changed, so the parent knows to remeasure its
// content extents.
func resolveNode(n *Node, parentChanged bool) bool {
	p := n.Parent
	need := n.layoutDirty || !n.resolved || parentChanged
	if !need {
		childChanged := false
		for _, child := range n.children {
			if resolveNode(child, false) {
				childChanged = true
			}
		}
		if childChanged {
			computeContentSize(n)
		}
		return false
	}

	// A parent with zero size is not yet ready — defer, retry next tick.
	// This guards against resolving against an uninitialized root.
	if p.W == 0 || p.H == 0 {
		n.resolved = false
		return false
	}

	oldW, oldH := n.W, n.H
	oldX, oldY := n.X, n.Y
	s := &n.settings
	var w, h, x, y float64

	if n.isCell && p.settings.isGrid() {
		if n.Col < 0 {
			// Parked off-grid: keep the pool stable, occupy no space.
			w, h, x, y = 0, 0, 0, 0
		} else {
			cellW := *p.settings.CellW
			cellH := *p.settings.CellH
			border := floatOr(p.settings.Border, 0)
			w = cellW * floatOr(s.SpanW, 1)
			h = cellH * floatOr(s.SpanH, 1)
			x = float64(n.Col) * (cellW + border)
			y = float64(n.Row) * (cellH + border)
		}
	} else {
		if s.W != nil {
			w = *s.W
		} else {
			w = floatOr(s.RelW, 1) * p.W
		}
		if s.H != nil {
			h = *s.H
		} else {
			h = floatOr(s.RelH, 1) * p.H
		}

		// Aspect clamps.
		if limW := floatOr(s.LimW, 0); limW > 0 && h > 0 && w/h > limW {
			w = limW * h
		}
		if limH := floatOr(s.LimH, 0); limH > 0 && w > 0 && h/w > limH {
			h = limH * w
		}
		if w < 0 {
			w = 0
		}
		if h < 0 {
			h = 0
		}

		// Position precedence: absolute, explicit relative, anchored fraction
		// of the parent's free space. Zero free space anchors at 0.
		switch {
		case s.X != nil:
			x = *s.X
		case s.RelX != nil:
			x = *s.RelX * p.W
		default:
			x = floatOr(s.AnchorX, 0) * (p.W - w)
		}
		switch {
		case s.Y != nil:
			y = *s.Y
		case s.RelY != nil:
			y = *s.RelY * p.H
		default:
			y = floatOr(s.AnchorY, 0) * (p.H - h)
		}
	}

	n.W, n.H, n.X, n.Y = w, h, x, y
	n.AnchorPxX = floatOr(s.CenterX, 0) * w
	n.AnchorPxY = floatOr(s.CenterY, 0) * h
	n.transformDirty = true
	n.layoutDirty = false
	sizeChanged := w != oldW || h != oldH || !n.resolved
	moved := x != oldX || y != oldY
	n.resolved = true

	if n.settings.isGrid() {
		reconcileGrid(n)
	}

	childChanged := false
	for _, child := range n.children {
		if resolveNode(child, sizeChanged) {
			childChanged = true
		}
	}

	if sizeChanged || childChanged {
		computeContentSize(n)
	}
	return sizeChanged || moved
}

// computeContentSize recomputes the node's scrollable extents and re-clamps
// the scroll offset to the new range. Grid content is logical (all cells,
// live or not); plain containers measure their children's far edges.
func computeContentSize(n *Node) {
	if n.settings.isGrid() && n.grid != nil {
		g := n.grid
		border := floatOr(n.settings.Border, 0)
		n.ConW = float64(g.cols)*(*n.settings.CellW+border) - border
		n.ConH = float64(g.rows)*(*n.settings.CellH+border) - border
		if n.ConW < 0 {
			n.ConW = 0
		}
		if n.ConH < 0 {
			n.ConH = 0
		}
	} else {
		var maxX, maxY float64
		for _, child := range n.children {
			if child.isOverlay {
				continue
			}
			if e := child.X + child.W; e > maxX {
				maxX = e
			}
			if e := child.Y + child.H; e > maxY {
				maxY = e
			}
		}
		n.ConW = maxX
		n.ConH = maxY
	}

	// Geometry changes can shrink the scroll range; re-clamp.
	scrW, scrH := n.scrollRange()
	if n.OffX > scrW {
		n.OffX = scrW
		n.accumX = 0
	}
	if n.OffY > scrH {
		n.OffY = scrH
		n.accumY = 0
	}
}
