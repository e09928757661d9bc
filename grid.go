package trellis

import "math"

// gridState is the live bookkeeping for a grid container: logical dimensions,
// the current visible window, and the recycled pool of cell nodes (virtualized
// grids only).
type gridState struct {
	cols, rows   int
	col0, row0   int
	vcols, vrows int
	pool         []*Node
	initialized  bool
	// Last selected cell, for Confirm's descend-into-previous behavior.
	lastCol, lastRow int
}

// gridDims derives the logical (cols, rows) from the cell count when either is
// unset: with both unset the grid approximates a square (rows = ceil(sqrt(n)),
// cols = ceil(n/rows)); with one set the other is ceil(n/set).
func gridDims(cols, rows, n int) (int, int) {
	if cols > 0 && rows > 0 {
		return cols, rows
	}
	if n == 0 {
		return cols, rows
	}
	switch {
	case cols == 0 && rows == 0:
		rows = int(math.Ceil(math.Sqrt(float64(n))))
		cols = (n + rows - 1) / rows
	case cols == 0:
		cols = (n + rows - 1) / rows
	default:
		rows = (n + cols - 1) / cols
	}
	return cols, rows
}

// reconcileGrid brings a grid container's live nodes in line with its settings
// and scroll offset. For virtualized grids (Database set) it maintains a pool
// covering exactly the visible window; otherwise it assigns (col, row) roles
// to the actual children in fill order. Safe to call every tick: it returns
// early when the window and pool are unchanged.
func reconcileGrid(n *Node) {
	if n.grid == nil {
		n.grid = &gridState{}
	}
	g := n.grid
	s := &n.settings

	if s.Database == nil {
		reconcileChildGrid(n, g)
		return
	}

	count := len(s.Database)
	cols, rows := gridDims(s.Cols, s.Rows, count)
	strideW := *s.CellW + floatOr(s.Border, 0)
	strideH := *s.CellH + floatOr(s.Border, 0)

	// Visible window: one extra cell per axis covers partial cells at both
	// edges while the offset is not stride-aligned.
	vcols := cols
	if strideW > 0 {
		if v := int(math.Ceil(n.W/strideW)) + 1; v < vcols {
			vcols = v
		}
	}
	vrows := rows
	if strideH > 0 {
		if v := int(math.Ceil(n.H/strideH)) + 1; v < vrows {
			vrows = v
		}
	}

	col0, row0 := 0, 0
	if strideW > 0 {
		col0 = int(math.Floor(n.OffX / strideW))
	}
	if strideH > 0 {
		row0 = int(math.Floor(n.OffY / strideH))
	}
	// Clip the window so it never extends past the far edge.
	if col0+vcols > cols {
		col0 = cols - vcols
	}
	if col0 < 0 {
		col0 = 0
	}
	if row0+vrows > rows {
		row0 = rows - vrows
	}
	if row0 < 0 {
		row0 = 0
	}

	need := vcols * vrows
	if need < 0 {
		need = 0
	}

	if g.initialized && g.cols == cols && g.rows == rows &&
		g.col0 == col0 && g.row0 == row0 &&
		g.vcols == vcols && g.vrows == vrows && len(g.pool) == need {
		return
	}
	g.cols, g.rows = cols, rows
	g.col0, g.row0 = col0, row0
	g.vcols, g.vrows = vcols, vrows
	g.initialized = true

	// Grow the pool from the cell template, retract excess from the end.
	var template Settings
	if s.CellTemplate != nil {
		template = *s.CellTemplate
	}
	for len(g.pool) < need {
		cell := New(template)
		cell.isCell = true
		n.AddChild(cell)
		g.pool = append(g.pool, cell)
	}
	for len(g.pool) > need {
		last := g.pool[len(g.pool)-1]
		g.pool = g.pool[:len(g.pool)-1]
		last.Dispose()
	}

	// Reassign pool nodes to window cells positionally (by pool index, not by
	// record identity). A node whose cell changed is updated in place from the
	// backing record; a window cell past the end of the database parks its
	// node off-grid instead of destroying it, keeping the pool size stable.
	for i, cell := range g.pool {
		var c, r int
		if s.FillColumns {
			c = col0 + i/vrows
			r = row0 + i%vrows
		} else {
			c = col0 + i%vcols
			r = row0 + i/vcols
		}
		var idx int
		if s.FillColumns {
			idx = c*rows + r
		} else {
			idx = r*cols + c
		}

		// No blending across a grid reshuffle: snap any in-flight animation
		// to its end state before the node is reassigned.
		cell.finishAnim()

		if idx >= 0 && idx < count {
			cell.Col, cell.Row = c, r
			// Rebuild from the template first: a field the new record leaves
			// unset must not keep the previous record's value.
			cell.resetSettings(template)
			cell.applySettings(s.Database[idx])
		} else {
			cell.Col, cell.Row = -1, -1
		}
		cell.layoutDirty = true
		cell.transformDirty = true
	}
}

// reconcileChildGrid assigns grid roles to actual children (no virtualization).
func reconcileChildGrid(n *Node, g *gridState) {
	count := 0
	for _, child := range n.children {
		if !child.isOverlay {
			count++
		}
	}
	cols, rows := gridDims(n.settings.Cols, n.settings.Rows, count)
	g.cols, g.rows = cols, rows
	g.col0, g.row0 = 0, 0
	g.vcols, g.vrows = cols, rows
	g.initialized = true

	i := 0
	for _, child := range n.children {
		if child.isOverlay {
			continue
		}
		var c, r int
		if cols > 0 {
			if n.settings.FillColumns && rows > 0 {
				c, r = i/rows, i%rows
			} else {
				c, r = i%cols, i/cols
			}
		}
		if c != child.Col || r != child.Row || !child.isCell {
			child.finishAnim()
			child.Col, child.Row = c, r
			child.isCell = true
			child.layoutDirty = true
			child.transformDirty = true
		}
		i++
	}
}

// GridSize returns the grid's logical (cols, rows). Zero values until the
// first tick resolves the grid.
func (n *Node) GridSize() (cols, rows int) {
	if n.grid == nil {
		return 0, 0
	}
	return n.grid.cols, n.grid.rows
}

// VisibleWindow returns the current virtualization window as (col0, row0,
// vcols, vrows).
func (n *Node) VisibleWindow() (col0, row0, vcols, vrows int) {
	if n.grid == nil {
		return 0, 0, 0, 0
	}
	return n.grid.col0, n.grid.row0, n.grid.vcols, n.grid.vrows
}

// LivePool returns the virtualized grid's live cell nodes. The returned slice
// MUST NOT be mutated by the caller. Nil for non-virtualized grids.
func (n *Node) LivePool() []*Node {
	if n.grid == nil {
		return nil
	}
	return n.grid.pool
}
