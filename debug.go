package trellis

import (
	"fmt"
	"os"
	"time"
)

// tickStats holds per-tick timing and workload metrics.
// Only populated when Stage.debug is true.
type tickStats struct {
	resolveTime   time.Duration
	inputTime     time.Duration
	animTime      time.Duration
	animatingNode int
	liveCells     int
}

// debugLog prints tick timing and workload stats to stderr.
func (st *Stage) debugLog(stats tickStats) {
	if !st.debug {
		return
	}
	total := stats.resolveTime + stats.inputTime + stats.animTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[trellis] resolve: %v | input: %v | anim: %v | total: %v\n",
		stats.resolveTime, stats.inputTime, stats.animTime, total)
	_, _ = fmt.Fprintf(os.Stderr,
		"[trellis] animating: %d | live cells: %d\n",
		stats.animatingNode, stats.liveCells)
}

// countAnimating reports how many nodes in the subtree have an animation in
// flight.
func countAnimating(n *Node) int {
	count := 0
	if n.anim != nil {
		count++
	}
	for _, c := range n.children {
		count += countAnimating(c)
	}
	return count
}

// countLiveCells reports how many pooled cells across all grids in the
// subtree are currently assigned a database entry.
func countLiveCells(n *Node) int {
	count := 0
	if n.grid != nil {
		for _, cell := range n.grid.pool {
			if cell.Col >= 0 {
				count++
			}
		}
	}
	for _, c := range n.children {
		count += countLiveCells(c)
	}
	return count
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode; release-mode callers
// skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("trellis debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[trellis] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
// Grids holding large databases should virtualize through a cell pool rather
// than materializing every entry.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[trellis] warning: node %q has %d children (threshold %d)\n",
			n.Name, len(n.children), debugMaxChildCount)
	}
}
