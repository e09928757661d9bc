package trellis

import "testing"

// --- Constructor defaults ---

func TestNewDefaults(t *testing.T) {
	n := New(Settings{ID: "test"})
	if n.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if n.Name != "test" {
		t.Errorf("Name = %q, want %q", n.Name, "test")
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		t.Errorf("Scale = (%v, %v), want (1, 1)", n.ScaleX, n.ScaleY)
	}
	if n.Alpha != 1 {
		t.Errorf("Alpha = %v, want 1", n.Alpha)
	}
	if n.Color != ColorWhite {
		t.Errorf("Color = %v, want white", n.Color)
	}
	if n.Col != -1 || n.Row != -1 {
		t.Errorf("Col/Row = (%d, %d), want (-1, -1)", n.Col, n.Row)
	}
	if n.State != StateIdle {
		t.Errorf("State = %d, want StateIdle", n.State)
	}
	if !n.layoutDirty || !n.transformDirty {
		t.Error("new node should be dirty")
	}
}

func TestUniqueIDs(t *testing.T) {
	a := New(Settings{})
	b := New(Settings{})
	if a.ID == b.ID {
		t.Errorf("IDs should be unique, both %d", a.ID)
	}
}

func TestNewInvalidSpecPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero-frame animation spec")
		}
	}()
	New(Settings{
		OnPress: &AnimationSpec{Frames: 0, Mark: Float(0.5)},
	})
}

func TestNewMissingMarkPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for slot spec without a mark")
		}
	}()
	New(Settings{
		OnHover: &AnimationSpec{Frames: 10},
	})
}

func TestInitHooksRunInOrder(t *testing.T) {
	var order []int
	New(Settings{
		Init: []func(*Node){
			func(*Node) { order = append(order, 1) },
			func(*Node) { order = append(order, 2) },
		},
	})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("init order = %v, want [1 2]", order)
	}
}

// --- Settings merge ---

func TestUpdateMergesSettings(t *testing.T) {
	n := New(Settings{W: Float(100), H: Float(50), Alpha: Float(0.5)})
	n.Update(Settings{W: Float(200)})

	s := n.Settings()
	if *s.W != 200 {
		t.Errorf("W = %v, want 200", *s.W)
	}
	if s.H == nil || *s.H != 50 {
		t.Error("H should keep its prior value")
	}
	if n.Alpha != 0.5 {
		t.Errorf("Alpha = %v, want 0.5 (unchanged)", n.Alpha)
	}
	if !n.layoutDirty {
		t.Error("Update should mark the node for re-resolution")
	}
}

func TestUpdateBehaviorReplacesWholesale(t *testing.T) {
	n := New(Settings{Behavior: &Behavior{Scroll: true, Events: true}})
	n.Update(Settings{Behavior: &Behavior{Move: true}})

	s := n.Settings()
	b := s.behavior()
	if b.Scroll || b.Events {
		t.Error("old behavior flags should not survive a behavior merge")
	}
	if !b.Move {
		t.Error("Move should be set")
	}
}

func TestUpdateHookSlicesAppend(t *testing.T) {
	n := New(Settings{Tick: []func(*Node){func(*Node) {}}})
	n.Update(Settings{Tick: []func(*Node){func(*Node) {}}})
	if got := len(n.Settings().Tick); got != 2 {
		t.Errorf("Tick hooks = %d, want 2", got)
	}
}

// --- Tree manipulation ---

func TestAddChild(t *testing.T) {
	p := New(Settings{})
	c := New(Settings{})
	p.AddChild(c)

	if c.Parent != p {
		t.Error("child's parent not set")
	}
	if p.NumChildren() != 1 || p.ChildAt(0) != c {
		t.Error("child not in parent's list")
	}
}

func TestAddChildReparents(t *testing.T) {
	p1 := New(Settings{})
	p2 := New(Settings{})
	c := New(Settings{})
	p1.AddChild(c)
	p2.AddChild(c)

	if c.Parent != p2 {
		t.Error("child should have moved to p2")
	}
	if p1.NumChildren() != 0 {
		t.Error("child should have left p1")
	}
}

func TestAddChildNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil child")
		}
	}()
	New(Settings{}).AddChild(nil)
}

func TestAddChildCyclePanics(t *testing.T) {
	a := New(Settings{})
	b := New(Settings{})
	a.AddChild(b)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for cycle")
		}
	}()
	b.AddChild(a)
}

func TestAddChildAtIndex(t *testing.T) {
	p := New(Settings{})
	a := New(Settings{ID: "a"})
	b := New(Settings{ID: "b"})
	c := New(Settings{ID: "c"})
	p.AddChild(a)
	p.AddChild(c)
	p.AddChildAt(b, 1)

	if p.ChildAt(0) != a || p.ChildAt(1) != b || p.ChildAt(2) != c {
		t.Error("insertion order wrong")
	}
}

func TestExtendHooksRunOnAdd(t *testing.T) {
	var gotParent, gotChild *Node
	p := New(Settings{
		Extend: []func(parent, child *Node){
			func(parent, child *Node) { gotParent, gotChild = parent, child },
		},
	})
	c := New(Settings{})
	p.AddChild(c)
	if gotParent != p || gotChild != c {
		t.Error("extend hook not invoked with (parent, child)")
	}
}

func TestRemoveChild(t *testing.T) {
	p := New(Settings{})
	c := New(Settings{})
	p.AddChild(c)
	p.RemoveChild(c)

	if c.Parent != nil || p.NumChildren() != 0 {
		t.Error("child not detached")
	}
}

func TestRemoveChildWrongParentPanics(t *testing.T) {
	p := New(Settings{})
	other := New(Settings{})
	c := New(Settings{})
	other.AddChild(c)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for foreign child")
		}
	}()
	p.RemoveChild(c)
}

func TestRemoveChildDefersForExitAnimation(t *testing.T) {
	p := New(Settings{})
	c := New(Settings{
		OnRemove: &AnimationSpec{
			Frames: 3,
			Mark:   Float(MarkClosing),
			Deltas: map[Prop]Delta{PropAlpha: {Value: -1}},
		},
	})
	p.AddChild(c)
	p.RemoveChild(c)

	if c.Parent != p {
		t.Fatal("child should stay attached while the exit animation runs")
	}
	if c.State != StateRemove {
		t.Errorf("State = %d, want StateRemove", c.State)
	}
	for i := 0; i < 3; i++ {
		c.tickAnim()
	}
	if c.Parent != nil {
		t.Error("child should detach when the exit animation completes")
	}
	if p.NumChildren() != 0 {
		t.Error("parent should have no children")
	}
}

func TestDetachCancelsAnimation(t *testing.T) {
	p := New(Settings{})
	c := New(Settings{})
	p.AddChild(c)
	_ = c.Play(AnimationSpec{
		Frames: 10,
		Mark:   Float(MarkOpening),
		Deltas: map[Prop]Delta{PropAlpha: {Value: -1}},
	})
	p.RemoveChildAt(0)
	if c.Animating() {
		t.Error("detached node should not keep animating")
	}
	if c.State != StateIdle {
		t.Errorf("State = %d, want StateIdle", c.State)
	}
}

func TestChildByID(t *testing.T) {
	p := New(Settings{})
	c := New(Settings{ID: "target"})
	p.AddChild(New(Settings{ID: "other"}))
	p.AddChild(c)

	if p.ChildByID("target") != c {
		t.Error("wrong child returned")
	}
}

func TestChildByIDMissingPanicsWithLookupError(t *testing.T) {
	p := New(Settings{})
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if _, ok := r.(*LookupError); !ok {
			t.Errorf("panic value %T, want *LookupError", r)
		}
	}()
	p.ChildByID("nope")
}

func TestRemoveChildren(t *testing.T) {
	p := New(Settings{})
	a := New(Settings{})
	b := New(Settings{})
	p.AddChild(a)
	p.AddChild(b)
	p.RemoveChildren()

	if p.NumChildren() != 0 {
		t.Error("children not removed")
	}
	if a.Parent != nil || b.Parent != nil {
		t.Error("parents not cleared")
	}
	if a.IsDisposed() || b.IsDisposed() {
		t.Error("RemoveChildren must not dispose")
	}
}

// --- Scroll clamping ---

func TestSetScrollClamps(t *testing.T) {
	n := New(Settings{})
	n.W, n.H = 100, 100
	n.ConW, n.ConH = 250, 100

	n.SetScroll(500, 50)
	if n.OffX != 150 {
		t.Errorf("OffX = %v, want 150 (clamped to range)", n.OffX)
	}
	if n.OffY != 0 {
		t.Errorf("OffY = %v, want 0 (no vertical range)", n.OffY)
	}

	n.SetScroll(-10, 0)
	if n.OffX != 0 {
		t.Errorf("OffX = %v, want 0", n.OffX)
	}
}

func TestScrollClampZeroesAccumulator(t *testing.T) {
	n := New(Settings{})
	n.W, n.ConW = 100, 300
	n.accumX = 40

	n.setScrollX(150) // in range: accumulator survives
	if n.accumX != 40 {
		t.Errorf("accumX = %v, want 40", n.accumX)
	}
	n.setScrollX(900) // past the range: hard stop
	if n.OffX != 200 {
		t.Errorf("OffX = %v, want 200", n.OffX)
	}
	if n.accumX != 0 {
		t.Errorf("accumX = %v, want 0 after hard stop", n.accumX)
	}
}

// --- Disposal ---

func TestDisposeSubtree(t *testing.T) {
	p := New(Settings{})
	c := New(Settings{})
	gc := New(Settings{})
	p.AddChild(c)
	c.AddChild(gc)

	c.Dispose()
	if !c.IsDisposed() || !gc.IsDisposed() {
		t.Error("subtree should be disposed")
	}
	if p.NumChildren() != 0 {
		t.Error("disposed child should leave its parent")
	}
	if c.ID != 0 {
		t.Error("disposed node keeps its ID")
	}
	c.Dispose() // second dispose is a no-op
}

func TestDebugModeDisposedAccessPanics(t *testing.T) {
	globalDebug = true
	defer func() {
		globalDebug = false
		if recover() == nil {
			t.Error("expected debug panic for disposed node")
		}
	}()
	p := New(Settings{})
	c := New(Settings{})
	c.Dispose()
	p.AddChild(c)
}
