package trellis

import "github.com/hajimehoshi/ebiten/v2"

// Behavior groups the interaction toggles. Settings carries it as a pointer so
// a merge can distinguish "not specified" from "all off"; when present it
// replaces the node's behavior wholesale.
type Behavior struct {
	Scroll bool // node scrolls its content when dragged past the dead zone
	Move   bool // node itself moves when dragged
	Scale  bool // pinch / wheel adjusts the node's scale
	Tilt   bool // pinch angle / modified wheel adjusts the node's rotation
	Events bool // node participates in hit testing and fires callbacks
}

// Settings is the construction-time configuration for a Node. All optional
// numeric fields are pointers (see Float); a nil field keeps its prior value
// when merged via Node.Update.
//
// Sizing precedence per axis: absolute (W/X) beats explicit relative
// (RelW/RelX) beats anchored fraction (AnchorX of the parent's free space).
// When neither W nor RelW is given the node fills its parent (RelW = 1).
type Settings struct {
	// ID is an optional identifier for ChildByID lookups.
	ID string

	// Absolute size in pixels.
	W, H *float64
	// Size as a fraction of the parent's resolved size.
	RelW, RelH *float64
	// Absolute position in pixels, relative to the parent's top-left.
	X, Y *float64
	// Position as an explicit fraction of the parent's size.
	RelX, RelY *float64
	// Anchored position: fraction of the parent's free space (parent - own size).
	// Only effective when X and RelX are both unset. Defaults to 0 (top-left).
	AnchorX, AnchorY *float64
	// Aspect limits: w/h is clamped to at most LimW, h/w to at most LimH.
	LimW, LimH *float64
	// Center-of-transform fraction of the node's own size. The anchor point
	// (CenterX*w, CenterY*h) is the rotation/scale origin.
	CenterX, CenterY *float64
	// Fraction of the parent's cell width/height this node spans when it is a
	// grid cell. Defaults to 1.
	SpanW, SpanH *float64

	// Paint
	Color     *Color
	Alpha     *float64
	Texture   *ebiten.Image
	Fit       FitMode
	TexOffX   *float64
	TexOffY   *float64
	TexScaleX *float64
	TexScaleY *float64

	// Grid. A node with CellW/CellH set lays its children (or a virtualized
	// pool) out as a grid. Cols/Rows of 0 auto-derive from the cell count.
	Cols, Rows int
	CellW      *float64
	CellH      *float64
	Border     *float64
	// Database is the ordered sequence of per-cell records backing a
	// virtualized grid. When nil the grid is backed by actual children.
	Database []Settings
	// CellTemplate is the base settings for pool nodes created by the
	// virtualization manager; database records merge over it.
	CellTemplate *Settings
	// FillColumns makes the grid consume cells column-major instead of the
	// default row-major order.
	FillColumns bool

	// Behavior toggles; nil keeps the current behavior on merge.
	Behavior *Behavior
	// Pinch/wheel scale clamp; defaults to 0.5 and 2 when Scale is enabled.
	ScaleMin, ScaleMax *float64

	// Animation slots.
	OnAdd    *AnimationSpec
	OnRemove *AnimationSpec
	OnPress  *AnimationSpec
	OnHover  *AnimationSpec

	// Lifecycle hooks, invoked in base-to-derived order (merging appends).
	Init []func(*Node)
	// Tick hooks run once per Stage.Update after animations advance.
	Tick []func(*Node)
	// Extend hooks run on the parent when a child is added.
	Extend []func(parent, child *Node)

	// Pressed fires when a press is released over the node (a click or the
	// end of a hold). Scrolled fires when the node's scroll offset changes.
	Pressed  func(*Node)
	Scrolled func(*Node)
}

// validate checks the fields whose misuse is a configuration error.
// Animation frame counts are checked here and again at Play time.
func (s *Settings) validate() error {
	if !fitModeValid(s.Fit) {
		return configErrorf("unknown texture fit mode %d", s.Fit)
	}
	for _, spec := range []*AnimationSpec{s.OnAdd, s.OnRemove, s.OnPress, s.OnHover} {
		if spec == nil {
			continue
		}
		if err := spec.validate(); err != nil {
			return err
		}
		// Slot specs play without an override, so the mark must be declared
		// up front rather than erroring on the first interaction.
		if spec.Mark == nil {
			return configErrorf("animation mark missing")
		}
	}
	return nil
}

// merge overlays o onto s. Pointer fields replace when non-nil, hook slices
// append, grid database/template replace when set.
func (s *Settings) merge(o Settings) {
	if o.ID != "" {
		s.ID = o.ID
	}
	mergeFloats(
		[]**float64{&s.W, &s.H, &s.RelW, &s.RelH, &s.X, &s.Y, &s.RelX, &s.RelY,
			&s.AnchorX, &s.AnchorY, &s.LimW, &s.LimH, &s.CenterX, &s.CenterY,
			&s.SpanW, &s.SpanH, &s.Alpha, &s.TexOffX, &s.TexOffY,
			&s.TexScaleX, &s.TexScaleY, &s.CellW, &s.CellH, &s.Border,
			&s.ScaleMin, &s.ScaleMax},
		[]*float64{o.W, o.H, o.RelW, o.RelH, o.X, o.Y, o.RelX, o.RelY,
			o.AnchorX, o.AnchorY, o.LimW, o.LimH, o.CenterX, o.CenterY,
			o.SpanW, o.SpanH, o.Alpha, o.TexOffX, o.TexOffY,
			o.TexScaleX, o.TexScaleY, o.CellW, o.CellH, o.Border,
			o.ScaleMin, o.ScaleMax})
	if o.Color != nil {
		s.Color = o.Color
	}
	if o.Texture != nil {
		s.Texture = o.Texture
	}
	if o.Fit != 0 {
		s.Fit = o.Fit
	}
	if o.Cols != 0 {
		s.Cols = o.Cols
	}
	if o.Rows != 0 {
		s.Rows = o.Rows
	}
	if o.Database != nil {
		s.Database = o.Database
	}
	if o.CellTemplate != nil {
		s.CellTemplate = o.CellTemplate
	}
	if o.FillColumns {
		s.FillColumns = true
	}
	if o.Behavior != nil {
		s.Behavior = o.Behavior
	}
	if o.OnAdd != nil {
		s.OnAdd = o.OnAdd
	}
	if o.OnRemove != nil {
		s.OnRemove = o.OnRemove
	}
	if o.OnPress != nil {
		s.OnPress = o.OnPress
	}
	if o.OnHover != nil {
		s.OnHover = o.OnHover
	}
	s.Init = append(s.Init, o.Init...)
	s.Tick = append(s.Tick, o.Tick...)
	s.Extend = append(s.Extend, o.Extend...)
	if o.Pressed != nil {
		s.Pressed = o.Pressed
	}
	if o.Scrolled != nil {
		s.Scrolled = o.Scrolled
	}
}

func mergeFloats(dst []**float64, src []*float64) {
	for i, p := range src {
		if p != nil {
			*dst[i] = p
		}
	}
}

// behavior returns the effective behavior toggles (zero value when unset).
func (s *Settings) behavior() Behavior {
	if s.Behavior == nil {
		return Behavior{}
	}
	return *s.Behavior
}

// isGrid reports whether these settings describe a grid container.
func (s *Settings) isGrid() bool {
	return s.CellW != nil && s.CellH != nil
}

// floatOr returns *p, or def when p is nil.
func floatOr(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}

// lerpToward returns a Settings patch that moves every numeric field declared
// in target from its value in base toward the target value by the remaining
// parameter t (t = 0 lands exactly on target). Used by the animation
// interpreter's target-state ride-along; the patch goes through the full
// geometry-update path so layout-affecting fields animate too.
func lerpToward(base, target Settings, t float64) Settings {
	var out Settings
	pairs := []struct {
		b, tg *float64
		dst   **float64
		def   float64
	}{
		{base.W, target.W, &out.W, 0},
		{base.H, target.H, &out.H, 0},
		{base.RelW, target.RelW, &out.RelW, 1},
		{base.RelH, target.RelH, &out.RelH, 1},
		{base.X, target.X, &out.X, 0},
		{base.Y, target.Y, &out.Y, 0},
		{base.RelX, target.RelX, &out.RelX, 0},
		{base.RelY, target.RelY, &out.RelY, 0},
		{base.AnchorX, target.AnchorX, &out.AnchorX, 0},
		{base.AnchorY, target.AnchorY, &out.AnchorY, 0},
		{base.CenterX, target.CenterX, &out.CenterX, 0},
		{base.CenterY, target.CenterY, &out.CenterY, 0},
		{base.Alpha, target.Alpha, &out.Alpha, 1},
		{base.CellW, target.CellW, &out.CellW, 0},
		{base.CellH, target.CellH, &out.CellH, 0},
		{base.Border, target.Border, &out.Border, 0},
	}
	for _, p := range pairs {
		if p.tg == nil {
			continue
		}
		from := floatOr(p.b, p.def)
		*p.dst = Float(*p.tg + t*(from-*p.tg))
	}
	return out
}
