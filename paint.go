package trellis

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// toRGBA converts to a premultiplied 8-bit RGBA color.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A)*255 + 0.5),
		G: uint8(clamp01(c.G*c.A)*255 + 0.5),
		B: uint8(clamp01(c.B*c.A)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// paintNode draws a node and its descendants onto dst. Nodes with a texture
// draw it under their fit mode; nodes with only a color fill draw the shared
// white pixel stretched to their resolved size. Nodes whose content exceeds
// their bounds clip descendants to their world AABB, so scrolled-out cells
// never bleed outside the container.
func (st *Stage) paintNode(dst *ebiten.Image, n *Node) {
	if n.worldAlpha <= 0 {
		return
	}
	if n != st.root && (n.W <= 0 || n.H <= 0) {
		// Parked cells and unresolved nodes paint nothing, but children of
		// the root always paint even before the first Resize.
		return
	}

	if n.settings.Texture != nil {
		st.paintTexture(dst, n)
	} else if n.Color.A > 0 && n.Alpha > 0 {
		st.paintFill(dst, n)
	}

	childDst := dst
	if n.ConW > n.W || n.ConH > n.H || n.grid != nil {
		childDst = clipTo(dst, n)
	}
	for _, c := range n.children {
		st.paintNode(childDst, c)
	}
}

// paintFill draws the node's rectangle using the shared white pixel tinted by
// the node's color and world alpha.
func (st *Stage) paintFill(dst *ebiten.Image, n *Node) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(n.W, n.H)
	applyWorld(&op.GeoM, n.worldTransform)
	a := float32(n.worldAlpha * n.Color.A)
	op.ColorScale.Scale(float32(n.Color.R)*a, float32(n.Color.G)*a, float32(n.Color.B)*a, a)
	dst.DrawImage(WhitePixel, op)
}

// paintTexture draws the node's texture under its fit mode. Crop-style fits
// clip to the node's world AABB before drawing.
func (st *Stage) paintTexture(dst *ebiten.Image, n *Node) {
	tex := n.settings.Texture
	tw := float64(tex.Bounds().Dx())
	th := float64(tex.Bounds().Dy())
	if tw <= 0 || th <= 0 {
		return
	}

	var sx, sy float64
	switch n.settings.Fit {
	case FitStretch:
		sx, sy = n.W/tw, n.H/th
	case FitWidth:
		sx = n.W / tw
		sy = sx
	case FitHeight:
		sy = n.H / th
		sx = sy
	case FitCrop:
		s := math.Max(n.W/tw, n.H/th)
		sx, sy = s, s
	default: // FitAll
		s := math.Min(n.W/tw, n.H/th)
		sx, sy = s, s
	}
	sx *= floatOr(n.settings.TexScaleX, 1)
	sy *= floatOr(n.settings.TexScaleY, 1)

	// Center the scaled texture inside the node rectangle, then apply the
	// caller's texture offset.
	tx := (n.W-tw*sx)/2 + floatOr(n.settings.TexOffX, 0)
	ty := (n.H-th*sy)/2 + floatOr(n.settings.TexOffY, 0)

	if n.settings.Fit == FitCrop || n.settings.Fit == FitWidth || n.settings.Fit == FitHeight {
		dst = clipTo(dst, n)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(sx, sy)
	op.GeoM.Translate(tx, ty)
	applyWorld(&op.GeoM, n.worldTransform)
	a := float32(n.worldAlpha)
	op.ColorScale.Scale(float32(n.Color.R)*a, float32(n.Color.G)*a, float32(n.Color.B)*a, a)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(tex, op)
}

// clipTo returns a sub-image of dst restricted to the node's world bounding
// box. Sub-images share the same coordinate space, so world transforms pass
// through unmodified.
func clipTo(dst *ebiten.Image, n *Node) *ebiten.Image {
	aabb := worldAABB(n.worldTransform, n.W, n.H)
	r := image.Rect(
		int(math.Floor(aabb.X)), int(math.Floor(aabb.Y)),
		int(math.Ceil(aabb.X+aabb.Width)), int(math.Ceil(aabb.Y+aabb.Height)),
	)
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		// Fully clipped: a 0x0 sub-image swallows all child draws.
		r = image.Rect(0, 0, 0, 0)
	}
	return dst.SubImage(r).(*ebiten.Image)
}

// applyWorld composes a world transform onto an ebiten GeoM.
//
//	Matrix layout: [a, b, c, d, tx, ty]
func applyWorld(g *ebiten.GeoM, m [6]float64) {
	w := ebiten.GeoM{}
	w.SetElement(0, 0, m[0])
	w.SetElement(1, 0, m[1])
	w.SetElement(0, 1, m[2])
	w.SetElement(1, 1, m[3])
	w.SetElement(0, 2, m[4])
	w.SetElement(1, 2, m[5])
	g.Concat(w)
}
