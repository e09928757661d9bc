// Package trellis is a declarative layout and animation engine for
// interactive 2D scenes on [Ebitengine].
//
// Trellis resolves a tree of constraint-described nodes into concrete pixel
// rectangles, virtualizes large grids through a fixed cell pool, animates
// properties with frame-counted deltas, and turns raw pointer, keyboard, and
// gamepad input into hover, press, drag-scroll, and pinch gestures plus
// spatial focus navigation.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	stage := trellis.NewStage(640, 480)
//	// ... add nodes ...
//	trellis.Run(stage, trellis.RunConfig{
//		Title: "My App", Width: 640, Height: 480,
//	})
//
// For full control, implement [ebiten.Game] yourself and call
// [Stage.Update] and [Stage.Draw] directly:
//
//	type Game struct{ stage *trellis.Stage }
//
//	func (g *Game) Update() error         { g.stage.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image)  { g.stage.Draw(s) }
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
// # Layout
//
// Every element is a [Node] described by a [Settings] literal. Sizes and
// positions may be absolute pixels, fractions of the parent, or anchored
// placements; the resolver re-derives pixel geometry every tick, parents
// before children:
//
//	panel := trellis.New(trellis.Settings{
//		ID:      "panel",
//		RelW:    trellis.Float(0.5),
//		H:       trellis.Float(120),
//		AnchorX: trellis.Float(0.5),
//	})
//	stage.Root().AddChild(panel)
//
// # Grids
//
// A node with CellW and CellH becomes a grid: its Database entries are
// displayed through a pool of recycled cells sized to the visible window, so
// a ten-thousand-entry list allocates only the cells that fit on screen.
//
// # Animation
//
// An [AnimationSpec] describes a frame-counted animation over node
// properties. Specs attached to Settings (OnAdd, OnRemove, OnPress, OnHover)
// play automatically on the matching lifecycle or interaction event; explicit
// playback goes through [Node.Play]. Property values are restored exactly
// when a run completes.
//
// # Input and focus
//
// [Stage.Update] runs the gesture state machine over mouse, touch, wheel,
// and pinch input, drives inertial scrolling, and routes keyboard and
// gamepad commands through the focus navigator ([Stage.Navigate],
// [Stage.Confirm], [Stage.Back]). Synthetic input for tests is queued with
// [Stage.InjectClick], [Stage.InjectDrag], and friends, or scripted in JSON
// via [LoadTestScript]. ECS integration is available through the [Donburi]
// adapter in trellis/ecs.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package trellis
