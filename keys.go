package trellis

import "github.com/hajimehoshi/ebiten/v2"

// Command is a focus-navigation command produced by keyboard, gamepad, or an
// injected test script.
type Command uint8

const (
	CmdUp Command = iota
	CmdDown
	CmdLeft
	CmdRight
	CmdConfirm
	CmdBack
)

// defaultPadDeadZone is the stick magnitude below which axis input is ignored
// for gamepads without an explicit config.
const defaultPadDeadZone = 0.3

// padButton identifies one pressable input on one gamepad. Negative values
// encode stick directions so axis pushes edge-detect like buttons.
type padButton struct {
	id  ebiten.GamepadID
	btn int
}

// Pseudo-buttons for stick directions.
const (
	padStickUp = -1 - iota
	padStickDown
	padStickLeft
	padStickRight
)

// SetGamepadDeadZone sets the per-device stick dead zone for the given
// gamepad.
func (st *Stage) SetGamepadDeadZone(id ebiten.GamepadID, deadZone float64) {
	st.padDeadZone[id] = deadZone
}

// InjectCommand queues a navigation command, consumed on the next tick.
// Used by the scripted test runner and available to callers wiring their own
// input sources.
func (st *Stage) InjectCommand(cmd Command) {
	st.cmdQueue = append(st.cmdQueue, cmd)
}

// runCommand routes one command through the focus navigator.
func (st *Stage) runCommand(cmd Command) {
	switch cmd {
	case CmdUp:
		st.Navigate(DirUp)
	case CmdDown:
		st.Navigate(DirDown)
	case CmdLeft:
		st.Navigate(DirLeft)
	case CmdRight:
		st.Navigate(DirRight)
	case CmdConfirm:
		st.Confirm()
	case CmdBack:
		st.Back()
	}
}

// processCommands drains queued commands, then edge-detects keyboard and
// gamepad navigation input.
func (st *Stage) processCommands(_ KeyModifiers) {
	for _, cmd := range st.cmdQueue {
		st.runCommand(cmd)
	}
	st.cmdQueue = st.cmdQueue[:0]

	st.processKeys()
	st.processGamepads()
}

// keyBindings maps keys to commands. WASD doubles the arrows so games using
// the arrows for other input can still navigate.
var keyBindings = []struct {
	key ebiten.Key
	cmd Command
}{
	{ebiten.KeyArrowUp, CmdUp},
	{ebiten.KeyArrowDown, CmdDown},
	{ebiten.KeyArrowLeft, CmdLeft},
	{ebiten.KeyArrowRight, CmdRight},
	{ebiten.KeyW, CmdUp},
	{ebiten.KeyS, CmdDown},
	{ebiten.KeyA, CmdLeft},
	{ebiten.KeyD, CmdRight},
	{ebiten.KeyEnter, CmdConfirm},
	{ebiten.KeySpace, CmdConfirm},
	{ebiten.KeyEscape, CmdBack},
	{ebiten.KeyBackspace, CmdBack},
}

// processKeys fires a command on each key's falling-to-pressed edge.
// Held state is tracked across ticks; no key repeat.
func (st *Stage) processKeys() {
	for _, b := range keyBindings {
		pressed := ebiten.IsKeyPressed(b.key)
		if pressed && !st.keyHeld[b.key] {
			st.runCommand(b.cmd)
		}
		st.keyHeld[b.key] = pressed
	}
}

// processGamepads edge-detects dpad buttons and left-stick pushes on every
// connected standard-layout gamepad, honoring the per-device dead zone.
func (st *Stage) processGamepads() {
	st.padIDs = ebiten.AppendGamepadIDs(st.padIDs[:0])
	for _, id := range st.padIDs {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		dz := defaultPadDeadZone
		if v, ok := st.padDeadZone[id]; ok {
			dz = v
		}

		st.padEdge(padButton{id, int(ebiten.StandardGamepadButtonLeftTop)},
			ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftTop), CmdUp)
		st.padEdge(padButton{id, int(ebiten.StandardGamepadButtonLeftBottom)},
			ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftBottom), CmdDown)
		st.padEdge(padButton{id, int(ebiten.StandardGamepadButtonLeftLeft)},
			ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftLeft), CmdLeft)
		st.padEdge(padButton{id, int(ebiten.StandardGamepadButtonLeftRight)},
			ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftRight), CmdRight)
		st.padEdge(padButton{id, int(ebiten.StandardGamepadButtonRightBottom)},
			ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom), CmdConfirm)
		st.padEdge(padButton{id, int(ebiten.StandardGamepadButtonRightRight)},
			ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightRight), CmdBack)

		ax := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ay := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		st.padEdge(padButton{id, padStickUp}, ay < -dz, CmdUp)
		st.padEdge(padButton{id, padStickDown}, ay > dz, CmdDown)
		st.padEdge(padButton{id, padStickLeft}, ax < -dz, CmdLeft)
		st.padEdge(padButton{id, padStickRight}, ax > dz, CmdRight)
	}
}

// padEdge fires cmd when pressed transitions from false to true.
func (st *Stage) padEdge(key padButton, pressed bool, cmd Command) {
	if pressed && !st.padHeld[key] {
		st.runCommand(cmd)
	}
	st.padHeld[key] = pressed
}
