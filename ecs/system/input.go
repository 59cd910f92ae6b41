package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
)

// InputSystem copies keyboard, mouse and gamepad state into every Input
// component. Look deltas accumulate until the camera consumes them.
type InputSystem struct {
	lastX, lastY int
	primed       bool
}

func NewInputSystem() *InputSystem {
	return &InputSystem{}
}

// Reset forgets the last cursor position, so the next frame reports no
// look movement. Call it when the cursor mode changes.
func (i *InputSystem) Reset() {
	i.primed = false
}

func (i *InputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	const (
		stickDeadzone = 0.2
		stickLook     = 12.0
	)

	forward := ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp)
	back := ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown)
	left := ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft)
	right := ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight)

	x, y := ebiten.CursorPosition()
	var dx, dy float32
	if i.primed {
		dx, dy = float32(x-i.lastX), float32(y-i.lastY)
	}
	i.lastX, i.lastY, i.primed = x, y, true

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		lx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ly := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Abs(lx) > stickDeadzone {
			left = left || lx < 0
			right = right || lx > 0
		}
		if math.Abs(ly) > stickDeadzone {
			forward = forward || ly < 0
			back = back || ly > 0
		}

		rx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
		ry := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
		if math.Hypot(rx, ry) > stickDeadzone {
			dx += float32(rx * stickLook)
			dy += float32(ry * stickLook)
		}
	}

	ecs.ForEach(w, component.InputComponent.Kind(), func(e ecs.Entity, input *component.Input) {
		input.Forward = forward
		input.Back = back
		input.Left = left
		input.Right = right
		input.LookDX += dx
		input.LookDY += dy
	})
}
