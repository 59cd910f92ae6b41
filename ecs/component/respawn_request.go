package component

import "github.com/go-gl/mathgl/mgl32"

// RespawnRequest asks the respawn system to teleport the entity to Position
// and stop it. Gameplay rules add it; it is removed once applied.
type RespawnRequest struct {
	Position mgl32.Vec3
}

var RespawnRequestComponent = NewComponent[RespawnRequest]()
