package component

// Player holds movement tuning for the rolling sphere.
type Player struct {
	Torque float32
}

var PlayerComponent = NewComponent[Player]()
