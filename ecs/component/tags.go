package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type CameraTag struct{}

var CameraTagComponent = NewComponent[CameraTag]()

// DeathObject kills the player on contact.
type DeathObject struct{}

var DeathObjectComponent = NewComponent[DeathObject]()

// PlayerSpawnPoint marks where the player (re)appears.
type PlayerSpawnPoint struct{}

var PlayerSpawnPointComponent = NewComponent[PlayerSpawnPoint]()

// LevelObject marks a top-level entity owned by an instantiated level.
// Descendants are owned through the hierarchy and carry no tag.
type LevelObject struct {
	Generation uint64
}

var LevelObjectComponent = NewComponent[LevelObject]()
