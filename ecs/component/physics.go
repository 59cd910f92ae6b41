package component

import "github.com/go-gl/mathgl/mgl32"

type BodyType int

const (
	BodyDynamic BodyType = iota
	BodyFixed
)

func (t BodyType) String() string {
	if t == BodyFixed {
		return "fixed"
	}
	return "dynamic"
}

// RigidBody asks the physics system to simulate the entity.
type RigidBody struct {
	Type           BodyType
	Mass           float32
	LinearDamping  float32
	AngularDamping float32
}

type ColliderShape int

const (
	ColliderBox ColliderShape = iota
	ColliderBall
)

// Collider describes a collision volume centred on the entity transform.
// A sensor reports contacts but never pushes bodies apart.
type Collider struct {
	Shape       ColliderShape
	HalfExtents mgl32.Vec3
	Radius      float32
	Friction    float32
	Sensor      bool
}

// Velocity is written by the physics system for dynamic bodies.
type Velocity struct {
	Linear  mgl32.Vec3
	Angular mgl32.Vec3
}

// ExternalForce is applied every physics step until changed.
type ExternalForce struct {
	Force  mgl32.Vec3
	Torque mgl32.Vec3
}

var RigidBodyComponent = NewComponent[RigidBody]()
var ColliderComponent = NewComponent[Collider]()
var VelocityComponent = NewComponent[Velocity]()
var ExternalForceComponent = NewComponent[ExternalForce]()
