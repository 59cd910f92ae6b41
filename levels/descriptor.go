package levels

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// FormatVersion is the newest level format this package decodes. Files
// without a version node are read as version 1.
const FormatVersion = 1

// Descriptor is a parsed, validated level. It is never mutated after Parse
// returns it.
type Descriptor struct {
	Version     int              `json:"version" jsonschema:"minimum=1,maximum=1"`
	Spawn       SpawnSpec        `json:"spawn" jsonschema:"required"`
	Cubes       []CubeSpec       `json:"cubes,omitempty"`
	Planes      []PlaneSpec      `json:"planes,omitempty"`
	DeathPlanes []DeathPlaneSpec `json:"death_planes,omitempty"`
}

// ObjectCount is the number of top-level objects instantiating d creates.
func (d *Descriptor) ObjectCount() int {
	if d == nil {
		return 0
	}
	return 1 + len(d.Cubes) + len(d.Planes) + len(d.DeathPlanes)
}

type SpawnSpec struct {
	Pos Vec `json:"pos" jsonschema:"required"`
}

// CubeSpec is a dynamic box with edge length Size.
type CubeSpec struct {
	Pos       Vec        `json:"pos" jsonschema:"required"`
	Rotations []Rotation `json:"rotations,omitempty"`
	Size      float32    `json:"size" jsonschema:"required"`
}

// PlaneSpec is a static floor tile of Width x Depth. Depth equals Width
// when the file omits it.
type PlaneSpec struct {
	Pos       Vec        `json:"pos" jsonschema:"required"`
	Rotations []Rotation `json:"rotations,omitempty"`
	Width     float32    `json:"width" jsonschema:"required"`
	Depth     float32    `json:"depth"`
}

// DeathPlaneSpec is a cubic trigger volume whose top face sits at Pos.
type DeathPlaneSpec struct {
	Pos  Vec     `json:"pos" jsonschema:"required"`
	Size float32 `json:"size" jsonschema:"required"`
}

type Vec struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func (v Vec) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

type Axis string

const (
	AxisX Axis = "X"
	AxisY Axis = "Y"
	AxisZ Axis = "Z"
)

func (a Axis) Valid() bool {
	return a == AxisX || a == AxisY || a == AxisZ
}

func (a Axis) Vec3() mgl32.Vec3 {
	switch a {
	case AxisX:
		return mgl32.Vec3{1, 0, 0}
	case AxisY:
		return mgl32.Vec3{0, 1, 0}
	case AxisZ:
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{}
}

// Rotation turns Angle degrees around Axis.
type Rotation struct {
	Axis  Axis    `json:"axis" jsonschema:"enum=X,enum=Y,enum=Z"`
	Angle float32 `json:"angle"`
}

func (r Rotation) Quat() mgl32.Quat {
	return mgl32.QuatRotate(r.Angle/180*math32.Pi, r.Axis.Vec3())
}

// ComposeRotations multiplies the rotations left to right in authored
// order. Quaternion products do not commute, so the order is significant.
func ComposeRotations(rots []Rotation) mgl32.Quat {
	q := mgl32.QuatIdent()
	for _, r := range rots {
		q = q.Mul(r.Quat())
	}
	return q
}
