package component

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

type MeshShape int

const (
	MeshCube MeshShape = iota
	MeshQuad
	MeshSphere
)

// Mesh is the visual footprint of an entity. Size is the full extent on each
// axis; a quad is flat on Y.
type Mesh struct {
	Shape MeshShape
	Size  mgl32.Vec3
	Color color.RGBA
}

var MeshComponent = NewComponent[Mesh]()
