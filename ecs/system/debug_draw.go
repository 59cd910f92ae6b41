package system

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp/v2"

	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
	"github.com/milk9111/spherefall/ecs/entity"
)

const (
	debugCircleSegments = 24
	debugPixelsPerUnit  = 40
)

var (
	debugLookColor   = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	debugSpawnColor  = color.RGBA{R: 80, G: 255, B: 80, A: 255}
	debugLabelFormat = "Level: %s  gen %d\nObjects: %d  Bodies: %d  Contacts: %d\nPlayer: (%.2f, %.2f, %.2f)"
)

// DrawLevelDebug draws a top-down view of every mesh footprint on the XZ
// plane, centred on the player, with -Z pointing up the screen.
func DrawLevelDebug(w *ecs.World, screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}

	var center cp.Vector
	if player, ok := w.First(component.PlayerTagComponent.Kind(), component.TransformComponent.Kind()); ok {
		if t, ok := entity.WorldTransform(w, player); ok {
			center = cp.Vector{X: float64(t.Position.X()), Y: float64(t.Position.Z())}
		}
	}
	bounds := screen.Bounds()
	d := &debugDrawer{
		screen: screen,
		center: center,
		half:   cp.Vector{X: float64(bounds.Dx()) / 2, Y: float64(bounds.Dy()) / 2},
		zoom:   debugPixelsPerUnit,
	}

	for _, e := range w.Query(component.MeshComponent.Kind(), component.TransformComponent.Kind()) {
		mesh, _ := ecs.Get(w, e, component.MeshComponent.Kind())
		t, ok := entity.WorldTransform(w, e)
		if !ok {
			continue
		}
		d.drawMesh(t, mesh)
	}

	ecs.ForEach(w, component.PlayerSpawnPointComponent.Kind(), func(e ecs.Entity, _ *component.PlayerSpawnPoint) {
		if t, ok := entity.WorldTransform(w, e); ok {
			d.drawCross(flatten(t.Position), 0.25, debugSpawnColor)
		}
	})

	if cam, ok := w.First(component.CameraComponent.Kind()); ok {
		c, _ := ecs.Get(w, cam, component.CameraComponent.Kind())
		d.drawLine(center, center.Add(flatten(c.Looking())), debugLookColor)
	}
}

// DrawStatus prints the level and physics counters in the top-left corner.
func DrawStatus(w *ecs.World, screen *ebiten.Image, levelSys *LevelSystem, physics *PhysicsSystem) {
	if w == nil || screen == nil {
		return
	}
	handle, gen, _ := levelSys.Loaded()
	var pos mgl32.Vec3
	if player, ok := w.First(component.PlayerTagComponent.Kind(), component.TransformComponent.Kind()); ok {
		t, _ := ecs.Get(w, player, component.TransformComponent.Kind())
		pos = t.Position
	}
	bodies, contacts := 0, 0
	if physics != nil {
		bodies, contacts = physics.BodyCount(), physics.ContactCount()
	}
	text := fmt.Sprintf(debugLabelFormat, handle, gen,
		ecs.Count(w, component.LevelObjectComponent.Kind()), bodies, contacts,
		pos.X(), pos.Y(), pos.Z())
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}

func flatten(v mgl32.Vec3) cp.Vector {
	return cp.Vector{X: float64(v.X()), Y: float64(v.Z())}
}

type debugDrawer struct {
	screen *ebiten.Image
	center cp.Vector
	half   cp.Vector
	zoom   float64
}

func (d *debugDrawer) drawMesh(t component.Transform, mesh *component.Mesh) {
	switch mesh.Shape {
	case component.MeshSphere:
		d.drawCircle(flatten(t.Position), float64(mesh.Size.X())/2, mesh.Color)
	default:
		hx, hz := mesh.Size.X()/2, mesh.Size.Z()/2
		local := []mgl32.Vec3{{-hx, 0, -hz}, {hx, 0, -hz}, {hx, 0, hz}, {-hx, 0, hz}}
		verts := make([]cp.Vector, 0, len(local))
		for _, p := range local {
			verts = append(verts, flatten(t.Position.Add(t.Rotation.Rotate(p))))
		}
		d.drawPolygon(verts, mesh.Color)
	}
}

func (d *debugDrawer) drawLine(a, b cp.Vector, clr color.Color) {
	x1, y1 := d.toScreen(a)
	x2, y2 := d.toScreen(b)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 1, clr, false)
}

func (d *debugDrawer) drawPolygon(verts []cp.Vector, clr color.Color) {
	for i := 0; i < len(verts); i++ {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], clr)
	}
}

func (d *debugDrawer) drawCircle(center cp.Vector, radius float64, clr color.Color) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, clr)
}

func (d *debugDrawer) drawCross(pos cp.Vector, size float64, clr color.Color) {
	d.drawLine(cp.Vector{X: pos.X - size, Y: pos.Y}, cp.Vector{X: pos.X + size, Y: pos.Y}, clr)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - size}, cp.Vector{X: pos.X, Y: pos.Y + size}, clr)
}

func (d *debugDrawer) toScreen(p cp.Vector) (float32, float32) {
	s := p.Sub(d.center).Mult(d.zoom).Add(d.half)
	return float32(s.X), float32(s.Y)
}
