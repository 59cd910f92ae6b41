package system

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp/v2"

	"github.com/milk9111/spherefall/ecs"
	"github.com/milk9111/spherefall/ecs/component"
	"github.com/milk9111/spherefall/ecs/entity"
)

const (
	PhysicsStep = float32(1.0 / 60.0)
	Gravity     = float32(-9.81)
)

// PhysicsSystem moves dynamic bodies, keeps them out of solid colliders and
// reports overlaps as CollisionStarted / CollisionStopped events. It keeps a
// cache of the bodies it knows about; entries whose entity died or lost its
// collider are dropped before every step so removed geometry never collides.
//
// Every cached body has a footprint shape in a cp.Space. The space is never
// stepped; its spatial index finds the candidate pairs for the narrow phase.
type PhysicsSystem struct {
	active   bool
	gravity  mgl32.Vec3
	space    *cp.Space
	entities map[ecs.Entity]*bodyInfo
	contacts map[contactPair]bool
}

type bodyInfo struct {
	static bool
	sensor bool
	bounds aabb

	body  *cp.Body
	shape *cp.Shape
	half  cp.Vector
}

type contactPair struct {
	a, b ecs.Entity
}

func makePair(a, b ecs.Entity) contactPair {
	if b < a {
		a, b = b, a
	}
	return contactPair{a: a, b: b}
}

func (p contactPair) has(e ecs.Entity) bool {
	return p.a == e || p.b == e
}

// body is the per-step view of one collider.
type body struct {
	e        ecs.Entity
	info     *bodyInfo
	world    component.Transform
	local    *component.Transform
	collider *component.Collider
	rb       *component.RigidBody
	vel      *component.Velocity
}

func (b *body) dynamic() bool {
	return !b.info.static && b.vel != nil
}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{
		active:   true,
		gravity:  mgl32.Vec3{0, Gravity, 0},
		space:    cp.NewSpace(),
		entities: make(map[ecs.Entity]*bodyInfo),
		contacts: make(map[contactPair]bool),
	}
}

// SetActive pauses or resumes the simulation. Cleanup of removed bodies
// still runs while paused.
func (ps *PhysicsSystem) SetActive(active bool) {
	ps.active = active
}

func (ps *PhysicsSystem) Active() bool {
	return ps != nil && ps.active
}

// BodyCount is the number of cached bodies.
func (ps *PhysicsSystem) BodyCount() int {
	return len(ps.entities)
}

// ContactCount is the number of overlapping pairs after the last step.
func (ps *PhysicsSystem) ContactCount() int {
	return len(ps.contacts)
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	ps.cleanupEntities(w)
	if !ps.active {
		return
	}

	bodies := ps.syncEntities(w)
	ps.integrate(w, bodies)
	ps.collide(w, bodies)
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e := range ps.entities {
		if w.IsAlive(e) && ecs.Has(w, e, component.RigidBodyComponent.Kind()) && ecs.Has(w, e, component.ColliderComponent.Kind()) {
			continue
		}
		ps.removeBody(ps.entities[e])
		delete(ps.entities, e)
	}

	var gone []contactPair
	for pair := range ps.contacts {
		if ps.entities[pair.a] == nil || ps.entities[pair.b] == nil {
			gone = append(gone, pair)
		}
	}
	sortPairs(gone)
	for _, pair := range gone {
		sensor := ps.contacts[pair]
		delete(ps.contacts, pair)
		ecs.Send(w, CollisionStoppedEvents, CollisionStopped{A: pair.a, B: pair.b, Sensor: sensor, Removed: true})
	}
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) []*body {
	ents := w.Query(component.RigidBodyComponent.Kind(), component.ColliderComponent.Kind(), component.TransformComponent.Kind())
	bodies := make([]*body, 0, len(ents))
	for _, e := range ents {
		rb, _ := ecs.Get(w, e, component.RigidBodyComponent.Kind())
		col, _ := ecs.Get(w, e, component.ColliderComponent.Kind())
		local, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		world, ok := entity.WorldTransform(w, e)
		if !ok {
			continue
		}

		info := ps.entities[e]
		if info == nil {
			info = &bodyInfo{body: ps.space.AddBody(cp.NewKinematicBody())}
			ps.entities[e] = info
		}
		info.static = rb.Type == component.BodyFixed
		info.sensor = col.Sensor

		b := &body{e: e, info: info, world: world, local: local, collider: col, rb: rb}
		if !info.static {
			b.vel, _ = ecs.Get(w, e, component.VelocityComponent.Kind())
		}
		bodies = append(bodies, b)
	}
	return bodies
}

func (ps *PhysicsSystem) integrate(w *ecs.World, bodies []*body) {
	dt := PhysicsStep
	for _, b := range bodies {
		if !b.dynamic() {
			continue
		}
		mass := b.rb.Mass
		if mass <= 0 {
			mass = 1
		}
		var force component.ExternalForce
		if f, ok := ecs.Get(w, b.e, component.ExternalForceComponent.Kind()); ok {
			force = *f
		}

		v := b.vel
		v.Linear = v.Linear.Add(ps.gravity.Add(force.Force.Mul(1 / mass)).Mul(dt))
		v.Linear = v.Linear.Mul(1 / (1 + dt*b.rb.LinearDamping))
		v.Angular = v.Angular.Add(force.Torque.Mul(dt / inertia(b.collider, mass)))
		v.Angular = v.Angular.Mul(1 / (1 + dt*b.rb.AngularDamping))

		b.local.Position = b.local.Position.Add(v.Linear.Mul(dt))
		b.local.Rotation = integrateRotation(b.local.Rotation, v.Angular, dt)
		b.world = *b.local
	}
}

func (ps *PhysicsSystem) collide(w *ecs.World, bodies []*body) {
	byEntity := make(map[ecs.Entity]*body, len(bodies))
	for _, b := range bodies {
		b.info.bounds = boundsOf(b.world, b.collider)
		ps.place(b.e, b.info)
		byEntity[b.e] = b
	}

	current := make(map[contactPair]bool, len(ps.contacts))
	var started []CollisionStarted
	for _, pair := range ps.candidates(bodies, byEntity) {
		a, b := byEntity[pair.a], byEntity[pair.b]
		if !a.info.bounds.overlapsY(b.info.bounds) {
			continue
		}
		n, depth, ok := narrowPhase(a, b)
		if !ok {
			continue
		}
		sensor := a.collider.Sensor || b.collider.Sensor
		current[pair] = sensor
		if _, seen := ps.contacts[pair]; !seen {
			started = append(started, CollisionStarted{A: pair.a, B: pair.b, Sensor: sensor})
		}
		if !sensor {
			resolve(a, b, n, depth)
		}
	}

	var stopped []contactPair
	for pair := range ps.contacts {
		if _, ok := current[pair]; !ok {
			stopped = append(stopped, pair)
		}
	}
	sortPairs(stopped)
	for _, pair := range stopped {
		ecs.Send(w, CollisionStoppedEvents, CollisionStopped{A: pair.a, B: pair.b, Sensor: ps.contacts[pair]})
	}
	for _, ev := range started {
		ecs.Send(w, CollisionStartedEvents, ev)
	}
	ps.contacts = current
}

// candidates queries the spatial index with the footprint of every dynamic
// body. Pairs come back sorted, each once.
func (ps *PhysicsSystem) candidates(bodies []*body, byEntity map[ecs.Entity]*body) []contactPair {
	var pairs []contactPair
	for _, a := range bodies {
		if !a.dynamic() {
			continue
		}
		ps.space.BBQuery(a.info.shape.BB(), cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, _ interface{}) {
			e, ok := shape.UserData.(ecs.Entity)
			if !ok || e == a.e {
				return
			}
			other := byEntity[e]
			if other == nil {
				return
			}
			if other.dynamic() && e < a.e {
				// found from the other side as well
				return
			}
			pairs = append(pairs, makePair(a.e, e))
		}, nil)
	}
	sortPairs(pairs)
	return pairs
}

// place moves the footprint of info to its current XZ bounds. The shape is
// rebuilt only when the footprint size changes.
func (ps *PhysicsSystem) place(e ecs.Entity, info *bodyInfo) {
	fp := info.bounds.xz()
	half := cp.Vector{X: (fp.R - fp.L) / 2, Y: (fp.T - fp.B) / 2}
	if info.shape == nil || half != info.half {
		if info.shape != nil {
			ps.space.RemoveShape(info.shape)
		}
		info.shape = ps.space.AddShape(cp.NewBox2(info.body, cp.NewBB(-half.X, -half.Y, half.X, half.Y), 0))
		info.shape.UserData = e
		info.half = half
	}
	info.body.SetPosition(fp.Center())
	ps.space.ReindexShapesForBody(info.body)
}

func (ps *PhysicsSystem) removeBody(info *bodyInfo) {
	if info == nil || info.body == nil {
		return
	}
	if info.shape != nil {
		ps.space.RemoveShape(info.shape)
		info.shape = nil
	}
	ps.space.RemoveBody(info.body)
	info.body = nil
}

func sortPairs(pairs []contactPair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})
}

// resolve separates a and b along n (pointing from a to b) and removes the
// approaching part of their velocities.
func resolve(a, b *body, n mgl32.Vec3, depth float32) {
	shareA, shareB := float32(0), float32(0)
	switch {
	case a.dynamic() && b.dynamic():
		shareA, shareB = 0.5, 0.5
	case a.dynamic():
		shareA = 1
	case b.dynamic():
		shareB = 1
	}
	if shareA > 0 {
		pushOut(a, n.Mul(-1), depth*shareA, frictionOf(a, b))
	}
	if shareB > 0 {
		pushOut(b, n, depth*shareB, frictionOf(a, b))
	}
}

func frictionOf(a, b *body) float32 {
	return math32.Sqrt(max(0, a.collider.Friction) * max(0, b.collider.Friction))
}

// pushOut moves a dynamic body by depth along normal, which points away
// from the surface it touches.
func pushOut(b *body, normal mgl32.Vec3, depth, friction float32) {
	b.local.Position = b.local.Position.Add(normal.Mul(depth))
	b.world.Position = b.local.Position

	v := b.vel
	if vn := v.Linear.Dot(normal); vn < 0 {
		v.Linear = v.Linear.Sub(normal.Mul(vn))
	}

	f := min(1, friction)
	if f <= 0 {
		return
	}
	if b.collider.Shape == component.ColliderBall && b.collider.Radius > 0 {
		// friction impulse that drives the contact point toward zero slip,
		// converting spin into rolling and back
		r := b.collider.Radius
		contact := normal.Mul(-r)
		tangential := v.Linear.Sub(normal.Mul(v.Linear.Dot(normal)))
		slip := tangential.Add(v.Angular.Cross(contact))
		v.Linear = v.Linear.Sub(slip.Mul(f * 2 / 7))
		v.Angular = v.Angular.Sub(contact.Cross(slip).Mul(f * 5 / (7 * r * r)))
		return
	}
	tangential := v.Linear.Sub(normal.Mul(v.Linear.Dot(normal)))
	v.Linear = v.Linear.Sub(tangential.Mul(f * 0.1))
	v.Angular = v.Angular.Mul(1 - f*0.1)
}

func inertia(c *component.Collider, mass float32) float32 {
	switch c.Shape {
	case component.ColliderBall:
		if c.Radius > 0 {
			return 0.4 * mass * c.Radius * c.Radius
		}
	case component.ColliderBox:
		h := c.HalfExtents
		if i := mass * (h.X()*h.X() + h.Y()*h.Y() + h.Z()*h.Z()) * 2 / 9; i > 0 {
			return i
		}
	}
	return mass
}

func integrateRotation(q mgl32.Quat, omega mgl32.Vec3, dt float32) mgl32.Quat {
	speed := omega.Len()
	if speed < 1e-6 {
		return q
	}
	return mgl32.QuatRotate(speed*dt, omega.Mul(1/speed)).Mul(q).Normalize()
}

type aabb struct {
	min, max mgl32.Vec3
}

func boundsOf(t component.Transform, c *component.Collider) aabb {
	var ext mgl32.Vec3
	switch c.Shape {
	case component.ColliderBall:
		ext = mgl32.Vec3{c.Radius, c.Radius, c.Radius}
	default:
		h := c.HalfExtents
		ex := t.Rotation.Rotate(mgl32.Vec3{h.X(), 0, 0})
		ey := t.Rotation.Rotate(mgl32.Vec3{0, h.Y(), 0})
		ez := t.Rotation.Rotate(mgl32.Vec3{0, 0, h.Z()})
		for i := 0; i < 3; i++ {
			ext[i] = math32.Abs(ex[i]) + math32.Abs(ey[i]) + math32.Abs(ez[i])
		}
	}
	return aabb{min: t.Position.Sub(ext), max: t.Position.Add(ext)}
}

// xz is the footprint used for the broad-phase.
func (b aabb) xz() cp.BB {
	return cp.NewBB(float64(b.min.X()), float64(b.min.Z()), float64(b.max.X()), float64(b.max.Z()))
}

func (b aabb) overlapsY(o aabb) bool {
	return b.max.Y() >= o.min.Y() && o.max.Y() >= b.min.Y()
}

// narrowPhase returns the contact normal pointing from a to b and the
// penetration depth.
func narrowPhase(a, b *body) (mgl32.Vec3, float32, bool) {
	ballA := a.collider.Shape == component.ColliderBall
	ballB := b.collider.Shape == component.ColliderBall
	switch {
	case ballA && ballB:
		return ballBall(a.world.Position, a.collider.Radius, b.world.Position, b.collider.Radius)
	case ballA:
		n, depth, ok := ballBox(a.world.Position, a.collider.Radius, b.world, b.collider.HalfExtents)
		return n.Mul(-1), depth, ok
	case ballB:
		return ballBox(b.world.Position, b.collider.Radius, a.world, a.collider.HalfExtents)
	}
	return boxBox(a.info.bounds, b.info.bounds)
}

func ballBall(ca mgl32.Vec3, ra float32, cb mgl32.Vec3, rb float32) (mgl32.Vec3, float32, bool) {
	d := cb.Sub(ca)
	dist := d.Len()
	if dist >= ra+rb {
		return mgl32.Vec3{}, 0, false
	}
	if dist < 1e-6 {
		return mgl32.Vec3{0, 1, 0}, ra + rb, true
	}
	return d.Mul(1 / dist), ra + rb - dist, true
}

// ballBox tests a sphere against an oriented box. The normal points from
// the box toward the sphere.
func ballBox(center mgl32.Vec3, r float32, box component.Transform, half mgl32.Vec3) (mgl32.Vec3, float32, bool) {
	inv := box.Rotation.Conjugate()
	local := inv.Rotate(center.Sub(box.Position))

	var closest mgl32.Vec3
	for i := 0; i < 3; i++ {
		closest[i] = max(-half[i], min(half[i], local[i]))
	}
	d := local.Sub(closest)
	dist := d.Len()
	if dist >= r {
		return mgl32.Vec3{}, 0, false
	}
	if dist > 1e-6 {
		return box.Rotation.Rotate(d.Mul(1 / dist)), r - dist, true
	}

	// centre inside the box: leave through the nearest face
	axis, pen := 0, half[0]-math32.Abs(local[0])
	for i := 1; i < 3; i++ {
		if p := half[i] - math32.Abs(local[i]); p < pen {
			axis, pen = i, p
		}
	}
	var n mgl32.Vec3
	n[axis] = 1
	if local[axis] < 0 {
		n[axis] = -1
	}
	return box.Rotation.Rotate(n), r + pen, true
}

func boxBox(a, b aabb) (mgl32.Vec3, float32, bool) {
	best := float32(math32.MaxFloat32)
	var n mgl32.Vec3
	for i := 0; i < 3; i++ {
		overlap := min(a.max[i], b.max[i]) - max(a.min[i], b.min[i])
		if overlap <= 0 {
			return mgl32.Vec3{}, 0, false
		}
		if overlap < best {
			best = overlap
			n = mgl32.Vec3{}
			if a.min[i]+a.max[i] <= b.min[i]+b.max[i] {
				n[i] = 1
			} else {
				n[i] = -1
			}
		}
	}
	return n, best, true
}
