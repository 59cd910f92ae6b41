package levels

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

// Parse parses and validates a level file. On failure the error is a
// *ParseError; syntax errors carry one diagnostic, semantic errors carry
// all of them.
func Parse(sourceName, text string) (*Descriptor, error) {
	doc, err := ParseDocument(sourceName, text)
	if err != nil {
		return nil, err
	}
	d := &decoder{source: sourceName}
	desc := d.document(doc)
	if len(d.diags) > 0 {
		return nil, newParseError(sourceName, text, d.diags...)
	}
	return desc, nil
}

var usage = map[string]string{
	"version":     "version 1",
	"spawn":       "spawn { pos <x> <y> <z> }",
	"cube":        "cube <size> { pos <x> <y> <z>; rot <axis> <degrees> }",
	"plane":       "plane <width> [<depth>] { pos <x> <y> <z>; rot <axis> <degrees> }",
	"death_plane": "death_plane <size> { pos <x> <y> <z> }",
	"pos":         "pos <x> <y> <z>  or  pos x=<x> y=<y> z=<z>",
	"rot":         "rot <axis> <degrees>  or  rot axis=<X|Y|Z> angle=<degrees>",
}

func usageHelp(name string) string {
	if u, ok := usage[name]; ok {
		return "usage: " + u
	}
	return ""
}

type param struct {
	name     string
	required bool
}

type decoder struct {
	source string
	diags  []Diagnostic
}

func (d *decoder) report(span Span, token, message, help string) {
	d.diags = append(d.diags, Diagnostic{
		Source:  d.source,
		Span:    span,
		Token:   token,
		Message: message,
		Help:    help,
	})
}

func (d *decoder) document(doc *Document) *Descriptor {
	desc := &Descriptor{Version: FormatVersion}
	var spawn, version *Node
	for _, n := range doc.Nodes {
		switch n.Name {
		case "version":
			if version != nil {
				d.duplicate(n, "level")
				continue
			}
			version = n
			desc.Version = d.version(n)
		case "spawn":
			if spawn != nil {
				d.duplicate(n, "level")
				continue
			}
			spawn = n
			desc.Spawn = d.spawn(n)
		case "cube":
			desc.Cubes = append(desc.Cubes, d.cube(n))
		case "plane":
			desc.Planes = append(desc.Planes, d.plane(n))
		case "death_plane":
			desc.DeathPlanes = append(desc.DeathPlanes, d.deathPlane(n))
		default:
			d.report(n.NameSpan, n.Name, fmt.Sprintf("unknown node `%s`", n.Name),
				"expected one of version, spawn, cube, plane, death_plane")
		}
	}
	if spawn == nil {
		start := Position{Offset: 0, Line: 1, Col: 1}
		d.report(Span{Start: start, End: start}, "", "level is missing required node `spawn`",
			"add `spawn { pos 0 0.5 0 }`")
	}
	return desc
}

func (d *decoder) duplicate(n *Node, parent string) {
	d.report(n.NameSpan, n.Name, fmt.Sprintf("duplicate `%s` in %s", n.Name, parent),
		fmt.Sprintf("only one `%s` is allowed", n.Name))
}

func (d *decoder) version(n *Node) int {
	vals := d.bind(n, param{"value", true})
	d.noChildren(n)
	if vals[0] == nil {
		return FormatVersion
	}
	f, ok := d.number(vals[0], "version")
	if !ok {
		return FormatVersion
	}
	if f != math32.Trunc(f) || int(f) != FormatVersion {
		d.report(vals[0].Span, vals[0].Raw, fmt.Sprintf("unsupported level format version %s", vals[0].Raw),
			fmt.Sprintf("this build reads version %d", FormatVersion))
		return FormatVersion
	}
	return int(f)
}

func (d *decoder) spawn(n *Node) SpawnSpec {
	d.bind(n)
	kids := d.children(n, "pos")
	return SpawnSpec{Pos: d.pos(n, kids)}
}

func (d *decoder) cube(n *Node) CubeSpec {
	vals := d.bind(n, param{"size", true})
	kids := d.children(n, "pos", "rot")
	return CubeSpec{
		Pos:       d.pos(n, kids),
		Rotations: d.rotations(kids),
		Size:      d.positive(vals[0], "size"),
	}
}

func (d *decoder) plane(n *Node) PlaneSpec {
	vals := d.bind(n, param{"width", true}, param{"depth", false})
	kids := d.children(n, "pos", "rot")
	spec := PlaneSpec{
		Pos:       d.pos(n, kids),
		Rotations: d.rotations(kids),
		Width:     d.positive(vals[0], "width"),
	}
	spec.Depth = spec.Width
	if vals[1] != nil {
		spec.Depth = d.positive(vals[1], "depth")
	}
	return spec
}

func (d *decoder) deathPlane(n *Node) DeathPlaneSpec {
	vals := d.bind(n, param{"size", true})
	kids := d.children(n, "pos")
	return DeathPlaneSpec{
		Pos:  d.pos(n, kids),
		Size: d.positive(vals[0], "size"),
	}
}

// pos decodes the single required `pos` child of parent.
func (d *decoder) pos(parent *Node, kids map[string][]*Node) Vec {
	nodes := kids["pos"]
	if len(nodes) == 0 {
		d.report(parent.NameSpan, parent.Name, fmt.Sprintf("`%s` is missing required child `pos`", parent.Name),
			usageHelp(parent.Name))
		return Vec{}
	}
	for _, extra := range nodes[1:] {
		d.duplicate(extra, "`"+parent.Name+"`")
	}
	n := nodes[0]
	vals := d.bind(n, param{"x", true}, param{"y", true}, param{"z", true})
	d.noChildren(n)
	var v Vec
	if vals[0] != nil {
		v.X, _ = d.number(vals[0], "x")
	}
	if vals[1] != nil {
		v.Y, _ = d.number(vals[1], "y")
	}
	if vals[2] != nil {
		v.Z, _ = d.number(vals[2], "z")
	}
	return v
}

func (d *decoder) rotations(kids map[string][]*Node) []Rotation {
	var rots []Rotation
	for _, n := range kids["rot"] {
		vals := d.bind(n, param{"axis", true}, param{"angle", true})
		d.noChildren(n)
		var r Rotation
		if vals[0] != nil {
			r.Axis = d.axis(vals[0])
		}
		if vals[1] != nil {
			r.Angle, _ = d.number(vals[1], "angle")
		}
		rots = append(rots, r)
	}
	return rots
}

// bind assigns positional arguments in order, then properties by name.
// The result has one slot per param; missing optional params are nil.
func (d *decoder) bind(n *Node, params ...param) []*Value {
	out := make([]*Value, len(params))
	for i := range n.Args {
		arg := &n.Args[i]
		if i >= len(params) {
			d.report(arg.Span, arg.Raw, fmt.Sprintf("unexpected argument `%s` to `%s`", arg.Raw, n.Name),
				usageHelp(n.Name))
			continue
		}
		out[i] = arg
	}
	for i := range n.Props {
		prop := &n.Props[i]
		idx := -1
		for j, p := range params {
			if p.name == prop.Key {
				idx = j
				break
			}
		}
		if idx < 0 {
			d.report(prop.KeySpan, prop.Key, fmt.Sprintf("unknown property `%s` on `%s`", prop.Key, n.Name),
				usageHelp(n.Name))
			continue
		}
		if out[idx] != nil {
			d.report(prop.KeySpan, prop.Key, fmt.Sprintf("`%s` of `%s` is given more than once", prop.Key, n.Name),
				"pass each value either positionally or as a property, not both")
			continue
		}
		out[idx] = &prop.Value
	}
	for i, p := range params {
		if p.required && out[i] == nil {
			d.report(n.NameSpan, n.Name, fmt.Sprintf("`%s` is missing `%s`", n.Name, p.name), usageHelp(n.Name))
		}
	}
	return out
}

// children groups n's children by name, reporting names not in allowed.
func (d *decoder) children(n *Node, allowed ...string) map[string][]*Node {
	out := make(map[string][]*Node, len(allowed))
	for _, c := range n.Children {
		known := false
		for _, name := range allowed {
			if c.Name == name {
				known = true
				break
			}
		}
		if !known {
			d.report(c.NameSpan, c.Name, fmt.Sprintf("unexpected child `%s` in `%s`", c.Name, n.Name),
				"expected "+strings.Join(allowed, " or "))
			continue
		}
		out[c.Name] = append(out[c.Name], c)
	}
	return out
}

func (d *decoder) noChildren(n *Node) {
	for _, c := range n.Children {
		d.report(c.NameSpan, c.Name, fmt.Sprintf("`%s` takes no child nodes", n.Name), usageHelp(n.Name))
	}
}

// number decodes v as a finite float32.
func (d *decoder) number(v *Value, what string) (float32, bool) {
	switch v.Kind {
	case ValueNumber:
	case ValueFloatKeyword:
		d.report(v.Span, v.Raw, fmt.Sprintf("`%s` must be a finite number, found `%s`", what, v.Raw), "")
		return 0, false
	default:
		d.report(v.Span, v.Raw, fmt.Sprintf("expected a number for `%s`, found %s `%s`", what, v.Kind, v.Raw), "")
		return 0, false
	}
	f, err := parseFloat32(v.Str)
	if err != nil {
		d.report(v.Span, v.Raw, fmt.Sprintf("invalid number `%s` for `%s`", v.Raw, what), "")
		return 0, false
	}
	if math32.IsInf(f, 0) || math32.IsNaN(f) {
		d.report(v.Span, v.Raw, fmt.Sprintf("`%s` value `%s` does not fit in a finite 32-bit float", what, v.Raw), "")
		return 0, false
	}
	return f, true
}

func (d *decoder) positive(v *Value, what string) float32 {
	if v == nil {
		return 0
	}
	f, ok := d.number(v, what)
	if ok && f <= 0 {
		d.report(v.Span, v.Raw, fmt.Sprintf("`%s` must be greater than zero, found `%s`", what, v.Raw), "")
	}
	return f
}

func (d *decoder) axis(v *Value) Axis {
	if v.Kind != ValueString && v.Kind != ValueIdent {
		d.report(v.Span, v.Raw, fmt.Sprintf("expected an axis, found %s `%s`", v.Kind, v.Raw),
			"axis must be exactly X, Y or Z")
		return ""
	}
	a := Axis(v.Str)
	if !a.Valid() {
		d.report(v.Span, v.Raw, fmt.Sprintf("invalid axis `%s`", v.Str), "axis must be exactly X, Y or Z")
		return ""
	}
	return a
}

// parseFloat32 parses a number literal from the lexer. Overflow yields
// ±Inf with no error so the caller reports it as non-finite.
func parseFloat32(lit string) (float32, error) {
	s := strings.ReplaceAll(lit, "_", "")
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && strings.ContainsRune("xXoObB", rune(digits[1])) {
		i, err := strconv.ParseInt(s, 0, 64)
		if errors.Is(err, strconv.ErrRange) {
			if strings.HasPrefix(s, "-") {
				return math32.Inf(-1), nil
			}
			return math32.Inf(1), nil
		}
		if err != nil {
			return 0, err
		}
		return float32(i), nil
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return float32(f), nil
}
