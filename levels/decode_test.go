package levels

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestParseCompactScenario(t *testing.T) {
	desc, err := Parse("scenario.level.kdl", `spawn{pos{x=0;y=0.5;z=0;}} cube size=1 {pos{x=0;y=0.5;z=-2;}}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if desc.Spawn.Pos != (Vec{0, 0.5, 0}) {
		t.Fatalf("unexpected spawn %+v", desc.Spawn.Pos)
	}
	if len(desc.Cubes) != 1 {
		t.Fatalf("expected one cube, got %d", len(desc.Cubes))
	}
	cube := desc.Cubes[0]
	if cube.Size != 1 || cube.Pos != (Vec{0, 0.5, -2}) {
		t.Fatalf("unexpected cube %+v", cube)
	}
	if q := ComposeRotations(cube.Rotations); !q.ApproxEqual(mgl32.QuatIdent()) {
		t.Fatalf("expected identity rotation, got %v", q)
	}
	if desc.Version != FormatVersion || len(desc.Planes) != 0 || len(desc.DeathPlanes) != 0 {
		t.Fatalf("unexpected extra content %+v", desc)
	}
}

func TestParseForms(t *testing.T) {
	cases := []struct {
		name  string
		input string
		check func(t *testing.T, d *Descriptor)
	}{
		{
			name:  "plane_depth_defaults_to_width",
			input: "spawn { pos 0 0 0 }\nplane 4 { pos 0 0 0 }",
			check: func(t *testing.T, d *Descriptor) {
				if p := d.Planes[0]; p.Width != 4 || p.Depth != 4 {
					t.Fatalf("expected 4x4 plane, got %vx%v", p.Width, p.Depth)
				}
			},
		},
		{
			name:  "plane_explicit_depth",
			input: "spawn { pos 0 0 0 }\nplane width=4 depth=2 { pos 0 0 0 }",
			check: func(t *testing.T, d *Descriptor) {
				if p := d.Planes[0]; p.Width != 4 || p.Depth != 2 {
					t.Fatalf("expected 4x2 plane, got %vx%v", p.Width, p.Depth)
				}
			},
		},
		{
			name:  "rotations_keep_order",
			input: "spawn { pos 0 0 0 }\ncube 1 { pos 0 0 0; rot Y 90; rot axis=\"X\" angle=-45 }",
			check: func(t *testing.T, d *Descriptor) {
				want := []Rotation{{AxisY, 90}, {AxisX, -45}}
				got := d.Cubes[0].Rotations
				if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
					t.Fatalf("expected %v, got %v", want, got)
				}
			},
		},
		{
			name:  "numbers",
			input: "spawn { pos 1_000 0x10 -1.5e1 }",
			check: func(t *testing.T, d *Descriptor) {
				if d.Spawn.Pos != (Vec{1000, 16, -15}) {
					t.Fatalf("unexpected pos %+v", d.Spawn.Pos)
				}
			},
		},
		{
			name:  "death_plane_and_version",
			input: "version 1\nspawn { pos 0 0 0 }\ndeath_plane 100 { pos 0 -10 0 }",
			check: func(t *testing.T, d *Descriptor) {
				if len(d.DeathPlanes) != 1 || d.DeathPlanes[0].Size != 100 {
					t.Fatalf("unexpected death planes %+v", d.DeathPlanes)
				}
				if d.ObjectCount() != 2 {
					t.Fatalf("expected 2 objects, got %d", d.ObjectCount())
				}
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d, err := Parse("forms.level.kdl", c.input)
			if err != nil {
				var perr *ParseError
				if errors.As(err, &perr) {
					t.Fatalf("Parse: %v\n%s", err, perr.Render())
				}
				t.Fatalf("Parse: %v", err)
			}
			c.check(t, d)
		})
	}
}

func TestParseSemanticErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		msg   string
	}{
		{"missing_spawn", "cube 1 { pos 0 0 0 }", "missing required node `spawn`"},
		{"duplicate_spawn", "spawn { pos 0 0 0 }\nspawn { pos 1 1 1 }", "duplicate `spawn`"},
		{"unknown_node", "spawn { pos 0 0 0 }\nsphere 1", "unknown node `sphere`"},
		{"missing_pos", "spawn { pos 0 0 0 }\ncube 1", "missing required child `pos`"},
		{"missing_size", "spawn { pos 0 0 0 }\ncube { pos 0 0 0 }", "`cube` is missing `size`"},
		{"size_twice", "spawn { pos 0 0 0 }\ncube 1 size=2 { pos 0 0 0 }", "given more than once"},
		{"extra_argument", "spawn { pos 0 0 0 4 }", "unexpected argument `4`"},
		{"unknown_property", "spawn { pos 0 0 0 w=1 }", "unknown property `w`"},
		{"bad_axis", "spawn { pos 0 0 0 }\ncube 1 { pos 0 0 0; rot x 90 }", "invalid axis `x`"},
		{"string_number", "spawn { pos 0 \"a\" 0 }", "expected a number for `y`"},
		{"overflow", "spawn { pos 1e39 0 0 }", "finite 32-bit float"},
		{"inf_keyword", "spawn { pos #inf 0 0 }", "must be a finite number"},
		{"zero_size", "spawn { pos 0 0 0 }\ncube 0 { pos 0 0 0 }", "greater than zero"},
		{"unexpected_child", "spawn { pos 0 0 0; rot X 1 }", "unexpected child `rot`"},
		{"unsupported_version", "version 2\nspawn { pos 0 0 0 }", "unsupported level format version 2"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse("bad.level.kdl", c.input)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			found := false
			for _, d := range perr.Diagnostics {
				if strings.Contains(d.Message, c.msg) {
					found = true
				}
				if d.Source != "bad.level.kdl" {
					t.Fatalf("diagnostic lost its source name: %+v", d)
				}
			}
			if !found {
				t.Fatalf("expected %q among %v", c.msg, perr.Diagnostics)
			}
		})
	}
}

func TestParseCollectsAllDecodeErrors(t *testing.T) {
	_, err := Parse("multi.level.kdl", "cube 0 { pos 0 0 0 }\nplane { pos 0 0 0 }")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if len(perr.Diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d: %v", len(perr.Diagnostics), perr.Diagnostics)
	}
	if !strings.Contains(err.Error(), "(and 2 more)") {
		t.Fatalf("unexpected error text %q", err.Error())
	}
}

func TestParseErrorRender(t *testing.T) {
	_, err := Parse("render.level.kdl", "spawn {\n    pos 0 \"abc\" 1\n}")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	out := perr.Render()
	for _, want := range []string{
		"error: expected a number for `y`",
		"--> render.level.kdl:2:11",
		`2 |     pos 0 "abc" 1`,
		"  |           ^^^^^",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in rendered output:\n%s", want, out)
		}
	}
}

func TestComposeRotationsOrder(t *testing.T) {
	rots := []Rotation{{AxisY, 90}, {AxisX, 90}}
	got := ComposeRotations(rots)

	ry := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0})
	rx := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{1, 0, 0})
	want := ry.Mul(rx)
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Fatalf("expected Ry*Rx %v, got %v", want, got)
	}
	if reversed := rx.Mul(ry); got.ApproxEqualThreshold(reversed, 1e-5) {
		t.Fatalf("composition must not equal Rx*Ry")
	}
}

func TestEmbeddedLevelsParse(t *testing.T) {
	names := Names()
	if len(names) == 0 {
		t.Fatal("expected embedded levels")
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadLevelFromFS(name); err != nil {
				var perr *ParseError
				if errors.As(err, &perr) {
					t.Fatalf("%v\n%s", err, perr.Render())
				}
				t.Fatal(err)
			}
		})
	}
}
