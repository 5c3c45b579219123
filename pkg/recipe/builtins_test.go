package recipe

import (
	"strings"
	"testing"

	"github.com/chazu/greeble/pkg/config"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"simple keyword", `(plate :margin 0.8)`, `(plate "__kw_margin" 0.8)`},
		{"multiple keywords", `(batch :seed 4 :radius 2)`, `(batch "__kw_seed" 4 "__kw_radius" 2)`},
		{"keyword in string preserved", `"thing with :keyword inside"`, `"thing with :keyword inside"`},
		{"escaped quote in string", `"a \" :b" :c`, `"a \" :b" "__kw_c"`},
		{"backtick string preserved", "`raw :kw`", "`raw :kw`"},
		{"assignment operator preserved", `(def x := 10)`, `(def x := 10)`},
		{"kebab-case identifier", `(def face-size 2)`, `(def face_size 2)`},
		{"minus operator preserved", `(- 10 5)`, `(- 10 5)`},
		{"negative number preserved", `(inset :depth -0.02)`, `(inset "__kw_depth" -0.02)`},
		{"comment converted to // style", `;; comment with :keyword`, `// comment with :keyword`},
		{"single semicolon comment", `; simple comment`, `// simple comment`},
		{"hyphen in keyword preserved", `:min-cuts`, `"__kw_min-cuts"`},
		{"digits in keyword", `:notch45`, `"__kw_notch45"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Section builtins
// ---------------------------------------------------------------------------

func eval(t *testing.T, src string) config.Config {
	t.Helper()
	r, evalErrs, err := NewEngine().Evaluate(src)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	return r.Config
}

func TestSections(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(config.Config) bool
	}{
		{"shape floats", `(shape :notch45 0.25 :outer 0.75 :round 0.5)`, func(c config.Config) bool {
			return c.Shape.Notch45Probability == 0.25 && c.Shape.OuterProbability == 0.75 && c.Shape.RoundProbability == 0.5
		}},
		{"shape ints and bools", `(shape :recursion 2 :symmetry true :round-segments 3)`, func(c config.Config) bool {
			return c.Shape.RecursionDepth == 2 && c.Shape.Symmetry && c.Shape.RoundSegments == 3
		}},
		{"shape integer as float", `(shape :circle-radius 1)`, func(c config.Config) bool {
			return c.Shape.CircleRadius == 1
		}},
		{"plate", `(plate :margin 0.8 :clean-margin 0.7 :bevel 0.02 :crease 0.03)`, func(c config.Config) bool {
			p := c.Plate
			return p.CuttingShapeMargin == 0.8 && p.CleanFaceMargin == 0.7 && p.BevelOffset == 0.02 && p.CreaseDepth == 0.03
		}},
		{"subdivide", `(subdivide :min-cuts 2 :max-cuts 4 :minimum-length 0.1)`, func(c config.Config) bool {
			d := c.Subdivide
			return d.MinCuts == 2 && d.MaxCuts == 4 && d.MinimumLength == 0.1
		}},
		{"inset", `(inset :thickness 0.05 :depth 0.02 :relative false :inward 1)`, func(c config.Config) bool {
			in := c.Inset
			return in.Thickness == 0.05 && in.Depth == 0.02 && !in.Relative && in.InwardProbability == 1
		}},
		{"recursion", `(recursion :depth 4 :subdivide-over-cut 0.9 :inset 0)`, func(c config.Config) bool {
			r := c.Recursion
			return r.Depth == 4 && r.SubdivisionOverCutProbability == 0.9 && r.InsetProbability == 0
		}},
		{"batch keyword mode", `(batch :seed 99 :radius 3 :face-size 2 :mode :shapes)`, func(c config.Config) bool {
			b := c.Batch
			return b.Seed == 99 && b.Radius == 3 && b.FaceSize == 2 && b.Mode == config.ModeShapes
		}},
		{"batch string mode", `(batch :mode "panels")`, func(c config.Config) bool {
			return c.Batch.Mode == config.ModePanels
		}},
		{"later forms override", `(recursion :depth 1) (recursion :depth 5)`, func(c config.Config) bool {
			return c.Recursion.Depth == 5
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c := eval(t, tt.src); !tt.check(c) {
				t.Errorf("settings not applied: %+v", c)
			}
		})
	}
}

func TestSectionErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown keyword", `(shape :wobble 1)`, "unknown setting :wobble"},
		{"wrong type", `(recursion :depth "deep")`, "expected integer"},
		{"float for int", `(subdivide :min-cuts 1.5)`, "expected integer"},
		{"bad bool", `(inset :relative 1)`, "expected true or false"},
		{"positional", `(plate 0.5)`, "unexpected positional"},
		{"negative seed", `(batch :seed -1)`, "non-negative"},
		{"bad mode", `(batch :mode :sculpture)`, "invalid mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, evalErrs, err := NewEngine().Evaluate(tt.src)
			if err != nil {
				t.Fatalf("fatal error: %v", err)
			}
			if r != nil || len(evalErrs) == 0 {
				t.Fatalf("expected eval errors, got recipe %+v", r)
			}
			if !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("message = %q, want containing %q", evalErrs[0].Message, tt.want)
			}
		})
	}
}
