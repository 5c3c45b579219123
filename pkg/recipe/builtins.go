package recipe

import (
	"fmt"
	"slices"
	"strings"

	"github.com/chazu/greeble/pkg/config"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites recipe source before zygomys sees it:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbol and cannot collide with user variables.
//  2. kebab-case identifiers become snake_case; zygomys reads a bare hyphen
//     as subtraction.
//  3. ; line comments become // comments.
//
// String literals are left alone.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := i + 1
			for j < len(b) && b[j] != '"' {
				if b[j] == '\\' && j+1 < len(b) {
					j++
				}
				j++
			}
			j = min(j+1, len(b))
			result = append(result, b[i:j]...)
			i = j

		case b[i] == '`':
			j := i + 1
			for j < len(b) && b[j] != '`' {
				j++
			}
			j = min(j+1, len(b))
			result = append(result, b[i:j]...)
			i = j

		case b[i] == ';':
			for i < len(b) && b[i] == ';' {
				i++
			}
			result = append(result, '/', '/')
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}

		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, ':', '=')
			i += 2

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j

		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++

		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// ---------------------------------------------------------------------------
// Setting bindings
// ---------------------------------------------------------------------------

// setter stores one keyword value into the configuration.
type setter func(zygo.Sexp) error

func floatInto(p *float64) setter {
	return func(s zygo.Sexp) error {
		f, err := toFloat64(s)
		if err == nil {
			*p = f
		}
		return err
	}
}

func intInto(p *int) setter {
	return func(s zygo.Sexp) error {
		n, err := toInt(s)
		if err == nil {
			*p = n
		}
		return err
	}
}

func boolInto(p *bool) setter {
	return func(s zygo.Sexp) error {
		b, err := toBool(s)
		if err == nil {
			*p = b
		}
		return err
	}
}

func seedInto(p *uint64) setter {
	return func(s zygo.Sexp) error {
		v, ok := s.(*zygo.SexpInt)
		if !ok || v.Val < 0 {
			return fmt.Errorf("expected non-negative integer, got %s", s.SexpString(nil))
		}
		*p = uint64(v.Val)
		return nil
	}
}

func modeInto(p *config.Mode) setter {
	return func(s zygo.Sexp) error {
		name, err := toKeywordString(s)
		if err != nil {
			return err
		}
		switch m := config.Mode(name); m {
		case config.ModePanels, config.ModeShapes:
			*p = m
			return nil
		}
		return fmt.Errorf("invalid mode %q, expected panels or shapes", name)
	}
}

// section registers a builtin that takes only keyword arguments and
// applies each through its setter. Unknown keywords are errors.
func section(env *zygo.Zlisp, name string, fields map[string]setter) {
	env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("%s: unexpected positional argument %s", name, pa.positional[0].SexpString(nil))
		}
		keys := make([]string, 0, len(pa.kw))
		for k := range pa.kw {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			set, ok := fields[k]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("%s: unknown setting :%s", name, k)
			}
			if err := set(pa.kw[k]); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %s: %w", name, k, err)
			}
		}
		return zygo.SexpNull, nil
	})
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs one builtin per configuration section. Each
// writes into cfg as the recipe runs, so later forms override earlier ones.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, cfg *config.Config) {
	s := &cfg.Shape
	section(env, "shape", map[string]setter{
		"edge-transform":   floatInto(&s.EdgeTransformProbability),
		"notch45":          floatInto(&s.Notch45Probability),
		"outer":            floatInto(&s.OuterProbability),
		"width-min":        floatInto(&s.RelativeWidthMin),
		"width-max":        floatInto(&s.RelativeWidthMax),
		"depth-min":        floatInto(&s.RelativeDepthMin),
		"depth-ratio":      floatInto(&s.RelativeDepthWidthRatioMax),
		"thinnest-offset":  floatInto(&s.ThinnestOffset),
		"round":            floatInto(&s.RoundProbability),
		"outer-round":      floatInto(&s.OuterRoundProbability),
		"round-segments":   intInto(&s.RoundSegments),
		"round-offset":     floatInto(&s.RoundOffset),
		"outer-profile":    floatInto(&s.OuterRoundProfile),
		"inner-profile":    floatInto(&s.InnerRoundProfile),
		"rectangle":        floatInto(&s.RectangleProbability),
		"ratio-diff":       floatInto(&s.MaximumRatioDifference),
		"vertical":         floatInto(&s.VerticalShapeProbability),
		"circle-edges-min": intInto(&s.MinCircleEdges),
		"circle-edges-max": intInto(&s.MaxCircleEdges),
		"circle-radius":    floatInto(&s.CircleRadius),
		"recursion":        intInto(&s.RecursionDepth),
		"symmetry":         boolInto(&s.Symmetry),
		"merge-distance":   floatInto(&s.MergeDistance),
	})

	p := &cfg.Plate
	section(env, "plate", map[string]setter{
		"shape-ratio":    floatInto(&p.ShapeRatio),
		"margin":         floatInto(&p.CuttingShapeMargin),
		"clean-margin":   floatInto(&p.CleanFaceMargin),
		"bevel":          floatInto(&p.BevelOffset),
		"bevel-segments": intInto(&p.BevelSegments),
		"crease":         floatInto(&p.CreaseDepth),
	})

	d := &cfg.Subdivide
	section(env, "subdivide", map[string]setter{
		"min-cuts":       intInto(&d.MinCuts),
		"max-cuts":       intInto(&d.MaxCuts),
		"vertical":       floatInto(&d.VerticalProbability),
		"minimum-length": floatInto(&d.MinimumLength),
		"split-inset":    floatInto(&d.SplitInsetThickness),
	})

	in := &cfg.Inset
	section(env, "inset", map[string]setter{
		"thickness": floatInto(&in.Thickness),
		"depth":     floatInto(&in.Depth),
		"relative":  boolInto(&in.Relative),
		"inward":    floatInto(&in.InwardProbability),
	})

	r := &cfg.Recursion
	section(env, "recursion", map[string]setter{
		"depth":              intInto(&r.Depth),
		"subdivide-over-cut": floatInto(&r.SubdivisionOverCutProbability),
		"inset":              floatInto(&r.InsetProbability),
	})

	b := &cfg.Batch
	section(env, "batch", map[string]setter{
		"seed":      seedInto(&b.Seed),
		"radius":    intInto(&b.Radius),
		"face-size": floatInto(&b.FaceSize),
		"mode":      modeInto(&b.Mode),
	})
}
