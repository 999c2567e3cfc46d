package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/stager/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: place-at -> place_at
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
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

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpShape wraps a primitive payload so it can be returned from `box` or
// `cylinder` and consumed by `defpart`.
type sexpShape struct {
	data graph.NodeData
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	switch d := s.data.(type) {
	case graph.BoxData:
		return fmt.Sprintf("(box %gx%gx%g)", d.Size.X, d.Size.Y, d.Size.Z)
	case graph.CylinderData:
		return fmt.Sprintf("(cylinder h=%g r=%g)", d.Height, d.Radius)
	}
	return "(shape)"
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean. nil and an empty list are false.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return false, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return graph.ZeroID, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// kwFloat reads an optional numeric keyword into dst.
func kwFloat(pa kwArgs, fn, key string, dst *float64) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	*dst = f
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder carries per-evaluation state for the builtins. Anonymous node IDs
// are numbered per evaluation so the same script always yields the same
// graph.
type builder struct {
	g    *graph.SceneGraph
	anon map[string]int
}

func (b *builder) nextID(prefix string) graph.NodeID {
	if b.anon == nil {
		b.anon = make(map[string]int)
	}
	b.anon[prefix]++
	return graph.NewNodeID(fmt.Sprintf("%s/%d", prefix, b.anon[prefix]))
}

// registerBuiltins installs the scene-script builtins into a zygomys
// environment. The builtins populate g during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.SceneGraph) {
	b := &builder{g: g}

	// -----------------------------------------------------------------------
	// (box :x 0.4 :y 0.1 :z 1.2)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		bd := graph.BoxData{PrimKind: graph.PrimBox}
		for key, dst := range map[string]*float64{"x": &bd.Size.X, "y": &bd.Size.Y, "z": &bd.Size.Z} {
			if err := kwFloat(pa, "box", key, dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		return &sexpShape{data: bd}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 3 :radius 0.1)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cd := graph.CylinderData{PrimKind: graph.PrimCylinder}
		if err := kwFloat(pa, "cylinder", "height", &cd.Height); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwFloat(pa, "cylinder", "radius", &cd.Radius); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{data: cd}, nil
	})

	// -----------------------------------------------------------------------
	// (color "#ff8800") or (color 255 136 0)
	// -----------------------------------------------------------------------
	env.AddFunction("color", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		switch len(args) {
		case 1:
			s, err := toString(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("color: %w", err)
			}
			if !graph.ValidColor(s) {
				return zygo.SexpNull, fmt.Errorf("color: %q is not #rgb or #rrggbb", s)
			}
			return &zygo.SexpStr{S: s}, nil
		case 3:
			var rgb [3]int
			for i, a := range args {
				f, err := toFloat64(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("color: channel %d: %w", i, err)
				}
				if f < 0 || f > 255 {
					return zygo.SexpNull, fmt.Errorf("color: channel %d out of range: %g", i, f)
				}
				rgb[i] = int(f)
			}
			return &zygo.SexpStr{S: fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])}, nil
		}
		return zygo.SexpNull, fmt.Errorf("color requires a hex string or 3 channels, got %d arguments", len(args))
	})

	// -----------------------------------------------------------------------
	// (defpart "name" (box ...) :color "#555555" :visible false)
	// -----------------------------------------------------------------------
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a body expression")
		}

		partName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}
		if g.Lookup(partName) != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: part %q already defined", partName)
		}

		shape, ok := pa.positional[1].(*sexpShape)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defpart: expected box or cylinder expression, got %T", pa.positional[1])
		}

		var app graph.Appearance
		if v, ok := pa.kw["color"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defpart: color: %w", err)
			}
			app.Color = s
		}
		if v, ok := pa.kw["visible"]; ok {
			visible, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defpart: visible: %w", err)
			}
			app.Hidden = !visible
		}

		var nodeData graph.NodeData
		switch d := shape.data.(type) {
		case graph.BoxData:
			d.Appearance = app
			nodeData = d
		case graph.CylinderData:
			d.Appearance = app
			nodeData = d
		}

		id := graph.NewNodeID("defpart/" + partName)
		g.AddNode(&graph.Node{
			ID:   id,
			Kind: graph.NodePrimitive,
			Name: partName,
			Data: nodeData,
		})

		return &sexpNodeRef{id: id, name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}

		n := g.Lookup(partName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}

		return &sexpNodeRef{id: n.ID, name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: graph.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (place (part "panel") :at (vec3 0 0 2.2) :rotate (vec3 0 0 45))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a part reference as first argument")
		}

		childID, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: part: %w", err)
		}

		td := graph.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			td.Translation = &vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			td.Rotation = &vec
		}

		// Placements of the same part are numbered in script order.
		prefix := "place"
		if child := g.Get(childID); child != nil && child.Name != "" {
			prefix = "place/" + child.Name
		}
		id := b.nextID(prefix)

		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeTransform,
			Children: []graph.NodeID{childID},
			Data:     td,
		})

		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (model "name" (place ...) (place ...) ... :description "...")
	// -----------------------------------------------------------------------
	env.AddFunction("model", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("model requires a name argument")
		}

		modelName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("model: name: %w", err)
		}

		var gd graph.GroupData
		if v, ok := pa.kw["description"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("model: description: %w", err)
			}
			gd.Description = s
		}

		var children []graph.NodeID
		for i, arg := range pa.positional[1:] {
			ref, ok := arg.(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("model: child %d: expected node reference, got %T (%s)",
					i+1, arg, arg.SexpString(nil))
			}
			children = append(children, ref.id)
		}

		id := graph.NewNodeID("model/" + modelName)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeGroup,
			Name:     modelName,
			Children: children,
			Data:     gd,
		})
		g.AddRoot(id)

		return &sexpNodeRef{id: id, name: modelName}, nil
	})
}
