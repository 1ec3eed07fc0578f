package app

import (
	"errors"
	"flag"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"mycad/internal/camera"
	"mycad/internal/commands"
	"mycad/internal/edit"
	"mycad/internal/geom"
	"mycad/internal/render"
	"mycad/internal/selection"
	"mycad/internal/viewport"
)

// float32Value is a flag.Value for float32 dimensions.
type float32Value struct{ p *float32 }

func (v float32Value) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.FormatFloat(float64(*v.p), 'g', -1, 32)
}

func (v float32Value) Set(s string) error {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return err
	}
	*v.p = float32(f)
	return nil
}

func float32Flag(fs *flag.FlagSet, name string, value float32, usage string) *float32 {
	p := new(float32)
	*p = value
	fs.Var(float32Value{p}, name, usage)
	return p
}

// vecFlags defines <prefix>x, <prefix>y and <prefix>z and returns a getter for the vector.
func vecFlags(fs *flag.FlagSet, prefix string, def geom.Vec3, usage string) func() geom.Vec3 {
	x := float32Flag(fs, prefix+"x", def.X, usage+" X")
	y := float32Flag(fs, prefix+"y", def.Y, usage+" Y")
	z := float32Flag(fs, prefix+"z", def.Z, usage+" Z")
	return func() geom.Vec3 { return geom.V(*x, *y, *z) }
}

func (e *Editor) registerCommands() {
	e.registerPrimitives()
	e.registerBooleans()
	e.registerTransforms()
	e.registerSelection()
	e.registerFiles()
	e.registerView()
	e.registerDisplay()

	r := e.Commands
	r.Register("help", "list commands, or show one command's flags: help [command]", commands.NewFlagSet("help"), func() error {
		if args := e.args("help"); len(args) > 0 {
			if _, ok := r.Lookup(args[0]); !ok {
				return fmt.Errorf("help: unknown command %q", args[0])
			}
			e.logLines(r.Help(args[0]))
			return nil
		}
		for _, n := range r.Names() {
			c, _ := r.Lookup(n)
			e.Log.Infof("  %-16s %s", n, c.Summary)
		}
		return nil
	})
}

// args returns the positional arguments left after flag parsing of command name.
func (e *Editor) args(name string) []string {
	c, ok := e.Commands.Lookup(name)
	if !ok {
		return nil
	}
	return c.FlagSet.Args()
}

func (e *Editor) logLines(text string) {
	for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		e.Log.Infof("%s", l)
	}
}

func (e *Editor) registerPrimitives() {
	r := e.Commands

	box := e.defaults.Get(geom.Box)
	fs := commands.NewFlagSet("box")
	dx := float32Flag(fs, "dx", box.Params.DX, "size along X")
	dy := float32Flag(fs, "dy", box.Params.DY, "size along Y")
	dz := float32Flag(fs, "dz", box.Params.DZ, "size along Z")
	boxName := fs.String("name", box.Name, "entry name")
	r.Register("box", "insert a box with one corner at the origin", fs, func() error {
		_, err := e.Edit.Primitive(geom.Box, geom.PrimitiveParams{DX: *dx, DY: *dy, DZ: *dz}, *boxName)
		return err
	})

	cyl := e.defaults.Get(geom.Cylinder)
	fs = commands.NewFlagSet("cylinder")
	cr := float32Flag(fs, "r", cyl.Params.Radius, "radius")
	ch := float32Flag(fs, "h", cyl.Params.Height, "height along Z")
	cylName := fs.String("name", cyl.Name, "entry name")
	r.Register("cylinder", "insert a Z-axis cylinder standing on the origin", fs, func() error {
		_, err := e.Edit.Primitive(geom.Cylinder, geom.PrimitiveParams{Radius: *cr, Height: *ch}, *cylName)
		return err
	})

	sph := e.defaults.Get(geom.Sphere)
	fs = commands.NewFlagSet("sphere")
	sr := float32Flag(fs, "r", sph.Params.Radius, "radius")
	sphName := fs.String("name", sph.Name, "entry name")
	r.Register("sphere", "insert a sphere centered on the origin", fs, func() error {
		_, err := e.Edit.Primitive(geom.Sphere, geom.PrimitiveParams{Radius: *sr}, *sphName)
		return err
	})

	cone := e.defaults.Get(geom.Cone)
	fs = commands.NewFlagSet("cone")
	r1 := float32Flag(fs, "r1", cone.Params.Radius, "base radius")
	r2 := float32Flag(fs, "r2", cone.Params.Radius2, "top radius")
	coneH := float32Flag(fs, "h", cone.Params.Height, "height along Z")
	coneName := fs.String("name", cone.Name, "entry name")
	r.Register("cone", "insert a Z-axis cone standing on the origin", fs, func() error {
		_, err := e.Edit.Primitive(geom.Cone, geom.PrimitiveParams{Radius: *r1, Radius2: *r2, Height: *coneH}, *coneName)
		return err
	})
}

func (e *Editor) registerBooleans() {
	summaries := map[geom.BooleanOp]string{
		geom.Union:     "fuse the selected objects into one",
		geom.Cut:       "subtract the other selected objects from the first",
		geom.Intersect: "keep the volume common to all selected objects",
	}
	for _, op := range []geom.BooleanOp{geom.Union, geom.Cut, geom.Intersect} {
		name := strings.ToLower(op.String())
		e.Commands.Register(name, summaries[op], commands.NewFlagSet(name), func() error {
			_, err := e.Edit.Boolean(op, e.Sel.SelectedShapes(), e.Sel.SelectedObjects())
			return err
		})
	}
}

func (e *Editor) registerTransforms() {
	r := e.Commands

	fs := commands.NewFlagSet("translate")
	offset := vecFlags(fs, "d", geom.Vec3{}, "offset")
	r.Register("translate", "add moved copies of the selected objects", fs, func() error {
		_, err := e.Edit.Transform(geom.Translate, e.Sel.SelectedShapes(), geom.TransformParams{Offset: offset()})
		return err
	})

	fs = commands.NewFlagSet("rotate")
	angle := float32Flag(fs, "angle", 90, "angle in degrees")
	axis := vecFlags(fs, "a", geom.V(0, 0, 1), "axis direction")
	origin := vecFlags(fs, "o", geom.Vec3{}, "point on the axis")
	r.Register("rotate", "add rotated copies of the selected objects", fs, func() error {
		if axis().IsZero() {
			return fmt.Errorf("rotate: %w: axis is zero", edit.ErrInput)
		}
		p := geom.TransformParams{Origin: origin(), Axis: axis(), Angle: *angle}
		_, err := e.Edit.Transform(geom.Rotate, e.Sel.SelectedShapes(), p)
		return err
	})

	fs = commands.NewFlagSet("mirror")
	normal := vecFlags(fs, "n", geom.V(1, 0, 0), "plane normal")
	mOrigin := vecFlags(fs, "o", geom.Vec3{}, "point on the plane")
	r.Register("mirror", "add mirrored copies of the selected objects", fs, func() error {
		if normal().IsZero() {
			return fmt.Errorf("mirror: %w: normal is zero", edit.ErrInput)
		}
		_, err := e.Edit.Transform(geom.Mirror, e.Sel.SelectedShapes(), geom.TransformParams{Origin: mOrigin(), Axis: normal()})
		return err
	})

	fs = commands.NewFlagSet("array")
	kind := fs.String("kind", "linear", "linear or circular")
	count := fs.Int("n", 3, "number of copies")
	spacing := float32Flag(fs, "spacing", 20, "linear: distance between copies")
	dir := vecFlags(fs, "d", geom.V(1, 0, 0), "linear: direction")
	total := float32Flag(fs, "angle", 360, "circular: total angle in degrees")
	aAxis := vecFlags(fs, "a", geom.V(0, 0, 1), "circular: axis direction")
	aOrigin := vecFlags(fs, "o", geom.Vec3{}, "circular: point on the axis")
	r.Register("array", "add patterned copies of the first selected object", fs, func() error {
		shapes := e.Sel.SelectedShapes()
		var src geom.Shape
		if len(shapes) > 0 {
			src = shapes[0]
		}
		if len(shapes) > 1 {
			e.Log.Warnf("array: using the first of %d selected objects", len(shapes))
		}
		p := geom.ArrayParams{Count: *count}
		var k geom.ArrayKind
		switch *kind {
		case "linear":
			k = geom.Linear
			p.Direction, p.Spacing = dir(), *spacing
			if p.Direction.IsZero() {
				return fmt.Errorf("array: %w: direction is zero", edit.ErrInput)
			}
		case "circular":
			k = geom.Circular
			p.Origin, p.Axis, p.Angle = aOrigin(), aAxis(), *total
			if p.Axis.IsZero() {
				return fmt.Errorf("array: %w: axis is zero", edit.ErrInput)
			}
		default:
			return fmt.Errorf("array: %w: unknown kind %q", edit.ErrInput, *kind)
		}
		_, err := e.Edit.Array(k, src, p)
		return err
	})
}

// targets resolves positional arguments (entry indices or names) to document indices in
// descending order, so they can be removed one by one. With no arguments the selected entries
// are used.
func (e *Editor) targets(op string, args []string) ([]int, error) {
	var out []int
	add := func(i int) {
		if !slices.Contains(out, i) {
			out = append(out, i)
		}
	}
	if len(args) == 0 {
		for _, en := range e.Sel.SelectedEntries() {
			add(en.Index)
		}
	}
	for _, a := range args {
		if i, err := strconv.Atoi(a); err == nil {
			if i < 0 || i >= e.Doc.Len() {
				return nil, fmt.Errorf("%s: %w: no entry %d", op, edit.ErrInput, i)
			}
			add(i)
			continue
		}
		found := false
		for i, n := range e.Doc.Names() {
			if n == a {
				add(i)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: %w: no entry named %q", op, edit.ErrInput, a)
		}
	}
	slices.SortFunc(out, func(a, b int) int { return b - a })
	return out, nil
}

func (e *Editor) registerSelection() {
	r := e.Commands

	r.Register("filter", "set the selection filter: filter none|vertex|edge|wire|face|shell|solid|compound", commands.NewFlagSet("filter"), func() error {
		args := e.args("filter")
		if len(args) == 0 {
			e.Log.Infof("filter: %s", e.Sel.Filter())
			return nil
		}
		f, err := selection.ParseFilter(args[0])
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		e.Sel.SetFilter(f)
		e.Log.Infof("filter: %s", f)
		return nil
	})

	fs := commands.NewFlagSet("select")
	additive := fs.Bool("add", false, "add to the current selection")
	r.Register("select", "select entries by index or name: select [-add] all|<index|name>...", fs, func() error {
		args := e.args("select")
		if len(args) == 0 {
			return fmt.Errorf("select: %w: name an entry or all", edit.ErrInput)
		}
		var hs []render.Handle
		if *additive {
			hs = e.Sel.SelectedObjects()
		}
		if len(args) == 1 && args[0] == "all" {
			hs = append(hs, e.Doc.Displays()...)
		} else {
			idx, err := e.targets("select", args)
			if err != nil {
				return err
			}
			slices.Reverse(idx)
			for _, i := range idx {
				hs = append(hs, e.Doc.Display(i))
			}
		}
		var uniq []render.Handle
		for _, h := range hs {
			if h != render.NoHandle && !slices.Contains(uniq, h) {
				uniq = append(uniq, h)
			}
		}
		e.Sel.SelectHandles(uniq)
		e.Log.Infof("selected %d object(s)", len(e.Sel.SelectedEntries()))
		return nil
	})

	r.Register("clear-selection", "deselect everything", commands.NewFlagSet("clear-selection"), func() error {
		e.Sel.ClearSelection()
		return nil
	})

	r.Register("remove", "remove entries by index or name, or the selection: remove [<index|name>...]", commands.NewFlagSet("remove"), func() error {
		idx, err := e.targets("remove", e.args("remove"))
		if err != nil {
			return err
		}
		if len(idx) == 0 {
			return fmt.Errorf("remove: %w: nothing selected", edit.ErrInput)
		}
		e.Doc.Batch(func() {
			for _, i := range idx {
				e.Doc.RemoveAt(i)
			}
		})
		e.Log.Infof("removed %d object(s)", len(idx))
		return nil
	})

	r.Register("list", "list document entries", commands.NewFlagSet("list"), func() error {
		selected := make(map[int]bool)
		for _, en := range e.Sel.SelectedEntries() {
			selected[en.Index] = true
		}
		e.Log.Infof("%d object(s), filter %s", e.Doc.Len(), e.Sel.Filter())
		for i, n := range e.Doc.Names() {
			mark := ""
			if selected[i] {
				mark = " *"
			}
			e.Log.Infof("  [%d] %s%s", i, n, mark)
		}
		return nil
	})
}

func (e *Editor) registerFiles() {
	r := e.Commands
	var current string

	r.Register("save", "save the document: save [path] (default: the last saved or opened path)", commands.NewFlagSet("save"), func() error {
		p := current
		if args := e.args("save"); len(args) > 0 {
			p = withExt(args[0])
		}
		if p == "" {
			return fmt.Errorf("save: %w: no path given", edit.ErrInput)
		}
		name, err := e.resolve(p)
		if err != nil {
			return fmt.Errorf("save %s: %w", p, err)
		}
		if err := e.Doc.Save(e.files, name, e.codec); err != nil {
			return err
		}
		current = p
		return nil
	})

	r.Register("open", "replace the document with a saved file: open <path>", commands.NewFlagSet("open"), func() error {
		args := e.args("open")
		if len(args) == 0 {
			return fmt.Errorf("open: %w: no path given", edit.ErrInput)
		}
		p := withExt(args[0])
		name, err := e.resolve(p)
		if err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
		if err := e.Doc.Load(e.files, name, e.codec); err != nil {
			return err
		}
		current = p
		e.fit()
		return nil
	})

	r.Register("new", "start an empty document", commands.NewFlagSet("new"), func() error {
		e.Doc.Clear()
		current = ""
		e.Log.Infof("new document")
		return nil
	})
}

func (e *Editor) registerView() {
	r := e.Commands
	r.Register("fit", "fit all objects in the view", commands.NewFlagSet("fit"), func() error {
		e.fit()
		return nil
	})
	r.Register("view", "orient the camera: view iso|top|bottom|front|back|left|right", commands.NewFlagSet("view"), func() error {
		args := e.args("view")
		if len(args) == 0 {
			return fmt.Errorf("view: %w: name a preset", edit.ErrInput)
		}
		p, err := camera.ParsePreset(args[0])
		if err != nil {
			return fmt.Errorf("view: %w", err)
		}
		pv, ok := e.view.(Presets)
		if !ok {
			return errors.New("view: no 3D view attached")
		}
		pv.SetPreset(p)
		return nil
	})
}

// menuAction runs a on a menu built from the current selection, the same path the context
// menu takes.
func (e *Editor) menuAction(a viewport.Action, arg string) (string, error) {
	m, ok := viewport.SelectionMenu(e.Doc, e.Sel, e.Geo, e.Log)
	if !ok {
		return "", fmt.Errorf("%s: %w: the document is empty", a, edit.ErrInput)
	}
	if !m.Offers(a) {
		return "", fmt.Errorf("%s: %w: select objects first", a, edit.ErrInput)
	}
	return m.Run(a, arg)
}

func (e *Editor) registerDisplay() {
	r := e.Commands
	withArg := func(name, summary, usage string, a viewport.Action) {
		r.Register(name, summary, commands.NewFlagSet(name), func() error {
			args := e.args(name)
			if len(args) == 0 {
				return fmt.Errorf("%s: %w: %s", name, edit.ErrInput, usage)
			}
			_, err := e.menuAction(a, args[0])
			return err
		})
	}
	withArg("color", "color the selected objects: color #rrggbb", "want #rrggbb", viewport.SetColor)
	withArg("transparency", "set the selected objects' transparency: transparency 0..1|cancel", "want a value in [0, 1] or cancel", viewport.SetTransparency)

	plain := func(name, summary string, a viewport.Action) {
		r.Register(name, summary, commands.NewFlagSet(name), func() error {
			_, err := e.menuAction(a, "")
			return err
		})
	}
	plain("hide", "hide the selected objects", viewport.Hide)
	plain("show-all", "show every object", viewport.ShowAll)
	plain("hide-all", "hide every object", viewport.HideAll)

	r.Register("inspect", "report type, volume, bounds, centroid and sub-shape counts of the selection", commands.NewFlagSet("inspect"), func() error {
		report, err := e.menuAction(viewport.Inspect, "")
		if err != nil {
			return err
		}
		e.logLines(report)
		return nil
	})
}
