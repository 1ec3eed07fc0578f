// Package app is the editor shell. It owns the document, the selection, the geometry kernel
// and the edit pipeline, registers the terminal commands, and runs the per-frame tick that
// drains deferred actions and config reloads. It knows nothing about raylib; the render engine
// and view are attached by the caller.
package app

import (
	"time"

	"github.com/hack-pad/hackpadfs"

	"mycad/internal/camera"
	"mycad/internal/commands"
	"mycad/internal/csg"
	"mycad/internal/document"
	"mycad/internal/edit"
	"mycad/internal/editorconfig"
	"mycad/internal/geom"
	"mycad/internal/logger"
	"mycad/internal/primitives"
	"mycad/internal/render"
	"mycad/internal/schedule"
	"mycad/internal/selection"
	"mycad/internal/viewport"
)

// fitDelay is how long after a primitive insert the view fits, so the new shape is
// displayed before the camera moves.
const fitDelay = 100 * time.Millisecond

// Presets is implemented by views that can jump to a standard camera orientation.
type Presets interface {
	SetPreset(p camera.Preset)
}

// Options configures New. Zero values pick the defaults noted on each field.
type Options struct {
	// ConfigPath is the editor config file; "" means editorconfig.DefaultPath.
	ConfigPath string
	// DefaultsPath is the primitive defaults file; "" means primitives.DefaultsPath.
	DefaultsPath string
	// Watch hot-reloads the config file.
	Watch bool
	// Files is where save and open read and write; nil means the OS filesystem.
	Files hackpadfs.FS
	// Resolve maps a user path to a name on Files; nil means CleanName.
	Resolve func(path string) (string, error)
}

// Editor is the composed application.
type Editor struct {
	Log      *logger.Logger
	Doc      *document.Document
	Sel      *selection.Controller
	Geo      *csg.Kernel
	Edit     *edit.Pipeline
	Queue    *schedule.Queue
	Commands *commands.Registry
	// Ctl is the viewport controller; nil until Attach.
	Ctl *viewport.Controller

	prefs      editorconfig.Prefs
	configPath string
	defaults   primitives.Defaults
	codec      csg.Codec
	files      hackpadfs.FS
	resolve    func(string) (string, error)
	view       render.View
	watcher    *editorconfig.Watcher
	onPrefs    []func(editorconfig.Prefs)
}

// New builds an editor with no render engine attached. Problems reading the config or the
// primitive defaults are logged and the built-in values are used.
func New(log *logger.Logger, opts Options) *Editor {
	if opts.ConfigPath == "" {
		opts.ConfigPath = editorconfig.DefaultPath
	}
	if opts.DefaultsPath == "" {
		opts.DefaultsPath = primitives.DefaultsPath
	}
	prefs, err := editorconfig.Load(opts.ConfigPath)
	if err != nil {
		log.Warnf("%v", err)
	}
	defaults, err := primitives.LoadDefaults(opts.DefaultsPath)
	if err != nil {
		log.Warnf("primitive defaults: %v", err)
	}

	e := &Editor{
		Log:        log,
		Doc:        document.New(log),
		Sel:        selection.New(log),
		Geo:        csg.New(),
		Queue:      schedule.New(),
		Commands:   commands.NewRegistry(),
		prefs:      prefs,
		configPath: opts.ConfigPath,
		defaults:   defaults,
		files:      opts.Files,
		resolve:    opts.Resolve,
	}
	if e.files == nil {
		e.files, e.resolve = OSFiles()
	}
	if e.resolve == nil {
		e.resolve = CleanName
	}
	e.Sel.Bind(e.Doc)
	e.Edit = edit.New(e.Doc, e.Geo, log)
	e.Edit.OnCompleted(e.afterEdit)
	e.registerCommands()

	if opts.Watch {
		w, err := editorconfig.Watch(opts.ConfigPath, log)
		if err != nil {
			log.Warnf("config watch %s: %v", opts.ConfigPath, err)
		} else {
			e.watcher = w
		}
	}
	return e
}

// Attach binds the render engine and view and builds the viewport controller. The startup
// selection filter from the config is applied once the engine is bound.
func (e *Editor) Attach(eng render.Engine, view render.View) {
	e.view = view
	e.Doc.Bind(eng)
	// Entries added before the engine existed get their selection mode now.
	e.Sel.SetFilter(e.Sel.Filter())
	e.Ctl = viewport.New(e.Doc, e.Sel, view, e.Geo, e.Log)
	e.applyFilter(e.prefs.Filter)
}

// Prefs returns the preferences in effect.
func (e *Editor) Prefs() editorconfig.Prefs { return e.prefs }

// OnPrefs registers fn to receive reloaded preferences.
func (e *Editor) OnPrefs(fn func(editorconfig.Prefs)) {
	e.onPrefs = append(e.onPrefs, fn)
}

// ApplyPrefs makes p the preferences in effect and notifies OnPrefs observers.
func (e *Editor) ApplyPrefs(p editorconfig.Prefs) {
	e.prefs = p
	e.applyFilter(p.Filter)
	for _, fn := range e.onPrefs {
		fn(p)
	}
}

func (e *Editor) applyFilter(name string) {
	if name == "" {
		return
	}
	f, err := selection.ParseFilter(name)
	if err != nil {
		e.Log.Warnf("config filter: %v", err)
		return
	}
	if f != e.Sel.Filter() {
		e.Sel.SetFilter(f)
	}
}

// Tick runs deferred actions that are due and applies a pending config reload. Call once per
// frame on the interaction thread.
func (e *Editor) Tick(now time.Time) {
	e.Queue.Run(now)
	if e.watcher == nil {
		return
	}
	if p, ok := e.watcher.Poll(); ok {
		e.Log.Infof("config reloaded from %s", e.configPath)
		e.ApplyPrefs(p)
	}
}

// Close stops the config watcher.
func (e *Editor) Close() error {
	if e.watcher == nil {
		return nil
	}
	return e.watcher.Close()
}

func (e *Editor) fit() {
	if e.view != nil {
		e.view.FitAll()
	}
}

// afterEdit follows up committed edits: a new primitive is framed shortly after it appears,
// and a boolean result replaces its operands, so the stale selection is dropped and the view
// refit.
func (e *Editor) afterEdit(c edit.Completed) {
	if _, err := geom.ParsePrimitive(c.Op); err == nil && len(c.Added) == 1 {
		h := e.Doc.Display(c.Added[0])
		if h == render.NoHandle {
			return
		}
		e.Queue.After(fitDelay, func() bool {
			_, ok := e.Doc.FindIndex(h)
			return ok
		}, e.fit)
		return
	}
	switch c.Op {
	case geom.Union.String(), geom.Cut.String(), geom.Intersect.String():
		e.Sel.ClearSelection()
		e.fit()
	}
}
