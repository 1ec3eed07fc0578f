package main

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mycad/internal/app"
	"mycad/internal/editorconfig"
	"mycad/internal/graphics"
	"mycad/internal/logger"
	"mycad/internal/overlay"
	"mycad/internal/terminal"
	"mycad/internal/ui"
	"mycad/internal/viewer"
)

type options struct {
	config string
	open   string
	log    string
	debug  bool
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "mycad: .env: %v\n", err)
	}
	opts := options{
		config: editorconfig.DefaultPath,
		log:    os.Getenv("MYCAD_LOG"),
		debug:  os.Getenv("MYCAD_DEBUG") == "1",
	}
	root := &cobra.Command{
		Use:           "mycad",
		Short:         "Interactive 3D solid modeling editor",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}
	f := root.Flags()
	f.StringVar(&opts.config, "config", opts.config, "editor config file (JSON, hot-reloaded)")
	f.StringVar(&opts.open, "open", "", "document to open at startup")
	f.StringVar(&opts.log, "log", opts.log, "append log lines to this file (default $MYCAD_LOG)")
	f.BoolVar(&opts.debug, "debug", opts.debug, "log debug lines (default $MYCAD_DEBUG=1)")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mycad: %v\n", err)
		os.Exit(1)
	}
}

func loadSheet(log *logger.Logger, path string) *ui.Stylesheet {
	if path == "" {
		return ui.DefaultSheet()
	}
	sheet, err := ui.LoadCSS(path)
	if err != nil {
		log.Warnf("stylesheet: %v", err)
	}
	return sheet
}

func run(opts options) error {
	log := logger.New(opts.log)
	log.SetDebug(opts.debug)

	ed := app.New(log, app.Options{ConfigPath: opts.config, Watch: true})
	defer ed.Close()
	prefs := ed.Prefs()

	vw := viewer.New(prefs.WindowWidth, prefs.WindowHeight, prefs, log)
	ed.Attach(vw, vw)

	term := terminal.New(log, ed.Commands)
	ov := overlay.New(log, ed.Doc, ed.Sel, loadSheet(log, prefs.Stylesheet))
	ov.ShowFPS, ov.ShowMemAlloc = prefs.ShowFPS, prefs.ShowMemAlloc

	in := viewer.NewInput(ed.Ctl)
	in.Blocked = func() bool { return term.IsOpen() || ov.Blocked() }
	in.OnMenu = ov.OpenMenu

	loadFont := func(name string) {
		if err := ov.LoadFont(name); err != nil {
			log.Warnf("%v", err)
		}
		term.SetFont(ov.Font())
	}
	ed.OnPrefs(func(p editorconfig.Prefs) {
		vw.Apply(p)
		ov.ShowFPS, ov.ShowMemAlloc = p.ShowFPS, p.ShowMemAlloc
		ov.SetStylesheet(loadSheet(log, p.Stylesheet))
		if p.Font != prefs.Font {
			loadFont(p.Font)
		}
		prefs = p
	})

	win := graphics.Window{
		Title:      "MyCad",
		Width:      prefs.WindowWidth,
		Height:     prefs.WindowHeight,
		Background: func() color.RGBA { return vw.Palette().Background },
		OnInit: func() {
			loadFont(prefs.Font)
			log.Infof("mycad ready: ESC opens the terminal, type help for commands")
			if opts.open != "" {
				term.Submit("open " + opts.open)
			}
		},
		OnResize: vw.Resize,
		OnClose: func() {
			ov.Unload()
			vw.Unload()
		},
	}
	update := func() {
		now := time.Now()
		if !ov.Update() {
			term.Update()
		}
		in.Update(now)
		ed.Tick(now)
	}
	draw := func() {
		vw.Draw()
		in.DrawBand(vw.Palette().Highlight)
		bottom := 0
		if term.IsOpen() {
			bottom = terminal.BarHeight
		}
		ov.Draw(bottom)
		term.Draw()
	}
	graphics.Run(win, update, draw)
	return nil
}
