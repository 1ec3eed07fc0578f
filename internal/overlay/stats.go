package overlay

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// updateInterval: FPS and memory text are refreshed every N frames to limit allocations.
const updateInterval = 30

// Stats draws the frame rate and heap size in the top-right corner. Both are off by default.
type Stats struct {
	ShowFPS      bool
	ShowMemAlloc bool
	frameCount   uint32
	fpsText      string
	memText      string
	memStats     runtime.MemStats
}

func (s *Stats) draw(o *Overlay) {
	if !s.ShowFPS && !s.ShowMemAlloc {
		return
	}
	s.frameCount++
	update := s.frameCount%updateInterval == 0
	if (s.ShowFPS && s.fpsText == "") || (s.ShowMemAlloc && s.memText == "") {
		update = true
	}
	if update {
		s.fpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		runtime.ReadMemStats(&s.memStats)
		s.memText = fmt.Sprintf("Mem: %.2f MiB", float64(s.memStats.Alloc)/(1024*1024))
	}

	st := o.style("stats")
	screenW := int(rl.GetScreenWidth())
	y := st.Padding
	line := func(text string) {
		x := screenW - o.measure(text, st.FontSize) - st.Padding
		o.text(text, x, y, st.FontSize, st.Color)
		y += st.FontSize + 4
	}
	if s.ShowFPS {
		line(s.fpsText)
	}
	if s.ShowMemAlloc {
		line(s.memText)
	}
}
