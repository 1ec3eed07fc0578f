package editorconfig

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycad/internal/logger"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "editor.json")
	want := Default()
	want.ShowFPS = true
	want.GridSize = 40
	want.Selection = "#00ff00"
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"show_fps": true}`), 0644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.True(t, p.ShowFPS)
	assert.Equal(t, Default().WindowWidth, p.WindowWidth)

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))
	p, err = Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), p)
}

func TestPaletteFallsBackPerField(t *testing.T) {
	p := Default()
	p.Highlight = "blue"
	p.Selection = "#ff0000"

	pal, err := p.Palette()
	assert.Error(t, err)
	def, _ := Default().Palette()
	assert.Equal(t, def.Highlight, pal.Highlight)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, pal.Selection)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.json")
	require.NoError(t, Save(path, Default()))

	w, err := Watch(path, logger.New(""))
	require.NoError(t, err)
	defer w.Close()

	_, ok := w.Poll()
	assert.False(t, ok)

	next := Default()
	next.GridVisible = false
	require.NoError(t, Save(path, next))

	var got Prefs
	require.Eventually(t, func() bool {
		p, ok := w.Poll()
		if ok {
			got = p
		}
		return ok && !got.GridVisible
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, next, got)
}
