package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(dir, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}
}

func TestScanDirListsFontsOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Inter/Inter-Bold.ttf", "Inter/OFL.txt", "Mono.OTF")

	list, err := ScanDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Inter/Inter-Bold.ttf", "Mono.OTF"}, list)

	list, err = ScanDir(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []string{"Inter/Inter-Regular.ttf", "Inter", "Inter/Inter", "Inter/Inter-Regular"}, Candidates("Inter/Inter-Regular.ttf"))
	assert.Equal(t, []string{"Roboto-Mono.ttf", "Roboto", "Roboto-Mono"}, Candidates("Roboto-Mono.ttf"))
	assert.Equal(t, []string{"Fira"}, Candidates(" Fira "))
}

func TestFindPrefersRegular(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Open_Sans/OpenSans-Bold.ttf", "Open_Sans/OpenSans-Regular.ttf", "Inter/Inter-Bold.ttf")

	got, err := Find([]string{dir}, "Open Sans")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Open_Sans", "OpenSans-Regular.ttf"), got)

	got, err = Find([]string{dir}, "Inter-Light.ttf")
	require.NoError(t, err, "falls back to the family name")
	assert.Equal(t, filepath.Join(dir, "Inter", "Inter-Bold.ttf"), got)

	_, err = Find([]string{dir}, "Comic")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = Find([]string{dir}, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindAcceptsPath(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "x.ttf")
	p := filepath.Join(dir, "x.ttf")
	got, err := Find(nil, p)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}
