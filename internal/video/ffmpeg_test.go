package video

import (
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFrame(t *testing.T, dir, name string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, img, nil))
	require.NoError(t, f.Close())
}

func TestFrameDirSource(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "frame_000002.jpg", color.Black)
	writeFrame(t, dir, "frame_000001.jpg", color.White)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	src, err := openFrameDir(dir)
	require.NoError(t, err)
	require.Equal(t, 2, src.TotalFrames())
	require.Equal(t, 0, src.FrameIndex())

	// Frames come back in name order regardless of directory order.
	first, err := src.NextFrame()
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 8, 8), first.Bounds())
	require.Equal(t, 1, src.FrameIndex())

	_, err = src.NextFrame()
	require.NoError(t, err)
	require.Equal(t, 2, src.FrameIndex())

	_, err = src.NextFrame()
	require.ErrorIs(t, err, io.EOF)

	require.NoError(t, src.Close())
	_, err = os.Stat(dir)
	require.True(t, os.IsNotExist(err), "Close must remove the scratch directory")
}

func TestOpenFrameDirEmpty(t *testing.T) {
	_, err := openFrameDir(t.TempDir())
	require.Error(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mp4"))
	require.ErrorIs(t, err, ErrOpen)
}

func TestOpenDirectory(t *testing.T) {
	_, err := Open(t.TempDir())
	require.ErrorIs(t, err, ErrOpen)
}
