package snapshot

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/colornames"

	"github.com/Faultbox/hullgate/internal/camera"
	"github.com/Faultbox/hullgate/internal/portal"
	"github.com/Faultbox/hullgate/internal/scene"
	"github.com/Faultbox/hullgate/pkg/geometry"
)

func sameColor(t *testing.T, want, got color.Color) {
	t.Helper()
	wr, wg, wb, wa := want.RGBA()
	gr, gg, gb, ga := got.RGBA()
	// Allow a couple of 8-bit steps for anti-aliasing along shared edges.
	const tol = 2 * 0x101
	w := [4]uint32{wr, wg, wb, wa}
	g := [4]uint32{gr, gg, gb, ga}
	for i := range w {
		assert.InDeltaf(t, w[i], g[i], tol, "channel %d: want %v, got %v", i, w, g)
	}
}

func TestRasterizeDemo(t *testing.T) {
	const w, h = 200, 150
	frame := portal.NewFrame(portal.DefaultFrameCapacity)
	_, err := portal.NewRenderer(portal.DefaultOptions()).Render(scene.DemoScene(), camera.Default(), w, h, frame)
	require.NoError(t, err)

	img := Rasterize(frame, w, h, nil)
	require.Equal(t, image.Rect(0, 0, w, h), img.Bounds())

	// Room B's far wall sits in the middle of the view.
	sameColor(t, ToColor(scene.ColorFarWallB), img.At(w/2, h/2))
	// The rooms are closed, so nothing of the background shows.
	assert.Greater(t, Coverage(img, DefaultBackground), 0.99)
}

func TestRasterizeEmptyFrame(t *testing.T) {
	img := Rasterize(portal.NewFrame(16), 8, 8, colornames.Blue)
	assert.Zero(t, Coverage(img, colornames.Blue))
	sameColor(t, colornames.Blue, img.At(3, 3))
}

func TestRasterizeSingleFan(t *testing.T) {
	frame := portal.NewFrame(16)
	square := geometry.NewConvexPolygon(
		geometry.Point2{X: 2, Y: 2}, geometry.Point2{X: 8, Y: 2},
		geometry.Point2{X: 8, Y: 8}, geometry.Point2{X: 2, Y: 8},
	)
	require.NoError(t, frame.AddFan(&square, scene.RGB(1, 0, 0), portal.Draw{Instance: "A"}))

	img := Rasterize(frame, 10, 10, nil)
	sameColor(t, color.NRGBA{R: 255, A: 255}, img.At(5, 5))
	sameColor(t, DefaultBackground, img.At(0, 0))
	assert.InDelta(t, 0.36, Coverage(img, DefaultBackground), 0.02)
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("shot.PNG")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)

	f, err = FormatOf("out/frame.bmp")
	require.NoError(t, err)
	assert.Equal(t, BMP, f)

	_, err = FormatOf("frame.gif")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorIs(t, Encode(&bytes.Buffer{}, image.NewRGBA(image.Rect(0, 0, 1, 1)), "gif"), ErrUnsupportedFormat)
}

func TestWriteFileBMP(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	path := filepath.Join(t.TempDir(), "frame.bmp")
	require.NoError(t, WriteFile(path, src))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := bmp.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), got.Bounds())
	sameColor(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, got.At(1, 2))
}

func TestFlipPixels(t *testing.T) {
	// Two rows, bottom row red, top row green.
	pixels := []byte{
		255, 0, 0, 255,
		0, 255, 0, 255,
	}
	img, err := FlipPixels(pixels, 1, 2)
	require.NoError(t, err)
	sameColor(t, color.RGBA{G: 255, A: 255}, img.At(0, 0))
	sameColor(t, color.RGBA{R: 255, A: 255}, img.At(0, 1))

	_, err = FlipPixels(pixels, 2, 2)
	assert.Error(t, err)
}

func TestCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	c := NewCapture(dir, "hullview", "")
	c.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	want := filepath.Join(dir, "hullview_2026-03-04_05-06-07.png")
	assert.Equal(t, want, c.Filename())

	name, err := c.FromPixels(make([]byte, 2*2*4), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, want, name)
	assert.FileExists(t, name)
}

func TestThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 300))
	thumb := Thumbnail(src, 100)
	assert.Equal(t, image.Rect(0, 0, 100, 75), thumb.Bounds())

	assert.Same(t, src, Thumbnail(src, 800).(*image.RGBA))
}
