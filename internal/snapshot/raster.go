// Package snapshot turns traversal frames into images without a GPU and
// saves them, along with GL read-backs, as PNG or BMP files.
package snapshot

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/colornames"
	"golang.org/x/image/vector"

	"github.com/Faultbox/hullgate/internal/portal"
	"github.com/Faultbox/hullgate/internal/scene"
)

// DefaultBackground fills pixels no hull side covers.
var DefaultBackground color.Color = colornames.Black

// Rasterize paints the triangles of f into a new width×height image over
// bg. Each draw is filled as one anti-aliased path so the fan triangles of
// a side leave no seams.
func Rasterize(f *portal.Frame, width, height int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if bg == nil {
		bg = DefaultBackground
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	z := vector.NewRasterizer(width, height)
	for _, d := range f.Draws {
		if d.IndexCount < 3 {
			continue
		}
		z.Reset(width, height)
		tris := f.Indices[d.FirstIndex : d.FirstIndex+d.IndexCount]
		for i := 0; i+2 < len(tris); i += 3 {
			a := f.Vertices[tris[i]].Pos
			b := f.Vertices[tris[i+1]].Pos
			c := f.Vertices[tris[i+2]].Pos
			z.MoveTo(a[0], a[1])
			z.LineTo(b[0], b[1])
			z.LineTo(c[0], c[1])
			z.ClosePath()
		}
		col := f.Vertices[tris[0]].Color
		z.Draw(img, img.Bounds(), image.NewUniform(toNRGBA(col)), image.Point{})
	}
	return img
}

// Coverage returns the fraction of pixels in img that differ from bg.
func Coverage(img *image.RGBA, bg color.Color) float64 {
	r0, g0, b0, _ := bg.RGBA()
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	covered := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != r0 || g != g0 || bl != b0 {
				covered++
			}
		}
	}
	return float64(covered) / float64(total)
}

func toNRGBA(c scene.Color) color.NRGBA {
	conv := func(v float32) uint8 {
		return uint8(max(0, min(1, v))*255 + 0.5)
	}
	return color.NRGBA{R: conv(c[0]), G: conv(c[1]), B: conv(c[2]), A: conv(c[3])}
}

// ToColor converts a scene color to an image color.
func ToColor(c scene.Color) color.Color {
	return toNRGBA(c)
}
