package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/Faultbox/hullgate/internal/config"
	"github.com/Faultbox/hullgate/internal/portal"
	"github.com/Faultbox/hullgate/internal/session"
	"github.com/Faultbox/hullgate/pkg/geometry"
)

// apertureChain is how many clips narrow one aperture before it is reset
// to the full screen.
const apertureChain = 8

func cmdBench(args []string) {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	n := fs.Int("n", 1000, "Frames to render (clips with -clip)")
	width := fs.Int("w", 1280, "Width in pixels")
	height := fs.Int("h", 720, "Height in pixels")
	clip := fs.Bool("clip", false, "Time the polygon clipper on random polygons instead of a scene")
	seed := fs.Int64("seed", 1, "Random seed for -clip")
	fs.Parse(args)

	if *clip {
		benchClip(*n, float32(*width), float32(*height), *seed)
		return
	}
	sc := loadScene(sceneArg(fs, "bench [options] <scene>"))

	sess, err := session.New(sc, session.OptionsFromConfig(config.Default()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var last portal.Stats
	start := time.Now()
	for i := 0; i < *n; i++ {
		last, err = sess.Render(*width, *height)
		if err != nil && !errors.Is(err, portal.ErrFrameOverflow) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	elapsed := time.Since(start)

	per := elapsed / time.Duration(max(*n, 1))
	fmt.Printf("%d frames in %v (%v/frame)\n", *n, elapsed.Round(time.Millisecond), per)
	fmt.Printf("hulls %d, depth %d, walls %d, culled %d, clipped %d, triangles %d\n",
		last.States, last.MaxDepth, last.WallsDrawn, last.SidesCulled, last.SidesClipped,
		sess.Frame.TriangleCount())
}

func benchClip(n int, w, h float32, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	start := time.Now()
	st := clipWorkload(rng, w, h, n)
	elapsed := time.Since(start)

	per := elapsed / time.Duration(max(n, 1))
	fmt.Printf("%d clips in %v (%v/clip)\n", st.Clips, elapsed.Round(time.Millisecond), per)
	fmt.Printf("empty %d, truncated %d, avg vertices %.2f\n",
		st.Empty, st.Truncated, st.AvgVertices())
}

// clipStats summarizes a clipper run.
type clipStats struct {
	Clips     int
	Empty     int
	Truncated int
	Vertices  int // total vertices over non-empty results
}

// AvgVertices is the mean vertex count of the non-empty results.
func (s clipStats) AvgVertices() float64 {
	if kept := s.Clips - s.Empty; kept > 0 {
		return float64(s.Vertices) / float64(kept)
	}
	return 0
}

// clipWorkload clips n random convex polygons inside a w x h screen. Each
// result becomes the aperture for the next clip, the way nested portals
// narrow the view, until the chain empties or reaches apertureChain.
func clipWorkload(rng *rand.Rand, w, h float32, n int) clipStats {
	screen := geometry.Viewport(w, h)
	radius := min(w, h) / 2

	var st clipStats
	var aperture, out geometry.ConvexPolygon
	for i := 0; i < n; i++ {
		if i%apertureChain == 0 {
			aperture = screen
		}
		centre := geometry.Point2{X: rng.Float32() * w, Y: rng.Float32() * h}
		subject := geometry.GenerateConvex(rng, centre, radius*(0.3+0.7*rng.Float32()), 3+rng.Intn(geometry.MaxVertices-2))
		subject.EnsureCCW()

		if geometry.IntersectInto(&out, &subject, &aperture) {
			st.Truncated++
		}
		st.Clips++
		if out.Degenerate() {
			st.Empty++
			aperture = screen
			continue
		}
		st.Vertices += out.Len()
		aperture = out
	}
	return st
}
