// hulltool is a CLI utility for inspecting and rendering hull scenes
// without a window.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/Faultbox/hullgate/internal/boundary"
	"github.com/Faultbox/hullgate/internal/camera"
	"github.com/Faultbox/hullgate/internal/logger"
	"github.com/Faultbox/hullgate/internal/portal"
	"github.com/Faultbox/hullgate/internal/scene"
	"github.com/Faultbox/hullgate/internal/session"
	"github.com/Faultbox/hullgate/internal/snapshot"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := logger.Init("warn", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "validate", "check":
		cmdValidate(args)
	case "render":
		cmdRender(args)
	case "export":
		cmdExport(args)
	case "walk":
		cmdWalk(args)
	case "bench":
		cmdBench(args)
	case "builtins":
		for _, name := range scene.BuiltinNames() {
			fmt.Println(name)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hulltool - portal hull scene utility

Usage:
  hulltool <command> [options]

A scene is a .yaml/.toml file or a built-in name (see "builtins").

Commands:
  info <scene>                       Show blueprints, instances and portals
  validate <scene>                   Check scene invariants
  render [-o out.png] [-w W] [-h H] [-depth N] [-thumb W] <scene>
                                     Rasterize the camera view to PNG or BMP
  export <scene> <out.yaml|out.toml> Write a scene description
  walk [-steps N] [-dt S] [-turn] <scene>
                                     Walk forward and report boundary events
  bench [-n N] [-w W] [-h H] <scene> Time portal traversal
  bench -clip [-n N] [-w W] [-h H] [-seed S]
                                     Time the polygon clipper on random input
  builtins                           List built-in scenes

Examples:
  hulltool info demo
  hulltool render -o demo.png demo
  hulltool export corridor corridor.toml
  hulltool walk -steps 120 demo`)
}

func loadScene(ref string) *scene.Scene {
	sc, err := session.LoadScene(ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return sc
}

func sceneArg(fs *flag.FlagSet, usage string) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hulltool "+usage)
		os.Exit(1)
	}
	return fs.Arg(0)
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	sc := loadScene(sceneArg(fs, "info <scene>"))

	fmt.Printf("Blueprints: %d\n", len(sc.Blueprints))
	bpIDs := maps.Keys(sc.Blueprints)
	slices.Sort(bpIDs)
	for _, id := range bpIDs {
		bp := sc.Blueprints[id]
		fmt.Printf("  %-16s %d vertices, %d sides\n", id, len(bp.Vertices), len(bp.Sides))
	}

	fmt.Printf("Instances:  %d\n", len(sc.Instances))
	ids := maps.Keys(sc.Instances)
	slices.Sort(ids)
	for _, id := range ids {
		inst, bp, err := sc.Lookup(id)
		if err != nil {
			fmt.Printf("  %-16s %v\n", id, err)
			continue
		}
		marker := ""
		if id == sc.Camera.Instance {
			marker = " [camera]"
		}
		fmt.Printf("  %-16s blueprint %s%s\n", id, bp.ID, marker)
		for i := range bp.Sides {
			h := scene.EffectiveHandler(inst, bp, i)
			switch h.Kind {
			case scene.HandlerWall:
				continue
			case scene.HandlerPortal:
				target := "(unconnected)"
				if h.TargetInstance != "" {
					target = fmt.Sprintf("%s/%s", h.TargetInstance, h.TargetPortal)
				}
				fmt.Printf("    side %-2d portal %-10s -> %s\n", i, bp.Sides[i].PortalID, target)
			default:
				fmt.Printf("    side %-2d %s\n", i, h.Kind)
			}
		}
	}

	p := sc.Camera.Position()
	fmt.Printf("Camera:     %s at (%.3f, %.3f, %.3f)\n", sc.Camera.Instance, p.X, p.Y, p.Z)
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	fs.Parse(args)
	sc := loadScene(sceneArg(fs, "validate <scene>"))

	if err := sc.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	warnings := sc.Warnings()
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if len(warnings) > 0 {
		fmt.Printf("OK (%d warnings)\n", len(warnings))
		return
	}
	fmt.Println("OK")
}

func cmdRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	out := fs.String("o", "frame.png", "Output image (.png or .bmp)")
	width := fs.Int("w", 640, "Width in pixels")
	height := fs.Int("h", 480, "Height in pixels")
	depth := fs.Int("depth", portal.DefaultMaxDepth, "Portal recursion depth")
	thumb := fs.Int("thumb", 0, "Also write a thumbnail of this width (0 = none)")
	fs.Parse(args)
	sc := loadScene(sceneArg(fs, "render [options] <scene>"))

	opts := session.DefaultOptions()
	opts.Render.MaxDepth = *depth
	sess, err := session.New(sc, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stats, err := sess.Render(*width, *height)
	if err != nil && !errors.Is(err, portal.ErrFrameOverflow) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	img := snapshot.Rasterize(sess.Frame, *width, *height, snapshot.DefaultBackground)
	if err := snapshot.WriteFile(*out, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s: %d triangles, %d hulls, depth %d, %d walls\n",
		*out, sess.Frame.TriangleCount(), stats.States, stats.MaxDepth, stats.WallsDrawn)

	if *thumb > 0 {
		name := thumbName(*out)
		if err := snapshot.WriteFile(name, snapshot.Thumbnail(img, *thumb)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", name)
	}
}

func thumbName(path string) string {
	if i := strings.LastIndexByte(path, '.'); i > 0 {
		return path[:i] + "_thumb" + path[i:]
	}
	return path + "_thumb"
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: hulltool export <scene> <out.yaml|out.toml>")
		os.Exit(1)
	}
	sc := loadScene(fs.Arg(0))
	if err := scene.SaveFile(sc, fs.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", fs.Arg(1))
}

func cmdWalk(args []string) {
	fs := flag.NewFlagSet("walk", flag.ExitOnError)
	steps := fs.Int("steps", 120, "Number of ticks")
	dt := fs.Float64("dt", 1.0/60, "Seconds per tick")
	turn := fs.Bool("turn", false, "Turn left while walking")
	fs.Parse(args)
	sc := loadScene(sceneArg(fs, "walk [options] <scene>"))

	sess, err := session.New(sc, session.DefaultOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	in := camera.Input{Forward: true, TurnLeft: *turn}
	counts := make(map[boundary.Kind]int)
	prev := sc.Camera.Instance
	for i := 0; i < *steps; i++ {
		res, err := sess.Step(in, float32(*dt))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error at tick %d: %v\n", i, err)
			os.Exit(1)
		}
		counts[res.Kind]++
		switch res.Kind {
		case boundary.Traverse:
			fmt.Printf("tick %4d: %s side %d -> %s/%s\n",
				i, prev, res.Side, res.TargetInstance, res.TargetPortal)
		case boundary.Collision:
			if counts[boundary.Collision] == 1 {
				fmt.Printf("tick %4d: collision with side %d of %s\n", i, res.Side, res.Instance)
			}
		}
		prev = sc.Camera.Instance
	}

	p := sc.Camera.Position()
	fmt.Printf("Ended in %s at (%.3f, %.3f, %.3f): %d inside, %d collisions, %d traversals\n",
		sc.Camera.Instance, p.X, p.Y, p.Z,
		counts[boundary.Inside], counts[boundary.Collision], counts[boundary.Traverse])
}
