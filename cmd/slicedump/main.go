// Command slicedump renders the configured slice panes of a volume to PNG
// files without opening a window.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"slice-viewer/internal/app"
	"slice-viewer/internal/config"
	"slice-viewer/internal/render"
	"slice-viewer/pkg/geometry"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	in := flag.String("i", "", "Directory of slice images")
	out := flag.String("o", ".", "Output directory for PNG files")
	coord := flag.String("c", "", "Cursor position as x,y,z (default: volume center)")
	zoom := flag.Float64("zoom", 1, "Zoom factor")
	frame := flag.Int("frame", 0, "Time frame for 4D volumes")
	noCrosshairs := flag.Bool("no-crosshairs", false, "Do not draw cross-hairs")
	flag.Parse()

	if *in == "" {
		fmt.Println("Usage: slicedump -i <slice dir> [-o <out dir>] [-c x,y,z] [-zoom f] [-frame n]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	state := app.NewState(cfg)
	defer state.Close()

	surfaces := render.NewOffscreenProvider()
	views, err := state.OpenConfiguredPanes(surfaces)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open panes: %v\n", err)
		os.Exit(1)
	}
	state.SetCrosshairs(!*noCrosshairs)

	fmt.Printf("=== Loading volume: %s ===\n", *in)
	if err := state.LoadVolume(*in); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load volume: %v\n", err)
		os.Exit(1)
	}
	vol := state.Volume()
	fmt.Printf("  %dx%dx%d voxels, %d frames, voxel size %v mm\n",
		vol.Width, vol.Height, vol.Depth, vol.Frames, vol.VoxelSize)

	if *coord != "" {
		c, err := parseCoord(*coord)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -c: %v\n", err)
			os.Exit(1)
		}
		state.Viewer.SetCurrentCoord(c)
	}
	state.Viewer.SetZoomLocation(state.Viewer.CurrentCoord())
	state.Viewer.SetZoomFactor(*zoom)
	state.Viewer.SetFrame(*frame)

	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n=== Rendering at %v, zoom %.1fx ===\n", state.Viewer.CurrentCoord(), state.Viewer.ZoomFactor())
	for _, view := range views {
		surface, ok := surfaces.Get(view.Surface().ID())
		if !ok || surface.Frame() == nil {
			fmt.Fprintf(os.Stderr, "  %s: nothing rendered\n", view.Plane().Name)
			continue
		}
		path := filepath.Join(*out, view.Plane().Name+".png")
		if err := writePNG(path, surface); err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", view.Plane().Name, err)
			os.Exit(1)
		}
		fmt.Printf("  %s -> %s\n", view.Plane().Name, path)
	}
}

func writePNG(path string, surface *render.Offscreen) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, surface.Frame()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseCoord parses "x,y,z" into a volume coordinate.
func parseCoord(s string) (geometry.Coord, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return geometry.Coord{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var c geometry.Coord
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Coord{}, fmt.Errorf("component %d: %w", i, err)
		}
		c[i] = v
	}
	return c, nil
}
