package export

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/EnderRifter/StarSim-sub000/internal/physics"
	"github.com/EnderRifter/StarSim-sub000/internal/sim"
	"github.com/EnderRifter/StarSim-sub000/internal/viz"
)

// Plane selects which two coordinates a trajectory plot uses.
type Plane string

const (
	PlaneXY Plane = "xy"
	PlaneXZ Plane = "xz"
	PlaneYZ Plane = "yz"
)

var palette = []string{"#00ff88", "#00ccff", "#ffcc00", "#ff66cc", "#ff4444", "#aa88ff"}

// axes returns the coordinate indices of the plane.
func (p Plane) axes() (int, int, error) {
	switch p {
	case PlaneXY, "":
		return 0, 1, nil
	case PlaneXZ:
		return 0, 2, nil
	case PlaneYZ:
		return 1, 2, nil
	}
	return 0, 0, fmt.Errorf("export: unknown plane %q", string(p))
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.Pixels()
	width, height := float64(w)*scale, float64(h)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	r := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type track struct {
	id   uint64
	mass float64
	pts  [][2]float64
}

// TrajectoriesToSVG draws one path per body across frames, projected onto
// plane. Bodies are matched by generation and id, not by slice position.
func TrajectoriesToSVG(frames []sim.Frame, plane Plane, width, height int) (string, error) {
	if len(frames) < 2 {
		return "", fmt.Errorf("export: need at least two frames, got %d", len(frames))
	}
	ax, ay, err := plane.axes()
	if err != nil {
		return "", err
	}

	type key struct {
		gen uint32
		id  uint64
	}
	tracks := make(map[key]*track)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, f := range frames {
		for _, b := range f.Bodies {
			if !b.Position.IsFinite() {
				continue
			}
			k := key{b.Generation(), b.ID()}
			tr, ok := tracks[k]
			if !ok {
				tr = &track{id: b.ID(), mass: b.Mass}
				tracks[k] = tr
			}
			x, y := b.Position.Component(ax), b.Position.Component(ay)
			tr.pts = append(tr.pts, [2]float64{x, y})
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}
	if len(tracks) == 0 {
		return "", fmt.Errorf("export: no finite positions")
	}

	// Equal scale on both axes so orbits keep their shape.
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	pad := span * 0.1
	span += 2 * pad
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	size := float64(min(width, height))
	toScreen := func(p [2]float64) (float64, float64) {
		sx := float64(width)/2 + (p[0]-cx)/span*size
		sy := float64(height)/2 - (p[1]-cy)/span*size
		return sx, sy
	}

	ordered := make([]*track, 0, len(tracks))
	for _, tr := range tracks {
		ordered = append(ordered, tr)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].id < ordered[j].id })
	heavy := heaviest(ordered)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, tr := range ordered {
		color := palette[i%len(palette)]
		if len(tr.pts) > 1 {
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1" stroke-opacity="0.8" d="`, color)
			for j, p := range tr.pts {
				x, y := toScreen(p)
				if j == 0 {
					fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
				} else {
					fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
				}
			}
			sb.WriteString("\"/>\n")
		}
		x, y := toScreen(tr.pts[len(tr.pts)-1])
		r := 1.5
		if tr.mass >= heavy {
			r = 4
		}
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", x, y, r, color)
	}

	sb.WriteString("</svg>")
	return sb.String(), nil
}

// heaviest returns the mass at which a body is drawn as a star: the largest
// mass when it is at least ten times the smallest, otherwise +Inf.
func heaviest(tracks []*track) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, tr := range tracks {
		lo, hi = math.Min(lo, tr.mass), math.Max(hi, tr.mass)
	}
	if hi < 10*lo {
		return math.Inf(1)
	}
	return hi
}

// FinalSnapshotSVG renders the bodies of a single frame as dots.
func FinalSnapshotSVG(bodies []*physics.Body, plane Plane, width, height int) (string, error) {
	f := sim.Frame{Bodies: bodies}
	return TrajectoriesToSVG([]sim.Frame{f, f}, plane, width, height)
}

func WriteFile(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0o644)
}
