package extract

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strconv"
	"strings"
)

// Region is one connected area of a candle color.
type Region struct {
	Bounds image.Rectangle
	Area   int
}

// ColorTarget is a body color with its per-channel match tolerance.
type ColorTarget struct {
	RGB       color.RGBA
	Tolerance int
}

// Matches reports whether c is within tolerance of the target on every channel.
func (t ColorTarget) Matches(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return within(int(r>>8), int(t.RGB.R), t.Tolerance) &&
		within(int(g>>8), int(t.RGB.G), t.Tolerance) &&
		within(int(b>>8), int(t.RGB.B), t.Tolerance)
}

func within(v, ref, tol int) bool {
	d := v - ref
	if d < 0 {
		d = -d
	}
	return d <= tol
}

// ParseHexColor parses "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// RegionFinder locates connected regions of one color.
type RegionFinder interface {
	FindRegions(img image.Image, target ColorTarget) []Region
}

var finders = map[string]RegionFinder{
	"label": LabelFinder{},
}

// Finder returns a registered region finder by name.
func Finder(name string) (RegionFinder, bool) {
	f, ok := finders[name]
	return f, ok
}

// FinderNames lists the registered region finders.
func FinderNames() []string {
	names := make([]string, 0, len(finders))
	for name := range finders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LabelFinder labels 8-connected pixel regions directly on the image.
type LabelFinder struct{}

func (LabelFinder) FindRegions(img image.Image, target ColorTarget) []Region {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mask[y*w+x] = target.Matches(img.At(b.Min.X+x, b.Min.Y+y))
		}
	}

	var regions []Region
	stack := make([]int, 0, 64)
	for start := range mask {
		if !mask[start] {
			continue
		}
		mask[start] = false
		stack = append(stack[:0], start)
		minX, minY, maxX, maxY := w, h, -1, -1
		area := 0

		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			px, py := p%w, p/w
			area++
			minX, maxX = min(minX, px), max(maxX, px)
			minY, maxY = min(minY, py), max(maxY, py)

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := px+dx, py+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					q := ny*w + nx
					if mask[q] {
						mask[q] = false
						stack = append(stack, q)
					}
				}
			}
		}

		regions = append(regions, Region{
			Bounds: image.Rect(minX, minY, maxX+1, maxY+1),
			Area:   area,
		})
	}
	return regions
}
