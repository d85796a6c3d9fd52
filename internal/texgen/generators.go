package texgen

import (
	"math"
	"math/rand"
	"sort"
)

// clamp255 truncates v and clamps it to the displayable [0, 255] range.
func clamp255(v float64) float64 {
	v = math.Trunc(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// sampleInts picks k distinct values from [lo, hi) in ascending order.
func sampleInts(rng *rand.Rand, lo, hi, k int) []int {
	perm := rng.Perm(hi - lo)[:k]
	vals := make([]int, k)
	for i, p := range perm {
		vals[i] = lo + p
	}
	sort.Ints(vals)
	return vals
}

type scratch struct {
	x, y       int
	sin, cos   float64
	length     float64
	brightness float64
}

// Metal renders a brushed-metal surface with panel grooves, seeded
// scratches, edge vignetting and optional accent patches.
func Metal(c *Canvas, base RGB, accent *RGB, seed int) {
	rng := rand.New(rand.NewSource(int64(seed)))

	numScratches := 8 + rng.Intn(13)
	scratches := make([]scratch, numScratches)
	for i := range scratches {
		sx := rng.Intn(c.Width)
		sy := rng.Intn(c.Height)
		angle := -0.3 + rng.Float64()*0.6 // mostly horizontal
		length := float64(10 + rng.Intn(51))
		brightness := 0.7 + rng.Float64()*0.6
		scratches[i] = scratch{
			x:          sx,
			y:          sy,
			sin:        math.Sin(angle),
			cos:        math.Cos(angle),
			length:     length,
			brightness: brightness,
		}
	}

	// Panel line positions (horizontal and vertical dividers)
	hLines := sampleInts(rng, 20, c.Height-20, 1+rng.Intn(3))
	vLines := sampleInts(rng, 20, c.Width-20, 1+rng.Intn(3))

	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			fx, fy := float64(x), float64(y)

			// Base color with subtle noise variation
			noise := fbm(fx, fy, seed, 3, 48)
			detail := fbm(fx, fy, seed+500, 2, 8)

			// Brushed metal effect (horizontal streaks)
			streak := smoothNoise(fx, fy, seed+200, 4)
			streakH := smoothNoise(fx*4, fy, seed+300, 128)

			variation := (noise-0.5)*0.15 + (detail-0.5)*0.05
			metalStreak := (streak-0.5)*0.03 + (streakH-0.5)*0.02

			r := clamp255((base[0] + variation + metalStreak) * 255)
			g := clamp255((base[1] + variation + metalStreak) * 255)
			b := clamp255((base[2] + variation + metalStreak) * 255)

			// Panel lines (dark grooves)
			onPanelLine := false
			for _, hl := range hLines {
				if absInt(y-hl) <= 1 {
					onPanelLine = true
				}
			}
			for _, vl := range vLines {
				if absInt(x-vl) <= 1 {
					onPanelLine = true
				}
			}
			if onPanelLine {
				r = clamp255(r * 0.4)
				g = clamp255(g * 0.4)
				b = clamp255(b * 0.4)
			}

			// Scratches
			for _, s := range scratches {
				dx := float64(x - s.x)
				dy := float64(y - s.y)
				rdx := dx*s.cos + dy*s.sin
				rdy := -dx*s.sin + dy*s.cos
				if rdx >= 0 && rdx <= s.length && math.Abs(rdy) < 1 {
					r = clamp255(r * s.brightness)
					g = clamp255(g * s.brightness)
					b = clamp255(b * s.brightness)
				}
			}

			// Edge darkening (subtle vignette)
			edgeX := float64(min(x, c.Width-1-x)) / (float64(c.Width) * 0.5)
			edgeY := float64(min(y, c.Height-1-y)) / (float64(c.Height) * 0.5)
			edge := math.Min(edgeX, edgeY)
			edge = math.Min(edge*3.0, 1.0)
			r = clamp255(r * (0.85 + 0.15*edge))
			g = clamp255(g * (0.85 + 0.15*edge))
			b = clamp255(b * (0.85 + 0.15*edge))

			// Accent color patches
			if accent != nil {
				patch := fbm(fx, fy, seed+1000, 2, 80)
				if patch > 0.65 {
					t := (patch - 0.65) / 0.35
					t = math.Min(t*2, 1.0)
					r = clamp255(lerp(r, accent[0]*255, t*0.6))
					g = clamp255(lerp(g, accent[1]*255, t*0.6))
					b = clamp255(lerp(b, accent[2]*255, t*0.6))
				}
			}

			c.Set(x, y, uint8(r), uint8(g), uint8(b))
		}
	}
}

// Wood renders a grained wood surface.
func Wood(c *Canvas, base, grain RGB, seed int) {
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			fx, fy := float64(x), float64(y)

			// Wood grain (stretched noise)
			g := fbm(fx*0.3, fy, seed, 4, 32)
			ring := math.Sin(g*20.0)*0.5 + 0.5

			t := ring*0.4 + (g-0.5)*0.3
			t = math.Max(0, math.Min(1, t+0.5))

			cr := clamp255(lerp(base[0], grain[0], t) * 255)
			cg := clamp255(lerp(base[1], grain[1], t) * 255)
			cb := clamp255(lerp(base[2], grain[2], t) * 255)

			// Fine detail noise
			detail := fbm(fx, fy, seed+777, 2, 8)
			cr = clamp255(cr + (detail-0.5)*15)
			cg = clamp255(cg + (detail-0.5)*12)
			cb = clamp255(cb + (detail-0.5)*10)

			c.Set(x, y, uint8(cr), uint8(cg), uint8(cb))
		}
	}
}

// TwoTone renders a camouflage-style surface with a hard transition
// between two colors.
func TwoTone(c *Canvas, c1, c2 RGB, seed int) {
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			fx, fy := float64(x), float64(y)

			// Large-scale pattern
			pattern := fbm(fx, fy, seed, 3, 64)
			detail := fbm(fx, fy, seed+333, 2, 12)

			t := pattern + (detail-0.5)*0.15
			var base RGB
			switch {
			case t > 0.55:
				base = c2
			case t > 0.45:
				blend := (t - 0.45) / 0.1
				base = RGB{
					lerp(c1[0], c2[0], blend),
					lerp(c1[1], c2[1], blend),
					lerp(c1[2], c2[2], blend),
				}
			default:
				base = c1
			}

			// Noise variation
			noiseVal := fbm(fx, fy, seed+600, 2, 24)
			variation := (noiseVal - 0.5) * 0.08

			r := clamp255((base[0] + variation) * 255)
			g := clamp255((base[1] + variation) * 255)
			b := clamp255((base[2] + variation) * 255)

			// Subtle brushed metal overlay
			streak := smoothNoise(fx*3, fy, seed+800, 128)
			r = clamp255(r + (streak-0.5)*8)
			g = clamp255(g + (streak-0.5)*8)
			b = clamp255(b + (streak-0.5)*8)

			c.Set(x, y, uint8(r), uint8(g), uint8(b))
		}
	}
}

// WoodMetal blends a wood body into a metal barrel half along a noisy
// horizontal seam.
func WoodMetal(c *Canvas, base, grain RGB, seed int) {
	wood := NewCanvas(c.Width, c.Height)
	Wood(wood, base, grain, seed)
	metal := NewCanvas(c.Width, c.Height)
	Metal(metal, RGB{0.20, 0.20, 0.22}, nil, seed+50)

	for y := 0; y < c.Height; y++ {
		blendY := float64(y) / float64(c.Height)
		for x := 0; x < c.Width; x++ {
			noise := fbm(float64(x), float64(y), seed+999, 2, 32)
			threshold := 0.5 + (noise-0.5)*0.15

			switch {
			case blendY < threshold-0.03:
				wr, wg, wb := wood.At(x, y)
				c.Set(x, y, wr, wg, wb)
			case blendY > threshold+0.03:
				mr, mg, mb := metal.At(x, y)
				c.Set(x, y, mr, mg, mb)
			default:
				t := (blendY - (threshold - 0.03)) / 0.06
				wr, wg, wb := wood.At(x, y)
				mr, mg, mb := metal.At(x, y)
				c.Set(x, y,
					uint8(clamp255(lerp(float64(wr), float64(mr), t))),
					uint8(clamp255(lerp(float64(wg), float64(mg), t))),
					uint8(clamp255(lerp(float64(wb), float64(mb), t))))
			}
		}
	}
}
