package software

import (
	"github.com/chewxy/math32"
	"github.com/spaghettifunk/umbra/engine/math"
)

// Vertices closer to w=0 than this are clipped away.
const minClipW float32 = 1e-5

type clipVertex struct {
	pos      math.Vec4
	varyings []float32
}

type screenVertex struct {
	x, y, z float32
	invW    float32
}

// clip-space planes kept by clipping: near (z >= -w), far (z <= w) and a
// guard against w approaching zero.
var clipPlanes = []func(p math.Vec4) float32{
	func(p math.Vec4) float32 { return p.Z + p.W },
	func(p math.Vec4) float32 { return p.W - p.Z },
	func(p math.Vec4) float32 { return p.W - minClipW },
}

/**
 * @brief Runs the program's vertex kernel once per referenced vertex,
 * clips every triangle against the near and far planes and scan converts
 * what is left into the bound target.
 */
func (b *Backend) rasterize(p *program, indices []uint32) {
	k := p.kernel
	n := k.varyingCount()

	var maxIndex uint32
	for _, idx := range indices {
		if idx > maxIndex {
			maxIndex = idx
		}
	}
	cache := make([]clipVertex, maxIndex+1)
	done := make([]bool, maxIndex+1)
	scratch := make([]float32, n)

	for tri := 0; tri+2 < len(indices); tri += 3 {
		poly := make([]clipVertex, 3, 6)
		for i := 0; i < 3; i++ {
			idx := indices[tri+i]
			if !done[idx] {
				out := make([]float32, n)
				cache[idx] = clipVertex{pos: k.vertex(idx, out), varyings: out}
				done[idx] = true
			}
			poly[i] = cache[idx]
		}
		for _, plane := range clipPlanes {
			poly = clipPolygon(poly, plane, n)
			if len(poly) < 3 {
				break
			}
		}
		for i := 1; i+1 < len(poly); i++ {
			b.drawTriangle(k, poly[0], poly[i], poly[i+1], scratch)
		}
	}
}

// clipPolygon keeps the part of poly where plane is non-negative
// (Sutherland-Hodgman).
func clipPolygon(poly []clipVertex, plane func(math.Vec4) float32, n int) []clipVertex {
	out := make([]clipVertex, 0, len(poly)+1)
	for i := range poly {
		a, c := poly[i], poly[(i+1)%len(poly)]
		da, dc := plane(a.pos), plane(c.pos)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (dc >= 0) {
			out = append(out, lerpVertex(a, c, da/(da-dc), n))
		}
	}
	return out
}

func lerpVertex(a, c clipVertex, t float32, n int) clipVertex {
	v := clipVertex{
		pos:      a.pos.Add(c.pos.Add(a.pos.MulScalar(-1)).MulScalar(t)),
		varyings: make([]float32, n),
	}
	for i := range v.varyings {
		v.varyings[i] = math.Lerp(a.varyings[i], c.varyings[i], t)
	}
	return v
}

func (b *Backend) toScreen(v clipVertex) screenVertex {
	invW := 1 / v.pos.W
	vp := &b.viewport
	return screenVertex{
		x:    float32(vp.x) + (v.pos.X*invW+1)/2*float32(vp.width),
		y:    float32(vp.y) + (v.pos.Y*invW+1)/2*float32(vp.height),
		z:    (v.pos.Z*invW + 1) / 2,
		invW: invW,
	}
}

func edge(a, c screenVertex, px, py float32) float32 {
	return (c.x-a.x)*(py-a.y) - (c.y-a.y)*(px-a.x)
}

/**
 * @brief Scan converts one clipped triangle with a LESS depth test. Both
 * windings are drawn. Depth is interpolated linearly in screen space and
 * varyings perspective-correctly.
 */
func (b *Backend) drawTriangle(k kernel, v0, v1, v2 clipVertex, scratch []float32) {
	tg := b.bound
	s0, s1, s2 := b.toScreen(v0), b.toScreen(v1), b.toScreen(v2)
	area := edge(s0, s1, s2.x, s2.y)
	if area == 0 {
		return
	}

	vp := &b.viewport
	minX := max(int(math32.Floor(min(s0.x, s1.x, s2.x))), vp.x, 0)
	maxX := min(int(math32.Ceil(max(s0.x, s1.x, s2.x))), vp.x+vp.width-1, tg.width-1)
	minY := max(int(math32.Floor(min(s0.y, s1.y, s2.y))), vp.y, 0)
	maxY := min(int(math32.Ceil(max(s0.y, s1.y, s2.y))), vp.y+vp.height-1, tg.height-1)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(s1, s2, px, py) / area
			w1 := edge(s2, s0, px, py) / area
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			depth := w0*s0.z + w1*s1.z + w2*s2.z
			i := y*tg.width + x
			if depth >= tg.depth[i] {
				continue
			}
			if len(scratch) > 0 {
				p0, p1, p2 := w0*s0.invW, w1*s1.invW, w2*s2.invW
				norm := 1 / (p0 + p1 + p2)
				for j := range scratch {
					scratch[j] = (p0*v0.varyings[j] + p1*v1.varyings[j] + p2*v2.varyings[j]) * norm
				}
			}
			tg.depth[i] = depth
			tg.color.set(x, y, k.fragment(depth, scratch))
		}
	}
}
