package math

import "github.com/chewxy/math32"

/**
 * @brief Returns an empty box: its minimum is +Inf and its maximum -Inf,
 * so the first union with any point yields that point.
 */
func NewBoundingBoxEmpty() BoundingBox {
	inf := math32.Inf(1)
	return BoundingBox{
		Min: Point{inf, inf, inf},
		Max: Point{-inf, -inf, -inf},
	}
}

// NewBoundingBox returns the box spanned by two arbitrary corners.
func NewBoundingBox(a, b Point) BoundingBox {
	return BoundingBox{
		Min: Point{math32.Min(a.X, b.X), math32.Min(a.Y, b.Y), math32.Min(a.Z, b.Z)},
		Max: Point{math32.Max(a.X, b.X), math32.Max(a.Y, b.Y), math32.Max(a.Z, b.Z)},
	}
}

// BoundsFromPoints returns the smallest box enclosing every point.
func BoundsFromPoints(points []Point) BoundingBox {
	b := NewBoundingBoxEmpty()
	for _, p := range points {
		b = b.UnionPoint(p)
	}
	return b
}

func (b BoundingBox) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

func (b BoundingBox) UnionPoint(p Point) BoundingBox {
	return BoundingBox{
		Min: Point{math32.Min(b.Min.X, p.X), math32.Min(b.Min.Y, p.Y), math32.Min(b.Min.Z, p.Z)},
		Max: Point{math32.Max(b.Max.X, p.X), math32.Max(b.Max.Y, p.Y), math32.Max(b.Max.Z, p.Z)},
	}
}

func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	return b.UnionPoint(other.Min).UnionPoint(other.Max)
}

// Diagonal returns the vector from the minimum to the maximum corner.
func (b BoundingBox) Diagonal() Vector {
	return b.Max.Sub(b.Min)
}

func (b BoundingBox) Center() Point {
	return b.Min.Add(b.Diagonal().MulScalar(0.5))
}

func (b BoundingBox) SurfaceArea() float32 {
	d := b.Diagonal()
	return 2 * (d.X*d.Y + d.X*d.Z + d.Y*d.Z)
}

func (b BoundingBox) Volume() float32 {
	d := b.Diagonal()
	return d.X * d.Y * d.Z
}

// MaxExtent returns the index of the longest axis: 0 for x, 1 for y, 2 for z.
func (b BoundingBox) MaxExtent() int {
	d := b.Diagonal()
	switch {
	case d.X > d.Y && d.X > d.Z:
		return 0
	case d.Y > d.Z:
		return 1
	default:
		return 2
	}
}

func (b BoundingBox) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Corners returns the eight corners of the box.
func (b BoundingBox) Corners() [8]Point {
	var out [8]Point
	for i := 0; i < 8; i++ {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		out[i] = p
	}
	return out
}
