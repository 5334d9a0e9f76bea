package math

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/umbra/engine/core"
)

func mustScale(t *testing.T, x, y, z float32) Transform {
	t.Helper()
	s, err := Scale(x, y, z)
	if err != nil {
		t.Fatalf("Scale(%v, %v, %v): %v", x, y, z, err)
	}
	return s
}

func TestTranslateComposedWithOppositeIsIdentity(t *testing.T) {
	for _, v := range [][3]float32{{0, 0, 0}, {1, 2, 3}, {-4.5, 0.25, 100}, {1e3, -1e3, 7}} {
		got := Translate(v[0], v[1], v[2]).Mul(Translate(-v[0], -v[1], -v[2]))
		if !got.IsIdentity(tolerance) {
			t.Errorf("translate(%v) * translate(-%v) = %v", v, v, got.M)
		}
	}
}

func TestCompositionIsAssociative(t *testing.T) {
	a := Translate(1, -2, 3)
	b := Rotate(NewVector(0, 1, 1).Normalize(), 1.1)
	c := mustScale(t, 2, 0.5, 4)
	left := a.Mul(b).Mul(c)
	right := a.Mul(b.Mul(c))
	if !left.M.Equals(right.M, tolerance) {
		t.Errorf("(AB)C = %v, A(BC) = %v", left.M, right.M)
	}
	if !left.MInv.Equals(right.MInv, tolerance) {
		t.Errorf("inverse of (AB)C = %v, of A(BC) = %v", left.MInv, right.MInv)
	}
}

func TestCompositionAppliesRightOperandFirst(t *testing.T) {
	// Rotate a quarter turn around z, then move along x.
	tr := Translate(10, 0, 0).Mul(RotateZ(K_HALF_PI))
	got := tr.TransformPoint(NewPoint(1, 0, 0))
	if want := NewPoint(10, 1, 0); !got.Compare(want, tolerance) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestComposedInverseIsConsistent(t *testing.T) {
	tr := Translate(3, 4, 5).Mul(RotateY(0.3)).Mul(mustScale(t, 1, 2, 3))
	if !tr.IsConsistent(tolerance) {
		t.Errorf("M * MInv = %v", tr.M.Mul(tr.MInv))
	}
	if !tr.MInv.Equals(tr.M.Inverse(), tolerance) {
		t.Errorf("cached inverse %v differs from computed %v", tr.MInv, tr.M.Inverse())
	}
}

func TestRotationsComposeWithTheirOpposite(t *testing.T) {
	rotations := map[string]func(float32) Transform{
		"x": RotateX,
		"y": RotateY,
		"z": RotateZ,
	}
	for name, rot := range rotations {
		for _, theta := range []float32{0, 0.1, 1, K_HALF_PI, 3, -2.5} {
			if got := rot(theta).Mul(rot(-theta)); !got.IsIdentity(tolerance) {
				t.Errorf("rotate%s(%v) * rotate%s(%v) = %v", name, theta, name, -theta, got.M)
			}
		}
	}
}

func TestRotateAroundAxesMatchesAxisRotations(t *testing.T) {
	for _, theta := range []float32{0.2, 1, -1.7, 3} {
		if got, want := Rotate(NewVector(1, 0, 0), theta), RotateX(theta); !got.Equals(want, tolerance) {
			t.Errorf("rotate(x, %v) = %v, want %v", theta, got.M, want.M)
		}
		if got, want := Rotate(NewVector(0, 1, 0), theta), RotateY(theta); !got.Equals(want, tolerance) {
			t.Errorf("rotate(y, %v) = %v, want %v", theta, got.M, want.M)
		}
		if got, want := Rotate(NewVector(0, 0, 1), theta), RotateZ(theta); !got.Equals(want, tolerance) {
			t.Errorf("rotate(z, %v) = %v, want %v", theta, got.M, want.M)
		}
	}
}

func TestFactoriesMatchMathGL(t *testing.T) {
	axis := NewVector(1, -2, 0.5).Normalize()
	t.Run("rotate", func(t *testing.T) {
		want := mgl32.HomogRotate3D(0.8, mgl32.Vec3{axis.X, axis.Y, axis.Z})
		assertMatrixMatchesMGL(t, Rotate(axis, 0.8).M, want)
	})
	t.Run("translate", func(t *testing.T) {
		assertMatrixMatchesMGL(t, Translate(1, 2, 3).M, mgl32.Translate3D(1, 2, 3))
	})
	t.Run("scale", func(t *testing.T) {
		assertMatrixMatchesMGL(t, mustScale(t, 2, 3, 4).M, mgl32.Scale3D(2, 3, 4))
	})
}

func TestFactoryInversesAreExact(t *testing.T) {
	tests := []struct {
		name string
		tr   Transform
	}{
		{"translate", Translate(5, -6, 7)},
		{"scale", mustScale(t, 0.5, 4, -2)},
		{"rotate", Rotate(NewVector(1, 1, 1).Normalize(), 2)},
		{"ortho", Ortho(4, -2, 3, -1, -1, -50)},
		{"perspective", Perspective(DegToRad(90), 1, -1, -1000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.tr.IsConsistent(1e-3) {
				t.Errorf("M * MInv = %v", tt.tr.M.Mul(tt.tr.MInv))
			}
		})
	}
}

func TestScaleByZeroIsSingular(t *testing.T) {
	if _, err := Scale(1, 0, 1); !errors.Is(err, core.ErrSingularTransform) {
		t.Errorf("Scale(1, 0, 1) error = %v, want ErrSingularTransform", err)
	}
}

func TestPointAndVectorTransformsDiffer(t *testing.T) {
	tr := Translate(1, 2, 3)
	if got := tr.TransformPoint(NewPoint(0, 0, 0)); !got.Compare(NewPoint(1, 2, 3), tolerance) {
		t.Errorf("point = %v, want translated", got)
	}
	if got := tr.TransformVector(NewVector(0, 0, 1)); !got.Compare(NewVector(0, 0, 1), tolerance) {
		t.Errorf("vector = %v, translation must not apply", got)
	}
}

func TestNormalTransformKeepsPerpendicularity(t *testing.T) {
	tr := RotateZ(0.4).Mul(mustScale(t, 3, 1, 0.5))
	normal := NewVector(1, 1, 1).Normalize()
	tangents := []Vector{NewVector(1, -1, 0), NewVector(0, 1, -1), NewVector(1, 0, -1)}

	nt := NormalTransform(tr)
	n := nt.TransformVector(normal)
	for _, tangent := range tangents {
		if normal.Dot(tangent) != 0 {
			t.Fatalf("tangent %v is not perpendicular to %v", tangent, normal)
		}
		tt := tr.TransformVector(tangent)
		if d := n.Dot(tt); !FloatEquals(d, 0, tolerance) {
			t.Errorf("normal transform: dot(n', t') = %v, want 0", d)
		}
		if got := tr.TransformNormal(normal); !got.Compare(n, tolerance) {
			t.Errorf("TransformNormal = %v, NormalTransform = %v", got, n)
		}
	}

	naive := tr.TransformVector(normal)
	if d := naive.Dot(tr.TransformVector(tangents[0])); FloatEquals(d, 0, tolerance) {
		t.Error("forward matrix unexpectedly preserved perpendicularity under non-uniform scale")
	}
}

func TestOrthoMapsBoxCornersToCanonicalCube(t *testing.T) {
	var r, l, top, b, n, f float32 = 4, -2, 3, -1, -1, -50
	o := Ortho(r, l, top, b, n, f)
	if got := o.TransformPoint(NewPoint(r, top, n)); !got.Compare(NewPoint(1, 1, -1), tolerance) {
		t.Errorf("(r,t,n) -> %v, want (1,1,-1)", got)
	}
	if got := o.TransformPoint(NewPoint(l, b, f)); !got.Compare(NewPoint(-1, -1, 1), tolerance) {
		t.Errorf("(l,b,f) -> %v, want (-1,-1,1)", got)
	}
}

func TestPerspectiveMapsFrustumToCanonicalCube(t *testing.T) {
	p := Perspective(DegToRad(90), 1, -1, -1000)
	tests := []struct {
		name string
		in   Point
		want Point
	}{
		{"near corner", NewPoint(1, 1, -1), NewPoint(1, 1, -1)},
		{"near center", NewPoint(0, 0, -1), NewPoint(0, 0, -1)},
		{"far corner", NewPoint(-1000, -1000, -1000), NewPoint(-1, -1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.TransformPoint(tt.in); !got.Compare(tt.want, 1e-3) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	nearer := p.TransformPoint(NewPoint(0, 0, -10))
	farther := p.TransformPoint(NewPoint(0, 0, -20))
	if nearer.Z >= farther.Z {
		t.Errorf("depth of nearer point %v should be less than %v", nearer.Z, farther.Z)
	}
}

func TestLookAt(t *testing.T) {
	view, err := LookAt(NewPoint(0, 0, 0), NewPoint(0, 0, -1), NewVectorUp())
	if err != nil {
		t.Fatal(err)
	}
	if !view.IsIdentity(tolerance) {
		t.Errorf("looking down -z from the origin should be identity, got %v", view.M)
	}

	view, err = LookAt(NewPoint(0, 100, 0), NewPoint(0, 0, 0), NewVector(0, 0, -1))
	if err != nil {
		t.Fatal(err)
	}
	if got := view.TransformPoint(NewPoint(0, 0, 0)); !got.Compare(NewPoint(0, 0, -100), tolerance) {
		t.Errorf("target in view space = %v, want (0,0,-100)", got)
	}
	if !view.IsConsistent(tolerance) {
		t.Error("look-at inverse is inconsistent")
	}
}

func TestLookAtRejectsDegenerateBasis(t *testing.T) {
	tests := []struct {
		name   string
		pos    Point
		target Point
		up     Vector
	}{
		{"target equals position", NewPoint(1, 1, 1), NewPoint(1, 1, 1), NewVectorUp()},
		{"up parallel to forward", NewPoint(0, 0, 0), NewPoint(0, 5, 0), NewVectorUp()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LookAt(tt.pos, tt.target, tt.up); !errors.Is(err, core.ErrDegenerateBasis) {
				t.Errorf("error = %v, want ErrDegenerateBasis", err)
			}
		})
	}
}
