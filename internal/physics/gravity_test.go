package physics

import (
	"math"
	"testing"

	"github.com/EnderRifter/StarSim-sub000/internal/geom"
)

func TestGravity_Symmetry(t *testing.T) {
	g := NewGravity(6.674e-3, 0.05)

	tests := []struct {
		name string
		a, b *Body
	}{
		{"axis", NewBody(0, 1, geom.Point(0, 0, 0), geom.Zero, 1), NewBody(0, 2, geom.Point(3, 0, 0), geom.Zero, 2)},
		{"diagonal", NewBody(0, 1, geom.Point(-1, 2, 5), geom.Zero, 10), NewBody(0, 2, geom.Point(4, -3, 1), geom.Zero, 0.5)},
		{"close", NewBody(0, 1, geom.Point(1e-3, 0, 0), geom.Zero, 3), NewBody(0, 2, geom.Point(0, 1e-3, 0), geom.Zero, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fab := g.Between(tt.a, tt.b)
			fba := g.Between(tt.b, tt.a)
			if !fab.ApproxEqual3(fba.Neg(), 1e-12*math.Max(1, fab.Len3())) {
				t.Errorf("F(a,b) = %v, -F(b,a) = %v", fab, fba.Neg())
			}
			if fab.W() != 0 {
				t.Errorf("force should be a direction, got w=%f", fab.W())
			}
		})
	}
}

func TestGravity_Magnitude(t *testing.T) {
	g := NewGravity(2.0, 0.5)
	a := NewBody(0, 1, geom.Point(0, 0, 0), geom.Zero, 3)
	b := NewBody(0, 2, geom.Point(0, 4, 0), geom.Zero, 5)

	f := g.Between(a, b)
	want := 2.0 * 3 * 5 / (16 + 0.25)
	if math.Abs(f.Len3()-want) > 1e-12 {
		t.Errorf("|F| = %f, want %f", f.Len3(), want)
	}
	if f.Y() <= 0 || f.X() != 0 || f.Z() != 0 {
		t.Errorf("force on a should point to b along +y, got %v", f)
	}
}

func TestGravity_CoincidentIsZero(t *testing.T) {
	g := NewGravity(1, 0.1)
	a := NewBody(0, 1, geom.Point(1, 1, 1), geom.Zero, 1)
	b := NewBody(0, 2, geom.Point(1, 1, 1), geom.Zero, 1)
	if f := g.Between(a, b); f != geom.Zero {
		t.Errorf("expected zero force for coincident bodies, got %v", f)
	}
}

func TestBody_Same(t *testing.T) {
	a := NewBody(1, 7, geom.Point(0, 0, 0), geom.Zero, 1)
	twin := NewBody(1, 7, geom.Point(5, 5, 5), geom.Direction(1, 0, 0), 2)
	other := NewBody(2, 7, geom.Point(0, 0, 0), geom.Zero, 1)
	equalState := NewBody(1, 8, geom.Point(0, 0, 0), geom.Zero, 1)

	if !a.Same(twin) {
		t.Error("same generation and id should be the same entity")
	}
	if a.Same(other) {
		t.Error("different generation should not be the same entity")
	}
	if a.Same(equalState) {
		t.Error("equal state is not identity")
	}
	if a.Same(nil) {
		t.Error("body is not nil")
	}
	if !a.Clone().Same(a) {
		t.Error("clone keeps identity")
	}
}

func TestCenterOfMass(t *testing.T) {
	bodies := []*Body{
		NewBody(0, 1, geom.Point(0, 0, 0), geom.Zero, 1),
		NewBody(0, 2, geom.Point(4, 0, 0), geom.Zero, 3),
	}
	com, m := CenterOfMass(bodies)
	if m != 4 {
		t.Errorf("mass = %f, want 4", m)
	}
	if !com.ApproxEqual3(geom.Point(3, 0, 0), 1e-12) {
		t.Errorf("com = %v, want (3,0,0)", com)
	}
	if com.W() != 1 {
		t.Errorf("com should be a point, got w=%f", com.W())
	}
}

func TestEnergy_TwoBody(t *testing.T) {
	g := NewGravity(1, 0)
	bodies := []*Body{
		NewBody(0, 1, geom.Point(0, 0, 0), geom.Direction(0, 1, 0), 2),
		NewBody(0, 2, geom.Point(2, 0, 0), geom.Zero, 1),
	}
	want := 0.5*2*1 - 1*2*1/2.0
	if e := Energy(g, bodies); math.Abs(e-want) > 1e-12 {
		t.Errorf("energy = %f, want %f", e, want)
	}
	if p := Momentum(bodies); !p.ApproxEqual3(geom.Direction(0, 2, 0), 1e-12) {
		t.Errorf("momentum = %v", p)
	}
	if l := AngularMomentum(bodies); l != geom.Zero {
		t.Errorf("angular momentum about origin = %v, want zero", l)
	}
}
