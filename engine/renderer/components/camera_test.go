package components

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/math"
)

const tolerance = 1e-4

func newDefaultCamera() *Camera {
	return NewCamera(DEFAULT_CAMERA_FOV, 1, DEFAULT_CAMERA_NEAR, DEFAULT_CAMERA_FAR)
}

func TestNewCameraProjection(t *testing.T) {
	c := newDefaultCamera()
	if !c.ViewTransform.IsIdentity(tolerance) {
		t.Errorf("initial view = %v", c.ViewTransform.M)
	}
	want := math.Perspective(DEFAULT_CAMERA_FOV, 1, DEFAULT_CAMERA_NEAR, DEFAULT_CAMERA_FAR)
	if !c.ClipTransform.M.Equals(want.M, tolerance) {
		t.Errorf("clip = %v, want %v", c.ClipTransform.M, want.M)
	}
	// A 90 degree frustum at near=-1 spans [-1,1] on both axes.
	got := c.ClipTransform.TransformPoint(math.NewPoint(1, 1, -1))
	if !got.Compare(math.NewPoint(1, 1, -1), tolerance) {
		t.Errorf("near corner maps to %v", got)
	}
	got = c.OrthoTransform.TransformPoint(math.NewPoint(1, 1, -1))
	if !got.Compare(math.NewPoint(1, 1, -1), tolerance) {
		t.Errorf("ortho near corner maps to %v", got)
	}
}

func TestSetAspectNarrowsWidth(t *testing.T) {
	c := newDefaultCamera()
	c.SetAspect(0.5)
	// Half width is t/aspect = 2 at the near plane.
	got := c.ClipTransform.TransformPoint(math.NewPoint(2, 1, -1))
	if !got.Compare(math.NewPoint(1, 1, -1), tolerance) {
		t.Errorf("got %v", got)
	}
}

func TestEyeFollowsOrthoTransform(t *testing.T) {
	c := newDefaultCamera()
	want := c.OrthoTransform.TransformPoint(math.NewPointOrigin())
	if !c.Eye().Compare(want, tolerance) {
		t.Errorf("eye = %v, want %v", c.Eye(), want)
	}
	if err := c.LookAt(math.NewPoint(3, 4, 5), math.NewPointOrigin(), math.NewVectorUp()); err != nil {
		t.Fatal(err)
	}
	if !c.Eye().Compare(want, tolerance) {
		t.Errorf("eye moved with the pose to %v", c.Eye())
	}
	c.SetAspect(0.5)
	if got := c.OrthoTransform.TransformPoint(math.NewPointOrigin()); !c.Eye().Compare(got, tolerance) {
		t.Errorf("eye = %v after resize, want %v", c.Eye(), got)
	}
}

func TestLookAtOnlyChangesView(t *testing.T) {
	c := newDefaultCamera()
	clip, ortho := c.ClipTransform, c.OrthoTransform
	if err := c.LookAt(math.NewPoint(0, 0, 10), math.NewPointOrigin(), math.NewVectorUp()); err != nil {
		t.Fatal(err)
	}
	if !c.ClipTransform.Equals(clip, 0) || !c.OrthoTransform.Equals(ortho, 0) {
		t.Error("LookAt changed the projection")
	}
	got := c.ViewTransform.TransformPoint(math.NewPointOrigin())
	if !got.Compare(math.NewPoint(0, 0, -10), tolerance) {
		t.Errorf("origin in view space = %v", got)
	}
	if p := c.Pose(); !p.Position.Compare(math.NewPoint(0, 0, 10), 0) {
		t.Errorf("pose = %+v", p)
	}
}

func TestLookAtDegenerateKeepsView(t *testing.T) {
	c := newDefaultCamera()
	if err := c.LookAt(math.NewPoint(1, 2, 3), math.NewPointOrigin(), math.NewVectorUp()); err != nil {
		t.Fatal(err)
	}
	before := c.ViewTransform
	tests := []struct {
		name   string
		pos    math.Point
		target math.Point
		up     math.Vector
	}{
		{"target equals position", math.NewPoint(4, 4, 4), math.NewPoint(4, 4, 4), math.NewVectorUp()},
		{"up parallel to forward", math.NewPointOrigin(), math.NewPoint(0, 5, 0), math.NewVectorUp()},
	}
	for _, tt := range tests {
		err := c.LookAt(tt.pos, tt.target, tt.up)
		if !errors.Is(err, core.ErrDegenerateBasis) {
			t.Errorf("%s: err = %v", tt.name, err)
		}
		if !c.ViewTransform.Equals(before, 0) {
			t.Errorf("%s: view changed", tt.name)
		}
	}
}

func TestUpdatePose(t *testing.T) {
	start := Pose{
		Position: math.NewPointOrigin(),
		Target:   math.NewPoint(0, 0, -1),
		Up:       math.NewVectorUp(),
	}
	tests := []struct {
		name       string
		intent     MovementIntent
		wantPos    math.Point
		wantTarget math.Point
		wantUp     math.Vector
	}{
		{"idle", MovementIntent{}, math.NewPointOrigin(), math.NewPoint(0, 0, -1), math.NewVectorUp()},
		{"forward", MovementIntent{Forward: 2}, math.NewPoint(0, 0, -2), math.NewPoint(0, 0, -3), math.NewVectorUp()},
		{"strafe right", MovementIntent{Right: 1}, math.NewPoint(1, 0, 0), math.NewPoint(1, 0, -1), math.NewVectorUp()},
		{"rise", MovementIntent{Up: 3}, math.NewPoint(0, 3, 0), math.NewPoint(0, 3, -1), math.NewVectorUp()},
		{"yaw left", MovementIntent{Yaw: math.K_HALF_PI}, math.NewPointOrigin(), math.NewPoint(-1, 0, 0), math.NewVectorUp()},
		{"pitch up", MovementIntent{Pitch: math.K_HALF_PI}, math.NewPointOrigin(), math.NewPoint(0, 1, 0), math.NewVector(0, 0, 1)},
		{"turn then move", MovementIntent{Yaw: -math.K_HALF_PI, Forward: 1}, math.NewPoint(1, 0, 0), math.NewPoint(2, 0, 0), math.NewVectorUp()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdatePose(start, tt.intent)
			if !got.Position.Compare(tt.wantPos, tolerance) {
				t.Errorf("position = %v, want %v", got.Position, tt.wantPos)
			}
			if !got.Target.Compare(tt.wantTarget, tolerance) {
				t.Errorf("target = %v, want %v", got.Target, tt.wantTarget)
			}
			if !got.Up.Compare(tt.wantUp, tolerance) {
				t.Errorf("up = %v, want %v", got.Up, tt.wantUp)
			}
		})
	}
}

func TestUpdatePoseKeepsTargetDistance(t *testing.T) {
	p := Pose{Position: math.NewPoint(1, 2, 3), Target: math.NewPoint(1, 2, -7), Up: math.NewVectorUp()}
	for i := 0; i < 50; i++ {
		p = UpdatePose(p, MovementIntent{Forward: 0.3, Yaw: 0.1, Pitch: 0.05})
	}
	if d := p.Target.Distance(p.Position); !math.FloatEquals(d, 10, 1e-3) {
		t.Errorf("distance drifted to %v", d)
	}
	if l := p.Up.Length(); !math.FloatEquals(l, 1, tolerance) {
		t.Errorf("up length %v", l)
	}
}

func TestUpdatePoseDegenerateIsUnchanged(t *testing.T) {
	p := Pose{Position: math.NewPoint(1, 1, 1), Target: math.NewPoint(1, 1, 1), Up: math.NewVectorUp()}
	if got := UpdatePose(p, MovementIntent{Forward: 1}); got != p {
		t.Errorf("got %+v", got)
	}
}

func TestIntentFromInput(t *testing.T) {
	input := core.NewInputState()
	input.ProcessKey(core.KEY_W, true)
	input.ProcessKey(core.KEY_A, true)
	input.ProcessKey(core.KEY_LEFT, true)
	got := IntentFromInput(input, 10, 2, 0.5)
	want := MovementIntent{Forward: 5, Right: -5, Yaw: 1}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestMouseLook(t *testing.T) {
	input := core.NewInputState()
	input.ProcessMouseMove(100, 100)
	input.Update()
	input.ProcessMouseMove(110, 95)
	if got := MouseLook(input, 0.01); !got.IsZero() {
		t.Errorf("turned without a button: %+v", got)
	}

	// The first frame of a drag only anchors the cursor.
	input.ProcessButton(core.BUTTON_LEFT, true)
	if got := MouseLook(input, 0.01); !got.IsZero() {
		t.Errorf("turned on press: %+v", got)
	}
	input.Update()
	input.ProcessMouseMove(120, 90)
	got := MouseLook(input, 0.01)
	if !math.FloatEquals(got.Yaw, -0.1, tolerance) || !math.FloatEquals(got.Pitch, 0.05, tolerance) {
		t.Errorf("drag = %+v", got)
	}
	if sum := got.Add(MovementIntent{Forward: 1}); sum.Forward != 1 || sum.Yaw != got.Yaw {
		t.Errorf("add = %+v", sum)
	}
}
