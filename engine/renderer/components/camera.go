package components

import (
	"github.com/chewxy/math32"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/math"
)

const (
	/** @brief Default vertical field of view, in radians. */
	DEFAULT_CAMERA_FOV float32 = math.K_HALF_PI
	/** @brief Default near plane. The camera looks down -z so planes are negative. */
	DEFAULT_CAMERA_NEAR float32 = -1
	/** @brief Default far plane. */
	DEFAULT_CAMERA_FAR float32 = -1000
)

/**
 * @brief Where the camera stands and what it looks at.
 */
type Pose struct {
	Position math.Point
	Target   math.Point
	Up       math.Vector
}

/**
 * @brief Represents a perspective camera. The projection is derived once
 * from the field of view, aspect and planes; the view transform is rebuilt
 * only through LookAt.
 */
type Camera struct {
	/** @brief Vertical field of view, in radians. */
	FovY float32
	/** @brief Height over width of the surface. */
	Aspect float32
	/** @brief Near plane, negative z in view space. */
	Near float32
	/** @brief Far plane, negative z in view space, less than Near. */
	Far float32

	pose Pose

	/** @brief World space to view space. */
	ViewTransform math.Transform
	/** @brief Maps the view frustum's bounding box to the canonical cube. */
	OrthoTransform math.Transform
	/** @brief Full perspective projection into clip space. */
	ClipTransform math.Transform
}

// NewCamera creates a camera at the origin looking down -z.
func NewCamera(fovY, aspect, near, far float32) *Camera {
	c := &Camera{
		pose: Pose{
			Position: math.NewPointOrigin(),
			Target:   math.NewPoint(0, 0, -1),
			Up:       math.NewVectorUp(),
		},
		ViewTransform: math.NewTransformIdentity(),
	}
	c.SetProjection(fovY, aspect, near, far)
	return c
}

// SetProjection rebuilds the ortho and clip transforms. The view is kept.
func (c *Camera) SetProjection(fovY, aspect, near, far float32) {
	c.FovY, c.Aspect, c.Near, c.Far = fovY, aspect, near, far
	t, r := math.FrustumExtents(fovY, aspect, near)
	c.OrthoTransform = math.Ortho(r, -r, t, -t, near, far)
	c.ClipTransform = c.OrthoTransform.Mul(math.PerspectiveToOrtho(near, far))
}

// SetAspect updates the aspect ratio, typically after the surface resized.
func (c *Camera) SetAspect(aspect float32) {
	if aspect == c.Aspect {
		return
	}
	c.SetProjection(c.FovY, aspect, c.Near, c.Far)
}

/**
 * @brief Places the camera. Only the view transform is recomputed. A
 * degenerate basis leaves the previous view in place and returns the error.
 */
func (c *Camera) LookAt(position, target math.Point, up math.Vector) error {
	view, err := math.LookAt(position, target, up)
	if err != nil {
		return err
	}
	c.ViewTransform = view
	c.pose = Pose{Position: position, Target: target, Up: up}
	return nil
}

// SetPose is LookAt taking a Pose.
func (c *Camera) SetPose(p Pose) error {
	return c.LookAt(p.Position, p.Target, p.Up)
}

func (c *Camera) Pose() Pose {
	return c.pose
}

// ViewProjection returns clip * view.
func (c *Camera) ViewProjection() math.Transform {
	return c.ClipTransform.Mul(c.ViewTransform)
}

// Eye is the view-space origin carried through the ortho transform. The
// shading stage uses it as the viewer position for specular terms.
func (c *Camera) Eye() math.Point {
	return c.OrthoTransform.TransformPoint(math.NewPointOrigin())
}

/**
 * @brief How far the camera should move and turn this frame. Amounts are
 * already scaled by speed and frame time.
 */
type MovementIntent struct {
	/** @brief Distance along the look direction. */
	Forward float32
	/** @brief Distance along the camera's right axis. */
	Right float32
	/** @brief Distance along the camera's up axis. */
	Up float32
	/** @brief Rotation around the up axis, in radians. Positive turns left. */
	Yaw float32
	/** @brief Rotation around the right axis, in radians. Positive looks up. */
	Pitch float32
}

func (m MovementIntent) IsZero() bool {
	return m == MovementIntent{}
}

/**
 * @brief Returns the pose reached from prev after applying intent. Turning
 * happens before moving so that forward follows the new look direction.
 * A pose whose target coincides with its position is returned unchanged.
 */
func UpdatePose(prev Pose, intent MovementIntent) Pose {
	offset := prev.Target.Sub(prev.Position)
	distance := offset.Length()
	if distance == 0 || intent.IsZero() {
		return prev
	}
	look := offset.MulScalar(1 / distance)
	up := prev.Up.Normalize()

	if intent.Yaw != 0 {
		look = math.Rotate(up, intent.Yaw).TransformVector(look)
	}
	right := look.Cross(up)
	if right.LengthSquared() == 0 {
		return prev
	}
	right = right.Normalize()
	if intent.Pitch != 0 {
		pitch := math.Rotate(right, intent.Pitch)
		look = pitch.TransformVector(look).Normalize()
		up = pitch.TransformVector(up).Normalize()
	}

	move := look.MulScalar(intent.Forward).
		Add(right.MulScalar(intent.Right)).
		Add(up.MulScalar(intent.Up))
	position := prev.Position.Add(move)
	return Pose{
		Position: position,
		Target:   position.Add(look.MulScalar(distance)),
		Up:       up,
	}
}

/**
 * @brief Maps the keyboard state to a movement intent: W/S forward, D/A
 * right, E/Q up, arrow keys to turn. speed is in units per second and turn
 * in radians per second.
 */
func IntentFromInput(input *core.InputState, speed, turn, deltaTime float32) MovementIntent {
	step := speed * deltaTime
	angle := turn * deltaTime
	return MovementIntent{
		Forward: input.Axis(core.KEY_W, core.KEY_S) * step,
		Right:   input.Axis(core.KEY_D, core.KEY_A) * step,
		Up:      input.Axis(core.KEY_E, core.KEY_Q) * step,
		Yaw:     input.Axis(core.KEY_LEFT, core.KEY_RIGHT) * angle,
		Pitch:   input.Axis(core.KEY_UP, core.KEY_DOWN) * angle,
	}
}

/**
 * @brief Turns the camera while the left mouse button is held: moving the
 * cursor right turns right, moving it down looks down.
 */
func MouseLook(input *core.InputState, radiansPerPixel float32) MovementIntent {
	if !input.IsButtonDown(core.BUTTON_LEFT) || !input.MousePrevious.Buttons[core.BUTTON_LEFT] {
		return MovementIntent{}
	}
	dx, dy := input.MouseDelta()
	return MovementIntent{
		Yaw:   -float32(dx) * radiansPerPixel,
		Pitch: -float32(dy) * radiansPerPixel,
	}
}

func (m MovementIntent) Add(other MovementIntent) MovementIntent {
	return MovementIntent{
		Forward: m.Forward + other.Forward,
		Right:   m.Right + other.Right,
		Up:      m.Up + other.Up,
		Yaw:     m.Yaw + other.Yaw,
		Pitch:   m.Pitch + other.Pitch,
	}
}

// FieldOfView converts degrees to the radians NewCamera expects.
func FieldOfView(degrees float32) float32 {
	return math32.Abs(math.DegToRad(degrees))
}
