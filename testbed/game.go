package testbed

import (
	"github.com/spaghettifunk/umbra/engine"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/math"
	"github.com/spaghettifunk/umbra/engine/renderer/components"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
	"github.com/spaghettifunk/umbra/engine/systems"
)

// WOOD_TEXTURE is looked up in the configured texture directory.
const WOOD_TEXTURE = "wood.png"

type TestGame struct {
	*engine.Game
}

type gameState struct {
	box      *metadata.Primitive
	boxPlace math.Transform
	angle    float32
	spin     float32
}

/**
 * @brief A box hovering above a floor with a sphere beside it, lit by one
 * directional light straight from above. The camera starts at the origin
 * looking down -z.
 */
func NewTestGame() *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			Name:  "testbed",
			State: &gameState{spin: 0.5},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize

	return tg
}

// SetSpin sets how fast the box turns, in radians per second.
func (g *TestGame) SetSpin(radians float32) {
	g.State.(*gameState).spin = radians
}

func (g *TestGame) Initialize(scene *metadata.Scene, camera *components.Camera) error {
	core.LogDebug("TestGame Initialize fn....")
	state := g.State.(*gameState)

	wood := metadata.NewTexturedMaterial(metadata.TextureFromFile(WOOD_TEXTURE), math.NewVec4(0.55, 0.35, 0.2, 1))

	state.boxPlace = math.Translate(0, -20, -80)
	box, err := systems.MakeBox(state.boxPlace, 20, 20, 20)
	if err != nil {
		return err
	}
	state.box = metadata.NewPrimitive("box", box, wood)
	scene.AddPrimitive(state.box)

	floor, err := systems.MakeQuad(math.Translate(0, -50, -80).Mul(math.RotateX(-math.K_HALF_PI)), 120, 120)
	if err != nil {
		return err
	}
	scene.AddPrimitive(metadata.NewPrimitive("floor", floor, metadata.NewTexturedMaterial(metadata.TextureFromFile(WOOD_TEXTURE), math.NewVec4(0.6, 0.6, 0.6, 1))))

	sphere, err := systems.MakeSphere(math.Translate(30, -42, -70), 8, 16, 32)
	if err != nil {
		return err
	}
	scene.AddPrimitive(metadata.NewPrimitive("sphere", sphere, metadata.NewFlatColorMaterial(math.NewVec4(0.8, 0.1, 0.1, 1), true)))

	scene.AddAmbientLight(math.NewVec3(0.1, 0.1, 0.1))
	scene.AddDirectionalLight(metadata.NewDirectionalLight(
		math.NewPoint(0, 100, 0),
		math.NewVector(0, -1, 0),
		math.NewVector(0, 0, -1),
		math.NewVec3(1, 1, 1),
	))

	return camera.LookAt(math.NewPointOrigin(), math.NewPoint(0, 0, -1), math.NewVectorUp())
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	if state.spin == 0 {
		return nil
	}
	state.angle += state.spin * float32(deltaTime)
	state.box.Shape.SetTransform(state.boxPlace.Mul(math.RotateY(state.angle)))
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	core.LogDebug("testbed surface %dx%d", width, height)
	return nil
}
