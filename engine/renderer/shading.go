package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/math"
	"github.com/spaghettifunk/umbra/engine/renderer/components"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
)

const (
	textureUnitMap uint32 = 0
	// Shadow maps take the units after the material's map.
	textureUnitShadowBase uint32 = 1
)

/**
 * @brief The scene's lights prepared once per frame for the shading pass,
 * in the camera's view space.
 */
type frameLights struct {
	ambient []math.Vec3

	dirDirections []math.Vec3
	dirColors     []math.Vec3
	dirViewProjs  []math.Transform
	dirTargets    []*metadata.RenderTarget

	pointPositions []math.Vec3
	pointColors    []math.Vec3
}

// Light directions are vectors and never pick up the view translation;
// point light positions are points and do.
func prepareLights(scene *metadata.Scene, camera *components.Camera, shadows []shadowCaster) *frameLights {
	view := camera.ViewTransform
	l := &frameLights{ambient: scene.AmbientLights}
	for _, s := range shadows {
		l.dirDirections = append(l.dirDirections, view.TransformVector(s.light.Direction).ToVec3())
		l.dirColors = append(l.dirColors, s.light.Color)
		l.dirViewProjs = append(l.dirViewProjs, s.viewProj)
		l.dirTargets = append(l.dirTargets, s.light.ShadowTarget)
	}
	for _, p := range scene.PointLights {
		l.pointPositions = append(l.pointPositions, view.TransformPoint(p.Position).ToVec3())
		l.pointColors = append(l.pointColors, p.Color)
	}
	return l
}

// setUniform ignores parameters the program optimized away.
func (r *Renderer) setUniform(shader *metadata.Shader, name string, value interface{}) error {
	err := r.backend.SetUniform(shader, name, value)
	if errors.Is(err, core.ErrUnknownUniform) {
		return nil
	}
	return err
}

/**
 * @brief Binds everything the phong program reads for one primitive: the
 * transforms, the material's color source selected by its kind, and every
 * light with its shadow map.
 */
func (r *Renderer) bindShading(shader *metadata.Shader, prim *metadata.Primitive, camera *components.Camera, lights *frameLights) error {
	obj2world := prim.Shape.Obj2World
	modelView := camera.ViewTransform.Mul(obj2world)

	params := []struct {
		name  string
		value interface{}
	}{
		{UNIFORM_MODEL_VIEW, modelView.M},
		{UNIFORM_PROJECTION, camera.ClipTransform.M},
		{UNIFORM_NORMAL_MATRIX, math.NormalTransform(modelView).M},
		{UNIFORM_EYE, camera.Eye().ToVec3()},
		{UNIFORM_SHADOW_BIAS, r.options.ShadowBias},
	}
	for _, p := range params {
		if err := r.setUniform(shader, p.name, p.value); err != nil {
			return err
		}
	}
	if err := r.bindMaterial(shader, prim.Material); err != nil {
		return err
	}
	if !prim.Material.Lit {
		return nil
	}
	return r.bindLights(shader, obj2world, lights)
}

func (r *Renderer) bindMaterial(shader *metadata.Shader, material metadata.Material) error {
	switch material.Kind {
	case metadata.MATERIAL_KIND_NORMAL:
		return nil
	case metadata.MATERIAL_KIND_FLAT_COLOR:
		return r.setUniform(shader, UNIFORM_COLOR, material.Color)
	case metadata.MATERIAL_KIND_TEXTURED:
		tex, err := r.ensureTexture(material.Map, material.Color)
		if err != nil {
			return err
		}
		if err := r.setUniform(shader, UNIFORM_COLOR, material.Color); err != nil {
			return err
		}
		return r.backend.BindTexture(shader, UNIFORM_MAP, textureUnitMap, tex)
	}
	return fmt.Errorf("material kind %d: %w", material.Kind, core.ErrUnknown)
}

func (r *Renderer) bindLights(shader *metadata.Shader, obj2world math.Transform, lights *frameLights) error {
	for i, c := range lights.ambient {
		if err := r.setUniform(shader, UniformElement(UNIFORM_AMBIENT_COLORS, i), c); err != nil {
			return err
		}
	}
	for i := range lights.dirDirections {
		mvp := lights.dirViewProjs[i].Mul(obj2world)
		if err := r.setUniform(shader, UniformElement(UNIFORM_DIR_DIRECTIONS, i), lights.dirDirections[i]); err != nil {
			return err
		}
		if err := r.setUniform(shader, UniformElement(UNIFORM_DIR_COLORS, i), lights.dirColors[i]); err != nil {
			return err
		}
		if err := r.setUniform(shader, UniformElement(UNIFORM_LIGHT_MVPS, i), mvp.M); err != nil {
			return err
		}
		unit := textureUnitShadowBase + uint32(i)
		depth := lights.dirTargets[i].ColorAttachment
		if err := r.backend.BindTexture(shader, UniformElement(UNIFORM_SHADOW_MAPS, i), unit, depth); err != nil {
			return err
		}
	}
	for i := range lights.pointPositions {
		if err := r.setUniform(shader, UniformElement(UNIFORM_POINT_POSITIONS, i), lights.pointPositions[i]); err != nil {
			return err
		}
		if err := r.setUniform(shader, UniformElement(UNIFORM_POINT_COLORS, i), lights.pointColors[i]); err != nil {
			return err
		}
	}
	return nil
}

/**
 * @brief Returns the backend texture to sample for t. File textures start
 * as a 1x1 texture of the placeholder color and request the real pixels
 * once; render target textures resolve to the target's color attachment.
 */
func (r *Renderer) ensureTexture(t *metadata.Texture, placeholder math.Vec4) (*metadata.Texture, error) {
	if t == nil {
		return nil, fmt.Errorf("material has no texture: %w", core.ErrResourceNotFound)
	}
	switch t.Source.Kind {
	case metadata.TEXTURE_SOURCE_RENDER_TARGET:
		if t.Source.Target == nil || t.Source.Target.ColorAttachment == nil {
			return nil, fmt.Errorf("texture %s: render target not created: %w", t.Name, core.ErrResourceNotFound)
		}
		return t.Source.Target.ColorAttachment, nil
	case metadata.TEXTURE_SOURCE_COLOR:
		if t.ID == 0 {
			if err := r.uploadColor(t, t.Source.Color); err != nil {
				return nil, err
			}
		}
		return t, nil
	case metadata.TEXTURE_SOURCE_FILE:
		if t.ID == 0 {
			if err := r.uploadColor(t, placeholder); err != nil {
				return nil, err
			}
			t.Flags |= metadata.TextureFlagBits(metadata.TextureFlagPlaceholder)
		}
		if !t.LoadRequested && r.loader != nil {
			t.LoadRequested = true
			r.fileTextures[t.Source.Path] = append(r.fileTextures[t.Source.Path], t)
			r.loader.LoadTexture(t.Source.Path)
		}
		return t, nil
	}
	return nil, fmt.Errorf("texture source %d: %w", t.Source.Kind, core.ErrUnknown)
}

func (r *Renderer) uploadColor(t *metadata.Texture, c math.Vec4) error {
	t.Width, t.Height, t.ChannelCount = 1, 1, 4
	if err := r.backend.TextureCreate(t, metadata.ColorPixels(c)); err != nil {
		return fmt.Errorf("texture %s: %w", t.Name, err)
	}
	return nil
}

/**
 * @brief Uploads every decoded texture that arrived since the last frame.
 * Never blocks.
 */
func (r *Renderer) drainTextures() {
	if r.loader == nil {
		return
	}
	results := r.loader.Textures()
	for {
		select {
		case data, ok := <-results:
			if !ok {
				return
			}
			r.applyTexture(data)
		default:
			return
		}
	}
}

// applyTexture replaces the pixels of every texture loaded from data.Name.
// Later deliveries of the same name are reloads.
func (r *Renderer) applyTexture(data *metadata.TextureData) {
	for _, t := range r.fileTextures[data.Name] {
		r.backend.TextureDestroy(t)
		t.Width, t.Height, t.ChannelCount = data.Width, data.Height, 4
		if err := r.backend.TextureCreate(t, data.Pixels); err != nil {
			core.LogError("texture %s: upload failed: %s", data.Name, err)
			continue
		}
		t.Generation++
		t.Flags &^= metadata.TextureFlagBits(metadata.TextureFlagPlaceholder)
		core.LogDebug("texture %s: uploaded %dx%d", data.Name, data.Width, data.Height)
	}
}
