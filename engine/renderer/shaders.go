package renderer

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
)

const (
	SHADER_NAME_SHADOW_DEPTH = "shadow_depth"
	SHADER_NAME_PHONG        = "phong"
)

// Vertex attributes.
const (
	ATTRIBUTE_POSITION = "aPosition"
	ATTRIBUTE_NORMAL   = "aNormal"
	ATTRIBUTE_TEXCOORD = "aTexCoord"
)

// Uniforms. Array uniforms are addressed element by element through
// UniformElement.
const (
	UNIFORM_LIGHT_MVP       = "uLightMvp"
	UNIFORM_MODEL_VIEW      = "uModelView"
	UNIFORM_PROJECTION      = "uProjection"
	UNIFORM_NORMAL_MATRIX   = "uNormalMatrix"
	UNIFORM_EYE             = "uEye"
	UNIFORM_COLOR           = "uColor"
	UNIFORM_MAP             = "uMap"
	UNIFORM_SHADOW_BIAS     = "uShadowBias"
	UNIFORM_AMBIENT_COLORS  = "uAmbientColors"
	UNIFORM_DIR_DIRECTIONS  = "uDirDirections"
	UNIFORM_DIR_COLORS      = "uDirColors"
	UNIFORM_LIGHT_MVPS      = "uLightMvps"
	UNIFORM_SHADOW_MAPS     = "uShadowMaps"
	UNIFORM_POINT_POSITIONS = "uPointPositions"
	UNIFORM_POINT_COLORS    = "uPointColors"
)

// Compile-time constants of the phong program.
const (
	DEFINE_AMBIENT_COUNT = "AMBIENT_COUNT"
	DEFINE_DIR_COUNT     = "DIR_COUNT"
	DEFINE_POINT_COUNT   = "POINT_COUNT"
	DEFINE_COLOR_SOURCE  = "COLOR_SOURCE"
	DEFINE_LIT           = "LIT"
)

func UniformElement(name string, index int) string {
	return fmt.Sprintf("%s[%d]", name, index)
}

const shadowDepthVertexSource = `#version 410 core
in vec3 aPosition;

uniform mat4 uLightMvp;

void main() {
    gl_Position = uLightMvp * vec4(aPosition, 1.0);
}
`

// Window depth goes to the blue channel so the shading pass can sample it
// from the color attachment.
const shadowDepthFragmentSource = `#version 410 core
out vec4 fragColor;

void main() {
    fragColor = vec4(0.0, 0.0, gl_FragCoord.z, 1.0);
}
`

const phongVertexTemplate = `#version 410 core
#define DIR_COUNT {{.DirCount}}

in vec3 aPosition;
in vec3 aNormal;
in vec2 aTexCoord;

uniform mat4 uModelView;
uniform mat4 uProjection;
uniform mat4 uNormalMatrix;
uniform mat4 uLightMvps[{{size .DirCount}}];

out vec3 vPosition;
out vec3 vNormal;
out vec2 vTexCoord;
out vec4 vLightPositions[{{size .DirCount}}];

void main() {
    vec4 viewPosition = uModelView * vec4(aPosition, 1.0);
    vPosition = viewPosition.xyz;
    vNormal = (uNormalMatrix * vec4(aNormal, 0.0)).xyz;
    vTexCoord = aTexCoord;
    for (int i = 0; i < DIR_COUNT; i++) {
        vLightPositions[i] = uLightMvps[i] * vec4(aPosition, 1.0);
    }
    gl_Position = uProjection * viewPosition;
}
`

const phongFragmentTemplate = `#version 410 core
#define AMBIENT_COUNT {{.AmbientCount}}
#define DIR_COUNT {{.DirCount}}
#define POINT_COUNT {{.PointCount}}

in vec3 vPosition;
in vec3 vNormal;
in vec2 vTexCoord;
in vec4 vLightPositions[{{size .DirCount}}];

uniform vec3 uEye;
uniform vec4 uColor;
uniform float uShadowBias;
{{- if eq .ColorSource .Textured}}
uniform sampler2D uMap;
{{- end}}
uniform vec3 uAmbientColors[{{size .AmbientCount}}];
uniform vec3 uDirDirections[{{size .DirCount}}];
uniform vec3 uDirColors[{{size .DirCount}}];
uniform sampler2D uShadowMaps[{{size .DirCount}}];
uniform vec3 uPointPositions[{{size .PointCount}}];
uniform vec3 uPointColors[{{size .PointCount}}];

out vec4 fragColor;

const vec3 ka = vec3(0.1, 0.05, 0.1);
const vec3 ks = vec3(0.5);
const float shininess = 10.0;

float visibility(sampler2D shadowMap, vec4 lightPosition) {
    vec3 coord = (lightPosition.xyz / lightPosition.w + 1.0) / 2.0;
    if (coord.x < 0.0 || coord.x > 1.0 || coord.y < 0.0 || coord.y > 1.0 || coord.z > 1.0) {
        return 1.0;
    }
    float stored = texture(shadowMap, coord.xy).z;
    return coord.z > stored + uShadowBias ? 0.0 : 1.0;
}

vec3 phong(vec3 kd, vec3 n, vec3 l, vec3 e, vec3 intensity) {
    vec3 diffuse = kd * intensity * max(dot(n, l), 0.0);
    vec3 specular = ks * intensity * pow(max(dot(n, normalize(l + e)), 0.0), shininess);
    return diffuse + specular;
}

void main() {
    vec3 n = normalize(vNormal);
{{- if eq .ColorSource .Normal}}
    vec3 kd = n * 0.5 + 0.5;
{{- else if eq .ColorSource .Textured}}
    vec3 kd = texture(uMap, vTexCoord).rgb;
{{- else}}
    vec3 kd = uColor.rgb;
{{- end}}
{{- if .Lit}}
    vec3 e = normalize(uEye - vPosition);
    vec3 color = vec3(0.0);
    for (int i = 0; i < AMBIENT_COUNT; i++) {
        color += ka * uAmbientColors[i];
    }
    for (int i = 0; i < DIR_COUNT; i++) {
        vec3 l = -normalize(uDirDirections[i]);
        color += phong(kd, n, l, e, uDirColors[i]) * visibility(uShadowMaps[i], vLightPositions[i]);
    }
    for (int i = 0; i < POINT_COUNT; i++) {
        vec3 l = normalize(uPointPositions[i] - vPosition);
        color += phong(kd, n, l, e, uPointColors[i]);
    }
    fragColor = vec4(color, 1.0);
{{- else}}
    fragColor = vec4(kd, 1.0);
{{- end}}
}
`

var (
	phongVertex   = template.Must(template.New("phong.vert").Funcs(shaderFuncs).Parse(phongVertexTemplate))
	phongFragment = template.Must(template.New("phong.frag").Funcs(shaderFuncs).Parse(phongFragmentTemplate))
)

var shaderFuncs = template.FuncMap{
	// GLSL arrays cannot be empty.
	"size": func(n int) int {
		if n < 1 {
			return 1
		}
		return n
	},
}

// phongParams feeds the phong templates.
type phongParams struct {
	AmbientCount int
	DirCount     int
	PointCount   int
	ColorSource  metadata.MaterialKind
	Lit          bool

	Normal   metadata.MaterialKind
	Textured metadata.MaterialKind
}

func ShadowDepthShaderConfig() *metadata.ShaderConfig {
	return &metadata.ShaderConfig{
		Name:           SHADER_NAME_SHADOW_DEPTH,
		VertexSource:   shadowDepthVertexSource,
		FragmentSource: shadowDepthFragmentSource,
		Attributes:     []string{ATTRIBUTE_POSITION},
		Defines:        map[string]int{},
	}
}

/**
 * @brief Generates the phong program variant for a material and the
 * scene's light counts.
 */
func PhongShaderConfig(material metadata.Material, ambient, directional, point int) (*metadata.ShaderConfig, error) {
	params := phongParams{
		AmbientCount: ambient,
		DirCount:     directional,
		PointCount:   point,
		ColorSource:  material.Kind,
		Lit:          material.Lit,
		Normal:       metadata.MATERIAL_KIND_NORMAL,
		Textured:     metadata.MATERIAL_KIND_TEXTURED,
	}
	var vs, fs bytes.Buffer
	if err := phongVertex.Execute(&vs, params); err != nil {
		return nil, fmt.Errorf("phong vertex source: %w", err)
	}
	if err := phongFragment.Execute(&fs, params); err != nil {
		return nil, fmt.Errorf("phong fragment source: %w", err)
	}
	lit := 0
	if material.Lit {
		lit = 1
	}
	return &metadata.ShaderConfig{
		Name:           SHADER_NAME_PHONG,
		VertexSource:   vs.String(),
		FragmentSource: fs.String(),
		Attributes:     []string{ATTRIBUTE_POSITION, ATTRIBUTE_NORMAL, ATTRIBUTE_TEXCOORD},
		Defines: map[string]int{
			DEFINE_AMBIENT_COUNT: ambient,
			DEFINE_DIR_COUNT:     directional,
			DEFINE_POINT_COUNT:   point,
			DEFINE_COLOR_SOURCE:  int(material.Kind),
			DEFINE_LIT:           lit,
		},
	}, nil
}
