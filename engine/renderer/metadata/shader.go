package metadata

import (
	"fmt"
	"sort"
	"strings"
)

/**
 * @brief Everything a backend needs to build one shader program.
 */
type ShaderConfig struct {
	/** @brief The program name. Backends without a GLSL compiler use it to pick a native kernel. */
	Name string
	/** @brief GLSL source of the vertex stage. */
	VertexSource string
	/** @brief GLSL source of the fragment stage. */
	FragmentSource string
	/** @brief Vertex attribute names the program reads. */
	Attributes []string
	/** @brief Compile-time constants already substituted into the sources. */
	Defines map[string]int
}

// Key identifies the program variant: two configs with the same key
// compile to the same program.
func (c *ShaderConfig) Key() string {
	keys := make([]string, 0, len(c.Defines))
	for k := range c.Defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(c.Name)
	for _, k := range keys {
		fmt.Fprintf(&b, ";%s=%d", k, c.Defines[k])
	}
	return b.String()
}

// Define returns the value of a compile-time constant, or 0.
func (c *ShaderConfig) Define(name string) int {
	return c.Defines[name]
}

/**
 * @brief A compiled and linked shader program on the backend.
 */
type Shader struct {
	/** @brief The backend handle. */
	ID     uint32
	Name   string
	Config *ShaderConfig
	/** @brief Backend private data. */
	InternalData interface{}
}
