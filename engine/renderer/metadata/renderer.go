package metadata

const (
	/** @brief Width and height of a directional light's depth target. */
	DEFAULT_SHADOW_RESOLUTION uint32 = 2048
	/** @brief Depth offset that keeps surfaces from shadowing themselves. */
	DEFAULT_SHADOW_BIAS float32 = 0.01
)

type RenderBufferType uint8

const (
	/** @brief Per-vertex attribute data, float32 components. */
	RENDERBUFFER_TYPE_VERTEX RenderBufferType = iota
	/** @brief Triangle indices, uint32. */
	RENDERBUFFER_TYPE_INDEX
)

/**
 * @brief A buffer uploaded to the backend.
 */
type RenderBuffer struct {
	/** @brief The backend handle. */
	ID   uint32
	Type RenderBufferType
	/** @brief Number of float32 or uint32 elements stored. */
	ElementCount uint32
	/** @brief Backend private data. */
	InternalData interface{}
}

/**
 * @brief An off-screen destination bundling a color attachment that can be
 * sampled and a depth attachment used for depth testing.
 */
type RenderTarget struct {
	/** @brief The backend handle. */
	ID     uint32
	Name   string
	Width  uint32
	Height uint32
	/** @brief Color attachment. Depth passes write window depth into its blue channel. */
	ColorAttachment *Texture
	/** @brief Depth attachment. */
	DepthAttachment *Texture
	/** @brief Set by the backend once the completeness check passed. */
	Complete bool
	/** @brief The renderer API internal framebuffer object. */
	InternalFramebuffer interface{}
}
