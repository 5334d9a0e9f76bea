package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/umbra/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

/**
 * @brief A GLFW window with an OpenGL 4.1 core context. Key events are
 * translated into the engine key codes and written to the input snapshot;
 * the framebuffer size is the render surface size.
 */
type Platform struct {
	Window *glfw.Window
	input  *core.InputState

	width  uint32
	height uint32
}

func New(input *core.InputState) *Platform {
	return &Platform{
		Window: nil,
		input:  input,
	}
}

func (p *Platform) Startup(applicationName string, x int32, y int32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	// HiDPI displays report a framebuffer larger than the window.
	fw, fh := p.Window.GetFramebufferSize()
	p.framebufferSizeCallback(p.Window, fw, fh)

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events. It returns false once the
// window was asked to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

func (p *Platform) SwapBuffers() {
	p.Window.SwapBuffers()
}

// Size returns the framebuffer size in pixels.
func (p *Platform) Size() (uint32, uint32) {
	return p.width, p.height
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
		return
	}
	code, ok := translateKey(key)
	if !ok {
		return
	}
	p.input.ProcessKey(code, action == glfw.Press)
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	var b core.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = core.BUTTON_LEFT
	case glfw.MouseButtonRight:
		b = core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		b = core.BUTTON_MIDDLE
	default:
		return
	}
	p.input.ProcessButton(b, action == glfw.Press)
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	p.input.ProcessMouseMove(xpos, ypos)
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if width < 0 || height < 0 {
		return
	}
	if uint32(width) != p.width || uint32(height) != p.height {
		core.LogDebug("framebuffer resized to %dx%d", width, height)
	}
	p.width, p.height = uint32(width), uint32(height)
}

// Letters and the arrow keys are all the engine reads.
func translateKey(key glfw.Key) (core.KeyCode, bool) {
	switch {
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return core.KeyCode(key), true
	case key == glfw.KeyLeft:
		return core.KEY_LEFT, true
	case key == glfw.KeyRight:
		return core.KEY_RIGHT, true
	case key == glfw.KeyUp:
		return core.KEY_UP, true
	case key == glfw.KeyDown:
		return core.KEY_DOWN, true
	case key == glfw.KeySpace:
		return core.KEY_SPACE, true
	case key == glfw.KeyEnter:
		return core.KEY_ENTER, true
	case key == glfw.KeyTab:
		return core.KEY_TAB, true
	case key == glfw.KeyLeftShift:
		return core.KEY_LSHIFT, true
	case key == glfw.KeyRightShift:
		return core.KEY_RSHIFT, true
	case key == glfw.KeyLeftControl:
		return core.KEY_LCONTROL, true
	}
	return 0, false
}
