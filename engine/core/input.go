package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions. Hosts translate their native key codes into these.
type KeyCode uint16

const (
	KEY_ENTER    KeyCode = 0x0D
	KEY_TAB      KeyCode = 0x09
	KEY_SHIFT    KeyCode = 0x10
	KEY_ESCAPE   KeyCode = 0x1B
	KEY_SPACE    KeyCode = 0x20
	KEY_LEFT     KeyCode = 0x25
	KEY_UP       KeyCode = 0x26
	KEY_RIGHT    KeyCode = 0x27
	KEY_DOWN     KeyCode = 0x28
	KEY_A        KeyCode = 0x41
	KEY_D        KeyCode = 0x44
	KEY_E        KeyCode = 0x45
	KEY_F        KeyCode = 0x46
	KEY_N        KeyCode = 0x4E
	KEY_P        KeyCode = 0x50
	KEY_Q        KeyCode = 0x51
	KEY_R        KeyCode = 0x52
	KEY_S        KeyCode = 0x53
	KEY_W        KeyCode = 0x57
	KEY_LSHIFT   KeyCode = 0xA0
	KEY_RSHIFT   KeyCode = 0xA1
	KEY_LCONTROL KeyCode = 0xA2

	KEYS_MAX_KEYS KeyCode = 0x100
)

type MouseState struct {
	X       float64
	Y       float64
	Buttons [BUTTON_MAX_BUTTONS]bool
}

type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// InputState is a per-frame snapshot of keyboard and mouse. The host feeds
// it from its event pump, the engine reads it once per frame and then calls
// Update to roll the current state into the previous one.
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState
}

func NewInputState() *InputState {
	return &InputState{}
}

// Update copies the current states into the previous ones.
func (s *InputState) Update() {
	s.KeyboardPrevious = s.KeyboardCurrent
	s.MousePrevious = s.MouseCurrent
}

func (s *InputState) ProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS {
		return
	}
	s.KeyboardCurrent.Keys[key] = pressed
}

func (s *InputState) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS {
		return
	}
	s.MouseCurrent.Buttons[button] = pressed
}

func (s *InputState) ProcessMouseMove(x, y float64) {
	s.MouseCurrent.X = x
	s.MouseCurrent.Y = y
}

func (s *InputState) IsKeyDown(key KeyCode) bool {
	return key < KEYS_MAX_KEYS && s.KeyboardCurrent.Keys[key]
}

func (s *InputState) WasKeyDown(key KeyCode) bool {
	return key < KEYS_MAX_KEYS && s.KeyboardPrevious.Keys[key]
}

// IsKeyPressed reports a key that went down during this frame.
func (s *InputState) IsKeyPressed(key KeyCode) bool {
	return s.IsKeyDown(key) && !s.WasKeyDown(key)
}

func (s *InputState) IsButtonDown(button Button) bool {
	return button < BUTTON_MAX_BUTTONS && s.MouseCurrent.Buttons[button]
}

// MouseDelta returns how far the cursor moved since the previous frame.
func (s *InputState) MouseDelta() (dx, dy float64) {
	return s.MouseCurrent.X - s.MousePrevious.X, s.MouseCurrent.Y - s.MousePrevious.Y
}

// Axis returns +1, -1 or 0 depending on which of the two keys is held.
func (s *InputState) Axis(positive, negative KeyCode) float32 {
	var v float32
	if s.IsKeyDown(positive) {
		v++
	}
	if s.IsKeyDown(negative) {
		v--
	}
	return v
}
