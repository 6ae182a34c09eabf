// internal/actuator/types.go
package actuator

// MouseEventType defines the type of mouse event.
// The strings are the Input.dispatchMouseEvent type names.
type MouseEventType string

const (
	MouseMove    MouseEventType = "mouseMoved"
	MousePress   MouseEventType = "mousePressed"
	MouseRelease MouseEventType = "mouseReleased"
)

// MouseButton defines the mouse button.
type MouseButton string

const (
	ButtonNone MouseButton = "none"
	ButtonLeft MouseButton = "left"
)

// MouseEventData holds the data required to dispatch a mouse event.
type MouseEventData struct {
	Type MouseEventType
	X    float64
	Y    float64
	// Button pressed or released. Only meaningful for press and release events.
	Button MouseButton
	// Buttons is the bitfield of buttons currently held (1: left).
	Buttons    int64
	ClickCount int
}
