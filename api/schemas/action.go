package schemas

// Action is the decision service's response for one request.
// Angle is expressed in degrees; Boost toggles the speed boost.
type Action struct {
	Angle float64 `json:"angle"`
	Boost bool    `json:"speedboost"`
}

// Frame is a raw RGBA capture of the game's render surface, used when the agent
// runs in pixel payload mode instead of sending structured signals.
type Frame struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pixels []byte `json:"-"`
}

// Valid reports whether the pixel buffer matches the declared dimensions.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Pixels) == f.Width*f.Height*4
}
