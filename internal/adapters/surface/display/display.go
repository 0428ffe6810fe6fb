// Package display records draw calls as a list of commands a Canvas2D front
// end can replay verbatim.
package display

import (
	"encoding/json"

	"github.com/okian/timeline/internal/domain/render"
)

// Command ops.
const (
	OpClear    = "clear"
	OpFillRect = "fillRect"
	OpFillText = "fillText"
)

// Command is one drawing operation, named after the Canvas2D call it maps to.
type Command struct {
	Op      string  `json:"op"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Text    string  `json:"text,omitempty"`
	Font    string  `json:"font,omitempty"`
	Fill    string  `json:"fill,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

// Frame is a complete display list with the surface size it was drawn for.
type Frame struct {
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Commands []Command `json:"commands"`
}

// Surface collects Commands. Text is measured by estimate since the real
// metrics belong to the front end.
type Surface struct {
	width, height int
	commands      []Command
}

// New returns an empty display list of the given size.
func New(width, height int) *Surface {
	return &Surface{width: width, height: height, commands: []Command{}}
}

func (s *Surface) Size() (int, int) { return s.width, s.height }

// Clear drops every recorded command and records a clear.
func (s *Surface) Clear() {
	s.commands = append(s.commands[:0], Command{Op: OpClear, Width: float64(s.width), Height: float64(s.height)})
}

func (s *Surface) FillRect(r render.Rect, p render.Paint) {
	s.commands = append(s.commands, Command{
		Op:      OpFillRect,
		X:       r.X,
		Y:       r.Y,
		Width:   r.W,
		Height:  r.H,
		Fill:    p.Color,
		Opacity: opacity(p),
	})
}

func (s *Surface) FillText(text string, x, y float64, f render.Font, p render.Paint) {
	s.commands = append(s.commands, Command{
		Op:      OpFillText,
		X:       x,
		Y:       y,
		Text:    text,
		Font:    f.CSSFont(),
		Fill:    p.Color,
		Opacity: opacity(p),
	})
}

func (s *Surface) MeasureText(text string, f render.Font) float64 {
	return render.EstimateTextWidth(text, f)
}

// Commands returns the recorded commands in painter's order.
func (s *Surface) Commands() []Command { return s.commands }

// Frame returns the display list with its size.
func (s *Surface) Frame() Frame {
	return Frame{Width: s.width, Height: s.height, Commands: s.commands}
}

// JSON serialises the frame.
func (s *Surface) JSON() ([]byte, error) {
	return json.Marshal(s.Frame())
}

// opacity is omitted from the output when the paint is opaque.
func opacity(p render.Paint) float64 {
	if a := p.Alpha(); a < 1 {
		return a
	}
	return 0
}
