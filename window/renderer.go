package window

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cavern/ui"
)

// Renderer draws laid-out items with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(rect rl.Rectangle) {
	x, y := int32(rect.X), int32(rect.Y)
	w, h := int32(rect.Width), int32(rect.Height)
	rl.DrawRectangle(x, y, w, h, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, w, h, r.Theme.PanelBorder)
}

// DrawLabelValue draws a label and its value on one line.
func (r *Renderer) DrawLabelValue(rect rl.Rectangle, label, value string) {
	x, y := int32(rect.X), int32(rect.Y)
	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
}

// DrawError draws a full-width error banner.
func (r *Renderer) DrawError(width int32, msg string) {
	h := r.Theme.LineHeight + 2*r.Theme.Padding
	rl.DrawRectangle(0, 0, width, h, r.Theme.ErrorBg)
	rl.DrawText(msg, r.Theme.Padding, r.Theme.Padding, r.Theme.FontSize, r.Theme.ErrorText)
}

// Draw draws items and returns the ids of buttons pressed this frame.
func (r *Renderer) Draw(items []Item) []string {
	var pressed []string
	for _, it := range items {
		n := it.Node
		switch {
		case n.ID == ui.IDDungeonMap:
			r.DrawPanel(it.Rect)
		case n.IsButton():
			if gui.Button(it.Rect, n.Caption) {
				pressed = append(pressed, n.ID)
			}
		case n.IsContainer():
		default:
			r.DrawLabelValue(it.Rect, n.Label, n.Value)
		}
	}
	return pressed
}
