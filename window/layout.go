package window

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cavern/ui"
)

// Item is a node placed on screen.
type Item struct {
	Node  *ui.Node
	Rect  rl.Rectangle
	Depth int
}

// Layout places the tree top to bottom, indenting each container level.
// The dungeon map gets a fixed-height empty panel.
func Layout(root *ui.Node, theme Theme, width int32) []Item {
	var items []Item
	y := theme.Padding

	var place func(n *ui.Node, depth int)
	place = func(n *ui.Node, depth int) {
		x := theme.Padding + int32(depth)*theme.Indent
		var h int32
		switch {
		case n.ID == ui.IDDungeonMap:
			h = theme.MapHeight
		case n.IsButton():
			h = theme.ButtonHeight
		case n.IsContainer():
			h = 0
		default:
			h = theme.LineHeight
		}

		w := width - x - theme.Padding
		if n.IsButton() {
			w = theme.ButtonWidth
		}
		items = append(items, Item{
			Node:  n,
			Rect:  rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(w), Height: float32(h)},
			Depth: depth,
		})
		if h > 0 {
			y += h + theme.Padding/2
		}

		for _, c := range n.Children {
			place(c, depth+1)
		}
	}
	place(root, 0)
	return items
}
