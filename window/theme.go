package window

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds window styling constants.
type Theme struct {
	Background   rl.Color
	PanelBg      rl.Color
	PanelBorder  rl.Color
	LabelColor   rl.Color
	ValueColor   rl.Color
	ErrorBg      rl.Color
	ErrorText    rl.Color
	Padding      int32
	Indent       int32
	LineHeight   int32
	LabelWidth   int32
	FontSize     int32
	ButtonWidth  int32
	ButtonHeight int32
	MapHeight    int32
}

// DefaultTheme returns the default window theme.
func DefaultTheme() Theme {
	return Theme{
		Background:   rl.Color{R: 12, G: 14, B: 18, A: 255},
		PanelBg:      rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:  rl.Color{R: 60, G: 70, B: 80, A: 255},
		LabelColor:   rl.LightGray,
		ValueColor:   rl.RayWhite,
		ErrorBg:      rl.Color{R: 120, G: 20, B: 20, A: 255},
		ErrorText:    rl.RayWhite,
		Padding:      10,
		Indent:       12,
		LineHeight:   20,
		LabelWidth:   170,
		FontSize:     16,
		ButtonWidth:  120,
		ButtonHeight: 30,
		MapHeight:    120,
	}
}
