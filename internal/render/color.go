package render

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Colour range shared by the map and the bar chart, in tonnes per capita.
const (
	ColorMin = 0.0
	ColorMax = 20.0
)

// PortlandScale is the name of the continuous colour scale in Plotly.
const PortlandScale = "Portland"

type colorStop struct {
	at    float64
	color drawing.Color
}

// portland mirrors Plotly's Portland scale so server-rendered charts match
// the browser ones.
var portland = []colorStop{
	{0, drawing.Color{R: 12, G: 51, B: 131, A: 255}},
	{0.25, drawing.Color{R: 10, G: 136, B: 186, A: 255}},
	{0.5, drawing.Color{R: 242, G: 211, B: 56, A: 255}},
	{0.75, drawing.Color{R: 242, G: 143, B: 56, A: 255}},
	{1, drawing.Color{R: 217, G: 30, B: 30, A: 255}},
}

// PortlandColor maps v onto the Portland scale over [ColorMin, ColorMax].
// Values outside the range take the end colours.
func PortlandColor(v float64) drawing.Color {
	if math.IsNaN(v) {
		return portland[0].color
	}
	t := (v - ColorMin) / (ColorMax - ColorMin)
	t = math.Max(0, math.Min(1, t))

	for i := 1; i < len(portland); i++ {
		lo, hi := portland[i-1], portland[i]
		if t > hi.at {
			continue
		}
		f := (t - lo.at) / (hi.at - lo.at)
		return drawing.Color{
			R: lerp(lo.color.R, hi.color.R, f),
			G: lerp(lo.color.G, hi.color.G, f),
			B: lerp(lo.color.B, hi.color.B, f),
			A: 255,
		}
	}
	return portland[len(portland)-1].color
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}
