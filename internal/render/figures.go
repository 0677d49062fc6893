// Package render turns table slices into Plotly figures, images, and
// downloadable files.
package render

import (
	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
)

// TopN is the number of countries in the Top Emitters chart.
const TopN = 10

// ValueLabel names the plotted quantity in legends and hover text.
const ValueLabel = "CO₂ (t/capita)"

// Dashboard palette.
const (
	colorText      = "#e6f1ff"
	colorMuted     = "#8892b0"
	colorClear     = "rgba(0,0,0,0)"
	colorGrid      = "rgba(100, 255, 218, 0.05)"
	colorCoastline = "rgba(100, 255, 218, 0.1)"
	colorLand      = "rgba(100, 255, 218, 0.02)"
	colorAxisLine  = "#283442"
	colorHoverBG   = "#112240"
	fontFamily     = "Inter, sans-serif"
)

// Figure is a Plotly figure: traces plus layout, serialized as-is for
// Plotly.react in the browser.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace covers the fields used by the choropleth and bar traces.
type Trace struct {
	Type          string    `json:"type"`
	Locations     []string  `json:"locations,omitempty"`
	LocationMode  string    `json:"locationmode,omitempty"`
	Z             []float64 `json:"z,omitempty"`
	ZMin          *float64  `json:"zmin,omitempty"`
	ZMax          *float64  `json:"zmax,omitempty"`
	Colorscale    string    `json:"colorscale,omitempty"`
	ColorBar      *ColorBar `json:"colorbar,omitempty"`
	X             []string  `json:"x,omitempty"`
	Y             []float64 `json:"y,omitempty"`
	Text          []float64 `json:"text,omitempty"`
	HoverText     []string  `json:"hovertext,omitempty"`
	TextTemplate  string    `json:"texttemplate,omitempty"`
	TextPosition  string    `json:"textposition,omitempty"`
	TextFont      *Font     `json:"textfont,omitempty"`
	HoverTemplate string    `json:"hovertemplate,omitempty"`
	Marker        *Marker   `json:"marker,omitempty"`
}

// Marker colours bars by value on a continuous scale.
type Marker struct {
	Color      []float64 `json:"color"`
	Colorscale string    `json:"colorscale"`
	CMin       float64   `json:"cmin"`
	CMax       float64   `json:"cmax"`
	ShowScale  bool      `json:"showscale"`
}

type ColorBar struct {
	Title     Title   `json:"title"`
	Thickness int     `json:"thickness"`
	Len       float64 `json:"len"`
	TickFont  *Font   `json:"tickfont,omitempty"`
}

type Title struct {
	Text string `json:"text"`
}

type Font struct {
	Family string `json:"family,omitempty"`
	Color  string `json:"color,omitempty"`
	Size   int    `json:"size,omitempty"`
}

type Margin struct {
	R int `json:"r"`
	T int `json:"t"`
	L int `json:"l"`
	B int `json:"b"`
}

type Geo struct {
	BGColor        string     `json:"bgcolor"`
	ShowLakes      bool       `json:"showlakes"`
	ShowFrame      bool       `json:"showframe"`
	Projection     Projection `json:"projection"`
	CoastlineColor string     `json:"coastlinecolor"`
	LandColor      string     `json:"landcolor"`
}

type Projection struct {
	Type string `json:"type"`
}

type Axis struct {
	ShowGrid       *bool     `json:"showgrid,omitempty"`
	GridColor      string    `json:"gridcolor,omitempty"`
	LineColor      string    `json:"linecolor,omitempty"`
	ZeroLineColor  string    `json:"zerolinecolor,omitempty"`
	ShowTickLabels *bool     `json:"showticklabels,omitempty"`
	Range          []float64 `json:"range,omitempty"`
	CategoryOrder  string    `json:"categoryorder,omitempty"`
	TickFont       *Font     `json:"tickfont,omitempty"`
	Title          *Title    `json:"title,omitempty"`
}

type HoverLabel struct {
	BGColor     string `json:"bgcolor"`
	BorderColor string `json:"bordercolor"`
	Font        Font   `json:"font"`
}

// Layout spells out the dark theme colours; Plotly.js has no named templates.
type Layout struct {
	PaperBGColor string     `json:"paper_bgcolor"`
	PlotBGColor  string     `json:"plot_bgcolor"`
	Margin       Margin     `json:"margin"`
	Font         Font       `json:"font"`
	HoverLabel   HoverLabel `json:"hoverlabel"`
	Geo          *Geo       `json:"geo,omitempty"`
	XAxis        *Axis      `json:"xaxis,omitempty"`
	YAxis        *Axis      `json:"yaxis,omitempty"`
	ShowLegend   bool       `json:"showlegend"`
}

func darkLayout(margin Margin) Layout {
	return Layout{
		PaperBGColor: colorClear,
		PlotBGColor:  colorClear,
		Margin:       margin,
		Font:         Font{Family: fontFamily, Color: colorText},
		HoverLabel: HoverLabel{
			BGColor:     colorHoverBG,
			BorderColor: colorAxisLine,
			Font:        Font{Family: fontFamily, Color: colorText},
		},
	}
}

func darkAxis() *Axis {
	return &Axis{
		GridColor:     colorGrid,
		LineColor:     colorAxisLine,
		ZeroLineColor: colorAxisLine,
	}
}

// ChoroplethFigure shades each country by its value for one year.
func ChoroplethFigure(rows []domain.Observation) Figure {
	locations := make([]string, len(rows))
	z := make([]float64, len(rows))
	names := make([]string, len(rows))
	for i, o := range rows {
		locations[i] = o.CountryCode
		z[i] = o.Value
		names[i] = o.CountryName
	}

	layout := darkLayout(Margin{})
	layout.Geo = &Geo{
		BGColor:        colorClear,
		Projection:     Projection{Type: "natural earth"},
		CoastlineColor: colorCoastline,
		LandColor:      colorLand,
	}

	zmin, zmax := ColorMin, ColorMax
	return Figure{
		Data: []Trace{{
			Type:          "choropleth",
			Locations:     locations,
			LocationMode:  "ISO-3",
			Z:             z,
			ZMin:          &zmin,
			ZMax:          &zmax,
			Colorscale:    PortlandScale,
			HoverText:     names,
			HoverTemplate: "<b>%{hovertext}</b><br>" + ValueLabel + "=%{z}<extra></extra>",
			ColorBar: &ColorBar{
				Title:     Title{Text: "t/capita"},
				Thickness: 15,
				Len:       0.6,
				TickFont:  &Font{Color: colorMuted},
			},
		}},
		Layout: layout,
	}
}

// TopEmittersFigure draws the given rows, assumed already ranked, as a
// vertical bar chart with one-decimal value labels above each bar.
func TopEmittersFigure(top []domain.Observation) Figure {
	names := make([]string, len(top))
	values := make([]float64, len(top))
	for i, o := range top {
		names[i] = o.CountryName
		values[i] = o.Value
	}

	showGrid, showTicks := true, true
	layout := darkLayout(Margin{T: 20})
	layout.XAxis = darkAxis()
	layout.XAxis.CategoryOrder = "total descending"
	layout.XAxis.TickFont = &Font{Color: colorText, Size: 11}
	layout.YAxis = darkAxis()
	layout.YAxis.ShowGrid = &showGrid
	layout.YAxis.ShowTickLabels = &showTicks
	layout.YAxis.Range = []float64{0, AxisMax(top)}

	return Figure{
		Data: []Trace{{
			Type:          "bar",
			X:             names,
			Y:             values,
			Text:          values,
			TextTemplate:  "%{text:.1f}",
			TextPosition:  "outside",
			TextFont:      &Font{Color: colorMuted, Size: 11},
			HoverTemplate: "%{x}<br>" + ValueLabel + "=%{y}<extra></extra>",
			Marker: &Marker{
				Color:      values,
				Colorscale: PortlandScale,
				CMin:       ColorMin,
				CMax:       ColorMax,
			},
		}},
		Layout: layout,
	}
}

// AxisMax is the bar chart's y-axis ceiling: 15% headroom over the largest
// value so labels fit above the bars. An empty or non-positive set gets 1.
func AxisMax(rows []domain.Observation) float64 {
	var top float64
	for _, o := range rows {
		top = max(top, o.Value)
	}
	if top <= 0 {
		return 1
	}
	return top * 1.15
}
