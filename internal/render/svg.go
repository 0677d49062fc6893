package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to render")

// TopEmittersSVG renders ranked rows as a bar chart in SVG. Bars are labelled
// with the country code and value and coloured on the Portland scale.
func TopEmittersSVG(w io.Writer, title string, top []domain.Observation) error {
	if len(top) == 0 {
		return ErrNoData
	}

	bars := make([]chart.Value, len(top))
	for i, o := range top {
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%s %s", o.CountryCode, FormatValue(o.Value)),
			Value: o.Value,
			Style: chart.Style{
				FillColor:   PortlandColor(o.Value),
				StrokeColor: PortlandColor(o.Value),
				StrokeWidth: 1,
			},
		}
	}

	bc := chart.BarChart{
		Title: title,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Width:    1024,
		Height:   512,
		BarWidth: 60,
		XAxis: chart.Style{
			FontColor: drawing.ColorFromHex("8892b0"),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: AxisMax(top)},
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	if err := bc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}
