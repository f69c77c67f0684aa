// Package render turns chart specs into servable artifacts: PNG rasters
// for bar, line and scatter shapes, JSON series for radar shapes the
// frontend draws itself.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/chart"
)

const (
	contentTypePNG  = "image/png"
	contentTypeJSON = "application/json"
)

// Renderer renders chart specs with the club palette.
type Renderer struct {
	palette chart.Palette
	width   int
	height  int
}

func New(palette chart.Palette) *Renderer {
	return &Renderer{palette: palette, width: 1024, height: 576}
}

// Render produces the artifact for a spec. Empty specs yield a JSON
// placeholder artifact rather than an error, so a dashboard tile with no
// data yet still resolves.
func (r *Renderer) Render(ctx context.Context, spec chart.Spec) (chart.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return chart.Artifact{}, err
	}

	if spec.Empty() {
		return placeholder(spec.Title, "no data")
	}

	switch spec.Kind {
	case chart.KindBar, chart.KindHBar:
		return r.renderBars(spec)
	case chart.KindLine, chart.KindScatter:
		return r.renderXY(spec)
	case chart.KindRadar:
		// go-chart has no radar shape; the frontend draws it from the
		// series payload.
		return jsonPayload(spec)
	default:
		return chart.Artifact{}, errors.Newf("unknown chart kind %q", spec.Kind)
	}
}

func (r *Renderer) renderBars(spec chart.Spec) (chart.Artifact, error) {
	var bars []gochart.Value
	for _, series := range spec.Series {
		for _, v := range series.Values {
			color := r.color(v.Role)
			bars = append(bars, gochart.Value{
				Label: v.Label,
				Value: v.Value,
				Style: gochart.Style{FillColor: color, StrokeColor: color},
			})
		}
	}

	title := spec.Title
	if spec.ShowMeans {
		title = fmt.Sprintf("%s (media %.1f)", title, spec.YMean)
	}

	graph := gochart.BarChart{
		Title:    title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: 40,
		Bars:     bars,
		YAxis:    gochart.YAxis{Name: spec.YLabel},
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return placeholder(spec.Title, "render failed")
	}

	return chart.Artifact{ContentType: contentTypePNG, Payload: buf.Bytes()}, nil
}

func (r *Renderer) renderXY(spec chart.Spec) (chart.Artifact, error) {
	var series []gochart.Series
	var minX, maxX, minY, maxY float64
	first := true

	for _, s := range spec.Series {
		if len(s.Points) == 0 {
			continue
		}

		xs := make([]float64, 0, len(s.Points))
		ys := make([]float64, 0, len(s.Points))
		for _, p := range s.Points {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
			if first {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				first = false
			} else {
				minX, maxX = min(minX, p.X), max(maxX, p.X)
				minY, maxY = min(minY, p.Y), max(maxY, p.Y)
			}
		}

		color := r.color(s.Role)
		style := gochart.Style{StrokeColor: color}
		if spec.Kind == chart.KindScatter {
			style = gochart.Style{
				StrokeWidth: gochart.Disabled,
				DotWidth:    6,
				DotColor:    color,
			}
		}

		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}

	if spec.ShowMeans {
		mean := gochart.Style{
			StrokeColor:     r.color(chart.RoleAverage),
			StrokeDashArray: []float64{4, 4},
		}
		series = append(series,
			gochart.ContinuousSeries{
				Name:    "Media Y",
				XValues: []float64{minX, maxX},
				YValues: []float64{spec.YMean, spec.YMean},
				Style:   mean,
			},
			gochart.ContinuousSeries{
				Name:    "Media X",
				XValues: []float64{spec.XMean, spec.XMean},
				YValues: []float64{minY, maxY},
				Style:   mean,
			},
		)
	}

	if len(series) == 0 {
		return placeholder(spec.Title, "no data")
	}

	graph := gochart.Chart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		XAxis:  gochart.XAxis{Name: spec.XLabel, Range: paddedRange(minX, maxX)},
		YAxis:  gochart.YAxis{Name: spec.YLabel, Range: paddedRange(minY, maxY)},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return placeholder(spec.Title, "render failed")
	}

	return chart.Artifact{ContentType: contentTypePNG, Payload: buf.Bytes()}, nil
}

// paddedRange widens a degenerate axis so a chart with a single distinct
// coordinate still renders instead of tripping the zero-delta check.
func paddedRange(lo, hi float64) gochart.Range {
	if lo == hi {
		return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

func (r *Renderer) color(role chart.Role) drawing.Color {
	return drawing.ColorFromHex(r.palette.For(role))
}

func placeholder(title, reason string) (chart.Artifact, error) {
	return jsonPayload(map[string]any{
		"placeholder": true,
		"title":       title,
		"reason":      reason,
	})
}

func jsonPayload(v any) (chart.Artifact, error) {
	payload, err := sonic.Marshal(v)
	if err != nil {
		return chart.Artifact{}, errors.Wrap(err, "encode chart payload")
	}

	return chart.Artifact{ContentType: contentTypeJSON, Payload: payload}, nil
}
