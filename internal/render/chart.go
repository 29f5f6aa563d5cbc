package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/i474232898/mollier-diagram/internal/mollier"
)

const (
	FormatPNG = "png"
	FormatSVG = "svg"

	DefaultWidth  = 1024
	DefaultHeight = 768
	MinSize       = 200
	MaxSize       = 4096
)

// ErrInvalidOptions is returned for unsupported formats or sizes.
var ErrInvalidOptions = errors.New("invalid render options")

var (
	curveColor = drawing.Color{R: 150, G: 150, B: 150, A: 255}
	fallback   = chart.ColorAlternateGray
)

// Options controls the rendered output.
type Options struct {
	Format string
	Width  int
	Height int
}

// ContentType returns the MIME type of the rendered output.
func (o Options) ContentType() string {
	if strings.EqualFold(o.Format, FormatSVG) {
		return "image/svg+xml"
	}
	return "image/png"
}

func (o Options) withDefaults() (Options, error) {
	o.Format = strings.ToLower(o.Format)
	if o.Format == "" {
		o.Format = FormatPNG
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Format != FormatPNG && o.Format != FormatSVG {
		return o, fmt.Errorf("%w: format %q (want png or svg)", ErrInvalidOptions, o.Format)
	}
	if o.Width < MinSize || o.Width > MaxSize || o.Height < MinSize || o.Height > MaxSize {
		return o, fmt.Errorf("%w: size %dx%d outside %d..%d", ErrInvalidOptions, o.Width, o.Height, MinSize, MaxSize)
	}
	return o, nil
}

// Render draws the diagram: comfort zones first as translucent rectangles, then
// the reference curves as thin dotted lines, then one line with dots per
// sensor trace. Sensors without points are left out.
func Render(w io.Writer, d mollier.Diagram, opts Options) error {
	opts, err := opts.withDefaults()
	if err != nil {
		return err
	}

	var series []chart.Series
	b := newBounds()

	for _, z := range d.Regions {
		zs := zoneSeries(z)
		b.add(zs.XValues, zs.YValues)
		series = append(series, zs)
	}

	for _, c := range d.Curves {
		if len(c.Points) == 0 {
			continue
		}
		xs, ys := curveXY(c.Points)
		b.add(xs, ys)
		series = append(series, chart.ContinuousSeries{
			Name:    c.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor:     curveColor,
				StrokeWidth:     1,
				StrokeDashArray: []float64{2, 3},
			},
		})
	}

	for _, t := range d.Traces {
		if len(t.Points) == 0 {
			continue
		}
		col := colorOr(t.Color, fallback)
		xs, ys := traceXY(t.Points)
		b.add(xs, ys)
		series = append(series, chart.ContinuousSeries{
			Name:    t.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 1.5,
				DotColor:    col,
				DotWidth:    3,
			},
		})
	}

	if len(series) == 0 {
		return fmt.Errorf("%w: diagram has nothing to draw", ErrInvalidOptions)
	}

	xr, yr := b.ranges()
	ch := chart.Chart{
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: axisLabel(d.Axes.X), Range: xr},
		YAxis:      chart.YAxis{Name: axisLabel(d.Axes.Y), Range: yr},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.LegendLeft(&ch)}

	provider := chart.PNG
	if opts.Format == FormatSVG {
		provider = chart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("render %s: %w", opts.Format, err)
	}
	return nil
}

// zoneSeries draws a region as a closed rectangle path. go-chart only fills a
// line series that also has a stroke, and closes the fill back along the
// first x value, so the filled area is exactly the rectangle.
func zoneSeries(z mollier.ZoneRegion) chart.ContinuousSeries {
	col := colorOr(z.FillColor, fallback)
	return chart.ContinuousSeries{
		Name:    z.Name,
		XValues: []float64{z.X0, z.X1, z.X1, z.X0, z.X0},
		YValues: []float64{z.Y0, z.Y0, z.Y1, z.Y1, z.Y0},
		Style: chart.Style{
			FillColor:   col,
			StrokeColor: col,
			StrokeWidth: 1,
		},
	}
}

func axisLabel(a mollier.Axis) string {
	if a.Unit == "" {
		return a.Title
	}
	return fmt.Sprintf("%s (%s)", a.Title, a.Unit)
}

func colorOr(s string, def drawing.Color) drawing.Color {
	c, err := ParseColor(s)
	if err != nil {
		return def
	}
	return c
}

func curveXY(points []mollier.CurvePoint) ([]float64, []float64) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.TemperatureC, p.EnthalpyKJPerKg
	}
	return xs, ys
}

func traceXY(points []mollier.EnthalpyPoint) ([]float64, []float64) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.TemperatureC, p.EnthalpyKJPerKg
	}
	return xs, ys
}

// bounds tracks the data extent so both axes get an explicit, non-empty range.
type bounds struct {
	minX, maxX, minY, maxY float64
}

func newBounds() *bounds {
	return &bounds{minX: math.Inf(1), maxX: math.Inf(-1), minY: math.Inf(1), maxY: math.Inf(-1)}
}

func (b *bounds) add(xs, ys []float64) {
	for i := range xs {
		b.minX, b.maxX = math.Min(b.minX, xs[i]), math.Max(b.maxX, xs[i])
		b.minY, b.maxY = math.Min(b.minY, ys[i]), math.Max(b.maxY, ys[i])
	}
}

func (b *bounds) ranges() (*chart.ContinuousRange, *chart.ContinuousRange) {
	return padded(b.minX, b.maxX), padded(b.minY, b.maxY)
}

func padded(lo, hi float64) *chart.ContinuousRange {
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
