// Package visualization renders the level history as a self-contained HTML
// line chart, written to a file or served on localhost.
package visualization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/nvandessel/nback/internal/constants"
	"github.com/nvandessel/nback/internal/history"
)

// Chart canvas size and plot margins, in SVG user units.
const (
	Width  = 800
	Height = 400

	marginTop    = 40
	marginRight  = 40
	marginBottom = 48
	marginLeft   = 48

	// maxDateLabels caps the x-axis labels; dates in between are skipped.
	maxDateLabels = 10
)

// Coord is one plotted value.
type Coord struct {
	X, Y  float64
	Value float64
	Date  string
}

// Series is one line of the chart.
type Series struct {
	Name   string
	Class  string
	Coords []Coord
}

// Points formats the coordinates for an SVG polyline.
func (s Series) Points() string {
	parts := make([]string, len(s.Coords))
	for i, c := range s.Coords {
		parts[i] = fmt.Sprintf("%.1f,%.1f", c.X, c.Y)
	}
	return strings.Join(parts, " ")
}

// Tick is an axis label at Pos.
type Tick struct {
	Pos   float64
	Label string
}

// Chart is the laid-out level chart: max, average and min per day.
type Chart struct {
	Width, Height            int
	Left, Right, Top, Bottom float64

	Series []Series
	YTicks []Tick
	XTicks []Tick
	Days   []history.Point
}

// Layout places each day's max, average and min level on the canvas. The
// y axis spans every level; days are spread evenly along x.
func Layout(points []history.Point) Chart {
	c := Chart{
		Width:  Width,
		Height: Height,
		Left:   marginLeft,
		Right:  Width - marginRight,
		Top:    marginTop,
		Bottom: Height - marginBottom,
		Days:   points,
	}

	for lvl := constants.MinLevel; lvl <= constants.MaxLevel; lvl++ {
		c.YTicks = append(c.YTicks, Tick{Pos: c.y(float64(lvl)), Label: fmt.Sprint(lvl)})
	}

	if len(points) == 0 {
		return c
	}

	every := int(math.Ceil(float64(len(points)) / maxDateLabels))
	for i, p := range points {
		if i%every == 0 {
			c.XTicks = append(c.XTicks, Tick{Pos: c.x(i, len(points)), Label: p.Date})
		}
	}

	c.Series = []Series{
		c.series("max", points, func(p history.Point) float64 { return float64(p.Max) }),
		c.series("avg", points, func(p history.Point) float64 { return p.Avg }),
		c.series("min", points, func(p history.Point) float64 { return float64(p.Min) }),
	}
	return c
}

func (c Chart) series(name string, points []history.Point, value func(history.Point) float64) Series {
	s := Series{Name: name, Class: name, Coords: make([]Coord, len(points))}
	for i, p := range points {
		v := value(p)
		s.Coords[i] = Coord{X: c.x(i, len(points)), Y: c.y(v), Value: v, Date: p.Date}
	}
	return s
}

func (c Chart) x(i, n int) float64 {
	if n == 1 {
		return (c.Left + c.Right) / 2
	}
	return c.Left + float64(i)*(c.Right-c.Left)/float64(n-1)
}

func (c Chart) y(level float64) float64 {
	lo, hi := float64(constants.MinLevel), float64(constants.MaxLevel)
	level = math.Max(lo, math.Min(hi, level))
	return c.Bottom - (level-lo)/(hi-lo)*(c.Bottom-c.Top)
}

// htmlTemplateData holds data passed to the HTML template.
// SeriesJSON is pre-sanitized JSON (via json.HTMLEscape) safe for inline <script>.
type htmlTemplateData struct {
	Chart
	Title      string
	Message    string
	SeriesJSON template.JS
}

// RenderHTML produces a self-contained HTML page charting points. With no
// points the page carries the insufficient-data message instead of a chart.
func RenderHTML(points []history.Point) ([]byte, error) {
	if points == nil {
		points = []history.Point{}
	}

	seriesJSON, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("marshal series: %w", err)
	}

	tmplBytes, err := templates.ReadFile("templates/chart.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read HTML template: %w", err)
	}

	tmpl, err := template.New("chart").Parse(string(tmplBytes))
	if err != nil {
		return nil, fmt.Errorf("parse HTML template: %w", err)
	}

	var escaped bytes.Buffer
	json.HTMLEscape(&escaped, seriesJSON)

	data := htmlTemplateData{
		Chart:      Layout(points),
		Title:      "nback level history",
		SeriesJSON: template.JS(escaped.String()), // #nosec G203
	}
	if len(points) == 0 {
		data.Message = history.InsufficientDataMessage
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute HTML template: %w", err)
	}
	return buf.Bytes(), nil
}
