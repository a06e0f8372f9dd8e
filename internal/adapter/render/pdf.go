package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/couchcryptid/lightning-report-etl/internal/analysis"
)

// Page geometry in millimetres, A4 landscape.
const (
	pageW   = 297.0
	plotX   = 30.0
	plotY   = 28.0
	plotW   = 235.0
	plotH   = 140.0
	yTicks  = 5
	barFill = 0.8
)

// Series is one set of bar values.
type Series struct {
	Name   string
	Color  string
	Values []int
}

// BarChart is a vertical bar chart. With more than one series the bars of
// each label are drawn side by side and a legend is added.
type BarChart struct {
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Series []Series
}

// DensityChart is a 2-D histogram drawn as coloured cells. Counts above
// Clamp share the top colour.
type DensityChart struct {
	Title string
	Grid  analysis.Grid
	Clamp int
}

func newPage(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.SetXY(0, 10)
	pdf.CellFormat(pageW, 8, title, "", 0, "C", false, 0, "")
	return pdf
}

func finish(pdf *gofpdf.Fpdf, w io.Writer, title string) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render %q: %w", title, err)
	}
	return nil
}

// WriteBarChart renders c as a one-page PDF.
func WriteBarChart(w io.Writer, c BarChart) error {
	pdf := newPage(c.Title)

	top := 0
	for _, s := range c.Series {
		for _, v := range s.Values {
			top = max(top, v)
		}
	}
	step := niceStep(top, yTicks)
	yMax := float64(step * yTicks)

	pdf.SetFont("Arial", "", 8)
	pdf.SetDrawColor(200, 200, 200)
	for i := 0; i <= yTicks; i++ {
		y := plotY + plotH - plotH*float64(i)/yTicks
		pdf.Line(plotX, y, plotX+plotW, y)
		pdf.SetXY(plotX-22, y-2)
		pdf.CellFormat(20, 4, strconv.Itoa(step*i), "", 0, "R", false, 0, "")
	}

	n := len(c.Labels)
	if n > 0 && len(c.Series) > 0 {
		slot := plotW / float64(n)
		barW := slot * barFill / float64(len(c.Series))
		for si, s := range c.Series {
			r, g, b := colorRGB(s.Color)
			pdf.SetFillColor(r, g, b)
			for i := 0; i < n && i < len(s.Values); i++ {
				h := plotH * float64(s.Values[i]) / yMax
				x := plotX + slot*float64(i) + slot*(1-barFill)/2 + barW*float64(si)
				pdf.Rect(x, plotY+plotH-h, barW, h, "F")
			}
		}
		for i, label := range c.Labels {
			pdf.SetXY(plotX+slot*float64(i), plotY+plotH+1)
			pdf.CellFormat(slot, 4, label, "", 0, "C", false, 0, "")
		}
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(plotX, plotY, plotX, plotY+plotH)
	pdf.Line(plotX, plotY+plotH, plotX+plotW, plotY+plotH)

	pdf.SetFont("Arial", "", 10)
	pdf.SetXY(plotX, plotY+plotH+8)
	pdf.CellFormat(plotW, 5, c.XLabel, "", 0, "C", false, 0, "")
	pdf.TransformBegin()
	pdf.TransformRotate(90, 10, plotY+plotH/2)
	pdf.Text(10-float64(len(c.YLabel))*0.9, plotY+plotH/2, c.YLabel)
	pdf.TransformEnd()

	if len(c.Series) > 1 {
		drawLegend(pdf, c.Series)
	}
	return finish(pdf, w, c.Title)
}

func drawLegend(pdf *gofpdf.Fpdf, series []Series) {
	pdf.SetFont("Arial", "", 8)
	x := plotX + plotW - 30
	y := plotY + 2
	for _, s := range series {
		r, g, b := colorRGB(s.Color)
		pdf.SetFillColor(r, g, b)
		pdf.Rect(x, y, 4, 3, "F")
		pdf.SetXY(x+5, y-0.5)
		pdf.CellFormat(25, 4, s.Name, "", 0, "L", false, 0, "")
		y += 5
	}
}

// WriteDensityChart renders c as a one-page PDF with a colour bar.
func WriteDensityChart(w io.Writer, c DensityChart) error {
	pdf := newPage(c.Title)
	clamp := max(c.Clamp, 1)
	g := c.Grid

	side := plotH
	x0 := (pageW - side) / 2
	cell := side / float64(max(g.Bins, 1))

	for row, cells := range g.Cells {
		y := plotY + side - cell*float64(row+1)
		for col, v := range cells {
			r, gr, b := viridis(float64(min(v, clamp)) / float64(clamp))
			pdf.SetFillColor(r, gr, b)
			pdf.Rect(x0+cell*float64(col), y, cell, cell, "F")
		}
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(x0, plotY, side, side, "D")

	pdf.SetFont("Arial", "", 8)
	reg := g.Region
	pdf.Text(x0-2, plotY+side+5, fmt.Sprintf("%.2f", reg.LonMin))
	pdf.Text(x0+side-8, plotY+side+5, fmt.Sprintf("%.2f", reg.LonMax))
	pdf.Text(x0-12, plotY+side, fmt.Sprintf("%.2f", reg.LatMin))
	pdf.Text(x0-12, plotY+3, fmt.Sprintf("%.2f", reg.LatMax))
	pdf.SetFont("Arial", "", 10)
	pdf.SetXY(x0, plotY+side+7)
	pdf.CellFormat(side, 5, "Longitude", "", 0, "C", false, 0, "")
	pdf.Text(x0-25, plotY+side/2, "Latitude")

	barX := x0 + side + 10
	steps := 50
	stepH := side / float64(steps)
	for i := range steps {
		r, gr, b := viridis(float64(i) / float64(steps-1))
		pdf.SetFillColor(r, gr, b)
		pdf.Rect(barX, plotY+side-stepH*float64(i+1), 6, stepH, "F")
	}
	pdf.SetFont("Arial", "", 8)
	for v := 0; v <= clamp; v++ {
		y := plotY + side - side*float64(v)/float64(clamp)
		pdf.Text(barX+8, y+1, strconv.Itoa(v))
	}
	return finish(pdf, w, c.Title)
}

// niceStep picks a round tick step so that ticks*step covers top.
func niceStep(top, ticks int) int {
	if top <= 0 {
		return 1
	}
	raw := float64(top) / float64(ticks)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * mag; step >= raw {
			return max(int(math.Ceil(step)), 1)
		}
	}
	return int(math.Ceil(raw))
}

var viridisStops = [][3]float64{
	{68, 1, 84},
	{59, 82, 139},
	{33, 145, 140},
	{94, 201, 98},
	{253, 231, 37},
}

// viridis maps t in [0, 1] onto the viridis colour map.
func viridis(t float64) (int, int, int) {
	t = min(max(t, 0), 1)
	pos := t * float64(len(viridisStops)-1)
	i := min(int(pos), len(viridisStops)-2)
	f := pos - float64(i)
	a, b := viridisStops[i], viridisStops[i+1]
	lerp := func(k int) int { return int(math.Round(a[k] + (b[k]-a[k])*f)) }
	return lerp(0), lerp(1), lerp(2)
}

var namedColors = map[string][3]int{
	"red":    {214, 39, 40},
	"blue":   {31, 119, 180},
	"orange": {255, 127, 14},
	"green":  {44, 160, 44},
	"purple": {148, 103, 189},
	"brown":  {140, 86, 75},
	"pink":   {227, 119, 194},
	"gray":   {127, 127, 127},
	"olive":  {188, 189, 34},
	"cyan":   {23, 190, 207},
	"black":  {0, 0, 0},
}

// colorRGB resolves a colour name or #rrggbb. Unknown values are gray.
func colorRGB(s string) (int, int, int) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c[0], c[1], c[2]
	}
	if len(s) == 7 && s[0] == '#' {
		if v, err := strconv.ParseUint(s[1:], 16, 32); err == nil {
			return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
		}
	}
	return 127, 127, 127
}
