// Package chart renders similarity distributions as overlaid histograms.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	// Bins per histogram.
	Bins = 100

	Width  = 10 * vg.Inch
	Height = 5 * vg.Inch
)

var (
	trueColor  = color.NRGBA{B: 255, A: 77}
	falseColor = color.NRGBA{R: 255, A: 77}
	trueMean   = color.NRGBA{B: 255, A: 153}
	falseMean  = color.NRGBA{R: 255, A: 153}
)

// Distribution describes one true-vs-false comparison to draw.
type Distribution struct {
	Title  string
	XLabel string
	True   []float64
	False  []float64
}

// Render builds the plot: false pairs in red, true pairs in blue, each group
// mean marked with a vertical line.
func Render(d Distribution) (*plot.Plot, error) {
	if len(d.True) == 0 || len(d.False) == 0 {
		return nil, errors.New("both groups need at least one value to plot")
	}
	p := plot.New()
	p.Title.Text = d.Title
	p.X.Label.Text = d.XLabel
	p.Y.Label.Text = "Frequency"
	p.Legend.Top = true

	falseHist, err := plotter.NewHist(plotter.Values(d.False), Bins)
	if err != nil {
		return nil, fmt.Errorf("false-pair histogram: %w", err)
	}
	falseHist.FillColor = falseColor
	falseHist.LineStyle.Width = 0

	trueHist, err := plotter.NewHist(plotter.Values(d.True), Bins)
	if err != nil {
		return nil, fmt.Errorf("true-pair histogram: %w", err)
	}
	trueHist.FillColor = trueColor
	trueHist.LineStyle.Width = 0

	height := max(peak(falseHist), peak(trueHist))
	falseLine, err := meanLine(d.False, height, falseMean)
	if err != nil {
		return nil, err
	}
	trueLine, err := meanLine(d.True, height, trueMean)
	if err != nil {
		return nil, err
	}

	p.Add(falseHist, trueHist, falseLine, trueLine)
	p.Legend.Add("mismatched pairs", falseHist)
	p.Legend.Add("true pairs", trueHist)
	return p, nil
}

// Save writes the plot as an image; the format follows the file extension.
func Save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(Width, Height, path)
}

func meanLine(values []float64, height float64, c color.Color) (*plotter.Line, error) {
	m := stat.Mean(values, nil)
	l, err := plotter.NewLine(plotter.XYs{{X: m, Y: 0}, {X: m, Y: height}})
	if err != nil {
		return nil, fmt.Errorf("mean line: %w", err)
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(3)
	return l, nil
}

func peak(h *plotter.Histogram) float64 {
	top := 0.0
	for _, b := range h.Bins {
		if b.Weight > top {
			top = b.Weight
		}
	}
	return top
}
