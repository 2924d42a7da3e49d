// Package report renders training-run curves to image files.
package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/signlab/pjmsign/internal/model"
)

// TrainingCurves renders a run's loss and validation-metric curves to a
// single PNG.
func TrainingCurves(epochs []model.EpochMetrics, title, path string) error {
	if len(epochs) == 0 {
		return fmt.Errorf("report: no epochs to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = "Value"
	p.Legend.Top = true

	series := []struct {
		name  string
		color color.RGBA
		pick  func(model.EpochMetrics) float64
	}{
		{"loss", color.RGBA{R: 200, A: 255}, func(m model.EpochMetrics) float64 { return m.Loss }},
		{"val accuracy", color.RGBA{G: 160, A: 255}, func(m model.EpochMetrics) float64 { return m.ValAccuracy }},
		{"val precision", color.RGBA{B: 200, A: 255}, func(m model.EpochMetrics) float64 { return m.ValPrecision }},
		{"val recall", color.RGBA{R: 150, B: 150, A: 255}, func(m model.EpochMetrics) float64 { return m.ValRecall }},
	}

	for _, s := range series {
		pts := make(plotter.XYs, 0, len(epochs))
		for _, m := range epochs {
			pts = append(pts, plotter.XY{X: float64(m.Epoch), Y: s.pick(m)})
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("report: %s line: %w", s.name, err)
		}
		line.Color = s.color
		line.Width = vg.Points(1)

		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}
