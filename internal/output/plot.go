package output

import (
	"fmt"
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/miradorstack/mirador-rul/internal/models"
	"github.com/miradorstack/mirador-rul/internal/utils"
)

// PlotPoints extracts (last failure, RUL%) pairs from the ranked rows. X is Unix seconds.
func PlotPoints(report models.Report) plotter.XYs {
	points := make(plotter.XYs, 0, len(report.Rows))
	for _, row := range report.Rows {
		points = append(points, plotter.XY{
			X: float64(row.LastFailure.Unix()),
			Y: row.RULPercent,
		})
	}
	return points
}

// WritePlot saves a scatter of RUL% against last failure date. The image format follows
// the file extension (png, svg, pdf).
func WritePlot(path string, report models.Report, now time.Time) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Remaining Useful Life - Current Date %s", now.Format("01/02/2006"))
	p.X.Label.Text = "Failure Date"
	p.Y.Label.Text = "RUL %"
	p.X.Tick.Marker = plot.TimeTicks{Format: utils.FailureTimestampLayout}
	p.Y.Min = 0
	p.Y.Max = 100
	p.Add(plotter.NewGrid())

	points := PlotPoints(report)
	if len(points) > 0 {
		scatter, err := plotter.NewScatter(points)
		if err != nil {
			return fmt.Errorf("build scatter: %w", err)
		}
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(3)
		scatter.GlyphStyle.Color = color.RGBA{R: 220, A: 255}
		p.Add(scatter)
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
