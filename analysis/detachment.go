// Package analysis derives per-step series from episode traces and renders
// comparison charts, independent of validation.
package analysis

import (
	"fmt"
	"os"
	"path"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/voltgrid/gridenv/grid"
	"github.com/voltgrid/gridenv/types"
)

// Analyzer turns an episode trace into one integer per step.
type Analyzer func(t *types.Trace) []int

// DetachmentCount counts disconnected terminals after each step.
func DetachmentCount() Analyzer {
	return func(t *types.Trace) []int {
		out := make([]int, 0, t.Len())
		for i := 0; i < t.Len(); i++ {
			_, _, next, ok := t.Get(i)
			if !ok {
				break
			}
			state, ok := next.(*grid.TopoState)
			if !ok {
				out = append(out, 0)
				continue
			}
			out = append(out, state.DisconnectedCount())
		}
		return out
	}
}

// TouchedSubstationCount counts substations touched by each step's action.
func TouchedSubstationCount() Analyzer {
	return func(t *types.Trace) []int {
		out := make([]int, 0, t.Len())
		for i := 0; i < t.Len(); i++ {
			_, action, _, ok := t.Get(i)
			if !ok {
				break
			}
			act, ok := action.(*grid.Action)
			if !ok {
				out = append(out, 0)
				continue
			}
			out = append(out, len(act.TouchedSubstations()))
		}
		return out
	}
}

// Plotter writes one line per named series to a PNG chart.
type Plotter func(names []string, series [][]int) error

// LinePlotter builds a plotter writing to plotPath with the given title
// and y axis label.
func LinePlotter(plotPath, name, yLabel string) Plotter {
	if _, err := os.Stat(plotPath); err != nil {
		os.Mkdir(plotPath, os.ModePerm)
	}
	return func(names []string, series [][]int) error {
		p := plot.New()
		p.Title.Text = name
		p.X.Label.Text = "Step"
		p.Y.Label.Text = yLabel
		for i := 0; i < len(names); i++ {
			points := make(plotter.XYs, len(series[i]))
			for j, v := range series[i] {
				points[j] = plotter.XY{
					X: float64(j),
					Y: float64(v),
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
		}
		return p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, fmt.Sprintf("%s.png", name)))
	}
}
