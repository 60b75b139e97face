package runlog

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNotEnoughData is returned by Chart when no series has two points.
var ErrNotEnoughData = errors.New("runlog: need at least two worker counts per series")

var seriesColors = []drawing.Color{
	chart.ColorRed,
	chart.ColorGreen,
	chart.ColorBlue,
	{R: 255, G: 165, B: 0, A: 255},
}

// Chart renders generations per second against worker count, one line per
// strategy, as a PNG.
func Chart(results []Result, out io.Writer) error {
	byName := map[string][]Result{}
	for _, r := range results {
		byName[r.Series()] = append(byName[r.Series()], r)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	var series []chart.Series
	for i, name := range names {
		rs := byName[name]
		if len(rs) < 2 {
			continue
		}
		sort.Slice(rs, func(a, b int) bool { return rs[a].Workers < rs[b].Workers })
		xs := make([]float64, len(rs))
		ys := make([]float64, len(rs))
		for j, r := range rs {
			xs[j] = float64(r.Workers)
			ys[j] = r.Rate()
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: seriesColors[i%len(seriesColors)], StrokeWidth: 3.0},
		})
	}
	if len(series) == 0 {
		return ErrNotEnoughData
	}

	graph := chart.Chart{
		Width:  640,
		Height: 360,
		XAxis: chart.XAxis{
			Name:  "workers",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "generations/s",
			Style: chart.Style{FontSize: 10.0},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	if err := graph.Render(chart.PNG, out); err != nil {
		return fmt.Errorf("runlog: render chart: %w", err)
	}
	return nil
}
