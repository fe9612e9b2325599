package turingprobe

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Figure files written next to report.json.
const (
	ConfusionFigure    = "confusion_matrix.png"
	TopicMetricsFigure = "metrics_by_topic.png"
	SourceMixFigure    = "source_distribution_by_topic.png"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// TopicConfusionFigure is the file name of one topic's confusion matrix.
func TopicConfusionFigure(topic string) string {
	return "confusion_matrix_" + unsafeFileChars.ReplaceAllString(topic, "_") + ".png"
}

// WriteFigures renders the report as PNG charts in dir and returns the paths
// written: the overall confusion matrix, per-topic scores, the source mix per
// topic and one confusion matrix per topic. Charts with no data are skipped.
func WriteFigures(dir string, r Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("turingprobe: mkdir %s: %w", dir, err)
	}

	var paths []string
	save := func(p *plot.Plot, name string, w, h vg.Length) error {
		path := filepath.Join(dir, name)
		if err := p.Save(w, h, path); err != nil {
			return fmt.Errorf("turingprobe: save %s: %w", path, err)
		}
		paths = append(paths, path)
		return nil
	}

	p, err := confusionPlot("Confusion Matrix", r.Overall.Confusion)
	if err != nil {
		return paths, err
	}
	if err := save(p, ConfusionFigure, 5*vg.Inch, 4*vg.Inch); err != nil {
		return paths, err
	}

	if len(r.Topics) > 0 {
		p, err := topicMetricsPlot(r.Topics)
		if err != nil {
			return paths, err
		}
		if err := save(p, TopicMetricsFigure, 10*vg.Inch, 5*vg.Inch); err != nil {
			return paths, err
		}
	}

	if len(r.Sources) > 0 && len(r.Distribution) > 0 {
		p, err := sourceMixPlot(r.Sources, r.Distribution)
		if err != nil {
			return paths, err
		}
		if err := save(p, SourceMixFigure, 10*vg.Inch, 5*vg.Inch); err != nil {
			return paths, err
		}
	}

	for _, t := range r.Topics {
		p, err := confusionPlot("Confusion Matrix: "+t.Topic, t.Confusion)
		if err != nil {
			return paths, err
		}
		if err := save(p, TopicConfusionFigure(t.Topic), 5*vg.Inch, 4*vg.Inch); err != nil {
			return paths, err
		}
	}
	return paths, nil
}

// confusionGrid lays a Confusion out as a 2x2 heat map. Columns are the
// guess (AI, Human); row 0 is actual Human so actual AI is drawn on top.
type confusionGrid Confusion

func (g confusionGrid) cells() [2][2]int {
	return [2][2]int{
		{g.FalseAI, g.TrueHuman},
		{g.TrueAI, g.FalseHuman},
	}
}

func (g confusionGrid) Dims() (c, r int)   { return 2, 2 }
func (g confusionGrid) Z(c, r int) float64 { return float64(g.cells()[r][c]) }
func (g confusionGrid) X(c int) float64    { return float64(c) }
func (g confusionGrid) Y(r int) float64    { return float64(r) }

func confusionPlot(title string, c Confusion) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Predicted"
	p.Y.Label.Text = "Actual"

	grid := confusionGrid(c)
	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	// Pin the scale so an all-zero matrix still maps onto the palette.
	hm.Min = 0
	hm.Max = float64(max(c.TrueAI, c.FalseHuman, c.FalseAI, c.TrueHuman, 1))
	p.Add(hm)

	var xys plotter.XYs
	var text []string
	for r, row := range grid.cells() {
		for col, n := range row {
			xys = append(xys, plotter.XY{X: float64(col), Y: float64(r)})
			text = append(text, strconv.Itoa(n))
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return nil, fmt.Errorf("turingprobe: confusion labels: %w", err)
	}
	p.Add(labels)

	p.X.Tick.Marker = plot.ConstantTicks{{Value: 0, Label: "AI"}, {Value: 1, Label: "Human"}}
	p.Y.Tick.Marker = plot.ConstantTicks{{Value: 0, Label: "Human"}, {Value: 1, Label: "AI"}}
	return p, nil
}

func topicMetricsPlot(topics []TopicMetrics) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Model Performance by Topic"
	p.Y.Label.Text = "Score"
	p.Legend.Top = true

	series := []struct {
		name  string
		value func(TopicMetrics) float64
	}{
		{"Accuracy", func(t TopicMetrics) float64 { return t.Accuracy }},
		{"Precision", func(t TopicMetrics) float64 { return t.Precision }},
		{"Recall", func(t TopicMetrics) float64 { return t.Recall }},
		{"F1", func(t TopicMetrics) float64 { return t.F1 }},
	}

	width := vg.Points(12)
	for i, s := range series {
		values := make(plotter.Values, len(topics))
		for j, t := range topics {
			values[j] = s.value(t)
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return nil, fmt.Errorf("turingprobe: %s bars: %w", s.name, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		// Center the group of bars on each topic tick.
		bars.Offset = width * vg.Length(float64(2*i-len(series)+1)/2)
		p.Add(bars)
		p.Legend.Add(s.name, bars)
	}

	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Topic
	}
	p.NominalX(names...)
	p.Y.Min = 0
	p.Y.Max = 1.1
	return p, nil
}

func sourceMixPlot(sources []string, dist []TopicSources) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Human vs AI Distribution by Topic"
	p.Y.Label.Text = "Count"
	p.Legend.Top = true

	var below *plotter.BarChart
	for i, src := range sources {
		values := make(plotter.Values, len(dist))
		for j, d := range dist {
			values[j] = float64(d.Counts[src])
		}
		bars, err := plotter.NewBarChart(values, vg.Points(24))
		if err != nil {
			return nil, fmt.Errorf("turingprobe: %s bars: %w", src, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		p.Legend.Add(src, bars)
		below = bars
	}

	names := make([]string, len(dist))
	for i, d := range dist {
		names[i] = d.Topic
	}
	p.NominalX(names...)
	return p, nil
}
