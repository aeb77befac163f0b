package bmp

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"
)

var channelColors = [numChannels]drawing.Color{
	Red:   drawing.ColorRed,
	Green: drawing.ColorGreen,
	Blue:  drawing.ColorBlue,
	Luma:  drawing.ColorBlack,
}

// WriteChart renders the four channels of h as a PNG line chart.
func (h *Histogram) WriteChart(w io.Writer, width, height int) error {
	xs := make([]float64, levels)
	for level := range xs {
		xs[level] = float64(level)
	}

	series := make([]chart.Series, 0, numChannels)
	for ch := Red; ch < numChannels; ch++ {
		ys := make([]float64, levels)
		for level, c := range h.counts[ch] {
			ys[level] = float64(c)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    ch.String(),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: channelColors[ch],
				StrokeWidth: 1,
			},
		})
	}

	graph := chart.Chart{
		Title:  "Histogram",
		Width:  width,
		Height: height,
		Series: series,
	}
	return errors.Wrap(graph.Render(chart.PNG, w), "could not render histogram")
}

// WriteBars prints one text bar per level and channel. The longest bar of
// the whole histogram is columns characters wide.
func (h *Histogram) WriteBars(w io.Writer, columns int) error {
	if columns < 1 {
		return UnsupportedError(fmt.Sprintf("bar width %d, want at least 1", columns))
	}

	var peak uint64
	for ch := range h.counts {
		for _, c := range h.counts[ch] {
			if c > peak {
				peak = c
			}
		}
	}

	bw := bufio.NewWriter(w)
	marks := [numChannels]string{Red: "R", Green: "G", Blue: "B", Luma: "Y"}
	for level := 0; level < levels; level++ {
		for ch := Red; ch < numChannels; ch++ {
			n := 0
			if peak > 0 {
				n = int(h.counts[ch][level] * uint64(columns) / peak)
			}
			if _, err := fmt.Fprintf(bw, "%03d:%s\n", level, strings.Repeat(marks[ch], n)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
