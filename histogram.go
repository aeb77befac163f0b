package bmp

import (
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// Histogram holds, for the red, green, blue and luma channels, the number
// of pixels at each of the 256 intensity levels.
type Histogram struct {
	counts [numChannels][levels]uint64
	pixels uint64
}

// BuildHistogram scans every logical pixel of p once. With workers > 1 the
// rows are scanned concurrently and the partial tables summed.
func BuildHistogram(p *PixelBuffer, workers int) *Histogram {
	spans := splitRows(p.Height, workers)
	partials := make([]Histogram, len(spans))

	forEachSpan(spans, workers, func(i int, s rowSpan) {
		h := &partials[i]
		for row := s.start; row < s.end; row++ {
			line := p.Row(row)
			for off := 0; off < len(line); off += bytesPerPixel {
				h.add(line[off+2], line[off+1], line[off])
			}
		}
	})

	h := &Histogram{}
	for i := range partials {
		h.merge(&partials[i])
	}
	return h
}

func (h *Histogram) add(r, g, b uint8) {
	h.counts[Red][r]++
	h.counts[Green][g]++
	h.counts[Blue][b]++
	h.counts[Luma][luma(r, g, b)]++
	h.pixels++
}

func (h *Histogram) merge(o *Histogram) {
	for ch := range h.counts {
		for level := range h.counts[ch] {
			h.counts[ch][level] += o.counts[ch][level]
		}
	}
	h.pixels += o.pixels
}

// Pixels returns the number of pixels scanned.
func (h *Histogram) Pixels() uint64 {
	return h.pixels
}

// Count returns the number of pixels at level in channel ch.
func (h *Histogram) Count(ch Channel, level uint8) uint64 {
	return h.counts[ch][level]
}

// Counts returns a copy of the 256 counts of channel ch.
func (h *Histogram) Counts(ch Channel) []uint64 {
	c := make([]uint64, levels)
	copy(c, h.counts[ch][:])
	return c
}

// Total returns the sum of the counts of channel ch. It always equals Pixels.
func (h *Histogram) Total(ch Channel) uint64 {
	return lo.Sum(h.counts[ch][:])
}

// Probability returns, for each level of channel ch, the fraction of pixels
// at that level.
func (h *Histogram) Probability(ch Channel) []float64 {
	p := make([]float64, levels)
	if h.pixels == 0 {
		return p
	}
	n := float64(h.pixels)
	for level, c := range h.counts[ch] {
		p[level] = float64(c) / n
	}
	return p
}

// CDF returns the cumulative distribution function of channel ch.
// It is non-decreasing and its last value is 1 up to rounding.
func (h *Histogram) CDF(ch Channel) []float64 {
	return floats.CumSum(make([]float64, levels), h.Probability(ch))
}
