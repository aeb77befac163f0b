package bmp

import (
	"golang.org/x/sync/errgroup"
)

// rowSpan is a half-open range of rows [start, end).
type rowSpan struct {
	start, end int
}

// splitRows cuts rows into at most workers contiguous spans.
func splitRows(rows, workers int) []rowSpan {
	if rows <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}

	size := (rows + workers - 1) / workers
	spans := make([]rowSpan, 0, workers)
	for start := 0; start < rows; start += size {
		end := start + size
		if end > rows {
			end = rows
		}
		spans = append(spans, rowSpan{start: start, end: end})
	}
	return spans
}

// forEachSpan runs fn on every span, with up to workers spans in flight.
// It blocks until all spans are done. With a single span, fn runs on the
// calling goroutine.
func forEachSpan(spans []rowSpan, workers int, fn func(i int, s rowSpan)) {
	if len(spans) == 1 || workers <= 1 {
		for i, s := range spans {
			fn(i, s)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, s := range spans {
		i, s := i, s
		g.Go(func() error {
			fn(i, s)
			return nil
		})
	}
	_ = g.Wait() // fn cannot fail.
}

// parallelRows runs fn over [0, rows) split in row spans.
func parallelRows(rows, workers int, fn func(start, end int)) {
	forEachSpan(splitRows(rows, workers), workers, func(_ int, s rowSpan) {
		fn(s.start, s.end)
	})
}
