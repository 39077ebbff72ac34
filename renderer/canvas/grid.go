package canvasrenderer

import (
	"unicode"

	"github.com/ByLCY/justify/layout"
)

// gridMetrics 以毫米表示：advance 为单个字符宽度，ascent 为基线到行顶距离。
type gridMetrics struct {
	advance    float64
	ascent     float64
	lineHeight float64
}

type placedWord struct {
	text     string
	x        float64
	baseline float64
}

type page struct {
	width, height float64
	words         []placedWord
}

type column struct {
	col  int
	text string
}

// wordColumns splits a rendered line into words and the visual column each
// one starts at.
func wordColumns(line string) []column {
	var (
		out   []column
		start = -1
		col   int
		runes []rune
	)
	flush := func() {
		if start >= 0 {
			out = append(out, column{col: start, text: string(runes)})
		}
		start, runes = -1, runes[:0]
	}
	for _, r := range line {
		if unicode.IsSpace(r) {
			flush()
		} else {
			if start < 0 {
				start = col
			}
			runes = append(runes, r)
		}
		col++
	}
	flush()
	return out
}

// layoutPages places every word on a monospace grid. Pages are wide enough
// for the line width plus margins on both sides.
func layoutPages(res *layout.Result, m gridMetrics, margin float64, perPage int) []page {
	width := 2*margin + float64(res.Width)*m.advance
	rows := len(res.Rendered)
	if perPage <= 0 || perPage > rows {
		perPage = max(rows, 1)
	}

	var pages []page
	for first := 0; first < max(rows, 1); first += perPage {
		last := min(first+perPage, rows)
		p := page{
			width:  width,
			height: 2*margin + float64(max(last-first, 1))*m.lineHeight,
		}
		for i := first; i < last; i++ {
			top := margin + float64(i-first)*m.lineHeight
			for _, c := range wordColumns(res.Rendered[i]) {
				p.words = append(p.words, placedWord{
					text:     c.text,
					x:        margin + float64(c.col)*m.advance,
					baseline: top + m.ascent,
				})
			}
		}
		pages = append(pages, p)
	}
	return pages
}
