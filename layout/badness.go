package layout

import (
	"strings"
	"unicode"
)

// Evaluator recomputes the badness of already rendered lines, independently
// of how they were produced.
type Evaluator struct {
	Width    int
	Exponent int
	Marker   string
}

// Total 逐行重新分词并计算 slack。末行与断词行不计拉伸代价；
// 非末行超宽时返回 Infinite。
func (e Evaluator) Total(lines []string) Cost {
	var total Cost
	for i, line := range lines {
		if i == len(lines)-1 {
			break
		}
		words := Tokenize(line)
		if len(words) == 0 {
			continue
		}
		if e.hyphenated(line, words) {
			continue
		}
		used := len(words) - 1
		for _, w := range words {
			used += w.Width()
		}
		slack := e.Width - used
		if slack < 0 {
			return Infinite
		}
		total = total.Add(Power(slack, e.Exponent))
	}
	return total
}

// TotalBadness scores lines with the default joining marker.
func TotalBadness(lines []string, width, exponent int) Cost {
	return Evaluator{Width: width, Exponent: exponent, Marker: DefaultMarker}.Total(lines)
}

// hyphenated reports whether line reads as a hyphen-ended line: its last word
// ends with the marker and the words are joined by single spaces. A line
// whose gaps were widened was fully justified and cannot end in a split.
func (e Evaluator) hyphenated(line string, words Tokens) bool {
	if e.Marker == "" || !strings.HasSuffix(string(words[len(words)-1]), e.Marker) {
		return false
	}
	return strings.TrimRightFunc(line, unicode.IsSpace) == strings.Join(words.Strings(), " ")
}
