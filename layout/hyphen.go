package layout

import (
	"iter"
	"slices"
	"strings"
	"unicode"
)

const (
	// DefaultMarker is appended to the line-bound fragment of a split token.
	DefaultMarker = "-"
	// DefaultMinFragment is the shortest prefix or remainder a split may leave.
	DefaultMinFragment = 3
)

// Hyphenator enumerates split offsets (in visual units) inside a token.
// Offsets must be finite and lie strictly inside the token.
type Hyphenator interface {
	Candidates(tok Token) iter.Seq[int]
}

// FragmentHyphenator 是占位用的断词启发式：任何位置都可断开，只要前后片段
// 都不短于 MinFragment。它不理解音节，调用方不能假设断点符合语言规则。
type FragmentHyphenator struct {
	MinFragment int
}

// Candidates yields k in [min, width-min] in ascending order.
func (h FragmentHyphenator) Candidates(tok Token) iter.Seq[int] {
	minimum := h.MinFragment
	if minimum <= 0 {
		minimum = DefaultMinFragment
	}
	width := tok.Width()
	return func(yield func(int) bool) {
		for k := minimum; k <= width-minimum; k++ {
			if !yield(k) {
				return
			}
		}
	}
}

// Hyphenation 打开最优断行中的断词，Oracle 为空时使用 FragmentHyphenator。
type Hyphenation struct {
	Oracle Hyphenator
	Marker string
}

func (h *Hyphenation) oracle() Hyphenator {
	if h.Oracle == nil {
		return FragmentHyphenator{MinFragment: DefaultMinFragment}
	}
	return h.Oracle
}

func (h *Hyphenation) marker() string {
	if h.Marker == "" {
		return DefaultMarker
	}
	return h.Marker
}

func (h *Hyphenation) validate() error {
	if strings.IndexFunc(h.marker(), unicode.IsSpace) >= 0 {
		return ErrInvalidMarker
	}
	return nil
}

// candidates collects the oracle's offsets for tok, sorted, deduplicated and
// restricted to the token interior.
func (h *Hyphenation) candidates(tok Token) []int {
	width := tok.Width()
	var out []int
	for k := range h.oracle().Candidates(tok) {
		if k > 0 && k < width {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// SplitToken 在视觉偏移 k 处拆分 tok，返回带连接符的行尾片段与留给下一行的剩余部分。
func SplitToken(tok Token, k int, marker string) (head, rest Token) {
	s := string(tok)
	cut := unitOffset(s, k)
	return Token(s[:cut] + marker), Token(s[cut:])
}
