package layout

import (
	"iter"
	"slices"
	"testing"
)

func TestFragmentHyphenatorCandidates(t *testing.T) {
	cases := []struct {
		tok  Token
		min  int
		want []int
	}{
		{"abcde", 3, nil},
		{"abcdef", 3, []int{3}},
		{"abcdefgh", 3, []int{3, 4, 5}},
		{"abcdefgh", 0, []int{3, 4, 5}},
		{"abcd", 1, []int{1, 2, 3}},
		{"бичвэрүүд", 3, []int{3, 4, 5, 6}},
	}
	for _, c := range cases {
		got := slices.Collect(FragmentHyphenator{MinFragment: c.min}.Candidates(c.tok))
		if !slices.Equal(got, c.want) {
			t.Fatalf("Candidates(%q, %d) 期望 %v，实际 %v", c.tok, c.min, c.want, got)
		}
	}
}

func TestFragmentHyphenatorStopsEarly(t *testing.T) {
	var seen []int
	for k := range (FragmentHyphenator{}).Candidates("abcdefghij") {
		seen = append(seen, k)
		if k == 4 {
			break
		}
	}
	if !slices.Equal(seen, []int{3, 4}) {
		t.Fatalf("提前结束迭代失败: %v", seen)
	}
}

type fixedOracle []int

func (o fixedOracle) Candidates(Token) iter.Seq[int] { return slices.Values(o) }

func TestHyphenationCandidatesNormalized(t *testing.T) {
	h := &Hyphenation{Oracle: fixedOracle{4, 0, 2, 9, 2, 6}}
	got := h.candidates("abcdef")
	if !slices.Equal(got, []int{2, 4}) {
		t.Fatalf("期望 [2 4]，实际 %v", got)
	}
}

func TestHyphenationMarker(t *testing.T) {
	if got := (&Hyphenation{}).marker(); got != DefaultMarker {
		t.Fatalf("默认连接符应为 %q，实际 %q", DefaultMarker, got)
	}
	if err := (&Hyphenation{Marker: "- "}).validate(); err != ErrInvalidMarker {
		t.Fatalf("含空白的连接符应被拒绝，实际 %v", err)
	}
	head, rest := SplitToken("abcdefgh", 4, "=")
	if head != "abcd=" || rest != "efgh" {
		t.Fatalf("SplitToken 结果 %q/%q", head, rest)
	}
}
