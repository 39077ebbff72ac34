package layout

// Segment 描述一行包含的 token 区间 [Start, End)。
//
// Lead > 0 时，行首不是完整的 tokens[Start]，而是它从 Lead 起的剩余片段
// （上一行断词留下的部分）。Split > 0 时，行尾额外放入 tokens[End] 的前
// Split 个单位并追加连接符；若此时 End == Start，该片段从 Lead 开始。
type Segment struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Lead  int `json:"lead,omitempty"`
	Split int `json:"split,omitempty"`
}

// Width returns the visual width of the segment with one space between items.
func (s Segment) Width(tokens Tokens, markerWidth int) int {
	used, items := 0, 0
	for i := s.Start; i < s.End; i++ {
		w := tokens[i].Width()
		if i == s.Start {
			w -= s.Lead
		}
		used += w
		items++
	}
	if s.Split > 0 {
		used += s.Split - s.splitFrom() + markerWidth
		items++
	}
	if items > 1 {
		used += items - 1
	}
	return used
}

// Words returns the text placed on the line, with the remainder override
// applied to the first token and the marker appended to a split fragment.
func (s Segment) Words(tokens Tokens, marker string) []string {
	words := make([]string, 0, s.End-s.Start+1)
	for i := s.Start; i < s.End; i++ {
		w := string(tokens[i])
		if i == s.Start && s.Lead > 0 {
			w = sliceUnits(w, s.Lead, tokens[i].Width())
		}
		words = append(words, w)
	}
	if s.Split > 0 {
		words = append(words, sliceUnits(string(tokens[s.End]), s.splitFrom(), s.Split)+marker)
	}
	return words
}

// Final reports whether the segment closes the paragraph.
func (s Segment) Final(n int) bool { return s.Split == 0 && s.End == n }

func (s Segment) splitFrom() int {
	if s.End == s.Start {
		return s.Lead
	}
	return 0
}
