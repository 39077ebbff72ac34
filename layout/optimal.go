package layout

import (
	"encoding/json"
	"slices"
	"strconv"
)

// Table 是后缀 DP 表。Cost[i] 是从第 i 个完整 token 开始断行的最小总 badness，
// Cost[n] = 0。Choice[i] 是下一行起始 token 的下标；SplitAt[i] 非 0 时表示本行以
// tokens[Choice[i]] 的前 SplitAt[i] 个单位加连接符结尾，下一行从该偏移处继续。
//
// 开启断词时，表中还保存以剩余片段开头的状态 (i, offset)，见 At。
type Table struct {
	Width   int    `json:"width"`
	Cost    []Cost `json:"cost"`
	Choice  []int  `json:"choice"`
	SplitAt []int  `json:"splitAt"`

	cands [][]int   // per token, ascending split offsets
	frags [][]entry // frags[i][c] is the state starting at offset cands[i][c] of token i
}

type entry struct {
	cost  Cost
	next  int
	split int
}

var infeasibleEntry = entry{cost: Infinite, next: -1}

func newTable(n, width int) *Table {
	t := &Table{
		Width:   width,
		Cost:    make([]Cost, n+1),
		Choice:  make([]int, n+1),
		SplitAt: make([]int, n+1),
	}
	for i := range t.Cost {
		t.Cost[i] = Infinite
		t.Choice[i] = -1
	}
	t.Cost[n] = 0
	t.Choice[n] = n
	return t
}

// Len returns the number of tokens the table was built for.
func (t *Table) Len() int { return len(t.Cost) - 1 }

// At returns the optimal entry for the suffix starting at visual offset
// offset of token i; offset 0 is the whole token. ok is false for offsets
// the hyphenator never proposed.
func (t *Table) At(i, offset int) (cost Cost, choice, splitAt int, ok bool) {
	e, ok := t.at(i, offset)
	return e.cost, e.next, e.split, ok
}

func (t *Table) at(i, offset int) (entry, bool) {
	if i < 0 || i >= len(t.Cost) {
		return infeasibleEntry, false
	}
	if offset == 0 {
		return entry{cost: t.Cost[i], next: t.Choice[i], split: t.SplitAt[i]}, true
	}
	if i >= len(t.cands) {
		return infeasibleEntry, false
	}
	for c, k := range t.cands[i] {
		if k == offset {
			return t.frags[i][c], true
		}
	}
	return infeasibleEntry, false
}

// Footprint estimates the bytes held by the table arrays.
func (t *Table) Footprint() int {
	intSize := strconv.IntSize / 8
	bytes := len(t.Cost)*8 + len(t.Choice)*intSize + len(t.SplitAt)*intSize
	for i := range t.cands {
		bytes += len(t.cands[i])*intSize + len(t.frags[i])*(8+2*intSize)
	}
	return bytes
}

// FragmentEntry is the exported form of a fragment state.
type FragmentEntry struct {
	Token   int  `json:"token"`
	Offset  int  `json:"offset"`
	Cost    Cost `json:"cost"`
	Choice  int  `json:"choice"`
	SplitAt int  `json:"splitAt"`
}

// Fragments lists every fragment state in token order.
func (t *Table) Fragments() []FragmentEntry {
	var out []FragmentEntry
	for i := range t.cands {
		for c, k := range t.cands[i] {
			e := t.frags[i][c]
			out = append(out, FragmentEntry{Token: i, Offset: k, Cost: e.cost, Choice: e.next, SplitAt: e.split})
		}
	}
	return out
}

func (t *Table) MarshalJSON() ([]byte, error) {
	type plain struct {
		Width     int             `json:"width"`
		Cost      []Cost          `json:"cost"`
		Choice    []int           `json:"choice"`
		SplitAt   []int           `json:"splitAt"`
		Fragments []FragmentEntry `json:"fragments,omitempty"`
	}
	return json.Marshal(plain{Width: t.Width, Cost: t.Cost, Choice: t.Choice, SplitAt: t.SplitAt, Fragments: t.Fragments()})
}

// optimizer holds the per-call state of one DP pass.
type optimizer struct {
	table       *Table
	tokens      Tokens
	widths      []int
	limit       int
	model       CostModel
	hyph        *Hyphenation
	markerWidth int
}

// Optimize 自后向前填充 DP 表。hyph 为 nil 时不断词。
// 局部不可行的行只会得到 Infinite，不会报错；是否整体可行由调用方检查 Cost[0]。
func Optimize(tokens Tokens, width int, model CostModel, hyph *Hyphenation) (*Table, error) {
	if width <= 0 {
		return nil, ErrInvalidWidth
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	n := len(tokens)
	o := &optimizer{
		table:  newTable(n, width),
		tokens: tokens,
		widths: make([]int, n),
		limit:  width,
		model:  model,
	}
	for i, tok := range tokens {
		o.widths[i] = tok.Width()
	}
	if hyph != nil {
		if err := hyph.validate(); err != nil {
			return nil, err
		}
		o.hyph = hyph
		o.markerWidth = Width(hyph.marker())
		o.table.cands = make([][]int, n)
		o.table.frags = make([][]entry, n)
		for i, tok := range tokens {
			o.table.cands[i] = hyph.candidates(tok)
			o.table.frags[i] = make([]entry, len(o.table.cands[i]))
		}
	}

	t := o.table
	for i := n - 1; i >= 0; i-- {
		if o.hyph != nil {
			// 片段状态只依赖偏移更大的片段，因此按偏移降序计算。
			for c := len(t.cands[i]) - 1; c >= 0; c-- {
				t.frags[i][c] = o.solve(i, t.cands[i][c])
			}
		}
		e := o.solve(i, 0)
		t.Cost[i], t.Choice[i], t.SplitAt[i] = e.cost, e.next, e.split
	}
	return t, nil
}

// solve finds the cheapest first line for the suffix starting at offset lead
// of token i. Whole-word endings are tried before hyphenated ones and only a
// strictly smaller total replaces the incumbent, so ties keep the earliest
// (shortest) line and never prefer a split.
func (o *optimizer) solve(i, lead int) entry {
	t := o.table
	n := len(o.widths)
	best := infeasibleEntry

	used := 0
	for j := i; j < n; j++ {
		if j == i {
			used = o.widths[j] - lead
		} else {
			used += 1 + o.widths[j]
		}
		if used > o.limit {
			break
		}
		rest := t.Cost[j+1]
		if rest == Infinite {
			continue
		}
		total := o.model.lineCost(o.limit-used, j == n-1, false).Add(rest)
		if total < best.cost {
			best = entry{cost: total, next: j + 1}
		}
	}
	if o.hyph == nil {
		return best
	}

	used = 0
	for j := i; j < n; j++ {
		sep, from := 1, 0
		var resplit []int
		if j == i {
			sep, from = 0, lead
			if lead > 0 {
				resplit = o.remainderCands(i, lead)
			}
		}
		for c, k := range t.cands[j] {
			if k <= from {
				continue
			}
			if from > 0 {
				if _, ok := slices.BinarySearch(resplit, k); !ok {
					continue
				}
			}
			lineWidth := used + sep + k - from + o.markerWidth
			if lineWidth > o.limit {
				break
			}
			rest := t.frags[j][c].cost
			if rest == Infinite {
				continue
			}
			total := o.model.lineCost(o.limit-lineWidth, false, true).Add(rest)
			if total < best.cost {
				best = entry{cost: total, next: j, split: k}
			}
		}
		used += sep + o.widths[j] - from
		if used > o.limit {
			break
		}
	}
	return best
}

// remainderCands asks the oracle about the remainder of token i that starts
// at lead, so a split remainder leaves fragments as long as any split word.
// Offsets are returned relative to the whole token and only those that are
// fragment states of token i are kept.
func (o *optimizer) remainderCands(i, lead int) []int {
	rest := Token(sliceUnits(string(o.tokens[i]), lead, o.widths[i]))
	var out []int
	for _, k := range o.hyph.candidates(rest) {
		if _, ok := slices.BinarySearch(o.table.cands[i], lead+k); ok {
			out = append(out, lead+k)
		}
	}
	return out
}

// Segments 沿 Choice/SplitAt 还原断行方案。断词留下的剩余片段通过 Segment.Lead
// 带到下一行，不修改 token 序列。
func (t *Table) Segments(tokens Tokens) ([]Segment, error) {
	n := len(tokens)
	if t.Len() != n {
		return nil, ErrInfeasible
	}
	if t.Cost[0] == Infinite {
		return nil, newInfeasibleError(tokens, t.Width)
	}
	var segs []Segment
	i, lead := 0, 0
	for i < n {
		e, ok := t.at(i, lead)
		if !ok || e.cost == Infinite || e.next < i || (e.next == i && e.split <= lead) {
			return nil, ErrInfeasible
		}
		segs = append(segs, Segment{Start: i, End: e.next, Lead: lead, Split: e.split})
		i, lead = e.next, e.split
	}
	return segs, nil
}

// OptimalLines 计算全局最优的断行方案，返回结构化的行与 DP 表。
func OptimalLines(tokens Tokens, width int, model CostModel, hyph *Hyphenation) ([]Line, *Table, error) {
	table, err := Optimize(tokens, width, model, hyph)
	if err != nil {
		return nil, nil, err
	}
	if table.Cost[0] == Infinite {
		return nil, table, newInfeasibleError(tokens, width)
	}
	segs, err := table.Segments(tokens)
	if err != nil {
		return nil, table, err
	}
	marker := DefaultMarker
	if hyph != nil {
		marker = hyph.marker()
	}
	lines := make([]Line, 0, len(segs))
	for _, seg := range segs {
		lines = append(lines, Line{
			Words:      seg.Words(tokens, marker),
			Final:      seg.Final(len(tokens)),
			Hyphenated: seg.Split > 0,
		})
	}
	return lines, table, nil
}

// BreakOptimal returns the rendered lines of the optimal partition.
func BreakOptimal(tokens Tokens, width int, model CostModel, hyph *Hyphenation) ([]string, error) {
	lines, _, err := OptimalLines(tokens, width, model, hyph)
	if err != nil {
		return nil, err
	}
	return Render(lines, width), nil
}
