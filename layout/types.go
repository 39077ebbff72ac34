package layout

// 该文件定义断行结果，供 CLI、HTTP 服务、渲染器与调试 JSON 共用。

// Algorithm 选择断行算法。
type Algorithm string

const (
	AlgorithmGreedy  Algorithm = "greedy"
	AlgorithmOptimal Algorithm = "optimal"
)

// ParseAlgorithm accepts the algorithm names used on the command line and in
// job files; the empty string selects the optimal breaker.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case "", AlgorithmOptimal, "dp":
		return AlgorithmOptimal, nil
	case AlgorithmGreedy:
		return AlgorithmGreedy, nil
	default:
		return "", ErrUnknownAlgorithm
	}
}

// Line 是渲染前已经确定内容的一行。
type Line struct {
	Words      []string `json:"words"`
	Final      bool     `json:"final,omitempty"`
	Hyphenated bool     `json:"hyphenated,omitempty"` // 以断词片段加连接符结尾
	Overflow   bool     `json:"overflow,omitempty"`   // 单个词超过行宽（仅贪心断行）
}

// Render renders the line; final and hyphenated lines are left-justified.
func (l Line) Render(width int) string {
	return RenderLine(l.Words, width, l.Final || l.Hyphenated)
}

// Result 保存一次断行的完整结果。
type Result struct {
	Algorithm    Algorithm `json:"algorithm"`
	Width        int       `json:"width"`
	Exponent     int       `json:"exponent"`
	Tokens       int       `json:"tokens"`
	Lines        []Line    `json:"lines"`
	Rendered     []string  `json:"rendered"`
	Badness      Cost      `json:"badness"`
	Hyphenations int       `json:"hyphenations"`
	Table        *Table    `json:"table,omitempty"` // 仅在 DebugOptions.Table 打开且使用最优断行时保留
}
