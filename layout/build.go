package layout

import "fmt"

// Build 对一段文本执行完整流程：校验选项、分词、断行、渲染与打分。
func Build(text string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return BuildTokens(Tokenize(text), opts)
}

// BuildTokens is Build for an already tokenized paragraph.
func BuildTokens(tokens Tokens, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	algo, _ := ParseAlgorithm(string(opts.Algorithm))
	res := &Result{
		Algorithm: algo,
		Width:     opts.Width,
		Exponent:  opts.Exponent,
		Tokens:    len(tokens),
	}

	var lines []Line
	switch algo {
	case AlgorithmGreedy:
		var err error
		lines, err = GreedyLines(tokens, opts.Width)
		if err != nil {
			return nil, fmt.Errorf("贪心断行失败: %w", err)
		}
	default:
		var (
			table *Table
			err   error
		)
		lines, table, err = OptimalLines(tokens, opts.Width, opts.CostModel(), opts.Hyphenation())
		if err != nil {
			return nil, fmt.Errorf("最优断行失败: %w", err)
		}
		if opts.Debug.Table {
			res.Table = table
		}
	}

	res.Lines = lines
	res.Rendered = Render(lines, opts.Width)
	for _, ln := range lines {
		if ln.Hyphenated {
			res.Hyphenations++
		}
	}
	// 只有最优断行会断词；其余情况不认连接符，避免把原文中以 "-" 结尾的词误判为断词。
	eval := Evaluator{Width: opts.Width, Exponent: opts.Exponent}
	if opts.Hyphenate && algo == AlgorithmOptimal {
		eval.Marker = opts.marker()
	}
	res.Badness = eval.Total(res.Rendered)
	return res, nil
}
