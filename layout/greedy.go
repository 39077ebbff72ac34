package layout

// GreedyLines 单遍贪心断行：当前行放得下就继续追加，否则输出当前行并以该词开新行。
// 宽度超过行宽的词单独占一行（Overflow），不报错。贪心断行从不断词。
func GreedyLines(tokens Tokens, width int) ([]Line, error) {
	if width <= 0 {
		return nil, ErrInvalidWidth
	}
	var (
		lines   []Line
		current []string
		used    int
	)
	emit := func(final bool) {
		if len(current) == 0 {
			return
		}
		lines = append(lines, Line{Words: current, Final: final, Overflow: used > width})
		current, used = nil, 0
	}

	for _, tok := range tokens {
		w := tok.Width()
		if len(current) > 0 {
			if used+1+w <= width {
				current = append(current, string(tok))
				used += 1 + w
				continue
			}
			emit(false)
		}
		current = append(current, string(tok))
		used = w
	}
	emit(true)
	return lines, nil
}

// BreakGreedy returns the rendered lines of the greedy partition.
func BreakGreedy(tokens Tokens, width int) ([]string, error) {
	lines, err := GreedyLines(tokens, width)
	if err != nil {
		return nil, err
	}
	return Render(lines, width), nil
}
