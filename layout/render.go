package layout

import "strings"

// Render 把结构化的行渲染为文本。
func Render(lines []Line, width int) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.Render(width)
	}
	return out
}

// RenderLine 渲染一行。leftAlign 为真（末行、断词结尾的行）或只有一个词时，
// 词之间用单个空格连接并在右侧补空格到 width；否则两端对齐，
// 多出的空格从左侧的间隙开始分配。
func RenderLine(words []string, width int, leftAlign bool) string {
	if len(words) == 0 {
		return Pad("", width)
	}
	if leftAlign || len(words) == 1 {
		return Pad(strings.Join(words, " "), width)
	}

	gaps := len(words) - 1
	total := width
	for _, w := range words {
		total -= Width(w)
	}
	if total < gaps {
		return strings.Join(words, " ")
	}
	base, extra := total/gaps, total%gaps

	var b strings.Builder
	b.Grow(len(words)*8 + total)
	for i, w := range words {
		b.WriteString(w)
		if i < gaps {
			n := base
			if i < extra {
				n++
			}
			b.WriteString(strings.Repeat(" ", n))
		}
	}
	return b.String()
}

// Pad right-pads line with spaces up to width; wider lines are returned as is.
func Pad(line string, width int) string {
	if w := Width(line); w < width {
		return line + strings.Repeat(" ", width-w)
	}
	return line
}
