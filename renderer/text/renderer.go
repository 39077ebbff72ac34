package textrenderer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/ByLCY/justify/layout"
	"github.com/ByLCY/justify/renderer"
)

// Options configures the text renderer.
type Options struct {
	// Frame 输出 "|行| (宽度)" 形式，便于肉眼检查对齐。
	Frame bool
	// Color 为断词行与超宽行着色，Profile 决定颜色深度。
	Color   bool
	Profile termenv.Profile
}

// Renderer writes justified lines as plain text.
type Renderer struct {
	opts    Options
	profile termenv.Profile
}

var _ renderer.Renderer = (*Renderer)(nil)

const (
	hyphenColor   = "#e5c07b"
	overflowColor = "#e06c75"
	frameColor    = "#5c6370"
)

// New creates a text renderer.
func New(opts Options) *Renderer {
	p := termenv.Ascii
	if opts.Color {
		p = opts.Profile
	}
	return &Renderer{opts: opts, profile: p}
}

// Render returns the rendered lines, one per row, each terminated by a newline.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Write(&buf, result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the rendered lines to w.
func (r *Renderer) Write(w io.Writer, result *layout.Result) error {
	if result == nil {
		return fmt.Errorf("渲染结果为空")
	}
	for i, line := range result.Rendered {
		var info layout.Line
		if i < len(result.Lines) {
			info = result.Lines[i]
		}
		if _, err := io.WriteString(w, r.line(line, info)+"\n"); err != nil {
			return fmt.Errorf("写出文本失败: %w", err)
		}
	}
	return nil
}

func (r *Renderer) line(s string, info layout.Line) string {
	body := s
	switch {
	case info.Overflow:
		body = r.profile.String(s).Foreground(r.profile.Color(overflowColor)).String()
	case info.Hyphenated:
		body = r.profile.String(s).Foreground(r.profile.Color(hyphenColor)).String()
	}
	if !r.opts.Frame {
		return body
	}
	bar := r.profile.String("|").Foreground(r.profile.Color(frameColor)).String()
	return fmt.Sprintf("%s%s%s (%d)", bar, body, bar, layout.Width(s))
}
